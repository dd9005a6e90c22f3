// Package session implements the typing session timer and scorer.
//
// A Session is driven by keystrokes and by an external one-second ticker.
// It never reads the wall clock for scoring, so the same keystroke and tick
// sequence always yields the same metrics.
package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typeline/internal/model"
)

// Status is the lifecycle state of a session.
type Status int

// Session states.
const (
	StatusIdle Status = iota
	StatusActive
	StatusPaused
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusActive:
		return "active"
	case StatusPaused:
		return "paused"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrNotFinished is returned when a summary is requested before the session ends.
var ErrNotFinished = errors.New("session not finished")

// Metrics are the live scores of a session. Accuracy is a percentage.
type Metrics struct {
	WPM      float64
	CPM      float64
	Accuracy float64
}

type charStat struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

// Session tracks one attempt at typing a target text.
type Session struct {
	target []rune
	input  []rune
	limit  time.Duration

	status       Status
	finishReason string
	elapsed      time.Duration
	focus        bool

	correct   int
	incorrect int

	charStats     map[rune]*charStat
	lastCorrectAt time.Duration
	hasCorrect    bool
}

// New returns an idle session for text with the given time limit.
func New(text string, limit time.Duration) (*Session, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("time limit must be > 0, got %s", limit)
	}
	target := []rune(text)
	if len(target) == 0 {
		return nil, fmt.Errorf("target text is empty")
	}
	return &Session{
		target:    target,
		limit:     limit,
		charStats: map[rune]*charStat{},
	}, nil
}

// Status returns the current state.
func (s *Session) Status() Status { return s.status }

// Target returns the text to type.
func (s *Session) Target() []rune { return s.target }

// Input returns the typed runes.
func (s *Session) Input() []rune { return s.input }

// Position is the index of the next rune to type.
func (s *Session) Position() int { return len(s.input) }

// Limit returns the configured time limit.
func (s *Session) Limit() time.Duration { return s.limit }

// Elapsed returns the active time spent so far. It never exceeds Limit.
func (s *Session) Elapsed() time.Duration { return s.elapsed }

// Correct returns the number of correct keystrokes.
func (s *Session) Correct() int { return s.correct }

// Incorrect returns the number of incorrect keystrokes.
func (s *Session) Incorrect() int { return s.incorrect }

// FinishReason is model.FinishTime or model.FinishText once finished.
func (s *Session) FinishReason() string { return s.finishReason }

// Focused reports whether focus mode is on.
func (s *Session) Focused() bool { return s.focus }

// ToggleFocus switches focus mode. Scoring is unaffected.
func (s *Session) ToggleFocus() { s.focus = !s.focus }

// Type records a keystroke. It reports whether the keystroke was accepted.
func (s *Session) Type(r rune) bool {
	switch s.status {
	case StatusPaused, StatusFinished:
		return false
	case StatusIdle:
		s.status = StatusActive
	}
	pos := len(s.input)
	expected := s.target[pos]
	s.input = append(s.input, r)
	s.score(expected, r)
	if len(s.input) == len(s.target) {
		s.finish(model.FinishText)
	}
	return true
}

// Backspace removes the last typed rune. Keystroke counts are kept.
func (s *Session) Backspace() bool {
	if s.status != StatusActive || len(s.input) == 0 {
		return false
	}
	s.input = s.input[:len(s.input)-1]
	return true
}

// Tick advances the timer by one second while active.
func (s *Session) Tick() {
	s.Advance(time.Second)
}

// Advance adds d to the elapsed time while active, finishing at the limit.
func (s *Session) Advance(d time.Duration) {
	if s.status != StatusActive || d <= 0 {
		return
	}
	s.elapsed += d
	if s.elapsed >= s.limit {
		s.elapsed = s.limit
		s.finish(model.FinishTime)
	}
}

// Pause freezes the timer. Only an active session can be paused.
func (s *Session) Pause() bool {
	if s.status != StatusActive {
		return false
	}
	s.status = StatusPaused
	return true
}

// Resume unfreezes a paused session.
func (s *Session) Resume() bool {
	if s.status != StatusPaused {
		return false
	}
	s.status = StatusActive
	return true
}

// Remaining returns limit minus elapsed.
func (s *Session) Remaining() time.Duration {
	return s.limit - s.elapsed
}

// Countdown returns the remaining whole seconds, rounded up.
func (s *Session) Countdown() int {
	return int(math.Ceil(s.Remaining().Seconds()))
}

// Progress returns the typed fraction of the target in [0, 1].
func (s *Session) Progress() float64 {
	return float64(len(s.input)) / float64(len(s.target))
}

// Metrics derives WPM, CPM and accuracy from the counts and elapsed time.
func (s *Session) Metrics() Metrics {
	m := Metrics{Accuracy: 100}
	if total := s.correct + s.incorrect; total > 0 {
		m.Accuracy = float64(s.correct) / float64(total) * 100
	}
	minutes := s.elapsed.Minutes()
	if minutes > 0 {
		m.CPM = float64(s.correct) / minutes
		m.WPM = m.CPM / 5
	}
	return m
}

// Summary builds the history item for a finished session.
func (s *Session) Summary(article model.ArticleRef, region string, completedAt time.Time) (model.HistoryItem, error) {
	if s.status != StatusFinished {
		return model.HistoryItem{}, ErrNotFinished
	}
	m := s.Metrics()
	return model.HistoryItem{
		ID:           uuid.NewString(),
		WPM:          m.WPM,
		Accuracy:     m.Accuracy,
		CPM:          m.CPM,
		Correct:      s.correct,
		Incorrect:    s.incorrect,
		DurationMs:   s.elapsed.Milliseconds(),
		TimeLimitMs:  s.limit.Milliseconds(),
		FinishReason: s.finishReason,
		Article:      article,
		Region:       region,
		StartedAt:    completedAt.Add(-s.elapsed),
		CompletedAt:  completedAt,
	}, nil
}

// CharStats returns per-character tallies for non-space target characters.
func (s *Session) CharStats() []model.CharStats {
	out := make([]model.CharStats, 0, len(s.charStats))
	for ch, entry := range s.charStats {
		out = append(out, model.CharStats{
			Char:         string(ch),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	return out
}

func (s *Session) score(expected, typed rune) {
	if typed != expected {
		s.incorrect++
		if expected != ' ' {
			s.charEntry(expected).incorrect++
		}
		return
	}
	s.correct++
	if expected == ' ' {
		return
	}
	entry := s.charEntry(expected)
	entry.correct++
	if s.hasCorrect {
		entry.latencySumMs += (s.elapsed - s.lastCorrectAt).Milliseconds()
		entry.latencyCount++
	}
	s.lastCorrectAt = s.elapsed
	s.hasCorrect = true
}

func (s *Session) charEntry(expected rune) *charStat {
	entry, ok := s.charStats[expected]
	if !ok {
		entry = &charStat{}
		s.charStats[expected] = entry
	}
	return entry
}

func (s *Session) finish(reason string) {
	s.status = StatusFinished
	s.finishReason = reason
}
