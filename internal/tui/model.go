// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/typeline/internal/model"
	"github.com/verte-zerg/typeline/internal/practice"
	"github.com/verte-zerg/typeline/internal/session"
	statsPkg "github.com/verte-zerg/typeline/internal/stats"
)

const loadTimeout = 20 * time.Second

// TextSource yields practice texts.
type TextSource interface {
	Next(ctx context.Context) (practice.Text, error)
}

// HistoryStore persists finished sessions.
type HistoryStore interface {
	InsertHistory(ctx context.Context, item model.HistoryItem, chars []model.CharStats) (string, error)
	ListHistory(ctx context.Context, cfg model.StatsConfig) ([]model.HistoryItem, error)
}

type screen int

const (
	screenLoading screen = iota
	screenTyping
	screenResults
	screenError
)

type textMsg struct {
	text practice.Text
	err  error
}

type tickMsg struct {
	seq int
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	config  model.Config
	texts   TextSource
	history HistoryStore
	log     *zap.Logger
	now     func() time.Time

	width  int
	height int

	screen      screen
	text        practice.Text
	sess        *session.Session
	lastAdvance time.Time
	tickSeq     int
	result      model.HistoryItem
	err         error

	lastWPM float64
	lastAcc float64
	hasLast bool

	allWPM       float64
	allAcc       float64
	allCorrect   int
	allIncorrect int
	allDuration  int64
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = pendingStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	pausedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	pausedTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
)

// NewModel constructs a typing TUI model.
func NewModel(cfg model.Config, texts TextSource, history HistoryStore, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Model{
		config:  cfg,
		texts:   texts,
		history: history,
		log:     log,
		now:     time.Now,
	}
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.loadText()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case textMsg:
		if msg.err != nil {
			m.log.Warn("failed to load practice text", zap.Error(msg.err))
			m.err = msg.err
			m.screen = screenError
			return m, nil
		}
		return m, m.startText(msg.text)
	case tickMsg:
		return m, m.handleTick(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenTyping:
			return m, m.handleTypingKey(msg)
		case screenResults:
			return m, m.handleResultsKey(msg)
		case screenError:
			return m, m.handleErrorKey(msg)
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) handleTypingKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		switch m.sess.Status() {
		case session.StatusActive:
			m.advance()
			m.sess.Pause()
		case session.StatusPaused:
			m.sess.Resume()
			m.lastAdvance = m.now()
		default:
			return tea.Quit
		}
		return nil
	case tea.KeyCtrlF:
		m.sess.ToggleFocus()
		return nil
	case tea.KeyTab:
		return m.startText(m.text)
	case tea.KeyCtrlN:
		return m.loadText()
	case tea.KeyBackspace, tea.KeyDelete:
		m.sess.Backspace()
		return nil
	case tea.KeySpace:
		m.handleRunes([]rune{' '})
		return nil
	case tea.KeyRunes:
		m.handleRunes(msg.Runes)
		return nil
	default:
		return nil
	}
}

func (m *Model) handleResultsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyCtrlN:
		return m.loadText()
	case tea.KeyTab:
		return m.startText(m.text)
	case tea.KeyEsc:
		return tea.Quit
	case tea.KeyRunes:
		if string(msg.Runes) == "q" {
			return tea.Quit
		}
	}
	return nil
}

func (m *Model) handleErrorKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyCtrlN:
		return m.loadText()
	case tea.KeyEsc:
		return tea.Quit
	}
	return nil
}

func (m *Model) loadText() tea.Cmd {
	m.screen = screenLoading
	m.tickSeq++
	texts := m.texts
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		text, err := texts.Next(ctx)
		return textMsg{text: text, err: err}
	}
}

func (m *Model) startText(text practice.Text) tea.Cmd {
	sess, err := session.New(text.Body, m.config.TimeLimit)
	if err != nil {
		m.err = err
		m.screen = screenError
		return nil
	}
	m.text = text
	m.sess = sess
	m.err = nil
	m.screen = screenTyping
	m.tickSeq++
	return tickCmd(m.tickSeq)
}

func tickCmd(seq int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{seq: seq}
	})
}

// handleTick advances the timer. Ticks from a replaced session are dropped.
func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if msg.seq != m.tickSeq || m.screen != screenTyping {
		return nil
	}
	m.advance()
	if m.sess.Status() == session.StatusFinished {
		m.finishSession()
		return nil
	}
	return tickCmd(m.tickSeq)
}

// advance moves the session clock to now while it is running.
func (m *Model) advance() {
	if m.sess.Status() != session.StatusActive {
		return
	}
	now := m.now()
	m.sess.Advance(now.Sub(m.lastAdvance))
	m.lastAdvance = now
}

func (m *Model) handleRunes(runes []rune) {
	for _, r := range runes {
		m.advance()
		if m.sess.Status() == session.StatusFinished {
			break
		}
		wasIdle := m.sess.Status() == session.StatusIdle
		if !m.sess.Type(r) {
			continue
		}
		if wasIdle {
			m.lastAdvance = m.now()
		}
	}
	if m.sess.Status() == session.StatusFinished {
		m.finishSession()
	}
}

func (m *Model) finishSession() {
	if m.screen != screenTyping {
		return
	}
	m.screen = screenResults
	m.tickSeq++
	item, err := m.sess.Summary(m.text.Ref, m.config.Region, m.now())
	if err != nil {
		m.log.Error("failed to summarize session", zap.Error(err))
		return
	}
	m.result = item

	if m.history != nil {
		ctx := context.Background()
		if _, err := m.history.InsertHistory(ctx, item, m.sess.CharStats()); err != nil {
			m.log.Error("failed to save session", zap.String("id", item.ID), zap.Error(err))
		}
	}
	m.lastWPM = item.WPM
	m.lastAcc = item.Accuracy
	m.hasLast = true
	m.allCorrect += item.Correct
	m.allIncorrect += item.Incorrect
	m.allDuration += item.DurationMs
	m.recomputeAllTime()
}

func (m *Model) loadFooterStats() {
	if m.history == nil {
		return
	}
	items, err := m.history.ListHistory(context.Background(), model.StatsConfig{})
	if err != nil {
		m.log.Warn("failed to load session stats", zap.Error(err))
		return
	}
	if len(items) == 0 {
		return
	}
	last := items[len(items)-1]
	m.lastWPM = last.WPM
	m.lastAcc = last.Accuracy
	m.hasLast = true

	for _, item := range items {
		m.allCorrect += item.Correct
		m.allIncorrect += item.Incorrect
		m.allDuration += item.DurationMs
	}
	m.recomputeAllTime()
}

func (m *Model) recomputeAllTime() {
	wpm, _, acc := statsPkg.SessionMetrics(m.allCorrect, m.allIncorrect, m.allDuration)
	m.allWPM = wpm
	m.allAcc = acc * 100
}

// View implements tea.Model.
func (m *Model) View() string {
	var content, footer string
	switch m.screen {
	case screenLoading:
		content = footerStyle.Render("Loading headlines...")
	case screenError:
		content = fmt.Sprintf("%s\n\n%s",
			incorrectStyle.Render(fmt.Sprintf("No text to practice: %v", m.err)),
			footerStyle.Render("enter retry · esc quit"))
	case screenResults:
		content = m.renderResults()
	case screenTyping:
		content = m.renderText()
		footer = m.renderFooter()
	}
	if m.width == 0 || m.height == 0 {
		if footer == "" {
			return content
		}
		return content + "\n" + footer
	}
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderText() string {
	target := m.sess.Target()
	input := m.sess.Input()
	cursorIndex := -1
	if len(input) < len(target) {
		cursorIndex = len(input)
	}
	glyphs := styleTarget(target, input, cursorIndex, m.sess.Status() == session.StatusPaused)
	contentWidth := int(float64(m.width) * 0.70)
	if m.width == 0 {
		contentWidth = 0
	} else if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapGlyphs(glyphs, contentWidth)
	if contentWidth > 0 {
		wrapped = lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	}
	if m.sess.Focused() {
		return wrapped
	}
	return m.renderHeader() + "\n\n" + wrapped
}

func (m *Model) renderHeader() string {
	ref := m.text.Ref
	parts := make([]string, 0, 3)
	for _, p := range []string{ref.Kind, ref.Category, ref.Source} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return headerStyle.Render(strings.Join(parts, " · "))
}

func (m *Model) renderFooter() string {
	if m.sess == nil {
		return ""
	}
	segments := []string{formatCountdown(m.sess.Countdown())}
	if m.sess.Status() == session.StatusPaused {
		segments = append(segments, pausedStyle.Render("PAUSED"))
	}
	if !m.sess.Focused() {
		live := m.sess.Metrics()
		segments = append(segments,
			fmt.Sprintf("Progress %d%%", int(m.sess.Progress()*100)),
			fmt.Sprintf("Now %.1f WPM · %.1f%%", live.WPM, live.Accuracy),
		)
		if m.hasLast {
			segments = append(segments, fmt.Sprintf("Last %.1f WPM · %.1f%%", m.lastWPM, m.lastAcc))
		}
		segments = append(segments, fmt.Sprintf("All-time %.1f WPM · %.1f%%", m.allWPM, m.allAcc))
	}
	footer := strings.Join(segments, "  ")
	return footerStyle.Render(footer)
}

func (m *Model) renderResults() string {
	r := m.result
	reason := "time is up"
	if r.FinishReason == model.FinishText {
		reason = "text complete"
	}
	lines := []string{
		headerStyle.Render(fmt.Sprintf("%.1f WPM", r.WPM)),
		"",
		fmt.Sprintf("Accuracy  %.1f%%", r.Accuracy),
		fmt.Sprintf("CPM       %.0f", r.CPM),
		fmt.Sprintf("Keys      %d correct · %d incorrect", r.Correct, r.Incorrect),
		fmt.Sprintf("Time      %s (%s)", (time.Duration(r.DurationMs) * time.Millisecond).Round(100*time.Millisecond), reason),
		"",
		correctStyle.Render(r.Article.Title),
	}
	if r.Article.URL != "" {
		lines = append(lines, footerStyle.Render(r.Article.URL))
	}
	lines = append(lines, "", footerStyle.Render("enter next · tab retry · esc quit"))
	return strings.Join(lines, "\n")
}

func formatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
