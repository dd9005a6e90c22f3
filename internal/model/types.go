// Package model defines shared data structures.
package model

import "time"

// Content kinds served by the backend.
const (
	KindNews      = "news"
	KindEditorial = "editorial"
	KindYesterday = "yesterday"
	KindFile      = "file"
)

// Text modes for practice.
const (
	ModeHeadline = "headline"
	ModeArticle  = "article"
)

// Finish reasons for a session.
const (
	FinishTime = "time"
	FinishText = "text"
)

// Config defines practice settings.
type Config struct {
	Category   string
	Source     string
	Mode       string
	TimeLimit  time.Duration
	MaxWords   int
	Region     string
	File       string
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
}

// StatsConfig defines filters and options for the results dashboard.
type StatsConfig struct {
	Category    string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// Article is a news item, a digest entry, or an editorial piece.
type Article struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Body        string    `json:"body,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Category    string    `json:"category"`
	Region      string    `json:"region,omitempty"`
	PublishedAt time.Time `json:"publishedAt,omitempty"`
}

// Digest is the "yesterday" summary of articles.
type Digest struct {
	Date     string    `json:"date"`
	Articles []Article `json:"articles"`
}

// ArticleRef is the source article metadata kept on a history item.
type ArticleRef struct {
	Title    string `json:"title"`
	Source   string `json:"source,omitempty"`
	URL      string `json:"url,omitempty"`
	Category string `json:"category,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

// HistoryItem summarizes a completed typing session.
type HistoryItem struct {
	ID           string     `json:"id" validate:"required,uuid"`
	WPM          float64    `json:"wpm" validate:"min=0"`
	Accuracy     float64    `json:"accuracy" validate:"min=0,max=100"`
	CPM          float64    `json:"cpm" validate:"min=0"`
	Correct      int        `json:"correct" validate:"min=0"`
	Incorrect    int        `json:"incorrect" validate:"min=0"`
	DurationMs   int64      `json:"durationMs" validate:"min=0"`
	TimeLimitMs  int64      `json:"timeLimitMs" validate:"gt=0"`
	FinishReason string     `json:"finishReason" validate:"oneof=time text"`
	Article      ArticleRef `json:"article"`
	Region       string     `json:"region,omitempty"`
	StartedAt    time.Time  `json:"startedAt" validate:"required"`
	CompletedAt  time.Time  `json:"completedAt" validate:"required"`
}

// CharStats stores per-character stats for a session.
type CharStats struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}
