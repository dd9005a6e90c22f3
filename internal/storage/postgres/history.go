package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/typeline/internal/model"
)

const defaultListLimit = 500

// HistoryR stores synced history items.
type HistoryR struct {
	db QueryI
}

// NewHistoryRepository returns a history repository.
func NewHistoryRepository(db QueryI) *HistoryR {
	return &HistoryR{db: db}
}

type historyRow struct {
	ID           string    `db:"id"`
	WPM          float64   `db:"wpm"`
	Accuracy     float64   `db:"accuracy"`
	CPM          float64   `db:"cpm"`
	Correct      int       `db:"correct"`
	Incorrect    int       `db:"incorrect"`
	DurationMs   int64     `db:"duration_ms"`
	TimeLimitMs  int64     `db:"time_limit_ms"`
	FinishReason string    `db:"finish_reason"`
	Title        string    `db:"title"`
	Source       string    `db:"source"`
	URL          string    `db:"url"`
	Category     string    `db:"category"`
	Kind         string    `db:"kind"`
	Region       string    `db:"region"`
	StartedAt    time.Time `db:"started_at"`
	CompletedAt  time.Time `db:"completed_at"`
}

func (r historyRow) item() model.HistoryItem {
	return model.HistoryItem{
		ID:           r.ID,
		WPM:          r.WPM,
		Accuracy:     r.Accuracy,
		CPM:          r.CPM,
		Correct:      r.Correct,
		Incorrect:    r.Incorrect,
		DurationMs:   r.DurationMs,
		TimeLimitMs:  r.TimeLimitMs,
		FinishReason: r.FinishReason,
		Article: model.ArticleRef{
			Title:    r.Title,
			Source:   r.Source,
			URL:      r.URL,
			Category: r.Category,
			Kind:     r.Kind,
		},
		Region:      r.Region,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}

// Insert stores item for userID. A repeated id is ignored, so uploads are
// idempotent. It reports whether a new row was written.
func (h *HistoryR) Insert(ctx context.Context, userID string, item model.HistoryItem) (bool, error) {
	query := `INSERT INTO typing_history (id, user_id, wpm, accuracy, cpm, correct, incorrect, duration_ms,
			time_limit_ms, finish_reason, title, source, url, category, kind, region, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO NOTHING`

	res, err := h.db.ExecContext(ctx, query,
		item.ID, userID, item.WPM, item.Accuracy, item.CPM, item.Correct, item.Incorrect, item.DurationMs,
		item.TimeLimitMs, item.FinishReason, item.Article.Title, item.Article.Source, item.Article.URL,
		item.Article.Category, item.Article.Kind, item.Region, item.StartedAt.UTC(), item.CompletedAt.UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert history: %w", err)
	}
	if res == nil {
		return false, nil
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// ListByUser returns the newest items of userID, oldest first.
func (h *HistoryR) ListByUser(ctx context.Context, userID string, limit int) ([]model.HistoryItem, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := `
		SELECT id, wpm, accuracy, cpm, correct, incorrect, duration_ms, time_limit_ms, finish_reason,
			title, source, url, category, kind, region, started_at, completed_at
		FROM (
			SELECT * FROM typing_history
			WHERE user_id = $1
			ORDER BY completed_at DESC
			LIMIT $2
		) recent
		ORDER BY completed_at ASC
	`
	rows := make([]historyRow, 0, 16)
	if err := h.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	items := make([]model.HistoryItem, len(rows))
	for i, r := range rows {
		items[i] = r.item()
	}
	return items, nil
}
