// Package store handles SQLite persistence for the local device history.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typeline/internal/model"
	"github.com/verte-zerg/typeline/internal/stats"

	_ "modernc.org/sqlite" // SQLite driver.
)

const syncFlagKey = "history_synced"

// timeLayout keeps stored timestamps fixed-width so text order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for local history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			time_limit_ms INTEGER NOT NULL,
			finish_reason TEXT NOT NULL,
			title TEXT NOT NULL,
			source TEXT NOT NULL,
			url TEXT NOT NULL,
			category TEXT NOT NULL,
			kind TEXT NOT NULL,
			region TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history_char_stats (
			history_id TEXT NOT NULL,
			char TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			latency_sum_ms INTEGER NOT NULL,
			latency_count INTEGER NOT NULL,
			PRIMARY KEY (history_id, char)
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_completed_at ON history(completed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_history_char_stats_char ON history_char_stats(char);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertHistory stores a completed session and its per-character stats.
// An empty item ID is replaced with a new UUID, which is returned.
func (s *Store) InsertHistory(ctx context.Context, item model.HistoryItem, chars []model.CharStats) (id string, err error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO history (id, started_at, completed_at, correct, incorrect, duration_ms, time_limit_ms, finish_reason, title, source, url, category, kind, region)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.StartedAt.UTC().Format(timeLayout),
		item.CompletedAt.UTC().Format(timeLayout),
		item.Correct,
		item.Incorrect,
		item.DurationMs,
		item.TimeLimitMs,
		item.FinishReason,
		item.Article.Title,
		item.Article.Source,
		item.Article.URL,
		strings.ToLower(item.Article.Category),
		item.Article.Kind,
		item.Region,
	)
	if err != nil {
		return "", err
	}

	if len(chars) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO history_char_stats (history_id, char, correct, incorrect, latency_sum_ms, latency_count)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, cs := range chars {
			if _, err = stmt.ExecContext(ctx, item.ID, cs.Char, cs.Correct, cs.Incorrect, cs.LatencySumMs, cs.LatencyCount); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return item.ID, nil
}

// ListHistory returns history items filtered by cfg, oldest first.
// Metrics are derived from the stored counts.
func (s *Store) ListHistory(ctx context.Context, cfg model.StatsConfig) ([]model.HistoryItem, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, strings.ToLower(cfg.Category))
	}
	if cfg.Since != nil {
		clauses = append(clauses, "completed_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, started_at, completed_at, correct, incorrect, duration_ms, time_limit_ms,
		finish_reason, title, source, url, category, kind, region
		FROM history
		WHERE %s
		ORDER BY completed_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var items []model.HistoryItem
	for rows.Next() {
		var item model.HistoryItem
		var startedAt, completedAt string
		if err := rows.Scan(
			&item.ID, &startedAt, &completedAt, &item.Correct, &item.Incorrect, &item.DurationMs, &item.TimeLimitMs,
			&item.FinishReason, &item.Article.Title, &item.Article.Source, &item.Article.URL,
			&item.Article.Category, &item.Article.Kind, &item.Region,
		); err != nil {
			return nil, err
		}
		if item.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if item.CompletedAt, err = time.Parse(time.RFC3339Nano, completedAt); err != nil {
			return nil, err
		}
		wpm, cpm, acc := stats.SessionMetrics(item.Correct, item.Incorrect, item.DurationMs)
		item.WPM = wpm
		item.CPM = cpm
		item.Accuracy = acc * 100
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(items) > cfg.Last {
		items = items[len(items)-cfg.Last:]
	}
	return items, nil
}

// CountHistory returns the number of locally stored history items.
func (s *Store) CountHistory(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ClearHistory deletes all local history and per-character stats.
func (s *Store) ClearHistory(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM history_char_stats`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return err
	}
	return tx.Commit()
}

// SyncFlag reports whether local history was already uploaded from this device.
func (s *Store) SyncFlag(ctx context.Context) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, syncFlagKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

// SetSyncFlag persists the sync flag.
func (s *Store) SetSyncFlag(ctx context.Context, synced bool) error {
	value := "false"
	if synced {
		value = "true"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		syncFlagKey, value)
	return err
}

// GetWeakChars aggregates character stats over the most recent sessions.
func (s *Store) GetWeakChars(ctx context.Context, window int) ([]model.CharAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent AS (
		SELECT id FROM history
		ORDER BY completed_at DESC
		LIMIT ?
	)
	SELECT cs.char, SUM(cs.correct), SUM(cs.incorrect), SUM(cs.latency_sum_ms), SUM(cs.latency_count)
	FROM history_char_stats cs
	JOIN recent r ON r.id = cs.history_id
	GROUP BY cs.char`
	return s.queryCharAggregates(ctx, query, window)
}

// ListCharAggregates aggregates per-character stats across the given history items.
func (s *Store) ListCharAggregates(ctx context.Context, ids []string) ([]model.CharAggregate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT char, SUM(correct), SUM(incorrect), SUM(latency_sum_ms), SUM(latency_count)
		FROM history_char_stats
		WHERE history_id IN (%s)
		GROUP BY char`, strings.Join(placeholders, ","))
	return s.queryCharAggregates(ctx, query, args...)
}

func (s *Store) queryCharAggregates(ctx context.Context, query string, args ...any) ([]model.CharAggregate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CharAggregate
	for rows.Next() {
		var agg model.CharAggregate
		if err := rows.Scan(&agg.Char, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
