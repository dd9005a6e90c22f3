// Package postgres stores synced history and resolves auth sessions.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver.
)

// DBConfig holds the connection and pool settings.
type DBConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// InitDB opens a pool and verifies it with a ping.
func InitDB(ctx context.Context, cfg DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed open db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed db ping: %w", err)
	}
	return db, nil
}

// Migrate creates the history table. The sessions table belongs to the
// auth library and is not managed here.
func Migrate(ctx context.Context, db QueryI) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS typing_history (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			wpm DOUBLE PRECISION NOT NULL,
			accuracy DOUBLE PRECISION NOT NULL,
			cpm DOUBLE PRECISION NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			duration_ms BIGINT NOT NULL,
			time_limit_ms BIGINT NOT NULL,
			finish_reason TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			kind TEXT NOT NULL DEFAULT '',
			region TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS typing_history_user_completed_idx
			ON typing_history (user_id, completed_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}
