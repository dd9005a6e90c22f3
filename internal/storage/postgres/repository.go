package postgres

import (
	"context"
	"database/sql"
)

//go:generate mockgen -source=repository.go -destination=mock/query_mock.go

// QueryI is the subset of sqlx used by the repositories.
type QueryI interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Repository groups the server repositories.
type Repository struct {
	*SessionR
	*HistoryR
}

// NewRepository wires repositories over db.
func NewRepository(db QueryI) Repository {
	return Repository{
		SessionR: NewSessionRepository(db),
		HistoryR: NewHistoryRepository(db),
	}
}
