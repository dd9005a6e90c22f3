package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired session tokens.
var ErrSessionNotFound = errors.New("session not found")

// SessionR reads the auth library's sessions table.
type SessionR struct {
	db  QueryI
	now func() time.Time
}

// NewSessionRepository returns a session repository.
func NewSessionRepository(db QueryI) *SessionR {
	return &SessionR{db: db, now: time.Now}
}

type sessionRow struct {
	UserID  string    `db:"userId"`
	Expires time.Time `db:"expires"`
}

// UserForToken returns the user id owning a live session token.
func (s *SessionR) UserForToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrSessionNotFound
	}
	query := `SELECT "userId", expires FROM sessions WHERE "sessionToken" = $1`

	var row sessionRow
	if err := s.db.GetContext(ctx, &row, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("database error: %w", err)
	}
	if !row.Expires.After(s.now()) {
		return "", ErrSessionNotFound
	}
	return row.UserID, nil
}
