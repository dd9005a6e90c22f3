package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/verte-zerg/typeline/internal/storage/postgres"
)

// ErrUnauthenticated is returned when a request carries no live session.
var ErrUnauthenticated = errors.New("unauthenticated")

// SessionResolver maps a session token to a user id.
type SessionResolver interface {
	UserForToken(ctx context.Context, token string) (string, error)
}

type userKey struct{}

// UserID returns the authenticated user id stored on ctx.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok && id != ""
}

type authenticator struct {
	sessions SessionResolver
	policy   CookiePolicy
	log      *zap.Logger
}

// token prefers a bearer token, used by the CLI, over the browser cookie.
func (a authenticator) token(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, value, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value), false
		}
	}
	value, ok := a.policy.Read(r)
	return value, ok
}

func (a authenticator) resolve(r *http.Request) (string, bool, error) {
	token, fromCookie := a.token(r)
	if token == "" {
		return "", false, ErrUnauthenticated
	}
	userID, err := a.sessions.UserForToken(r.Context(), token)
	if errors.Is(err, postgres.ErrSessionNotFound) {
		return "", fromCookie, ErrUnauthenticated
	}
	if err != nil {
		return "", false, err
	}
	return userID, false, nil
}

// requireUser rejects requests without a live session. A stale cookie is
// cleared so the browser stops sending it.
func (a authenticator) requireUser() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if a.sessions == nil {
				writeJSONError(w, http.StatusServiceUnavailable, "history storage is not configured")
				return
			}
			userID, staleCookie, err := a.resolve(r)
			switch {
			case errors.Is(err, ErrUnauthenticated):
				if staleCookie {
					a.policy.Clear(w)
				}
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			case err != nil:
				a.log.Error("session lookup failed", zap.Error(err))
				writeJSONError(w, http.StatusInternalServerError, "internal error")
				return
			}
			ctx := context.WithValue(r.Context(), userKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
