// Package server exposes the content and history API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/typeline/internal/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Deps are the collaborators of the server. Sessions and History may be
// nil when no database is configured; history routes then answer 503.
type Deps struct {
	Content  ContentService
	Sessions SessionResolver
	History  HistoryStore
	Log      *zap.Logger
}

// Server is the typeline HTTP service.
type Server struct {
	cfg        config.ServerConfig
	log        *zap.Logger
	httpServer *http.Server
}

// New builds a server for cfg.
func New(cfg config.ServerConfig, deps Deps) (*Server, error) {
	if deps.Content == nil {
		return nil, fmt.Errorf("content service is required")
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if (deps.Sessions == nil) != (deps.History == nil) {
		return nil, fmt.Errorf("sessions and history store must be configured together")
	}
	s := &Server{cfg: cfg, log: deps.Log}
	s.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.routes(deps),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes(deps Deps) http.Handler {
	h := handlers{content: deps.Content, history: deps.History, log: deps.Log}
	auth := authenticator{sessions: deps.Sessions, policy: PolicyFor(s.cfg), log: deps.Log}

	withTimeout := func(next http.Handler) http.Handler {
		if s.cfg.RequestTimeout <= 0 {
			return next
		}
		return http.TimeoutHandler(next, s.cfg.RequestTimeout, `{"error":"request timed out"}`)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/news", Chain(http.HandlerFunc(h.news), RequireMethod(http.MethodGet), withTimeout))
	mux.Handle("/api/editorial", Chain(http.HandlerFunc(h.editorial), RequireMethod(http.MethodGet), withTimeout))
	mux.Handle("/api/yesterday", Chain(http.HandlerFunc(h.yesterday), RequireMethod(http.MethodGet), withTimeout))
	mux.Handle("/api/history", Chain(http.HandlerFunc(h.historyRoute),
		RequireMethod(http.MethodGet, http.MethodPost), auth.requireUser(), withTimeout))
	mux.Handle("/healthz", Chain(http.HandlerFunc(healthz), RequireMethod(http.MethodGet)))

	return Chain(mux,
		RequestID(),
		AccessLog(deps.Log),
		RecoverPanic(deps.Log),
		CORS(s.cfg.AllowedOrigins),
	)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serveErr := make(chan error, 1)
	s.log.Info("server listening", zap.String("addr", s.cfg.HTTPAddr), zap.String("env", s.cfg.Env))
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
