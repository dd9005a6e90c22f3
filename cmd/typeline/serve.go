package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/typeline/internal/backend"
	"github.com/verte-zerg/typeline/internal/config"
	"github.com/verte-zerg/typeline/internal/content"
	"github.com/verte-zerg/typeline/internal/logging"
	"github.com/verte-zerg/typeline/internal/server"
	"github.com/verte-zerg/typeline/internal/storage/postgres"
)

const (
	dbConnMaxLifetime = 30 * time.Minute
	dbConnMaxIdleTime = 5 * time.Minute
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (configured via TYPELINE_* env vars)",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}
	log, err := logging.New(cfg.Env, verbose)
	if err != nil {
		return err
	}
	defer func() {
		// Best-effort flush.
		_ = log.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src content.Source
	if cfg.UpstreamURL != "" {
		client, err := backend.New(cfg.UpstreamURL,
			backend.WithToken(cfg.UpstreamToken),
			backend.WithTimeout(cfg.RequestTimeout),
		)
		if err != nil {
			return fmt.Errorf("invalid upstream config: %w", err)
		}
		src = client
	} else {
		log.Warn("no upstream configured; serving bundled content only")
	}
	svc, err := content.NewService(src,
		content.WithLogger(log.Named("content")),
		content.WithCacheSize(cfg.CacheSize),
		content.WithRefreshTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to init content: %w", err)
	}
	defer svc.Close()

	deps := server.Deps{Content: svc, Log: log}
	if cfg.DatabaseURL != "" {
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				log.Warn("failed to close db", zap.Error(cerr))
			}
		}()
		repo := postgres.NewRepository(db)
		deps.Sessions = repo
		deps.History = repo
	} else {
		log.Warn("no database configured; history routes are disabled")
	}

	srv, err := server.New(cfg, deps)
	if err != nil {
		return fmt.Errorf("failed to init server: %w", err)
	}
	return srv.ListenAndServe(ctx)
}

func openDatabase(ctx context.Context, cfg config.ServerConfig) (*sqlx.DB, error) {
	db, err := postgres.InitDB(ctx, postgres.DBConfig{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: dbConnMaxLifetime,
		ConnMaxIdleTime: dbConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect db: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return db, nil
}
