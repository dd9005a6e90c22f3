package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/typeline/internal/config"
	"github.com/verte-zerg/typeline/internal/logging"
	"github.com/verte-zerg/typeline/internal/model"
	"github.com/verte-zerg/typeline/internal/stats"
	"github.com/verte-zerg/typeline/internal/statsui"
	"github.com/verte-zerg/typeline/internal/store"
)

const (
	plainHistoryRows = 20
	plainTopChars    = 10
)

var (
	statsCategory    string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsLocalOnly   bool
)

// remoteHistory lists history already synced to the backend.
type remoteHistory interface {
	HasToken() bool
	ListHistory(ctx context.Context) ([]model.HistoryItem, error)
}

// mergedHistory serves local history plus synced history. Per-character
// aggregates only exist locally.
type mergedHistory struct {
	local  *store.Store
	remote remoteHistory
	log    *zap.Logger
}

func (h mergedHistory) ListHistory(ctx context.Context, cfg model.StatsConfig) ([]model.HistoryItem, error) {
	// Last is applied after the merge.
	localCfg := cfg
	localCfg.Last = 0
	items, err := h.local.ListHistory(ctx, localCfg)
	if err != nil {
		return nil, err
	}
	if h.remote == nil || !h.remote.HasToken() {
		return items, nil
	}
	remote, err := h.remote.ListHistory(ctx)
	if err != nil {
		h.log.Warn("failed to load synced history", zap.Error(err))
		return items, nil
	}
	return stats.MergeHistory(items, remote), nil
}

func (h mergedHistory) ListCharAggregates(ctx context.Context, ids []string) ([]model.CharAggregate, error) {
	return h.local.ListCharAggregates(ctx, ids)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show results dashboard",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsCategory, "category", "", "category filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsLocalOnly, "local", false, "skip history synced to the backend")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfigFromFlags()
	if err != nil {
		return err
	}

	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logging.NewFile(config.DefaultLogPath(), verbose)
	if err != nil {
		return err
	}
	defer func() {
		// Best-effort flush of the file logger.
		_ = log.Sync()
	}()

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	src := mergedHistory{local: st, log: log}
	if !statsLocalOnly {
		client, err := newBackendClient(fileCfg.Backend)
		if err != nil {
			return err
		}
		if client != nil {
			src.remote = client
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		report, err := stats.BuildReport(cmd.Context(), src, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return renderPlainStats(cmd.OutOrStdout(), report, cfg.CurveWindow)
	}

	program := tea.NewProgram(statsui.NewModel(src, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func statsConfigFromFlags() (model.StatsConfig, error) {
	var since *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.StatsConfig{
		Category:    statsCategory,
		Since:       since,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func renderPlainStats(w io.Writer, report stats.Report, window int) error {
	if err := stats.RenderSummary(w, report.Items); err != nil {
		return err
	}
	if len(report.Items) == 0 {
		return nil
	}
	if err := stats.RenderCurves(w, report.Items, window, 60); err != nil {
		return err
	}
	if err := stats.RenderHistoryTable(w, report.Items, plainHistoryRows); err != nil {
		return err
	}
	if top := stats.FormatTopChars(report.CharAggsWindow, plainTopChars); top != "" {
		if _, err := fmt.Fprintf(w, "Most typed, last %d sessions: %s\n\n", len(report.WindowIDs), top); err != nil {
			return err
		}
	}
	return stats.RenderCharTable(w, report.CharAggsAll)
}
