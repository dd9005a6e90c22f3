package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/typeline/internal/config"
	"github.com/verte-zerg/typeline/internal/logging"
	"github.com/verte-zerg/typeline/internal/store"
	historysync "github.com/verte-zerg/typeline/internal/sync"
)

var syncForce bool

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload local history to the backend",
		Args:  cobra.NoArgs,
		RunE:  runSyncCmd,
	}
	cmd.Flags().BoolVar(&syncForce, "force", false, "sync again even if this device already synced")
	return cmd
}

func runSyncCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	client, err := newBackendClient(fileCfg.Backend)
	if err != nil {
		return err
	}
	if client == nil || !client.HasToken() {
		return fmt.Errorf("backend url and session-token must be set in %s", configPath)
	}

	log, err := logging.New(config.EnvDevelopment, verbose)
	if err != nil {
		return err
	}
	defer func() {
		// Best-effort flush.
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

	if syncForce {
		if err := st.SetSyncFlag(cmd.Context(), false); err != nil {
			return fmt.Errorf("failed to reset sync flag: %w", err)
		}
	}
	res, err := historysync.New(st, client, log).Run(cmd.Context())
	if err != nil && !errors.Is(err, historysync.ErrSyncIncomplete) {
		return fmt.Errorf("failed to sync history: %w", err)
	}
	pending, err := st.CountHistory(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to count local history: %w", err)
	}
	return printSyncResult(cmd.OutOrStdout(), res, pending)
}

// syncHistory runs the one-time upload before practice. It only reports
// partial failures; a device that already synced stays silent.
func syncHistory(ctx context.Context, st *store.Store, uploader historysync.Uploader, log *zap.Logger) error {
	res, err := historysync.New(st, uploader, log).Run(ctx)
	if errors.Is(err, historysync.ErrSyncIncomplete) {
		return fmt.Errorf("history sync incomplete: %d of %d items uploaded", res.Uploaded, res.Attempted)
	}
	if err != nil {
		return fmt.Errorf("failed to sync history: %w", err)
	}
	return nil
}

// printSyncResult reports res. pending is the local item count after the run.
func printSyncResult(w io.Writer, res historysync.Result, pending int) error {
	var msg string
	switch {
	case res.Skipped && pending > 0:
		msg = fmt.Sprintf("Already synced; %d local items kept. Use --force to upload them.", pending)
	case res.Skipped:
		msg = "Nothing to sync."
	case res.Failed > 0:
		msg = fmt.Sprintf("Uploaded %d of %d items; %d failed and were kept locally.", res.Uploaded, res.Attempted, res.Failed)
	default:
		msg = fmt.Sprintf("Uploaded %d items.", res.Uploaded)
	}
	if _, err := fmt.Fprintln(w, msg); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
