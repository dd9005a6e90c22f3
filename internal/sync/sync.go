// Package sync uploads local device history to the backend once.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/typeline/internal/model"
)

// BatchSize is the number of uploads awaited together.
const BatchSize = 5

// ErrSyncIncomplete is returned when at least one upload failed.
var ErrSyncIncomplete = errors.New("some history could not be synced")

//go:generate mockgen -source=sync.go -destination=mock/sync_mock.go

// LocalHistory is the device store the syncer reads and clears.
type LocalHistory interface {
	ListHistory(ctx context.Context, cfg model.StatsConfig) ([]model.HistoryItem, error)
	ClearHistory(ctx context.Context) error
	SyncFlag(ctx context.Context) (bool, error)
	SetSyncFlag(ctx context.Context, synced bool) error
}

// Uploader sends one history item to the backend.
type Uploader interface {
	UploadHistory(ctx context.Context, item model.HistoryItem) error
}

// Result describes one sync run.
type Result struct {
	Skipped   bool
	Attempted int
	Uploaded  int
	Failed    int
}

// Syncer moves local history to the backend.
type Syncer struct {
	local    LocalHistory
	uploader Uploader
	log      *zap.Logger
}

// New returns a Syncer. A nil logger disables logging.
func New(local LocalHistory, uploader Uploader, log *zap.Logger) *Syncer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Syncer{local: local, uploader: uploader, log: log}
}

// Run uploads every local item unless this device already synced.
// Batches run one after another; uploads within a batch run in parallel.
// The flag is set once all batches were attempted, and local history is
// cleared only when every upload succeeded. There is no retry.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	synced, err := s.local.SyncFlag(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read sync flag: %w", err)
	}
	if synced {
		return Result{Skipped: true}, nil
	}
	items, err := s.local.ListHistory(ctx, model.StatsConfig{})
	if err != nil {
		return Result{}, fmt.Errorf("failed to list local history: %w", err)
	}
	if len(items) == 0 {
		return Result{Skipped: true}, nil
	}

	res := Result{Attempted: len(items)}
	for start := 0; start < len(items); start += BatchSize {
		end := min(start+BatchSize, len(items))
		res.Uploaded += s.uploadBatch(ctx, items[start:end])
	}
	res.Failed = res.Attempted - res.Uploaded

	if err := s.local.SetSyncFlag(ctx, true); err != nil {
		return res, fmt.Errorf("failed to set sync flag: %w", err)
	}
	if res.Failed > 0 {
		s.log.Warn("history sync incomplete", zap.Int("uploaded", res.Uploaded), zap.Int("failed", res.Failed))
		return res, ErrSyncIncomplete
	}
	if err := s.local.ClearHistory(ctx); err != nil {
		return res, fmt.Errorf("failed to clear local history: %w", err)
	}
	s.log.Info("history synced", zap.Int("uploaded", res.Uploaded))
	return res, nil
}

// uploadBatch waits for every upload in batch and returns the successes.
// A failed upload does not cancel its siblings.
func (s *Syncer) uploadBatch(ctx context.Context, batch []model.HistoryItem) int {
	var ok atomic.Int64
	var g errgroup.Group
	for _, item := range batch {
		g.Go(func() error {
			if err := s.uploader.UploadHistory(ctx, item); err != nil {
				s.log.Warn("history upload failed", zap.String("id", item.ID), zap.Error(err))
				return err
			}
			ok.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	return int(ok.Load())
}
