package stats

import (
	"context"
	"sort"
	"strings"

	"github.com/verte-zerg/typeline/internal/model"
)

// HistorySource provides history items and their per-character stats.
type HistorySource interface {
	ListHistory(ctx context.Context, cfg model.StatsConfig) ([]model.HistoryItem, error)
	ListCharAggregates(ctx context.Context, ids []string) ([]model.CharAggregate, error)
}

// Report contains precomputed data for the results dashboard.
type Report struct {
	Items          []model.HistoryItem
	WindowIDs      []string
	CharAggsAll    []model.CharAggregate
	CharAggsWindow []model.CharAggregate
}

// BuildReport loads and prepares data for the results dashboard.
func BuildReport(ctx context.Context, src HistorySource, cfg model.StatsConfig) (Report, error) {
	items, err := src.ListHistory(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	items = FilterHistory(items, cfg)

	allIDs := historyIDs(items)
	windowIDs := allIDs
	if cfg.CurveWindow > 0 && len(items) > cfg.CurveWindow {
		windowIDs = historyIDs(items[len(items)-cfg.CurveWindow:])
	}
	charAggsAll, err := src.ListCharAggregates(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	charAggsWindow, err := src.ListCharAggregates(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Items:          items,
		WindowIDs:      windowIDs,
		CharAggsAll:    charAggsAll,
		CharAggsWindow: charAggsWindow,
	}, nil
}

// FilterHistory applies category, since and last filters in memory, oldest first.
func FilterHistory(items []model.HistoryItem, cfg model.StatsConfig) []model.HistoryItem {
	out := make([]model.HistoryItem, 0, len(items))
	for _, item := range items {
		if cfg.Category != "" && !strings.EqualFold(item.Article.Category, cfg.Category) {
			continue
		}
		if cfg.Since != nil && item.CompletedAt.Before(*cfg.Since) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	if cfg.Last > 0 && len(out) > cfg.Last {
		out = out[len(out)-cfg.Last:]
	}
	return out
}

// MergeHistory combines two histories, dropping duplicate IDs. Items from a win.
func MergeHistory(a, b []model.HistoryItem) []model.HistoryItem {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]model.HistoryItem, 0, len(a)+len(b))
	for _, list := range [][]model.HistoryItem{a, b} {
		for _, item := range list {
			if item.ID != "" {
				if _, ok := seen[item.ID]; ok {
					continue
				}
				seen[item.ID] = struct{}{}
			}
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.Before(out[j].CompletedAt)
	})
	return out
}

func historyIDs(items []model.HistoryItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
