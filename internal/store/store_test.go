package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/typeline/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "typeline.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func testItem(i int, category string) model.HistoryItem {
	start := time.Unix(1700000000, 0).Add(time.Duration(i) * time.Minute)
	return model.HistoryItem{
		StartedAt:    start,
		CompletedAt:  start.Add(30 * time.Second),
		Correct:      100,
		Incorrect:    25,
		DurationMs:   30000,
		TimeLimitMs:  60000,
		FinishReason: model.FinishText,
		Article:      model.ArticleRef{Title: "Markets rally", Category: category, Kind: model.KindNews},
		Region:       "us",
	}
}

func TestInsertAndListHistoryDerivesMetrics(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id, err := st.InsertHistory(ctx, testItem(0, "Business"), []model.CharStats{{Char: "a", Correct: 3, Incorrect: 1}})
	if err != nil {
		t.Fatalf("insert history: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}

	items, err := st.ListHistory(ctx, model.StatsConfig{Category: "business"})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	got := items[0]
	if got.ID != id {
		t.Fatalf("expected id %q, got %q", id, got.ID)
	}
	// 100 correct chars in half a minute: 20 words in 0.5 min.
	if math.Abs(got.WPM-40) > 1e-9 {
		t.Fatalf("expected 40 wpm, got %f", got.WPM)
	}
	if math.Abs(got.Accuracy-80) > 1e-9 {
		t.Fatalf("expected 80%% accuracy, got %f", got.Accuracy)
	}
	if got.Article.Category != "business" {
		t.Fatalf("expected lowercased category, got %q", got.Article.Category)
	}
}

func TestListHistoryLast(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 4; i++ {
		id, err := st.InsertHistory(ctx, testItem(i, "world"), nil)
		if err != nil {
			t.Fatalf("insert history: %v", err)
		}
		ids = append(ids, id)
	}
	items, err := st.ListHistory(ctx, model.StatsConfig{Last: 2})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(items) != 2 || items[0].ID != ids[2] || items[1].ID != ids[3] {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestListHistoryOrdersSubsecondTimes(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	later := testItem(0, "world")
	later.StartedAt = base.Add(-30 * time.Second)
	later.CompletedAt = base.Add(500 * time.Millisecond)
	laterID, err := st.InsertHistory(ctx, later, nil)
	if err != nil {
		t.Fatalf("insert history: %v", err)
	}
	earlier := testItem(0, "world")
	earlier.StartedAt = base.Add(-30 * time.Second)
	earlier.CompletedAt = base
	earlierID, err := st.InsertHistory(ctx, earlier, nil)
	if err != nil {
		t.Fatalf("insert history: %v", err)
	}

	items, err := st.ListHistory(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(items) != 2 || items[0].ID != earlierID || items[1].ID != laterID {
		t.Fatalf("expected whole second before half second, got %+v", items)
	}
	if !items[1].CompletedAt.Equal(later.CompletedAt) {
		t.Fatalf("expected %v, got %v", later.CompletedAt, items[1].CompletedAt)
	}

	since := base.Add(250 * time.Millisecond)
	items, err = st.ListHistory(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(items) != 1 || items[0].ID != laterID {
		t.Fatalf("expected only the later item since %v, got %+v", since, items)
	}
}

func TestClearHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id, err := st.InsertHistory(ctx, testItem(0, "world"), []model.CharStats{{Char: "b", Correct: 1}})
	if err != nil {
		t.Fatalf("insert history: %v", err)
	}
	if err := st.ClearHistory(ctx); err != nil {
		t.Fatalf("clear history: %v", err)
	}
	n, err := st.CountHistory(ctx)
	if err != nil {
		t.Fatalf("count history: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty history, got %d", n)
	}
	aggs, err := st.ListCharAggregates(ctx, []string{id})
	if err != nil {
		t.Fatalf("list char aggregates: %v", err)
	}
	if len(aggs) != 0 {
		t.Fatalf("expected char stats cleared, got %+v", aggs)
	}
}

func TestSyncFlag(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	synced, err := st.SyncFlag(ctx)
	if err != nil {
		t.Fatalf("sync flag: %v", err)
	}
	if synced {
		t.Fatalf("expected unset flag on a new device")
	}
	if err := st.SetSyncFlag(ctx, true); err != nil {
		t.Fatalf("set sync flag: %v", err)
	}
	if err := st.SetSyncFlag(ctx, true); err != nil {
		t.Fatalf("set sync flag twice: %v", err)
	}
	synced, err = st.SyncFlag(ctx)
	if err != nil {
		t.Fatalf("sync flag: %v", err)
	}
	if !synced {
		t.Fatalf("expected flag to be set")
	}
}

func TestGetWeakCharsWindow(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, err := st.InsertHistory(ctx, testItem(0, "world"), []model.CharStats{{Char: "q", Correct: 0, Incorrect: 5}}); err != nil {
		t.Fatalf("insert history: %v", err)
	}
	if _, err := st.InsertHistory(ctx, testItem(1, "world"), []model.CharStats{{Char: "a", Correct: 4, Incorrect: 1}}); err != nil {
		t.Fatalf("insert history: %v", err)
	}
	aggs, err := st.GetWeakChars(ctx, 1)
	if err != nil {
		t.Fatalf("get weak chars: %v", err)
	}
	if len(aggs) != 1 || aggs[0].Char != "a" {
		t.Fatalf("expected only the latest session's chars, got %+v", aggs)
	}
}
