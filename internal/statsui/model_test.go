package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typeline/internal/model"
)

type fakeSource struct {
	items []model.HistoryItem
	aggs  []model.CharAggregate
	byID  map[string][]model.CharAggregate
	err   error
}

func (f *fakeSource) ListHistory(_ context.Context, _ model.StatsConfig) ([]model.HistoryItem, error) {
	return f.items, f.err
}

func (f *fakeSource) ListCharAggregates(_ context.Context, ids []string) ([]model.CharAggregate, error) {
	if f.byID == nil {
		return f.aggs, nil
	}
	var out []model.CharAggregate
	for _, id := range ids {
		out = append(out, f.byID[id]...)
	}
	return out, nil
}

func sampleSource() *fakeSource {
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	return &fakeSource{
		items: []model.HistoryItem{
			{ID: "a", WPM: 40, CPM: 200, Accuracy: 90, CompletedAt: base, Article: model.ArticleRef{Title: "Rates hold", Category: "business"}},
			{ID: "b", WPM: 60, CPM: 300, Accuracy: 98, CompletedAt: base.Add(time.Hour), Article: model.ArticleRef{Title: "Lander touches down", Category: "science"}},
		},
		aggs: []model.CharAggregate{
			{Char: "q", Correct: 1, Incorrect: 3},
			{Char: "e", Correct: 20, Incorrect: 1},
		},
	}
}

func resize(m *Model, w, h int) {
	m.Update(tea.WindowSizeMsg{Width: w, Height: h})
}

func TestOverviewShowsSummaryCards(t *testing.T) {
	m := NewModel(sampleSource(), model.StatsConfig{CurveWindow: 1})
	resize(m, 100, 30)
	view := m.View()
	for _, want := range []string{"Overview", "Sessions", "Best WPM", "60.0", "Learning Curves"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestTabsCycleThroughHistoryAndKeys(t *testing.T) {
	m := NewModel(sampleSource(), model.StatsConfig{CurveWindow: 1})
	resize(m, 100, 30)

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabHistory {
		t.Fatalf("expected history tab, got %d", m.activeTab)
	}
	if view := m.View(); !strings.Contains(view, "Lander touches down") {
		t.Fatalf("expected headline in history view:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.activeTab != tabKeys {
		t.Fatalf("expected keys tab, got %d", m.activeTab)
	}
	rows := m.tables[tabKeys].Rows()
	if len(rows) != 2 || rows[0][0] != "q" {
		t.Fatalf("expected weakest key first, got %v", rows)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabOverview {
		t.Fatalf("expected wrap to overview, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabKeys {
		t.Fatalf("expected wrap back to keys, got %d", m.activeTab)
	}
}

func TestLoadErrorIsShown(t *testing.T) {
	m := NewModel(&fakeSource{err: errors.New("disk gone")}, model.StatsConfig{})
	resize(m, 80, 20)
	if view := m.View(); !strings.Contains(view, "disk gone") {
		t.Fatalf("expected error in footer:\n%s", view)
	}
}

func TestEmptyHistory(t *testing.T) {
	m := NewModel(&fakeSource{}, model.StatsConfig{})
	resize(m, 80, 20)
	if view := m.View(); !strings.Contains(view, "No sessions found.") {
		t.Fatalf("expected empty message:\n%s", view)
	}
}

func TestQuitKeys(t *testing.T) {
	m := NewModel(&fakeSource{}, model.StatsConfig{})
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("expected quit command for %q", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("expected quit message for %q", key.String())
		}
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if got := nextCurveWindow(1); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := nextCurveWindow(7); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := prevCurveWindow(10); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := prevCurveWindow(5); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestCurveWindowChangesKeyTable(t *testing.T) {
	src := sampleSource()
	src.byID = map[string][]model.CharAggregate{
		"a": {{Char: "q", Correct: 1, Incorrect: 3}},
		"b": {{Char: "e", Correct: 20, Incorrect: 1}, {Char: " ", Correct: 30}},
	}
	m := NewModel(src, model.StatsConfig{CurveWindow: 1})
	resize(m, 100, 30)
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.activeTab != tabKeys {
		t.Fatalf("expected keys tab, got %d", m.activeTab)
	}

	rows := m.tables[tabKeys].Rows()
	if len(rows) != 2 {
		t.Fatalf("expected keys of the last session only, got %v", rows)
	}
	view := m.View()
	if !strings.Contains(view, "Last 1 sessions. Most typed: <space> e") {
		t.Fatalf("expected window summary in view:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	if m.cfg.CurveWindow != 5 {
		t.Fatalf("expected window 5, got %d", m.cfg.CurveWindow)
	}
	rows = m.tables[tabKeys].Rows()
	if len(rows) != 3 || rows[0][0] != "q" {
		t.Fatalf("expected both sessions with weakest key first, got %v", rows)
	}
	if view := m.View(); !strings.Contains(view, "Last 2 sessions.") {
		t.Fatalf("expected widened window in view:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	if rows := m.tables[tabKeys].Rows(); len(rows) != 2 {
		t.Fatalf("expected narrowed key table, got %v", rows)
	}
}
