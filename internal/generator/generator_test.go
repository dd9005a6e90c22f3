package generator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/typeline/internal/model"
)

func TestNormalizeTypography(t *testing.T) {
	got := Normalize("It’s “big” — really…\n\tnext line")
	want := `It's "big" - really... next line`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTextForModes(t *testing.T) {
	article := model.Article{
		Title:       "Rates hold steady",
		Description: "The central bank kept rates unchanged on Tuesday",
	}
	if got := TextFor(article, model.ModeHeadline, 0); got != "Rates hold steady" {
		t.Fatalf("unexpected headline text %q", got)
	}
	if got := TextFor(article, model.ModeArticle, 4); got != "The central bank kept" {
		t.Fatalf("unexpected article text %q", got)
	}
	article.Description = ""
	if got := TextFor(article, model.ModeArticle, 0); got != "Rates hold steady" {
		t.Fatalf("expected title fallback, got %q", got)
	}
}

func TestPickSkipsEmptyTexts(t *testing.T) {
	g := NewSeeded(1)
	articles := []model.Article{{Title: "   "}, {Title: "Usable"}}
	for i := 0; i < 10; i++ {
		got, ok := g.Pick(articles, model.ModeHeadline)
		if !ok || got.Title != "Usable" {
			t.Fatalf("unexpected pick %+v %v", got, ok)
		}
	}
	if _, ok := g.Pick([]model.Article{{Title: ""}}, model.ModeHeadline); ok {
		t.Fatalf("expected no pick")
	}
}

func TestPickWeightedPrefersWeakChars(t *testing.T) {
	g := NewSeeded(42)
	articles := []model.Article{
		{Title: "zzz zzz zzz"},
		{Title: "abc def ghi"},
	}
	weak := map[rune]struct{}{'z': {}}
	hits := 0
	for i := 0; i < 200; i++ {
		got, ok := g.PickWeighted(articles, model.ModeHeadline, weak, 2.0)
		if !ok {
			t.Fatalf("expected a pick")
		}
		if got.Title == "zzz zzz zzz" {
			hits++
		}
	}
	if hits < 150 {
		t.Fatalf("expected weighted pick to favor weak text, got %d/200", hits)
	}
}

func TestLoadPassages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passages.txt")
	content := "# comment\nFirst passage\n\n  Second passage  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write passages: %v", err)
	}
	articles, err := LoadPassages(path)
	if err != nil {
		t.Fatalf("load passages: %v", err)
	}
	if len(articles) != 2 || articles[1].Title != "Second passage" {
		t.Fatalf("unexpected passages %+v", articles)
	}
	if articles[0].Source != "passages.txt" {
		t.Fatalf("unexpected source %q", articles[0].Source)
	}
}

func TestLoadPassagesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("\n# only comments\n"), 0o644); err != nil {
		t.Fatalf("write passages: %v", err)
	}
	if _, err := LoadPassages(path); err == nil {
		t.Fatalf("expected error for empty file")
	}
}
