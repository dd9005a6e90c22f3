package practice

import (
	"context"
	"errors"
	"testing"

	"github.com/verte-zerg/typeline/internal/generator"
	"github.com/verte-zerg/typeline/internal/model"
)

type fakeContent struct {
	news      []model.Article
	editorial []model.Article
	digest    model.Digest
	lastCat   string
}

func (f *fakeContent) Articles(_ context.Context, category string) []model.Article {
	f.lastCat = category
	return f.news
}

func (f *fakeContent) Editorial(_ context.Context, category string) []model.Article {
	f.lastCat = category
	return f.editorial
}

func (f *fakeContent) Yesterday(_ context.Context, category string) model.Digest {
	f.lastCat = category
	return f.digest
}

type fakeWeak struct {
	aggs []model.CharAggregate
	err  error
}

func (f fakeWeak) GetWeakChars(context.Context, int) ([]model.CharAggregate, error) {
	return f.aggs, f.err
}

func TestNextUsesSourceKind(t *testing.T) {
	content := &fakeContent{
		news:      []model.Article{{Title: "News headline", Category: "world"}},
		editorial: []model.Article{{Title: "Editorial headline", Category: "world"}},
		digest:    model.Digest{Articles: []model.Article{{Title: "Digest headline", Category: "world"}}},
	}
	tests := []struct {
		source string
		want   string
	}{
		{source: model.KindNews, want: "News headline"},
		{source: model.KindEditorial, want: "Editorial headline"},
		{source: model.KindYesterday, want: "Digest headline"},
	}
	for _, tt := range tests {
		cfg := model.Config{Source: tt.source, Mode: model.ModeHeadline, Category: "world"}
		p := NewPicker(cfg, content, nil, generator.NewSeeded(1), nil, nil)
		text, err := p.Next(context.Background())
		if err != nil {
			t.Fatalf("%s: next: %v", tt.source, err)
		}
		if text.Body != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.source, tt.want, text.Body)
		}
		if text.Ref.Kind != tt.source {
			t.Fatalf("%s: unexpected kind %q", tt.source, text.Ref.Kind)
		}
		if content.lastCat != "world" {
			t.Fatalf("%s: category not passed through", tt.source)
		}
	}
}

func TestNextPrefersPassages(t *testing.T) {
	content := &fakeContent{news: []model.Article{{Title: "From the wire"}}}
	passages := []model.Article{{Title: "Local passage", Body: "Local passage", Category: "custom"}}
	p := NewPicker(model.Config{Mode: model.ModeHeadline}, content, nil, generator.NewSeeded(1), passages, nil)
	text, err := p.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if text.Body != "Local passage" || text.Ref.Kind != model.KindFile {
		t.Fatalf("unexpected text %+v", text)
	}
}

func TestNextWithoutArticles(t *testing.T) {
	p := NewPicker(model.Config{Mode: model.ModeHeadline}, &fakeContent{}, nil, generator.NewSeeded(1), nil, nil)
	if _, err := p.Next(context.Background()); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestNextFocusWeakFallsBackOnError(t *testing.T) {
	content := &fakeContent{news: []model.Article{{Title: "Only one"}}}
	cfg := model.Config{Mode: model.ModeHeadline, FocusWeak: true, WeakTop: 3, WeakFactor: 1, WeakWindow: 10}
	p := NewPicker(cfg, content, fakeWeak{err: errors.New("db locked")}, generator.NewSeeded(1), nil, nil)
	text, err := p.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if text.Body != "Only one" {
		t.Fatalf("unexpected body %q", text.Body)
	}
}

func TestNextFocusWeakBiasesPick(t *testing.T) {
	content := &fakeContent{news: []model.Article{
		{Title: "zzz zzz zzz"},
		{Title: "abc def ghi"},
	}}
	weak := fakeWeak{aggs: []model.CharAggregate{
		{Char: "z", Correct: 1, Incorrect: 9},
		{Char: "a", Correct: 10, Incorrect: 0},
	}}
	cfg := model.Config{Mode: model.ModeHeadline, FocusWeak: true, WeakTop: 1, WeakFactor: 2, WeakWindow: 10}
	p := NewPicker(cfg, content, weak, generator.NewSeeded(7), nil, nil)
	hits := 0
	for i := 0; i < 200; i++ {
		text, err := p.Next(context.Background())
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if text.Body == "zzz zzz zzz" {
			hits++
		}
	}
	if hits < 150 {
		t.Fatalf("expected weak-char text to dominate, got %d/200", hits)
	}
}
