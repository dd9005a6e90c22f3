// Package practice chooses the next text to type.
package practice

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/verte-zerg/typeline/internal/generator"
	"github.com/verte-zerg/typeline/internal/model"
	"github.com/verte-zerg/typeline/internal/stats"
)

// ErrNoText is returned when no article yields typeable text.
var ErrNoText = errors.New("no practice text available")

// Text is one practice target and the article it came from.
type Text struct {
	Body string
	Ref  model.ArticleRef
}

// ContentSource serves articles by kind and category.
type ContentSource interface {
	Articles(ctx context.Context, category string) []model.Article
	Editorial(ctx context.Context, category string) []model.Article
	Yesterday(ctx context.Context, category string) model.Digest
}

// WeakSource reports recent per-character stats.
type WeakSource interface {
	GetWeakChars(ctx context.Context, window int) ([]model.CharAggregate, error)
}

// Picker picks practice texts from content or from local passages.
type Picker struct {
	cfg      model.Config
	content  ContentSource
	weak     WeakSource
	gen      *generator.Generator
	passages []model.Article
	log      *zap.Logger
}

// NewPicker returns a Picker. When passages is non-empty the content
// source is not consulted.
func NewPicker(cfg model.Config, content ContentSource, weak WeakSource, gen *generator.Generator, passages []model.Article, log *zap.Logger) *Picker {
	if gen == nil {
		gen = generator.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Picker{cfg: cfg, content: content, weak: weak, gen: gen, passages: passages, log: log}
}

// Next returns a new practice text.
func (p *Picker) Next(ctx context.Context) (Text, error) {
	articles, kind := p.articles(ctx)
	if len(articles) == 0 {
		return Text{}, ErrNoText
	}

	var (
		article model.Article
		ok      bool
	)
	if weakSet := p.weakSet(ctx); len(weakSet) > 0 {
		article, ok = p.gen.PickWeighted(articles, p.cfg.Mode, weakSet, p.cfg.WeakFactor)
	} else {
		article, ok = p.gen.Pick(articles, p.cfg.Mode)
	}
	if !ok {
		return Text{}, ErrNoText
	}
	body := generator.TextFor(article, p.cfg.Mode, p.cfg.MaxWords)
	if body == "" {
		return Text{}, fmt.Errorf("%w: article %q is empty", ErrNoText, article.Title)
	}
	return Text{Body: body, Ref: generator.Ref(article, kind)}, nil
}

func (p *Picker) articles(ctx context.Context) ([]model.Article, string) {
	if len(p.passages) > 0 {
		return p.passages, model.KindFile
	}
	if p.content == nil {
		return nil, ""
	}
	switch p.cfg.Source {
	case model.KindEditorial:
		return p.content.Editorial(ctx, p.cfg.Category), model.KindEditorial
	case model.KindYesterday:
		return p.content.Yesterday(ctx, p.cfg.Category).Articles, model.KindYesterday
	default:
		return p.content.Articles(ctx, p.cfg.Category), model.KindNews
	}
}

func (p *Picker) weakSet(ctx context.Context) map[rune]struct{} {
	if !p.cfg.FocusWeak || p.weak == nil {
		return nil
	}
	aggs, err := p.weak.GetWeakChars(ctx, p.cfg.WeakWindow)
	if err != nil {
		p.log.Warn("failed to load weak chars", zap.Error(err))
		return nil
	}
	if len(aggs) == 0 {
		p.log.Info("no stats available for weak-char focus yet; using uniform pick")
		return nil
	}
	return stats.SelectWeakChars(aggs, p.cfg.WeakTop)
}
