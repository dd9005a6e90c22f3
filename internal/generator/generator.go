// Package generator builds practice text from articles.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/verte-zerg/typeline/internal/model"
)

// Generator picks articles and turns them into typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeeded returns a deterministic Generator.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Pick selects an article uniformly. It returns false when none is usable for mode.
func (g *Generator) Pick(articles []model.Article, mode string) (model.Article, bool) {
	usable := usableArticles(articles, mode)
	if len(usable) == 0 {
		return model.Article{}, false
	}
	return usable[g.rnd.Intn(len(usable))], true
}

// PickWeighted selects an article with a bias toward texts rich in weak characters.
func (g *Generator) PickWeighted(articles []model.Article, mode string, weakSet map[rune]struct{}, factor float64) (model.Article, bool) {
	usable := usableArticles(articles, mode)
	if len(usable) == 0 {
		return model.Article{}, false
	}
	if len(weakSet) == 0 {
		return usable[g.rnd.Intn(len(usable))], true
	}
	weights := make([]float64, len(usable))
	total := 0.0
	for i, article := range usable {
		text := TextFor(article, mode, 0)
		weakCount := 0
		for _, r := range text {
			if _, ok := weakSet[unicode.ToLower(r)]; ok {
				weakCount++
			}
		}
		density := float64(weakCount) / float64(len([]rune(text)))
		w := 1.0 + density*factor*10
		weights[i] = w
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return usable[i], true
		}
	}
	return usable[len(usable)-1], true
}

// TextFor builds the typing text of an article for mode, truncated to maxWords when > 0.
func TextFor(article model.Article, mode string, maxWords int) string {
	raw := article.Title
	if mode == model.ModeArticle {
		switch {
		case strings.TrimSpace(article.Body) != "":
			raw = article.Body
		case strings.TrimSpace(article.Description) != "":
			raw = article.Description
		}
	}
	words := strings.Fields(Normalize(raw))
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}

// Ref returns the history metadata for an article of the given kind.
func Ref(article model.Article, kind string) model.ArticleRef {
	return model.ArticleRef{
		Title:    article.Title,
		Source:   article.Source,
		URL:      article.URL,
		Category: strings.ToLower(article.Category),
		Kind:     kind,
	}
}

func usableArticles(articles []model.Article, mode string) []model.Article {
	out := make([]model.Article, 0, len(articles))
	for _, article := range articles {
		if TextFor(article, mode, 0) == "" {
			continue
		}
		out = append(out, article)
	}
	return out
}
