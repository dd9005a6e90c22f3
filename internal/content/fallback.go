package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/typeline/internal/model"
)

//go:embed data/*.json
var fallbackFS embed.FS

type fallbackData struct {
	articles  []model.Article
	editorial []model.Article
	yesterday model.Digest
}

func loadFallback() (fallbackData, error) {
	var fb fallbackData
	if err := decodeEmbedded("data/articles.json", &fb.articles); err != nil {
		return fallbackData{}, err
	}
	if err := decodeEmbedded("data/editorial.json", &fb.editorial); err != nil {
		return fallbackData{}, err
	}
	if err := decodeEmbedded("data/yesterday.json", &fb.yesterday); err != nil {
		return fallbackData{}, err
	}
	return fb, nil
}

func decodeEmbedded(name string, target any) error {
	data, err := fallbackFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

// MatchCategory reports whether an article category satisfies the filter.
// An empty filter or "all" matches everything.
func MatchCategory(articleCategory, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, "all") {
		return true
	}
	return strings.EqualFold(articleCategory, filter)
}

func filterArticles(articles []model.Article, category string) []model.Article {
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if MatchCategory(a.Category, category) {
			out = append(out, a)
		}
	}
	return out
}

func categoriesOf(groups ...[]model.Article) []string {
	seen := map[string]struct{}{}
	for _, group := range groups {
		for _, a := range group {
			if c := strings.ToLower(strings.TrimSpace(a.Category)); c != "" {
				seen[c] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
