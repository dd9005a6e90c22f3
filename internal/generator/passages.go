package generator

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/typeline/internal/model"
)

// LoadPassages reads one passage per line from path as offline articles.
func LoadPassages(path string) ([]model.Article, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for a read-only file.
			_ = cerr
		}
	}()

	source := filepath.Base(path)
	var articles []model.Article
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		articles = append(articles, model.Article{
			Title:    line,
			Body:     line,
			Source:   source,
			Category: "custom",
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("no passages in %s", path)
	}
	return articles, nil
}
