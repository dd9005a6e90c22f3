package stats

import (
	"sort"
	"strings"

	"github.com/verte-zerg/typeline/internal/model"
)

// TopCharsByFrequency returns the n most typed characters, most frequent first.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := make([]model.CharAggregate, len(aggs))
	copy(sorted, aggs)
	sort.Slice(sorted, func(i, j int) bool {
		ti := sorted[i].Correct + sorted[i].Incorrect
		tj := sorted[j].Correct + sorted[j].Incorrect
		if ti == tj {
			return sorted[i].Char < sorted[j].Char
		}
		return ti > tj
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]string, 0, n)
	for _, agg := range sorted[:n] {
		out = append(out, agg.Char)
	}
	return out
}

// FormatTopChars lists the n most typed characters separated by spaces.
func FormatTopChars(aggs []model.CharAggregate, n int) string {
	top := TopCharsByFrequency(aggs, n)
	for i, ch := range top {
		if ch == " " {
			top[i] = "<space>"
		}
	}
	return strings.Join(top, " ")
}
