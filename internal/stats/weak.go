package stats

import (
	"sort"
	"unicode"

	"github.com/verte-zerg/typeline/internal/model"
)

// minWeakSamples is the number of keystrokes a character needs before it can be weak.
const minWeakSamples = 3

// SelectWeakChars selects the lowest-accuracy letters and digits from aggregates.
func SelectWeakChars(aggs []model.CharAggregate, top int) map[rune]struct{} {
	weakSet := map[rune]struct{}{}
	candidates := make([]model.CharAggregate, 0, len(aggs))
	for _, agg := range aggs {
		runes := []rune(agg.Char)
		if len(runes) != 1 {
			continue
		}
		if !unicode.IsLetter(runes[0]) && !unicode.IsDigit(runes[0]) {
			continue
		}
		if agg.Correct+agg.Incorrect < minWeakSamples {
			continue
		}
		candidates = append(candidates, agg)
	}
	if len(candidates) == 0 {
		return weakSet
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := accuracy(candidates[i])
		aj := accuracy(candidates[j])
		if ai == aj {
			return candidates[i].Char < candidates[j].Char
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	for i := 0; i < top; i++ {
		weakSet[unicode.ToLower([]rune(candidates[i].Char)[0])] = struct{}{}
	}
	return weakSet
}

func accuracy(agg model.CharAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
