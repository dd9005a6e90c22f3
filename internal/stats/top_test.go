package stats

import (
	"testing"

	"github.com/verte-zerg/typeline/internal/model"
)

func headlineAggs() []model.CharAggregate {
	return []model.CharAggregate{
		{Char: "t", Correct: 10, Incorrect: 2},
		{Char: " ", Correct: 15, Incorrect: 0},
		{Char: "e", Correct: 9, Incorrect: 3},
		{Char: "z", Correct: 0, Incorrect: 1},
	}
}

func TestTopCharsByFrequency(t *testing.T) {
	top := TopCharsByFrequency(headlineAggs(), 3)
	if len(top) != 3 || top[0] != " " || top[1] != "e" || top[2] != "t" {
		t.Fatalf("unexpected order: %q", top)
	}
	if got := TopCharsByFrequency(headlineAggs(), 0); got != nil {
		t.Fatalf("expected nil for n=0, got %q", got)
	}
	if got := TopCharsByFrequency(headlineAggs(), 10); len(got) != 4 {
		t.Fatalf("expected all 4 chars, got %q", got)
	}
}

func TestFormatTopCharsLabelsSpace(t *testing.T) {
	if got := FormatTopChars(headlineAggs(), 3); got != "<space> e t" {
		t.Fatalf("unexpected top chars %q", got)
	}
	if got := FormatTopChars(nil, 3); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
