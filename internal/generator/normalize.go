package generator

import (
	"strings"
	"unicode"
)

var typographic = strings.NewReplacer(
	"\u2018", "'",
	"\u2019", "'",
	"\u201a", "'",
	"\u2032", "'",
	"\u201c", "\"",
	"\u201d", "\"",
	"\u201e", "\"",
	"\u2033", "\"",
	"\u2013", "-",
	"\u2014", "-",
	"\u2212", "-",
	"\u2026", "...",
	"\u00a0", " ",
	"\u202f", " ",
	"\u200b", "",
)

// Normalize maps typographic punctuation to keys found on a standard keyboard,
// drops control characters and collapses whitespace.
func Normalize(text string) string {
	text = typographic.Replace(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
