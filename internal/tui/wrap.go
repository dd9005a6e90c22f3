package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// wrongSpaceMark replaces a space that was typed as something else.
const wrongSpaceMark = '•'

// glyph is one rendered target rune.
type glyph struct {
	s     string
	width int
	space bool
}

// span is a half-open rune range of one word in the target.
type span struct {
	start, end int
}

func (s span) contains(i int) bool { return i >= s.start && i < s.end }

// styleTarget renders target against input. cursor is the next rune to
// type, or -1 once the text is complete. While paused, untyped text is
// dimmed and the cursor hidden.
func styleTarget(target, input []rune, cursor int, paused bool) []glyph {
	active, hasActive := activeWord(wordSpans(target), cursor)

	out := make([]glyph, len(target))
	for i, want := range target {
		shown := want
		var style lipgloss.Style
		switch {
		case i < len(input) && want == ' ' && input[i] != ' ':
			shown, style = wrongSpaceMark, incorrectStyle
		case i < len(input) && input[i] == want:
			style = correctStyle
		case i < len(input):
			style = incorrectStyle
		case paused:
			style = pausedTextStyle
		case want != ' ' && hasActive && active.contains(i):
			style = currentWordStyle
		default:
			style = pendingStyle
		}
		if i == cursor && i >= len(input) && !paused {
			style = style.Underline(true)
		}
		out[i] = glyph{
			s:     style.Render(string(shown)),
			width: runewidth.RuneWidth(shown),
			space: want == ' ',
		}
	}
	return out
}

func wordSpans(target []rune) []span {
	var spans []span
	start := -1
	for i, r := range target {
		switch {
		case r != ' ' && start < 0:
			start = i
		case r == ' ' && start >= 0:
			spans = append(spans, span{start, i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(target)})
	}
	return spans
}

// activeWord is the word holding cursor, or the next word after it. A
// finished text highlights its last word, a negative cursor its first.
func activeWord(spans []span, cursor int) (span, bool) {
	if len(spans) == 0 {
		return span{}, false
	}
	if cursor < 0 {
		return spans[0], true
	}
	for _, s := range spans {
		if cursor < s.end {
			return s, true
		}
	}
	return spans[len(spans)-1], true
}

// wrapGlyphs lays glyphs out in lines of at most width cells, breaking
// between words. A space that would overflow a line is dropped and words
// longer than a line are split.
func wrapGlyphs(glyphs []glyph, width int) string {
	if width <= 0 {
		return joinGlyphs(glyphs)
	}
	var lines []string
	var line []glyph
	lineWidth := 0
	flush := func() {
		lines = append(lines, joinGlyphs(line))
		line, lineWidth = nil, 0
	}

	for i := 0; i < len(glyphs); {
		if glyphs[i].space {
			if lineWidth+glyphs[i].width > width {
				flush()
			} else {
				line = append(line, glyphs[i])
				lineWidth += glyphs[i].width
			}
			i++
			continue
		}
		end := i
		wordWidth := 0
		for end < len(glyphs) && !glyphs[end].space {
			wordWidth += glyphs[end].width
			end++
		}
		if lineWidth > 0 && lineWidth+wordWidth > width {
			flush()
		}
		for _, g := range glyphs[i:end] {
			if lineWidth > 0 && lineWidth+g.width > width {
				flush()
			}
			line = append(line, g)
			lineWidth += g.width
		}
		i = end
	}
	if len(line) > 0 || len(lines) == 0 {
		flush()
	}
	return strings.Join(lines, "\n")
}

func joinGlyphs(glyphs []glyph) string {
	var b strings.Builder
	for _, g := range glyphs {
		b.WriteString(g.s)
	}
	return b.String()
}
