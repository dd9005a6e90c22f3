package tui

import "testing"

func TestStyleTargetMarksTypedRunes(t *testing.T) {
	glyphs := styleTarget([]rune("ab cd"), []rune("ax"), 2, false)
	if len(glyphs) != 5 {
		t.Fatalf("expected 5 glyphs, got %d", len(glyphs))
	}
	want := []string{
		correctStyle.Render("a"),
		incorrectStyle.Render("b"),
		cursorStyle.Render(" "),
		currentWordStyle.Render("c"),
		currentWordStyle.Render("d"),
	}
	for i, w := range want {
		if glyphs[i].s != w {
			t.Fatalf("glyph %d: expected %q, got %q", i, w, glyphs[i].s)
		}
	}
	if !glyphs[2].space || glyphs[3].space {
		t.Fatalf("unexpected space flags %+v", glyphs)
	}
}

func TestStyleTargetWrongSpaceMark(t *testing.T) {
	glyphs := styleTarget([]rune("a b"), []rune("ax"), 2, false)
	if glyphs[1].s != incorrectStyle.Render(string(wrongSpaceMark)) {
		t.Fatalf("expected mark for mistyped space, got %q", glyphs[1].s)
	}
	if !glyphs[1].space || glyphs[1].width != 1 {
		t.Fatalf("mark must keep the space layout, got %+v", glyphs[1])
	}
}

func TestStyleTargetCompleteHasNoCursor(t *testing.T) {
	glyphs := styleTarget([]rune("go"), []rune("go"), -1, false)
	for i, g := range glyphs {
		if g.s != correctStyle.Render(string("go"[i])) {
			t.Fatalf("glyph %d: unexpected %q", i, g.s)
		}
	}
}

func TestStyleTargetDimsWhilePaused(t *testing.T) {
	glyphs := styleTarget([]rune("one two"), []rune("o"), 1, true)
	if glyphs[0].s != correctStyle.Render("o") {
		t.Fatalf("typed rune must keep its style, got %q", glyphs[0].s)
	}
	for i := 1; i < len(glyphs); i++ {
		want := pausedTextStyle.Render(string("one two"[i]))
		if glyphs[i].s != want {
			t.Fatalf("glyph %d: expected dimmed %q, got %q", i, want, glyphs[i].s)
		}
	}
}

func plainGlyphs(s string) []glyph {
	var out []glyph
	for _, r := range s {
		g := glyph{s: string(r), width: 1, space: r == ' '}
		if r > 0x2E7F {
			g.width = 2
		}
		out = append(out, g)
	}
	return out
}

func TestWrapGlyphs(t *testing.T) {
	cases := []struct {
		text  string
		width int
		want  string
	}{
		{"hello world", 7, "hello \nworld"},
		{"hello world", 5, "hello\nworld"},
		{"hello world", 0, "hello world"},
		{"東京 rally", 4, "東京\nrall\ny"},
		{"", 5, ""},
	}
	for _, tc := range cases {
		if got := wrapGlyphs(plainGlyphs(tc.text), tc.width); got != tc.want {
			t.Fatalf("wrap %q at %d: expected %q, got %q", tc.text, tc.width, tc.want, got)
		}
	}
}

func TestWordSpansAndActiveWord(t *testing.T) {
	spans := wordSpans([]rune(" ab  cd"))
	if len(spans) != 2 || spans[0] != (span{1, 3}) || spans[1] != (span{5, 7}) {
		t.Fatalf("unexpected spans %+v", spans)
	}
	cases := map[int]span{-1: {1, 3}, 0: {1, 3}, 2: {1, 3}, 3: {5, 7}, 9: {5, 7}}
	for cursor, want := range cases {
		got, ok := activeWord(spans, cursor)
		if !ok || got != want {
			t.Fatalf("cursor %d: expected %+v, got %+v", cursor, want, got)
		}
	}
	if _, ok := activeWord(nil, 0); ok {
		t.Fatalf("expected no active word without words")
	}
}
