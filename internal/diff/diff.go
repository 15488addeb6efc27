// Package diff computes word-level differences between two snapshots of the
// buffer and renders them for the terminal.
package diff

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxTokens bounds the token alphabet so every token maps to a valid rune
// below the surrogate range.
const maxTokens = 0xD000

// Op is the kind of a diff segment.
type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

func (o Op) String() string {
	switch o {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "equal"
	}
}

// Segment is a run of text with one Op.
type Segment struct {
	Op   Op
	Text string
}

// tokenize splits text into words, single whitespace runes and single
// punctuation or symbol runes.
// Example: "foo.bar baz()" → ["foo", ".", "bar", " ", "baz", "(", ")"]
func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var tokens []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			flush()
			tokens = append(tokens, string(r))
			continue
		}
		current.WriteRune(r)
	}
	flush()

	return tokens
}

// tokenTable assigns one rune per distinct token.
type tokenTable struct {
	index  map[string]rune
	tokens []string
}

func (tt *tokenTable) encode(tokens []string) ([]rune, bool) {
	out := make([]rune, len(tokens))
	for i, tok := range tokens {
		r, ok := tt.index[tok]
		if !ok {
			if len(tt.tokens) >= maxTokens {
				return nil, false
			}
			r = rune(len(tt.tokens))
			tt.index[tok] = r
			tt.tokens = append(tt.tokens, tok)
		}
		out[i] = r
	}
	return out, true
}

func (tt *tokenTable) decode(text string) string {
	var b strings.Builder
	for _, r := range text {
		b.WriteString(tt.tokens[r])
	}
	return b.String()
}

// Words returns the word-level diff that turns before into after.
// Very large inputs fall back to a character diff.
func Words(before, after string) []Segment {
	if before == after {
		if before == "" {
			return nil
		}
		return []Segment{{Op: Equal, Text: before}}
	}

	dmp := diffmatchpatch.New()
	tt := &tokenTable{index: make(map[string]rune)}
	a, okA := tt.encode(tokenize(before))
	b, okB := tt.encode(tokenize(after))
	if !okA || !okB {
		diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))
		return toSegments(diffs, func(s string) string { return s })
	}

	diffs := dmp.DiffMainRunes(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return toSegments(diffs, tt.decode)
}

func toSegments(diffs []diffmatchpatch.Diff, decode func(string) string) []Segment {
	segs := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		text := decode(d.Text)
		if text == "" {
			continue
		}
		var op Op
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = Insert
		case diffmatchpatch.DiffDelete:
			op = Delete
		default:
			op = Equal
		}
		// Merge with the previous segment when decoding made them adjacent.
		if n := len(segs); n > 0 && segs[n-1].Op == op {
			segs[n-1].Text += text
			continue
		}
		segs = append(segs, Segment{Op: op, Text: text})
	}
	return segs
}

// Stats counts inserted and deleted runes.
func Stats(segs []Segment) (inserted, deleted int) {
	for _, s := range segs {
		n := len([]rune(s.Text))
		switch s.Op {
		case Insert:
			inserted += n
		case Delete:
			deleted += n
		}
	}
	return inserted, deleted
}

// Before reassembles the original text from a diff.
func Before(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Op != Insert {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// After reassembles the resulting text from a diff.
func After(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Op != Delete {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
