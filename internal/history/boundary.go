package history

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// boundaryWindow bounds how much of the buffer tail is segmented when
// looking for the last grapheme cluster. Real clusters are far shorter.
const boundaryWindow = 128

// IsWordBoundary reports whether content ends at a word boundary: its last
// grapheme cluster starts with whitespace or a non-word rune. Word runes
// are letters, digits, combining marks and '_'. Empty content is not a
// boundary.
func IsWordBoundary(content string) bool {
	last := lastGrapheme(content)
	if last == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(last)
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' ||
		unicode.IsLetter(r) ||
		unicode.IsDigit(r) ||
		unicode.Is(unicode.Mn, r) ||
		unicode.Is(unicode.Mc, r)
}

// lastGrapheme returns the final user-perceived character of s.
func lastGrapheme(s string) string {
	if len(s) > boundaryWindow {
		start := len(s) - boundaryWindow
		for start < len(s) && !utf8.RuneStart(s[start]) {
			start++
		}
		s = s[start:]
	}

	var last string
	state := -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		last = cluster
	}
	return last
}

// TrimLastGrapheme removes the final user-perceived character of s, the
// way a backspace does.
func TrimLastGrapheme(s string) string {
	last := lastGrapheme(s)
	return s[:len(s)-len(last)]
}
