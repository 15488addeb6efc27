package diff

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Style controls how segments are drawn.
type Style struct {
	Insert lipgloss.Style
	Delete lipgloss.Style
	Equal  lipgloss.Style
	// Markers wraps changes as {+added+} and [-removed-] so the output
	// reads without color.
	Markers bool
	// Color applies the lipgloss styles. Without it text is written as is.
	Color bool
}

// PlainStyle renders with markers and no color.
func PlainStyle() Style {
	return Style{Markers: true}
}

func (st Style) paint(s lipgloss.Style, text string) string {
	if !st.Color {
		return text
	}
	return s.Render(text)
}

// Render draws segments on one string.
func Render(segs []Segment, st Style) string {
	var b strings.Builder
	for _, s := range segs {
		switch s.Op {
		case Insert:
			text := s.Text
			if st.Markers {
				text = "{+" + text + "+}"
			}
			b.WriteString(st.paint(st.Insert, text))
		case Delete:
			text := s.Text
			if st.Markers {
				text = "[-" + text + "-]"
			}
			b.WriteString(st.paint(st.Delete, text))
		default:
			b.WriteString(st.paint(st.Equal, s.Text))
		}
	}
	return b.String()
}

// Summary returns "+N -M" for a diff.
func Summary(segs []Segment) string {
	ins, del := Stats(segs)
	return fmt.Sprintf("+%d -%d", ins, del)
}

// CachedRenderer memoizes rendered diffs so views that redraw on every
// message do not recompute them.
type CachedRenderer struct {
	style Style
	cache *renderCache
}

// NewCachedRenderer creates a renderer whose results expire after ttl.
func NewCachedRenderer(st Style, ttl time.Duration) *CachedRenderer {
	return &CachedRenderer{style: st, cache: newRenderCache(ttl)}
}

// Render returns the styled word diff from before to after.
func (c *CachedRenderer) Render(before, after string) string {
	return c.cache.lookup(before, after, func() string {
		return Render(Words(before, after), c.style)
	})
}

// SetStyle swaps the style and drops everything rendered with the old one.
func (c *CachedRenderer) SetStyle(st Style) {
	c.style = st
	c.cache.flush()
}

// Len reports the number of cached renders.
func (c *CachedRenderer) Len() int {
	return c.cache.size()
}
