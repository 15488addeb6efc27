// Package markdown renders markdown for the help overlay.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/undopad/internal/log"
)

// noMarginStyle removes document margins so the output fits inside a pane.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps a glamour renderer for a fixed width.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a markdown renderer with the given word wrap width.
func New(width int) (*Renderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output. On failure the
// source is returned unchanged so the help stays readable.
func (r *Renderer) Render(md string) string {
	out, err := r.renderer.Render(md)
	if err != nil {
		log.ErrorErr(log.CatUI, "Markdown render failed", err)
		return md
	}
	return strings.Trim(out, "\n")
}
