package editor

import (
	"fmt"
	"strings"

	"github.com/zjrosen/undopad/internal/keys"
	"github.com/zjrosen/undopad/internal/ui/markdown"
	"github.com/zjrosen/undopad/internal/ui/styles"
)

const helpPaneWidth = 56

// helpMarkdown lists the active bindings followed by the checkpoint rules.
func helpMarkdown(km keys.KeyMap) string {
	var b strings.Builder
	b.WriteString("| Key | Action |\n|---|---|\n")
	for _, group := range km.FullHelp() {
		for _, kb := range group {
			h := kb.Help()
			if h.Key == "" {
				continue
			}
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	b.WriteString("\n")
	b.WriteString("Typing a space or punctuation saves the text before it. ")
	b.WriteString("A pause in typing saves after the debounce delay. ")
	b.WriteString("Backspace saves the text it is about to change.\n")
	return b.String()
}

// renderHelp draws the help pane, rendering markdown with r when present.
func renderHelp(km keys.KeyMap, r *markdown.Renderer) string {
	md := helpMarkdown(km)
	body := md
	if r != nil {
		body = r.Render(md)
	}
	return styles.RenderPane(strings.Split(body, "\n"), "Help", "esc", helpPaneWidth, true)
}
