package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/undopad/internal/diff"
	"github.com/zjrosen/undopad/internal/history"
	"github.com/zjrosen/undopad/internal/ui/styles"
)

const (
	historyPaneMaxWidth = 48
	historyPaneMinWidth = 24
	historyPaneMaxRows  = 8 // per stack
)

// historyPaneWidth sizes the pane for a terminal of the given width.
func historyPaneWidth(termWidth int) int {
	return max(min(termWidth/2, historyPaneMaxWidth), historyPaneMinWidth)
}

// preview flattens s onto one line and cuts it to width cells.
func preview(s string, width int) string {
	if s == "" {
		return styles.HelpStyle.Render("(empty)")
	}
	flat := strings.NewReplacer("\n", "⏎", "\t", "→").Replace(s)
	return runewidth.Truncate(flat, width, "…")
}

// renderHistoryPane draws both stacks and a word diff of the newest
// checkpoint against the buffer.
func renderHistoryPane(st history.State, diffs *diff.CachedRenderer, width int) string {
	inner := width - 2
	entryWidth := inner - 5 // "  12 " prefix

	var rows []string
	rows = append(rows, styles.StackLabelStyle.Render(fmt.Sprintf("Undo (%d)", len(st.Undo))))
	rows = append(rows, stackRows(newestLast(st.Undo), entryWidth)...)

	rows = append(rows, "", styles.StackLabelStyle.Render(fmt.Sprintf("Redo (%d)", len(st.Redo))))
	rows = append(rows, stackRows(st.Redo, entryWidth)...)

	rows = append(rows, "", styles.StackLabelStyle.Render("Since last checkpoint"))
	var top string
	if n := len(st.Undo); n > 0 {
		top = st.Undo[n-1]
	}
	if top == st.Content {
		rows = append(rows, styles.HelpStyle.Render("no changes"))
	} else {
		rendered := diffs.Render(top, st.Content)
		for _, line := range strings.Split(wordwrap.String(rendered, inner), "\n") {
			rows = append(rows, ansi.Truncate(line, inner, ""))
		}
	}

	hint := "pending"
	if !st.Pending {
		hint = "idle"
	}
	return styles.RenderPane(rows, "History", hint, width, false)
}

// newestLast keeps the last historyPaneMaxRows entries of an oldest-first
// stack.
func newestLast(undo []string) []string {
	if len(undo) > historyPaneMaxRows {
		return undo[len(undo)-historyPaneMaxRows:]
	}
	return undo
}

func stackRows(entries []string, width int) []string {
	if len(entries) == 0 {
		return []string{styles.HelpStyle.Render("  —")}
	}
	if len(entries) > historyPaneMaxRows {
		entries = entries[:historyPaneMaxRows]
	}
	rows := make([]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, fmt.Sprintf("  %2d ", i+1)+styles.StackEntryStyle.Render(preview(e, width)))
	}
	return rows
}
