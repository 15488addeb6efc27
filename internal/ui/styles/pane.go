package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderPane renders content inside a rounded border with the title set
// into the top edge: ╭─ Title (hint) ───╮. Lines are padded to width.
func RenderPane(content []string, title, hint string, width int, focused bool) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	if focused {
		borderColor = BorderFocusColor
	}
	b := lipgloss.RoundedBorder()
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(borderColor)
	hintStyle := lipgloss.NewStyle().Foreground(TextMutedColor)

	innerWidth := max(width-2, 1)

	var top strings.Builder
	if title == "" {
		top.WriteString(borderStyle.Render(b.TopLeft + strings.Repeat(b.Top, innerWidth) + b.TopRight))
	} else {
		label := title
		if hint != "" {
			label += " (" + hint + ")"
		}
		dashes := max(innerWidth-lipgloss.Width(label)-3, 0) // "─ " before and " " after

		top.WriteString(borderStyle.Render(b.TopLeft + b.Top + " "))
		top.WriteString(titleStyle.Render(title))
		if hint != "" {
			top.WriteString(" " + hintStyle.Render("("+hint+")"))
		}
		top.WriteString(borderStyle.Render(" " + strings.Repeat(b.Top, dashes) + b.TopRight))
	}

	lines := make([]string, 0, len(content)+2)
	lines = append(lines, top.String())
	for _, row := range content {
		pad := max(innerWidth-lipgloss.Width(row), 0)
		lines = append(lines, borderStyle.Render(b.Left)+row+strings.Repeat(" ", pad)+borderStyle.Render(b.Right))
	}
	lines = append(lines, borderStyle.Render(b.BottomLeft+strings.Repeat(b.Bottom, innerWidth)+b.BottomRight))

	return strings.Join(lines, "\n")
}
