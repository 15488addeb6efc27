package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/undopad/internal/ui/overlay"
	"github.com/zjrosen/undopad/internal/ui/styles"
)

// View implements tea.Model.
func (m Model) View() string {
	sections := []string{styles.EditorBorderStyle.Render(m.textarea.View())}
	if m.cfg.UI.ShowButtons {
		sections = append(sections, m.renderButtons())
	}
	if m.cfg.UI.ShowStatusBar {
		sections = append(sections, m.renderStatusBar())
	}
	sections = append(sections, m.help.View(m.keys))

	view := lipgloss.JoinVertical(lipgloss.Left, sections...)

	switch {
	case m.showHelp:
		view = m.place(renderHelp(m.keys, m.markdown), overlay.Center, view)
	case m.logPane.visible:
		view = m.place(m.logPane.View(), overlay.Center, view)
	case m.showHistory:
		pane := renderHistoryPane(m.history.State(), m.diffs, historyPaneWidth(m.width))
		view = m.place(pane, overlay.TopRight, view)
	}

	return zone.Scan(view)
}

// place draws fg over bg, or below it before the terminal size is known.
func (m Model) place(fg string, pos overlay.Position, bg string) string {
	if m.width == 0 || m.height == 0 {
		return bg + "\n" + fg
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: pos,
		Margin:   1,
	}, fg, bg)
}

func (m Model) renderButtons() string {
	undo := zone.Mark(zoneUndoButton, styles.ButtonStyle(m.history.CanUndo()).
		Render(buttonLabel("Undo", m.keys.Undo.Help().Key)))
	redo := zone.Mark(zoneRedoButton, styles.ButtonStyle(m.history.CanRedo()).
		Render(buttonLabel("Redo", m.keys.Redo.Help().Key)))
	return lipgloss.JoinHorizontal(lipgloss.Top, undo, " ", redo)
}

func buttonLabel(action, binding string) string {
	if binding == "" {
		return action
	}
	return fmt.Sprintf("%s (%s)", action, binding)
}

func (m Model) renderStatusBar() string {
	parts := []string{
		fmt.Sprintf("undo %d", m.history.UndoDepth()),
		fmt.Sprintf("redo %d", m.history.RedoDepth()),
	}
	bar := styles.StatusBarStyle.Render(strings.Join(parts, " · "))

	var state string
	if m.history.Pending() {
		state = styles.StatusPendingStyle.Render("● pending")
	} else {
		state = styles.StatusIdleStyle.Render("○ saved")
	}
	bar += "  " + state

	if m.lastTrigger != "" {
		bar += styles.StatusBarStyle.Render("  last: " + string(m.lastTrigger))
	}
	if m.status != "" {
		bar += "  " + styles.ErrorStyle.Render(m.status)
	}
	return bar
}
