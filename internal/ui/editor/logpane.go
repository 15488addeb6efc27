package editor

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/undopad/internal/log"
	"github.com/zjrosen/undopad/internal/ui/styles"
)

const (
	logPaneMaxLines   = 500
	logViewportMax    = 20
	logViewportMin    = 4
	logPaneMaxWidth   = 120
	logPaneMinWidth   = 30
	logPaneChromeRows = 4 // top border, divider, hint, bottom border
)

// logPane shows recent log lines received from the log broker.
type logPane struct {
	visible  bool
	minLevel log.Level
	lines    []string
	width    int
	height   int
	viewport viewport.Model
}

func newLogPane() logPane {
	return logPane{minLevel: log.LevelDebug}
}

// Append stores a log line, dropping the oldest past the cap.
func (p *logPane) Append(line string) {
	p.lines = append(p.lines, line)
	if over := len(p.lines) - logPaneMaxLines; over > 0 {
		p.lines = append(p.lines[:0], p.lines[over:]...)
	}
	if p.visible {
		atBottom := p.viewport.AtBottom()
		p.refresh()
		if atBottom {
			p.viewport.GotoBottom()
		}
	}
}

func (p *logPane) Toggle() {
	p.visible = !p.visible
	if p.visible {
		p.refresh()
		p.viewport.GotoBottom()
	}
}

func (p *logPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	if p.visible {
		p.refresh()
	}
}

// Update handles keys while the pane has focus. The returned bool is
// false when the pane should close.
func (p logPane) Update(msg tea.KeyMsg) (logPane, bool) {
	switch msg.String() {
	case "c":
		p.lines = nil
	case "d":
		p.minLevel = log.LevelDebug
	case "i":
		p.minLevel = log.LevelInfo
	case "w":
		p.minLevel = log.LevelWarn
	case "e":
		p.minLevel = log.LevelError
	case "j", "down":
		p.viewport.ScrollDown(1)
		return p, true
	case "k", "up":
		p.viewport.ScrollUp(1)
		return p, true
	case "g":
		p.viewport.GotoTop()
		return p, true
	case "G":
		p.viewport.GotoBottom()
		return p, true
	case "esc", "q":
		p.visible = false
		return p, false
	default:
		return p, true
	}
	p.refresh()
	return p, true
}

func (p logPane) boxWidth() int {
	return max(min(p.width-4, logPaneMaxWidth), logPaneMinWidth)
}

func (p *logPane) refresh() {
	contentWidth := p.boxWidth() - 2
	height := min(logViewportMax, p.height-logPaneChromeRows-2)
	height = max(height, logViewportMin)

	p.viewport = viewport.New(contentWidth, height)
	p.viewport.SetContent(p.content(contentWidth))
}

func (p logPane) content(width int) string {
	var rows []string
	for _, entry := range p.lines {
		if !levelAtLeast(entry, p.minLevel) {
			continue
		}
		wrapped := wordwrap.String(entry, width)
		rows = append(rows, levelStyle(entry).Render(wrapped))
	}
	if len(rows) == 0 {
		return lipgloss.NewStyle().Foreground(styles.TextMutedColor).Italic(true).Render("No logs to display")
	}
	return strings.Join(rows, "\n")
}

func (p logPane) View() string {
	if !p.visible {
		return ""
	}
	width := p.boxWidth()
	divider := lipgloss.NewStyle().Foreground(styles.BorderDefaultColor).Render(strings.Repeat("─", width-2))

	body := strings.Split(p.viewport.View(), "\n")
	body = append(body, divider, p.filterHint())
	return styles.RenderPane(body, "Logs", "esc", width, true)
}

// levelAtLeast reports whether entry was logged at minLevel or above.
// Lines without a recognizable level are always shown.
func levelAtLeast(entry string, minLevel log.Level) bool {
	for _, l := range []log.Level{log.LevelError, log.LevelWarn, log.LevelInfo, log.LevelDebug} {
		if strings.Contains(entry, "["+l.String()+"]") {
			return l >= minLevel
		}
	}
	return true
}

func levelStyle(entry string) lipgloss.Style {
	switch {
	case strings.Contains(entry, "[ERROR]"):
		return lipgloss.NewStyle().Foreground(styles.StatusErrorColor)
	case strings.Contains(entry, "[WARN]"):
		return lipgloss.NewStyle().Foreground(styles.StatusWarningColor)
	case strings.Contains(entry, "[DEBUG]"):
		return lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextPrimaryColor)
	}
}

func (p logPane) filterHint() string {
	hintStyle := styles.HelpStyle
	activeStyle := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(true)

	hints := []string{hintStyle.Render("[c] Clear")}
	for _, opt := range []struct {
		level log.Level
		label string
	}{
		{log.LevelDebug, "[d] Debug"},
		{log.LevelInfo, "[i] Info"},
		{log.LevelWarn, "[w] Warn"},
		{log.LevelError, "[e] Error"},
	} {
		if p.minLevel == opt.level {
			hints = append(hints, activeStyle.Render(opt.label))
		} else {
			hints = append(hints, hintStyle.Render(opt.label))
		}
	}
	return strings.Join(hints, "  ")
}
