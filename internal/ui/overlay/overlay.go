// Package overlay draws panes on top of the editor view without clearing
// the lines around them.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position specifies where to place the overlay.
type Position int

const (
	Center Position = iota
	TopRight
	BottomRight
)

// Config controls overlay rendering behavior.
type Config struct {
	Width    int // viewport width
	Height   int // viewport height
	Position Position
	Margin   int // cells kept free from the edges for the corner positions
}

// Place renders fg on top of bg. Styling in both is preserved; fg lines
// wider than the viewport are cut.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")

	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}

	x, y := position(cfg, lipgloss.Width(fg), len(fgLines))

	for i, fgLine := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		if cfg.Width > 0 {
			fgLine = ansi.Truncate(fgLine, max(cfg.Width-x, 0), "")
		}
		bgLines[row] = splice(bgLines[row], fgLine, x)
	}

	return strings.Join(bgLines, "\n")
}

// splice writes line over bg starting at column x.
func splice(bg, line string, x int) string {
	left := ansi.Truncate(bg, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}

	end := x + ansi.StringWidth(line)
	var right string
	if end < ansi.StringWidth(bg) {
		right = ansi.TruncateLeft(bg, end, "")
	}
	return left + line + right
}

func position(cfg Config, w, h int) (x, y int) {
	switch cfg.Position {
	case TopRight:
		x = cfg.Width - w - cfg.Margin
		y = cfg.Margin
	case BottomRight:
		x = cfg.Width - w - cfg.Margin
		y = cfg.Height - h - cfg.Margin
	default:
		x = (cfg.Width - w) / 2
		y = (cfg.Height - h) / 2
	}
	return max(x, 0), max(y, 0)
}
