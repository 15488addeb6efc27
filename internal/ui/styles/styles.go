// Package styles contains Lip Gloss style definitions for the editor.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#CCCCCC"}
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#696969"} // Hints, help text, footers
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"}

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#54A0FF"}

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#BF8700", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Diff colors
	DiffInsertColor = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#73F59F"}
	DiffDeleteColor = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF8787"}

	// Button colors
	ButtonTextColor         = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	ButtonPrimaryBgColor    = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#1A5276"}
	ButtonDisabledBgColor   = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#2D2D2D"}
	ButtonDisabledTextColor = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#696969"}

	baseButtonStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true)

	PrimaryButtonStyle  = baseButtonStyle.Foreground(ButtonTextColor).Background(ButtonPrimaryBgColor)
	DisabledButtonStyle = baseButtonStyle.Foreground(ButtonDisabledTextColor).Background(ButtonDisabledBgColor)

	HelpStyle  = lipgloss.NewStyle().Foreground(TextMutedColor)
	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)

	// Status bar
	StatusBarStyle     = lipgloss.NewStyle().Foreground(TextMutedColor)
	StatusPendingStyle = lipgloss.NewStyle().Foreground(StatusWarningColor).Bold(true)
	StatusIdleStyle    = lipgloss.NewStyle().Foreground(StatusSuccessColor)

	// History pane
	StackLabelStyle   = lipgloss.NewStyle().Foreground(TextMutedColor).Bold(true)
	StackEntryStyle   = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	StackCurrentStyle = lipgloss.NewStyle().Foreground(BorderFocusColor).Bold(true)

	DiffInsertStyle = lipgloss.NewStyle().Foreground(DiffInsertColor).Underline(true)
	DiffDeleteStyle = lipgloss.NewStyle().Foreground(DiffDeleteColor).Strikethrough(true)

	EditorBorderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(BorderDefaultColor)
)

// ButtonStyle picks the button style for an enabled or disabled action.
func ButtonStyle(enabled bool) lipgloss.Style {
	if enabled {
		return PrimaryButtonStyle
	}
	return DisabledButtonStyle
}
