// Package keys contains keybinding definitions.
package keys

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/zjrosen/undopad/internal/config"
	"github.com/zjrosen/undopad/internal/log"
)

// KeyMap defines the keybindings for the editor.
type KeyMap struct {
	// History
	Undo       key.Binding
	Redo       key.Binding
	Checkpoint key.Binding
	// Backspace is observed, not intercepted: the key still reaches the
	// textarea after the deletion checkpoint.
	Backspace key.Binding

	// Panes
	HistoryPane key.Binding
	LogPane     key.Binding

	// General
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return FromConfig(config.Defaults().Keys)
}

// FromConfig builds the key map from the keys section of the config.
// Empty lists keep the default binding.
func FromConfig(cfg config.KeysConfig) KeyMap {
	defaults := config.Defaults().Keys
	pick := func(keys, fallback []string) []string {
		if len(keys) == 0 {
			return fallback
		}
		return keys
	}

	km := KeyMap{
		Undo:        newBinding(pick(cfg.Undo, defaults.Undo), "undo"),
		Redo:        newBinding(pick(cfg.Redo, defaults.Redo), "redo"),
		Checkpoint:  newBinding(pick(cfg.Checkpoint, defaults.Checkpoint), "checkpoint"),
		HistoryPane: newBinding(pick(cfg.HistoryPane, defaults.HistoryPane), "history"),
		LogPane:     newBinding(pick(cfg.LogPane, defaults.LogPane), "logs"),
		Quit:        newBinding(pick(cfg.Quit, defaults.Quit), "quit"),
		Backspace: key.NewBinding(
			key.WithKeys("backspace", "ctrl+h"),
			key.WithHelp("⌫", "delete"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
	}
	log.Debug(log.CatKeys, "Key map built",
		"undo", strings.Join(km.Undo.Keys(), ","),
		"redo", strings.Join(km.Redo.Keys(), ","))
	return km
}

func newBinding(keys []string, desc string) key.Binding {
	terminal := make([]string, 0, len(keys))
	display := make([]string, 0, len(keys))
	for _, k := range keys {
		t := translateToTerminal(k)
		if t == "" {
			continue
		}
		terminal = append(terminal, t)
		display = append(display, translateToDisplay(t))
	}
	return key.NewBinding(
		key.WithKeys(terminal...),
		key.WithHelp(strings.Join(display, "/"), desc),
	)
}

// translateToTerminal normalizes a configured key name to the string
// bubbletea reports for it.
func translateToTerminal(k string) string {
	lower := strings.ToLower(k)
	if strings.TrimLeft(lower, " ") == "ctrl+ " {
		return "ctrl+@"
	}
	lower = strings.TrimSpace(lower)
	if lower == "ctrl+space" {
		return "ctrl+@"
	}
	return lower
}

// translateToDisplay turns a terminal key name back into what users type.
func translateToDisplay(k string) string {
	if k == "ctrl+@" {
		return "ctrl+space"
	}
	return k
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Undo, k.Redo, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Undo, k.Redo, k.Checkpoint, k.Backspace}, // History
		{k.HistoryPane, k.LogPane},                  // Panes
		{k.Help, k.Quit},                            // General
	}
}
