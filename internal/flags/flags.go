// Package flags provides feature flags read from the config file.
// Flags are read-only after initialization and unknown flags are disabled.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/undopad/internal/log"
)

const (
	// FlagHistoryPane enables the pane listing the undo and redo stacks.
	FlagHistoryPane = "history-pane"

	// FlagConfigReload enables watching the config file and applying the
	// history policy and key bindings when it changes.
	FlagConfigReload = "config-reload"
)

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. The map is copied.
// If flags is nil, an empty registry is created (all flags disabled).
func New(flags map[string]bool) *Registry {
	r := &Registry{flags: maps.Clone(flags)}
	if r.flags == nil {
		r.flags = make(map[string]bool)
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(r.flags), "enabled", r.EnabledNames())
	return r
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags and on a nil registry.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name)
		return false
	}
	return value
}

// EnabledNames returns the enabled flags in sorted order.
func (r *Registry) EnabledNames() []string {
	if r == nil {
		return nil
	}
	var names []string
	for name, on := range r.flags {
		if on {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}
