// Package config provides configuration types, defaults, validation and
// loading for undopad.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/zjrosen/undopad/internal/history"
	"github.com/zjrosen/undopad/internal/log"
)

// Config holds all configuration options for undopad.
type Config struct {
	History HistoryConfig   `mapstructure:"history"`
	Keys    KeysConfig      `mapstructure:"keys"`
	UI      UIConfig        `mapstructure:"ui"`
	Log     LogConfig       `mapstructure:"log"`
	Tracing TracingConfig   `mapstructure:"tracing"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// HistoryConfig mirrors history.Policy with config-file names.
type HistoryConfig struct {
	DebounceDelay                   time.Duration `mapstructure:"debounce_delay"`
	SeedInitialSnapshot             bool          `mapstructure:"seed_initial_snapshot"`
	DebounceCapturesEditTimeContent bool          `mapstructure:"debounce_captures_edit_time_content"`
	DedupCheckpoints                bool          `mapstructure:"dedup_checkpoints"`
	CheckpointOnDeletion            bool          `mapstructure:"checkpoint_on_deletion"`
	CancelPendingOnCommand          bool          `mapstructure:"cancel_pending_on_command"`
	MaxDepth                        int           `mapstructure:"max_depth"`
}

// Policy converts the section into a history.Policy.
func (h HistoryConfig) Policy() history.Policy {
	return history.Policy{
		DebounceDelay:                   h.DebounceDelay,
		SeedInitialSnapshot:             h.SeedInitialSnapshot,
		DebounceCapturesEditTimeContent: h.DebounceCapturesEditTimeContent,
		DedupCheckpoints:                h.DedupCheckpoints,
		CheckpointOnDeletion:            h.CheckpointOnDeletion,
		CancelPendingOnCommand:          h.CancelPendingOnCommand,
		MaxDepth:                        h.MaxDepth,
	}
}

// HistoryFromPolicy is the inverse of HistoryConfig.Policy.
func HistoryFromPolicy(p history.Policy) HistoryConfig {
	return HistoryConfig{
		DebounceDelay:                   p.DebounceDelay,
		SeedInitialSnapshot:             p.SeedInitialSnapshot,
		DebounceCapturesEditTimeContent: p.DebounceCapturesEditTimeContent,
		DedupCheckpoints:                p.DedupCheckpoints,
		CheckpointOnDeletion:            p.CheckpointOnDeletion,
		CancelPendingOnCommand:          p.CancelPendingOnCommand,
		MaxDepth:                        p.MaxDepth,
	}
}

// KeysConfig holds the key names bound to editor actions, in bubbletea
// key string form ("ctrl+z", "backspace").
type KeysConfig struct {
	Undo        []string `mapstructure:"undo"`
	Redo        []string `mapstructure:"redo"`
	Checkpoint  []string `mapstructure:"checkpoint"`
	HistoryPane []string `mapstructure:"history_pane"`
	LogPane     []string `mapstructure:"log_pane"`
	Quit        []string `mapstructure:"quit"`
}

// UIConfig holds editor presentation options.
type UIConfig struct {
	Placeholder   string `mapstructure:"placeholder"`
	Rows          int    `mapstructure:"rows"` // textarea height; 0 = fill the terminal
	Cols          int    `mapstructure:"cols"` // textarea width; 0 = fill the terminal
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
	ShowButtons   bool   `mapstructure:"show_buttons"`
}

// LogConfig holds debug log options. Logging only happens with --debug or
// UNDOPAD_DEBUG set.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"` // debug (default), info, warn, error
}

// TracingConfig holds OpenTelemetry options.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Exporter     string  `mapstructure:"exporter"` // none, file (default), stdout, otlp
	FilePath     string  `mapstructure:"file_path"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		History: HistoryFromPolicy(history.DefaultPolicy()),
		Keys: KeysConfig{
			Undo:        []string{"ctrl+z"},
			Redo:        []string{"ctrl+y"},
			Checkpoint:  []string{"ctrl+s"},
			HistoryPane: []string{"ctrl+o"},
			LogPane:     []string{"ctrl+l"},
			Quit:        []string{"ctrl+c", "esc"},
		},
		UI: UIConfig{
			Placeholder:   "Type your message here...",
			Rows:          10,
			Cols:          50,
			ShowStatusBar: true,
			ShowButtons:   true,
		},
		Log: LogConfig{
			Path:  "",
			Level: "debug",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Flags: map[string]bool{
			"history-pane":  true,
			"config-reload": true,
		},
	}
}

// SetDefaults registers every default on v so that partially written config
// files still unmarshal to a complete Config.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("history.debounce_delay", d.History.DebounceDelay)
	v.SetDefault("history.seed_initial_snapshot", d.History.SeedInitialSnapshot)
	v.SetDefault("history.debounce_captures_edit_time_content", d.History.DebounceCapturesEditTimeContent)
	v.SetDefault("history.dedup_checkpoints", d.History.DedupCheckpoints)
	v.SetDefault("history.checkpoint_on_deletion", d.History.CheckpointOnDeletion)
	v.SetDefault("history.cancel_pending_on_command", d.History.CancelPendingOnCommand)
	v.SetDefault("history.max_depth", d.History.MaxDepth)

	v.SetDefault("keys.undo", d.Keys.Undo)
	v.SetDefault("keys.redo", d.Keys.Redo)
	v.SetDefault("keys.checkpoint", d.Keys.Checkpoint)
	v.SetDefault("keys.history_pane", d.Keys.HistoryPane)
	v.SetDefault("keys.log_pane", d.Keys.LogPane)
	v.SetDefault("keys.quit", d.Keys.Quit)

	v.SetDefault("ui.placeholder", d.UI.Placeholder)
	v.SetDefault("ui.rows", d.UI.Rows)
	v.SetDefault("ui.cols", d.UI.Cols)
	v.SetDefault("ui.show_status_bar", d.UI.ShowStatusBar)
	v.SetDefault("ui.show_buttons", d.UI.ShowButtons)

	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)

	v.SetDefault("flags", d.Flags)
}

// Load reads the config file at path on top of the defaults and validates
// the result. Used for hot reload, where the global viper instance owned by
// the CLI is not touched.
func Load(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	log.Debug(log.CatConfig, "Loaded config", "path", path)
	return cfg, nil
}

// Validate checks every section and joins all problems found.
func Validate(cfg Config) error {
	return errors.Join(
		ValidateHistory(cfg.History),
		ValidateKeys(cfg.Keys),
		ValidateUI(cfg.UI),
		ValidateTracing(cfg.Tracing),
	)
}

// ValidateHistory checks the history section.
func ValidateHistory(h HistoryConfig) error {
	if err := h.Policy().Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}

// ValidateKeys checks that undo and redo are bound and that no key is bound
// to two actions.
func ValidateKeys(k KeysConfig) error {
	if len(k.Undo) == 0 {
		return fmt.Errorf("keys.undo must have at least one key")
	}
	if len(k.Redo) == 0 {
		return fmt.Errorf("keys.redo must have at least one key")
	}

	actions := []struct {
		name string
		keys []string
	}{
		{"undo", k.Undo},
		{"redo", k.Redo},
		{"checkpoint", k.Checkpoint},
		{"history_pane", k.HistoryPane},
		{"log_pane", k.LogPane},
		{"quit", k.Quit},
	}
	owner := make(map[string]string)
	for _, a := range actions {
		for _, key := range a.keys {
			if key == "" {
				return fmt.Errorf("keys.%s contains an empty key", a.name)
			}
			if prev, ok := owner[key]; ok && prev != a.name {
				return fmt.Errorf("key %q bound to both keys.%s and keys.%s", key, prev, a.name)
			}
			owner[key] = a.name
		}
	}
	if slices.Contains(k.Undo, "backspace") || slices.Contains(k.Redo, "backspace") {
		return fmt.Errorf("backspace is reserved for deletion")
	}
	return nil
}

// ValidateUI checks the ui section.
func ValidateUI(ui UIConfig) error {
	if ui.Rows < 0 {
		return fmt.Errorf("ui.rows must not be negative, got %d", ui.Rows)
	}
	if ui.Cols < 0 {
		return fmt.Errorf("ui.cols must not be negative, got %d", ui.Cols)
	}
	return nil
}

// ValidateTracing checks the tracing section.
func ValidateTracing(t TracingConfig) error {
	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be none, file, stdout or otlp, got %q", t.Exporter)
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %v", t.SampleRate)
	}
	return nil
}

// DefaultConfigDir returns ~/.config/undopad, or .undopad when the home
// directory cannot be determined.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".undopad"
	}
	return filepath.Join(home, ".config", "undopad")
}

// DefaultTracesFilePath returns the default trace file location.
func DefaultTracesFilePath() string {
	return filepath.Join(DefaultConfigDir(), "traces", "traces.jsonl")
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# undopad configuration

# Undo/redo history policy
history:
  # Idle time before the typed burst becomes a checkpoint (0 disables)
  debounce_delay: 1s

  # Start the undo stack with an empty snapshot that undo never pops
  seed_initial_snapshot: false

  # true: the debounce checkpoint stores the text as it was when typed
  # false: it stores the buffer as it is when the timer fires
  debounce_captures_edit_time_content: true

  # Skip a checkpoint identical to the newest one
  dedup_checkpoints: true

  # Backspace checkpoints the text before the deletion
  checkpoint_on_deletion: true

  # Undo/redo cancel a pending debounce checkpoint
  cancel_pending_on_command: false

  # Maximum undo depth (0 = unlimited)
  max_depth: 0

# Key bindings (bubbletea key names)
keys:
  undo: [ctrl+z]
  redo: [ctrl+y]
  checkpoint: [ctrl+s]
  history_pane: [ctrl+o]
  log_pane: [ctrl+l]
  quit: [ctrl+c, esc]

# Editor settings
ui:
  placeholder: "Type your message here..."
  rows: 10              # 0 = fill the terminal
  cols: 50              # 0 = fill the terminal
  show_status_bar: true
  show_buttons: true

# Debug log (written only with --debug or UNDOPAD_DEBUG=1)
# log:
#   path: debug.log
#   level: debug        # debug, info, warn, error

# Tracing of history operations
# tracing:
#   enabled: false
#   exporter: file                 # none, file, stdout, otlp
#   file_path: ~/.config/undopad/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

# Feature flags
flags:
  history-pane: true    # ctrl+o shows the undo/redo stacks
  config-reload: true   # reload history policy and keys when this file changes
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
