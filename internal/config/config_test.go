package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/undopad/internal/history"
)

func loadConfigFromYAML(t *testing.T, yaml string) Config {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	err := os.WriteFile(configPath, []byte(yaml), 0644)
	require.NoError(t, err)

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(configPath)
	err = v.ReadInConfig()
	require.NoError(t, err)

	var cfg Config
	err = v.Unmarshal(&cfg)
	require.NoError(t, err)

	return cfg
}

func TestDefaults_MatchHistoryPolicy(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, history.DefaultPolicy(), cfg.History.Policy())
	require.NoError(t, Validate(cfg))
}

func TestHistoryFromPolicy_RoundTrip(t *testing.T) {
	p := history.Policy{
		DebounceDelay:          250 * time.Millisecond,
		SeedInitialSnapshot:    true,
		DedupCheckpoints:       false,
		CancelPendingOnCommand: true,
		MaxDepth:               5,
	}
	require.Equal(t, p, HistoryFromPolicy(p).Policy())
}

func TestLoadYAML_PartialHistoryKeepsDefaults(t *testing.T) {
	cfg := loadConfigFromYAML(t, `
history:
  debounce_delay: 250ms
  max_depth: 20
`)

	require.Equal(t, 250*time.Millisecond, cfg.History.DebounceDelay)
	require.Equal(t, 20, cfg.History.MaxDepth)
	require.True(t, cfg.History.DedupCheckpoints, "unset keys fall back to defaults")
	require.True(t, cfg.History.DebounceCapturesEditTimeContent)
	require.Equal(t, []string{"ctrl+z"}, cfg.Keys.Undo)
}

func TestLoadYAML_Flags(t *testing.T) {
	cfg := loadConfigFromYAML(t, `
flags:
  history-pane: false
`)
	require.False(t, cfg.Flags["history-pane"])
}

func TestLoadYAML_DefaultTemplateParses(t *testing.T) {
	cfg := loadConfigFromYAML(t, DefaultConfigTemplate())

	require.Equal(t, Defaults().History, cfg.History)
	require.Equal(t, Defaults().Keys, cfg.Keys)
	require.Equal(t, Defaults().UI, cfg.UI)
	require.NoError(t, Validate(cfg))
}

func TestLoad_Valid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  debounce_delay: 2s\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.History.DebounceDelay)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  max_depth: -1\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "max_depth")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateHistory(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*HistoryConfig)
		wantErr string
	}{
		{"defaults", func(*HistoryConfig) {}, ""},
		{"zero delay", func(h *HistoryConfig) { h.DebounceDelay = 0 }, ""},
		{"negative delay", func(h *HistoryConfig) { h.DebounceDelay = -time.Second }, "debounce"},
		{"negative depth", func(h *HistoryConfig) { h.MaxDepth = -1 }, "max_depth"},
		{"seeded depth one", func(h *HistoryConfig) {
			h.SeedInitialSnapshot = true
			h.MaxDepth = 1
		}, "max_depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Defaults().History
			tt.mutate(&h)
			err := ValidateHistory(h)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateKeys_Duplicate(t *testing.T) {
	k := Defaults().Keys
	k.Redo = []string{"ctrl+z"}
	err := ValidateKeys(k)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bound to both")
}

func TestValidateKeys_MissingUndo(t *testing.T) {
	k := Defaults().Keys
	k.Undo = nil
	require.Error(t, ValidateKeys(k))
}

func TestValidateKeys_Backspace(t *testing.T) {
	k := Defaults().Keys
	k.Undo = []string{"backspace"}
	require.Error(t, ValidateKeys(k))
}

func TestValidateUI(t *testing.T) {
	require.NoError(t, ValidateUI(UIConfig{}))
	require.Error(t, ValidateUI(UIConfig{Rows: -1}))
	require.Error(t, ValidateUI(UIConfig{Cols: -1}))
}

func TestValidateTracing(t *testing.T) {
	require.NoError(t, ValidateTracing(Defaults().Tracing))
	require.Error(t, ValidateTracing(TracingConfig{Exporter: "jaeger"}))
	require.Error(t, ValidateTracing(TracingConfig{Exporter: "file", SampleRate: 2}))
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.History.MaxDepth = -1
	cfg.UI.Rows = -1
	err := Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "max_depth")
	require.Contains(t, err.Error(), "ui.rows")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}
