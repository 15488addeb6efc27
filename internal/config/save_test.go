package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveHistory_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	h := Defaults().History
	h.DebounceDelay = 500 * time.Millisecond
	require.NoError(t, SaveHistory(configPath, h))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "history:")
	assert.Contains(t, string(data), "debounce_delay: 500ms")

	cfg := loadConfigFromYAML(t, string(data))
	require.Equal(t, h, cfg.History)
}

func TestSaveHistory_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	initial := `# top comment
keys:
  undo: [ctrl+u] # custom undo
ui:
  rows: 4
history:
  max_depth: 3
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0644))

	h := Defaults().History
	h.MaxDepth = 9
	require.NoError(t, SaveHistory(configPath, h))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# top comment")
	assert.Contains(t, content, "# custom undo")
	assert.Contains(t, content, "rows: 4")
	assert.Contains(t, content, "max_depth: 9")
	assert.NotContains(t, content, "max_depth: 3")

	cfg := loadConfigFromYAML(t, content)
	require.Equal(t, []string{"ctrl+u"}, cfg.Keys.Undo)
	require.Equal(t, 9, cfg.History.MaxDepth)
}

func TestSaveHistory_AppendsWhenMissing(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("ui:\n  rows: 2\n"), 0644))

	require.NoError(t, SaveHistory(configPath, Defaults().History))

	cfg := loadConfigFromYAML(t, mustRead(t, configPath))
	require.Equal(t, 2, cfg.UI.Rows)
	require.Equal(t, Defaults().History, cfg.History)
}

func TestSaveHistory_RejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	h := Defaults().History
	h.MaxDepth = -2

	require.Error(t, SaveHistory(configPath, h))
	_, err := os.Stat(configPath)
	require.True(t, os.IsNotExist(err), "nothing written on validation failure")
}

func TestSaveHistory_RejectsNonMappingRoot(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("- a\n- b\n"), 0644))

	err := SaveHistory(configPath, Defaults().History)
	require.Error(t, err)
	require.Contains(t, err.Error(), "mapping")
}

func TestSaveHistory_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveHistory(configPath, Defaults().History))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
