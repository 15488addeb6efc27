package editor

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/undopad/internal/config"
)

// TestProgram_DebounceThroughLoop runs the editor as a real program so the
// debounce timer fires on a timer.Loop and arrives through Update.
func TestProgram_DebounceThroughLoop(t *testing.T) {
	cfg := config.Defaults()
	cfg.History.DebounceDelay = 20 * time.Millisecond
	m := New(Options{Config: cfg})
	t.Cleanup(m.Close)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	tm.Type("hello")
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("undo 1"))
	}, teatest.WithDuration(3*time.Second), teatest.WithCheckInterval(10*time.Millisecond))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlZ})
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	final := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	require.Equal(t, "hello", final.Content())
	require.Equal(t, 0, final.History().UndoDepth())
	require.Equal(t, 1, final.History().RedoDepth())
}
