package editor

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/zjrosen/undopad/internal/config"
	"github.com/zjrosen/undopad/internal/flags"
	"github.com/zjrosen/undopad/internal/history"
	"github.com/zjrosen/undopad/internal/keys"
	"github.com/zjrosen/undopad/internal/log"
	"github.com/zjrosen/undopad/internal/pubsub"
	"github.com/zjrosen/undopad/internal/tracing"
)

// timerFiredMsg carries an expired debounce callback onto the update loop.
type timerFiredMsg struct {
	fn func()
}

// configChangedMsg signals that the watched config file was written.
type configChangedMsg struct{}

// configLoadedMsg carries the result of re-reading the config file.
type configLoadedMsg struct {
	cfg config.Config
	err error
}

func waitForTimer(ctx context.Context, ch <-chan func()) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-ch:
			return timerFiredMsg{fn: fn}
		}
	}
}

func waitForConfigChange(ctx context.Context, ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return configChangedMsg{}
		}
	}
}

func loadConfig(path string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.Load(path)
		return configLoadedMsg{cfg: cfg, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case timerFiredMsg:
		redoBefore := m.history.RedoDepth()
		msg.fn()
		if redoBefore > 0 && m.history.RedoDepth() == 0 {
			m.status = "redo dropped by debounce checkpoint"
			log.Info(log.CatHistory, "Debounce checkpoint cleared redo", "dropped", redoBefore)
		}
		if m.loop == nil {
			return m, nil
		}
		return m, waitForTimer(m.ctx, m.loop.Fired())

	case pubsub.Event[history.Change]:
		if msg.Payload.Op == history.OpCheckpoint {
			m.lastTrigger = msg.Payload.Trigger
		}
		return m, m.changeSub.Listen()

	case pubsub.Event[string]:
		m.logPane.Append(msg.Payload)
		return m, m.logSub.Listen()

	case configChangedMsg:
		log.Debug(log.CatConfig, "Config file changed", "path", m.configPath)
		return m, tea.Batch(loadConfig(m.configPath), waitForConfigChange(m.ctx, m.reloads))

	case configLoadedMsg:
		m.applyConfig(msg.cfg, msg.err)
		return m, nil

	case tea.MouseMsg:
		if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease {
			return m, nil
		}
		if z := zone.Get(zoneUndoButton); z != nil && z.InBounds(msg) {
			m.undo()
			return m, nil
		}
		if z := zone.Get(zoneRedoButton); z != nil && z.InBounds(msg) {
			m.redo()
			return m, nil
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.Close()
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return m, nil
	}

	if m.logPane.visible {
		if key.Matches(msg, m.keys.LogPane) {
			m.logPane.Toggle()
			return m, nil
		}
		m.logPane, _ = m.logPane.Update(msg)
		return m, nil
	}

	if m.showHistory && msg.Type == tea.KeyEsc {
		m.showHistory = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Undo):
		m.undo()
		return m, nil

	case key.Matches(msg, m.keys.Redo):
		m.redo()
		return m, nil

	case key.Matches(msg, m.keys.Checkpoint):
		if m.history.Checkpoint() {
			log.Debug(log.CatUI, "Forced checkpoint", "undo", m.history.UndoDepth())
		}
		return m, nil

	case key.Matches(msg, m.keys.HistoryPane):
		if m.flags.Enabled(flags.FlagHistoryPane) {
			m.showHistory = !m.showHistory
		}
		return m, nil

	case key.Matches(msg, m.keys.LogPane):
		if m.debug {
			m.logPane.SetSize(m.width, m.height)
			m.logPane.Toggle()
		}
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Backspace):
		m.history.Deletion()
	}

	return m.forward(msg)
}

// forward passes msg to the textarea and submits the value if it changed.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.textarea.Value()
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	if after := m.textarea.Value(); after != before {
		m.history.SubmitEdit(after)
	}
	m.status = ""
	return m, cmd
}

func (m *Model) undo() {
	if m.history.Undo() {
		m.syncTextarea()
	}
}

func (m *Model) redo() {
	if m.history.Redo() {
		m.syncTextarea()
	}
}

// syncTextarea shows the manager's buffer after undo or redo.
func (m *Model) syncTextarea() {
	m.textarea.SetValue(m.history.Content())
}

func (m *Model) resize() {
	ui := m.cfg.UI
	if ui.Cols == 0 {
		m.textarea.SetWidth(max(m.width-2, 1))
	}
	if ui.Rows == 0 {
		// border, buttons, status bar and help line
		m.textarea.SetHeight(max(m.height-6, 1))
	}
	m.help.Width = m.width
	m.logPane.SetSize(m.width, m.height)
}

// applyConfig swaps in a reloaded config. An invalid file keeps the
// current settings and shows the error.
func (m *Model) applyConfig(cfg config.Config, err error) {
	_, span := m.tracer.Start(m.ctx, tracing.SpanConfigReload)
	defer span.End()
	span.SetAttributes(attribute.String(tracing.AttrConfigPath, m.configPath))

	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(tracing.AttrErrorMessage, err.Error()))
		log.ErrorErr(log.CatConfig, "Config reload failed", err, "path", m.configPath)
		m.status = "config: " + err.Error()
		return
	}

	policy := cfg.History.Policy()
	m.history.SetPolicy(policy)
	m.keys = keys.FromConfig(cfg.Keys)
	m.flags = flags.New(cfg.Flags)
	if !m.flags.Enabled(flags.FlagHistoryPane) {
		m.showHistory = false
	}
	m.textarea.Placeholder = cfg.UI.Placeholder
	m.cfg = cfg
	m.status = ""

	span.SetAttributes(attribute.Int64(tracing.AttrPolicyDebounceMs, policy.DebounceDelay.Milliseconds()))
	span.SetStatus(codes.Ok, "")
	log.Info(log.CatConfig, "Config reloaded",
		"path", m.configPath,
		"debounce", policy.DebounceDelay,
		"max_depth", policy.MaxDepth)
}
