// Package editor implements the interactive undopad editor: a textarea
// whose content is tracked by a history.Manager, with clickable Undo and
// Redo buttons, a status bar and optional history, log and help panes.
package editor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/undopad/internal/config"
	"github.com/zjrosen/undopad/internal/diff"
	"github.com/zjrosen/undopad/internal/flags"
	"github.com/zjrosen/undopad/internal/history"
	"github.com/zjrosen/undopad/internal/keys"
	"github.com/zjrosen/undopad/internal/log"
	"github.com/zjrosen/undopad/internal/pubsub"
	"github.com/zjrosen/undopad/internal/timer"
	"github.com/zjrosen/undopad/internal/tracing"
	"github.com/zjrosen/undopad/internal/ui/markdown"
	"github.com/zjrosen/undopad/internal/ui/styles"
	"github.com/zjrosen/undopad/internal/watcher"
)

const diffCacheTTL = 2 * time.Minute

// Zone IDs for clickable buttons.
const (
	zoneUndoButton = "editor-undo"
	zoneRedoButton = "editor-redo"
)

// Options configures a Model.
type Options struct {
	Config config.Config

	// ConfigPath is watched for changes when the config-reload flag is on.
	// Empty disables hot reload.
	ConfigPath string

	// Debug enables the log pane.
	Debug bool

	// Tracer receives spans for history operations. Nil disables tracing.
	Tracer trace.Tracer

	// SessionID tags spans. A random id is generated when empty.
	SessionID string

	// Scheduler arms debounce timers. Nil runs them on a timer.Loop whose
	// callbacks are delivered through Update.
	Scheduler timer.Scheduler
}

// Model is the editor state.
type Model struct {
	cfg        config.Config
	configPath string
	debug      bool
	session    string

	keys  keys.KeyMap
	flags *flags.Registry
	help  help.Model

	textarea textarea.Model
	history  *history.Manager
	loop     *timer.Loop

	changes   *pubsub.Broker[history.Change]
	changeSub *pubsub.ContinuousListener[history.Change]
	logSub    *log.LogListener
	watcher   *watcher.Watcher
	reloads   <-chan struct{}

	tracer   trace.Tracer
	recorder *tracing.ChangeRecorder
	span     trace.Span

	diffs    *diff.CachedRenderer
	markdown *markdown.Renderer

	lastTrigger history.Trigger
	status      string // transient error shown in the status bar

	showHistory bool
	showHelp    bool
	logPane     logPane

	width  int
	height int

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce *sync.Once
}

// New creates the editor. Call Close when the program exits.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	session := opts.SessionID
	if session == "" {
		session = uuid.NewString()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	ctx, span := tracer.Start(ctx, tracing.SpanSession,
		trace.WithAttributes(attribute.String(tracing.AttrSessionID, session)))

	m := Model{
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		debug:      opts.Debug,
		session:    session,
		keys:       keys.FromConfig(opts.Config.Keys),
		flags:      flags.New(opts.Config.Flags),
		help:       help.New(),
		changes:    pubsub.NewBroker[history.Change](),
		tracer:     tracer,
		span:       span,
		recorder:   tracing.NewChangeRecorder(ctx, tracer, session),
		logPane:    newLogPane(),
		ctx:        ctx,
		cancel:     cancel,
		closeOnce:  &sync.Once{},
	}

	sched := opts.Scheduler
	if sched == nil {
		m.loop = timer.NewLoop()
		sched = m.loop
	}

	policy := opts.Config.History.Policy()
	if err := policy.Validate(); err != nil {
		log.ErrorErr(log.CatConfig, "Invalid history policy, using defaults", err)
		policy = history.DefaultPolicy()
	}
	m.history = history.NewManager(sched,
		history.WithPolicy(policy),
		history.WithPublisher(pubsub.MultiPublisher[history.Change](m.recorder, m.changes)),
	)
	m.changeSub = pubsub.NewContinuousListener[history.Change](ctx, m.changes)
	if opts.Debug {
		m.logSub = log.NewListener(ctx)
	}

	m.textarea = newTextarea(opts.Config.UI)

	diffStyle := diff.Style{
		Insert: styles.DiffInsertStyle,
		Delete: styles.DiffDeleteStyle,
		Color:  true,
	}
	m.diffs = diff.NewCachedRenderer(diffStyle, diffCacheTTL)

	if r, err := markdown.New(helpPaneWidth - 2); err != nil {
		log.ErrorErr(log.CatUI, "Help renderer unavailable", err)
	} else {
		m.markdown = r
	}

	if m.configPath != "" && m.flags.Enabled(flags.FlagConfigReload) {
		m.startWatcher()
	}

	log.Info(log.CatUI, "Editor started",
		"session", session,
		"debounce", policy.DebounceDelay,
		"flags", m.flags.EnabledNames())
	return m
}

func newTextarea(ui config.UIConfig) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = ui.Placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	if ui.Cols > 0 {
		ta.SetWidth(ui.Cols)
	}
	if ui.Rows > 0 {
		ta.SetHeight(ui.Rows)
	}
	ta.Focus()
	return ta
}

func (m *Model) startWatcher() {
	w, err := watcher.New(watcher.DefaultConfig(m.configPath))
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Config watcher unavailable", err)
		return
	}
	ch, err := w.Start()
	if err != nil {
		_ = w.Stop()
		log.ErrorErr(log.CatWatcher, "Config watcher unavailable", err)
		return
	}
	m.watcher = w
	m.reloads = ch
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.changeSub.Listen()}
	if m.loop != nil {
		cmds = append(cmds, waitForTimer(m.ctx, m.loop.Fired()))
	}
	if m.logSub != nil {
		cmds = append(cmds, m.logSub.Listen())
	}
	if m.reloads != nil {
		cmds = append(cmds, waitForConfigChange(m.ctx, m.reloads))
	}
	return tea.Batch(cmds...)
}

// Content returns the buffer as the history manager holds it.
func (m Model) Content() string {
	return m.history.Content()
}

// History exposes the manager backing the buffer.
func (m Model) History() *history.Manager {
	return m.history
}

// SessionID returns the id used in logs and spans.
func (m Model) SessionID() string {
	return m.session
}

// Close stops timers and watchers and ends the session span. Safe to call
// more than once.
func (m Model) Close() {
	m.closeOnce.Do(func() {
		m.history.Close()
		if m.loop != nil {
			m.loop.Close()
		}
		if m.watcher != nil {
			if err := m.watcher.Stop(); err != nil {
				log.ErrorErr(log.CatWatcher, "Stopping config watcher", err)
			}
		}
		m.span.SetAttributes(
			attribute.Int(tracing.AttrUndoDepth, m.history.UndoDepth()),
			attribute.Int(tracing.AttrRedoDepth, m.history.RedoDepth()),
		)
		m.span.End()
		m.cancel()
		m.changes.Close()
		log.Info(log.CatUI, "Editor closed", "session", m.session, "dropped_changes", m.changes.Dropped())
	})
}
