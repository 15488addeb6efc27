package history

import (
	"slices"

	"github.com/zjrosen/undopad/internal/log"
	"github.com/zjrosen/undopad/internal/pubsub"
	"github.com/zjrosen/undopad/internal/timer"
)

// Manager owns one text buffer and its undo/redo history.
type Manager struct {
	policy Policy
	sched  timer.Scheduler
	pub    pubsub.Publisher[Change]

	buffer string
	undo   []string // oldest first
	redo   []string // next redo last

	pending timer.Handle
	gen     uint64
	closed  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithPolicy sets the batching policy. Without it DefaultPolicy is used.
func WithPolicy(p Policy) Option {
	return func(m *Manager) {
		m.policy = p
	}
}

// WithPublisher receives a Change after every state transition.
// Publishing must not block.
func WithPublisher(p pubsub.Publisher[Change]) Option {
	return func(m *Manager) {
		m.pub = p
	}
}

// NewManager creates a manager with an empty buffer. sched arms the
// debounce timer; a nil sched disables debounce checkpoints.
func NewManager(sched timer.Scheduler, opts ...Option) *Manager {
	m := &Manager{
		policy: DefaultPolicy(),
		sched:  sched,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.undo = m.initialStack()
	return m
}

func (m *Manager) initialStack() []string {
	if m.policy.SeedInitialSnapshot {
		return []string{""}
	}
	return nil
}

// SubmitEdit accepts the full buffer content after an external edit.
// If content ends at a word boundary the previous buffer is checkpointed
// first. The debounce timer is re-armed on every call.
func (m *Manager) SubmitEdit(content string) {
	if IsWordBoundary(content) {
		m.tryCheckpoint(m.buffer, TriggerWordBoundary)
	}
	m.arm(content)
	m.buffer = content
	m.publish(Change{Op: OpEdit, Content: content})
}

// Deletion checkpoints the buffer before a destructive single-key edit.
// It is a no-op unless the policy enables CheckpointOnDeletion. Reports
// whether a checkpoint was pushed.
func (m *Manager) Deletion() bool {
	if !m.policy.CheckpointOnDeletion {
		return false
	}
	return m.tryCheckpoint(m.buffer, TriggerDeletion)
}

// Checkpoint forces a checkpoint of the current buffer. The dedup guard
// still applies. Reports whether a checkpoint was pushed.
func (m *Manager) Checkpoint() bool {
	return m.tryCheckpoint(m.buffer, TriggerManual)
}

// Undo restores the most recent checkpoint and moves the current buffer
// onto the redo stack. Returns false, changing nothing, when there is
// nothing to undo.
func (m *Manager) Undo() bool {
	if len(m.undo) <= m.policy.floor() {
		log.Debug(log.CatHistory, "nothing to undo")
		return false
	}
	if m.policy.CancelPendingOnCommand {
		m.cancelPending()
	}

	last := len(m.undo) - 1
	s := m.undo[last]
	m.undo = m.undo[:last]
	m.redo = append(m.redo, m.buffer)
	m.buffer = s

	log.Debug(log.CatHistory, "undo", "undo_depth", m.UndoDepth(), "redo_depth", len(m.redo))
	m.publish(Change{Op: OpUndo, Content: s})
	return true
}

// Redo reapplies the most recently undone snapshot and moves the current
// buffer back onto the undo stack. Returns false when the redo stack is
// empty.
func (m *Manager) Redo() bool {
	if len(m.redo) == 0 {
		log.Debug(log.CatHistory, "nothing to redo")
		return false
	}
	if m.policy.CancelPendingOnCommand {
		m.cancelPending()
	}

	last := len(m.redo) - 1
	s := m.redo[last]
	m.redo = m.redo[:last]
	m.undo = append(m.undo, m.buffer)
	m.trim()
	m.buffer = s

	log.Debug(log.CatHistory, "redo", "undo_depth", m.UndoDepth(), "redo_depth", len(m.redo))
	m.publish(Change{Op: OpRedo, Content: s})
	return true
}

// Content returns the current buffer.
func (m *Manager) Content() string {
	return m.buffer
}

// CanUndo reports whether Undo would change the buffer state.
func (m *Manager) CanUndo() bool {
	return len(m.undo) > m.policy.floor()
}

// CanRedo reports whether Redo would change the buffer state.
func (m *Manager) CanRedo() bool {
	return len(m.redo) > 0
}

// UndoDepth is the number of Undo calls that would succeed in a row.
func (m *Manager) UndoDepth() int {
	return max(0, len(m.undo)-m.policy.floor())
}

// RedoDepth is the number of Redo calls that would succeed in a row.
func (m *Manager) RedoDepth() int {
	return len(m.redo)
}

// Pending reports whether a debounce checkpoint is armed.
func (m *Manager) Pending() bool {
	return m.pending != nil
}

// State returns a copy of the buffer and both stacks.
func (m *Manager) State() State {
	redo := slices.Clone(m.redo)
	slices.Reverse(redo)
	return State{
		Content: m.buffer,
		Undo:    slices.Clone(m.undo),
		Redo:    redo,
		Pending: m.Pending(),
	}
}

// Policy returns the active policy.
func (m *Manager) Policy() Policy {
	return m.policy
}

// SetPolicy replaces the policy. The stacks are kept; a lower MaxDepth
// trims them immediately, and a new DebounceDelay applies from the next
// edit. Turning SeedInitialSnapshot on or off adds or removes the bottom
// sentinel so that every real checkpoint stays undoable.
func (m *Manager) SetPolicy(p Policy) {
	wasSeeded := m.policy.SeedInitialSnapshot
	m.policy = p
	switch {
	case p.SeedInitialSnapshot && !wasSeeded:
		m.undo = append([]string{""}, m.undo...)
	case !p.SeedInitialSnapshot && wasSeeded && len(m.undo) > 0:
		m.undo = slices.Clone(m.undo[1:])
	}
	m.trim()
	log.Info(log.CatHistory, "policy updated",
		"debounce", p.DebounceDelay,
		"seed", p.SeedInitialSnapshot,
		"edit_time_capture", p.DebounceCapturesEditTimeContent,
		"dedup", p.DedupCheckpoints,
		"max_depth", p.MaxDepth)
}

// Reset drops all history and empties the buffer, as if newly created.
func (m *Manager) Reset() {
	m.cancelPending()
	m.buffer = ""
	m.undo = m.initialStack()
	m.redo = nil
	m.publish(Change{Op: OpReset})
}

// Close cancels the pending debounce timer. A closed manager keeps
// accepting edits and commands but never arms a timer again.
func (m *Manager) Close() {
	m.cancelPending()
	m.closed = true
}

// tryCheckpoint is the single entry point for every checkpoint trigger.
func (m *Manager) tryCheckpoint(content string, trigger Trigger) bool {
	if m.policy.DedupCheckpoints && len(m.undo) > 0 && m.undo[len(m.undo)-1] == content {
		log.Debug(log.CatHistory, "checkpoint absorbed", "trigger", trigger)
		return false
	}

	m.undo = append(m.undo, content)
	m.trim()
	m.redo = nil

	log.Debug(log.CatHistory, "checkpoint committed", "trigger", trigger, "undo_depth", m.UndoDepth())
	m.publish(Change{Op: OpCheckpoint, Trigger: trigger, Content: content})
	return true
}

// arm replaces any pending debounce timer with a new one for content.
func (m *Manager) arm(content string) {
	m.cancelPending()
	if m.closed || m.sched == nil || m.policy.DebounceDelay <= 0 {
		return
	}

	m.gen++
	gen := m.gen
	m.pending = m.sched.AfterFunc(m.policy.DebounceDelay, func() {
		m.fire(gen, content)
	})
}

func (m *Manager) fire(gen uint64, captured string) {
	if gen != m.gen || m.pending == nil {
		return
	}
	m.pending = nil

	target := m.buffer
	if m.policy.DebounceCapturesEditTimeContent {
		target = captured
	}
	log.Debug(log.CatTimer, "debounce fired")
	m.tryCheckpoint(target, TriggerDebounce)
}

func (m *Manager) cancelPending() {
	if m.pending == nil {
		return
	}
	m.pending.Stop()
	m.pending = nil
	m.gen++
}

// trim enforces MaxDepth by dropping the oldest undo entries above the
// floor. The seeded sentinel counts toward MaxDepth but is never dropped,
// and at least one real checkpoint is always kept.
func (m *Manager) trim() {
	limit := m.policy.MaxDepth
	if limit <= 0 || len(m.undo) <= limit {
		return
	}
	floor := m.policy.floor()
	keep := max(limit-floor, 1)
	if len(m.undo)-floor <= keep {
		return
	}
	m.undo = append(slices.Clone(m.undo[:floor]), m.undo[len(m.undo)-keep:]...)
}

func (m *Manager) publish(c Change) {
	if m.pub == nil {
		return
	}
	c.UndoDepth = m.UndoDepth()
	c.RedoDepth = len(m.redo)
	c.Pending = m.Pending()
	m.pub.Publish(c.eventType(), c)
}
