package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/undopad/internal/pubsub"
	"github.com/zjrosen/undopad/internal/timer"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, opts ...Option) (*Manager, *timer.Manual) {
	t.Helper()
	clock := timer.NewManual(epoch)
	m := NewManager(clock, opts...)
	t.Cleanup(m.Close)
	return m, clock
}

func withPolicy(mutate func(*Policy)) Option {
	p := DefaultPolicy()
	mutate(&p)
	return WithPolicy(p)
}

// typeText submits one edit per grapheme, step apart on the clock.
func typeText(m *Manager, clock *timer.Manual, text string, step time.Duration) {
	content := m.Content()
	for _, r := range text {
		content += string(r)
		m.SubmitEdit(content)
		clock.Advance(step)
	}
}

// ============================================================================
// Initial state
// ============================================================================

func TestManager_InitialState(t *testing.T) {
	m, _ := newTestManager(t)

	require.Equal(t, "", m.Content())
	require.False(t, m.CanUndo())
	require.False(t, m.CanRedo())
	require.False(t, m.Pending())
	state := m.State()
	require.Equal(t, "", state.Content)
	require.Empty(t, state.Undo)
	require.Empty(t, state.Redo)
}

func TestManager_InitialState_Seeded(t *testing.T) {
	m, _ := newTestManager(t, withPolicy(func(p *Policy) { p.SeedInitialSnapshot = true }))

	require.Equal(t, []string{""}, m.State().Undo)
	require.False(t, m.CanUndo(), "sentinel alone is not undoable")
	require.False(t, m.Undo())
	require.Equal(t, []string{""}, m.State().Undo)
}

// ============================================================================
// Reference scenario
// ============================================================================

func TestManager_Scenario_WordBoundaryUndoRedo(t *testing.T) {
	m, _ := newTestManager(t)

	m.SubmitEdit("a")
	require.True(t, m.Pending(), "edit arms the debounce timer")
	require.Empty(t, m.State().Undo, "no checkpoint yet")

	m.SubmitEdit("a ")
	require.Equal(t, []string{"a"}, m.State().Undo, "boundary checkpoints the old buffer")
	require.Equal(t, "a ", m.Content())

	require.True(t, m.Undo())
	require.Equal(t, "a", m.Content())
	require.Equal(t, []string{"a "}, m.State().Redo)

	require.True(t, m.Redo())
	require.Equal(t, "a ", m.Content())
	require.Empty(t, m.State().Redo)
}

func TestManager_WordBoundaryCommitsBeforeDebounce(t *testing.T) {
	m, clock := newTestManager(t)

	typeText(m, clock, "hello", 10*time.Millisecond)
	require.Empty(t, m.State().Undo)

	m.SubmitEdit("hello ")
	require.Equal(t, []string{"hello"}, m.State().Undo)
}

func TestManager_PunctuationIsBoundary(t *testing.T) {
	m, _ := newTestManager(t)

	m.SubmitEdit("hi")
	m.SubmitEdit("hi,")
	require.Equal(t, []string{"hi"}, m.State().Undo)
}

// ============================================================================
// Debounce
// ============================================================================

func TestManager_DebounceCoalescesBurst(t *testing.T) {
	m, clock := newTestManager(t)

	typeText(m, clock, "abc", 100*time.Millisecond)
	require.Empty(t, m.State().Undo, "burst inside window commits nothing")

	clock.Advance(DefaultDebounceDelay)
	require.Equal(t, []string{"abc"}, m.State().Undo, "one checkpoint with the last content")
	require.False(t, m.Pending())
}

func TestManager_DebounceRearmsOnEveryEdit(t *testing.T) {
	m, clock := newTestManager(t)

	m.SubmitEdit("a")
	clock.Advance(900 * time.Millisecond)
	m.SubmitEdit("ab")
	clock.Advance(900 * time.Millisecond)
	require.Empty(t, m.State().Undo, "second edit pushed the deadline out")
	require.Equal(t, 1, clock.PendingCount(), "never more than one live timer")

	clock.Advance(100 * time.Millisecond)
	require.Equal(t, []string{"ab"}, m.State().Undo)
}

func TestManager_DebounceAndBoundaryDedup(t *testing.T) {
	m, clock := newTestManager(t)

	m.SubmitEdit("word")
	clock.Advance(DefaultDebounceDelay)
	require.Equal(t, []string{"word"}, m.State().Undo)

	// The boundary trigger now targets "word" again and is absorbed.
	m.SubmitEdit("word ")
	require.Equal(t, []string{"word"}, m.State().Undo)
}

func TestManager_DebounceEditTimeCapture(t *testing.T) {
	m, clock := newTestManager(t)

	m.SubmitEdit("ab")
	m.SubmitEdit("ab ")
	require.True(t, m.Undo())
	require.Equal(t, "ab", m.Content())

	clock.Advance(DefaultDebounceDelay)
	require.Equal(t, []string{"ab "}, m.State().Undo, "content captured when the timer was armed")
	require.False(t, m.CanRedo(), "checkpoint invalidates the redo branch")
}

func TestManager_DebounceFireTimeCapture(t *testing.T) {
	m, clock := newTestManager(t, withPolicy(func(p *Policy) { p.DebounceCapturesEditTimeContent = false }))

	m.SubmitEdit("ab")
	m.SubmitEdit("ab ")
	require.True(t, m.Undo())

	clock.Advance(DefaultDebounceDelay)
	require.Equal(t, []string{"ab"}, m.State().Undo, "buffer at fire time is checkpointed")
	require.False(t, m.CanRedo())
}

func TestManager_CancelPendingOnCommand(t *testing.T) {
	m, clock := newTestManager(t, withPolicy(func(p *Policy) { p.CancelPendingOnCommand = true }))

	m.SubmitEdit("ab")
	m.SubmitEdit("ab ")
	require.True(t, m.Undo())
	require.False(t, m.Pending())

	clock.Advance(DefaultDebounceDelay)
	require.Empty(t, m.State().Undo)
	require.Equal(t, []string{"ab "}, m.State().Redo, "redo branch survives")
}

func TestManager_NoOpCommandKeepsPending(t *testing.T) {
	m, _ := newTestManager(t, withPolicy(func(p *Policy) { p.CancelPendingOnCommand = true }))

	m.SubmitEdit("a")
	require.False(t, m.Undo())
	require.False(t, m.Redo())
	require.True(t, m.Pending())
}

func TestManager_ZeroDelayDisablesDebounce(t *testing.T) {
	m, clock := newTestManager(t, withPolicy(func(p *Policy) { p.DebounceDelay = 0 }))

	m.SubmitEdit("abc")
	require.False(t, m.Pending())
	clock.Advance(time.Hour)
	require.Empty(t, m.State().Undo)
}

func TestManager_NilSchedulerDisablesDebounce(t *testing.T) {
	m := NewManager(nil)
	m.SubmitEdit("abc")
	require.False(t, m.Pending())

	m.SubmitEdit("abc ")
	require.Equal(t, []string{"abc"}, m.State().Undo, "boundary trigger still works")
}

// ============================================================================
// Checkpoint rule
// ============================================================================

func TestManager_CheckpointDedup(t *testing.T) {
	m, _ := newTestManager(t)
	m.SubmitEdit("same")

	require.True(t, m.Checkpoint())
	require.False(t, m.Checkpoint())
	require.Equal(t, []string{"same"}, m.State().Undo)
}

func TestManager_CheckpointWithoutDedup(t *testing.T) {
	m, _ := newTestManager(t, withPolicy(func(p *Policy) { p.DedupCheckpoints = false }))
	m.SubmitEdit("same")

	require.True(t, m.Checkpoint())
	require.True(t, m.Checkpoint())
	require.Equal(t, []string{"same", "same"}, m.State().Undo)
}

func TestManager_EmptyStringIsValidCheckpoint(t *testing.T) {
	m, _ := newTestManager(t)

	m.SubmitEdit(" ")
	require.Equal(t, []string{""}, m.State().Undo)
}

func TestManager_SeededSentinelAbsorbsEmptyCheckpoint(t *testing.T) {
	m, _ := newTestManager(t, withPolicy(func(p *Policy) { p.SeedInitialSnapshot = true }))

	m.SubmitEdit(" ")
	require.Equal(t, []string{""}, m.State().Undo)
	require.False(t, m.CanUndo())
}

func TestManager_Deletion(t *testing.T) {
	m, _ := newTestManager(t)
	m.SubmitEdit("abc")

	require.True(t, m.Deletion())
	m.SubmitEdit("ab")
	require.Equal(t, []string{"abc"}, m.State().Undo)

	require.True(t, m.Undo())
	require.Equal(t, "abc", m.Content())
}

func TestManager_DeletionDisabled(t *testing.T) {
	m, _ := newTestManager(t, withPolicy(func(p *Policy) { p.CheckpointOnDeletion = false }))
	m.SubmitEdit("abc")

	require.False(t, m.Deletion())
	require.Empty(t, m.State().Undo)
}

// ============================================================================
// Undo / redo
// ============================================================================

func TestManager_UndoOnEmptyIsNoOp(t *testing.T) {
	m, _ := newTestManager(t)
	m.SubmitEdit("x")

	for range 3 {
		require.False(t, m.Undo())
	}
	require.Equal(t, "x", m.Content())
	require.False(t, m.CanRedo())
}

func TestManager_RedoOnEmptyIsNoOp(t *testing.T) {
	m, _ := newTestManager(t)
	m.SubmitEdit("x")

	require.False(t, m.Redo())
	require.Equal(t, "x", m.Content())
	require.False(t, m.CanUndo())
}

func TestManager_UndoNEditsWithForcedCheckpoints(t *testing.T) {
	m, _ := newTestManager(t)
	states := []string{"", "one", "one two", "one two three", "one two three four"}

	for _, s := range states[1:] {
		m.Checkpoint()
		m.SubmitEdit(s)
	}

	for i := len(states) - 2; i >= 0; i-- {
		require.True(t, m.Undo())
		require.Equal(t, states[i], m.Content())
	}
	require.False(t, m.Undo(), "(N+1)-th undo is a no-op")
	require.Equal(t, "", m.Content())
}

func TestManager_RedoStackOrder(t *testing.T) {
	m, _ := newTestManager(t)
	m.SubmitEdit("a")
	m.SubmitEdit("a ")
	m.SubmitEdit("a b")
	m.SubmitEdit("a b ")

	require.True(t, m.Undo())
	require.True(t, m.Undo())
	require.Equal(t, []string{"a b", "a b "}, m.State().Redo, "most recently undone first")

	require.True(t, m.Redo())
	require.Equal(t, "a b", m.Content())
	require.True(t, m.Redo())
	require.Equal(t, "a b ", m.Content())
}

func TestManager_EditAfterUndoKeepsRedoUntilCheckpoint(t *testing.T) {
	m, clock := newTestManager(t)
	m.SubmitEdit("a")
	m.SubmitEdit("a ")
	require.True(t, m.Undo())

	m.SubmitEdit("ax")
	require.True(t, m.CanRedo(), "no checkpoint pushed yet")

	clock.Advance(DefaultDebounceDelay)
	require.False(t, m.CanRedo())
	require.False(t, m.Redo())
	require.Equal(t, "ax", m.Content())
}

func TestManager_BoundaryEditAfterUndoDiscardsRedo(t *testing.T) {
	m, _ := newTestManager(t)
	m.SubmitEdit("a")
	m.SubmitEdit("a ")
	require.True(t, m.Undo())

	m.SubmitEdit("a.")
	require.False(t, m.CanRedo())
}

// ============================================================================
// Depth, policy, lifecycle
// ============================================================================

func TestManager_MaxDepth(t *testing.T) {
	m, _ := newTestManager(t, withPolicy(func(p *Policy) { p.MaxDepth = 2 }))
	for _, s := range []string{"a ", "a b ", "a b c ", "a b c d "} {
		m.SubmitEdit(s)
	}
	require.Equal(t, []string{"a b ", "a b c "}, m.State().Undo)
	require.Equal(t, 2, m.UndoDepth())
}

func TestManager_MaxDepthAppliesToRedo(t *testing.T) {
	m, _ := newTestManager(t, withPolicy(func(p *Policy) { p.MaxDepth = 1 }))
	m.SubmitEdit("x ")
	m.SubmitEdit("x y ")
	require.Equal(t, []string{"x "}, m.State().Undo)

	require.True(t, m.Undo())
	require.True(t, m.Redo())
	require.Len(t, m.State().Undo, 1)
}

func TestManager_MaxDepthKeepsSeededFloor(t *testing.T) {
	m, _ := newTestManager(t, withPolicy(func(p *Policy) {
		p.SeedInitialSnapshot = true
		p.MaxDepth = 3
	}))
	for _, s := range []string{"a", "a ", "a b", "a b ", "a b c", "a b c "} {
		m.SubmitEdit(s)
	}
	require.Equal(t, []string{"", "a b", "a b c"}, m.State().Undo, "oldest checkpoint dropped, sentinel kept")
	require.Equal(t, 2, m.UndoDepth())

	require.True(t, m.Undo())
	require.Equal(t, "a b c", m.Content())
	require.True(t, m.Undo())
	require.Equal(t, "a b", m.Content())
	require.False(t, m.Undo(), "only the sentinel remains")
	require.Equal(t, "a b", m.Content())
}

func TestManager_MaxDepthTwoSeededKeepsNewest(t *testing.T) {
	m, _ := newTestManager(t, withPolicy(func(p *Policy) {
		p.SeedInitialSnapshot = true
		p.MaxDepth = 2
	}))
	for _, s := range []string{"a", "a ", "a b", "a b "} {
		m.SubmitEdit(s)
	}
	require.Equal(t, []string{"", "a b"}, m.State().Undo)

	require.True(t, m.CanUndo())
	require.True(t, m.Undo())
	require.Equal(t, "a b", m.Content())
	require.Equal(t, []string{""}, m.State().Undo)
}

func TestManager_SetPolicyTogglesSeed(t *testing.T) {
	m, _ := newTestManager(t)
	m.SubmitEdit("a")
	m.SubmitEdit("a ")
	require.Equal(t, []string{"a"}, m.State().Undo)

	seeded := m.Policy()
	seeded.SeedInitialSnapshot = true
	m.SetPolicy(seeded)
	require.Equal(t, []string{"", "a"}, m.State().Undo)
	require.True(t, m.CanUndo(), "a real checkpoint above the new sentinel stays undoable")
	require.Equal(t, 1, m.UndoDepth())

	unseeded := seeded
	unseeded.SeedInitialSnapshot = false
	m.SetPolicy(unseeded)
	require.Equal(t, []string{"a"}, m.State().Undo)
	require.Equal(t, 1, m.UndoDepth())

	m.SetPolicy(seeded)
	require.True(t, m.Undo())
	require.Equal(t, "a", m.Content())
	require.Equal(t, []string{""}, m.State().Undo)
	require.False(t, m.CanUndo())
	require.Equal(t, []string{"a "}, m.State().Redo)
}

func TestManager_SetPolicySeedAndDepthTogether(t *testing.T) {
	m, _ := newTestManager(t)
	for _, s := range []string{"a ", "a b ", "a b c "} {
		m.SubmitEdit(s)
	}
	require.Equal(t, []string{"", "a ", "a b "}, m.State().Undo)

	p := m.Policy()
	p.SeedInitialSnapshot = true
	p.MaxDepth = 2
	m.SetPolicy(p)
	require.Equal(t, []string{"", "a b "}, m.State().Undo)
	require.Equal(t, 1, m.UndoDepth())
}

func TestManager_SetPolicyTrimsAndKeepsStacks(t *testing.T) {
	m, clock := newTestManager(t)
	for _, s := range []string{"a ", "a b ", "a b c "} {
		m.SubmitEdit(s)
	}
	require.Len(t, m.State().Undo, 3)

	p := m.Policy()
	p.MaxDepth = 1
	p.DebounceDelay = 200 * time.Millisecond
	m.SetPolicy(p)
	require.Equal(t, []string{"a b "}, m.State().Undo)

	m.SubmitEdit("a b c d")
	clock.Advance(200 * time.Millisecond)
	require.Equal(t, []string{"a b c d"}, m.State().Undo, "new delay used for the next arm")
}

func TestManager_Reset(t *testing.T) {
	m, clock := newTestManager(t, withPolicy(func(p *Policy) { p.SeedInitialSnapshot = true }))
	m.SubmitEdit("a ")
	m.SubmitEdit("ab")
	require.True(t, m.Pending())

	m.Reset()
	require.Equal(t, "", m.Content())
	require.Equal(t, []string{""}, m.State().Undo)
	require.False(t, m.Pending())
	require.Equal(t, 0, clock.PendingCount())
}

func TestManager_CloseCancelsTimer(t *testing.T) {
	m, clock := newTestManager(t)
	m.SubmitEdit("abc")
	require.Equal(t, 1, clock.PendingCount())

	m.Close()
	require.False(t, m.Pending())
	require.Equal(t, 0, clock.PendingCount())

	clock.Advance(time.Hour)
	require.Empty(t, m.State().Undo)

	// Still usable, but no new timers.
	m.SubmitEdit("abcd")
	require.Equal(t, "abcd", m.Content())
	require.Equal(t, 0, clock.PendingCount())
	m.Close()
}

func TestManager_StaleFireIgnored(t *testing.T) {
	// A scheduler that ignores Stop, to prove the manager guards against
	// callbacks of replaced timers.
	sched := &leakyScheduler{}
	m := NewManager(sched)

	m.SubmitEdit("a")
	m.SubmitEdit("ab")
	require.Len(t, sched.fns, 2)

	sched.fns[0]()
	require.Empty(t, m.State().Undo, "replaced timer must not checkpoint")

	sched.fns[1]()
	require.Equal(t, []string{"ab"}, m.State().Undo)

	sched.fns[1]()
	require.Equal(t, []string{"ab"}, m.State().Undo, "fires at most once")
}

type leakyScheduler struct {
	fns []func()
}

type leakyHandle struct{}

func (leakyHandle) Stop() bool { return false }

func (s *leakyScheduler) AfterFunc(_ time.Duration, f func()) timer.Handle {
	s.fns = append(s.fns, f)
	return leakyHandle{}
}

// ============================================================================
// Publishing
// ============================================================================

func TestManager_PublishesChanges(t *testing.T) {
	type published struct {
		typ    pubsub.EventType
		change Change
	}
	var got []published
	pub := pubsub.PublisherFunc[Change](func(typ pubsub.EventType, c Change) {
		got = append(got, published{typ, c})
	})
	m, _ := newTestManager(t, WithPublisher(pub))

	m.SubmitEdit("a")
	m.SubmitEdit("a ")
	m.Undo()
	m.Redo()
	m.Reset()

	ops := make([]Op, 0, len(got))
	for _, p := range got {
		ops = append(ops, p.change.Op)
	}
	require.Equal(t, []Op{OpEdit, OpCheckpoint, OpEdit, OpUndo, OpRedo, OpReset}, ops)

	require.Equal(t, pubsub.CreatedEvent, got[1].typ)
	require.Equal(t, TriggerWordBoundary, got[1].change.Trigger)
	require.Equal(t, "a", got[1].change.Content)
	require.Equal(t, 1, got[1].change.UndoDepth)

	require.Equal(t, pubsub.UpdatedEvent, got[3].typ)
	require.Equal(t, 1, got[3].change.RedoDepth)
	require.Equal(t, pubsub.DeletedEvent, got[5].typ)
}

func TestManager_PublishesToBroker(t *testing.T) {
	broker := pubsub.NewBroker[Change]()
	defer broker.Close()
	ch := broker.Subscribe(t.Context())

	m, _ := newTestManager(t, WithPublisher(broker))
	m.SubmitEdit("x")

	select {
	case ev := <-ch:
		require.Equal(t, OpEdit, ev.Payload.Op)
		require.True(t, ev.Payload.Pending)
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for change")
	}
}

// ============================================================================
// Policy validation
// ============================================================================

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.DebounceDelay = -time.Second
	require.ErrorContains(t, p.Validate(), "debounce_delay")

	p = DefaultPolicy()
	p.MaxDepth = -1
	require.ErrorContains(t, p.Validate(), "max_depth")

	p = DefaultPolicy()
	p.SeedInitialSnapshot = true
	p.MaxDepth = 1
	require.ErrorContains(t, p.Validate(), "at least 2")
}
