package history

import "github.com/zjrosen/undopad/internal/pubsub"

// Op identifies what changed the history state.
type Op string

const (
	OpEdit       Op = "edit"
	OpCheckpoint Op = "checkpoint"
	OpUndo       Op = "undo"
	OpRedo       Op = "redo"
	OpReset      Op = "reset"
)

// Trigger identifies which rule committed a checkpoint.
type Trigger string

const (
	TriggerNone         Trigger = ""
	TriggerWordBoundary Trigger = "word-boundary"
	TriggerDebounce     Trigger = "debounce"
	TriggerDeletion     Trigger = "deletion"
	TriggerManual       Trigger = "manual"
)

// Change describes one state transition. It is published to the
// manager's Publisher after the transition is complete.
type Change struct {
	Op        Op
	Trigger   Trigger // set for OpCheckpoint only
	Content   string  // buffer after the change; the snapshot for OpCheckpoint
	UndoDepth int
	RedoDepth int
	Pending   bool
}

// eventType maps an op onto the pubsub vocabulary.
func (c Change) eventType() pubsub.EventType {
	switch c.Op {
	case OpCheckpoint:
		return pubsub.CreatedEvent
	case OpReset:
		return pubsub.DeletedEvent
	default:
		return pubsub.UpdatedEvent
	}
}

// State is a copy of the manager's state.
type State struct {
	Content string
	Undo    []string // oldest first
	Redo    []string // most recently undone first
	Pending bool
}
