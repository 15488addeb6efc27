package history

import (
	"fmt"
	"time"
)

// DefaultDebounceDelay is how long the buffer must be idle before the
// debounce checkpoint fires.
const DefaultDebounceDelay = 1000 * time.Millisecond

// Policy holds the batching and stack rules for a Manager.
type Policy struct {
	// DebounceDelay is the idle time before a debounce checkpoint.
	// Zero disables debounce checkpoints.
	DebounceDelay time.Duration

	// SeedInitialSnapshot starts the undo stack with an empty-string entry.
	// The bottom entry then acts as a floor: undo is a no-op once only
	// the floor remains.
	SeedInitialSnapshot bool

	// DebounceCapturesEditTimeContent checkpoints the content of the edit
	// that armed the timer. When false the buffer as it is when the timer
	// fires is checkpointed instead.
	DebounceCapturesEditTimeContent bool

	// DedupCheckpoints skips a checkpoint equal to the current top of the
	// undo stack.
	DedupCheckpoints bool

	// CheckpointOnDeletion makes Deletion checkpoint the pre-deletion buffer.
	CheckpointOnDeletion bool

	// CancelPendingOnCommand cancels a pending debounce checkpoint when
	// undo or redo actually changes the buffer.
	CancelPendingOnCommand bool

	// MaxDepth caps the undo stack, seeded sentinel included; the oldest
	// checkpoints are dropped first and the sentinel is kept. Zero means
	// unlimited.
	MaxDepth int
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		DebounceDelay:                   DefaultDebounceDelay,
		SeedInitialSnapshot:             false,
		DebounceCapturesEditTimeContent: true,
		DedupCheckpoints:                true,
		CheckpointOnDeletion:            true,
		CancelPendingOnCommand:          false,
		MaxDepth:                        0,
	}
}

// Validate reports the first invalid field.
func (p Policy) Validate() error {
	if p.DebounceDelay < 0 {
		return fmt.Errorf("debounce_delay must not be negative, got %s", p.DebounceDelay)
	}
	if p.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", p.MaxDepth)
	}
	if p.SeedInitialSnapshot && p.MaxDepth == 1 {
		return fmt.Errorf("max_depth must be at least 2 when seed_initial_snapshot is set")
	}
	return nil
}

// floor is the number of bottom undo entries that undo never pops.
func (p Policy) floor() int {
	if p.SeedInitialSnapshot {
		return 1
	}
	return 0
}
