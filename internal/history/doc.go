// Package history implements undo/redo for a single text buffer.
//
// The Manager keeps the current buffer, an undo stack of earlier snapshots
// and a redo stack of snapshots superseded by undo. Snapshots are whole
// buffer contents, not diffs. Edits arrive as full content; the manager
// decides when the previous content becomes a checkpoint:
//
//   - immediately, when the new content ends at a word boundary
//     (whitespace or punctuation),
//   - when the debounce timer fires after a burst of edits,
//   - on a deletion (backspace) when the policy enables it,
//   - on an explicit Checkpoint call.
//
// All triggers funnel into one checkpoint rule with a dedup guard, so
// triggers that race for the same content produce a single entry.
//
// A Manager is not safe for concurrent use. It must be driven from the
// goroutine that owns the buffer, and the timer.Scheduler it is given must
// run callbacks on that same goroutine (timer.Loop and timer.Manual both
// do).
package history
