// Package timer provides cancellable scheduled callbacks for single-owner
// event loops.
//
// Two schedulers are provided: Loop, which uses real time but hands fired
// callbacks back to the owner's event loop instead of running them on a
// timer goroutine, and Manual, a virtual clock used for deterministic
// replay and tests.
package timer

import "time"

// Handle refers to one scheduled callback.
type Handle interface {
	// Stop cancels the callback. It reports whether the call stopped the
	// callback before it ran. Stopping an already fired or already stopped
	// callback is a no-op that returns false.
	Stop() bool
}

// Scheduler arms callbacks to run after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Handle
}
