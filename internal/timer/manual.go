package timer

import "time"

// Manual is a virtual clock. Time only moves when Advance is called, and
// due callbacks run synchronously on the caller's goroutine in deadline
// order. Manual is not safe for concurrent use.
type Manual struct {
	now    time.Time
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock *Manual
	at    time.Time
	seq   int
	f     func()
	done  bool
}

func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.clock.remove(t)
	return true
}

// NewManual creates a virtual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current virtual time.
func (m *Manual) Now() time.Time {
	return m.now
}

// AfterFunc arms f to run once the clock has advanced by d.
// A non-positive d fires on the next Advance, even Advance(0).
func (m *Manual) AfterFunc(d time.Duration, f func()) Handle {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{clock: m, at: m.now.Add(d), seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d, running every callback whose
// deadline falls inside the window. Callbacks may arm new timers; those are
// run too when they fall inside the window. Returns the number of callbacks
// run.
func (m *Manual) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	target := m.now.Add(d)
	ran := 0
	for {
		next := m.next(target)
		if next == nil {
			break
		}
		m.now = next.at
		next.done = true
		m.remove(next)
		next.f()
		ran++
	}
	m.now = target
	return ran
}

// PendingCount returns the number of armed, unfired callbacks.
func (m *Manual) PendingCount() int {
	return len(m.timers)
}

// next returns the earliest timer due at or before target.
func (m *Manual) next(target time.Time) *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if t.at.After(target) {
			continue
		}
		if best == nil || t.at.Before(best.at) || (t.at.Equal(best.at) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (m *Manual) remove(t *manualTimer) {
	for i, cur := range m.timers {
		if cur == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}
