package timer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/zjrosen/undopad/internal/log"
)

const defaultLoopBuffer = 16

// Loop is a real-time Scheduler whose callbacks run on the owner's event
// loop. When a timer expires its callback is queued on Fired(); the owner
// receives it and calls it. A callback whose handle was stopped after it
// was queued does nothing when called, so Stop is reliable from the owner's
// point of view.
type Loop struct {
	fired chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a Loop with the default queue size.
func NewLoop() *Loop {
	return NewLoopWithBuffer(defaultLoopBuffer)
}

// NewLoopWithBuffer creates a Loop whose fired queue holds size callbacks.
func NewLoopWithBuffer(size int) *Loop {
	if size < 1 {
		size = 1
	}
	return &Loop{
		fired: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

type loopHandle struct {
	t       *time.Timer
	stopped atomic.Bool
	ran     atomic.Bool
}

func (h *loopHandle) Stop() bool {
	if h.ran.Load() {
		return false
	}
	if h.stopped.Swap(true) {
		return false
	}
	h.t.Stop()
	return true
}

// AfterFunc arms f to be queued on Fired() after d.
func (l *Loop) AfterFunc(d time.Duration, f func()) Handle {
	h := &loopHandle{}
	job := func() {
		if h.stopped.Load() {
			log.Debug(log.CatTimer, "dropped stopped callback")
			return
		}
		if h.ran.Swap(true) {
			return
		}
		f()
	}
	h.t = time.AfterFunc(d, func() {
		select {
		case <-l.done:
			return
		default:
		}
		select {
		case l.fired <- job:
		case <-l.done:
		}
	})
	return h
}

// Fired returns the channel of expired callbacks. The receiver must call
// each callback on the goroutine that owns the scheduled state.
func (l *Loop) Fired() <-chan func() {
	return l.fired
}

// Close stops delivery. Timers that expire afterwards are discarded.
// Safe to call multiple times.
func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.done)
	})
}
