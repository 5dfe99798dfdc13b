// Package clock abstracts time so that every debounce timer in the editor can
// be driven deterministically from unit tests.
package clock

import (
	"sort"
	"sync"
	"time"

	"github.com/DragonRuins/hubdoc/pkg/resync"
)

var (
	// Lazy-load
	clockOnce      resync.Once
	clockSingleton Clock
)

// Timer is a handle on a scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the callback was still pending.
	Stop() bool
	// Reset reschedules the timer to fire after d from now.
	Reset(d time.Duration)
}

type Clock interface {
	Now() time.Time
	// AfterFunc schedules f to run after d.
	AfterFunc(d time.Duration, f func()) Timer
}

type DefaultClock struct{}

func (c DefaultClock) Now() time.Time {
	return time.Now()
}

func (c DefaultClock) AfterFunc(d time.Duration, f func()) Timer {
	return &defaultTimer{timer: time.AfterFunc(d, f)}
}

type defaultTimer struct {
	timer *time.Timer
}

func (t *defaultTimer) Stop() bool {
	return t.timer.Stop()
}

func (t *defaultTimer) Reset(d time.Duration) {
	t.timer.Reset(d)
}

// TestClock is a Clock whose time only moves when FastForward is called.
// Pending timers fire synchronously, in deadline order, during FastForward.
type TestClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*testTimer
}

func NewTestClock() *TestClock {
	return NewTestClockAt(time.Now())
}

func NewTestClockAt(date time.Time) *TestClock {
	return &TestClock{
		now: date,
	}
}

func (c *TestClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *TestClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &testTimer{
		clock:    c,
		deadline: c.now.Add(d),
		f:        f,
	}
	c.pending = append(c.pending, t)
	return t
}

// FastForward advances the clock, firing every timer whose deadline is reached.
func (c *TestClock) FastForward(d time.Duration) time.Time {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.nextDueLocked(target)
		if next == nil {
			break
		}
		if next.deadline.After(c.now) {
			c.now = next.deadline
		}
		next.stopped = true
		// Release the lock while firing: callbacks commonly reschedule timers.
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
	return target
}

func (c *TestClock) nextDueLocked(target time.Time) *testTimer {
	live := c.pending[:0]
	for _, t := range c.pending {
		if !t.stopped {
			live = append(live, t)
		}
	}
	c.pending = live
	sort.SliceStable(c.pending, func(i, j int) bool {
		return c.pending[i].deadline.Before(c.pending[j].deadline)
	})
	if len(c.pending) == 0 || c.pending[0].deadline.After(target) {
		return nil
	}
	return c.pending[0]
}

type testTimer struct {
	clock    *TestClock
	deadline time.Time
	f        func()
	stopped  bool
}

func (t *testTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasPending := !t.stopped
	t.stopped = true
	return wasPending
}

func (t *testTimer) Reset(d time.Duration) {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.deadline = t.clock.now.Add(d)
	if t.stopped {
		t.stopped = false
		t.clock.pending = append(t.clock.pending, t)
	}
}

func CurrentClock() Clock {
	if clockSingleton != nil {
		return clockSingleton
	}
	clockOnce.Do(func() {
		clockSingleton = DefaultClock{}
	})
	return clockSingleton
}

// Same as time.Now() but makes possible to control time from unit tests.
func Now() time.Time {
	return CurrentClock().Now()
}

func FreezeAt(now time.Time) *TestClock {
	testClock := NewTestClockAt(now)
	clockSingleton = testClock
	return testClock
}

func Freeze() *TestClock {
	testClock := NewTestClock()
	clockSingleton = testClock
	return testClock
}

func Unfreeze() {
	clockSingleton = nil
	clockOnce.Reset()
}
