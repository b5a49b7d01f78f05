package testutil

import (
	"sort"
	"sync"
	"time"
)

// Epoch is the default start time of a ManualClock: 2024-01-01T00:00:00Z.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// ManualClock is a wall clock that only moves when told to.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock reading start. A zero start means Epoch.
func NewManualClock(start time.Time) *ManualClock {
	if start.IsZero() {
		start = Epoch
	}
	return &ManualClock{now: start}
}

// Now returns the current reading.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t. Moving backwards is allowed.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// ManualScheduler runs delayed callbacks against a ManualClock.
// Nothing fires until Advance or FireAll is called; callbacks run on the
// calling goroutine, in due-time order, ties broken by scheduling order.
type ManualScheduler struct {
	mu     sync.Mutex
	clock  *ManualClock
	timers []*manualTimer
	seq    int
}

type manualTimer struct {
	due     time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

// NewManualScheduler creates a scheduler driven by clock.
func NewManualScheduler(clock *ManualClock) *ManualScheduler {
	return &ManualScheduler{clock: clock}
}

// AfterFunc schedules f to run d after the clock's current reading.
// The returned stop function reports whether it prevented f from running.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{due: s.clock.Now().Add(d), seq: s.seq, fn: f}
	s.timers = append(s.timers, t)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.stopped || t.fired {
			return false
		}
		t.stopped = true
		return true
	}
}

// Pending returns the number of timers that have neither fired nor stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every timer that falls due.
// Returns the number of callbacks run.
func (s *ManualScheduler) Advance(d time.Duration) int {
	target := s.clock.Now().Add(d)
	n := 0
	for {
		t := s.next(func(t *manualTimer) bool { return !t.due.After(target) })
		if t == nil {
			break
		}
		s.clock.Set(t.due)
		t.fn()
		n++
	}
	s.clock.Set(target)
	return n
}

// FireAll fires every pending timer, moving the clock to each due time.
// Returns the number of callbacks run.
func (s *ManualScheduler) FireAll() int {
	n := 0
	for {
		t := s.next(func(*manualTimer) bool { return true })
		if t == nil {
			return n
		}
		if t.due.After(s.clock.Now()) {
			s.clock.Set(t.due)
		}
		t.fn()
		n++
	}
}

// next claims the earliest pending timer accepted by ok, marking it fired.
func (s *ManualScheduler) next(ok func(*manualTimer) bool) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.timers = live
	sort.SliceStable(s.timers, func(i, j int) bool {
		if !s.timers[i].due.Equal(s.timers[j].due) {
			return s.timers[i].due.Before(s.timers[j].due)
		}
		return s.timers[i].seq < s.timers[j].seq
	})

	for _, t := range s.timers {
		if ok(t) {
			t.fired = true
			return t
		}
	}
	return nil
}
