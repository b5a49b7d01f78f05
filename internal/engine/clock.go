package engine

import "time"

// Clock supplies the wall-clock time stamped on terminal and scenario
// history entries.
//
// Production code uses SystemClock; tests inject testutil.ManualClock so
// timestamps and mission-log ordering are reproducible.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Scheduler runs f once after d. The returned stop function cancels the
// callback and reports whether it did so before f ran.
//
// The engine only uses it for the staggered hint entries at mission start.
// Callbacks may run on any goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// SystemScheduler schedules callbacks with time.AfterFunc.
type SystemScheduler struct{}

// AfterFunc implements Scheduler.
func (SystemScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// millis converts t to the Unix-millisecond timestamps used in history entries.
func millis(t time.Time) int64 {
	return t.UnixMilli()
}
