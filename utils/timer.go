package utils

import (
	"sync"
	"time"
)

// Clock abstracts wall-clock reads and timer scheduling so the SOS
// countdown and the check-in scheduler can be driven by a fake clock in
// tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) TimerHandle
	// At schedules fn for an absolute deadline. A deadline already in
	// the past fires as soon as the clock is able to run it.
	At(t time.Time, fn func()) TimerHandle
}

// TimerHandle is a cancellable scheduled callback. Stop never un-fires a
// callback that has already begun executing; callers that need
// exactly-once semantics must re-check their own state inside the
// callback.
type TimerHandle interface {
	// Stop cancels the pending callback. It reports false when the timer
	// already fired or was already stopped.
	Stop() bool
}

// SystemClock is the production Clock backed by the time package.
type SystemClock struct{}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) AfterFunc(d time.Duration, fn func()) TimerHandle {
	return systemTimer{timer: time.AfterFunc(d, fn)}
}

func (SystemClock) At(t time.Time, fn func()) TimerHandle {
	return systemTimer{timer: time.AfterFunc(time.Until(t), fn)}
}

type systemTimer struct {
	timer *time.Timer
}

func (t systemTimer) Stop() bool {
	return t.timer.Stop()
}

// FakeClock is a deterministic Clock for tests. Advance moves the
// simulated time forward and runs every callback whose deadline has
// passed, in deadline order, on the calling goroutine.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *FakeClock
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (fc *FakeClock) Now() time.Time {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.now
}

func (fc *FakeClock) AfterFunc(d time.Duration, fn func()) TimerHandle {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.schedule(fc.now.Add(d), fn)
}

func (fc *FakeClock) At(t time.Time, fn func()) TimerHandle {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.schedule(t, fn)
}

// schedule registers a timer. Caller holds fc.mu.
func (fc *FakeClock) schedule(deadline time.Time, fn func()) *fakeTimer {
	t := &fakeTimer{
		clock:    fc,
		deadline: deadline,
		fn:       fn,
	}
	fc.timers = append(fc.timers, t)
	return t
}

// Advance moves the clock forward by d, firing due timers as it goes.
func (fc *FakeClock) Advance(d time.Duration) {
	fc.mu.Lock()
	target := fc.now.Add(d)
	fc.mu.Unlock()
	fc.advanceTo(target)
}

func (fc *FakeClock) advanceTo(target time.Time) {
	for {
		fc.mu.Lock()
		var next *fakeTimer
		for _, t := range fc.timers {
			if t.stopped || t.fired {
				continue
			}
			if t.deadline.After(target) {
				continue
			}
			if next == nil || t.deadline.Before(next.deadline) {
				next = t
			}
		}
		if next == nil {
			fc.now = target
			fc.mu.Unlock()
			return
		}
		if next.deadline.After(fc.now) {
			fc.now = next.deadline
		}
		next.fired = true
		fn := next.fn
		fc.mu.Unlock()

		// Fired outside the lock so the callback can schedule or stop
		// other timers.
		fn()
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
