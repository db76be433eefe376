package utils

import "time"

// Timer measures the wall-clock time of one operation. [NewTimer] starts it;
// [Timer.Stop] freezes the measurement.
type Timer struct {
	start    time.Time
	duration time.Duration
	stopped  bool
}

// NewTimer returns a running timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop records the time elapsed since the timer started and returns it.
// Later calls return the first measurement.
func (t *Timer) Stop() time.Duration {
	if !t.stopped {
		t.duration = time.Since(t.start)
		t.stopped = true
	}
	return t.duration
}

// Elapsed returns the frozen duration once stopped, or the running time.
func (t *Timer) Elapsed() time.Duration {
	if t.stopped {
		return t.duration
	}
	return time.Since(t.start)
}
