package terminal

import "time"

// Cancel stops a scheduled task. It reports whether the task was stopped
// before it ran.
type Cancel func() bool

// Scheduler runs delayed work on behalf of a session.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Cancel
}

// TimerScheduler schedules work on real timers.
type TimerScheduler struct{}

// AfterFunc runs fn on its own goroutine after d.
func (TimerScheduler) AfterFunc(d time.Duration, fn func()) Cancel {
	return time.AfterFunc(d, fn).Stop
}
