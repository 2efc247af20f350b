// Package clock abstracts wall-clock time and one-shot timers so components
// that arm deadlines can be tested by simulating time travel instead of
// sleeping.
package clock

import "time"

// Timer is a pending one-shot callback. Stop prevents the callback from
// running if it has not started yet and reports whether it did.
type Timer interface {
	Stop() bool
}

// Clock supplies the current time and schedules one-shot callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// System returns the real wall-clock implementation.
func System() Clock { return systemClock{} }
