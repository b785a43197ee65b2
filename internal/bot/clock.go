package bot

import "time"

// Clock supplies the current time and the waits between ticks.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock is the wall clock in the process's local time zone.
func RealClock() Clock { return realClock{} }
