package queue

import "time"

// Timer is the cancellation handle of a pending removal.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d on its own goroutine.
// Tests substitute a manual scheduler to control expiry deterministically.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
