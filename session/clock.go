package session

import "time"

// Clock is the time source for session metadata, injectable for tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewRealClock returns the default wall clock.
func NewRealClock() Clock { return realClock{} }
