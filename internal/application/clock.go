package application

import "time"

// Clock supplies mapping creation timestamps; injected so tests can pin time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default, backed by time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
