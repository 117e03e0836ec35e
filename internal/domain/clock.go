package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze the
// historical/forecast boundary via SetClock. Production code uses the real
// clock; tests inject a fake for deterministic output.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Today returns the current UTC date truncated to midnight. It is the
// boundary between historical and forecast fetching.
func Today() time.Time {
	now := clock.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Now returns the current UTC time from the package clock.
func Now() time.Time { return clock.Now().UTC() }
