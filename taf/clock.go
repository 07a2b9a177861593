package taf

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze time via SetClock.
// The timeline builder only consults it when a report lacks an explicit
// origin timestamp and the caller supplied no reference time.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for month/year inference. Pass nil to
// reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
