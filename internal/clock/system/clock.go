// Package system provides the wall-clock implementation of assess.Clock.
package system

import "time"

// Clock reads the system time. Always UTC, so analyzedAt timestamps compare
// cleanly across hosts.
type Clock struct{}

// New returns a system Clock.
func New() *Clock {
	return &Clock{}
}

// Now implements assess.Clock.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
