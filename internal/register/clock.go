package register

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Store uses it to stamp JoinedAt; the CLI uses it to pick the reference date.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
