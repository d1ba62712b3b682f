package clock

import "time"

// Clock abstracts "now" so scheduling logic never reads system time
// directly and stays deterministic under test.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Test helper.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }
