// Package clock provides the time source injected into everything that
// compares wall-clock time against a listing deadline. Openness is derived
// from now vs closes_at on every call rather than flipped by a timer, so the
// clock is the only moving part tests need to control.
package clock

import "time"

// Clock yields the current instant.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Test helper.
type Fixed struct{ T time.Time }

func (f Fixed) Now() time.Time { return f.T }
