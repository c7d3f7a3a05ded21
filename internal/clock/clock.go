// Package clock lets services read the current time through an interface
// so tests can pin it.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type Real struct{}

func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Static always returns Time. For tests.
type Static struct {
	Time time.Time
}

func (c Static) Now() time.Time {
	return c.Time
}
