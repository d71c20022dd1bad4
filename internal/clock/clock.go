// Package clock lets analytics and scheduled jobs read the current time
// through an interface so tests can pin it.
package clock

import (
	"time"

	"go.uber.org/fx"
)

type Clock interface {
	Now() time.Time
}

// System reports wall-clock time in UTC.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

func New() Clock {
	return System{}
}

var Module = fx.Module("clock",
	fx.Provide(New),
)
