package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/thynetwork/timeclock/internal/core/domain"
)

// Option customises the time source, calendar location and id generation of a service.
type Option func(*runtime)

type runtime struct {
	now   func() time.Time
	loc   *time.Location
	newID func() string
}

func newRuntime(opts []Option) runtime {
	rt := runtime{
		now:   time.Now,
		loc:   time.Local,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&rt)
	}
	return rt
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(rt *runtime) {
		if now != nil {
			rt.now = now
		}
	}
}

// WithLocation sets the location used to compute "today".
func WithLocation(loc *time.Location) Option {
	return func(rt *runtime) {
		if loc != nil {
			rt.loc = loc
		}
	}
}

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(fn func() string) Option {
	return func(rt *runtime) {
		if fn != nil {
			rt.newID = fn
		}
	}
}

// today returns local midnight of the current day.
func (rt runtime) today() time.Time {
	return domain.StartOfDay(rt.now(), rt.loc)
}
