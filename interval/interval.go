// Package interval implements a small algebra of closed time intervals
// over instant.Instant: overlap and containment tests, intersection,
// merging and window clipping. Intervals are immutable value types.
package interval

import (
	"errors"
	"fmt"

	"github.com/samber/mo"

	"github.com/orvane/libsched/instant"
)

// ErrInvalidInterval is returned when an interval would end before it starts.
var ErrInvalidInterval = errors.New("interval end precedes start")

// Interval is a closed range [Start, End] of instants with Start <= End.
// Zero-length intervals are permitted and represent instantaneous
// events; being closed, they still overlap anything covering the point.
type Interval struct {
	Start instant.Instant
	End   instant.Instant
}

// New builds an Interval, rejecting End < Start.
func New(start, end instant.Instant) (Interval, error) {
	if end.Before(start) {
		return Interval{}, fmt.Errorf("%w: %s > %s", ErrInvalidInterval, start, end)
	}
	return Interval{Start: start, End: end}, nil
}

// Must is New that panics on error, for statically-known intervals.
func Must(start, end instant.Instant) Interval {
	iv, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return iv
}

// At returns the zero-length interval at a single instant.
func At(i instant.Instant) Interval {
	return Interval{Start: i, End: i}
}

// Length returns the duration covered, always >= 0.
func (iv Interval) Length() instant.Duration {
	return iv.End.Sub(iv.Start)
}

// Contains reports whether iv fully covers o.
func (iv Interval) Contains(o Interval) bool {
	return !o.Start.Before(iv.Start) && !o.End.After(iv.End)
}

// ContainsInstant reports whether the instant lies within iv, endpoints
// included.
func (iv Interval) ContainsInstant(i instant.Instant) bool {
	return !i.Before(iv.Start) && !i.After(iv.End)
}

// Overlaps reports whether the two closed intervals share at least one
// instant. Symmetric.
func (iv Interval) Overlaps(o Interval) bool {
	return !iv.Start.After(o.End) && !o.Start.After(iv.End)
}

// Intersect returns the common sub-interval of iv and o, or None when
// they do not overlap. The result starts at the later start and ends at
// the earlier end.
func (iv Interval) Intersect(o Interval) mo.Option[Interval] {
	if !iv.Overlaps(o) {
		return mo.None[Interval]()
	}
	start := iv.Start
	if o.Start.After(start) {
		start = o.Start
	}
	end := iv.End
	if o.End.Before(end) {
		end = o.End
	}
	return mo.Some(Interval{Start: start, End: end})
}

// Merge returns the single interval covering both iv and o when they
// overlap or touch (zero gap), or None when a true gap separates them.
func (iv Interval) Merge(o Interval) mo.Option[Interval] {
	if !iv.Overlaps(o) {
		return mo.None[Interval]()
	}
	start := iv.Start
	if o.Start.Before(start) {
		start = o.Start
	}
	end := iv.End
	if o.End.After(end) {
		end = o.End
	}
	return mo.Some(Interval{Start: start, End: end})
}

// Clip restricts iv to the window, dropping it entirely when the two do
// not overlap. Used when aggregating events against a query window.
func (iv Interval) Clip(window Interval) mo.Option[Interval] {
	return iv.Intersect(window)
}

// String formats the interval as "[start, end]".
func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s]", iv.Start, iv.End)
}
