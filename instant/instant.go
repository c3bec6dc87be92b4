// Package instant provides the absolute timeline the rest of the library
// is built on: minute-granularity instants, signed durations, validated
// zone offsets and exact Gregorian calendar conversion.
package instant

import (
	"errors"
	"fmt"
	"time"
)

// Error types returned by construction and arithmetic
var (
	ErrInvalidCalendarFields = errors.New("invalid calendar fields")
	ErrRangeOverflow         = errors.New("instant out of representable range")
	ErrInvalidOffset         = errors.New("zone offset out of range")
)

const (
	minRaw int64 = 0
	maxRaw int64 = 1<<31 - 1
)

// Instant is an absolute, zone-independent point on the timeline, stored
// as a count of whole minutes since the Unix epoch (1970-01-01T00:00 UTC).
// The representable range is the closed interval [Min, Max]; Min is the
// epoch itself, Max falls in the year 6053. Immutable value type.
type Instant struct {
	raw int64
}

// Min is the floor of the representable range (the Unix epoch).
var Min = Instant{raw: minRaw}

// Max is the ceiling of the representable range.
var Max = Instant{raw: maxRaw}

// FromMinutes builds an Instant from a raw minute count since the epoch.
// Returns ErrRangeOverflow outside [Min, Max].
func FromMinutes(m int64) (Instant, error) {
	if m < minRaw || m > maxRaw {
		return Instant{}, fmt.Errorf("%w: %d minutes", ErrRangeOverflow, m)
	}
	return Instant{raw: m}, nil
}

// FromTime converts a time.Time to an Instant, truncating to whole
// minutes. The wall-clock fields are irrelevant; only the absolute
// moment is kept.
func FromTime(t time.Time) (Instant, error) {
	return FromMinutes(t.Unix() / 60)
}

// Minutes returns the raw minute count since the epoch.
func (i Instant) Minutes() int64 {
	return i.raw
}

// Time converts the Instant to a time.Time in UTC.
func (i Instant) Time() time.Time {
	return time.Unix(i.raw*60, 0).UTC()
}

// Compare returns -1, 0 or +1 depending on the order of i and o.
func (i Instant) Compare(o Instant) int {
	switch {
	case i.raw < o.raw:
		return -1
	case i.raw > o.raw:
		return +1
	default:
		return 0
	}
}

// Before reports whether i is strictly earlier than o.
func (i Instant) Before(o Instant) bool { return i.raw < o.raw }

// After reports whether i is strictly later than o.
func (i Instant) After(o Instant) bool { return i.raw > o.raw }

// Equal reports whether i and o are the same instant.
func (i Instant) Equal(o Instant) bool { return i.raw == o.raw }

// Add shifts the Instant by d. Returns ErrRangeOverflow if the result
// leaves [Min, Max]; the arithmetic itself cannot wrap, int64 has ample
// headroom over the representable range.
func (i Instant) Add(d Duration) (Instant, error) {
	return FromMinutes(i.raw + int64(d))
}

// Sub returns the signed duration from o to i, so that
// a.Sub(b) == -(b.Sub(a)) for all representable a, b.
func (i Instant) Sub(o Instant) Duration {
	return Duration(i.raw - o.raw)
}

// String formats the Instant as its UTC calendar form.
func (i Instant) String() string {
	c := i.Calendar()
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute)
}

// Duration is a signed span of whole minutes between two Instants.
// Durations are closed under addition; only applying one to an Instant
// can overflow the representable range.
type Duration int64

// Convenience constructors
func Minutes(n int64) Duration { return Duration(n) }
func Hours(n int64) Duration   { return Duration(n * 60) }
func Days(n int64) Duration    { return Duration(n * 24 * 60) }

// Minutes returns the span as a minute count.
func (d Duration) Minutes() int64 { return int64(d) }

// Std converts the Duration to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d) * time.Minute
}

func (d Duration) String() string {
	return fmt.Sprintf("%dmin", int64(d))
}
