package instant

import "fmt"

const (
	offsetMin = -1440 // inclusive
	offsetMax = 1440  // exclusive
)

// ZoneOffset is a fixed signed offset from UTC in whole minutes, in the
// half-open range [-24h, +24h). The only constructor validates, so an
// out-of-range offset is unrepresentable. A ZoneOffset never changes
// over time; DST-aware zones are outside this library's model.
type ZoneOffset struct {
	minutes int
}

// UTC is the zero offset.
var UTC = ZoneOffset{}

// NewZoneOffset builds a ZoneOffset from a minute count. Returns
// ErrInvalidOffset outside [-1440, 1440).
func NewZoneOffset(minutes int) (ZoneOffset, error) {
	if minutes < offsetMin || minutes >= offsetMax {
		return ZoneOffset{}, fmt.Errorf("%w: %d minutes", ErrInvalidOffset, minutes)
	}
	return ZoneOffset{minutes: minutes}, nil
}

// MustZoneOffset is NewZoneOffset that panics on error.
func MustZoneOffset(minutes int) ZoneOffset {
	z, err := NewZoneOffset(minutes)
	if err != nil {
		panic(err)
	}
	return z
}

// Minutes returns the raw offset in minutes east of UTC.
func (z ZoneOffset) Minutes() int {
	return z.minutes
}

// ToLocal shifts an absolute Instant into the zone's local
// representation: the result's calendar fields are the wall-clock time
// an observer in the zone would read. Exact inverse of ToAbsolute;
// fails with ErrRangeOverflow only within one day of the range bounds.
func (z ZoneOffset) ToLocal(i Instant) (Instant, error) {
	return FromMinutes(i.raw + int64(z.minutes))
}

// ToAbsolute shifts a local-representation Instant back onto the
// absolute timeline. Exact inverse of ToLocal.
func (z ZoneOffset) ToAbsolute(local Instant) (Instant, error) {
	return FromMinutes(local.raw - int64(z.minutes))
}

// String formats the offset as ±hh:mm.
func (z ZoneOffset) String() string {
	sign := "+"
	m := z.minutes
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%02d:%02d", sign, m/60, m%60)
}
