package instant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCalendarRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		c    Calendar
	}{
		{"epoch", Calendar{1970, 1, 1, 0, 0}},
		{"ordinary date", Calendar{2023, 1, 21, 21, 11}},
		{"leap day", Calendar{2024, 2, 29, 12, 30}},
		{"century non-leap year", Calendar{2100, 3, 1, 0, 0}},
		{"400-year leap day", Calendar{2000, 2, 29, 23, 59}},
		{"end of year", Calendar{1999, 12, 31, 23, 59}},
		{"far future", Calendar{5000, 7, 15, 6, 45}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, err := FromCalendar(tt.c)
			require.NoError(t, err)
			assert.Equal(t, tt.c, i.Calendar())
		})
	}
}

func TestFromCalendarKnownMinuteCounts(t *testing.T) {
	i, err := FromCalendar(Calendar{2023, 1, 21, 21, 11})
	require.NoError(t, err)
	assert.Equal(t, int64(27905591), i.Minutes())

	epoch, err := FromCalendar(Calendar{1970, 1, 1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, Min, epoch)
}

func TestFromCalendarRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name string
		c    Calendar
	}{
		{"month zero", Calendar{2024, 0, 1, 0, 0}},
		{"month thirteen", Calendar{2024, 13, 1, 0, 0}},
		{"day zero", Calendar{2024, 1, 0, 0, 0}},
		{"day 32 of january", Calendar{2024, 1, 32, 0, 0}},
		{"feb 30 in leap year", Calendar{2024, 2, 30, 0, 0}},
		{"feb 29 in non-leap year", Calendar{2023, 2, 29, 0, 0}},
		{"feb 29 in century year", Calendar{2100, 2, 29, 0, 0}},
		{"april 31", Calendar{2024, 4, 31, 0, 0}},
		{"hour 24", Calendar{2024, 1, 1, 24, 0}},
		{"negative minute", Calendar{2024, 1, 1, 0, -1}},
		{"minute 60", Calendar{2024, 1, 1, 0, 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromCalendar(tt.c)
			assert.ErrorIs(t, err, ErrInvalidCalendarFields)
		})
	}
}

func TestFromCalendarRangeBounds(t *testing.T) {
	_, err := FromCalendar(Calendar{1969, 12, 31, 23, 59})
	assert.ErrorIs(t, err, ErrRangeOverflow)

	_, err = FromCalendar(Calendar{7000, 1, 1, 0, 0})
	assert.ErrorIs(t, err, ErrRangeOverflow)

	// Max itself must round-trip like any other instant.
	assert.Equal(t, Max, MustFromCalendar(Max.Calendar()))
}

func TestInstantTotalOrder(t *testing.T) {
	a := MustFromCalendar(Calendar{2024, 1, 1, 9, 0})
	b := MustFromCalendar(Calendar{2024, 1, 1, 9, 1})
	c := MustFromCalendar(Calendar{2024, 1, 2, 0, 0})

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, +1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.Before(b))
	assert.True(t, c.After(b))
	assert.True(t, a.Equal(a))

	// Transitivity across the three
	assert.True(t, a.Before(b) && b.Before(c) && a.Before(c))
}

func TestAddAndSub(t *testing.T) {
	a := MustFromCalendar(Calendar{2024, 1, 31, 23, 0})

	b, err := a.Add(Hours(2))
	require.NoError(t, err)
	assert.Equal(t, Calendar{2024, 2, 1, 1, 0}, b.Calendar())

	assert.Equal(t, Hours(2), b.Sub(a))
	assert.Equal(t, Hours(-2), a.Sub(b))

	_, err = Max.Add(Minutes(1))
	assert.ErrorIs(t, err, ErrRangeOverflow)
	_, err = Min.Add(Minutes(-1))
	assert.ErrorIs(t, err, ErrRangeOverflow)
}

func TestDurationAntisymmetry(t *testing.T) {
	a := MustFromCalendar(Calendar{2023, 6, 1, 0, 0})
	b := MustFromCalendar(Calendar{2024, 2, 29, 13, 37})
	assert.Equal(t, a.Sub(b), -b.Sub(a))
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		name string
		c    Calendar
		want Weekday
	}{
		{"unix epoch is thursday", Calendar{1970, 1, 1, 0, 0}, Thursday},
		{"2024-01-01 is monday", Calendar{2024, 1, 1, 12, 0}, Monday},
		{"2023-03-14 is tuesday", Calendar{2023, 3, 14, 21, 11}, Tuesday},
		{"2000-02-29 is tuesday", Calendar{2000, 2, 29, 0, 0}, Tuesday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MustFromCalendar(tt.c).Weekday())
		})
	}
}

func TestZoneOffsetValidation(t *testing.T) {
	_, err := NewZoneOffset(-1441)
	assert.ErrorIs(t, err, ErrInvalidOffset)
	_, err = NewZoneOffset(1440)
	assert.ErrorIs(t, err, ErrInvalidOffset)

	z, err := NewZoneOffset(-1440)
	require.NoError(t, err)
	assert.Equal(t, -1440, z.Minutes())

	assert.Equal(t, 0, UTC.Minutes())
	assert.Equal(t, "+05:30", MustZoneOffset(330).String())
	assert.Equal(t, "-04:00", MustZoneOffset(-240).String())
}

func TestZoneOffsetInverse(t *testing.T) {
	i := MustFromCalendar(Calendar{2024, 3, 10, 1, 30})

	for _, mins := range []int{-1440, -720, -1, 0, 1, 330, 840, 1439} {
		z := MustZoneOffset(mins)
		local, err := z.ToLocal(i)
		require.NoError(t, err)
		back, err := z.ToAbsolute(local)
		require.NoError(t, err)
		assert.Equal(t, i, back, "offset %d", mins)
	}
}

func TestZoneOffsetLocalFields(t *testing.T) {
	// 2024-01-01 01:00 UTC at -02:00 is still 2023-12-31 23:00 on the wall.
	i := MustFromCalendar(Calendar{2024, 1, 1, 1, 0})
	local, err := MustZoneOffset(-120).ToLocal(i)
	require.NoError(t, err)
	assert.Equal(t, Calendar{2023, 12, 31, 23, 0}, local.Calendar())
}

func TestTimeInterop(t *testing.T) {
	i := MustFromCalendar(Calendar{2024, 5, 4, 10, 30})
	assert.Equal(t, time.Date(2024, 5, 4, 10, 30, 0, 0, time.UTC), i.Time())

	back, err := FromTime(i.Time().Add(42 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, i, back, "sub-minute precision is truncated")
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2024, 2))
	assert.Equal(t, 28, DaysInMonth(2023, 2))
	assert.Equal(t, 28, DaysInMonth(2100, 2))
	assert.Equal(t, 29, DaysInMonth(2000, 2))
	assert.Equal(t, 31, DaysInMonth(2024, 1))
	assert.Equal(t, 30, DaysInMonth(2024, 4))
}
