package instant

import "fmt"

const (
	minutesPerDay  = 24 * 60
	minutesPerHour = 60

	// Day number of 1970-01-01 in the proleptic Gregorian day count used
	// by daysFromCivil (day 0 = 0000-03-01).
	unixEpochDays = 719468
)

// Calendar is the wall-clock decomposition of an Instant: year, month
// (1-12), day of month (1-based), hour (0-23) and minute (0-59). It
// carries no zone information; pairing it with a ZoneOffset is the
// caller's business.
type Calendar struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// FromCalendar converts calendar fields to the Instant they denote on
// the UTC timeline. Returns ErrInvalidCalendarFields for out-of-range
// fields (including day 29 of February in non-leap years) and
// ErrRangeOverflow for valid dates outside [Min, Max]. Exact inverse of
// Instant.Calendar over the whole representable range.
func FromCalendar(c Calendar) (Instant, error) {
	if c.Month < 1 || c.Month > 12 {
		return Instant{}, fmt.Errorf("%w: month %d", ErrInvalidCalendarFields, c.Month)
	}
	if c.Day < 1 || c.Day > DaysInMonth(c.Year, c.Month) {
		return Instant{}, fmt.Errorf("%w: day %d of %04d-%02d", ErrInvalidCalendarFields, c.Day, c.Year, c.Month)
	}
	if c.Hour < 0 || c.Hour > 23 {
		return Instant{}, fmt.Errorf("%w: hour %d", ErrInvalidCalendarFields, c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return Instant{}, fmt.Errorf("%w: minute %d", ErrInvalidCalendarFields, c.Minute)
	}

	days := daysFromCivil(c.Year, c.Month, c.Day) - unixEpochDays
	return FromMinutes(days*minutesPerDay + int64(c.Hour)*minutesPerHour + int64(c.Minute))
}

// MustFromCalendar is FromCalendar that panics on error. Intended for
// statically-known dates in tests and examples.
func MustFromCalendar(c Calendar) Instant {
	i, err := FromCalendar(c)
	if err != nil {
		panic(err)
	}
	return i
}

// Calendar decomposes the Instant into its UTC calendar fields.
func (i Instant) Calendar() Calendar {
	days := i.raw / minutesPerDay
	rem := i.raw % minutesPerDay

	y, m, d := civilFromDays(days + unixEpochDays)
	return Calendar{
		Year:   y,
		Month:  m,
		Day:    d,
		Hour:   int(rem / minutesPerHour),
		Minute: int(rem % minutesPerHour),
	}
}

// DayNumber returns the number of whole days between the epoch and the
// Instant. Used by the recurrence engine for day-granular jumps.
func (i Instant) DayNumber() int64 {
	return i.raw / minutesPerDay
}

// MinuteOfDay returns the minutes elapsed since the Instant's midnight.
func (i Instant) MinuteOfDay() int64 {
	return i.raw % minutesPerDay
}

// Weekday is a day of the week. Weeks start on Monday (ISO 8601).
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Weekday returns the day of week of the Instant. The epoch day
// 1970-01-01 was a Thursday.
func (i Instant) Weekday() Weekday {
	return Weekday((i.DayNumber() + int64(Thursday)) % 7)
}

// WeekdayOfDay returns the weekday of a day number relative to the
// epoch. Total over all inputs, including negative day numbers.
func WeekdayOfDay(day int64) Weekday {
	w := (day + int64(Thursday)) % 7
	if w < 0 {
		w += 7
	}
	return Weekday(w)
}

// DayOfCivil returns the day number of a Gregorian date, counted from
// the epoch day 1970-01-01. Total over all inputs: no field validation
// and no range restriction. The recurrence engine uses it for
// local-timeline arithmetic that may transiently leave the Instant
// range; validated conversions go through FromCalendar.
func DayOfCivil(year, month, day int) int64 {
	return daysFromCivil(year, month, day) - unixEpochDays
}

// CivilOfDay is the exact inverse of DayOfCivil.
func CivilOfDay(day int64) (year, month, dayOfMonth int) {
	return civilFromDays(day + unixEpochDays)
}

// IsLeapYear reports whether y is a Gregorian leap year.
func IsLeapYear(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

var monthDays = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the length of the given month, accounting for
// leap-year February. Month must be in [1, 12].
func DaysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthDays[month]
}

// daysFromCivil maps a Gregorian date to a linear day count with day 0
// at 0000-03-01, after Howard Hinnant's chrono algorithms. The shifted
// March-first year start puts the leap day last, which makes the
// era/year-of-era arithmetic exact without special cases.
func daysFromCivil(y, m, d int) int64 {
	if m <= 2 {
		y--
	}
	era := int64(y) / 400
	if y < 0 && int64(y)%400 != 0 {
		era--
	}
	yoe := int64(y) - era*400 // [0, 399]
	var mp int64
	if m > 2 {
		mp = int64(m) - 3
	} else {
		mp = int64(m) + 9
	}
	doy := (153*mp+2)/5 + int64(d) - 1              // [0, 365]
	doe := yoe*365 + yoe/4 - yoe/100 + doy          // [0, 146096]
	return era*146097 + doe
}

// civilFromDays is the exact inverse of daysFromCivil.
func civilFromDays(z int64) (year, month, day int) {
	era := z / 146097
	if z < 0 && z%146097 != 0 {
		era--
	}
	doe := z - era*146097                                    // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365   // [0, 399]
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)                 // [0, 365]
	mp := (5*doy + 2) / 153                                  // [0, 11]
	d := doy - (153*mp+2)/5 + 1                              // [1, 31]
	var m int64
	if mp < 10 {
		m = mp + 3
	} else {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return int(y), int(m), int(d)
}
