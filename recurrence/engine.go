package recurrence

import (
	"iter"

	"github.com/samber/mo"

	"github.com/orvane/libsched/instant"
	"github.com/orvane/libsched/interval"
)

const (
	minutesPerDay  = 24 * 60
	minutesPerWeek = 7 * minutesPerDay

	// maxYear bounds monthly/yearly scans one year past the top of the
	// Instant range; anything later is unrepresentable anyway.
	maxYear = 6054
)

// NextOnOrAfter returns the smallest occurrence of the rule at or after
// q, or None when the rule's bound excludes all further occurrences.
// The query is shifted onto the rule's local timeline, the candidate is
// computed there by calendar-field arithmetic, and only the final
// result is converted back to absolute time.
func (r Rule) NextOnOrAfter(q instant.Instant) mo.Option[instant.Instant] {
	qLocal := q.Minutes() + int64(r.offset.Minutes())
	if qLocal < r.localAnchor {
		qLocal = r.localAnchor
	}
	occ, ok := r.nextLocal(qLocal)
	if !ok {
		return mo.None[instant.Instant]()
	}
	return r.admit(occ)
}

// PreviousOnOrBefore returns the largest occurrence of the rule at or
// before q, or None when no occurrence precedes it.
func (r Rule) PreviousOnOrBefore(q instant.Instant) mo.Option[instant.Instant] {
	if r.hasUntil && q.After(r.until) {
		q = r.until
	}
	qLocal := q.Minutes() + int64(r.offset.Minutes())
	occ, ok := r.prevLocal(qLocal)
	if !ok {
		return mo.None[instant.Instant]()
	}
	if r.count > 0 {
		if r.indexOf(occ) >= int64(r.count) {
			// q lies past the count bound; the answer is the last
			// occurrence the bound admits.
			occ, ok = r.localAt(int64(r.count) - 1)
			if !ok {
				return mo.None[instant.Instant]()
			}
		}
	}
	abs, err := instant.FromMinutes(occ - int64(r.offset.Minutes()))
	if err != nil {
		return mo.None[instant.Instant]()
	}
	return mo.Some(abs)
}

// OccurrencesWithin returns the rule's occurrences inside the window,
// window end inclusive, in ascending order. The sequence is lazy and
// restartable: each range-over recomputes from the rule alone, no
// cursor state is shared.
func (r Rule) OccurrencesWithin(window interval.Interval) iter.Seq[instant.Instant] {
	return func(yield func(instant.Instant) bool) {
		next := r.NextOnOrAfter(window.Start)
		for next.IsPresent() {
			occ := next.MustGet()
			if occ.After(window.End) {
				return
			}
			if !yield(occ) {
				return
			}
			after, err := occ.Add(instant.Minutes(1))
			if err != nil {
				return
			}
			next = r.NextOnOrAfter(after)
		}
	}
}

// admit applies the rule's bound to a local candidate and converts it
// back to the absolute timeline.
func (r Rule) admit(occLocal int64) mo.Option[instant.Instant] {
	abs, err := instant.FromMinutes(occLocal - int64(r.offset.Minutes()))
	if err != nil {
		return mo.None[instant.Instant]()
	}
	if r.hasUntil && abs.After(r.until) {
		return mo.None[instant.Instant]()
	}
	if r.count > 0 && r.indexOf(occLocal) >= int64(r.count) {
		return mo.None[instant.Instant]()
	}
	return mo.Some(abs)
}

// nextLocal computes the first unbounded occurrence at or after qLocal
// on the local timeline. Requires qLocal >= localAnchor.
func (r Rule) nextLocal(qLocal int64) (int64, bool) {
	switch {
	case r.freq == Daily:
		return r.nextByPeriod(qLocal, int64(r.step)*minutesPerDay), true
	case r.freq == Weekly && r.weekdays.IsEmpty():
		return r.nextByPeriod(qLocal, int64(r.step)*minutesPerWeek), true
	case r.freq == Weekly:
		return r.nextWeekday(qLocal)
	default:
		return r.nextCivil(qLocal)
	}
}

func (r Rule) prevLocal(qLocal int64) (int64, bool) {
	if qLocal < r.localAnchor {
		return 0, false
	}
	switch {
	case r.freq == Daily:
		return r.prevByPeriod(qLocal, int64(r.step)*minutesPerDay), true
	case r.freq == Weekly && r.weekdays.IsEmpty():
		return r.prevByPeriod(qLocal, int64(r.step)*minutesPerWeek), true
	case r.freq == Weekly:
		return r.prevWeekday(qLocal)
	default:
		return r.prevCivil(qLocal)
	}
}

// nextByPeriod is the closed-form jump for fixed-period frequencies.
func (r Rule) nextByPeriod(qLocal, period int64) int64 {
	n := ceilDiv(qLocal-r.localAnchor, period)
	return r.localAnchor + n*period
}

func (r Rule) prevByPeriod(qLocal, period int64) int64 {
	n := floorDiv(qLocal-r.localAnchor, period)
	return r.localAnchor + n*period
}

// nextWeekday advances a weekday-refined weekly rule. Weeks run Monday
// to Sunday; a week is eligible when its Monday is a whole multiple of
// step weeks after the Monday of the anchor's week. At most two weeks
// are scanned: the aligned week of the query, then the next eligible
// week, which always produces a hit since the set is non-empty.
func (r Rule) nextWeekday(qLocal int64) (int64, bool) {
	tod := floorMod(r.localAnchor, minutesPerDay)
	anchorDay := floorDiv(r.localAnchor, minutesPerDay)
	anchorMonday := anchorDay - int64(instant.WeekdayOfDay(anchorDay))

	startDay := floorDiv(qLocal, minutesPerDay)
	if floorMod(qLocal, minutesPerDay) > tod {
		startDay++
	}
	if startDay < anchorDay {
		startDay = anchorDay
	}

	monday := startDay - int64(instant.WeekdayOfDay(startDay))
	step := int64(r.step)
	if rem := (monday - anchorMonday) / 7 % step; rem != 0 {
		monday += (step - rem) * 7
		startDay = monday
	}

	for pass := 0; pass < 2; pass++ {
		for wd := int(startDay - monday); wd < 7; wd++ {
			if r.weekdays.Contains(instant.Weekday(wd)) {
				return (monday+int64(wd))*minutesPerDay + tod, true
			}
		}
		monday += step * 7
		startDay = monday
	}
	return 0, false
}

func (r Rule) prevWeekday(qLocal int64) (int64, bool) {
	tod := floorMod(r.localAnchor, minutesPerDay)
	anchorDay := floorDiv(r.localAnchor, minutesPerDay)
	anchorMonday := anchorDay - int64(instant.WeekdayOfDay(anchorDay))

	endDay := floorDiv(qLocal, minutesPerDay)
	if floorMod(qLocal, minutesPerDay) < tod {
		endDay--
	}
	if endDay < anchorDay {
		return 0, false
	}

	monday := endDay - int64(instant.WeekdayOfDay(endDay))
	step := int64(r.step)
	if rem := (monday - anchorMonday) / 7 % step; rem != 0 {
		monday -= rem * 7
		endDay = monday + 6
	}

	for monday+6 >= anchorDay {
		for wd := int(endDay - monday); wd >= 0; wd-- {
			day := monday + int64(wd)
			if day >= anchorDay && r.weekdays.Contains(instant.Weekday(wd)) {
				return day*minutesPerDay + tod, true
			}
		}
		monday -= step * 7
		endDay = monday + 6
	}
	return 0, false
}

// nextCivil advances monthly and yearly rules. The first eligible
// period at or after the query is found by arithmetic; from there the
// scan steps one eligible period at a time, because a period may lack
// the anchor's day (Jan 31 monthly has no February occurrence) and such
// periods are skipped outright, never clamped to a nearby day.
func (r Rule) nextCivil(qLocal int64) (int64, bool) {
	tod := floorMod(r.localAnchor, minutesPerDay)
	ay, am, ad := instant.CivilOfDay(floorDiv(r.localAnchor, minutesPerDay))
	qy, qm, _ := instant.CivilOfDay(floorDiv(qLocal, minutesPerDay))
	step := int64(r.step)

	anchorU := r.unit(ay, am)
	u := r.unit(qy, qm)
	if u < anchorU {
		u = anchorU
	}
	if rem := (u - anchorU) % step; rem != 0 {
		u += step - rem
	}

	for {
		y, mon := r.unitCivil(u, am)
		if y > maxYear {
			return 0, false
		}
		if ad <= instant.DaysInMonth(y, mon) {
			occ := instant.DayOfCivil(y, mon, ad)*minutesPerDay + tod
			if occ >= qLocal {
				return occ, true
			}
		}
		u += step
	}
}

func (r Rule) prevCivil(qLocal int64) (int64, bool) {
	tod := floorMod(r.localAnchor, minutesPerDay)
	ay, am, ad := instant.CivilOfDay(floorDiv(r.localAnchor, minutesPerDay))
	qy, qm, _ := instant.CivilOfDay(floorDiv(qLocal, minutesPerDay))
	step := int64(r.step)

	anchorU := r.unit(ay, am)
	u := r.unit(qy, qm)
	u -= floorMod(u-anchorU, step)

	// Terminates at the anchor's own period at the latest, which always
	// carries a valid occurrence <= qLocal.
	for ; u >= anchorU; u -= step {
		y, mon := r.unitCivil(u, am)
		if ad <= instant.DaysInMonth(y, mon) {
			occ := instant.DayOfCivil(y, mon, ad)*minutesPerDay + tod
			if occ <= qLocal {
				return occ, true
			}
		}
	}
	return 0, false
}

// indexOf returns the 0-based position of a known occurrence in the
// rule's series, the anchor being position 0. Regular frequencies use
// arithmetic division; monthly and yearly rules count eligible periods
// explicitly, stopping early once past the rule's count bound.
func (r Rule) indexOf(occLocal int64) int64 {
	switch {
	case r.freq == Daily:
		return (occLocal - r.localAnchor) / (int64(r.step) * minutesPerDay)
	case r.freq == Weekly && r.weekdays.IsEmpty():
		return (occLocal - r.localAnchor) / (int64(r.step) * minutesPerWeek)
	case r.freq == Weekly:
		return r.weekdayIndexOf(occLocal)
	default:
		return r.civilIndexOf(occLocal)
	}
}

func (r Rule) weekdayIndexOf(occLocal int64) int64 {
	anchorDay := floorDiv(r.localAnchor, minutesPerDay)
	anchorMonday := anchorDay - int64(instant.WeekdayOfDay(anchorDay))
	anchorWd := instant.WeekdayOfDay(anchorDay)

	day := floorDiv(occLocal, minutesPerDay)
	wd := instant.WeekdayOfDay(day)
	monday := day - int64(wd)

	k := (monday - anchorMonday) / 7 / int64(r.step)
	if k == 0 {
		// Same week as the anchor; set weekdays before the anchor are
		// not occurrences.
		return int64(r.weekdays.countBelow(wd) - r.weekdays.countBelow(anchorWd))
	}
	inAnchorWeek := int64(r.weekdays.Count() - r.weekdays.countBelow(anchorWd))
	return inAnchorWeek + (k-1)*int64(r.weekdays.Count()) + int64(r.weekdays.countBelow(wd))
}

func (r Rule) civilIndexOf(occLocal int64) int64 {
	ay, am, ad := instant.CivilOfDay(floorDiv(r.localAnchor, minutesPerDay))
	oy, om, _ := instant.CivilOfDay(floorDiv(occLocal, minutesPerDay))
	step := int64(r.step)

	occU := r.unit(oy, om)
	var idx int64
	for u := r.unit(ay, am); u < occU; u += step {
		y, mon := r.unitCivil(u, am)
		if ad <= instant.DaysInMonth(y, mon) {
			idx++
		}
		if r.count > 0 && idx >= int64(r.count) {
			return idx
		}
	}
	return idx
}

// localAt returns the idx-th occurrence on the local timeline.
func (r Rule) localAt(idx int64) (int64, bool) {
	switch {
	case r.freq == Daily:
		return r.localAnchor + idx*int64(r.step)*minutesPerDay, true
	case r.freq == Weekly && r.weekdays.IsEmpty():
		return r.localAnchor + idx*int64(r.step)*minutesPerWeek, true
	case r.freq == Weekly:
		return r.weekdayAt(idx), true
	default:
		return r.civilAt(idx)
	}
}

func (r Rule) weekdayAt(idx int64) int64 {
	tod := floorMod(r.localAnchor, minutesPerDay)
	anchorDay := floorDiv(r.localAnchor, minutesPerDay)
	anchorMonday := anchorDay - int64(instant.WeekdayOfDay(anchorDay))
	anchorWd := instant.WeekdayOfDay(anchorDay)

	size := int64(r.weekdays.Count())
	before := r.weekdays.countBelow(anchorWd)
	rest := size - int64(before) // occurrences within the anchor's week
	if idx < rest {
		wd := r.weekdays.nth(before + int(idx))
		return (anchorMonday+int64(wd))*minutesPerDay + tod
	}
	idx -= rest
	k := idx/size + 1
	wd := r.weekdays.nth(int(idx % size))
	return (anchorMonday+k*int64(r.step)*7+int64(wd))*minutesPerDay + tod
}

func (r Rule) civilAt(idx int64) (int64, bool) {
	tod := floorMod(r.localAnchor, minutesPerDay)
	ay, am, ad := instant.CivilOfDay(floorDiv(r.localAnchor, minutesPerDay))
	step := int64(r.step)

	for u := r.unit(ay, am); ; u += step {
		y, mon := r.unitCivil(u, am)
		if y > maxYear {
			return 0, false
		}
		if ad <= instant.DaysInMonth(y, mon) {
			if idx == 0 {
				return instant.DayOfCivil(y, mon, ad)*minutesPerDay + tod, true
			}
			idx--
		}
	}
}

// unit maps a (year, month) pair onto the rule's stepping axis: linear
// month index for monthly rules, plain year for yearly ones.
func (r Rule) unit(y, m int) int64 {
	if r.freq == Monthly {
		return int64(y)*12 + int64(m-1)
	}
	return int64(y)
}

func (r Rule) unitCivil(u int64, anchorMonth int) (year, month int) {
	if r.freq == Monthly {
		return int(u / 12), int(u%12) + 1
	}
	return int(u), anchorMonth
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}

func ceilDiv(a, b int64) int64 {
	return floorDiv(a+b-1, b)
}
