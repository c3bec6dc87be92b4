// Package recurrence describes repeating calendar patterns and
// evaluates them lazily: given a rule and a reference instant, the next
// or previous occurrence is computed directly from local calendar-field
// arithmetic, without enumerating the series from its anchor.
//
// A Rule pairs an anchor instant with a fixed zone offset; all
// occurrence generation happens in the local wall-clock representation,
// so a "Tuesday 09:00" weekly rule stays wall-clock-stable for any
// offset. DST-aware zones, whose offset changes over the rule's
// lifetime, are outside this model.
package recurrence

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/samber/mo"

	"github.com/orvane/libsched/instant"
)

// ErrInvalidRecurrence is returned when a rule is internally
// inconsistent: the anchor violates the rule's own refinements, or the
// bound can never admit an occurrence.
var ErrInvalidRecurrence = errors.New("invalid recurrence rule")

// Frequency is the base unit a rule repeats over.
type Frequency int

const (
	Daily Frequency = iota
	Weekly
	Monthly
	Yearly
)

var frequencyNames = [4]string{"daily", "weekly", "monthly", "yearly"}

func (f Frequency) String() string {
	if f < Daily || f > Yearly {
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
	return frequencyNames[f]
}

// WeekdaySet is a set of weekdays, used to refine weekly rules to a
// subset of days. The zero value is the empty set, which on a Rule
// means "the anchor's weekday only".
type WeekdaySet uint8

// Weekdays builds a WeekdaySet from the given days.
func Weekdays(days ...instant.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

// Contains reports whether d is in the set.
func (s WeekdaySet) Contains(d instant.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

// IsEmpty reports whether no weekday is set.
func (s WeekdaySet) IsEmpty() bool { return s == 0 }

// Count returns the number of weekdays in the set.
func (s WeekdaySet) Count() int { return bits.OnesCount8(uint8(s)) }

// countBelow returns how many set weekdays precede d (Monday-first).
func (s WeekdaySet) countBelow(d instant.Weekday) int {
	mask := WeekdaySet(1<<uint(d)) - 1
	return bits.OnesCount8(uint8(s & mask))
}

// nth returns the n-th set weekday in Monday-first order, starting at 0.
// Requires n < Count().
func (s WeekdaySet) nth(n int) instant.Weekday {
	for d := instant.Monday; d <= instant.Sunday; d++ {
		if s.Contains(d) {
			if n == 0 {
				return d
			}
			n--
		}
	}
	panic("recurrence: weekday index out of range")
}

func (s WeekdaySet) String() string {
	if s.IsEmpty() {
		return "{}"
	}
	var names []string
	for d := instant.Monday; d <= instant.Sunday; d++ {
		if s.Contains(d) {
			names = append(names, d.String())
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// RuleConfig is the caller-facing description of a recurrence pattern.
// Zero Step defaults to 1. Until and Count are the two mutually
// exclusive bounds; leaving both unset makes the rule unbounded.
type RuleConfig struct {
	Anchor    instant.Instant    // first occurrence, absolute
	Offset    instant.ZoneOffset // fixed offset the local pattern is expressed against
	Frequency Frequency
	Step      int // repeat every Step units; 0 defaults to 1

	// Weekdays restricts weekly rules to a subset of days. The anchor
	// must fall on one of them. Only valid with Frequency Weekly.
	Weekdays WeekdaySet

	// Until is an inclusive terminal instant on the absolute timeline.
	Until *instant.Instant

	// Count caps the total number of occurrences, the anchor included.
	// Zero means unbounded.
	Count int
}

// Rule is a validated, immutable recurrence pattern. Occurrence
// enumeration is a pure function of the rule and a query instant; no
// cursor state is retained between calls.
type Rule struct {
	anchor   instant.Instant
	offset   instant.ZoneOffset
	freq     Frequency
	step     int
	weekdays WeekdaySet
	until    instant.Instant
	hasUntil bool
	count    int

	// localAnchor is the anchor shifted onto the rule's local timeline,
	// in raw minutes. May sit outside the Instant range near its edges,
	// which is why it is kept as a bare integer.
	localAnchor int64
}

// NewRule validates a RuleConfig and returns the Rule it describes.
// Fails with ErrInvalidRecurrence when the anchor does not satisfy the
// rule's own refinements or the bound is inconsistent.
func NewRule(cfg RuleConfig) (Rule, error) {
	if cfg.Frequency < Daily || cfg.Frequency > Yearly {
		return Rule{}, fmt.Errorf("%w: unknown frequency %d", ErrInvalidRecurrence, int(cfg.Frequency))
	}
	step := cfg.Step
	if step == 0 {
		step = 1
	}
	if step < 0 {
		return Rule{}, fmt.Errorf("%w: step %d", ErrInvalidRecurrence, cfg.Step)
	}
	if cfg.Count < 0 {
		return Rule{}, fmt.Errorf("%w: occurrence count %d", ErrInvalidRecurrence, cfg.Count)
	}
	if cfg.Until != nil && cfg.Count > 0 {
		return Rule{}, fmt.Errorf("%w: both terminal instant and occurrence count set", ErrInvalidRecurrence)
	}
	if cfg.Until != nil && cfg.Until.Before(cfg.Anchor) {
		return Rule{}, fmt.Errorf("%w: terminal instant %s precedes anchor %s", ErrInvalidRecurrence, cfg.Until, cfg.Anchor)
	}
	if !cfg.Weekdays.IsEmpty() && cfg.Frequency != Weekly {
		return Rule{}, fmt.Errorf("%w: weekday refinement on %s rule", ErrInvalidRecurrence, cfg.Frequency)
	}

	r := Rule{
		anchor:      cfg.Anchor,
		offset:      cfg.Offset,
		freq:        cfg.Frequency,
		step:        step,
		weekdays:    cfg.Weekdays,
		count:       cfg.Count,
		localAnchor: cfg.Anchor.Minutes() + int64(cfg.Offset.Minutes()),
	}
	if cfg.Until != nil {
		r.until = *cfg.Until
		r.hasUntil = true
	}

	if !r.weekdays.IsEmpty() {
		wd := instant.WeekdayOfDay(floorDiv(r.localAnchor, minutesPerDay))
		if !r.weekdays.Contains(wd) {
			return Rule{}, fmt.Errorf("%w: anchor falls on %s, outside %s", ErrInvalidRecurrence, wd, r.weekdays)
		}
	}

	return r, nil
}

// Anchor returns the rule's first occurrence on the absolute timeline.
func (r Rule) Anchor() instant.Instant { return r.anchor }

// Offset returns the fixed zone offset the local pattern is expressed against.
func (r Rule) Offset() instant.ZoneOffset { return r.offset }

// Frequency returns the rule's base repetition unit.
func (r Rule) Frequency() Frequency { return r.freq }

// Step returns the repetition stride, always >= 1.
func (r Rule) Step() int { return r.step }

// Weekdays returns the weekly weekday refinement, empty for other frequencies.
func (r Rule) Weekdays() WeekdaySet { return r.weekdays }

// Until returns the inclusive terminal instant, if the rule carries one.
func (r Rule) Until() mo.Option[instant.Instant] {
	if !r.hasUntil {
		return mo.None[instant.Instant]()
	}
	return mo.Some(r.until)
}

// Count returns the occurrence-count bound, 0 when unbounded.
func (r Rule) Count() int { return r.count }

// Bounded reports whether the rule terminates by itself.
func (r Rule) Bounded() bool { return r.hasUntil || r.count > 0 }

func (r Rule) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "every %d %s from %s%s", r.step, r.freq, r.anchor, r.offset)
	if !r.weekdays.IsEmpty() {
		fmt.Fprintf(&b, " on %s", r.weekdays)
	}
	switch {
	case r.hasUntil:
		fmt.Fprintf(&b, " until %s", r.until)
	case r.count > 0:
		fmt.Fprintf(&b, " x%d", r.count)
	}
	return b.String()
}
