// Package schedule turns collections of calendar commitments into
// merged busy-interval sets over a query window: the input the load
// factor computation consumes.
package schedule

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/orvane/libsched/instant"
	"github.com/orvane/libsched/interval"
	"github.com/orvane/libsched/recurrence"
)

var (
	// ErrInvalidEvent marks an event definition with no source, more
	// than one source, or a negative occurrence length.
	ErrInvalidEvent = errors.New("invalid event definition")

	// ErrRecurrenceOverflow is returned when expanding an event within a
	// window would exceed the aggregator's occurrence cap. The whole
	// aggregation aborts; a silently truncated busy set would understate
	// load downstream.
	ErrRecurrenceOverflow = errors.New("recurrence expansion exceeds occurrence cap")
)

// Event is a single schedule commitment. Exactly one of the three
// sources is set: a literal one-off interval, a recurrence rule, or a
// standard cron expression. Rule and cron occurrences are realized as
// intervals of the event's Length starting at each occurrence instant.
type Event struct {
	ID      uuid.UUID
	Summary string

	Once *interval.Interval
	Rule *recurrence.Rule
	Cron string

	Length instant.Duration
}

// NewOnceEvent builds a one-off event covering the given interval.
func NewOnceEvent(summary string, iv interval.Interval) Event {
	return Event{ID: uuid.New(), Summary: summary, Once: &iv}
}

// NewRecurringEvent builds a recurring event whose occurrences each
// last the given length.
func NewRecurringEvent(summary string, rule recurrence.Rule, length instant.Duration) (Event, error) {
	ev := Event{ID: uuid.New(), Summary: summary, Rule: &rule, Length: length}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// NewCronEvent builds a recurring event from a standard five-field cron
// expression. The expression is validated here; a malformed one never
// reaches aggregation.
func NewCronEvent(summary, expr string, length instant.Duration) (Event, error) {
	ev := Event{ID: uuid.New(), Summary: summary, Cron: expr, Length: length}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Validate checks the event's structural invariants.
func (ev Event) Validate() error {
	sources := 0
	if ev.Once != nil {
		sources++
	}
	if ev.Rule != nil {
		sources++
	}
	if ev.Cron != "" {
		sources++
	}
	if sources != 1 {
		return fmt.Errorf("%w: %d sources set, want exactly one", ErrInvalidEvent, sources)
	}
	if ev.Length < 0 {
		return fmt.Errorf("%w: negative occurrence length %s", ErrInvalidEvent, ev.Length)
	}
	if ev.Cron != "" {
		if _, err := parseCron(ev.Cron); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
	}
	return nil
}

// occurrencesWithin expands the event into concrete intervals clipped
// to the window. The query is widened backwards by the occurrence
// length so an occurrence started before the window still contributes
// the busy time it spends inside it. maxOccurrences caps expansion.
func (ev Event) occurrencesWithin(window interval.Interval, maxOccurrences int) ([]interval.Interval, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	if ev.Once != nil {
		if clipped := ev.Once.Clip(window); clipped.IsPresent() {
			return []interval.Interval{clipped.MustGet()}, nil
		}
		return nil, nil
	}

	query := widenBack(window, ev.Length)

	if ev.Rule != nil {
		var out []interval.Interval
		for occ := range ev.Rule.OccurrencesWithin(query) {
			if len(out) >= maxOccurrences {
				return nil, errOverflow(ev, window, maxOccurrences)
			}
			if iv, ok := occurrenceInterval(occ, ev.Length, window); ok {
				out = append(out, iv)
			}
		}
		return out, nil
	}

	return ev.cronOccurrences(query, window, maxOccurrences)
}

func errOverflow(ev Event, window interval.Interval, max int) error {
	return fmt.Errorf("%w: event %q yields more than %d occurrences in %s", ErrRecurrenceOverflow, ev.Summary, max, window)
}

// widenBack extends the window start backwards by length, saturating at
// the range floor.
func widenBack(window interval.Interval, length instant.Duration) interval.Interval {
	start, err := window.Start.Add(-length)
	if err != nil {
		start = instant.Min
	}
	return interval.Interval{Start: start, End: window.End}
}

// occurrenceInterval realizes one occurrence instant as a busy interval
// clipped to the window. The end saturates at the range ceiling rather
// than dropping the occurrence.
func occurrenceInterval(occ instant.Instant, length instant.Duration, window interval.Interval) (interval.Interval, bool) {
	end, err := occ.Add(length)
	if err != nil {
		end = instant.Max
	}
	clipped := interval.Interval{Start: occ, End: end}.Clip(window)
	if clipped.IsAbsent() {
		return interval.Interval{}, false
	}
	return clipped.MustGet(), true
}
