// Package ics imports iCalendar event streams into schedule events.
// The bridge is deliberately narrow: it accepts the recurrence shapes
// the evaluation model can represent exactly and rejects everything
// else with a descriptive error, rather than approximating.
package ics

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/orvane/libsched/instant"
	"github.com/orvane/libsched/interval"
	"github.com/orvane/libsched/schedule"
)

var (
	// ErrInvalidCalendar marks input that does not decode as iCalendar
	// or lacks required event properties.
	ErrInvalidCalendar = errors.New("invalid icalendar data")

	// ErrUnsupportedFeature marks well-formed input using a recurrence
	// feature outside the supported subset, such as RDATE, EXDATE,
	// RECURRENCE-ID overrides, or BYMONTHDAY refinements.
	ErrUnsupportedFeature = errors.New("unsupported icalendar feature")
)

const propRecurrenceID = "RECURRENCE-ID"

// Importer converts decoded VEVENT components into schedule events.
// All recurrences are interpreted against a single fixed zone offset.
type Importer struct {
	offset instant.ZoneOffset
	logger *slog.Logger
}

// NewImporter creates an Importer. A nil logger falls back to
// slog.Default().
func NewImporter(offset instant.ZoneOffset, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{offset: offset, logger: logger}
}

// Import decodes an iCalendar stream and converts every VEVENT it
// contains. One unconvertible event fails the whole import; a partial
// schedule would silently understate busy time.
func (im *Importer) Import(r io.Reader) ([]schedule.Event, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCalendar, err)
	}

	var events []schedule.Event
	for _, comp := range cal.Events() {
		ev, err := im.importEvent(comp)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	im.logger.Debug("imported calendar", "events", len(events))
	return events, nil
}

func (im *Importer) importEvent(comp ical.Event) (schedule.Event, error) {
	summary := ""
	if p := comp.Props.Get(ical.PropSummary); p != nil {
		summary = p.Value
	}

	for _, name := range []string{ical.PropRecurrenceDates, ical.PropExceptionDates, propRecurrenceID} {
		if comp.Props.Get(name) != nil {
			return schedule.Event{}, fmt.Errorf("%w: event %q carries %s", ErrUnsupportedFeature, summary, name)
		}
	}

	start, length, err := im.eventTimes(comp, summary)
	if err != nil {
		return schedule.Event{}, err
	}

	rruleProp := comp.Props.Get(ical.PropRecurrenceRule)
	if rruleProp == nil || rruleProp.Value == "" {
		end, err := start.Add(length)
		if err != nil {
			return schedule.Event{}, fmt.Errorf("%w: event %q end: %v", ErrInvalidCalendar, summary, err)
		}
		ev := schedule.Event{
			ID:      uuid.New(),
			Summary: summary,
			Once:    &interval.Interval{Start: start, End: end},
		}
		return ev, nil
	}

	rule, err := parseRule(rruleProp.Value, start, im.offset)
	if err != nil {
		return schedule.Event{}, fmt.Errorf("event %q: %w", summary, err)
	}
	return schedule.NewRecurringEvent(summary, rule, length)
}

// eventTimes resolves DTSTART plus one of DTEND or DURATION into a
// start instant and an occurrence length. A missing end means an
// instantaneous event.
func (im *Importer) eventTimes(comp ical.Event, summary string) (instant.Instant, instant.Duration, error) {
	if comp.Props.Get(ical.PropDateTimeStart) == nil {
		return instant.Instant{}, 0, fmt.Errorf("%w: event %q has no DTSTART", ErrInvalidCalendar, summary)
	}
	startTime, err := comp.Props.DateTime(ical.PropDateTimeStart, nil)
	if err != nil {
		return instant.Instant{}, 0, fmt.Errorf("%w: event %q DTSTART: %v", ErrInvalidCalendar, summary, err)
	}
	start, err := instant.FromTime(startTime)
	if err != nil {
		return instant.Instant{}, 0, fmt.Errorf("%w: event %q DTSTART: %v", ErrInvalidCalendar, summary, err)
	}

	var length instant.Duration
	switch {
	case comp.Props.Get(ical.PropDateTimeEnd) != nil:
		endTime, err := comp.Props.DateTime(ical.PropDateTimeEnd, nil)
		if err != nil {
			return instant.Instant{}, 0, fmt.Errorf("%w: event %q DTEND: %v", ErrInvalidCalendar, summary, err)
		}
		end, err := instant.FromTime(endTime)
		if err != nil {
			return instant.Instant{}, 0, fmt.Errorf("%w: event %q DTEND: %v", ErrInvalidCalendar, summary, err)
		}
		if end.Before(start) {
			return instant.Instant{}, 0, fmt.Errorf("%w: event %q ends before it starts", ErrInvalidCalendar, summary)
		}
		length = end.Sub(start)
	case comp.Props.Get(ical.PropDuration) != nil:
		d, err := comp.Props.Get(ical.PropDuration).Duration()
		if err != nil {
			return instant.Instant{}, 0, fmt.Errorf("%w: event %q DURATION: %v", ErrInvalidCalendar, summary, err)
		}
		if d < 0 {
			return instant.Instant{}, 0, fmt.Errorf("%w: event %q has negative DURATION", ErrInvalidCalendar, summary)
		}
		length = instant.Minutes(int64(d.Minutes()))
	}
	return start, length, nil
}
