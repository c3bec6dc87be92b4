package ics

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orvane/libsched/instant"
	"github.com/orvane/libsched/interval"
	"github.com/orvane/libsched/recurrence"
	"github.com/orvane/libsched/schedule"
)

func calendarWith(eventLines ...string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//libsched//test//EN",
		"BEGIN:VEVENT",
		"UID:test-event",
		"DTSTAMP:20240101T000000Z",
	}
	lines = append(lines, eventLines...)
	lines = append(lines, "END:VEVENT", "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

func testImporter() *Importer {
	return NewImporter(instant.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func date(y, m, d, hr, min int) instant.Instant {
	return instant.MustFromCalendar(instant.Calendar{Year: y, Month: m, Day: d, Hour: hr, Minute: min})
}

func TestImportOnceEvent(t *testing.T) {
	doc := calendarWith(
		"SUMMARY:Dentist",
		"DTSTART:20240121T090000Z",
		"DTEND:20240121T100000Z",
	)

	events, err := testImporter().Import(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "Dentist", ev.Summary)
	require.NotNil(t, ev.Once)
	assert.Equal(t, interval.Must(date(2024, 1, 21, 9, 0), date(2024, 1, 21, 10, 0)), *ev.Once)
	assert.Nil(t, ev.Rule)
}

func TestImportRecurringEvent(t *testing.T) {
	doc := calendarWith(
		"SUMMARY:Weekly sync",
		"DTSTART:20240101T090000Z",
		"DTEND:20240101T093000Z",
		"RRULE:FREQ=WEEKLY;COUNT=4",
	)

	events, err := testImporter().Import(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	require.NotNil(t, ev.Rule)
	assert.Equal(t, recurrence.Weekly, ev.Rule.Frequency())
	assert.Equal(t, 4, ev.Rule.Count())
	assert.Equal(t, date(2024, 1, 1, 9, 0), ev.Rule.Anchor())
	assert.Equal(t, instant.Minutes(30), ev.Length)
}

func TestImportWeekdayRefinement(t *testing.T) {
	doc := calendarWith(
		"SUMMARY:Standup",
		"DTSTART:20240101T091500Z", // a Monday
		"DTEND:20240101T093000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR",
	)

	events, err := testImporter().Import(strings.NewReader(doc))
	require.NoError(t, err)
	require.NotNil(t, events[0].Rule)

	set := events[0].Rule.Weekdays()
	assert.True(t, set.Contains(instant.Monday))
	assert.True(t, set.Contains(instant.Wednesday))
	assert.True(t, set.Contains(instant.Friday))
	assert.Equal(t, 3, set.Count())
}

func TestImportDurationEvent(t *testing.T) {
	doc := calendarWith(
		"SUMMARY:Focus block",
		"DTSTART:20240101T140000Z",
		"DURATION:PT45M",
		"RRULE:FREQ=DAILY;INTERVAL=2",
	)

	events, err := testImporter().Import(strings.NewReader(doc))
	require.NoError(t, err)

	ev := events[0]
	assert.Equal(t, instant.Minutes(45), ev.Length)
	require.NotNil(t, ev.Rule)
	assert.Equal(t, recurrence.Daily, ev.Rule.Frequency())
	assert.Equal(t, 2, ev.Rule.Step())
}

func TestImportUntilBound(t *testing.T) {
	doc := calendarWith(
		"SUMMARY:Course",
		"DTSTART:20240101T090000Z",
		"DTEND:20240101T100000Z",
		"RRULE:FREQ=WEEKLY;UNTIL=20240205T090000Z",
	)

	events, err := testImporter().Import(strings.NewReader(doc))
	require.NoError(t, err)

	until := events[0].Rule.Until()
	require.True(t, until.IsPresent())
	assert.Equal(t, date(2024, 2, 5, 9, 0), until.MustGet())
}

func TestImportRejectsUnsupportedFeatures(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"bymonthday", []string{
			"DTSTART:20240131T090000Z",
			"RRULE:FREQ=MONTHLY;BYMONTHDAY=31",
		}},
		{"bysetpos", []string{
			"DTSTART:20240101T090000Z",
			"RRULE:FREQ=MONTHLY;BYSETPOS=-1",
		}},
		{"non-monday week start", []string{
			"DTSTART:20240101T090000Z",
			"RRULE:FREQ=WEEKLY;WKST=SU",
		}},
		{"ordinal byday", []string{
			"DTSTART:20240101T090000Z",
			"RRULE:FREQ=WEEKLY;BYDAY=2MO",
		}},
		{"byday on monthly", []string{
			"DTSTART:20240101T090000Z",
			"RRULE:FREQ=MONTHLY;BYDAY=MO",
		}},
		{"sub-daily frequency", []string{
			"DTSTART:20240101T090000Z",
			"RRULE:FREQ=HOURLY",
		}},
		{"exdate", []string{
			"DTSTART:20240101T090000Z",
			"RRULE:FREQ=DAILY",
			"EXDATE:20240102T090000Z",
		}},
		{"rdate", []string{
			"DTSTART:20240101T090000Z",
			"RDATE:20240105T090000Z",
		}},
		{"recurrence override", []string{
			"DTSTART:20240101T090000Z",
			"RECURRENCE-ID:20240101T090000Z",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := calendarWith(tt.lines...)
			_, err := testImporter().Import(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrUnsupportedFeature)
		})
	}
}

func TestImportRejectsInvalidCalendars(t *testing.T) {
	t.Run("not icalendar", func(t *testing.T) {
		_, err := testImporter().Import(strings.NewReader("hello"))
		assert.ErrorIs(t, err, ErrInvalidCalendar)
	})

	t.Run("missing dtstart", func(t *testing.T) {
		doc := calendarWith("SUMMARY:No start")
		_, err := testImporter().Import(strings.NewReader(doc))
		assert.ErrorIs(t, err, ErrInvalidCalendar)
	})

	t.Run("end before start", func(t *testing.T) {
		doc := calendarWith(
			"DTSTART:20240101T100000Z",
			"DTEND:20240101T090000Z",
		)
		_, err := testImporter().Import(strings.NewReader(doc))
		assert.ErrorIs(t, err, ErrInvalidCalendar)
	})
}

func TestImportWeekdayMismatchFailsValidation(t *testing.T) {
	// Anchored on a Monday but restricted to Tuesdays.
	doc := calendarWith(
		"DTSTART:20240101T090000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=TU",
	)
	_, err := testImporter().Import(strings.NewReader(doc))
	assert.ErrorIs(t, err, recurrence.ErrInvalidRecurrence)
}

func TestImportedEventsAggregate(t *testing.T) {
	doc := calendarWith(
		"SUMMARY:Weekly sync",
		"DTSTART:20240101T090000Z",
		"DTEND:20240101T100000Z",
		"RRULE:FREQ=WEEKLY",
	)

	events, err := testImporter().Import(strings.NewReader(doc))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	agg := schedule.NewAggregator(schedule.AggregatorConfig{}, logger)

	window := interval.Must(date(2024, 1, 1, 0, 0), date(2024, 1, 14, 23, 59))
	busy, err := agg.Aggregate(events, window)
	require.NoError(t, err)
	require.Len(t, busy, 2)
	assert.Equal(t, interval.Must(date(2024, 1, 8, 9, 0), date(2024, 1, 8, 10, 0)), busy[1])
}
