package schedule

import (
	"github.com/robfig/cron/v3"

	"github.com/orvane/libsched/instant"
	"github.com/orvane/libsched/interval"
)

// parseCron parses a standard five-field cron expression. Cron sources
// are evaluated on the UTC timeline; minute granularity matches the
// engine's exactly, standard cron never fires mid-minute.
func parseCron(expr string) (cron.Schedule, error) {
	return cron.ParseStandard(expr)
}

// cronOccurrences walks the cron schedule across the widened query
// range, realizing each firing as a busy interval clipped to the
// original window.
func (ev Event) cronOccurrences(query, window interval.Interval, maxOccurrences int) ([]interval.Interval, error) {
	sched, err := parseCron(ev.Cron)
	if err != nil {
		// Validate already rejected malformed expressions.
		return nil, err
	}

	var out []interval.Interval

	// cron's Next is strictly-after, so back up one minute to admit a
	// firing exactly at the query start.
	cursor := query.Start.Time().Add(-instant.Minutes(1).Std())
	for {
		next := sched.Next(cursor)
		if next.IsZero() {
			return out, nil
		}
		occ, err := instant.FromTime(next)
		if err != nil || occ.After(query.End) {
			return out, nil
		}
		if len(out) >= maxOccurrences {
			return nil, errOverflow(ev, window, maxOccurrences)
		}
		if iv, ok := occurrenceInterval(occ, ev.Length, window); ok {
			out = append(out, iv)
		}
		cursor = next
	}
}
