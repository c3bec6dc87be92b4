package schedule

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/orvane/libsched/instant"
	"github.com/orvane/libsched/interval"
)

// AggregatorConfig holds tuning options for busy-set aggregation.
type AggregatorConfig struct {
	// MaxOccurrencesPerEvent caps how many occurrences a single event
	// may contribute to one window. Exceeding it aborts the aggregation
	// with ErrRecurrenceOverflow; zero selects the default.
	MaxOccurrencesPerEvent int
}

// DefaultAggregatorConfig provides sensible defaults.
var DefaultAggregatorConfig = AggregatorConfig{
	MaxOccurrencesPerEvent: 1000,
}

// Aggregator merges event collections into disjoint busy-interval sets.
// It holds no mutable state across calls and is safe for concurrent use.
type Aggregator struct {
	cfg    AggregatorConfig
	logger *slog.Logger
}

// NewAggregator creates an Aggregator. A nil logger falls back to
// slog.Default().
func NewAggregator(cfg AggregatorConfig, logger *slog.Logger) *Aggregator {
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = DefaultAggregatorConfig.MaxOccurrencesPerEvent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{cfg: cfg, logger: logger}
}

// Aggregate expands every event over the window and returns the merged
// busy set: intervals sorted by start, pairwise disjoint, adjacency
// merged, all clipped to the window (end inclusive). On
// ErrRecurrenceOverflow no partial result is returned.
func (a *Aggregator) Aggregate(events []Event, window interval.Interval) ([]interval.Interval, error) {
	var all []interval.Interval
	for _, ev := range events {
		occ, err := ev.occurrencesWithin(window, a.cfg.MaxOccurrencesPerEvent)
		if err != nil {
			a.logger.Warn("aggregation aborted",
				"event", ev.ID,
				"summary", ev.Summary,
				"window", window.String(),
				"err", err)
			return nil, fmt.Errorf("aggregate event %s: %w", ev.ID, err)
		}
		all = append(all, occ...)
	}

	merged := MergeIntervals(all)
	a.logger.Debug("aggregated busy set",
		"events", len(events),
		"occurrences", len(all),
		"busy_intervals", len(merged))
	return merged, nil
}

// MergeIntervals sorts intervals by start and left-folds overlapping or
// touching neighbours into their covering interval. Idempotent on an
// already-disjoint sorted set.
func MergeIntervals(ivs []interval.Interval) []interval.Interval {
	if len(ivs) == 0 {
		return nil
	}

	sorted := make([]interval.Interval, len(ivs))
	copy(sorted, ivs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].End.Before(sorted[j].End)
	})

	out := []interval.Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if merged := last.Merge(iv); merged.IsPresent() {
			*last = merged.MustGet()
		} else {
			out = append(out, iv)
		}
	}
	return out
}

// BusyMinutes sums the lengths of a disjoint busy set.
func BusyMinutes(busy []interval.Interval) instant.Duration {
	var total instant.Duration
	for _, iv := range busy {
		total += iv.Length()
	}
	return total
}

// FreeWithin returns the complement of a merged busy set inside the
// window: the maximal closed intervals of the window not covered by any
// busy interval, at minute granularity. busy must be sorted, disjoint
// and clipped to the window, i.e. an Aggregate result.
func FreeWithin(busy []interval.Interval, window interval.Interval) []interval.Interval {
	var free []interval.Interval
	cursor := window.Start

	for _, b := range busy {
		if gap := b.Start.Sub(cursor); gap >= 1 {
			end, _ := b.Start.Add(instant.Minutes(-1))
			free = append(free, interval.Interval{Start: cursor, End: end})
		}
		next, err := b.End.Add(instant.Minutes(1))
		if err != nil {
			return free // busy set reaches the range ceiling
		}
		cursor = next
	}

	if !cursor.After(window.End) {
		free = append(free, interval.Interval{Start: cursor, End: window.End})
	}
	return free
}
