// Package loadfactor computes, per task, how saturated the available
// time before its deadline is relative to the work the task still
// needs. The scoring policy (classification bands) is deliberately
// thin and replaceable; the busy-time data comes from
// schedule.Aggregator.
package loadfactor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/orvane/libsched/instant"
)

var (
	ErrInvalidPercent  = errors.New("percentage out of range")
	ErrInvalidWorkload = errors.New("workload out of range")
)

// Percent is an integer percentage in [0, 100]. The constructors
// validate, so an out-of-range value is unrepresentable.
type Percent uint8

// NewPercent builds a Percent from an integer.
func NewPercent(n int) (Percent, error) {
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPercent, n)
	}
	return Percent(n), nil
}

// ParsePercent parses a trimmed decimal string, with or without a
// trailing percent sign.
func ParsePercent(s string) (Percent, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPercent, s)
	}
	return NewPercent(n)
}

// Complement returns 100% minus p.
func (p Percent) Complement() Percent { return 100 - p }

func (p Percent) String() string { return fmt.Sprintf("%d%%", uint8(p)) }

// MaxWorkloadMinutes bounds a single task's workload; the cap keeps
// percentage arithmetic comfortably inside integer range.
const MaxWorkloadMinutes = 60000

// Workload is the number of minutes a task needs, in [0,
// MaxWorkloadMinutes].
type Workload uint32

// NewWorkload builds a Workload from a minute count.
func NewWorkload(minutes int64) (Workload, error) {
	if minutes < 0 || minutes > MaxWorkloadMinutes {
		return 0, fmt.Errorf("%w: %d minutes", ErrInvalidWorkload, minutes)
	}
	return Workload(minutes), nil
}

// Scale multiplies the workload by a percentage, rounding half up to
// the nearest whole minute.
func (w Workload) Scale(p Percent) Workload {
	product := uint32(w) * uint32(p)
	scaled := product / 100
	if product%100 >= 50 {
		scaled++
	}
	return Workload(scaled)
}

// Duration returns the workload as a timeline duration.
func (w Workload) Duration() instant.Duration {
	return instant.Minutes(int64(w))
}

func (w Workload) String() string {
	return fmt.Sprintf("%dmin", uint32(w))
}
