package loadfactor

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/orvane/libsched/instant"
	"github.com/orvane/libsched/interval"
	"github.com/orvane/libsched/schedule"
)

// ErrDeadlinePassed is returned when a task's deadline lies before the
// evaluation instant.
var ErrDeadlinePassed = errors.New("task deadline already passed")

// ErrInvalidTask marks a task whose workload bounds are inconsistent.
var ErrInvalidTask = errors.New("invalid task definition")

// Task is a unit of work with a deadline. Expected is the estimated
// workload, Maximum the pessimistic bound (zero means "same as
// Expected"); Completion records how much of it is already done.
type Task struct {
	ID         uuid.UUID
	Name       string
	Due        instant.Instant
	Expected   Workload
	Maximum    Workload
	Completion Percent
}

// NewTask creates a task with a fresh ID and zero completion.
func NewTask(name string, due instant.Instant, expected Workload) Task {
	return Task{ID: uuid.New(), Name: name, Due: due, Expected: expected}
}

// Validate checks the task's workload bounds.
func (t Task) Validate() error {
	if t.Maximum > 0 && t.Maximum < t.Expected {
		return fmt.Errorf("%w: task %q maximum workload %s below expected %s", ErrInvalidTask, t.Name, t.Maximum, t.Expected)
	}
	return nil
}

// RemainingWorkload is the expected workload scaled by the unfinished
// share of the task.
func (t Task) RemainingWorkload() Workload {
	return t.Expected.Scale(t.Completion.Complement())
}

// WorstRemainingWorkload is the remaining workload under the maximum
// estimate instead of the expected one.
func (t Task) WorstRemainingWorkload() Workload {
	max := t.Maximum
	if max == 0 {
		max = t.Expected
	}
	return max.Scale(t.Completion.Complement())
}

// Result is one task's evaluation: the load factor, its pessimistic
// counterpart under the maximum workload estimate, the band the policy
// assigns the expected factor, and the free time both were computed
// against.
type Result struct {
	Task        uuid.UUID
	Factor      float64
	WorstFactor float64
	Band        string
	FreeMinutes int64
}

// Engine computes load factors. It is stateless apart from its
// configuration and safe for concurrent use.
type Engine struct {
	agg    *schedule.Aggregator
	policy Policy
	logger *slog.Logger
}

// NewEngine creates an Engine. A zero-value policy falls back to
// DefaultPolicy; a nil logger to slog.Default().
func NewEngine(agg *schedule.Aggregator, policy Policy, logger *slog.Logger) (*Engine, error) {
	if len(policy.Bands) == 0 && policy.Overflow == "" {
		policy = DefaultPolicy
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{agg: agg, policy: policy, logger: logger}, nil
}

// Evaluate computes the task's load factor at the given instant: the
// minutes of work still needed divided by the free minutes between now
// and the deadline once the events' busy time is subtracted. A task
// needing work with no free time left scores +Inf; a task needing none
// scores 0 regardless of free time.
func (e *Engine) Evaluate(task Task, events []schedule.Event, now instant.Instant) (Result, error) {
	if err := task.Validate(); err != nil {
		return Result{}, err
	}
	if task.Due.Before(now) {
		return Result{}, fmt.Errorf("%w: task %q due %s, now %s", ErrDeadlinePassed, task.Name, task.Due, now)
	}
	window := interval.Interval{Start: now, End: task.Due}

	busy, err := e.agg.Aggregate(events, window)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate task %q: %w", task.Name, err)
	}

	free := schedule.FreeWithin(busy, window)
	var freeMinutes int64
	for _, iv := range free {
		freeMinutes += int64(iv.Length())
	}

	factor := saturation(int64(task.RemainingWorkload()), freeMinutes)
	res := Result{
		Task:        task.ID,
		Factor:      factor,
		WorstFactor: saturation(int64(task.WorstRemainingWorkload()), freeMinutes),
		Band:        e.policy.Classify(factor),
		FreeMinutes: freeMinutes,
	}
	e.logger.Debug("evaluated task",
		"task", task.Name,
		"needed_minutes", int64(task.RemainingWorkload()),
		"free_minutes", freeMinutes,
		"factor", factor,
		"band", res.Band)
	return res, nil
}

// saturation is needed work over free time. No work needed scores 0
// even with no free time; work needed against none scores +Inf.
func saturation(needed, freeMinutes int64) float64 {
	switch {
	case needed == 0:
		return 0
	case freeMinutes == 0:
		return math.Inf(1)
	default:
		return float64(needed) / float64(freeMinutes)
	}
}

// EvaluateAll evaluates every task against the same event set and
// evaluation instant, returning results ordered from most to least
// loaded. Any task error aborts the whole call.
func (e *Engine) EvaluateAll(tasks []Task, events []schedule.Event, now instant.Instant) ([]Result, error) {
	results := make([]Result, 0, len(tasks))
	for _, t := range tasks {
		res, err := e.Evaluate(t, events, now)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Factor > results[j].Factor
	})
	return results, nil
}
