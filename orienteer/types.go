// Package orienteer defines the options, results and sentinel errors of the
// time-budgeted obstacle search.
//
// Search picks the highest-scoring sequence of obstacles an agent can take
// between a start location and a mandatory final location within a time
// budget. Each obstacle has a type-dependent traversal time and point value
// and may be taken a limited number of times.
//
// Options:
//
//	– Bound:             fraction in (0,1] of the proximity order examined at
//	                     each node. 1.0 is exhaustive; smaller values trade
//	                     optimality for speed. There is no default.
//	– ForceNearestFirst: commit to the obstacle nearest the start before
//	                     searching.
//	– Opening:           whether that forced first step is feasibility-checked.
//	– TimeLimit:         soft wall-clock budget (0 = unlimited).
//	– Workers:           parallelism for the root branches (1 = sequential).
//
// Errors (sentinel):
//
//	– ErrInvalidParameter    for Bound outside (0,1], Workers < 1, a negative
//	                         TimeLimit or an invalid course parameter.
//	– ErrInvalidObstacleType for obstacle types outside the tables.
//	– ErrTimeLimit           when TimeLimit expires; the best result found
//	                         so far is returned with it.
//	– ErrBadSequence         from ValidateSequence.
//
// A course whose final location cannot be reached even without obstacles is
// not an error: Search returns score 0, an empty sequence and Feasible=false.
package orienteer

import (
	"errors"
	"time"

	"github.com/katalvlaran/agility/course"
)

// Sentinel errors returned by the search.
var (
	// ErrInvalidParameter is re-exported from course.
	ErrInvalidParameter = course.ErrInvalidParameter

	// ErrInvalidObstacleType is re-exported from course.
	ErrInvalidObstacleType = course.ErrInvalidObstacleType

	// ErrTimeLimit indicates the soft time budget expired before the search
	// space was exhausted.
	ErrTimeLimit = errors.New("orienteer: time limit exceeded")

	// ErrBadSequence indicates a sequence that references unknown obstacles,
	// exceeds an obstacle capacity or overruns the time budget.
	ErrBadSequence = errors.New("orienteer: invalid sequence")
)

// feasTol is the tolerance used when a finished sequence is checked
// against the time budget.
const feasTol = 1e-9

// Opening selects how the forced nearest-first step is taken.
type Opening int

const (
	// OpeningUnchecked commits to the nearest obstacle without checking that
	// the final location stays reachable.
	OpeningUnchecked Opening = iota

	// OpeningChecked applies the regular feasibility check to the forced step
	// and searches normally from the start when it fails.
	OpeningChecked
)

// String returns the configuration name of the policy.
func (o Opening) String() string {
	switch o {
	case OpeningUnchecked:
		return "unchecked"
	case OpeningChecked:
		return "checked"
	default:
		return "unknown"
	}
}

// Options configures Search.
type Options struct {
	Bound             float64       // Fraction of the proximity order branched on, in (0,1]
	ForceNearestFirst bool          // Take the obstacle nearest the start first
	Opening           Opening       // Feasibility policy of the forced first step
	TimeLimit         time.Duration // Soft wall-clock budget; 0 = unlimited
	Workers           int           // Concurrent root branches; 1 = sequential
}

// Option represents a functional option for configuring Search.
type Option func(*Options)

// WithBound sets the branching fraction.
func WithBound(b float64) Option {
	return func(o *Options) {
		o.Bound = b
	}
}

// WithForceNearestFirst enables the nearest-first opening with the given policy.
func WithForceNearestFirst(policy Opening) Option {
	return func(o *Options) {
		o.ForceNearestFirst = true
		o.Opening = policy
	}
}

// WithTimeLimit sets a soft wall-clock budget.
func WithTimeLimit(d time.Duration) Option {
	return func(o *Options) {
		o.TimeLimit = d
	}
}

// WithWorkers sets how many root branches are explored concurrently.
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithOptions replaces the whole configuration.
func WithOptions(src Options) Option {
	return func(o *Options) {
		*o = src
	}
}

// DefaultOptions returns the baseline configuration. Bound is left at zero:
// the caller must choose it.
//
// Defaults:
//   - Bound:             0 (unset; Search rejects it).
//   - ForceNearestFirst: false.
//   - Opening:           OpeningUnchecked.
//   - TimeLimit:         0 (unlimited).
//   - Workers:           1.
func DefaultOptions() Options {
	return Options{
		Opening: OpeningUnchecked,
		Workers: 1,
	}
}

// Stats counts search events.
type Stats struct {
	Nodes     int64 // Nodes expanded, root included
	Leaves    int64 // Nodes without a feasible continuation
	Pruned    int64 // Candidates rejected by the feasibility check
	Exhausted int64 // Candidates skipped for lack of capacity
}

func (s *Stats) add(o Stats) {
	s.Nodes += o.Nodes
	s.Leaves += o.Leaves
	s.Pruned += o.Pruned
	s.Exhausted += o.Exhausted
}

// Result is the outcome of Search.
type Result struct {
	// Score is the total point value of Sequence.
	Score float64

	// Sequence lists obstacle indices in visiting order. It is never nil.
	Sequence []int

	// TimeUsed is travel plus traversal time of Sequence including the
	// final leg to the finish.
	TimeUsed float64

	// Feasible reports that the course is completable and TimeUsed fits the
	// time budget.
	Feasible bool

	// Complete reports that the search ran to exhaustion; it is false when
	// stopped by the context or TimeLimit.
	Complete bool

	Stats Stats
}
