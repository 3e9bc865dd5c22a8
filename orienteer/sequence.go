// Package orienteer - sequence utilities shared by the search and its callers.
//
// These helpers work on a plain obstacle index sequence and recompute its
// cost from the course, independent of how the sequence was produced:
//   - SequenceTime:     travel + traversal time including the final leg.
//   - SequenceScore:    sum of point values.
//   - ValidateSequence: index range, capacity and time-budget invariants.
//
// Complexity: O(len(seq) + n) time, O(n) extra space for the capacity tally.
package orienteer

import (
	"fmt"

	"github.com/katalvlaran/agility/course"
)

// SequenceTime returns the time to walk seq from c.Start, traverse every
// obstacle, and then reach c.Final. An empty sequence costs the direct time.
func SequenceTime(c course.Course, seq []int) (float64, error) {
	var (
		total float64
		at    = c.Start
		i, k  int
		cost  float64
		err   error
	)
	for i, k = range seq {
		if k < 0 || k >= len(c.Obstacles) {
			return 0, fmt.Errorf("%w: position %d references obstacle %d", ErrBadSequence, i, k)
		}
		o := c.Obstacles[k]
		if cost, err = c.Tables.TimeOf(o.Type); err != nil {
			return 0, err
		}
		total += c.TravelTime(at, o.Entry) + cost
		at = o.Exit
	}

	return total + c.TravelTime(at, c.Final), nil
}

// SequenceScore returns the total point value of seq.
func SequenceScore(c course.Course, seq []int) (float64, error) {
	var (
		total float64
		i, k  int
		pts   float64
		err   error
	)
	for i, k = range seq {
		if k < 0 || k >= len(c.Obstacles) {
			return 0, fmt.Errorf("%w: position %d references obstacle %d", ErrBadSequence, i, k)
		}
		if pts, err = c.Tables.PointsOf(c.Obstacles[k].Type); err != nil {
			return 0, err
		}
		total += pts
	}

	return total, nil
}

// ValidateSequence checks that seq only references known obstacles, takes no
// obstacle more often than its Uses, and finishes within the time budget
// (with a 1e-9 tolerance).
func ValidateSequence(c course.Course, seq []int) error {
	used := make([]int, len(c.Obstacles))
	var i, k int
	for i, k = range seq {
		if k < 0 || k >= len(c.Obstacles) {
			return fmt.Errorf("%w: position %d references obstacle %d", ErrBadSequence, i, k)
		}
		used[k]++
		if used[k] > c.Obstacles[k].Uses {
			return fmt.Errorf("%w: obstacle %d taken %d times, capacity %d",
				ErrBadSequence, k, used[k], c.Obstacles[k].Uses)
		}
	}
	t, err := SequenceTime(c, seq)
	if err != nil {
		return err
	}
	if t > c.TimeBudget+feasTol {
		return fmt.Errorf("%w: needs %.9g s, budget %.9g s", ErrBadSequence, t, c.TimeBudget)
	}

	return nil
}
