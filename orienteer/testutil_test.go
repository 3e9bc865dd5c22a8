// Package orienteer_test provides small helpers shared across *_test.go files:
// course builders, a deterministic random course generator and a brute-force
// reference solver used to cross-check the exhaustive search.
package orienteer_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/agility/course"
	"github.com/katalvlaran/agility/orienteer"
)

const (
	// epsFeas matches the tolerance of the feasibility invariant.
	epsFeas = 1e-9

	// seedCount is the number of random courses used by property tests.
	seedCount = 24
)

// pt is a short Point constructor.
func pt(x, y float64) course.Point { return course.Point{X: x, Y: y} }

// point returns a point obstacle with the given uses.
func point(t course.ObstacleType, x, y float64, uses int) course.Obstacle {
	return course.Obstacle{Type: t, Entry: pt(x, y), Exit: pt(x, y), Uses: uses}
}

// span returns a long obstacle entered at (x1,y1) and left at (x2,y2).
func span(t course.ObstacleType, x1, y1, x2, y2 float64, uses int) course.Obstacle {
	return course.Obstacle{Type: t, Entry: pt(x1, y1), Exit: pt(x2, y2), Uses: uses}
}

// mkCourse assembles a course with the default tables.
func mkCourse(start, final course.Point, speed, budget float64, obs ...course.Obstacle) course.Course {
	return course.Course{
		Start:      start,
		Final:      final,
		Speed:      speed,
		TimeBudget: budget,
		Tables:     course.DefaultTables(),
		Obstacles:  obs,
	}
}

// randomCourse builds a small course that exhaustive search handles quickly:
// n obstacles on a 40×40 field, speed 10, a budget of a few seconds.
func randomCourse(seed int64, n int) course.Course {
	rng := rand.New(rand.NewSource(seed))
	obs := make([]course.Obstacle, n)
	var i int
	for i = 0; i < n; i++ {
		t := course.ObstacleType(rng.Intn(course.NumObstacleTypes))
		x, y := rng.Float64()*40, rng.Float64()*40
		if rng.Intn(3) == 0 {
			obs[i] = span(t, x, y, x+rng.Float64()*6-3, y+rng.Float64()*6-3, 1+rng.Intn(2))
		} else {
			obs[i] = point(t, x, y, 1+rng.Intn(2))
		}
	}

	return mkCourse(pt(rng.Float64()*40, rng.Float64()*40), pt(rng.Float64()*40, rng.Float64()*40),
		10, 6+rng.Float64()*4, obs...)
}

// bruteForce enumerates every order with the same rules as the search
// (capacity, no immediate repeat, strict feasibility) without any window.
func bruteForce(c course.Course) float64 {
	if !c.Completable() {
		return 0
	}
	caps := c.Capacities()
	var rec func(at int, loc course.Point, remain, score float64) float64
	rec = func(at int, loc course.Point, remain, score float64) float64 {
		best := score
		for k, o := range c.Obstacles {
			if k == at || caps[k] == 0 {
				continue
			}
			r := remain - c.TravelTime(loc, o.Entry) - c.Tables.Time[o.Type]
			if !(r-c.TravelTime(o.Exit, c.Final) > 0) {
				continue
			}
			caps[k]--
			if s := rec(k, o.Exit, r, score+c.Tables.Points[o.Type]); s > best {
				best = s
			}
			caps[k]++
		}

		return best
	}
	start := -1
	for k, o := range c.Obstacles {
		if o.Exit == c.Start {
			start = k
			break
		}
	}

	return rec(start, c.Start, c.TimeBudget, 0)
}

// mustSearch runs Search and fails the test on error.
func mustSearch(t *testing.T, c course.Course, opts ...orienteer.Option) orienteer.Result {
	t.Helper()
	res, err := orienteer.Search(context.Background(), c, opts...)
	require.NoError(t, err)

	return res
}

// requireInvariants checks feasibility, capacity and score consistency.
func requireInvariants(t *testing.T, c course.Course, res orienteer.Result) {
	t.Helper()
	require.NotNil(t, res.Sequence)
	require.NoError(t, orienteer.ValidateSequence(c, res.Sequence))

	used, err := orienteer.SequenceTime(c, res.Sequence)
	require.NoError(t, err)
	require.LessOrEqual(t, used, c.TimeBudget+epsFeas)
	require.InDelta(t, used, res.TimeUsed, epsFeas)

	score, err := orienteer.SequenceScore(c, res.Sequence)
	require.NoError(t, err)
	require.InDelta(t, score, res.Score, epsFeas)
}

// repeat runs fn n times.
func repeat(t *testing.T, n int, fn func(t *testing.T)) {
	t.Helper()
	var i int
	for i = 0; i < n; i++ {
		fn(t)
	}
}
