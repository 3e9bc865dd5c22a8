// Package course defines the data model of an agility course: obstacle
// kinds, their time/point tables, the obstacle catalog with per-obstacle
// capacity, and the agent parameters (start, finish, speed, time budget).
//
// A Course is the complete external input of the orienteer search. It is
// plain data: build it in code, or decode it from YAML with Load/LoadFile.
//
// Errors (sentinel):
//
//	– ErrInvalidObstacleType if an obstacle type falls outside the tables.
//	– ErrInvalidParameter    if a scalar parameter or coordinate is unusable.
package course

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel errors for course validation.
var (
	// ErrInvalidObstacleType indicates an obstacle type outside [0, NumObstacleTypes).
	ErrInvalidObstacleType = errors.New("course: invalid obstacle type")

	// ErrInvalidParameter indicates a non-positive speed, a negative time budget,
	// a negative capacity, a NaN coordinate or a negative table entry.
	ErrInvalidParameter = errors.New("course: invalid parameter")
)

// Point is a 2-D location on the course plane.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// IsNaN reports whether either coordinate is NaN or infinite.
func (p Point) IsNaN() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0)
}

// ObstacleType enumerates the known obstacle kinds. The value indexes Tables.
type ObstacleType int

const (
	Jump ObstacleType = iota
	Tunnel
	Tire
	LongJump
	SpreadJump
	SeeSaw
	Weaves6
	Weaves12
	AFrame
	DogWalk

	// NumObstacleTypes is the size of the time and point tables.
	NumObstacleTypes = 10
)

var obstacleNames = [NumObstacleTypes]string{
	Jump:       "Jump",
	Tunnel:     "Tunnel",
	Tire:       "Tire",
	LongJump:   "Long Jump",
	SpreadJump: "Spread Jump",
	SeeSaw:     "SeeSaw",
	Weaves6:    "Weaves 6 poles",
	Weaves12:   "Weaves 12 poles",
	AFrame:     "A-Frame",
	DogWalk:    "DogWalk",
}

// Valid reports whether t indexes the time and point tables.
func (t ObstacleType) Valid() bool { return t >= 0 && t < NumObstacleTypes }

// String returns the human-readable obstacle name.
func (t ObstacleType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("ObstacleType(%d)", int(t))
	}

	return obstacleNames[t]
}

// ParseObstacleType resolves a display name (case- and space-insensitive,
// so "long jump", "LongJump" and "Long Jump" are equal).
func ParseObstacleType(name string) (ObstacleType, error) {
	key := normalizeName(name)
	for i, n := range obstacleNames {
		if normalizeName(n) == key {
			return ObstacleType(i), nil
		}
	}

	return 0, fmt.Errorf("%w: unknown name %q", ErrInvalidObstacleType, name)
}

func normalizeName(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)

	return s
}

// Tables holds the per-type traversal time (seconds) and point value.
type Tables struct {
	Time   [NumObstacleTypes]float64
	Points [NumObstacleTypes]float64
}

// TimeOf returns the traversal time for t.
func (tb *Tables) TimeOf(t ObstacleType) (float64, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidObstacleType, int(t))
	}

	return tb.Time[t], nil
}

// PointsOf returns the point value for t.
func (tb *Tables) PointsOf(t ObstacleType) (float64, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidObstacleType, int(t))
	}

	return tb.Points[t], nil
}

// DefaultTables returns the standard time and point values of the
// reference course.
func DefaultTables() Tables {
	return Tables{
		Time:   [NumObstacleTypes]float64{0.3, 1.5, 0.3, 0.3, 0.3, 1.1, 1.9, 3.8, 1.2, 2.3},
		Points: [NumObstacleTypes]float64{1, 2, 2, 2, 2, 3, 3, 5, 4, 5},
	}
}

// Obstacle is one catalog entry. Entry equals Exit for point obstacles;
// long obstacles are entered at Entry and left at Exit. Uses is the number
// of times the obstacle may be taken.
type Obstacle struct {
	Type  ObstacleType
	Entry Point
	Exit  Point
	Uses  int
}

// IsLong reports whether the obstacle spans distinct entry and exit points.
func (o Obstacle) IsLong() bool { return o.Entry != o.Exit }

// Course groups every input of a search.
//
// Start      – agent starting location.
// Final      – location the agent must reach before TimeBudget expires.
// Speed      – travel speed in distance units per second (> 0).
// TimeBudget – total time in seconds (≥ 0).
type Course struct {
	Start      Point
	Final      Point
	Speed      float64
	TimeBudget float64
	Tables     Tables
	Obstacles  []Obstacle
}

// Validate checks the course before any search begins and returns the
// first problem found, wrapped around ErrInvalidObstacleType or
// ErrInvalidParameter.
func (c *Course) Validate() error {
	if !(c.Speed > 0) || math.IsInf(c.Speed, 0) {
		return fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidParameter, c.Speed)
	}
	if !(c.TimeBudget >= 0) || math.IsInf(c.TimeBudget, 0) {
		return fmt.Errorf("%w: time budget must be non-negative, got %v", ErrInvalidParameter, c.TimeBudget)
	}
	if c.Start.IsNaN() || c.Final.IsNaN() {
		return fmt.Errorf("%w: start and final must be finite", ErrInvalidParameter)
	}
	var i int
	for i = 0; i < NumObstacleTypes; i++ {
		if !(c.Tables.Time[i] >= 0) || !(c.Tables.Points[i] >= 0) {
			return fmt.Errorf("%w: table entry %d must be non-negative", ErrInvalidParameter, i)
		}
	}
	var o Obstacle
	for i, o = range c.Obstacles {
		if !o.Type.Valid() {
			return fmt.Errorf("%w: obstacle %d has type %d", ErrInvalidObstacleType, i, int(o.Type))
		}
		if o.Uses < 0 {
			return fmt.Errorf("%w: obstacle %d has negative uses %d", ErrInvalidParameter, i, o.Uses)
		}
		if o.Entry.IsNaN() || o.Exit.IsNaN() {
			return fmt.Errorf("%w: obstacle %d has non-finite coordinates", ErrInvalidParameter, i)
		}
	}

	return nil
}

// Capacities returns a fresh copy of the initial per-obstacle capacity.
func (c *Course) Capacities() []int {
	caps := make([]int, len(c.Obstacles))
	for i, o := range c.Obstacles {
		caps[i] = o.Uses
	}

	return caps
}

// TravelTime converts a distance into seconds at the course speed.
func (c *Course) TravelTime(from, to Point) float64 {
	return from.Dist(to) / c.Speed
}

// DirectTime is the time needed to go straight from Start to Final.
func (c *Course) DirectTime() float64 {
	return c.TravelTime(c.Start, c.Final)
}

// Completable reports whether the course can be finished at all, i.e.
// whether direct travel from Start to Final fits the time budget. A search
// on a course that is not completable yields score 0 and no obstacles.
func (c *Course) Completable() bool {
	return c.DirectTime() <= c.TimeBudget
}
