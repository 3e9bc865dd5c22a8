package course_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/agility/course"
)

func validCourse() course.Course {
	return course.Course{
		Start:      course.Point{X: 0, Y: 0},
		Final:      course.Point{X: 30, Y: 40},
		Speed:      10,
		TimeBudget: 20,
		Tables:     course.DefaultTables(),
		Obstacles: []course.Obstacle{
			{Type: course.Jump, Entry: course.Point{X: 1, Y: 1}, Exit: course.Point{X: 1, Y: 1}, Uses: 2},
		},
	}
}

func TestObstacleType_String(t *testing.T) {
	assert.Equal(t, "Jump", course.Jump.String())
	assert.Equal(t, "Weaves 12 poles", course.Weaves12.String())
	assert.Equal(t, "DogWalk", course.DogWalk.String())
	assert.Equal(t, "ObstacleType(10)", course.ObstacleType(10).String())
	assert.Equal(t, "ObstacleType(-1)", course.ObstacleType(-1).String())
}

func TestParseObstacleType(t *testing.T) {
	for _, name := range []string{"Long Jump", "long jump", "LongJump", "long_jump"} {
		got, err := course.ParseObstacleType(name)
		require.NoError(t, err, name)
		assert.Equal(t, course.LongJump, got, name)
	}
	got, err := course.ParseObstacleType("a-frame")
	require.NoError(t, err)
	assert.Equal(t, course.AFrame, got)

	_, err = course.ParseObstacleType("Trampoline")
	require.ErrorIs(t, err, course.ErrInvalidObstacleType)
}

func TestTables_BoundsChecked(t *testing.T) {
	tb := course.DefaultTables()

	tm, err := tb.TimeOf(course.Weaves12)
	require.NoError(t, err)
	assert.Equal(t, 3.8, tm)

	pts, err := tb.PointsOf(course.AFrame)
	require.NoError(t, err)
	assert.Equal(t, 4.0, pts)

	_, err = tb.TimeOf(course.NumObstacleTypes)
	require.ErrorIs(t, err, course.ErrInvalidObstacleType)
	_, err = tb.PointsOf(-3)
	require.ErrorIs(t, err, course.ErrInvalidObstacleType)
}

func TestCourse_Validate(t *testing.T) {
	c := validCourse()
	require.NoError(t, c.Validate())

	cases := []struct {
		name   string
		mutate func(*course.Course)
		want   error
	}{
		{"zero speed", func(c *course.Course) { c.Speed = 0 }, course.ErrInvalidParameter},
		{"negative speed", func(c *course.Course) { c.Speed = -1 }, course.ErrInvalidParameter},
		{"NaN speed", func(c *course.Course) { c.Speed = math.NaN() }, course.ErrInvalidParameter},
		{"negative budget", func(c *course.Course) { c.TimeBudget = -0.5 }, course.ErrInvalidParameter},
		{"infinite budget", func(c *course.Course) { c.TimeBudget = math.Inf(1) }, course.ErrInvalidParameter},
		{"NaN start", func(c *course.Course) { c.Start.X = math.NaN() }, course.ErrInvalidParameter},
		{"negative table", func(c *course.Course) { c.Tables.Time[course.Tire] = -1 }, course.ErrInvalidParameter},
		{"negative uses", func(c *course.Course) { c.Obstacles[0].Uses = -1 }, course.ErrInvalidParameter},
		{"NaN exit", func(c *course.Course) { c.Obstacles[0].Exit.Y = math.NaN() }, course.ErrInvalidParameter},
		{"type too large", func(c *course.Course) { c.Obstacles[0].Type = 10 }, course.ErrInvalidObstacleType},
		{"type negative", func(c *course.Course) { c.Obstacles[0].Type = -1 }, course.ErrInvalidObstacleType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCourse()
			tc.mutate(&c)
			require.ErrorIs(t, c.Validate(), tc.want)
		})
	}
}

func TestCourse_Completable(t *testing.T) {
	c := validCourse()
	assert.InDelta(t, 5.0, c.DirectTime(), 1e-12)
	assert.True(t, c.Completable())

	c.TimeBudget = 5
	assert.True(t, c.Completable(), "exact fit is completable")

	c.TimeBudget = 4.999
	assert.False(t, c.Completable())

	c.Final = c.Start
	c.TimeBudget = 0
	assert.True(t, c.Completable())
}

func TestCourse_CapacitiesAreCopies(t *testing.T) {
	c := validCourse()
	caps := c.Capacities()
	caps[0] = 0
	assert.Equal(t, 2, c.Obstacles[0].Uses)
	assert.Equal(t, []int{2}, c.Capacities())
}

func TestObstacle_IsLong(t *testing.T) {
	o := course.Obstacle{Entry: course.Point{X: 1}, Exit: course.Point{X: 1}}
	assert.False(t, o.IsLong())
	o.Exit.Y = 3
	assert.True(t, o.IsLong())
}
