package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/agility/course"
	"github.com/katalvlaran/agility/internal/config"
)

const smallCourse = `
start: {x: 0, y: 0}
final: {x: 3, y: 0}
speed: 1
time_budget: 5
obstacles:
  - {type: Jump, entry: {x: 1, y: 0}, uses: 1}
  - {type: Tire, entry: {x: 2, y: 0}, uses: 1}
  - {type: DogWalk, entry: {x: 2, y: 0}, exit: {x: 3, y: 0}, uses: 1}
`

func writeCourse(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "course.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallCourse), 0o600))

	return path
}

func TestRun_ReportsPlan(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), config.Default(), []string{"-course", writeCourse(t), "-bound", "1"}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "score=8 sequence=[0 1 2]")
	assert.Contains(t, out.String(), "Jump -> Tire -> DogWalk")
	assert.Contains(t, out.String(), "feasible=true complete=true")
}

func TestRun_ExampleCourseWithTimeLimit(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), config.Default(), []string{"-bound", "1", "-time-limit", "1ms", "-workers", "2"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "complete=false")
}

func TestRun_InterruptReportsBestSoFar(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := run(ctx, config.Default(), []string{"-bound", "1", "-time-limit", "0", "-metrics-addr", "127.0.0.1:0"}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "score=")
	assert.Contains(t, out.String(), "feasible=true complete=false")
}

func TestRun_CancelledBeforeSearch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := run(ctx, config.Default(), []string{"-bound", "1"}, &out)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestRun_DumpCourse(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), config.Default(), []string{"-dump-course"}, &out))

	c, err := course.Load(&out)
	require.NoError(t, err)
	assert.Equal(t, course.Example(), c)
}

func TestRun_RejectsBadFlags(t *testing.T) {
	cases := [][]string{
		{"-bound", "0"},
		{"-workers", "0"},
		{"-opening", "sometimes"},
		{"-course", filepath.Join(t.TempDir(), "missing.yaml")},
		{"-no-such-flag"},
	}
	for _, args := range cases {
		var out bytes.Buffer
		assert.Error(t, run(context.Background(), config.Default(), args, &out), "%v", args)
	}
}
