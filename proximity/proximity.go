// Package proximity precomputes, for every obstacle of a course, the order
// in which all obstacles are reached from that obstacle's exit point.
//
// Row i of an Index lists every obstacle index j sorted by the Euclidean
// distance from obstacles[i].Exit to obstacles[j].Entry, ascending, with
// ties broken by the smaller index. Row i contains i itself; callers that
// stand on obstacle i skip it at use time.
//
// The index is a pure function of the obstacle geometry. Capacities play no
// part, so one Index serves every node of a search and is never mutated
// after Build.
//
// Complexity:
//   - Build: O(n² log n) time, O(n²) memory.
//   - Row:   O(1).
package proximity

import (
	"sort"

	"github.com/katalvlaran/agility/course"
)

// Index is the read-only proximity table of a course.
type Index struct {
	n    int
	rows [][]int
}

// byDistance implements sort.Interface for one row of candidate indices
// keyed by a precomputed distance slice (index tiebreak).
type byDistance struct {
	row  []int
	dist []float64
}

func (b byDistance) Len() int { return len(b.row) }
func (b byDistance) Less(i, j int) bool {
	vi, vj := b.row[i], b.row[j]
	di, dj := b.dist[vi], b.dist[vj]
	if di == dj {
		return vi < vj
	}

	return di < dj
}
func (b byDistance) Swap(i, j int) { b.row[i], b.row[j] = b.row[j], b.row[i] }

// Build returns the proximity index of obstacles.
func Build(obstacles []course.Obstacle) *Index {
	n := len(obstacles)
	ix := &Index{n: n, rows: make([][]int, n)}
	var i int
	for i = 0; i < n; i++ {
		ix.rows[i] = From(obstacles[i].Exit, obstacles)
	}

	return ix
}

// From orders all obstacles by the distance from p to their entry points.
// The search uses it once, at the root, when the start location does not
// coincide with any obstacle exit.
func From(p course.Point, obstacles []course.Obstacle) []int {
	var (
		n    = len(obstacles)
		row  = make([]int, n)
		dist = make([]float64, n)
		j    int
	)
	for j = 0; j < n; j++ {
		row[j] = j
		dist[j] = p.Dist(obstacles[j].Entry)
	}
	sort.Sort(byDistance{row: row, dist: dist})

	return row
}

// Len returns the number of obstacles covered by the index.
func (ix *Index) Len() int { return ix.n }

// Row returns the proximity order from the exit of obstacle i.
// The returned slice is shared and must not be modified.
func (ix *Index) Row(i int) []int { return ix.rows[i] }
