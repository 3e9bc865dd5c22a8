// Depth-first Branch-and-Bound over obstacle orders.
//
// Search explores visiting orders recursively. Each node knows where the
// agent stands, how much time is left, the score so far, the path so far and
// its own snapshot of obstacle capacities. From a node the engine branches
// on the nearest obstacles only:
//
//  1. Candidate window: the first floor(n·Bound) entries of the proximity
//     row of the current location (proximity.Index, built once per Search).
//     The obstacle the agent stands on and obstacles with no capacity left
//     are skipped inside the window.
//  2. Feasibility prune: after travelling to c.Entry and traversing c, the
//     remaining time minus the trip from c.Exit to the final location must
//     stay strictly positive; otherwise c is not branched on.
//  3. A node without a feasible candidate is a leaf and returns its own
//     score and path.
//  4. Results travel back by value; a child replaces the node's best only
//     when its score is strictly greater, so the first-found best wins ties.
//
// Every child receives fresh copies of the capacity vector and path, so no
// branch ever observes a sibling's decrements. That also makes root
// branches independent, and Options.Workers > 1 evaluates them concurrently
// before an ordered max-reduce that yields the same result as the
// sequential run whenever the search completes.
//
// Complexity:
//   - Bound = 1: exhaustive, exponential in the number of obstacle visits
//     that fit the budget. Exact.
//   - Bound < 1: at most floor(n·Bound) children per node. Heuristic.
//   - Memory: O(n²) proximity index + O(depth·n) live snapshots.

package orienteer

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/agility/course"
	"github.com/katalvlaran/agility/proximity"
)

// checkMask spaces out context and deadline checks (every 1024 nodes).
const checkMask = 1023

// atStart marks a node that stands on the start location rather than on
// an obstacle exit.
const atStart = -1

// node is the search state at one point of a partial path. caps and path
// are owned by the node and never shared with siblings.
type node struct {
	at     int
	loc    course.Point
	remain float64
	score  float64
	caps   []int
	path   []int
}

// solution is the best (score, path) pair found below a node.
type solution struct {
	score float64
	path  []int
}

// engine holds the read-only search data plus per-goroutine counters.
type engine struct {
	c      *course.Course
	ix     *proximity.Index
	window int

	// Per-obstacle precomputes indexed like c.Obstacles.
	cost    []float64
	gain    []float64
	toFinal []float64

	// Order used at the root when the start matches no obstacle exit.
	rootOrder []int

	ctx         context.Context
	useDeadline bool
	deadline    time.Time
	steps       int
	stopped     bool
	cause       error

	stats Stats
}

// interrupted performs a sparse context/deadline test and latches the cause.
func (e *engine) interrupted() bool {
	if e.stopped {
		return true
	}
	e.steps++
	if (e.steps & checkMask) != 0 {
		return false
	}
	if err := e.ctx.Err(); err != nil {
		e.stopped, e.cause = true, err
		return true
	}
	if e.useDeadline && time.Now().After(e.deadline) {
		e.stopped, e.cause = true, ErrTimeLimit
		return true
	}

	return false
}

// fork returns an engine sharing the read-only data with fresh counters.
func (e *engine) fork() *engine {
	f := *e
	f.steps, f.stopped, f.cause = 0, false, nil
	f.stats = Stats{}

	return &f
}

// orderAt returns the proximity row of the node's location.
func (e *engine) orderAt(nd *node) []int {
	if nd.at == atStart {
		return e.rootOrder
	}

	return e.ix.Row(nd.at)
}

// visit evaluates candidate k from nd. It reports false when the candidate
// is exhausted or fails the feasibility check.
func (e *engine) visit(nd *node, k int) (node, bool) {
	if nd.caps[k] <= 0 {
		e.stats.Exhausted++
		return node{}, false
	}
	o := &e.c.Obstacles[k]
	remain := nd.remain - e.c.TravelTime(nd.loc, o.Entry) - e.cost[k]
	if !(remain-e.toFinal[k] > 0) {
		e.stats.Pruned++
		return node{}, false
	}

	return e.child(nd, k, remain), true
}

// child builds the node reached by taking obstacle k, with its own
// capacity snapshot and path copy.
func (e *engine) child(nd *node, k int, remain float64) node {
	caps := slices.Clone(nd.caps)
	caps[k]--
	path := make([]int, len(nd.path), len(nd.path)+1)
	copy(path, nd.path)

	return node{
		at:     k,
		loc:    e.c.Obstacles[k].Exit,
		remain: remain,
		score:  nd.score + e.gain[k],
		caps:   caps,
		path:   append(path, k),
	}
}

// candidates returns the feasible children of nd in ascending distance.
func (e *engine) candidates(nd *node) []node {
	var (
		order = e.orderAt(nd)
		out   []node
		k     int
	)
	for _, k = range order[:e.window] {
		if k == nd.at {
			continue
		}
		if ch, ok := e.visit(nd, k); ok {
			out = append(out, ch)
		}
	}

	return out
}

// expand is the recursive search. It returns the best solution in the
// subtree of nd, which is nd itself when no child improves on it.
func (e *engine) expand(nd node) solution {
	e.stats.Nodes++
	best := solution{score: nd.score, path: nd.path}
	if e.interrupted() {
		return best
	}

	var (
		order    = e.orderAt(&nd)
		branched bool
		k        int
	)
	for _, k = range order[:e.window] {
		if k == nd.at {
			continue
		}
		ch, ok := e.visit(&nd, k)
		if !ok {
			continue
		}
		branched = true
		if sol := e.expand(ch); sol.score > best.score {
			best = sol
		}
		if e.stopped {
			break
		}
	}
	if !branched {
		e.stats.Leaves++
	}

	return best
}

// expandParallel evaluates the root's children concurrently, one forked
// engine per child, then reduces in candidate order.
func (e *engine) expandParallel(root node, workers int) solution {
	e.stats.Nodes++
	best := solution{score: root.score, path: root.path}
	kids := e.candidates(&root)
	if len(kids) == 0 {
		e.stats.Leaves++
		return best
	}

	var (
		sols  = make([]solution, len(kids))
		forks = make([]*engine, len(kids))
		g     errgroup.Group
	)
	g.SetLimit(workers)
	for i := range kids {
		forks[i] = e.fork()
		g.Go(func() error {
			sols[i] = forks[i].expand(kids[i])
			return nil
		})
	}
	_ = g.Wait()

	for i := range kids {
		e.stats.add(forks[i].stats)
		if forks[i].stopped && !e.stopped {
			e.stopped, e.cause = true, forks[i].cause
		}
		if sols[i].score > best.score {
			best = sols[i]
		}
	}

	return best
}

// nearestFrom returns the obstacle other than skip with remaining capacity
// whose entry is closest to p (lowest index on ties), or -1.
func (e *engine) nearestFrom(p course.Point, caps []int, skip int) int {
	var (
		best  = -1
		bestD = math.Inf(1)
		d     float64
		k     int
	)
	for k = range e.c.Obstacles {
		if k == skip || caps[k] <= 0 {
			continue
		}
		d = p.Dist(e.c.Obstacles[k].Entry)
		if d < bestD {
			best, bestD = k, d
		}
	}

	return best
}

// opening applies the forced nearest-first step to the root. With
// OpeningChecked the step must pass the feasibility check; otherwise the
// root is returned unchanged.
func (e *engine) opening(root node, policy Opening) node {
	k := e.nearestFrom(root.loc, root.caps, root.at)
	if k < 0 {
		return root
	}
	remain := root.remain - e.c.TravelTime(root.loc, e.c.Obstacles[k].Entry) - e.cost[k]
	if policy == OpeningChecked && !(remain-e.toFinal[k] > 0) {
		e.stats.Pruned++
		return root
	}

	return e.child(&root, k, remain)
}

// locate returns the first obstacle whose exit coincides with p, or atStart.
func locate(p course.Point, obstacles []course.Obstacle) int {
	for i := range obstacles {
		if obstacles[i].Exit == p {
			return i
		}
	}

	return atStart
}

// windowSize is floor(n·bound), guarded against representation error
// (0.29·100 must give 29).
func windowSize(n int, bound float64) int {
	w := int(math.Floor(float64(n)*bound + 1e-9))
	if w > n {
		w = n
	}

	return w
}

// validateOptions checks the option ranges before any work starts.
func validateOptions(o Options) error {
	if !(o.Bound > 0 && o.Bound <= 1) {
		return fmt.Errorf("%w: bound must be in (0,1], got %v", ErrInvalidParameter, o.Bound)
	}
	if o.TimeLimit < 0 {
		return fmt.Errorf("%w: time limit must be non-negative, got %v", ErrInvalidParameter, o.TimeLimit)
	}
	if o.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidParameter, o.Workers)
	}
	switch o.Opening {
	case OpeningUnchecked, OpeningChecked:
	default:
		return fmt.Errorf("%w: unknown opening policy %d", ErrInvalidParameter, int(o.Opening))
	}

	return nil
}

// Search returns the highest-scoring obstacle sequence for c.
//
// Validation happens before any recursion: options first, then the course
// (ErrInvalidParameter, ErrInvalidObstacleType). If the final location is
// out of reach even without obstacles, Search returns score 0, an empty
// sequence and Feasible=false with a nil error.
//
// When ctx is cancelled or Options.TimeLimit expires, Search stops and
// returns the best sequence found so far together with ctx.Err() or
// ErrTimeLimit; Result.Complete is false in that case.
//
// A search that runs to completion produces identical results for identical
// inputs, for any Workers value. A stopped search returns whatever the
// branches reached before the stop, which depends on timing.
func Search(ctx context.Context, c course.Course, opts ...Option) (Result, error) {
	cfg := DefaultOptions()
	var opt Option
	for _, opt = range opts {
		opt(&cfg)
	}
	if err := validateOptions(cfg); err != nil {
		return Result{}, err
	}
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{Sequence: []int{}, Complete: true}
	if !c.Completable() {
		res.TimeUsed = c.DirectTime()
		return res, nil
	}

	e := newEngine(ctx, &c, cfg)
	root := node{
		at:     locate(c.Start, c.Obstacles),
		loc:    c.Start,
		remain: c.TimeBudget,
		caps:   c.Capacities(),
		path:   []int{},
	}
	if cfg.ForceNearestFirst {
		root = e.opening(root, cfg.Opening)
	}

	var best solution
	if cfg.Workers > 1 {
		best = e.expandParallel(root, cfg.Workers)
	} else {
		best = e.expand(root)
	}

	res.Score = best.score
	res.Sequence = best.path
	res.Stats = e.stats
	res.Complete = !e.stopped
	t, err := SequenceTime(c, best.path)
	if err != nil {
		return Result{}, err
	}
	res.TimeUsed = t
	res.Feasible = t <= c.TimeBudget+feasTol

	return res, e.cause
}

// newEngine resolves the per-obstacle tables and builds the proximity data.
// The course must already be validated.
func newEngine(ctx context.Context, c *course.Course, cfg Options) *engine {
	n := len(c.Obstacles)
	e := &engine{
		c:       c,
		ix:      proximity.Build(c.Obstacles),
		window:  windowSize(n, cfg.Bound),
		cost:    make([]float64, n),
		gain:    make([]float64, n),
		toFinal: make([]float64, n),
		ctx:     ctx,
	}
	var k int
	for k = 0; k < n; k++ {
		o := c.Obstacles[k]
		e.cost[k] = c.Tables.Time[o.Type]
		e.gain[k] = c.Tables.Points[o.Type]
		e.toFinal[k] = c.TravelTime(o.Exit, c.Final)
	}
	e.rootOrder = proximity.From(c.Start, c.Obstacles)
	if cfg.TimeLimit > 0 {
		e.useDeadline = true
		e.deadline = time.Now().Add(cfg.TimeLimit)
	}

	return e
}
