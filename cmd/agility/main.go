// Command agility plans the highest-scoring obstacle sequence of an agility
// course within its time budget.
//
// Settings come from AGILITY_* environment variables (or a .env file) and
// may be overridden by flags:
//
//	agility -course course.yaml -bound 0.5 -time-limit 5s -workers 4
//
// Without -course the bundled example course is used.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/katalvlaran/agility/course"
	"github.com/katalvlaran/agility/internal/config"
	"github.com/katalvlaran/agility/internal/metrics"
	"github.com/katalvlaran/agility/internal/obs"
	"github.com/katalvlaran/agility/orienteer"
)

func main() {
	log.SetFlags(log.Ltime)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[ERROR] config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

// run parses flags over cfg, solves the course and writes the plan to out.
func run(ctx context.Context, cfg config.Config, args []string, out io.Writer) (err error) {
	fs := flag.NewFlagSet("agility", flag.ContinueOnError)
	fs.SetOutput(out)
	coursePath := fs.String("course", cfg.CoursePath, "Course YAML file (empty = bundled example)")
	bound := fs.Float64("bound", cfg.Bound, "Fraction of the proximity order branched on, in (0,1]")
	force := fs.Bool("force-nearest", cfg.ForceNearest, "Take the obstacle nearest the start first")
	opening := fs.String("opening", cfg.Opening.String(), "Forced first step policy: checked or unchecked")
	timeLimit := fs.Duration("time-limit", cfg.TimeLimit, "Soft search time limit (0 = unlimited)")
	workers := fs.Int("workers", cfg.Workers, "Concurrent root branches")
	metricsAddr := fs.String("metrics-addr", cfg.MetricsAddr, "Serve /metrics on this address and keep running")
	dump := fs.Bool("dump-course", false, "Print the resolved course as YAML and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.CoursePath = *coursePath
	cfg.Bound = *bound
	cfg.ForceNearest = *force
	cfg.TimeLimit = *timeLimit
	cfg.Workers = *workers
	cfg.MetricsAddr = *metricsAddr
	if cfg.Opening, err = config.ParseOpening(*opening); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c, err := loadCourse(cfg.CoursePath)
	if err != nil {
		return err
	}
	if *dump {
		return course.Encode(out, c)
	}

	ctx, runID := obs.WithRunID(ctx)
	log.Printf("[INFO] run_id=%s obstacles=%d bound=%g workers=%d", runID, len(c.Obstacles), cfg.Bound, cfg.Workers)

	metrics.RegisterDefault()
	res, err := solve(ctx, c, cfg)
	if err != nil {
		return err
	}
	report(out, c, res)

	if cfg.MetricsAddr == "" || ctx.Err() != nil {
		return nil
	}

	return serveMetrics(ctx, cfg.MetricsAddr)
}

func loadCourse(path string) (course.Course, error) {
	if path == "" {
		return course.Example(), nil
	}

	return course.LoadFile(path)
}

// solve runs the search. An expired time limit or an interrupt after the
// search started is reported but not fatal: the best plan found so far is
// returned.
func solve(ctx context.Context, c course.Course, cfg config.Config) (res orienteer.Result, err error) {
	done := obs.Time(ctx, "search")
	defer func() { done(&err) }()

	start := time.Now()
	res, err = orienteer.Search(ctx, c, cfg.SearchOptions()...)
	metrics.ObserveSearch(res, err, time.Since(start))
	if errors.Is(err, orienteer.ErrTimeLimit) {
		log.Printf("[WARN] run_id=%s time limit %v reached, reporting best found", obs.RunID(ctx), cfg.TimeLimit)
		return res, nil
	}
	// Search leaves Sequence nil only when it stopped before the first node.
	if interrupted(err) && res.Sequence != nil {
		log.Printf("[WARN] run_id=%s interrupted (%v), reporting best found", obs.RunID(ctx), err)
		return res, nil
	}

	return res, err
}

func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func report(out io.Writer, c course.Course, res orienteer.Result) {
	names := make([]string, len(res.Sequence))
	for i, k := range res.Sequence {
		names[i] = c.Obstacles[k].Type.String()
	}

	fmt.Fprintf(out, "score=%g sequence=%v\n", res.Score, res.Sequence)
	if len(names) > 0 {
		fmt.Fprintln(out, strings.Join(names, " -> "))
	}
	fmt.Fprintf(out, "time=%.3f budget=%g feasible=%t complete=%t\n", res.TimeUsed, c.TimeBudget, res.Feasible, res.Complete)
	fmt.Fprintf(out, "nodes=%d leaves=%d pruned=%d exhausted=%d\n",
		res.Stats.Nodes, res.Stats.Leaves, res.Stats.Pruned, res.Stats.Exhausted)
}

// serveMetrics blocks serving /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] metrics listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("[INFO] Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
