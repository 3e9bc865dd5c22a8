// Package metrics exposes search counters on a dedicated Prometheus registry.
package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/katalvlaran/agility/orienteer"
)

// Run status label values.
const (
	StatusComplete   = "complete"
	StatusTruncated  = "truncated"
	StatusInfeasible = "infeasible"
	StatusError      = "error"
)

var (
	// Registry is the dedicated Prometheus registry of the driver.
	Registry = prometheus.NewRegistry()

	// SearchRuns counts searches by outcome.
	SearchRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "agility_search_runs_total", Help: "Searches by outcome."},
		[]string{"status"},
	)
	// SearchNodes counts expanded search nodes.
	SearchNodes = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "agility_search_nodes_total", Help: "Search nodes expanded."},
	)
	// SearchPruned counts candidates rejected by the feasibility check.
	SearchPruned = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "agility_search_pruned_total", Help: "Candidates pruned as infeasible."},
	)
	// SearchDuration records wall-clock search time in seconds.
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "agility_search_duration_seconds", Help: "Search duration in seconds.", Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60}},
	)
	// BestScore holds the score of the latest search.
	BestScore = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "agility_search_best_score", Help: "Score of the latest search."},
	)
)

var regOnce sync.Once

// RegisterDefault registers the collectors once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(SearchRuns)
		Registry.MustRegister(SearchNodes)
		Registry.MustRegister(SearchPruned)
		Registry.MustRegister(SearchDuration)
		Registry.MustRegister(BestScore)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Status classifies a search outcome for the status label.
func Status(res orienteer.Result, err error) string {
	switch {
	case err != nil && !errors.Is(err, orienteer.ErrTimeLimit):
		return StatusError
	case !res.Feasible:
		return StatusInfeasible
	case !res.Complete:
		return StatusTruncated
	default:
		return StatusComplete
	}
}

// ObserveSearch records one search outcome.
func ObserveSearch(res orienteer.Result, err error, dur time.Duration) {
	SearchRuns.WithLabelValues(Status(res, err)).Inc()
	SearchDuration.Observe(dur.Seconds())
	if err != nil && !errors.Is(err, orienteer.ErrTimeLimit) {
		return
	}
	SearchNodes.Add(float64(res.Stats.Nodes))
	SearchPruned.Add(float64(res.Stats.Pruned))
	BestScore.Set(res.Score)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
