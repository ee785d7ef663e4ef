package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/kilianp07/greenwave/core/metrics"
)

// PromSink records evaluation outcomes in Prometheus metrics. It is meant for
// long optimization runs where an operator wants to watch the search converge
// from a scrape endpoint.
type PromSink struct {
	evaluations *prometheus.CounterVec
	cost        *prometheus.HistogramVec
	best        prometheus.Gauge
	iteration   prometheus.Gauge
}

// NewPromSink registers the search metrics on the default Prometheus
// registerer. The scrape server is started separately via StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "greenwave_evaluations_total",
		Help: "Total number of simulator evaluations",
	}, []string{"plan", "scenario", "penalized"})
	cost := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "greenwave_evaluation_cost_seconds",
		Help:    "Per-evaluation cost in simulated seconds of delay",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"scenario"})
	best := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "greenwave_best_resilience_score",
		Help: "Best resilience score found so far",
	})
	iteration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "greenwave_search_iteration",
		Help: "Current optimizer iteration",
	})

	for _, c := range []prometheus.Collector{evaluations, cost, best, iteration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{evaluations: evaluations, cost: cost, best: best, iteration: iteration}, nil
}

// RecordEvaluation counts the evaluations and observes their costs.
func (s *PromSink) RecordEvaluation(events []coremetrics.EvaluationEvent) error {
	for _, ev := range events {
		s.evaluations.WithLabelValues(ev.Plan, ev.Scenario, strconv.FormatBool(ev.Penalized)).Inc()
		s.cost.WithLabelValues(ev.Scenario).Observe(ev.Cost)
	}
	return nil
}

// RecordSearchIteration tracks optimizer progress.
func (s *PromSink) RecordSearchIteration(ev coremetrics.SearchEvent) error {
	s.iteration.Set(float64(ev.Iteration))
	s.best.Set(ev.BestScore)
	return nil
}

// StartPromServer exposes /metrics on the given port. It blocks until the
// server stops.
func StartPromServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
