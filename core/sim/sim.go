// Package sim defines the boundary between the search pipeline and the
// external microscopic traffic simulator. The pipeline only ever sees a
// Runner; the SUMO-backed implementation lives in infra/sumo.
package sim

import (
	"context"
	"errors"

	"github.com/kilianp07/greenwave/core/model"
)

// Metric selects which per-trip statistic of the simulator summary becomes
// the evaluation cost.
type Metric string

const (
	// MetricWaitingTime is the total time a vehicle spent below walking
	// speed, the default resilience metric.
	MetricWaitingTime Metric = "waitingTime"
	// MetricDuration is the full trip travel time.
	MetricDuration Metric = "duration"
	// MetricTimeLoss is the time lost relative to the unimpeded trip.
	MetricTimeLoss Metric = "timeLoss"
)

// Valid reports whether the metric is one the summary parser understands.
func (m Metric) Valid() bool {
	switch m {
	case MetricWaitingTime, MetricDuration, MetricTimeLoss:
		return true
	}
	return false
}

// ErrSummary marks a run whose summary output is missing, malformed or lacks
// the requested metric. Callers substitute a penalty cost instead of
// aborting, so one degenerate run cannot sink a whole search.
var ErrSummary = errors.New("simulation summary unusable")

// ErrNoTrips marks a run in which no vehicle completed its trip, typically a
// gridlocked network. Penalized like ErrSummary.
var ErrNoTrips = errors.New("no completed trips")

// RunSpec describes one simulator invocation.
//
// Exactly one of Plan or PlanFile may be set: Plan is materialized into a
// signal-program overlay inside WorkDir before the run, PlanFile points at a
// pre-existing overlay. With neither set the scenario runs on its built-in
// signal programs.
type RunSpec struct {
	Scenario model.Scenario
	Plan     *model.TimingPlan
	PlanFile string
	// WorkDir is owned exclusively by this invocation; the runner writes all
	// of its output files there.
	WorkDir string
}

// TripStats holds the per-trip metric values extracted from one completed
// simulation.
type TripStats struct {
	Metric Metric
	Values []float64
}

// Trips returns the number of vehicles that completed their trip.
func (t TripStats) Trips() int { return len(t.Values) }

// Runner executes one simulation run to completion and reports its trip
// statistics. Implementations must be deterministic for identical specs.
type Runner interface {
	Run(ctx context.Context, spec RunSpec) (TripStats, error)
}
