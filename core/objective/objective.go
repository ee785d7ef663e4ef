// Package objective maps candidate timing plans to scalar costs by driving
// the external simulator, and aggregates per-scenario costs into the
// resilience score the search minimizes.
package objective

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/greenwave/core/logger"
	"github.com/kilianp07/greenwave/core/metrics"
	"github.com/kilianp07/greenwave/core/model"
	"github.com/kilianp07/greenwave/core/sim"
)

// DefaultPenalty is the cost substituted for a degenerate run: ten times the
// default simulation horizon, far above any realistic mean delay.
const DefaultPenalty = 10 * model.DefaultEndSec

// Evaluator produces one Evaluation per (plan, scenario) pair. Each call owns
// a private working directory for the lifetime of that single simulation and
// removes it on every exit path.
type Evaluator struct {
	runner  sim.Runner
	penalty float64
	runID   string
	sink    metrics.Sink
	log     logger.Logger
}

// NewEvaluator wires an evaluator. A zero penalty selects DefaultPenalty; a
// nil sink disables recording.
func NewEvaluator(runner sim.Runner, penalty float64, runID string, sink metrics.Sink, log logger.Logger) *Evaluator {
	if penalty <= 0 {
		penalty = DefaultPenalty
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Evaluator{runner: runner, penalty: penalty, runID: runID, sink: sink, log: log}
}

// Penalty returns the cost substituted for degenerate runs.
func (e *Evaluator) Penalty() float64 { return e.penalty }

// Request names one evaluation. Plan and PlanFile follow sim.RunSpec
// semantics: at most one set, neither meaning the scenario's built-in
// signal programs.
type Request struct {
	PlanName string
	Plan     *model.TimingPlan
	PlanFile string
	Scenario model.Scenario
}

// Evaluate runs one simulation and returns the mean of the per-trip metric as
// the cost. A run whose summary is unusable, or in which no vehicle finished,
// is not an error: it yields the penalty cost with Penalized set, so a single
// gridlocked sample cannot abort a whole search. Simulator invocation
// failures are returned as errors and are fatal to the caller.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (model.Evaluation, error) {
	work, err := os.MkdirTemp("", "greenwave-eval-*")
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("create working directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(work); rmErr != nil {
			e.log.Warnf("remove working directory %s: %v", work, rmErr)
		}
	}()

	start := time.Now()
	ev := model.Evaluation{
		RunID:    e.runID,
		Plan:     req.PlanName,
		Scenario: req.Scenario.Name,
		Time:     start,
	}
	stats, err := e.runner.Run(ctx, sim.RunSpec{
		Scenario: req.Scenario,
		Plan:     req.Plan,
		PlanFile: req.PlanFile,
		WorkDir:  work,
	})
	ev.Elapsed = time.Since(start)
	switch {
	case err == nil:
		ev.Cost = stat.Mean(stats.Values, nil)
		ev.Trips = stats.Trips()
	case errors.Is(err, sim.ErrSummary) || errors.Is(err, sim.ErrNoTrips):
		e.log.Warnf("penalizing %s/%s: %v", req.PlanName, req.Scenario.Name, err)
		ev.Cost = e.penalty
		ev.Penalized = true
	default:
		return model.Evaluation{}, fmt.Errorf("evaluate %s/%s: %w", req.PlanName, req.Scenario.Name, err)
	}

	if sinkErr := e.sink.RecordEvaluation([]metrics.EvaluationEvent{{
		RunID:     ev.RunID,
		Plan:      ev.Plan,
		Scenario:  ev.Scenario,
		Cost:      ev.Cost,
		Trips:     ev.Trips,
		Penalized: ev.Penalized,
		Elapsed:   ev.Elapsed,
		Time:      ev.Time,
	}}); sinkErr != nil {
		e.log.Warnf("record evaluation: %v", sinkErr)
	}
	return ev, nil
}
