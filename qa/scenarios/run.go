package scenarios

import (
	"context"
	"testing"

	"github.com/kilianp07/greenwave/core/model"
	"github.com/kilianp07/greenwave/core/objective"
	"github.com/kilianp07/greenwave/core/sim"
	"github.com/kilianp07/greenwave/infra/logger"
)

type stubRunner struct {
	traffic map[string][]float64
}

func (r *stubRunner) Run(_ context.Context, spec sim.RunSpec) (sim.TripStats, error) {
	values, ok := r.traffic[spec.Scenario.Name]
	if !ok {
		return sim.TripStats{}, sim.ErrSummary
	}
	if len(values) == 0 {
		return sim.TripStats{}, sim.ErrNoTrips
	}
	return sim.TripStats{Metric: sim.MetricWaitingTime, Values: values}, nil
}

// RunCase scores one plan across the case's stubbed scenarios and asserts
// the expected aggregate.
func RunCase(t *testing.T, c *Case) {
	t.Helper()

	runner := &stubRunner{traffic: make(map[string][]float64, len(c.Traffic))}
	scenarios := make([]model.Scenario, 0, len(c.Traffic))
	for _, def := range c.Traffic {
		runner.traffic[def.Scenario] = def.Trips
		scenarios = append(scenarios, model.Scenario{
			Name:   def.Scenario,
			Config: def.Scenario + ".sumocfg",
		})
	}

	eval := objective.NewEvaluator(runner, c.Penalty, "qa", nil, logger.NopLogger{})
	agg, err := objective.NewAggregator(eval, scenarios, objective.Aggregation(c.Aggregation))
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	plan, err := model.NewGridPlan("qa-plan", 60, 0.5, model.GridJunctions(3))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	score, evals, err := agg.Score(context.Background(), plan.Name, &plan)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score != c.Expected.Score {
		t.Fatalf("score %v, want %v", score, c.Expected.Score)
	}
	penalized := 0
	for _, ev := range evals {
		if ev.Penalized {
			penalized++
		}
	}
	if penalized != c.Expected.Penalized {
		t.Fatalf("penalized %d, want %d", penalized, c.Expected.Penalized)
	}
}
