package objective

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/greenwave/core/model"
)

// Aggregation names the declared rule combining per-scenario costs into one
// resilience score.
type Aggregation string

const (
	// AggregationWorst scores a plan by its worst scenario. This is the
	// default: a resilient plan must hold up under disruption, not just on
	// an average day.
	AggregationWorst Aggregation = "worst"
	// AggregationMean scores a plan by the arithmetic mean across scenarios.
	AggregationMean Aggregation = "mean"
)

// Valid reports whether the aggregation rule is known.
func (a Aggregation) Valid() bool {
	return a == AggregationWorst || a == AggregationMean
}

// Combine applies the rule to the per-scenario costs.
func (a Aggregation) Combine(costs []float64) float64 {
	if len(costs) == 0 {
		return 0
	}
	if a == AggregationMean {
		return stat.Mean(costs, nil)
	}
	return floats.Max(costs)
}

// Aggregator scores one timing plan across the fixed scenario set. This is
// the function handed to the optimizer: every call performs one real
// simulation per scenario, sequentially, with no caching across calls.
type Aggregator struct {
	eval      *Evaluator
	scenarios []model.Scenario
	rule      Aggregation
}

// NewAggregator validates the scenario set and rule.
func NewAggregator(eval *Evaluator, scenarios []model.Scenario, rule Aggregation) (*Aggregator, error) {
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios configured")
	}
	for _, s := range scenarios {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	if rule == "" {
		rule = AggregationWorst
	}
	if !rule.Valid() {
		return nil, fmt.Errorf("unknown aggregation rule %q", rule)
	}
	return &Aggregator{eval: eval, scenarios: scenarios, rule: rule}, nil
}

// Rule returns the declared aggregation rule.
func (g *Aggregator) Rule() Aggregation { return g.rule }

// Penalty returns the evaluator's degenerate-run cost.
func (g *Aggregator) Penalty() float64 { return g.eval.Penalty() }

// Scenarios returns the fixed scenario set.
func (g *Aggregator) Scenarios() []model.Scenario { return g.scenarios }

// Score evaluates the plan against every scenario and combines the costs.
// The per-scenario breakdown is returned alongside the score.
func (g *Aggregator) Score(ctx context.Context, planName string, plan *model.TimingPlan) (float64, []model.Evaluation, error) {
	evals := make([]model.Evaluation, 0, len(g.scenarios))
	costs := make([]float64, 0, len(g.scenarios))
	for _, sc := range g.scenarios {
		ev, err := g.eval.Evaluate(ctx, Request{PlanName: planName, Plan: plan, Scenario: sc})
		if err != nil {
			return 0, nil, err
		}
		evals = append(evals, ev)
		costs = append(costs, ev.Cost)
	}
	return g.rule.Combine(costs), evals, nil
}
