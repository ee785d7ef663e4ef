// Package compare runs the fixed comparison matrix: every named timing plan
// against every scenario, one simulation per cell. Pure enumeration, no
// adaptive sampling.
package compare

import (
	"context"
	"fmt"
	"os"

	"github.com/kilianp07/greenwave/core/logger"
	"github.com/kilianp07/greenwave/core/model"
	"github.com/kilianp07/greenwave/core/objective"
)

// PlanRef names one plan under comparison. An empty File means the scenario
// runs with its built-in signal programs (the simulator's own defaults).
type PlanRef struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// Validate checks the plan list: at least one entry, unique non-empty names,
// and every referenced overlay file present. A missing overlay is a
// configuration error and fatal before any simulation starts.
func Validate(plans []PlanRef) error {
	if len(plans) == 0 {
		return fmt.Errorf("no plans configured")
	}
	seen := make(map[string]struct{}, len(plans))
	for _, p := range plans {
		if p.Name == "" {
			return fmt.Errorf("plan with empty name")
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("duplicate plan name %s", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.File != "" {
			if _, err := os.Stat(p.File); err != nil {
				return fmt.Errorf("plan %s overlay: %w", p.Name, err)
			}
		}
	}
	return nil
}

// Run evaluates the full cross-product and returns exactly
// len(plans)*len(scenarios) rows, plan-major, each uniquely keyed by
// (plan name, scenario name).
func Run(ctx context.Context, eval *objective.Evaluator, plans []PlanRef, scenarios []model.Scenario, log logger.Logger) ([]model.Evaluation, error) {
	if err := Validate(plans); err != nil {
		return nil, err
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios configured")
	}
	rows := make([]model.Evaluation, 0, len(plans)*len(scenarios))
	for _, plan := range plans {
		for _, sc := range scenarios {
			ev, err := eval.Evaluate(ctx, objective.Request{
				PlanName: plan.Name,
				PlanFile: plan.File,
				Scenario: sc,
			})
			if err != nil {
				return nil, err
			}
			log.Infof("%s / %s: cost %.2f over %d trips", plan.Name, sc.Name, ev.Cost, ev.Trips)
			rows = append(rows, ev)
		}
	}
	return rows, nil
}
