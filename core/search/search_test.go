package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/kilianp07/greenwave/core/metrics"
	"github.com/kilianp07/greenwave/core/model"
	"github.com/kilianp07/greenwave/core/objective"
	"github.com/kilianp07/greenwave/core/sim"
	"github.com/kilianp07/greenwave/infra/logger"
)

func TestSpaceDefaultsAndValidate(t *testing.T) {
	var s Space
	s.SetDefaults()
	if s.CycleMinSec != 20 || s.CycleMaxSec != 120 || s.RatioMin != 0.3 || s.RatioMax != 0.7 {
		t.Fatalf("unexpected defaults %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("validate defaults: %v", err)
	}
	bad := Space{CycleMinSec: 60, CycleMaxSec: 30, RatioMin: 0.3, RatioMax: 0.7}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unordered cycle bounds")
	}
	bad = Space{CycleMinSec: 20, CycleMaxSec: 120, RatioMin: 0.7, RatioMax: 0.3}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for unordered ratio bounds")
	}
	bad = Space{CycleMinSec: 4, CycleMaxSec: 120, RatioMin: 0.3, RatioMax: 0.7}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for cycle bound below yellow budget")
	}
}

func TestSpaceContains(t *testing.T) {
	s := Space{CycleMinSec: 20, CycleMaxSec: 120, RatioMin: 0.3, RatioMax: 0.7}
	if !s.Contains(model.Params{CycleSec: 60, NSRatio: 0.5}) {
		t.Fatal("interior point rejected")
	}
	if !s.Contains(model.Params{CycleSec: 20, NSRatio: 0.3}) {
		t.Fatal("lower corner rejected")
	}
	if s.Contains(model.Params{CycleSec: 130, NSRatio: 0.5}) {
		t.Fatal("out-of-bounds cycle accepted")
	}
}

func TestConfigValidate(t *testing.T) {
	var c Config
	c.SetDefaults()
	if c.Iterations != 30 || c.InitialSamples != 10 {
		t.Fatalf("unexpected defaults %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate defaults: %v", err)
	}
	if err := (Config{Iterations: 5, InitialSamples: 10}).Validate(); err == nil {
		t.Fatal("expected error for initial samples above budget")
	}
	if err := (Config{Iterations: 10, InitialSamples: 5}).Validate(); err == nil {
		t.Fatal("expected error for empty candidate pool")
	}
}

// costRunner scores plans by distance of their cycle from a sweet spot, so
// the search has an actual landscape to descend.
type costRunner struct {
	errs map[string]error
}

func (r *costRunner) Run(_ context.Context, spec sim.RunSpec) (sim.TripStats, error) {
	if err, ok := r.errs[spec.Scenario.Name]; ok {
		return sim.TripStats{}, err
	}
	cost := math.Abs(float64(spec.Plan.CycleSec()) - 60)
	return sim.TripStats{Metric: sim.MetricWaitingTime, Values: []float64{cost, cost}}, nil
}

func testDriver(t *testing.T, r sim.Runner) *Driver {
	t.Helper()
	eval := objective.NewEvaluator(r, 0, "run", nil, logger.NopLogger{})
	scenarios := []model.Scenario{
		{Name: "normal", Config: "grid_normal.sumocfg"},
		{Name: "disrupted", Config: "grid_disrupted.sumocfg"},
	}
	agg, err := objective.NewAggregator(eval, scenarios, objective.AggregationWorst)
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	var space Space
	space.SetDefaults()
	cfg := Config{Iterations: 6, InitialSamples: 4, Candidates: 20, Seed: 7}
	d, err := NewDriver(agg, space, cfg, model.GridJunctions(3), "run", nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	return d
}

func TestDriverRun(t *testing.T) {
	d := testDriver(t, &costRunner{})
	res, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Evaluated < 1 {
		t.Fatal("no candidates evaluated")
	}
	if math.IsNaN(res.Score) || math.IsInf(res.Score, 0) || res.Score < 0 {
		t.Fatalf("score not finite non-negative: %v", res.Score)
	}
	if !d.space.Contains(res.Params) {
		t.Fatalf("winning params %+v outside declared bounds", res.Params)
	}
	if len(res.Breakdown) != 2 {
		t.Fatalf("expected per-scenario breakdown of 2, got %d", len(res.Breakdown))
	}
	if res.Aggregation != objective.AggregationWorst {
		t.Fatalf("aggregation %q, want worst", res.Aggregation)
	}
	if _, err := res.Plan(model.GridJunctions(3)); err != nil {
		t.Fatalf("winning plan not materializable: %v", err)
	}
}

// recordingSink captures progress events so tests can audit the loop.
type recordingSink struct {
	events []metrics.SearchEvent
}

func (*recordingSink) RecordEvaluation([]metrics.EvaluationEvent) error { return nil }

func (s *recordingSink) RecordSearchIteration(ev metrics.SearchEvent) error {
	s.events = append(s.events, ev)
	return nil
}

func TestDriverRunBestIsMinimumScored(t *testing.T) {
	eval := objective.NewEvaluator(&costRunner{}, 0, "run", nil, logger.NopLogger{})
	agg, err := objective.NewAggregator(eval, []model.Scenario{{Name: "normal", Config: "grid_normal.sumocfg"}}, objective.AggregationWorst)
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	var space Space
	space.SetDefaults()
	sink := &recordingSink{}
	cfg := Config{Iterations: 8, InitialSamples: 4, Candidates: 20, Seed: 7}
	d, err := NewDriver(agg, space, cfg, model.GridJunctions(3), "run", sink, logger.NopLogger{})
	if err != nil {
		t.Fatalf("driver: %v", err)
	}
	res, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.events) != cfg.Iterations {
		t.Fatalf("recorded %d iterations, want %d", len(sink.events), cfg.Iterations)
	}
	minScore := math.Inf(1)
	for i, ev := range sink.events {
		if ev.Iteration != i+1 {
			t.Fatalf("iteration %d recorded as %d", i+1, ev.Iteration)
		}
		if ev.Score < minScore {
			minScore = ev.Score
		}
		if ev.BestScore != minScore {
			t.Fatalf("iteration %d best %v, want running minimum %v", ev.Iteration, ev.BestScore, minScore)
		}
	}
	if res.Score != minScore {
		t.Fatalf("returned best %v, want minimum scored %v", res.Score, minScore)
	}
}

func TestDriverRunDeterministic(t *testing.T) {
	a, err := testDriver(t, &costRunner{}).Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := testDriver(t, &costRunner{}).Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if a.Params != b.Params || a.Score != b.Score {
		t.Fatalf("same seed diverged: %+v vs %+v", a, b)
	}
}

func TestDriverRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := testDriver(t, &costRunner{}).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDriverRunContinuesPastPenalties(t *testing.T) {
	// One scenario always yields an unusable summary: every candidate is
	// penalized, yet the loop still finishes with a result.
	d := testDriver(t, &costRunner{errs: map[string]error{"disrupted": sim.ErrSummary}})
	res, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Score != objective.DefaultPenalty {
		t.Fatalf("score %v, want penalty %v", res.Score, float64(objective.DefaultPenalty))
	}
}

func TestDriverRunFatal(t *testing.T) {
	boom := errors.New("sumo crashed")
	d := testDriver(t, &costRunner{errs: map[string]error{"normal": boom}})
	if _, err := d.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected fatal error, got %v", err)
	}
}

func TestNewDriverValidation(t *testing.T) {
	eval := objective.NewEvaluator(&costRunner{}, 0, "run", nil, logger.NopLogger{})
	agg, err := objective.NewAggregator(eval, []model.Scenario{{Name: "n", Config: "n.sumocfg"}}, "")
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	var space Space
	space.SetDefaults()
	var cfg Config
	cfg.SetDefaults()
	if _, err := NewDriver(agg, Space{CycleMinSec: 60, CycleMaxSec: 30}, cfg, model.GridJunctions(3), "r", nil, logger.NopLogger{}); err == nil {
		t.Fatal("expected error for bad space")
	}
	if _, err := NewDriver(agg, space, cfg, nil, "r", nil, logger.NopLogger{}); err == nil {
		t.Fatal("expected error for empty junction set")
	}
}
