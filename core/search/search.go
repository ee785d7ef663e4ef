// Package search drives the Bayesian optimization loop: a seeded random
// warmup followed by surrogate-guided candidates, each scored through the
// resilience aggregator. The loop is explicit so cancellation, penalty
// continuation and progress recording stay under the driver's control.
package search

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/kilianp07/greenwave/core/logger"
	"github.com/kilianp07/greenwave/core/metrics"
	"github.com/kilianp07/greenwave/core/model"
	"github.com/kilianp07/greenwave/core/objective"
)

// Config sets the optimizer budget.
type Config struct {
	Iterations     int   `json:"iterations"`
	InitialSamples int   `json:"initial_samples"`
	Candidates     int   `json:"candidates"`
	Seed           int64 `json:"seed"`
}

// SetDefaults matches the budget the pipeline was tuned on.
func (c *Config) SetDefaults() {
	if c.Iterations == 0 {
		c.Iterations = 30
	}
	if c.InitialSamples == 0 {
		c.InitialSamples = 10
	}
	if c.Candidates == 0 {
		c.Candidates = 100
	}
	if c.Seed == 0 {
		c.Seed = 123
	}
}

// Validate checks the budget is runnable.
func (c Config) Validate() error {
	if c.Iterations < 1 {
		return fmt.Errorf("iteration budget %d < 1", c.Iterations)
	}
	if c.InitialSamples < 1 || c.InitialSamples > c.Iterations {
		return fmt.Errorf("initial samples %d outside [1,%d]", c.InitialSamples, c.Iterations)
	}
	if c.Candidates < 1 {
		return fmt.Errorf("candidate pool %d < 1", c.Candidates)
	}
	return nil
}

// Result is the terminal output of one search: the single best-scoring plan
// and enough context to reproduce it.
type Result struct {
	RunID       string                `json:"run_id"`
	Params      model.Params          `json:"params"`
	Score       float64               `json:"score"`
	Aggregation objective.Aggregation `json:"aggregation"`
	Breakdown   []model.Evaluation    `json:"breakdown"`
	Evaluated   int                   `json:"evaluated"`
	StartedAt   time.Time             `json:"started_at"`
	FinishedAt  time.Time             `json:"finished_at"`
}

// Plan materializes the winning parameters.
func (r Result) Plan(junctions []string) (model.TimingPlan, error) {
	return r.Params.Plan("resilient", junctions)
}

// observation pairs a normalized candidate with its aggregate score.
type observation struct {
	x     []float64
	score float64
}

// Driver owns one search run. There is no checkpointing: interrupting a run
// loses its progress.
type Driver struct {
	agg       *objective.Aggregator
	space     Space
	cfg       Config
	junctions []string
	runID     string
	sink      metrics.Sink
	log       logger.Logger
}

// NewDriver validates the space and budget and returns a ready driver. A nil
// sink disables progress recording.
func NewDriver(agg *objective.Aggregator, space Space, cfg Config, junctions []string, runID string, sink metrics.Sink, log logger.Logger) (*Driver, error) {
	if err := space.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(junctions) == 0 {
		return nil, fmt.Errorf("no junctions configured")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Driver{agg: agg, space: space, cfg: cfg, junctions: junctions, runID: runID, sink: sink, log: log}, nil
}

// Run executes the full iteration budget and returns the best candidate seen.
// The first InitialSamples candidates are drawn uniformly from the space; the
// remainder maximize expected improvement under a Gaussian-process surrogate
// refitted on all scores so far. Degenerate simulations score as penalties
// and the loop continues; a simulator invocation failure or ctx cancellation
// aborts the run.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	res := Result{
		RunID:       d.runID,
		Aggregation: d.agg.Rule(),
		StartedAt:   time.Now(),
	}
	rng := rand.New(rand.NewSource(d.cfg.Seed))
	obs := make([]observation, 0, d.cfg.Iterations)
	best := false

	d.log.Infof("starting search: %d iterations (%d random), cycle [%d,%d]s, ratio [%.2f,%.2f], rule %s",
		d.cfg.Iterations, d.cfg.InitialSamples,
		d.space.CycleMinSec, d.space.CycleMaxSec, d.space.RatioMin, d.space.RatioMax, d.agg.Rule())

	for iter := 1; iter <= d.cfg.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		var point []float64
		if iter <= d.cfg.InitialSamples {
			point = d.samplePoint(rng)
		} else {
			point = d.proposePoint(rng, obs)
		}
		raw := d.denormalize(point)
		params := model.RoundedFrom(raw[0], raw[1])
		name := fmt.Sprintf("cand-%03d", iter)

		var score float64
		plan, err := params.Plan(name, d.junctions)
		if err != nil {
			// Rounding can nudge a boundary candidate outside materializable
			// range; score it as hopeless so the surrogate steers away.
			d.log.Warnf("%s not materializable: %v", name, err)
			score = d.agg.Penalty()
		} else {
			var evals []model.Evaluation
			score, evals, err = d.agg.Score(ctx, name, &plan)
			if err != nil {
				return Result{}, err
			}
			res.Evaluated++
			if !best || score < res.Score {
				best = true
				res.Params = params
				res.Score = score
				res.Breakdown = evals
			}
		}
		obs = append(obs, observation{x: point, score: score})

		d.log.Infof("iteration %d/%d cycle=%ds ratio=%.3f score=%.2f best=%.2f",
			iter, d.cfg.Iterations, params.CycleSec, params.NSRatio, score, res.Score)
		if rec, ok := d.sink.(metrics.SearchRecorder); ok {
			if err := rec.RecordSearchIteration(metrics.SearchEvent{
				RunID:     d.runID,
				Iteration: iter,
				CycleSec:  params.CycleSec,
				NSRatio:   params.NSRatio,
				Score:     score,
				BestScore: res.Score,
				Time:      time.Now(),
			}); err != nil {
				d.log.Warnf("record search iteration: %v", err)
			}
		}
	}

	res.FinishedAt = time.Now()
	if !best {
		return Result{}, fmt.Errorf("search finished without a scored candidate")
	}
	d.log.Infof("search finished: cycle=%ds ratio=%.3f score=%.2f after %d evaluations",
		res.Params.CycleSec, res.Params.NSRatio, res.Score, res.Evaluated)
	return res, nil
}

// samplePoint draws a uniform point in the normalized unit square.
func (d *Driver) samplePoint(rng *rand.Rand) []float64 {
	return []float64{rng.Float64(), rng.Float64()}
}

// proposePoint ranks a pool of random candidates by expected improvement
// under a surrogate fitted on all observations. When the surrogate cannot be
// fitted the proposal falls back to uniform sampling.
func (d *Driver) proposePoint(rng *rand.Rand, obs []observation) []float64 {
	points := make([][]float64, len(obs))
	scores := make([]float64, len(obs))
	for i, o := range obs {
		points[i] = o.x
		scores[i] = o.score
	}
	gp, err := fitSurrogate(points, scores)
	if err != nil {
		d.log.Warnf("surrogate fit failed, sampling uniformly: %v", err)
		return d.samplePoint(rng)
	}
	bestPoint := d.samplePoint(rng)
	bestEI := gp.expectedImprovement(bestPoint)
	for i := 1; i < d.cfg.Candidates; i++ {
		p := d.samplePoint(rng)
		if ei := gp.expectedImprovement(p); ei > bestEI {
			bestPoint, bestEI = p, ei
		}
	}
	return bestPoint
}

// denormalize maps a unit-square point back to (cycle seconds, NS ratio).
func (d *Driver) denormalize(p []float64) [2]float64 {
	cycle := float64(d.space.CycleMinSec) + p[0]*float64(d.space.CycleMaxSec-d.space.CycleMinSec)
	ratio := d.space.RatioMin + p[1]*(d.space.RatioMax-d.space.RatioMin)
	return [2]float64{cycle, ratio}
}
