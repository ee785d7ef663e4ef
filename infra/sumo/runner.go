// Package sumo runs the SUMO microscopic traffic simulator as a subordinate
// process and translates between the pipeline's domain types and SUMO's file
// formats (signal-program overlays in, tripinfo summaries out).
package sumo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/kilianp07/greenwave/core/logger"
	"github.com/kilianp07/greenwave/core/sim"
)

// Config controls how the simulator binary is located and invoked.
type Config struct {
	// Binary is an explicit path to the sumo executable. When empty the
	// runner falls back to $SUMO_HOME/bin/sumo and then to $PATH.
	Binary string `json:"binary"`
	// Seed fixes the simulator's random streams so repeated runs of the same
	// spec produce identical results.
	Seed       int    `json:"seed"`
	NoWarnings bool   `json:"no_warnings"`
	Metric     string `json:"metric"`
}

// SetDefaults fills unset fields with the values the pipeline was tuned on.
func (c *Config) SetDefaults() {
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.Metric == "" {
		c.Metric = string(sim.MetricWaitingTime)
	}
}

// Validate checks the metric selection.
func (c Config) Validate() error {
	if !sim.Metric(c.Metric).Valid() {
		return fmt.Errorf("unknown summary metric %q", c.Metric)
	}
	return nil
}

// ResolveBinary locates the simulator executable. A configured path wins,
// then $SUMO_HOME/bin/sumo, then a $PATH lookup.
func ResolveBinary(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("sumo binary %s: %w", configured, err)
		}
		return configured, nil
	}
	if home := os.Getenv("SUMO_HOME"); home != "" {
		p := filepath.Join(home, "bin", "sumo")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	p, err := exec.LookPath("sumo")
	if err != nil {
		return "", fmt.Errorf("sumo binary not found: set sumo.binary or SUMO_HOME (%w)", err)
	}
	return p, nil
}

// Runner implements sim.Runner on top of a local SUMO installation.
type Runner struct {
	binary string
	cfg    Config
	log    logger.Logger
}

// NewRunner resolves the binary once and returns a ready runner.
func NewRunner(cfg Config, log logger.Logger) (*Runner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bin, err := ResolveBinary(cfg.Binary)
	if err != nil {
		return nil, err
	}
	return &Runner{binary: bin, cfg: cfg, log: log}, nil
}

// Metric returns the summary metric the runner extracts.
func (r *Runner) Metric() sim.Metric { return sim.Metric(r.cfg.Metric) }

// Run materializes the overlay if needed, executes one bounded simulation and
// parses its tripinfo output. Process failure is returned as a plain error;
// summary problems carry sim.ErrSummary or sim.ErrNoTrips so callers can
// penalize instead of aborting.
func (r *Runner) Run(ctx context.Context, spec sim.RunSpec) (sim.TripStats, error) {
	if err := spec.Scenario.Validate(); err != nil {
		return sim.TripStats{}, err
	}
	if spec.WorkDir == "" {
		return sim.TripStats{}, fmt.Errorf("run spec has no working directory")
	}

	overlay := spec.PlanFile
	if spec.Plan != nil {
		if overlay != "" {
			return sim.TripStats{}, fmt.Errorf("run spec sets both plan and plan file")
		}
		overlay = filepath.Join(spec.WorkDir, "plan.add.xml")
		if err := WriteOverlay(*spec.Plan, overlay); err != nil {
			return sim.TripStats{}, err
		}
	}

	tripinfoPath := filepath.Join(spec.WorkDir, "tripinfo.xml")
	args := []string{
		"-c", spec.Scenario.Config,
		"--tripinfo-output", tripinfoPath,
		"--end", strconv.Itoa(spec.Scenario.Horizon()),
		"--seed", strconv.Itoa(r.cfg.Seed),
	}
	if overlay != "" {
		args = append(args, "-a", overlay)
	}
	if r.cfg.NoWarnings {
		args = append(args, "--no-warnings", "true")
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = spec.WorkDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	r.log.Debugw("sumo run", map[string]any{
		"scenario": spec.Scenario.Name,
		"config":   spec.Scenario.Config,
		"overlay":  overlay,
		"end":      spec.Scenario.Horizon(),
	})
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return sim.TripStats{}, ctx.Err()
		}
		return sim.TripStats{}, fmt.Errorf("sumo %s: %w: %s", spec.Scenario.Name, err, stderr.String())
	}
	return ParseTripinfo(tripinfoPath, r.Metric())
}
