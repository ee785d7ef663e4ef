package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `sumo:
  seed: 7
  no_warnings: true
  metric: "waitingTime"
scenarios:
  - name: "normal"
    config: "grid_normal.sumocfg"
    end_sec: 3600
  - name: "highstress"
    config: "grid_highstress.sumocfg"
  - name: "disrupted"
    config: "grid_disrupted.sumocfg"
search:
  space:
    cycle_min_sec: 20
    cycle_max_sec: 120
    ratio_min: 0.3
    ratio_max: 0.7
  budget:
    iterations: 30
    initial_samples: 10
  aggregation: "worst"
compare:
  plans:
    - name: "default"
    - name: "resilient"
      file: "plan_resilient.add.xml"
metrics:
  sinks:
    - type: "nop"
`

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"sumo.seed", cfg.Sumo.Seed, 7},
		{"sumo.no_warnings", cfg.Sumo.NoWarnings, true},
		{"scenario count", len(cfg.Scenarios), 3},
		{"scenario name", cfg.Scenarios[0].Name, "normal"},
		{"scenario horizon default", cfg.Scenarios[1].Horizon(), 3600},
		{"cycle max", cfg.Search.Space.CycleMaxSec, 120},
		{"iterations", cfg.Search.Budget.Iterations, 30},
		{"aggregation", cfg.Search.Aggregation, "worst"},
		{"grid size default", cfg.Search.GridSize, 3},
		{"plan out default", cfg.Search.PlanOut, "plan_resilient.add.xml"},
		{"csv out default", cfg.Compare.CSVOut, "final_comparison_results.csv"},
		{"compare plans", len(cfg.Compare.Plans), 2},
		{"metrics sinks", len(cfg.Metrics.Sinks), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GW_SUMO__SEED", "99")
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Sumo.Seed != 99 {
		t.Fatalf("seed %d, want env override 99", cfg.Sumo.Seed)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"no scenarios", "scenarios: []\n"},
		{"duplicate scenario", `scenarios:
  - name: "normal"
    config: "a.sumocfg"
  - name: "normal"
    config: "b.sumocfg"
`},
		{"bad aggregation", `scenarios:
  - name: "normal"
    config: "a.sumocfg"
search:
  aggregation: "median"
`},
		{"bad bounds", `scenarios:
  - name: "normal"
    config: "a.sumocfg"
search:
  space:
    cycle_min_sec: 120
    cycle_max_sec: 20
`},
	}
	for _, c := range cases {
		if _, err := Load(writeConfig(t, c.data)); err == nil {
			t.Errorf("%s: expected validation error", c.name)
		}
	}
}
