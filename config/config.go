// Package config loads and validates the pipeline configuration from a yaml
// or json file with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/greenwave/core/compare"
	"github.com/kilianp07/greenwave/core/metrics"
	"github.com/kilianp07/greenwave/core/model"
	"github.com/kilianp07/greenwave/core/objective"
	"github.com/kilianp07/greenwave/core/search"
	"github.com/kilianp07/greenwave/infra/sumo"
)

// SearchConfig groups everything the optimize command needs.
type SearchConfig struct {
	Space  search.Space  `json:"space"`
	Budget search.Config `json:"budget"`
	// Aggregation combines per-scenario costs: "worst" or "mean".
	Aggregation string `json:"aggregation"`
	// Penalty is the cost substituted for degenerate runs; zero selects the
	// built-in default.
	Penalty float64 `json:"penalty"`
	// GridSize is the side length of the junction grid the plan governs.
	GridSize int `json:"grid_size"`
	// PlanOut and ResultOut receive the winning overlay and its descriptor.
	PlanOut   string `json:"plan_out"`
	ResultOut string `json:"result_out"`
}

// SetDefaults applies the values the pipeline was tuned on.
func (c *SearchConfig) SetDefaults() {
	c.Space.SetDefaults()
	c.Budget.SetDefaults()
	if c.Aggregation == "" {
		c.Aggregation = string(objective.AggregationWorst)
	}
	if c.GridSize == 0 {
		c.GridSize = 3
	}
	if c.PlanOut == "" {
		c.PlanOut = "plan_resilient.add.xml"
	}
	if c.ResultOut == "" {
		c.ResultOut = "plan_resilient.json"
	}
}

// Validate checks bounds, budget and aggregation rule.
func (c SearchConfig) Validate() error {
	if err := c.Space.Validate(); err != nil {
		return err
	}
	if err := c.Budget.Validate(); err != nil {
		return err
	}
	if !objective.Aggregation(c.Aggregation).Valid() {
		return fmt.Errorf("unknown aggregation rule %q", c.Aggregation)
	}
	if c.Penalty < 0 {
		return fmt.Errorf("penalty must not be negative")
	}
	if c.GridSize < 1 {
		return fmt.Errorf("grid size %d < 1", c.GridSize)
	}
	return nil
}

// CompareConfig groups the evaluate command's fixed matrix and outputs.
type CompareConfig struct {
	Plans    []compare.PlanRef `json:"plans"`
	CSVOut   string            `json:"csv_out"`
	PivotOut string            `json:"pivot_out"`
	JSONOut  string            `json:"json_out"`
}

// SetDefaults applies the original output names.
func (c *CompareConfig) SetDefaults() {
	if c.CSVOut == "" {
		c.CSVOut = "final_comparison_results.csv"
	}
	if c.PivotOut == "" {
		c.PivotOut = "final_comparison_pivot.csv"
	}
}

// Config is the root configuration document.
type Config struct {
	Sumo      sumo.Config      `json:"sumo"`
	Scenarios []model.Scenario `json:"scenarios"`
	Search    SearchConfig     `json:"search"`
	Compare   CompareConfig    `json:"compare"`
	Metrics   metrics.Config   `json:"metrics"`
}

// Load reads the configuration file, applies GW_-prefixed environment
// overrides, fills defaults and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("GW_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "gw_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Sumo.SetDefaults()
	cfg.Search.SetDefaults()
	cfg.Compare.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Sumo.Validate(); err != nil {
		return err
	}
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("no scenarios configured")
	}
	seen := make(map[string]struct{}, len(c.Scenarios))
	for _, s := range c.Scenarios {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate scenario name %s", s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return c.Search.Validate()
}
