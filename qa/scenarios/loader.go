// Package scenarios runs YAML-described acceptance cases against the
// objective pipeline with a stubbed simulator, checking that declared
// aggregation rules produce the expected resilience scores.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TrafficDef is the stubbed outcome of one simulation scenario: the per-trip
// metric values the fake simulator reports. An empty list stands for a
// gridlocked run with no completed trips.
type TrafficDef struct {
	Scenario string    `yaml:"scenario"`
	Trips    []float64 `yaml:"trips"`
}

// Expected declares the acceptance criteria of a case.
type Expected struct {
	Score     float64 `yaml:"score"`
	Penalized int     `yaml:"penalized,omitempty"`
}

// Case is one acceptance case.
type Case struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Aggregation string       `yaml:"aggregation"`
	Penalty     float64      `yaml:"penalty,omitempty"`
	Traffic     []TrafficDef `yaml:"traffic"`
	Expected    Expected     `yaml:"expected"`
}

// Load reads one case from a YAML file.
func Load(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Name == "" {
		return nil, fmt.Errorf("%s: case has no name", path)
	}
	if len(c.Traffic) == 0 {
		return nil, fmt.Errorf("%s: case has no traffic definitions", path)
	}
	return &c, nil
}
