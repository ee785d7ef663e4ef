package metrics

import "github.com/kilianp07/greenwave/core/factory"

// Config defines settings for evaluation-event sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPort serves the scrape endpoint during long searches when a
	// prometheus sink is configured.
	PrometheusPort int `json:"prometheus_port"`
}
