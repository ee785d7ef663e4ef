// Package metrics defines the evaluation-event sink interface used to record
// simulation outcomes and optimizer progress. Concrete sinks live in
// infra/metrics and register themselves through the factory helpers; NewSink
// returns a MultiSink automatically when more than one sink is configured.
package metrics
