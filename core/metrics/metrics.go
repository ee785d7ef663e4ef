package metrics

import "time"

// EvaluationEvent is one simulated (plan, scenario) outcome to be recorded.
type EvaluationEvent struct {
	RunID     string
	Plan      string
	Scenario  string
	Cost      float64
	Trips     int
	Penalized bool
	Elapsed   time.Duration
	Time      time.Time
}

// Sink records evaluation outcomes for observability purposes. Sink failures
// are reported but never abort a search.
type Sink interface {
	RecordEvaluation(events []EvaluationEvent) error
}

// SearchEvent summarizes one optimizer iteration.
type SearchEvent struct {
	RunID     string
	Iteration int
	CycleSec  int
	NSRatio   float64
	Score     float64
	BestScore float64
	Time      time.Time
}

// SearchRecorder is implemented by sinks that also track optimizer progress.
type SearchRecorder interface {
	RecordSearchIteration(ev SearchEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordEvaluation([]EvaluationEvent) error { return nil }

func (NopSink) RecordSearchIteration(SearchEvent) error { return nil }

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordEvaluation forwards the events to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordEvaluation(events []EvaluationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordEvaluation(events); err != nil {
			return err
		}
	}
	return nil
}

// RecordSearchIteration forwards progress events to the sinks that track them.
func (m *MultiSink) RecordSearchIteration(ev SearchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SearchRecorder); ok {
			if err := rec.RecordSearchIteration(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
