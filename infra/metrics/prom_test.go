package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/greenwave/core/metrics"
)

func TestPromSink_RecordEvaluation(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	ev := coremetrics.EvaluationEvent{
		RunID:    "run1",
		Plan:     "candidate",
		Scenario: "normal",
		Cost:     18.5,
		Trips:    120,
		Time:     time.Now(),
	}
	if err := sink.RecordEvaluation([]coremetrics.EvaluationEvent{ev}); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP greenwave_evaluations_total Total number of simulator evaluations
# TYPE greenwave_evaluations_total counter
greenwave_evaluations_total{penalized="false",plan="candidate",scenario="normal"} 1
`
	if err := testutil.CollectAndCompare(sink.evaluations, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.cost); c == 0 {
		t.Errorf("cost not observed")
	}
}

func TestPromSink_RecordSearchIteration(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	if err := sink.RecordSearchIteration(coremetrics.SearchEvent{Iteration: 7, BestScore: 42.5}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if got := testutil.ToFloat64(sink.iteration); got != 7 {
		t.Errorf("iteration gauge %v, want 7", got)
	}
	if got := testutil.ToFloat64(sink.best); got != 42.5 {
		t.Errorf("best gauge %v, want 42.5", got)
	}
}
