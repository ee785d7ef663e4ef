package metrics

import (
	"errors"
	"testing"
	"time"
)

type captureSink struct {
	events []EvaluationEvent
	iters  []SearchEvent
	err    error
}

func (c *captureSink) RecordEvaluation(events []EvaluationEvent) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, events...)
	return nil
}

func (c *captureSink) RecordSearchIteration(ev SearchEvent) error {
	c.iters = append(c.iters, ev)
	return nil
}

func TestMultiSinkFanout(t *testing.T) {
	a, b := &captureSink{}, &captureSink{}
	m := NewMultiSink(a, b)
	ev := EvaluationEvent{RunID: "r", Plan: "p", Scenario: "s", Cost: 12.5, Trips: 3, Time: time.Now()}
	if err := m.RecordEvaluation([]EvaluationEvent{ev}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("fanout incomplete: %d/%d", len(a.events), len(b.events))
	}
	if err := m.RecordSearchIteration(SearchEvent{Iteration: 1, Score: 12.5, BestScore: 12.5}); err != nil {
		t.Fatalf("record iteration: %v", err)
	}
	if len(a.iters) != 1 || len(b.iters) != 1 {
		t.Fatalf("iteration fanout incomplete: %d/%d", len(a.iters), len(b.iters))
	}
}

func TestMultiSinkFirstError(t *testing.T) {
	boom := errors.New("boom")
	a := &captureSink{err: boom}
	b := &captureSink{}
	m := NewMultiSink(a, b)
	if err := m.RecordEvaluation([]EvaluationEvent{{Plan: "p"}}); !errors.Is(err, boom) {
		t.Fatalf("expected first error, got %v", err)
	}
	if len(b.events) != 0 {
		t.Fatal("later sink recorded after error")
	}
}
