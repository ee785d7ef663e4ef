package model

import "testing"

func TestNewGridPlanSplit(t *testing.T) {
	plan, err := NewGridPlan("p", 60, 0.5, GridJunctions(3))
	if err != nil {
		t.Fatalf("new plan: %v", err)
	}
	if got := len(plan.Phases); got != 4 {
		t.Fatalf("expected 4 phases, got %d", got)
	}
	// 60s cycle minus two 3s yellows leaves 54s of green split evenly.
	if plan.Phases[0].DurationSec != 27 || plan.Phases[2].DurationSec != 27 {
		t.Fatalf("unexpected green split: %d / %d", plan.Phases[0].DurationSec, plan.Phases[2].DurationSec)
	}
	if plan.CycleSec() != 60 {
		t.Fatalf("cycle %d, want 60", plan.CycleSec())
	}
	if err := plan.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestNewGridPlanAsymmetric(t *testing.T) {
	plan, err := NewGridPlan("p", 100, 0.7, GridJunctions(3))
	if err != nil {
		t.Fatalf("new plan: %v", err)
	}
	// budget 94, ns = floor(94*0.7) = 65, ew = 29
	if plan.Phases[0].DurationSec != 65 || plan.Phases[2].DurationSec != 29 {
		t.Fatalf("unexpected split: %d / %d", plan.Phases[0].DurationSec, plan.Phases[2].DurationSec)
	}
}

func TestNewGridPlanBounds(t *testing.T) {
	js := GridJunctions(3)
	// Minimum search-space corner must still yield a valid plan.
	if _, err := NewGridPlan("lo", 20, 0.3, js); err != nil {
		t.Fatalf("minimum bound plan: %v", err)
	}
	// Maximum corner likewise.
	if _, err := NewGridPlan("hi", 120, 0.7, js); err != nil {
		t.Fatalf("maximum bound plan: %v", err)
	}
	if _, err := NewGridPlan("bad", 6, 0.5, js); err == nil {
		t.Fatal("expected error for cycle with no green time")
	}
	if _, err := NewGridPlan("bad", 60, 1.2, js); err == nil {
		t.Fatal("expected error for ratio outside (0,1)")
	}
	if _, err := NewGridPlan("bad", 60, 0.5, nil); err == nil {
		t.Fatal("expected error for empty junction set")
	}
}

func TestGridJunctions(t *testing.T) {
	ids := GridJunctions(3)
	if len(ids) != 9 {
		t.Fatalf("expected 9 junctions, got %d", len(ids))
	}
	if ids[0] != "J_0_0" || ids[8] != "J_2_2" {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestPlanValidate(t *testing.T) {
	p := TimingPlan{
		Name:      "manual",
		Junctions: []string{"J_1_1"},
		Phases:    []Phase{{30, StateNSGreen}, {5, StateNSYellow}, {25, StateEWGreen}},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	p.Phases[1].DurationSec = 0
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for zero-length phase")
	}
}

func TestRoundedFrom(t *testing.T) {
	p := RoundedFrom(88.6, 0.42)
	if p.CycleSec != 89 {
		t.Fatalf("cycle %d, want 89", p.CycleSec)
	}
	if p.NSRatio != 0.42 {
		t.Fatalf("ratio %v, want 0.42", p.NSRatio)
	}
}

func TestScenarioHorizon(t *testing.T) {
	s := Scenario{Name: "normal", Config: "grid_normal.sumocfg"}
	if err := s.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if s.Horizon() != DefaultEndSec {
		t.Fatalf("horizon %d, want default %d", s.Horizon(), DefaultEndSec)
	}
	s.EndSec = 1800
	if s.Horizon() != 1800 {
		t.Fatalf("horizon %d, want 1800", s.Horizon())
	}
	if err := (Scenario{Name: "x"}).Validate(); err == nil {
		t.Fatal("expected error for missing config")
	}
}
