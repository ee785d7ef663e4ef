package model

import (
	"fmt"
	"math"
)

// YellowSec is the fixed duration of the yellow clearance phases inserted
// between the two green phases of a grid plan.
const YellowSec = 3

// Signal state strings for a standard four-leg grid junction. The simulator
// interprets one character per controlled link.
const (
	StateNSGreen  = "GGggrrrrGGggrrrr"
	StateNSYellow = "yyyyrrrryyyyrrrr"
	StateEWGreen  = "rrrrGGggrrrrGGgg"
	StateEWYellow = "rrrryyyyrrrryyyy"
)

// Phase is one step of a signal program: how long the controller holds a
// given link state.
type Phase struct {
	DurationSec int
	State       string
}

// TimingPlan assigns an ordered sequence of phases to a set of junctions.
// Plans are immutable once built; the search produces a new plan per
// candidate rather than mutating one in place.
type TimingPlan struct {
	Name      string
	ProgramID string
	Junctions []string
	Phases    []Phase
}

// GridJunctions returns the junction IDs of an n-by-n grid network,
// J_0_0 through J_{n-1}_{n-1}.
func GridJunctions(n int) []string {
	ids := make([]string, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ids = append(ids, fmt.Sprintf("J_%d_%d", i, j))
		}
	}
	return ids
}

// NewGridPlan derives a four-phase plan from a cycle length and a north-south
// green ratio. The green budget is the cycle minus both yellow phases; the
// north-south phase receives floor(budget*ratio) seconds and the east-west
// phase the remainder.
func NewGridPlan(name string, cycleSec int, nsRatio float64, junctions []string) (TimingPlan, error) {
	if cycleSec <= 2*YellowSec {
		return TimingPlan{}, fmt.Errorf("cycle %ds leaves no green time", cycleSec)
	}
	if nsRatio <= 0 || nsRatio >= 1 {
		return TimingPlan{}, fmt.Errorf("ns ratio %.3f outside (0,1)", nsRatio)
	}
	if len(junctions) == 0 {
		return TimingPlan{}, fmt.Errorf("plan governs no junctions")
	}
	budget := cycleSec - 2*YellowSec
	nsGreen := int(float64(budget) * nsRatio)
	if nsGreen < 1 {
		nsGreen = 1
	}
	ewGreen := budget - nsGreen
	if ewGreen < 1 {
		return TimingPlan{}, fmt.Errorf("cycle %ds with ratio %.3f leaves no east-west green", cycleSec, nsRatio)
	}
	p := TimingPlan{
		Name:      name,
		ProgramID: "bo_plan",
		Junctions: junctions,
		Phases: []Phase{
			{DurationSec: nsGreen, State: StateNSGreen},
			{DurationSec: YellowSec, State: StateNSYellow},
			{DurationSec: ewGreen, State: StateEWGreen},
			{DurationSec: YellowSec, State: StateEWYellow},
		},
	}
	return p, nil
}

// CycleSec returns the total cycle length of the plan.
func (p TimingPlan) CycleSec() int {
	total := 0
	for _, ph := range p.Phases {
		total += ph.DurationSec
	}
	return total
}

// Validate checks that the plan is structurally sound: at least one phase,
// every phase duration positive and every state non-empty.
func (p TimingPlan) Validate() error {
	if len(p.Phases) == 0 {
		return fmt.Errorf("plan %s has no phases", p.Name)
	}
	if len(p.Junctions) == 0 {
		return fmt.Errorf("plan %s governs no junctions", p.Name)
	}
	for i, ph := range p.Phases {
		if ph.DurationSec <= 0 {
			return fmt.Errorf("plan %s phase %d has non-positive duration %d", p.Name, i, ph.DurationSec)
		}
		if ph.State == "" {
			return fmt.Errorf("plan %s phase %d has empty state", p.Name, i)
		}
	}
	return nil
}

// Params describes a point of the search space: the two free parameters the
// optimizer explores.
type Params struct {
	CycleSec int     `json:"cycle_sec"`
	NSRatio  float64 `json:"ns_ratio"`
}

// Plan materializes the parameters into a grid timing plan.
func (p Params) Plan(name string, junctions []string) (TimingPlan, error) {
	return NewGridPlan(name, p.CycleSec, p.NSRatio, junctions)
}

// RoundedFrom converts a raw optimizer vector into parameters, rounding the
// cycle length to the nearest whole second.
func RoundedFrom(cycle, ratio float64) Params {
	return Params{CycleSec: int(math.Round(cycle)), NSRatio: ratio}
}
