package model

import (
	"fmt"
	"time"
)

// DefaultEndSec bounds a simulation to one hour of simulated time when the
// scenario does not declare its own horizon.
const DefaultEndSec = 3600

// Scenario identifies one fixed simulation setup: a network plus demand
// profile plus optional disruption, fully described by the simulator
// configuration file it points at.
type Scenario struct {
	Name   string `json:"name"`
	Config string `json:"config"`
	// EndSec bounds the run in simulated seconds. The simulation may finish
	// earlier if all vehicles have left the network.
	EndSec int `json:"end_sec"`
}

// Validate checks the scenario declaration.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name empty")
	}
	if s.Config == "" {
		return fmt.Errorf("scenario %s has no simulator config", s.Name)
	}
	if s.EndSec < 0 {
		return fmt.Errorf("scenario %s has negative end time", s.Name)
	}
	return nil
}

// Horizon returns the simulated end time, applying the default when unset.
func (s Scenario) Horizon() int {
	if s.EndSec == 0 {
		return DefaultEndSec
	}
	return s.EndSec
}

// Evaluation is the outcome of simulating one (plan, scenario) pair.
type Evaluation struct {
	RunID     string        `json:"run_id"`
	Plan      string        `json:"plan"`
	Scenario  string        `json:"scenario"`
	Cost      float64       `json:"cost"`
	Trips     int           `json:"trips"`
	Penalized bool          `json:"penalized"`
	Elapsed   time.Duration `json:"elapsed"`
	Time      time.Time     `json:"time"`
}
