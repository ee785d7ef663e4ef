package search

import (
	"fmt"

	"github.com/kilianp07/greenwave/core/model"
)

// Space declares the bounds of the two free timing-plan parameters. The
// optimizer only generates candidates inside these bounds; nothing downstream
// re-checks them after evaluation.
type Space struct {
	CycleMinSec int     `json:"cycle_min_sec"`
	CycleMaxSec int     `json:"cycle_max_sec"`
	RatioMin    float64 `json:"ratio_min"`
	RatioMax    float64 `json:"ratio_max"`
}

// SetDefaults applies the bounds the pipeline was tuned on.
func (s *Space) SetDefaults() {
	if s.CycleMinSec == 0 {
		s.CycleMinSec = 20
	}
	if s.CycleMaxSec == 0 {
		s.CycleMaxSec = 120
	}
	if s.RatioMin == 0 {
		s.RatioMin = 0.3
	}
	if s.RatioMax == 0 {
		s.RatioMax = 0.7
	}
}

// Validate checks the bounds are ordered and materializable: even the
// smallest cycle must leave green time after the yellow phases.
func (s Space) Validate() error {
	if s.CycleMinSec <= 2*model.YellowSec {
		return fmt.Errorf("cycle lower bound %ds leaves no green time", s.CycleMinSec)
	}
	if s.CycleMinSec >= s.CycleMaxSec {
		return fmt.Errorf("cycle bounds [%d,%d] not ordered", s.CycleMinSec, s.CycleMaxSec)
	}
	if s.RatioMin <= 0 || s.RatioMax >= 1 || s.RatioMin >= s.RatioMax {
		return fmt.Errorf("ratio bounds [%v,%v] outside (0,1) or not ordered", s.RatioMin, s.RatioMax)
	}
	return nil
}

// Contains reports whether the parameters lie within the declared bounds.
func (s Space) Contains(p model.Params) bool {
	return p.CycleSec >= s.CycleMinSec && p.CycleSec <= s.CycleMaxSec &&
		p.NSRatio >= s.RatioMin && p.NSRatio <= s.RatioMax
}
