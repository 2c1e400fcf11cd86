package metrics

import (
	"github.com/chantakan/2d-drone-sim/internal/sim"
)

// Stability reports the fraction of ticks spent inside a tolerance
// band: pole angle within the threshold for the cart, distance to the
// target within it for the drone.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{name: "stability", threshold: threshold}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) OnTick(snap sim.Snapshot) {
	s.samples++
	if Deviation(snap) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
