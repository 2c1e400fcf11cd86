package metrics

import (
	"math"

	"github.com/chantakan/2d-drone-sim/internal/sim"
)

// EnergyDrift tracks how far the snapshot energy strays from the first
// value it saw, relative to that baseline. Under pure Euler integration
// with no actuation this is a direct read on step-size error.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) OnTick(snap sim.Snapshot) {
	if e.samples == 0 {
		e.initialEnergy = snap.Energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(snap.Energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
