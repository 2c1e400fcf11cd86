// Package metrics aggregates per-tick observations into run-level
// numbers: actuation effort, energy drift, and time-in-band stability,
// plus batch summaries over recorded runs.
package metrics

import (
	"math"

	"github.com/chantakan/2d-drone-sim/internal/sim"
)

// Metric is an observer that folds the ticks it sees into one value.
type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}

// Stability bands: radians of pole tilt for the cart, world units of
// target distance for the drone.
const (
	CartStabilityBand  = 0.2
	DroneStabilityBand = 30.0
)

// StandardSet returns the metrics reported for every headless run.
func StandardSet(model string) []Metric {
	band := CartStabilityBand
	if model == sim.ModelDrone {
		band = DroneStabilityBand
	}
	return []Metric{
		NewControlEffort(),
		NewStability(band),
		NewEnergyDrift(),
	}
}

// Deviation is the scalar error each model is judged by: pole angle
// off vertical for the cart, distance to the target for the drone.
func Deviation(snap sim.Snapshot) float64 {
	if snap.Model == sim.ModelDrone {
		return math.Hypot(snap.Drone.X-snap.TargetX, snap.Drone.Y-snap.TargetY)
	}
	return math.Abs(snap.Cart.Angle)
}
