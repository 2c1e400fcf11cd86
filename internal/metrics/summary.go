package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chantakan/2d-drone-sim/internal/sim"
)

// Summary condenses one recorded channel of a run.
type Summary struct {
	Label string  `json:"label"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

func Summarize(label string, xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{Label: label}
	}
	return Summary{
		Label: label,
		Mean:  stat.Mean(xs, nil),
		Std:   stat.StdDev(xs, nil),
		Min:   floats.Min(xs),
		Max:   floats.Max(xs),
	}
}

// RunSummaries extracts the interesting channels of a finished run, one
// summary each.
func RunSummaries(res *sim.Result) []Summary {
	if len(res.Snapshots) == 0 {
		return nil
	}
	if res.Snapshots[0].Model == sim.ModelDrone {
		return []Summary{
			Summarize("x", series(res, func(s sim.Snapshot) float64 { return s.Drone.X })),
			Summarize("y", series(res, func(s sim.Snapshot) float64 { return s.Drone.Y })),
			Summarize("rotation", series(res, func(s sim.Snapshot) float64 { return s.Drone.Rotation })),
			Summarize("left_thrust", series(res, func(s sim.Snapshot) float64 { return s.Left })),
			Summarize("right_thrust", series(res, func(s sim.Snapshot) float64 { return s.Right })),
			Summarize("wind", series(res, func(s sim.Snapshot) float64 { return s.Wind })),
			Summarize("energy", series(res, func(s sim.Snapshot) float64 { return s.Energy })),
		}
	}
	return []Summary{
		Summarize("position", series(res, func(s sim.Snapshot) float64 { return s.Cart.Position })),
		Summarize("angle", series(res, func(s sim.Snapshot) float64 { return s.Cart.Angle })),
		Summarize("force", series(res, func(s sim.Snapshot) float64 { return s.Force })),
		Summarize("energy", series(res, func(s sim.Snapshot) float64 { return s.Energy })),
	}
}

func series(res *sim.Result, f func(sim.Snapshot) float64) []float64 {
	xs := make([]float64, len(res.Snapshots))
	for i, snap := range res.Snapshots {
		xs[i] = f(snap)
	}
	return xs
}
