// Package export writes finished runs out as CSV, JSON, SVG and PNG
// artifacts. Nothing here is consulted again by the engine; these are
// one-way dumps for analysis elsewhere.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"strconv"

	"github.com/chantakan/2d-drone-sim/internal/metrics"
	"github.com/chantakan/2d-drone-sim/internal/sim"
)

var ErrEmptyRun = errors.New("export: run has no snapshots")

// RunData is the JSON shape of a finished run.
type RunData struct {
	Model     string            `json:"model"`
	Dt        float64           `json:"dt"`
	Ticks     int               `json:"ticks"`
	Halted    bool              `json:"halted"`
	Summaries []metrics.Summary `json:"summaries"`
	Snapshots []sim.Snapshot    `json:"snapshots"`
}

// WriteJSON dumps the whole run, per-channel summaries included.
func WriteJSON(path string, result *sim.Result, dt float64) error {
	if len(result.Snapshots) == 0 {
		return ErrEmptyRun
	}
	final := result.Final()
	data := RunData{
		Model:     final.Model,
		Dt:        dt,
		Ticks:     final.Tick,
		Halted:    result.Halted(),
		Summaries: metrics.RunSummaries(result),
		Snapshots: result.Snapshots,
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV dumps one row per snapshot with named columns for the run's
// model.
func WriteCSV(path string, result *sim.Result) error {
	if len(result.Snapshots) == 0 {
		return ErrEmptyRun
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader(result.Snapshots[0].Model)); err != nil {
		return err
	}
	for _, snap := range result.Snapshots {
		if err := w.Write(csvRow(snap)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func csvHeader(model string) []string {
	if model == sim.ModelDrone {
		return []string{"tick", "time", "x", "y", "vx", "vy", "rotation", "angular_velocity", "left_thrust", "right_thrust", "wind", "energy"}
	}
	return []string{"tick", "time", "position", "velocity", "angle", "angular_velocity", "force", "score", "energy"}
}

func csvRow(snap sim.Snapshot) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	if snap.Model == sim.ModelDrone {
		return []string{
			strconv.Itoa(snap.Tick), f(snap.Time),
			f(snap.Drone.X), f(snap.Drone.Y), f(snap.Drone.VX), f(snap.Drone.VY),
			f(snap.Drone.Rotation), f(snap.Drone.AngularVelocity),
			f(snap.Left), f(snap.Right), f(snap.Wind), f(snap.Energy),
		}
	}
	return []string{
		strconv.Itoa(snap.Tick), f(snap.Time),
		f(snap.Cart.Position), f(snap.Cart.Velocity), f(snap.Cart.Angle), f(snap.Cart.AngularVelocity),
		f(snap.Force), strconv.Itoa(snap.Cart.Score), f(snap.Energy),
	}
}
