package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/chantakan/2d-drone-sim/internal/sim"
)

// SavePlots writes one PNG per telemetry channel of the run into outDir
// and returns the files it created. Drone runs additionally get a
// flight path plot.
func SavePlots(outDir string, result *sim.Result) ([]string, error) {
	snaps := result.Snapshots
	if len(snaps) == 0 {
		return nil, ErrEmptyRun
	}

	times := make([]float64, len(snaps))
	for i, s := range snaps {
		times[i] = s.Time
	}
	series := func(get func(sim.Snapshot) float64) []float64 {
		vals := make([]float64, len(snaps))
		for i, s := range snaps {
			vals[i] = get(s)
		}
		return vals
	}

	type channel struct {
		filename, title, ylabel string
		vals                    []float64
	}
	var channels []channel
	if snaps[0].Model == sim.ModelDrone {
		channels = []channel{
			{"x.png", "Horizontal Position", "x (world units)", series(func(s sim.Snapshot) float64 { return s.Drone.X })},
			{"y.png", "Altitude", "y (world units)", series(func(s sim.Snapshot) float64 { return s.Drone.Y })},
			{"rotation.png", "Rotation", "angle (rad)", series(func(s sim.Snapshot) float64 { return s.Drone.Rotation })},
			{"wind.png", "Wind Force", "force (N)", series(func(s sim.Snapshot) float64 { return s.Wind })},
			{"energy.png", "Mechanical Energy", "energy (J)", series(func(s sim.Snapshot) float64 { return s.Energy })},
		}
	} else {
		channels = []channel{
			{"position.png", "Cart Position", "position (m)", series(func(s sim.Snapshot) float64 { return s.Cart.Position })},
			{"angle.png", "Pole Angle", "angle (rad)", series(func(s sim.Snapshot) float64 { return s.Cart.Angle })},
			{"force.png", "Control Force", "force (N)", series(func(s sim.Snapshot) float64 { return s.Force })},
			{"energy.png", "Mechanical Energy", "energy (J)", series(func(s sim.Snapshot) float64 { return s.Energy })},
		}
	}

	var files []string
	for _, ch := range channels {
		if err := saveLinePlot(outDir, ch.filename, ch.title, "time (s)", ch.ylabel, times, ch.vals); err != nil {
			return files, err
		}
		files = append(files, filepath.Join(outDir, ch.filename))
	}

	if snaps[0].Model == sim.ModelDrone {
		if err := saveThrustPlot(outDir, times, series(func(s sim.Snapshot) float64 { return s.Left }), series(func(s sim.Snapshot) float64 { return s.Right })); err != nil {
			return files, err
		}
		files = append(files, filepath.Join(outDir, "thrust.png"))

		xs := series(func(s sim.Snapshot) float64 { return s.Drone.X })
		ys := series(func(s sim.Snapshot) float64 { return s.Drone.Y })
		if err := saveLinePlot(outDir, "flight_path.png", "Flight Path", "x (world units)", "y (world units)", xs, ys); err != nil {
			return files, err
		}
		files = append(files, filepath.Join(outDir, "flight_path.png"))
	}

	return files, nil
}

func saveLinePlot(outDir, filename, title, xlabel, ylabel string, xs, ys []float64) error {
	if len(xs) != len(ys) || len(xs) == 0 {
		return fmt.Errorf("export: plot data invalid for %s", filename)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel

	line, err := plotter.NewLine(toXYs(xs, ys))
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(2.0)
	p.Add(line)
	p.Add(plotter.NewGrid())

	return savePlotPNG(p, 8.0, 6.0, filepath.Join(outDir, filename))
}

// saveThrustPlot overlays both rotor commands in one figure.
func saveThrustPlot(outDir string, times, left, right []float64) error {
	p := plot.New()
	p.Title.Text = "Rotor Thrust"
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "thrust (N)"

	lline, err := plotter.NewLine(toXYs(times, left))
	if err != nil {
		return err
	}
	lline.LineStyle.Width = vg.Points(2.0)

	rline, err := plotter.NewLine(toXYs(times, right))
	if err != nil {
		return err
	}
	rline.LineStyle.Width = vg.Points(2.0)
	rline.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(lline, rline, plotter.NewGrid())
	p.Legend.Add("left", lline)
	p.Legend.Add("right", rline)
	p.Legend.Top = true

	return savePlotPNG(p, 8.0, 6.0, filepath.Join(outDir, "thrust.png"))
}

func toXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	w := vg.Length(widthIn) * vg.Inch
	h := vg.Length(heightIn) * vg.Inch

	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(150))
	dc := draw.New(c)
	p.Draw(dc)

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	defer bw.Flush()

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}
