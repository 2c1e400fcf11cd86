package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/edaniels/golog"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/chantakan/2d-drone-sim/internal/analysis"
	"github.com/chantakan/2d-drone-sim/internal/automation"
	"github.com/chantakan/2d-drone-sim/internal/config"
	"github.com/chantakan/2d-drone-sim/internal/control"
	"github.com/chantakan/2d-drone-sim/internal/export"
	"github.com/chantakan/2d-drone-sim/internal/metrics"
	"github.com/chantakan/2d-drone-sim/internal/optim"
	"github.com/chantakan/2d-drone-sim/internal/sim"
	"github.com/chantakan/2d-drone-sim/internal/telemetry"
	"github.com/chantakan/2d-drone-sim/internal/viz"
)

var (
	configFile    string
	preset        string
	dt            float64
	duration      float64
	seed          int64
	pidOn         bool
	telemetryAddr string

	pos   float64 // cartpole
	angle float64
	force float64

	x, y             float64 // drone
	targetX, targetY float64
	thrustL, thrustR float64

	outDir string
	format string

	spectrumOf string

	trialCount int

	tuneLoop               string
	tuneKp, tuneKi, tuneKd []float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dronesim",
		Short: "2d control loop simulation lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunPicker(golog.NewLogger("dronesim"))
		},
	}

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation headless",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&telemetryAddr, "telemetry", "", "serve prometheus metrics on this address")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run a simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().StringVar(&telemetryAddr, "telemetry", "", "serve prometheus metrics on this address")

	plotCmd := &cobra.Command{
		Use:   "plot [model]",
		Short: "run headless and plot channels in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	addSimFlags(plotCmd)

	exportCmd := &cobra.Command{
		Use:   "export [model]",
		Short: "run headless and write artifacts",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	addSimFlags(exportCmd)
	exportCmd.Flags().StringVar(&outDir, "out", "out", "output directory")
	exportCmd.Flags().StringVar(&format, "format", "all", "csv, json, svg, png or all")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [model]",
		Short: "run headless and characterize the response",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	addSimFlags(analyzeCmd)
	analyzeCmd.Flags().StringVar(&spectrumOf, "spectrum", "", "also plot the power spectrum of this channel")

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run a yaml suite of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	trialsCmd := &cobra.Command{
		Use:   "trials [model]",
		Short: "rerun one setup across disturbance seeds",
		Args:  cobra.ExactArgs(1),
		RunE:  runTrials,
	}
	trialsCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	trialsCmd.Flags().IntVar(&trialCount, "trials", 20, "number of trials")
	trialsCmd.Flags().Int64Var(&seed, "seed", 0, "base seed")
	trialsCmd.Flags().Float64Var(&duration, "time", 0, "duration override in seconds")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid search pid gains",
		Args:  cobra.ExactArgs(1),
		RunE:  runTune,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&tuneLoop, "loop", "attitude", "drone loop to tune (vertical, horizontal, attitude)")
	tuneCmd.Flags().Float64SliceVar(&tuneKp, "kp", nil, "kp candidates")
	tuneCmd.Flags().Float64SliceVar(&tuneKi, "ki", nil, "ki candidates")
	tuneCmd.Flags().Float64SliceVar(&tuneKd, "kd", nil, "kd candidates")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark tick throughput",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the default config as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if len(args) == 0 {
				out, err := yaml.Marshal(cfg)
				if err != nil {
					return err
				}
				fmt.Print(string(out))
				return nil
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, plotCmd, exportCmd, analyzeCmd, batchCmd, trialsCmd, tuneCmd, benchCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().Int64Var(&seed, "seed", 0, "disturbance seed")
	cmd.Flags().BoolVar(&pidOn, "pid", true, "enable pid control")
	cmd.Flags().Float64Var(&pos, "pos", 0, "initial cart position")
	cmd.Flags().Float64Var(&angle, "angle", 0, "initial pole angle")
	cmd.Flags().Float64Var(&force, "force", 0, "manual cart force")
	cmd.Flags().Float64Var(&x, "x", 0, "initial drone x")
	cmd.Flags().Float64Var(&y, "y", 0, "initial drone y")
	cmd.Flags().Float64Var(&targetX, "target-x", config.DefaultTargetX, "drone target x")
	cmd.Flags().Float64Var(&targetY, "target-y", config.DefaultTargetY, "drone target y")
	cmd.Flags().Float64Var(&thrustL, "thrust-left", 0, "manual left thrust")
	cmd.Flags().Float64Var(&thrustR, "thrust-right", 0, "manual right thrust")
}

// buildConfig resolves the effective configuration: defaults, then the
// preset or config file, then explicit flags on top.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(model, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", preset, config.ListPresets(model))
		}
	default:
		cfg = config.DefaultConfig()
	}
	if model != "" {
		cfg.Model = model
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("pid") {
		cfg.PIDOn = pidOn
	}
	if flags.Changed("pos") {
		cfg.CartPole.Position = pos
	}
	if flags.Changed("angle") {
		cfg.CartPole.Angle = angle
	}
	if flags.Changed("force") {
		cfg.CartPole.ManualForce = force
	}
	if flags.Changed("x") {
		cfg.Drone.X = x
	}
	if flags.Changed("y") {
		cfg.Drone.Y = y
	}
	if flags.Changed("target-x") {
		cfg.Drone.TargetX = targetX
	}
	if flags.Changed("target-y") {
		cfg.Drone.TargetY = targetY
	}
	if flags.Changed("thrust-left") {
		cfg.Drone.ManualLeft = thrustL
	}
	if flags.Changed("thrust-right") {
		cfg.Drone.ManualRight = thrustR
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func headlessRun(cmd *cobra.Command, model string) (*sim.Result, *config.Config, []metrics.Metric, error) {
	cfg, err := buildConfig(cmd, model)
	if err != nil {
		return nil, nil, nil, err
	}
	session, err := cfg.NewSession()
	if err != nil {
		return nil, nil, nil, err
	}

	mets := metrics.StandardSet(cfg.Model)
	obs := make([]sim.Observer, len(mets))
	for i, m := range mets {
		obs[i] = m
	}

	result, err := sim.Run(context.Background(), session, cfg.Ticks(), obs...)
	if err != nil {
		return nil, nil, nil, err
	}
	return result, cfg, mets, nil
}

func runSimulation(cmd *cobra.Command, args []string) (err error) {
	model := args[0]
	cfg, err := buildConfig(cmd, model)
	if err != nil {
		return err
	}
	session, err := cfg.NewSession()
	if err != nil {
		return err
	}

	logger := golog.NewDevelopmentLogger("dronesim")
	mets := metrics.StandardSet(cfg.Model)
	var obs []sim.Observer
	for _, m := range mets {
		obs = append(obs, m)
	}

	if telemetryAddr != "" {
		exp := telemetry.NewExporter(telemetryAddr, logger)
		if err := exp.Start(); err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, exp.Close()) }()
		obs = append(obs, exp)
	}

	fmt.Printf("running %s for %d ticks (dt=%gs)...\n", cfg.Model, cfg.Ticks(), cfg.Dt)
	start := time.Now()

	result, err := sim.Run(context.Background(), session, cfg.Ticks(), obs...)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	final := result.Final()

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("ticks: %d (t=%.2fs)\n", final.Tick, final.Time)
	if result.Halted() {
		fmt.Printf("halted: state out of bounds at t=%.2fs\n", final.Time)
	}

	fmt.Println("\nmetrics:")
	for _, m := range mets {
		fmt.Printf("  %s: %.6f\n", m.Name(), m.Value())
	}

	summaries := metrics.RunSummaries(result)
	if len(summaries) > 0 {
		fmt.Println("\nchannels:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  CHANNEL\tMEAN\tSTD\tMIN\tMAX")
		for _, s := range summaries {
			fmt.Fprintf(w, "  %s\t%.4f\t%.4f\t%.4f\t%.4f\n", s.Label, s.Mean, s.Std, s.Min, s.Max)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) (err error) {
	logger := golog.NewLogger("dronesim")
	if len(args) == 0 {
		return viz.RunPicker(logger)
	}

	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	session, err := cfg.NewSession()
	if err != nil {
		return err
	}

	runner := sim.NewRunner(session, logger)
	if telemetryAddr != "" {
		exp := telemetry.NewExporter(telemetryAddr, logger)
		if err := exp.Start(); err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, exp.Close()) }()
		runner.AddObserver(exp)
	}

	p := tea.NewProgram(viz.NewModel(runner, session), tea.WithAltScreen())
	runner.Start()
	_, err = p.Run()
	runner.Stop()
	return err
}

func plotRun(cmd *cobra.Command, args []string) error {
	result, cfg, _, err := headlessRun(cmd, args[0])
	if err != nil {
		return err
	}
	snaps := result.Snapshots

	fmt.Printf("model: %s\n", cfg.Model)
	fmt.Printf("samples: %d\n\n", len(snaps))

	type channel struct {
		caption string
		get     func(sim.Snapshot) float64
	}
	var channels []channel
	if cfg.Model == sim.ModelDrone {
		channels = []channel{
			{"x position", func(s sim.Snapshot) float64 { return s.Drone.X }},
			{"altitude", func(s sim.Snapshot) float64 { return s.Drone.Y }},
			{"rotation", func(s sim.Snapshot) float64 { return s.Drone.Rotation }},
			{"left thrust", func(s sim.Snapshot) float64 { return s.Left }},
			{"right thrust", func(s sim.Snapshot) float64 { return s.Right }},
			{"wind force", func(s sim.Snapshot) float64 { return s.Wind }},
			{"energy", func(s sim.Snapshot) float64 { return s.Energy }},
		}
	} else {
		channels = []channel{
			{"cart position", func(s sim.Snapshot) float64 { return s.Cart.Position }},
			{"cart velocity", func(s sim.Snapshot) float64 { return s.Cart.Velocity }},
			{"pole angle", func(s sim.Snapshot) float64 { return s.Cart.Angle }},
			{"pole angular velocity", func(s sim.Snapshot) float64 { return s.Cart.AngularVelocity }},
			{"control force", func(s sim.Snapshot) float64 { return s.Force }},
			{"energy", func(s sim.Snapshot) float64 { return s.Energy }},
		}
	}

	for _, ch := range channels {
		data := make([]float64, len(snaps))
		for i, s := range snaps {
			data[i] = ch.get(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(ch.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	result, cfg, _, err := headlessRun(cmd, args[0])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	writeCSV := func() error {
		path := filepath.Join(outDir, "run.csv")
		if err := export.WriteCSV(path, result); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	}
	writeJSON := func() error {
		path := filepath.Join(outDir, "run.json")
		if err := export.WriteJSON(path, result, cfg.Dt); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	}
	writeSVG := func() error {
		path := filepath.Join(outDir, "trajectory.svg")
		if err := os.WriteFile(path, []byte(export.TrajectorySVG(result.Snapshots, 800, 400, "#00ff00")), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)

		path = filepath.Join(outDir, "final_frame.svg")
		if err := os.WriteFile(path, []byte(export.FinalFrameSVG(result, 4)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	}
	writePNG := func() error {
		files, err := export.SavePlots(outDir, result)
		for _, f := range files {
			fmt.Printf("wrote %s\n", f)
		}
		return err
	}

	switch format {
	case "csv":
		return writeCSV()
	case "json":
		return writeJSON()
	case "svg":
		return writeSVG()
	case "png":
		return writePNG()
	case "all":
		return multierr.Combine(writeCSV(), writeJSON(), writeSVG(), writePNG())
	default:
		return fmt.Errorf("unknown format %q (csv, json, svg, png, all)", format)
	}
}

func benchModel(cmd *cobra.Command, args []string) error {
	model := args[0]

	fmt.Printf("benchmarking %s\n\n", model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tTICKS\tTIME\tTICKS/SEC")

	for _, dur := range []float64{1.0, 5.0, 10.0} {
		for _, step := range []float64{0.001, 0.01, 0.1} {
			cfg := config.DefaultConfig()
			cfg.Model = model
			cfg.Dt = step
			cfg.Duration = dur
			cfg.Seed = 42
			session, err := cfg.NewSession()
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := sim.Run(context.Background(), session, cfg.Ticks())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			ticks := result.Final().Tick
			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, step, ticks, elapsed, float64(ticks)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := []string{sim.ModelCartPole, sim.ModelDrone}
	if len(args) == 1 {
		models = args
	}

	for _, model := range models {
		presets := config.ListPresets(model)
		if len(presets) == 0 {
			fmt.Printf("no presets for model: %s\n", model)
			continue
		}
		fmt.Printf("presets for %s:\n", model)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	result, cfg, _, err := headlessRun(cmd, args[0])
	if err != nil {
		return err
	}
	snaps := result.Snapshots

	type channel struct {
		name string
		get  func(sim.Snapshot) float64
	}
	var channels []channel
	if cfg.Model == sim.ModelDrone {
		channels = []channel{
			{"x", func(s sim.Snapshot) float64 { return s.Drone.X }},
			{"y", func(s sim.Snapshot) float64 { return s.Drone.Y }},
			{"rotation", func(s sim.Snapshot) float64 { return s.Drone.Rotation }},
		}
	} else {
		channels = []channel{
			{"position", func(s sim.Snapshot) float64 { return s.Cart.Position }},
			{"angle", func(s sim.Snapshot) float64 { return s.Cart.Angle }},
		}
	}

	fmt.Printf("model: %s\n", cfg.Model)
	fmt.Printf("samples: %d (dt=%gs)\n", len(snaps), cfg.Dt)
	if result.Halted() {
		fmt.Printf("halted at t=%.2fs\n", result.Final().Time)
	}
	fmt.Println()

	var spectrum []float64
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tFREQ (HZ)\tAMPLITUDE\tDAMPING\tSETTLE (S)")
	for _, ch := range channels {
		series := make([]float64, len(snaps))
		lo, hi := ch.get(snaps[0]), ch.get(snaps[0])
		for i, s := range snaps {
			v := ch.get(s)
			series[i] = v
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}

		osc := analysis.DominantOscillation(series, cfg.Dt)
		zeta := analysis.DampingRatio(series)
		// 2% of peak-to-peak as the settling band
		settle := analysis.SettlingTime(series, cfg.Dt, 0.02*(hi-lo))
		settled := "-"
		if settle >= 0 {
			settled = fmt.Sprintf("%.2f", settle)
		}
		fmt.Fprintf(w, "%s\t%.3f\t%.4f\t%.4f\t%s\n", ch.name, osc.Frequency, osc.Amplitude, zeta, settled)

		if ch.name == spectrumOf {
			spectrum = analysis.PowerSpectrum(series)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if spectrumOf != "" {
		if spectrum == nil {
			return fmt.Errorf("unknown channel %q", spectrumOf)
		}
		if len(spectrum) > 1 {
			fmt.Println()
			graph := asciigraph.Plot(spectrum[1:],
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("%s power spectrum, %.4f hz per bin", spectrumOf, 1/(float64(len(snaps))*cfg.Dt))),
			)
			fmt.Println(graph)
		}
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	suite, err := automation.LoadSuite(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("suite: %s\n", suite.Name)
	if suite.Description != "" {
		fmt.Println(suite.Description)
	}
	fmt.Println()

	results, err := automation.RunSuite(cmd.Context(), suite)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODEL\tTICKS\tHALTED\tEFFORT\tSTABILITY\tDRIFT")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%.4f\t%.4f\t%.4f\n",
			r.Name, r.Model, r.Ticks, r.Halted,
			r.Metrics["control_effort"], r.Metrics["stability"], r.Metrics["energy_drift"])
	}
	return w.Flush()
}

func runTrials(cmd *cobra.Command, args []string) error {
	rob := automation.Robustness{
		Model:    args[0],
		Preset:   preset,
		Trials:   trialCount,
		BaseSeed: seed,
	}
	if cmd.Flags().Changed("time") {
		rob.Duration = duration
	}

	fmt.Printf("running %d trials of %s...\n", rob.Trials, rob.Model)
	start := time.Now()
	trials, err := automation.RunRobustness(cmd.Context(), rob)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTICKS\tHALTED\tMEAN DEV")
	for _, tr := range trials {
		fmt.Fprintf(w, "%d\t%d\t%v\t%.4f\n", tr.Seed, tr.Ticks, tr.Halted, tr.Deviation)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nsurvival: %.0f%%\n", 100*automation.SurvivalRate(trials))
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	model := args[0]
	cfg, err := buildConfig(cmd, model)
	if err != nil {
		return err
	}

	loop := control.LoopAttitude
	if model == sim.ModelDrone {
		switch tuneLoop {
		case "vertical":
			loop = control.LoopVertical
		case "horizontal":
			loop = control.LoopHorizontal
		case "attitude":
			loop = control.LoopAttitude
		default:
			return fmt.Errorf("unknown loop %q (vertical, horizontal, attitude)", tuneLoop)
		}
	}

	base := baseGains(cfg, loop)
	factors := []float64{0.25, 0.5, 1, 2, 4}
	grid := optim.Grid{
		Kp: optim.Around(base.Kp, factors...),
		Ki: optim.Around(base.Ki, factors...),
		Kd: optim.Around(base.Kd, factors...),
	}
	if len(tuneKp) > 0 {
		grid.Kp = tuneKp
	}
	if len(tuneKi) > 0 {
		grid.Ki = tuneKi
	}
	if len(tuneKd) > 0 {
		grid.Kd = tuneKd
	}

	target := cfg.Model
	if cfg.Model == sim.ModelDrone {
		target = fmt.Sprintf("%s %s loop", cfg.Model, loop)
	}
	fmt.Printf("searching %d gain combinations for the %s...\n", grid.Size(), target)

	eval := tuneEval(cfg, loop)
	start := time.Now()
	best, err := optim.Search(cmd.Context(), grid, eval)
	if err != nil {
		return err
	}
	fmt.Printf("done in %v\n\n", time.Since(start))

	if baseScore, err := eval(base); err == nil {
		fmt.Printf("base: kp=%-10g ki=%-10g kd=%-10g score %.4f\n", base.Kp, base.Ki, base.Kd, baseScore)
	}
	fmt.Printf("best: kp=%-10g ki=%-10g kd=%-10g score %.4f\n", best.Gains.Kp, best.Gains.Ki, best.Gains.Kd, best.Score)
	return nil
}

func baseGains(cfg *config.Config, loop control.Loop) control.Gains {
	if cfg.Model == sim.ModelCartPole {
		return cfg.CartPole.Gains
	}
	switch loop {
	case control.LoopVertical:
		return cfg.Drone.Vertical
	case control.LoopHorizontal:
		return cfg.Drone.Horizontal
	default:
		return cfg.Drone.Attitude
	}
}

// tuneEval runs one headless simulation per candidate and scores it by
// mean deviation. Halted runs score by how early they died, far above
// anything that survived.
func tuneEval(cfg *config.Config, loop control.Loop) optim.Eval {
	return func(g control.Gains) (float64, error) {
		trial := *cfg
		if trial.Model == sim.ModelCartPole {
			trial.CartPole.Gains = g
		} else {
			switch loop {
			case control.LoopVertical:
				trial.Drone.Vertical = g
			case control.LoopHorizontal:
				trial.Drone.Horizontal = g
			default:
				trial.Drone.Attitude = g
			}
		}

		session, err := trial.NewSession()
		if err != nil {
			return 0, err
		}
		result, err := sim.Run(context.Background(), session, trial.Ticks())
		if err != nil {
			return 0, err
		}

		if result.Halted() {
			return 1e6 - result.Final().Time, nil
		}
		var sum float64
		for _, snap := range result.Snapshots {
			sum += metrics.Deviation(snap)
		}
		return sum / float64(len(result.Snapshots)), nil
	}
}
