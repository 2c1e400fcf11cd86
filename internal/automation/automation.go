// Package automation scripts batches of headless runs: yaml suites of
// named scenarios, and repeated trials across disturbance seeds.
package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chantakan/2d-drone-sim/internal/config"
	"github.com/chantakan/2d-drone-sim/internal/metrics"
	"github.com/chantakan/2d-drone-sim/internal/sim"
)

// Suite is a scripted sequence of runs loaded from yaml.
type Suite struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Runs        []Run  `yaml:"runs"`
}

// Run names one simulation: a preset (or the model defaults) plus
// overrides. Zero-valued overrides keep the preset's settings.
type Run struct {
	Name     string  `yaml:"name"`
	Model    string  `yaml:"model"`
	Preset   string  `yaml:"preset"`
	Duration float64 `yaml:"duration"`
	Dt       float64 `yaml:"dt"`
	Seed     int64   `yaml:"seed"`
	PIDOn    *bool   `yaml:"pid_enabled"`
}

// LoadSuite reads a suite from a yaml file.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(suite.Runs) == 0 {
		return nil, fmt.Errorf("%s: suite has no runs", path)
	}
	return &suite, nil
}

func (r Run) label() string {
	if r.Name != "" {
		return r.Name
	}
	if r.Preset != "" {
		return r.Model + "/" + r.Preset
	}
	return r.Model
}

func (r Run) resolve() (*config.Config, error) {
	var cfg *config.Config
	if r.Preset != "" {
		cfg = config.GetPreset(r.Model, r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q for model %q", r.Preset, r.Model)
		}
	} else {
		cfg = config.DefaultConfig()
		cfg.Model = r.Model
	}

	if r.Duration > 0 {
		cfg.Duration = r.Duration
	}
	if r.Dt > 0 {
		cfg.Dt = r.Dt
	}
	if r.Seed != 0 {
		cfg.Seed = r.Seed
	}
	if r.PIDOn != nil {
		cfg.PIDOn = *r.PIDOn
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunResult is the outcome of one suite entry.
type RunResult struct {
	Name    string
	Model   string
	Ticks   int
	Halted  bool
	Metrics map[string]float64
}

// RunSuite executes every run in order, stopping at the first error.
func RunSuite(ctx context.Context, suite *Suite) ([]RunResult, error) {
	results := make([]RunResult, 0, len(suite.Runs))

	for i, run := range suite.Runs {
		fmt.Printf("running %d/%d: %s\n", i+1, len(suite.Runs), run.label())

		cfg, err := run.resolve()
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}
		session, err := cfg.NewSession()
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}

		mets := metrics.StandardSet(cfg.Model)
		obs := make([]sim.Observer, len(mets))
		for j, m := range mets {
			obs[j] = m
		}

		result, err := sim.Run(ctx, session, cfg.Ticks(), obs...)
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}

		vals := make(map[string]float64, len(mets))
		for _, m := range mets {
			vals[m.Name()] = m.Value()
		}
		results = append(results, RunResult{
			Name:    run.label(),
			Model:   cfg.Model,
			Ticks:   result.Final().Tick,
			Halted:  result.Halted(),
			Metrics: vals,
		})
	}

	return results, nil
}

// Robustness reruns one configuration across consecutive disturbance
// seeds to see how often the controller keeps the state in bounds.
// Trial k uses seed BaseSeed+k+1.
type Robustness struct {
	Model    string
	Preset   string
	Trials   int
	BaseSeed int64
	Duration float64 // optional override
}

// TrialResult is the outcome of one robustness trial.
type TrialResult struct {
	Seed      int64
	Ticks     int
	Halted    bool
	Deviation float64 // mean deviation over the run
}

// RunRobustness resolves one config per seed and runs all the trials
// concurrently.
func RunRobustness(ctx context.Context, rob Robustness) ([]TrialResult, error) {
	if rob.Trials <= 0 {
		return nil, fmt.Errorf("robustness needs at least one trial, got %d", rob.Trials)
	}

	cfgs := make([]*config.Config, rob.Trials)
	for trial := range cfgs {
		run := Run{Model: rob.Model, Preset: rob.Preset, Duration: rob.Duration, Seed: rob.BaseSeed + int64(trial) + 1}
		cfg, err := run.resolve()
		if err != nil {
			return nil, err
		}
		cfgs[trial] = cfg
	}

	results, err := sim.RunEnsemble(ctx, rob.Trials, cfgs[0].Ticks(), func(i int) (sim.Session, error) {
		return cfgs[i].NewSession()
	})
	if err != nil {
		return nil, err
	}

	trials := make([]TrialResult, len(results))
	for i, result := range results {
		var sum float64
		for _, snap := range result.Snapshots {
			sum += metrics.Deviation(snap)
		}
		trials[i] = TrialResult{
			Seed:      cfgs[i].Seed,
			Ticks:     result.Final().Tick,
			Halted:    result.Halted(),
			Deviation: sum / float64(len(result.Snapshots)),
		}
	}
	return trials, nil
}

// SurvivalRate is the fraction of trials that finished in bounds.
func SurvivalRate(trials []TrialResult) float64 {
	if len(trials) == 0 {
		return 0
	}
	alive := 0
	for _, tr := range trials {
		if !tr.Halted {
			alive++
		}
	}
	return float64(alive) / float64(len(trials))
}
