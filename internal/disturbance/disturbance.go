// Package disturbance produces the exogenous inputs fed into the drone
// dynamics: a gusting wind force and multiplicative per-rotor thrust
// noise. All randomness flows from one seeded source, so a run is
// reproducible from its seed.
package disturbance

import (
	"math"
	"math/rand"
)

type WindConfig struct {
	Enabled             bool    `yaml:"enabled"`
	BaseSpeed           float64 `yaml:"base_speed"`
	GustFrequency       float64 `yaml:"gust_frequency"`
	GustMagnitude       float64 `yaml:"gust_magnitude"`
	TurbulenceIntensity float64 `yaml:"turbulence_intensity"`
}

type ThrustNoiseConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Magnitude float64 `yaml:"magnitude"`
	Frequency float64 `yaml:"frequency"` // accepted but not read by the noise draw
}

type Config struct {
	Wind        WindConfig        `yaml:"wind"`
	ThrustNoise ThrustNoiseConfig `yaml:"thrust_noise"`
}

// Generator carries the gust clock across ticks; that clock is its only
// cross-tick state besides the random stream.
type Generator struct {
	cfg   Config
	seed  int64
	rng   *rand.Rand
	clock float64
}

func NewGenerator(cfg Config, seed int64) *Generator {
	return &Generator{
		cfg:  cfg,
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Wind advances the gust clock by dt and returns the instantaneous wind
// force: base speed, plus a sinusoidal gust over the clock, plus a fresh
// zero-mean turbulence draw bounded by the intensity. While the wind
// model is off the clock holds still and the force is zero.
func (g *Generator) Wind(dt float64) float64 {
	if !g.cfg.Wind.Enabled {
		return 0
	}
	g.clock += dt

	w := g.cfg.Wind
	gust := w.GustMagnitude * math.Sin(2*math.Pi*w.GustFrequency*g.clock)
	turbulence := (g.rng.Float64() - 0.5) * 2 * w.TurbulenceIntensity
	return w.BaseSpeed + gust + turbulence
}

// ThrustNoise returns the multiplicative factors for the rotor pair,
// left drawn before right. Disabled noise is exactly neutral.
func (g *Generator) ThrustNoise() (left, right float64) {
	if !g.cfg.ThrustNoise.Enabled {
		return 1, 1
	}
	m := g.cfg.ThrustNoise.Magnitude
	left = 1 + (g.rng.Float64()-0.5)*2*m
	right = 1 + (g.rng.Float64()-0.5)*2*m
	return left, right
}

// Reset rewinds the gust clock and the random stream, so a reset run
// replays exactly.
func (g *Generator) Reset() {
	g.clock = 0
	g.rng = rand.New(rand.NewSource(g.seed))
}

// SetConfig swaps the disturbance settings. The clock is left alone;
// disabling wind merely freezes it.
func (g *Generator) SetConfig(cfg Config) {
	g.cfg = cfg
}

func (g *Generator) Config() Config {
	return g.cfg
}

// Clock reports the elapsed wind time.
func (g *Generator) Clock() float64 {
	return g.clock
}
