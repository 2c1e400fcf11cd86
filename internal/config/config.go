package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/chantakan/2d-drone-sim/internal/control"
	"github.com/chantakan/2d-drone-sim/internal/disturbance"
	"github.com/chantakan/2d-drone-sim/internal/physics"
	"github.com/chantakan/2d-drone-sim/internal/sim"
)

const (
	DefaultDt       = 0.02
	DefaultDuration = 30.0
	DefaultTargetX  = 300.0
	DefaultTargetY  = 150.0
	DefaultTilt     = 0.1
)

type Config struct {
	Model    string  `yaml:"model"`
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Seed     int64   `yaml:"seed"`
	PIDOn    bool    `yaml:"pid_enabled"`

	CartPole CartPoleConfig `yaml:"cartpole"`
	Drone    DroneConfig    `yaml:"drone"`
}

type CartPoleConfig struct {
	Position    float64       `yaml:"position"`
	Angle       float64       `yaml:"angle"`
	ManualForce float64       `yaml:"manual_force"`
	Gains       control.Gains `yaml:"gains"`
}

type DroneConfig struct {
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	TargetX     float64 `yaml:"target_x"`
	TargetY     float64 `yaml:"target_y"`
	ManualLeft  float64 `yaml:"manual_left"`
	ManualRight float64 `yaml:"manual_right"`

	// BaseThrust zero means hover thrust for the nominal mass.
	BaseThrust float64 `yaml:"base_thrust"`
	MaxThrust  float64 `yaml:"max_thrust"`
	MaxCommand float64 `yaml:"max_command"`

	ComOffset       float64 `yaml:"com_offset"`
	LeftEfficiency  float64 `yaml:"left_efficiency"`
	RightEfficiency float64 `yaml:"right_efficiency"`

	Vertical   control.Gains `yaml:"vertical"`
	Horizontal control.Gains `yaml:"horizontal"`
	Attitude   control.Gains `yaml:"attitude"`

	Disturbance disturbance.Config `yaml:"disturbance"`
}

// DefaultConfig is the balanced cart-pole and the hovering drone: both
// models configured, the Model field picking which one a run uses.
func DefaultConfig() *Config {
	return &Config{
		Model:    sim.ModelCartPole,
		Dt:       DefaultDt,
		Duration: DefaultDuration,
		PIDOn:    true,
		CartPole: CartPoleConfig{
			Angle: DefaultTilt,
			Gains: control.Gains{Kp: 50, Ki: 1, Kd: 10},
		},
		Drone: DroneConfig{
			X:               DefaultTargetX,
			Y:               DefaultTargetY,
			TargetX:         DefaultTargetX,
			TargetY:         DefaultTargetY,
			MaxThrust:       100,
			MaxCommand:      10,
			LeftEfficiency:  1,
			RightEfficiency: 1,
			Vertical:        control.Gains{Kp: 1.5, Ki: 0.3, Kd: 1.2},
			Horizontal:      control.Gains{Kp: -0.02, Kd: -0.04},
			Attitude:        control.Gains{Kp: -6, Kd: -1.5},
		},
	}
}

// Load reads path over the defaults, so a partial file only overrides
// what it names.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Model != sim.ModelCartPole && c.Model != sim.ModelDrone {
		return fmt.Errorf("config: unknown model %q", c.Model)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %g", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if c.Model == sim.ModelDrone {
		if c.Drone.MaxThrust <= 0 {
			return fmt.Errorf("config: max_thrust must be positive, got %g", c.Drone.MaxThrust)
		}
		if c.Drone.MaxCommand <= 0 {
			return fmt.Errorf("config: max_command must be positive, got %g", c.Drone.MaxCommand)
		}
	}
	return nil
}

// Ticks converts the duration into whole ticks at the configured dt.
func (c *Config) Ticks() int {
	return int(math.Round(c.Duration / c.Dt))
}

// CartPoleOptions maps the config onto session options.
func (c *Config) CartPoleOptions() sim.CartPoleOptions {
	return sim.CartPoleOptions{
		Initial: physics.CartPoleState{
			Position: c.CartPole.Position,
			Angle:    c.CartPole.Angle,
		},
		Gains:       c.CartPole.Gains,
		Dt:          c.Dt,
		PIDOn:       c.PIDOn,
		ManualForce: c.CartPole.ManualForce,
	}
}

// DroneOptions maps the config onto session options. The vehicle params
// start from their nominal values; only the rotor trim fields are
// config-driven.
func (c *Config) DroneOptions() sim.DroneOptions {
	params := physics.NewDroneParams()
	params.ComOffset = c.Drone.ComOffset
	params.LeftEfficiency = c.Drone.LeftEfficiency
	params.RightEfficiency = c.Drone.RightEfficiency

	return sim.DroneOptions{
		Params: params,
		Initial: physics.DroneState{
			X: c.Drone.X,
			Y: c.Drone.Y,
		},
		Vertical:    c.Drone.Vertical,
		Horizontal:  c.Drone.Horizontal,
		Attitude:    c.Drone.Attitude,
		BaseThrust:  c.Drone.BaseThrust,
		MaxThrust:   c.Drone.MaxThrust,
		MaxCommand:  c.Drone.MaxCommand,
		TargetX:     c.Drone.TargetX,
		TargetY:     c.Drone.TargetY,
		Disturbance: c.Drone.Disturbance,
		Seed:        c.Seed,
		Dt:          c.Dt,
		PIDOn:       c.PIDOn,
		ManualLeft:  c.Drone.ManualLeft,
		ManualRight: c.Drone.ManualRight,
	}
}

// NewSession builds the session the config describes.
func (c *Config) NewSession() (sim.Session, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Model {
	case sim.ModelDrone:
		return sim.NewDrone(c.DroneOptions())
	default:
		return sim.NewCartPole(c.CartPoleOptions())
	}
}
