package sim

import (
	"fmt"

	"github.com/chantakan/2d-drone-sim/internal/control"
	"github.com/chantakan/2d-drone-sim/internal/disturbance"
	"github.com/chantakan/2d-drone-sim/internal/physics"
)

type DroneOptions struct {
	Params  *physics.DroneParams
	Initial physics.DroneState

	Vertical   control.Gains
	Horizontal control.Gains
	Attitude   control.Gains

	// BaseThrust zero means hover thrust for the configured mass.
	BaseThrust float64
	// MaxThrust caps each rotor after control mixing.
	MaxThrust float64
	// MaxCommand caps what a host may ask of a rotor by hand.
	MaxCommand float64

	TargetX float64
	TargetY float64

	Disturbance disturbance.Config
	Seed        int64

	Dt    float64
	PIDOn bool

	ManualLeft  float64
	ManualRight float64
}

// DroneSession drives the twin-rotor vehicle. It never halts; the walls
// of the flight domain are the only thing keeping state bounded.
type DroneSession struct {
	params  *physics.DroneParams
	state   physics.DroneState
	initial physics.DroneState
	cascade *control.Cascade
	gusts   *disturbance.Generator
	dt      float64

	pidOn       bool
	manualLeft  float64
	manualRight float64
	maxCommand  float64

	lastLeft  float64
	lastRight float64
	lastWind  float64
	tick      int
}

func NewDrone(opts DroneOptions) (*DroneSession, error) {
	if opts.Dt <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidTimeStep, opts.Dt)
	}
	if opts.Params == nil {
		opts.Params = physics.NewDroneParams()
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if opts.BaseThrust == 0 {
		opts.BaseThrust = opts.Params.HoverThrust()
	}
	if opts.MaxThrust <= 0 {
		return nil, fmt.Errorf("sim: max thrust must be positive, got %g", opts.MaxThrust)
	}
	if opts.MaxCommand <= 0 {
		return nil, fmt.Errorf("sim: max thrust command must be positive, got %g", opts.MaxCommand)
	}

	s := &DroneSession{
		params:  opts.Params,
		state:   opts.Initial,
		initial: opts.Initial,
		cascade: control.NewCascade(
			opts.Vertical, opts.Horizontal, opts.Attitude,
			opts.BaseThrust, opts.MaxThrust, opts.TargetX, opts.TargetY,
		),
		gusts:      disturbance.NewGenerator(opts.Disturbance, opts.Seed),
		dt:         opts.Dt,
		pidOn:      opts.PIDOn,
		maxCommand: opts.MaxCommand,
	}
	s.SetManualThrust(opts.ManualLeft, opts.ManualRight)
	return s, nil
}

func (s *DroneSession) Model() string { return ModelDrone }
func (s *DroneSession) Dt() float64   { return s.dt }
func (s *DroneSession) Halted() bool  { return false }

func (s *DroneSession) Tick() {
	wind := s.gusts.Wind(s.dt)
	noiseL, noiseR := s.gusts.ThrustNoise()

	left, right := s.manualLeft, s.manualRight
	if s.pidOn {
		left, right = s.cascade.Thrusts(s.state, s.dt)
	}

	s.state = s.params.Step(s.state, left, right, wind, noiseL, noiseR, s.dt)
	s.lastLeft, s.lastRight, s.lastWind = left, right, wind
	s.tick++
}

func (s *DroneSession) Snapshot() Snapshot {
	cfg := s.gusts.Config()
	tx, ty := s.cascade.Target()
	return Snapshot{
		Model:        ModelDrone,
		Tick:         s.tick,
		Time:         float64(s.tick) * s.dt,
		PIDOn:        s.pidOn,
		Left:         s.lastLeft,
		Right:        s.lastRight,
		WindEnabled:  cfg.Wind.Enabled,
		NoiseEnabled: cfg.ThrustNoise.Enabled,
		Wind:         s.lastWind,
		Drone:        s.state,
		TargetX:      tx,
		TargetY:      ty,
		Energy:       s.params.Energy(s.state),
	}
}

func (s *DroneSession) Reset() {
	s.state = s.initial
	s.tick = 0
	s.lastLeft, s.lastRight, s.lastWind = 0, 0, 0
	s.cascade.Reset()
	s.gusts.Reset()
}

// SetManualThrust stores the rotor commands used whenever the autopilot
// is off, each held inside the hand-command range.
func (s *DroneSession) SetManualThrust(left, right float64) {
	s.manualLeft = clamp(left, 0, s.maxCommand)
	s.manualRight = clamp(right, 0, s.maxCommand)
}

func (s *DroneSession) ManualThrust() (left, right float64) {
	return s.manualLeft, s.manualRight
}

// SetPIDEnabled toggles the cascade. Any transition wipes all three
// loops' transient state.
func (s *DroneSession) SetPIDEnabled(on bool) {
	if on != s.pidOn {
		s.cascade.Reset()
	}
	s.pidOn = on
}

func (s *DroneSession) PIDEnabled() bool {
	return s.pidOn
}

// SetGains retunes one cascade loop in place.
func (s *DroneSession) SetGains(l control.Loop, g control.Gains) {
	s.cascade.SetGains(l, g)
}

func (s *DroneSession) Gains(l control.Loop) control.Gains {
	return s.cascade.Gains(l)
}

func (s *DroneSession) SetTarget(x, y float64) {
	s.cascade.SetTarget(x, y)
}

// SetDisturbance swaps wind and noise settings; the gust clock carries
// over.
func (s *DroneSession) SetDisturbance(cfg disturbance.Config) {
	s.gusts.SetConfig(cfg)
}

func (s *DroneSession) Disturbance() disturbance.Config {
	return s.gusts.Config()
}
