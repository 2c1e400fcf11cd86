package sim

import (
	"fmt"

	"github.com/chantakan/2d-drone-sim/internal/control"
	"github.com/chantakan/2d-drone-sim/internal/physics"
)

type CartPoleOptions struct {
	Params  *physics.CartPoleParams
	Initial physics.CartPoleState
	Gains   control.Gains
	Dt      float64
	PIDOn   bool

	ManualForce float64
}

// CartPoleSession drives the inverted pendulum. The run ends when the
// cart or pole leaves its bounds; the offending step is thrown away, so
// the surviving state and score are the last good ones.
type CartPoleSession struct {
	params  *physics.CartPoleParams
	state   physics.CartPoleState
	initial physics.CartPoleState
	balance *control.Balance
	dt      float64

	pidOn     bool
	manual    float64
	lastForce float64
	tick      int
	halted    bool
}

func NewCartPole(opts CartPoleOptions) (*CartPoleSession, error) {
	if opts.Dt <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidTimeStep, opts.Dt)
	}
	if opts.Params == nil {
		opts.Params = physics.NewCartPoleParams()
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	s := &CartPoleSession{
		params:  opts.Params,
		state:   opts.Initial,
		initial: opts.Initial,
		balance: control.NewBalance(opts.Gains, opts.Params.MaxForce),
		dt:      opts.Dt,
		pidOn:   opts.PIDOn,
	}
	s.SetManualForce(opts.ManualForce)
	return s, nil
}

func (s *CartPoleSession) Model() string { return ModelCartPole }
func (s *CartPoleSession) Dt() float64   { return s.dt }
func (s *CartPoleSession) Halted() bool  { return s.halted }

func (s *CartPoleSession) Tick() {
	if s.halted {
		return
	}

	force := s.manual
	if s.pidOn {
		force = s.balance.Force(s.state.Angle, s.dt)
	}

	next := s.params.Step(s.state, force, s.dt)
	if s.params.OutOfBounds(next) {
		s.halted = true
		return
	}

	s.state = next
	s.lastForce = force
	s.tick++
}

func (s *CartPoleSession) Snapshot() Snapshot {
	return Snapshot{
		Model:  ModelCartPole,
		Tick:   s.tick,
		Time:   float64(s.tick) * s.dt,
		Halted: s.halted,
		PIDOn:  s.pidOn,
		Force:  s.lastForce,
		Cart:   s.state,
		Energy: s.params.Energy(s.state),
	}
}

func (s *CartPoleSession) Reset() {
	s.state = s.initial
	s.halted = false
	s.tick = 0
	s.lastForce = 0
	s.balance.Reset()
}

// SetManualForce stores the force used whenever the autopilot is off,
// held inside the actuator range.
func (s *CartPoleSession) SetManualForce(f float64) {
	s.manual = clamp(f, -s.params.MaxForce, s.params.MaxForce)
}

func (s *CartPoleSession) ManualForce() float64 {
	return s.manual
}

// SetPIDEnabled toggles the autopilot. Any transition wipes the
// controller's transient state.
func (s *CartPoleSession) SetPIDEnabled(on bool) {
	if on != s.pidOn {
		s.balance.Reset()
	}
	s.pidOn = on
}

func (s *CartPoleSession) PIDEnabled() bool {
	return s.pidOn
}

// SetGains retunes the balance loop without clearing its accumulator.
func (s *CartPoleSession) SetGains(g control.Gains) {
	s.balance.SetGains(g)
}

func (s *CartPoleSession) Gains() control.Gains {
	return s.balance.Gains()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
