package physics

import (
	"fmt"
	"math"
)

// CartPoleState is the full state of the cart-pole, produced fresh each step.
type CartPoleState struct {
	Position        float64 `json:"position"`
	Velocity        float64 `json:"velocity"`
	Angle           float64 `json:"angle"`
	AngularVelocity float64 `json:"angular_velocity"`
	Score           int     `json:"score"`
}

type CartPoleParams struct {
	CartMass   float64
	PoleMass   float64
	PoleLength float64
	Gravity    float64
	MaxForce   float64

	// Run-ending bounds, checked by the session against the candidate state.
	PositionLimit float64
	AngleLimit    float64
}

func NewCartPoleParams() *CartPoleParams {
	return &CartPoleParams{
		CartMass:      1.0,
		PoleMass:      0.1,
		PoleLength:    1.0,
		Gravity:       9.8,
		MaxForce:      15.0,
		PositionLimit: 2.4,
		AngleLimit:    math.Pi / 2,
	}
}

func (p *CartPoleParams) Validate() error {
	if p.CartMass <= 0 {
		return fmt.Errorf("physics: cart mass must be positive, got %g", p.CartMass)
	}
	if p.PoleMass <= 0 {
		return fmt.Errorf("physics: pole mass must be positive, got %g", p.PoleMass)
	}
	if p.PoleLength <= 0 {
		return fmt.Errorf("physics: pole length must be positive, got %g", p.PoleLength)
	}
	if p.MaxForce <= 0 {
		return fmt.Errorf("physics: max force must be positive, got %g", p.MaxForce)
	}
	if p.PositionLimit <= 0 || p.AngleLimit <= 0 {
		return fmt.Errorf("physics: bounds must be positive, got %g and %g", p.PositionLimit, p.AngleLimit)
	}
	return nil
}

// Step advances the cart-pole one forward-Euler step under the applied
// horizontal force. Position and angle move with the pre-step velocities,
// then the velocities pick up the computed accelerations. The returned
// angle is normalized into (-pi, pi] and Score counts completed steps.
//
// For positive masses the denominator l*(M+m-m*cos^2) is strictly
// positive, which Validate guarantees up front; Step itself never errors.
func (p *CartPoleParams) Step(s CartPoleState, force, dt float64) CartPoleState {
	force = clamp(force, -p.MaxForce, p.MaxForce)

	m := p.CartMass + p.PoleMass
	ml := p.PoleMass * p.PoleLength
	sin := math.Sin(s.Angle)
	cos := math.Cos(s.Angle)
	w2sin := s.AngularVelocity * s.AngularVelocity * sin

	angAcc := (p.Gravity*sin*m - (force+ml*w2sin)*cos) /
		(p.PoleLength * (m - p.PoleMass*cos*cos))
	// The two ml*w2sin terms cancel.
	linAcc := (force + ml*w2sin + ml*angAcc*cos - ml*w2sin) / m

	return CartPoleState{
		Position:        s.Position + s.Velocity*dt,
		Angle:           NormalizeAngle(s.Angle + s.AngularVelocity*dt),
		Velocity:        s.Velocity + linAcc*dt,
		AngularVelocity: s.AngularVelocity + angAcc*dt,
		Score:           s.Score + 1,
	}
}

// OutOfBounds reports whether s violates the run-ending limits.
func (p *CartPoleParams) OutOfBounds(s CartPoleState) bool {
	return math.Abs(s.Position) > p.PositionLimit || math.Abs(s.Angle) > p.AngleLimit
}

// Energy returns kinetic plus potential energy, with the pole pivot as the
// potential reference.
func (p *CartPoleParams) Energy(s CartPoleState) float64 {
	tipVX := s.Velocity + p.PoleLength*s.AngularVelocity*math.Cos(s.Angle)
	tipVY := p.PoleLength * s.AngularVelocity * math.Sin(s.Angle)
	ke := 0.5*p.CartMass*s.Velocity*s.Velocity +
		0.5*p.PoleMass*(tipVX*tipVX+tipVY*tipVY)
	pe := p.PoleMass * p.Gravity * p.PoleLength * math.Cos(s.Angle)
	return ke + pe
}
