package physics

import (
	"fmt"
	"math"
)

// DroneState is the planar twin-rotor state, produced fresh each step.
// Y grows upward; losing altitude means Y heading for the lower wall.
type DroneState struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	VX              float64 `json:"vx"`
	VY              float64 `json:"vy"`
	Rotation        float64 `json:"rotation"`
	AngularVelocity float64 `json:"angular_velocity"`
}

// DroneParams covers both the plain vehicle and the extended one: a
// center-of-mass offset and per-rotor efficiencies default to neutral
// values, so the plain vehicle is just this model left at its defaults.
type DroneParams struct {
	Mass            float64
	Inertia         float64
	Gravity         float64
	ThrustDistance  float64
	ComOffset       float64
	LeftEfficiency  float64
	RightEfficiency float64
	DragCoeff       float64
	AngularDrag     float64

	// Rectangular flight domain. Hitting a wall pins that axis and
	// absorbs its velocity entirely for the step.
	MinX, MaxX float64
	MinY, MaxY float64
}

func NewDroneParams() *DroneParams {
	return &DroneParams{
		Mass:            1.0,
		Inertia:         0.1,
		Gravity:         9.8,
		ThrustDistance:  0.25,
		ComOffset:       0.0,
		LeftEfficiency:  1.0,
		RightEfficiency: 1.0,
		DragCoeff:       0.01,
		AngularDrag:     0.05,
		MinX:            10,
		MaxX:            590,
		MinY:            10,
		MaxY:            290,
	}
}

func (p *DroneParams) Validate() error {
	if p.Mass <= 0 {
		return fmt.Errorf("physics: mass must be positive, got %g", p.Mass)
	}
	if p.Inertia <= 0 {
		return fmt.Errorf("physics: inertia must be positive, got %g", p.Inertia)
	}
	if p.ThrustDistance <= 0 {
		return fmt.Errorf("physics: thrust distance must be positive, got %g", p.ThrustDistance)
	}
	if p.LeftEfficiency < 0 || p.RightEfficiency < 0 {
		return fmt.Errorf("physics: rotor efficiency must not be negative, got %g and %g", p.LeftEfficiency, p.RightEfficiency)
	}
	if p.MinX >= p.MaxX || p.MinY >= p.MaxY {
		return fmt.Errorf("physics: malformed flight domain [%g,%g]x[%g,%g]", p.MinX, p.MaxX, p.MinY, p.MaxY)
	}
	return nil
}

// Step advances the drone one step. Commanded thrusts are scaled by rotor
// efficiency and the per-rotor noise factors before they act; negative
// commands are treated as zero since the rotors cannot pull. Angular
// velocity integrates first and the new value advances the rotation, then
// the same ordering applies to the linear axes. Drag is quadratic and
// sign-correct. Wall contact clamps the position and zeroes that axis's
// velocity, with no bounce.
func (p *DroneParams) Step(s DroneState, left, right, wind, noiseL, noiseR, dt float64) DroneState {
	effL := math.Max(0, left) * p.LeftEfficiency * noiseL
	effR := math.Max(0, right) * p.RightEfficiency * noiseR

	torque := effR*(p.ThrustDistance+p.ComOffset) - effL*(p.ThrustDistance-p.ComOffset)
	angAcc := (torque - p.AngularDrag*s.AngularVelocity) / p.Inertia
	w := s.AngularVelocity + angAcc*dt
	rot := s.Rotation + w*dt

	total := effL + effR
	fx := total*math.Sin(rot) + wind
	fy := total * math.Cos(rot)

	dragX := p.DragCoeff * s.VX * math.Abs(s.VX)
	dragY := p.DragCoeff * s.VY * math.Abs(s.VY)

	vx := s.VX + (fx-dragX)/p.Mass*dt
	vy := s.VY + (fy-p.Mass*p.Gravity-dragY)/p.Mass*dt
	x := s.X + vx*dt
	y := s.Y + vy*dt

	if x < p.MinX {
		x, vx = p.MinX, 0
	} else if x > p.MaxX {
		x, vx = p.MaxX, 0
	}
	if y < p.MinY {
		y, vy = p.MinY, 0
	} else if y > p.MaxY {
		y, vy = p.MaxY, 0
	}

	return DroneState{
		X:               x,
		Y:               y,
		VX:              vx,
		VY:              vy,
		Rotation:        rot,
		AngularVelocity: w,
	}
}

// HoverThrust is the per-rotor thrust that balances gravity at neutral
// efficiency.
func (p *DroneParams) HoverThrust() float64 {
	return p.Mass * p.Gravity / 2.0
}

func (p *DroneParams) Energy(s DroneState) float64 {
	ke := 0.5 * p.Mass * (s.VX*s.VX + s.VY*s.VY)
	keRot := 0.5 * p.Inertia * s.AngularVelocity * s.AngularVelocity
	pe := p.Mass * p.Gravity * (s.Y - p.MinY)
	return ke + keRot + pe
}
