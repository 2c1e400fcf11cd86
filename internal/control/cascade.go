package control

import (
	"math"

	"github.com/chantakan/2d-drone-sim/internal/physics"
)

// Fixed output bounds of the three drone loops. The horizontal loop's
// output is an angle, so its bound doubles as the steepest commanded
// lean.
const (
	VerticalLimit   = 2.0
	HorizontalLimit = math.Pi / 6
	AttitudeLimit   = 1.0
)

// Loop names one of the cascade's three controllers, for targeted gain
// updates and display.
type Loop int

const (
	LoopVertical Loop = iota
	LoopHorizontal
	LoopAttitude
)

func (l Loop) String() string {
	switch l {
	case LoopVertical:
		return "vertical"
	case LoopHorizontal:
		return "horizontal"
	case LoopAttitude:
		return "attitude"
	}
	return "unknown"
}

// Cascade is the drone autopilot. Two outer position loops run first;
// the horizontal one's output, negated, becomes the rotation setpoint
// for the inner attitude loop, whose output splits the rotors apart.
type Cascade struct {
	vertical   *PID
	horizontal *PID
	attitude   *PID
	baseThrust float64
	maxThrust  float64
	targetX    float64
	targetY    float64
}

func NewCascade(vertical, horizontal, attitude Gains, baseThrust, maxThrust, targetX, targetY float64) *Cascade {
	return &Cascade{
		vertical:   NewPID(vertical, -VerticalLimit, VerticalLimit),
		horizontal: NewPID(horizontal, -HorizontalLimit, HorizontalLimit),
		attitude:   NewPID(attitude, -AttitudeLimit, AttitudeLimit),
		baseThrust: baseThrust,
		maxThrust:  maxThrust,
		targetX:    targetX,
		targetY:    targetY,
	}
}

// Thrusts runs one cascade pass against the current state and mixes the
// loop outputs into per-rotor commands, each held inside [0, maxThrust].
func (c *Cascade) Thrusts(s physics.DroneState, dt float64) (left, right float64) {
	vertical := c.vertical.Update(c.targetY, s.Y, dt)
	targetRotation := -c.horizontal.Update(c.targetX, s.X, dt)
	attitude := c.attitude.Update(targetRotation, s.Rotation, dt)

	left = clamp(c.baseThrust+vertical+attitude, 0, c.maxThrust)
	right = clamp(c.baseThrust+vertical-attitude, 0, c.maxThrust)
	return left, right
}

// Reset clears the transient state of all three loops.
func (c *Cascade) Reset() {
	c.vertical.Reset()
	c.horizontal.Reset()
	c.attitude.Reset()
}

func (c *Cascade) SetTarget(x, y float64) {
	c.targetX = x
	c.targetY = y
}

func (c *Cascade) Target() (x, y float64) {
	return c.targetX, c.targetY
}

func (c *Cascade) loop(l Loop) *PID {
	switch l {
	case LoopHorizontal:
		return c.horizontal
	case LoopAttitude:
		return c.attitude
	default:
		return c.vertical
	}
}

func (c *Cascade) SetGains(l Loop, g Gains) {
	c.loop(l).SetGains(g)
}

func (c *Cascade) Gains(l Loop) Gains {
	return c.loop(l).Gains()
}
