package metrics

import (
	"math"

	"github.com/chantakan/2d-drone-sim/internal/sim"
)

// ControlEffort averages the absolute actuation per tick: |force| for
// the cart, |left|+|right| for the drone. High effort with a steady
// state usually means the gains are fighting themselves.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (c *ControlEffort) Name() string { return c.name }

func (c *ControlEffort) OnTick(snap sim.Snapshot) {
	switch snap.Model {
	case sim.ModelDrone:
		c.sum += math.Abs(snap.Left) + math.Abs(snap.Right)
	default:
		c.sum += math.Abs(snap.Force)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}
