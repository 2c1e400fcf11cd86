package control

// Balance is the cart-pole autopilot: one loop holding the pole angle at
// zero. Its output is negated on the way out so that positive gains push
// the cart under a falling pole.
type Balance struct {
	pid *PID
}

func NewBalance(g Gains, maxForce float64) *Balance {
	return &Balance{pid: NewPID(g, -maxForce, maxForce)}
}

// Force returns the horizontal cart force for the current pole angle.
func (b *Balance) Force(angle, dt float64) float64 {
	return -b.pid.Update(0, angle, dt)
}

func (b *Balance) Reset() {
	b.pid.Reset()
}

func (b *Balance) SetGains(g Gains) {
	b.pid.SetGains(g)
}

func (b *Balance) Gains() Gains {
	return b.pid.Gains()
}
