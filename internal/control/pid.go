package control

// Gains bundles the three PID terms so they travel together through
// config, commands, and display.
type Gains struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

// PID is a single bounded-output control loop. Not safe for concurrent
// use; the owning session serializes all calls.
type PID struct {
	gains     Gains
	outMin    float64
	outMax    float64
	integral  float64
	lastError float64
}

func NewPID(g Gains, outMin, outMax float64) *PID {
	return &PID{gains: g, outMin: outMin, outMax: outMax}
}

// Update advances the loop one step and returns the bounded output.
// The integral accumulates first and is then pulled back into the range
// that keeps the P+I sum inside the output bounds, so saturation cannot
// wind it up. With ki == 0 that pullback has no defined range and is
// skipped entirely. A non-positive dt would blow up the derivative term,
// so it degrades to the bounded P+I of the state already accumulated and
// leaves the accumulator untouched.
func (p *PID) Update(setpoint, measured, dt float64) float64 {
	err := setpoint - measured

	if dt <= 0 {
		return clamp(p.gains.Kp*err+p.gains.Ki*p.integral, p.outMin, p.outMax)
	}

	p.integral += err * dt
	if p.gains.Ki != 0 {
		// Dividing by a negative ki flips the interval.
		lo := (p.outMin - p.gains.Kp*err) / p.gains.Ki
		hi := (p.outMax - p.gains.Kp*err) / p.gains.Ki
		if lo > hi {
			lo, hi = hi, lo
		}
		p.integral = clamp(p.integral, lo, hi)
	}

	derivative := (err - p.lastError) / dt
	p.lastError = err

	out := p.gains.Kp*err + p.gains.Ki*p.integral + p.gains.Kd*derivative
	return clamp(out, p.outMin, p.outMax)
}

// Reset clears the integral and last error. Gains and output bounds
// survive.
func (p *PID) Reset() {
	p.integral = 0
	p.lastError = 0
}

// SetGains swaps the gains in place. The accumulator is deliberately
// kept, so live retuning does not jolt the loop.
func (p *PID) SetGains(g Gains) {
	p.gains = g
}

func (p *PID) Gains() Gains {
	return p.gains
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
