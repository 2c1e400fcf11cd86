package control_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chantakan/2d-drone-sim/internal/control"
	"github.com/chantakan/2d-drone-sim/internal/physics"
)

var _ = Describe("Cascade", func() {
	const (
		dt         = 0.02
		baseThrust = 4.9
		maxThrust  = 100.0
	)

	It("mixes base and vertical output into both rotors evenly", func() {
		c := control.NewCascade(
			control.Gains{Kp: 1},
			control.Gains{},
			control.Gains{},
			baseThrust, maxThrust, 300, 150,
		)

		// 10 above the hover point saturates the vertical loop at 2
		left, right := c.Thrusts(physics.DroneState{X: 300, Y: 140}, dt)
		Expect(left).To(BeNumerically("~", baseThrust+2, 1e-12))
		Expect(right).To(Equal(left))
	})

	It("splits the rotors to fight an attitude error", func() {
		c := control.NewCascade(
			control.Gains{},
			control.Gains{},
			control.Gains{Kp: -2},
			baseThrust, maxThrust, 300, 150,
		)

		s := physics.DroneState{X: 300, Y: 150, Rotation: 0.5}
		left, right := c.Thrusts(s, dt)
		Expect(left).To(BeNumerically(">", right))

		// and the resulting torque really does push the body back
		next := physics.NewDroneParams().Step(s, left, right, 0, 1, 1, dt)
		Expect(next.AngularVelocity).To(BeNumerically("<", 0))
	})

	It("leans toward a horizontal target through the negated setpoint", func() {
		c := control.NewCascade(
			control.Gains{},
			control.Gains{Kp: -0.02},
			control.Gains{Kp: -2},
			baseThrust, maxThrust, 400, 150,
		)

		// drone sits left of the target; the inner loop must bank it right
		s := physics.DroneState{X: 300, Y: 150}
		left, right := c.Thrusts(s, dt)
		Expect(right).To(BeNumerically(">", left))

		next := physics.NewDroneParams().Step(s, left, right, 0, 1, 1, dt)
		Expect(next.AngularVelocity).To(BeNumerically(">", 0))
	})

	It("caps the horizontal setpoint at the lean limit", func() {
		c := control.NewCascade(
			control.Gains{},
			control.Gains{Kp: -10},
			control.Gains{Kp: 1},
			baseThrust, maxThrust, 590, 150,
		)

		// a huge position error cannot ask for more than pi/6 of lean;
		// with attitude kp=1 the raw differential is the setpoint itself
		left, right := c.Thrusts(physics.DroneState{X: 10, Y: 150}, dt)
		Expect(left - right).To(BeNumerically("~", 2*math.Pi/6, 1e-12))
	})

	It("never commands negative thrust", func() {
		c := control.NewCascade(
			control.Gains{Kp: 5},
			control.Gains{},
			control.Gains{},
			0.5, maxThrust, 300, 150,
		)

		left, right := c.Thrusts(physics.DroneState{X: 300, Y: 400}, dt)
		Expect(left).To(Equal(0.0))
		Expect(right).To(Equal(0.0))
	})

	It("caps the mix at the thrust ceiling", func() {
		c := control.NewCascade(
			control.Gains{Kp: 5},
			control.Gains{},
			control.Gains{Kp: -2},
			baseThrust, 6, 300, 150,
		)

		left, right := c.Thrusts(physics.DroneState{X: 300, Y: 100, Rotation: -1}, dt)
		Expect(right).To(Equal(6.0))
		Expect(left).To(BeNumerically("<=", 6))
	})

	It("clears loop transients on reset", func() {
		gains := [3]control.Gains{{Kp: 1, Ki: 0.5}, {Kp: -0.02, Ki: 0.01}, {Kp: -2, Ki: 0.3}}
		used := control.NewCascade(gains[0], gains[1], gains[2], baseThrust, maxThrust, 300, 150)
		fresh := control.NewCascade(gains[0], gains[1], gains[2], baseThrust, maxThrust, 300, 150)

		for i := 0; i < 100; i++ {
			used.Thrusts(physics.DroneState{X: 120, Y: 40, Rotation: 0.3}, dt)
		}
		used.Reset()

		s := physics.DroneState{X: 250, Y: 180, Rotation: -0.1}
		ul, ur := used.Thrusts(s, dt)
		fl, fr := fresh.Thrusts(s, dt)
		Expect(ul).To(Equal(fl))
		Expect(ur).To(Equal(fr))
	})

	It("retargets in place", func() {
		c := control.NewCascade(control.Gains{}, control.Gains{}, control.Gains{}, baseThrust, maxThrust, 300, 150)
		c.SetTarget(420, 90)
		x, y := c.Target()
		Expect(x).To(Equal(420.0))
		Expect(y).To(Equal(90.0))
	})

	It("updates one loop's gains without touching the others", func() {
		c := control.NewCascade(control.Gains{Kp: 1}, control.Gains{Kp: 2}, control.Gains{Kp: 3}, baseThrust, maxThrust, 300, 150)
		c.SetGains(control.LoopAttitude, control.Gains{Kp: 9})

		Expect(c.Gains(control.LoopVertical)).To(Equal(control.Gains{Kp: 1}))
		Expect(c.Gains(control.LoopHorizontal)).To(Equal(control.Gains{Kp: 2}))
		Expect(c.Gains(control.LoopAttitude)).To(Equal(control.Gains{Kp: 9}))
	})
})

var _ = Describe("Balance", func() {
	const dt = 0.02

	It("pushes the cart under a falling pole", func() {
		b := control.NewBalance(control.Gains{Kp: 80}, 15)
		Expect(b.Force(0.1, dt)).To(BeNumerically("~", 8, 1e-12))
		Expect(b.Force(-0.1, dt)).To(BeNumerically("~", -8, 1e-12))
	})

	It("bounds the force like the actuator", func() {
		b := control.NewBalance(control.Gains{Kp: 80}, 15)
		Expect(b.Force(1.0, dt)).To(Equal(15.0))
		Expect(b.Force(-1.0, dt)).To(Equal(-15.0))
	})

	It("matches a fresh controller after reset", func() {
		used := control.NewBalance(control.Gains{Kp: 80, Ki: 2, Kd: 20}, 15)
		fresh := control.NewBalance(control.Gains{Kp: 80, Ki: 2, Kd: 20}, 15)

		for i := 0; i < 40; i++ {
			used.Force(0.2, dt)
		}
		used.Reset()

		Expect(used.Force(0.05, dt)).To(Equal(fresh.Force(0.05, dt)))
	})
})
