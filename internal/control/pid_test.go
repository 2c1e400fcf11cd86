package control_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chantakan/2d-drone-sim/internal/control"
)

var _ = Describe("PID", func() {
	const dt = 0.02

	It("reduces to pure proportional control with ki and kd zero", func() {
		pid := control.NewPID(control.Gains{Kp: 3}, -10, 10)

		Expect(pid.Update(1, 0, dt)).To(BeNumerically("~", 3, 1e-12))
		Expect(pid.Update(0, 2, dt)).To(BeNumerically("~", -6, 1e-12))
		Expect(pid.Update(5, 0, dt)).To(Equal(10.0), "saturated high")
		Expect(pid.Update(-5, 0, dt)).To(Equal(-10.0), "saturated low")
	})

	It("exposes the derivative of the error", func() {
		pid := control.NewPID(control.Gains{Kd: 0.5}, -100, 100)

		Expect(pid.Update(1, 0, 0.1)).To(BeNumerically("~", 5, 1e-12))
		Expect(pid.Update(1, 0, 0.1)).To(BeNumerically("~", 0, 1e-12), "steady error has zero slope")
	})

	It("keeps the output inside its bounds under sustained error", func() {
		pid := control.NewPID(control.Gains{Kp: 2, Ki: 5, Kd: 0.1}, -1, 1)

		for i := 0; i < 10000; i++ {
			out := pid.Update(100, 0, dt)
			Expect(out).To(And(BeNumerically(">=", -1), BeNumerically("<=", 1)))
		}
	})

	It("recovers promptly once the error flips after saturation", func() {
		pid := control.NewPID(control.Gains{Kp: 1, Ki: 2}, -1, 1)

		for i := 0; i < 5000; i++ {
			pid.Update(50, 0, dt)
		}
		out := pid.Update(0, 50, dt)
		Expect(out).To(Equal(-1.0), "held-back integral must not delay reversal")
	})

	It("holds the integral back with negative gains too", func() {
		pid := control.NewPID(control.Gains{Kp: -2, Ki: -1, Kd: -0.1}, -5, 5)

		for i := 0; i < 5000; i++ {
			out := pid.Update(10, 0, dt)
			Expect(out).To(And(BeNumerically(">=", -5), BeNumerically("<=", 5)))
		}
		Expect(pid.Update(-10, 0, dt)).To(Equal(5.0), "reversal must reach the far bound at once")
	})

	It("matches a fresh controller after reset", func() {
		used := control.NewPID(control.Gains{Kp: 1.2, Ki: 0.4, Kd: 0.05}, -5, 5)
		fresh := control.NewPID(control.Gains{Kp: 1.2, Ki: 0.4, Kd: 0.05}, -5, 5)

		for i := 0; i < 50; i++ {
			used.Update(1, 0.3, dt)
		}
		used.Reset()

		Expect(used.Update(0.7, 0.1, dt)).To(Equal(fresh.Update(0.7, 0.1, dt)))
	})

	It("keeps a finite integral when ki is zero", func() {
		pid := control.NewPID(control.Gains{Kp: 1}, -1, 1)

		var out float64
		for i := 0; i < 1000; i++ {
			out = pid.Update(10, 0, dt)
		}
		Expect(out).To(Equal(1.0))
		Expect(out).NotTo(BeNaN())
	})

	It("keeps integral history across gain changes", func() {
		pid := control.NewPID(control.Gains{Kp: 1, Ki: 1}, -100, 100)

		for i := 0; i < 3; i++ {
			pid.Update(1, 0, 0.1)
		}
		pid.SetGains(control.Gains{Kp: 2, Ki: 1})

		// integral was 0.3 and grows to 0.4 on this call
		Expect(pid.Update(1, 0, 0.1)).To(BeNumerically("~", 2.4, 1e-12))
		Expect(pid.Gains()).To(Equal(control.Gains{Kp: 2, Ki: 1}))
	})

	It("serves the bounded P+I term when dt is not positive", func() {
		poked := control.NewPID(control.Gains{Kp: 1, Ki: 1}, -100, 100)
		clean := control.NewPID(control.Gains{Kp: 1, Ki: 1}, -100, 100)

		for i := 0; i < 3; i++ {
			poked.Update(1, 0, 0.1)
			clean.Update(1, 0, 0.1)
		}

		Expect(poked.Update(1, 0, 0)).To(BeNumerically("~", 1.3, 1e-12))
		Expect(poked.Update(1, 0, -1)).To(BeNumerically("~", 1.3, 1e-12))

		// the degenerate calls must leave no trace
		Expect(poked.Update(1, 0, 0.1)).To(Equal(clean.Update(1, 0, 0.1)))
	})
})
