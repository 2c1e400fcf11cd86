package physics

import (
	"math"
	"testing"
)

func TestCartPoleFallsFromTilt(t *testing.T) {
	p := NewCartPoleParams()

	s0 := CartPoleState{Angle: 0.1}
	s1 := p.Step(s0, 0, 0.02)

	if s1.Score != 1 {
		t.Errorf("expected score 1 after one step, got %d", s1.Score)
	}
	if s1.AngularVelocity <= 0 {
		t.Errorf("pole should pick up speed falling, got omega %f", s1.AngularVelocity)
	}

	s2 := p.Step(s1, 0, 0.02)
	if math.Abs(s2.Angle) <= math.Abs(s1.Angle) {
		t.Errorf("pole should keep falling, angle went %f -> %f", s1.Angle, s2.Angle)
	}
}

func TestCartPoleDivergesMonotonically(t *testing.T) {
	p := NewCartPoleParams()

	s := CartPoleState{Angle: 0.1}
	prev := s.Angle
	for i := 0; i < 60; i++ {
		s = p.Step(s, 0, 0.02)
		if s.Angle < prev {
			t.Fatalf("angle should not shrink unforced, step %d: %f -> %f", i, prev, s.Angle)
		}
		prev = s.Angle
		if s.Angle > 1.4 {
			break
		}
	}
	if s.Angle <= 0.1 {
		t.Errorf("expected divergence from tilt, final angle %f", s.Angle)
	}
}

func TestCartPoleForceClamped(t *testing.T) {
	p := NewCartPoleParams()
	s := CartPoleState{Angle: 0.05}

	over := p.Step(s, 1e6, 0.02)
	max := p.Step(s, p.MaxForce, 0.02)
	if over != max {
		t.Errorf("force beyond the limit should behave as the limit: %+v vs %+v", over, max)
	}
}

func TestCartPoleScoreCounts(t *testing.T) {
	p := NewCartPoleParams()
	s := CartPoleState{Angle: 0.01}
	for i := 0; i < 5; i++ {
		s = p.Step(s, 0, 0.02)
	}
	if s.Score != 5 {
		t.Errorf("expected score 5, got %d", s.Score)
	}
}

func TestCartPoleAngleStaysNormalized(t *testing.T) {
	p := NewCartPoleParams()
	s := CartPoleState{Angle: 1.5, AngularVelocity: 40}
	for i := 0; i < 500; i++ {
		s = p.Step(s, 0, 0.02)
		if s.Angle <= -math.Pi || s.Angle > math.Pi {
			t.Fatalf("angle escaped (-pi, pi] at step %d: %f", i, s.Angle)
		}
	}
}

func TestCartPoleOutOfBounds(t *testing.T) {
	p := NewCartPoleParams()

	cases := []struct {
		name string
		s    CartPoleState
		want bool
	}{
		{"origin", CartPoleState{}, false},
		{"at position limit", CartPoleState{Position: 2.4}, false},
		{"past position limit", CartPoleState{Position: 2.41}, true},
		{"past negative limit", CartPoleState{Position: -2.41}, true},
		{"at angle limit", CartPoleState{Angle: math.Pi / 2}, false},
		{"past angle limit", CartPoleState{Angle: 1.6}, true},
		{"tipped backwards", CartPoleState{Angle: -1.6}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.OutOfBounds(tc.s); got != tc.want {
				t.Errorf("OutOfBounds(%+v) = %v, want %v", tc.s, got, tc.want)
			}
		})
	}
}

func TestCartPoleValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CartPoleParams)
	}{
		{"zero cart mass", func(p *CartPoleParams) { p.CartMass = 0 }},
		{"negative pole mass", func(p *CartPoleParams) { p.PoleMass = -1 }},
		{"zero pole length", func(p *CartPoleParams) { p.PoleLength = 0 }},
		{"zero max force", func(p *CartPoleParams) { p.MaxForce = 0 }},
		{"zero bounds", func(p *CartPoleParams) { p.PositionLimit = 0 }},
	}

	if err := NewCartPoleParams().Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewCartPoleParams()
			tc.mutate(p)
			if err := p.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestCartPoleEnergy(t *testing.T) {
	p := NewCartPoleParams()

	upright := p.Energy(CartPoleState{})
	want := p.PoleMass * p.Gravity * p.PoleLength
	if math.Abs(upright-want) > 1e-9 {
		t.Errorf("upright rest energy should be %f, got %f", want, upright)
	}

	moving := p.Energy(CartPoleState{Velocity: 2})
	if moving <= upright {
		t.Errorf("kinetic term should raise energy: %f vs %f", moving, upright)
	}
}
