package disturbance

import (
	"math"
	"testing"
)

func TestWindDisabledIsZero(t *testing.T) {
	g := NewGenerator(Config{Wind: WindConfig{BaseSpeed: 5, GustMagnitude: 3}}, 1)

	for i := 0; i < 10; i++ {
		if f := g.Wind(0.02); f != 0 {
			t.Fatalf("disabled wind should be zero, got %f", f)
		}
	}
	if g.Clock() != 0 {
		t.Errorf("disabled wind should freeze the clock, got %f", g.Clock())
	}
}

func TestWindWithoutTurbulenceIsDeterministic(t *testing.T) {
	cfg := Config{Wind: WindConfig{
		Enabled:       true,
		BaseSpeed:     2,
		GustFrequency: 0.5,
		GustMagnitude: 3,
	}}
	g := NewGenerator(cfg, 1)

	clock := 0.0
	for i := 0; i < 100; i++ {
		got := g.Wind(0.02)
		clock += 0.02
		want := 2 + 3*math.Sin(2*math.Pi*0.5*clock)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("tick %d: expected %f, got %f", i, want, got)
		}
	}
}

func TestWindTurbulenceBounded(t *testing.T) {
	cfg := Config{Wind: WindConfig{
		Enabled:             true,
		BaseSpeed:           1,
		GustFrequency:       0.2,
		GustMagnitude:       2,
		TurbulenceIntensity: 0.7,
	}}
	g := NewGenerator(cfg, 42)

	clock := 0.0
	for i := 0; i < 1000; i++ {
		got := g.Wind(0.02)
		clock += 0.02
		calm := 1 + 2*math.Sin(2*math.Pi*0.2*clock)
		if math.Abs(got-calm) > 0.7+1e-12 {
			t.Fatalf("tick %d: turbulence %f beyond intensity 0.7", i, got-calm)
		}
	}
}

func TestWindClockAdvances(t *testing.T) {
	g := NewGenerator(Config{Wind: WindConfig{Enabled: true}}, 1)

	for i := 0; i < 5; i++ {
		g.Wind(0.02)
	}
	if math.Abs(g.Clock()-0.1) > 1e-12 {
		t.Errorf("expected clock 0.1 after 5 ticks, got %f", g.Clock())
	}
}

func TestThrustNoiseDisabledIsNeutral(t *testing.T) {
	g := NewGenerator(Config{ThrustNoise: ThrustNoiseConfig{Magnitude: 0.5}}, 1)

	l, r := g.ThrustNoise()
	if l != 1 || r != 1 {
		t.Errorf("disabled noise should be neutral, got %f and %f", l, r)
	}
}

func TestThrustNoiseBounded(t *testing.T) {
	g := NewGenerator(Config{ThrustNoise: ThrustNoiseConfig{Enabled: true, Magnitude: 0.2}}, 7)

	for i := 0; i < 1000; i++ {
		l, r := g.ThrustNoise()
		if l < 0.8-1e-12 || l > 1.2+1e-12 {
			t.Fatalf("left factor %f outside [0.8, 1.2]", l)
		}
		if r < 0.8-1e-12 || r > 1.2+1e-12 {
			t.Fatalf("right factor %f outside [0.8, 1.2]", r)
		}
	}
}

func TestThrustNoiseRotorsIndependent(t *testing.T) {
	g := NewGenerator(Config{ThrustNoise: ThrustNoiseConfig{Enabled: true, Magnitude: 0.2}}, 7)

	for i := 0; i < 100; i++ {
		if l, r := g.ThrustNoise(); l != r {
			return
		}
	}
	t.Error("both rotors drew identical noise 100 times in a row")
}

func TestSameSeedSameRun(t *testing.T) {
	cfg := Config{
		Wind:        WindConfig{Enabled: true, BaseSpeed: 1, GustFrequency: 0.3, GustMagnitude: 2, TurbulenceIntensity: 0.5},
		ThrustNoise: ThrustNoiseConfig{Enabled: true, Magnitude: 0.1},
	}
	a := NewGenerator(cfg, 99)
	b := NewGenerator(cfg, 99)

	for i := 0; i < 200; i++ {
		if wa, wb := a.Wind(0.02), b.Wind(0.02); wa != wb {
			t.Fatalf("tick %d: wind diverged, %f vs %f", i, wa, wb)
		}
		al, ar := a.ThrustNoise()
		bl, br := b.ThrustNoise()
		if al != bl || ar != br {
			t.Fatalf("tick %d: noise diverged", i)
		}
	}
}

func TestResetReplaysTheRun(t *testing.T) {
	cfg := Config{
		Wind:        WindConfig{Enabled: true, BaseSpeed: 1, GustFrequency: 0.3, GustMagnitude: 2, TurbulenceIntensity: 0.5},
		ThrustNoise: ThrustNoiseConfig{Enabled: true, Magnitude: 0.1},
	}
	g := NewGenerator(cfg, 5)

	first := make([]float64, 50)
	for i := range first {
		first[i] = g.Wind(0.02)
	}

	g.Reset()
	if g.Clock() != 0 {
		t.Fatalf("reset should rewind the clock, got %f", g.Clock())
	}
	for i := range first {
		if again := g.Wind(0.02); again != first[i] {
			t.Fatalf("tick %d: replay diverged, %f vs %f", i, again, first[i])
		}
	}
}

func TestSetConfigTogglesWithoutClearingClock(t *testing.T) {
	cfg := Config{Wind: WindConfig{Enabled: true, BaseSpeed: 1}}
	g := NewGenerator(cfg, 3)

	for i := 0; i < 10; i++ {
		g.Wind(0.02)
	}
	was := g.Clock()

	cfg.Wind.Enabled = false
	g.SetConfig(cfg)
	g.Wind(0.02)
	if g.Clock() != was {
		t.Errorf("disabling wind should freeze the clock at %f, got %f", was, g.Clock())
	}

	cfg.Wind.Enabled = true
	g.SetConfig(cfg)
	g.Wind(0.02)
	if g.Clock() <= was {
		t.Errorf("re-enabled wind should advance the clock past %f, got %f", was, g.Clock())
	}
}
