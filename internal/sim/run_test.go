package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/chantakan/2d-drone-sim/internal/physics"
)

func TestRunCollectsSnapshots(t *testing.T) {
	s, err := NewCartPole(CartPoleOptions{Initial: physics.CartPoleState{Angle: 0.01}, Dt: testDt})
	if err != nil {
		t.Fatalf("NewCartPole: %v", err)
	}

	var seen []int
	obs := ObserverFunc(func(snap Snapshot) { seen = append(seen, snap.Tick) })

	res, err := Run(context.Background(), s, 50, obs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Snapshots) != 51 {
		t.Fatalf("snapshot count = %d, want 51", len(res.Snapshots))
	}
	if res.Snapshots[0].Tick != 0 {
		t.Errorf("first snapshot tick = %d, want 0", res.Snapshots[0].Tick)
	}
	if res.Final().Tick != 50 {
		t.Errorf("final tick = %d, want 50", res.Final().Tick)
	}
	if res.Halted() {
		t.Error("run reported a halt")
	}

	if len(seen) != 50 {
		t.Fatalf("observer saw %d ticks, want 50", len(seen))
	}
	for i, tick := range seen {
		if tick != i+1 {
			t.Fatalf("observer tick %d = %d, want %d", i, tick, i+1)
		}
	}
}

func TestRunStopsOnHalt(t *testing.T) {
	s, err := NewCartPole(CartPoleOptions{Initial: physics.CartPoleState{Position: 2.3}, Dt: testDt})
	if err != nil {
		t.Fatalf("NewCartPole: %v", err)
	}
	s.SetManualForce(15)

	res, err := Run(context.Background(), s, 10000)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Halted() {
		t.Fatal("run did not report the halt")
	}
	if len(res.Snapshots) >= 10001 {
		t.Errorf("halt did not cut the run short: %d snapshots", len(res.Snapshots))
	}

	// The terminal entry repeats the last good state with the flag set.
	final := res.Final()
	prev := res.Snapshots[len(res.Snapshots)-2]
	if final.Tick != prev.Tick || final.Cart != prev.Cart {
		t.Errorf("terminal snapshot advanced past the last good state:\n got %+v\nprev %+v", final, prev)
	}
}

func TestRunHonorsContext(t *testing.T) {
	s, err := NewCartPole(CartPoleOptions{Dt: testDt})
	if err != nil {
		t.Fatalf("NewCartPole: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, s, 100)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled underneath", err)
	}
	var rerr *RunError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %T, want *RunError", err)
	}
	if rerr.Tick != 0 {
		t.Errorf("interrupted at tick %d, want 0", rerr.Tick)
	}
	if len(res.Snapshots) != 1 {
		t.Errorf("partial result has %d snapshots, want just the initial one", len(res.Snapshots))
	}
}
