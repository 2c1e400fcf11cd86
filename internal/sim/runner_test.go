package sim

import (
	"testing"
	"time"

	"github.com/edaniels/golog"

	"github.com/chantakan/2d-drone-sim/internal/physics"
)

// upright cart-pole with no force applied, so the loop can run
// indefinitely without tripping the bounds policy.
func newIdleSession(t *testing.T) *CartPoleSession {
	t.Helper()
	s, err := NewCartPole(CartPoleOptions{Dt: testDt})
	if err != nil {
		t.Fatalf("NewCartPole: %v", err)
	}
	return s
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRunnerStartStop(t *testing.T) {
	s := newIdleSession(t)
	r := NewRunner(s, golog.NewTestLogger(t))

	if snap := r.Snapshot(); snap.Tick != 0 || snap.Model != ModelCartPole {
		t.Fatalf("seed snapshot = %+v, want tick 0 for %q", snap, ModelCartPole)
	}
	if r.Running() {
		t.Fatal("runner reports running before start")
	}

	r.Start()
	r.Start() // second start is a no-op
	if !r.Running() {
		t.Fatal("runner not running after start")
	}
	waitFor(t, "first tick", func() bool { return r.Snapshot().Tick > 0 })

	r.Stop()
	if r.Running() {
		t.Fatal("runner reports running after stop")
	}
	tick := r.Snapshot().Tick
	time.Sleep(60 * time.Millisecond)
	if got := r.Snapshot().Tick; got != tick {
		t.Errorf("ticks advanced after stop: %d -> %d", tick, got)
	}
	r.Stop() // second stop is a no-op
}

func TestRunnerToggle(t *testing.T) {
	r := NewRunner(newIdleSession(t), golog.NewTestLogger(t))

	r.Toggle()
	if !r.Running() {
		t.Fatal("toggle from idle did not start")
	}
	r.Toggle()
	if r.Running() {
		t.Fatal("toggle from running did not stop")
	}
}

func TestRunnerDoWhileIdle(t *testing.T) {
	s := newIdleSession(t)
	r := NewRunner(s, golog.NewTestLogger(t))

	r.Do(func() { s.SetPIDEnabled(true) })
	if !r.Snapshot().PIDOn {
		t.Error("idle Do did not refresh the published snapshot")
	}
}

func TestRunnerDoAppliesAtTickBoundary(t *testing.T) {
	s := newIdleSession(t)
	r := NewRunner(s, golog.NewTestLogger(t))

	r.Start()
	defer r.Stop()
	waitFor(t, "first tick", func() bool { return r.Snapshot().Tick > 0 })

	r.Do(func() { s.SetManualForce(-5) })
	waitFor(t, "queued command to land", func() bool { return r.Snapshot().Force == -5 })
}

func TestRunnerStopsOnHalt(t *testing.T) {
	s, err := NewCartPole(CartPoleOptions{Initial: physics.CartPoleState{Position: 2.3}, Dt: testDt})
	if err != nil {
		t.Fatalf("NewCartPole: %v", err)
	}
	s.SetManualForce(15)
	r := NewRunner(s, golog.NewTestLogger(t))

	r.Start()
	waitFor(t, "halt to stop the loop", func() bool { return !r.Running() })
	if !r.Snapshot().Halted {
		t.Fatal("published snapshot does not report the halt")
	}

	r.Start()
	if r.Running() {
		t.Fatal("halted session restarted without a reset")
	}

	r.Reset()
	r.Do(func() { s.SetManualForce(0) })
	if snap := r.Snapshot(); snap.Halted || snap.Tick != 0 {
		t.Fatalf("snapshot after reset = %+v, want a fresh one", snap)
	}

	r.Start()
	defer r.Stop()
	waitFor(t, "ticks after reset", func() bool { return r.Snapshot().Tick > 0 })
}

func TestRunnerNotifiesObservers(t *testing.T) {
	r := NewRunner(newIdleSession(t), golog.NewTestLogger(t))

	ch := make(chan Snapshot, 64)
	r.AddObserver(ObserverFunc(func(snap Snapshot) {
		select {
		case ch <- snap:
		default:
		}
	}))

	r.Start()
	seen := make([]Snapshot, 0, 5)
	timeout := time.After(3 * time.Second)
	for len(seen) < 5 {
		select {
		case snap := <-ch:
			seen = append(seen, snap)
		case <-timeout:
			t.Fatalf("observer saw %d ticks before timing out", len(seen))
		}
	}
	r.Stop()

	for i, snap := range seen {
		if snap.Tick != i+1 {
			t.Fatalf("observed tick %d = %d, want %d", i, snap.Tick, i+1)
		}
	}
}
