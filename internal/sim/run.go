package sim

import "context"

// Result collects a batch run. Snapshots[0] is the state before any
// tick; one more entry follows per completed tick, plus a terminal
// entry if the run halted.
type Result struct {
	Snapshots []Snapshot
}

// Final returns the last recorded snapshot.
func (r *Result) Final() Snapshot {
	return r.Snapshots[len(r.Snapshots)-1]
}

// Halted reports whether the run ended on the failure policy rather
// than the tick budget.
func (r *Result) Halted() bool {
	return len(r.Snapshots) > 0 && r.Final().Halted
}

// Run advances the session through up to ticks steps as fast as the CPU
// allows, with no wall-clock pacing. The context is consulted between
// steps only; an interrupted run returns what it gathered along with a
// RunError wrapping the cause. A halt ends the run early and is not an
// error.
func Run(ctx context.Context, s Session, ticks int, obs ...Observer) (*Result, error) {
	res := &Result{Snapshots: make([]Snapshot, 0, ticks+1)}
	res.Snapshots = append(res.Snapshots, s.Snapshot())

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			last := res.Final()
			return res, &RunError{Tick: last.Tick, Time: last.Time, Wrapped: ctx.Err()}
		default:
		}

		s.Tick()
		snap := s.Snapshot()
		res.Snapshots = append(res.Snapshots, snap)
		for _, o := range obs {
			o.OnTick(snap)
		}
		if s.Halted() {
			break
		}
	}
	return res, nil
}
