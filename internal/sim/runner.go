package sim

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"
)

// Runner paces a Session against the wall clock: one pipeline pass per
// tick period, the period derived from the session's dt. It is the
// exclusive worker for its session; hosts on other goroutines interact
// only through Do, Snapshot, and the lifecycle methods, all safe for
// concurrent use.
type Runner struct {
	session Session
	logger  golog.Logger
	period  time.Duration

	mu      sync.Mutex
	queue   []func()
	obs     []Observer
	snap    Snapshot
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRunner(s Session, logger golog.Logger) *Runner {
	return &Runner{
		session: s,
		logger:  logger,
		period:  time.Duration(s.Dt() * float64(time.Second)),
		snap:    s.Snapshot(),
	}
}

// Do hands fn to the simulation goroutine, which runs it at the next
// tick boundary, before the tick itself. While the runner is idle fn
// runs right here instead. Every mutation of the session after
// construction must travel this path; fn must not block.
func (r *Runner) Do(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		r.queue = append(r.queue, fn)
		return
	}
	fn()
	r.snap = r.session.Snapshot()
}

// AddObserver registers o for every completed tick. Observers run on
// the simulation goroutine and must return quickly.
func (r *Runner) AddObserver(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, o)
}

// Snapshot returns the view published at the last tick boundary.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Start launches the loop. Starting a running or halted session is a
// no-op; a halted one needs Reset first.
func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	if r.session.Halted() {
		r.logger.Debug("not starting a halted session, reset it first")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.running = true
	r.wg.Add(1)
	go r.loop(ctx)
	r.logger.Debugf("%s loop started, tick period %s", r.session.Model(), r.period)
}

// Stop winds the loop down and waits for it. An in-flight tick always
// completes first. Stopping an idle runner is a no-op.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
	r.wg.Wait()
	r.logger.Debugf("%s loop stopped at tick %d", r.session.Model(), r.Snapshot().Tick)
}

// Toggle flips between running and stopped.
func (r *Runner) Toggle() {
	if r.Running() {
		r.Stop()
	} else {
		r.Start()
	}
}

// Reset restores the session's initial state. Safe at any time; during
// a run it lands on the next tick boundary.
func (r *Runner) Reset() {
	r.Do(func() { r.session.Reset() })
}

func (r *Runner) loop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.step()
			if r.session.Halted() {
				r.mu.Lock()
				r.running = false
				cancel := r.cancel
				snap := r.snap
				r.mu.Unlock()
				cancel()
				r.logger.Infof("%s halted at tick %d", r.session.Model(), snap.Tick)
				return
			}
		}
	}
}

// step drains the command queue, then runs exactly one tick and
// publishes its snapshot.
func (r *Runner) step() {
	r.mu.Lock()
	queue := r.queue
	r.queue = nil
	r.mu.Unlock()
	for _, fn := range queue {
		fn()
	}

	r.session.Tick()
	snap := r.session.Snapshot()

	r.mu.Lock()
	r.snap = snap
	obs := make([]Observer, len(r.obs))
	copy(obs, r.obs)
	r.mu.Unlock()

	for _, o := range obs {
		o.OnTick(snap)
	}
}
