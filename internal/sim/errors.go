package sim

import "errors"

var (
	// ErrInvalidTimeStep rejects a non-positive dt before it can reach
	// a derivative term.
	ErrInvalidTimeStep = errors.New("sim: time step must be positive")
)

// RunError wraps a batch-run interruption with its position in the run.
type RunError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *RunError) Error() string {
	return e.Wrapped.Error()
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
