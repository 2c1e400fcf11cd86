package sim

import "github.com/chantakan/2d-drone-sim/internal/physics"

const (
	ModelCartPole = "cartpole"
	ModelDrone    = "drone"
)

// Session is one simulation's engine core: the serial
// disturbance-control-dynamics-failure pipeline plus the state it owns.
// A Session is single-threaded by contract; once a Runner drives it,
// every touch must go through the Runner.
type Session interface {
	// Model names the vehicle, one of the Model constants.
	Model() string
	// Tick runs one full pipeline pass. After a halt it does nothing.
	Tick()
	// Snapshot returns a value copy of the externally visible state.
	Snapshot() Snapshot
	// Reset restores the initial state and clears controller and
	// disturbance transients. The run may then start over.
	Reset()
	// Halted reports whether the failure policy ended the run.
	Halted() bool
	// Dt is the fixed step length in seconds; the wall-clock tick
	// period derives from it.
	Dt() float64
}

// Snapshot is the per-tick view handed to hosts: renderers, exporters,
// telemetry. It is a plain value; holding one never aliases live state.
type Snapshot struct {
	Model  string  `json:"model"`
	Tick   int     `json:"tick"`
	Time   float64 `json:"time"`
	Halted bool    `json:"halted"`
	PIDOn  bool    `json:"pid_enabled"`

	// actuation applied on the last completed tick
	Force float64 `json:"force"`
	Left  float64 `json:"left"`
	Right float64 `json:"right"`

	// disturbance picture for the last completed tick
	WindEnabled  bool    `json:"wind_enabled"`
	NoiseEnabled bool    `json:"noise_enabled"`
	Wind         float64 `json:"wind"`

	Cart    physics.CartPoleState `json:"cart"`
	Drone   physics.DroneState    `json:"drone"`
	TargetX float64               `json:"target_x"`
	TargetY float64               `json:"target_y"`

	Energy float64 `json:"energy"`
}

// Observer is notified after every completed tick. Implementations must
// not block; they run on the simulation goroutine.
type Observer interface {
	OnTick(Snapshot)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnTick(s Snapshot) { f(s) }
