// Package viz provides the terminal front end for live simulation runs.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [App]: preset launcher that hands off to the live view
//   - [Model]: live view over a [sim.Runner]
//   - [Canvas]: braille dot canvas the scenes render onto
//
// The view never steps physics itself. The runner owns the tick loop;
// key presses turn into Runner.Do commands and each frame re-reads the
// published snapshot.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	P     - Toggle PID control
//	W / N - Toggle wind / rotor noise
//	Arrows- Manual force or thrust
//	Tab   - Cycle gains, K/J to tune
//	[ ]   - Time travel (rewind/forward)
//	?     - Show help overlay
package viz
