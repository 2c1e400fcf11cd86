// Package sim assembles physics, control, and disturbances into
// steppable sessions and schedules them.
//
//   - CartPoleSession and DroneSession own one simulation instance
//     each: per tick they pick an actuation (manual or controller),
//     advance the dynamics, and record what happened. Sessions are
//     single-threaded on purpose.
//   - Run drives a session for a fixed number of ticks and collects
//     snapshots, for batch experiments.
//   - Runner drives a session against the wall clock on its own
//     goroutine and is the concurrency boundary: commands queue up and
//     apply at tick boundaries, snapshots publish after each tick.
package sim
