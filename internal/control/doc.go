// Package control provides the feedback loops driving both vehicles.
//
//   - [PID]: the single bounded-output loop everything is built from
//   - [Balance]: cart-pole autopilot, one angle loop producing cart force
//   - [Cascade]: drone autopilot, position loops feeding an attitude loop
//
// Loops are plain stateful values owned by a session; gains can be
// swapped mid-run without losing integral history, and Reset clears only
// the transients.
package control
