// Package physics holds the fixed-step rigid-body models.
//
// Two vehicles are modeled:
//
//   - [CartPoleParams]: inverted pendulum on a cart, driven by a bounded
//     horizontal force
//   - [DroneParams]: planar twin-rotor vehicle, driven by two bounded
//     thrusts and an exogenous wind force
//
// A step is a pure function from the previous state to a wholly new one;
// nothing in this package carries state across steps. Both models expose
// Energy for trace displays and equilibrium checks.
package physics
