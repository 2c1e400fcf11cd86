// Package analysis characterizes recorded control responses.
//
// The package works on plain sample series pulled out of run
// snapshots:
//
//   - [DominantOscillation]: strongest periodic component via FFT
//   - [PowerSpectrum]: coefficient magnitudes for the non-negative bins
//   - [DampingRatio]: decay estimate from successive peaks
//   - [SettlingTime]: time to enter and stay in a tolerance band
//
// # Reading a response
//
// A well tuned loop shows a low-frequency component that damps out
// quickly:
//
//	osc := analysis.DominantOscillation(angles, dt)
//	zeta := analysis.DampingRatio(angles)
//	if zeta < 0 {
//	    // Oscillation is growing, gains are unstable
//	}
package analysis
