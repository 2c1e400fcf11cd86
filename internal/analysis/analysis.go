package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Oscillation is the strongest periodic component of a series.
type Oscillation struct {
	Frequency float64 // Hz
	Amplitude float64
	Power     float64
}

// DominantOscillation detrends the series and picks the FFT bin with
// the most power. The zero Oscillation means the series was too short
// to resolve anything.
func DominantOscillation(series []float64, dt float64) Oscillation {
	n := len(series)
	if n < 8 || dt <= 0 {
		return Oscillation{}
	}

	mean := stat.Mean(series, nil)
	centered := make([]float64, n)
	for i, v := range series {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, centered)

	bin, power := 0, 0.0
	for k := 1; k < len(coeffs); k++ {
		if p := cmplx.Abs(coeffs[k]); p > power {
			bin, power = k, p
		}
	}
	if bin == 0 {
		return Oscillation{}
	}

	return Oscillation{
		Frequency: fft.Freq(bin) / dt,
		Amplitude: 2 * power / float64(n),
		Power:     power,
	}
}

// PowerSpectrum returns the coefficient magnitudes for the
// non-negative frequency bins, DC first.
func PowerSpectrum(series []float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	fft := fourier.NewFFT(len(series))
	coeffs := fft.Coefficients(nil, series)
	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

// DampingRatio estimates damping from the decay of successive peaks
// (logarithmic decrement). Zero means fewer than two peaks were found;
// a negative value means the oscillation is growing.
func DampingRatio(series []float64) float64 {
	peaks := peakValues(series)
	if len(peaks) < 2 {
		return 0
	}

	var sum float64
	for i := 1; i < len(peaks); i++ {
		sum += math.Log(peaks[i-1] / peaks[i])
	}
	delta := sum / float64(len(peaks)-1)
	return delta / math.Sqrt(4*math.Pi*math.Pi+delta*delta)
}

// peakValues collects the heights of interior local maxima, measured
// from the series mean. Heights are positive by construction.
func peakValues(series []float64) []float64 {
	if len(series) < 3 {
		return nil
	}
	mean := stat.Mean(series, nil)
	var peaks []float64
	for i := 1; i < len(series)-1; i++ {
		v := series[i]
		if v > series[i-1] && v >= series[i+1] && v > mean {
			peaks = append(peaks, v-mean)
		}
	}
	return peaks
}

// SettlingTime returns the time after which the series stays within
// tol of its final value, or -1 if it was still moving at the end.
// dt is the sample spacing.
func SettlingTime(series []float64, dt, tol float64) float64 {
	n := len(series)
	if n == 0 || dt <= 0 || tol <= 0 {
		return -1
	}

	final := series[n-1]
	k := n - 1
	for i := n - 2; i >= 0; i-- {
		if math.Abs(series[i]-final) > tol {
			break
		}
		k = i
	}
	if k == n-1 && n > 1 {
		return -1
	}
	return float64(k) * dt
}
