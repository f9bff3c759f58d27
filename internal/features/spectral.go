package features

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Frequency bands (Hz) used by the spectral computation below.
const (
	bandLowMax    = 2.0
	bandMediumMax = 5.0
	bandHighMax   = 10.0
)

// spectralBands applies a Hamming window, a forward real FFT via
// gonum.org/v1/gonum/dsp/fourier, and integrates squared magnitude over the
// three bands above, normalized by n.
//
// Grounded on gonum's FFT usage in the pack's LiDAR/velocity pipeline
// (banshee-data-velocity.report) and jndunlap-gohypo, both of which drive
// dsp/fourier.NewFFT over a windowed real signal.
func spectralBands(xs []float64, sampleRateHz float64) (low, medium, high float64) {
	n := len(xs)
	if n < 2 {
		return 0, 0, 0
	}

	windowed := make([]float64, n)
	for i, x := range xs {
		w := 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		windowed[i] = x * w
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, windowed)

	binHz := sampleRateHz / float64(n)

	for k, c := range coeffs {
		freq := float64(k) * binHz
		if freq > sampleRateHz/2 {
			break // positive frequencies only 
		}
		power := (real(c)*real(c) + imag(c)*imag(c)) / float64(n)
		switch {
		case freq < bandLowMax:
			low += power
		case freq < bandMediumMax:
			medium += power
		case freq < bandHighMax:
			high += power
		}
	}

	return finite(low), finite(medium), finite(high)
}
