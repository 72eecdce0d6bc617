package analysis

import (
	"math"
	"math/cmplx"
)

// FFT is a recursive radix-2 transform. Input is zero-padded to the next
// power of two.
func FFT(data []float64) []complex128 {
	n := nextPow2(len(data))
	if n != len(data) {
		padded := make([]float64, n)
		copy(padded, data)
		data = padded
	}
	return fft(data)
}

func fft(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerSpectrum returns the magnitude of the first half of the spectrum.
// The mean is removed first so bin 0 does not swamp the rest.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	spec := FFT(centred)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// bin for a signal sampled at rate Hz.
func DominantFrequency(data []float64, rate float64) (float64, float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || rate <= 0 {
		return 0, 0
	}
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	n := float64(2 * len(ps))
	return float64(best) * rate / n, ps[best]
}
