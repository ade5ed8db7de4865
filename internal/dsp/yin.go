// SPDX-License-Identifier: MIT
package dsp

import (
	"fmt"
	"math"

	"voicebird/pkg/bitint"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Yin detects pitch with the YIN algorithm, computing the difference
// function through an FFT-based autocorrelation instead of the O(n^2)
// time-domain form. All buffers are pre-allocated; Pitch and RMS do not
// allocate.
type Yin struct {
	frameSize int
	fftObj    *fourier.FFT // sized 2*frameSize for linear (non-circular) autocorrelation

	padded   []float64    // zero-padded input
	spectrum []complex128 // FFT output, then power spectrum
	acf      []float64    // autocorrelation by inverse FFT
	prefix   []float64    // running sum of squared samples
	yin      []float64    // cumulative mean normalized difference
}

// NewYin creates a detector for windows of exactly frameSize samples.
// frameSize must be a power of 2 so the FFT stays radix-2.
func NewYin(frameSize int) (*Yin, error) {
	if !bitint.IsPowerOfTwo(frameSize) {
		return nil, fmt.Errorf("frame size %d must be a power of 2", frameSize)
	}

	padN := frameSize * 2
	return &Yin{
		frameSize: frameSize,
		fftObj:    fourier.NewFFT(padN),
		padded:    make([]float64, padN),
		spectrum:  make([]complex128, padN/2+1),
		acf:       make([]float64, padN),
		prefix:    make([]float64, frameSize+1),
		yin:       make([]float64, frameSize/2+1),
	}, nil
}

// Pitch implements Estimator. The search is restricted to lag values
// corresponding to [minFreq, maxFreq]; the first dip of the normalized
// difference function below threshold wins, refined by parabolic
// interpolation. No dip below threshold means Undetected.
func (y *Yin) Pitch(samples []float64, sampleRate int, minFreq, maxFreq, threshold float64) (float64, error) {
	if len(samples) != y.frameSize {
		return Undetected, fmt.Errorf("invalid frame size: expected %d, got %d", y.frameSize, len(samples))
	}
	if minFreq <= 0 || maxFreq <= minFreq {
		return Undetected, fmt.Errorf("invalid search band [%.2f, %.2f]", minFreq, maxFreq)
	}

	maxTau := int(float64(sampleRate) / minFreq)
	minTau := int(float64(sampleRate) / maxFreq)
	if minTau < 2 {
		minTau = 2
	}
	if maxTau > len(y.yin)-1 {
		maxTau = len(y.yin) - 1
	}
	if maxTau <= minTau {
		return Undetected, fmt.Errorf("band [%.2f, %.2f] unresolvable at %d Hz sample rate", minFreq, maxFreq, sampleRate)
	}

	y.autocorrelate(samples)

	// Difference function d(tau) from the correlation and the running
	// energy terms: d(tau) = E[0..n-tau) + E[tau..n) - 2*r(tau).
	y.prefix[0] = 0
	for i, s := range samples {
		y.prefix[i+1] = y.prefix[i] + s*s
	}
	n := y.frameSize

	// Cumulative mean normalized difference, YIN step 3.
	y.yin[0] = 1
	runningSum := 0.0
	for tau := 1; tau < len(y.yin); tau++ {
		head := y.prefix[n-tau]              // energy of x[0..n-tau)
		tail := y.prefix[n] - y.prefix[tau]  // energy of x[tau..n)
		d := head + tail - 2*y.acf[tau]
		if d < 0 {
			d = 0 // numerical noise near perfect periodicity
		}
		runningSum += d
		if runningSum == 0 {
			y.yin[tau] = 1
		} else {
			y.yin[tau] = d * float64(tau) / runningSum
		}
	}

	tau := y.firstDip(minTau, maxTau, threshold)
	if tau < 0 {
		return Undetected, nil
	}

	refined := y.parabolicInterp(tau, minTau, maxTau)
	return float64(sampleRate) / refined, nil
}

// RMS implements Estimator.
func (y *Yin) RMS(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, fmt.Errorf("empty sample window")
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples))), nil
}

// autocorrelate fills y.acf with r(tau) = sum_i x[i]*x[i+tau] using the
// zero-padded FFT power spectrum.
func (y *Yin) autocorrelate(samples []float64) {
	copy(y.padded, samples)
	for i := y.frameSize; i < len(y.padded); i++ {
		y.padded[i] = 0
	}

	y.fftObj.Coefficients(y.spectrum, y.padded)
	for i, c := range y.spectrum {
		re := real(c)
		im := imag(c)
		y.spectrum[i] = complex(re*re+im*im, 0)
	}
	y.fftObj.Sequence(y.acf, y.spectrum)

	// gonum's Sequence(Coefficients(x)) is unnormalized by len(padded).
	scale := 1 / float64(len(y.padded))
	for i := range y.acf {
		y.acf[i] *= scale
	}
}

// firstDip returns the lag of the first local minimum of the normalized
// difference below threshold within [minTau, maxTau], or -1.
func (y *Yin) firstDip(minTau, maxTau int, threshold float64) int {
	for tau := minTau; tau <= maxTau; tau++ {
		if y.yin[tau] >= threshold {
			continue
		}
		// Walk down to the bottom of this dip.
		for tau+1 <= maxTau && y.yin[tau+1] < y.yin[tau] {
			tau++
		}
		return tau
	}
	return -1
}

// parabolicInterp refines an integer lag with a parabola through its
// neighbors, recovering sub-sample period resolution.
func (y *Yin) parabolicInterp(tau, minTau, maxTau int) float64 {
	if tau <= minTau || tau >= maxTau {
		return float64(tau)
	}
	s0 := y.yin[tau-1]
	s1 := y.yin[tau]
	s2 := y.yin[tau+1]
	denom := 2 * (2*s1 - s2 - s0)
	if denom == 0 {
		return float64(tau)
	}
	return float64(tau) + (s2-s0)/denom
}

var _ Estimator = (*Yin)(nil)
