// SPDX-License-Identifier: MIT
/*
Package dsp implements the pitch/RMS estimation boundary:
- Estimator: the synchronous estimation contract
- Yin: an FFT-accelerated YIN detector built on gonum
- Gateway: the asynchronous, non-reentrant call boundary the pipeline
  submits windows through
*/
package dsp

// Undetected is the sentinel frequency for windows with no discernible pitch.
const Undetected = -1.0

// Estimator detects the fundamental frequency and signal level of a
// fixed-size sample window. Implementations are not required to be
// safe for concurrent use; the Gateway serializes all calls.
type Estimator interface {
	// Pitch returns the fundamental frequency in Hz within
	// [minFreq, maxFreq], or Undetected if no pitch clears the
	// threshold. threshold is the YIN aperiodicity tolerance:
	// lower values are stricter.
	Pitch(samples []float64, sampleRate int, minFreq, maxFreq, threshold float64) (float64, error)

	// RMS returns the root mean square level of the window.
	RMS(samples []float64) (float64, error)
}
