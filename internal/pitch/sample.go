// SPDX-License-Identifier: MIT
/*
Package pitch implements the real-time estimation pipeline: the sliding
sample window, the adaptive estimation coordinator, the permission and
streaming state machine, and the single-writer distributor that fans
results out to the tuner and game consumers.
*/
package pitch

import "time"

// Sample is one pitch estimation result. Immutable once published; a
// new Sample replaces the previous one in the Distributor wholesale.
type Sample struct {
	Frequency  float64   `json:"frequency"`   // Hz; Undetected (-1) when no pitch was found
	RMS        float64   `json:"rms"`         // Window signal level
	WindowID   uint64    `json:"window_id"`   // Monotonic per-stream counter, first window is 1
	SampleRate int       `json:"sample_rate"` // Capture rate the window was taken at
	Timestamp  time.Time `json:"timestamp"`   // Estimation completion time
}

// Detected reports whether the sample carries a usable pitch.
func (s Sample) Detected() bool {
	return s.Frequency > 0
}

// FreshWithin reports whether the sample was produced within d of now.
// Zero-value samples (WindowID 0) are never fresh.
func (s Sample) FreshWithin(d time.Duration, now time.Time) bool {
	return s.WindowID > 0 && now.Sub(s.Timestamp) <= d
}
