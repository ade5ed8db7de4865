// SPDX-License-Identifier: MIT
package game

import "math"

// FrequencyMapper maps a frequency in Hz to a vertical position, with
// y = 0 at the top of the drawing area.
type FrequencyMapper interface {
	FrequencyToY(freq float64) float64
}

// LinearMapper maps [0, MaxFrequency] linearly onto [Height, 0]. The
// linear scale keeps a fixed-Hz tolerance gap the same height across
// the whole note range, so gameplay difficulty stays uniform.
type LinearMapper struct {
	Height       float64
	MaxFrequency float64
}

// FrequencyToY clamps freq into [0, MaxFrequency] before mapping.
func (m *LinearMapper) FrequencyToY(freq float64) float64 {
	if freq < 0 {
		freq = 0
	} else if freq > m.MaxFrequency {
		freq = m.MaxFrequency
	}
	return m.Height - m.Height*freq/m.MaxFrequency
}

// LogViewport is the tuner-mode mapper: a logarithmic window of
// ±SemitoneRange semitones around a center frequency that follows the
// detected pitch. The center only moves after StabilityFrames
// consecutive observations whose spread stays below StabilityHz, and
// then by at most SlideStepHz per observation, so the view glides
// instead of jumping.
type LogViewport struct {
	Height          float64
	SemitoneRange   float64
	StabilityFrames int
	StabilityHz     float64
	SlideStepHz     float64

	center float64
	ring   []float64
}

// NewLogViewport creates a viewport centered on centerHz.
func NewLogViewport(height, semitoneRange float64, stabilityFrames int, stabilityHz, slideStepHz, centerHz float64) *LogViewport {
	return &LogViewport{
		Height:          height,
		SemitoneRange:   semitoneRange,
		StabilityFrames: stabilityFrames,
		StabilityHz:     stabilityHz,
		SlideStepHz:     slideStepHz,
		center:          centerHz,
		ring:            make([]float64, 0, stabilityFrames),
	}
}

// Center returns the current viewport center frequency.
func (v *LogViewport) Center() float64 { return v.center }

// Bounds returns the viewport's frequency range.
func (v *LogViewport) Bounds() (min, max float64) {
	span := math.Exp2(v.SemitoneRange / 12.0)
	return v.center / span, v.center * span
}

// Observe feeds one frame's detected pitch into the stability ring.
// Undetected frames (freq <= 0) and outliers reset the ring; once the
// ring holds StabilityFrames entries within StabilityHz of each other,
// each further stable frame slides the center one step toward the
// pitch.
func (v *LogViewport) Observe(freq float64) {
	if freq <= 0 {
		v.ring = v.ring[:0]
		return
	}

	// A frame that breaks the ring's spread is an outlier: the counter
	// restarts from this frame.
	for _, r := range v.ring {
		if math.Abs(freq-r) >= v.StabilityHz {
			v.ring = v.ring[:0]
			break
		}
	}

	if len(v.ring) >= v.StabilityFrames && len(v.ring) > 0 {
		copy(v.ring, v.ring[1:])
		v.ring = v.ring[:len(v.ring)-1]
	}
	v.ring = append(v.ring, freq)

	if len(v.ring) < v.StabilityFrames {
		return
	}

	delta := freq - v.center
	if delta > v.SlideStepHz {
		delta = v.SlideStepHz
	} else if delta < -v.SlideStepHz {
		delta = -v.SlideStepHz
	}
	v.center += delta
}

// FrequencyToY maps freq logarithmically within the current viewport,
// clamping out-of-range input to the nearest edge.
func (v *LogViewport) FrequencyToY(freq float64) float64 {
	min, max := v.Bounds()
	if freq < min {
		freq = min
	} else if freq > max {
		freq = max
	}
	logMin := math.Log2(min)
	logMax := math.Log2(max)
	return v.Height - v.Height*(math.Log2(freq)-logMin)/(logMax-logMin)
}
