// SPDX-License-Identifier: MIT
package dsp

// Smoother is a moving-average filter over recent positive values.
// A nonpositive input clears the whole buffer so a silence gap never
// trails stale values into the next voiced stretch.
type Smoother struct {
	buffer []float64
	cursor int
}

// NewSmoother creates a smoother averaging the last size values.
func NewSmoother(size int) *Smoother {
	if size < 1 {
		size = 1
	}
	return &Smoother{buffer: make([]float64, size)}
}

// Smooth folds val into the moving average and returns the mean of the
// buffered positive values. val <= 0 resets the buffer and returns 0.
func (s *Smoother) Smooth(val float64) float64 {
	if val <= 0 {
		s.Reset()
		return 0
	}
	s.buffer[s.cursor] = val
	s.cursor = (s.cursor + 1) % len(s.buffer)

	sum := 0.0
	count := 0.0
	for _, v := range s.buffer {
		if v > 0 {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / count
}

// Reset clears the buffer.
func (s *Smoother) Reset() {
	for i := range s.buffer {
		s.buffer[i] = 0
	}
	s.cursor = 0
}
