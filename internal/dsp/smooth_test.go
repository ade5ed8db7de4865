// SPDX-License-Identifier: MIT
package dsp

import "testing"

func TestSmootherAveragesPositiveValues(t *testing.T) {
	s := NewSmoother(3)

	if got := s.Smooth(100); got != 100 {
		t.Errorf("first value: got %.2f, want 100", got)
	}
	if got := s.Smooth(200); got != 150 {
		t.Errorf("two values: got %.2f, want 150", got)
	}
	if got := s.Smooth(300); got != 200 {
		t.Errorf("full buffer: got %.2f, want 200", got)
	}
	// Oldest value (100) is displaced.
	if got := s.Smooth(400); got != 300 {
		t.Errorf("rolling: got %.2f, want 300", got)
	}
}

func TestSmootherClearsOnSilence(t *testing.T) {
	s := NewSmoother(3)
	s.Smooth(100)
	s.Smooth(200)

	if got := s.Smooth(0); got != 0 {
		t.Errorf("silence: got %.2f, want 0", got)
	}
	// Buffer is cleared: next value stands alone.
	if got := s.Smooth(300); got != 300 {
		t.Errorf("post-silence: got %.2f, want 300", got)
	}
}

func TestSmootherReset(t *testing.T) {
	s := NewSmoother(4)
	s.Smooth(100)
	s.Smooth(100)
	s.Reset()
	if got := s.Smooth(500); got != 500 {
		t.Errorf("after reset: got %.2f, want 500", got)
	}
}
