// SPDX-License-Identifier: MIT
package dsp

import (
	"errors"
	"testing"
)

// scriptedEstimator returns canned results and records call order.
type scriptedEstimator struct {
	pitches  []float64
	pitchErr error
	rms      float64
	rmsErr   error
	calls    int
}

func (s *scriptedEstimator) Pitch(samples []float64, sampleRate int, minFreq, maxFreq, threshold float64) (float64, error) {
	idx := s.calls
	s.calls++
	if s.pitchErr != nil {
		return 0, s.pitchErr
	}
	if idx < len(s.pitches) {
		return s.pitches[idx], nil
	}
	return Undetected, nil
}

func (s *scriptedEstimator) RMS(samples []float64) (float64, error) {
	return s.rms, s.rmsErr
}

func TestGatewayResolvesInSubmissionOrder(t *testing.T) {
	est := &scriptedEstimator{pitches: []float64{220, 440, 880}, rms: 0.5}
	g := NewGateway(est)
	defer g.Close()

	window := make([]float64, 16)
	want := []float64{220, 440, 880}
	for i, w := range want {
		res := <-g.Estimate(Request{Samples: window, SampleRate: 44100, MinFreq: 70, MaxFreq: 1200, Threshold: 0.15})
		if res.Frequency != w {
			t.Errorf("call %d: got %.1f, want %.1f", i, res.Frequency, w)
		}
		if res.RMS != 0.5 {
			t.Errorf("call %d: rms got %.2f, want 0.5", i, res.RMS)
		}
	}
}

func TestGatewayEstimatorFailureYieldsUndetected(t *testing.T) {
	est := &scriptedEstimator{pitchErr: errors.New("native bridge down")}
	g := NewGateway(est)
	defer g.Close()

	res := <-g.Estimate(Request{Samples: make([]float64, 16), SampleRate: 44100, MinFreq: 70, MaxFreq: 1200, Threshold: 0.15})
	if res.Frequency != Undetected {
		t.Errorf("got %.2f, want Undetected sentinel", res.Frequency)
	}
	if res.Err == nil {
		t.Error("expected error recorded on result")
	}
}

func TestGatewayCloseIsIdempotent(t *testing.T) {
	g := NewGateway(&scriptedEstimator{})
	g.Close()
	g.Close() // must not panic
}
