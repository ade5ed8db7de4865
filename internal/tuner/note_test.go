// SPDX-License-Identifier: MIT
package tuner

import (
	"math"
	"testing"
)

func TestNoteFromFrequency(t *testing.T) {
	tests := []struct {
		desc      string
		freq      float64
		wantName  string
		wantCents float64
	}{
		{desc: "concert A", freq: 440, wantName: "A4", wantCents: 0},
		{desc: "middle C", freq: 261.63, wantName: "C4", wantCents: 0},
		{desc: "low E", freq: 82.41, wantName: "E2", wantCents: 0},
		{desc: "sharp A", freq: 452, wantName: "A4", wantCents: 46.6},
		{desc: "flat A", freq: 430, wantName: "A4", wantCents: -39.8},
		{desc: "A sharp", freq: 466.16, wantName: "A#4", wantCents: 0},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			note, ok := NoteFromFrequency(tt.freq)
			if !ok {
				t.Fatalf("NoteFromFrequency(%.2f) not ok", tt.freq)
			}
			if note.String() != tt.wantName {
				t.Errorf("note = %s, want %s", note.String(), tt.wantName)
			}
			if math.Abs(note.Cents-tt.wantCents) > 0.5 {
				t.Errorf("cents = %.2f, want %.2f", note.Cents, tt.wantCents)
			}
		})
	}
}

func TestNoteFromFrequencyRejectsNonpositive(t *testing.T) {
	for _, freq := range []float64{0, -1, -440} {
		if _, ok := NoteFromFrequency(freq); ok {
			t.Errorf("NoteFromFrequency(%.1f) must not resolve", freq)
		}
	}
}
