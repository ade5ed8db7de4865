// SPDX-License-Identifier: MIT
package game

import (
	"math"
	"testing"
)

func TestNoteAccuracy(t *testing.T) {
	tests := []struct {
		desc   string
		sung   float64
		target float64
		want   float64
	}{
		{desc: "slightly flat", sung: 105, target: 120, want: 87.5},
		{desc: "exact hit", sung: 120, target: 120, want: 100},
		{desc: "silence scores zero", sung: 0, target: 120, want: 0},
		{desc: "wild miss clamps at zero", sung: 500, target: 120, want: 0},
		{desc: "slightly sharp", sung: 135, target: 120, want: 87.5},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := NoteAccuracy(tt.sung, tt.target); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("NoteAccuracy(%.1f, %.1f) = %.3f, want %.3f", tt.sung, tt.target, got, tt.want)
			}
		})
	}
}

// finishNoteAt records one note with a known accuracy.
func finishNoteAt(s *Scorer, acc float64) {
	if acc > 0 {
		// A single on-target sample scaled to the desired accuracy.
		s.Observe(120*(1+(100-acc)/100), 120)
	}
	s.FinishNote()
}

func TestScorerExcludesIncompleteCycles(t *testing.T) {
	s := NewScorer()

	// Seven perfect notes complete a cycle; three more notes scoring
	// zero stay in the unfinished cycle.
	for i := 0; i < 7; i++ {
		finishNoteAt(s, 100)
	}
	s.CompleteCycle()
	for i := 0; i < 3; i++ {
		finishNoteAt(s, 0)
	}

	got, ok := s.Overall()
	if !ok {
		t.Fatal("expected an overall score")
	}
	if math.Abs(got-100) > 1e-9 {
		t.Errorf("Overall() = %.3f, want 100 (incomplete cycle must not count)", got)
	}

	avg, ok := s.NoteAverage()
	if !ok || math.Abs(avg-100) > 1e-9 {
		t.Errorf("NoteAverage() = %.3f (ok=%v), want 100", avg, ok)
	}
	if s.CompletedCycles() != 1 {
		t.Errorf("CompletedCycles() = %d, want 1", s.CompletedCycles())
	}
}

func TestScorerNoteAccuracyAveragesSamples(t *testing.T) {
	s := NewScorer()
	s.Observe(120, 120) // 100
	s.Observe(105, 120) // 87.5
	s.FinishNote()
	s.CompleteCycle()

	got, ok := s.Overall()
	if !ok {
		t.Fatal("expected an overall score")
	}
	if math.Abs(got-93.75) > 1e-9 {
		t.Errorf("Overall() = %.3f, want 93.75", got)
	}
}

func TestScorerPassedNoteWithoutSamplesScoresZero(t *testing.T) {
	s := NewScorer()
	finishNoteAt(s, 100)
	s.FinishNote() // sailed through without singing
	s.CompleteCycle()

	got, ok := s.Overall()
	if !ok {
		t.Fatal("expected an overall score")
	}
	if math.Abs(got-50) > 1e-9 {
		t.Errorf("Overall() = %.3f, want 50", got)
	}
}

func TestScorerEmptyAndAbandoned(t *testing.T) {
	s := NewScorer()
	if _, ok := s.Overall(); ok {
		t.Error("empty scorer must report no data")
	}

	finishNoteAt(s, 100)
	finishNoteAt(s, 100)
	s.Abandon()
	if _, ok := s.Overall(); ok {
		t.Error("abandoned cycle must not produce a score")
	}

	// A completed cycle survives a later abandon.
	finishNoteAt(s, 80)
	s.CompleteCycle()
	finishNoteAt(s, 0)
	s.Abandon()

	got, ok := s.Overall()
	if !ok || math.Abs(got-80) > 1e-9 {
		t.Errorf("Overall() = %.3f (ok=%v), want 80", got, ok)
	}
}
