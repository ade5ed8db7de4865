// SPDX-License-Identifier: MIT
package game

import "math"

// NoteAccuracy grades one sung pitch against a target note as a
// percentage, clamped at zero so wild misses never go negative.
func NoteAccuracy(sung, target float64) float64 {
	if target <= 0 {
		return 0
	}
	acc := (1 - math.Abs(sung-target)/target) * 100
	if acc < 0 {
		return 0
	}
	return acc
}

// Scorer accumulates per-note accuracy while the bird overlaps an
// obstacle, folds finished notes into the current cycle, and reports
// aggregates over completed cycles only.
type Scorer struct {
	noteSum   float64
	noteCount int

	cycleNotes []float64 // finished notes in the current (incomplete) cycle
	cycleMeans []float64 // one mean per completed cycle
	cycleSize  []int     // notes contributing to each completed cycle
}

// NewScorer returns an empty scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Observe records one pitch sample sung while overlapping the current
// note's obstacle.
func (s *Scorer) Observe(sung, target float64) {
	s.noteSum += NoteAccuracy(sung, target)
	s.noteCount++
}

// FinishNote closes out the note currently being graded. A note the
// player passed without singing scores zero.
func (s *Scorer) FinishNote() {
	acc := 0.0
	if s.noteCount > 0 {
		acc = s.noteSum / float64(s.noteCount)
	}
	s.cycleNotes = append(s.cycleNotes, acc)
	s.noteSum = 0
	s.noteCount = 0
}

// CompleteCycle seals the current cycle: its notes now count toward
// the overall aggregates.
func (s *Scorer) CompleteCycle() {
	if len(s.cycleNotes) == 0 {
		return
	}
	sum := 0.0
	for _, acc := range s.cycleNotes {
		sum += acc
	}
	s.cycleMeans = append(s.cycleMeans, sum/float64(len(s.cycleNotes)))
	s.cycleSize = append(s.cycleSize, len(s.cycleNotes))
	s.cycleNotes = s.cycleNotes[:0]
}

// Abandon discards the in-progress note and cycle. Completed cycles
// are untouched; incomplete ones never enter the aggregates.
func (s *Scorer) Abandon() {
	s.noteSum = 0
	s.noteCount = 0
	s.cycleNotes = s.cycleNotes[:0]
}

// CompletedCycles returns how many cycles have been sealed.
func (s *Scorer) CompletedCycles() int {
	return len(s.cycleMeans)
}

// Overall reports the aggregate accuracy: the mean of completed-cycle
// means when at least one cycle completed, otherwise the mean of note
// accuracies from completed cycles, otherwise no data (ok = false).
func (s *Scorer) Overall() (float64, bool) {
	if len(s.cycleMeans) > 0 {
		sum := 0.0
		for _, m := range s.cycleMeans {
			sum += m
		}
		return sum / float64(len(s.cycleMeans)), true
	}
	return s.NoteAverage()
}

// NoteAverage reports the mean accuracy across all notes belonging to
// completed cycles, excluding any in-progress cycle.
func (s *Scorer) NoteAverage() (float64, bool) {
	total := 0
	sum := 0.0
	for i, m := range s.cycleMeans {
		sum += m * float64(s.cycleSize[i])
		total += s.cycleSize[i]
	}
	if total == 0 {
		return 0, false
	}
	return sum / float64(total), true
}
