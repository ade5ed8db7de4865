// SPDX-License-Identifier: MIT
package game

import (
	"time"

	"voicebird/internal/config"
)

// Spacing fractions relative to one beat's worth of scroll distance.
// A new cycle starts with double spacing to give the player a breather.
const (
	noteSpacingFraction       = 0.5
	cycleStartSpacingFraction = 1.0
)

// Obstacle is one live note obstacle: two pillars with a gap the bird
// must sing through. Coordinates are logical field units, X grows to
// the right, Y grows downward.
type Obstacle struct {
	X           float64 // Left edge.
	Width       float64
	GapTop      float64 // Upper pillar's bottom edge.
	GapBottom   float64 // Lower pillar's top edge.
	Target      float64 // Target pitch in Hz.
	Label       string
	NoteIndex   int
	LastOfCycle bool
}

// Sequencer paces obstacle emission from the note sequence: one note
// per beat, advancing modulo the sequence length.
type Sequencer struct {
	cfg    config.GameConfig
	mapper FrequencyMapper
	notes  []NoteEvent

	next     int
	started  bool
	lastEmit time.Time
}

// NewSequencer creates a sequencer over notes. The mapper decides each
// obstacle's gap placement.
func NewSequencer(cfg config.GameConfig, mapper FrequencyMapper, notes []NoteEvent) *Sequencer {
	if len(notes) == 0 {
		notes = DefaultSequence()
	}
	return &Sequencer{cfg: cfg, mapper: mapper, notes: notes}
}

// Reset rewinds the sequencer to the first note with no emission
// history.
func (s *Sequencer) Reset() {
	s.next = 0
	s.started = false
	s.lastEmit = time.Time{}
}

// beatInterval is the wall-clock time between notes at the configured
// BPM.
func (s *Sequencer) beatInterval() time.Duration {
	return time.Duration(float64(time.Minute) / s.cfg.BPM)
}

// minSpacing is the required horizontal distance from the previous
// obstacle, scaled so it stays proportional to one beat of scroll.
func (s *Sequencer) minSpacing() float64 {
	beatDistance := s.cfg.ScrollSpeed * 60.0 / s.cfg.BPM
	if s.started && s.next == 0 {
		return beatDistance * cycleStartSpacingFraction
	}
	return beatDistance * noteSpacingFraction
}

// Tick emits the next obstacle when both the beat interval has elapsed
// and the spawn point is far enough from the last live obstacle's
// right edge (pass negative infinity when no obstacle is live).
// Returns nil when nothing is due.
func (s *Sequencer) Tick(now time.Time, lastLiveRight float64) *Obstacle {
	if s.started && now.Sub(s.lastEmit) < s.beatInterval() {
		return nil
	}
	if s.cfg.FieldWidth-lastLiveRight < s.minSpacing() {
		return nil
	}

	note := s.notes[s.next]
	obstacle := &Obstacle{
		X:           s.cfg.FieldWidth,
		Width:       s.noteWidth(note),
		Target:      note.TargetFrequency,
		Label:       note.Label,
		NoteIndex:   s.next,
		LastOfCycle: s.next == len(s.notes)-1,
	}
	obstacle.GapTop, obstacle.GapBottom = s.gapFor(note.TargetFrequency)

	s.next = (s.next + 1) % len(s.notes)
	s.started = true
	s.lastEmit = now
	return obstacle
}

// noteWidth scales with the note's duration and shrinks as BPM speeds
// the sequence up.
func (s *Sequencer) noteWidth(note NoteEvent) float64 {
	return s.cfg.ScrollSpeed * float64(note.DurationMs) / 1000.0 * 60.0 / s.cfg.BPM
}

// gapFor places the gap over the tolerance band around target,
// widening it symmetrically up to the configured minimum and keeping
// it inside the field.
func (s *Sequencer) gapFor(target float64) (top, bottom float64) {
	top = s.mapper.FrequencyToY(target + s.cfg.ToleranceHz)
	bottom = s.mapper.FrequencyToY(target - s.cfg.ToleranceHz)

	if bottom-top < s.cfg.MinGap {
		center := (top + bottom) / 2
		top = center - s.cfg.MinGap/2
		bottom = center + s.cfg.MinGap/2
	}
	if top < 0 {
		bottom -= top
		top = 0
	}
	if bottom > s.cfg.FieldHeight {
		top -= bottom - s.cfg.FieldHeight
		bottom = s.cfg.FieldHeight
	}
	return top, bottom
}
