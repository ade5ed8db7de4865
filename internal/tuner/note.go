// SPDX-License-Identifier: MIT
/*
Package tuner turns the live pitch feed into display readings: note
names with cent deviation and a position inside an auto-scrolling
logarithmic viewport.
*/
package tuner

import (
	"fmt"
	"math"
)

// Equal-tempered reference: A4 = 440 Hz = MIDI 69.
const (
	referenceFrequency = 440.0
	referenceMIDI      = 69
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note is the nearest equal-tempered note to a frequency, with the
// deviation from its exact pitch in cents.
type Note struct {
	Name   string
	Octave int
	MIDI   int
	Cents  float64
}

// String renders the note like "A4".
func (n Note) String() string {
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// NoteFromFrequency resolves freq to the nearest note. The second
// return is false for nonpositive frequencies.
func NoteFromFrequency(freq float64) (Note, bool) {
	if freq <= 0 {
		return Note{}, false
	}

	steps := math.Round(12 * math.Log2(freq/referenceFrequency))
	midi := int(steps) + referenceMIDI
	if midi < 0 {
		midi = 0
	} else if midi > 127 {
		midi = 127
	}

	exact := referenceFrequency * math.Exp2(float64(midi-referenceMIDI)/12)
	return Note{
		Name:   noteNames[midi%12],
		Octave: midi/12 - 1,
		MIDI:   midi,
		Cents:  1200 * math.Log2(freq/exact),
	}, true
}
