// SPDX-License-Identifier: MIT
package game

import (
	"fmt"
	"os"

	applog "voicebird/internal/log"

	"gopkg.in/yaml.v3"
)

// NoteEvent is one target note in the obstacle sequence.
type NoteEvent struct {
	Label           string  `yaml:"label"`     // Display name, e.g. "A3".
	TargetFrequency float64 `yaml:"frequency"` // Target pitch in Hz.
	DurationMs      int     `yaml:"duration"`  // Note length in milliseconds.
}

// sequenceFile is the YAML payload shape for custom note sequences.
type sequenceFile struct {
	Notes []NoteEvent `yaml:"notes"`
}

// DefaultSequence returns the built-in seven-note sequence (A major
// scale from A3), used whenever no payload is configured or the
// configured one cannot be loaded.
func DefaultSequence() []NoteEvent {
	return []NoteEvent{
		{Label: "A3", TargetFrequency: 220.00, DurationMs: 500},
		{Label: "B3", TargetFrequency: 246.94, DurationMs: 500},
		{Label: "C#4", TargetFrequency: 277.18, DurationMs: 500},
		{Label: "D4", TargetFrequency: 293.66, DurationMs: 500},
		{Label: "E4", TargetFrequency: 329.63, DurationMs: 500},
		{Label: "F#4", TargetFrequency: 369.99, DurationMs: 500},
		{Label: "G#4", TargetFrequency: 415.30, DurationMs: 750},
	}
}

// LoadSequence reads a note sequence from a YAML file. Missing,
// malformed, or empty payloads fall back to the built-in default
// sequence; the sequencer must never be left without notes.
func LoadSequence(path string) []NoteEvent {
	if path == "" {
		return DefaultSequence()
	}

	notes, err := parseSequence(path)
	if err != nil {
		applog.Warnf("game: note sequence %q unusable, using default: %v", path, err)
		return DefaultSequence()
	}
	return notes
}

func parseSequence(path string) ([]NoteEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file sequenceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Notes) == 0 {
		return nil, fmt.Errorf("no notes in payload")
	}
	for i, n := range file.Notes {
		if n.TargetFrequency <= 0 {
			return nil, fmt.Errorf("note %d: frequency %.1f must be positive", i, n.TargetFrequency)
		}
		if n.DurationMs <= 0 {
			return nil, fmt.Errorf("note %d: duration %d must be positive", i, n.DurationMs)
		}
	}
	return file.Notes, nil
}
