// SPDX-License-Identifier: MIT
package tuner

import (
	"time"

	"voicebird/internal/config"
	"voicebird/internal/dsp"
	"voicebird/internal/game"
	"voicebird/internal/pitch"
)

// Reading is one frame of tuner display state.
type Reading struct {
	Active    bool    // A fresh pitch is on screen.
	Frequency float64 // Smoothed pitch in Hz.
	Note      Note
	Y         float64 // Vertical position inside the viewport.
	Level     float64 // Window RMS, for the level meter.
}

// Tuner folds published samples into smoothed, note-annotated readings.
// Single consumer; the render loop calls Observe once per frame.
type Tuner struct {
	viewport *game.LogViewport
	smoother *dsp.Smoother
}

// New builds a tuner view model with the configured viewport.
func New(cfg config.TunerConfig, height float64, smootherSize int) *Tuner {
	return &Tuner{
		viewport: game.NewLogViewport(
			height,
			cfg.SemitoneRange,
			cfg.StabilityFrames,
			cfg.StabilityHz,
			cfg.SlideStepHz,
			cfg.CenterHz,
		),
		smoother: dsp.NewSmoother(smootherSize),
	}
}

// ViewportBounds returns the current frequency range on screen.
func (t *Tuner) ViewportBounds() (min, max float64) {
	return t.viewport.Bounds()
}

// Observe folds the latest published sample into the display state.
// Stale or undetected samples clear the smoother so the needle drops
// instead of freezing on the last pitch.
func (t *Tuner) Observe(s pitch.Sample, streaming bool, now time.Time) Reading {
	active := streaming && s.Detected() && s.FreshWithin(pitch.FreshnessWindow, now)

	freq := 0.0
	if active {
		freq = s.Frequency
	}
	smoothed := t.smoother.Smooth(freq)
	t.viewport.Observe(smoothed)

	if smoothed <= 0 {
		return Reading{Level: s.RMS}
	}

	note, _ := NoteFromFrequency(smoothed)
	return Reading{
		Active:    true,
		Frequency: smoothed,
		Note:      note,
		Y:         t.viewport.FrequencyToY(smoothed),
		Level:     s.RMS,
	}
}
