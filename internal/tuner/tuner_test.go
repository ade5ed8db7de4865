// SPDX-License-Identifier: MIT
package tuner

import (
	"testing"
	"time"

	"voicebird/internal/config"
	"voicebird/internal/pitch"
)

func testTunerConfig() config.TunerConfig {
	return config.TunerConfig{
		SemitoneRange:   6,
		StabilityFrames: 5,
		StabilityHz:     3,
		SlideStepHz:     2,
		CenterHz:        220,
	}
}

func TestTunerObserve(t *testing.T) {
	now := time.Now()
	fresh := pitch.Sample{Frequency: 220, RMS: 0.4, WindowID: 1, Timestamp: now}

	t.Run("fresh detected sample is active", func(t *testing.T) {
		tu := New(testTunerConfig(), 600, 1)
		r := tu.Observe(fresh, true, now)
		if !r.Active {
			t.Fatal("expected active reading")
		}
		if r.Note.String() != "A3" {
			t.Errorf("note = %s, want A3", r.Note.String())
		}
		if r.Frequency != 220 {
			t.Errorf("frequency = %.2f, want 220", r.Frequency)
		}
	})

	t.Run("not streaming means inactive", func(t *testing.T) {
		tu := New(testTunerConfig(), 600, 1)
		if r := tu.Observe(fresh, false, now); r.Active {
			t.Error("reading active while not streaming")
		}
	})

	t.Run("stale sample is inactive", func(t *testing.T) {
		tu := New(testTunerConfig(), 600, 1)
		if r := tu.Observe(fresh, true, now.Add(3*time.Second)); r.Active {
			t.Error("reading active past the freshness window")
		}
	})

	t.Run("undetected sample is inactive and keeps the level", func(t *testing.T) {
		tu := New(testTunerConfig(), 600, 1)
		miss := pitch.Sample{Frequency: -1, RMS: 0.2, WindowID: 2, Timestamp: now}
		r := tu.Observe(miss, true, now)
		if r.Active {
			t.Error("undetected sample produced an active reading")
		}
		if r.Level != 0.2 {
			t.Errorf("level = %.2f, want 0.2", r.Level)
		}
	})

	t.Run("silence clears the smoother", func(t *testing.T) {
		tu := New(testTunerConfig(), 600, 4)
		tu.Observe(fresh, true, now)
		tu.Observe(pitch.Sample{Frequency: -1, WindowID: 2, Timestamp: now}, true, now)

		// The next voiced frame must not be averaged with stale values.
		next := pitch.Sample{Frequency: 330, WindowID: 3, Timestamp: now}
		r := tu.Observe(next, true, now)
		if r.Frequency != 330 {
			t.Errorf("frequency = %.2f, want 330 after silence reset", r.Frequency)
		}
	})
}
