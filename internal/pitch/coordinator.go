// SPDX-License-Identifier: MIT
package pitch

import (
	"time"

	"voicebird/internal/config"
	"voicebird/internal/dsp"
)

// Bounds is one estimation call's search parameters.
type Bounds struct {
	MinFreq   float64
	MaxFreq   float64
	Threshold float64
}

// Coordinator decides per-window search bounds from recent history and
// keeps at most one estimation call in flight. Windows arriving while a
// call is pending are coalesced into the latest buffer state rather
// than queued, so the estimator always sees the freshest audio and is
// never re-entered. All methods must be called from the single
// pipeline goroutine.
type Coordinator struct {
	cfg        config.PitchConfig
	window     *SlidingWindow
	history    *History
	rmsSmooth  *dsp.Smoother
	sampleRate int

	// Smoothed RMS of the last two completed estimations, inputs to
	// the restriction heuristic.
	currRMS float64
	prevRMS float64

	inFlight bool
	dirty    bool // window changed while a call was in flight
	windowID uint64

	scratch []float64 // snapshot buffer handed to the gateway
}

// NewCoordinator creates a coordinator for windows of windowSize
// samples at the given capture rate.
func NewCoordinator(cfg config.PitchConfig, windowSize, sampleRate int) *Coordinator {
	return &Coordinator{
		cfg:        cfg,
		window:     NewSlidingWindow(windowSize),
		history:    NewHistory(cfg.HistorySize),
		rmsSmooth:  dsp.NewSmoother(cfg.SmootherSize),
		sampleRate: sampleRate,
		scratch:    make([]float64, windowSize),
	}
}

// Absorb slides chunk into the window. When no estimation is in
// flight it returns a request snapshot to submit; otherwise the chunk
// only refreshes the buffer and the request is deferred to Complete.
func (c *Coordinator) Absorb(chunk []float64) (dsp.Request, bool) {
	c.window.Push(chunk)
	if c.inFlight {
		c.dirty = true
		return dsp.Request{}, false
	}
	return c.snapshot(), true
}

// Complete folds one gateway result into history and returns the
// published Sample. If the window changed while the call was in
// flight, the next request is returned for immediate submission.
func (c *Coordinator) Complete(res dsp.Result, now time.Time) (Sample, dsp.Request, bool) {
	c.inFlight = false

	c.windowID++
	sample := Sample{
		Frequency:  res.Frequency,
		RMS:        res.RMS,
		WindowID:   c.windowID,
		SampleRate: c.sampleRate,
		Timestamp:  now,
	}
	c.history.Add(sample)

	c.prevRMS = c.currRMS
	c.currRMS = c.rmsSmooth.Smooth(res.RMS)

	if !c.dirty {
		return sample, dsp.Request{}, false
	}
	c.dirty = false
	return sample, c.snapshot(), true
}

// snapshot copies the window and picks the search bounds.
func (c *Coordinator) snapshot() dsp.Request {
	c.inFlight = true
	c.window.CopyTo(c.scratch)

	var p1, p2 float64
	if last, ok := c.history.Last(); ok {
		p1 = last.Frequency
	}
	if prev, ok := c.history.Prev(); ok {
		p2 = prev.Frequency
	}
	b := restrict(c.cfg, p1, p2, c.currRMS, c.prevRMS)

	return dsp.Request{
		Samples:    c.scratch,
		SampleRate: c.sampleRate,
		MinFreq:    b.MinFreq,
		MaxFreq:    b.MaxFreq,
		Threshold:  b.Threshold,
	}
}

// restrict is the noise-reduction heuristic: narrow the search band to
// ±DeviationPercent around the previous pitch only when all hold:
// (a) the previous pitch was detected,
// (b) the smoothed RMS is decreasing against the prior RMS by more
// than the gap factor, and
// (c) the last two pitches agree within DeviationPercent.
// Otherwise the full band with the default (less strict) threshold is
// used. Narrowing under decaying energy and stable recent pitch cuts
// octave errors and noise-triggered false positives at no extra cost.
// Deterministic for fixed (p1, p2, rms1, rms2).
func restrict(cfg config.PitchConfig, p1, p2, rms1, rms2 float64) Bounds {
	full := Bounds{
		MinFreq:   cfg.MinFrequency,
		MaxFreq:   cfg.MaxFrequency,
		Threshold: cfg.Threshold,
	}

	if p1 <= 0 || p2 <= 0 {
		return full
	}
	if rms2 <= rms1*cfg.RMSGapFactor {
		return full // energy steady or rising
	}
	if absFloat(p1-p2) > p2*cfg.DeviationPercent {
		return full // recent pitch unstable
	}

	b := Bounds{
		MinFreq:   p1 * (1 - cfg.DeviationPercent),
		MaxFreq:   p1 * (1 + cfg.DeviationPercent),
		Threshold: cfg.StrictThreshold,
	}
	if b.MinFreq < cfg.MinFrequency {
		b.MinFreq = cfg.MinFrequency
	}
	if b.MaxFreq > cfg.MaxFrequency {
		b.MaxFreq = cfg.MaxFrequency
	}
	return b
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
