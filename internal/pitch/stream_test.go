// SPDX-License-Identifier: MIT
package pitch

import (
	"errors"
	"sync"
	"testing"
	"time"

	"voicebird/internal/config"
	"voicebird/internal/dsp"
)

// fakeDriver delivers chunks on demand from the test goroutine.
type fakeDriver struct {
	mu      sync.Mutex
	onChunk func([]float64)
	onError func(error)
	started int
	stopped int
}

func (f *fakeDriver) Start(onChunk func([]float64), onError func(error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChunk = onChunk
	f.onError = onError
	f.started++
	return nil
}

func (f *fakeDriver) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChunk = nil
	f.stopped++
	return nil
}

func (f *fakeDriver) SampleRate() int { return 44100 }

func (f *fakeDriver) emit(chunk []float64) {
	f.mu.Lock()
	cb := f.onChunk
	f.mu.Unlock()
	if cb != nil {
		cb(chunk)
	}
}

func (f *fakeDriver) fail(err error) {
	f.mu.Lock()
	cb := f.onError
	f.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

func (f *fakeDriver) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

// fakeProvider answers permission probes with a fixed grant decision.
type fakeProvider struct {
	grant    bool
	mu       sync.Mutex
	requests int
}

func (p *fakeProvider) Request() (bool, error) {
	p.mu.Lock()
	p.requests++
	p.mu.Unlock()
	return p.grant, nil
}

// constEstimator always detects the same pitch.
type constEstimator struct{ freq, rms float64 }

func (e constEstimator) Pitch([]float64, int, float64, float64, float64) (float64, error) {
	return e.freq, nil
}
func (e constEstimator) RMS([]float64) (float64, error) { return e.rms, nil }

func newTestStreamer(t *testing.T, driver *fakeDriver, provider *fakeProvider) (*Streamer, *Distributor) {
	t.Helper()
	cfg := config.Default()
	cfg.Audio.WindowSize = 16

	gateway := dsp.NewGateway(constEstimator{freq: 220, rms: 0.1})
	t.Cleanup(gateway.Close)

	dist := NewDistributor()
	s := NewStreamer(cfg, driver, provider, gateway, dist)
	t.Cleanup(s.Close)
	return s, dist
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func TestStreamerEndToEndFirstWindow(t *testing.T) {
	driver := &fakeDriver{}
	s, dist := newTestStreamer(t, driver, &fakeProvider{grant: true})

	if s.Permission() != PermissionPending {
		t.Fatalf("initial permission: got %s, want pending", s.Permission())
	}

	if got := s.RequestPermission(); got != PermissionGranted {
		t.Fatalf("request: got %s, want granted", got)
	}
	// Granted auto-starts streaming exactly once.
	if !s.IsStreaming() {
		t.Fatal("streaming must auto-start on first grant")
	}
	if driver.startCount() != 1 {
		t.Fatalf("driver starts: got %d, want 1", driver.startCount())
	}

	driver.emit(make([]float64, 8))
	waitFor(t, "first published sample", func() bool { return dist.Latest().WindowID > 0 })

	first := dist.Latest()
	if first.WindowID != 1 {
		t.Errorf("first sample window id: got %d, want 1", first.WindowID)
	}
	if first.Frequency != 220 {
		t.Errorf("first sample frequency: got %.1f, want 220", first.Frequency)
	}
	if !dist.Active(time.Now()) {
		t.Error("fresh first sample: distributor must be active")
	}
}

func TestStreamerDenialIsTerminal(t *testing.T) {
	driver := &fakeDriver{}
	provider := &fakeProvider{grant: false}
	s, _ := newTestStreamer(t, driver, provider)

	if got := s.RequestPermission(); got != PermissionDenied {
		t.Fatalf("request: got %s, want denied", got)
	}
	if err := s.StartStreaming(); err == nil {
		t.Error("starting while denied must fail")
	}
	if s.IsStreaming() {
		t.Error("denied must not stream")
	}

	// A fresh explicit request after the user fixes the grant succeeds.
	provider.grant = true
	if got := s.RequestPermission(); got != PermissionGranted {
		t.Fatalf("re-request: got %s, want granted", got)
	}
}

func TestStreamerStartStopIdempotent(t *testing.T) {
	driver := &fakeDriver{}
	s, _ := newTestStreamer(t, driver, &fakeProvider{grant: true})
	s.RequestPermission()

	if err := s.StartStreaming(); err != nil {
		t.Fatalf("start while streaming: %v", err)
	}
	if driver.startCount() != 1 {
		t.Errorf("driver starts after redundant start: got %d, want 1", driver.startCount())
	}

	s.StopStreaming()
	s.StopStreaming() // no-op
	if s.IsStreaming() {
		t.Error("expected streaming stopped")
	}
	// Stop does not revoke permission.
	if s.Permission() != PermissionGranted {
		t.Errorf("permission after stop: got %s, want granted", s.Permission())
	}

	// Manual restart works; auto-start does not fire again.
	if err := s.StartStreaming(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if driver.startCount() != 2 {
		t.Errorf("driver starts after restart: got %d, want 2", driver.startCount())
	}
}

func TestStreamerCaptureErrorStopsStreaming(t *testing.T) {
	driver := &fakeDriver{}
	s, dist := newTestStreamer(t, driver, &fakeProvider{grant: true})
	s.RequestPermission()

	driver.emit(make([]float64, 8))
	waitFor(t, "first published sample", func() bool { return dist.Latest().WindowID > 0 })

	driver.fail(errors.New("device unplugged"))
	waitFor(t, "streaming flag cleared", func() bool { return !s.IsStreaming() })

	// The last sample survives; consumers age it out via freshness.
	if dist.Latest().WindowID == 0 {
		t.Error("last sample must not be cleared on capture error")
	}
	if dist.Active(time.Now()) {
		t.Error("distributor must not be active after capture error")
	}
}

func TestStreamerRevoke(t *testing.T) {
	driver := &fakeDriver{}
	s, _ := newTestStreamer(t, driver, &fakeProvider{grant: true})
	s.RequestPermission()

	s.Revoke()
	if s.Permission() != PermissionDenied {
		t.Errorf("permission after revoke: got %s, want denied", s.Permission())
	}
	if s.IsStreaming() {
		t.Error("revoke must stop streaming")
	}
}

func TestStreamerConcurrentRequestsShareResult(t *testing.T) {
	driver := &fakeDriver{}
	provider := &fakeProvider{grant: true}
	s, _ := newTestStreamer(t, driver, provider)

	const callers = 8
	results := make(chan PermissionState, callers)
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.RequestPermission()
		}()
	}
	wg.Wait()
	close(results)

	for r := range results {
		if r != PermissionGranted {
			t.Errorf("concurrent request: got %s, want granted", r)
		}
	}
	provider.mu.Lock()
	requests := provider.requests
	provider.mu.Unlock()
	if requests != 1 {
		t.Errorf("provider probed %d times for %d concurrent callers, want 1", requests, callers)
	}
}
