// SPDX-License-Identifier: MIT
package pitch

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"voicebird/internal/config"
	"voicebird/internal/dsp"
	applog "voicebird/internal/log"
)

// CaptureDriver is the raw microphone boundary. Start begins delivery
// of sample chunks to onChunk from the driver's own goroutine; onError
// reports a disconnect or read failure, after which no more chunks
// arrive until a fresh Start.
type CaptureDriver interface {
	Start(onChunk func(chunk []float64), onError func(error)) error
	Stop() error
	SampleRate() int
}

// Streamer owns the whole capture-to-publish pipeline: it gates
// windowing and estimation behind the permission state machine, runs
// the single pipeline goroutine, and exposes the consumer-facing API
// (Subscribe/Latest/RequestPermission/StartStreaming/StopStreaming).
// It is created by the application root and passed by reference to all
// consumers; there are no package-level globals.
type Streamer struct {
	driver  CaptureDriver
	perm    PermissionProvider
	gateway *dsp.Gateway
	coord   *Coordinator
	dist    *Distributor

	mu          sync.Mutex
	state       PermissionState
	inflight    chan struct{} // non-nil while a permission request is running
	autoStarted bool
	streaming   bool

	chunks   chan []float64
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	dropped atomic.Uint64 // chunks discarded because the pipeline lagged
}

// NewStreamer wires the pipeline and starts its goroutine. The stream
// itself stays idle until permission is granted. Close releases the
// goroutine; the gateway is owned by the caller.
func NewStreamer(cfg *config.Config, driver CaptureDriver, perm PermissionProvider, gateway *dsp.Gateway, dist *Distributor) *Streamer {
	s := &Streamer{
		driver:  driver,
		perm:    perm,
		gateway: gateway,
		coord:   NewCoordinator(cfg.Pitch, cfg.Audio.WindowSize, driver.SampleRate()),
		dist:    dist,
		state:   PermissionPending,
		chunks:  make(chan []float64, 32),
		stop:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Permission returns the current permission state.
func (s *Streamer) Permission() PermissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsStreaming reports whether capture is currently running.
func (s *Streamer) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// Subscribe registers a listener on the distributor.
func (s *Streamer) Subscribe(l Listener) func() {
	return s.dist.Subscribe(l)
}

// Latest returns the most recently published sample.
func (s *Streamer) Latest() Sample {
	return s.dist.Latest()
}

// RequestPermission drives Pending/Denied -> Requesting -> Granted or
// Denied. Calling while a request is already running waits for and
// returns the in-flight result instead of issuing a second probe. The
// first grant auto-starts streaming exactly once.
func (s *Streamer) RequestPermission() PermissionState {
	s.mu.Lock()
	switch s.state {
	case PermissionGranted:
		s.mu.Unlock()
		return PermissionGranted
	case PermissionRequesting:
		wait := s.inflight
		s.mu.Unlock()
		<-wait
		return s.Permission()
	}
	wait := make(chan struct{})
	s.inflight = wait
	s.state = PermissionRequesting
	s.mu.Unlock()

	granted, err := s.perm.Request()
	if err != nil {
		applog.Warnf("stream: permission probe failed: %v", err)
		granted = false
	}

	result := PermissionDenied
	if granted {
		result = PermissionGranted
	}

	s.mu.Lock()
	s.state = result
	s.inflight = nil
	firstGrant := result == PermissionGranted && !s.autoStarted
	if firstGrant {
		s.autoStarted = true
	}
	s.mu.Unlock()
	close(wait)

	if firstGrant {
		if err := s.StartStreaming(); err != nil {
			applog.Errorf("stream: auto-start failed: %v", err)
		}
	}
	return result
}

// Revoke models an external OS-level revocation: streaming stops and
// the state becomes Denied until a fresh RequestPermission.
func (s *Streamer) Revoke() {
	s.StopStreaming()
	s.mu.Lock()
	s.state = PermissionDenied
	s.mu.Unlock()
}

// StartStreaming begins capture. Requires Granted permission; starting
// while already streaming is a no-op.
func (s *Streamer) StartStreaming() error {
	s.mu.Lock()
	if s.state != PermissionGranted {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("cannot start streaming with permission %s", state)
	}
	if s.streaming {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.driver.Start(s.onChunk, s.onCaptureError); err != nil {
		return fmt.Errorf("capture start: %w", err)
	}

	s.mu.Lock()
	s.streaming = true
	s.mu.Unlock()
	s.dist.SetStreaming(true)
	applog.Infof("stream: capture started at %d Hz", s.driver.SampleRate())
	return nil
}

// StopStreaming halts capture and further estimation. Stopping while
// not streaming is a no-op. Permission is not revoked and the last
// published sample is kept; consumers age it out via the freshness
// rule.
func (s *Streamer) StopStreaming() {
	s.mu.Lock()
	if !s.streaming {
		s.mu.Unlock()
		return
	}
	s.streaming = false
	s.mu.Unlock()

	if err := s.driver.Stop(); err != nil {
		applog.Warnf("stream: capture stop: %v", err)
	}
	s.dist.SetStreaming(false)
	applog.Infof("stream: capture stopped")
}

// Close stops streaming and releases the pipeline goroutine.
func (s *Streamer) Close() {
	s.StopStreaming()
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
}

// DroppedChunks returns the number of capture chunks discarded because
// the pipeline could not keep up.
func (s *Streamer) DroppedChunks() uint64 {
	return s.dropped.Load()
}

// onChunk runs on the capture goroutine; it must never block the
// driver, so a full pipeline drops the chunk.
func (s *Streamer) onChunk(chunk []float64) {
	buf := make([]float64, len(chunk))
	copy(buf, chunk)
	select {
	case s.chunks <- buf:
	default:
		s.dropped.Add(1)
	}
}

// onCaptureError flips streaming off. No automatic reconnect; a fresh
// StartStreaming is required.
func (s *Streamer) onCaptureError(err error) {
	applog.Errorf("stream: capture error: %v", err)
	s.StopStreaming()
}

// run is the single pipeline goroutine. It owns the coordinator and is
// the distributor's only writer; at most one gateway call is pending at
// any time.
func (s *Streamer) run() {
	defer s.wg.Done()

	var pending <-chan dsp.Result
	for {
		if pending == nil {
			select {
			case chunk := <-s.chunks:
				if req, ok := s.coord.Absorb(chunk); ok {
					pending = s.gateway.Estimate(req)
				}
			case <-s.stop:
				return
			}
			continue
		}

		select {
		case chunk := <-s.chunks:
			// Coalesces into the window; never queues a second call.
			s.coord.Absorb(chunk)
		case res := <-pending:
			pending = nil
			sample, next, more := s.coord.Complete(res, time.Now())
			s.dist.Publish(sample)
			if more {
				pending = s.gateway.Estimate(next)
			}
		case <-s.stop:
			return
		}
	}
}
