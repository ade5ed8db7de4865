// SPDX-License-Identifier: MIT
package capture

import (
	"fmt"
	"sync"
	"time"

	"voicebird/internal/config"
	applog "voicebird/internal/log"

	"github.com/gordonklaus/portaudio"
)

// startAttempts and the exponential backoff base are the single
// documented retry policy for flaky device startup.
const (
	startAttempts    = 3
	startBackoffBase = 100 * time.Millisecond
)

// Driver captures mono microphone input through PortAudio and delivers
// float64 chunks to the pipeline from the audio callback. It implements
// pitch.CaptureDriver.
type Driver struct {
	cfg     config.AudioConfig
	device  *portaudio.DeviceInfo
	latency time.Duration

	mu       sync.Mutex
	stream   *portaudio.Stream
	onChunk  func([]float64)
	onError  func(error)
	recorder *Recorder

	scratch []float64 // float32 -> float64 conversion buffer
}

// NewDriver resolves the configured input device. The stream is not
// opened until Start.
func NewDriver(cfg config.AudioConfig) (*Driver, error) {
	device, err := inputDevice(cfg.InputDevice)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		cfg:     cfg,
		device:  device,
		scratch: make([]float64, cfg.FramesPerBuffer),
	}
	if cfg.LowLatency {
		d.latency = device.DefaultLowInputLatency
	} else {
		d.latency = device.DefaultHighInputLatency
	}
	return d, nil
}

// SampleRate returns the configured capture rate in Hz.
func (d *Driver) SampleRate() int {
	return int(d.cfg.SampleRate)
}

// SetRecorder attaches an optional WAV tap that receives every raw
// chunk. Pass nil to detach. Safe to call while stopped only.
func (d *Driver) SetRecorder(r *Recorder) {
	d.mu.Lock()
	d.recorder = r
	d.mu.Unlock()
}

// Start opens the input stream and begins delivering chunks. Device
// startup is retried with exponential backoff since some hosts report
// the device busy right after a previous stream closed.
func (d *Driver) Start(onChunk func([]float64), onError func(error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream != nil {
		return nil
	}
	d.onChunk = onChunk
	d.onError = onError

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: 1,
			Device:   d.device,
			Latency:  d.latency,
		},
		FramesPerBuffer: d.cfg.FramesPerBuffer,
		SampleRate:      d.cfg.SampleRate,
	}

	var err error
	for attempt := 0; attempt < startAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(startBackoffBase * (1 << attempt))
			applog.Debugf("capture: retrying stream start, attempt %d", attempt+1)
		}

		var stream *portaudio.Stream
		stream, err = portaudio.OpenStream(params, d.process)
		if err != nil {
			continue
		}
		if err = stream.Start(); err != nil {
			stream.Close()
			continue
		}
		d.stream = stream
		return nil
	}
	return fmt.Errorf("failed to start capture after %d attempts: %w", startAttempts, err)
}

// Stop halts and closes the stream. Stopping a stopped driver is a
// no-op.
func (d *Driver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stream == nil {
		return nil
	}

	stopErr := d.stream.Stop()
	closeErr := d.stream.Close()
	d.stream = nil
	d.onChunk = nil
	d.onError = nil

	if stopErr != nil {
		return fmt.Errorf("capture stop: %w", stopErr)
	}
	if closeErr != nil {
		return fmt.Errorf("capture close: %w", closeErr)
	}
	return nil
}

// process is the PortAudio callback. It runs on the audio thread, so it
// only converts the chunk and hands it off; the pipeline must not be
// blocked from here.
func (d *Driver) process(in []float32) {
	for i, s := range in {
		d.scratch[i] = float64(s)
	}
	chunk := d.scratch[:len(in)]

	if d.recorder != nil {
		if err := d.recorder.Write(chunk); err != nil {
			applog.Warnf("capture: recording write failed: %v", err)
		}
	}
	if d.onChunk != nil {
		d.onChunk(chunk)
	}
}
