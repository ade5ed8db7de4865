// SPDX-License-Identifier: MIT
package capture

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Recorder writes raw capture chunks to a mono WAV file. State is
// managed atomically so the audio callback can check it without locks;
// the sample buffer is reused across writes to keep the hot path
// allocation-free.
type Recorder struct {
	recording  int32 // atomic flag
	sampleRate int
	bitDepth   int
	scale      float64

	outputFile *os.File
	encoder    *wav.Encoder
	sampleBuf  *audio.IntBuffer
}

// NewRecorder prepares a recorder; no file is touched until Start.
func NewRecorder(sampleRate, bitDepth, framesPerBuffer int) (*Recorder, error) {
	if bitDepth != 16 && bitDepth != 32 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
	scale := float64(int64(1)<<(bitDepth-1)) - 1

	return &Recorder{
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
		scale:      scale,
		sampleBuf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: 1,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: bitDepth,
			Data:           make([]int, framesPerBuffer),
		},
	}, nil
}

// Start begins recording to filename. Starting while recording is an
// error.
func (r *Recorder) Start(filename string) error {
	if atomic.LoadInt32(&r.recording) == 1 {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create recording: %w", err)
	}
	r.outputFile = file
	r.encoder = wav.NewEncoder(file, r.sampleRate, r.bitDepth, 1, 1)

	atomic.StoreInt32(&r.recording, 1)
	return nil
}

// Write appends one chunk of normalized [-1, 1] samples. A no-op while
// not recording, so the capture callback can call it unconditionally.
func (r *Recorder) Write(chunk []float64) error {
	if atomic.LoadInt32(&r.recording) == 0 || r.encoder == nil {
		return nil
	}

	if cap(r.sampleBuf.Data) < len(chunk) {
		r.sampleBuf.Data = make([]int, len(chunk))
	}
	r.sampleBuf.Data = r.sampleBuf.Data[:len(chunk)]
	for i, s := range chunk {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		r.sampleBuf.Data[i] = int(s * r.scale)
	}
	return r.encoder.Write(r.sampleBuf)
}

// Stop finalizes the WAV header and closes the file. Stopping a
// stopped recorder is a no-op.
func (r *Recorder) Stop() error {
	if atomic.LoadInt32(&r.recording) == 0 {
		return nil
	}
	atomic.StoreInt32(&r.recording, 0)

	if r.encoder != nil {
		if err := r.encoder.Close(); err != nil {
			return fmt.Errorf("finalize recording: %w", err)
		}
		r.encoder = nil
	}
	if r.outputFile != nil {
		if err := r.outputFile.Close(); err != nil {
			return fmt.Errorf("close recording: %w", err)
		}
		r.outputFile = nil
	}
	return nil
}
