// SPDX-License-Identifier: MIT
/*
Package capture wraps PortAudio microphone input behind the pipeline's
CaptureDriver boundary, along with device discovery, a device-probe
permission provider, and an optional WAV recording tap.
*/
package capture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Initialize sets up the PortAudio subsystem. Must be called before any
// capture operation and paired with a Terminate call.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem. Defer this
// immediately after Initialize.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}
