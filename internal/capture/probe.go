// SPDX-License-Identifier: MIT
package capture

import "voicebird/internal/config"

// DeviceProbe implements the pipeline's permission boundary for
// desktop hosts, where there is no OS microphone prompt: access is
// granted when the configured input device resolves and can take
// input.
type DeviceProbe struct {
	cfg config.AudioConfig
}

// NewDeviceProbe creates a probe for the configured input device.
func NewDeviceProbe(cfg config.AudioConfig) *DeviceProbe {
	return &DeviceProbe{cfg: cfg}
}

// Request performs one blocking probe of the input device.
func (p *DeviceProbe) Request() (bool, error) {
	device, err := inputDevice(p.cfg.InputDevice)
	if err != nil {
		return false, err
	}
	return device.MaxInputChannels > 0, nil
}
