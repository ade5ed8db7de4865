// SPDX-License-Identifier: MIT
package capture

import (
	"fmt"
	"io"

	"voicebird/internal/config"

	"github.com/gordonklaus/portaudio"
)

// Device describes one audio device for listing and selection.
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// paDevicesFunc is swappable in tests.
var paDevicesFunc = portaudio.Devices

// HostDevices returns all audio devices known to PortAudio.
func HostDevices() ([]Device, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		}
	}
	return devices, nil
}

// FprintDevices writes a human-readable device listing, used by the
// `list` command.
func FprintDevices(w io.Writer, devices []Device) {
	fmt.Fprintf(w, "\nAvailable Audio Devices\n\n")
	for _, d := range devices {
		deviceType := ""
		switch {
		case d.MaxInputChannels > 0 && d.MaxOutputChannels > 0:
			deviceType = "Input/Output"
		case d.MaxInputChannels > 0:
			deviceType = "Input"
		case d.MaxOutputChannels > 0:
			deviceType = "Output"
		}
		fmt.Fprintf(w, "[%d] %s (%s)\n", d.ID, d.Name, deviceType)
		fmt.Fprintf(w, "    Input channels: %d, Output channels: %d\n", d.MaxInputChannels, d.MaxOutputChannels)
		fmt.Fprintf(w, "    Default sample rate: %.0f Hz\n\n", d.DefaultSampleRate)
	}
}

// inputDevice resolves the configured device ID, with MinDeviceID
// selecting the system default input.
func inputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == config.MinDeviceID {
		device, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("no default input device: %w", err)
		}
		return device, nil
	}

	devices, err := paDevicesFunc()
	if err != nil {
		return nil, err
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	return devices[deviceID], nil
}
