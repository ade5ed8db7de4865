// SPDX-License-Identifier: MIT
package pitch

// PermissionState is the microphone access lifecycle. It starts
// Pending, moves through Requesting, and settles on Granted or Denied.
// Denied is terminal until a fresh explicit request.
type PermissionState int

const (
	PermissionPending PermissionState = iota
	PermissionRequesting
	PermissionGranted
	PermissionDenied
)

// String returns the string representation of the PermissionState.
func (s PermissionState) String() string {
	switch s {
	case PermissionPending:
		return "pending"
	case PermissionRequesting:
		return "requesting"
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// PermissionProvider is the platform boundary for microphone access.
// Desktop builds probe the capture device (a device that opens is a
// grant); mobile or browser ports would prompt the OS here.
type PermissionProvider interface {
	// Request performs one blocking permission probe.
	Request() (granted bool, err error)
}
