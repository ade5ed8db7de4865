// SPDX-License-Identifier: MIT
package game

import "time"

// Clock abstracts the frame clock so physics and sequencing can be
// driven by a fake in tests and by the render loop's tick in the UI.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }
