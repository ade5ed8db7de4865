// SPDX-License-Identifier: MIT
package pitch

// SlidingWindow keeps the most recent capacity samples with partial
// overlap between consecutive analysis windows. Chunks slide in from
// the right; the oldest samples fall off the left. Not safe for
// concurrent use; the pipeline goroutine is the only writer.
type SlidingWindow struct {
	buf []float64
}

// NewSlidingWindow creates a window of exactly capacity samples,
// initially silent.
func NewSlidingWindow(capacity int) *SlidingWindow {
	if capacity < 1 {
		capacity = 1
	}
	return &SlidingWindow{buf: make([]float64, capacity)}
}

// Push slides chunk into the window: the oldest len(chunk) samples are
// dropped and chunk is appended. A chunk longer than the capacity
// resets the window to the chunk's tail; continuity degrades but no
// error is raised. Sample order is always preserved.
func (w *SlidingWindow) Push(chunk []float64) {
	c := len(w.buf)
	l := len(chunk)
	if l == 0 {
		return
	}
	if l >= c {
		copy(w.buf, chunk[l-c:])
		return
	}
	copy(w.buf, w.buf[l:])
	copy(w.buf[c-l:], chunk)
}

// Len returns the fixed window capacity.
func (w *SlidingWindow) Len() int {
	return len(w.buf)
}

// CopyTo copies the current window contents into dst, which must be
// exactly capacity long. The coordinator uses this to hand the gateway
// a stable snapshot while new chunks keep sliding in.
func (w *SlidingWindow) CopyTo(dst []float64) {
	copy(dst, w.buf)
}
