// SPDX-License-Identifier: MIT
package pitch

// History is a bounded ring of recent samples consulted by the
// coordinator's restriction heuristic. Length never exceeds the
// configured size.
type History struct {
	samples []Sample
	size    int
}

// NewHistory creates a history bounded to size entries.
func NewHistory(size int) *History {
	if size < 2 {
		size = 2
	}
	return &History{samples: make([]Sample, 0, size), size: size}
}

// Add appends s, evicting the oldest entry when full.
func (h *History) Add(s Sample) {
	if len(h.samples) == h.size {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:h.size-1]
	}
	h.samples = append(h.samples, s)
}

// Len returns the number of stored samples.
func (h *History) Len() int {
	return len(h.samples)
}

// Last returns the most recent sample, if any.
func (h *History) Last() (Sample, bool) {
	if len(h.samples) == 0 {
		return Sample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// Prev returns the second most recent sample, if any.
func (h *History) Prev() (Sample, bool) {
	if len(h.samples) < 2 {
		return Sample{}, false
	}
	return h.samples[len(h.samples)-2], true
}
