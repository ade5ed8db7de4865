// SPDX-License-Identifier: MIT
package pitch

import "testing"

func seq(start, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(start + i)
	}
	return out
}

func TestSlidingWindowLengthInvariant(t *testing.T) {
	const capacity = 16
	w := NewSlidingWindow(capacity)

	chunkSizes := []int{1, 3, 8, 16, 5, 2, 16, 7}
	for _, size := range chunkSizes {
		w.Push(seq(0, size))
		if w.Len() != capacity {
			t.Fatalf("after chunk of %d: length %d, want %d", size, w.Len(), capacity)
		}
	}
}

func TestSlidingWindowPreservesOrder(t *testing.T) {
	w := NewSlidingWindow(8)
	w.Push(seq(0, 8))  // 0..7
	w.Push(seq(8, 4))  // drops 0..3, appends 8..11

	got := make([]float64, 8)
	w.CopyTo(got)
	want := []float64{4, 5, 6, 7, 8, 9, 10, 11}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("window[%d]: got %.0f, want %.0f (full window %v)", i, got[i], want[i], got)
		}
	}
}

func TestSlidingWindowOversizedChunkResetsToTail(t *testing.T) {
	w := NewSlidingWindow(4)
	w.Push(seq(0, 4))
	w.Push(seq(100, 10)) // keeps the last 4 samples: 106..109

	got := make([]float64, 4)
	w.CopyTo(got)
	want := []float64{106, 107, 108, 109}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("window[%d]: got %.0f, want %.0f", i, got[i], want[i])
		}
	}
}

func TestSlidingWindowEmptyChunkIsNoOp(t *testing.T) {
	w := NewSlidingWindow(4)
	w.Push(seq(1, 4))
	before := make([]float64, 4)
	w.CopyTo(before)

	w.Push(nil)
	after := make([]float64, 4)
	w.CopyTo(after)
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("empty chunk must not change the window")
		}
	}
}

func TestHistoryBounded(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Add(Sample{WindowID: uint64(i)})
	}
	if h.Len() != 3 {
		t.Fatalf("history length: got %d, want 3", h.Len())
	}
	last, ok := h.Last()
	if !ok || last.WindowID != 5 {
		t.Errorf("last: got %v %d, want window 5", ok, last.WindowID)
	}
	prev, ok := h.Prev()
	if !ok || prev.WindowID != 4 {
		t.Errorf("prev: got %v %d, want window 4", ok, prev.WindowID)
	}
}
