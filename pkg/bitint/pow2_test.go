// SPDX-License-Identifier: MIT
package bitint

import "testing"

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{-8, 1},   // Negative
		{0, 1},    // Zero
		{1, 1},    // Smallest power
		{2, 2},    // Exact power preserved
		{3, 4},    // Round up
		{1024, 1024},
		{1025, 2048},
		{4096, 4096}, // Typical analysis window
		{9000, 16384},
	}

	for _, tt := range tests {
		got := NextPowerOfTwo(tt.input)
		if got != tt.expected {
			t.Errorf("NextPowerOfTwo(%d): got %d, want %d", tt.input, got, tt.expected)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		input    int
		expected bool
	}{
		{-4, false},
		{0, false},
		{1, true},
		{2, true},
		{3, false},
		{512, true},
		{4096, true},
		{4097, false},
	}

	for _, tt := range tests {
		if got := IsPowerOfTwo(tt.input); got != tt.expected {
			t.Errorf("IsPowerOfTwo(%d): got %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func BenchmarkNextPowerOfTwo(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		_ = NextPowerOfTwo(9000)
	}
}
