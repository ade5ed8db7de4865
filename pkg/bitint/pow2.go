// SPDX-License-Identifier: MIT
/*
Package bitint provides power-of-2 helpers for sizing audio analysis
windows. FFT-based pitch estimation requires power-of-2 frame lengths,
and the sliding sample window is sized up front to match.

All operations are O(1), allocation-free and safe to call from the
audio callback.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size.
// Exact powers of 2 are returned unchanged; zero and negative inputs
// return 1. The size-1 subtraction keeps exact powers from being
// doubled.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}

	if ^uint(0)>>63 == 0 {
		return int(1 << (bits.Len64(uint64(size - 1))))
	}

	return int(1 << (bits.Len32(uint32(size - 1))))
}

// IsPowerOfTwo reports whether n is a positive power of 2.
// Powers of 2 have exactly one bit set, so n & (n-1) clears it.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
