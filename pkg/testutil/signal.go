// Package testutil provides shared signal generators and fakes for tests.
package testutil

import "math"

// GenerateSineWave returns size samples of a pure tone, normalized to [-0.9, 0.9].
func GenerateSineWave(size int, sampleRate, frequency float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*frequency*t) * 0.9
	}
	return buffer
}

// GenerateComplexWave returns a 440Hz fundamental with two harmonics,
// closer to a sung vowel than a pure sine.
func GenerateComplexWave(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		tm := float64(i) / sampleRate
		buffer[i] = math.Sin(2*math.Pi*440*tm)*0.5 +
			math.Sin(2*math.Pi*880*tm)*0.3 +
			math.Sin(2*math.Pi*1320*tm)*0.2
	}
	return buffer
}

// GenerateSilence returns size zero samples.
func GenerateSilence(size int) []float64 {
	return make([]float64, size)
}
