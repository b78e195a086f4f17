// Package testutil holds deterministic signals, tolerance checks and audio
// fixtures shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// DeterministicNoise generates uniform white noise in [-amplitude, amplitude)
// from a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Impulse generates a unit impulse at pos. Out-of-range positions yield
// silence.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// DC generates a constant signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// Channels returns numCh independent copies of src, the layout a
// multi-channel block or impulse response expects.
func Channels(src []float64, numCh int) [][]float64 {
	out := make([][]float64, numCh)
	for ch := range out {
		out[ch] = append([]float64(nil), src...)
	}

	return out
}

// DecayingNoise returns noise shaped by an exponential envelope, a crude
// stand-in for a cabinet impulse response.
func DecayingNoise(seed int64, length int, decay float64) []float64 {
	out := DeterministicNoise(seed, 1, length)
	for i := range out {
		out[i] *= math.Exp(-decay * float64(i) / float64(length))
	}

	return out
}
