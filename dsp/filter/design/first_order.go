package design

import (
	"math"

	"github.com/cwbudde/algo-pedal/dsp/filter/biquad"
)

// FirstOrderLowpass designs a one-pole lowpass via the bilinear transform
// with frequency prewarping, so the response is exactly -3 dB at freq.
//
// The result is a first-order section (B2=A2=0). Invalid parameters
// (freq outside (0, Nyquist) or a non-positive sample rate) yield zero
// coefficients.
func FirstOrderLowpass(freq, sampleRate float64) biquad.Coefficients {
	k, ok := prewarp(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	norm := 1 / (1 + k)

	return biquad.Coefficients{
		B0: k * norm,
		B1: k * norm,
		A1: (k - 1) * norm,
	}
}

// FirstOrderHighpass designs a one-pole highpass, the complement of
// FirstOrderLowpass.
func FirstOrderHighpass(freq, sampleRate float64) biquad.Coefficients {
	k, ok := prewarp(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	norm := 1 / (1 + k)

	return biquad.Coefficients{
		B0: norm,
		B1: -norm,
		A1: (k - 1) * norm,
	}
}

func prewarp(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || freq <= 0 || freq >= sampleRate/2 {
		return 0, false
	}

	return math.Tan(math.Pi * freq / sampleRate), true
}
