package design

import (
	"math"
	"testing"
)

func TestFirstOrderLowpassResponse(t *testing.T) {
	for _, sr := range []float64{44100, 48000, 96000} {
		c := FirstOrderLowpass(1000, sr)

		if got := c.MagnitudeDB(1000, sr); math.Abs(got+3.0103) > 1e-3 {
			t.Fatalf("sr=%v: |H(fc)| = %v dB, want -3.01", sr, got)
		}

		if got := c.MagnitudeDB(1e-3, sr); math.Abs(got) > 1e-6 {
			t.Fatalf("sr=%v: DC gain = %v dB, want 0", sr, got)
		}

		if got := c.MagnitudeDB(sr/2*0.999, sr); got > -30 {
			t.Fatalf("sr=%v: near-Nyquist gain = %v dB, want strong attenuation", sr, got)
		}
	}
}

func TestFirstOrderHighpassComplementsLowpass(t *testing.T) {
	lp := FirstOrderLowpass(1000, 48000)
	hp := FirstOrderHighpass(1000, 48000)

	for _, f := range []float64{100, 1000, 5000} {
		sum := lp.Response(f, 48000) + hp.Response(f, 48000)
		if math.Abs(real(sum)-1) > 1e-12 || math.Abs(imag(sum)) > 1e-12 {
			t.Fatalf("f=%v: lp+hp = %v, want 1", f, sum)
		}
	}
}

func TestFirstOrderInvalidParams(t *testing.T) {
	tests := []struct {
		name     string
		freq, sr float64
	}{
		{"zero freq", 0, 48000},
		{"above nyquist", 30000, 48000},
		{"zero rate", 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !FirstOrderLowpass(tt.freq, tt.sr).IsZero() {
				t.Fatal("expected zero coefficients")
			}
			if !FirstOrderHighpass(tt.freq, tt.sr).IsZero() {
				t.Fatal("expected zero coefficients")
			}
		})
	}
}
