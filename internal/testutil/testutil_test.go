package testutil

import (
	"math"
	"os"
	"testing"

	"github.com/go-audio/wav"
)

func TestDeterministicSignals(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1, 48)
	if len(s) != 48 || math.Abs(s[0]) > 1e-15 {
		t.Fatalf("unexpected sine start: len=%d s[0]=%v", len(s), s[0])
	}

	a := DeterministicNoise(42, 1, 64)
	b := DeterministicNoise(42, 1, 64)
	RequireSliceNearEqual(t, a, b, 0)

	if PeakIndex(Impulse(8, 3)) != 3 {
		t.Fatal("impulse peak not at position 3")
	}

	RequireSilent(t, Impulse(4, 10))

	if PeakIndex(nil) != -1 {
		t.Fatal("PeakIndex(nil) should be -1")
	}
}

func TestChannelsCopiesIndependently(t *testing.T) {
	chs := Channels(DC(0.5, 4), 2)
	chs[0][0] = 9

	if chs[1][0] != 0.5 {
		t.Fatal("channels share backing storage")
	}
}

func TestDecayingNoiseDecays(t *testing.T) {
	ir := DecayingNoise(1, 1024, 8)
	RequireFinite(t, ir)

	head, tail := 0.0, 0.0
	for i := range 128 {
		head += ir[i] * ir[i]
		tail += ir[len(ir)-1-i] * ir[len(ir)-1-i]
	}

	if tail >= head {
		t.Fatalf("tail energy %v not below head energy %v", tail, head)
	}
}

func TestWriteWAV(t *testing.T) {
	path := WriteWAV(t, t.TempDir(), "fixture.wav", 44100, [][]float64{{0, 0.5, -0.5}, {1, 0, -1}})

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("fixture is not a valid WAV file")
	}

	if dec.NumChans != 2 || dec.SampleRate != 44100 || dec.BitDepth != 16 {
		t.Fatalf("unexpected header: ch=%d sr=%d bits=%d", dec.NumChans, dec.SampleRate, dec.BitDepth)
	}
}
