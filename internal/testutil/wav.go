package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV writes channels as a 16-bit PCM WAV file named name in dir and
// returns its path. Samples are clipped to [-1, 1].
func WriteWAV(t testing.TB, dir, name string, sampleRate int, channels [][]float64) string {
	t.Helper()

	if len(channels) == 0 {
		t.Fatal("testutil: WriteWAV needs at least one channel")
	}

	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("testutil: create %s: %v", path, err)
	}
	defer f.Close()

	numCh := len(channels)
	frames := len(channels[0])

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numCh, SampleRate: sampleRate},
		Data:           make([]int, frames*numCh),
		SourceBitDepth: 16,
	}

	for i := range frames {
		for ch := range numCh {
			v := math.Max(-1, math.Min(1, channels[ch][i]))
			buf.Data[i*numCh+ch] = int(math.Round(v * 32767))
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, numCh, 1)
	if err := enc.Write(buf); err != nil {
		t.Fatalf("testutil: write %s: %v", path, err)
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("testutil: close %s: %v", path, err)
	}

	return path
}

// WriteFile writes raw bytes to dir/name and returns the path. Used for
// corrupt fixtures.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("testutil: write %s: %v", path, err)
	}

	return path
}
