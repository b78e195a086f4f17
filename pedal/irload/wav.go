package irload

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag.
const wavFormatPCM = 1

// Load opens and decodes the WAV file at path.
func Load(path string) (*ImpulseResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("irload: open %s: %w", path, err)
	}
	defer f.Close()

	ir, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("irload: %s: %w", path, err)
	}

	return ir, nil
}

// Decode reads an integer PCM WAV stream into an ImpulseResponse.
func Decode(r io.ReadSeeker) (*ImpulseResponse, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
		}

		return nil, ErrInvalidWAV
	}

	if dec.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: unsupported format tag %d", ErrInvalidWAV, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWAV, err)
	}

	numCh := int(dec.NumChans)
	frames := len(buf.Data) / numCh

	if frames == 0 {
		return nil, fmt.Errorf("%w: no sample frames", ErrInvalidWAV)
	}

	bitDepth := int(dec.BitDepth)
	scale := 1 / math.Pow(2, float64(bitDepth-1))

	// 8-bit PCM is unsigned with a 128 midpoint.
	offset := 0.0
	if bitDepth == 8 {
		offset = 128
	}

	ir := &ImpulseResponse{
		SampleRate: float64(dec.SampleRate),
		Channels:   make([][]float64, numCh),
	}

	for ch := range ir.Channels {
		ir.Channels[ch] = make([]float64, frames)
	}

	for i := range frames {
		for ch := range numCh {
			ir.Channels[ch][i] = (float64(buf.Data[i*numCh+ch]) - offset) * scale
		}
	}

	return ir, nil
}

// Encode writes ir as an integer PCM WAV stream with the given bit depth
// (16, 24 or 32). Samples are clipped to [-1, 1].
func Encode(w io.WriteSeeker, ir *ImpulseResponse, bitDepth int) error {
	if err := ir.Validate(); err != nil {
		return err
	}

	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("irload: unsupported bit depth %d", bitDepth)
	}

	numCh := ir.NumChannels()
	frames := ir.Len()
	full := math.Pow(2, float64(bitDepth-1)) - 1
	sampleRate := int(math.Round(ir.SampleRate))

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numCh, SampleRate: sampleRate},
		Data:           make([]int, frames*numCh),
		SourceBitDepth: bitDepth,
	}

	for i := range frames {
		for ch := range numCh {
			v := math.Max(-1, math.Min(1, ir.Channels[ch][i]))
			buf.Data[i*numCh+ch] = int(math.Round(v * full))
		}
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, numCh, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("irload: encode: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("irload: encode: %w", err)
	}

	return nil
}
