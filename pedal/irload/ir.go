package irload

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotFound is returned when a locator cannot resolve a resource.
	ErrNotFound = errors.New("irload: impulse response not found")
	// ErrInvalidWAV is returned for files that are not decodable PCM WAV.
	ErrInvalidWAV = errors.New("irload: invalid wav file")
	// ErrInvalidIR is returned by Validate for malformed impulse responses.
	ErrInvalidIR = errors.New("irload: invalid impulse response")
)

// ImpulseResponse is a decoded, non-interleaved impulse response.
type ImpulseResponse struct {
	SampleRate float64
	Channels   [][]float64
}

// Len returns the number of frames, or 0 without channels.
func (ir *ImpulseResponse) Len() int {
	if ir == nil || len(ir.Channels) == 0 {
		return 0
	}

	return len(ir.Channels[0])
}

// NumChannels returns the channel count.
func (ir *ImpulseResponse) NumChannels() int {
	if ir == nil {
		return 0
	}

	return len(ir.Channels)
}

// Validate reports whether ir has at least one non-empty channel, equal
// channel lengths, finite samples and a positive sample rate.
func (ir *ImpulseResponse) Validate() error {
	if ir == nil || len(ir.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidIR)
	}

	if ir.SampleRate <= 0 || math.IsNaN(ir.SampleRate) || math.IsInf(ir.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidIR, ir.SampleRate)
	}

	n := len(ir.Channels[0])
	if n == 0 {
		return fmt.Errorf("%w: empty channel", ErrInvalidIR)
	}

	for ch, data := range ir.Channels {
		if len(data) != n {
			return fmt.Errorf("%w: channel %d has %d frames, want %d", ErrInvalidIR, ch, len(data), n)
		}

		for i, v := range data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: channel %d sample %d is %v", ErrInvalidIR, ch, i, v)
			}
		}
	}

	return nil
}

// Clone returns a deep copy.
func (ir *ImpulseResponse) Clone() *ImpulseResponse {
	if ir == nil {
		return nil
	}

	out := &ImpulseResponse{SampleRate: ir.SampleRate, Channels: make([][]float64, len(ir.Channels))}
	for ch, data := range ir.Channels {
		out.Channels[ch] = append([]float64(nil), data...)
	}

	return out
}
