package chain

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-pedal/dsp/buffer"
	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/filter/biquad"
	"github.com/cwbudde/algo-pedal/dsp/filter/design"
)

// DefaultCutoff is the lowpass corner frequency in Hz.
const DefaultCutoff = 1000.0

// maxCutoffRatio keeps the corner below Nyquist where the bilinear design
// is defined.
const maxCutoffRatio = 0.45

// Filter is a first-order lowpass with one section per channel.
type Filter struct {
	cutoff     Amount
	sampleRate Amount

	coeffs  atomic.Pointer[biquad.Coefficients]
	applied *biquad.Coefficients

	sections []biquad.Section
}

// NewFilter returns a lowpass filter with the given corner frequency.
func NewFilter(cutoff float64) *Filter {
	f := &Filter{}
	f.cutoff.Store(cutoff)

	return f
}

// Cutoff returns the configured corner frequency in Hz.
func (f *Filter) Cutoff() float64 {
	return f.cutoff.Load()
}

// SetCutoff changes the corner frequency. It is safe to call while audio
// runs; the new coefficients take effect at the next block.
func (f *Filter) SetCutoff(hz float64) error {
	if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidCutoff, hz)
	}

	f.cutoff.Store(hz)

	if sr := f.sampleRate.Load(); sr > 0 {
		f.publish(hz, sr)
	}

	return nil
}

// Coefficients returns the currently published coefficients.
func (f *Filter) Coefficients() biquad.Coefficients {
	if c := f.coeffs.Load(); c != nil {
		return *c
	}

	return biquad.Coefficients{}
}

// Prepare designs the coefficients for spec.SampleRate and allocates one
// section per channel.
func (f *Filter) Prepare(spec core.ProcessSpec) error {
	f.sampleRate.Store(spec.SampleRate)
	f.publish(f.cutoff.Load(), spec.SampleRate)

	c := f.coeffs.Load()
	f.sections = make([]biquad.Section, spec.Channels)

	for i := range f.sections {
		f.sections[i].SetCoefficients(*c)
	}

	f.applied = c

	return nil
}

func (f *Filter) publish(hz, sampleRate float64) {
	hz = math.Min(hz, maxCutoffRatio*sampleRate)
	c := design.FirstOrderLowpass(hz, sampleRate)
	f.coeffs.Store(&c)
}

// Process filters every channel in place.
func (f *Filter) Process(block buffer.Block) {
	if c := f.coeffs.Load(); c != f.applied && c != nil {
		for i := range f.sections {
			f.sections[i].SetCoefficients(*c)
		}

		f.applied = c
	}

	n := min(block.NumChannels(), len(f.sections))
	for ch := range n {
		f.sections[ch].ProcessBlock(block.Channel(ch))
	}
}

// Reset clears the filter memory.
func (f *Filter) Reset() {
	for i := range f.sections {
		f.sections[i].Reset()
	}
}
