package chain

import (
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-pedal/dsp/buffer"
	"github.com/cwbudde/algo-pedal/dsp/core"
)

// Default gains in decibels.
const (
	DefaultInputGainDB  = 30.0
	DefaultOutputGainDB = 0.0
)

// Option configures a Chain.
type Option func(*config)

type config struct {
	cutoff       float64
	amount       *Amount
	inputGainDB  float64
	outputGainDB float64
	rampSamples  int
	convOpts     []ConvolutionOption
}

// WithCutoff sets the lowpass corner frequency in Hz.
func WithCutoff(hz float64) Option {
	return func(c *config) {
		if hz > 0 {
			c.cutoff = hz
		}
	}
}

// WithAmount shares amount with the waveshaper, so another component can
// drive it.
func WithAmount(amount *Amount) Option {
	return func(c *config) {
		if amount != nil {
			c.amount = amount
		}
	}
}

// WithInputGainDB sets the initial input gain.
func WithInputGainDB(db float64) Option {
	return func(c *config) {
		c.inputGainDB = db
	}
}

// WithOutputGainDB sets the initial output gain.
func WithOutputGainDB(db float64) Option {
	return func(c *config) {
		c.outputGainDB = db
	}
}

// WithGainRamp makes gain changes ramp linearly over n samples.
func WithGainRamp(n int) Option {
	return func(c *config) {
		c.rampSamples = max(0, n)
	}
}

// WithConvolutionOptions forwards options to the convolution stage.
func WithConvolutionOptions(opts ...ConvolutionOption) Option {
	return func(c *config) {
		c.convOpts = append(c.convOpts, opts...)
	}
}

// Chain runs the five pedal stages in order.
type Chain struct {
	filter      *Filter
	inputGain   *Gain
	shaper      *WaveShaper
	outputGain  *Gain
	convolution *Convolution

	stages [NumStages]Stage

	spec     core.ProcessSpec
	prepared atomic.Bool
}

// New composes the chain. It must be prepared before processing.
func New(opts ...Option) *Chain {
	cfg := config{
		cutoff:       DefaultCutoff,
		inputGainDB:  DefaultInputGainDB,
		outputGainDB: DefaultOutputGainDB,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	c := &Chain{
		filter:      NewFilter(cfg.cutoff),
		inputGain:   NewGain(cfg.inputGainDB, cfg.rampSamples),
		shaper:      NewWaveShaper(cfg.amount),
		outputGain:  NewGain(cfg.outputGainDB, cfg.rampSamples),
		convolution: NewConvolution(cfg.convOpts...),
	}

	c.stages = [NumStages]Stage{
		FilterIndex:      c.filter,
		InputGainIndex:   c.inputGain,
		WaveShaperIndex:  c.shaper,
		OutputGainIndex:  c.outputGain,
		ConvolutionIndex: c.convolution,
	}

	return c
}

// Prepare validates spec and prepares every stage. It may be called again
// whenever the device parameters change, but never concurrently with
// Process.
func (c *Chain) Prepare(spec core.ProcessSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	c.prepared.Store(false)

	for i, st := range c.stages {
		if err := st.Prepare(spec); err != nil {
			return fmt.Errorf("chain: prepare stage %d: %w", i, err)
		}
	}

	c.spec = spec
	c.prepared.Store(true)

	return nil
}

// Prepared reports whether Prepare has succeeded.
func (c *Chain) Prepared() bool {
	return c.prepared.Load()
}

// Spec returns the prepared spec.
func (c *Chain) Spec() core.ProcessSpec {
	return c.spec
}

// Process runs all stages over block in place. On error the block is left
// untouched. Empty blocks are a no-op.
func (c *Chain) Process(block buffer.Block) error {
	if !c.prepared.Load() {
		return ErrNotPrepared
	}

	if block.NumSamples() > c.spec.MaxBlockSize {
		return ErrBlockTooLarge
	}

	if block.NumChannels() != c.spec.Channels {
		return ErrChannelMismatch
	}

	if block.NumSamples() == 0 {
		return nil
	}

	for _, st := range c.stages {
		st.Process(block)
	}

	return nil
}

// Reset clears the state of every stage.
func (c *Chain) Reset() {
	for _, st := range c.stages {
		st.Reset()
	}
}

// Len returns the number of stages.
func (c *Chain) Len() int { return len(c.stages) }

// Stage returns the stage at index i, or nil when out of range.
func (c *Chain) Stage(i int) Stage {
	if i < 0 || i >= len(c.stages) {
		return nil
	}

	return c.stages[i]
}

// Filter returns the lowpass stage.
func (c *Chain) Filter() *Filter { return c.filter }

// InputGain returns the gain stage ahead of the waveshaper.
func (c *Chain) InputGain() *Gain { return c.inputGain }

// WaveShaper returns the waveshaper stage.
func (c *Chain) WaveShaper() *WaveShaper { return c.shaper }

// OutputGain returns the gain stage after the waveshaper.
func (c *Chain) OutputGain() *Gain { return c.outputGain }

// Convolution returns the cabinet stage.
func (c *Chain) Convolution() *Convolution { return c.convolution }
