package chain

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-pedal/dsp/buffer"
	"github.com/cwbudde/algo-pedal/dsp/conv"
	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/dsp/resample"
	"github.com/cwbudde/algo-pedal/pedal/irload"
)

const (
	// DefaultMaxIRLength caps impulse responses at this many samples after
	// resampling to the processing rate.
	DefaultMaxIRLength = 1024

	// normalizeTarget is the L2 norm of the loudest channel after
	// normalisation.
	normalizeTarget = 0.125
)

// LoadResult describes the outcome of an impulse response load.
type LoadResult struct {
	Source     string
	Channels   int
	Length     int
	SampleRate float64
	Err        error
}

// OK reports whether the load succeeded.
func (r LoadResult) OK() bool { return r.Err == nil }

// ConvolutionOption configures a Convolution stage.
type ConvolutionOption func(*convolutionConfig)

type convolutionConfig struct {
	maxLength int
	normalize bool
	quality   resample.Quality
}

// WithMaxIRLength overrides DefaultMaxIRLength.
func WithMaxIRLength(n int) ConvolutionOption {
	return func(c *convolutionConfig) {
		if n > 0 {
			c.maxLength = n
		}
	}
}

// WithNormalize enables or disables impulse response normalisation
// (enabled by default).
func WithNormalize(on bool) ConvolutionOption {
	return func(c *convolutionConfig) {
		c.normalize = on
	}
}

// WithResampleQuality selects the quality used to bring impulse responses
// to the processing rate.
func WithResampleQuality(q resample.Quality) ConvolutionOption {
	return func(c *convolutionConfig) {
		c.quality = q
	}
}

// kernelSet is an immutable-once-published set of per-channel convolvers.
// Only the audio context touches the convolver state after publication.
type kernelSet struct {
	convolvers []*conv.StreamingOverlapAdd
	result     LoadResult
}

// Convolution is the cabinet stage: a stereo FFT convolution with an
// optional impulse response. Without an impulse response it is the
// identity.
//
// Loads and bypasses run on the control context and publish a complete
// kernel set with one atomic store; Process loads the pointer once per
// block, so a block is convolved entirely by the old or the new response.
type Convolution struct {
	cfg convolutionConfig

	// mu serialises control-context operations. Process never takes it.
	mu       sync.Mutex
	spec     core.ProcessSpec
	prepared bool
	current  *irload.ImpulseResponse
	source   string

	active atomic.Pointer[kernelSet]
}

// NewConvolution returns an empty (passthrough) convolution stage.
func NewConvolution(opts ...ConvolutionOption) *Convolution {
	cfg := convolutionConfig{
		maxLength: DefaultMaxIRLength,
		normalize: true,
		quality:   resample.QualityBalanced,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Convolution{cfg: cfg}
}

// Active reports whether an impulse response is live.
func (c *Convolution) Active() bool {
	return c.active.Load() != nil
}

// Current returns the result of the live load, if any.
func (c *Convolution) Current() (LoadResult, bool) {
	ks := c.active.Load()
	if ks == nil {
		return LoadResult{}, false
	}

	return ks.result, true
}

// Prepare rebuilds the live impulse response for the new spec.
func (c *Convolution) Prepare(spec core.ProcessSpec) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.spec = spec
	c.prepared = true

	if c.current == nil {
		c.active.Store(nil)
		return nil
	}

	ks, err := c.build(c.current, c.source)
	if err != nil {
		c.active.Store(nil)
		return fmt.Errorf("chain: rebuild impulse response %s: %w", c.source, err)
	}

	c.active.Store(ks)

	return nil
}

// LoadImpulseResponse installs ir as the cabinet response. It is safe to
// call from any goroutine except the audio one. On failure the previous
// response stays live and the error is returned in the result.
//
// Before the first Prepare the response is only stored; the convolvers are
// built when the processing rate is known.
func (c *Convolution) LoadImpulseResponse(ir *irload.ImpulseResponse, source string) LoadResult {
	res := LoadResult{Source: source}

	if ir == nil || ir.Len() == 0 {
		res.Err = ErrEmptyImpulseResponse
		return res
	}

	if err := ir.Validate(); err != nil {
		res.Err = fmt.Errorf("chain: load %s: %w", source, err)
		return res
	}

	res.Channels = ir.NumChannels()
	res.SampleRate = ir.SampleRate
	res.Length = min(ir.Len(), c.cfg.maxLength)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.prepared {
		c.current = ir
		c.source = source

		return res
	}

	ks, err := c.build(ir, source)
	if err != nil {
		res.Err = fmt.Errorf("chain: load %s: %w", source, err)
		return res
	}

	c.current = ir
	c.source = source
	c.active.Store(ks)

	return ks.result
}

// Bypass removes the impulse response; the stage becomes the identity.
func (c *Convolution) Bypass() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = nil
	c.source = ""
	c.active.Store(nil)
}

func (c *Convolution) build(ir *irload.ImpulseResponse, source string) (*kernelSet, error) {
	kernels := make([][]float64, ir.NumChannels())

	for ch, data := range ir.Channels {
		k := data
		if ir.SampleRate != c.spec.SampleRate {
			var err error

			k, err = resample.Convert(data, ir.SampleRate, c.spec.SampleRate, resample.WithQuality(c.cfg.quality))
			if err != nil {
				return nil, err
			}
		}

		if len(k) > c.cfg.maxLength {
			k = k[:c.cfg.maxLength]
		}

		kernels[ch] = append([]float64(nil), k...)
	}

	if c.cfg.normalize {
		normalize(kernels)
	}

	ks := &kernelSet{
		convolvers: make([]*conv.StreamingOverlapAdd, c.spec.Channels),
		result: LoadResult{
			Source:     source,
			Channels:   ir.NumChannels(),
			Length:     len(kernels[0]),
			SampleRate: ir.SampleRate,
		},
	}

	// Mono responses feed every channel; extra response channels are
	// ignored.
	for ch := range ks.convolvers {
		k := kernels[min(ch, len(kernels)-1)]

		sc, err := conv.NewStreamingOverlapAdd(k, c.spec.MaxBlockSize)
		if err != nil {
			return nil, err
		}

		ks.convolvers[ch] = sc
	}

	return ks, nil
}

// normalize scales all channels by the same factor so the most energetic
// channel has energy normalizeTarget^2. Silent responses are left alone.
func normalize(kernels [][]float64) {
	maxEnergy := 0.0

	for _, k := range kernels {
		e := 0.0
		for _, v := range k {
			e += v * v
		}

		maxEnergy = math.Max(maxEnergy, e)
	}

	if maxEnergy == 0 {
		return
	}

	scale := normalizeTarget / math.Sqrt(maxEnergy)
	for _, k := range kernels {
		vecmath.ScaleBlockInPlace(k, scale)
	}
}

// Process convolves each channel in place, or does nothing without an
// impulse response.
func (c *Convolution) Process(block buffer.Block) {
	ks := c.active.Load()
	if ks == nil {
		return
	}

	n := min(block.NumChannels(), len(ks.convolvers))
	for ch := range n {
		data := block.Channel(ch)
		// Block length is validated by the chain; the error cannot occur.
		_ = ks.convolvers[ch].ProcessBlockTo(data, data)
	}
}

// Reset clears the convolution tails of the live response.
func (c *Convolution) Reset() {
	if ks := c.active.Load(); ks != nil {
		for _, sc := range ks.convolvers {
			sc.Reset()
		}
	}
}
