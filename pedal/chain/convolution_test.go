package chain

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-pedal/dsp/buffer"
	"github.com/cwbudde/algo-pedal/dsp/conv"
	"github.com/cwbudde/algo-pedal/internal/testutil"
	"github.com/cwbudde/algo-pedal/pedal/irload"
)

func monoIR(sampleRate float64, data []float64) *irload.ImpulseResponse {
	return &irload.ImpulseResponse{SampleRate: sampleRate, Channels: [][]float64{data}}
}

func preparedConvolution(t *testing.T, opts ...ConvolutionOption) *Convolution {
	t.Helper()

	c := NewConvolution(opts...)
	require.NoError(t, c.Prepare(stereoSpec(48000, 64)))

	return c
}

func TestConvolutionPassthroughWithoutIR(t *testing.T) {
	t.Parallel()

	c := preparedConvolution(t)
	assert.False(t, c.Active())

	in := testutil.DeterministicNoise(3, 1, 64)
	block := blockFrom(append([]float64(nil), in...), append([]float64(nil), in...))
	c.Process(block)

	assert.Equal(t, in, block.Channel(0))
	assert.Equal(t, in, block.Channel(1))
}

func TestConvolutionMatchesDirect(t *testing.T) {
	t.Parallel()

	c := preparedConvolution(t, WithNormalize(false))

	left := testutil.DecayingNoise(1, 200, 4)
	right := testutil.DecayingNoise(2, 200, 4)

	res := c.LoadImpulseResponse(&irload.ImpulseResponse{SampleRate: 48000, Channels: [][]float64{left, right}}, "stereo")
	require.True(t, res.OK())
	assert.Equal(t, 2, res.Channels)
	assert.Equal(t, 200, res.Length)
	assert.Equal(t, "stereo", res.Source)
	assert.True(t, c.Active())

	in := testutil.DeterministicNoise(7, 1, 300)
	wantL, err := conv.Direct(in, left)
	require.NoError(t, err)
	wantR, err := conv.Direct(in, right)
	require.NoError(t, err)

	var gotL, gotR []float64

	for pos := 0; pos < len(in); {
		n := min(64, len(in)-pos)
		block := blockFrom(append([]float64(nil), in[pos:pos+n]...), append([]float64(nil), in[pos:pos+n]...))
		c.Process(block)

		gotL = append(gotL, block.Channel(0)...)
		gotR = append(gotR, block.Channel(1)...)
		pos += n
	}

	testutil.RequireSliceNearEqual(t, gotL, wantL[:len(in)], 1e-9)
	testutil.RequireSliceNearEqual(t, gotR, wantR[:len(in)], 1e-9)
}

func TestConvolutionMonoFeedsBothChannels(t *testing.T) {
	t.Parallel()

	c := preparedConvolution(t, WithNormalize(false))
	require.True(t, c.LoadImpulseResponse(monoIR(48000, []float64{0, 0.5}), "delay").OK())

	block := blockFrom([]float64{1, 0, 0}, []float64{0, 1, 0})
	c.Process(block)

	assert.InDeltaSlice(t, []float64{0, 0.5, 0}, block.Channel(0), 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0, 0.5}, block.Channel(1), 1e-12)
}

func TestConvolutionNormalizeAndTrim(t *testing.T) {
	t.Parallel()

	c := preparedConvolution(t, WithMaxIRLength(100))
	ir := &irload.ImpulseResponse{
		SampleRate: 48000,
		Channels:   [][]float64{testutil.DC(1, 400), testutil.DC(0.5, 400)},
	}

	res := c.LoadImpulseResponse(ir, "dc")
	require.True(t, res.OK())
	assert.Equal(t, 100, res.Length)

	// Left: 100 taps of 1 scaled so its L2 norm is 0.125.
	tap := normalizeTarget / math.Sqrt(100)

	block := blockFrom(testutil.Impulse(4, 0), testutil.Impulse(4, 0))
	c.Process(block)

	assert.InDeltaSlice(t, testutil.DC(tap, 4), block.Channel(0), 1e-12)
	assert.InDeltaSlice(t, testutil.DC(tap/2, 4), block.Channel(1), 1e-12)

	// The caller's response is never modified.
	assert.Equal(t, 1.0, ir.Channels[0][0])
}

func TestConvolutionResamplesToProcessingRate(t *testing.T) {
	t.Parallel()

	c := preparedConvolution(t, WithNormalize(false), WithMaxIRLength(4096))

	res := c.LoadImpulseResponse(monoIR(24000, testutil.DecayingNoise(5, 300, 3)), "half-rate")
	require.True(t, res.OK())
	assert.Equal(t, 600, res.Length)
	assert.Equal(t, 24000.0, res.SampleRate)

	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, res, cur)
}

func TestConvolutionFailureKeepsPrevious(t *testing.T) {
	t.Parallel()

	c := preparedConvolution(t, WithNormalize(false))
	require.True(t, c.LoadImpulseResponse(monoIR(48000, []float64{0.5}), "half").OK())

	res := c.LoadImpulseResponse(nil, "missing")
	require.ErrorIs(t, res.Err, ErrEmptyImpulseResponse)
	assert.False(t, res.OK())

	res = c.LoadImpulseResponse(&irload.ImpulseResponse{SampleRate: 48000, Channels: [][]float64{{1, math.NaN()}}}, "nan")
	require.ErrorIs(t, res.Err, irload.ErrInvalidIR)

	block := blockFrom([]float64{1}, []float64{1})
	c.Process(block)
	assert.InDelta(t, 0.5, block.Channel(0)[0], 1e-12)

	c.Bypass()
	assert.False(t, c.Active())

	block = blockFrom([]float64{1}, []float64{1})
	c.Process(block)
	assert.InDelta(t, 1, block.Channel(0)[0], 0)
}

func TestConvolutionLoadBeforePrepare(t *testing.T) {
	t.Parallel()

	c := NewConvolution(WithNormalize(false))

	res := c.LoadImpulseResponse(monoIR(48000, []float64{0.25}), "early")
	require.True(t, res.OK())
	assert.False(t, c.Active(), "convolvers are built at Prepare")

	require.NoError(t, c.Prepare(stereoSpec(48000, 16)))
	assert.True(t, c.Active())

	block := blockFrom([]float64{1}, []float64{1})
	c.Process(block)
	assert.InDelta(t, 0.25, block.Channel(1)[0], 1e-12)

	// A later Prepare at another rate rebuilds the live response.
	require.NoError(t, c.Prepare(stereoSpec(96000, 16)))
	assert.True(t, c.Active())
}

func TestConvolutionResetClearsTail(t *testing.T) {
	t.Parallel()

	c := preparedConvolution(t, WithNormalize(false))
	require.True(t, c.LoadImpulseResponse(monoIR(48000, []float64{1, 1, 1, 1}), "box").OK())

	c.Process(blockFrom([]float64{1}, []float64{1}))
	c.Reset()

	block := buffer.Alloc(2, 3)
	c.Process(block)
	testutil.RequireSilent(t, block.Channel(0))
}

func TestConvolutionSwapDuringProcess(t *testing.T) {
	t.Parallel()

	c := preparedConvolution(t, WithNormalize(false))
	a := monoIR(48000, []float64{1})
	b := monoIR(48000, []float64{-1})

	var wg sync.WaitGroup

	stop := make(chan struct{})

	wg.Add(1)

	go func() {
		defer wg.Done()

		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}

			switch i % 3 {
			case 0:
				c.LoadImpulseResponse(a, "a")
			case 1:
				c.LoadImpulseResponse(b, "b")
			default:
				c.Bypass()
			}
		}
	}()

	block := buffer.Alloc(2, 64)

	for range 2000 {
		for ch := range 2 {
			copy(block.Channel(ch), testutil.DC(0.5, 64))
		}

		c.Process(block)

		// A block is processed by exactly one response.
		first := block.Channel(0)[0]
		require.InDelta(t, 0.5, math.Abs(first), 1e-12)

		for ch := range 2 {
			for _, v := range block.Channel(ch) {
				require.InDelta(t, first, v, 1e-12)
			}
		}
	}

	close(stop)
	wg.Wait()
}
