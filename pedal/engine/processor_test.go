package engine

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-pedal/dsp/buffer"
	"github.com/cwbudde/algo-pedal/internal/testutil"
	"github.com/cwbudde/algo-pedal/pedal/analyzer"
	"github.com/cwbudde/algo-pedal/pedal/chain"
	"github.com/cwbudde/algo-pedal/pedal/control"
	"github.com/cwbudde/algo-pedal/pedal/irload"
)

const (
	testRate  = 48000.0
	testBlock = 256
)

func newTestProcessor(t *testing.T, opts ...Option) (*Processor, *test.Hook) {
	t.Helper()

	logger, hook := test.NewNullLogger()
	p, err := New(append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)
	require.NoError(t, p.Prepare(testRate, testBlock, 2))

	return p, hook
}

// feed runs signal through p in testBlock chunks on both channels and
// returns channel 0 of the output.
func feed(t *testing.T, p *Processor, signal []float64) []float64 {
	t.Helper()

	out := make([]float64, 0, len(signal))
	block := buffer.Alloc(2, testBlock)

	for start := 0; start < len(signal); start += testBlock {
		n := min(testBlock, len(signal)-start)
		b := block.Sub(n)
		copy(b.Channel(0), signal[start:start+n])
		copy(b.Channel(1), signal[start:start+n])

		require.NoError(t, p.Process(b))
		out = append(out, b.Channel(0)...)
	}

	return out
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	p, hook := newTestProcessor(t)

	assert.Equal(t, control.StateClean, p.State())
	assert.Equal(t, 512, p.ScopeSize())
	assert.Equal(t, chain.NumStages, p.Chain().Len())
	assert.NotNil(t, p.Controller())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Preparing to play", entry.Message)
	assert.Equal(t, testRate, entry.Data["sample_rate"])
}

func TestNewRejectsBadAnalyzerOptions(t *testing.T) {
	t.Parallel()

	_, err := New(WithAnalyzerOptions(analyzer.WithScopeSize(-1)))
	require.ErrorIs(t, err, analyzer.ErrInvalidConfig)
}

func TestPrepareRejectsInvalidSpec(t *testing.T) {
	t.Parallel()

	logger, _ := test.NewNullLogger()
	p, err := New(WithLogger(logger))
	require.NoError(t, err)

	require.ErrorIs(t, p.Prepare(0, testBlock, 2), chain.ErrInvalidSpec)
	require.ErrorIs(t, p.Process(buffer.Alloc(2, 16)), chain.ErrNotPrepared)
}

func TestSinePeakColumn(t *testing.T) {
	t.Parallel()

	p, _ := newTestProcessor(t, WithChainOptions(chain.WithInputGainDB(0)))

	const bin = 43
	freq := float64(bin) * testRate / 2048
	feed(t, p, testutil.DeterministicSine(freq, testRate, 0.5, 4096))

	require.True(t, p.AnalyzeFrame())

	curve := make([]float64, p.ScopeSize())
	require.Equal(t, len(curve), p.CopyCurve(curve))

	ref, err := analyzer.NewAnalyzer()
	require.NoError(t, err)

	assert.Equal(t, analyzer.Curve(curve), p.Curve())

	peak := testutil.PeakIndex(curve)
	require.GreaterOrEqual(t, peak, 0)
	assert.InDelta(t, bin, ref.ColumnBin(peak), 1)
	assert.False(t, p.AnalyzeFrame(), "frame must be consumed")
}

func TestMissingCabinetKeepsPassthrough(t *testing.T) {
	t.Parallel()

	p, hook := newTestProcessor(t, WithLocator(irload.DirLocator{Dir: t.TempDir()}))

	require.NoError(t, p.OnControlEvent(control.ControlSelectDistortion, 1))
	p.Controller().Wait()

	assert.Equal(t, control.StateDistortion, p.State())
	assert.False(t, p.Chain().Convolution().Active())

	res, ok := p.Controller().LastResult()
	require.True(t, ok)
	require.ErrorIs(t, res.Err, irload.ErrNotFound)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	out := feed(t, p, testutil.DeterministicSine(440, testRate, 0.1, 1024))
	testutil.RequireFinite(t, out)

	peak := 0.0
	for _, v := range out {
		peak = max(peak, math.Abs(v))
	}
	assert.Greater(t, peak, 0.1)
}

func TestDistortionAppliesCabinet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteWAV(t, dir, DefaultCabinetIR, int(testRate), [][]float64{{1}})

	clean, _ := newTestProcessor(t)
	dist, _ := newTestProcessor(t, WithLocator(irload.DirLocator{Dir: dir}))

	require.NoError(t, dist.OnControlEvent(control.ControlSelectDistortion, 1))
	dist.Controller().Wait()
	require.True(t, dist.Chain().Convolution().Active())

	path, err := dist.CabinetPath()
	require.NoError(t, err)
	res, _ := dist.Controller().LastResult()
	assert.Equal(t, path, res.Source)

	signal := testutil.DeterministicNoise(5, 0.05, 1000)
	want := feed(t, clean, signal)
	got := feed(t, dist, signal)

	for i := range want {
		want[i] *= 0.125
	}
	testutil.RequireSliceNearEqual(t, got, want, 1e-9)

	require.NoError(t, dist.OnControlEvent(control.ControlSelectClean, 1))
	assert.False(t, dist.Chain().Convolution().Active())
}

func TestControlEventsReachChain(t *testing.T) {
	t.Parallel()

	p, _ := newTestProcessor(t)

	require.NoError(t, p.OnControlEvent(control.ControlDrive, 0.5))
	require.NoError(t, p.OnControlEvent(control.ControlInputGain, 6))
	require.NoError(t, p.OnControlEvent(control.ControlOutputGain, -40))
	require.ErrorIs(t, p.OnControlEvent(control.ControlID(99), 0), control.ErrUnknownControl)

	assert.InDelta(t, 5, p.Chain().WaveShaper().Amount().Load(), 1e-12)
	assert.InDelta(t, 6, p.Chain().InputGain().GainDecibels(), 1e-12)
	assert.InDelta(t, -20, p.Chain().OutputGain().GainDecibels(), 1e-12)
	assert.False(t, p.Reload())
}

func TestRunDeliversFrames(t *testing.T) {
	t.Parallel()

	p, _ := newTestProcessor(t, WithRefreshRate(500))
	feed(t, p, testutil.DeterministicSine(1000, testRate, 0.2, 2048))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var frames int

	err := p.Run(ctx, func(c analyzer.Curve) {
		frames++
		assert.Len(t, c, 512)
		cancel()
	})
	require.NoError(t, err)
	assert.Equal(t, 1, frames)
}

func TestReleaseClearsState(t *testing.T) {
	t.Parallel()

	p, hook := newTestProcessor(t)
	feed(t, p, testutil.DeterministicNoise(2, 0.5, 300))

	p.Release()

	assert.Equal(t, "Released processing resources", hook.LastEntry().Message)

	block := buffer.Alloc(2, testBlock)
	require.NoError(t, p.Process(block))
	testutil.RequireSilent(t, block.Channel(0))
}

func TestProcessDoesNotAllocate(t *testing.T) {
	p, _ := newTestProcessor(t)
	block := buffer.Alloc(2, testBlock)
	copy(block.Channel(0), testutil.DeterministicNoise(1, 0.5, testBlock))

	allocs := testing.AllocsPerRun(100, func() {
		_ = p.Process(block)
	})
	assert.Zero(t, allocs)
}

func BenchmarkProcess(b *testing.B) {
	logger, _ := test.NewNullLogger()
	p, err := New(WithLogger(logger))
	require.NoError(b, err)
	require.NoError(b, p.Prepare(testRate, testBlock, 2))

	block := buffer.Alloc(2, testBlock)
	copy(block.Channel(0), testutil.DeterministicNoise(1, 0.5, testBlock))
	copy(block.Channel(1), testutil.DeterministicNoise(2, 0.5, testBlock))

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = p.Process(block)
	}
}
