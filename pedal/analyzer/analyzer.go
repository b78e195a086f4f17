package analyzer

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-pedal/dsp/spectrum"
	"github.com/cwbudde/algo-pedal/dsp/window"
)

// Defaults for the display analysis.
const (
	DefaultFFTOrder  = 11
	DefaultScopeSize = 512
	DefaultSkew      = 0.2
	DefaultMinDB     = -100.0
	DefaultMaxDB     = 0.0

	maxFFTOrder = 20
)

var (
	// ErrInvalidConfig is returned by NewAnalyzer for unusable options.
	ErrInvalidConfig = errors.New("analyzer: invalid configuration")
	// ErrFrameSize is returned by Analyze for frames shorter than the FFT.
	ErrFrameSize = errors.New("analyzer: frame shorter than fft size")
)

// Curve holds one normalised level in [0, 1] per display column.
type Curve []float64

// Option configures an Analyzer.
type Option func(*config)

type config struct {
	order      int
	scope      int
	skew       float64
	minDB      float64
	maxDB      float64
	windowType window.Type
}

// WithFFTOrder sets the FFT size to 2^order.
func WithFFTOrder(order int) Option {
	return func(c *config) {
		c.order = order
	}
}

// WithScopeSize sets the number of display columns.
func WithScopeSize(n int) Option {
	return func(c *config) {
		c.scope = n
	}
}

// WithSkew sets the column-to-bin skew exponent; values below 1 give low
// frequencies more columns.
func WithSkew(skew float64) Option {
	return func(c *config) {
		c.skew = skew
	}
}

// WithDecibelRange sets the levels that map to 0 and 1.
func WithDecibelRange(minDB, maxDB float64) Option {
	return func(c *config) {
		c.minDB = minDB
		c.maxDB = maxDB
	}
}

// WithWindow selects the analysis window. Windows are normalised so their
// coefficients sum to the FFT size.
func WithWindow(t window.Type) Option {
	return func(c *config) {
		c.windowType = t
	}
}

func (c config) validate() error {
	switch {
	case c.order < 1 || c.order > maxFFTOrder:
		return fmt.Errorf("%w: fft order %d", ErrInvalidConfig, c.order)
	case c.scope <= 0:
		return fmt.Errorf("%w: scope size %d", ErrInvalidConfig, c.scope)
	case c.skew <= 0:
		return fmt.Errorf("%w: skew %v", ErrInvalidConfig, c.skew)
	case c.minDB >= c.maxDB:
		return fmt.Errorf("%w: decibel range [%v, %v]", ErrInvalidConfig, c.minDB, c.maxDB)
	}

	return nil
}

// Analyzer computes spectrum curves from frames. All buffers are allocated
// by NewAnalyzer; Analyze and Cycle do not allocate. An Analyzer is owned by
// a single goroutine.
type Analyzer struct {
	cfg     config
	fftSize int

	win  *window.Table
	plan *algofft.Plan[complex128]

	frame []float64
	bins  []complex128
	re    []float64
	im    []float64
	mag   []float64

	columns []int
	curve   Curve
}

// NewAnalyzer returns an analyzer with preallocated transform state.
func NewAnalyzer(opts ...Option) (*Analyzer, error) {
	cfg := config{
		order:      DefaultFFTOrder,
		scope:      DefaultScopeSize,
		skew:       DefaultSkew,
		minDB:      DefaultMinDB,
		maxDB:      DefaultMaxDB,
		windowType: window.TypeHann,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	n := 1 << cfg.order

	win, err := window.NewTable(cfg.windowType, n, window.WithNormalize())
	if err != nil {
		return nil, fmt.Errorf("analyzer: window: %w", err)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("analyzer: fft plan: %w", err)
	}

	half := n/2 + 1

	a := &Analyzer{
		cfg:     cfg,
		fftSize: n,
		win:     win,
		plan:    plan,
		frame:   make([]float64, 2*n),
		bins:    make([]complex128, n),
		re:      make([]float64, half),
		im:      make([]float64, half),
		mag:     make([]float64, half),
		columns: make([]int, cfg.scope),
		curve:   make(Curve, cfg.scope),
	}

	for i := range a.columns {
		a.columns[i] = spectrum.SkewedBinIndex(i, cfg.scope, n, cfg.skew)
	}

	return a, nil
}

// FFTSize returns the transform length.
func (a *Analyzer) FFTSize() int { return a.fftSize }

// ScopeSize returns the number of display columns.
func (a *Analyzer) ScopeSize() int { return a.cfg.scope }

// ColumnBin returns the FFT bin shown in column i.
func (a *Analyzer) ColumnBin(i int) int { return a.columns[i] }

// NewSampler returns a sampler sized for this analyzer.
func (a *Analyzer) NewSampler() *Sampler {
	s, _ := NewSampler(a.fftSize)
	return s
}

// Analyze computes the curve for the first FFTSize samples of frame. The
// frame is not modified. The returned curve is owned by the analyzer and
// overwritten by the next call.
func (a *Analyzer) Analyze(frame []float64) (Curve, error) {
	if len(frame) < a.fftSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrFrameSize, len(frame), a.fftSize)
	}

	work := a.frame[:a.fftSize]
	copy(work, frame)

	return a.analyzeWork()
}

func (a *Analyzer) analyzeWork() (Curve, error) {
	work := a.frame[:a.fftSize]
	_ = a.win.ApplyInPlace(work)

	for i, v := range work {
		a.bins[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.bins, a.bins); err != nil {
		return nil, fmt.Errorf("analyzer: fft: %w", err)
	}

	spectrum.SplitComplex(a.re, a.im, a.bins)
	spectrum.MagnitudeFromParts(a.mag, a.re, a.im)

	for i, bin := range a.columns {
		a.curve[i] = spectrum.NormalizedLevel(a.mag[bin], a.fftSize, a.cfg.minDB, a.cfg.maxDB)
	}

	return a.curve, nil
}

// Cycle runs one timer tick: if s has a pending frame it is consumed and
// analysed. Cycle reports whether the curve changed and needs a redraw.
func (a *Analyzer) Cycle(s *Sampler) bool {
	if s == nil || s.FFTSize() != a.fftSize {
		return false
	}

	if !s.Consume(a.frame) {
		return false
	}

	_, err := a.analyzeWork()

	return err == nil
}

// Curve returns the analyzer's curve. It is only valid on the goroutine that
// runs Analyze and Cycle.
func (a *Analyzer) Curve() Curve {
	return a.curve
}

// CopyCurve copies the curve into dst and returns the number of values
// copied.
func (a *Analyzer) CopyCurve(dst []float64) int {
	return copy(dst, a.curve)
}
