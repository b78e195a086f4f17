package resample

import (
	"errors"
	"math"
)

var (
	// ErrInvalidRatio indicates an invalid up/down ratio.
	ErrInvalidRatio = errors.New("resample: invalid ratio")
	// ErrInvalidRate indicates an invalid input/output sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
)

// Quality controls default anti-aliasing filter settings.
type Quality int

const (
	// QualityFast prioritizes lower CPU usage.
	QualityFast Quality = iota
	// QualityBalanced is the default quality/performance trade-off.
	QualityBalanced
	// QualityBest prioritizes stopband attenuation and passband flatness.
	QualityBest
)

// Profile exposes default filter parameters for each quality mode.
type Profile struct {
	TapsPerPhase      int
	CutoffScale       float64
	KaiserBeta        float64
	NominalStopbandDB float64
}

// QualityProfile returns the default profile used by quality mode q.
func QualityProfile(q Quality) Profile {
	switch q {
	case QualityFast:
		return Profile{TapsPerPhase: 16, CutoffScale: 0.88, KaiserBeta: 5.0, NominalStopbandDB: 55}
	case QualityBest:
		return Profile{TapsPerPhase: 64, CutoffScale: 0.96, KaiserBeta: 9.0, NominalStopbandDB: 90}
	default:
		return Profile{TapsPerPhase: 32, CutoffScale: 0.92, KaiserBeta: 7.5, NominalStopbandDB: 75}
	}
}

type config struct {
	profile Profile
	maxDen  int
}

// Option configures a conversion.
type Option func(*config)

// WithQuality selects a predefined anti-aliasing quality mode.
func WithQuality(q Quality) Option {
	return func(cfg *config) {
		cfg.profile = QualityProfile(q)
	}
}

// WithMaxDenominator caps denominator size for rate-ratio approximation.
func WithMaxDenominator(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxDen = n
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		profile: QualityProfile(QualityBalanced),
		maxDen:  4096,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Convert resamples input from inRate to outRate. Equal rates return a copy.
// The ratio outRate/inRate is approximated by a fraction whose denominator
// is at most WithMaxDenominator (4096 by default).
func Convert(input []float64, inRate, outRate float64, opts ...Option) ([]float64, error) {
	if !validRate(inRate) || !validRate(outRate) {
		return nil, ErrInvalidRate
	}

	cfg := newConfig(opts)

	up, down := approximateRatio(outRate/inRate, cfg.maxDen)

	return convert(input, up, down, cfg)
}

// Rational resamples input by the exact ratio up/down.
func Rational(input []float64, up, down int, opts ...Option) ([]float64, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	g := gcd(up, down)

	return convert(input, up/g, down/g, newConfig(opts))
}

// OutputLen returns the number of samples a conversion of n input samples
// by up/down produces.
func OutputLen(n, up, down int) int {
	if n <= 0 || up <= 0 || down <= 0 {
		return 0
	}

	return (n*up + down - 1) / down
}

func convert(input []float64, up, down int, cfg config) ([]float64, error) {
	if len(input) == 0 {
		return nil, nil
	}

	if up == down {
		return append([]float64(nil), input...), nil
	}

	taps, err := designPrototype(up, down, cfg.profile)
	if err != nil {
		return nil, err
	}

	center := (len(taps) - 1) / 2
	out := make([]float64, OutputLen(len(input), up, down))

	for m := range out {
		// Position of output m on the upsampled grid, shifted to the
		// prototype's centre tap.
		pos := m*down + center

		kLo := max(0, ceilDiv(pos-(len(taps)-1), up))
		kHi := min(len(input)-1, pos/up)

		var y float64
		for k := kLo; k <= kHi; k++ {
			y += input[k] * taps[pos-k*up]
		}

		out[m] = y
	}

	return out, nil
}

func validRate(r float64) bool {
	return r > 0 && !math.IsNaN(r) && !math.IsInf(r, 0)
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return -((-a) / b)
	}

	return (a + b - 1) / b
}
