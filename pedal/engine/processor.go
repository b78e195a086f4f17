package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-pedal/dsp/buffer"
	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/pedal/analyzer"
	"github.com/cwbudde/algo-pedal/pedal/chain"
	"github.com/cwbudde/algo-pedal/pedal/control"
	"github.com/cwbudde/algo-pedal/pedal/irload"
)

const (
	// DefaultCabinetIR is the impulse response loaded in StateDistortion.
	DefaultCabinetIR = "guitar_amp.wav"
	// DefaultRefreshRate is the analyzer tick rate in Hz.
	DefaultRefreshRate = 30.0
)

// Option configures a Processor.
type Option func(*config)

type config struct {
	log          logrus.FieldLogger
	locator      irload.Locator
	cabinet      string
	refreshRate  float64
	chainOpts    []chain.Option
	analyzerOpts []analyzer.Option
}

func defaultConfig() config {
	return config{
		log:         logrus.StandardLogger(),
		locator:     irload.DirLocator{Dir: "."},
		cabinet:     DefaultCabinetIR,
		refreshRate: DefaultRefreshRate,
	}
}

// WithLogger sets the logger shared by all control-side components.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithLocator sets how the cabinet impulse response is found.
func WithLocator(l irload.Locator) Option {
	return func(c *config) {
		if l != nil {
			c.locator = l
		}
	}
}

// WithCabinetIR sets the impulse response name passed to the locator.
func WithCabinetIR(name string) Option {
	return func(c *config) {
		if name != "" {
			c.cabinet = name
		}
	}
}

// WithRefreshRate sets the analyzer tick rate used by Run.
func WithRefreshRate(hz float64) Option {
	return func(c *config) {
		if hz > 0 {
			c.refreshRate = hz
		}
	}
}

// WithChainOptions forwards options to chain.New.
func WithChainOptions(opts ...chain.Option) Option {
	return func(c *config) {
		c.chainOpts = append(c.chainOpts, opts...)
	}
}

// WithAnalyzerOptions forwards options to analyzer.NewAnalyzer.
func WithAnalyzerOptions(opts ...analyzer.Option) Option {
	return func(c *config) {
		c.analyzerOpts = append(c.analyzerOpts, opts...)
	}
}

// Processor is the assembled pedal.
type Processor struct {
	cfg    config
	log    logrus.FieldLogger
	source irload.FileSource

	chain      *chain.Chain
	sampler    *analyzer.Sampler
	controller *control.StateController
	bridge     *control.Bridge

	// mu guards the analyzer against concurrent AnalyzeFrame and CopyCurve.
	mu       sync.Mutex
	analyzer *analyzer.Analyzer
	view     analyzer.Curve
}

// New assembles a Processor in StateClean. It must be prepared before
// Process is called.
func New(opts ...Option) (*Processor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	an, err := analyzer.NewAnalyzer(cfg.analyzerOpts...)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	p := &Processor{
		cfg:      cfg,
		log:      cfg.log,
		source:   irload.FileSource{Locator: cfg.locator, Name: cfg.cabinet},
		chain:    chain.New(cfg.chainOpts...),
		sampler:  an.NewSampler(),
		analyzer: an,
		view:     make(analyzer.Curve, an.ScopeSize()),
	}

	p.controller = control.NewStateController(p.chain.Convolution(), p.source, control.WithLogger(cfg.log))
	p.bridge = control.NewBridge(
		p.chain.WaveShaper().Amount(),
		p.chain.InputGain(),
		p.chain.OutputGain(),
		p.controller,
		control.WithBridgeLogger(cfg.log),
	)

	return p, nil
}

// Prepare configures the chain for the device parameters. It may be called
// again whenever they change, but never concurrently with Process.
func (p *Processor) Prepare(sampleRate float64, maxBlockSize, channels int) error {
	spec := core.ProcessSpec{
		SampleRate:   sampleRate,
		MaxBlockSize: maxBlockSize,
		Channels:     channels,
	}

	p.log.WithFields(logrus.Fields{
		"function":       "Prepare",
		"sample_rate":    sampleRate,
		"max_block_size": maxBlockSize,
		"channels":       channels,
	}).Info("Preparing to play")

	if err := p.chain.Prepare(spec); err != nil {
		return fmt.Errorf("engine: prepare: %w", err)
	}

	p.sampler.Reset()

	return nil
}

// Process runs the chain over block in place and feeds channel 0 of the
// result to the spectrum sampler. It is the only method safe to call from
// the audio thread.
func (p *Processor) Process(block buffer.Block) error {
	if err := p.chain.Process(block); err != nil {
		return err
	}

	if block.NumChannels() > 0 {
		p.sampler.PushBlock(block.Channel(0))
	}

	return nil
}

// AnalyzeFrame runs one analysis cycle and reports whether the curve
// changed.
func (p *Processor) AnalyzeFrame() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.analyzer.Cycle(p.sampler)
}

// Run ticks the analyzer at the refresh rate until ctx is done. onFrame,
// if non-nil, receives the curve after every change; the slice is reused
// between calls. Run returns nil when ctx is cancelled.
func (p *Processor) Run(ctx context.Context, onFrame func(analyzer.Curve)) error {
	period := time.Duration(float64(time.Second) / p.cfg.refreshRate)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !p.AnalyzeFrame() || onFrame == nil {
				continue
			}

			p.CopyCurve(p.view)
			onFrame(p.view)
		}
	}
}

// CopyCurve copies the latest curve into dst and returns the number of
// values copied.
func (p *Processor) CopyCurve(dst []float64) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.analyzer.CopyCurve(dst)
}

// Curve returns a copy of the latest curve.
func (p *Processor) Curve() analyzer.Curve {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append(analyzer.Curve(nil), p.analyzer.Curve()...)
}

// OnControlEvent forwards a control surface event to the bridge.
func (p *Processor) OnControlEvent(id control.ControlID, value float64) error {
	return p.bridge.OnControlEvent(id, value)
}

// State returns the current pedal state.
func (p *Processor) State() control.State {
	return p.controller.State()
}

// Reload reloads the cabinet impulse response if the pedal is in
// StateDistortion.
func (p *Processor) Reload() bool {
	return p.controller.Reload()
}

// CabinetPath resolves the cabinet impulse response through the locator.
func (p *Processor) CabinetPath() (string, error) {
	return p.cfg.locator.Locate(p.cfg.cabinet)
}

// ScopeSize returns the number of curve points.
func (p *Processor) ScopeSize() int {
	return p.analyzer.ScopeSize()
}

// Dropped returns the number of analysis frames dropped so far.
func (p *Processor) Dropped() uint64 {
	return p.sampler.Dropped()
}

// Release waits for pending impulse response loads and clears all
// processing state. Call it after the audio stream has stopped.
func (p *Processor) Release() {
	p.controller.Wait()
	p.chain.Reset()
	p.sampler.Reset()

	p.log.WithFields(logrus.Fields{
		"function": "Release",
		"state":    p.controller.State().String(),
		"dropped":  p.sampler.Dropped(),
	}).Info("Released processing resources")
}

// Chain returns the signal chain.
func (p *Processor) Chain() *chain.Chain {
	return p.chain
}

// Controller returns the state machine.
func (p *Processor) Controller() *control.StateController {
	return p.controller
}
