package control

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-pedal/pedal/chain"
	"github.com/cwbudde/algo-pedal/pedal/irload"
)

// State is the pedal mode.
type State int

const (
	// StateClean bypasses the cabinet convolution.
	StateClean State = iota
	// StateDistortion convolves with the cabinet impulse response.
	StateDistortion
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDistortion:
		return "distortion"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Convolver is the cabinet stage as seen by the state machine.
type Convolver interface {
	LoadImpulseResponse(ir *irload.ImpulseResponse, source string) chain.LoadResult
	Bypass()
}

// IRSource resolves and decodes the cabinet impulse response. The returned
// string names the resource for logs and results.
type IRSource interface {
	Open() (*irload.ImpulseResponse, string, error)
}

// Option configures a StateController.
type Option func(*StateController)

// WithLogger sets the logger for transitions and load results.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *StateController) {
		if log != nil {
			c.log = log
		}
	}
}

// WithResultHandler registers fn to receive every applied load result.
// fn runs on the loading goroutine.
func WithResultHandler(fn func(chain.LoadResult)) Option {
	return func(c *StateController) {
		c.onResult = fn
	}
}

// StateController switches between Clean and Distortion.
//
// Entering Distortion loads the impulse response asynchronously; entering
// Clean bypasses the convolution immediately. Every transition bumps a
// generation counter, and a load that finishes after a newer transition is
// discarded, so a late response never lands in Clean.
type StateController struct {
	conv     Convolver
	source   IRSource
	log      logrus.FieldLogger
	onResult func(chain.LoadResult)

	mu         sync.Mutex
	state      State
	generation uint64
	last       chain.LoadResult
	hasLast    bool

	wg sync.WaitGroup
}

// NewStateController returns a controller in StateClean.
func NewStateController(conv Convolver, source IRSource, opts ...Option) *StateController {
	c := &StateController{
		conv:   conv,
		source: source,
		log:    logrus.StandardLogger(),
		state:  StateClean,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// State returns the current state.
func (c *StateController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// ChangeState moves to s. It returns false, doing nothing, when s is
// already the current state.
func (c *StateController) ChangeState(s State) bool {
	c.mu.Lock()

	if s == c.state {
		c.mu.Unlock()
		return false
	}

	from := c.state
	c.state = s
	c.generation++
	gen := c.generation

	c.log.WithFields(logrus.Fields{
		"function": "ChangeState",
		"from":     from.String(),
		"to":       s.String(),
	}).Info("Changing pedal state")

	if s == StateDistortion {
		c.startLoad(gen)
		c.mu.Unlock()

		return true
	}

	c.conv.Bypass()
	c.mu.Unlock()

	return true
}

// Reload loads the impulse response again if the controller is in
// StateDistortion, e.g. after the file changed on disk. It reports whether
// a load was started.
func (c *StateController) Reload() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateDistortion {
		return false
	}

	c.generation++
	c.startLoad(c.generation)

	return true
}

// startLoad must be called with mu held.
func (c *StateController) startLoad(gen uint64) {
	c.wg.Add(1)

	go c.load(gen)
}

func (c *StateController) load(gen uint64) {
	defer c.wg.Done()

	ir, source, err := c.source.Open()

	c.mu.Lock()

	if gen != c.generation {
		c.mu.Unlock()

		c.log.WithFields(logrus.Fields{
			"function": "load",
			"source":   source,
		}).Debug("Discarding stale impulse response load")

		return
	}

	var res chain.LoadResult
	if err != nil {
		res = chain.LoadResult{Source: source, Err: err}
	} else {
		res = c.conv.LoadImpulseResponse(ir, source)
	}

	c.last = res
	c.hasLast = true
	c.mu.Unlock()

	c.report(res)
}

func (c *StateController) report(res chain.LoadResult) {
	entry := c.log.WithFields(logrus.Fields{
		"function": "load",
		"source":   res.Source,
	})

	if res.OK() {
		entry.WithFields(logrus.Fields{
			"channels":    res.Channels,
			"length":      res.Length,
			"sample_rate": res.SampleRate,
		}).Info("Cabinet impulse response loaded")
	} else {
		entry.WithField("error", res.Err.Error()).Error("Failed to load cabinet impulse response")
	}

	if c.onResult != nil {
		c.onResult(res)
	}
}

// LastResult returns the most recent applied load result.
func (c *StateController) LastResult() (chain.LoadResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last, c.hasLast
}

// Wait blocks until all in-flight loads have finished.
func (c *StateController) Wait() {
	c.wg.Wait()
}
