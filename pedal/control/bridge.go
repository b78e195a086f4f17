package control

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/pedal/chain"
)

// ErrUnknownControl is returned for a control id the bridge does not map.
var ErrUnknownControl = errors.New("control: unknown control")

// DriveScale converts the drive control value into the waveshaper amount.
const DriveScale = 10

// ControlID identifies a control surface input.
type ControlID int

const (
	// ControlDrive sets the waveshaper amount (0..10, scaled by DriveScale).
	ControlDrive ControlID = iota
	// ControlOutputGain sets the output gain in dB (-20..20).
	ControlOutputGain
	// ControlInputGain sets the input gain in dB (0..30).
	ControlInputGain
	// ControlSelectDistortion switches to StateDistortion. The value is ignored.
	ControlSelectDistortion
	// ControlSelectClean switches to StateClean. The value is ignored.
	ControlSelectClean
)

type controlInfo struct {
	name   string
	lo, hi float64
}

var controls = [...]controlInfo{
	ControlDrive:            {name: "drive", lo: 0, hi: 10},
	ControlOutputGain:       {name: "output-gain", lo: -20, hi: 20},
	ControlInputGain:        {name: "input-gain", lo: 0, hi: 30},
	ControlSelectDistortion: {name: "distortion", lo: 0, hi: 1},
	ControlSelectClean:      {name: "clean", lo: 0, hi: 1},
}

func (id ControlID) valid() bool {
	return id >= 0 && int(id) < len(controls)
}

// String returns the control name used in logs and by ParseControlID.
func (id ControlID) String() string {
	if !id.valid() {
		return fmt.Sprintf("control(%d)", int(id))
	}

	return controls[id].name
}

// IsTrigger reports whether id is a state selector rather than a continuous
// parameter.
func (id ControlID) IsTrigger() bool {
	return id == ControlSelectDistortion || id == ControlSelectClean
}

// ParseControlID maps a control name back to its id.
func ParseControlID(name string) (ControlID, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, c := range controls {
		if c.name == name {
			return ControlID(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownControl, name)
}

// Range returns the declared bounds of id.
func Range(id ControlID) (lo, hi float64, ok bool) {
	if !id.valid() {
		return 0, 0, false
	}

	return controls[id].lo, controls[id].hi, true
}

// GainSetter is a gain stage as seen by the bridge.
type GainSetter interface {
	SetGainDecibels(db float64)
}

// Transitioner switches the pedal state.
type Transitioner interface {
	ChangeState(s State) bool
}

// Bridge maps control events onto processing parameters. Every write is an
// atomic store or a state transition; nothing blocks on the audio thread.
type Bridge struct {
	amount     *chain.Amount
	inputGain  GainSetter
	outputGain GainSetter
	states     Transitioner
	log        logrus.FieldLogger
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithBridgeLogger sets the logger for accepted events.
func WithBridgeLogger(log logrus.FieldLogger) BridgeOption {
	return func(b *Bridge) {
		if log != nil {
			b.log = log
		}
	}
}

// NewBridge wires the bridge to the shared amount, both gain stages and the
// state machine.
func NewBridge(amount *chain.Amount, input, output GainSetter, states Transitioner, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		amount:     amount,
		inputGain:  input,
		outputGain: output,
		states:     states,
		log:        logrus.StandardLogger(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

// OnControlEvent clamps value to the range of id and applies it.
func (b *Bridge) OnControlEvent(id ControlID, value float64) error {
	lo, hi, ok := Range(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownControl, int(id))
	}

	if math.IsNaN(value) {
		value = lo
	}

	v := core.Clamp(value, lo, hi)

	switch id {
	case ControlDrive:
		b.amount.Store(v * DriveScale)
	case ControlOutputGain:
		b.outputGain.SetGainDecibels(v)
	case ControlInputGain:
		b.inputGain.SetGainDecibels(v)
	case ControlSelectDistortion:
		b.states.ChangeState(StateDistortion)
	case ControlSelectClean:
		b.states.ChangeState(StateClean)
	}

	b.log.WithFields(logrus.Fields{
		"function": "OnControlEvent",
		"control":  id.String(),
		"value":    v,
	}).Debug("Control event applied")

	return nil
}
