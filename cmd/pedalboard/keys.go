package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-pedal/dsp/core"
	"github.com/cwbudde/algo-pedal/pedal/chain"
	"github.com/cwbudde/algo-pedal/pedal/control"
)

var errQuit = errors.New("quit")

// Step sizes per key press.
const (
	driveStep = 0.5
	gainStep  = 1.0
)

type keyBinding struct {
	id    control.ControlID
	delta float64
}

var bindings = map[byte]keyBinding{
	'+': {control.ControlDrive, driveStep},
	'=': {control.ControlDrive, driveStep},
	'-': {control.ControlDrive, -driveStep},
	'I': {control.ControlInputGain, gainStep},
	'i': {control.ControlInputGain, -gainStep},
	'O': {control.ControlOutputGain, gainStep},
	'o': {control.ControlOutputGain, -gainStep},
	'd': {id: control.ControlSelectDistortion},
	'c': {id: control.ControlSelectClean},
}

// eventSink receives control events; engine.Processor implements it.
type eventSink interface {
	OnControlEvent(id control.ControlID, value float64) error
}

// surface tracks the knob positions sent to the processor.
type surface struct {
	values map[control.ControlID]float64
}

func newSurface() *surface {
	return &surface{values: map[control.ControlID]float64{
		control.ControlDrive:      chain.DefaultAmount / control.DriveScale,
		control.ControlInputGain:  chain.DefaultInputGainDB,
		control.ControlOutputGain: chain.DefaultOutputGainDB,
	}}
}

// press maps a key to a control event. ok is false for unbound keys.
func (s *surface) press(key byte) (id control.ControlID, value float64, ok bool) {
	b, ok := bindings[key]
	if !ok {
		return 0, 0, false
	}

	if b.id.IsTrigger() {
		return b.id, 1, true
	}

	lo, hi, _ := control.Range(b.id)
	v := core.Clamp(s.values[b.id]+b.delta, lo, hi)
	s.values[b.id] = v

	return b.id, v, true
}

func (s *surface) value(id control.ControlID) float64 {
	return s.values[id]
}

func (s *surface) status(state control.State, dropped, errs uint64) string {
	return fmt.Sprintf("%-10s drive %4.1f  in %5.1f dB  out %5.1f dB  dropped %d  errors %d",
		state.String(),
		s.value(control.ControlDrive),
		s.value(control.ControlInputGain),
		s.value(control.ControlOutputGain),
		dropped, errs)
}

func isQuitKey(key byte) bool {
	return key == 'q' || key == 'Q' || key == 0x03 || key == 0x04
}

// readKeys forwards key presses to sink until ctx is done or the user
// quits, in which case it returns errQuit.
//
// The read goroutine blocks on r and is left behind on cancellation; the
// process exits right after.
func readKeys(ctx context.Context, r io.Reader, s *surface, sink eventSink, log logrus.FieldLogger) error {
	keys := make(chan byte)

	go func() {
		defer close(keys)

		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				select {
				case keys <- buf[0]:
				case <-ctx.Done():
					return
				}
			}

			if err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case key, open := <-keys:
			if !open {
				return nil
			}

			if isQuitKey(key) {
				return errQuit
			}

			id, value, ok := s.press(key)
			if !ok {
				continue
			}

			if err := sink.OnControlEvent(id, value); err != nil {
				log.WithFields(logrus.Fields{
					"function": "readKeys",
					"control":  id.String(),
					"error":    err.Error(),
				}).Warn("Control event rejected")
			}
		}
	}
}
