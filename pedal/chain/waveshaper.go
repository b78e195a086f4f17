package chain

import (
	"math"

	"github.com/cwbudde/algo-pedal/dsp/buffer"
	"github.com/cwbudde/algo-pedal/dsp/core"
)

// DefaultAmount is the initial drive of the waveshaper.
const DefaultAmount = 1.0

// WaveShaper applies y = tanh(amount * x). The amount is read once per
// block from a shared Amount.
type WaveShaper struct {
	amount *Amount
}

// NewWaveShaper returns a waveshaper driven by amount. A nil amount gets a
// private one holding DefaultAmount.
func NewWaveShaper(amount *Amount) *WaveShaper {
	if amount == nil {
		amount = NewAmount(DefaultAmount)
	}

	return &WaveShaper{amount: amount}
}

// Amount returns the shared drive amount.
func (w *WaveShaper) Amount() *Amount {
	return w.amount
}

// Transfer returns the shaped value of x at the current amount.
func (w *WaveShaper) Transfer(x float64) float64 {
	return math.Tanh(w.amount.Load() * x)
}

// Prepare is a no-op; the shaper is stateless.
func (w *WaveShaper) Prepare(core.ProcessSpec) error { return nil }

// Process shapes every sample in place.
func (w *WaveShaper) Process(block buffer.Block) {
	a := w.amount.Load()

	for ch := range block.NumChannels() {
		data := block.Channel(ch)
		for i, x := range data {
			data[i] = math.Tanh(a * x)
		}
	}
}

// Reset is a no-op.
func (w *WaveShaper) Reset() {}
