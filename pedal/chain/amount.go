package chain

import (
	"math"
	"sync/atomic"
)

// Amount is a float64 shared between the control and audio contexts. The
// zero value holds 0.
type Amount struct {
	bits atomic.Uint64
}

// NewAmount returns an Amount holding v.
func NewAmount(v float64) *Amount {
	a := &Amount{}
	a.Store(v)

	return a
}

// Load returns the current value.
func (a *Amount) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

// Store replaces the current value.
func (a *Amount) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}
