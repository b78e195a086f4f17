package chain

import (
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-pedal/dsp/buffer"
	"github.com/cwbudde/algo-pedal/dsp/core"
)

// Gain scales every channel by a gain set in decibels.
//
// Changes are immediate unless a ramp length is configured, in which case
// the gain moves linearly to the new target over that many samples.
type Gain struct {
	db     Amount
	target Amount

	rampSamples int

	// Audio context state.
	current    float64
	lastTarget float64
	step       float64
	remaining  int
}

// NewGain returns a gain stage at db decibels with the given ramp length in
// samples (0 for immediate changes).
func NewGain(db float64, rampSamples int) *Gain {
	g := &Gain{rampSamples: max(0, rampSamples)}
	g.SetGainDecibels(db)
	g.snap()

	return g
}

// SetGainDecibels sets the target gain. Safe to call while audio runs.
func (g *Gain) SetGainDecibels(db float64) {
	g.db.Store(db)
	g.target.Store(core.DBToGain(db))
}

// SetGainLinear sets the target gain as a linear factor.
func (g *Gain) SetGainLinear(gain float64) {
	g.db.Store(core.GainToDB(gain))
	g.target.Store(gain)
}

// GainDecibels returns the target gain in decibels.
func (g *Gain) GainDecibels() float64 {
	return g.db.Load()
}

// GainLinear returns the target gain as a linear factor.
func (g *Gain) GainLinear() float64 {
	return g.target.Load()
}

// Prepare snaps the running gain to its target.
func (g *Gain) Prepare(core.ProcessSpec) error {
	g.snap()
	return nil
}

// Reset snaps the running gain to its target, dropping any ramp.
func (g *Gain) Reset() {
	g.snap()
}

func (g *Gain) snap() {
	t := g.target.Load()
	g.current = t
	g.lastTarget = t
	g.step = 0
	g.remaining = 0
}

// Process applies the gain in place.
func (g *Gain) Process(block buffer.Block) {
	target := g.target.Load()
	if target != g.lastTarget {
		g.lastTarget = target

		if g.rampSamples > 0 {
			g.step = (target - g.current) / float64(g.rampSamples)
			g.remaining = g.rampSamples
		} else {
			g.current = target
			g.remaining = 0
		}
	}

	n := block.NumSamples()

	if g.remaining == 0 {
		if g.current == 1 {
			return
		}

		for ch := range block.NumChannels() {
			vecmath.ScaleBlockInPlace(block.Channel(ch), g.current)
		}

		return
	}

	steps := min(n, g.remaining)

	for ch := range block.NumChannels() {
		data := block.Channel(ch)
		gain := g.current

		for i := range steps {
			gain += g.step
			data[i] *= gain
		}

		if steps < n {
			vecmath.ScaleBlockInPlace(data[steps:], target)
		}
	}

	g.remaining -= steps
	if g.remaining == 0 {
		g.current = target
	} else {
		g.current += g.step * float64(steps)
	}
}
