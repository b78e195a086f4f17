package chain

import (
	"errors"

	"github.com/cwbudde/algo-pedal/dsp/buffer"
	"github.com/cwbudde/algo-pedal/dsp/core"
)

var (
	// ErrNotPrepared is returned by Process before a successful Prepare.
	ErrNotPrepared = errors.New("chain: process called before prepare")
	// ErrBlockTooLarge is returned for blocks longer than the prepared
	// maximum block size.
	ErrBlockTooLarge = errors.New("chain: block exceeds prepared max block size")
	// ErrChannelMismatch is returned when a block's channel count differs
	// from the prepared channel count.
	ErrChannelMismatch = errors.New("chain: block channel count mismatch")
	// ErrInvalidSpec is returned by Prepare for unusable process specs.
	ErrInvalidSpec = core.ErrInvalidSpec
	// ErrEmptyImpulseResponse is reported for nil or empty impulse responses.
	ErrEmptyImpulseResponse = errors.New("chain: empty impulse response")
	// ErrInvalidCutoff is returned by Filter.SetCutoff for non-positive
	// frequencies.
	ErrInvalidCutoff = errors.New("chain: invalid cutoff frequency")
)

// Stage is one processing step of the chain.
//
// Prepare runs on the control context and may allocate. Process runs on the
// audio context and must neither block nor allocate. Reset clears internal
// state such as filter memory and convolution tails.
type Stage interface {
	Prepare(spec core.ProcessSpec) error
	Process(block buffer.Block)
	Reset()
}

// Stage indices in processing order.
const (
	FilterIndex = iota
	InputGainIndex
	WaveShaperIndex
	OutputGainIndex
	ConvolutionIndex

	NumStages
)
