package analyzer

import (
	"errors"
	"sync/atomic"
)

// ErrInvalidSize is returned for non-positive frame sizes.
var ErrInvalidSize = errors.New("analyzer: invalid frame size")

// Sampler collects samples on the audio thread into frames for analysis.
//
// It is a single-producer single-consumer handoff: PushSample and PushBlock
// belong to the audio thread, Consume to one analysis goroutine. At most one
// frame is in flight; frames completed while it is pending are dropped.
type Sampler struct {
	fftSize int
	fifo    []float64
	cursor  int

	// frame holds fftSize samples followed by fftSize zeros.
	frame   []float64
	ready   atomic.Bool
	dropped atomic.Uint64
}

// NewSampler returns a sampler producing frames of fftSize samples.
func NewSampler(fftSize int) (*Sampler, error) {
	if fftSize <= 0 {
		return nil, ErrInvalidSize
	}

	return &Sampler{
		fftSize: fftSize,
		fifo:    make([]float64, fftSize),
		frame:   make([]float64, 2*fftSize),
	}, nil
}

// FFTSize returns the number of samples per frame.
func (s *Sampler) FFTSize() int { return s.fftSize }

// FrameLen returns the length of a consumed frame (2*FFTSize).
func (s *Sampler) FrameLen() int { return len(s.frame) }

// PushSample appends one sample. When the fifo fills, the frame is
// published unless one is still pending, in which case it is dropped.
func (s *Sampler) PushSample(x float64) {
	s.fifo[s.cursor] = x
	s.cursor++

	if s.cursor < s.fftSize {
		return
	}

	s.cursor = 0

	if s.ready.Load() {
		s.dropped.Add(1)
		return
	}

	copy(s.frame, s.fifo)
	clear(s.frame[s.fftSize:])
	s.ready.Store(true)
}

// PushBlock appends samples in order.
func (s *Sampler) PushBlock(samples []float64) {
	for _, x := range samples {
		s.PushSample(x)
	}
}

// Ready reports whether a frame is pending.
func (s *Sampler) Ready() bool {
	return s.ready.Load()
}

// Consume copies the pending frame into dst and releases it to the
// producer. It returns false when no frame is pending. dst should hold
// FrameLen samples; shorter slices receive a prefix.
func (s *Sampler) Consume(dst []float64) bool {
	if !s.ready.Load() {
		return false
	}

	copy(dst, s.frame)
	s.ready.Store(false)

	return true
}

// Dropped returns how many frames were discarded because the previous one
// had not been consumed yet.
func (s *Sampler) Dropped() uint64 {
	return s.dropped.Load()
}

// Reset discards the partial fifo contents. It must not run concurrently
// with PushSample.
func (s *Sampler) Reset() {
	s.cursor = 0
	clear(s.fifo)
}
