package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// StreamingOverlapAdd implements streaming FFT-based convolution using
// overlap-add. It keeps the convolution tail between calls, so a signal
// split into arbitrary blocks yields the same output as convolving it whole.
//
// Blocks may have any length from 1 to the configured maximum. The kernel
// spectrum, plan and scratch buffers are allocated once in the constructor;
// ProcessBlockTo does not allocate.
type StreamingOverlapAdd struct {
	kernelFFT []complex128

	kernelLen    int
	maxBlockSize int
	fftSize      int

	plan *algofft.Plan[complex128]

	scratch []complex128

	// acc holds the pending output: samples not yet emitted plus the tail
	// of every block convolved so far. Length maxBlockSize+kernelLen-1.
	acc []float64
}

// NewStreamingOverlapAdd creates a streaming overlap-add convolver for
// blocks of up to maxBlockSize samples.
func NewStreamingOverlapAdd(kernel []float64, maxBlockSize int) (*StreamingOverlapAdd, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	if maxBlockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, maxBlockSize)
	}

	kernelLen := len(kernel)
	fftSize := nextPowerOf2(maxBlockSize + kernelLen - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	soa := &StreamingOverlapAdd{
		kernelFFT:    make([]complex128, fftSize),
		kernelLen:    kernelLen,
		maxBlockSize: maxBlockSize,
		fftSize:      fftSize,
		plan:         plan,
		scratch:      make([]complex128, fftSize),
		acc:          make([]float64, maxBlockSize+kernelLen-1),
	}

	for i, v := range kernel {
		soa.scratch[i] = complex(v, 0)
	}

	if err := plan.Forward(soa.kernelFFT, soa.scratch); err != nil {
		return nil, fmt.Errorf("conv: failed to compute kernel FFT: %w", err)
	}

	return soa, nil
}

// MaxBlockSize returns the largest block ProcessBlockTo accepts.
func (soa *StreamingOverlapAdd) MaxBlockSize() int { return soa.maxBlockSize }

// KernelLen returns the kernel length.
func (soa *StreamingOverlapAdd) KernelLen() int { return soa.kernelLen }

// FFTSize returns the transform size.
func (soa *StreamingOverlapAdd) FFTSize() int { return soa.fftSize }

// ProcessBlock convolves input and returns a newly allocated output block of
// the same length.
func (soa *StreamingOverlapAdd) ProcessBlock(input []float64) ([]float64, error) {
	output := make([]float64, len(input))
	if err := soa.ProcessBlockTo(output, input); err != nil {
		return nil, err
	}

	return output, nil
}

// ProcessBlockTo convolves input into output. Both must have the same
// length n with 0 < n <= MaxBlockSize. output may alias input.
func (soa *StreamingOverlapAdd) ProcessBlockTo(output, input []float64) error {
	n := len(input)
	if n == 0 || n > soa.maxBlockSize {
		return ErrInvalidBlockSize
	}
	if len(output) != n {
		return ErrLengthMismatch
	}

	for i, v := range input {
		soa.scratch[i] = complex(v, 0)
	}
	for i := n; i < soa.fftSize; i++ {
		soa.scratch[i] = 0
	}

	if err := soa.plan.Forward(soa.scratch, soa.scratch); err != nil {
		return err
	}

	for i := range soa.scratch {
		soa.scratch[i] *= soa.kernelFFT[i]
	}

	if err := soa.plan.Inverse(soa.scratch, soa.scratch); err != nil {
		return err
	}

	resultLen := n + soa.kernelLen - 1
	for i := range resultLen {
		soa.acc[i] += real(soa.scratch[i])
	}

	copy(output, soa.acc[:n])

	// Shift the pending tail to the front.
	copy(soa.acc, soa.acc[n:])
	tail := soa.acc[len(soa.acc)-n:]
	for i := range tail {
		tail[i] = 0
	}

	return nil
}

// Reset clears the overlap state.
func (soa *StreamingOverlapAdd) Reset() {
	for i := range soa.acc {
		soa.acc[i] = 0
	}
}
