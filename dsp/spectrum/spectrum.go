package spectrum

import (
	"math"
	"sync"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-pedal/dsp/core"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

func getScratch(n int) (re, im []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)

	need := 2 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}

	return buf.data[:n], buf.data[n:need], buf
}

// Magnitude returns |X[k]| for each complex spectrum bin. Scratch buffers
// are pooled, so in steady state this allocates only the output slice.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	re, im, buf := getScratch(len(in))
	SplitComplex(re, im, in)
	vecmath.Magnitude(out, re, im)
	scratchPool.Put(buf)

	return out
}

// SplitComplex copies the real and imaginary parts of in into re and im.
// Only min(len(re), len(im), len(in)) bins are written.
func SplitComplex(re, im []float64, in []complex128) {
	n := min(len(re), len(im), len(in))
	for i, c := range in[:n] {
		re[i] = real(c)
		im[i] = imag(c)
	}
}

// MagnitudeFromParts computes |X[k]| = sqrt(re[k]^2 + im[k]^2) into dst.
//
// This is the zero-allocation path for callers that already hold real and
// imaginary parts in separate slices. All three slices must have the same
// length.
func MagnitudeFromParts(dst, re, im []float64) {
	vecmath.Magnitude(dst, re, im)
}

// PowerFromParts computes |X[k]|^2 into dst.
func PowerFromParts(dst, re, im []float64) {
	vecmath.Power(dst, re, im)
}

// SkewedBinIndex maps display column i of scopeSize columns to an FFT bin in
// [0, fftSize/2]. skew < 1 spreads the low bins across more columns, giving
// the roughly logarithmic frequency axis a spectrum display expects; skew 1
// is linear.
func SkewedBinIndex(i, scopeSize, fftSize int, skew float64) int {
	if scopeSize <= 0 || fftSize <= 0 {
		return 0
	}

	half := fftSize / 2
	pos := float64(i) / float64(scopeSize)

	var p float64

	switch {
	case pos <= 0:
		p = 0
	case pos >= 1:
		p = 1
	default:
		p = 1 - math.Exp(math.Log(1-pos)*skew)
	}

	return core.ClampInt(int(p*float64(fftSize)*0.5), 0, half)
}

// ColumnForBin is the inverse of SkewedBinIndex: it returns the first column
// whose mapped bin is at least bin, or scopeSize if none is.
func ColumnForBin(bin, scopeSize, fftSize int, skew float64) int {
	for i := range scopeSize {
		if SkewedBinIndex(i, scopeSize, fftSize, skew) >= bin {
			return i
		}
	}

	return scopeSize
}

// NormalizedLevel converts a bin magnitude from an fftSize-point transform
// into a display level in [0, 1]. The magnitude is referenced to fftSize
// (full scale), clamped to [minDB, maxDB] and mapped linearly.
func NormalizedLevel(mag float64, fftSize int, minDB, maxDB float64) float64 {
	db := core.GainToDB(mag) - core.GainToDB(float64(fftSize))
	db = core.Clamp(db, minDB, maxDB)

	return core.MapRange(db, minDB, maxDB, 0, 1)
}

// BinFrequency returns the centre frequency of bin k in Hz.
func BinFrequency(k, fftSize int, sampleRate float64) float64 {
	if fftSize <= 0 {
		return 0
	}

	return float64(k) * sampleRate / float64(fftSize)
}

// NearestBin returns the bin closest to freq, clamped to [0, fftSize/2].
func NearestBin(freq float64, fftSize int, sampleRate float64) int {
	if sampleRate <= 0 || fftSize <= 0 {
		return 0
	}

	return core.ClampInt(int(math.Round(freq*float64(fftSize)/sampleRate)), 0, fftSize/2)
}
