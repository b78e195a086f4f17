package core

import "math"

// MinusInfinityDB is the floor used when converting between linear gain
// and decibels. Gains at or below it are treated as silence.
const MinusInfinityDB = -100.0

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// ClampInt limits value to the inclusive range [min, max].
func ClampInt(value, min, max int) int {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// DBToGain converts decibels to linear amplitude (20*log10 convention).
// Values at or below MinusInfinityDB map to 0.
func DBToGain(db float64) float64 {
	if db <= MinusInfinityDB || math.IsNaN(db) {
		return 0
	}

	return math.Pow(10, db/20)
}

// GainToDB converts linear amplitude to decibels, never returning less than
// MinusInfinityDB. Non-positive gains map to MinusInfinityDB.
func GainToDB(gain float64) float64 {
	if gain <= 0 || math.IsNaN(gain) {
		return MinusInfinityDB
	}

	return math.Max(MinusInfinityDB, 20*math.Log10(gain))
}

// MapRange linearly maps value from [srcLo, srcHi] onto [dstLo, dstHi].
// The result is not clamped. A degenerate source range maps to dstLo.
func MapRange(value, srcLo, srcHi, dstLo, dstHi float64) float64 {
	if srcHi == srcLo {
		return dstLo
	}

	return dstLo + (dstHi-dstLo)*(value-srcLo)/(srcHi-srcLo)
}
