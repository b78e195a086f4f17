// Package biquad provides the second-order IIR runtime used by the filter
// stage of the processing chain.
//
// A [Section] implements Direct Form II Transposed processing for a single
// section defined by [Coefficients]. First-order designs set B2 and A2 to
// zero and run through the same section. Coefficient design lives in
// dsp/filter/design.
package biquad
