// Package window generates the analysis windows used ahead of a spectral
// transform.
//
// [Generate] returns fresh coefficients; [Table] precomputes them once so the
// analysis cycle can window every frame without allocating.
package window
