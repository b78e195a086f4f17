// Package spectrum turns FFT bins into display-ready spectrum data.
//
// It does not implement the FFT itself. It works on bins produced by an
// external FFT backend and provides magnitude extraction, the skewed
// column-to-bin mapping used by log-like spectrum displays, and the
// decibel normalisation that maps magnitudes onto [0, 1].
package spectrum
