// Package chain implements the fixed five-stage signal chain of the pedal:
//
//	lowpass filter -> input gain -> waveshaper -> output gain -> cabinet convolution
//
// Every stage processes a [buffer.Block] in place. Parameters that the
// control context changes while audio runs (drive amount, gains, cutoff,
// impulse response) are published through atomics, so Process never takes a
// lock and does not allocate.
package chain
