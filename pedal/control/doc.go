// Package control owns the pedal's control-context logic: the Clean and
// Distortion state machine that loads or bypasses the cabinet impulse
// response, and the bridge that maps control surface events to processing
// parameters.
//
// Nothing in this package runs on the audio thread. Parameter writes reach
// the audio thread only through the atomics exposed by package chain.
package control
