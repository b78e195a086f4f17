// Package engine composes the pedal: the signal chain, the spectrum sampler
// and analyzer, the Clean and Distortion state machine and the parameter
// bridge.
//
// A Processor has three callers. The audio thread calls Process. A timer
// goroutine calls Run (or AnalyzeFrame). Control code calls Prepare,
// OnControlEvent and Release.
package engine
