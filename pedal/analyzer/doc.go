// Package analyzer derives the spectrum display curve from the processed
// audio stream.
//
// A [Sampler] sits on the audio thread and hands complete frames to the
// analysis context through a single ready flag, dropping frames while one
// is still pending. An [Analyzer] turns a frame into a [Curve] of
// normalised levels, one per display column, on a roughly logarithmic
// frequency axis.
package analyzer
