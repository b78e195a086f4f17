// Package irload resolves, decodes and watches the impulse response files
// used for cabinet emulation.
//
// Samples are decoded from integer PCM WAV files with go-audio/wav and
// scaled to [-1, 1). Channels are kept separate (non-interleaved).
package irload
