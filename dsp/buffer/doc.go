// Package buffer provides the planar multi-channel audio block handed to the
// processing chain on every callback.
//
// A [Block] is a view: it never owns the sample memory passed to it and its
// methods do not allocate, so it can be built and sliced on the audio thread.
// [Alloc] is the one constructor that allocates and is meant for setup code.
package buffer
