// Package conv provides the convolution routines behind the cabinet stage.
//
//   - [Direct]: O(N*M) time-domain linear convolution, the reference the FFT
//     path is tested against.
//   - [StreamingOverlapAdd]: FFT-based block convolution with state carried
//     between calls, for real-time processing.
//
// # Usage
//
//	c, err := conv.NewStreamingOverlapAdd(kernel, maxBlock)
//	...
//	err = c.ProcessBlockTo(out[:n], in[:n]) // any n <= maxBlock
//
// The streaming convolver introduces no latency: output sample i depends on
// input samples up to and including i.
package conv
