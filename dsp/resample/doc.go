// Package resample converts finite signals between sample rates with a
// zero-phase Kaiser-windowed sinc filter, evaluated polyphase style.
//
// It is meant for one-shot conversions off the audio thread, such as
// bringing an impulse response recorded at 44.1 kHz to the device rate.
// Output sample m sits at input time m*inRate/outRate, so the result is
// not delayed relative to the input.
//
// Quality modes:
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
package resample
