package buffer

// Block is a planar view over per-channel sample slices. All channels share
// the same length. A Block is only valid for the duration of the callback
// that produced it.
type Block struct {
	channels [][]float64
	n        int
}

// NewBlock wraps channels without copying. The block length is the shortest
// channel length so that every channel can be indexed up to NumSamples.
func NewBlock(channels [][]float64) Block {
	if len(channels) == 0 {
		return Block{}
	}

	n := len(channels[0])
	for _, ch := range channels[1:] {
		if len(ch) < n {
			n = len(ch)
		}
	}

	return Block{channels: channels, n: n}
}

// Alloc returns a zero-filled block backed by freshly allocated memory.
func Alloc(numChannels, numSamples int) Block {
	if numChannels <= 0 || numSamples < 0 {
		return Block{}
	}

	backing := make([]float64, numChannels*numSamples)
	channels := make([][]float64, numChannels)

	for ch := range channels {
		channels[ch] = backing[ch*numSamples : (ch+1)*numSamples : (ch+1)*numSamples]
	}

	return Block{channels: channels, n: numSamples}
}

// NumChannels returns the channel count.
func (b Block) NumChannels() int { return len(b.channels) }

// NumSamples returns the number of samples per channel.
func (b Block) NumSamples() int { return b.n }

// Channel returns the samples of channel ch.
func (b Block) Channel(ch int) []float64 {
	return b.channels[ch][:b.n]
}

// Sub returns a view of the first n samples of every channel. The channel
// headers are shared with b, so Sub does not allocate; n is clamped to
// [0, NumSamples].
func (b Block) Sub(n int) Block {
	if n < 0 {
		n = 0
	}
	if n > b.n {
		n = b.n
	}

	return Block{channels: b.channels, n: n}
}

// Zero sets all samples of every channel to 0.
func (b Block) Zero() {
	for ch := range b.channels {
		Zero(b.Channel(ch))
	}
}

// CopyFrom copies min(NumSamples) samples of each common channel from src
// and returns the number of samples copied per channel.
func (b Block) CopyFrom(src Block) int {
	n := b.n
	if src.n < n {
		n = src.n
	}

	chs := len(b.channels)
	if len(src.channels) < chs {
		chs = len(src.channels)
	}

	for ch := range chs {
		copy(b.channels[ch][:n], src.channels[ch][:n])
	}

	return n
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}
