package buffer

// LoadFloat32 copies planar float32 device samples into b and returns the
// number of samples copied per channel. Channels missing from src receive a
// copy of channel 0, so a mono input feeds both sides of a stereo block.
func (b Block) LoadFloat32(src [][]float32) int {
	n := b.n
	for _, ch := range src {
		if len(ch) < n {
			n = len(ch)
		}
	}

	for ch := range b.channels {
		dst := b.channels[ch][:n]
		if ch >= len(src) {
			if len(src) == 0 {
				Zero(dst)
				continue
			}

			copy(dst, b.channels[0][:n])

			continue
		}

		for i, v := range src[ch][:n] {
			dst[i] = float64(v)
		}
	}

	return n
}

// StoreFloat32 copies the first n samples of each channel of b into planar
// float32 device buffers. Extra destination channels receive channel 0.
func (b Block) StoreFloat32(dst [][]float32) {
	if len(b.channels) == 0 {
		return
	}

	for ch := range dst {
		srcCh := ch
		if srcCh >= len(b.channels) {
			srcCh = 0
		}

		src := b.channels[srcCh][:b.n]
		out := dst[ch]
		if len(out) > len(src) {
			out = out[:len(src)]
		}

		for i := range out {
			out[i] = float32(src[i])
		}
	}
}
