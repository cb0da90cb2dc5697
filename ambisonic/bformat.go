package ambisonic

// BFormat is a block of Ambisonic audio: one sample buffer per ACN
// component, all the same length.
type BFormat struct {
	order    int
	Channels [][]float64
}

// NewBFormat allocates a zeroed B-format buffer for the given order and
// maximum block size.
func NewBFormat(order, maxSamples int) *BFormat {
	b := &BFormat{order: order}
	b.Channels = make([][]float64, ChannelCount(order))
	for i := range b.Channels {
		b.Channels[i] = make([]float64, maxSamples)
	}
	return b
}

// Order returns the Ambisonic order this buffer was allocated for.
func (b *BFormat) Order() int { return b.order }

// ChannelCount returns the number of component channels.
func (b *BFormat) ChannelCount() int { return len(b.Channels) }

// SampleCount returns the per-channel buffer length.
func (b *BFormat) SampleCount() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// AddStream accumulates n samples of in into component channel acn at
// the given offset.
func (b *BFormat) AddStream(in []float64, acn, n, offset int) {
	ch := b.Channels[acn]
	for i := 0; i < n; i++ {
		ch[i+offset] += in[i]
	}
}

// Zero clears all channels.
func (b *BFormat) Zero() {
	for _, ch := range b.Channels {
		for i := range ch {
			ch[i] = 0
		}
	}
}

// CopyFrom copies o's channel contents into b. The buffers must have
// identical shape.
func (b *BFormat) CopyFrom(o *BFormat) {
	for i := range b.Channels {
		copy(b.Channels[i], o.Channels[i])
	}
}
