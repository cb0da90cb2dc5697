package decorrelate

import "github.com/thesyncim/admrender/internal/fft"

// Decorrelator processes a frame's direct and diffuse beds in place:
// the direct bed is delayed by CompensationDelay samples through a
// circular buffer, the diffuse bed is convolved with each channel's
// decorrelation filter.
type Decorrelator struct {
	nCh       int
	conv      *fft.Convolver
	delayLine [][]float64
	delayLen  int
	writePos  int
}

// New builds a decorrelator for the given output channel names and the
// largest block size Process will see.
func New(channelNames []string, maxBlockSize int) *Decorrelator {
	d := &Decorrelator{
		nCh:      len(channelNames),
		conv:     fft.NewConvolver(DesignForChannels(channelNames), maxBlockSize),
		delayLen: CompensationDelay + maxBlockSize,
	}
	d.delayLine = make([][]float64, d.nCh)
	for i := range d.delayLine {
		d.delayLine[i] = make([]float64, d.delayLen)
	}
	return d
}

// Process delays direct[ch][:n] and decorrelates diffuse[ch][:n], both
// in place.
func (d *Decorrelator) Process(direct, diffuse [][]float64, n int) {
	readPos := d.writePos - CompensationDelay
	if readPos < 0 {
		readPos += d.delayLen
	}

	for ch := 0; ch < d.nCh; ch++ {
		line := d.delayLine[ch]
		w := d.writePos
		for i := 0; i < n; i++ {
			line[w] = direct[ch][i]
			w++
			if w >= d.delayLen {
				w = 0
			}
		}
		r := readPos
		for i := 0; i < n; i++ {
			direct[ch][i] = line[r]
			r++
			if r >= d.delayLen {
				r = 0
			}
		}

		d.conv.Process(ch, diffuse[ch], n)
	}

	d.writePos += n
	if d.writePos >= d.delayLen {
		d.writePos -= d.delayLen
	}
}

// Reset zeroes the delay lines and convolution overlap state.
func (d *Decorrelator) Reset() {
	for _, line := range d.delayLine {
		for i := range line {
			line[i] = 0
		}
	}
	d.conv.Reset()
	d.writePos = 0
}
