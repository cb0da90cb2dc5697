package fft

// Convolver is a block FFT convolution engine with per-slot overlap-add
// state. Each slot pairs one signal stream with one fixed FIR filter;
// the decorrelator uses one slot per output channel and the
// binauraliser one per Ambisonic component.
type Convolver struct {
	fft      *State
	taps     int
	block    int
	overlap  int
	spectra  [][]complex128
	overlaps [][]float64

	scratchT []complex128
	scratchF []complex128
	scratchG []complex128
}

// NewConvolver builds a convolution engine for the given filter bank.
// Every filter must have the same length; maxBlock is the largest block
// Process will ever be called with.
func NewConvolver(filters [][]float64, maxBlock int) *Convolver {
	taps := 0
	if len(filters) > 0 {
		taps = len(filters[0])
	}
	overlap := taps - 1
	size := NextPowerOfTwo(maxBlock + taps + overlap)

	c := &Convolver{
		fft:      New(size),
		taps:     taps,
		block:    maxBlock,
		overlap:  overlap,
		spectra:  make([][]complex128, len(filters)),
		overlaps: make([][]float64, len(filters)),
		scratchT: make([]complex128, size),
		scratchF: make([]complex128, size),
		scratchG: make([]complex128, size),
	}
	for i, h := range filters {
		for j := range c.scratchT {
			c.scratchT[j] = 0
		}
		for j, v := range h {
			c.scratchT[j] = complex(v, 0)
		}
		c.spectra[i] = make([]complex128, size)
		c.fft.Forward(c.scratchT, c.spectra[i])
		c.overlaps[i] = make([]float64, overlap)
	}
	return c
}

// Process convolves in-place: inOut[:n] is replaced by the filtered
// signal for the given slot, with the tail beyond n folded into the
// slot's overlap state for the next call.
func (c *Convolver) Process(slot int, inOut []float64, n int) {
	for j := range c.scratchT {
		c.scratchT[j] = 0
	}
	for j := 0; j < n; j++ {
		c.scratchT[j] = complex(inOut[j], 0)
	}
	c.fft.Forward(c.scratchT, c.scratchF)
	spec := c.spectra[slot]
	for j := range c.scratchF {
		c.scratchF[j] *= spec[j]
	}
	c.fft.Inverse(c.scratchF, c.scratchG)

	ov := c.overlaps[slot]
	for j := 0; j < n; j++ {
		inOut[j] = real(c.scratchG[j])
		if j < c.overlap {
			inOut[j] += ov[j]
		}
	}
	// Tail of this block plus any pending overlap not yet emitted.
	for j := 0; j < c.overlap; j++ {
		carry := 0.0
		if n+j < c.overlap {
			carry = ov[n+j]
		}
		ov[j] = real(c.scratchG[n+j]) + carry
	}
}

// Reset zeroes all overlap state.
func (c *Convolver) Reset() {
	for _, ov := range c.overlaps {
		for j := range ov {
			ov[j] = 0
		}
	}
}
