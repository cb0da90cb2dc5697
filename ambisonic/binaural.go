package ambisonic

import (
	"math"

	"github.com/thesyncim/admrender/hrtf"
	"github.com/thesyncim/admrender/internal/fft"
	"github.com/thesyncim/admrender/layout"
)

// virtualSpeakerLayout returns the virtual loudspeaker array decoded
// for binaural rendering: a cube for orders 0 and 1, a dodecahedron for
// second and third order.
func virtualSpeakerLayout(order int) []layout.PolarPosition {
	if order <= 1 {
		out := make([]layout.PolarPosition, 0, 8)
		for i := 0; i < 4; i++ {
			out = append(out, layout.PolarPosition{Azimuth: -(float64(i)*90 + 45), Elevation: 35.2, Distance: 1})
		}
		for i := 0; i < 4; i++ {
			out = append(out, layout.PolarPosition{Azimuth: -(float64(i)*90 + 45), Elevation: -35.2, Distance: 1})
		}
		return out
	}
	azimuths := []float64{90, -90, 45, 135, -45, -135, 0, 180, 0, 180, 45, -45, 135, -135, 90, -90, 45, 135, -45, -135}
	elevations := []float64{-69.1, -69.1, -35.3, -35.3, -35.3, -35.3, -20.9, -20.9, 20.9, 20.9, 35.3, 35.3, 35.3, 35.3, 69.1, 69.1, 69.1, 69.1, 69.1, 69.1}
	out := make([]layout.PolarPosition, 20)
	for i := range out {
		out[i] = layout.PolarPosition{Azimuth: azimuths[i], Elevation: elevations[i], Distance: 1}
	}
	return out
}

// asymmetricComponents are the ACN indices whose sign flips under
// left/right mirroring; the low-CPU path derives the right ear by
// negating these components' contributions.
var asymmetricComponents = map[int]bool{1: true, 4: true, 5: true, 9: true, 10: true, 11: true}

// Binauralizer decodes a B-format soundfield to two ears: a virtual
// loudspeaker array is decoded by a sampling-Ambisonic matrix, each
// virtual feed's HRTF is folded into one composite filter per Ambisonic
// component at configuration, and the per-component filters are applied
// by fast convolution. Only the left-ear filters are convolved; the
// right ear is derived from the same partial convolutions by
// sign-inverting the asymmetric components.
type Binauralizer struct {
	order int
	nCh   int
	taps  int

	conv       *fft.Convolver
	scratch    []float64
	leftAccum  []float64
	rightAccum []float64
}

// NewBinauralizer builds the binaural decoder. The provider is queried
// once per virtual speaker; any direction it cannot serve aborts with
// ok = false.
func NewBinauralizer(order, sampleRate, maxBlockSize int, provider hrtf.Provider) (*Binauralizer, bool) {
	if provider == nil {
		return nil, false
	}
	b := &Binauralizer{
		order: order,
		nCh:   ChannelCount(order),
		taps:  provider.TailLength(),
	}

	speakers := virtualSpeakerLayout(order)
	speakerGain := 1 / math.Sqrt(float64(len(speakers)))

	// Accumulate each virtual speaker's left HRTF, scaled by its decode
	// coefficient, into one filter per Ambisonic component. The
	// coefficient is the speaker's SN3D harmonic value times (2n+1) to
	// make the sampling decoder correct for SN3D input.
	filters := make([][]float64, b.nCh)
	for ch := range filters {
		filters[ch] = make([]float64, b.taps)
	}
	coeffs := make([]float64, b.nCh)
	for _, sp := range speakers {
		az := layout.DegToRad(sp.Azimuth)
		el := layout.DegToRad(sp.Elevation)
		left, _, ok := provider.Get(az, el)
		if !ok || len(left) != b.taps {
			return nil, false
		}
		Coefficients(order, az, el, coeffs)
		for ch := 0; ch < b.nCh; ch++ {
			c := coeffs[ch] * speakerGain * float64(2*ComponentOrder(ch)+1)
			f := filters[ch]
			for t := 0; t < b.taps; t++ {
				f[t] += c * left[t]
			}
		}
	}

	// Normalise against a source encoded at azimuth 90, elevation 0 so
	// that a full-scale input peaks near -9 dB at the ear.
	Coefficients(order, math.Pi/2, 0, coeffs)
	var peak float64
	for t := 0; t < b.taps; t++ {
		var v float64
		for ch := 0; ch < b.nCh; ch++ {
			v += coeffs[ch] * filters[ch][t]
		}
		peak = math.Max(peak, math.Abs(v))
	}
	if peak > 0 {
		scale := 0.35 / peak
		for ch := range filters {
			for t := range filters[ch] {
				filters[ch][t] *= scale
			}
		}
	}

	b.conv = fft.NewConvolver(filters, maxBlockSize)
	b.scratch = make([]float64, maxBlockSize)
	b.leftAccum = make([]float64, maxBlockSize)
	b.rightAccum = make([]float64, maxBlockSize)
	return b, true
}

// TailLength returns the HRTF length in samples.
func (b *Binauralizer) TailLength() int { return b.taps }

// Process decodes src[:n] into the two ear buffers (overwritten, not
// accumulated).
func (b *Binauralizer) Process(src *BFormat, n int, left, right []float64) {
	for i := 0; i < n; i++ {
		b.leftAccum[i] = 0
		b.rightAccum[i] = 0
	}
	for ch := 0; ch < b.nCh; ch++ {
		copy(b.scratch[:n], src.Channels[ch][:n])
		b.conv.Process(ch, b.scratch, n)
		if asymmetricComponents[ch] {
			for i := 0; i < n; i++ {
				b.leftAccum[i] += b.scratch[i]
				b.rightAccum[i] -= b.scratch[i]
			}
		} else {
			for i := 0; i < n; i++ {
				b.leftAccum[i] += b.scratch[i]
				b.rightAccum[i] += b.scratch[i]
			}
		}
	}
	copy(left[:n], b.leftAccum[:n])
	copy(right[:n], b.rightAccum[:n])
}

// Reset clears the convolution overlap state.
func (b *Binauralizer) Reset() {
	b.conv.Reset()
}
