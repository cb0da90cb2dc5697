// Package decorrelate implements the ADM decorrelator of Rec. ITU-R
// BS.2127-0 section 7.4: a 512-tap random-phase all-pass FIR per output
// channel applied to the diffuse bed by fast convolution, and a
// compensation delay of (N-1)/2 samples on the direct bed to keep the
// two time-aligned.
package decorrelate

import (
	"math"
	"sort"

	"github.com/thesyncim/admrender/internal/fft"
)

// FilterSize is the decorrelation filter length in samples (sec. 7.4).
const FilterSize = 512

// CompensationDelay is the direct-path delay matching the filters'
// group delay.
const CompensationDelay = (FilterSize - 1) / 2

// randFloats draws n uniforms in [0, 1) from an MT19937 seeded with
// seed, matching libear's genRandFloat (raw draws divided by 2^32).
func randFloats(seed uint32, n int) []float64 {
	m := newMT19937(seed)
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(m.next()) / float64(1<<32)
	}
	return out
}

// DesignBasic designs one all-pass random-phase FIR of the given size:
// unit magnitude with uniformly random phase on every bin, except DC
// and Nyquist which stay real, then an inverse FFT back to time domain.
func DesignBasic(decorrelatorID int, size int) []float64 {
	rand := randFloats(uint32(decorrelatorID), size/2-1)

	freq := make([]complex128, size)
	freq[0] = 1
	for i, r := range rand {
		phase := 2 * math.Pi * r
		freq[i+1] = complex(math.Cos(phase), math.Sin(phase))
	}
	freq[size/2] = 1
	for i := 1; i < size/2; i++ {
		c := freq[size/2-i]
		freq[size/2+i] = complex(real(c), -imag(c))
	}

	timeDomain := make([]complex128, size)
	fft.New(size).Inverse(freq, timeDomain)
	out := make([]float64, size)
	for i, c := range timeDomain {
		out[i] = real(c)
	}
	return out
}

// DesignForChannels designs the filter bank for the given output
// channel names. Each channel's seed is its index in the
// lexicographically sorted name list, making the bank a deterministic
// function of the layout's names alone, independent of channel order.
func DesignForChannels(channelNames []string) [][]float64 {
	sorted := append([]string(nil), channelNames...)
	sort.Strings(sorted)

	filters := make([][]float64, len(channelNames))
	for i, name := range channelNames {
		idx := sort.SearchStrings(sorted, name)
		filters[i] = DesignBasic(idx, FilterSize)
	}
	return filters
}
