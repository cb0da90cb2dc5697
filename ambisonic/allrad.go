package ambisonic

import (
	"math"

	"github.com/thesyncim/admrender/extent"
	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/panner"
)

// tDesignPoints is the size of the spherical sampling grid used to
// compute the AllRAD decoder matrix.
const tDesignPoints = 5200

// AllRAD decodes a B-format soundfield to a loudspeaker bed using the
// all-round Ambisonic decoding construction: the product of the
// point-source panning gains sampled over a dense spherical grid and
// the transpose of the grid's spherical harmonic matrix, renormalised
// by the Frobenius norm of the decoded samples. The W channel is
// low-passed at 200 Hz, attenuated to -6 dB, and routed to LFE.
type AllRAD struct {
	outLayout layout.Layout
	order     int
	nCh       int

	decMat [][]float64 // [non-LFE speaker][component]

	optim    *OptimFilters
	lfeLP    *Biquad
	tmp      *BFormat
	useOptim bool
}

// NewAllRAD builds an AllRAD decoder from the given order onto the
// output layout (LFE included). useOptimFilters enables the max-rE
// shelf optimisation before decoding.
func NewAllRAD(order int, outLayout layout.Layout, sampleRate, maxBlockSize int, useOptimFilters bool) *AllRAD {
	a := &AllRAD{
		outLayout: outLayout,
		order:     order,
		nCh:       ChannelCount(order),
		tmp:       NewBFormat(order, maxBlockSize),
		useOptim:  useOptimFilters && order > 0,
	}
	if a.useOptim {
		a.optim = NewOptimFilters(order, sampleRate, maxBlockSize)
	}
	nLFE := len(outLayout.LFEIndices())
	if nLFE > 0 {
		a.lfeLP = NewBiquad(nLFE, sampleRate, 200, math.Sqrt(0.5), LowPass)
	}
	a.configureMatrix()
	return a
}

// configureMatrix samples the decoding integral over a spherical
// grid. The reference implementation uses a 5200-point t-design; a
// golden-ratio lattice of the same size is an equally uniform sampling
// for this purpose and is what the extent grid already provides.
func (a *AllRAD) configureMatrix() {
	noLFE := a.outLayout.WithoutLFE()
	psp := panner.NewGainCalc(noLFE)
	nSpk := psp.NumChannels()
	nGrid := tDesignPoints
	grid := extent.FibonacciGrid(nGrid)

	n2sn := make([]float64, a.nCh)
	for acn := 0; acn < a.nCh; acn++ {
		n2sn[acn] = math.Sqrt(float64(2*ComponentOrder(acn) + 1))
	}

	// decMat = G * Y^T / nGrid with Y in N3D normalisation.
	a.decMat = make([][]float64, nSpk)
	for i := range a.decMat {
		a.decMat[i] = make([]float64, a.nCh)
	}
	coeffs := make([]float64, a.nCh)
	yt := make([][]float64, nGrid) // N3D harmonics per grid point
	for i, p := range grid {
		az := math.Atan2(-p.X, p.Y)
		el := math.Atan2(p.Z, math.Hypot(p.X, p.Y))
		Coefficients(a.order, az, el, coeffs)
		row := make([]float64, a.nCh)
		for acn := range row {
			row[acn] = coeffs[acn] * n2sn[acn]
		}
		yt[i] = row

		g := psp.CalculateGainsVec(p)
		for s := 0; s < nSpk; s++ {
			for acn := 0; acn < a.nCh; acn++ {
				a.decMat[s][acn] += g[s] * row[acn] / float64(nGrid)
			}
		}
	}

	// Frobenius norm of the decoded sampling matrix drives the overall
	// normalisation; the per-component n2sn factor converts the result
	// back to a decoder for SN3D-normalised input.
	var froNorm float64
	for s := 0; s < nSpk; s++ {
		for i := 0; i < nGrid; i++ {
			var v float64
			for acn := 0; acn < a.nCh; acn++ {
				v += a.decMat[s][acn] * yt[i][acn]
			}
			froNorm += v * v
		}
	}
	froNorm = math.Sqrt(froNorm)

	normFactor := math.Sqrt(float64(nGrid)) / froNorm
	for s := 0; s < nSpk; s++ {
		for acn := 0; acn < a.nCh; acn++ {
			a.decMat[s][acn] *= normFactor * n2sn[acn]
		}
	}
}

// Process decodes src[:n] into out (output-layout channel order, LFE
// included). out channels are overwritten, not accumulated.
func (a *AllRAD) Process(src *BFormat, n int, out [][]float64) {
	a.tmp.CopyFrom(src)
	if a.useOptim {
		a.optim.Process(a.tmp, n)
	}

	spk := 0
	lfe := 0
	for ch, c := range a.outLayout.Channels {
		if c.IsLFE {
			// LFE takes the unoptimised W channel, low-passed and
			// scaled to -6 dB.
			a.lfeLP.ProcessChannel(lfe, src.Channels[0], out[ch], n)
			for i := 0; i < n; i++ {
				out[ch][i] *= 0.5
			}
			lfe++
			continue
		}
		row := a.decMat[spk]
		dst := out[ch]
		for i := 0; i < n; i++ {
			dst[i] = 0
		}
		for acn := 0; acn < a.nCh; acn++ {
			coeff := row[acn]
			if coeff == 0 {
				continue
			}
			in := a.tmp.Channels[acn]
			for i := 0; i < n; i++ {
				dst[i] += coeff * in[i]
			}
		}
		spk++
	}
}

// SpeakerCount returns the number of output channels Process writes.
func (a *AllRAD) SpeakerCount() int { return len(a.outLayout.Channels) }

// Reset clears all filter state.
func (a *AllRAD) Reset() {
	if a.useOptim {
		a.optim.Reset()
	}
	if a.lfeLP != nil {
		a.lfeLP.Reset()
	}
	a.tmp.Zero()
}
