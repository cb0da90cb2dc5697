package ambisonic

import (
	"math"

	"github.com/thesyncim/admrender/interp"
)

// Encoder spatialises a mono stream into a B-format buffer. Position
// changes cross-fade the encoding coefficients over the configured fade
// time, reusing the object gain interpolator for the coefficient ramp.
type Encoder struct {
	order         int
	gain          float64
	fadingSamples int

	coeffs      []float64
	coeffInterp *interp.GainInterp
}

// NewEncoder builds an encoder for the given order. fadeTimeMilliSec
// scaled by sampleRate sets the coefficient cross-fade length applied
// on SetPosition.
func NewEncoder(order, sampleRate int, fadeTimeMilliSec float64) *Encoder {
	n := ChannelCount(order)
	return &Encoder{
		order:         order,
		gain:          1,
		fadingSamples: int(math.Round(0.001 * fadeTimeMilliSec * float64(sampleRate))),
		coeffs:        make([]float64, n),
		coeffInterp:   interp.NewGainInterp(n),
	}
}

// SetGain sets the scalar gain folded into the encoding coefficients.
func (e *Encoder) SetGain(gain float64) { e.gain = gain }

// SetPosition retargets the encoder to a new direction (radians),
// starting a coefficient cross-fade unless this is the first position
// set since construction or Reset.
func (e *Encoder) SetPosition(azimuthRad, elevationRad float64) {
	Coefficients(e.order, azimuthRad, elevationRad, e.coeffs)
	if e.gain != 1 {
		for i := range e.coeffs {
			e.coeffs[i] *= e.gain
		}
	}
	e.coeffInterp.SetGainVector(e.coeffs, e.fadingSamples)
}

// ProcessAccumul encodes in[:n] and accumulates into dst's component
// channels at the given offset.
func (e *Encoder) ProcessAccumul(in []float64, dst *BFormat, n, offset int) {
	e.coeffInterp.ProcessAccumul(in, dst.Channels, n, offset)
}

// Reset finishes any in-flight coefficient fade and re-arms the
// first-call snap.
func (e *Encoder) Reset() {
	e.coeffInterp.Reset()
}
