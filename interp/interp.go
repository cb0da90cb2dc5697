// Package interp implements the per-object gain interpolator: a linear
// cross-fade from the previous gain vector to a new target over a
// metadata-specified number of samples, applied while accumulating a
// mono input into per-channel output beds.
package interp

// GainInterp cross-fades between successive gain vectors. Create one
// with NewGainInterp (the zero value has no gain storage); the first
// SetGainVector snaps straight to the target so no fade-in from silence
// occurs.
type GainInterp struct {
	current []float64
	target  []float64

	interpDur   int
	interpCount int
	firstCall   bool
}

// NewGainInterp returns an interpolator for gain vectors of length nCh.
func NewGainInterp(nCh int) *GainInterp {
	return &GainInterp{
		current:   make([]float64, nCh),
		target:    make([]float64, nCh),
		firstCall: true,
	}
}

// SetGainVector sets a new target gain vector to be reached over
// interpSamples samples. A target equal to the current one is a no-op:
// no new cross-fade starts. On the very first call the target is
// adopted immediately with no fade.
func (g *GainInterp) SetGainVector(newGains []float64, interpSamples int) {
	if equal(g.target, newGains) {
		return
	}
	if g.firstCall {
		copy(g.current, newGains)
		copy(g.target, newGains)
		g.interpDur = 0
		g.interpCount = 0
		return
	}
	copy(g.current, g.target)
	copy(g.target, newGains)
	g.interpDur = interpSamples
	g.interpCount = 0
	if interpSamples == 0 {
		copy(g.current, g.target)
	}
}

// ProcessAccumul applies the (possibly still fading) gain vector to the
// mono input and accumulates into out[ch][offset:offset+n] per channel.
func (g *GainInterp) ProcessAccumul(in []float64, out [][]float64, n, offset int) {
	nCh := len(g.target)

	nInterp := g.interpDur - g.interpCount
	if nInterp > n {
		nInterp = n
	}
	if nInterp < 0 {
		nInterp = 0
	}

	if nInterp > 0 {
		delta := 1 / float64(g.interpDur)
		for i := 0; i < nInterp; i++ {
			f := float64(i+g.interpCount) * delta
			for ch := 0; ch < nCh; ch++ {
				gain := (1-f)*g.current[ch] + f*g.target[ch]
				out[ch][i+offset] += in[i] * gain
			}
		}
		g.interpCount += nInterp
		if g.interpCount >= g.interpDur {
			copy(g.current, g.target)
		}
	}

	for ch := 0; ch < nCh; ch++ {
		gain := g.current[ch]
		if gain == 0 {
			continue
		}
		o := out[ch]
		for i := nInterp; i < n; i++ {
			o[i+offset] += in[i] * gain
		}
	}

	g.firstCall = false
}

// Reset finishes any in-flight fade and re-arms the first-call
// behaviour, so the next SetGainVector adopts its target immediately.
func (g *GainInterp) Reset() {
	g.interpCount = g.interpDur
	copy(g.current, g.target)
	g.firstCall = true
}

func equal(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
