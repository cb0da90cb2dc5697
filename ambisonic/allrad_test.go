package ambisonic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thesyncim/admrender/layout"
)

func TestAllRADDecodesFrontSourceForward(t *testing.T) {
	const n = 64
	l, _ := layout.ForName(layout.Layout0_5_0)
	a := NewAllRAD(1, l, 48000, n, false)

	// Encode a front source into B-format DC signals.
	coeffs := make([]float64, 4)
	Coefficients(1, 0, 0, coeffs)
	src := NewBFormat(1, n)
	for ch := range src.Channels {
		for i := 0; i < n; i++ {
			src.Channels[ch][i] = coeffs[ch]
		}
	}

	out := make([][]float64, len(l.Channels))
	for i := range out {
		out[i] = make([]float64, n)
	}
	a.Process(src, n, out)

	front := out[l.IndexOf("M+000")][n-1]
	rearL := out[l.IndexOf("M+110")][n-1]
	rearR := out[l.IndexOf("M-110")][n-1]
	assert.Greater(t, front, 0.0)
	assert.Greater(t, front, math.Abs(rearL), "front speaker should dominate for a front source")
	assert.Greater(t, front, math.Abs(rearR))
	assert.InDelta(t, rearL, rearR, 1e-9, "left/right symmetry")
}

func TestAllRADRoutesLowPassedWToLFE(t *testing.T) {
	const n = 256
	l, _ := layout.ForName(layout.Layout0_5_0)
	a := NewAllRAD(1, l, 48000, n, false)

	src := NewBFormat(1, n)
	for i := 0; i < n; i++ {
		src.Channels[0][i] = 1 // DC in W passes any low-pass
	}

	out := make([][]float64, len(l.Channels))
	for i := range out {
		out[i] = make([]float64, n)
	}
	// Run several blocks so the IIR settles to DC.
	for b := 0; b < 20; b++ {
		a.Process(src, n, out)
	}

	lfe := out[l.IndexOf("LFE1")][n-1]
	assert.InDelta(t, 0.5, lfe, 1e-3, "LFE carries W at -6 dB after the 200 Hz low-pass settles")
}

func TestAllRADSpeakerCount(t *testing.T) {
	l, _ := layout.ForName(layout.Layout0_5_0)
	a := NewAllRAD(2, l, 48000, 32, true)
	assert.Equal(t, 6, a.SpeakerCount())
}
