package gain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/types"
)

func TestNominalSpeakerLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"M+030", "M+030"},
		{"urn:itu:bs:2051:0:speaker:M+030", "M+030"},
		{"LFE", "LFE1"},
		{"LFEL", "LFE1"},
		{"LFER", "LFE2"},
		{"urn:itu:bs:2051:1:speaker:LFE", "LFE1"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NominalSpeakerLabel(tc.in), "label %q", tc.in)
	}
}

func TestLowPassMarksLFE(t *testing.T) {
	md := types.DirectSpeakerMetadata{
		SpeakerLabel:     "M+030",
		ChannelFrequency: types.DirectSpeakerChannelFrequency{HasLowPass: true, LowPass: 100},
	}
	assert.True(t, IsLFE(md))

	md.ChannelFrequency.LowPass = 300
	assert.False(t, IsLFE(md))
}

func TestLFETrackRoutesToLFE1(t *testing.T) {
	l, _ := layout.ForName(layout.Layout0_5_0)
	c := NewDirectSpeakerCalc(l)

	gains := make([]float64, len(l.Channels))
	c.CalculateGains(types.DirectSpeakerMetadata{
		SpeakerLabel:     "M+000",
		ChannelFrequency: types.DirectSpeakerChannelFrequency{HasLowPass: true, LowPass: 100},
	}, gains)

	lfe := l.IndexOf("LFE1")
	require.GreaterOrEqual(t, lfe, 0)
	assert.Equal(t, 1.0, gains[lfe])
	for i, g := range gains {
		if i != lfe {
			assert.Zero(t, g, "channel %d", i)
		}
	}
}

func TestDirectLabelMatch(t *testing.T) {
	l, _ := layout.ForName(layout.Layout0_5_0)
	c := NewDirectSpeakerCalc(l)

	gains := make([]float64, len(l.Channels))
	c.CalculateGains(types.DirectSpeakerMetadata{SpeakerLabel: "M-110"}, gains)

	assert.Equal(t, 1.0, gains[l.IndexOf("M-110")])
}

func TestMappingRuleFoldsHeightChannel(t *testing.T) {
	// U+180 from the 9+10+3 pack folds onto U+030/U-030 at -3 dB each
	// in a 2+5+0 output.
	l, _ := layout.ForName(layout.Layout2_5_0)
	c := NewDirectSpeakerCalc(l)

	gains := make([]float64, len(l.Channels))
	c.CalculateGains(types.DirectSpeakerMetadata{
		SpeakerLabel:      "U+180",
		AudioPackFormatID: "AP_00010004",
		PolarPosition:     types.DirectSpeakerPolarPosition{Azimuth: 180, Elevation: 30, Distance: 1},
	}, gains)

	want := 1 / math.Sqrt2
	assert.InDelta(t, want, gains[l.IndexOf("U+030")], 1e-12)
	assert.InDelta(t, want, gains[l.IndexOf("U-030")], 1e-12)
	for i, g := range gains {
		if i != l.IndexOf("U+030") && i != l.IndexOf("U-030") {
			assert.Zero(t, g, "channel %d", i)
		}
	}
}

func TestWithinBoundsFallback(t *testing.T) {
	// An unlabelled speaker at 28/5 with bounds covering M+030's
	// nominal position routes there with unit gain.
	l, _ := layout.ForName(layout.Layout0_5_0)
	c := NewDirectSpeakerCalc(l)

	gains := make([]float64, len(l.Channels))
	c.CalculateGains(types.DirectSpeakerMetadata{
		PolarPosition: types.DirectSpeakerPolarPosition{
			Azimuth: 28, Elevation: 5, Distance: 1,
			Bounds: []types.PolarBounds{{
				MinAzimuth: 25, MaxAzimuth: 35,
				MinElevation: -10, MaxElevation: 10,
				MinDistance: 0.9, MaxDistance: 1.1,
			}},
		},
	}, gains)

	assert.Equal(t, 1.0, gains[l.IndexOf("M+030")])
	for i, g := range gains {
		if i != l.IndexOf("M+030") {
			assert.Zero(t, g, "channel %d", i)
		}
	}
}

func TestPannerFallbackWhenNothingMatches(t *testing.T) {
	// A label absent from the layout, no pack, no bounds around a
	// direction off every speaker: falls through to the point-source
	// panner.
	l, _ := layout.ForName(layout.Layout0_5_0)
	c := NewDirectSpeakerCalc(l)

	gains := make([]float64, len(l.Channels))
	c.CalculateGains(types.DirectSpeakerMetadata{
		SpeakerLabel:  "U+999",
		PolarPosition: types.DirectSpeakerPolarPosition{Azimuth: 15, Elevation: 0, Distance: 1},
	}, gains)

	var norm float64
	for i, g := range gains {
		if l.Channels[i].IsLFE {
			assert.Zero(t, g, "LFE must stay silent")
			continue
		}
		assert.GreaterOrEqual(t, g, 0.0)
		norm += g * g
	}
	assert.InDelta(t, 1, math.Sqrt(norm), 1e-6)
}
