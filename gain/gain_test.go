package gain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/types"
)

func calc050(t *testing.T) *Calculator {
	t.Helper()
	l, ok := layout.ForName(layout.Layout0_5_0)
	require.True(t, ok)
	return NewCalculator(l)
}

func objectAt(az, el, d float64) types.ObjectMetadata {
	return types.ObjectMetadata{
		PolarPosition: layout.PolarPosition{Azimuth: az, Elevation: el, Distance: d},
		Gain:          1,
		ChannelLock:   types.NoChannelLock,
	}
}

// 0+5+0 non-LFE channel order: M+030, M-030, M+000, M+110, M-110.
const (
	chM030  = 0
	chMm030 = 1
	chM000  = 2
	chM110  = 3
	chMm110 = 4
)

func TestObjectOnSpeakerIsUnitGain(t *testing.T) {
	c := calc050(t)
	direct := make([]float64, c.NumChannels())
	diffuse := make([]float64, c.NumChannels())

	c.CalculateGains(objectAt(30, 0, 1), direct, diffuse)

	assert.InDelta(t, 1, direct[chM030], 1e-9)
	for i, g := range direct {
		if i != chM030 {
			assert.InDelta(t, 0, g, 1e-6, "channel %d", i)
		}
	}
	for _, g := range diffuse {
		assert.InDelta(t, 0, g, 1e-12)
	}
}

func TestChannelLockSnapsToFrontOnTie(t *testing.T) {
	// A source at 15 degrees is equidistant from M+000 and M+030; the
	// (|az|, az, |el|, el) tuple order picks M+000.
	c := calc050(t)
	direct := make([]float64, c.NumChannels())
	diffuse := make([]float64, c.NumChannels())

	md := objectAt(15, 0, 1)
	md.ChannelLock = types.ChannelLock{MaxDistance: 1}
	c.CalculateGains(md, direct, diffuse)

	assert.InDelta(t, 1, direct[chM000], 1e-9)
	for i, g := range direct {
		if i != chM000 {
			assert.InDelta(t, 0, g, 1e-6, "channel %d", i)
		}
	}
}

func TestChannelLockRearTieBreaksToNegativeAzimuth(t *testing.T) {
	// A source at the back is equidistant from M+110 and M-110; |az|
	// ties, then az: -110 < 110 picks M-110.
	c := calc050(t)
	direct := make([]float64, c.NumChannels())
	diffuse := make([]float64, c.NumChannels())

	md := objectAt(180, 0, 1)
	md.ChannelLock = types.ChannelLock{MaxDistance: 2}
	c.CalculateGains(md, direct, diffuse)

	assert.InDelta(t, 1, direct[chMm110], 1e-9)
	for i, g := range direct {
		if i != chMm110 {
			assert.InDelta(t, 0, g, 1e-6, "channel %d", i)
		}
	}
}

func TestDiffuseSplitNormProperty(t *testing.T) {
	c := calc050(t)
	n := c.NumChannels()
	direct := make([]float64, n)
	diffuse := make([]float64, n)

	rapid.Check(t, func(rt *rapid.T) {
		az := rapid.Float64Range(-180, 180).Draw(rt, "az")
		el := rapid.Float64Range(-30, 30).Draw(rt, "el")
		d := rapid.Float64Range(0, 1).Draw(rt, "diffuse")

		md := objectAt(az, el, 1)
		md.Diffuse = d
		c.CalculateGains(md, direct, diffuse)

		var nd, nf float64
		for i := 0; i < n; i++ {
			nd += direct[i] * direct[i]
			nf += diffuse[i] * diffuse[i]
		}
		// ||direct|| = sqrt(1-d)*||g|| and ||diffuse|| = sqrt(d)*||g||
		// with ||g|| = 1 for a point source.
		if math.Abs(math.Sqrt(nd)-math.Sqrt(1-d)) > 1e-6 {
			rt.Fatalf("direct norm %v, want %v", math.Sqrt(nd), math.Sqrt(1-d))
		}
		if math.Abs(math.Sqrt(nf)-math.Sqrt(d)) > 1e-6 {
			rt.Fatalf("diffuse norm %v, want %v", math.Sqrt(nf), math.Sqrt(d))
		}
	})
}

func TestDiffuseSplit(t *testing.T) {
	c := calc050(t)
	n := c.NumChannels()
	direct := make([]float64, n)
	diffuse := make([]float64, n)
	reference := make([]float64, n)
	refDiffuse := make([]float64, n)

	for _, d := range []float64{0, 0.25, 0.5, 1} {
		md := objectAt(0, 0, 1)
		c.CalculateGains(md, reference, refDiffuse)

		md.Diffuse = d
		c.CalculateGains(md, direct, diffuse)

		for i := 0; i < n; i++ {
			assert.InDelta(t, math.Sqrt(1-d)*reference[i], direct[i], 1e-12, "direct ch %d at d=%v", i, d)
			assert.InDelta(t, math.Sqrt(d)*reference[i], diffuse[i], 1e-12, "diffuse ch %d at d=%v", i, d)
		}
	}
}

func TestDivergenceSplitsSymmetrically(t *testing.T) {
	positions, gains := divergedPositionsAndGains(types.ObjectDivergence{Value: 0.5, AzimuthRange: 60}, layout.PolarPosition{Azimuth: 0, Elevation: 0, Distance: 1})

	require.Len(t, positions, 3)
	assert.InDelta(t, (1-0.5)/1.5, gains[0], 1e-12)
	assert.InDelta(t, 0.5/1.5, gains[1], 1e-12)
	assert.InDelta(t, 0.5/1.5, gains[2], 1e-12)

	assert.InDelta(t, 0, positions[0].Azimuth, 1e-9)
	assert.InDelta(t, 30, positions[1].Azimuth, 1e-6)
	assert.InDelta(t, -30, positions[2].Azimuth, 1e-6)
}

func TestDivergenceZeroIsIdentity(t *testing.T) {
	pos := layout.PolarPosition{Azimuth: 42, Elevation: 13, Distance: 1}
	positions, gains := divergedPositionsAndGains(types.ObjectDivergence{}, pos)
	require.Len(t, positions, 1)
	assert.Equal(t, pos, positions[0])
	assert.Equal(t, 1.0, gains[0])
}

func TestZoneExclusionMovesRearEnergyForward(t *testing.T) {
	c := calc050(t)
	n := c.NumChannels()
	direct := make([]float64, n)
	diffuse := make([]float64, n)

	md := objectAt(110, 0, 1)
	md.ZoneExclusionPolar = []types.PolarExclusionZone{
		{MinAzimuth: 100, MaxAzimuth: -100, MinElevation: -10, MaxElevation: 10},
	}
	c.CalculateGains(md, direct, diffuse)

	assert.InDelta(t, 0, direct[chM110], 1e-9, "excluded rear speaker must be silent")
	assert.InDelta(t, 0, direct[chMm110], 1e-9, "excluded rear speaker must be silent")

	var norm float64
	for _, g := range direct {
		norm += g * g
	}
	assert.InDelta(t, 1, math.Sqrt(norm), 1e-6, "redistribution preserves power")
}

func TestZoneExclusionAllOrNothingIsIdentity(t *testing.T) {
	l, _ := layout.ForName(layout.Layout0_5_0)
	h := NewZoneExclusionHandler(l.WithoutLFE())

	gains := []float64{0.5, 0.5, 0.5, 0.3, 0.3}
	want := append([]float64(nil), gains...)

	// Every speaker excluded: identity.
	h.Handle([]types.PolarExclusionZone{{MinAzimuth: -180, MaxAzimuth: 180, MinElevation: -90, MaxElevation: 90}}, gains)
	assert.Equal(t, want, gains)

	// No speaker excluded: identity.
	h.Handle(nil, gains)
	assert.Equal(t, want, gains)
}

func TestScreenEdgeLockSnapsToDefaultScreenEdges(t *testing.T) {
	h := NewScreenEdgeLockHandler(layout.DefaultReferenceScreen)

	az, el := h.HandleAzEl(10, 5, types.ScreenEdgeLock{Horizontal: types.HorizontalEdgeLeft})
	assert.InDelta(t, 29, az, 1e-9, "left edge of the default 58-degree screen")
	assert.InDelta(t, 5, el, 1e-12)

	az, _ = h.HandleAzEl(10, 5, types.ScreenEdgeLock{Horizontal: types.HorizontalEdgeRight})
	assert.InDelta(t, -29, az, 1e-9)
}

func TestScreenScaleOffIsIdentity(t *testing.T) {
	h := NewScreenScaleHandler(layout.Screen{}) // no reproduction screen
	pos := layout.CartesianPosition{X: 0.3, Y: 0.9, Z: 0.1}
	assert.Equal(t, pos, h.Handle(pos, true, layout.DefaultReferenceScreen))

	h2 := NewScreenScaleHandler(layout.DefaultReferenceScreen)
	assert.Equal(t, pos, h2.Handle(pos, false, layout.Screen{}), "screenRef off is the identity")
}
