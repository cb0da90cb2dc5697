package admrender

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/admrender/decorrelate"
	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/panner"
	"github.com/thesyncim/admrender/types"
)

const (
	testRate  = 48000
	testBlock = 128
)

func configure050(t *testing.T, roles ...ContentType) *Renderer {
	t.Helper()
	r := NewRenderer()
	err := r.Configure(Config{
		OutputLayout: layout.Layout0_5_0,
		SampleRate:   testRate,
		MaxBlockSize: testBlock,
		StreamInfo:   StreamInfo{TypeDefinition: roles},
	})
	require.NoError(t, err)
	return r
}

func impulse(n int) []float64 {
	out := make([]float64, n)
	out[0] = 1
	return out
}

func renderFrames(r *Renderer, frames int, addInputs func(frame int)) [][]float64 {
	nOut := r.GetSpeakerCount()
	collected := make([][]float64, nOut)
	out := make([][]float64, nOut)
	for i := range out {
		out[i] = make([]float64, testBlock)
	}
	for f := 0; f < frames; f++ {
		addInputs(f)
		r.GetRenderedAudio(out, testBlock)
		for ch := range out {
			collected[ch] = append(collected[ch], out[ch]...)
		}
	}
	return collected
}

func TestConfigureRejectsBadInputs(t *testing.T) {
	r := NewRenderer()
	assert.ErrorIs(t, r.Configure(Config{OutputLayout: "9+10+3", SampleRate: testRate, MaxBlockSize: testBlock}), ErrUnsupportedLayout)
	assert.ErrorIs(t, r.Configure(Config{OutputLayout: "0+5+0", HOAOrder: 4, SampleRate: testRate, MaxBlockSize: testBlock}), ErrBadHOAOrder)
	assert.ErrorIs(t, r.Configure(Config{OutputLayout: "0+5+0", SampleRate: 0, MaxBlockSize: testBlock}), ErrInvalidSampleRate)
	assert.ErrorIs(t, r.Configure(Config{OutputLayout: "0+5+0", SampleRate: testRate, MaxBlockSize: 0}), ErrInvalidMaxBlockSize)
	assert.ErrorIs(t, r.Configure(Config{OutputLayout: OutputBinaural, SampleRate: testRate, MaxBlockSize: testBlock}), ErrHRTFUnavailable)
}

func TestGetSpeakerCount(t *testing.T) {
	assert.Equal(t, 6, configure050(t).GetSpeakerCount())

	r := NewRenderer()
	require.NoError(t, r.Configure(Config{
		OutputLayout: layout.Layout0_2_0,
		SampleRate:   testRate,
		MaxBlockSize: testBlock,
	}))
	assert.Equal(t, 2, r.GetSpeakerCount())
}

// Scenario: an impulse object at M+030's exact position must come out
// of M+030 alone, delayed by the decorrelator's compensation delay.
func TestObjectOnSpeakerRendersToThatSpeakerOnly(t *testing.T) {
	r := configure050(t, TypeObjects)
	md := types.ObjectMetadata{
		TrackIndex:    0,
		PolarPosition: layout.PolarPosition{Azimuth: 30, Elevation: 0, Distance: 1},
		Gain:          1,
		ChannelLock:   types.NoChannelLock,
		BlockLength:   testBlock,
	}

	collected := renderFrames(r, 4, func(frame int) {
		in := make([]float64, testBlock)
		if frame == 0 {
			in[0] = 1
		}
		r.AddObject(in, testBlock, md, 0)
	})

	l, _ := layout.ForName(layout.Layout0_5_0)
	m030 := l.IndexOf("M+030")
	for ch := range collected {
		for i, v := range collected[ch] {
			want := 0.0
			if ch == m030 && i == decorrelate.CompensationDelay {
				want = 1
			}
			if math.Abs(v-want) > 1e-6 {
				t.Fatalf("channel %d sample %d: got %v, want %v", ch, i, v, want)
			}
		}
	}
}

// Scenario: diffuse 0.25 splits the impulse into a sqrt(0.75) direct
// spike and a decorrelated tail carrying the remaining quarter of the
// energy. Both paths land on the same channel, so the total energy also
// holds their cross term at the compensation delay.
func TestDiffuseSplitEnergy(t *testing.T) {
	r := configure050(t, TypeObjects)
	md := types.ObjectMetadata{
		TrackIndex:    0,
		PolarPosition: layout.PolarPosition{Azimuth: 0, Elevation: 0, Distance: 1},
		Gain:          1,
		Diffuse:       0.25,
		ChannelLock:   types.NoChannelLock,
		BlockLength:   testBlock,
	}

	frames := (decorrelate.CompensationDelay + decorrelate.FilterSize + testBlock) / testBlock
	collected := renderFrames(r, frames+1, func(frame int) {
		in := make([]float64, testBlock)
		if frame == 0 {
			in[0] = 1
		}
		r.AddObject(in, testBlock, md, 0)
	})

	l, _ := layout.ForName(layout.Layout0_5_0)
	m000 := l.IndexOf("M+000")

	// At the compensation delay the output is the direct spike plus the
	// diffuse filter's tap at that lag. "M+000" sorts second among the
	// layout's channel names, so its decorrelator seed is 1.
	h := decorrelate.DesignBasic(1, decorrelate.FilterSize)
	want := math.Sqrt(0.75) + math.Sqrt(0.25)*h[decorrelate.CompensationDelay]
	assert.InDelta(t, want, collected[m000][decorrelate.CompensationDelay], 1e-9,
		"direct spike at the compensation delay")

	var total float64
	for ch := range collected {
		for _, v := range collected[ch] {
			total += v * v
		}
	}
	wantTotal := 1 + 2*math.Sqrt(0.75)*math.Sqrt(0.25)*h[decorrelate.CompensationDelay]
	assert.InDelta(t, wantTotal, total, 1e-6,
		"direct + diffuse energy is the input energy plus their coherent cross term")
}

// Velocity-vector reconstruction on the horizontal plane: the
// gain-weighted speaker directions reproduce the requested direction.
func TestVelocityVectorReconstruction(t *testing.T) {
	for _, name := range []string{layout.Layout0_4_0, layout.Layout0_5_0, layout.Layout0_7_0} {
		l, _ := layout.ForName(name)
		noLFE := l.WithoutLFE()
		pc := panner.NewGainCalc(noLFE)

		for az := -180.0; az < 180; az += 3 {
			dir := layout.PolarPosition{Azimuth: az, Elevation: 0, Distance: 1}
			g := pc.CalculateGains(dir)

			var vx, vy, vz, sum float64
			for i, ch := range noLFE.Channels {
				u := ch.Polar.UnitVector()
				vx += g[i] * u.X
				vy += g[i] * u.Y
				vz += g[i] * u.Z
				sum += g[i]
			}
			require.Greater(t, sum, 0.0, "%s az=%v: no region claimed the direction", name, az)
			v := layout.CartesianPosition{X: vx / sum, Y: vy / sum, Z: vz / sum}
			n := v.Norm()
			want := dir.UnitVector()
			if math.Abs(v.X/n-want.X) > 1e-5 || math.Abs(v.Y/n-want.Y) > 1e-5 || math.Abs(v.Z/n-want.Z) > 1e-5 {
				t.Fatalf("%s az=%v: velocity vector (%v, %v, %v) does not reconstruct direction", name, az, v.X/n, v.Y/n, v.Z/n)
			}
		}
	}
}

// Repeated identical metadata must not re-fade: once steady state is
// reached, successive frames with constant input are identical.
func TestRepeatedMetadataIsSteadyState(t *testing.T) {
	r := configure050(t, TypeObjects)
	md := types.ObjectMetadata{
		TrackIndex:    0,
		PolarPosition: layout.PolarPosition{Azimuth: 10, Elevation: 0, Distance: 1},
		Gain:          1,
		ChannelLock:   types.NoChannelLock,
		BlockLength:   testBlock,
	}

	in := make([]float64, testBlock)
	for i := range in {
		in[i] = 1
	}

	collected := renderFrames(r, 6, func(int) {
		r.AddObject(in, testBlock, md, 0)
	})

	for ch := range collected {
		frame4 := collected[ch][4*testBlock : 5*testBlock]
		frame5 := collected[ch][5*testBlock : 6*testBlock]
		for i := range frame4 {
			require.InDelta(t, frame4[i], frame5[i], 1e-12, "ch %d sample %d", ch, i)
		}
	}
}

func TestUndeclaredTrackIsDropped(t *testing.T) {
	r := configure050(t, TypeDirectSpeakers) // track 0 is not an object
	md := types.ObjectMetadata{
		TrackIndex:    0,
		PolarPosition: layout.PolarPosition{Azimuth: 0, Elevation: 0, Distance: 1},
		Gain:          1,
		ChannelLock:   types.NoChannelLock,
		BlockLength:   testBlock,
	}

	collected := renderFrames(r, 3, func(frame int) {
		r.AddObject(impulse(testBlock), testBlock, md, 0)
		_ = frame
	})
	for ch := range collected {
		for i, v := range collected[ch] {
			require.Zero(t, v, "ch %d sample %d", ch, i)
		}
	}
}

func TestHoaRejectsNonSN3D(t *testing.T) {
	r := configure050(t, TypeHOA)
	in := [][]float64{impulse(testBlock)}
	md := types.HoaMetadata{
		Orders:        []int{0},
		Degrees:       []int{0},
		TrackIndices:  []int{0},
		Normalization: "N3D",
	}

	collected := renderFrames(r, 2, func(int) {
		r.AddHoa(in, testBlock, md, 0)
	})
	for ch := range collected {
		for _, v := range collected[ch] {
			require.Zero(t, v)
		}
	}
}

func TestHoaWChannelReachesAllSpeakers(t *testing.T) {
	r := NewRenderer()
	require.NoError(t, r.Configure(Config{
		OutputLayout: layout.Layout0_5_0,
		HOAOrder:     1,
		SampleRate:   testRate,
		MaxBlockSize: testBlock,
		StreamInfo:   StreamInfo{TypeDefinition: []ContentType{TypeHOA}},
	}))

	in := make([][]float64, 1)
	in[0] = make([]float64, testBlock)
	for i := range in[0] {
		in[0][i] = 1
	}
	md := types.HoaMetadata{
		Orders:        []int{0},
		Degrees:       []int{0},
		TrackIndices:  []int{0},
		Normalization: types.HoaNormSN3D,
	}

	collected := renderFrames(r, 2, func(int) {
		r.AddHoa(in, testBlock, md, 0)
	})

	l, _ := layout.ForName(layout.Layout0_5_0)
	for ch := range collected {
		if l.Channels[ch].IsLFE {
			continue
		}
		last := collected[ch][len(collected[ch])-1]
		assert.NotZero(t, last, "speaker %s should receive the W channel", l.Channels[ch].Name)
	}
}

func TestDirectSpeakerRouting(t *testing.T) {
	r := configure050(t, TypeDirectSpeakers)
	md := types.DirectSpeakerMetadata{
		TrackIndex:    0,
		SpeakerLabel:  "M-030",
		PolarPosition: types.DirectSpeakerPolarPosition{Azimuth: -30, Elevation: 0, Distance: 1},
	}

	collected := renderFrames(r, 1, func(int) {
		r.AddDirectSpeaker(impulse(testBlock), testBlock, md, 0)
	})

	l, _ := layout.ForName(layout.Layout0_5_0)
	for ch := range collected {
		want := 0.0
		if ch == l.IndexOf("M-030") {
			want = 1
		}
		assert.InDelta(t, want, collected[ch][0], 1e-12, "channel %d", ch)
	}
}

func TestAddBinauralIgnoredOnSpeakerOutput(t *testing.T) {
	r := configure050(t)
	in := [2][]float64{impulse(testBlock), impulse(testBlock)}

	collected := renderFrames(r, 1, func(int) {
		r.AddBinaural(in, testBlock, 0)
	})
	for ch := range collected {
		for _, v := range collected[ch] {
			require.Zero(t, v)
		}
	}
}

func TestBlockOverrunIsClipped(t *testing.T) {
	r := configure050(t, TypeObjects)
	md := types.ObjectMetadata{
		TrackIndex:    0,
		PolarPosition: layout.PolarPosition{Azimuth: 0, Elevation: 0, Distance: 1},
		Gain:          1,
		ChannelLock:   types.NoChannelLock,
		BlockLength:   testBlock,
	}
	// Oversized input must not panic; it is clipped to the max.
	big := make([]float64, testBlock*2)
	big[0] = 1
	r.AddObject(big, testBlock*2, md, 0)

	out := make([][]float64, r.GetSpeakerCount())
	for i := range out {
		out[i] = make([]float64, testBlock)
	}
	r.GetRenderedAudio(out, testBlock)
}

func TestResetSilencesTails(t *testing.T) {
	r := configure050(t, TypeObjects)
	md := types.ObjectMetadata{
		TrackIndex:    0,
		PolarPosition: layout.PolarPosition{Azimuth: 0, Elevation: 0, Distance: 1},
		Gain:          1,
		Diffuse:       0.5,
		ChannelLock:   types.NoChannelLock,
		BlockLength:   testBlock,
	}
	r.AddObject(impulse(testBlock), testBlock, md, 0)
	out := make([][]float64, r.GetSpeakerCount())
	for i := range out {
		out[i] = make([]float64, testBlock)
	}
	r.GetRenderedAudio(out, testBlock)

	r.Reset()

	collected := renderFrames(r, 4, func(int) {})
	for ch := range collected {
		for i, v := range collected[ch] {
			require.Zero(t, v, "ch %d sample %d: tail survived Reset", ch, i)
		}
	}
}
