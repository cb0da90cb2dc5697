package layout

import "strconv"

// The five loudspeaker beds this renderer accepts, named
// matching Rec. ITU-R BS.2051 layout naming.
const (
	Layout0_2_0 = "0+2+0"
	Layout0_4_0 = "0+4+0"
	Layout0_5_0 = "0+5+0"
	Layout2_5_0 = "2+5+0"
	Layout0_7_0 = "0+7+0"
)

func chan_(name string, az, el float64, lfe bool) Channel {
	p := PolarPosition{Azimuth: az, Elevation: el, Distance: 1}
	return Channel{Name: name, Polar: p, PolarNominal: p, IsLFE: lfe}
}

// hull0_5_0 etc. are the convex-hull facet tables of the BS.2127
// point-source-panner region construction, with facet data credited to
// https://github.com/ebu/libear (Apache-2.0). Indices
// 0..N-1 address the layout's non-LFE channels in catalog order; indices
// beyond that address the extra (virtual) speakers synthesised by
// CalculateExtraSpeakersLayout in panner order (bottom-layer folds, then
// upper-layer folds, then BOTTOM, then TOP).
var hull0_5_0 = [][]int{
	{16, 13, 14}, {16, 11, 14}, {16, 10, 13}, {8, 5, 15},
	{9, 6, 15}, {8, 9, 15}, {16, 11, 12}, {16, 10, 12},
	{15, 6, 7}, {15, 5, 7}, {3, 4, 13, 14}, {8, 9, 3, 4},
	{1, 11, 4, 14}, {1, 4, 9, 6}, {1, 2, 11, 12}, {1, 2, 6, 7},
	{0, 10, 3, 13}, {0, 8, 3, 5}, {0, 2, 10, 12}, {0, 2, 5, 7},
}

var hull0_4_0 = [][]int{
	{0, 1, 4, 5}, {0, 2, 4, 6}, {2, 3, 6, 7}, {1, 3, 5, 7},
	{0, 1, 8, 9}, {0, 2, 8, 10}, {2, 3, 10, 11}, {1, 3, 9, 11},
	{4, 5, 12}, {4, 6, 12}, {6, 7, 12}, {5, 7, 12},
	{8, 9, 13}, {8, 10, 13}, {10, 11, 13}, {9, 11, 13},
}

var hull2_5_0 = [][]int{
	{12, 13, 15}, {13, 6, 15}, {12, 5, 15}, {2, 5, 6},
	{5, 6, 15}, {10, 14, 7}, {8, 11, 14}, {10, 11, 14},
	{1, 2, 6}, {8, 9, 14}, {9, 14, 7}, {0, 2, 5},
	{4, 3, 12, 13}, {3, 10, 11, 4}, {1, 4, 13, 6}, {8, 1, 11, 4},
	{8, 9, 2, 1}, {0, 3, 12, 5}, {0, 10, 3, 7}, {0, 9, 2, 7},
}

var hull0_7_0 = [][]int{
	{17, 14, 22}, {18, 22, 15}, {16, 14, 22}, {16, 22, 15},
	{10, 21, 7}, {8, 11, 21}, {9, 21, 7}, {8, 9, 21},
	{17, 19, 22}, {21, 11, 13}, {21, 12, 13}, {10, 12, 21},
	{18, 20, 22}, {19, 20, 22}, {0, 17, 3, 14}, {0, 10, 3, 7},
	{0, 16, 2, 14}, {1, 18, 4, 15}, {8, 1, 11, 4}, {16, 1, 2, 15},
	{0, 9, 2, 7}, {8, 9, 2, 1}, {3, 17, 19, 5}, {10, 3, 12, 5},
	{13, 12, 5, 6}, {11, 4, 13, 6}, {18, 20, 4, 6}, {19, 20, 5, 6},
}

// Catalog is the fixed table of supported output layouts. Channel order within each Layout
// matches the hull facet tables above exactly — reordering it would
// silently corrupt the point-source panner's region construction.
var Catalog = map[string]Layout{
	Layout0_2_0: {
		Name: Layout0_2_0,
		Channels: []Channel{
			chan_("M+030", 30, 0, false),
			chan_("M-030", -30, 0, false),
		},
	},
	Layout0_4_0: {
		Name: Layout0_4_0,
		Channels: []Channel{
			chan_("M+045", 45, 0, false),
			chan_("M-045", -45, 0, false),
			chan_("M+135", 135, 0, false),
			chan_("M-135", -135, 0, false),
		},
		Hull: facetsOf(hull0_4_0),
	},
	Layout0_5_0: {
		Name: Layout0_5_0,
		Channels: []Channel{
			chan_("M+030", 30, 0, false),
			chan_("M-030", -30, 0, false),
			chan_("M+000", 0, 0, false),
			chan_("M+110", 110, 0, false),
			chan_("M-110", -110, 0, false),
			chan_("LFE1", 45, -30, true),
		},
		HasLFE: true,
		Hull:   facetsOf(hull0_5_0),
	},
	Layout2_5_0: {
		Name: Layout2_5_0,
		Channels: []Channel{
			chan_("M+030", 30, 0, false),
			chan_("M-030", -30, 0, false),
			chan_("M+000", 0, 0, false),
			chan_("M+110", 110, 0, false),
			chan_("M-110", -110, 0, false),
			chan_("U+030", 30, 30, false),
			chan_("U-030", -30, 30, false),
			chan_("LFE1", 45, -30, true),
		},
		HasLFE: true,
		Hull:   facetsOf(hull2_5_0),
	},
	Layout0_7_0: {
		Name: Layout0_7_0,
		Channels: []Channel{
			chan_("M+030", 30, 0, false),
			chan_("M-030", -30, 0, false),
			chan_("M+000", 0, 0, false),
			chan_("M+090", 90, 0, false),
			chan_("M-090", -90, 0, false),
			chan_("M+135", 135, 0, false),
			chan_("M-135", -135, 0, false),
			chan_("LFE1", 45, -30, true),
		},
		HasLFE: true,
		Hull:   facetsOf(hull0_7_0),
	},
}

func facetsOf(hull [][]int) []Facet {
	out := make([]Facet, len(hull))
	for i, f := range hull {
		indices := make([]int, len(f))
		copy(indices, f)
		out[i] = Facet{Indices: indices}
	}
	return out
}

// ForName returns the cataloged Layout for name, or ok=false if name is
// not one of the five supported output beds.
func ForName(name string) (Layout, bool) {
	l, ok := Catalog[name]
	return l, ok
}

// IsSupportedOutputLayout reports whether name is a valid non-Binaural
// output layout.
func IsSupportedOutputLayout(name string) bool {
	_, ok := Catalog[name]
	return ok
}

// HOALayout returns the pseudo-layout describing a full 3-D Ambisonic
// soundfield of the given order: channels named ACN0..ACNn with
// meaningless front-facing positions. It exists so soundfield buffers
// can flow through machinery keyed on channel names, most importantly
// the decorrelator's lexicographic seed derivation on the binaural
// path.
func HOALayout(order int) Layout {
	n := (order + 1) * (order + 1)
	l := Layout{Name: strconv.Itoa(order) + "OA", HOAOrder: &order}
	l.Channels = make([]Channel, n)
	for i := range l.Channels {
		l.Channels[i] = chan_("ACN"+strconv.Itoa(i), 0, 0, false)
	}
	return l
}

// WithoutLFE returns a copy of l with LFE channels removed, matching
// the reference getLayoutWithoutLFE used throughout the panner and gain
// calculator: point-source panning, zone exclusion, and channel lock
// never see LFE channels.
func (l Layout) WithoutLFE() Layout {
	out := l
	out.Channels = l.NonLFEChannels()
	out.HasLFE = false
	return out
}
