package layout

// Channel is one loudspeaker in an output Layout.
type Channel struct {
	Name string

	// Polar is the real (deployment-specific) polar position.
	Polar PolarPosition

	// PolarNominal is the BS.2051 nominal position. It is authoritative
	// for zone-exclusion and hull-geometry decisions even when
	// Polar differs because of real-room placement.
	PolarNominal PolarPosition

	IsLFE bool
}

// Screen describes a reproduction (or reference) screen for screen-scale
// and screen-edge-lock processing.
type Screen struct {
	// Present is false for "no screen" (screen-scale/edge-lock become the
	// identity operation).
	Present bool

	AspectRatio  float64
	CentrePolar  PolarPosition
	WidthAzimuth float64 // full width in degrees, centred on the centre azimuth
}

// DefaultReferenceScreen is the reference screen assumed for authoring
// when a screen-referenced object carries no Present reference screen,
// per BS.2127 defaults.
var DefaultReferenceScreen = Screen{
	Present:      true,
	AspectRatio:  1.78,
	CentrePolar:  PolarPosition{Azimuth: 0, Elevation: 0, Distance: 1},
	WidthAzimuth: 58.0,
}

// Facet is a hull face over position indices (real channels in layout
// order, followed by the panner's synthesised extra/virtual speakers),
// used by the point-source panner to build Triplet/QuadRegion/VirtualNgon
// region handlers. Facets of 3 indices become a Triplet, 4 a QuadRegion,
// and facets referencing a virtual top/bottom speaker are merged into a
// single VirtualNgon (Rec. ITU-R BS.2127-0 sec. 7.3.9).
type Facet struct {
	Indices []int
}

// Layout is an ordered, named loudspeaker bed.
type Layout struct {
	Name     string
	Channels []Channel
	HasLFE   bool
	Screen   Screen

	// HOAOrder is set only for Ambisonic-native pseudo-layouts; nil for
	// loudspeaker beds.
	HOAOrder *int

	// Hull is the convex-hull triangulation used to build region handlers
	// for the point-source panner (Rec. ITU-R BS.2127-0 sec. 7.3.9). LFE channels never
	// appear in Hull.
	Hull []Facet
}

// ChannelNames returns the layout's channel names in order, the input to
// the decorrelator's lexicographic seed-index derivation (Rec. ITU-R BS.2127-0 sec. 7.4).
func (l Layout) ChannelNames() []string {
	names := make([]string, len(l.Channels))
	for i, c := range l.Channels {
		names[i] = c.Name
	}
	return names
}

// NonLFEChannels returns the channels with IsLFE == false, in layout
// order. The point-source panner operates exclusively on this subset
// (the panner never
// addresses LFE channels).
func (l Layout) NonLFEChannels() []Channel {
	out := make([]Channel, 0, len(l.Channels))
	for _, c := range l.Channels {
		if !c.IsLFE {
			out = append(out, c)
		}
	}
	return out
}

// IndexOf returns the index of the channel with the given name, or -1.
func (l Layout) IndexOf(name string) int {
	for i, c := range l.Channels {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// LFEIndices returns the indices of LFE channels in layout order.
func (l Layout) LFEIndices() []int {
	var idx []int
	for i, c := range l.Channels {
		if c.IsLFE {
			idx = append(idx, i)
		}
	}
	return idx
}
