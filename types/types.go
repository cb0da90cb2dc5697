// Package types defines the shared ADM metadata records consumed by the
// renderer's per-frame API. It exists to break import cycles
// between the root admrender package and the DSP subpackages (panner,
// extent, gain, ambisonic, ...) that all need these record shapes.
package types

import "github.com/thesyncim/admrender/layout"

// ScreenHorizontalEdge is the horizontal screen-edge-lock setting for an
// object.
type ScreenHorizontalEdge int

const (
	HorizontalEdgeNone ScreenHorizontalEdge = iota
	HorizontalEdgeLeft
	HorizontalEdgeRight
)

// ScreenVerticalEdge is the vertical screen-edge-lock setting.
type ScreenVerticalEdge int

const (
	VerticalEdgeNone ScreenVerticalEdge = iota
	VerticalEdgeTop
	VerticalEdgeBottom
)

// ScreenEdgeLock bundles the horizontal and vertical screen-edge-lock
// flags for one object or DirectSpeaker track (Rec. ITU-R BS.2127-1 sec. 7.3.4).
type ScreenEdgeLock struct {
	Horizontal ScreenHorizontalEdge
	Vertical   ScreenVerticalEdge
}

// ChannelLock is the object channel-lock setting (Rec. ITU-R BS.2127-0 sec. 7.3.6). A
// negative MaxDistance disables channel-locking.
type ChannelLock struct {
	MaxDistance float64
}

// NoChannelLock is the disabled channel-lock sentinel (MaxDistance < 0).
var NoChannelLock = ChannelLock{MaxDistance: -1}

// ObjectDivergence is the object divergence setting (Rec. ITU-R BS.2127-0 sec. 7.3.7).
// Value is in [0,1]; AzimuthRange is in degrees.
type ObjectDivergence struct {
	Value        float64
	AzimuthRange float64
}

// PolarExclusionZone is one zone-exclusion box in azimuth/elevation
// degrees (Rec. ITU-R BS.2127-0 sec. 7.3.12).
type PolarExclusionZone struct {
	MinAzimuth, MaxAzimuth     float64
	MinElevation, MaxElevation float64
}

// ReferenceScreen describes the authoring reference screen an object's
// position was authored against, used by screen-scaling (Rec. ITU-R BS.2127-0 sec. 7.3.3).
type ReferenceScreen = layout.Screen

// ObjectMetadata is the per-block metadata for an Object-role track.
type ObjectMetadata struct {
	TrackIndex int

	// Position, in polar or Cartesian form depending on Cartesian.
	PolarPosition     layout.PolarPosition
	CartesianPosition layout.CartesianPosition
	Cartesian         bool

	Gain    float64
	Diffuse float64 // in [0,1]

	ChannelLock      ChannelLock
	ObjectDivergence ObjectDivergence

	// JumpPosition marks a discontinuous position change; InterpLength is
	// the interpolation length in samples to apply instead of the block's
	// natural cross-fade length when Jump is set.
	JumpPosition bool
	InterpLength int

	BlockLength int

	ZoneExclusionPolar []PolarExclusionZone

	ScreenEdgeLock  ScreenEdgeLock
	ScreenRef       bool
	ReferenceScreen ReferenceScreen

	Width, Height, Depth float64 // degrees (width/height), 0-1 (depth)
}

// Equal reports whether two ObjectMetadata records are identical in
// every field relevant to gain computation, the renderer's cache-hit
// predicate: an identical record must never trigger recomputation.
func (m ObjectMetadata) Equal(o ObjectMetadata) bool {
	if m.TrackIndex != o.TrackIndex || m.Cartesian != o.Cartesian ||
		m.Gain != o.Gain || m.Diffuse != o.Diffuse ||
		m.ChannelLock != o.ChannelLock || m.ObjectDivergence != o.ObjectDivergence ||
		m.ScreenEdgeLock != o.ScreenEdgeLock || m.ScreenRef != o.ScreenRef ||
		m.Width != o.Width || m.Height != o.Height || m.Depth != o.Depth {
		return false
	}
	if m.Cartesian {
		if m.CartesianPosition != o.CartesianPosition {
			return false
		}
	} else if m.PolarPosition != o.PolarPosition {
		return false
	}
	if m.ReferenceScreen != o.ReferenceScreen {
		return false
	}
	if len(m.ZoneExclusionPolar) != len(o.ZoneExclusionPolar) {
		return false
	}
	for i := range m.ZoneExclusionPolar {
		if m.ZoneExclusionPolar[i] != o.ZoneExclusionPolar[i] {
			return false
		}
	}
	return true
}

// DirectSpeakerChannelFrequency carries the optional low/high-pass
// frequencies declared on a DirectSpeaker track. A LowPass at
// or below 200 Hz marks the track as LFE (Rec. ITU-R BS.2127-0 sec. 8.2).
type DirectSpeakerChannelFrequency struct {
	HasLowPass  bool
	LowPass     float64
	HasHighPass bool
	HighPass    float64
}

// PolarBounds is one declared bounds box for the DirectSpeaker
// within-bounds search (min/max azimuth/elevation/distance).
type PolarBounds struct {
	MinAzimuth, MaxAzimuth     float64
	MinElevation, MaxElevation float64
	MinDistance, MaxDistance   float64
}

// DirectSpeakerPolarPosition is a DirectSpeaker's nominal position plus
// its declared tolerance bounds (Rec. ITU-R BS.2127-0 sec. 8.5).
type DirectSpeakerPolarPosition struct {
	Azimuth, Elevation, Distance float64
	Bounds                       []PolarBounds
}

// DirectSpeakerMetadata is the per-block metadata for a DirectSpeaker
// track.
type DirectSpeakerMetadata struct {
	TrackIndex int

	SpeakerLabel string // may carry a URN prefix; normalise before matching

	PolarPosition DirectSpeakerPolarPosition

	AudioPackFormatID string // empty if absent

	ChannelFrequency DirectSpeakerChannelFrequency

	ScreenEdgeLock ScreenEdgeLock
}

// HoaNormalization is the Ambisonic component normalisation declared for
// an HOA track. Only SN3D is accepted (Rec. ITU-R BS.2127-0 sec. 5.2.7.4); any other value is a
// WarnSkippedTrack condition at render time.
type HoaNormalization string

const (
	HoaNormSN3D    HoaNormalization = "SN3D"
	HoaNormUnknown HoaNormalization = ""
)

// HoaMetadata is the per-block metadata for an HOA sub-mix.
// Orders/Degrees/TrackIndices are parallel slices, one
// entry per Ambisonic component carried by this HOA track group; ACN
// ordering is assumed (component index = n(n+1)+m).
type HoaMetadata struct {
	Orders        []int
	Degrees       []int
	TrackIndices  []int
	Normalization HoaNormalization
}

// ACNIndex returns the ACN channel index n(n+1)+m for a given order n and
// degree m.
func ACNIndex(order, degree int) int {
	return order*(order+1) + degree
}
