// Package gain implements the metadata-driven gain calculators: the
// Object pipeline (screen-scale, screen-edge-lock, channel-lock,
// divergence, polar extent, zone exclusion, direct/diffuse split) and
// the DirectSpeaker routing rules of Rec. ITU-R BS.2127-0 sections 7
// and 8.
package gain

import (
	"math"

	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/types"
	"github.com/thesyncim/admrender/util"
)

// PolarEdges is the internal screen representation used by screen
// scaling and screen edge lock: the azimuths of the left/right edges
// and the elevations of the bottom/top edges (BS.2127-0 sec. 7.3.3.1).
type PolarEdges struct {
	LeftAzimuth     float64
	RightAzimuth    float64
	BottomElevation float64
	TopElevation    float64
}

// EdgesFromScreen converts a screen description to its polar edges.
func EdgesFromScreen(s layout.Screen) PolarEdges {
	az := s.CentrePolar.Azimuth
	el := s.CentrePolar.Elevation
	d := s.CentrePolar.Distance

	centre := s.CentrePolar.Cartesian()
	width := d * math.Tan(layout.DegToRad(s.WidthAzimuth/2))
	height := width / s.AspectRatio

	right, _, up := layout.LocalCoordinateSystem(az, el)
	vx := right.Scale(width)
	vz := up.Scale(height)

	return PolarEdges{
		LeftAzimuth:     centre.Sub(vx).Polar().Azimuth,
		RightAzimuth:    centre.Sub(vx.Scale(-1)).Polar().Azimuth,
		BottomElevation: centre.Sub(vz).Polar().Elevation,
		TopElevation:    centre.Sub(vz.Scale(-1)).Polar().Elevation,
	}
}

// ScreenScaleHandler warps positions authored against a reference
// screen onto the reproduction screen (BS.2127-0 sec. 7.3.3).
type ScreenScaleHandler struct {
	repSet   bool
	repEdges PolarEdges
}

// NewScreenScaleHandler builds a handler for the given reproduction
// screen; a non-Present screen makes Handle the identity.
func NewScreenScaleHandler(repScreen layout.Screen) *ScreenScaleHandler {
	h := &ScreenScaleHandler{}
	if repScreen.Present {
		h.repSet = true
		h.repEdges = EdgesFromScreen(repScreen)
	}
	return h
}

// Handle scales pos when screenRef is set and a reproduction screen is
// configured; otherwise pos is returned unmodified. referenceScreen is
// the object's authoring screen; a non-Present one falls back to the
// BS.2127 default.
func (h *ScreenScaleHandler) Handle(pos layout.CartesianPosition, screenRef bool, referenceScreen layout.Screen) layout.CartesianPosition {
	if !screenRef || !h.repSet {
		return pos
	}
	ref := referenceScreen
	if !ref.Present {
		ref = layout.DefaultReferenceScreen
	}
	refEdges := EdgesFromScreen(ref)

	polar := pos.Polar()
	az := util.Interp(polar.Azimuth,
		[]float64{-180, refEdges.RightAzimuth, refEdges.LeftAzimuth, 180},
		[]float64{-180, h.repEdges.RightAzimuth, h.repEdges.LeftAzimuth, 180})
	el := util.Interp(polar.Elevation,
		[]float64{-90, refEdges.BottomElevation, refEdges.TopElevation, 90},
		[]float64{-90, h.repEdges.BottomElevation, h.repEdges.TopElevation, 90})

	return layout.PolarPosition{Azimuth: az, Elevation: el, Distance: polar.Distance}.Cartesian()
}

// ScreenEdgeLockHandler snaps azimuth and/or elevation to the
// reproduction screen's edges per the screenEdgeLock metadata
// (BS.2127-1 sec. 7.3.4).
type ScreenEdgeLockHandler struct {
	repSet   bool
	repEdges PolarEdges
}

// NewScreenEdgeLockHandler builds a handler for the given reproduction
// screen; a non-Present screen makes the handler the identity.
func NewScreenEdgeLockHandler(repScreen layout.Screen) *ScreenEdgeLockHandler {
	h := &ScreenEdgeLockHandler{}
	if repScreen.Present {
		h.repSet = true
		h.repEdges = EdgesFromScreen(repScreen)
	}
	return h
}

// HandleVector applies screen edge locking to a Cartesian position.
func (h *ScreenEdgeLockHandler) HandleVector(pos layout.CartesianPosition, lock types.ScreenEdgeLock) layout.CartesianPosition {
	if !h.repSet {
		return pos
	}
	polar := pos.Polar()
	az, el := h.HandleAzEl(polar.Azimuth, polar.Elevation, lock)
	return layout.PolarPosition{Azimuth: az, Elevation: el, Distance: polar.Distance}.Cartesian()
}

// HandleAzEl applies screen edge locking to an azimuth/elevation pair
// in degrees.
func (h *ScreenEdgeLockHandler) HandleAzEl(az, el float64, lock types.ScreenEdgeLock) (float64, float64) {
	if !h.repSet {
		return az, el
	}
	switch lock.Horizontal {
	case types.HorizontalEdgeLeft:
		az = h.repEdges.LeftAzimuth
	case types.HorizontalEdgeRight:
		az = h.repEdges.RightAzimuth
	}
	switch lock.Vertical {
	case types.VerticalEdgeTop:
		el = h.repEdges.TopElevation
	case types.VerticalEdgeBottom:
		el = h.repEdges.BottomElevation
	}
	return az, el
}
