package gain

import (
	"math"
	"sort"

	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/types"
)

// ChannelLockHandler moves an object's position onto the closest
// loudspeaker when channel locking is requested and a loudspeaker is
// within range (BS.2127-0 sec. 7.3.6).
type ChannelLockHandler struct {
	layout layout.Layout
}

// NewChannelLockHandler builds a handler over the (non-LFE) output
// layout.
func NewChannelLockHandler(l layout.Layout) *ChannelLockHandler {
	return &ChannelLockHandler{layout: l}
}

// Handle returns the (possibly replaced) source position. A negative
// MaxDistance disables locking. Distances are measured between the
// source position and the normalised real loudspeaker directions; ties
// within 1e-10 are broken by lexicographic comparison of the tuple
// (|az|, az, |el|, el), not distance alone.
func (h *ChannelLockHandler) Handle(lock types.ChannelLock, pos layout.CartesianPosition) layout.CartesianPosition {
	if lock.MaxDistance < 0 {
		return pos
	}
	const tol = 1e-10

	var inRange []int
	var dists []float64
	for i, ch := range h.layout.Channels {
		sp := ch.Polar
		sp.Distance = 1
		d := sp.Cartesian().Sub(pos).Norm()
		if d < lock.MaxDistance {
			inRange = append(inRange, i)
			dists = append(dists, d)
		}
	}
	switch len(inRange) {
	case 0:
		return pos
	case 1:
		return h.layout.Channels[inRange[0]].Polar.Cartesian()
	}

	minDist := dists[0]
	for _, d := range dists[1:] {
		minDist = math.Min(minDist, d)
	}
	var closest []int
	for i, d := range dists {
		if d > minDist-tol && d < minDist+tol {
			closest = append(closest, inRange[i])
		}
	}
	if len(closest) == 1 {
		return h.layout.Channels[closest[0]].Polar.Cartesian()
	}

	sort.Slice(closest, func(a, b int) bool {
		pa := h.layout.Channels[closest[a]].Polar
		pb := h.layout.Channels[closest[b]].Polar
		ta := [4]float64{math.Abs(pa.Azimuth), pa.Azimuth, math.Abs(pa.Elevation), pa.Elevation}
		tb := [4]float64{math.Abs(pb.Azimuth), pb.Azimuth, math.Abs(pb.Elevation), pb.Elevation}
		for k := 0; k < 4; k++ {
			if ta[k] != tb[k] {
				return ta[k] < tb[k]
			}
		}
		return false
	})
	return h.layout.Channels[closest[0]].Polar.Cartesian()
}
