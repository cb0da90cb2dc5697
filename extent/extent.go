package extent

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/panner"
)

// minExtent is the extent, in degrees, below which panning is fully
// point-source (BS.2127-0 sec. 7.3.8.2.2: the 5-degree blend knee).
const minExtent = 5.0

// PointSourceFunc computes the gain (or encoding-coefficient) vector of
// a point source at a unit direction.
type PointSourceFunc func(dir r3.Vector, out []float64)

// PolarExtentHandler turns an object's position, width, height, and
// depth into a gain vector by blending a point source with the
// SpreadPanner per BS.2127-0 sec. 7.3.8.2. The loudspeaker variant
// combines by power (RMS); the Ambisonic variant, built via
// NewPolarExtentHandlerFunc, combines by amplitude.
type PolarExtentHandler struct {
	point     PointSourceFunc
	sp        *SpreadPanner
	amplitude bool

	gp, gs, g1, g2 []float64
}

// NewPolarExtentHandler builds a loudspeaker extent handler over pc's
// region handlers.
func NewPolarExtentHandler(pc *panner.GainCalc) *PolarExtentHandler {
	return NewPolarExtentHandlerFunc(pc.CalculateGainsInto, NewSpreadPanner(pc), false)
}

// NewPolarExtentHandlerFunc builds an extent handler from a point-source
// function and a matching spread panner. amplitude selects amplitude
// combination over RMS for the blend and the depth split.
func NewPolarExtentHandlerFunc(point PointSourceFunc, sp *SpreadPanner, amplitude bool) *PolarExtentHandler {
	n := sp.NumChannels()
	return &PolarExtentHandler{
		point:     point,
		sp:        sp,
		amplitude: amplitude,
		gp:        make([]float64, n),
		gs:        make([]float64, n),
		g1:        make([]float64, n),
		g2:        make([]float64, n),
	}
}

// NumChannels returns the length of the gain vectors Handle produces.
func (h *PolarExtentHandler) NumChannels() int { return h.sp.NumChannels() }

// Handle computes the gain vector for a source at pos (its distance
// matters: extent is modified with distance) with width/height in
// degrees and radial depth, writing into out (len NumChannels()).
// See BS.2127-0 sec. 7.3.8.2 pg. 48.
func (h *PolarExtentHandler) Handle(pos layout.PolarPosition, width, height, depth float64, out []float64) {
	dir := toVec(pos)
	distance := pos.Distance

	if depth != 0 {
		d1 := math.Max(0, distance+depth/2)
		d2 := math.Max(0, distance-depth/2)

		h.polarExtentGains(dir, ExtentMod(d1, width), ExtentMod(d1, height), h.g1)
		h.polarExtentGains(dir, ExtentMod(d2, width), ExtentMod(d2, height), h.g2)

		if h.amplitude {
			for i := range out {
				out[i] = 0.5 * (h.g1[i] + h.g2[i])
			}
		} else {
			for i := range out {
				out[i] = math.Sqrt(0.5 * (h.g1[i]*h.g1[i] + h.g2[i]*h.g2[i]))
			}
		}
		return
	}
	h.polarExtentGains(dir, ExtentMod(distance, width), ExtentMod(distance, height), out)
}

// ExtentMod modifies a width/height extent for source distance
// (BS.2127-0 sec. 7.3.8.2.1): extents shrink as the source recedes and
// grow toward 360 as it approaches the listener.
func ExtentMod(distance, extent float64) float64 {
	const minSize = 0.2
	size := minSize + (1-minSize)*extent/360
	e1 := 4 * layout.RadToDeg(math.Atan2(size, 1))
	ed := 4 * layout.RadToDeg(math.Atan2(size, distance))
	if ed < e1 {
		return extent * ed / e1
	}
	return extent + (360-extent)*(ed-e1)/(360-e1)
}

// polarExtentGains blends point-source and spread gains by the extent
// blend weight p = clamp(max(w, h)/minExtent, 0, 1) (sec. 7.3.8.2.2).
func (h *PolarExtentHandler) polarExtentGains(dir r3.Vector, width, height float64, out []float64) {
	p := math.Min(math.Max(math.Max(width, height)/minExtent, 0), 1)

	if p < 1 {
		h.point(dir, h.gp)
	} else {
		for i := range h.gp {
			h.gp[i] = 0
		}
	}
	if p > 0 {
		h.sp.Gains(dir, width, height, h.gs)
	} else {
		for i := range h.gs {
			h.gs[i] = 0
		}
	}

	if h.amplitude {
		for i := range out {
			out[i] = p*h.gs[i] + (1-p)*h.gp[i]
		}
		return
	}
	for i := range out {
		out[i] = math.Sqrt(p*h.gs[i]*h.gs[i] + (1-p)*h.gp[i]*h.gp[i])
	}
}

func toVec(p layout.PolarPosition) r3.Vector {
	u := p.UnitVector()
	return r3.Vector{X: u.X, Y: u.Y, Z: u.Z}
}
