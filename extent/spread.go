package extent

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/panner"
)

// fadeOut is the linear fade margin, in degrees, around the stadium
// (BS.2127-0 sec. 7.3.8.2.3).
const fadeOut = 10.0

// weightTol is the weight below which a grid point's panning vector is
// not accumulated.
const weightTol = 1e-4

// snapTol is the gain-vector norm below which the spread output snaps
// to the zero vector.
const snapTol = 1e-3

// SpreadPanner sums pre-computed per-grid-point gain vectors over the
// virtual-source grid, weighted by the stadium window for the current
// source position, width, and height (BS.2127-0 sec. 7.3.8.2.2). The
// grid vectors are loudspeaker panning gains for bed output and
// Ambisonic encoding coefficients for soundfield output; the latter are
// combined by amplitude so component polarity survives.
type SpreadPanner struct {
	grid    []r3.Vector
	vectors [][]float64
	nCh     int

	// amplitude selects total-weight normalisation (Ambisonic
	// coefficients) over 2-norm normalisation (loudspeaker gains).
	amplitude bool

	// Stadium state set by configureWeighting for the current source.
	width, height  float64
	rightW, frontW r3.Vector
	upW            r3.Vector
	capAzimuth     float64
	capPosition    r3.Vector
}

// NewSpreadPanner builds a loudspeaker spread panner over pc's region
// handlers, pre-computing the panning vector of every grid point.
func NewSpreadPanner(pc *panner.GainCalc) *SpreadPanner {
	grid := FibonacciGrid(GridSize)
	vectors := make([][]float64, len(grid))
	for i, p := range grid {
		vectors[i] = pc.CalculateGainsVec(p)
	}
	return &SpreadPanner{grid: grid, vectors: vectors, nCh: pc.NumChannels()}
}

// NewSpreadPannerFromVectors builds a spread panner over caller-supplied
// per-grid-point vectors; vectors[i] corresponds to FibonacciGrid(
// GridSize)[i]. amplitude selects amplitude-preserving normalisation.
func NewSpreadPannerFromVectors(vectors [][]float64, amplitude bool) *SpreadPanner {
	nCh := 0
	if len(vectors) > 0 {
		nCh = len(vectors[0])
	}
	return &SpreadPanner{grid: FibonacciGrid(GridSize), vectors: vectors, nCh: nCh, amplitude: amplitude}
}

// NumChannels returns the length of the gain vectors Gains produces.
func (sp *SpreadPanner) NumChannels() int { return sp.nCh }

// configureWeighting sets up the rotation basis and stadium geometry
// for a source at dir with the given width and height in degrees.
func (sp *SpreadPanner) configureWeighting(dir r3.Vector, width, height float64) {
	sp.width, sp.height = width, height

	az := layout.RadToDeg(math.Atan2(-dir.X, dir.Y))
	el := layout.RadToDeg(math.Atan2(dir.Z, math.Hypot(dir.X, dir.Y)))
	right, front, up := layout.LocalCoordinateSystem(az, el)
	sp.rightW = r3.Vector{X: right.X, Y: right.Y, Z: right.Z}
	sp.frontW = r3.Vector{X: front.X, Y: front.Y, Z: front.Z}
	sp.upW = r3.Vector{X: up.X, Y: up.Y, Z: up.Z}

	// The stadium is always wider than tall; a tall source swaps the
	// width/height roles along with the right/up basis rows.
	if sp.height > sp.width {
		sp.width, sp.height = sp.height, sp.width
		sp.rightW, sp.upW = sp.upW, sp.rightW
	}

	// Widths beyond 180 extend the end caps until they meet at the back.
	if sp.width > 180 {
		sp.width = 180 + (sp.width-180)/180*(180+sp.height)
	}

	sp.capAzimuth = sp.width/2 - sp.height/2
	capDir := layout.PolarPosition{Azimuth: sp.capAzimuth, Elevation: 0, Distance: 1}.UnitVector()
	sp.capPosition = r3.Vector{X: capDir.X, Y: capDir.Y, Z: capDir.Z}
}

// weight returns the stadium weight in [0, 1] of one grid point
// (BS.2127-0 sec. 7.3.8.2.3): 1 inside the stadium, fading linearly to
// 0 over the fadeOut margin.
func (sp *SpreadPanner) weight(p r3.Vector) float64 {
	// Rotate the grid point into the weighting basis.
	x := p.Dot(sp.rightW)
	y := p.Dot(sp.frontW)
	z := p.Dot(sp.upW)

	az := layout.RadToDeg(math.Atan2(-x, y))
	el := layout.RadToDeg(math.Atan2(z, math.Hypot(x, y)))

	var distance float64
	if math.Abs(az) < sp.capAzimuth {
		distance = math.Abs(el) - 0.5*sp.height
	} else {
		// Reflect right-hemisphere points onto the left cap.
		if x > 0 {
			x = -x
		}
		dot := x*sp.capPosition.X + y*sp.capPosition.Y + z*sp.capPosition.Z
		dot = math.Min(1, math.Max(-1, dot))
		distance = layout.RadToDeg(math.Acos(dot)) - 0.5*sp.height
	}

	distance = math.Min(math.Max(distance, 0), fadeOut)
	return 1 - distance/fadeOut
}

// Gains computes the spread gain vector for a source at dir with the
// given width and height in degrees, writing into out (len
// NumChannels()).
func (sp *SpreadPanner) Gains(dir r3.Vector, width, height float64, out []float64) {
	sp.configureWeighting(dir, width, height)

	for i := range out {
		out[i] = 0
	}
	var totalWeight float64
	for i, p := range sp.grid {
		w := sp.weight(p)
		if w <= weightTol {
			continue
		}
		totalWeight += w
		pv := sp.vectors[i]
		for j := range out {
			out[j] += w * pv[j]
		}
	}

	if sp.amplitude {
		if totalWeight > 0 {
			for i := range out {
				out[i] /= totalWeight
			}
		}
		return
	}

	var n float64
	for _, v := range out {
		n += v * v
	}
	n = math.Sqrt(n)
	if n > snapTol {
		for i := range out {
			out[i] /= n
		}
	} else {
		for i := range out {
			out[i] = 0
		}
	}
}
