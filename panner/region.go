// Package panner implements the point-source panner: the region handlers
// (Triplet, QuadRegion, VirtualNgon), extra-speaker synthesis for
// incomplete beds, and the stereo downmix (Rec. ITU-R BS.2127-0
// sec. 6.1.2 and 7.3.9).
package panner

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"

	"github.com/thesyncim/admrender/layout"
)

// tol is the gain-rejection tolerance used throughout region handlers,
// carried over from RegionHandlers.h's m_tol.
const tol = 1e-6

// Region is the uniform interface every region handler (Triplet,
// QuadRegion, VirtualNgon) implements: given a unit direction vector,
// return up to 4 non-negative gains on its owned output indices, or an
// all-zero vector if the direction falls outside the region.
type Region interface {
	// Gains returns the gain for each of Indices(), in order. The
	// returned slice is owned by the caller and may be reused across
	// calls to avoid allocation in the panner's hot path.
	Gains(dir r3.Vector, out []float64)
	// Indices returns the output-channel indices (into the panner's
	// combined real+virtual position list) this region owns.
	Indices() []int
}

func toVec(p layout.PolarPosition) r3.Vector {
	u := p.UnitVector()
	return r3.Vector{X: u.X, Y: u.Y, Z: u.Z}
}

// localFrontBasis returns a rotation matrix (as three orthonormal row
// vectors) that rotates the coordinate system so that azDeg/elDeg (in
// admrender's ADM-Cartesian convention: +y front, +x right, +z up)
// points along +Y, with +Z mapping to "up" in the rotated frame. This is
// the same local-coordinate-system construction RegionHandlers.cpp's
// getNgonVertexOrder uses (via getRotationMatrix(-centreAz, centreEl, 0)).
func localFrontBasis(azDeg, elDeg float64) (right, front, up r3.Vector) {
	az := layout.DegToRad(azDeg)
	el := layout.DegToRad(elDeg)
	// Yaw about Z then pitch about the new X, matching PolarPosition's
	// own x=sin(-az)cos(el), y=cos(-az)cos(el), z=sin(el) convention.
	front = r3.Vector{X: math.Sin(-az) * math.Cos(el), Y: math.Cos(-az) * math.Cos(el), Z: math.Sin(el)}
	up = r3.Vector{X: math.Sin(-az) * -math.Sin(el), Y: math.Cos(-az) * -math.Sin(el), Z: math.Cos(el)}
	right = front.Cross(up).Normalize()
	up = right.Cross(front).Normalize()
	return right, front, up
}

// anticlockwiseOrder returns the permutation of dirs that visits them in
// anti-clockwise order when viewed from outside the sphere with the
// centroid direction as "front", following RegionHandlers.cpp's
// getNgonVertexOrder: rotate each vertex into a (front, right, up) basis
// centred on the facet centroid and sort by atan2 of the rotated
// coordinates.
func anticlockwiseOrder(dirs []r3.Vector) []int {
	var centroid r3.Vector
	for _, d := range dirs {
		centroid = centroid.Add(d)
	}
	centroid = centroid.Normalize()
	azEl := cartesianToAzEl(centroid)
	right, _, up := localFrontBasis(azEl[0], azEl[1])

	angles := make([]float64, len(dirs))
	out := make([]int, len(dirs))
	for i, d := range dirs {
		rx := d.Dot(right)
		rz := d.Dot(up)
		ang := math.Atan2(-rz, rx)
		if ang < 0 {
			ang += 2 * math.Pi
		}
		angles[i] = ang
		out[i] = i
	}
	sort.Slice(out, func(i, j int) bool { return angles[out[i]] < angles[out[j]] })
	return out
}

// cartesianToAzEl is the inverse of toVec/localFrontBasis's +y-front
// convention, returning [azimuthDeg, elevationDeg].
func cartesianToAzEl(v r3.Vector) [2]float64 {
	az := layout.RadToDeg(math.Atan2(-v.X, v.Y))
	el := layout.RadToDeg(math.Atan2(v.Z, math.Hypot(v.X, v.Y)))
	return [2]float64{az, el}
}

func norm3(g []float64) float64 {
	var s float64
	for _, v := range g {
		s += v * v
	}
	return math.Sqrt(s)
}

// tripletWeights solves w0*a + w1*b + w2*c == k*dir (k>0) for (w0,w1,w2)
// by Cramer's rule on the 3x3 system, equivalent to RegionHandlers.cpp's
// Triplet::CalculateGains (which inverts the matrix of row vectors
// once at construction time; here the inversion is folded into three
// scalar triple products computed per call — algebraically identical,
// cheaper to express without a general matrix inverse).
func tripletWeights(a, b, c, dir r3.Vector) (w0, w1, w2 float64, ok bool) {
	det := a.Dot(b.Cross(c))
	if math.Abs(det) < 1e-12 {
		return 0, 0, 0, false
	}
	w0 = dir.Dot(b.Cross(c)) / det
	w1 = a.Dot(dir.Cross(c)) / det
	w2 = a.Dot(b.Cross(dir)) / det
	return w0, w1, w2, true
}
