// Package extent implements the polar extent panning of Rec. ITU-R
// BS.2127-0 section 7.3.8: a spread panner summing point-source panning
// vectors over a fixed spherical grid of virtual sources weighted by a
// "stadium" window, distance-based extent modification, depth handling,
// and the point/spread blend.
package extent

import (
	"math"

	"github.com/golang/geo/r3"
)

// GridSize is the number of virtual sources sampled on the unit sphere
// for the spread panner.
const GridSize = 1652

// FibonacciGrid returns n points distributed approximately uniformly
// over the unit sphere using a golden-ratio lattice: point i sits at
// theta = 2*pi*i/phi and z = 1 - 2*(i+0.5)/n, avoiding the pole
// clustering of a uniform (az, el) grid.
func FibonacciGrid(n int) []r3.Vector {
	if n <= 0 {
		return nil
	}
	goldenRatio := (1 + math.Sqrt(5)) / 2
	out := make([]r3.Vector, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / goldenRatio
		phi := math.Acos(1 - 2*(float64(i)+0.5)/float64(n))
		out[i] = r3.Vector{
			X: math.Cos(theta) * math.Sin(phi),
			Y: math.Sin(theta) * math.Sin(phi),
			Z: math.Cos(phi),
		}
	}
	return out
}
