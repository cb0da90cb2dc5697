package ambisonic

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/thesyncim/admrender/extent"
)

// NewExtentPanner builds the Ambisonic counterpart of the loudspeaker
// polar extent handler, used when objects are rendered to a soundfield
// for binaural output: the grid vectors are SN3D encoding coefficients
// instead of loudspeaker gains, and sources combine by amplitude rather
// than power so component polarity survives.
func NewExtentPanner(order int) *extent.PolarExtentHandler {
	n := ChannelCount(order)
	point := func(dir r3.Vector, out []float64) {
		az := math.Atan2(-dir.X, dir.Y)
		el := math.Atan2(dir.Z, math.Hypot(dir.X, dir.Y))
		Coefficients(order, az, el, out)
	}

	grid := extent.FibonacciGrid(extent.GridSize)
	vectors := make([][]float64, len(grid))
	for i, v := range grid {
		vectors[i] = make([]float64, n)
		point(v, vectors[i])
	}
	sp := extent.NewSpreadPannerFromVectors(vectors, true)
	return extent.NewPolarExtentHandlerFunc(point, sp, true)
}
