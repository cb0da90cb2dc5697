package gain

import (
	"math"

	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/types"
)

// divergedPositionsAndGains splits a source into three virtual sources
// at the original direction and at +-value*azimuthRange degrees of
// azimuth in the source's local frame, with gains
// ((1-x)/(1+x), x/(1+x), x/(1+x)) per BS.2127-0 sec. 7.3.7.1. A zero
// divergence value returns the single original position with gain 1.
func divergedPositionsAndGains(div types.ObjectDivergence, pos layout.PolarPosition) ([]layout.PolarPosition, []float64) {
	x := div.Value
	if x == 0 {
		return []layout.PolarPosition{pos}, []float64{1}
	}

	glr := x / (x + 1)
	gains := []float64{(1 - x) / (x + 1), glr, glr}

	theta := layout.DegToRad(x * div.AzimuthRange)
	right, front, _ := layout.LocalCoordinateSystem(pos.Azimuth, pos.Elevation)

	// Positions at +-theta of azimuth in the local frame: rotating
	// toward positive azimuth moves against the right basis vector.
	left := front.Scale(math.Cos(theta)).Sub(right.Scale(math.Sin(theta)))
	rightPos := front.Scale(math.Cos(theta)).Sub(right.Scale(-math.Sin(theta)))

	positions := []layout.PolarPosition{
		pos,
		withDistance(left.Polar(), pos.Distance),
		withDistance(rightPos.Polar(), pos.Distance),
	}
	return positions, gains
}

func withDistance(p layout.PolarPosition, d float64) layout.PolarPosition {
	p.Distance = d
	return p
}
