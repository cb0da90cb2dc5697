package layout

import "math"

// ConvertToRangeMinus180To180 normalises an angle in degrees to (-180, 180].
func ConvertToRangeMinus180To180(az float64) float64 {
	for az <= -180 {
		az += 360
	}
	for az > 180 {
		az -= 360
	}
	return az
}

// RelativeAngle returns the angle equivalent to y in the half-open range
// [x, x+360), per Rec. ITU-R BS.2127-0 Tools.h relativeAngle. Used to walk
// around a sector boundary without ambiguity at the +-180 wrap point.
func RelativeAngle(x, y float64) float64 {
	for y-360 >= x {
		y -= 360
	}
	for y < x {
		y += 360
	}
	return y
}

// InsideAngleRange reports whether x lies within [startAngle, endAngle]
// going anti-clockwise, with an optional tolerance in degrees. All angles
// are first normalised to (-180, 180].
//
// The reference implementation mixes <= and < across call
// sites when an angle falls exactly on a sector boundary. This
// implementation always uses inclusive (<=) comparisons on both ends —
// matching the reference RegionHandlers/AdmConversions usage, which always
// passes tol >= 0 and relies on inclusive boundaries so that adjacent
// sectors share their edge rather than leaving a gap. Boundary behaviour
// is pinned by TestInsideAngleRangeBoundary.
func InsideAngleRange(x, startAngle, endAngle, tol float64) bool {
	x = ConvertToRangeMinus180To180(x)
	startAngle = ConvertToRangeMinus180To180(startAngle)
	endAngle = ConvertToRangeMinus180To180(endAngle)

	if startAngle <= endAngle {
		return x >= startAngle-tol && x <= endAngle+tol
	}
	return x >= startAngle-tol || x <= endAngle+tol
}

// AngularDistance returns the absolute angular distance in degrees between
// two directions given as azimuth/elevation pairs, via the dot product of
// their unit vectors. Always in [0, 180].
func AngularDistance(az1, el1, az2, el2 float64) float64 {
	u1 := PolarPosition{Azimuth: az1, Elevation: el1, Distance: 1}.UnitVector()
	u2 := PolarPosition{Azimuth: az2, Elevation: el2, Distance: 1}.UnitVector()
	d := u1.Dot(u2)
	d = math.Min(1, math.Max(-1, d))
	return RadToDeg(math.Acos(d))
}
