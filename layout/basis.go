package layout

// LocalCoordinateSystem returns the orthonormal basis of the local
// coordinate system centred on a direction, per Rec. ITU-R BS.2127-0
// Tools.h LocalCoordinateSystem: right points toward azimuth-90 on the
// horizontal plane, front toward the direction itself, up toward the
// direction tilted 90 degrees toward the zenith.
func LocalCoordinateSystem(azDeg, elDeg float64) (right, front, up CartesianPosition) {
	right = PolarPosition{Azimuth: azDeg - 90, Elevation: 0, Distance: 1}.UnitVector()
	front = PolarPosition{Azimuth: azDeg, Elevation: elDeg, Distance: 1}.UnitVector()
	up = PolarPosition{Azimuth: azDeg, Elevation: elDeg + 90, Distance: 1}.UnitVector()
	return right, front, up
}
