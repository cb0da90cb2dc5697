// Package layout defines the loudspeaker layout catalog: polar and
// ADM-Cartesian position types, channels, the supported output layouts,
// the BS.2094 nominal speaker position table, and the ITU audioPackFormat
// table. All of this data is read-only after package initialisation.
package layout

import "math"

// PolarPosition is an ADM polar position: azimuth in degrees measured
// anti-clockwise from front in (-180, 180], elevation in degrees positive
// upward in [-90, 90], and distance >= 0.
type PolarPosition struct {
	Azimuth   float64
	Elevation float64
	Distance  float64
}

// CartesianPosition is an ADM-Cartesian position: +y front, +x right, +z
// up. This is the ADM metadata convention, distinct from the classical
// spherical-to-Cartesian mapping and distinct from the Ambisonic encoder's
// own axis convention (ambisonic package).
type CartesianPosition struct {
	X, Y, Z float64
}

// UnitVector converts a polar position's direction (ignoring distance) to
// a unit ADM-Cartesian vector, per Rec. ITU-R BS.2127-0 pg 33:
//
//	x = sin(-az)*cos(el)
//	y = cos(-az)*cos(el)
//	z = sin(el)
func (p PolarPosition) UnitVector() CartesianPosition {
	az := DegToRad(p.Azimuth)
	el := DegToRad(p.Elevation)
	return CartesianPosition{
		X: math.Sin(-az) * math.Cos(el),
		Y: math.Cos(-az) * math.Cos(el),
		Z: math.Sin(el),
	}
}

// Cartesian converts a polar position to an ADM-Cartesian position at its
// own distance, using the classical (non-ADM-metadata) spherical mapping
// used throughout the point-source panner and region handlers.
func (p PolarPosition) Cartesian() CartesianPosition {
	u := p.UnitVector()
	return CartesianPosition{X: u.X * p.Distance, Y: u.Y * p.Distance, Z: u.Z * p.Distance}
}

// Polar converts a classical ADM-Cartesian position back to polar using
// the same convention as Cartesian (the inverse of the unit-vector
// mapping above), per Rec. ITU-R BS.2127-0 Tools.h CartesianToPolar.
func (c CartesianPosition) Polar() PolarPosition {
	d := math.Sqrt(c.X*c.X + c.Y*c.Y + c.Z*c.Z)
	az := -RadToDeg(math.Atan2(c.X, c.Y))
	el := RadToDeg(math.Atan2(c.Z, math.Sqrt(c.X*c.X+c.Y*c.Y)))
	return PolarPosition{Azimuth: az, Elevation: el, Distance: d}
}

// Norm returns the Euclidean length of c.
func (c CartesianPosition) Norm() float64 {
	return math.Sqrt(c.X*c.X + c.Y*c.Y + c.Z*c.Z)
}

// Dot returns the dot product of c and o.
func (c CartesianPosition) Dot(o CartesianPosition) float64 {
	return c.X*o.X + c.Y*o.Y + c.Z*o.Z
}

// Sub returns c - o.
func (c CartesianPosition) Sub(o CartesianPosition) CartesianPosition {
	return CartesianPosition{c.X - o.X, c.Y - o.Y, c.Z - o.Z}
}

// Scale returns c scaled by s.
func (c CartesianPosition) Scale(s float64) CartesianPosition {
	return CartesianPosition{c.X * s, c.Y * s, c.Z * s}
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180.0 }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
