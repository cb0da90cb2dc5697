// Package adm implements the ADM metadata coordinate conversions of
// Rec. ITU-R BS.2127-0 section 10: the sector-based mapping between the
// polar and Cartesian authoring conventions, and the width/height/depth
// extent conversion. These are metadata-space conversions only; they are
// deliberately not the classical spherical mapping used by the panner
// (layout.PolarPosition.Cartesian does that).
package adm

import (
	"math"

	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/types"
	"github.com/thesyncim/admrender/util"
)

const (
	elTop     = 30.0
	elDashTop = 45.0
	sectorTol = 1e-10
)

// MapAzToLinear maps an azimuth between the left/right sector edges to a
// linear coordinate in [0, 1] (BS.2127-0 sec. 10.1).
func MapAzToLinear(azL, azR, az float64) float64 {
	azMid := 0.5 * (azL + azR)
	azRange := azR - azMid
	azRel := az - azMid
	gr := 0.5 * (1 + math.Tan(layout.DegToRad(azRel))/math.Tan(layout.DegToRad(azRange)))
	return 2 / math.Pi * math.Atan2(gr, 1-gr)
}

// MapLinearToAz is the inverse of MapAzToLinear.
func MapLinearToAz(azL, azR, x float64) float64 {
	azMid := 0.5 * (azL + azR)
	azRange := azR - azMid
	gDashL := math.Cos(x * math.Pi / 2)
	gDashR := math.Sin(x * math.Pi / 2)
	gr := gDashR / (gDashL + gDashR)
	azRel := layout.RadToDeg(math.Atan(2 * (gr - 0.5) * math.Tan(layout.DegToRad(azRange))))
	return azMid + azRel
}

// sector holds one row of the BS.2127-0 sec. 10.1 sector table: the
// left/right azimuth edges and the (x, y) coordinates of the left and
// right corner.
type sector struct {
	azL, azR float64
	xL, yL   float64
	xR, yR   float64
}

// findSector locates the sector containing az for the polar-to-Cartesian
// direction.
func findSector(az float64) sector {
	switch {
	case layout.InsideAngleRange(az, 0, 30, sectorTol):
		return sector{30, 0, -1, 1, 0, 1}
	case layout.InsideAngleRange(az, -30, 0, sectorTol):
		return sector{0, -30, 0, 1, 1, 1}
	case layout.InsideAngleRange(az, -110, -30, sectorTol):
		return sector{-30, -110, 1, 1, 1, -1}
	case layout.InsideAngleRange(az, 110, -110, sectorTol):
		return sector{-110, 110, 1, -1, -1, -1}
	default: // 30..110
		return sector{110, 30, -1, -1, -1, 1}
	}
}

// findCartSector locates the sector for the Cartesian-to-polar direction;
// the boundaries sit at the Cartesian diagonals rather than the
// loudspeaker azimuths.
func findCartSector(azDash float64) sector {
	switch {
	case layout.InsideAngleRange(azDash, 0, 45, sectorTol):
		return sector{30, 0, -1, 1, 0, 1}
	case layout.InsideAngleRange(azDash, -45, 0, sectorTol):
		return sector{0, -30, 0, 1, 1, 1}
	case layout.InsideAngleRange(azDash, -135, -45, sectorTol):
		return sector{-30, -110, 1, 1, 1, -1}
	case layout.InsideAngleRange(azDash, 135, -135, sectorTol):
		return sector{-110, 110, 1, -1, -1, -1}
	default: // 45..135
		return sector{110, 30, -1, -1, -1, 1}
	}
}

// PointPolarToCart converts an ADM polar position to the ADM-Cartesian
// metadata convention (BS.2127-0 sec. 10.1). Not a coordinate-system
// conversion; use only on metadata.
func PointPolarToCart(polar layout.PolarPosition) layout.CartesianPosition {
	az, el, d := polar.Azimuth, polar.Elevation, polar.Distance

	var z, rxy float64
	if math.Abs(el) > elTop {
		elDash := elDashTop + (90-elDashTop)*(math.Abs(el)-elTop)/(90-elTop)
		z = d * util.Sgn(el)
		rxy = d * math.Tan(layout.DegToRad(90-elDash))
	} else {
		elDash := elDashTop * el / elTop
		z = d * math.Tan(layout.DegToRad(elDash))
		rxy = d
	}

	s := findSector(az)
	azDash := layout.RelativeAngle(s.azR, az)
	azDashL := layout.RelativeAngle(s.azR, s.azL)
	p := MapAzToLinear(azDashL, s.azR, azDash)
	x := rxy * (s.xL + p*(s.xR-s.xL))
	y := rxy * (s.yL + p*(s.yR-s.yL))

	return layout.CartesianPosition{X: x, Y: y, Z: z}
}

// PointCartToPolar converts an ADM-Cartesian metadata position back to
// polar (BS.2127-0 sec. 10.1).
func PointCartToPolar(cart layout.CartesianPosition) layout.PolarPosition {
	x, y, z := cart.X, cart.Y, cart.Z

	if math.Abs(x) < sectorTol && math.Abs(y) < sectorTol {
		if math.Abs(z) < sectorTol {
			return layout.PolarPosition{}
		}
		return layout.PolarPosition{Azimuth: 0, Elevation: 90 * util.Sgn(z), Distance: math.Abs(z)}
	}

	azDash := -layout.RadToDeg(math.Atan2(x, y))
	s := findCartSector(azDash)

	det := s.xL*s.yR - s.yL*s.xR
	g0 := x*s.yR/det + y*-s.xR/det
	g1 := x*-s.yL/det + y*s.xL/det
	rxy := g0 + g1
	azDashL := layout.RelativeAngle(s.azR, s.azL)
	azRel := MapLinearToAz(azDashL, s.azR, g1/rxy)
	az := layout.RelativeAngle(-180, azRel)
	elDash := layout.RadToDeg(math.Atan(z / rxy))

	var el, d float64
	if math.Abs(elDash) > elDashTop {
		el = math.Abs(elTop+(90-elTop)*(math.Abs(elDash)-elDashTop)/(90-elDashTop)) * util.Sgn(elDash)
		d = math.Abs(z)
	} else {
		el = elDash * elTop / elDashTop
		d = rxy
	}

	return layout.PolarPosition{Azimuth: az, Elevation: el, Distance: d}
}

// WHDToXYZ converts a polar extent (width/height in degrees, depth) to
// Cartesian extent sizes (BS.2127-0 sec. 10.2.1).
func WHDToXYZ(w, h, d float64) (x, y, z float64) {
	sxw := 1.0
	if w < 180 {
		sxw = math.Sin(layout.DegToRad(w * 0.5))
	}
	syw := 0.5 * (1 - math.Cos(layout.DegToRad(w*0.5)))
	szh := 1.0
	if h < 180 {
		szh = math.Sin(layout.DegToRad(h * 0.5))
	}
	syh := 0.5 * (1 - math.Cos(layout.DegToRad(h*0.5)))

	x = sxw
	y = math.Max(math.Max(syw, syh), d)
	z = szh
	return x, y, z
}

// XYZToWHD converts Cartesian extent sizes back to polar width/height/
// depth (BS.2127-0 sec. 10.2.1).
func XYZToWHD(sx, sy, sz float64) (w, h, d float64) {
	wsx := 2 * layout.RadToDeg(math.Asin(sx))
	wsy := 2 * layout.RadToDeg(math.Acos(1-2*sy))
	w = wsx + sx*math.Max(wsy-wsx, 0)

	hsz := 2 * layout.RadToDeg(math.Asin(sz))
	hsy := 2 * layout.RadToDeg(math.Acos(1-2*sy))
	h = hsz + sz*math.Max(hsy-hsz, 0)

	_, yEq, _ := WHDToXYZ(w, h, 0)
	d = math.Max(0, sy-yEq)
	return w, h, d
}

// ExtentCartToPolar converts a Cartesian position plus Cartesian extent
// to a polar position plus polar extent (BS.2127-0 sec. 10.2.2).
func ExtentCartToPolar(pos layout.CartesianPosition, sx, sy, sz float64) (layout.PolarPosition, [3]float64) {
	polar := PointCartToPolar(pos)
	right, front, up := layout.LocalCoordinateSystem(polar.Azimuth, polar.Elevation)

	rows := [3]layout.CartesianPosition{
		right.Scale(sx),
		front.Scale(sy),
		up.Scale(sz),
	}
	sxf := math.Sqrt(rows[0].X*rows[0].X + rows[1].X*rows[1].X + rows[2].X*rows[2].X)
	syf := math.Sqrt(rows[0].Y*rows[0].Y + rows[1].Y*rows[1].Y + rows[2].Y*rows[2].Y)
	szf := math.Sqrt(rows[0].Z*rows[0].Z + rows[1].Z*rows[1].Z + rows[2].Z*rows[2].Z)

	var whd [3]float64
	whd[0], whd[1], whd[2] = XYZToWHD(sxf, syf, szf)
	return polar, whd
}

// ToPolar converts a Cartesian-flagged metadata block to the polar path
// (BS.2127-0 sec. 10). Polar blocks are returned unchanged. Divergence
// conversion (sec. 10.3) is intentionally not applied: the published
// equation is suspect and the reference renderer leaves it out as well.
func ToPolar(md types.ObjectMetadata) types.ObjectMetadata {
	if !md.Cartesian {
		return md
	}
	out := md
	polar, whd := ExtentCartToPolar(md.CartesianPosition, md.Width, md.Height, md.Depth)
	out.PolarPosition = polar
	out.Width, out.Height, out.Depth = whd[0], whd[1], whd[2]
	out.Cartesian = false
	return out
}
