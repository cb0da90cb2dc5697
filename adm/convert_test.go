package adm

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/types"
)

func TestPointPolarToCartKnownDirections(t *testing.T) {
	tests := []struct {
		name    string
		in      layout.PolarPosition
		x, y, z float64
	}{
		{"front", layout.PolarPosition{Azimuth: 0, Elevation: 0, Distance: 1}, 0, 1, 0},
		{"left30", layout.PolarPosition{Azimuth: 30, Elevation: 0, Distance: 1}, -1, 1, 0},
		{"right30", layout.PolarPosition{Azimuth: -30, Elevation: 0, Distance: 1}, 1, 1, 0},
		{"back", layout.PolarPosition{Azimuth: 180, Elevation: 0, Distance: 1}, 0, -1, 0},
		{"top", layout.PolarPosition{Azimuth: 0, Elevation: 90, Distance: 1}, 0, 0, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := PointPolarToCart(tc.in)
			if math.Abs(got.X-tc.x) > 1e-9 || math.Abs(got.Y-tc.y) > 1e-9 || math.Abs(got.Z-tc.z) > 1e-9 {
				t.Fatalf("got (%v, %v, %v), want (%v, %v, %v)", got.X, got.Y, got.Z, tc.x, tc.y, tc.z)
			}
		})
	}
}

func TestPointCartToPolarOrigin(t *testing.T) {
	got := PointCartToPolar(layout.CartesianPosition{})
	if got != (layout.PolarPosition{}) {
		t.Fatalf("origin should map to zero polar position, got %+v", got)
	}
}

func TestPolarCartRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := layout.PolarPosition{
			Azimuth:   rapid.Float64Range(-179.9, 180).Draw(t, "az"),
			Elevation: rapid.Float64Range(-89, 89).Draw(t, "el"),
			Distance:  rapid.Float64Range(0.1, 2).Draw(t, "d"),
		}
		back := PointCartToPolar(PointPolarToCart(p))
		if math.Abs(layout.ConvertToRangeMinus180To180(back.Azimuth-p.Azimuth)) > 1e-6 {
			t.Fatalf("azimuth: %v -> %v", p.Azimuth, back.Azimuth)
		}
		if math.Abs(back.Elevation-p.Elevation) > 1e-6 {
			t.Fatalf("elevation: %v -> %v", p.Elevation, back.Elevation)
		}
		if math.Abs(back.Distance-p.Distance) > 1e-6 {
			t.Fatalf("distance: %v -> %v", p.Distance, back.Distance)
		}
	})
}

func TestWHDXYZRoundTripSquareExtents(t *testing.T) {
	// The xyz2whd construction is only an exact inverse when width and
	// height agree; rectangular extents round-trip approximately.
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.Float64Range(0, 170).Draw(t, "w")

		x, y, z := WHDToXYZ(w, w, 0)
		w2, h2, d2 := XYZToWHD(x, y, z)
		if math.Abs(w2-w) > 1e-6 || math.Abs(h2-w) > 1e-6 || d2 > 1e-6 {
			t.Fatalf("(%v, %v, 0) -> (%v, %v, %v)", w, w, w2, h2, d2)
		}
	})
}

func TestToPolarLeavesPolarBlocksAlone(t *testing.T) {
	md := types.ObjectMetadata{
		PolarPosition: layout.PolarPosition{Azimuth: 42, Elevation: 10, Distance: 1},
		Width:         15,
	}
	if got := ToPolar(md); !got.Equal(md) {
		t.Fatalf("polar metadata should pass through unchanged: %+v != %+v", got, md)
	}
}

func TestToPolarConvertsCartesianBlocks(t *testing.T) {
	md := types.ObjectMetadata{
		Cartesian:         true,
		CartesianPosition: layout.CartesianPosition{X: 0, Y: 1, Z: 0},
	}
	got := ToPolar(md)
	if got.Cartesian {
		t.Fatal("converted metadata should be unflagged as cartesian")
	}
	if math.Abs(got.PolarPosition.Azimuth) > 1e-9 || math.Abs(got.PolarPosition.Elevation) > 1e-9 {
		t.Fatalf("front position should convert to azimuth 0, elevation 0, got %+v", got.PolarPosition)
	}
}
