package types

import (
	"testing"

	"github.com/thesyncim/admrender/layout"
)

func TestObjectMetadataEqual(t *testing.T) {
	base := ObjectMetadata{
		TrackIndex:    3,
		PolarPosition: layout.PolarPosition{Azimuth: 30, Elevation: 5, Distance: 1},
		Gain:          1,
		Diffuse:       0.25,
		ChannelLock:   NoChannelLock,
		ZoneExclusionPolar: []PolarExclusionZone{
			{MinAzimuth: -10, MaxAzimuth: 10, MinElevation: -10, MaxElevation: 10},
		},
	}

	same := base
	same.ZoneExclusionPolar = append([]PolarExclusionZone(nil), base.ZoneExclusionPolar...)
	if !base.Equal(same) {
		t.Fatal("identical records must compare equal")
	}

	moved := base
	moved.PolarPosition.Azimuth = 31
	if base.Equal(moved) {
		t.Fatal("changed position must compare unequal")
	}

	zone := base
	zone.ZoneExclusionPolar = nil
	if base.Equal(zone) {
		t.Fatal("changed exclusion zones must compare unequal")
	}

	// Cartesian records compare on the Cartesian position only.
	cart := base
	cart.Cartesian = true
	cart.CartesianPosition = layout.CartesianPosition{X: 0, Y: 1, Z: 0}
	cart2 := cart
	cart2.PolarPosition.Azimuth = -120 // ignored on the Cartesian path
	if !cart.Equal(cart2) {
		t.Fatal("polar position must be ignored for Cartesian-flagged records")
	}
}

func TestACNIndex(t *testing.T) {
	tests := []struct{ order, degree, want int }{
		{0, 0, 0},
		{1, -1, 1},
		{1, 0, 2},
		{1, 1, 3},
		{2, -2, 4},
		{3, 3, 15},
	}
	for _, tc := range tests {
		if got := ACNIndex(tc.order, tc.degree); got != tc.want {
			t.Errorf("ACNIndex(%d, %d) = %d, want %d", tc.order, tc.degree, got, tc.want)
		}
	}
}
