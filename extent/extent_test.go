package extent

import (
	"math"
	"testing"

	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/panner"
)

func TestPolarExtentHandlerZeroSizeMatchesPointSource(t *testing.T) {
	l, _ := layout.ForName(layout.Layout0_5_0)
	pc := panner.NewGainCalc(l.WithoutLFE())
	h := NewPolarExtentHandler(pc)

	pos := layout.PolarPosition{Azimuth: 15, Elevation: 0, Distance: 1}
	want := pc.CalculateGains(pos)

	got := make([]float64, pc.NumChannels())
	h.Handle(pos, 0, 0, 0, got)

	for i := range want {
		if math.Abs(want[i]-got[i]) > 1e-9 {
			t.Fatalf("channel %d: want %v got %v", i, want[i], got[i])
		}
	}
}

func TestPolarExtentHandlerWideObjectIsUnitNorm(t *testing.T) {
	l, _ := layout.ForName(layout.Layout0_7_0)
	pc := panner.NewGainCalc(l.WithoutLFE())
	h := NewPolarExtentHandler(pc)

	got := make([]float64, pc.NumChannels())
	h.Handle(layout.PolarPosition{Azimuth: 0, Elevation: 0, Distance: 1}, 90, 40, 0, got)

	var n float64
	for _, v := range got {
		if v < 0 {
			t.Fatalf("negative gain %v in %v", v, got)
		}
		n += v * v
	}
	n = math.Sqrt(n)
	if math.Abs(n-1) > 0.05 {
		t.Fatalf("expected near-unit norm, got %v (%v)", n, got)
	}
}

func TestExtentModDistanceBehaviour(t *testing.T) {
	// A source inside the unit sphere has its extent widened, a distant
	// one narrowed, and unit distance leaves it alone (BS.2127-0
	// sec. 7.3.8.2.1).
	if got := ExtentMod(0.2, 30); got <= 30 {
		t.Fatalf("close source: expected widened extent, got %v", got)
	}
	if got := ExtentMod(4, 30); got >= 30 {
		t.Fatalf("far source: expected narrowed extent, got %v", got)
	}
	if got := ExtentMod(1, 30); math.Abs(got-30) > 1e-9 {
		t.Fatalf("unit distance: expected unmodified extent, got %v", got)
	}
}

func TestDepthSplitKeepsEnergy(t *testing.T) {
	l, _ := layout.ForName(layout.Layout0_5_0)
	pc := panner.NewGainCalc(l.WithoutLFE())
	h := NewPolarExtentHandler(pc)

	pos := layout.PolarPosition{Azimuth: 0, Elevation: 0, Distance: 1}
	withDepth := make([]float64, pc.NumChannels())
	h.Handle(pos, 20, 10, 0.5, withDepth)

	var norm float64
	for _, v := range withDepth {
		if v < 0 {
			t.Fatalf("negative gain %v in %v", v, withDepth)
		}
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if math.Abs(norm-1) > 0.1 {
		t.Fatalf("depth-split gains should stay near unit norm, got %v (%v)", norm, withDepth)
	}
}

func TestFibonacciGridIsUnitSphere(t *testing.T) {
	grid := FibonacciGrid(64)
	if len(grid) != 64 {
		t.Fatalf("expected 64 points, got %d", len(grid))
	}
	for i, p := range grid {
		n := p.Norm()
		if math.Abs(n-1) > 1e-9 {
			t.Fatalf("point %d: expected unit length, got %v", i, n)
		}
	}
}
