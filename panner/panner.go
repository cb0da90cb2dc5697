package panner

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/thesyncim/admrender/layout"
)

// GainCalc is the point-source panner (Rec. ITU-R BS.2127-0 sec. 7.3.9). It owns the region
// handlers built from an output layout's convex-hull triangulation, the
// extra (virtual) speakers synthesised to cover missing height/low-layer
// positions, and (for "0+2+0") the internal 0+5+0 panner plus stereo
// downmix.
type GainCalc struct {
	outputLayout layout.Layout // always non-LFE
	isStereo     bool

	// positions holds the unit direction vectors of every real channel
	// (in outputLayout order) followed by every synthesised extra
	// speaker, in the same order hull facet indices assume.
	positions []r3.Vector

	// downmixMapping[i] is the output-channel index that a gain landing
	// on positions[i] should be redistributed to.
	downmixMapping []int

	triplets []*Triplet
	quads    []*QuadRegion
	ngons    []*VirtualNgon

	nGonScratch []float64
	tmp3        [3]float64
	tmp4        [4]float64
}

const pspTol = 1e-6

// sqrt2, sqrt3 are used by the stereo downmix matrix.
var sqrt2 = math.Sqrt2
var sqrt3 = math.Sqrt(3)

// NewGainCalc builds a point-source panner for the given output layout.
// outLayout must be one of the five supported beds (caller is expected
// to have validated this against layout.IsSupportedOutputLayout at
// Configure time).
func NewGainCalc(outLayout layout.Layout) *GainCalc {
	noLFE := outLayout.WithoutLFE()

	pc := &GainCalc{outputLayout: noLFE}
	if noLFE.Name == layout.Layout0_2_0 {
		pc.isStereo = true
		pc.outputLayout, _ = layout.ForName(layout.Layout0_5_0)
		pc.outputLayout = pc.outputLayout.WithoutLFE()
	}

	nOutCh := len(pc.outputLayout.Channels)
	pc.downmixMapping = make([]int, nOutCh)
	for i := range pc.downmixMapping {
		pc.downmixMapping[i] = i
	}
	pc.positions = make([]r3.Vector, 0, nOutCh+16)
	for _, ch := range pc.outputLayout.Channels {
		pc.positions = append(pc.positions, toVec(ch.Polar))
	}

	extra, extraDownmix := calculateExtraSpeakers(pc.outputLayout)
	nExtra := len(extra)
	for i, v := range extra {
		pc.positions = append(pc.positions, v.dir)
		if i < nExtra-2 { // BOTTOM/TOP carry no downmix entry (virtual centres)
			pc.downmixMapping = append(pc.downmixMapping, extraDownmix[i])
		}
	}
	virtualBottom := nOutCh + nExtra - 2
	virtualTop := nOutCh + nExtra - 1

	hull := hullFor(pc.outputLayout.Name)
	isVirtual := map[int]bool{virtualBottom: true, virtualTop: true}

	ngonVerts := map[int][]int{} // virtual speaker index -> set of real vertex indices
	for _, facet := range hull {
		hasVirtual := false
		var virtIdx int
		for _, idx := range facet {
			if isVirtual[idx] {
				hasVirtual = true
				virtIdx = idx
			}
		}
		if !hasVirtual {
			switch len(facet) {
			case 3:
				pc.triplets = append(pc.triplets, NewTriplet(append([]int{}, facet...), indexDirs(pc.positions, facet)))
			case 4:
				pc.quads = append(pc.quads, NewQuadRegion(append([]int{}, facet...), indexDirs(pc.positions, facet)))
			}
			continue
		}
		set := ngonVerts[virtIdx]
		for _, idx := range facet {
			if idx != virtIdx && !containsInt(set, idx) {
				set = append(set, idx)
			}
		}
		ngonVerts[virtIdx] = set
	}
	for _, virtIdx := range []int{virtualBottom, virtualTop} {
		verts, ok := ngonVerts[virtIdx]
		if !ok || len(verts) == 0 {
			continue
		}
		pc.ngons = append(pc.ngons, NewVirtualNgon(verts, indexDirs(pc.positions, verts), pc.positions[virtIdx]))
	}

	maxNgon := 0
	for _, ng := range pc.ngons {
		if n := len(ng.Indices()); n > maxNgon {
			maxNgon = n
		}
	}
	pc.nGonScratch = make([]float64, maxNgon)

	return pc
}

func indexDirs(positions []r3.Vector, idx []int) []r3.Vector {
	out := make([]r3.Vector, len(idx))
	for i, v := range idx {
		out[i] = positions[v]
	}
	return out
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func hullFor(name string) [][]int {
	l, _ := layout.ForName(name)
	out := make([][]int, len(l.Hull))
	for i, f := range l.Hull {
		out[i] = f.Indices
	}
	return out
}

// NumChannels returns the number of channels this panner outputs: 2 for
// the stereo case, otherwise the output layout's channel count.
func (pc *GainCalc) NumChannels() int {
	if pc.isStereo {
		return 2
	}
	return len(pc.outputLayout.Channels)
}

// CalculateGains computes the panning gain vector for a polar direction
// (Rec. ITU-R BS.2127-0 sec. 7.3.9).
func (pc *GainCalc) CalculateGains(dir layout.PolarPosition) []float64 {
	return pc.CalculateGainsVec(toVec(dir))
}

// CalculateGainsVec computes the panning gain vector for a unit (or
// non-unit; only direction matters) Cartesian direction.
func (pc *GainCalc) CalculateGainsVec(pos r3.Vector) []float64 {
	out := make([]float64, pc.NumChannels())
	pc.CalculateGainsInto(pos, out)
	return out
}

// CalculateGainsInto is the allocation-free form of CalculateGainsVec;
// out must have length NumChannels().
func (pc *GainCalc) CalculateGainsInto(pos r3.Vector, out []float64) {
	if pc.isStereo {
		five := make([]float64, len(pc.outputLayout.Channels))
		pc.calculateGainsFromRegions(pos, five)

		// Rec. ITU-R BS.2127-0 §6.1.2.4: downmix 0+5+0 -> 0+2+0.
		downmix := [2][5]float64{
			{1, 0, 1 / sqrt3, 1 / sqrt2, 0},
			{0, 1, 1 / sqrt3, 0, 1 / sqrt2},
		}
		out[0], out[1] = 0, 0
		for i := 0; i < 2; i++ {
			for j := 0; j < 5; j++ {
				out[i] += downmix[i][j] * five[j]
			}
		}
		var aFront, aRear float64
		for i := 0; i < 3; i++ {
			aFront = math.Max(aFront, five[i])
		}
		for i := 3; i < 5; i++ {
			aRear = math.Max(aRear, five[i])
		}
		r := 0.0
		if aFront+aRear > 0 {
			r = aRear / (aFront + aRear)
		}
		n := norm3(out)
		if n > 0 {
			g := math.Pow(0.5, r/2) / n
			out[0] *= g
			out[1] *= g
		}
		return
	}
	pc.calculateGainsFromRegions(pos, out)

	// Folding virtual speakers onto real ones changes the vector's norm;
	// restore unit norm.
	if n := norm3(out); n > 0 {
		for i := range out {
			out[i] /= n
		}
	}
}

func (pc *GainCalc) calculateGainsFromRegions(pos r3.Vector, gains []float64) {
	for i := range gains {
		gains[i] = 0
	}
	n := pos.Norm()
	if n == 0 {
		return
	}
	dir := pos.Mul(1 / n)

	for _, ng := range pc.ngons {
		g := pc.nGonScratch[:len(ng.Indices())]
		ng.Gains(dir, g)
		if norm3(g) > pspTol {
			for i, idx := range ng.Indices() {
				gains[pc.downmixMapping[idx]] += g[i]
			}
			return
		}
	}
	for _, tr := range pc.triplets {
		g := pc.tmp3[:]
		tr.Gains(dir, g)
		if norm3(g) > pspTol {
			for i, idx := range tr.Indices() {
				gains[pc.downmixMapping[idx]] += g[i]
			}
			return
		}
	}
	for _, q := range pc.quads {
		g := pc.tmp4[:]
		q.Gains(dir, g)
		if norm3(g) > pspTol {
			for i, idx := range q.Indices() {
				gains[pc.downmixMapping[idx]] += g[i]
			}
			return
		}
	}
}

type extraSpeaker struct {
	dir r3.Vector
}

// calculateExtraSpeakers synthesises the panner's virtual speakers for
// missing height/low-layer positions,
// following PointSourcePannerGainCalc.cpp's CalculateExtraSpeakersLayout:
// for every mid-layer channel with no corresponding lower/upper-layer
// coverage, fold a B/U virtual speaker at ±30° elevation, then add a
// single BOTTOM and TOP virtual speaker at the poles.
func calculateExtraSpeakers(l layout.Layout) (extra []extraSpeaker, downmixMapping []int) {
	var upper, mid, lower []int
	var maxUpperAz, maxLowerAz float64
	for i, ch := range l.Channels {
		el := ch.PolarNominal.Elevation
		switch {
		case el >= 30 && el <= 70:
			upper = append(upper, i)
			maxUpperAz = math.Max(maxUpperAz, math.Abs(ch.PolarNominal.Azimuth))
		case el >= -10 && el <= 10:
			mid = append(mid, i)
		case el >= -70 && el <= -30:
			lower = append(lower, i)
			maxLowerAz = math.Max(maxLowerAz, math.Abs(ch.PolarNominal.Azimuth))
		}
	}

	for _, iMid := range mid {
		az := l.Channels[iMid].PolarNominal.Azimuth
		if (len(lower) > 0 && math.Abs(az) > maxLowerAz+40) || len(lower) == 0 {
			downmixMapping = append(downmixMapping, iMid)
			extra = append(extra, extraSpeaker{dir: toVec(layout.PolarPosition{Azimuth: az, Elevation: -30, Distance: 1})})
		}
	}
	for _, iMid := range mid {
		az := l.Channels[iMid].PolarNominal.Azimuth
		if (len(upper) > 0 && math.Abs(az) > maxUpperAz+40) || len(upper) == 0 {
			downmixMapping = append(downmixMapping, iMid)
			extra = append(extra, extraSpeaker{dir: toVec(layout.PolarPosition{Azimuth: az, Elevation: 30, Distance: 1})})
		}
	}

	extra = append(extra, extraSpeaker{dir: toVec(layout.PolarPosition{Azimuth: 0, Elevation: -90, Distance: 1})})
	extra = append(extra, extraSpeaker{dir: toVec(layout.PolarPosition{Azimuth: 0, Elevation: 90, Distance: 1})})

	return extra, downmixMapping
}
