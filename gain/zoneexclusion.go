package gain

import (
	"math"
	"sort"

	"github.com/thesyncim/admrender/layout"
	"github.com/thesyncim/admrender/types"
	"github.com/thesyncim/admrender/util"
)

// ZoneExclusionHandler redistributes gain away from loudspeakers whose
// nominal position falls inside an excluded zone, following the speaker
// grouping of BS.2127-0 sec. 7.3.12.2: for each speaker, a priority
// list of candidate groups ordered by (layer priority, front/back
// priority, nominal vector distance, |delta y|).
type ZoneExclusionHandler struct {
	layout layout.Layout
	nCh    int

	// downmixMapping[spk] is spk's ordered list of fallback groups;
	// each group is a set of output-speaker indices sharing one sort
	// tuple.
	downmixMapping [][][]int

	d        [][]float64
	excluded []bool
}

// layerPriority returns the priority of routing a speaker in the input
// layer to one in the output layer (B/M/U/T), per sec. 7.3.12.2.1.
func layerPriority(inName, outName string) int {
	layerIndex := map[byte]int{'B': 0, 'M': 1, 'U': 2, 'T': 3}
	prio := [4][4]int{{0, 1, 2, 3}, {3, 0, 1, 2}, {3, 2, 0, 1}, {3, 2, 1, 0}}
	return prio[layerIndex[inName[0]]][layerIndex[outName[0]]]
}

// NewZoneExclusionHandler builds a handler over the (non-LFE) output
// layout, pre-computing each speaker's fallback group list from the
// nominal positions.
func NewZoneExclusionHandler(l layout.Layout) *ZoneExclusionHandler {
	h := &ZoneExclusionHandler{
		layout:   l,
		nCh:      len(l.Channels),
		excluded: make([]bool, len(l.Channels)),
	}

	cart := make([]layout.CartesianPosition, h.nCh)
	for i, ch := range l.Channels {
		cart[i] = ch.PolarNominal.Cartesian()
	}

	h.d = make([][]float64, h.nCh)
	for i := range h.d {
		h.d[i] = make([]float64, h.nCh)
	}

	for spk := 0; spk < h.nCh; spk++ {
		type entry struct {
			tuple [4]float64
			idx   int
		}
		entries := make([]entry, h.nCh)
		for out := 0; out < h.nCh; out++ {
			entries[out] = entry{
				tuple: [4]float64{
					float64(layerPriority(l.Channels[spk].Name, l.Channels[out].Name)),
					math.Abs(util.Sgn(cart[out].Y) - util.Sgn(cart[spk].Y)),
					cart[out].Sub(cart[spk]).Norm(),
					math.Abs(cart[out].Y - cart[spk].Y),
				},
				idx: out,
			}
		}
		sort.SliceStable(entries, func(a, b int) bool {
			for k := 0; k < 4; k++ {
				if entries[a].tuple[k] != entries[b].tuple[k] {
					return entries[a].tuple[k] < entries[b].tuple[k]
				}
			}
			return false
		})

		var groups [][]int
		for i := 0; i < len(entries); {
			j := i
			for j < len(entries) && entries[j].tuple == entries[i].tuple {
				j++
			}
			group := make([]int, 0, j-i)
			for k := i; k < j; k++ {
				group = append(group, entries[k].idx)
			}
			groups = append(groups, group)
			i = j
		}
		h.downmixMapping = append(h.downmixMapping, groups)
	}

	return h
}

// Handle applies the exclusion zones to gains in place. Gains on
// excluded speakers are power-redistributed to the first fallback group
// containing a non-excluded speaker (sec. 7.3.12.2.2). Excluding all
// speakers, or none, leaves the gains untouched.
func (h *ZoneExclusionHandler) Handle(zones []types.PolarExclusionZone, gains []float64) {
	const tol = 1e-6

	nExcluded := 0
	for i := range h.excluded {
		h.excluded[i] = false
	}
	for _, zone := range zones {
		for i, ch := range h.layout.Channels {
			az := ch.PolarNominal.Azimuth
			el := ch.PolarNominal.Elevation
			if zone.MinElevation-tol < el && el < zone.MaxElevation+tol &&
				(el > 90-tol || layout.InsideAngleRange(az, zone.MinAzimuth, zone.MaxAzimuth, 0)) {
				if !h.excluded[i] {
					h.excluded[i] = true
					nExcluded++
				}
			}
		}
	}
	if nExcluded == 0 || nExcluded == h.nCh {
		return
	}

	for i := range h.d {
		for j := range h.d[i] {
			h.d[i][j] = 0
		}
	}
	for spk := 0; spk < h.nCh; spk++ {
		for _, group := range h.downmixMapping[spk] {
			var keep []int
			for _, idx := range group {
				if !h.excluded[idx] {
					keep = append(keep, idx)
				}
			}
			if len(keep) > 0 {
				share := 1 / float64(len(keep))
				for _, idx := range keep {
					h.d[idx][spk] = share
				}
				break
			}
		}
	}

	out := make([]float64, h.nCh)
	for i := 0; i < h.nCh; i++ {
		var g float64
		for j := 0; j < h.nCh; j++ {
			g += h.d[i][j] * gains[j] * gains[j]
		}
		out[i] = math.Sqrt(g)
	}
	copy(gains, out)
}
