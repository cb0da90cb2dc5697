package ambisonic

import "math"

// maxReGains3D holds the tabulated max-rE order gains for full 3-D
// reproduction, indexed by [order-1][component order].
var maxReGains3D = [3][4]float64{
	{1.417794018951694, 0.814424156449370, 0, 0},
	{1.583040780613530, 1.225234967342221, 0.630932597243196, 0},
	{1.669215604860955, 1.437112458085760, 1.021316810756924, 0.507430850075628},
}

// OptimFilters applies the psychoacoustic optimisation of BS.2127:
// below the order-dependent crossover frequency the soundfield passes
// through unchanged; above it each order-group is attenuated by its
// max-rE gain. The split is a 4th-order Linkwitz-Riley crossover, so
// the two bands sum flat.
type OptimFilters struct {
	order  int
	maxRe  []float64
	cross  *LinkwitzRiley
	lowOut [][]float64
}

// CrossoverFrequency returns the optimisation crossover for an order:
// f_c = c*N / (4*r_head*(N+1)*sin(pi/(2N+2))) with c = 343 m/s and
// r_head = 0.09 m.
func CrossoverFrequency(order int) float64 {
	const (
		speedOfSound = 343.0
		headRadius   = 0.09
	)
	n := float64(order)
	return speedOfSound * n / (4 * headRadius * (n + 1) * math.Sin(math.Pi/(2*n+2)))
}

// NewOptimFilters builds the optimisation filters for the given order
// (1 to 3; order 0 has nothing to optimise and callers skip it).
func NewOptimFilters(order, sampleRate, maxBlockSize int) *OptimFilters {
	nCh := ChannelCount(order)
	o := &OptimFilters{
		order: order,
		maxRe: make([]float64, order+1),
		cross: NewLinkwitzRiley(nCh, sampleRate, CrossoverFrequency(order)),
	}
	for i := 0; i <= order; i++ {
		o.maxRe[i] = maxReGains3D[order-1][i]
	}
	o.lowOut = make([][]float64, nCh)
	for i := range o.lowOut {
		o.lowOut[i] = make([]float64, maxBlockSize)
	}
	return o
}

// Process applies the shelf optimisation to src[:n] in place.
func (o *OptimFilters) Process(src *BFormat, n int) {
	o.cross.Process(src.Channels, o.lowOut, src.Channels, n)

	for acn, ch := range src.Channels {
		g := o.maxRe[ComponentOrder(acn)]
		low := o.lowOut[acn]
		for i := 0; i < n; i++ {
			ch[i] = g*ch[i] + low[i]
		}
	}
}

// Reset clears the crossover filter state.
func (o *OptimFilters) Reset() {
	o.cross.Reset()
}
