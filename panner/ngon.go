package panner

import "github.com/golang/geo/r3"

// VirtualNgon owns N loudspeakers arranged around a single virtual
// centre speaker (e.g. a synthesised TOP or BOTTOM). It triangulates as
// a fan of N triplets with the centre, distributing the centre's share
// equally (1/N) across the real loudspeakers — the downmix coefficient
// (Rec. ITU-R BS.2127-0 sec. 6.1.3.1).
type VirtualNgon struct {
	indices  []int
	verts    []r3.Vector
	centre   r3.Vector
	triplets []*Triplet // fan triplets, each (centre, verts[i], verts[i+1])
	downmix  float64
}

// NewVirtualNgon builds a VirtualNgon over the real loudspeaker indices
// (in any order; they are reordered anti-clockwise internally) and the
// virtual centre direction.
func NewVirtualNgon(indices []int, dirs []r3.Vector, centre r3.Vector) *VirtualNgon {
	n := len(indices)
	order := anticlockwiseOrder(dirs)
	ng := &VirtualNgon{
		indices: make([]int, n),
		verts:   make([]r3.Vector, n),
		centre:  centre,
		downmix: 1.0 / float64(n),
	}
	for i, o := range order {
		ng.indices[i] = indices[o]
		ng.verts[i] = dirs[o]
	}
	ng.triplets = make([]*Triplet, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		ng.triplets[i] = NewTriplet([]int{0, 1, 2}, []r3.Vector{centre, ng.verts[i], ng.verts[j]})
	}
	return ng
}

func (ng *VirtualNgon) Indices() []int { return ng.indices }

// Gains iterates the fan triplets and returns the first that succeeds,
// with the virtual centre's gain folded equally (1/N each) into all N
// real loudspeakers.
func (ng *VirtualNgon) Gains(dir r3.Vector, out []float64) {
	n := len(ng.indices)
	for i := range out[:n] {
		out[i] = 0
	}
	tmp := make([]float64, 3)
	for i := 0; i < n; i++ {
		ng.triplets[i].Gains(dir, tmp)
		if norm3(tmp) > tol {
			j := (i + 1) % n
			out[i] += tmp[1]
			out[j] += tmp[2]
			for k := 0; k < n; k++ {
				out[k] += ng.downmix * tmp[0]
			}
			return
		}
	}
}
