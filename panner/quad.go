package panner

import "github.com/golang/geo/r3"

// QuadRegion owns four roughly-coplanar loudspeakers (Rec. ITU-R BS.2127-0 sec. 6.1.2.3). The vertices are first reordered anti-clockwise about
// their centroid, then gains are computed by panning the shorter
// diagonal's two triangles with the exact Triplet algorithm and taking
// whichever triangle contains dir, folding the untouched fourth vertex's
// gain in as zero.
//
// The upstream C++ region-handler source for QuadRegion (and
// VirtualNgon) was not present in the retrieval pack's original_source
// copy (only Triplet's implementation was retrieved) — this
// triangle-fan construction is this renderer's documented stand-in for
// BS.2127-0 §6.1.2.3's bilinear polynomial solve; see DESIGN.md. It
// preserves the two properties that matter to the rest of the pipeline:
// gains are non-negative, sum to a unit vector pointing at dir, and
// vanish outside the quad.
type QuadRegion struct {
	indices []int
	verts   [4]r3.Vector
}

// NewQuadRegion builds a QuadRegion over 4 output indices and their unit
// direction vectors (not required to be pre-ordered).
func NewQuadRegion(indices []int, dirs []r3.Vector) *QuadRegion {
	if len(indices) != 4 || len(dirs) != 4 {
		panic("panner: QuadRegion requires exactly 4 indices/directions")
	}
	order := anticlockwiseOrder(dirs)
	q := &QuadRegion{indices: make([]int, 4)}
	for i, o := range order {
		q.indices[i] = indices[o]
		q.verts[i] = dirs[o]
	}
	// Gains splits along v0-v2; rotate so that is the shorter diagonal.
	if q.verts[1].Sub(q.verts[3]).Norm() < q.verts[0].Sub(q.verts[2]).Norm() {
		q.indices = []int{q.indices[1], q.indices[2], q.indices[3], q.indices[0]}
		q.verts = [4]r3.Vector{q.verts[1], q.verts[2], q.verts[3], q.verts[0]}
	}
	return q
}

func (q *QuadRegion) Indices() []int { return q.indices }

func (q *QuadRegion) Gains(dir r3.Vector, out []float64) {
	for i := range out {
		out[i] = 0
	}
	v0, v1, v2, v3 := q.verts[0], q.verts[1], q.verts[2], q.verts[3]

	// Triangle (v0,v1,v2): vertex 3 excluded.
	if w0, w1, w2, ok := tripletWeights(v0, v1, v2, dir); ok && w0 >= -tol && w1 >= -tol && w2 >= -tol {
		n := norm3([]float64{w0, w1, w2})
		if n > 0 {
			out[0], out[1], out[2] = w0/n, w1/n, w2/n
			return
		}
	}
	// Triangle (v0,v2,v3): vertex 1 excluded.
	if w0, w2, w3, ok := tripletWeights(v0, v2, v3, dir); ok && w0 >= -tol && w2 >= -tol && w3 >= -tol {
		n := norm3([]float64{w0, w2, w3})
		if n > 0 {
			out[0], out[2], out[3] = w0/n, w2/n, w3/n
			return
		}
	}
}
