package panner

import "github.com/golang/geo/r3"

// Triplet owns three loudspeaker indices and pans by inverting the 3x3
// matrix of their unit direction vectors (Rec. ITU-R BS.2127-0
// sec. 6.1.2.2).
type Triplet struct {
	indices  []int
	a, b, c  r3.Vector
}

// NewTriplet builds a Triplet region over the given output indices and
// their unit direction vectors, in the same order.
func NewTriplet(indices []int, dirs []r3.Vector) *Triplet {
	if len(indices) != 3 || len(dirs) != 3 {
		panic("panner: Triplet requires exactly 3 indices/directions")
	}
	return &Triplet{indices: indices, a: dirs[0], b: dirs[1], c: dirs[2]}
}

func (t *Triplet) Indices() []int { return t.indices }

// Gains computes the triplet's gain for dir, writing into out (len 3).
// If any component would be negative beyond -tol the triplet does not
// own dir and the zero vector is returned.
func (t *Triplet) Gains(dir r3.Vector, out []float64) {
	out[0], out[1], out[2] = 0, 0, 0
	w0, w1, w2, ok := tripletWeights(t.a, t.b, t.c, dir)
	if !ok {
		return
	}
	if w0 < -tol || w1 < -tol || w2 < -tol {
		return
	}
	n := norm3([]float64{w0, w1, w2})
	if n <= 0 {
		return
	}
	out[0], out[1], out[2] = w0/n, w1/n, w2/n
}
