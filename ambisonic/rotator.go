package ambisonic

import "math"

// RotationOrder selects the order in which the per-axis rotations
// compose into the soundfield rotation matrix.
type RotationOrder int

const (
	YawPitchRoll RotationOrder = iota
	YawRollPitch
	PitchYawRoll
	PitchRollYaw
	RollYawPitch
	RollPitchYaw
)

// Orientation is a head orientation in radians.
type Orientation struct {
	Yaw, Pitch, Roll float64
}

var (
	sqrt3o2  = 0.5 * math.Sqrt(3)
	sqrt6o4  = 0.25 * math.Sqrt(6)
	sqrt10o4 = 0.25 * math.Sqrt(10)
	sqrt15o4 = 0.25 * math.Sqrt(15)
	sqrt15o2 = 0.5 * math.Sqrt(15)
)

// Rotator rotates a B-format soundfield by a head orientation. The
// per-axis rotation matrices come from the closed-form spherical
// harmonic rotation formulae up to third order; orientation changes
// cross-fade the composed matrix coefficient-by-coefficient over the
// configured fade time.
type Rotator struct {
	order         int
	nCh           int
	rotOrder      RotationOrder
	orientation   Orientation
	fadingSamples int
	fadingCounter int

	target  [][]float64
	current [][]float64
	delta   [][]float64
	tmpMat  [][]float64
	yawM    [][]float64
	pitchM  [][]float64
	rollM   [][]float64

	tempBuf *BFormat
}

// NewRotator builds a rotator for the given order and block size.
// fadeTimeMilliSec scaled by sampleRate sets the matrix cross-fade
// length applied on SetOrientation.
func NewRotator(order, sampleRate, maxBlockSize int, fadeTimeMilliSec float64) *Rotator {
	n := ChannelCount(order)
	r := &Rotator{
		order:         order,
		nCh:           n,
		rotOrder:      YawPitchRoll,
		fadingSamples: int(math.Round(0.001 * fadeTimeMilliSec * float64(sampleRate))),
		target:        newMatrix(n),
		current:       newMatrix(n),
		delta:         newMatrix(n),
		tmpMat:        newMatrix(n),
		yawM:          newMatrix(n),
		pitchM:        newMatrix(n),
		rollM:         newMatrix(n),
		tempBuf:       NewBFormat(order, maxBlockSize),
	}
	r.Reset()
	return r
}

func newMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

func zeroMatrix(m [][]float64) {
	for i := range m {
		for j := range m[i] {
			m[i][j] = 0
		}
	}
}

// Reset recomputes the target matrix for the stored orientation and
// snaps the current matrix to it, cancelling any cross-fade.
func (r *Rotator) Reset() {
	r.updateTargetMatrix()
	for i := range r.current {
		copy(r.current[i], r.target[i])
	}
	r.fadingCounter = r.fadingSamples
}

// SetOrientation is edge-triggered: an orientation equal to the current
// target starts no new cross-fade. A differing one recomputes the
// target matrix and fades toward it over the configured fade time.
func (r *Rotator) SetOrientation(o Orientation) {
	if r.orientation == o {
		return
	}
	r.orientation = o
	r.updateTargetMatrix()

	for i := 0; i < r.nCh; i++ {
		for j := 0; j < r.nCh; j++ {
			if r.fadingSamples == 0 {
				r.delta[i][j] = 0
			} else {
				r.delta[i][j] = (r.target[i][j] - r.current[i][j]) / float64(r.fadingSamples)
			}
		}
	}
	r.fadingCounter = 0
	if r.fadingSamples == 0 {
		for i := range r.current {
			copy(r.current[i], r.target[i])
		}
		r.fadingCounter = r.fadingSamples
	}
}

// Orientation returns the current target orientation.
func (r *Rotator) Orientation() Orientation { return r.orientation }

// SetRotationOrder changes the axis composition order, retargeting the
// rotation matrix if the order actually changes.
func (r *Rotator) SetRotationOrder(ro RotationOrder) {
	if r.rotOrder == ro {
		return
	}
	r.rotOrder = ro
	o := r.orientation
	// Force a retarget even though the orientation value is unchanged.
	r.orientation = Orientation{Yaw: o.Yaw + 1}
	r.SetOrientation(o)
}

// Process rotates src[:n] in place.
func (r *Rotator) Process(src *BFormat, n int) {
	r.tempBuf.CopyFrom(src)
	for _, ch := range src.Channels {
		for i := 0; i < n; i++ {
			ch[i] = 0
		}
	}

	nFade := r.fadingSamples - r.fadingCounter
	if nFade > n {
		nFade = n
	}
	if nFade < 0 {
		nFade = 0
	}

	if nFade > 0 {
		for iOut := 0; iOut < r.nCh; iOut++ {
			for iIn := 0; iIn < r.nCh; iIn++ {
				cur := r.current[iOut][iIn]
				d := r.delta[iOut][iIn]
				if math.Abs(cur) <= 1e-6 && math.Abs(r.target[iOut][iIn]) <= 1e-6 {
					r.current[iOut][iIn] = cur + d*float64(nFade)
					continue
				}
				out := src.Channels[iOut]
				in := r.tempBuf.Channels[iIn]
				for i := 0; i < nFade; i++ {
					out[i] += cur * in[i]
					cur += d
				}
				r.current[iOut][iIn] = cur
			}
		}
		r.fadingCounter += nFade
		if r.fadingCounter >= r.fadingSamples {
			for i := range r.current {
				copy(r.current[i], r.target[i])
			}
		}
	}

	for iOut := 0; iOut < r.nCh; iOut++ {
		out := src.Channels[iOut]
		for iIn := 0; iIn < r.nCh; iIn++ {
			coeff := r.target[iOut][iIn]
			if math.Abs(coeff) <= 1e-6 {
				continue
			}
			in := r.tempBuf.Channels[iIn]
			for i := nFade; i < n; i++ {
				out[i] += coeff * in[i]
			}
		}
	}
}

func (r *Rotator) updateTargetMatrix() {
	r.yawMatrix(r.orientation.Yaw, r.yawM)
	r.pitchMatrix(r.orientation.Pitch, r.pitchM)
	r.rollMatrix(r.orientation.Roll, r.rollM)

	switch r.rotOrder {
	case YawRollPitch:
		multiplyMat(r.rollM, r.yawM, r.tmpMat)
		multiplyMat(r.pitchM, r.tmpMat, r.target)
	case PitchYawRoll:
		multiplyMat(r.yawM, r.pitchM, r.tmpMat)
		multiplyMat(r.rollM, r.tmpMat, r.target)
	case PitchRollYaw:
		multiplyMat(r.rollM, r.pitchM, r.tmpMat)
		multiplyMat(r.yawM, r.tmpMat, r.target)
	case RollYawPitch:
		multiplyMat(r.yawM, r.rollM, r.tmpMat)
		multiplyMat(r.pitchM, r.tmpMat, r.target)
	case RollPitchYaw:
		multiplyMat(r.pitchM, r.rollM, r.tmpMat)
		multiplyMat(r.yawM, r.tmpMat, r.target)
	default: // YawPitchRoll
		multiplyMat(r.pitchM, r.yawM, r.tmpMat)
		multiplyMat(r.rollM, r.tmpMat, r.target)
	}
}

func multiplyMat(a, b, out [][]float64) {
	n := len(out)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var s float64
			for k := 0; k < n; k++ {
				s += a[i][k] * b[k][j]
			}
			out[i][j] = s
		}
	}
}

func (r *Rotator) yawMatrix(yaw float64, m [][]float64) {
	zeroMatrix(m)
	m[0][0] = 1
	if r.order < 1 {
		return
	}
	cosYaw, sinYaw := math.Cos(yaw), math.Sin(yaw)
	m[1][1] = cosYaw
	m[1][3] = -sinYaw
	m[2][2] = 1
	m[3][1] = sinYaw
	m[3][3] = cosYaw

	if r.order < 2 {
		return
	}
	cos2Yaw, sin2Yaw := math.Cos(2*yaw), math.Sin(2*yaw)
	m[4][4] = cos2Yaw
	m[4][8] = -sin2Yaw
	m[5][5] = cosYaw
	m[5][7] = -sinYaw
	m[6][6] = 1
	m[7][5] = sinYaw
	m[7][7] = cosYaw
	m[8][4] = sin2Yaw
	m[8][8] = cos2Yaw

	if r.order < 3 {
		return
	}
	cos3Yaw, sin3Yaw := math.Cos(3*yaw), math.Sin(3*yaw)
	m[9][9] = cos3Yaw
	m[9][15] = -sin3Yaw
	m[10][10] = cos2Yaw
	m[10][14] = -sin2Yaw
	m[11][11] = cosYaw
	m[11][13] = -sinYaw
	m[12][12] = 1
	m[13][11] = sinYaw
	m[13][13] = cosYaw
	m[14][10] = sin2Yaw
	m[14][14] = cos2Yaw
	m[15][9] = sin3Yaw
	m[15][15] = cos3Yaw
}

func (r *Rotator) pitchMatrix(pitch float64, m [][]float64) {
	zeroMatrix(m)
	m[0][0] = 1
	if r.order < 1 {
		return
	}
	cosP, sinP := math.Cos(pitch), math.Sin(pitch)
	m[1][1] = 1
	m[2][2] = cosP
	m[2][3] = sinP
	m[3][2] = -sinP
	m[3][3] = cosP

	if r.order < 2 {
		return
	}
	cos2P, sin2P := math.Cos(2*pitch), math.Sin(2*pitch)
	cosPSq, sinPSq := cosP*cosP, sinP*sinP
	m[4][4] = cosP
	m[4][5] = -sinP
	m[5][4] = sinP
	m[5][5] = cosP
	m[6][6] = 1 - 1.5*sinPSq
	m[6][7] = sqrt3o2 * sin2P
	m[6][8] = sqrt3o2 * sinPSq
	m[7][6] = -sqrt3o2 * sin2P
	m[7][7] = cos2P
	m[7][8] = 0.5 * sin2P
	m[8][6] = sqrt3o2 * sinPSq
	m[8][7] = -0.5 * sin2P
	m[8][8] = 0.5 * (1 + cosPSq)

	if r.order < 3 {
		return
	}
	sinPCu := sinPSq * sinP
	m[9][9] = 0.25 * (3*cosPSq + 1)
	m[9][10] = -sqrt6o4 * sin2P
	m[9][11] = sqrt15o4 * sinPSq
	m[10][9] = sqrt6o4 * sin2P
	m[10][10] = cos2P
	m[10][11] = -sqrt10o4 * sin2P
	m[11][9] = sqrt15o4 * sinPSq
	m[11][10] = sqrt10o4 * sin2P
	m[11][11] = 1 - 1.25*sinPSq
	m[12][12] = 0.5 * cosP * (5*cosPSq - 3)
	m[12][13] = -sqrt6o4 * sinP * (5*sinPSq - 4)
	m[12][14] = -sqrt15o2 * cosP * (cosPSq - 1)
	m[12][15] = sqrt10o4 * sinPCu
	m[13][12] = sqrt6o4 * sinP * (5*sinPSq - 4)
	m[13][13] = 0.25 * cosP * (15*cosPSq - 11)
	m[13][14] = -sqrt10o4 * sinP * (3*sinPSq - 2)
	m[13][15] = -sqrt15o4 * cosP * (cosPSq - 1)
	m[14][12] = -sqrt15o2 * cosP * (cosPSq - 1)
	m[14][13] = sqrt10o4 * sinP * (3*sinPSq - 2)
	m[14][14] = 0.5 * cosP * (3*cosPSq - 1)
	m[14][15] = -sqrt6o4 * sinP * (sinPSq - 2)
	m[15][12] = -sqrt10o4 * sinPCu
	m[15][13] = -sqrt15o4 * cosP * (cosPSq - 1)
	m[15][14] = sqrt6o4 * sinP * (sinPSq - 2)
	m[15][15] = 0.25 * cosP * (cosPSq + 3)
}

func (r *Rotator) rollMatrix(roll float64, m [][]float64) {
	zeroMatrix(m)
	m[0][0] = 1
	if r.order < 1 {
		return
	}
	cosR, sinR := math.Cos(roll), math.Sin(roll)
	m[1][1] = cosR
	m[1][2] = sinR
	m[2][1] = -sinR
	m[2][2] = cosR
	m[3][3] = 1

	if r.order < 2 {
		return
	}
	cos2R, sin2R := math.Cos(2*roll), math.Sin(2*roll)
	cosRSq, sinRSq := cosR*cosR, sinR*sinR
	m[4][4] = cosR
	m[4][7] = sinR
	m[5][5] = cos2R
	m[5][6] = sqrt3o2 * sin2R
	m[5][8] = 0.5 * sin2R
	m[6][5] = -sqrt3o2 * sin2R
	m[6][6] = 1 - 1.5*sinRSq
	m[6][8] = -sqrt3o2 * sinRSq
	m[7][4] = -sinR
	m[7][7] = cosR
	m[8][5] = -0.5 * sin2R
	m[8][6] = -sqrt3o2 * sinRSq
	m[8][8] = 0.5 * (cosRSq + 1)

	if r.order < 3 {
		return
	}
	sinRCu := sinRSq * sinR
	m[9][9] = 0.25 * cosR * (cosRSq + 3)
	m[9][11] = sqrt15o4 * cosR * (cosRSq - 1)
	m[9][12] = -sqrt10o4 * sinRCu
	m[9][14] = -sqrt6o4 * sinR * (sinRSq - 2)
	m[10][10] = cos2R
	m[10][13] = sqrt10o4 * sin2R
	m[10][15] = sqrt6o4 * sin2R
	m[11][9] = sqrt15o4 * cosR * (cosRSq - 1)
	m[11][11] = 0.25 * cosR * (15*cosRSq - 11)
	m[11][12] = -sqrt6o4 * sinR * (5*sinRSq - 4)
	m[11][14] = -sqrt10o4 * sinR * (3*sinRSq - 2)
	m[12][9] = sqrt10o4 * sinRCu
	m[12][11] = sqrt6o4 * sinR * (5*sinRSq - 4)
	m[12][12] = 0.5 * cosR * (5*cosRSq - 3)
	m[12][14] = sqrt15o2 * cosR * (cosRSq - 1)
	m[13][10] = -sqrt10o4 * sin2R
	m[13][13] = 1 - 1.25*sinRSq
	m[13][15] = -sqrt15o4 * sinRSq
	m[14][9] = sqrt6o4 * sinR * (sinRSq - 2)
	m[14][11] = sqrt10o4 * sinR * (3*sinRSq - 2)
	m[14][12] = sqrt15o2 * cosR * (cosRSq - 1)
	m[14][14] = 0.5 * cosR * (3*cosRSq - 1)
	m[15][10] = -sqrt6o4 * sin2R
	m[15][13] = -sqrt15o4 * sinRSq
	m[15][15] = 0.25 * (3*cosRSq + 1)
}
