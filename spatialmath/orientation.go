// Package spatialmath defines spatial mathematical operations.
package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/michaelharrison1/DH-Parameter-Visualization/utils"
)

// Orientation is an interface used to express the different parameterizations of the
// orientation of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	Quaternion() quat.Number
	EulerAngles() *EulerAngles
	AxisAngles() *R4AA
	RotationMatrix() *RotationMatrix
}

// NewZeroOrientation returns an orientation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{1, 0, 0, 0}
}

// NewOrientationFromQuaternion returns an Orientation from the given quaternion.
func NewOrientationFromQuaternion(q quat.Number) Orientation {
	qq := quaternion(q)
	return &qq
}

// OrientationAlmostEqual will return a bool describing whether 2 orientations
// are approximately the same.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}

// OrientationBetween returns the orientation representing the difference between the
// two given Orientations.
func OrientationBetween(o1, o2 Orientation) Orientation {
	q := quaternion(quat.Mul(o2.Quaternion(), quat.Conj(o1.Quaternion())))
	return &q
}

// AngleBetweenDegrees returns the magnitude in degrees of the single rotation that takes
// o1 to o2, i.e. the shortest arc between the two orientations. The result is in [0, 180].
// We use quaternion/angle axis for this because distances are well-defined.
func AngleBetweenDegrees(o1, o2 Orientation) float64 {
	return utils.RadToDeg(QuatToR4AA(OrientationBetween(o1, o2).Quaternion()).Theta)
}

// QuaternionAlmostEqual returns whether two quaternions represent nearly the same
// orientation, given a tolerance on the rotation angle between them. q and -q describe
// the same orientation and compare as equal.
func QuaternionAlmostEqual(q1, q2 quat.Number, tol float64) bool {
	diff := quat.Mul(q1, quat.Conj(q2))
	return math.Abs(QuatToR4AA(diff).Theta) < tol
}

// Normalize a quaternion, returning its versor (unit quaternion).
func Normalize(q quat.Number) quat.Number {
	length := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if math.Abs(length-1.0) < 1e-10 {
		return q
	}
	if length == 0 {
		return quat.Number{Real: 1}
	}
	if length == math.Inf(1) {
		length = float64(math.MaxFloat64)
	}
	return quat.Number{q.Real / length, q.Imag / length, q.Jmag / length, q.Kmag / length}
}

// quaternion is an orientation in quaternion representation.
type quaternion quat.Number

// Quaternion returns orientation in quaternion representation.
func (q *quaternion) Quaternion() quat.Number {
	return quat.Number(*q)
}

// EulerAngles returns orientation in Euler angle representation.
func (q *quaternion) EulerAngles() *EulerAngles {
	return QuatToEulerAngles(q.Quaternion())
}

// AxisAngles returns the orientation in axis angle representation.
func (q *quaternion) AxisAngles() *R4AA {
	return QuatToR4AA(q.Quaternion())
}

// RotationMatrix returns the orientation in rotation matrix representation.
func (q *quaternion) RotationMatrix() *RotationMatrix {
	return QuatToRotationMatrix(q.Quaternion())
}
