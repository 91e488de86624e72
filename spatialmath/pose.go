package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose: a position in 3D space and an orientation.
// Distances are in meters.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// NewZeroPose returns a pose at (0,0,0) with the zero orientation.
func NewZeroPose() Pose {
	return newBasicPose(r3.Vector{}, NewZeroOrientation())
}

// NewPoseFromPoint takes in a 3D point and stores it as a Pose with the zero orientation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return newBasicPose(point, NewZeroOrientation())
}

// NewPose takes in a 3D point and an orientation and returns the Pose of it.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(p)
	}
	return newBasicPose(p, o)
}

// NewPoseFromDH creates a Pose from the classic proximal Denavit-Hartenberg
// parameters: link length a, link offset d, and link twist alpha (radians).
func NewPoseFromDH(a, d, alpha float64) Pose {
	m := mgl64.Ident4()

	m.Set(1, 1, math.Cos(alpha))
	m.Set(1, 2, -1*math.Sin(alpha))

	m.Set(2, 0, 0)
	m.Set(2, 1, math.Sin(alpha))
	m.Set(2, 2, math.Cos(alpha))

	qRot := mgl64.Mat4ToQuat(m)
	return newBasicPose(
		r3.Vector{X: a, Y: 0, Z: d},
		NewOrientationFromQuaternion(quat.Number{Real: qRot.W, Imag: qRot.X(), Jmag: qRot.Y(), Kmag: qRot.Z()}),
	)
}

// Compose treats Poses as functions A(x) and B(x), and produces a new function C(x) = A(B(x)):
// the pose of b within the frame described by a.
func Compose(a, b Pose) Pose {
	qa := a.Orientation().Quaternion()
	return newBasicPose(
		a.Point().Add(QuatRotatePoint(qa, b.Point())),
		NewOrientationFromQuaternion(quat.Mul(qa, b.Orientation().Quaternion())),
	)
}

// QuatRotatePoint rotates the given point by the given unit quaternion.
func QuatRotatePoint(q quat.Number, pt r3.Vector) r3.Vector {
	p := quat.Number{Imag: pt.X, Jmag: pt.Y, Kmag: pt.Z}
	rotated := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// PoseAlmostCoincident checks if two poses are approximately the same, within a mm of
// translation and the orientation tolerance of OrientationAlmostEqual.
func PoseAlmostCoincident(a, b Pose) bool {
	return PoseAlmostCoincidentEps(a, b, 1e-3)
}

// PoseAlmostCoincidentEps checks if two poses are approximately the same, within epsilon
// meters of translation and the orientation tolerance of OrientationAlmostEqual.
func PoseAlmostCoincidentEps(a, b Pose, epsilon float64) bool {
	return OrientationAlmostEqual(a.Orientation(), b.Orientation()) &&
		a.Point().Sub(b.Point()).Norm() < epsilon
}

type basicPose struct {
	point       r3.Vector
	orientation Orientation
}

func newBasicPose(point r3.Vector, orientation Orientation) *basicPose {
	return &basicPose{point, orientation}
}

func (p *basicPose) Point() r3.Vector {
	return p.point
}

func (p *basicPose) Orientation() Orientation {
	return p.orientation
}
