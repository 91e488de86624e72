package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func TestNewRotationMatrix(t *testing.T) {
	rm, err := NewRotationMatrix([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rm.Quaternion(), test.ShouldResemble, quat.Number{Real: 1})

	_, err = NewRotationMatrix([]float64{1, 0, 0})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "exactly 9 elements")
}

func TestQuatToRotationMatrix(t *testing.T) {
	// 90 degrees about z maps the x axis onto the y axis
	rm := (&EulerAngles{Yaw: math.Pi / 2}).RotationMatrix()
	test.That(t, rm.At(0, 0), test.ShouldAlmostEqual, 0)
	test.That(t, rm.At(0, 1), test.ShouldAlmostEqual, -1)
	test.That(t, rm.At(1, 0), test.ShouldAlmostEqual, 1)
	test.That(t, rm.At(2, 2), test.ShouldAlmostEqual, 1)

	row := rm.Row(1)
	test.That(t, row.X, test.ShouldAlmostEqual, 1)
	test.That(t, row.Y, test.ShouldAlmostEqual, 0)
	test.That(t, row.Z, test.ShouldAlmostEqual, 0)

	// the matrix rotates vectors the same way the quaternion does
	pt := r3.Vector{X: 0.3, Y: -1.2, Z: 0.5}
	want := QuatRotatePoint(q45x, pt)
	rm45 := QuatToRotationMatrix(q45x)
	got := r3.Vector{X: rm45.Row(0).Dot(pt), Y: rm45.Row(1).Dot(pt), Z: rm45.Row(2).Dot(pt)}
	test.That(t, got.X, test.ShouldAlmostEqual, want.X)
	test.That(t, got.Y, test.ShouldAlmostEqual, want.Y)
	test.That(t, got.Z, test.ShouldAlmostEqual, want.Z)
}

func TestRotationMatrixRoundTrip(t *testing.T) {
	// near-pi rotations about each axis drive every branch of the
	// matrix to quaternion conversion
	for _, o := range []Orientation{
		&EulerAngles{Roll: math.Pi / 6, Pitch: -math.Pi / 5, Yaw: math.Pi / 3},
		&R4AA{Theta: math.Pi - 1e-3, RX: 1},
		&R4AA{Theta: math.Pi - 1e-3, RY: 1},
		&R4AA{Theta: math.Pi - 1e-3, RZ: 1},
		NewZeroOrientation(),
	} {
		back := o.RotationMatrix().Quaternion()
		test.That(t, QuaternionAlmostEqual(back, o.Quaternion(), 1e-8), test.ShouldBeTrue)
	}
}

func TestRotationMatrixViews(t *testing.T) {
	rm := (&EulerAngles{Yaw: math.Pi / 2}).RotationMatrix()
	test.That(t, rm.RotationMatrix(), test.ShouldEqual, rm)
	test.That(t, rm.EulerAngles().Yaw, test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, rm.AxisAngles().Theta, test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, rm.AxisAngles().RZ, test.ShouldAlmostEqual, 1)
}
