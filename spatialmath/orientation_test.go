package spatialmath

import (
	"math"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

// represent a 45 degree rotation around the x axis in all the representations.
var (
	th    = math.Pi / 4.
	q45x  = quat.Number{Real: math.Cos(th / 2.), Imag: math.Sin(th / 2.)} // in quaternion representation
	aa45x = &R4AA{th, 1., 0., 0.}                                        // in axis-angle representation
	ea45x = &EulerAngles{Roll: th, Pitch: 0, Yaw: 0}                     // in euler angle representation
)

func TestZeroOrientation(t *testing.T) {
	zero := NewZeroOrientation()
	test.That(t, zero.Quaternion(), test.ShouldResemble, quat.Number{Real: 1})
	test.That(t, zero.EulerAngles(), test.ShouldResemble, NewEulerAngles())
	test.That(t, zero.AxisAngles().Theta, test.ShouldEqual, 0)
}

func TestQuaternions(t *testing.T) {
	o := NewOrientationFromQuaternion(q45x)
	test.That(t, o.AxisAngles().Theta, test.ShouldAlmostEqual, aa45x.Theta)
	test.That(t, o.AxisAngles().RX, test.ShouldAlmostEqual, aa45x.RX)
	test.That(t, o.AxisAngles().RY, test.ShouldAlmostEqual, aa45x.RY)
	test.That(t, o.AxisAngles().RZ, test.ShouldAlmostEqual, aa45x.RZ)
	test.That(t, o.EulerAngles().Roll, test.ShouldAlmostEqual, ea45x.Roll)
	test.That(t, o.EulerAngles().Pitch, test.ShouldAlmostEqual, ea45x.Pitch)
	test.That(t, o.EulerAngles().Yaw, test.ShouldAlmostEqual, ea45x.Yaw)
}

func TestEulerAngles(t *testing.T) {
	q := ea45x.Quaternion()
	test.That(t, q.Real, test.ShouldAlmostEqual, q45x.Real)
	test.That(t, q.Imag, test.ShouldAlmostEqual, q45x.Imag)
	test.That(t, q.Jmag, test.ShouldAlmostEqual, q45x.Jmag)
	test.That(t, q.Kmag, test.ShouldAlmostEqual, q45x.Kmag)

	ea := EulerAnglesFromDegrees(45, 0, 0)
	test.That(t, ea.Roll, test.ShouldAlmostEqual, th)
	test.That(t, ea.Pitch, test.ShouldEqual, 0)
	test.That(t, ea.Yaw, test.ShouldEqual, 0)
}

func TestEulerRoundTrip(t *testing.T) {
	for _, ea := range []*EulerAngles{
		{Roll: math.Pi / 6, Pitch: -math.Pi / 5, Yaw: math.Pi / 3},
		{Roll: -math.Pi / 2, Pitch: math.Pi / 7, Yaw: 0},
		{Roll: 0, Pitch: 0, Yaw: math.Pi - 1e-3},
	} {
		back := QuatToEulerAngles(ea.Quaternion())
		test.That(t, back.Roll, test.ShouldAlmostEqual, ea.Roll, 1e-8)
		test.That(t, back.Pitch, test.ShouldAlmostEqual, ea.Pitch, 1e-8)
		test.That(t, back.Yaw, test.ShouldAlmostEqual, ea.Yaw, 1e-8)
	}
}

func TestAxisAngles(t *testing.T) {
	q := aa45x.ToQuat()
	test.That(t, q.Real, test.ShouldAlmostEqual, q45x.Real)
	test.That(t, q.Imag, test.ShouldAlmostEqual, q45x.Imag)

	// a zero axis yields no rotation rather than a panic
	zero := &R4AA{Theta: 1}
	test.That(t, zero.ToQuat(), test.ShouldResemble, quat.Number{Real: 1})

	back := QuatToR4AA(q45x)
	test.That(t, back.Theta, test.ShouldAlmostEqual, th)
	test.That(t, back.RX, test.ShouldAlmostEqual, 1)

	// q and -q represent the same rotation
	neg := QuatToR4AA(quat.Number{Real: -q45x.Real, Imag: -q45x.Imag})
	test.That(t, neg.Theta, test.ShouldAlmostEqual, th)
	test.That(t, neg.RX, test.ShouldAlmostEqual, 1)
}

func TestOrientationBetween(t *testing.T) {
	o1 := &EulerAngles{Yaw: math.Pi / 2}
	diff := OrientationBetween(NewZeroOrientation(), o1)
	test.That(t, OrientationAlmostEqual(diff, o1), test.ShouldBeTrue)
}

func TestAngleBetweenDegrees(t *testing.T) {
	zero := NewZeroOrientation()
	o90z := &EulerAngles{Yaw: math.Pi / 2}
	o10x := &EulerAngles{Roll: math.Pi / 18}

	test.That(t, AngleBetweenDegrees(zero, zero), test.ShouldAlmostEqual, 0)
	test.That(t, AngleBetweenDegrees(zero, o90z), test.ShouldAlmostEqual, 90)
	// commutative
	test.That(t, AngleBetweenDegrees(o90z, zero), test.ShouldAlmostEqual, 90)
	test.That(t, AngleBetweenDegrees(zero, o10x), test.ShouldAlmostEqual, 10)
	test.That(t, AngleBetweenDegrees(o90z, o10x), test.ShouldBeBetween, 89, 91)

	// always the shortest arc
	o270z := &EulerAngles{Yaw: 3 * math.Pi / 2}
	test.That(t, AngleBetweenDegrees(zero, o270z), test.ShouldAlmostEqual, 90, 1e-8)
}

func TestQuaternionAlmostEqual(t *testing.T) {
	test.That(t, QuaternionAlmostEqual(q45x, q45x, 1e-6), test.ShouldBeTrue)
	negated := quat.Number{Real: -q45x.Real, Imag: -q45x.Imag}
	test.That(t, QuaternionAlmostEqual(q45x, negated, 1e-6), test.ShouldBeTrue)
	other := (&EulerAngles{Roll: th + 1e-2}).Quaternion()
	test.That(t, QuaternionAlmostEqual(q45x, other, 1e-6), test.ShouldBeFalse)
}

func TestNormalize(t *testing.T) {
	n := Normalize(quat.Number{Real: 0, Imag: 2, Jmag: 0, Kmag: 0})
	test.That(t, n, test.ShouldResemble, quat.Number{Imag: 1})
	test.That(t, Normalize(quat.Number{}), test.ShouldResemble, quat.Number{Real: 1})
	already := Normalize(q45x)
	test.That(t, already, test.ShouldResemble, q45x)
}
