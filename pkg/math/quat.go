package math

import "math"

// Quat is a rotation quaternion with vector part (X, Y, Z) and scalar W.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns the quaternion of no rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle returns the rotation by angle radians about axis,
// counterclockwise when looking down the axis. The axis need not be unit
// length; a zero axis gives the identity.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	u, ok := axis.Unit()
	if !ok {
		return QuatIdentity()
	}
	s, c := math.Sincos(angle / 2)
	return fromParts(u.Scale(s), c)
}

func fromParts(v Vec3, w float64) Quat {
	return Quat{X: v.X, Y: v.Y, Z: v.Z, W: w}
}

func (q Quat) vector() Vec3 {
	return Vec3{q.X, q.Y, q.Z}
}

// Normalize returns q scaled to unit length, or the identity when q is
// (nearly) zero.
func (q Quat) Normalize() Quat {
	n := math.Sqrt(q.vector().LengthSquared() + q.W*q.W)
	if n < 1e-12 {
		return QuatIdentity()
	}
	return fromParts(q.vector().Scale(1/n), q.W/n)
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return fromParts(q.vector().Negate(), q.W)
}

// Mul returns q*other, the rotation other followed by q.
func (q Quat) Mul(other Quat) Quat {
	a, b := q.vector(), other.vector()
	v := b.Scale(q.W).Add(a.Scale(other.W)).Add(a.Cross(b))
	return fromParts(v, q.W*other.W-a.Dot(b))
}

// Rotate applies the rotation to a vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	q = q.Normalize()
	u := q.vector()
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// ToMat4 returns the rotation as a matrix with no translation.
func (q Quat) ToMat4() Mat4 {
	return FromFrame(Vec3{}, q.Rotate(Vec3{X: 1}), q.Rotate(Vec3{Y: 1}), q.Rotate(Vec3{Z: 1}))
}
