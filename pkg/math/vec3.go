// Package math provides the vector, matrix and rotation types used by the
// polyface construction engine.
package math

import "math"

// Vec3 is a 3D vector or point.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Negate returns -v.
func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// LengthSquared returns the squared magnitude.
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalize returns a unit vector, or the zero vector if v has no length.
func (v Vec3) Normalize() Vec3 {
	u, _ := v.Unit()
	return u
}

// Unit returns a unit vector and reports whether v had a usable length.
func (v Vec3) Unit() (Vec3, bool) {
	l := v.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec3{}, false
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}, true
}

// Distance returns the distance to another point.
func (v Vec3) Distance(other Vec3) float64 {
	return v.Sub(other).Length()
}

// Lerp returns the point at fraction t from v to other.
func (v Vec3) Lerp(other Vec3, t float64) Vec3 {
	return Vec3{
		v.X + t*(other.X-v.X),
		v.Y + t*(other.Y-v.Y),
		v.Z + t*(other.Z-v.Z),
	}
}

// IsFinite reports whether all components are finite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// AlmostEqual reports whether v and other are within tol of each other.
func (v Vec3) AlmostEqual(other Vec3, tol float64) bool {
	return v.Distance(other) <= tol
}

// IsParallelTo reports whether v and other point in the same direction.
// tol bounds the sine of the angle between them. Zero vectors are never
// parallel to anything.
func (v Vec3) IsParallelTo(other Vec3, tol float64) bool {
	a, okA := v.Unit()
	b, okB := other.Unit()
	if !okA || !okB {
		return false
	}
	return a.Dot(b) > 0 && a.Cross(b).Length() <= tol
}

// AngleTo returns the unsigned angle between v and other in radians.
func (v Vec3) AngleTo(other Vec3) float64 {
	return math.Atan2(v.Cross(other).Length(), v.Dot(other))
}

// Perpendicular returns a unit vector perpendicular to v.
func (v Vec3) Perpendicular() Vec3 {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	// Cross with the axis least aligned with v.
	var axis Vec3
	switch {
	case ax <= ay && ax <= az:
		axis = Vec3{1, 0, 0}
	case ay <= az:
		axis = Vec3{0, 1, 0}
	default:
		axis = Vec3{0, 0, 1}
	}
	return v.Cross(axis).Normalize()
}

// XY returns the XY components as Vec2.
func (v Vec3) XY() Vec2 {
	return Vec2{v.X, v.Y}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
