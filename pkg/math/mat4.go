package math

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularMatrix is returned when a matrix has no inverse.
var ErrSingularMatrix = errors.New("singular matrix")

// Mat4 is a 4x4 affine matrix in column-major order.
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float64

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y, z float64) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// FromFrame returns the matrix whose columns are the given axes and whose
// translation is origin.
func FromFrame(origin, x, y, z Vec3) Mat4 {
	return Mat4{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		origin.X, origin.Y, origin.Z, 1,
	}
}

// RotateAxis creates a rotation matrix around an arbitrary axis through the
// origin. axis should be normalized, angle is in radians.
func RotateAxis(axis Vec3, angle float64) Mat4 {
	c := math.Cos(angle)
	s := math.Sin(angle)
	t := 1 - c

	x, y, z := axis.X, axis.Y, axis.Z

	return Mat4{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y, 0,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x, 0,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c, 0,
		0, 0, 0, 1,
	}
}

// RotateAbout creates a rotation around the axis through center.
func RotateAbout(center, axis Vec3, angle float64) Mat4 {
	return Translate(center).Mul(RotateAxis(axis, angle)).Mul(Translate(center.Negate()))
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a point (w=1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}

// TransformDirection transforms a direction vector (ignores translation).
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// TransposeTransformDirection multiplies d by the transpose of the upper
// 3x3 part. Applied to an inverse matrix it maps surface normals.
func (m Mat4) TransposeTransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[1]*d.Y + m[2]*d.Z,
		m[4]*d.X + m[5]*d.Y + m[6]*d.Z,
		m[8]*d.X + m[9]*d.Y + m[10]*d.Z,
	}
}

// Column returns one of the first three columns as a vector.
func (m Mat4) Column(i int) Vec3 {
	return Vec3{m[i*4], m[i*4+1], m[i*4+2]}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// IsFinite reports whether every element is finite.
func (m Mat4) IsFinite() bool {
	for _, v := range m {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

func (m Mat4) dense() *mat.Dense {
	d := mat.NewDense(4, 4, nil)
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			d.Set(row, col, m[col*4+row])
		}
	}
	return d
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float64 {
	return mat.Det(m.dense())
}

// Inverse returns the inverse of the matrix.
// Returns ErrSingularMatrix (and the identity) if the matrix cannot be
// inverted.
func (m Mat4) Inverse() (Mat4, error) {
	if !m.IsFinite() || m.Determinant() == 0 {
		return Identity(), ErrSingularMatrix
	}
	var inv mat.Dense
	if err := inv.Inverse(m.dense()); err != nil {
		return Identity(), ErrSingularMatrix
	}

	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] = inv.At(row, col)
		}
	}
	if !result.IsFinite() {
		return Identity(), ErrSingularMatrix
	}
	return result, nil
}
