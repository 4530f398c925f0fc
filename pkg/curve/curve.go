// Package curve provides the curve primitives swept and ruled by the polyface
// builder: line segments, elliptic arcs, line strings, B-splines and nested
// regions, plus paths and regions assembled from them.
//
// Primitive is a closed set of types. Code that dispatches on it uses a type
// switch over Segment, Arc, LineString, *Bspline and ChildRegion and treats
// anything else as unsupported.
package curve

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/polyface/pkg/math"
)

// Curve errors.
var (
	ErrUnsupportedPrimitive = errors.New("unsupported curve primitive")
	ErrInvalidBspline       = errors.New("invalid bspline")
	ErrTooFewPoints         = errors.New("line string needs at least 2 points")
)

// Kind identifies a primitive type.
type Kind int

// Primitive kinds.
const (
	KindSegment Kind = iota
	KindArc
	KindLineString
	KindBspline
	KindChildRegion
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSegment:
		return "segment"
	case KindArc:
		return "arc"
	case KindLineString:
		return "linestring"
	case KindBspline:
		return "bspline"
	case KindChildRegion:
		return "region"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Primitive is one element of a path.
type Primitive interface {
	Kind() Kind
	isPrimitive()
}

// Segment is a straight line from Start to End.
type Segment struct {
	Start, End math.Vec3
}

// Kind implements Primitive.
func (Segment) Kind() Kind   { return KindSegment }
func (Segment) isPrimitive() {}

// Arc is an elliptic arc. The point at angle theta is
// Center + Vector0*cos(theta) + Vector90*sin(theta), for theta running from
// Start to Start+Sweep.
type Arc struct {
	Center, Vector0, Vector90 math.Vec3
	Start, Sweep              float64
}

// Kind implements Primitive.
func (Arc) Kind() Kind   { return KindArc }
func (Arc) isPrimitive() {}

// NewCircle returns a full circle of the given radius in the plane with the
// given normal.
func NewCircle(center, normal math.Vec3, radius float64) Arc {
	n := normal.Normalize()
	v0 := n.Perpendicular().Scale(radius)
	v90 := n.Cross(v0)
	return Arc{Center: center, Vector0: v0, Vector90: v90, Start: 0, Sweep: 2 * gomath.Pi}
}

// PointAtAngle evaluates the ellipse at angle theta.
func (a Arc) PointAtAngle(theta float64) math.Vec3 {
	c, s := gomath.Cos(theta), gomath.Sin(theta)
	return a.Center.Add(a.Vector0.Scale(c)).Add(a.Vector90.Scale(s))
}

// IsFullEllipse reports whether the arc sweeps a complete turn.
func (a Arc) IsFullEllipse() bool {
	return gomath.Abs(a.Sweep) >= 2*gomath.Pi-1e-10
}

// MaxRadius returns the larger of the two axis lengths.
func (a Arc) MaxRadius() float64 {
	return gomath.Max(a.Vector0.Length(), a.Vector90.Length())
}

// IsCircular reports whether the axes have equal length and are
// perpendicular.
func (a Arc) IsCircular() bool {
	r0, r90 := a.Vector0.Length(), a.Vector90.Length()
	tol := 1e-12 * gomath.Max(r0, r90)
	return gomath.Abs(r0-r90) <= tol && gomath.Abs(a.Vector0.Dot(a.Vector90)) <= tol*gomath.Max(r0, r90)
}

// Normal returns the unit normal of the ellipse plane.
func (a Arc) Normal() math.Vec3 {
	return a.Vector0.Cross(a.Vector90).Normalize()
}

// LineString is a polyline through Points.
type LineString struct {
	Points []math.Vec3
}

// Kind implements Primitive.
func (LineString) Kind() Kind   { return KindLineString }
func (LineString) isPrimitive() {}

// ChildRegion nests a path (usually a loop) inside a parity or union region.
type ChildRegion struct {
	Path *Path
}

// Kind implements Primitive.
func (ChildRegion) Kind() Kind   { return KindChildRegion }
func (ChildRegion) isPrimitive() {}

// TryGetLine returns the segment if p is one.
func TryGetLine(p Primitive) (Segment, bool) {
	s, ok := p.(Segment)
	return s, ok
}

// TryGetArc returns the arc if p is one.
func TryGetArc(p Primitive) (Arc, bool) {
	a, ok := p.(Arc)
	return a, ok
}

// GetLineStringPoints returns the points of a line string.
func GetLineStringPoints(p Primitive) ([]math.Vec3, bool) {
	ls, ok := p.(LineString)
	if !ok {
		return nil, false
	}
	return ls.Points, true
}

// GetBsplineProxy returns the bspline if p is one.
func GetBsplineProxy(p Primitive) (*Bspline, bool) {
	b, ok := p.(*Bspline)
	return b, ok && b != nil
}

// GetChildRegion returns the nested path if p is a child region.
func GetChildRegion(p Primitive) (*Path, bool) {
	c, ok := p.(ChildRegion)
	if !ok || c.Path == nil {
		return nil, false
	}
	return c.Path, true
}

// FractionToPointAndTangent evaluates p at fraction f in [0,1]. The tangent
// is the derivative with respect to f.
func FractionToPointAndTangent(p Primitive, f float64) (point, tangent math.Vec3, err error) {
	switch c := p.(type) {
	case Segment:
		return c.Start.Lerp(c.End, f), c.End.Sub(c.Start), nil
	case Arc:
		theta := c.Start + f*c.Sweep
		cs, sn := gomath.Cos(theta), gomath.Sin(theta)
		point = c.Center.Add(c.Vector0.Scale(cs)).Add(c.Vector90.Scale(sn))
		tangent = c.Vector0.Scale(-sn).Add(c.Vector90.Scale(cs)).Scale(c.Sweep)
		return point, tangent, nil
	case LineString:
		n := len(c.Points)
		if n < 2 {
			return math.Vec3{}, math.Vec3{}, ErrTooFewPoints
		}
		s := f * float64(n-1)
		i := int(gomath.Floor(s))
		if i < 0 {
			i = 0
		}
		if i > n-2 {
			i = n - 2
		}
		local := s - float64(i)
		edge := c.Points[i+1].Sub(c.Points[i])
		return c.Points[i].Lerp(c.Points[i+1], local), edge.Scale(float64(n - 1)), nil
	case *Bspline:
		if c == nil {
			return math.Vec3{}, math.Vec3{}, ErrInvalidBspline
		}
		point, tangent = c.FractionToPointAndTangent(f)
		return point, tangent, nil
	default:
		return math.Vec3{}, math.Vec3{}, fmt.Errorf("%w: %v", ErrUnsupportedPrimitive, kindOf(p))
	}
}

// StartEnd returns the points at fractions 0 and 1.
func StartEnd(p Primitive) (start, end math.Vec3, err error) {
	switch c := p.(type) {
	case Segment:
		return c.Start, c.End, nil
	case LineString:
		if len(c.Points) < 2 {
			return math.Vec3{}, math.Vec3{}, ErrTooFewPoints
		}
		return c.Points[0], c.Points[len(c.Points)-1], nil
	}
	if start, _, err = FractionToPointAndTangent(p, 0); err != nil {
		return math.Vec3{}, math.Vec3{}, err
	}
	end, _, err = FractionToPointAndTangent(p, 1)
	return start, end, err
}

// IsClosed reports whether p ends exactly where it starts.
func IsClosed(p Primitive) bool {
	switch c := p.(type) {
	case Arc:
		return c.IsFullEllipse()
	case LineString:
		n := len(c.Points)
		return n > 2 && c.Points[0] == c.Points[n-1]
	case *Bspline:
		if c == nil {
			return false
		}
		n := len(c.Poles)
		return n > 2 && c.Poles[0] == c.Poles[n-1]
	}
	return false
}

// ArcLength returns the length of p.
func ArcLength(p Primitive) (float64, error) {
	switch c := p.(type) {
	case Segment:
		return c.Start.Distance(c.End), nil
	case Arc:
		if c.IsCircular() {
			return c.Vector0.Length() * gomath.Abs(c.Sweep), nil
		}
		pieces := int(gomath.Ceil(gomath.Abs(c.Sweep)/(gomath.Pi/8))) + 1
		return integrateSpeed(p, 0, 1, pieces), nil
	case LineString:
		if len(c.Points) < 2 {
			return 0, ErrTooFewPoints
		}
		var sum float64
		for i := 1; i < len(c.Points); i++ {
			sum += c.Points[i].Distance(c.Points[i-1])
		}
		return sum, nil
	case *Bspline:
		if c == nil {
			return 0, ErrInvalidBspline
		}
		var sum float64
		for _, span := range c.SpanFractions() {
			sum += integrateSpeed(c, span[0], span[1], 4)
		}
		return sum, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedPrimitive, kindOf(p))
	}
}

// 5-point Gauss-Legendre abscissae and weights on [-1, 1].
var (
	gaussNodes   = [5]float64{-0.9061798459386640, -0.5384693101056831, 0, 0.5384693101056831, 0.9061798459386640}
	gaussWeights = [5]float64{0.2369268850561891, 0.4786286704993665, 0.5688888888888889, 0.4786286704993665, 0.2369268850561891}
)

// integrateSpeed integrates |tangent| over [f0, f1] split into pieces.
func integrateSpeed(p Primitive, f0, f1 float64, pieces int) float64 {
	if pieces < 1 {
		pieces = 1
	}
	var sum float64
	h := (f1 - f0) / float64(pieces)
	for k := 0; k < pieces; k++ {
		a := f0 + float64(k)*h
		mid, half := a+h/2, h/2
		for i, x := range gaussNodes {
			_, tangent, err := FractionToPointAndTangent(p, mid+half*x)
			if err != nil {
				return 0
			}
			sum += gaussWeights[i] * half * tangent.Length()
		}
	}
	return sum
}

func kindOf(p Primitive) string {
	if p == nil {
		return "nil"
	}
	return p.Kind().String()
}
