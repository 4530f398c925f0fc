package scene

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/polyface/pkg/curve"
	"github.com/Faultbox/polyface/pkg/math"
)

// CurveSpec describes one primitive. Exactly one field must be set.
type CurveSpec struct {
	Segment    *SegmentSpec `yaml:"segment"`
	Arc        *ArcSpec     `yaml:"arc"`
	Circle     *CircleSpec  `yaml:"circle"`
	LineString []Vec        `yaml:"linestring"`
	Bspline    *BsplineSpec `yaml:"bspline"`
}

// SegmentSpec is a straight line.
type SegmentSpec struct {
	Start Vec `yaml:"start"`
	End   Vec `yaml:"end"`
}

// ArcSpec is an elliptic arc; see curve.Arc.
type ArcSpec struct {
	Center       Vec     `yaml:"center"`
	Vector0      Vec     `yaml:"vector0"`
	Vector90     Vec     `yaml:"vector90"`
	StartDegrees float64 `yaml:"start_degrees"`
	SweepDegrees float64 `yaml:"sweep_degrees"`
}

// CircleSpec is a full circle.
type CircleSpec struct {
	Center Vec     `yaml:"center"`
	Normal Vec     `yaml:"normal"`
	Radius float64 `yaml:"radius"`
}

// BsplineSpec is a B-spline. Without knots a clamped uniform vector is
// used.
type BsplineSpec struct {
	Order int       `yaml:"order"`
	Poles []Vec     `yaml:"poles"`
	Knots []float64 `yaml:"knots"`
}

// Primitive converts c to a curve primitive.
func (c *CurveSpec) Primitive() (curve.Primitive, error) {
	set := 0
	for _, ok := range []bool{c.Segment != nil, c.Arc != nil, c.Circle != nil, c.LineString != nil, c.Bspline != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: %d curve kinds given, want 1", ErrInvalidCurve, set)
	}

	switch {
	case c.Segment != nil:
		return curve.Segment{Start: c.Segment.Start.V3(), End: c.Segment.End.V3()}, nil
	case c.Arc != nil:
		a := c.Arc
		if a.SweepDegrees == 0 {
			return nil, fmt.Errorf("%w: arc with zero sweep", ErrInvalidCurve)
		}
		return curve.Arc{
			Center:   a.Center.V3(),
			Vector0:  a.Vector0.V3(),
			Vector90: a.Vector90.V3(),
			Start:    degrees(a.StartDegrees),
			Sweep:    degrees(a.SweepDegrees),
		}, nil
	case c.Circle != nil:
		return circle(c.Circle.Center, c.Circle.Normal, c.Circle.Radius)
	case c.LineString != nil:
		if len(c.LineString) < 2 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCurve, curve.ErrTooFewPoints)
		}
		return curve.LineString{Points: vecs(c.LineString)}, nil
	default:
		bs := c.Bspline
		if len(bs.Knots) == 0 {
			b, err := curve.NewUniformBspline(bs.Order, vecs(bs.Poles))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidCurve, err)
			}
			return b, nil
		}
		b, err := curve.NewBspline(bs.Order, vecs(bs.Poles), bs.Knots)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCurve, err)
		}
		return b, nil
	}
}

func circle(center, normal Vec, radius float64) (curve.Arc, error) {
	if _, ok := normal.V3().Unit(); !ok {
		return curve.Arc{}, fmt.Errorf("%w: circle normal %v", ErrInvalidCurve, normal)
	}
	if !(radius > 0) || gomath.IsInf(radius, 0) {
		return curve.Arc{}, fmt.Errorf("%w: circle radius %v", ErrInvalidCurve, radius)
	}
	return curve.NewCircle(center.V3(), normal.V3(), radius), nil
}

// PathSpec describes a path. Curves (or the Points shorthand for one line
// string) make a chain or loop; Loops make a parity or union region.
// Boundary defaults to "outer" for curves and "parity" for loops.
type PathSpec struct {
	Boundary string      `yaml:"boundary"`
	Curves   []CurveSpec `yaml:"curves"`
	Points   []Vec       `yaml:"points"`
	Loops    []PathSpec  `yaml:"loops"`
}

// Path converts p to a curve path.
func (p *PathSpec) Path() (*curve.Path, error) {
	if len(p.Loops) > 0 {
		if len(p.Curves) > 0 || len(p.Points) > 0 {
			return nil, fmt.Errorf("%w: path mixes loops with curves", ErrInvalidCurve)
		}
		boundary, err := p.boundary(curve.BoundaryParity)
		if err != nil {
			return nil, err
		}
		if boundary != curve.BoundaryParity && boundary != curve.BoundaryUnion {
			return nil, fmt.Errorf("%w: loops need a parity or union boundary, got %v", ErrInvalidCurve, boundary)
		}
		loops := make([]*curve.Path, 0, len(p.Loops))
		for i := range p.Loops {
			l, err := p.Loops[i].Path()
			if err != nil {
				return nil, fmt.Errorf("loop %d: %w", i, err)
			}
			loops = append(loops, l)
		}
		return curve.NewRegion(boundary, loops...), nil
	}

	boundary, err := p.boundary(curve.BoundaryOuter)
	if err != nil {
		return nil, err
	}
	if boundary == curve.BoundaryParity || boundary == curve.BoundaryUnion {
		return nil, fmt.Errorf("%w: %v boundary without loops", ErrInvalidCurve, boundary)
	}

	path := &curve.Path{Boundary: boundary}
	if len(p.Points) > 0 {
		pts := vecs(p.Points)
		if path.IsClosed() && pts[0] != pts[len(pts)-1] {
			pts = append(pts, pts[0])
		}
		if len(pts) < 2 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCurve, curve.ErrTooFewPoints)
		}
		path.Primitives = append(path.Primitives, curve.LineString{Points: pts})
	}
	for i := range p.Curves {
		prim, err := p.Curves[i].Primitive()
		if err != nil {
			return nil, fmt.Errorf("curve %d: %w", i, err)
		}
		path.Primitives = append(path.Primitives, prim)
	}
	if len(path.Primitives) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidCurve)
	}
	return path, nil
}

func (p *PathSpec) boundary(def curve.Boundary) (curve.Boundary, error) {
	if p.Boundary == "" {
		return def, nil
	}
	b, err := curve.ParseBoundary(p.Boundary)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCurve, err)
	}
	return b, nil
}

func vecs(in []Vec) []math.Vec3 {
	out := make([]math.Vec3, len(in))
	for i, v := range in {
		out[i] = v.V3()
	}
	return out
}

func degrees(d float64) float64 {
	return d * gomath.Pi / 180
}
