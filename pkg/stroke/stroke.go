// Package stroke samples curve primitives into points, tangents and
// fractions.
package stroke

import (
	"errors"
	"fmt"

	"github.com/Faultbox/polyface/pkg/curve"
	"github.com/Faultbox/polyface/pkg/facet"
	"github.com/Faultbox/polyface/pkg/math"
)

// ErrInvalidCount is returned for stroke counts below 1.
var ErrInvalidCount = errors.New("stroke count must be positive")

// Sample is one stroked point of a curve.
type Sample struct {
	Point    math.Vec3
	Tangent  math.Vec3 // derivative with respect to the curve fraction
	Fraction float64
}

// Stroke samples p at count+1 uniformly spaced fractions. The final fraction
// is exactly 1, and for closed primitives the final point is a copy of the
// first.
func Stroke(p curve.Primitive, count int) ([]Sample, error) {
	samples, err := StrokeRange(p, 0, 1, count)
	if err != nil {
		return nil, err
	}
	if curve.IsClosed(p) {
		samples[count].Point = samples[0].Point
	}
	return samples, nil
}

// StrokeRange samples p at count+1 uniformly spaced fractions from f0 to f1.
// The final fraction is exactly f1.
func StrokeRange(p curve.Primitive, f0, f1 float64, count int) ([]Sample, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	samples := make([]Sample, count+1)
	for i := 0; i <= count; i++ {
		f := f0 + (f1-f0)*float64(i)/float64(count)
		if i == count {
			f = f1
		}
		point, tangent, err := curve.FractionToPointAndTangent(p, f)
		if err != nil {
			return nil, err
		}
		samples[i] = Sample{Point: point, Tangent: tangent, Fraction: f}
	}
	return samples, nil
}

// Count returns the stroke count the options require for p.
func Count(p curve.Primitive, opts facet.Options) (int, error) {
	switch c := p.(type) {
	case curve.Segment:
		return opts.SegmentCount(c.Start.Distance(c.End)), nil
	case curve.Arc:
		return opts.ArcCount(c.MaxRadius(), c.Sweep), nil
	case curve.LineString:
		if len(c.Points) < 2 {
			return 0, curve.ErrTooFewPoints
		}
		n := 0
		for i := 1; i < len(c.Points); i++ {
			n += opts.SegmentCount(c.Points[i].Distance(c.Points[i-1]))
		}
		return n, nil
	case *curve.Bspline:
		if c == nil {
			return 0, curve.ErrInvalidBspline
		}
		n := 0
		for _, span := range c.SpanFractions() {
			n += SpanCount(c, span[0], span[1], opts)
		}
		return n, nil
	default:
		_, _, err := curve.FractionToPointAndTangent(p, 0)
		if err == nil {
			err = curve.ErrUnsupportedPrimitive
		}
		return 0, err
	}
}

// spanProbes is the number of intervals used to measure a curve span.
const spanProbes = 8

// SpanCount returns the stroke count for the fraction interval [f0, f1] of
// a smooth primitive, from its probed length and total tangent turn.
func SpanCount(p curve.Primitive, f0, f1 float64, opts facet.Options) int {
	samples, err := StrokeRange(p, f0, f1, spanProbes)
	if err != nil {
		return 1
	}
	var length, turn float64
	for i := 1; i < len(samples); i++ {
		length += samples[i].Point.Distance(samples[i-1].Point)
		a, b := samples[i-1].Tangent, samples[i].Tangent
		if a.LengthSquared() > 0 && b.LengthSquared() > 0 {
			turn += a.AngleTo(b)
		}
	}
	return opts.DistanceAndTurnCount(length, turn)
}

// Points strokes p at the count the options require and drops consecutive
// points closer than the degenerate-point tolerance.
func Points(p curve.Primitive, opts facet.Options) ([]math.Vec3, error) {
	samples, err := Samples(p, opts)
	if err != nil {
		return nil, err
	}
	out := make([]math.Vec3, 0, len(samples))
	for _, s := range samples {
		out = appendDistinct(out, s.Point, opts.Tolerances.DegeneratePoint)
	}
	return out, nil
}

// Samples strokes p at the count the options require. Line strings and
// bsplines are stroked piece by piece so every vertex and span break is
// sampled; shared break samples appear once.
func Samples(p curve.Primitive, opts facet.Options) ([]Sample, error) {
	switch c := p.(type) {
	case curve.LineString:
		n := len(c.Points)
		if n < 2 {
			return nil, curve.ErrTooFewPoints
		}
		var out []Sample
		for i := 1; i < n; i++ {
			f0 := float64(i-1) / float64(n-1)
			f1 := float64(i) / float64(n-1)
			if i == n-1 {
				f1 = 1
			}
			piece, err := linePiece(c, i-1, f0, f1, opts.SegmentCount(c.Points[i].Distance(c.Points[i-1])))
			if err != nil {
				return nil, err
			}
			out = appendPiece(out, piece)
		}
		return out, nil
	case *curve.Bspline:
		if c == nil {
			return nil, curve.ErrInvalidBspline
		}
		var out []Sample
		for _, span := range c.SpanFractions() {
			piece, err := StrokeRange(c, span[0], span[1], SpanCount(c, span[0], span[1], opts))
			if err != nil {
				return nil, err
			}
			out = appendPiece(out, piece)
		}
		if curve.IsClosed(c) && len(out) > 0 {
			out[len(out)-1].Point = out[0].Point
		}
		return out, nil
	default:
		n, err := Count(p, opts)
		if err != nil {
			return nil, err
		}
		return Stroke(p, n)
	}
}

// LineStringEdge strokes edge i of a line string with count strokes. The
// samples run exactly from vertex i to vertex i+1 and carry the edge
// direction as tangent.
func LineStringEdge(ls curve.LineString, i, count int) ([]Sample, error) {
	n := len(ls.Points)
	if i < 0 || i+1 >= n {
		return nil, fmt.Errorf("line string edge %d out of range", i)
	}
	f0 := float64(i) / float64(n-1)
	f1 := float64(i+1) / float64(n-1)
	if i+1 == n-1 {
		f1 = 1
	}
	return linePiece(ls, i, f0, f1, count)
}

func linePiece(ls curve.LineString, i int, f0, f1 float64, count int) ([]Sample, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	a, b := ls.Points[i], ls.Points[i+1]
	tangent := b.Sub(a).Scale(float64(len(ls.Points) - 1))
	out := make([]Sample, count+1)
	for k := 0; k <= count; k++ {
		t := float64(k) / float64(count)
		out[k] = Sample{Point: a.Lerp(b, t), Tangent: tangent, Fraction: f0 + (f1-f0)*t}
	}
	out[0].Point, out[0].Fraction = a, f0
	out[count].Point, out[count].Fraction = b, f1
	return out, nil
}

// PathPoints strokes every primitive of a loop or chain and returns the
// concatenated points with consecutive duplicates removed. A closed path
// keeps its repeated closing point.
func PathPoints(path *curve.Path, opts facet.Options) ([]math.Vec3, error) {
	var out []math.Vec3
	for _, prim := range path.Primitives {
		if _, ok := curve.GetChildRegion(prim); ok {
			return nil, fmt.Errorf("%w: nested region in %v path", curve.ErrUnsupportedPrimitive, path.Boundary)
		}
		pts, err := Points(prim, opts)
		if err != nil {
			return nil, err
		}
		for _, p := range pts {
			out = appendDistinct(out, p, opts.Tolerances.DegeneratePoint)
		}
	}
	if path.IsClosed() && len(out) > 2 {
		if out[0].Distance(out[len(out)-1]) <= opts.Tolerances.DegeneratePoint {
			out[len(out)-1] = out[0]
		} else {
			out = append(out, out[0])
		}
	}
	return out, nil
}

func appendDistinct(out []math.Vec3, p math.Vec3, tol float64) []math.Vec3 {
	if len(out) > 0 && out[len(out)-1].Distance(p) <= tol {
		return out
	}
	return append(out, p)
}

// appendPiece appends samples, merging the first sample with the previous
// piece's last one.
func appendPiece(out, piece []Sample) []Sample {
	if len(out) > 0 && len(piece) > 0 {
		piece = piece[1:]
	}
	return append(out, piece...)
}
