package curve

import (
	"fmt"

	"github.com/Faultbox/polyface/pkg/math"
)

// Bspline is a non-rational B-spline curve. Knots holds len(Poles)+Order
// values.
type Bspline struct {
	Order int
	Poles []math.Vec3
	Knots []float64

	derivPoles []math.Vec3
}

// Kind implements Primitive.
func (*Bspline) Kind() Kind   { return KindBspline }
func (*Bspline) isPrimitive() {}

// NewBspline validates and returns a B-spline.
func NewBspline(order int, poles []math.Vec3, knots []float64) (*Bspline, error) {
	if order < 2 {
		return nil, fmt.Errorf("%w: order %d", ErrInvalidBspline, order)
	}
	if len(poles) < order {
		return nil, fmt.Errorf("%w: %d poles for order %d", ErrInvalidBspline, len(poles), order)
	}
	if len(knots) != len(poles)+order {
		return nil, fmt.Errorf("%w: %d knots, want %d", ErrInvalidBspline, len(knots), len(poles)+order)
	}
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] {
			return nil, fmt.Errorf("%w: knots decrease at %d", ErrInvalidBspline, i)
		}
	}
	b := &Bspline{
		Order: order,
		Poles: append([]math.Vec3(nil), poles...),
		Knots: append([]float64(nil), knots...),
	}
	if lo, hi := b.Domain(); !(hi > lo) {
		return nil, fmt.Errorf("%w: empty knot domain", ErrInvalidBspline)
	}
	b.derivPoles = b.derivativePoles()
	return b, nil
}

// NewUniformBspline returns a clamped B-spline with uniform interior knots
// on [0, 1].
func NewUniformBspline(order int, poles []math.Vec3) (*Bspline, error) {
	if order < 2 || len(poles) < order {
		return nil, fmt.Errorf("%w: %d poles for order %d", ErrInvalidBspline, len(poles), order)
	}
	spans := len(poles) - order + 1
	knots := make([]float64, 0, len(poles)+order)
	for i := 0; i < order; i++ {
		knots = append(knots, 0)
	}
	for i := 1; i < spans; i++ {
		knots = append(knots, float64(i)/float64(spans))
	}
	for i := 0; i < order; i++ {
		knots = append(knots, 1)
	}
	return NewBspline(order, poles, knots)
}

// Degree returns Order-1.
func (b *Bspline) Degree() int {
	return b.Order - 1
}

// Domain returns the knot interval the curve is defined on.
func (b *Bspline) Domain() (lo, hi float64) {
	return b.Knots[b.Order-1], b.Knots[len(b.Poles)]
}

// SpanFractions returns the fraction interval of each non-empty knot span
// (each Bezier segment). The first interval starts at exactly 0 and the last
// ends at exactly 1.
func (b *Bspline) SpanFractions() [][2]float64 {
	lo, hi := b.Domain()
	width := hi - lo
	var spans [][2]float64
	for i := b.Order - 1; i < len(b.Poles); i++ {
		k0, k1 := b.Knots[i], b.Knots[i+1]
		if k1 <= k0 {
			continue
		}
		spans = append(spans, [2]float64{(k0 - lo) / width, (k1 - lo) / width})
	}
	if len(spans) > 0 {
		spans[0][0] = 0
		spans[len(spans)-1][1] = 1
	}
	return spans
}

// SpanCount returns the number of Bezier segments.
func (b *Bspline) SpanCount() int {
	return len(b.SpanFractions())
}

// FractionToPointAndTangent evaluates the curve at fraction f of its
// domain. The tangent is the derivative with respect to f.
func (b *Bspline) FractionToPointAndTangent(f float64) (point, tangent math.Vec3) {
	lo, hi := b.Domain()
	t := lo + f*(hi-lo)
	if b.derivPoles == nil {
		b.derivPoles = b.derivativePoles()
	}
	point = deBoor(b.Degree(), b.Poles, b.Knots, t)
	deriv := deBoor(b.Degree()-1, b.derivPoles, b.Knots[1:len(b.Knots)-1], t)
	return point, deriv.Scale(hi - lo)
}

// derivativePoles returns the poles of the derivative curve, whose knots
// are Knots[1:len-1].
func (b *Bspline) derivativePoles() []math.Vec3 {
	p := b.Degree()
	out := make([]math.Vec3, len(b.Poles)-1)
	for j := range out {
		den := b.Knots[j+p+1] - b.Knots[j+1]
		if den <= 0 {
			continue
		}
		out[j] = b.Poles[j+1].Sub(b.Poles[j]).Scale(float64(p) / den)
	}
	return out
}

// findSpan returns the knot span index containing t.
func findSpan(degree int, n int, knots []float64, t float64) int {
	if t >= knots[n] {
		for i := n - 1; i > degree; i-- {
			if knots[i] < knots[i+1] {
				return i
			}
		}
		return degree
	}
	for i := degree; i < n; i++ {
		if knots[i] <= t && t < knots[i+1] {
			return i
		}
	}
	return degree
}

// deBoor evaluates a B-spline of the given degree.
func deBoor(degree int, poles []math.Vec3, knots []float64, t float64) math.Vec3 {
	n := len(poles)
	k := findSpan(degree, n, knots, t)
	d := make([]math.Vec3, degree+1)
	for j := 0; j <= degree; j++ {
		d[j] = poles[j+k-degree]
	}
	for r := 1; r <= degree; r++ {
		for j := degree; j >= r; j-- {
			i := j + k - degree
			den := knots[i+degree-r+1] - knots[i]
			alpha := 0.0
			if den > 0 {
				alpha = (t - knots[i]) / den
			}
			d[j] = d[j-1].Lerp(d[j], alpha)
		}
	}
	return d[degree]
}
