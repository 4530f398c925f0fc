package curve

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/polyface/pkg/math"
)

func TestSegmentEvaluation(t *testing.T) {
	s := Segment{Start: math.Vec3{X: 1}, End: math.Vec3{X: 3, Y: 2}}
	p, tangent, err := FractionToPointAndTangent(s, 0.5)
	if err != nil {
		t.Fatalf("FractionToPointAndTangent: %v", err)
	}
	if p != (math.Vec3{X: 2, Y: 1}) {
		t.Errorf("midpoint = %v, want (2,1,0)", p)
	}
	if tangent != (math.Vec3{X: 2, Y: 2}) {
		t.Errorf("tangent = %v, want (2,2,0)", tangent)
	}
	if l, _ := ArcLength(s); gomath.Abs(l-gomath.Sqrt(8)) > 1e-15 {
		t.Errorf("ArcLength = %v", l)
	}
}

func TestArcEvaluation(t *testing.T) {
	a := Arc{Vector0: math.Vec3{X: 2}, Vector90: math.Vec3{Y: 2}, Start: 0, Sweep: gomath.Pi / 2}
	p, tangent, err := FractionToPointAndTangent(a, 1)
	if err != nil {
		t.Fatalf("FractionToPointAndTangent: %v", err)
	}
	if !p.AlmostEqual(math.Vec3{Y: 2}, 1e-15) {
		t.Errorf("end point = %v, want (0,2,0)", p)
	}
	want := math.Vec3{X: -2 * gomath.Pi / 2}
	if !tangent.AlmostEqual(want, 1e-12) {
		t.Errorf("end tangent = %v, want %v", tangent, want)
	}
	l, err := ArcLength(a)
	if err != nil || gomath.Abs(l-gomath.Pi) > 1e-12 {
		t.Errorf("ArcLength = %v, %v; want pi", l, err)
	}
}

func TestEllipseArcLength(t *testing.T) {
	// Degenerate ellipse flattened onto a line: a full turn walks the
	// segment [-1,1] four times.
	a := Arc{Vector0: math.Vec3{X: 1}, Vector90: math.Vec3{Y: 1e-9}, Sweep: 2 * gomath.Pi}
	l, err := ArcLength(a)
	if err != nil {
		t.Fatalf("ArcLength: %v", err)
	}
	if gomath.Abs(l-4) > 1e-2 {
		t.Errorf("flat ellipse length = %v, want ~4", l)
	}

	// 2:1 ellipse, perimeter ~ 9.68844822.
	e := Arc{Vector0: math.Vec3{X: 2}, Vector90: math.Vec3{Y: 1}, Sweep: 2 * gomath.Pi}
	l, _ = ArcLength(e)
	if gomath.Abs(l-9.688448220547675) > 1e-6 {
		t.Errorf("ellipse length = %v, want 9.6884482", l)
	}
}

func TestLineStringEvaluation(t *testing.T) {
	ls := LineString{Points: []math.Vec3{{}, {X: 1}, {X: 1, Y: 1}}}
	p, tangent, err := FractionToPointAndTangent(ls, 0.75)
	if err != nil {
		t.Fatalf("FractionToPointAndTangent: %v", err)
	}
	if !p.AlmostEqual(math.Vec3{X: 1, Y: 0.5}, 1e-15) {
		t.Errorf("point = %v, want (1,0.5,0)", p)
	}
	if tangent != (math.Vec3{Y: 2}) {
		t.Errorf("tangent = %v, want (0,2,0)", tangent)
	}
	if _, _, err := FractionToPointAndTangent(LineString{Points: []math.Vec3{{}}}, 0); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestUnsupportedPrimitive(t *testing.T) {
	child := ChildRegion{Path: NewPolygon(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{Y: 1})}
	if _, _, err := FractionToPointAndTangent(child, 0.5); !errors.Is(err, ErrUnsupportedPrimitive) {
		t.Errorf("expected ErrUnsupportedPrimitive, got %v", err)
	}
	if _, err := ArcLength(nil); !errors.Is(err, ErrUnsupportedPrimitive) {
		t.Errorf("expected ErrUnsupportedPrimitive for nil, got %v", err)
	}
}

func TestLinearBsplineMatchesPolyline(t *testing.T) {
	poles := []math.Vec3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	b, err := NewUniformBspline(2, poles)
	if err != nil {
		t.Fatalf("NewUniformBspline: %v", err)
	}
	if n := b.SpanCount(); n != 3 {
		t.Errorf("SpanCount = %d, want 3", n)
	}
	for i, want := range poles {
		p, _ := b.FractionToPointAndTangent(float64(i) / 3)
		if !p.AlmostEqual(want, 1e-14) {
			t.Errorf("pole %d: got %v, want %v", i, p, want)
		}
	}
}

func TestCubicBsplineIsBezier(t *testing.T) {
	poles := []math.Vec3{{}, {X: 1, Y: 2}, {X: 3, Y: 2}, {X: 4}}
	b, err := NewUniformBspline(4, poles)
	if err != nil {
		t.Fatalf("NewUniformBspline: %v", err)
	}
	if n := b.SpanCount(); n != 1 {
		t.Errorf("SpanCount = %d, want 1", n)
	}
	p, tangent := b.FractionToPointAndTangent(0.5)
	// Bezier midpoint: (P0 + 3P1 + 3P2 + P3) / 8.
	if want := (math.Vec3{X: 2, Y: 1.5}); !p.AlmostEqual(want, 1e-14) {
		t.Errorf("midpoint = %v, want %v", p, want)
	}
	// Derivative at the start of a cubic Bezier is 3(P1-P0).
	_, start := b.FractionToPointAndTangent(0)
	if want := (math.Vec3{X: 3, Y: 6}); !start.AlmostEqual(want, 1e-12) {
		t.Errorf("start tangent = %v, want %v", start, want)
	}
	// Finite difference check in the middle.
	const h = 1e-6
	p0, _ := b.FractionToPointAndTangent(0.5 - h)
	p1, _ := b.FractionToPointAndTangent(0.5 + h)
	fd := p1.Sub(p0).Scale(1 / (2 * h))
	if !fd.AlmostEqual(tangent, 1e-6) {
		t.Errorf("tangent = %v, finite difference = %v", tangent, fd)
	}
}

func TestBsplineSpans(t *testing.T) {
	poles := []math.Vec3{{}, {X: 1}, {X: 2, Y: 1}, {X: 3}, {X: 4, Y: 2}, {X: 5}}
	b, err := NewUniformBspline(3, poles)
	if err != nil {
		t.Fatalf("NewUniformBspline: %v", err)
	}
	spans := b.SpanFractions()
	if len(spans) != 4 {
		t.Fatalf("len(spans) = %d, want 4", len(spans))
	}
	if spans[0][0] != 0 || spans[len(spans)-1][1] != 1 {
		t.Errorf("span ends = %v, %v; want exactly 0 and 1", spans[0][0], spans[len(spans)-1][1])
	}
	end, _ := b.FractionToPointAndTangent(1)
	if end != poles[len(poles)-1] {
		t.Errorf("clamped end = %v, want %v", end, poles[len(poles)-1])
	}
}

func TestNewBsplineValidation(t *testing.T) {
	poles := []math.Vec3{{}, {X: 1}, {X: 2}}
	tests := []struct {
		name  string
		order int
		knots []float64
	}{
		{"order too low", 1, []float64{0, 1, 2, 3}},
		{"wrong knot count", 2, []float64{0, 0, 1, 1}},
		{"decreasing", 2, []float64{0, 0, 1, 0.5, 1}},
		{"empty domain", 2, []float64{0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewBspline(tt.order, poles, tt.knots); !errors.Is(err, ErrInvalidBspline) {
				t.Errorf("expected ErrInvalidBspline, got %v", err)
			}
		})
	}
}

func TestIsClosed(t *testing.T) {
	if !IsClosed(NewCircle(math.Vec3{}, math.Vec3{Z: 1}, 1)) {
		t.Error("full circle should be closed")
	}
	if IsClosed(Arc{Vector0: math.Vec3{X: 1}, Vector90: math.Vec3{Y: 1}, Sweep: 3}) {
		t.Error("partial arc should be open")
	}
	sq := NewPolygon(math.Vec3{}, math.Vec3{X: 1}, math.Vec3{X: 1, Y: 1})
	if !IsClosed(sq.Primitives[0]) {
		t.Error("polygon line string should be closed")
	}
}

func TestPathHelpers(t *testing.T) {
	outer := NewPolygon(math.Vec3{}, math.Vec3{X: 4}, math.Vec3{X: 4, Y: 4}, math.Vec3{Y: 4})
	inner := NewPolygon(math.Vec3{X: 1, Y: 1}, math.Vec3{X: 1, Y: 2}, math.Vec3{X: 2, Y: 2})
	inner.Boundary = BoundaryInner
	region := NewRegion(BoundaryParity, outer, inner)

	if !region.IsRegion() || region.IsClosed() {
		t.Error("parity region flags wrong")
	}
	if n := len(region.Children()); n != 2 {
		t.Errorf("Children = %d, want 2", n)
	}
	l, err := region.Length()
	if err != nil {
		t.Fatalf("Length: %v", err)
	}
	if want := 16 + 2 + gomath.Sqrt2; gomath.Abs(l-want) > 1e-12 {
		t.Errorf("Length = %v, want %v", l, want)
	}

	b, err := ParseBoundary("Parity")
	if err != nil || b != BoundaryParity {
		t.Errorf("ParseBoundary = %v, %v", b, err)
	}
	if _, err := ParseBoundary("sideways"); err == nil {
		t.Error("expected error for unknown boundary")
	}
}

func TestAreaNormalAndCentroid(t *testing.T) {
	square := []math.Vec3{{}, {X: 2}, {X: 2, Y: 2}, {Y: 2}, {}}
	if n := AreaNormal(square); n != (math.Vec3{Z: 8}) {
		t.Errorf("AreaNormal = %v, want (0,0,8)", n)
	}
	if c := Centroid(square); c != (math.Vec3{X: 1, Y: 1}) {
		t.Errorf("Centroid = %v, want (1,1,0)", c)
	}
}
