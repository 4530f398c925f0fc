package polyface

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/polyface/pkg/curve"
	"github.com/Faultbox/polyface/pkg/facet"
	"github.com/Faultbox/polyface/pkg/math"
)

func TestTubeStraight(t *testing.T) {
	b, mesh := newTestBuilder(t, facet.Default())
	axis := curve.Segment{End: math.Vec3{Z: 10}}
	if err := b.AddTubeMesh(axis, 1, 8, 2); err != nil {
		t.Fatalf("AddTubeMesh: %v", err)
	}
	mustValidate(t, mesh)

	if len(mesh.Points) != 24 {
		t.Errorf("got %d points, want 3 sections of 8", len(mesh.Points))
	}
	if mesh.FacetCount() != 16 {
		t.Errorf("got %d facets, want 16", mesh.FacetCount())
	}
	// The seam is hidden; both end rings are visible.
	if n := countVisible(mesh); n != 16 {
		t.Errorf("got %d visible edges, want 16", n)
	}
	for _, f := range mesh.Facets() {
		c := facetCentroid(mesh, f)
		out := math.Vec3{X: c.X, Y: c.Y}
		if facetNormal(mesh, f).Dot(out) <= 0 {
			t.Errorf("facet %v faces the axis", f.Points)
		}
		for _, ni := range f.Normals {
			if mesh.Normals[ni].Dot(out) <= 0 {
				t.Errorf("normal %v faces the axis", mesh.Normals[ni])
			}
		}
	}
}

func TestTubeAlongArc(t *testing.T) {
	// A quarter-circle centerline keeps every section at the tube radius.
	arc := curve.Arc{Vector0: math.Vec3{X: 5}, Vector90: math.Vec3{Y: 5}, Sweep: gomath.Pi / 2}
	b, mesh := newTestBuilder(t, facet.Default())
	if err := b.AddTubeMesh(arc, 0.5, 6, 4); err != nil {
		t.Fatal(err)
	}
	mustValidate(t, mesh)
	for _, p := range mesh.Points {
		ring := math.Vec3{X: p.X, Y: p.Y}.Normalize().Scale(5)
		if d := p.Distance(ring); gomath.Abs(d-0.5) > 1e-9 {
			t.Fatalf("point %v is %v from the centerline, want 0.5", p, d)
		}
	}
	if hasRepeatedCorner(mesh) {
		t.Error("degenerate facet emitted")
	}
}

func TestTubeErrors(t *testing.T) {
	axis := curve.Segment{End: math.Vec3{Z: 1}}
	tests := []struct {
		name       string
		centerline curve.Primitive
		radius     float64
		perSection int
		sections   int
		wantErr    error
	}{
		{"zero radius", axis, 0, 8, 1, ErrInvalidVector},
		{"two edges", axis, 1, 2, 1, ErrInvalidCount},
		{"no sections", axis, 1, 8, 0, ErrInvalidCount},
		{"zero length", curve.Segment{}, 1, 8, 1, ErrInvalidVector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, mesh := newTestBuilder(t, facet.Default())
			err := b.AddTubeMesh(tt.centerline, tt.radius, tt.perSection, tt.sections)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if mesh.FacetCount() != 0 {
				t.Errorf("emitted %d facets", mesh.FacetCount())
			}
		})
	}
}

func TestTubeFrameReset(t *testing.T) {
	// Along an arc in the XY plane the transported frame keeps pointing
	// along -Z, so no section starts on the outer equator. Restarting the
	// frame at every section picks the in-plane perpendicular instead.
	arc := curve.Arc{Vector0: math.Vec3{X: 5}, Vector90: math.Vec3{Y: 5}, Sweep: gomath.Pi / 2}
	tests := []struct {
		name       string
		frameReset float64
		wantOuter  bool
	}{
		{"transported", facet.DefaultTolerances().FrameReset, false},
		{"restarted", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := facet.Default()
			opts.Tolerances.FrameReset = tt.frameReset
			b, mesh := newTestBuilder(t, opts)
			if err := b.AddTubeMesh(arc, 0.5, 6, 4); err != nil {
				t.Fatal(err)
			}
			mustValidate(t, mesh)
			outer := false
			for _, p := range mesh.Points {
				r := math.Vec3{X: p.X, Y: p.Y}.Length()
				if gomath.Abs(p.Z) < 1e-9 && gomath.Abs(r-5.5) < 1e-9 {
					outer = true
				}
			}
			if outer != tt.wantOuter {
				t.Errorf("section point on the outer equator = %v, want %v", outer, tt.wantOuter)
			}
		})
	}
}
