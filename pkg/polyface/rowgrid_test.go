package polyface

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/polyface/pkg/facet"
	"github.com/Faultbox/polyface/pkg/math"
)

func flatGrid(numPerRow, numRow int) []math.Vec3 {
	var pts []math.Vec3
	for r := 0; r < numRow; r++ {
		for c := 0; c < numPerRow; c++ {
			pts = append(pts, math.Vec3{X: float64(c), Y: float64(r)})
		}
	}
	return pts
}

func TestRowMajorQuadGrid(t *testing.T) {
	b, mesh := newTestBuilder(t, facet.Default())
	if err := b.AddRowMajorQuadGrid(flatGrid(3, 3), nil, nil, 3, 3); err != nil {
		t.Fatalf("AddRowMajorQuadGrid: %v", err)
	}
	mustValidate(t, mesh)

	if mesh.FacetCount() != 4 {
		t.Errorf("got %d facets, want 4", mesh.FacetCount())
	}
	if n := countVisible(mesh); n != 8 {
		t.Errorf("got %d visible edges, want the 8 boundary edges", n)
	}
	for _, f := range mesh.Facets() {
		if facetNormal(mesh, f).Z <= 0 {
			t.Errorf("facet %v faces -z", f.Points)
		}
	}
	if diff := cmp.Diff([]math.Vec3{{Z: 1}}, mesh.Normals); diff != "" {
		t.Errorf("normals mismatch (-want +got):\n%s", diff)
	}
	want := Range2{Max: math.Vec2{X: 2, Y: 2}}
	if diff := cmp.Diff(want, mesh.Faces[0].ParamDistanceRange); diff != "" {
		t.Errorf("param range mismatch (-want +got):\n%s", diff)
	}
}

func TestRowMajorQuadGridClosedColumns(t *testing.T) {
	// Four columns around a square tube; the fifth repeats the first.
	ring := []math.Vec3{{X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: -1}}
	var pts []math.Vec3
	for r := 0; r < 3; r++ {
		for _, p := range ring {
			pts = append(pts, p.Add(math.Vec3{Z: float64(r)}))
		}
	}
	b, mesh := newTestBuilder(t, facet.Default())
	if err := b.AddRowMajorQuadGrid(pts, nil, nil, 5, 3); err != nil {
		t.Fatal(err)
	}
	mustValidate(t, mesh)
	if len(mesh.Points) != 12 {
		t.Errorf("got %d points, want 12", len(mesh.Points))
	}
	// Only the bottom and top rings are visible.
	if n := countVisible(mesh); n != 8 {
		t.Errorf("got %d visible edges, want 8", n)
	}
	for _, f := range mesh.Facets() {
		c := facetCentroid(mesh, f)
		if facetNormal(mesh, f).Dot(math.Vec3{X: c.X, Y: c.Y}) <= 0 {
			t.Errorf("facet %v faces into the tube", f.Points)
		}
	}
}

func TestRowMajorQuadGridErrors(t *testing.T) {
	tests := []struct {
		name      string
		points    []math.Vec3
		normals   []math.Vec3
		params    []math.Vec2
		numPerRow int
		numRow    int
		wantErr   error
	}{
		{"count mismatch", flatGrid(3, 3), nil, nil, 3, 2, ErrInvalidGrid},
		{"single row", flatGrid(3, 1), nil, nil, 3, 1, ErrInvalidGrid},
		{"normal count", flatGrid(2, 2), make([]math.Vec3, 3), nil, 2, 2, ErrInvalidGrid},
		{"param count", flatGrid(2, 2), nil, make([]math.Vec2, 1), 2, 2, ErrInvalidGrid},
		{"non-finite", []math.Vec3{{}, {X: 1}, {Y: gomath.NaN()}, {X: 1, Y: 1}}, nil, nil, 2, 2, ErrInvalidVector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, mesh := newTestBuilder(t, facet.Default())
			err := b.AddRowMajorQuadGrid(tt.points, tt.normals, tt.params, tt.numPerRow, tt.numRow)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if mesh.FacetCount() != 0 || len(mesh.Points) != 0 {
				t.Error("failed grid changed the mesh")
			}
		})
	}
}

func TestTriangleStrip(t *testing.T) {
	b, mesh := newTestBuilder(t, facet.Default())
	strip := []math.Vec3{{}, {Y: 1}, {X: 1}, {X: 1, Y: 1}, {X: 2}}
	if err := b.AddTriangleStrip(strip, nil, nil); err != nil {
		t.Fatalf("AddTriangleStrip: %v", err)
	}
	mustValidate(t, mesh)

	if mesh.FacetCount() != 3 {
		t.Errorf("got %d facets, want 3", mesh.FacetCount())
	}
	for _, f := range mesh.Facets() {
		if facetNormal(mesh, f).Z >= 0 {
			t.Errorf("facet %v does not share the strip orientation", f.Points)
		}
	}
	if n := countVisible(mesh); n != 5 {
		t.Errorf("got %d visible edges, want the 5 outline edges", n)
	}
}

func TestTriangleStripSkipsDegenerate(t *testing.T) {
	b, mesh := newTestBuilder(t, facet.Default())
	strip := []math.Vec3{{}, {Y: 1}, {Y: 1}, {X: 1, Y: 1}, {X: 1}}
	if err := b.AddTriangleStrip(strip, nil, nil); err != nil {
		t.Fatal(err)
	}
	mustValidate(t, mesh)
	if hasRepeatedCorner(mesh) {
		t.Error("degenerate triangle emitted")
	}
	if mesh.FacetCount() != 1 {
		t.Errorf("got %d facets, want 1", mesh.FacetCount())
	}
}

func TestTriangleStripErrors(t *testing.T) {
	b, _ := newTestBuilder(t, facet.Default())
	if err := b.AddTriangleStrip([]math.Vec3{{}, {X: 1}}, nil, nil); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("two points: err = %v", err)
	}
	pts := []math.Vec3{{}, {X: 1}, {Y: 1}}
	if err := b.AddTriangleStrip(pts, make([]math.Vec3, 2), nil); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("normal count: err = %v", err)
	}
}

func TestPolygon(t *testing.T) {
	pentagon := make([]math.Vec3, 0, 6)
	for i := 0; i < 5; i++ {
		a := 2 * gomath.Pi * float64(i) / 5
		pentagon = append(pentagon, math.Vec3{X: gomath.Cos(a), Y: gomath.Sin(a), Z: 2})
	}
	pentagon = append(pentagon, pentagon[0])

	b, mesh := newTestBuilder(t, facet.Default())
	if err := b.AddPolygon(pentagon); err != nil {
		t.Fatalf("AddPolygon: %v", err)
	}
	mustValidate(t, mesh)
	facets := mesh.Facets()
	if len(facets) != 1 || len(facets[0].Points) != 5 {
		t.Fatalf("got %d facets, want one pentagon", len(facets))
	}
	if diff := cmp.Diff([]bool{true, true, true, true, true}, facets[0].Visible); diff != "" {
		t.Errorf("visibility mismatch (-want +got):\n%s", diff)
	}
	if n := mesh.Normals[facets[0].Normals[0]]; !n.AlmostEqual(math.Vec3{Z: 1}, 1e-12) {
		t.Errorf("normal = %v, want +z", n)
	}
}

func TestPolygonErrors(t *testing.T) {
	tests := []struct {
		name    string
		points  []math.Vec3
		wantErr error
	}{
		{"two points", []math.Vec3{{}, {X: 1}, {}}, ErrTooFewPoints},
		{"collinear", []math.Vec3{{}, {X: 1}, {X: 2}}, ErrInvalidVector},
		{"non-finite", []math.Vec3{{}, {X: gomath.Inf(-1)}, {Y: 1}}, ErrInvalidVector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, mesh := newTestBuilder(t, facet.Default())
			if err := b.AddPolygon(tt.points); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if mesh.FacetCount() != 0 {
				t.Errorf("emitted %d facets", mesh.FacetCount())
			}
		})
	}
}
