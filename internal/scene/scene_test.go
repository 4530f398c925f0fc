package scene

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/polyface/pkg/facet"
	"github.com/Faultbox/polyface/pkg/math"
)

func TestParseMergesFacetOptions(t *testing.T) {
	base := facet.Default()
	base.MinPerEllipse = 6

	s, err := Parse(strings.NewReader(`
facet:
  max_edge_length: 0.5
  edge_chains: true
shapes:
  - type: sphere
    radius: 1
`), base)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := base
	want.MaxEdgeLength = 0.5
	want.EdgeChainsRequired = true
	if diff := cmp.Diff(want, s.Facet); diff != "" {
		t.Errorf("facet options mismatch (-want +got):\n%s", diff)
	}
	if len(s.Shapes) != 1 || s.Shapes[0].Type != TypeSphere || s.Shapes[0].Radius != 1 {
		t.Errorf("unexpected shapes %+v", s.Shapes)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"unknown type", "shapes:\n  - type: teapot\n", ErrUnknownShapeType},
		{"invalid options", "facet:\n  max_edge_length: -1\n", facet.ErrInvalidOptions},
		{"unknown key", "shapes:\n  - type: sphere\n    radius: 1\n    colour: red\n", nil},
		{"short vector", "shapes:\n  - type: sphere\n    center: [1, 2]\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.content), facet.Default())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	s, err := Parse(strings.NewReader(""), facet.Default())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(s.Shapes) != 0 {
		t.Errorf("got %d shapes, want 0", len(s.Shapes))
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte("shapes:\n  - type: polygon\n    points: [[0,0,0],[1,0,0],[0,1,0]]\n"), 0644); err != nil {
		t.Fatalf("failed to write scene: %v", err)
	}

	s, err := Load(path, facet.Default())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Shapes) != 1 || len(s.Shapes[0].Points) != 3 {
		t.Errorf("unexpected shapes %+v", s.Shapes)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), facet.Default()); err == nil {
		t.Error("expected error loading missing file")
	}
}

func TestShapeLabel(t *testing.T) {
	named := Shape{Type: TypeTube, Name: "pipe"}
	if got := named.Label(2); got != `shape 2 (tube "pipe")` {
		t.Errorf("Label = %q", got)
	}
	anon := Shape{Type: TypeDisk}
	if got := anon.Label(0); got != "shape 0 (disk)" {
		t.Errorf("Label = %q", got)
	}
}

func TestTransformMatrix(t *testing.T) {
	tests := []struct {
		name string
		tr   Transform
		in   math.Vec3
		want math.Vec3
	}{
		{"identity", Transform{}, math.Vec3{X: 1, Y: 2, Z: 3}, math.Vec3{X: 1, Y: 2, Z: 3}},
		{"translate", Transform{Translate: Vec{10, 0, -1}}, math.Vec3{X: 1}, math.Vec3{X: 11, Z: -1}},
		{"rotate quarter turn", Transform{Rotate: &Rotation{Axis: Vec{0, 0, 2}, Degrees: 90}}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{"scale then translate", Transform{Translate: Vec{1, 0, 0}, Scale: &Vec{2, 3, 4}}, math.Vec3{X: 1, Y: 1, Z: 1}, math.Vec3{X: 3, Y: 3, Z: 4}},
		{
			"scale rotate translate",
			Transform{Translate: Vec{0, 0, 5}, Rotate: &Rotation{Axis: Vec{0, 0, 1}, Degrees: 90}, Scale: &Vec{2, 1, 1}},
			math.Vec3{X: 1},
			math.Vec3{Y: 2, Z: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.tr.Matrix()
			if err != nil {
				t.Fatalf("Matrix: %v", err)
			}
			if got := m.TransformPoint(tt.in); !got.AlmostEqual(tt.want, 1e-12) {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransformZeroAxis(t *testing.T) {
	tr := Transform{Rotate: &Rotation{Degrees: 45}}
	if _, err := tr.Matrix(); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("got %v, want ErrInvalidShape", err)
	}
}
