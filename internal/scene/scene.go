// Package scene reads YAML scene files describing surfaces to facet and
// drives a polyface.Builder over them.
//
// A scene file looks like:
//
//	facet:
//	  max_edge_length: 0.5
//	shapes:
//	  - type: linear_sweep
//	    name: slab
//	    points: [[0,0,0], [4,0,0], [4,2,0], [0,2,0], [0,0,0]]
//	    step: [0,0,1]
//	    capped: true
//	  - type: sphere
//	    center: [0,0,5]
//	    radius: 1
//	    transform:
//	      rotate: {axis: [1,0,0], degrees: 90}
//
// Facet settings in the file override the options the scene is loaded
// with; anything not named keeps its base value.
package scene

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/polyface/pkg/facet"
	"github.com/Faultbox/polyface/pkg/math"
)

// Scene errors.
var (
	ErrUnknownShapeType = errors.New("unknown shape type")
	ErrInvalidShape     = errors.New("invalid shape")
	ErrInvalidCurve     = errors.New("invalid curve")
)

// Shape types.
const (
	TypeLinearSweep     = "linear_sweep"
	TypeRotationalSweep = "rotational_sweep"
	TypeRuled           = "ruled"
	TypeDisk            = "disk"
	TypeSphere          = "sphere"
	TypeEllipsoid       = "ellipsoid"
	TypeTube            = "tube"
	TypeGrid            = "grid"
	TypeStrip           = "strip"
	TypePolygon         = "polygon"
)

// Vec is a point or direction written as [x, y, z].
type Vec [3]float64

// V3 converts to a math.Vec3.
func (v Vec) V3() math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// Scene is a parsed scene file.
type Scene struct {
	Facet  facet.Options `yaml:"facet"`
	Shapes []Shape       `yaml:"shapes"`
}

// Shape is one construction call. Which fields apply depends on Type.
type Shape struct {
	Type      string     `yaml:"type"`
	Name      string     `yaml:"name"`
	Transform *Transform `yaml:"transform"`
	Reverse   bool       `yaml:"reverse"` // flip facet orientation

	// linear_sweep, rotational_sweep, grid, strip, polygon
	Points  []Vec        `yaml:"points"`
	Normals []Vec        `yaml:"normals"`
	Params  [][2]float64 `yaml:"params"`
	Path    *PathSpec    `yaml:"path"`
	Capped  bool         `yaml:"capped"`

	// linear_sweep
	Step Vec `yaml:"step"`

	// rotational_sweep; a zero sweep means a full turn
	Center       Vec     `yaml:"center"`
	Axis         Vec     `yaml:"axis"`
	SweepDegrees float64 `yaml:"sweep_degrees"`
	Steps        int     `yaml:"steps"`

	// ruled
	Contours []PathSpec `yaml:"contours"`

	// disk, sphere, ellipsoid, tube
	Radius      float64 `yaml:"radius"`
	Normal      Vec     `yaml:"normal"`
	PerQuadrant int     `yaml:"per_quadrant"`

	// ellipsoid
	X     Vec         `yaml:"x"`
	Y     Vec         `yaml:"y"`
	Z     Vec         `yaml:"z"`
	Theta *AngleRange `yaml:"theta"`
	Phi   *AngleRange `yaml:"phi"`

	// tube
	Centerline      *CurveSpec `yaml:"centerline"`
	EdgesPerSection int        `yaml:"edges_per_section"`
	Sections        int        `yaml:"sections"`

	// grid
	PerRow int `yaml:"per_row"`
	Rows   int `yaml:"rows"`
}

// Label names the shape in logs and errors.
func (s *Shape) Label(i int) string {
	if s.Name != "" {
		return fmt.Sprintf("shape %d (%s %q)", i, s.Type, s.Name)
	}
	return fmt.Sprintf("shape %d (%s)", i, s.Type)
}

// AngleRange is a start angle and sweep in degrees.
type AngleRange struct {
	StartDegrees float64 `yaml:"start_degrees"`
	SweepDegrees float64 `yaml:"sweep_degrees"`
}

// Load reads a scene file. base supplies the facet options the file's
// facet section is merged onto.
func Load(path string, base facet.Options) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f, base)
	if err != nil {
		return nil, fmt.Errorf("loading scene from %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scene from r.
func Parse(r io.Reader, base facet.Options) (*Scene, error) {
	s := &Scene{Facet: base}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := s.Facet.Validate(); err != nil {
		return nil, err
	}
	for i := range s.Shapes {
		if !knownType(s.Shapes[i].Type) {
			return nil, fmt.Errorf("%s: %w %q", s.Shapes[i].Label(i), ErrUnknownShapeType, s.Shapes[i].Type)
		}
	}
	return s, nil
}

func knownType(t string) bool {
	switch t {
	case TypeLinearSweep, TypeRotationalSweep, TypeRuled, TypeDisk, TypeSphere,
		TypeEllipsoid, TypeTube, TypeGrid, TypeStrip, TypePolygon:
		return true
	}
	return false
}
