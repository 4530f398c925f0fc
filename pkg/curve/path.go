package curve

import (
	"fmt"
	"strings"

	"github.com/Faultbox/polyface/pkg/math"
)

// Boundary tags how a path bounds area.
type Boundary int

// Boundary types.
const (
	BoundaryOpen   Boundary = iota // open chain
	BoundaryOuter                  // closed loop, area on the left
	BoundaryInner                  // closed loop bounding a hole
	BoundaryParity                 // region of child loops combined by parity
	BoundaryUnion                  // region of child areas combined by union
)

var boundaryNames = map[Boundary]string{
	BoundaryOpen:   "open",
	BoundaryOuter:  "outer",
	BoundaryInner:  "inner",
	BoundaryParity: "parity",
	BoundaryUnion:  "union",
}

// String returns the boundary name.
func (b Boundary) String() string {
	if s, ok := boundaryNames[b]; ok {
		return s
	}
	return fmt.Sprintf("boundary(%d)", int(b))
}

// ParseBoundary converts a name such as "outer" to a Boundary.
func ParseBoundary(s string) (Boundary, error) {
	for b, name := range boundaryNames {
		if strings.EqualFold(s, name) {
			return b, nil
		}
	}
	return BoundaryOpen, fmt.Errorf("unknown boundary type %q", s)
}

// Path is an ordered sequence of primitives with a boundary tag. Loops and
// open chains hold curves; parity and union regions hold ChildRegion
// entries.
type Path struct {
	Boundary   Boundary
	Primitives []Primitive
}

// NewOpenPath returns an open chain.
func NewOpenPath(prims ...Primitive) *Path {
	return &Path{Boundary: BoundaryOpen, Primitives: prims}
}

// NewLoop returns an outer loop.
func NewLoop(prims ...Primitive) *Path {
	return &Path{Boundary: BoundaryOuter, Primitives: prims}
}

// NewRegion returns a parity or union region holding the given loops.
func NewRegion(boundary Boundary, loops ...*Path) *Path {
	p := &Path{Boundary: boundary}
	for _, l := range loops {
		p.Primitives = append(p.Primitives, ChildRegion{Path: l})
	}
	return p
}

// NewPolygon returns a closed loop through points as a single line string.
// The closing point is added if missing.
func NewPolygon(points ...math.Vec3) *Path {
	pts := append([]math.Vec3(nil), points...)
	if len(pts) > 0 && pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	return NewLoop(LineString{Points: pts})
}

// IsClosed reports whether the path is a loop.
func (p *Path) IsClosed() bool {
	return p.Boundary == BoundaryOuter || p.Boundary == BoundaryInner
}

// IsRegion reports whether the path is a parity or union region.
func (p *Path) IsRegion() bool {
	return p.Boundary == BoundaryParity || p.Boundary == BoundaryUnion
}

// Children returns the nested paths of a region.
func (p *Path) Children() []*Path {
	var out []*Path
	for _, prim := range p.Primitives {
		if child, ok := GetChildRegion(prim); ok {
			out = append(out, child)
		}
	}
	return out
}

// Length returns the summed arc length of the primitives (of all children
// for a region).
func (p *Path) Length() (float64, error) {
	var sum float64
	for _, prim := range p.Primitives {
		if child, ok := GetChildRegion(prim); ok {
			l, err := child.Length()
			if err != nil {
				return 0, err
			}
			sum += l
			continue
		}
		l, err := ArcLength(prim)
		if err != nil {
			return 0, err
		}
		sum += l
	}
	return sum, nil
}
