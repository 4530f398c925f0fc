// Package polyface builds indexed triangle and quad meshes from swept,
// ruled and parametric surfaces.
//
// A Builder appends to a caller-owned Mesh. Points, normals and params are
// welded through per-stream registries, facets are written as index runs
// closed by Terminator, and every point index carries a visibility flag for
// the edge that leaves it.
package polyface

import (
	"fmt"

	"github.com/Faultbox/polyface/pkg/math"
)

// Terminator closes a facet in every index stream.
const Terminator = -1

// EdgeChainRole tags what an edge chain traces on the surface.
type EdgeChainRole int

// Edge chain roles.
const (
	ProfileStart EdgeChainRole = iota // first section of a sweep or ruled surface
	ProfileEnd                        // last section
	Profile                           // an intermediate section
	Lateral                           // a visible rule line across sections
)

// String returns the role name.
func (r EdgeChainRole) String() string {
	switch r {
	case ProfileStart:
		return "profile-start"
	case ProfileEnd:
		return "profile-end"
	case Profile:
		return "profile"
	case Lateral:
		return "lateral"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// EdgeChain is a polyline through point indices.
type EdgeChain struct {
	Role    EdgeChainRole
	Indices []int
}

// Range2 is a 2D range.
type Range2 struct {
	Min, Max math.Vec2
}

// FaceData describes one face: a run of consecutive facets closed by
// EndFace.
type FaceData struct {
	FirstFacet         int
	FacetCount         int
	ParamDistanceRange Range2
}

// Bounds holds the axis-aligned bounding box of the mesh points.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Mesh holds the indexed output.
type Mesh struct {
	Points  []math.Vec3
	Normals []math.Vec3
	Params  []math.Vec2

	PointIndex  []int
	EdgeVisible []bool // parallel to PointIndex
	NormalIndex []int
	ParamIndex  []int

	Faces      []FaceData
	EdgeChains []EdgeChain
}

// Facet is one decoded facet. Visible[k] labels the edge from corner k to
// corner k+1 (cyclic). Normals and Params are nil when the mesh carries no
// such stream.
type Facet struct {
	Points  []int
	Visible []bool
	Normals []int
	Params  []int
}

// FacetCount returns the number of terminated facets.
func (m *Mesh) FacetCount() int {
	n := 0
	for _, idx := range m.PointIndex {
		if idx == Terminator {
			n++
		}
	}
	return n
}

// Facets decodes the index streams.
func (m *Mesh) Facets() []Facet {
	var facets []Facet
	normals := splitRuns(m.NormalIndex)
	params := splitRuns(m.ParamIndex)

	start := 0
	for i, idx := range m.PointIndex {
		if idx != Terminator {
			continue
		}
		f := Facet{
			Points:  m.PointIndex[start:i],
			Visible: m.EdgeVisible[start:i],
		}
		if n := len(facets); n < len(normals) {
			f.Normals = normals[n]
		}
		if n := len(facets); n < len(params) {
			f.Params = params[n]
		}
		facets = append(facets, f)
		start = i + 1
	}
	return facets
}

func splitRuns(stream []int) [][]int {
	var runs [][]int
	start := 0
	for i, idx := range stream {
		if idx == Terminator {
			runs = append(runs, stream[start:i])
			start = i + 1
		}
	}
	return runs
}

// Validate checks the structural invariants of the mesh: every index in
// range, every facet closed with at least 3 corners, and the normal and
// param streams facet-aligned with the point stream.
func (m *Mesh) Validate() error {
	if len(m.EdgeVisible) != len(m.PointIndex) {
		return fmt.Errorf("edge visibility has %d entries for %d point indices", len(m.EdgeVisible), len(m.PointIndex))
	}
	if err := checkStream("point", m.PointIndex, len(m.Points)); err != nil {
		return err
	}
	facets := splitRuns(m.PointIndex)
	for i, f := range facets {
		if len(f) < 3 {
			return fmt.Errorf("facet %d has %d corners", i, len(f))
		}
	}
	for _, s := range []struct {
		name   string
		stream []int
		size   int
	}{
		{"normal", m.NormalIndex, len(m.Normals)},
		{"param", m.ParamIndex, len(m.Params)},
	} {
		if len(s.stream) == 0 {
			continue
		}
		if err := checkStream(s.name, s.stream, s.size); err != nil {
			return err
		}
		runs := splitRuns(s.stream)
		if len(runs) != len(facets) {
			return fmt.Errorf("%s stream has %d facets, point stream %d", s.name, len(runs), len(facets))
		}
		for i := range runs {
			if len(runs[i]) != len(facets[i]) {
				return fmt.Errorf("%s facet %d has %d corners, want %d", s.name, i, len(runs[i]), len(facets[i]))
			}
		}
	}
	for i, chain := range m.EdgeChains {
		for _, idx := range chain.Indices {
			if idx < 0 || idx >= len(m.Points) {
				return fmt.Errorf("edge chain %d: index %d out of range", i, idx)
			}
		}
	}
	return nil
}

func checkStream(name string, stream []int, size int) error {
	for i, idx := range stream {
		if idx == Terminator {
			continue
		}
		if idx < 0 || idx >= size {
			return fmt.Errorf("%s index %d at %d out of range [0,%d)", name, idx, i, size)
		}
	}
	if n := len(stream); n > 0 && stream[n-1] != Terminator {
		return fmt.Errorf("%s stream ends with an open facet", name)
	}
	return nil
}

// Range returns the bounding box of the points, or false for an empty mesh.
func (m *Mesh) Range() (Bounds, bool) {
	if len(m.Points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{Min: m.Points[0], Max: m.Points[0]}
	for _, p := range m.Points[1:] {
		updateBounds(&b, p)
	}
	return b, true
}

func updateBounds(b *Bounds, p math.Vec3) {
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.Z < b.Min.Z {
		b.Min.Z = p.Z
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	if p.Z > b.Max.Z {
		b.Max.Z = p.Z
	}
}
