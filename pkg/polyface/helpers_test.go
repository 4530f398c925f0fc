package polyface

import (
	"testing"

	"github.com/Faultbox/polyface/pkg/facet"
	"github.com/Faultbox/polyface/pkg/math"
)

func newTestBuilder(t *testing.T, opts facet.Options) (*Builder, *Mesh) {
	t.Helper()
	mesh := &Mesh{}
	b, err := NewBuilder(mesh, opts)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b, mesh
}

func mustValidate(t *testing.T, m *Mesh) {
	t.Helper()
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

// signedVolume sums the fan-triangulated facets against the origin. A
// closed mesh with outward facets has positive volume.
func signedVolume(m *Mesh) float64 {
	var v float64
	for _, f := range m.Facets() {
		p0 := m.Points[f.Points[0]]
		for k := 1; k+1 < len(f.Points); k++ {
			p1, p2 := m.Points[f.Points[k]], m.Points[f.Points[k+1]]
			v += p0.Dot(p1.Cross(p2)) / 6
		}
	}
	return v
}

// facetNormal returns the Newell normal of a facet in emitted order.
func facetNormal(m *Mesh, f Facet) math.Vec3 {
	var n math.Vec3
	for k := range f.Points {
		a := m.Points[f.Points[k]]
		b := m.Points[f.Points[(k+1)%len(f.Points)]]
		n = n.Add(math.Vec3{
			X: (a.Y - b.Y) * (a.Z + b.Z),
			Y: (a.Z - b.Z) * (a.X + b.X),
			Z: (a.X - b.X) * (a.Y + b.Y),
		})
	}
	return n
}

// countVisible returns the number of visible facet edges.
func countVisible(m *Mesh) int {
	n := 0
	for _, f := range m.Facets() {
		for _, v := range f.Visible {
			if v {
				n++
			}
		}
	}
	return n
}

// hasRepeatedCorner reports whether any facet uses a point twice.
func hasRepeatedCorner(m *Mesh) bool {
	for _, f := range m.Facets() {
		seen := map[int]bool{}
		for _, p := range f.Points {
			if seen[p] {
				return true
			}
			seen[p] = true
		}
	}
	return false
}

// pointIndex returns the index of the mesh point nearest p, or -1 when none
// lies within tol.
func pointIndex(m *Mesh, p math.Vec3, tol float64) int {
	for i, q := range m.Points {
		if q.Distance(p) <= tol {
			return i
		}
	}
	return -1
}

func facetCentroid(m *Mesh, f Facet) math.Vec3 {
	var c math.Vec3
	for _, p := range f.Points {
		c = c.Add(m.Points[p])
	}
	return c.Scale(1 / float64(len(f.Points)))
}
