package polyface

import (
	"github.com/peterstace/simplefeatures/rtree"

	"github.com/Faultbox/polyface/pkg/math"
)

// registry welds values within a tolerance. Entries are indexed by their XY
// position in an R-tree; candidates from a box search are checked by full
// Euclidean distance and the lowest matching index wins, so lookups do not
// depend on tree shape. Non-finite values are never indexed.
type registry struct {
	tol  float64
	tree rtree.RTree
}

func newRegistry(tol float64) *registry {
	if !(tol >= 0) {
		tol = 0
	}
	return &registry{tol: tol}
}

// find returns the lowest index whose value lies within tol of v. at reads
// back a stored value.
func (r *registry) find(v math.Vec3, at func(int) math.Vec3) (int, bool) {
	if !v.IsFinite() {
		return 0, false
	}
	best := -1
	box := rtree.Box{MinX: v.X - r.tol, MinY: v.Y - r.tol, MaxX: v.X + r.tol, MaxY: v.Y + r.tol}
	_ = r.tree.RangeSearch(box, func(id int) error {
		if best >= 0 && id > best {
			return nil
		}
		if at(id).Distance(v) <= r.tol {
			best = id
		}
		return nil
	})
	return best, best >= 0
}

func (r *registry) insert(v math.Vec3, id int) {
	if !v.IsFinite() {
		return
	}
	r.tree.Insert(rtree.Box{MinX: v.X, MinY: v.Y, MaxX: v.X, MaxY: v.Y}, id)
}

// FindOrAddPoint returns the index of a mesh point within the point-match
// tolerance of p, appending p if there is none. p is in world coordinates.
func (b *Builder) FindOrAddPoint(p math.Vec3) int {
	if i, ok := b.points.find(p, func(i int) math.Vec3 { return b.mesh.Points[i] }); ok {
		return i
	}
	b.mesh.Points = append(b.mesh.Points, p)
	i := len(b.mesh.Points) - 1
	b.points.insert(p, i)
	return i
}

// FindOrAddNormal returns the index of a mesh normal within the
// normal-match tolerance of n, appending n if there is none.
func (b *Builder) FindOrAddNormal(n math.Vec3) int {
	if i, ok := b.normals.find(n, func(i int) math.Vec3 { return b.mesh.Normals[i] }); ok {
		return i
	}
	b.mesh.Normals = append(b.mesh.Normals, n)
	i := len(b.mesh.Normals) - 1
	b.normals.insert(n, i)
	return i
}

// FindOrAddParam returns the index of a mesh param within the param-match
// tolerance of uv, appending uv if there is none.
func (b *Builder) FindOrAddParam(uv math.Vec2) int {
	v := math.Vec3{X: uv.X, Y: uv.Y}
	at := func(i int) math.Vec3 { return math.Vec3{X: b.mesh.Params[i].X, Y: b.mesh.Params[i].Y} }
	if i, ok := b.params.find(v, at); ok {
		return i
	}
	b.mesh.Params = append(b.mesh.Params, uv)
	i := len(b.mesh.Params) - 1
	b.params.insert(v, i)
	return i
}

// findOrAddLocalPoint maps p through the local-to-world transform before
// welding it.
func (b *Builder) findOrAddLocalPoint(p math.Vec3) int {
	return b.FindOrAddPoint(b.state.LocalToWorld.TransformPoint(p))
}

// findOrAddLocalNormal maps a local surface normal to world space,
// normalizes it and applies normal reversal. A normal that cannot be
// normalized is stored as the zero vector.
func (b *Builder) findOrAddLocalNormal(n math.Vec3) int {
	w := b.state.WorldToLocal.TransposeTransformDirection(n).Normalize()
	if b.state.ReverseNormals {
		w = w.Negate()
	}
	return b.FindOrAddNormal(w)
}
