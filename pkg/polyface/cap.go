package polyface

import (
	"errors"
	"fmt"

	poly2tri "github.com/ByteArena/poly2tri-go"
	"go.uber.org/zap"

	"github.com/Faultbox/polyface/pkg/curve"
	"github.com/Faultbox/polyface/pkg/math"
)

var errUnmappedVertex = errors.New("triangulation produced an unknown vertex")

// vertexRef locates a cap vertex: loop 0 is the outer loop, the rest are
// holes.
type vertexRef struct {
	loop, index int
}

// addCap emits a planar cap as one face. Loops are in local coordinates
// without closing points. Triangles face outward.
func (b *Builder) addCap(outer []math.Vec3, holes [][]math.Vec3, outward math.Vec3) {
	if len(outer) < 3 {
		return
	}
	n, ok := outward.Unit()
	if !ok {
		if n, ok = curve.AreaNormal(outer).Unit(); !ok {
			return
		}
	}
	x := n.Perpendicular()
	y := n.Cross(x)
	origin := outer[0]

	loops := append([][]math.Vec3{outer}, holes...)
	flat := make([][]math.Vec2, len(loops))
	var lo math.Vec2
	var hi math.Vec2
	for l, loop := range loops {
		flat[l] = make([]math.Vec2, len(loop))
		for i, p := range loop {
			d := p.Sub(origin)
			q := math.Vec2{X: d.Dot(x), Y: d.Dot(y)}
			flat[l][i] = q
			if l == 0 && i == 0 {
				lo, hi = q, q
			}
			lo = math.Vec2{X: min(lo.X, q.X), Y: min(lo.Y, q.Y)}
			hi = math.Vec2{X: max(hi.X, q.X), Y: max(hi.Y, q.Y)}
		}
	}

	tris, err := triangulate(flat)
	if err != nil {
		b.log.Warn("cap triangulation failed, using a fan", zap.Error(err), zap.Int("holes", len(holes)))
		tris = fanTriangles(len(outer))
	}

	indices := make([][]int, len(loops))
	for l, loop := range loops {
		indices[l] = make([]int, len(loop))
		for i, p := range loop {
			indices[l][i] = b.findOrAddLocalPoint(p)
		}
	}
	normal := -1
	if b.opts.NormalsRequired {
		normal = b.findOrAddLocalNormal(n)
	}
	corner := func(v, next vertexRef) Corner {
		c := Corner{Point: indices[v.loop][v.index], Normal: normal, Param: -1}
		if next.loop == v.loop {
			size := len(loops[v.loop])
			c.Visible = (v.index+1)%size == next.index || (next.index+1)%size == v.index
		}
		if b.opts.ParamsRequired {
			c.Param = b.FindOrAddParam(flat[v.loop][v.index].Sub(lo))
		}
		return c
	}

	for _, t := range tris {
		a, bb, c := flat[t[0].loop][t[0].index], flat[t[1].loop][t[1].index], flat[t[2].loop][t[2].index]
		if bb.Sub(a).Cross(c.Sub(a)) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		b.addFacet([]Corner{corner(t[0], t[1]), corner(t[1], t[2]), corner(t[2], t[0])})
	}
	b.setParamDistanceRange(Range2{Max: hi.Sub(lo)})
	b.EndFace()
}

// triangulate runs a constrained Delaunay triangulation of the outer loop
// and holes. poly2tri panics on some degenerate input; that is reported as
// an error.
func triangulate(loops [][]math.Vec2) (tris [][3]vertexRef, err error) {
	defer func() {
		if r := recover(); r != nil {
			tris, err = nil, fmt.Errorf("poly2tri: %v", r)
		}
	}()

	refs := make(map[*poly2tri.Point]vertexRef)
	contour := func(l int) []*poly2tri.Point {
		pts := make([]*poly2tri.Point, len(loops[l]))
		for i, q := range loops[l] {
			pts[i] = poly2tri.NewPoint(q.X, q.Y)
			refs[pts[i]] = vertexRef{loop: l, index: i}
		}
		return pts
	}

	swctx := poly2tri.NewSweepContext(contour(0), false)
	for l := 1; l < len(loops); l++ {
		if len(loops[l]) >= 3 {
			swctx.AddHole(contour(l))
		}
	}
	swctx.Triangulate()

	for _, tr := range swctx.GetTriangles() {
		var t [3]vertexRef
		for i := 0; i < 3; i++ {
			ref, ok := refs[tr.Points[i]]
			if !ok {
				return nil, errUnmappedVertex
			}
			t[i] = ref
		}
		tris = append(tris, t)
	}
	if len(tris) == 0 {
		return nil, errors.New("poly2tri: no triangles")
	}
	return tris, nil
}

// fanTriangles triangulates an outer loop of n vertices from vertex 0.
func fanTriangles(n int) [][3]vertexRef {
	var tris [][3]vertexRef
	for i := 1; i+1 < n; i++ {
		tris = append(tris, [3]vertexRef{{0, 0}, {0, i}, {0, i + 1}})
	}
	return tris
}
