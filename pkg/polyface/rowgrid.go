package polyface

import (
	"fmt"

	"github.com/Faultbox/polyface/pkg/curve"
	"github.com/Faultbox/polyface/pkg/math"
)

// quadGrid is a resolved row-major grid handed to emitQuadGrid. Cell (r, c)
// spans rows r, r+1 and columns c, c+1.
type quadGrid struct {
	numRow, numCol int
	point          func(r, c int) int
	// attrs returns the normal and param indices of grid vertex (r, c) as
	// used by the cell at (cellRow, cellCol).
	attrs   func(r, c, cellRow, cellCol int) (normal, param int)
	rowEdge func(r, c int) bool // edge (r,c)-(r,c+1)
	colEdge func(r, c int) bool // edge (r,c)-(r+1,c)
}

// emitQuadGrid emits every cell of g. Corners run (r,c), (r,c+1),
// (r+1,c+1), (r+1,c), so the facet normal follows the row direction
// crossed with the column direction.
func (b *Builder) emitQuadGrid(g quadGrid) {
	for r := 0; r+1 < g.numRow; r++ {
		for c := 0; c+1 < g.numCol; c++ {
			mk := func(rr, cc int, visible bool) Corner {
				n, uv := g.attrs(rr, cc, r, c)
				return Corner{Point: g.point(rr, cc), Normal: n, Param: uv, Visible: visible}
			}
			b.addQuad([4]Corner{
				mk(r, c, g.rowEdge(r, c)),
				mk(r, c+1, g.colEdge(r, c+1)),
				mk(r+1, c+1, g.rowEdge(r+1, c)),
				mk(r+1, c, g.colEdge(r, c)),
			})
		}
	}
}

// AddRowMajorQuadGrid emits quads for a numRow x numPerRow grid of points
// stored row by row. normals and params are optional and, when given, must
// match points in length; missing ones are derived from the grid. Boundary
// rows and columns are visible unless the grid wraps onto itself in that
// direction.
func (b *Builder) AddRowMajorQuadGrid(points, normals []math.Vec3, params []math.Vec2, numPerRow, numRow int) error {
	before := b.facets
	return b.finish("row-major grid", before, b.addRowMajorQuadGrid(points, normals, params, numPerRow, numRow))
}

func (b *Builder) addRowMajorQuadGrid(points, normals []math.Vec3, params []math.Vec2, numPerRow, numRow int) error {
	if numPerRow < 2 || numRow < 2 || len(points) != numPerRow*numRow {
		return fmt.Errorf("%w: %d points for %d x %d", ErrInvalidGrid, len(points), numRow, numPerRow)
	}
	if normals != nil && len(normals) != len(points) {
		return fmt.Errorf("%w: %d normals for %d points", ErrInvalidGrid, len(normals), len(points))
	}
	if params != nil && len(params) != len(points) {
		return fmt.Errorf("%w: %d params for %d points", ErrInvalidGrid, len(params), len(points))
	}
	for i, p := range points {
		if !p.IsFinite() {
			return fmt.Errorf("%w: point %d", ErrInvalidVector, i)
		}
	}
	at := func(r, c int) math.Vec3 { return points[r*numPerRow+c] }

	index := make([]int, len(points))
	for i, p := range points {
		index[i] = b.findOrAddLocalPoint(p)
	}
	closedCols, closedRows := true, true
	for r := 0; r < numRow; r++ {
		closedCols = closedCols && index[r*numPerRow] == index[r*numPerRow+numPerRow-1]
	}
	for c := 0; c < numPerRow; c++ {
		closedRows = closedRows && index[c] == index[(numRow-1)*numPerRow+c]
	}

	pg := newParamGrid(numRow, numPerRow, at)
	if b.opts.NormalsRequired && normals == nil {
		normals = gridNormals(numRow, numPerRow, at, closedRows, closedCols)
	}
	normalIndex := make([]int, len(points))
	paramIndex := make([]int, len(points))
	for i := range points {
		normalIndex[i], paramIndex[i] = -1, -1
		if b.opts.NormalsRequired {
			normalIndex[i] = b.findOrAddLocalNormal(normals[i])
		}
		if b.opts.ParamsRequired {
			uv := pg.at(b.opts.ParamMode, i/numPerRow, i%numPerRow)
			if params != nil {
				uv = params[i]
			}
			paramIndex[i] = b.FindOrAddParam(uv)
		}
	}

	b.emitQuadGrid(quadGrid{
		numRow: numRow,
		numCol: numPerRow,
		point:  func(r, c int) int { return index[r*numPerRow+c] },
		attrs: func(r, c, _, _ int) (int, int) {
			return normalIndex[r*numPerRow+c], paramIndex[r*numPerRow+c]
		},
		rowEdge: func(r, _ int) bool { return !closedRows && (r == 0 || r == numRow-1) },
		colEdge: func(_, c int) bool { return !closedCols && (c == 0 || c == numPerRow-1) },
	})
	b.setParamDistanceRange(pg.distanceRange())
	b.EndFace()
	return nil
}

// gridNormals estimates vertex normals from neighbouring grid points as
// the row direction crossed with the column direction. Closed directions
// wrap around the seam.
func gridNormals(numRow, numCol int, at func(r, c int) math.Vec3, closedRows, closedCols bool) []math.Vec3 {
	neighbours := func(i, n int, closed bool) (int, int) {
		lo, hi := i-1, i+1
		if closed {
			// The seam column (or row) repeats the first one.
			if lo < 0 {
				lo = n - 2
			}
			if hi > n-1 {
				hi = 1
			}
		}
		return max(lo, 0), min(hi, n-1)
	}
	out := make([]math.Vec3, numRow*numCol)
	for r := 0; r < numRow; r++ {
		r0, r1 := neighbours(r, numRow, closedRows)
		for c := 0; c < numCol; c++ {
			c0, c1 := neighbours(c, numCol, closedCols)
			du := at(r, c1).Sub(at(r, c0))
			dv := at(r1, c).Sub(at(r0, c))
			out[r*numCol+c] = du.Cross(dv)
		}
	}
	return out
}

// AddTriangleStrip emits the triangles of a strip: triangle k uses points
// k, k+1 and k+2, with every other triangle flipped so all share one
// orientation. The strip outline is visible; the rungs between triangles
// are not. Triangles with repeated points are skipped.
func (b *Builder) AddTriangleStrip(points, normals []math.Vec3, params []math.Vec2) error {
	before := b.facets
	return b.finish("triangle strip", before, b.addTriangleStrip(points, normals, params))
}

func (b *Builder) addTriangleStrip(points, normals []math.Vec3, params []math.Vec2) error {
	n := len(points)
	if n < 3 {
		return fmt.Errorf("%w: %d strip points", ErrTooFewPoints, n)
	}
	if (normals != nil && len(normals) != n) || (params != nil && len(params) != n) {
		return fmt.Errorf("%w: strip attribute count mismatch", ErrInvalidGrid)
	}
	for i, p := range points {
		if !p.IsFinite() {
			return fmt.Errorf("%w: point %d", ErrInvalidVector, i)
		}
	}

	index := make([]int, n)
	for i, p := range points {
		index[i] = b.findOrAddLocalPoint(p)
	}
	// Default params: distance along each side of the strip, and the side.
	var side [2]float64
	defaultUV := make([]math.Vec2, n)
	rung := points[0].Distance(points[1])
	for i := range points {
		if i >= 2 {
			side[i%2] += points[i].Distance(points[i-2])
		}
		defaultUV[i] = math.Vec2{X: side[i%2], Y: float64(i%2) * rung}
	}
	var rng Range2
	for _, uv := range defaultUV {
		rng.Max.X = max(rng.Max.X, uv.X)
		rng.Max.Y = max(rng.Max.Y, uv.Y)
	}

	for k := 0; k+2 < n; k++ {
		i0, i1, i2 := k, k+1, k+2
		if k%2 == 1 {
			i0, i1 = i1, i0
		}
		if index[i0] == index[i1] || index[i1] == index[i2] || index[i0] == index[i2] {
			continue
		}
		facetNormal := points[i1].Sub(points[i0]).Cross(points[i2].Sub(points[i0]))
		mk := func(i int, visible bool) Corner {
			c := Corner{Point: index[i], Normal: -1, Param: -1, Visible: visible}
			if b.opts.NormalsRequired {
				nv := facetNormal
				if normals != nil {
					nv = normals[i]
				}
				c.Normal = b.findOrAddLocalNormal(nv)
			}
			if b.opts.ParamsRequired {
				uv := defaultUV[i]
				if params != nil {
					uv = params[i]
				}
				c.Param = b.FindOrAddParam(uv)
			}
			return c
		}
		first, last := k == 0, k+3 == n
		if k%2 == 0 {
			b.addFacet([]Corner{mk(k, first), mk(k+1, last), mk(k+2, true)})
		} else {
			b.addFacet([]Corner{mk(k+1, first), mk(k, true), mk(k+2, last)})
		}
	}
	b.setParamDistanceRange(rng)
	b.EndFace()
	return nil
}

// AddPolygon emits a planar polygon as a single facet with every edge
// visible. A repeated closing point is ignored.
func (b *Builder) AddPolygon(points []math.Vec3) error {
	before := b.facets
	return b.finish("polygon", before, b.addPolygon(points))
}

func (b *Builder) addPolygon(points []math.Vec3) error {
	for i, p := range points {
		if !p.IsFinite() {
			return fmt.Errorf("%w: point %d", ErrInvalidVector, i)
		}
	}
	loop := dedupeLoop(points, b.tol().PointMatch)
	if len(loop) < 3 {
		return fmt.Errorf("%w: %d distinct polygon points", ErrTooFewPoints, len(loop))
	}
	n, ok := curve.AreaNormal(loop).Unit()
	if !ok {
		return fmt.Errorf("%w: polygon has no area", ErrInvalidVector)
	}
	x := n.Perpendicular()
	y := n.Cross(x)
	flat := make([]math.Vec2, len(loop))
	var lo, hi math.Vec2
	for i, p := range loop {
		d := p.Sub(loop[0])
		flat[i] = math.Vec2{X: d.Dot(x), Y: d.Dot(y)}
		lo = math.Vec2{X: min(lo.X, flat[i].X), Y: min(lo.Y, flat[i].Y)}
		hi = math.Vec2{X: max(hi.X, flat[i].X), Y: max(hi.Y, flat[i].Y)}
	}

	normal := -1
	if b.opts.NormalsRequired {
		normal = b.findOrAddLocalNormal(n)
	}
	corners := make([]Corner, len(loop))
	for i, p := range loop {
		corners[i] = Corner{Point: b.findOrAddLocalPoint(p), Normal: normal, Param: -1, Visible: true}
		if b.opts.ParamsRequired {
			corners[i].Param = b.FindOrAddParam(flat[i].Sub(lo))
		}
	}
	b.addFacet(corners)
	b.setParamDistanceRange(Range2{Max: hi.Sub(lo)})
	b.EndFace()
	return nil
}
