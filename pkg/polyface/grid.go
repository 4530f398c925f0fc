package polyface

import (
	"github.com/Faultbox/polyface/pkg/facet"
	"github.com/Faultbox/polyface/pkg/math"
	"github.com/Faultbox/polyface/pkg/stroke"
)

// gridSample is one stroked point of a contour row.
type gridSample struct {
	Point      math.Vec3
	TangentIn  math.Vec3
	TangentOut math.Vec3
	CurveIn    int
	CurveOut   int
	Break      bool // no cell between this sample and the previous one
	Joint      bool // the rule line through this sample is visible
	PointIndex int
}

type gridRow struct {
	samples []gridSample
	contour bool // an input contour rather than an interpolated row
}

// strokeGrid collects corresponding stroked contours, one row per contour.
// Every row has the same length: column k of each row holds corresponding
// samples.
type strokeGrid struct {
	rows   []gridRow
	closed bool
}

func newStrokeGrid(numContours int) *strokeGrid {
	g := &strokeGrid{rows: make([]gridRow, numContours)}
	for i := range g.rows {
		g.rows[i].contour = true
	}
	return g
}

func (g *strokeGrid) numColumns() int {
	if len(g.rows) == 0 {
		return 0
	}
	return len(g.rows[0].samples)
}

// appendPiece extends every row with one stroked piece per contour. Pieces
// that continue from the previous row end share its last sample; otherwise
// a break starts, and no cells span it. The decision is made for all rows
// together so the grid stays rectangular.
func (g *strokeGrid) appendPiece(curveID int, pieces [][]stroke.Sample, tol float64) {
	join := g.numColumns() > 0
	for c := range g.rows {
		if !join {
			break
		}
		row := g.rows[c].samples
		if row[len(row)-1].Point.Distance(pieces[c][0].Point) > tol {
			join = false
		}
	}
	for c, piece := range pieces {
		row := g.rows[c].samples
		for k, s := range piece {
			e := gridSample{
				Point:      s.Point,
				TangentIn:  s.Tangent,
				TangentOut: s.Tangent,
				CurveIn:    curveID,
				CurveOut:   curveID,
				PointIndex: -1,
			}
			if k == 0 {
				if join {
					last := &row[len(row)-1]
					last.TangentOut = s.Tangent
					last.CurveOut = curveID
					continue
				}
				e.CurveIn = noCurve
				e.Break = len(row) > 0
			}
			if k == len(piece)-1 {
				e.CurveOut = noCurve
			}
			row = append(row, e)
		}
		g.rows[c].samples = row
	}
}

// closeLoops joins the ends of every row when all of them close, carrying
// the tangents and curves across the seam.
func (g *strokeGrid) closeLoops(tol float64) {
	n := g.numColumns()
	if n < 3 {
		return
	}
	for _, row := range g.rows {
		if row.samples[0].Point.Distance(row.samples[n-1].Point) > tol {
			return
		}
	}
	for c := range g.rows {
		row := g.rows[c].samples
		first, last := &row[0], &row[n-1]
		first.TangentIn, first.CurveIn = last.TangentIn, last.CurveIn
		last.TangentOut, last.CurveOut = first.TangentOut, first.CurveOut
		last.Point = first.Point
	}
	g.closed = true
}

// classifyJoints sets the Joint flag of every sample.
func (g *strokeGrid) classifyJoints(tol facet.Tolerances) {
	for _, row := range g.rows {
		for k := range row.samples {
			s := &row.samples[k]
			s.Joint = IsVisibleJoint(
				JointSide{Point: s.Point, Tangent: s.TangentIn, Curve: s.CurveIn},
				JointSide{Point: s.Point, Tangent: s.TangentOut, Curve: s.CurveOut},
				tol)
		}
	}
}

// densify inserts interpolated rows between consecutive contours so that
// rule lines respect the edge length and angle limits. Inserted samples lie
// on the straight rule lines.
func (g *strokeGrid) densify(opts facet.Options) {
	if len(g.rows) < 2 {
		return
	}
	out := []gridRow{g.rows[0]}
	for r := 0; r+1 < len(g.rows); r++ {
		a, b := g.rows[r].samples, g.rows[r+1].samples
		var dist, turn float64
		for k := range a {
			dist = max(dist, a[k].Point.Distance(b[k].Point))
			if a[k].TangentOut.LengthSquared() > 0 && b[k].TangentOut.LengthSquared() > 0 {
				turn = max(turn, a[k].TangentOut.AngleTo(b[k].TangentOut))
			}
		}
		n := opts.DistanceAndTurnCount(dist, turn)
		for i := 1; i < n; i++ {
			t := float64(i) / float64(n)
			row := make([]gridSample, len(a))
			for k := range a {
				row[k] = gridSample{
					Point:      a[k].Point.Lerp(b[k].Point, t),
					TangentIn:  a[k].TangentIn.Lerp(b[k].TangentIn, t),
					TangentOut: a[k].TangentOut.Lerp(b[k].TangentOut, t),
					CurveIn:    a[k].CurveIn,
					CurveOut:   a[k].CurveOut,
					Break:      a[k].Break,
					Joint:      a[k].Joint || b[k].Joint,
					PointIndex: -1,
				}
			}
			out = append(out, gridRow{samples: row})
		}
		out = append(out, g.rows[r+1])
	}
	g.rows = out
}

// rowPoints returns the points of row r.
func (g *strokeGrid) rowPoints(r int) []math.Vec3 {
	row := g.rows[r].samples
	pts := make([]math.Vec3, len(row))
	for k, s := range row {
		pts[k] = s.Point
	}
	return pts
}

// capLoop returns row r as a polygon without its closing point and with
// coincident neighbours merged.
func (g *strokeGrid) capLoop(r int, tol float64) []math.Vec3 {
	pts := g.rowPoints(r)
	if g.closed {
		pts = pts[:len(pts)-1]
	}
	return dedupeLoop(pts, tol)
}

func dedupeLoop(pts []math.Vec3, tol float64) []math.Vec3 {
	var out []math.Vec3
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1].Distance(p) <= tol {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].Distance(out[len(out)-1]) <= tol {
		out = out[:len(out)-1]
	}
	return out
}

// paramGrid holds raw distance parameters: u accumulates along each row,
// v down each column.
type paramGrid struct {
	u, v   [][]float64
	larger float64 // the longer of the longest row and column
}

func newParamGrid(numRow, numCol int, at func(r, k int) math.Vec3) paramGrid {
	pg := paramGrid{u: make([][]float64, numRow), v: make([][]float64, numRow)}
	for r := 0; r < numRow; r++ {
		pg.u[r] = make([]float64, numCol)
		pg.v[r] = make([]float64, numCol)
		for k := 0; k < numCol; k++ {
			if k > 0 {
				pg.u[r][k] = pg.u[r][k-1] + at(r, k).Distance(at(r, k-1))
			}
			if r > 0 {
				pg.v[r][k] = pg.v[r-1][k] + at(r, k).Distance(at(r-1, k))
			}
		}
	}
	pg.finish()
	return pg
}

// finish caches the larger extent once u and v are filled.
func (pg *paramGrid) finish() {
	rng := pg.distanceRange()
	pg.larger = max(rng.Max.X, rng.Max.Y)
}

func (pg paramGrid) rowLength(r int) float64 {
	return pg.u[r][len(pg.u[r])-1]
}

func (pg paramGrid) columnLength(k int) float64 {
	return pg.v[len(pg.v)-1][k]
}

// distanceRange returns the extent of the raw parameters.
func (pg paramGrid) distanceRange() Range2 {
	var r Range2
	for i := range pg.u {
		r.Max.X = max(r.Max.X, pg.rowLength(i))
	}
	for k := range pg.v[0] {
		r.Max.Y = max(r.Max.Y, pg.columnLength(k))
	}
	return r
}

// at returns the parameter of sample (r, k) remapped by mode.
func (pg paramGrid) at(mode facet.ParamMode, r, k int) math.Vec2 {
	u, v := pg.u[r][k], pg.v[r][k]
	switch mode {
	case facet.ParamZeroOneBothAxes:
		if l := pg.rowLength(r); l > 0 {
			u /= l
		}
		if l := pg.columnLength(k); l > 0 {
			v /= l
		}
	case facet.ParamZeroOneLargerAxis:
		if pg.larger > 0 {
			u /= pg.larger
			v /= pg.larger
		}
	}
	return math.Vec2{X: u, Y: v}
}

// announceGridToBuilder emits the cells of a resolved grid as one face.
// Rows are oriented to face away from the area the first contour encloses,
// or toward it when invert is set.
func (b *Builder) announceGridToBuilder(g *strokeGrid, invert bool) {
	numRow, numCol := len(g.rows), g.numColumns()
	if numRow < 2 || numCol < 2 {
		return
	}
	for r := range g.rows {
		for k := range g.rows[r].samples {
			s := &g.rows[r].samples[k]
			s.PointIndex = b.findOrAddLocalPoint(s.Point)
		}
	}
	pg := newParamGrid(numRow, numCol, func(r, k int) math.Vec3 { return g.rows[r].samples[k].Point })

	if NeedReverse(g.rowPoints(0), g.rowPoints(numRow-1)) != invert {
		defer b.PushState().Pop()
		b.ToggleIndexOrderAndNormalReversal()
	}

	ruleVisible := func(r, k int) bool {
		return g.rows[r].samples[k].Joint || g.rows[r+1].samples[k].Joint
	}
	for r := 0; r+1 < numRow; r++ {
		lo, hi := g.rows[r].samples, g.rows[r+1].samples
		for k := 1; k < numCol; k++ {
			if lo[k].Break {
				continue
			}
			across0 := hi[k-1].Point.Sub(lo[k-1].Point)
			across1 := hi[k].Point.Sub(lo[k].Point)
			if across0.LengthSquared() == 0 {
				across0 = across1
			}
			if across1.LengthSquared() == 0 {
				across1 = across0
			}
			diag := hi[k].Point.Sub(lo[k-1].Point).Cross(hi[k-1].Point.Sub(lo[k].Point))
			normal := func(along, across math.Vec3) math.Vec3 {
				n := along.Cross(across)
				if n.LengthSquared() == 0 {
					return diag
				}
				return n
			}
			uv := func(r, k int) math.Vec2 { return pg.at(b.opts.ParamMode, r, k) }

			b.addQuad([4]Corner{
				b.gridCorner(lo[k-1], normal(lo[k-1].TangentOut, across0), uv(r, k-1), g.rows[r].contour),
				b.gridCorner(lo[k], normal(lo[k].TangentIn, across1), uv(r, k), ruleVisible(r, k)),
				b.gridCorner(hi[k], normal(hi[k].TangentIn, across1), uv(r+1, k), g.rows[r+1].contour),
				b.gridCorner(hi[k-1], normal(hi[k-1].TangentOut, across0), uv(r+1, k-1), ruleVisible(r, k-1)),
			})
		}
	}
	b.setParamDistanceRange(pg.distanceRange())
	b.EndFace()

	if b.opts.EdgeChainsRequired {
		b.addGridEdgeChains(g)
	}
}

func (b *Builder) gridCorner(s gridSample, n math.Vec3, uv math.Vec2, visible bool) Corner {
	c := Corner{Point: s.PointIndex, Normal: -1, Param: -1, Visible: visible}
	if b.opts.NormalsRequired {
		c.Normal = b.findOrAddLocalNormal(n)
	}
	if b.opts.ParamsRequired {
		c.Param = b.FindOrAddParam(uv)
	}
	return c
}

// addGridEdgeChains records each contour row as a profile chain and each
// visible rule line as a lateral chain.
func (b *Builder) addGridEdgeChains(g *strokeGrid) {
	var contours []int
	for r, row := range g.rows {
		if row.contour {
			contours = append(contours, r)
		}
	}
	for i, r := range contours {
		role := Profile
		switch {
		case i == 0:
			role = ProfileStart
		case i == len(contours)-1:
			role = ProfileEnd
		}
		idx := make([]int, 0, g.numColumns())
		for _, s := range g.rows[r].samples {
			idx = append(idx, s.PointIndex)
		}
		b.addEdgeChain(role, idx)
	}

	numCol := g.numColumns()
	if g.closed {
		numCol--
	}
	for k := 0; k < numCol; k++ {
		visible := false
		for _, row := range g.rows {
			visible = visible || row.samples[k].Joint
		}
		if !visible {
			continue
		}
		idx := make([]int, 0, len(g.rows))
		for _, row := range g.rows {
			idx = append(idx, row.samples[k].PointIndex)
		}
		b.addEdgeChain(Lateral, idx)
	}
}

// addEdgeChain appends a chain, dropping repeated indices. Chains that
// collapse to a single point are skipped.
func (b *Builder) addEdgeChain(role EdgeChainRole, indices []int) {
	var idx []int
	for _, i := range indices {
		if len(idx) > 0 && idx[len(idx)-1] == i {
			continue
		}
		idx = append(idx, i)
	}
	if len(idx) < 2 {
		return
	}
	b.mesh.EdgeChains = append(b.mesh.EdgeChains, EdgeChain{Role: role, Indices: idx})
}
