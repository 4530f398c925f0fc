package polyface

import "github.com/Faultbox/polyface/pkg/math"

// foldVisible is the visibility given to the diagonal of a degenerate quad
// split into two triangles.
const foldVisible = true

// Corner is one facet corner: indices into the point, normal and param
// arrays plus the visibility of the edge leaving it. Normal and Param are
// ignored when the options do not require those streams.
type Corner struct {
	Point   int
	Normal  int
	Param   int
	Visible bool
}

// AddPointIndexTriangle appends a triangle to the point stream. vis labels
// the edge leaving each corner.
func (b *Builder) AddPointIndexTriangle(i0 int, vis0 bool, i1 int, vis1 bool, i2 int, vis2 bool) {
	b.quadRuns, b.quadPending = nil, false
	b.writePoints([]int{i0, i1, i2}, []bool{vis0, vis1, vis2})
}

// AddPointIndexQuad appends a quad to the point stream. Coincident indices
// split or drop it the way AddQuad does; the first triangle of a split is
// terminated here and the second is left open. Call it before the matching
// AddNormalIndexQuad and AddParamIndexQuad, which repeat the same split.
func (b *Builder) AddPointIndexQuad(i0 int, vis0 bool, i1 int, vis1 bool, i2 int, vis2 bool, i3 int, vis3 bool) {
	points := [4]int{i0, i1, i2, i3}
	vis := [4]bool{vis0, vis1, vis2, vis3}
	b.quadRuns, b.quadPending = splitQuad(points), true
	for i, r := range b.quadRuns {
		if i > 0 {
			b.terminatePoints()
		}
		idx := make([]int, len(r.corners))
		v := make([]bool, len(r.corners))
		for j, k := range r.corners {
			idx[j], v[j] = points[k], vis[k]
		}
		if r.fold >= 0 {
			v[r.fold] = foldVisible
		}
		b.writePoints(idx, v)
	}
}

// AddNormalIndexTriangle appends a triangle to the normal stream.
func (b *Builder) AddNormalIndexTriangle(i0, i1, i2 int) {
	b.mesh.NormalIndex = b.appendRun(b.mesh.NormalIndex, []int{i0, i1, i2})
	b.normalOpen = true
}

// AddNormalIndexQuad appends a quad to the normal stream.
func (b *Builder) AddNormalIndexQuad(i0, i1, i2, i3 int) {
	if b.appendQuad(&b.mesh.NormalIndex, [4]int{i0, i1, i2, i3}) {
		b.normalOpen = true
	}
}

// AddParamIndexTriangle appends a triangle to the param stream.
func (b *Builder) AddParamIndexTriangle(i0, i1, i2 int) {
	b.mesh.ParamIndex = b.appendRun(b.mesh.ParamIndex, []int{i0, i1, i2})
	b.paramOpen = true
}

// AddParamIndexQuad appends a quad to the param stream.
func (b *Builder) AddParamIndexQuad(i0, i1, i2, i3 int) {
	if b.appendQuad(&b.mesh.ParamIndex, [4]int{i0, i1, i2, i3}) {
		b.paramOpen = true
	}
}

// TerminateFacet closes the current facet in every stream that received
// indices for it.
func (b *Builder) TerminateFacet() {
	b.quadRuns, b.quadPending = nil, false
	if b.facetOpen {
		b.terminatePoints()
	}
	if b.normalOpen {
		b.mesh.NormalIndex = append(b.mesh.NormalIndex, Terminator)
		b.normalOpen = false
	}
	if b.paramOpen {
		b.mesh.ParamIndex = append(b.mesh.ParamIndex, Terminator)
		b.paramOpen = false
	}
}

func (b *Builder) terminatePoints() {
	b.mesh.PointIndex = append(b.mesh.PointIndex, Terminator)
	b.mesh.EdgeVisible = append(b.mesh.EdgeVisible, false)
	b.facetOpen = false
	b.facets++
}

// EndFace closes any open facet and records the facets written since the
// previous EndFace as one face, with the param distance range gathered
// meanwhile.
func (b *Builder) EndFace() {
	b.TerminateFacet()
	if b.facets > b.faceStart {
		b.mesh.Faces = append(b.mesh.Faces, FaceData{
			FirstFacet:         b.faceStart,
			FacetCount:         b.facets - b.faceStart,
			ParamDistanceRange: b.paramRange,
		})
	}
	b.faceStart = b.facets
	b.paramRange = Range2{}
	b.hasParamRange = false
}

// setParamDistanceRange records the distance range of the face in
// progress.
func (b *Builder) setParamDistanceRange(r Range2) {
	if !b.hasParamRange {
		b.paramRange = r
		b.hasParamRange = true
		return
	}
	b.paramRange.Min.X = min(b.paramRange.Min.X, r.Min.X)
	b.paramRange.Min.Y = min(b.paramRange.Min.Y, r.Min.Y)
	b.paramRange.Max.X = max(b.paramRange.Max.X, r.Max.X)
	b.paramRange.Max.Y = max(b.paramRange.Max.Y, r.Max.Y)
}

// AddTriangle emits a complete triangle facet across all active streams.
func (b *Builder) AddTriangle(c0, c1, c2 Corner) {
	b.addFacet([]Corner{c0, c1, c2})
}

// AddQuad emits a quad facet across all active streams. A quad with two
// coincident point indices is emitted as triangles instead:
// a diagonal collapse (0==2 or 1==3) gives exactly two triangles whose
// shared diagonal is marked foldVisible, and a collapsed side gives one
// triangle. Quads with fewer than three distinct points emit nothing.
func (b *Builder) AddQuad(c0, c1, c2, c3 Corner) {
	b.addQuad([4]Corner{c0, c1, c2, c3})
}

// AddPolygonFacet emits one facet with any number of corners.
func (b *Builder) AddPolygonFacet(corners []Corner) {
	if len(corners) < 3 {
		return
	}
	b.addFacet(corners)
}

// quadRun is one facet of a quad after splitQuad: positions of the kept
// corners, and the run position whose outgoing edge is the split diagonal
// or -1.
type quadRun struct {
	corners []int
	fold    int
}

// splitQuad decides how a quad over the point indices p is emitted. Fewer
// than three distinct points give no facets.
func splitQuad(p [4]int) []quadRun {
	distinct := 0
	for i := range p {
		seen := false
		for j := 0; j < i; j++ {
			if p[j] == p[i] {
				seen = true
				break
			}
		}
		if !seen {
			distinct++
		}
	}
	switch {
	case distinct < 3:
		return nil
	case distinct == 4:
		return []quadRun{{corners: []int{0, 1, 2, 3}, fold: -1}}
	}

	// One side collapsed: drop the corner whose outgoing edge has zero
	// length; the previous corner's edge now reaches the next survivor.
	var kept []int
	for k := 0; k < 4; k++ {
		if p[k] != p[(k+1)%4] {
			kept = append(kept, k)
		}
	}
	if len(kept) == 3 {
		return []quadRun{{corners: kept, fold: -1}}
	}

	if p[0] == p[2] {
		return []quadRun{
			{corners: []int{0, 1, 3}, fold: 1},
			{corners: []int{1, 2, 3}, fold: 2},
		}
	}
	return []quadRun{
		{corners: []int{0, 1, 2}, fold: 2},
		{corners: []int{2, 3, 0}, fold: 2},
	}
}

func (b *Builder) addQuad(c [4]Corner) {
	for _, r := range splitQuad([4]int{c[0].Point, c[1].Point, c[2].Point, c[3].Point}) {
		run := make([]Corner, len(r.corners))
		for i, k := range r.corners {
			run[i] = c[k]
		}
		if r.fold >= 0 {
			run[r.fold].Visible = foldVisible
		}
		b.addFacet(run)
	}
}

// appendQuad writes a normal or param quad following the split chosen by
// the preceding AddPointIndexQuad. It reports whether anything was written.
func (b *Builder) appendQuad(stream *[]int, idx [4]int) bool {
	if !b.quadPending {
		*stream = b.appendRun(*stream, idx[:])
		return true
	}
	for i, r := range b.quadRuns {
		if i > 0 {
			*stream = append(*stream, Terminator)
		}
		run := make([]int, len(r.corners))
		for j, k := range r.corners {
			run[j] = idx[k]
		}
		*stream = b.appendRun(*stream, run)
	}
	return len(b.quadRuns) > 0
}

// addFacet writes corners as one facet, reversed when the effective index
// order is reversed, and terminates it.
func (b *Builder) addFacet(corners []Corner) {
	b.TerminateFacet()
	n := len(corners)
	points := make([]int, n)
	vis := make([]bool, n)
	for i, c := range corners {
		points[i] = c.Point
		vis[i] = c.Visible
	}
	b.writePoints(points, vis)
	if b.opts.NormalsRequired {
		idx := make([]int, n)
		for i, c := range corners {
			idx[i] = c.Normal
		}
		b.mesh.NormalIndex = b.appendRun(b.mesh.NormalIndex, idx)
		b.normalOpen = true
	}
	if b.opts.ParamsRequired {
		idx := make([]int, n)
		for i, c := range corners {
			idx[i] = c.Param
		}
		b.mesh.ParamIndex = b.appendRun(b.mesh.ParamIndex, idx)
		b.paramOpen = true
	}
	b.TerminateFacet()
}

// writePoints appends a run to the point stream. Reversed order keeps
// corner 0 first and walks the rest backwards; each visibility flag moves
// with the geometric edge it labels.
func (b *Builder) writePoints(points []int, vis []bool) {
	n := len(points)
	if b.reverseIndexOrder() {
		rp := make([]int, n)
		rv := make([]bool, n)
		for k := 0; k < n; k++ {
			rp[k] = points[(n-k)%n]
			rv[k] = vis[n-1-k]
		}
		points, vis = rp, rv
	}
	b.mesh.PointIndex = append(b.mesh.PointIndex, points...)
	b.mesh.EdgeVisible = append(b.mesh.EdgeVisible, vis...)
	b.facetOpen = true
}

func (b *Builder) appendRun(stream []int, idx []int) []int {
	n := len(idx)
	if b.reverseIndexOrder() {
		for k := 0; k < n; k++ {
			stream = append(stream, idx[(n-k)%n])
		}
		return stream
	}
	return append(stream, idx...)
}

// corner builds a Corner from local geometry, resolving every active
// stream through the registries.
func (b *Builder) corner(p, n math.Vec3, uv math.Vec2, visible bool) Corner {
	c := Corner{Point: b.findOrAddLocalPoint(p), Normal: -1, Param: -1, Visible: visible}
	if b.opts.NormalsRequired {
		c.Normal = b.findOrAddLocalNormal(n)
	}
	if b.opts.ParamsRequired {
		c.Param = b.FindOrAddParam(uv)
	}
	return c
}
