package polyface

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/polyface/pkg/curve"
	"github.com/Faultbox/polyface/pkg/math"
	"github.com/Faultbox/polyface/pkg/stroke"
)

// slotState classifies one primitive slot across corresponding contours.
type slotState int

const (
	matchingLines slotState = iota
	matchingArcs
	matchingBsplines
	matchingLineStrings
	mismatch
)

func (s slotState) String() string {
	switch s {
	case matchingLines:
		return "lines"
	case matchingArcs:
		return "arcs"
	case matchingBsplines:
		return "bsplines"
	case matchingLineStrings:
		return "linestrings"
	default:
		return "mismatch"
	}
}

// classifySlot picks the first compatible state in priority order: all
// segments, segments and arcs, bsplines with equal span counts, line
// strings with equal point counts.
func classifySlot(prims []curve.Primitive) slotState {
	lines, arcs := true, true
	for _, p := range prims {
		switch p.(type) {
		case curve.Segment:
		case curve.Arc:
			lines = false
		default:
			lines, arcs = false, false
		}
	}
	if lines {
		return matchingLines
	}
	if arcs {
		return matchingArcs
	}

	if first, ok := curve.GetBsplineProxy(prims[0]); ok {
		spans := first.SpanCount()
		for _, p := range prims[1:] {
			bs, ok := curve.GetBsplineProxy(p)
			if !ok || bs.SpanCount() != spans {
				return mismatch
			}
		}
		return matchingBsplines
	}

	if first, ok := curve.GetLineStringPoints(prims[0]); ok {
		if len(first) < 2 {
			return mismatch
		}
		for _, p := range prims[1:] {
			pts, ok := curve.GetLineStringPoints(p)
			if !ok || len(pts) != len(first) {
				return mismatch
			}
		}
		return matchingLineStrings
	}
	return mismatch
}

// AddRuledBetweenCorrespondingCurves rules a surface through two or more
// corresponding contours. Contours are open chains, loops, or parity and
// union regions whose child loops correspond one to one. Closed contours
// are capped at both ends when capped is set.
//
// Primitive slots that do not match across the contours are skipped and
// reported as ErrPrimitiveMismatch; the surface built for the other slots is
// kept.
func (b *Builder) AddRuledBetweenCorrespondingCurves(paths []*curve.Path, capped bool) error {
	before := b.facets
	return b.finish("ruled surface", before, b.addRuled(paths, capped))
}

func (b *Builder) addRuled(paths []*curve.Path, capped bool) error {
	if len(paths) < 2 {
		return fmt.Errorf("%w: %d contours", ErrTooFewPoints, len(paths))
	}
	regions := 0
	for i, p := range paths {
		if p == nil {
			return fmt.Errorf("%w: contour %d is nil", ErrInvalidGrid, i)
		}
		if p.IsRegion() {
			regions++
		}
	}
	switch regions {
	case 0:
		g, mismatches, err := b.ruledContours(paths, false)
		if err != nil {
			return err
		}
		if capped && g.closed {
			b.capGridEnds(g, nil)
		}
		return mismatchError(mismatches)
	case len(paths):
		mismatches, err := b.ruledRegions(paths, capped)
		if err != nil {
			return err
		}
		return mismatchError(mismatches)
	default:
		return fmt.Errorf("%w: regions mixed with loops", ErrPrimitiveMismatch)
	}
}

func mismatchError(n int) error {
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d slots", ErrPrimitiveMismatch, n)
}

// ruledRegions rules corresponding child loops pairwise. In a parity
// region every child after the first is a hole, and inner loops are holes
// in either kind; hole walls face into the hole.
func (b *Builder) ruledRegions(paths []*curve.Path, capped bool) (int, error) {
	boundary := paths[0].Boundary
	children := paths[0].Children()
	for _, p := range paths[1:] {
		if p.Boundary != boundary || len(p.Children()) != len(children) {
			return 0, fmt.Errorf("%w: regions differ in type or child count", ErrPrimitiveMismatch)
		}
	}

	total := 0
	var outer *strokeGrid
	var holes []*strokeGrid
	for i := range children {
		contours := make([]*curve.Path, len(paths))
		for c, p := range paths {
			contours[c] = p.Children()[i]
		}
		if contours[0].IsRegion() {
			if err := b.addRuled(contours, capped); err != nil {
				b.log.Warn("nested region failed", zap.Int("child", i), zap.Error(err))
				total++
			}
			continue
		}
		hole := (boundary == curve.BoundaryParity && i > 0) || contours[0].Boundary == curve.BoundaryInner
		g, mismatches, err := b.ruledContours(contours, hole)
		total += mismatches
		if err != nil {
			b.log.Warn("region child skipped", zap.Int("child", i), zap.Error(err))
			if mismatches == 0 {
				total++
			}
			continue
		}
		if !capped || !g.closed {
			continue
		}
		switch {
		case boundary != curve.BoundaryParity:
			b.capGridEnds(g, nil)
		case i == 0:
			outer = g
		default:
			holes = append(holes, g)
		}
	}
	if outer != nil {
		b.capGridEnds(outer, holes)
	}
	return total, nil
}

// ruledContours strokes corresponding contours slot by slot into a grid and
// emits it. It returns the grid for capping and the number of skipped
// slots.
func (b *Builder) ruledContours(paths []*curve.Path, invert bool) (*strokeGrid, int, error) {
	numSlots, minSlots := 0, len(paths[0].Primitives)
	for _, p := range paths {
		numSlots = max(numSlots, len(p.Primitives))
		minSlots = min(minSlots, len(p.Primitives))
	}

	tol := b.tol().PointMatch
	g := newStrokeGrid(len(paths))
	mismatches := numSlots - minSlots
	prims := make([]curve.Primitive, len(paths))
	for slot := 0; slot < minSlots; slot++ {
		for c, p := range paths {
			prims[c] = p.Primitives[slot]
		}
		state := classifySlot(prims)
		if err := b.strokeSlot(g, slot, state, prims, tol); err != nil {
			b.log.Warn("slot skipped",
				zap.Int("slot", slot),
				zap.Stringer("state", state),
				zap.Error(err))
			mismatches++
		}
	}

	closed := true
	for _, p := range paths {
		closed = closed && p.IsClosed()
	}
	if closed {
		g.closeLoops(tol)
	}
	if g.numColumns() < 2 {
		if mismatches > 0 {
			return nil, mismatches, mismatchError(mismatches)
		}
		return nil, 0, fmt.Errorf("%w: contours stroke to a single point", ErrTooFewPoints)
	}
	g.classifyJoints(b.tol())
	g.densify(b.opts)
	b.announceGridToBuilder(g, invert)
	return g, mismatches, nil
}

// strokeSlot strokes one slot of every contour at a common count and
// appends the pieces to the grid.
func (b *Builder) strokeSlot(g *strokeGrid, slot int, state slotState, prims []curve.Primitive, tol float64) error {
	pieces := make([][]stroke.Sample, len(prims))
	switch state {
	case matchingLines, matchingArcs:
		n := 1
		for _, p := range prims {
			count, err := stroke.Count(p, b.opts)
			if err != nil {
				return err
			}
			n = max(n, count)
		}
		for c, p := range prims {
			samples, err := stroke.Stroke(p, n)
			if err != nil {
				return err
			}
			pieces[c] = samples
		}
		g.appendPiece(slot, pieces, tol)

	case matchingBsplines:
		splines := make([]*curve.Bspline, len(prims))
		for c, p := range prims {
			splines[c], _ = curve.GetBsplineProxy(p)
		}
		spans := make([][][2]float64, len(prims))
		for c, bs := range splines {
			spans[c] = bs.SpanFractions()
		}
		for j := range spans[0] {
			n := 1
			for c, bs := range splines {
				n = max(n, stroke.SpanCount(bs, spans[c][j][0], spans[c][j][1], b.opts))
			}
			for c, bs := range splines {
				samples, err := stroke.StrokeRange(bs, spans[c][j][0], spans[c][j][1], n)
				if err != nil {
					return err
				}
				pieces[c] = samples
			}
			g.appendPiece(slot, pieces, tol)
		}

	case matchingLineStrings:
		lineStrings := make([]curve.LineString, len(prims))
		for c, p := range prims {
			lineStrings[c] = p.(curve.LineString)
		}
		for j := 0; j+1 < len(lineStrings[0].Points); j++ {
			n := 1
			for _, ls := range lineStrings {
				n = max(n, b.opts.SegmentCount(ls.Points[j].Distance(ls.Points[j+1])))
			}
			for c, ls := range lineStrings {
				samples, err := stroke.LineStringEdge(ls, j, n)
				if err != nil {
					return err
				}
				pieces[c] = samples
			}
			g.appendPiece(slot, pieces, tol)
		}

	default:
		return ErrPrimitiveMismatch
	}
	return nil
}

// capGridEnds caps the first and last contour of a closed grid, with the
// matching rows of hole grids cut out.
func (b *Builder) capGridEnds(outer *strokeGrid, holes []*strokeGrid) {
	tol := b.tol().PointMatch
	for _, start := range []bool{true, false} {
		row, toward := endRows(outer, start)
		loop := outer.capLoop(row, tol)
		var cut [][]math.Vec3
		for _, h := range holes {
			hr, _ := endRows(h, start)
			if hl := h.capLoop(hr, tol); len(hl) >= 3 {
				cut = append(cut, hl)
			}
		}
		outward := curve.Centroid(outer.rowPoints(row)).Sub(curve.Centroid(outer.rowPoints(toward)))
		b.addCap(loop, cut, outward)
	}
}

// endRows returns the first or last row of g and its neighbour.
func endRows(g *strokeGrid, start bool) (row, toward int) {
	if start {
		return 0, 1
	}
	last := len(g.rows) - 1
	return last, last - 1
}
