package polyface

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/polyface/pkg/curve"
	"github.com/Faultbox/polyface/pkg/math"
)

// profile is a stroked cross-section with the visibility of the rule line
// (or swept circle) through each point.
type profile struct {
	points []math.Vec3
	joint  []bool
	closed bool
}

// polygonProfile treats points as one polyline; every turn is a visible
// joint.
func (b *Builder) polygonProfile(points []math.Vec3) (profile, error) {
	tol := b.tol().PointMatch
	var pts []math.Vec3
	for i, p := range points {
		if !p.IsFinite() {
			return profile{}, fmt.Errorf("%w: point %d", ErrInvalidVector, i)
		}
		if len(pts) > 0 && pts[len(pts)-1].Distance(p) <= tol {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) < 2 {
		return profile{}, fmt.Errorf("%w: %d distinct points", ErrTooFewPoints, len(pts))
	}
	path := curve.NewOpenPath(curve.LineString{Points: pts})
	if len(pts) > 3 && pts[0].Distance(pts[len(pts)-1]) <= tol {
		path.Boundary = curve.BoundaryOuter
	}
	return b.pathProfile(path)
}

// pathProfile strokes a loop or open chain the way a single contour of a
// ruled surface is stroked.
func (b *Builder) pathProfile(path *curve.Path) (profile, error) {
	if path == nil || path.IsRegion() {
		return profile{}, fmt.Errorf("%w: profile must be a loop or chain", ErrInvalidGrid)
	}
	tol := b.tol().PointMatch
	g := newStrokeGrid(1)
	prims := make([]curve.Primitive, 1)
	for slot, p := range path.Primitives {
		if pts, ok := curve.GetLineStringPoints(p); ok && len(pts) < 2 {
			return profile{}, fmt.Errorf("profile primitive %d: %w: line string with %d points", slot, ErrTooFewPoints, len(pts))
		}
		prims[0] = p
		if err := b.strokeSlot(g, slot, classifySlot(prims), prims, tol); err != nil {
			return profile{}, fmt.Errorf("profile primitive %d: %w", slot, err)
		}
	}
	if path.IsClosed() {
		g.closeLoops(tol)
	}
	if g.numColumns() < 2 {
		return profile{}, fmt.Errorf("%w: profile strokes to a single point", ErrTooFewPoints)
	}
	g.classifyJoints(b.tol())
	row := g.rows[0].samples
	pr := profile{points: make([]math.Vec3, len(row)), joint: make([]bool, len(row)), closed: g.closed}
	for k, s := range row {
		pr.points[k] = s.Point
		pr.joint[k] = s.Joint
	}
	return pr, nil
}

// AddRotationalSweepLoop sweeps a polyline profile around the axis through
// center. A negative sweep turns the other way and sweeps beyond a full
// turn are clamped to one. numStep 0 derives the angular step count from
// the facet options. A full turn shares its first and last layers and hides
// the seam. Closed profiles of a partial sweep are capped when capped is
// set.
func (b *Builder) AddRotationalSweepLoop(points []math.Vec3, center, axis math.Vec3, sweep float64, capped bool, numStep int) error {
	before := b.facets
	pr, err := b.polygonProfile(points)
	if err == nil {
		err = b.addRotationalSweep([]sweepGroup{{profiles: []profile{pr}}}, center, axis, sweep, capped, numStep)
	}
	return b.finish("rotational sweep", before, err)
}

// AddRotationalSweepPath sweeps a loop, chain or region profile. Region
// children sweep separately, hole walls face into their holes, and caps
// are cut around the holes of a parity region. Every child is profiled
// before anything is emitted.
func (b *Builder) AddRotationalSweepPath(path *curve.Path, center, axis math.Vec3, sweep float64, capped bool, numStep int) error {
	before := b.facets
	groups, err := b.sweepGroups(path)
	if err == nil {
		err = b.addRotationalSweep(groups, center, axis, sweep, capped, numStep)
	}
	return b.finish("rotational sweep", before, err)
}

// sweepGroup is swept as one unit: a single profile, or the outer and hole
// profiles of a parity region.
type sweepGroup struct {
	profiles []profile
	parity   bool
}

// sweepGroups profiles path and every region child below it.
func (b *Builder) sweepGroups(path *curve.Path) ([]sweepGroup, error) {
	if path == nil {
		return nil, fmt.Errorf("%w: nil path", ErrTooFewPoints)
	}
	if !path.IsRegion() {
		pr, err := b.pathProfile(path)
		if err != nil {
			return nil, err
		}
		return []sweepGroup{{profiles: []profile{pr}}}, nil
	}

	var groups []sweepGroup
	var profiles []profile
	for i, child := range path.Children() {
		if child.IsRegion() {
			sub, err := b.sweepGroups(child)
			if err != nil {
				return nil, fmt.Errorf("region child %d: %w", i, err)
			}
			groups = append(groups, sub...)
			continue
		}
		pr, err := b.pathProfile(child)
		if err != nil {
			return nil, fmt.Errorf("region child %d: %w", i, err)
		}
		if path.Boundary == curve.BoundaryUnion {
			groups = append(groups, sweepGroup{profiles: []profile{pr}})
			continue
		}
		profiles = append(profiles, pr)
	}
	if len(profiles) > 0 {
		groups = append(groups, sweepGroup{profiles: profiles, parity: true})
	}
	return groups, nil
}

// rotationalSweep is a validated sweep of one group.
type rotationalSweep struct {
	sweepGroup
	center    math.Vec3
	axis      math.Vec3
	sweep     float64
	full      bool
	aMax      float64
	rotations []math.Mat4
}

func (r *rotationalSweep) radial(p math.Vec3) math.Vec3 {
	d := p.Sub(r.center)
	return d.Sub(r.axis.Scale(d.Dot(r.axis)))
}

// addRotationalSweep validates every group, then emits them in order.
func (b *Builder) addRotationalSweep(groups []sweepGroup, center, axis math.Vec3, sweep float64, capped bool, numStep int) error {
	sweeps := make([]*rotationalSweep, len(groups))
	for i, g := range groups {
		r, err := b.planRotationalSweep(g, center, axis, sweep, numStep)
		if err != nil {
			return err
		}
		sweeps[i] = r
	}
	for _, r := range sweeps {
		b.emitRotationalSweep(r, capped)
	}
	return nil
}

func (b *Builder) planRotationalSweep(g sweepGroup, center, axis math.Vec3, sweep float64, numStep int) (*rotationalSweep, error) {
	a, ok := axis.Unit()
	if !ok || !center.IsFinite() {
		return nil, fmt.Errorf("%w: rotation axis %v", ErrInvalidVector, axis)
	}
	if !isFinite(sweep) || sweep == 0 {
		return nil, fmt.Errorf("%w: sweep angle %v", ErrInvalidVector, sweep)
	}
	if numStep < 0 {
		return nil, fmt.Errorf("%w: %d angular steps", ErrInvalidCount, numStep)
	}
	if sweep < 0 {
		a, sweep = a.Negate(), -sweep
	}
	sweep = min(sweep, 2*gomath.Pi)
	r := &rotationalSweep{
		sweepGroup: g,
		center:     center,
		axis:       a,
		sweep:      sweep,
		full:       sweep >= 2*gomath.Pi-1e-10,
	}

	for _, pr := range g.profiles {
		for _, p := range pr.points {
			r.aMax = max(r.aMax, r.radial(p).Length())
		}
	}
	if r.aMax == 0 {
		return nil, fmt.Errorf("%w: profile lies on the axis", ErrInvalidVector)
	}
	if numStep == 0 {
		numStep = b.opts.ArcCount(r.aMax, sweep)
	}

	r.rotations = make([]math.Mat4, numStep+1)
	for j := range r.rotations {
		theta := sweep * float64(j) / float64(numStep)
		if j == numStep {
			theta = sweep
		}
		r.rotations[j] = math.RotateAbout(center, a, theta)
	}
	return r, nil
}

// emitRotationalSweep sweeps profiles[0] and, for a parity region, the hole
// profiles after it. Every profile uses the same layers.
func (b *Builder) emitRotationalSweep(r *rotationalSweep, capped bool) {
	profiles, numStep := r.profiles, len(r.rotations)-1
	for i, pr := range profiles {
		hole := r.parity && i > 0
		b.sweepProfile(pr, hole, r.axis, r.sweep, r.full, r.rotations, r.radial, r.aMax)
	}

	if capped && !r.full && profiles[0].closed {
		tol := b.tol().PointMatch
		rc := r.radial(curve.Centroid(profiles[0].points))
		forward := r.axis.Cross(rc)
		for _, end := range []int{0, numStep} {
			rot := r.rotations[end]
			loop := func(pr profile) []math.Vec3 {
				pts := make([]math.Vec3, 0, len(pr.points))
				for _, p := range pr.points[:len(pr.points)-1] {
					pts = append(pts, rot.TransformPoint(p))
				}
				return dedupeLoop(pts, tol)
			}
			var holes [][]math.Vec3
			for _, pr := range profiles[1:] {
				if pr.closed {
					if hl := loop(pr); len(hl) >= 3 {
						holes = append(holes, hl)
					}
				}
			}
			outward := rot.TransformDirection(forward)
			if end == 0 {
				outward = outward.Negate()
			}
			b.addCap(loop(profiles[0]), holes, outward)
		}
	}
}

// sweepProfile emits the surface of one swept profile as one face. Layer j
// is the profile rotated by rotations[j]; a full turn reuses layer 0 as the
// last layer.
func (b *Builder) sweepProfile(pr profile, hole bool, a math.Vec3, sweep float64, full bool,
	rotations []math.Mat4, radial func(math.Vec3) math.Vec3, aMax float64) {
	numLayer, numPts := len(rotations), len(pr.points)
	numStep := numLayer - 1

	index := make([][]int, numLayer)
	for j := range index {
		index[j] = make([]int, numPts)
		for i, p := range pr.points {
			if full && j == numStep {
				index[j][i] = index[0][i]
				continue
			}
			index[j][i] = b.findOrAddLocalPoint(rotations[j].TransformPoint(p))
		}
	}

	// Points closer to the axis than this borrow the direction of the
	// farthest point.
	small := b.tol().SmallRadialFraction * aMax
	var maxRadial math.Vec3
	for _, p := range pr.points {
		if r := radial(p); r.Length() > maxRadial.Length() {
			maxRadial = r
		}
	}
	circ := make([]math.Vec3, numPts)
	radius := make([]float64, numPts)
	for i, p := range pr.points {
		r := radial(p)
		radius[i] = r.Length()
		if radius[i] < small {
			r = maxRadial
		}
		circ[i] = a.Cross(r.Normalize())
	}

	pg := paramGrid{u: make([][]float64, numLayer), v: make([][]float64, numLayer)}
	for j := 0; j < numLayer; j++ {
		theta := sweep * float64(j) / float64(numStep)
		pg.u[j] = make([]float64, numPts)
		pg.v[j] = make([]float64, numPts)
		for i := range pr.points {
			if i > 0 {
				pg.u[j][i] = pg.u[j][i-1] + pr.points[i].Distance(pr.points[i-1])
			}
			pg.v[j][i] = theta * radius[i]
		}
	}
	pg.finish()

	profileNormal := curve.AreaNormal(pr.points)
	rc := radial(curve.Centroid(pr.points))
	if (profileNormal.Dot(a.Cross(rc)) < 0) != hole {
		defer b.PushState().Pop()
		b.ToggleIndexOrderAndNormalReversal()
	}

	b.emitQuadGrid(quadGrid{
		numRow: numLayer,
		numCol: numPts,
		point:  func(j, i int) int { return index[j][i] },
		attrs: func(j, i, _, cell int) (int, int) {
			n, uv := -1, -1
			if b.opts.NormalsRequired {
				along := pr.points[cell+1].Sub(pr.points[cell])
				local := along.Cross(circ[i])
				if local.LengthSquared() == 0 {
					local = along.Cross(circ[cell])
				}
				n = b.findOrAddLocalNormal(rotations[j].TransformDirection(local))
			}
			if b.opts.ParamsRequired {
				uv = b.FindOrAddParam(pg.at(b.opts.ParamMode, j, i))
			}
			return n, uv
		},
		rowEdge: func(j, _ int) bool { return !full && (j == 0 || j == numStep) },
		colEdge: func(_, i int) bool { return pr.joint[i] },
	})
	b.setParamDistanceRange(pg.distanceRange())
	b.EndFace()

	if b.opts.EdgeChainsRequired {
		b.addEdgeChain(ProfileStart, index[0])
		if !full {
			b.addEdgeChain(ProfileEnd, index[numStep])
		}
		last := numPts
		if pr.closed {
			last--
		}
		for i := 0; i < last; i++ {
			if !pr.joint[i] {
				continue
			}
			chain := make([]int, numLayer)
			for j := range chain {
				chain[j] = index[j][i]
			}
			b.addEdgeChain(Lateral, chain)
		}
	}
}
