package polyface

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/polyface/pkg/curve"
	"github.com/Faultbox/polyface/pkg/math"
)

// EllipsoidPatch is a longitude/latitude patch of the ellipsoid
// Center + VectorX cos(theta) cos(phi) + VectorY sin(theta) cos(phi) +
// VectorZ sin(phi). Latitudes are clamped to [-pi/2, pi/2]; a quadrant
// count of 0 is derived from the facet options.
type EllipsoidPatch struct {
	Center                    math.Vec3
	VectorX, VectorY, VectorZ math.Vec3

	Theta0, ThetaSweep float64
	Phi0, PhiSweep     float64

	NumPerQuadrantEW int
	NumPerQuadrantNS int
}

// FullEllipsoid returns the patch covering the whole ellipsoid.
func FullEllipsoid(center, x, y, z math.Vec3) EllipsoidPatch {
	return EllipsoidPatch{
		Center: center, VectorX: x, VectorY: y, VectorZ: z,
		ThetaSweep: 2 * gomath.Pi,
		Phi0:       -gomath.Pi / 2,
		PhiSweep:   gomath.Pi,
	}
}

// AddFullSphere emits a sphere.
func (b *Builder) AddFullSphere(center math.Vec3, radius float64, numPerQuadrant int) error {
	if !(radius > 0) || gomath.IsInf(radius, 0) {
		return b.finish("sphere", b.facets, fmt.Errorf("%w: radius %v", ErrInvalidVector, radius))
	}
	patch := FullEllipsoid(center, math.Vec3{X: radius}, math.Vec3{Y: radius}, math.Vec3{Z: radius})
	patch.NumPerQuadrantEW = numPerQuadrant
	patch.NumPerQuadrantNS = numPerQuadrant
	return b.AddEllipsoidPatch(patch)
}

// AddEllipsoidPatch emits a latitude/longitude grid over the patch. Rows
// at a pole collapse to one point and close with a triangle fan; a full
// longitude sweep shares its seam column.
func (b *Builder) AddEllipsoidPatch(patch EllipsoidPatch) error {
	before := b.facets
	return b.finish("ellipsoid patch", before, b.addEllipsoidPatch(patch))
}

// quadrantSteps scales a per-quadrant count to a sweep.
func quadrantSteps(perQuadrant int, sweep float64) int {
	n := int(gomath.Ceil(float64(perQuadrant)*sweep/(gomath.Pi/2) - 1e-9))
	return max(n, 1)
}

func (b *Builder) addEllipsoidPatch(patch EllipsoidPatch) error {
	for _, v := range []float64{patch.Theta0, patch.ThetaSweep, patch.Phi0, patch.PhiSweep} {
		if !isFinite(v) {
			return fmt.Errorf("%w: non-finite patch angle", ErrInvalidVector)
		}
	}
	if patch.NumPerQuadrantEW < 0 || patch.NumPerQuadrantNS < 0 {
		return fmt.Errorf("%w: negative quadrant count", ErrInvalidCount)
	}
	frame := math.FromFrame(patch.Center, patch.VectorX, patch.VectorY, patch.VectorZ)
	inv, err := frame.Inverse()
	if err != nil {
		return fmt.Errorf("%w: ellipsoid axes: %v", ErrSingularTransform, err)
	}

	theta0, thetaSweep := patch.Theta0, patch.ThetaSweep
	if thetaSweep < 0 {
		theta0, thetaSweep = theta0+thetaSweep, -thetaSweep
	}
	thetaSweep = min(thetaSweep, 2*gomath.Pi)
	phi0, phi1 := patch.Phi0, patch.Phi0+patch.PhiSweep
	if phi1 < phi0 {
		phi0, phi1 = phi1, phi0
	}
	phi0 = max(phi0, -gomath.Pi/2)
	phi1 = min(phi1, gomath.Pi/2)
	phiSweep := phi1 - phi0
	if thetaSweep == 0 || !(phiSweep > 0) {
		return fmt.Errorf("%w: empty patch", ErrInvalidVector)
	}
	fullTheta := thetaSweep >= 2*gomath.Pi-1e-10

	rEq := max(patch.VectorX.Length(), patch.VectorY.Length())
	rMer := patch.VectorZ.Length()
	rMax := max(rEq, rMer)
	qEW, qNS := patch.NumPerQuadrantEW, patch.NumPerQuadrantNS
	if qEW == 0 {
		qEW = b.opts.QuadrantCount(rMax)
	}
	if qNS == 0 {
		qNS = b.opts.QuadrantCount(rMax)
	}
	numEW := quadrantSteps(qEW, thetaSweep)
	numNS := quadrantSteps(qNS, phiSweep)

	thetaAt := func(i int) float64 {
		if i == numEW {
			return theta0 + thetaSweep
		}
		return theta0 + thetaSweep*float64(i)/float64(numEW)
	}
	phiAt := func(j int) float64 {
		if j == numNS {
			return phi1
		}
		return phi0 + phiSweep*float64(j)/float64(numNS)
	}
	unit := func(theta, phi float64) math.Vec3 {
		return math.Vec3{X: gomath.Cos(theta) * gomath.Cos(phi), Y: gomath.Sin(theta) * gomath.Cos(phi), Z: gomath.Sin(phi)}
	}

	// Rows run south to north, columns west to east.
	pole := make([]bool, numNS+1)
	index := make([][]int, numNS+1)
	for j := 0; j <= numNS; j++ {
		phi := phiAt(j)
		index[j] = make([]int, numEW+1)
		if gomath.Abs(gomath.Cos(phi)) < b.tol().Pole {
			pole[j] = true
			p := frame.TransformPoint(math.Vec3{Z: gomath.Copysign(1, phi)})
			k := b.findOrAddLocalPoint(p)
			for i := range index[j] {
				index[j][i] = k
			}
			continue
		}
		for i := 0; i <= numEW; i++ {
			if fullTheta && i == numEW {
				index[j][i] = index[j][0]
				continue
			}
			index[j][i] = b.findOrAddLocalPoint(frame.TransformPoint(unit(thetaAt(i), phi)))
		}
	}

	pg := paramGrid{u: make([][]float64, numNS+1), v: make([][]float64, numNS+1)}
	for j := range pg.u {
		pg.u[j] = make([]float64, numEW+1)
		pg.v[j] = make([]float64, numEW+1)
		for i := range pg.u[j] {
			pg.u[j][i] = (thetaAt(i) - theta0) * rEq
			pg.v[j][i] = (phiAt(j) - phi0) * rMer
		}
	}
	pg.finish()

	if frame.Determinant() < 0 {
		defer b.PushState().Pop()
		b.ToggleIndexOrderAndNormalReversal()
		// Normals are exact; only the index order must follow the mirror.
		b.state.ReverseNormals = !b.state.ReverseNormals
	}

	rowEdge := func(j int) bool { return !pole[j] && (j == 0 || j == numNS) }
	colEdge := func(i int) bool { return !fullTheta && (i == 0 || i == numEW) }
	corner := func(j, i, cell int, visible bool) Corner {
		c := Corner{Point: index[j][i], Normal: -1, Param: -1, Visible: visible}
		theta, uCol := thetaAt(i), i
		if pole[j] {
			theta = (thetaAt(cell) + thetaAt(cell+1)) / 2
		}
		if b.opts.NormalsRequired {
			u := unit(theta, phiAt(j))
			if pole[j] {
				u = math.Vec3{Z: gomath.Copysign(1, phiAt(j))}
			}
			c.Normal = b.findOrAddLocalNormal(inv.TransposeTransformDirection(u))
		}
		if b.opts.ParamsRequired {
			uv := pg.at(b.opts.ParamMode, j, uCol)
			if pole[j] {
				mid := pg.at(b.opts.ParamMode, j, cell+1)
				uv.X = (uv.X + mid.X) / 2
			}
			c.Param = b.FindOrAddParam(uv)
		}
		return c
	}

	for j := 0; j < numNS; j++ {
		for i := 0; i < numEW; i++ {
			switch {
			case pole[j] && pole[j+1]:
			case pole[j]:
				b.addFacet([]Corner{
					corner(j, i, i, colEdge(i+1)),
					corner(j+1, i+1, i, rowEdge(j+1)),
					corner(j+1, i, i, colEdge(i)),
				})
			case pole[j+1]:
				b.addFacet([]Corner{
					corner(j, i, i, rowEdge(j)),
					corner(j, i+1, i, colEdge(i+1)),
					corner(j+1, i, i, colEdge(i)),
				})
			default:
				b.addQuad([4]Corner{
					corner(j, i, i, rowEdge(j)),
					corner(j, i+1, i, colEdge(i+1)),
					corner(j+1, i+1, i, rowEdge(j+1)),
					corner(j+1, i, i, colEdge(i)),
				})
			}
		}
	}
	b.setParamDistanceRange(pg.distanceRange())
	b.EndFace()
	return nil
}

// AddFullDisk fills the full ellipse of arc (its start and sweep are
// ignored) with concentric rings around the center. numPerQuadrant 0 is
// derived from the facet options.
func (b *Builder) AddFullDisk(ellipse curve.Arc, numPerQuadrant int) error {
	before := b.facets
	return b.finish("disk", before, b.addFullDisk(ellipse, numPerQuadrant))
}

func (b *Builder) addFullDisk(e curve.Arc, numPerQuadrant int) error {
	if numPerQuadrant < 0 {
		return fmt.Errorf("%w: %d per quadrant", ErrInvalidCount, numPerQuadrant)
	}
	if !e.Center.IsFinite() {
		return fmt.Errorf("%w: disk center", ErrInvalidVector)
	}
	n, ok := e.Vector0.Cross(e.Vector90).Unit()
	if !ok {
		return fmt.Errorf("%w: disk axes are parallel or zero", ErrInvalidVector)
	}
	q := numPerQuadrant
	if q == 0 {
		q = b.opts.QuadrantCount(e.MaxRadius())
	}
	numAround, numRing := 4*q, q
	r0, r90 := e.Vector0.Length(), e.Vector90.Length()

	at := func(k, i int) math.Vec3 {
		s := float64(k) / float64(numRing)
		return e.PointAtAngle(2 * gomath.Pi * float64(i%numAround) / float64(numAround)).Sub(e.Center).Scale(s).Add(e.Center)
	}
	index := make([][]int, numRing+1)
	index[0] = []int{b.findOrAddLocalPoint(e.Center)}
	for k := 1; k <= numRing; k++ {
		index[k] = make([]int, numAround)
		for i := range index[k] {
			index[k][i] = b.findOrAddLocalPoint(at(k, i))
		}
	}
	normal := -1
	if b.opts.NormalsRequired {
		normal = b.findOrAddLocalNormal(n)
	}
	corner := func(k, i int, visible bool) Corner {
		c := Corner{Normal: normal, Param: -1, Visible: visible}
		if k == 0 {
			c.Point = index[0][0]
		} else {
			c.Point = index[k][i%numAround]
		}
		if b.opts.ParamsRequired {
			s := float64(k) / float64(numRing)
			theta := 2 * gomath.Pi * float64(i%numAround) / float64(numAround)
			c.Param = b.FindOrAddParam(math.Vec2{X: (1 + s*gomath.Cos(theta)) * r0, Y: (1 + s*gomath.Sin(theta)) * r90})
		}
		return c
	}

	for i := 0; i < numAround; i++ {
		b.addFacet([]Corner{
			corner(0, i, false),
			corner(1, i, numRing == 1),
			corner(1, i+1, false),
		})
	}
	for k := 1; k < numRing; k++ {
		for i := 0; i < numAround; i++ {
			b.addQuad([4]Corner{
				corner(k, i, false),
				corner(k+1, i, k+1 == numRing),
				corner(k+1, i+1, false),
				corner(k, i+1, false),
			})
		}
	}
	b.setParamDistanceRange(Range2{Max: math.Vec2{X: 2 * r0, Y: 2 * r90}})
	b.EndFace()
	return nil
}
