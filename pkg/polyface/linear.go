package polyface

import (
	"fmt"

	"github.com/Faultbox/polyface/pkg/curve"
	"github.com/Faultbox/polyface/pkg/math"
)

// AddLinearSweep sweeps a polyline along step. The points form a closed
// polygon when the first and last coincide or when capped is set; capped
// polygons get a triangulated cap at both ends. Side facets face away from
// the polygon interior whichever way step points.
func (b *Builder) AddLinearSweep(points []math.Vec3, step math.Vec3, capped bool) error {
	before := b.facets
	return b.finish("linear sweep", before, b.addLinearSweep(points, step, capped))
}

func (b *Builder) addLinearSweep(points []math.Vec3, step math.Vec3, capped bool) error {
	if err := checkStep(step); err != nil {
		return err
	}
	tol := b.tol().PointMatch
	var pts []math.Vec3
	for i, p := range points {
		if !p.IsFinite() {
			return fmt.Errorf("%w: point %d", ErrInvalidVector, i)
		}
		if len(pts) > 0 && pts[len(pts)-1].Distance(p) <= tol {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) < 2 {
		return fmt.Errorf("%w: %d distinct points", ErrTooFewPoints, len(pts))
	}

	closed := len(pts) > 3 && pts[0].Distance(pts[len(pts)-1]) <= tol
	if closed {
		pts[len(pts)-1] = pts[0]
	} else if capped && len(pts) >= 3 {
		pts = append(pts, pts[0])
		closed = true
	}
	base := curve.NewOpenPath(curve.LineString{Points: pts})
	if closed {
		base = curve.NewLoop(curve.LineString{Points: pts})
	}
	return b.addRuled([]*curve.Path{base, base.Transform(math.Translate(step))}, capped && closed)
}

// AddLinearSweepPath sweeps a path along step. Regions sweep every child
// loop; hole walls face into their holes and caps are cut around them.
func (b *Builder) AddLinearSweepPath(path *curve.Path, step math.Vec3, capped bool) error {
	before := b.facets
	err := checkStep(step)
	if err == nil && path == nil {
		err = fmt.Errorf("%w: nil path", ErrTooFewPoints)
	}
	if err == nil {
		err = b.addRuled([]*curve.Path{path, path.Transform(math.Translate(step))}, capped)
	}
	return b.finish("linear sweep", before, err)
}

func checkStep(step math.Vec3) error {
	if !step.IsFinite() || step.LengthSquared() == 0 {
		return fmt.Errorf("%w: sweep vector %v", ErrInvalidVector, step)
	}
	return nil
}
