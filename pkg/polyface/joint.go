package polyface

import (
	"github.com/Faultbox/polyface/pkg/curve"
	"github.com/Faultbox/polyface/pkg/facet"
	"github.com/Faultbox/polyface/pkg/math"
)

// noCurve marks the open side of a contour end.
const noCurve = -1

// JointSide is one side of a joint between consecutive stroke samples: the
// sample point, the tangent on that side and the curve it came from
// (noCurve at an open end).
type JointSide struct {
	Point   math.Vec3
	Tangent math.Vec3
	Curve   int
}

// IsVisibleJoint reports whether the rule line through a joint is a real
// feature edge. Open ends, gaps and changes of curve are visible; within
// one curve the joint is visible only where the tangent turns. The result
// does not depend on the order of a and b.
func IsVisibleJoint(a, b JointSide, tol facet.Tolerances) bool {
	if a.Curve == noCurve || b.Curve == noCurve || a.Curve != b.Curve {
		return true
	}
	if a.Point.Distance(b.Point) > tol.PointMatch {
		return true
	}
	return !a.Tangent.IsParallelTo(b.Tangent, tol.Parallel)
}

// NeedReverse reports whether a surface ruled from contour a toward
// contour b must be reversed to face away from the area a encloses: the
// area normal of a points against the step between the centroids.
func NeedReverse(a, b []math.Vec3) bool {
	n := curve.AreaNormal(a)
	step := curve.Centroid(b).Sub(curve.Centroid(a))
	return n.Dot(step) < 0
}
