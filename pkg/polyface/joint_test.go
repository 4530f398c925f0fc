package polyface

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/polyface/pkg/facet"
	"github.com/Faultbox/polyface/pkg/math"
)

func TestIsVisibleJoint(t *testing.T) {
	tol := facet.DefaultTolerances()
	p := math.Vec3{X: 1}
	x := math.Vec3{X: 1}
	tests := []struct {
		name string
		a, b JointSide
		want bool
	}{
		{"open end", JointSide{p, x, noCurve}, JointSide{p, x, 0}, true},
		{"curve change", JointSide{p, x, 0}, JointSide{p, x, 1}, true},
		{"gap", JointSide{p, x, 0}, JointSide{p.Add(math.Vec3{Y: 1}), x, 0}, true},
		{"smooth", JointSide{p, x, 0}, JointSide{p, x.Scale(3), 0}, false},
		{"kink", JointSide{p, x, 0}, JointSide{p, math.Vec3{Y: 1}, 0}, true},
		{"cusp", JointSide{p, x, 0}, JointSide{p, x.Negate(), 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVisibleJoint(tt.a, tt.b, tol); got != tt.want {
				t.Errorf("IsVisibleJoint(a, b) = %v, want %v", got, tt.want)
			}
			if got := IsVisibleJoint(tt.b, tt.a, tol); got != tt.want {
				t.Errorf("IsVisibleJoint(b, a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNeedReverse(t *testing.T) {
	tri := []math.Vec3{{}, {X: 1}, {Y: 1}}
	rot := math.RotateAxis(math.Vec3{Z: 1}, gomath.Pi/3)
	lifted := make([]math.Vec3, len(tri))
	for i, p := range tri {
		lifted[i] = rot.TransformPoint(p).Add(math.Vec3{Z: 1})
	}
	if NeedReverse(tri, lifted) {
		t.Error("counterclockwise contour stepping along its normal should not reverse")
	}
	if !NeedReverse(lifted, tri) {
		t.Error("stepping against the area normal should reverse")
	}
}
