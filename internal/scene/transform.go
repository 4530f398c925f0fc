package scene

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/polyface/pkg/math"
)

// Transform places a shape: scale first, then rotate, then translate.
// A missing scale is the identity; negative components mirror.
type Transform struct {
	Translate Vec       `yaml:"translate"`
	Rotate    *Rotation `yaml:"rotate"`
	Scale     *Vec      `yaml:"scale"`
}

// Rotation turns about Axis through the origin.
type Rotation struct {
	Axis    Vec     `yaml:"axis"`
	Degrees float64 `yaml:"degrees"`
}

// Matrix returns Translate * Rotate * Scale.
func (t *Transform) Matrix() (math.Mat4, error) {
	m := math.Translate(t.Translate.V3())

	if t.Rotate != nil && t.Rotate.Degrees != 0 {
		axis, ok := t.Rotate.Axis.V3().Unit()
		if !ok {
			return math.Mat4{}, fmt.Errorf("%w: rotation axis %v", ErrInvalidShape, t.Rotate.Axis)
		}
		q := math.QuatFromAxisAngle(axis, t.Rotate.Degrees*gomath.Pi/180)
		m = m.Mul(q.ToMat4())
	}

	if t.Scale != nil {
		s := *t.Scale
		m = m.Mul(math.Scale(s[0], s[1], s[2]))
	}
	return m, nil
}
