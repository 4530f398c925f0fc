package polyface

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/polyface/pkg/math"
)

// State is the transform context of a Builder. Operators take their input
// in local coordinates; points are mapped by LocalToWorld and normals by
// the transpose of WorldToLocal.
type State struct {
	LocalToWorld      math.Mat4
	WorldToLocal      math.Mat4
	LocalToWorldScale float64 // signed cube root of the determinant
	WorldToLocalScale float64

	ReverseFacetIndexOrder bool
	ReverseNormals         bool
}

func identityState() State {
	return State{
		LocalToWorld:      math.Identity(),
		WorldToLocal:      math.Identity(),
		LocalToWorldScale: 1,
		WorldToLocalScale: 1,
	}
}

// State returns the current transform context.
func (b *Builder) State() State {
	return b.state
}

// SetLocalToWorld replaces the local-to-world transform. A singular or
// non-finite matrix leaves the state unchanged.
func (b *Builder) SetLocalToWorld(m math.Mat4) error {
	inv, err := m.Inverse()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSingularTransform, err)
	}
	scale := gomath.Cbrt(m.Determinant())
	if scale == 0 || !isFinite(scale) {
		return ErrSingularTransform
	}
	b.state.LocalToWorld = m
	b.state.WorldToLocal = inv
	b.state.LocalToWorldScale = scale
	b.state.WorldToLocalScale = 1 / scale
	return nil
}

// ApplyLocalToWorld composes m into the current transform, so that m is
// applied to local geometry first.
func (b *Builder) ApplyLocalToWorld(m math.Mat4) error {
	return b.SetLocalToWorld(b.state.LocalToWorld.Mul(m))
}

// ToggleIndexOrderAndNormalReversal flips facet orientation and normal
// direction together.
func (b *Builder) ToggleIndexOrderAndNormalReversal() {
	b.state.ReverseFacetIndexOrder = !b.state.ReverseFacetIndexOrder
	b.state.ReverseNormals = !b.state.ReverseNormals
}

// reverseIndexOrder reports whether emitted facets are reversed. A mirror
// transform flips orientation on its own, so it is folded in here.
func (b *Builder) reverseIndexOrder() bool {
	return b.state.ReverseFacetIndexOrder != (b.state.LocalToWorldScale < 0)
}

// StateGuard restores a saved State.
type StateGuard struct {
	b     *Builder
	depth int
	done  bool
}

// PushState saves the current state. The returned guard restores it:
//
//	defer b.PushState().Pop()
func (b *Builder) PushState() *StateGuard {
	b.stack = append(b.stack, b.state)
	return &StateGuard{b: b, depth: len(b.stack)}
}

// Pop restores the state saved by PushState, discarding any states pushed
// after it. Calling Pop more than once has no effect.
func (g *StateGuard) Pop() {
	if g == nil || g.done {
		return
	}
	g.done = true
	b := g.b
	if g.depth > len(b.stack) {
		return
	}
	b.state = b.stack[g.depth-1]
	b.stack = b.stack[:g.depth-1]
}

// StateDepth returns the number of saved states.
func (b *Builder) StateDepth() int {
	return len(b.stack)
}

func isFinite(x float64) bool {
	return !gomath.IsNaN(x) && !gomath.IsInf(x, 0)
}
