package polyface

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/polyface/pkg/facet"
	"github.com/Faultbox/polyface/pkg/math"
)

// Builder appends surfaces to a Mesh. A Builder is not safe for concurrent
// use; separate builders on separate meshes share nothing.
type Builder struct {
	mesh *Mesh
	opts facet.Options
	log  *zap.Logger

	points  *registry
	normals *registry
	params  *registry

	state State
	stack []State

	facetOpen     bool // corners written since the last terminator
	normalOpen    bool
	paramOpen     bool
	quadRuns      []quadRun // split of the open raw point quad
	quadPending   bool
	facets        int // terminated facets in the mesh
	faceStart     int
	paramRange    Range2
	hasParamRange bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for construction diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBuilder returns a builder appending to mesh. Points, normals and
// params already in the mesh take part in welding.
func NewBuilder(mesh *Mesh, opts facet.Options, options ...Option) (*Builder, error) {
	if mesh == nil {
		return nil, ErrNilMesh
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	b := &Builder{
		mesh:    mesh,
		opts:    opts,
		log:     zap.NewNop(),
		points:  newRegistry(opts.Tolerances.PointMatch),
		normals: newRegistry(opts.Tolerances.NormalMatch),
		params:  newRegistry(opts.Tolerances.ParamMatch),
		state:   identityState(),
	}
	for _, o := range options {
		o(b)
	}

	for i, p := range mesh.Points {
		b.points.insert(p, i)
	}
	for i, n := range mesh.Normals {
		b.normals.insert(n, i)
	}
	for i, uv := range mesh.Params {
		b.params.insert(math.Vec3{X: uv.X, Y: uv.Y}, i)
	}
	b.facets = mesh.FacetCount()
	b.faceStart = b.facets
	if n := len(mesh.PointIndex); n > 0 && mesh.PointIndex[n-1] != Terminator {
		b.facetOpen = true
	}
	if n := len(mesh.NormalIndex); n > 0 && mesh.NormalIndex[n-1] != Terminator {
		b.normalOpen = true
	}
	if n := len(mesh.ParamIndex); n > 0 && mesh.ParamIndex[n-1] != Terminator {
		b.paramOpen = true
	}
	return b, nil
}

// Mesh returns the mesh being built.
func (b *Builder) Mesh() *Mesh {
	return b.mesh
}

// Options returns the facet options in effect.
func (b *Builder) Options() facet.Options {
	return b.opts
}

func (b *Builder) tol() facet.Tolerances {
	return b.opts.Tolerances
}

// finish logs the outcome of one construction call and passes err through.
func (b *Builder) finish(op string, before int, err error) error {
	facets := b.facets - before
	if err != nil {
		b.log.Debug("construction failed",
			zap.String("op", op),
			zap.Int("facets", facets),
			zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	b.log.Debug("construction done",
		zap.String("op", op),
		zap.Int("facets", facets),
		zap.Int("points", len(b.mesh.Points)))
	return nil
}
