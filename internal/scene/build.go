package scene

import (
	"fmt"
	gomath "math"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/polyface/pkg/curve"
	"github.com/Faultbox/polyface/pkg/math"
	"github.com/Faultbox/polyface/pkg/polyface"
)

// ShapeReport is the outcome of one shape.
type ShapeReport struct {
	Label  string
	Facets int
	Err    error
}

// Report summarizes a build.
type Report struct {
	Shapes     []ShapeReport
	Points     int
	Normals    int
	Params     int
	Facets     int
	Faces      int
	EdgeChains int
	Bounds     polyface.Bounds
	HasBounds  bool
}

// Build appends every shape to mesh. A failing shape does not stop the
// build; the returned error combines all shape errors, and the facets a
// failing shape emitted before the failure stay in the mesh.
func (s *Scene) Build(mesh *polyface.Mesh, log *zap.Logger) (*Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	b, err := polyface.NewBuilder(mesh, s.Facet, polyface.WithLogger(log.Named("builder")))
	if err != nil {
		return nil, err
	}

	report := &Report{}
	var errs error
	for i := range s.Shapes {
		sh := &s.Shapes[i]
		label := sh.Label(i)
		before := mesh.FacetCount()

		err := buildShape(b, sh)
		facets := mesh.FacetCount() - before
		report.Shapes = append(report.Shapes, ShapeReport{Label: label, Facets: facets, Err: err})
		if err != nil {
			log.Warn("shape failed", zap.String("shape", label), zap.Int("facets", facets), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", label, err))
			continue
		}
		log.Debug("shape built", zap.String("shape", label), zap.Int("facets", facets))
	}

	report.Points = len(mesh.Points)
	report.Normals = len(mesh.Normals)
	report.Params = len(mesh.Params)
	report.Facets = mesh.FacetCount()
	report.Faces = len(mesh.Faces)
	report.EdgeChains = len(mesh.EdgeChains)
	report.Bounds, report.HasBounds = mesh.Range()
	return report, errs
}

// buildShape runs one shape inside its own construction state so that its
// transform and orientation do not leak into later shapes.
func buildShape(b *polyface.Builder, sh *Shape) error {
	defer b.PushState().Pop()

	if sh.Transform != nil {
		m, err := sh.Transform.Matrix()
		if err != nil {
			return err
		}
		if err := b.ApplyLocalToWorld(m); err != nil {
			return err
		}
	}
	if sh.Reverse {
		b.ToggleIndexOrderAndNormalReversal()
	}

	switch sh.Type {
	case TypeLinearSweep:
		if sh.Path != nil {
			path, err := sh.Path.Path()
			if err != nil {
				return err
			}
			return b.AddLinearSweepPath(path, sh.Step.V3(), sh.Capped)
		}
		return b.AddLinearSweep(vecs(sh.Points), sh.Step.V3(), sh.Capped)

	case TypeRotationalSweep:
		sweep := 2 * gomath.Pi
		if sh.SweepDegrees != 0 {
			sweep = degrees(sh.SweepDegrees)
		}
		if sh.Path != nil {
			path, err := sh.Path.Path()
			if err != nil {
				return err
			}
			return b.AddRotationalSweepPath(path, sh.Center.V3(), sh.Axis.V3(), sweep, sh.Capped, sh.Steps)
		}
		return b.AddRotationalSweepLoop(vecs(sh.Points), sh.Center.V3(), sh.Axis.V3(), sweep, sh.Capped, sh.Steps)

	case TypeRuled:
		if len(sh.Contours) < 2 {
			return fmt.Errorf("%w: ruled surface needs 2 or more contours, got %d", ErrInvalidShape, len(sh.Contours))
		}
		paths := make([]*curve.Path, 0, len(sh.Contours))
		for i := range sh.Contours {
			p, err := sh.Contours[i].Path()
			if err != nil {
				return fmt.Errorf("contour %d: %w", i, err)
			}
			paths = append(paths, p)
		}
		return b.AddRuledBetweenCorrespondingCurves(paths, sh.Capped)

	case TypeDisk:
		c, err := circle(sh.Center, sh.Normal, sh.Radius)
		if err != nil {
			return err
		}
		return b.AddFullDisk(c, sh.PerQuadrant)

	case TypeSphere:
		return b.AddFullSphere(sh.Center.V3(), sh.Radius, sh.PerQuadrant)

	case TypeEllipsoid:
		patch := polyface.FullEllipsoid(sh.Center.V3(), sh.X.V3(), sh.Y.V3(), sh.Z.V3())
		if sh.Theta != nil {
			patch.Theta0, patch.ThetaSweep = degrees(sh.Theta.StartDegrees), degrees(sh.Theta.SweepDegrees)
		}
		if sh.Phi != nil {
			patch.Phi0, patch.PhiSweep = degrees(sh.Phi.StartDegrees), degrees(sh.Phi.SweepDegrees)
		}
		patch.NumPerQuadrantEW = sh.PerQuadrant
		patch.NumPerQuadrantNS = sh.PerQuadrant
		return b.AddEllipsoidPatch(patch)

	case TypeTube:
		if sh.Centerline == nil {
			return fmt.Errorf("%w: tube without centerline", ErrInvalidShape)
		}
		prim, err := sh.Centerline.Primitive()
		if err != nil {
			return err
		}
		return b.AddTubeMesh(prim, sh.Radius, sh.EdgesPerSection, sh.Sections)

	case TypeGrid:
		return b.AddRowMajorQuadGrid(vecs(sh.Points), optionalVecs(sh.Normals), params(sh.Params), sh.PerRow, sh.Rows)

	case TypeStrip:
		return b.AddTriangleStrip(vecs(sh.Points), optionalVecs(sh.Normals), params(sh.Params))

	case TypePolygon:
		return b.AddPolygon(vecs(sh.Points))
	}
	return fmt.Errorf("%w %q", ErrUnknownShapeType, sh.Type)
}

func optionalVecs(in []Vec) []math.Vec3 {
	if in == nil {
		return nil
	}
	return vecs(in)
}

func params(in [][2]float64) []math.Vec2 {
	if in == nil {
		return nil
	}
	out := make([]math.Vec2, len(in))
	for i, uv := range in {
		out[i] = math.Vec2{X: uv[0], Y: uv[1]}
	}
	return out
}
