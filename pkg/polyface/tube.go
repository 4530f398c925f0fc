package polyface

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/polyface/pkg/curve"
	"github.com/Faultbox/polyface/pkg/math"
	"github.com/Faultbox/polyface/pkg/stroke"
)

// AddTubeMesh emits a tube of circular section around a centerline. The
// centerline is stroked at numSectionEdge+1 stations; each section has
// numEdgePerSection edges. The section frame is carried from station to
// station so it does not twist along curved centerlines.
func (b *Builder) AddTubeMesh(centerline curve.Primitive, radius float64, numEdgePerSection, numSectionEdge int) error {
	before := b.facets
	return b.finish("tube", before, b.addTubeMesh(centerline, radius, numEdgePerSection, numSectionEdge))
}

func (b *Builder) addTubeMesh(centerline curve.Primitive, radius float64, numEdgePerSection, numSectionEdge int) error {
	if !(radius > 0) || gomath.IsInf(radius, 0) {
		return fmt.Errorf("%w: tube radius %v", ErrInvalidVector, radius)
	}
	if numEdgePerSection < 3 || numSectionEdge < 1 {
		return fmt.Errorf("%w: %d edges per section, %d sections", ErrInvalidCount, numEdgePerSection, numSectionEdge)
	}
	stations, err := stroke.Stroke(centerline, numSectionEdge)
	if err != nil {
		return err
	}

	numPerRow := numEdgePerSection + 1
	numRow := len(stations)
	points := make([]math.Vec3, 0, numPerRow*numRow)
	normals := make([]math.Vec3, 0, numPerRow*numRow)
	var vector0 math.Vec3
	for k, s := range stations {
		t, ok := s.Tangent.Unit()
		if !ok {
			return fmt.Errorf("%w: centerline tangent vanishes at station %d", ErrInvalidVector, k)
		}
		// Project the previous reference direction onto this section plane.
		v := vector0.Sub(t.Scale(vector0.Dot(t)))
		if k == 0 || v.Length() < b.tol().FrameReset*vector0.Length() {
			v = t.Perpendicular()
		}
		vector0 = v.Normalize().Scale(radius)
		vector90 := t.Cross(vector0)

		first := len(points)
		for e := 0; e <= numEdgePerSection; e++ {
			if e == numEdgePerSection {
				points = append(points, points[first])
				normals = append(normals, normals[first])
				continue
			}
			theta := 2 * gomath.Pi * float64(e) / float64(numEdgePerSection)
			offset := vector0.Scale(gomath.Cos(theta)).Add(vector90.Scale(gomath.Sin(theta)))
			points = append(points, s.Point.Add(offset))
			normals = append(normals, offset)
		}
	}
	if !b.opts.NormalsRequired {
		normals = nil
	}
	return b.addRowMajorQuadGrid(points, normals, nil, numPerRow, numRow)
}
