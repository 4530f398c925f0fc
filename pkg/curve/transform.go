package curve

import "github.com/Faultbox/polyface/pkg/math"

// Transform returns a copy of p with every point mapped through m.
// Unsupported primitives are returned unchanged.
func Transform(p Primitive, m math.Mat4) Primitive {
	switch c := p.(type) {
	case Segment:
		return Segment{Start: m.TransformPoint(c.Start), End: m.TransformPoint(c.End)}
	case Arc:
		c.Center = m.TransformPoint(c.Center)
		c.Vector0 = m.TransformDirection(c.Vector0)
		c.Vector90 = m.TransformDirection(c.Vector90)
		return c
	case LineString:
		return LineString{Points: transformPoints(c.Points, m)}
	case *Bspline:
		if c == nil {
			return c
		}
		return &Bspline{Order: c.Order, Poles: transformPoints(c.Poles, m), Knots: append([]float64(nil), c.Knots...)}
	case ChildRegion:
		if c.Path == nil {
			return c
		}
		return ChildRegion{Path: c.Path.Transform(m)}
	}
	return p
}

// Transform returns a deep copy of the path mapped through m.
func (p *Path) Transform(m math.Mat4) *Path {
	out := &Path{Boundary: p.Boundary, Primitives: make([]Primitive, len(p.Primitives))}
	for i, prim := range p.Primitives {
		out.Primitives[i] = Transform(prim, m)
	}
	return out
}

func transformPoints(points []math.Vec3, m math.Mat4) []math.Vec3 {
	out := make([]math.Vec3, len(points))
	for i, p := range points {
		out[i] = m.TransformPoint(p)
	}
	return out
}
