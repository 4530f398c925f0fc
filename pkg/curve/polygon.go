package curve

import "github.com/Faultbox/polyface/pkg/math"

// AreaNormal returns the Newell normal of the polygon through points. Its
// length is twice the enclosed area; it points to the side from which the
// polygon runs counterclockwise. A repeated closing point is harmless.
func AreaNormal(points []math.Vec3) math.Vec3 {
	var n math.Vec3
	if len(points) < 3 {
		return n
	}
	origin := points[0]
	for i := 1; i+1 < len(points); i++ {
		a := points[i].Sub(origin)
		b := points[i+1].Sub(origin)
		n = n.Add(a.Cross(b))
	}
	return n
}

// Centroid returns the average of the points, ignoring a repeated closing
// point.
func Centroid(points []math.Vec3) math.Vec3 {
	n := len(points)
	if n > 1 && points[0] == points[n-1] {
		n--
	}
	if n == 0 {
		return math.Vec3{}
	}
	var sum math.Vec3
	for _, p := range points[:n] {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(n))
}
