package facet

import gomath "math"

// maxStrokeCount bounds every count so absurd tolerances cannot exhaust
// memory.
const maxStrokeCount = 1 << 20

// countSlack absorbs round-off before taking a ceiling, so 4*0.25 stays 1.
const countSlack = 1e-9

// SegmentCount returns the number of strokes for a straight piece of the
// given length.
func (o Options) SegmentCount(length float64) int {
	if o.MaxEdgeLength <= 0 || !(length > 0) {
		return 1
	}
	return ceilCount(length / o.MaxEdgeLength)
}

// ArcCount returns the number of strokes for a circular arc of the given
// radius and sweep (radians, either sign).
func (o Options) ArcCount(radius, sweep float64) int {
	sweep = gomath.Abs(sweep)
	if !(sweep > 0) || gomath.IsInf(sweep, 0) {
		return 1
	}
	n := 1
	if at := o.AngleTolerance.Radians(); at > 0 {
		n = max(n, ceilCount(sweep/at))
	}
	if o.MaxEdgeLength > 0 && radius > 0 && o.MaxEdgeLength < 2*radius {
		step := 2 * gomath.Asin(o.MaxEdgeLength/(2*radius))
		n = max(n, ceilCount(sweep/step))
	}

	fraction := sweep / (2 * gomath.Pi)
	if o.MaxPerEllipse > 0 {
		n = min(n, ceilCount(float64(o.MaxPerEllipse)*fraction))
	}
	minFull := max(4, o.MinPerEllipse)
	return max(n, ceilCount(float64(minFull)*fraction))
}

// QuadrantCount returns the stroke count for a quarter turn at the given
// radius, so that full circles get a multiple of 4.
func (o Options) QuadrantCount(radius float64) int {
	return o.ArcCount(radius, gomath.Pi/2)
}

// DistanceAndTurnCount returns the larger of the counts needed to keep
// edges below MaxEdgeLength over distance and turns below AngleTolerance
// over turn.
func (o Options) DistanceAndTurnCount(distance, turn float64) int {
	n := 1
	if o.MaxEdgeLength > 0 && distance > 0 {
		n = max(n, ceilCount(distance/o.MaxEdgeLength))
	}
	if at := o.AngleTolerance.Radians(); at > 0 && turn > 0 {
		n = max(n, ceilCount(turn/at))
	}
	return n
}

func ceilCount(x float64) int {
	if gomath.IsNaN(x) || x <= 1 {
		return 1
	}
	if x >= maxStrokeCount {
		return maxStrokeCount
	}
	return int(gomath.Ceil(x - countSlack))
}
