package engine

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/piwi3910/cellholder/internal/model"
)

// Segment count bounds for circle tessellation.
const (
	MinSegments = 64
	MaxSegments = 4096
)

// SegmentCount returns the number of segments needed to approximate a full
// circle of the given radius so that no chord deviates from the true arc by
// more than tolerance. The result is a multiple of 4 in
// [MinSegments, MaxSegments]. Degenerate input yields MaxSegments.
func SegmentCount(radius, tolerance float64) int {
	if !(radius > 0) || !(tolerance > 0) || math.IsInf(radius, 0) || math.IsInf(tolerance, 0) {
		return MaxSegments
	}

	// A tolerance larger than the diameter allows a half turn per segment.
	c := math.Max(1-tolerance/radius, -1)
	theta := 2 * math.Acos(c)
	if !(theta > 0) {
		return MaxSegments
	}

	n := math.Ceil(2 * math.Pi / theta)
	if n >= MaxSegments {
		return MaxSegments
	}
	segs := int(n)
	if rem := segs % 4; rem != 0 {
		segs += 4 - rem
	}
	if segs < MinSegments {
		segs = MinSegments
	}
	if segs > MaxSegments {
		segs = MaxSegments
	}
	return segs
}

// polar returns the point at angle a on the circle (center, r).
func polar(center v2.Vec, r, a float64) model.Point2D {
	p := center.Add(v2.Vec{X: math.Cos(a), Y: math.Sin(a)}.MulScalar(r))
	return model.Point2D{X: p.X, Y: p.Y}
}

// CirclePoints returns n points on a circle, counter-clockwise, starting
// at angle 0. The ring is implicitly closed.
func CirclePoints(center model.Point2D, radius float64, n int) model.Ring {
	if n < 3 {
		n = 3
	}
	c := v2.Vec{X: center.X, Y: center.Y}
	ring := make(model.Ring, n)
	for i := 0; i < n; i++ {
		ring[i] = polar(c, radius, 2*math.Pi*float64(i)/float64(n))
	}
	return ring
}

// ArcPoints returns the points of a counter-clockwise arc from start to end
// (radians), split into segs segments. Both endpoints are included.
func ArcPoints(center model.Point2D, radius, start, end float64, segs int) []model.Point2D {
	if segs < 1 {
		segs = 1
	}
	c := v2.Vec{X: center.X, Y: center.Y}
	pts := make([]model.Point2D, 0, segs+1)
	for i := 0; i <= segs; i++ {
		a := start + (end-start)*float64(i)/float64(segs)
		pts = append(pts, polar(c, radius, a))
	}
	return pts
}
