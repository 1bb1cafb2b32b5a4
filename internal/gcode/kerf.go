package gcode

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/piwi3910/cellholder/internal/busbar"
	"github.com/piwi3910/cellholder/internal/model"
)

// KerfConflict reports two plates whose separating gap is narrower than
// the cutter: cutting one of them would bite into the other.
type KerfConflict struct {
	Face     busbar.Face
	First    string
	Second   string
	Distance float64 // closest distance between the two outlines
	Tool     float64
}

// CheckKerfClearance compares every pair of plates against the tool
// diameter. Plates are cut outside their outline, so neighbours need at
// least one tool diameter between them.
func CheckKerfClearance(plates []busbar.Plate, toolDiameter float64) []KerfConflict {
	if toolDiameter <= 0 {
		return nil
	}

	var conflicts []KerfConflict
	for i := 0; i < len(plates); i++ {
		for j := i + 1; j < len(plates); j++ {
			a, b := plates[i], plates[j]
			if a.Face != b.Face {
				continue
			}
			d := outlineDistance(a.Outline, b.Outline)
			if d < toolDiameter-1e-9 {
				conflicts = append(conflicts, KerfConflict{
					Face:     a.Face,
					First:    a.Label,
					Second:   b.Label,
					Distance: d,
					Tool:     toolDiameter,
				})
			}
		}
	}
	return conflicts
}

// outlineDistance returns the smallest distance between two closed
// outlines that do not cross. For non-crossing segments the minimum is
// attained at an endpoint, so checking vertices against edges both ways
// suffices.
func outlineDistance(a, b model.Ring) float64 {
	return math.Min(verticesToEdges(a, b), verticesToEdges(b, a))
}

func verticesToEdges(pts, ring model.Ring) float64 {
	best := math.Inf(1)
	n := len(ring)
	for _, p := range pts {
		for k := 0; k < n; k++ {
			d := segmentDistance(toVec(p), toVec(ring[k]), toVec(ring[(k+1)%n]))
			best = math.Min(best, d)
		}
	}
	return best
}

func toVec(p model.Point2D) r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	den := r2.Dot(ab, ab)
	if den == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := math.Max(0, math.Min(1, r2.Dot(r2.Sub(p, a), ab)/den))
	closest := r2.Add(a, r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p, closest))
}

// FormatKerfWarnings produces human-readable warning messages.
func FormatKerfWarnings(conflicts []KerfConflict) []string {
	var warnings []string
	for _, c := range conflicts {
		warnings = append(warnings, fmt.Sprintf(
			"%s face: plates %s and %s are %.2f mm apart, tool is %.2f mm: increase the gap or use a smaller cutter",
			c.Face, c.First, c.Second, c.Distance, c.Tool))
	}
	return warnings
}
