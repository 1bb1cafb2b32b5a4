package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
	"github.com/yofu/dxf/table"

	"github.com/piwi3910/cellholder/internal/model"
)

// arcSegments is the number of chords used for arcs and bulges.
const arcSegments = 32

// DrawingResult holds a drawing read back from a DXF file.
type DrawingResult struct {
	Drawing  model.Drawing
	Errors   []string
	Warnings []string
}

// segment represents a line segment between two 2D points, used for
// chaining disconnected LINE and ARC entities into outlines.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// ImportDrawing reads a DXF file into a layered drawing. LWPOLYLINEs keep
// their closed flag with bulges expanded into chords, CIRCLEs stay circles,
// and loose LINEs and ARCs are chained per layer into polylines.
func ImportDrawing(path string) DrawingResult {
	result := DrawingResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	loose := make(map[string][]segment)
	var layerOrder []string
	addLoose := func(layer string, segs ...segment) {
		if _, ok := loose[layer]; !ok {
			layerOrder = append(layerOrder, layer)
		}
		loose[layer] = append(loose[layer], segs...)
	}

	skipped := 0
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			pts := lwPolylinePoints(e)
			if len(pts) < 2 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 2 vertices")
				continue
			}
			result.Drawing.AddPolyline(pts, e.Closed, layerName(e.Layer()))

		case *entity.Circle:
			result.Drawing.AddCircle(model.Point2D{X: e.Center[0], Y: e.Center[1]}, e.Radius, layerName(e.Layer()))

		case *entity.Arc:
			pts := arcToPoints(e, arcSegments)
			if len(pts) >= 2 {
				addLoose(layerName(e.Layer()), pointsToSegments(pts)...)
			}

		case *entity.Line:
			addLoose(layerName(e.Layer()), segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})

		default:
			skipped++
		}
	}
	if skipped > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d unsupported entities", skipped))
	}

	for _, layer := range layerOrder {
		for _, c := range chainSegments(loose[layer], 0.01) {
			result.Drawing.AddPolyline(c.points, c.closed, layer)
		}
	}

	if len(result.Drawing.Polylines) == 0 && len(result.Drawing.Circles) == 0 {
		result.Errors = append(result.Errors, "No usable shapes found in DXF file")
	}
	return result
}

func layerName(l *table.Layer) string {
	if l == nil {
		return "0"
	}
	return l.Name()
}

// lwPolylinePoints converts a DXF LWPOLYLINE to points.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylinePoints(lw *entity.LwPolyline) model.Ring {
	var out model.Ring
	n := len(lw.Vertices)

	for i := 0; i < n; i++ {
		v := lw.Vertices[i]
		current := model.Point2D{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		// the last vertex of an open polyline has no outgoing segment
		last := i == n-1 && !lw.Closed
		if math.Abs(bulge) > 1e-9 && !last {
			nextIdx := (i + 1) % n
			next := model.Point2D{X: lw.Vertices[nextIdx][0], Y: lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, arcSegments)
			out = append(out, arcPts[:len(arcPts)-1]...)
		} else {
			out = append(out, current)
		}
	}

	return out
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor. The bulge is the tangent of 1/4 the included angle;
// positive bulges turn counter-clockwise.
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, numSegments int) model.Ring {
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chordLen := math.Sqrt(dx*dx + dy*dy)
	if chordLen < 1e-9 {
		return model.Ring{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	// center sits left of the chord for a counter-clockwise minor arc
	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge < 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	sweep := 4 * math.Atan(bulge)

	pts := make(model.Ring, 0, numSegments+1)
	for i := 0; i < numSegments; i++ {
		angle := startAngle + sweep*float64(i)/float64(numSegments)
		pts = append(pts, model.Point2D{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		})
	}
	return append(pts, p2)
}

// arcToPoints converts a DXF ARC entity to a series of line points.
// DXF arcs always run counter-clockwise from the start to the end angle.
func arcToPoints(a *entity.Arc, numSegments int) []model.Point2D {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]model.Point2D, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = model.Point2D{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return pts
}

// pointsToSegments converts a point sequence to a slice of connected segments.
func pointsToSegments(pts []model.Point2D) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

type chain struct {
	points model.Ring
	closed bool
}

// chainSegments connects individual segments into polylines.
// tolerance is the maximum distance between endpoints to consider them connected.
func chainSegments(segs []segment, tolerance float64) []chain {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var chains []chain

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		pts := model.Ring{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := pts[len(pts)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					pts = append(pts, seg.end)
					used[i] = true
					changed = true
					break
				}
				if pointsClose(tail, seg.end, tolerance) {
					pts = append(pts, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		closed := len(pts) >= 4 && pointsClose(pts[0], pts[len(pts)-1], tolerance)
		if closed {
			pts = pts[:len(pts)-1]
		}
		chains = append(chains, chain{points: pts, closed: closed})
	}

	// largest enclosed area first for a stable order
	sort.SliceStable(chains, func(i, j int) bool {
		return math.Abs(chains[i].points.SignedArea()) > math.Abs(chains[j].points.SignedArea())
	})

	return chains
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b model.Point2D, tolerance float64) bool {
	return model.Dist(a, b) <= tolerance
}
