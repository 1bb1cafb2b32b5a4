package model

import "math"

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Ring represents a closed polygon as a sequence of 2D points.
// The ring is implicitly closed: the last point connects back to the first.
// Orientation matters: outer boundaries are counter-clockwise, holes clockwise.
type Ring []Point2D

// BoundingBox returns the min and max corners of the ring.
func (r Ring) BoundingBox() (min, max Point2D) {
	if len(r) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: r[0].X, Y: r[0].Y}
	max = Point2D{X: r[0].X, Y: r[0].Y}
	for _, p := range r[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// SignedArea returns the shoelace area of the ring. Positive means
// counter-clockwise with Y pointing up.
func (r Ring) SignedArea() float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += r[i].X*r[j].Y - r[j].X*r[i].Y
	}
	return area / 2
}

// IsCCW reports whether the ring winds counter-clockwise.
func (r Ring) IsCCW() bool {
	return r.SignedArea() > 0
}

// Reversed returns a copy of the ring with the opposite winding.
func (r Ring) Reversed() Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// Centroid returns the vertex average of the ring.
func (r Ring) Centroid() Point2D {
	if len(r) == 0 {
		return Point2D{}
	}
	var cx, cy float64
	for _, p := range r {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(r))
	return Point2D{X: cx / n, Y: cy / n}
}

// Contains reports whether p lies inside the ring (even-odd rule).
// Points exactly on an edge may report either way.
func (r Ring) Contains(p Point2D) bool {
	inside := false
	n := len(r)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := r[i], r[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Dist returns the euclidean distance between two points.
func Dist(a, b Point2D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Layout is the resolved 2D geometry of a holder: one outer boundary ring
// and one hole ring per cell, addressable by (row, col).
type Layout struct {
	Outer   Ring      `json:"outer"`
	Holes   []Ring    `json:"holes"`   // row-major: row, then column
	Centers []Point2D `json:"centers"` // same order as Holes

	Series   int `json:"series"`   // columns
	Parallel int `json:"parallel"` // rows

	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	CellRadius   float64 `json:"cell_radius"`
	Pitch        float64 `json:"pitch"`
	RowStep      float64 `json:"row_step"`   // vertical distance between rows
	RowOffset    float64 `json:"row_offset"` // horizontal shift applied to odd rows
	Angle        float64 `json:"angle"`      // honeycomb packing angle in radians
	Honeycomb    bool    `json:"honeycomb"`
	CornerRadius float64 `json:"corner_radius"` // effective fillet radius, 0 for square corners
	Segments     int     `json:"segments"`      // segments per cell hole
}

// CellCount returns the number of cell cavities.
func (l Layout) CellCount() int {
	return len(l.Holes)
}

// Index returns the position of cell (row, col) in the ordered ring set,
// where ring 0 is the outer boundary. Returns -1 when out of range.
func (l Layout) Index(row, col int) int {
	if row < 0 || row >= l.Parallel || col < 0 || col >= l.Series {
		return -1
	}
	return 1 + row*l.Series + col
}

// Hole returns the hole ring of cell (row, col), or nil when out of range.
func (l Layout) Hole(row, col int) Ring {
	idx := l.Index(row, col)
	if idx < 0 {
		return nil
	}
	return l.Holes[idx-1]
}

// Center returns the center of cell (row, col). The second value is false
// when the cell does not exist.
func (l Layout) Center(row, col int) (Point2D, bool) {
	idx := l.Index(row, col)
	if idx < 0 {
		return Point2D{}, false
	}
	return l.Centers[idx-1], true
}

// Rings returns the ordered ring set: outer boundary first, then holes.
func (l Layout) Rings() []Ring {
	rings := make([]Ring, 0, 1+len(l.Holes))
	rings = append(rings, l.Outer)
	rings = append(rings, l.Holes...)
	return rings
}

// RingStarts returns, for each ring in Rings(), its offset into the
// concatenated vertex array, plus a final entry holding the total count.
func (l Layout) RingStarts() []int {
	return RingStarts(l.Rings())
}

// RingStarts returns vertex offsets for a ring set, with the total vertex
// count appended as the last element.
func RingStarts(rings []Ring) []int {
	starts := make([]int, 0, len(rings)+1)
	offset := 0
	for _, r := range rings {
		starts = append(starts, offset)
		offset += len(r)
	}
	return append(starts, offset)
}

// FaceArea returns the area of the solid face: outer area minus holes.
func (l Layout) FaceArea() float64 {
	area := math.Abs(l.Outer.SignedArea())
	for _, h := range l.Holes {
		area -= math.Abs(h.SignedArea())
	}
	return area
}
