// Package busbar lays out the nickel plates that connect the cells of a
// holder into series groups.
package busbar

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/piwi3910/cellholder/internal/model"
)

// Face selects which side of the holder a plate set is for. Series wiring
// alternates: the top face joins columns (1,2), (3,4), ... and the bottom
// face joins (0,1), (2,3), ...
type Face int

const (
	FaceTop Face = iota
	FaceBottom
)

func (f Face) String() string {
	if f == FaceBottom {
		return "bottom"
	}
	return "top"
}

// Group kinds.
const (
	KindNegative = -1
	KindInterior = 0
	KindPositive = 1
)

// Group is a run of adjacent series columns joined by one plate.
type Group struct {
	Columns []int
	Kind    int
}

// First returns the leftmost column of the group.
func (g Group) First() int { return g.Columns[0] }

// Last returns the rightmost column of the group.
func (g Group) Last() int { return g.Columns[len(g.Columns)-1] }

// Layer returns the drawing layer for the group's kind.
func (g Group) Layer() string {
	switch g.Kind {
	case KindNegative:
		return model.LayerNegative
	case KindPositive:
		return model.LayerPositive
	default:
		return model.LayerBusbar
	}
}

// Groups splits series columns into plate groups for a face. A single
// column group holding column 0 is the negative terminal, a single column
// group holding the last column is the positive terminal. With one column
// the two terminals collapse into one negative group.
func Groups(series int, face Face) []Group {
	if series <= 0 {
		return nil
	}
	if series == 1 {
		return []Group{{Columns: []int{0}, Kind: KindNegative}}
	}

	var groups []Group
	c := 0
	if face == FaceTop {
		groups = append(groups, Group{Columns: []int{0}})
		c = 1
	}
	for ; c+1 < series; c += 2 {
		groups = append(groups, Group{Columns: []int{c, c + 1}})
	}
	if c == series-1 {
		groups = append(groups, Group{Columns: []int{c}})
	}

	for i := range groups {
		g := &groups[i]
		if len(g.Columns) != 1 {
			continue
		}
		switch g.Columns[0] {
		case 0:
			g.Kind = KindNegative
		case series - 1:
			g.Kind = KindPositive
		}
	}
	return groups
}

// Plate is one busbar plate outline with the cells it connects.
type Plate struct {
	ID      string
	Label   string
	Face    Face
	Group   Group
	Outline model.Ring
	Cells   []model.Point2D
}

// Layer returns the drawing layer of the plate.
func (p Plate) Layer() string { return p.Group.Layer() }

// Plates computes the plate outlines of one face. Square packing gives
// rectangles whose edges sit at the mean column positions; honeycomb packing
// gives outlines that follow the cell rows because the columns of offset
// rows are not aligned. Outlines are counter-clockwise.
func Plates(l model.Layout, s model.BusbarSettings, face Face) []Plate {
	if l.CellCount() == 0 {
		return nil
	}

	xs := make([]float64, 0, l.CellCount())
	ys := make([]float64, 0, l.CellCount())
	for _, c := range l.Centers {
		xs = append(xs, c.X)
		ys = append(ys, c.Y)
	}
	outerL := floats.Min(xs) - s.PlateSideClearance
	outerR := floats.Max(xs) + s.PlateSideClearance
	halfGap := 0.5 * math.Max(0, s.Gap)

	var outline func(g Group) model.Ring
	if l.Honeycomb && l.Parallel > 1 {
		outline = rowOutline(l, outerL, outerR, halfGap, s.EndMargin)
	} else {
		outline = rectOutline(l, outerL, outerR, halfGap, floats.Min(ys)-s.EndMargin, floats.Max(ys)+s.EndMargin)
	}

	prefix := "T"
	if face == FaceBottom {
		prefix = "B"
	}

	groups := Groups(l.Series, face)
	plates := make([]Plate, 0, len(groups))
	for i, g := range groups {
		p := Plate{
			ID:      uuid.New().String()[:8],
			Label:   fmt.Sprintf("%s%d", prefix, i+1),
			Face:    face,
			Group:   g,
			Outline: outline(g),
		}
		for row := 0; row < l.Parallel; row++ {
			for _, col := range g.Columns {
				if c, ok := l.Center(row, col); ok {
					p.Cells = append(p.Cells, c)
				}
			}
		}
		plates = append(plates, p)
	}
	return plates
}

func rectOutline(l model.Layout, outerL, outerR, halfGap, y0, y1 float64) func(Group) model.Ring {
	meanX := make([]float64, l.Series)
	col := make([]float64, l.Parallel)
	for c := 0; c < l.Series; c++ {
		for r := 0; r < l.Parallel; r++ {
			p, _ := l.Center(r, c)
			col[r] = p.X
		}
		meanX[c] = stat.Mean(col, nil)
	}

	return func(g Group) model.Ring {
		xL, xR := outerL, outerR
		if g.First() > 0 {
			xL = 0.5*(meanX[g.First()-1]+meanX[g.First()]) + halfGap
		}
		if g.Last() < l.Series-1 {
			xR = 0.5*(meanX[g.Last()]+meanX[g.Last()+1]) - halfGap
		}
		return model.Ring{{X: xL, Y: y0}, {X: xR, Y: y0}, {X: xR, Y: y1}, {X: xL, Y: y1}}
	}
}

func rowOutline(l model.Layout, outerL, outerR, halfGap, margin float64) func(Group) model.Ring {
	mid := func(row, left int) r2.Vec {
		a, _ := l.Center(row, left)
		b, _ := l.Center(row, left+1)
		return r2.Scale(0.5, r2.Add(r2.Vec{X: a.X, Y: a.Y}, r2.Vec{X: b.X, Y: b.Y}))
	}
	rowY := make([]float64, l.Parallel)
	for r := range rowY {
		p, _ := l.Center(r, 0)
		rowY[r] = p.Y
	}
	yBot := rowY[0] - margin
	yTop := rowY[len(rowY)-1] + margin

	return func(g Group) model.Ring {
		left := make([]float64, l.Parallel)
		right := make([]float64, l.Parallel)
		for r := 0; r < l.Parallel; r++ {
			left[r], right[r] = outerL, outerR
			if g.First() > 0 {
				left[r] = mid(r, g.First()-1).X + halfGap
			}
			if g.Last() < l.Series-1 {
				right[r] = mid(r, g.Last()).X - halfGap
			}
		}

		ring := make(model.Ring, 0, 2*l.Parallel+4)
		ring = append(ring, model.Point2D{X: right[0], Y: yBot})
		for r := 0; r < l.Parallel; r++ {
			ring = append(ring, model.Point2D{X: right[r], Y: rowY[r]})
		}
		ring = append(ring, model.Point2D{X: right[l.Parallel-1], Y: yTop})
		ring = append(ring, model.Point2D{X: left[l.Parallel-1], Y: yTop})
		for r := l.Parallel - 1; r >= 0; r-- {
			ring = append(ring, model.Point2D{X: left[r], Y: rowY[r]})
		}
		ring = append(ring, model.Point2D{X: left[0], Y: yBot})
		return ring
	}
}

// Generate draws the plates of one face. Each plate becomes a closed
// polyline on the B-, B+ or BUSBAR layer. A positive weld diameter adds one
// weld point per connected cell on the WELD layer, and IncludeCells adds
// every cavity on the CELLS layer for reference.
func Generate(l model.Layout, s model.BusbarSettings, face Face) model.Drawing {
	return Draw(l, Plates(l, s, face), s)
}

// Draw renders precomputed plates.
func Draw(l model.Layout, plates []Plate, s model.BusbarSettings) model.Drawing {
	var d model.Drawing
	for _, p := range plates {
		d.AddPolyline(p.Outline, true, p.Layer())
	}
	if s.WeldDiameter > 0 {
		for _, p := range plates {
			for _, c := range p.Cells {
				d.AddCircle(c, s.WeldDiameter/2, model.LayerWeld)
			}
		}
	}
	if s.IncludeCells {
		for _, c := range l.Centers {
			d.AddCircle(c, l.CellRadius, model.LayerCells)
		}
	}
	return d
}
