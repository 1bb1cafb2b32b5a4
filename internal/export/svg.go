package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/piwi3910/cellholder/internal/model"
)

// SVG coordinates are integers, so geometry is written in tenths of a
// millimetre and the viewBox maps them back to the page size.
const (
	svgUnitsPerMM = 10
	svgPxPerMM    = 4
	svgMargin     = 5.0
)

var layerStrokes = map[string]string{
	model.LayerNegative: "#1565c0",
	model.LayerPositive: "#c62828",
	model.LayerBusbar:   "#2e7d32",
	model.LayerCells:    "#9e9e9e",
	model.LayerWeld:     "#6a1b9a",
}

type svgFrame struct {
	minX, maxY float64
}

func (f svgFrame) x(v float64) int { return int(math.Round((v - f.minX) * svgUnitsPerMM)) }

// SVG y grows downwards.
func (f svgFrame) y(v float64) int { return int(math.Round((f.maxY - v) * svgUnitsPerMM)) }

func (f svgFrame) xs(r model.Ring) ([]int, []int) {
	xs := make([]int, len(r))
	ys := make([]int, len(r))
	for i, p := range r {
		xs[i], ys[i] = f.x(p.X), f.y(p.Y)
	}
	return xs, ys
}

// WriteSVG renders a preview of the holder face (outer boundary and cell
// cavities) with a busbar drawing on top. Either part may be empty.
func WriteSVG(w io.Writer, l model.Layout, d model.Drawing) error {
	lo, hi := d.Bounds()
	if len(d.Polylines) == 0 && len(d.Circles) == 0 {
		lo, hi = l.Outer.BoundingBox()
	} else if len(l.Outer) > 0 {
		olo, ohi := l.Outer.BoundingBox()
		lo.X, lo.Y = math.Min(lo.X, olo.X), math.Min(lo.Y, olo.Y)
		hi.X, hi.Y = math.Max(hi.X, ohi.X), math.Max(hi.Y, ohi.Y)
	}
	if hi.X <= lo.X || hi.Y <= lo.Y {
		return fmt.Errorf("nothing to render")
	}

	frame := svgFrame{minX: lo.X - svgMargin, maxY: hi.Y + svgMargin}
	wMM := hi.X - lo.X + 2*svgMargin
	hMM := hi.Y - lo.Y + 2*svgMargin

	bw := bufio.NewWriter(w)
	canvas := svg.New(bw)
	canvas.Startview(int(math.Ceil(wMM*svgPxPerMM)), int(math.Ceil(hMM*svgPxPerMM)),
		0, 0, int(math.Ceil(wMM*svgUnitsPerMM)), int(math.Ceil(hMM*svgUnitsPerMM)))
	canvas.Title(fmt.Sprintf("%dS%dP cell holder", l.Series, l.Parallel))

	if len(l.Outer) > 0 {
		canvas.Gid("holder")
		xs, ys := frame.xs(l.Outer)
		canvas.Polygon(xs, ys, "fill:#f5f0e6;stroke:#424242;stroke-width:3")
		for _, h := range l.Holes {
			xs, ys := frame.xs(h)
			canvas.Polygon(xs, ys, "fill:#ffffff;stroke:#757575;stroke-width:2")
		}
		canvas.Gend()
	}

	for _, layer := range d.Layers() {
		stroke, ok := layerStrokes[layer]
		if !ok {
			stroke = "#000000"
		}
		canvas.Gid(layer)
		for _, pl := range d.OnLayer(layer) {
			xs, ys := frame.xs(pl.Points)
			style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:4", stroke)
			if pl.Closed {
				canvas.Polygon(xs, ys, style)
			} else {
				canvas.Polyline(xs, ys, style)
			}
		}
		for _, c := range d.CirclesOnLayer(layer) {
			r := int(math.Round(c.Radius * svgUnitsPerMM))
			canvas.Circle(frame.x(c.Center.X), frame.y(c.Center.Y), r,
				fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", stroke))
		}
		canvas.Gend()
	}

	canvas.End()
	return bw.Flush()
}

// SaveSVG writes the preview to a file.
func SaveSVG(path string, l model.Layout, d model.Drawing) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteSVG(f, l, d); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
