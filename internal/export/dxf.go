package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/cellholder/internal/model"
)

// layerColors assigns an ACI color to each known drawing layer.
var layerColors = map[string]color.ColorNumber{
	model.LayerNegative: color.Blue,
	model.LayerPositive: color.Red,
	model.LayerBusbar:   color.Green,
	model.LayerCells:    color.Cyan,
	model.LayerWeld:     color.Magenta,
}

// SaveDXF writes a drawing as DXF: closed and open polylines become
// LWPOLYLINE entities and circles become CIRCLE entities, each on its own
// named layer.
func SaveDXF(path string, d model.Drawing) error {
	if len(d.Polylines) == 0 && len(d.Circles) == 0 {
		return fmt.Errorf("no entities to export")
	}

	dw := dxf.NewDrawing()
	for _, name := range d.Layers() {
		cl, ok := layerColors[name]
		if !ok {
			cl = color.White
		}
		if _, err := dw.AddLayer(name, cl, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %q: %w", name, err)
		}
	}

	for _, pl := range d.Polylines {
		if err := dw.ChangeLayer(pl.Layer); err != nil {
			return fmt.Errorf("failed to select layer %q: %w", pl.Layer, err)
		}
		vertices := make([][]float64, len(pl.Points))
		for i, p := range pl.Points {
			vertices[i] = []float64{p.X, p.Y}
		}
		if _, err := dw.LwPolyline(pl.Closed, vertices...); err != nil {
			return fmt.Errorf("failed to add polyline on %q: %w", pl.Layer, err)
		}
	}

	for _, c := range d.Circles {
		if err := dw.ChangeLayer(c.Layer); err != nil {
			return fmt.Errorf("failed to select layer %q: %w", c.Layer, err)
		}
		if _, err := dw.Circle(c.Center.X, c.Center.Y, 0, c.Radius); err != nil {
			return fmt.Errorf("failed to add circle on %q: %w", c.Layer, err)
		}
	}

	if err := dw.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
