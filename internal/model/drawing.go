package model

// Drawing layer names.
const (
	LayerNegative = "B-"
	LayerPositive = "B+"
	LayerBusbar   = "BUSBAR"
	LayerCells    = "CELLS"
	LayerWeld     = "WELD"
)

// Polyline is an open or closed sequence of points on a layer.
type Polyline struct {
	Points Ring   `json:"points"`
	Closed bool   `json:"closed"`
	Layer  string `json:"layer"`
}

// Circle is a circle on a layer.
type Circle struct {
	Center Point2D `json:"center"`
	Radius float64 `json:"radius"`
	Layer  string  `json:"layer"`
}

// Drawing is a flat collection of 2D primitives.
type Drawing struct {
	Polylines []Polyline `json:"polylines"`
	Circles   []Circle   `json:"circles"`
}

// AddPolyline appends a polyline. Empty point lists are ignored.
func (d *Drawing) AddPolyline(points Ring, closed bool, layer string) {
	if len(points) == 0 {
		return
	}
	d.Polylines = append(d.Polylines, Polyline{Points: points, Closed: closed, Layer: layer})
}

// AddCircle appends a circle. Non-positive radii are ignored.
func (d *Drawing) AddCircle(center Point2D, radius float64, layer string) {
	if radius <= 0 {
		return
	}
	d.Circles = append(d.Circles, Circle{Center: center, Radius: radius, Layer: layer})
}

// Layers returns the distinct layer names in first-use order.
func (d *Drawing) Layers() []string {
	seen := make(map[string]bool)
	var layers []string
	add := func(l string) {
		if !seen[l] {
			seen[l] = true
			layers = append(layers, l)
		}
	}
	for _, p := range d.Polylines {
		add(p.Layer)
	}
	for _, c := range d.Circles {
		add(c.Layer)
	}
	return layers
}

// OnLayer returns the polylines tagged with the given layer.
func (d *Drawing) OnLayer(layer string) []Polyline {
	var out []Polyline
	for _, p := range d.Polylines {
		if p.Layer == layer {
			out = append(out, p)
		}
	}
	return out
}

// CirclesOnLayer returns the circles tagged with the given layer.
func (d *Drawing) CirclesOnLayer(layer string) []Circle {
	var out []Circle
	for _, c := range d.Circles {
		if c.Layer == layer {
			out = append(out, c)
		}
	}
	return out
}

// Bounds returns the bounding box of every primitive in the drawing.
func (d *Drawing) Bounds() (min, max Point2D) {
	first := true
	grow := func(p Point2D) {
		if first {
			min, max = p, p
			first = false
			return
		}
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
	for _, pl := range d.Polylines {
		for _, p := range pl.Points {
			grow(p)
		}
	}
	for _, c := range d.Circles {
		grow(Point2D{X: c.Center.X - c.Radius, Y: c.Center.Y - c.Radius})
		grow(Point2D{X: c.Center.X + c.Radius, Y: c.Center.Y + c.Radius})
	}
	return min, max
}
