package engine

import (
	"math"

	"github.com/piwi3910/cellholder/internal/model"
)

// RectangleFixed builds the ring set of a width x height holder: the outer
// boundary (counter-clockwise) followed by one clockwise hole per cell in
// row-major order. The honeycomb angle is re-derived with FitRect for the
// given dimensions. Callers are expected to have checked the fit first;
// for an infeasible grid the holes follow the same lattice and only the
// honeycomb offset is clamped to the interior.
func RectangleFixed(width, height, cellDiameter, spacing, wallThickness float64, series, parallel int,
	chordTolerance float64, honeycomb, roundedCorners bool, cornerRadius float64) model.Layout {
	if series < 0 {
		series = 0
	}
	if parallel < 0 {
		parallel = 0
	}
	if series == 0 || parallel == 0 {
		series, parallel = 0, 0
	}

	r := math.Max(cellDiameter/2, 0)
	pitch := cellDiameter + spacing
	l := model.Layout{
		Series:     series,
		Parallel:   parallel,
		Width:      width,
		Height:     height,
		CellRadius: r,
		Pitch:      pitch,
		RowStep:    pitch,
		Honeycomb:  honeycomb,
		Segments:   SegmentCount(r, chordTolerance),
	}

	if honeycomb && parallel > 1 {
		fit := FitRect(width, height, cellDiameter, spacing, wallThickness, series, parallel, true)
		l.Angle = fit.Angle
		l.RowStep = pitch * math.Sin(fit.Angle)
		l.RowOffset = pitch * math.Cos(fit.Angle)

		// The last column of an offset row must stay inside the wall.
		lastX := wallThickness + spacing + r + float64(series-1)*pitch
		limit := width - wallThickness - r
		if lastX+l.RowOffset > limit {
			l.RowOffset = math.Max(0, limit-lastX)
		}
	} else if honeycomb {
		l.Angle = HexAngle
	}

	x0 := wallThickness + spacing + r
	y0 := wallThickness + spacing + r
	l.Centers = make([]model.Point2D, 0, series*parallel)
	l.Holes = make([]model.Ring, 0, series*parallel)
	for row := 0; row < parallel; row++ {
		shift := 0.0
		if honeycomb && row%2 == 1 {
			shift = l.RowOffset
		}
		y := y0 + float64(row)*l.RowStep
		for col := 0; col < series; col++ {
			c := model.Point2D{X: x0 + float64(col)*pitch + shift, Y: y}
			l.Centers = append(l.Centers, c)
			l.Holes = append(l.Holes, CirclePoints(c, r, l.Segments))
		}
	}

	if roundedCorners && cornerRadius > 0 {
		l.CornerRadius = filletRadius(l, cornerRadius, wallThickness)
	}
	l.Outer = outerRing(width, height, l.CornerRadius, chordTolerance)

	enforceOrientation(&l)
	return l
}

// outerRing returns the [0,w]x[0,h] boundary, counter-clockwise from the
// origin, with optional filleted corners.
func outerRing(w, h, radius, tolerance float64) model.Ring {
	if radius <= 0 {
		return model.Ring{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
	}
	segs := SegmentCount(radius, tolerance) / 4
	corners := []struct {
		c     model.Point2D
		start float64
	}{
		{model.Point2D{X: w - radius, Y: radius}, -math.Pi / 2},
		{model.Point2D{X: w - radius, Y: h - radius}, 0},
		{model.Point2D{X: radius, Y: h - radius}, math.Pi / 2},
		{model.Point2D{X: radius, Y: radius}, math.Pi},
	}
	var ring model.Ring
	for _, k := range corners {
		ring = append(ring, ArcPoints(k.c, radius, k.start, k.start+math.Pi/2, segs)...)
	}
	return dedupe(ring)
}

// filletRadius clamps the requested corner radius so fillets never overlap
// and no cell, widened by the wall thickness, pokes out through a rounded
// corner. Returns 0 when no usable radius remains.
func filletRadius(l model.Layout, requested, wall float64) float64 {
	rad := math.Min(requested, math.Min(l.Width, l.Height)/2-wall)
	for i := 0; i < 64 && rad > 1e-6; i++ {
		if cellsClearFillets(l, rad, wall) {
			return rad
		}
		rad *= 0.8
	}
	return 0
}

// cellsClearFillets reports whether every cell disk that lies inside the
// plain rectangle also lies inside the rectangle rounded by rad.
//
// The rounded rectangle is the inner rectangle [rad, W-rad] x [rad, H-rad]
// grown by rad, so a disk of radius rho fits iff its center is within
// rad-rho of the inner rectangle. A disk at least as large as the fillet is
// only bounded by the straight edges.
func cellsClearFillets(l model.Layout, rad, wall float64) bool {
	rho := l.CellRadius + wall
	for _, c := range l.Centers {
		if c.X-rho < -fitEpsilon || c.X+rho > l.Width+fitEpsilon ||
			c.Y-rho < -fitEpsilon || c.Y+rho > l.Height+fitEpsilon {
			continue
		}
		if rho >= rad {
			continue
		}
		dx := math.Max(0, math.Max(rad-c.X, c.X-(l.Width-rad)))
		dy := math.Max(0, math.Max(rad-c.Y, c.Y-(l.Height-rad)))
		if math.Hypot(dx, dy) > rad-rho+fitEpsilon {
			return false
		}
	}
	return true
}

// enforceOrientation makes the outer ring counter-clockwise and every hole
// clockwise.
func enforceOrientation(l *model.Layout) {
	if l.Outer.SignedArea() < 0 {
		l.Outer = l.Outer.Reversed()
	}
	for i, h := range l.Holes {
		if h.SignedArea() > 0 {
			l.Holes[i] = h.Reversed()
		}
	}
}

// dedupe drops consecutive duplicate points, including a closing point
// equal to the first.
func dedupe(ring model.Ring) model.Ring {
	const eps = 1e-9
	out := make(model.Ring, 0, len(ring))
	for _, p := range ring {
		if n := len(out); n > 0 && model.Dist(out[n-1], p) < eps {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && model.Dist(out[0], out[len(out)-1]) < eps {
		out = out[:len(out)-1]
	}
	return out
}

// Planner resolves fits and layouts for one holder configuration.
type Planner struct {
	Config model.HolderConfig
}

func New(cfg model.HolderConfig) *Planner {
	return &Planner{Config: cfg}
}

// Fit runs the fit solver on the configured rectangle and grid.
func (p *Planner) Fit() model.FitResult {
	c := p.Config
	return FitRect(c.Width, c.Height, c.CellDiameter, c.Spacing, c.WallThickness, c.Series, c.Parallel, c.Honeycomb)
}

// Layout generates the ring set for the configured holder.
func (p *Planner) Layout() model.Layout {
	c := p.Config
	return RectangleFixed(c.Width, c.Height, c.CellDiameter, c.Spacing, c.WallThickness, c.Series, c.Parallel,
		c.ChordTolerance, c.Honeycomb, c.RoundedCorners, c.CornerRadius)
}
