package engine

import (
	"math"

	"github.com/piwi3910/cellholder/internal/model"
)

// Honeycomb packing angles. The angle is measured between the row axis and
// the line joining a cell to its neighbour in the next row: odd rows shift
// by pitch*cos(angle) and rows advance by pitch*sin(angle). HexAngle gives
// the densest packing, SquareAngle degenerates to a square grid.
const (
	HexAngle    = math.Pi / 3
	SquareAngle = math.Pi / 2
)

const fitEpsilon = 1e-9

// FitRect checks whether a series x parallel grid of cells fits inside a
// width x height rectangle. It never fails: an infeasible grid is reported
// with Fits=false, the missing width/height and the largest grid that does fit.
func FitRect(width, height, cellDiameter, spacing, wallThickness float64, series, parallel int, honeycomb bool) model.FitResult {
	pitch := cellDiameter + spacing
	res := model.FitResult{
		Series:    series,
		Parallel:  parallel,
		Honeycomb: honeycomb,
	}
	if honeycomb {
		res.Angle = HexAngle
	}

	margin := 2 * wallThickness
	res.Margin = margin
	if series <= 0 || parallel <= 0 || !(pitch > 0) {
		res.ReqWidth = margin
		res.ReqHeight = margin
		finish(&res, width, height, margin, pitch)
		return res
	}

	if !honeycomb || parallel == 1 {
		res.ReqWidth = float64(series)*pitch + margin
		res.ReqHeight = float64(parallel)*pitch + margin
		finish(&res, width, height, margin, pitch)
		return res
	}

	angle, ok := honeycombAngle(width, height, pitch, wallThickness, series, parallel)
	res.Angle = angle
	res.ReqWidth = margin + float64(series)*pitch + pitch*math.Cos(angle)
	res.ReqHeight = margin + pitch + float64(parallel-1)*pitch*math.Sin(angle)
	if ok {
		res.Fits = true
		res.MaxSeries = series
		res.MaxParallel = parallel
		return res
	}
	finish(&res, width, height, margin, pitch)
	return res
}

// honeycombAngle solves the packing angle for a grid of at least two rows.
//
// The width constraint bounds the angle from below (a smaller angle needs a
// larger row offset), the height constraint from above. The grid fits when
// angleW <= angleH; the smallest feasible angle, angleW, is returned since it
// gives the tightest vertical packing. When the grid does not fit the angle
// is still the one that satisfies the width (or SquareAngle if even the
// unshifted rows are too wide), so the reported deficit is all height.
func honeycombAngle(width, height, pitch, wall float64, series, parallel int) (float64, bool) {
	cosMax := (width - 2*wall - float64(series)*pitch) / pitch
	widthOK := cosMax >= -fitEpsilon/pitch
	angleW := SquareAngle
	if widthOK {
		angleW = math.Acos(math.Min(math.Max(cosMax, 0), 0.5))
	}

	sinMax := (height - 2*wall - pitch) / (float64(parallel-1) * pitch)
	heightOK := sinMax >= math.Sin(HexAngle)-fitEpsilon
	angleH := SquareAngle
	if sinMax < 1-fitEpsilon {
		angleH = math.Asin(math.Max(sinMax, -1))
	}

	if widthOK && heightOK && angleW <= angleH+fitEpsilon {
		return angleW, true
	}
	return angleW, false
}

// finish fills in the fit flag, deficits and the largest fitting grid
// using the square pitch along each axis.
func finish(res *model.FitResult, width, height, margin, pitch float64) {
	res.DeltaWidth = math.Max(0, res.ReqWidth-width)
	res.DeltaHeight = math.Max(0, res.ReqHeight-height)
	if res.DeltaWidth <= fitEpsilon && res.DeltaHeight <= fitEpsilon {
		res.Fits = true
		res.DeltaWidth = 0
		res.DeltaHeight = 0
		res.MaxSeries = clampCount(res.Series, res.Series)
		res.MaxParallel = clampCount(res.Parallel, res.Parallel)
		return
	}
	res.MaxSeries = maxAlong(width, margin, pitch, res.Series)
	res.MaxParallel = maxAlong(height, margin, pitch, res.Parallel)
}

// maxAlong returns how many pitches fit inside bound after the margin,
// clamped to [0, requested].
func maxAlong(bound, margin, pitch float64, requested int) int {
	if !(pitch > 0) {
		return clampCount(requested, requested)
	}
	n := math.Floor((bound - margin) / pitch)
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	if n >= float64(requested) {
		return clampCount(requested, requested)
	}
	return int(n)
}

func clampCount(n, requested int) int {
	if n < 0 {
		return 0
	}
	if n > requested {
		return requested
	}
	return n
}
