package model

import (
	"fmt"
	"math"
	"strings"
)

// FitResult reports whether a requested cell grid fits inside a rectangle.
type FitResult struct {
	Fits        bool    `json:"fits"`
	Series      int     `json:"series"`   // requested columns
	Parallel    int     `json:"parallel"` // requested rows
	MaxSeries   int     `json:"max_series"`
	MaxParallel int     `json:"max_parallel"`
	ReqWidth    float64 `json:"req_width"`
	ReqHeight   float64 `json:"req_height"`
	DeltaWidth  float64 `json:"delta_width"`  // missing width, 0 when it fits
	DeltaHeight float64 `json:"delta_height"` // missing height, 0 when it fits
	Honeycomb   bool    `json:"honeycomb"`
	Angle       float64 `json:"angle"`  // packing angle in radians (honeycomb only)
	Margin      float64 `json:"margin"` // wall on both sides of the grid
}

// AngleDegrees returns the packing angle in degrees.
func (f FitResult) AngleDegrees() float64 {
	return f.Angle * 180 / math.Pi
}

// WallsExceed reports whether the enclosure is narrower or shorter than the
// two walls, so that not even an empty grid fits.
func (f FitResult) WallsExceed() bool {
	tooNarrow := f.DeltaWidth > 0 && f.ReqWidth-f.DeltaWidth < f.Margin
	tooShort := f.DeltaHeight > 0 && f.ReqHeight-f.DeltaHeight < f.Margin
	return tooNarrow || tooShort
}

// Report returns a human-readable feasibility summary.
func (f FitResult) Report() string {
	var b strings.Builder
	if f.Fits {
		fmt.Fprintf(&b, "%dS%dP fits: requires %.2f x %.2f mm", f.Series, f.Parallel, f.ReqWidth, f.ReqHeight)
		if f.Honeycomb {
			fmt.Fprintf(&b, " (honeycomb angle %.2f°)", f.AngleDegrees())
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%dS%dP does not fit: requires %.2f x %.2f mm\n", f.Series, f.Parallel, f.ReqWidth, f.ReqHeight)
	if f.DeltaWidth > 0 {
		fmt.Fprintf(&b, "  missing width:  %.2f mm\n", f.DeltaWidth)
	}
	if f.DeltaHeight > 0 {
		fmt.Fprintf(&b, "  missing height: %.2f mm\n", f.DeltaHeight)
	}
	if f.WallsExceed() {
		fmt.Fprintf(&b, "  the walls alone (%.2f mm) exceed the enclosure: no grid fits", f.Margin)
		return b.String()
	}
	fmt.Fprintf(&b, "  largest grid that fits: %dS%dP", f.MaxSeries, f.MaxParallel)
	return b.String()
}
