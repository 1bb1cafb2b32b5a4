package engine

import (
	"fmt"

	"github.com/piwi3910/cellholder/internal/model"
)

// ComparisonScenario defines a named variation of a holder configuration.
type ComparisonScenario struct {
	Name   string
	Config model.HolderConfig
}

// ComparisonResult holds the fit result and statistics for one scenario.
type ComparisonResult struct {
	Scenario  ComparisonScenario
	Fit       model.FitResult
	MaxCells  int     // cells in the largest fitting grid
	Density   float64 // requested cells per cm² of required footprint
	AreaUsage float64 // percent of the rectangle covered by the required footprint
}

// CompareScenarios runs the fit solver for each scenario, in order.
func CompareScenarios(scenarios []ComparisonScenario) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		fit := New(scenario.Config).Fit()

		footprint := fit.ReqWidth * fit.ReqHeight
		var density, usage float64
		if footprint > 0 {
			density = float64(scenario.Config.CellCount()) / (footprint / 100.0)
		}
		if area := scenario.Config.Width * scenario.Config.Height; area > 0 {
			usage = footprint / area * 100.0
		}

		results = append(results, ComparisonResult{
			Scenario:  scenario,
			Fit:       fit,
			MaxCells:  fit.MaxSeries * fit.MaxParallel,
			Density:   density,
			AreaUsage: usage,
		})
	}

	return results
}

// BuildPackingScenarios returns the base configuration plus its square and
// honeycomb variants, and a variant without inter-cell spacing.
func BuildPackingScenarios(base model.HolderConfig) []ComparisonScenario {
	square := base
	square.Honeycomb = false
	honey := base
	honey.Honeycomb = true

	scenarios := []ComparisonScenario{
		{Name: "Square packing", Config: square},
		{Name: "Honeycomb packing", Config: honey},
	}

	if base.Spacing > 0 {
		tight := base
		tight.Spacing = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("No spacing (%s)", packingName(base.Honeycomb)),
			Config: tight,
		})
	}

	return scenarios
}

// PackingComparison summarises square versus honeycomb packing. Scenarios
// holds every variant from BuildPackingScenarios, in order.
type PackingComparison struct {
	Square      ComparisonResult
	Honeycomb   ComparisonResult
	Scenarios   []ComparisonResult
	Recommended string
}

// ComparePacking fits the configuration with both packings and recommends
// one: a fitting packing beats a non-fitting one, then the smaller
// footprint wins, then the larger fitting grid.
func ComparePacking(cfg model.HolderConfig) PackingComparison {
	results := CompareScenarios(BuildPackingScenarios(cfg))
	cmp := PackingComparison{Square: results[0], Honeycomb: results[1], Scenarios: results}

	sq, hc := cmp.Square, cmp.Honeycomb
	switch {
	case sq.Fit.Fits && !hc.Fit.Fits:
		cmp.Recommended = packingName(false)
	case hc.Fit.Fits && !sq.Fit.Fits:
		cmp.Recommended = packingName(true)
	case sq.Fit.Fits && hc.Fit.Fits:
		if hc.AreaUsage < sq.AreaUsage-fitEpsilon {
			cmp.Recommended = packingName(true)
		} else {
			cmp.Recommended = packingName(false)
		}
	default:
		if hc.MaxCells > sq.MaxCells {
			cmp.Recommended = packingName(true)
		} else {
			cmp.Recommended = packingName(false)
		}
	}
	return cmp
}

func packingName(honeycomb bool) string {
	if honeycomb {
		return "honeycomb"
	}
	return "square"
}
