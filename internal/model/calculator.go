package model

import "math"

// PrintEstimate holds the material estimate for printing one holder.
type PrintEstimate struct {
	FaceArea        float64 `json:"face_area"`         // Solid area of the face (sq mm)
	Volume          float64 `json:"volume"`            // Printed volume (cu mm)
	Mass            float64 `json:"mass"`              // Grams
	FilamentLength  float64 `json:"filament_length"`   // Meters of filament
	EstimatedCost   float64 `json:"estimated_cost"`    // Cost at PricePerKg
	PricePerKg      float64 `json:"price_per_kg"`      // Price used for estimation
	FilamentDensity float64 `json:"filament_density"`  // g/cm³ used in the calculation
}

// mm3PerCm3 converts cubic millimeters to cubic centimeters.
const mm3PerCm3 = 1000.0

// CalculatePrintEstimate computes the filament needed to print a solid of
// the given face area extruded to height, at 100% infill.
func CalculatePrintEstimate(faceArea, height, density, filamentDiameter, pricePerKg float64) PrintEstimate {
	if faceArea < 0 {
		faceArea = 0
	}
	volume := faceArea * height
	if volume <= 0 {
		return PrintEstimate{
			FaceArea:        faceArea,
			PricePerKg:      pricePerKg,
			FilamentDensity: density,
		}
	}

	mass := volume / mm3PerCm3 * density

	var length float64
	if filamentDiameter > 0 {
		section := math.Pi * filamentDiameter * filamentDiameter / 4
		length = volume / section / 1000.0
	}

	return PrintEstimate{
		FaceArea:        faceArea,
		Volume:          volume,
		Mass:            mass,
		FilamentLength:  length,
		EstimatedCost:   mass / 1000.0 * pricePerKg,
		PricePerKg:      pricePerKg,
		FilamentDensity: density,
	}
}

// EstimateForLayout is a convenience wrapper using the layout face area and
// the configuration's print settings.
func EstimateForLayout(l Layout, cfg HolderConfig) PrintEstimate {
	return CalculatePrintEstimate(l.FaceArea(), cfg.ExtrusionHeight,
		cfg.Print.FilamentDensity, cfg.Print.FilamentDiameter, cfg.Print.PricePerKg)
}
