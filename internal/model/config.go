package model

import (
	"fmt"
	"math"
	"sort"
)

// BusbarSettings controls the interconnect plate drawing.
type BusbarSettings struct {
	PlateSideClearance float64 `json:"plate_side_clearance" mapstructure:"plate_side_clearance"` // Terminal plate overhang beyond the outermost cell center (mm)
	EndMargin          float64 `json:"end_margin" mapstructure:"end_margin"`                     // Plate extent beyond the first/last row (mm)
	Gap                float64 `json:"gap" mapstructure:"gap"`                                   // Gap between neighbouring plates (mm)
	WeldDiameter       float64 `json:"weld_diameter" mapstructure:"weld_diameter"`               // Weld point marker diameter, 0 = none
	IncludeCells       bool    `json:"include_cells" mapstructure:"include_cells"`               // Draw cell outlines on the CELLS layer
}

// PlateCutSettings holds the CNC parameters used to cut busbar plates out
// of nickel or copper sheet.
type PlateCutSettings struct {
	ToolDiameter float64 `json:"tool_diameter" mapstructure:"tool_diameter"` // End mill diameter in mm
	FeedRate     float64 `json:"feed_rate" mapstructure:"feed_rate"`         // Cutting feed rate mm/min
	PlungeRate   float64 `json:"plunge_rate" mapstructure:"plunge_rate"`     // Plunge feed rate mm/min
	SpindleSpeed int     `json:"spindle_speed" mapstructure:"spindle_speed"` // RPM
	SafeZ        float64 `json:"safe_z" mapstructure:"safe_z"`               // Safe retract height mm
	CutDepth     float64 `json:"cut_depth" mapstructure:"cut_depth"`         // Plate sheet thickness mm
	PassDepth    float64 `json:"pass_depth" mapstructure:"pass_depth"`       // Depth per pass mm
	GCodeProfile string  `json:"gcode_profile" mapstructure:"gcode_profile"` // Name of the GCode profile to use
}

// PrintSettings describes the filament used to print the holder.
type PrintSettings struct {
	FilamentDensity  float64 `json:"filament_density" mapstructure:"filament_density"`   // g/cm³
	FilamentDiameter float64 `json:"filament_diameter" mapstructure:"filament_diameter"` // mm
	PricePerKg       float64 `json:"price_per_kg" mapstructure:"price_per_kg"`
}

// HolderConfig is the full parameter block for one holder generation run.
type HolderConfig struct {
	Name string `json:"name" mapstructure:"name"`

	// Enclosure rectangle
	Width           float64 `json:"width" mapstructure:"width"`
	Height          float64 `json:"height" mapstructure:"height"`
	ExtrusionHeight float64 `json:"extrusion_height" mapstructure:"extrusion_height"`

	// Cell grid
	CellDiameter   float64 `json:"cell_diameter" mapstructure:"cell_diameter"`
	Spacing        float64 `json:"spacing" mapstructure:"spacing"`
	WallThickness  float64 `json:"wall_thickness" mapstructure:"wall_thickness"`
	Series         int     `json:"series" mapstructure:"series"`
	Parallel       int     `json:"parallel" mapstructure:"parallel"`
	Honeycomb      bool    `json:"honeycomb" mapstructure:"honeycomb"`
	RoundedCorners bool    `json:"rounded_corners" mapstructure:"rounded_corners"`
	CornerRadius   float64 `json:"corner_radius" mapstructure:"corner_radius"`
	ChordTolerance float64 `json:"chord_tolerance" mapstructure:"chord_tolerance"` // 0 = finest tessellation

	Busbar   BusbarSettings   `json:"busbar" mapstructure:"busbar"`
	PlateCut PlateCutSettings `json:"plate_cut" mapstructure:"plate_cut"`
	Print    PrintSettings    `json:"print" mapstructure:"print"`
}

// Pitch returns the center-to-center cell distance.
func (c HolderConfig) Pitch() float64 {
	return c.CellDiameter + c.Spacing
}

// CellCount returns the requested number of cells, 0 for an empty grid.
func (c HolderConfig) CellCount() int {
	if c.Series <= 0 || c.Parallel <= 0 {
		return 0
	}
	return c.Series * c.Parallel
}

// DefaultConfig returns the 10S4P honeycomb holder for 21700 cells on a
// 460x140 mm plate.
func DefaultConfig() HolderConfig {
	return HolderConfig{
		Name:            "cellholder",
		Width:           460,
		Height:          140,
		ExtrusionHeight: 10,
		CellDiameter:    21.4,
		Spacing:         0.5,
		WallThickness:   0.5,
		Series:          10,
		Parallel:        4,
		Honeycomb:       true,
		RoundedCorners:  true,
		CornerRadius:    5,
		ChordTolerance:  0.01,
		Busbar:          DefaultBusbarSettings(),
		PlateCut:        DefaultPlateCutSettings(),
		Print:           DefaultPrintSettings(),
	}
}

// DefaultBusbarSettings returns plate parameters for 0.15 mm nickel strip.
func DefaultBusbarSettings() BusbarSettings {
	return BusbarSettings{
		PlateSideClearance: 2.0,
		EndMargin:          3.0,
		Gap:                2.0,
		WeldDiameter:       4.0,
		IncludeCells:       true,
	}
}

func DefaultPlateCutSettings() PlateCutSettings {
	return PlateCutSettings{
		ToolDiameter: 1.0,
		FeedRate:     300.0,
		PlungeRate:   100.0,
		SpindleSpeed: 24000,
		SafeZ:        3.0,
		CutDepth:     0.3,
		PassDepth:    0.1,
		GCodeProfile: "Generic",
	}
}

func DefaultPrintSettings() PrintSettings {
	return PrintSettings{
		FilamentDensity:  1.24, // PLA
		FilamentDiameter: 1.75,
		PricePerKg:       20.0,
	}
}

// Validate checks that the configuration describes buildable geometry.
// Non-positive series/parallel counts are accepted and produce an empty grid.
func (c HolderConfig) Validate() error {
	finite := map[string]float64{
		"width":                       c.Width,
		"height":                      c.Height,
		"extrusion_height":            c.ExtrusionHeight,
		"cell_diameter":               c.CellDiameter,
		"spacing":                     c.Spacing,
		"wall_thickness":              c.WallThickness,
		"corner_radius":               c.CornerRadius,
		"chord_tolerance":             c.ChordTolerance,
		"busbar.plate_side_clearance": c.Busbar.PlateSideClearance,
		"busbar.end_margin":           c.Busbar.EndMargin,
		"busbar.gap":                  c.Busbar.Gap,
		"busbar.weld_diameter":        c.Busbar.WeldDiameter,
	}
	for _, name := range sortedKeys(finite) {
		if v := finite[name]; math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number, got %v", name, v)
		}
	}

	if c.Width <= 0 {
		return fmt.Errorf("width must be positive, got %.3f", c.Width)
	}
	if c.Height <= 0 {
		return fmt.Errorf("height must be positive, got %.3f", c.Height)
	}
	if c.ExtrusionHeight <= 0 {
		return fmt.Errorf("extrusion_height must be positive, got %.3f", c.ExtrusionHeight)
	}
	if c.CellDiameter <= 0 {
		return fmt.Errorf("cell_diameter must be positive, got %.3f", c.CellDiameter)
	}
	if c.Spacing < 0 {
		return fmt.Errorf("spacing cannot be negative, got %.3f", c.Spacing)
	}
	if c.WallThickness < 0 {
		return fmt.Errorf("wall_thickness cannot be negative, got %.3f", c.WallThickness)
	}
	if c.CornerRadius < 0 {
		return fmt.Errorf("corner_radius cannot be negative, got %.3f", c.CornerRadius)
	}
	if c.ChordTolerance < 0 {
		return fmt.Errorf("chord_tolerance cannot be negative, got %.3f", c.ChordTolerance)
	}
	if c.Busbar.Gap < 0 || c.Busbar.EndMargin < 0 || c.Busbar.PlateSideClearance < 0 || c.Busbar.WeldDiameter < 0 {
		return fmt.Errorf("busbar clearances cannot be negative")
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
