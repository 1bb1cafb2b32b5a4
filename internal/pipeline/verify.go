package pipeline

import (
	"fmt"
	"math"

	"github.com/piwi3910/cellholder/internal/busbar"
	"github.com/piwi3910/cellholder/internal/gcode"
	"github.com/piwi3910/cellholder/internal/importer"
	"github.com/piwi3910/cellholder/internal/model"
	"github.com/piwi3910/cellholder/internal/project"
)

// depthTolerance covers the rounding of the profile's decimal places.
const depthTolerance = 5e-3

// checkProgram parses a written plate program back and checks that every
// plate is cut once per pass down to the sheet thickness.
func checkProgram(file, code string, plates []busbar.Plate, gen *gcode.Generator) (project.ProgramStats, []string) {
	moves := gcode.ParseGCode(code)
	stats := gcode.Summarize(moves)
	loops := gcode.CutLoops(moves)

	ps := project.ProgramStats{
		File:        file,
		Loops:       len(loops),
		CutLength:   stats.CutLength,
		RapidLength: stats.RapidLength,
		Plunges:     stats.Plunges,
	}

	var warnings []string
	if want := len(gen.Passes()) * len(plates); len(loops) != want {
		warnings = append(warnings, fmt.Sprintf("%s: %d closed cut loops, expected %d", file, len(loops), want))
	}
	if depth := gen.Settings.CutDepth; !gen.Profile().Laser && depth > 0 {
		if math.Abs(stats.MinZ+depth) > depthTolerance {
			warnings = append(warnings, fmt.Sprintf("%s: deepest cut %.3f mm, expected %.3f mm", file, -stats.MinZ, depth))
		}
	}
	return ps, warnings
}

// checkDrawing reads a written DXF back and compares its primitives per
// layer with the drawing that was saved.
func checkDrawing(file, path string, want model.Drawing) []string {
	got := importer.ImportDrawing(path)
	if len(got.Errors) > 0 {
		warnings := make([]string, 0, len(got.Errors))
		for _, e := range got.Errors {
			warnings = append(warnings, fmt.Sprintf("%s: %s", file, e))
		}
		return warnings
	}

	var warnings []string
	for _, layer := range want.Layers() {
		if w, g := len(want.OnLayer(layer)), len(got.Drawing.OnLayer(layer)); w != g {
			warnings = append(warnings, fmt.Sprintf("%s: layer %s has %d outlines, expected %d", file, layer, g, w))
		}
		if w, g := len(want.CirclesOnLayer(layer)), len(got.Drawing.CirclesOnLayer(layer)); w != g {
			warnings = append(warnings, fmt.Sprintf("%s: layer %s has %d circles, expected %d", file, layer, g, w))
		}
	}
	return warnings
}
