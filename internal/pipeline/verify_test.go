package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/cellholder/internal/busbar"
	"github.com/piwi3910/cellholder/internal/export"
	"github.com/piwi3910/cellholder/internal/gcode"
	"github.com/piwi3910/cellholder/internal/model"
)

func generated(t *testing.T) Result {
	t.Helper()
	res, err := Generate(model.DefaultConfig(), nil)
	require.NoError(t, err)
	return res
}

func TestCheckProgram(t *testing.T) {
	res := generated(t)
	gen := gcode.New(res.Config.PlateCut)
	code := gen.GeneratePlates(res.Top, "top")

	stats, warnings := checkProgram(FileTopGCode, code, res.Top, gen)
	assert.Empty(t, warnings)
	assert.Equal(t, len(gen.Passes())*len(res.Top), stats.Loops)
	assert.Equal(t, len(gen.Passes())*len(res.Top), stats.Plunges)
	assert.Greater(t, stats.RapidLength, 0.0)
}

func TestCheckProgram_MissingPlate(t *testing.T) {
	res := generated(t)
	gen := gcode.New(res.Config.PlateCut)
	code := gen.GeneratePlates(res.Top[1:], "top")

	_, warnings := checkProgram(FileTopGCode, code, res.Top, gen)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "closed cut loops")
}

func TestCheckProgram_ShallowCut(t *testing.T) {
	res := generated(t)
	shallow := res.Config.PlateCut
	shallow.CutDepth = 0.2
	code := gcode.New(shallow).GeneratePlates(res.Top, "top")

	gen := gcode.New(res.Config.PlateCut)
	_, warnings := checkProgram(FileTopGCode, code, res.Top, gen)
	assert.Contains(t, warnings, FileTopGCode+": 12 closed cut loops, expected 18")
	assert.Contains(t, warnings, FileTopGCode+": deepest cut 0.200 mm, expected 0.300 mm")
}

func TestCheckProgram_Laser(t *testing.T) {
	res := generated(t)
	settings := res.Config.PlateCut
	settings.GCodeProfile = "GrblLaser"
	gen := gcode.New(settings)

	_, warnings := checkProgram(FileTopGCode, gen.GeneratePlates(res.Top, "top"), res.Top, gen)
	assert.Empty(t, warnings)
}

func TestCheckDrawing(t *testing.T) {
	res := generated(t)
	d := busbar.Draw(res.Layout, res.Top, res.Config.Busbar)
	path := filepath.Join(t.TempDir(), FileTopDXF)
	require.NoError(t, export.SaveDXF(path, d))

	assert.Empty(t, checkDrawing(FileTopDXF, path, d))

	// one more weld point than was written
	d.AddCircle(model.Point2D{X: 1, Y: 1}, 2, model.LayerWeld)
	warnings := checkDrawing(FileTopDXF, path, d)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "layer WELD")
}

func TestCheckDrawing_Unreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileTopDXF)
	require.NoError(t, os.WriteFile(path, []byte("not a dxf"), 0644))

	warnings := checkDrawing(FileTopDXF, path, model.Drawing{})
	assert.NotEmpty(t, warnings)
}
