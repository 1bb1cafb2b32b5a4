package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/piwi3910/cellholder/internal/gcode"
	"github.com/piwi3910/cellholder/internal/model"
	"github.com/piwi3910/cellholder/internal/project"
)

func TestGenerate_Defaults(t *testing.T) {
	res, err := Generate(model.DefaultConfig(), nil)
	require.NoError(t, err)

	assert.True(t, res.Fit.Fits)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 40, res.Layout.CellCount())
	assert.Len(t, res.Layout.Rings(), 41)
	assert.True(t, res.Mesh.IsClosed())
	assert.Greater(t, res.Mesh.Volume(), 0.0)
	assert.Len(t, res.Top, 6)
	assert.Len(t, res.Bottom, 5)
	assert.Empty(t, res.Warnings)
	assert.Greater(t, res.Estimate.Mass, 0.0)

	c := res.Counts()
	assert.Equal(t, 40, c.Cells)
	assert.Equal(t, 41, c.Rings)
	assert.Equal(t, len(res.Mesh.Faces), c.Triangles)
	assert.Equal(t, 6, c.TopPlates)
	assert.Equal(t, 5, c.BottomPlates)
}

func TestGenerate_Infeasible(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Series = 30

	res, err := Generate(cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInfeasible))
	assert.False(t, res.Fit.Fits)
	assert.Greater(t, res.Fit.DeltaWidth, 0.0)
	assert.Equal(t, 20, res.Fit.MaxSeries)
	assert.Empty(t, res.Layout.Holes, "no geometry after an infeasible fit")
	assert.Empty(t, res.Mesh.Faces)
}

func TestGenerate_InvalidConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.CellDiameter = -1

	_, err := Generate(cfg, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInfeasible))
	assert.Contains(t, err.Error(), "invalid config")
}

func TestGenerate_LogsFit(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	_, err := Generate(model.DefaultConfig(), zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("fit solved").Len())
	generated := logs.FilterMessage("holder generated").All()
	require.Len(t, generated, 1)
	assert.Equal(t, int64(40), generated[0].ContextMap()["cells"])
}

func TestGenerate_KerfWarnings(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Busbar.Gap = 0.5

	res, err := Generate(cfg, nil)
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)
	for _, w := range res.Warnings {
		assert.Contains(t, w, "increase the gap")
	}
}

func TestExport_WritesEveryOutput(t *testing.T) {
	res, err := Generate(model.DefaultConfig(), nil)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	m, err := Export(res, dir, Options{}, nil)
	require.NoError(t, err)

	expected := []string{
		"cellholder.stl",
		FileTopDXF,
		FileBottomDXF,
		FileTopSVG,
		FilePDF,
		FileLabels,
		FileCellTable,
		FileTopGCode,
		FileBottomGCode,
	}
	assert.Equal(t, expected, m.Files)
	for _, name := range append(expected, FileManifest) {
		info, err := os.Stat(filepath.Join(dir, name))
		if assert.NoError(t, err, name) {
			assert.Greater(t, info.Size(), int64(0), name)
		}
	}

	loaded, err := project.ReadManifest(filepath.Join(dir, FileManifest))
	require.NoError(t, err)
	assert.Equal(t, res.RunID, loaded.RunID)
	assert.Equal(t, res.Counts(), loaded.Counts)
	assert.Equal(t, expected, loaded.Files)
	assert.Empty(t, loaded.Warnings, "read-back checks should pass")

	passes := len(gcode.New(res.Config.PlateCut).Passes())
	require.Len(t, loaded.Programs, 2)
	assert.Equal(t, FileTopGCode, loaded.Programs[0].File)
	assert.Equal(t, passes*len(res.Top), loaded.Programs[0].Loops)
	assert.Equal(t, passes*len(res.Bottom), loaded.Programs[1].Loops)
	assert.Greater(t, loaded.Programs[0].CutLength, 0.0)

	stl, err := os.ReadFile(filepath.Join(dir, "cellholder.stl"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(stl), "solid cellholder"))

	code, err := os.ReadFile(filepath.Join(dir, FileTopGCode))
	require.NoError(t, err)
	loops := gcode.CutLoops(gcode.ParseGCode(string(code)))
	assert.Len(t, loops, passes*len(res.Top))
}

func TestExport_Options(t *testing.T) {
	res, err := Generate(model.DefaultConfig(), nil)
	require.NoError(t, err)

	dir := t.TempDir()
	m, err := Export(res, dir, Options{BinarySTL: true, SkipGCode: true}, nil)
	require.NoError(t, err)

	assert.Contains(t, m.Files, "cellholder-binary.stl")
	assert.NotContains(t, m.Files, FileTopGCode)
	assert.NotContains(t, m.Files, FileBottomGCode)
	_, err = os.Stat(filepath.Join(dir, FileTopGCode))
	assert.True(t, os.IsNotExist(err))
}

func TestExport_SingleSeriesHasNoBottomPlates(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Series = 1
	res, err := Generate(cfg, nil)
	require.NoError(t, err)
	require.Len(t, res.Top, 1)
	require.Len(t, res.Bottom, 1)

	m, err := Export(res, t.TempDir(), Options{}, nil)
	require.NoError(t, err)
	assert.Contains(t, m.Files, FileBottomDXF)
}

func TestExport_RejectsInfeasible(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Series = 30
	res, _ := Generate(cfg, nil)

	dir := filepath.Join(t.TempDir(), "never")
	_, err := Export(res, dir, Options{}, nil)
	assert.ErrorIs(t, err, ErrInfeasible)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "no output directory for an infeasible run")
}

func TestFileBase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"cellholder", "cellholder"},
		{"  10S4P pack ", "10S4P-pack"},
		{"ebike/down tube", "ebike-down-tube"},
		{"v1.2_final", "v1.2_final"},
		{"../..", "cellholder"},
		{"", "cellholder"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FileBase(tt.in))
		})
	}
}

func TestRunBatch(t *testing.T) {
	good := model.DefaultConfig()
	good.Name = "pack a"

	tooBig := model.DefaultConfig()
	tooBig.Name = "pack b"
	tooBig.Series = 30

	invalid := model.DefaultConfig()
	invalid.Name = "pack c"
	invalid.Width = 0

	out := t.TempDir()
	items := RunBatch([]model.HolderConfig{good, tooBig, invalid}, out, Options{SkipGCode: true}, nil)
	require.Len(t, items, 3)

	assert.NoError(t, items[0].Err)
	assert.Equal(t, filepath.Join(out, "pack-a"), items[0].Dir)
	_, err := os.Stat(filepath.Join(out, "pack-a", FileManifest))
	assert.NoError(t, err)

	assert.ErrorIs(t, items[1].Err, ErrInfeasible)
	assert.False(t, items[1].Fit.Fits)
	assert.Error(t, items[2].Err)
	assert.Equal(t, 2, Failed(items))
}
