package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/cellholder/internal/model"
)

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pack", "holder.json")

	cfg := model.DefaultConfig()
	cfg.Name = "scooter"
	cfg.Series = 13
	cfg.Parallel = 3
	cfg.Honeycomb = false
	cfg.Busbar.WeldDiameter = 0
	cfg.PlateCut.GCodeProfile = "LinuxCNC"

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holder.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"tiny","series":2,"parallel":1,"busbar":{"gap":1.5}}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	defaults := model.DefaultConfig()
	assert.Equal(t, "tiny", cfg.Name)
	assert.Equal(t, 2, cfg.Series)
	assert.Equal(t, 1, cfg.Parallel)
	assert.Equal(t, 1.5, cfg.Busbar.Gap)
	assert.Equal(t, defaults.Busbar.EndMargin, cfg.Busbar.EndMargin)
	assert.Equal(t, defaults.CellDiameter, cfg.CellDiameter)
	assert.Equal(t, defaults.PlateCut, cfg.PlateCut)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	negative := filepath.Join(dir, "negative.json")
	require.NoError(t, os.WriteFile(negative, []byte(`{"cell_diameter":-1}`), 0644))
	_, err = LoadConfig(negative)
	assert.ErrorContains(t, err, "cell_diameter")
}

func TestSaveConfig_RejectsInvalid(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Width = 0
	path := filepath.Join(t.TempDir(), "holder.json")

	assert.Error(t, SaveConfig(path, cfg))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
