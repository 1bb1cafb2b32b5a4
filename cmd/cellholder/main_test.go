package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/cellholder/internal/model"
	"github.com/piwi3910/cellholder/internal/pipeline"
	"github.com/piwi3910/cellholder/internal/project"
)

// runCLI runs the command with an isolated data directory.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--data-dir", t.TempDir()}, args...)
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_FitOnlyDefaults(t *testing.T) {
	code, out, _ := runCLI(t, "--fit-only")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "10S4P fits")
	assert.Contains(t, out, "honeycomb angle 60.00°")
}

func TestRun_FitOnlyInfeasible(t *testing.T) {
	code, out, _ := runCLI(t, "--fit-only", "--series", "30")
	assert.Equal(t, exitInfeasible, code)
	assert.Contains(t, out, "30S4P does not fit")
	assert.Contains(t, out, "largest grid that fits: 20S4P")
}

func TestRun_EnvironmentAndFlagPrecedence(t *testing.T) {
	t.Setenv("CELLHOLDER_SERIES", "30")

	code, out, _ := runCLI(t, "--fit-only")
	assert.Equal(t, exitInfeasible, code, out)

	code, out, _ = runCLI(t, "--fit-only", "-s", "10")
	assert.Equal(t, exitOK, code, out)
}

func TestRun_NestedEnvironmentKey(t *testing.T) {
	t.Setenv("CELLHOLDER_BUSBAR_GAP", "1.25")
	saved := filepath.Join(t.TempDir(), "resolved.json")

	code, _, errOut := runCLI(t, "--fit-only", "--save-config", saved)
	require.Equal(t, exitOK, code, errOut)

	cfg, err := project.LoadConfig(saved)
	require.NoError(t, err)
	assert.Equal(t, 1.25, cfg.Busbar.Gap)
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pack.yaml")
	yaml := "name: scooter\nseries: 3\nparallel: 2\nhoneycomb: false\nbusbar:\n  gap: 1.5\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0644))
	saved := filepath.Join(dir, "resolved.json")
	dataDir := filepath.Join(dir, "data")

	var stdout, stderr bytes.Buffer
	code := run([]string{
		"--data-dir", dataDir,
		"--config", cfgPath,
		"--parallel", "1",
		"--save-config", saved,
		"--fit-only",
	}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	cfg, err := project.LoadConfig(saved)
	require.NoError(t, err)
	assert.Equal(t, "scooter", cfg.Name)
	assert.Equal(t, 3, cfg.Series)
	assert.Equal(t, 1, cfg.Parallel, "flag beats config file")
	assert.False(t, cfg.Honeycomb)
	assert.Equal(t, 1.5, cfg.Busbar.Gap)
	assert.Equal(t, 2.0, cfg.Busbar.PlateSideClearance, "untouched keys keep defaults")
	assert.Equal(t, 460.0, cfg.Width)

	prefs, err := project.LoadAppConfig(filepath.Join(dataDir, "preferences.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{cfgPath}, prefs.RecentConfigs)
}

func TestRun_MissingConfigFile(t *testing.T) {
	code, _, errOut := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "failed to read config")
}

func TestRun_InvalidSettings(t *testing.T) {
	code, _, errOut := runCLI(t, "--cell-diameter", "-2")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "cell_diameter")
}

func TestRun_Preset(t *testing.T) {
	saved := filepath.Join(t.TempDir(), "resolved.json")
	code, _, errOut := runCLI(t, "--preset", "18650", "--fit-only", "--save-config", saved)
	require.Equal(t, exitOK, code, errOut)

	cfg, err := project.LoadConfig(saved)
	require.NoError(t, err)
	assert.Equal(t, 18.4, cfg.CellDiameter)
	assert.Equal(t, "cellholder", cfg.Name)

	code, _, errOut = runCLI(t, "--preset", "4680")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "not found")
}

func TestRun_UnknownProfile(t *testing.T) {
	code, _, errOut := runCLI(t, "--gcode-profile", "Haas")
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "unknown G-code profile")
}

func TestRun_ImportProfile(t *testing.T) {
	saved := append([]model.GCodeProfile(nil), model.CustomProfiles...)
	t.Cleanup(func() { model.CustomProfiles = saved })

	dir := t.TempDir()
	profPath := filepath.Join(dir, "shop.json")
	prof := model.NewCustomProfile("Shop Router")
	require.NoError(t, project.ExportProfile(profPath, prof))
	dataDir := filepath.Join(dir, "data")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--data-dir", dataDir, "--import-profile", profPath}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), `profile "Shop Router" saved`)

	stored, err := project.LoadCustomProfiles(filepath.Join(dataDir, "profiles.json"))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Shop Router", stored[0].Name)

	stdout.Reset()
	code = run([]string{"--data-dir", dataDir, "--gcode-profile", "Shop Router", "--fit-only"}, &stdout, &stderr)
	assert.Equal(t, exitOK, code, stderr.String())
}

func TestRun_ExportProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared", "linuxcnc.json")
	code, stdout, errOut := runCLI(t, "--gcode-profile", "LinuxCNC", "--export-profile", path)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, stdout, `profile "LinuxCNC" written`)

	p, err := project.ImportProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "LinuxCNC", p.Name)
	assert.False(t, p.IsBuiltIn)
	assert.Equal(t, model.GetProfile("LinuxCNC").CommentPrefix, p.CommentPrefix)
}

func TestRun_Compare(t *testing.T) {
	code, out, _ := runCLI(t, "--fit-only", "--compare")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "Square packing")
	assert.Contains(t, out, "Honeycomb packing")
	assert.Contains(t, out, "No spacing (honeycomb)")
	assert.Contains(t, out, "recommended: ")
}

func TestRun_Generate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	code, stdout, errOut := runCLI(t, "--out", out, "-s", "4", "-p", "2", "--name", "small pack", "--binary-stl")
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, stdout, "4S2P fits")
	assert.Contains(t, stdout, "wrote ")

	for _, name := range []string{"small-pack.stl", "small-pack-binary.stl", pipeline.FileTopDXF, pipeline.FileTopGCode, pipeline.FileManifest} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
}

func TestRun_GenerateInfeasible(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	code, stdout, _ := runCLI(t, "--out", out, "-s", "30")
	assert.Equal(t, exitInfeasible, code)
	assert.Contains(t, stdout, "does not fit")
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_BatchCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "holders.csv")
	csv := "name,width,height,series,parallel\nsmall,120,80,2,2\nhuge,120,80,30,4\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0644))
	out := filepath.Join(dir, "out")

	code, stdout, errOut := runCLI(t, "--batch", csvPath, "--out", out, "--no-gcode")
	assert.Equal(t, exitInfeasible, code, errOut)
	assert.Contains(t, stdout, "1 of 2 holders generated")
	assert.Contains(t, stdout, "no fit")

	_, err := os.Stat(filepath.Join(out, "small", pipeline.FileManifest))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "small", pipeline.FileTopGCode))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_BatchJSON(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "holder.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"name":"one","series":2,"parallel":1}`), 0644))
	out := filepath.Join(dir, "out")

	code, stdout, errOut := runCLI(t, "--batch", cfgPath, "--out", out)
	require.Equal(t, exitOK, code, errOut)
	assert.Contains(t, stdout, "1 of 1 holders generated")
}

func TestRun_BatchEmpty(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,width,height,series,parallel\n"), 0644))

	code, _, errOut := runCLI(t, "--batch", csvPath)
	assert.Equal(t, exitError, code)
	assert.Contains(t, errOut, "no holder configurations")
}

func TestRun_Help(t *testing.T) {
	code, _, errOut := runCLI(t, "--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "--series")
}

func TestFlatten(t *testing.T) {
	flat, err := flatten(model.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 460.0, flat["width"])
	assert.Equal(t, 2.0, flat["busbar.gap"])
	assert.Equal(t, "Generic", flat["plate_cut.gcode_profile"])
	for _, key := range flagKeys {
		_, ok := flat[key]
		assert.True(t, ok, "flag key %s has no default", key)
	}
}
