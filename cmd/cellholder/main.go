// cellholder generates 3D-printable battery cell holders.
//
// For a rectangular enclosure and an S x P cell grid it checks that the grid
// fits, builds the holder outline with one hole per cell, extrudes it into an
// STL mesh and draws the busbar plates for both faces as DXF, SVG, PDF and
// plate cutting G-code.
//
// Build:
//
//	go build -o cellholder ./cmd/cellholder
//
// Examples:
//
//	cellholder --series 10 --parallel 4 --out out/
//	cellholder --preset 18650 --series 13 --parallel 3 --fit-only
//	CELLHOLDER_BUSBAR_GAP=1.5 cellholder --config pack.yaml
//	cellholder --batch holders.xlsx --out out/
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/piwi3910/cellholder/internal/engine"
	"github.com/piwi3910/cellholder/internal/importer"
	"github.com/piwi3910/cellholder/internal/model"
	"github.com/piwi3910/cellholder/internal/pipeline"
	"github.com/piwi3910/cellholder/internal/project"
)

const (
	exitOK         = 0
	exitError      = 1
	exitInfeasible = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configFile string
	batchFile  string
	outDir     string
	dataDir    string
	preset     string
	saveConfig string
	importProf string
	exportProf string
	verbose    bool
	binarySTL  bool
	skipGCode  bool
	fitOnly    bool
	compare    bool
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("cellholder", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVarP(&opts.configFile, "config", "c", "", "holder config file (json, yaml or toml)")
	fs.StringVar(&opts.batchFile, "batch", "", "generate every holder listed in a CSV, Excel or JSON file")
	fs.StringVarP(&opts.outDir, "out", "o", "", "output directory (default from preferences)")
	fs.StringVar(&opts.dataDir, "data-dir", project.DefaultConfigDir(), "directory holding preferences, presets and G-code profiles")
	fs.StringVar(&opts.preset, "preset", "", "start from a saved cell preset (ID or name)")
	fs.StringVar(&opts.saveConfig, "save-config", "", "write the resolved holder config to this JSON file")
	fs.StringVar(&opts.importProf, "import-profile", "", "add a G-code profile from a JSON file to the saved profiles and exit")
	fs.StringVar(&opts.exportProf, "export-profile", "", "write the selected G-code profile to a JSON file and exit")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "development logging")
	fs.BoolVar(&opts.binarySTL, "binary-stl", false, "also write a binary STL")
	fs.BoolVar(&opts.skipGCode, "no-gcode", false, "skip plate cutting G-code")
	fs.BoolVar(&opts.fitOnly, "fit-only", false, "only report whether the grid fits")
	fs.BoolVar(&opts.compare, "compare", false, "compare square and honeycomb packing")
	addGeometryFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitError
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		fmt.Fprintf(stderr, "cellholder: %v\n", err)
		return exitError
	}
	defer logger.Sync() //nolint:errcheck

	code, err := execute(fs, opts, stdout, logger)
	if err != nil {
		fmt.Fprintf(stderr, "cellholder: %v\n", err)
	}
	return code
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func execute(fs *pflag.FlagSet, opts options, stdout io.Writer, logger *zap.Logger) (int, error) {
	prefsPath := filepath.Join(opts.dataDir, "preferences.json")
	prefs, err := project.LoadAppConfig(prefsPath)
	if err != nil {
		return exitError, err
	}
	profilesPath := filepath.Join(opts.dataDir, "profiles.json")
	if n, err := project.RegisterCustomProfiles(profilesPath); err != nil {
		return exitError, err
	} else if n > 0 {
		logger.Debug("custom profiles registered", zap.Int("count", n))
	}
	if opts.importProf != "" {
		return importProfile(opts.importProf, profilesPath, stdout)
	}

	base, err := baseConfig(opts, prefs)
	if err != nil {
		return exitError, err
	}

	outDir := opts.outDir
	if outDir == "" {
		outDir = prefs.OutputDir
	}
	exportOpts := pipeline.Options{
		BinarySTL: opts.binarySTL || prefs.BinarySTL,
		SkipGCode: opts.skipGCode,
	}

	if opts.batchFile != "" {
		return runBatch(opts.batchFile, outDir, exportOpts, stdout, logger)
	}

	v, err := newViper(fs, base, opts.configFile)
	if err != nil {
		return exitError, err
	}
	cfg, err := resolveConfig(v)
	if err != nil {
		return exitError, err
	}
	profile, ok := findProfile(cfg.PlateCut.GCodeProfile)
	if !ok {
		return exitError, fmt.Errorf("unknown G-code profile %q (available: %s)",
			cfg.PlateCut.GCodeProfile, strings.Join(model.GetProfileNames(), ", "))
	}
	if opts.exportProf != "" {
		if err := project.ExportProfile(opts.exportProf, profile); err != nil {
			return exitError, err
		}
		fmt.Fprintf(stdout, "profile %q written to %s\n", profile.Name, opts.exportProf)
		return exitOK, nil
	}

	if opts.configFile != "" {
		prefs.AddRecent(opts.configFile)
		if err := project.SaveAppConfig(prefsPath, prefs); err != nil {
			logger.Warn("failed to update preferences", zap.Error(err))
		}
	}
	if opts.saveConfig != "" {
		if err := project.SaveConfig(opts.saveConfig, cfg); err != nil {
			return exitError, err
		}
	}

	if opts.compare {
		printComparison(stdout, engine.ComparePacking(cfg))
	}

	if opts.fitOnly {
		fit := engine.New(cfg).Fit()
		fmt.Fprintln(stdout, fit.Report())
		if !fit.Fits {
			return exitInfeasible, nil
		}
		return exitOK, nil
	}

	res, err := pipeline.Generate(cfg, logger)
	if errors.Is(err, pipeline.ErrInfeasible) {
		fmt.Fprintln(stdout, res.Fit.Report())
		return exitInfeasible, nil
	}
	if err != nil {
		return exitError, err
	}
	fmt.Fprintln(stdout, res.Fit.Report())

	m, err := pipeline.Export(res, outDir, exportOpts, logger)
	if err != nil {
		return exitError, err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(stdout, "warning: %s\n", w)
	}
	fmt.Fprintf(stdout, "run %s: %d cells, %d triangles, %.1f g filament\n",
		m.RunID, m.Counts.Cells, m.Counts.Triangles, m.Estimate.Mass)
	fmt.Fprintf(stdout, "wrote %d files to %s\n", len(m.Files)+1, outDir)
	return exitOK, nil
}

// baseConfig picks the starting configuration: the requested preset, the
// preferred preset, or the built-in defaults, with preference overrides
// for the plate cutting parameters.
func baseConfig(opts options, prefs model.AppConfig) (model.HolderConfig, error) {
	cfg := model.DefaultConfig()

	key := opts.preset
	if key == "" {
		key = prefs.DefaultPreset
	}
	if key != "" {
		store, err := project.LoadPresets(filepath.Join(opts.dataDir, "presets.json"))
		if err != nil {
			return cfg, err
		}
		p, err := project.ResolvePreset(store, key)
		switch {
		case err == nil:
			cfg = p.ToConfig(cfg.Name)
		case opts.preset != "":
			return cfg, err
		}
	}

	prefs.ApplyToConfig(&cfg)
	return cfg, nil
}

func importProfile(path, profilesPath string, stdout io.Writer) (int, error) {
	p, err := project.ImportProfile(path)
	if err != nil {
		return exitError, err
	}
	if err := model.AddCustomProfile(p); err != nil {
		return exitError, err
	}
	if err := project.SaveCustomProfiles(profilesPath, model.CustomProfiles); err != nil {
		return exitError, err
	}
	fmt.Fprintf(stdout, "profile %q saved (%d custom profiles)\n", p.Name, len(model.CustomProfiles))
	return exitOK, nil
}

func findProfile(name string) (model.GCodeProfile, bool) {
	for _, p := range model.AllProfiles() {
		if p.Name == name {
			return p, true
		}
	}
	return model.GCodeProfile{}, false
}

func runBatch(path, outDir string, opts pipeline.Options, stdout io.Writer, logger *zap.Logger) (int, error) {
	var configs []model.HolderConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		cfg, err := project.LoadConfig(path)
		if err != nil {
			return exitError, err
		}
		configs = append(configs, cfg)
	} else {
		imported := importer.Import(path)
		for _, w := range imported.Warnings {
			fmt.Fprintf(stdout, "warning: %s\n", w)
		}
		for _, e := range imported.Errors {
			fmt.Fprintf(stdout, "error: %s\n", e)
		}
		if len(imported.Configs) == 0 {
			return exitError, fmt.Errorf("no holder configurations in %s", path)
		}
		configs = imported.Configs
	}

	items := pipeline.RunBatch(configs, outDir, opts, logger)
	infeasible := false
	for _, it := range items {
		switch {
		case it.Err == nil:
			fmt.Fprintf(stdout, "%-20s ok     %d files in %s\n", it.Name, len(it.Manifest.Files)+1, it.Dir)
		case errors.Is(it.Err, pipeline.ErrInfeasible):
			infeasible = true
			fmt.Fprintf(stdout, "%-20s no fit\n    %s\n", it.Name, strings.ReplaceAll(it.Fit.Report(), "\n", "\n    "))
		default:
			fmt.Fprintf(stdout, "%-20s error  %v\n", it.Name, it.Err)
		}
	}

	failed := pipeline.Failed(items)
	fmt.Fprintf(stdout, "%d of %d holders generated\n", len(items)-failed, len(items))
	switch {
	case failed == 0:
		return exitOK, nil
	case infeasible && failed == countInfeasible(items):
		return exitInfeasible, nil
	default:
		return exitError, nil
	}
}

func countInfeasible(items []pipeline.BatchItem) int {
	n := 0
	for _, it := range items {
		if errors.Is(it.Err, pipeline.ErrInfeasible) {
			n++
		}
	}
	return n
}

func printComparison(w io.Writer, cmp engine.PackingComparison) {
	for _, r := range cmp.Scenarios {
		status := "does not fit"
		if r.Fit.Fits {
			status = "fits"
		}
		fmt.Fprintf(w, "%-26s %-12s %7.1f x %6.1f mm  max %dS%dP  %.1f%% of enclosure\n",
			r.Scenario.Name, status, r.Fit.ReqWidth, r.Fit.ReqHeight,
			r.Fit.MaxSeries, r.Fit.MaxParallel, r.AreaUsage)
	}
	fmt.Fprintf(w, "recommended: %s\n", cmp.Recommended)
}
