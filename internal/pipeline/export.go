package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/piwi3910/cellholder/internal/busbar"
	"github.com/piwi3910/cellholder/internal/export"
	"github.com/piwi3910/cellholder/internal/gcode"
	"github.com/piwi3910/cellholder/internal/model"
	"github.com/piwi3910/cellholder/internal/project"
)

// Output file names written next to the STL.
const (
	FileTopDXF      = "busbars-top.dxf"
	FileBottomDXF   = "busbars-bottom.dxf"
	FileTopSVG      = "busbars-top.svg"
	FilePDF         = "fabrication.pdf"
	FileLabels      = "plate-labels.pdf"
	FileCellTable   = "cells.xlsx"
	FileTopGCode    = "plates-top.nc"
	FileBottomGCode = "plates-bottom.nc"
	FileManifest    = "manifest.json"
)

// Options selects optional outputs.
type Options struct {
	BinarySTL bool // also write <name>-binary.stl
	SkipGCode bool // omit the plate cutting programs
}

// FileBase turns a holder name into a safe file name stem.
func FileBase(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	base := strings.Trim(b.String(), "-.")
	if base == "" {
		return "cellholder"
	}
	return base
}

// Export writes every fabrication output of a generated holder into dir and
// returns the manifest describing them. Busbar drawings and plate programs
// are read back after writing; mismatches become manifest warnings. Results
// of an infeasible run are rejected so that no partial output is written.
func Export(res Result, dir string, opts Options, logger *zap.Logger) (project.Manifest, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("holder", res.Config.Name), zap.String("dir", dir))

	if !res.Fit.Fits {
		return project.Manifest{}, ErrInfeasible
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return project.Manifest{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	m := project.NewManifest(res.RunID, res.Config, res.Fit)
	m.Counts = res.Counts()
	m.Estimate = res.Estimate
	m.Warnings = append([]string(nil), res.Warnings...)

	written := func(name string) {
		m.Files = append(m.Files, name)
		log.Debug("wrote output", zap.String("file", name))
	}
	warn := func(warnings []string) {
		for _, w := range warnings {
			m.Warnings = append(m.Warnings, w)
			log.Warn("output check failed", zap.String("detail", w))
		}
	}

	base := FileBase(res.Config.Name)
	stlName := base + ".stl"
	if err := export.SaveSTL(filepath.Join(dir, stlName), res.Mesh, base); err != nil {
		return m, fmt.Errorf("failed to export STL: %w", err)
	}
	written(stlName)

	if opts.BinarySTL {
		binName := base + "-binary.stl"
		if err := export.SaveBinarySTL(filepath.Join(dir, binName), res.Mesh); err != nil {
			return m, fmt.Errorf("failed to export binary STL: %w", err)
		}
		written(binName)
	}

	bb := res.Config.Busbar
	top := busbar.Draw(res.Layout, res.Top, bb)
	bottom := busbar.Draw(res.Layout, res.Bottom, bb)

	drawings := []struct {
		file    string
		face    busbar.Face
		plates  []busbar.Plate
		drawing model.Drawing
	}{
		{FileTopDXF, busbar.FaceTop, res.Top, top},
		{FileBottomDXF, busbar.FaceBottom, res.Bottom, bottom},
	}
	for _, d := range drawings {
		if len(d.plates) == 0 {
			continue
		}
		path := filepath.Join(dir, d.file)
		if err := export.SaveDXF(path, d.drawing); err != nil {
			return m, fmt.Errorf("failed to export %s busbars: %w", d.face, err)
		}
		written(d.file)
		warn(checkDrawing(d.file, path, d.drawing))
	}

	if err := export.SaveSVG(filepath.Join(dir, FileTopSVG), res.Layout, top); err != nil {
		return m, fmt.Errorf("failed to export SVG preview: %w", err)
	}
	written(FileTopSVG)

	fab := export.Fabrication{
		RunID:    res.RunID,
		Config:   res.Config,
		Fit:      res.Fit,
		Layout:   res.Layout,
		Top:      res.Top,
		Bottom:   res.Bottom,
		Estimate: res.Estimate,
	}
	if err := export.ExportPDF(filepath.Join(dir, FilePDF), fab); err != nil {
		return m, fmt.Errorf("failed to export fabrication sheet: %w", err)
	}
	written(FilePDF)

	if labels := export.CollectLabelInfos(res.Config.Name, res.Top, res.Bottom); len(labels) > 0 {
		if err := export.ExportLabels(filepath.Join(dir, FileLabels), labels); err != nil {
			return m, fmt.Errorf("failed to export plate labels: %w", err)
		}
		written(FileLabels)
	}

	if err := export.ExportCellTable(filepath.Join(dir, FileCellTable), fab); err != nil {
		return m, fmt.Errorf("failed to export cell table: %w", err)
	}
	written(FileCellTable)

	if !opts.SkipGCode {
		gen := gcode.New(res.Config.PlateCut)
		programs := []struct {
			file   string
			face   busbar.Face
			plates []busbar.Plate
		}{
			{FileTopGCode, busbar.FaceTop, res.Top},
			{FileBottomGCode, busbar.FaceBottom, res.Bottom},
		}
		for _, p := range programs {
			if len(p.plates) == 0 {
				continue
			}
			code := gen.GeneratePlates(p.plates, fmt.Sprintf("%s %s busbars", res.Config.Name, p.face))
			if err := os.WriteFile(filepath.Join(dir, p.file), []byte(code), 0644); err != nil {
				return m, fmt.Errorf("failed to write %s: %w", p.file, err)
			}
			written(p.file)

			stats, warnings := checkProgram(p.file, code, p.plates, gen)
			m.Programs = append(m.Programs, stats)
			warn(warnings)
		}
	}

	if err := project.WriteManifest(filepath.Join(dir, FileManifest), m); err != nil {
		return m, fmt.Errorf("failed to write manifest: %w", err)
	}
	log.Info("outputs written", zap.Int("files", len(m.Files)+1))
	return m, nil
}
