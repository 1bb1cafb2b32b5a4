// Package pipeline runs a holder generation from a validated configuration
// to exported fabrication files.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/piwi3910/cellholder/internal/busbar"
	"github.com/piwi3910/cellholder/internal/engine"
	"github.com/piwi3910/cellholder/internal/gcode"
	"github.com/piwi3910/cellholder/internal/model"
	"github.com/piwi3910/cellholder/internal/project"
	"github.com/piwi3910/cellholder/internal/solid"
)

// ErrInfeasible is returned when the requested grid does not fit the
// enclosure. The accompanying Result still carries the FitResult.
var ErrInfeasible = errors.New("requested cell grid does not fit the enclosure")

// Result holds everything one generation run produced.
type Result struct {
	RunID    string
	Config   model.HolderConfig
	Fit      model.FitResult
	Layout   model.Layout
	Mesh     model.Mesh
	Top      []busbar.Plate
	Bottom   []busbar.Plate
	Estimate model.PrintEstimate
	Warnings []string
}

// Counts summarises the generated geometry for the run manifest.
func (r Result) Counts() project.Counts {
	return project.Counts{
		Cells:        r.Layout.CellCount(),
		Rings:        len(r.Layout.Rings()),
		Vertices:     len(r.Mesh.Vertices),
		Triangles:    len(r.Mesh.Faces),
		TopPlates:    len(r.Top),
		BottomPlates: len(r.Bottom),
	}
}

// Generate validates cfg, solves the fit and, when the grid fits, builds the
// ring set, the extruded mesh and both busbar faces. An infeasible grid
// stops before any geometry is generated and returns ErrInfeasible.
func Generate(cfg model.HolderConfig, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("holder", cfg.Name))

	if err := cfg.Validate(); err != nil {
		return Result{Config: cfg}, fmt.Errorf("invalid config: %w", err)
	}

	start := time.Now()
	res := Result{
		RunID:  project.NewRunID(),
		Config: cfg,
	}

	planner := engine.New(cfg)
	res.Fit = planner.Fit()
	log.Info("fit solved",
		zap.Bool("fits", res.Fit.Fits),
		zap.Int("series", cfg.Series),
		zap.Int("parallel", cfg.Parallel),
		zap.Float64("req_width", res.Fit.ReqWidth),
		zap.Float64("req_height", res.Fit.ReqHeight),
		zap.Float64("angle_deg", res.Fit.AngleDegrees()))
	if !res.Fit.Fits {
		log.Warn("grid does not fit",
			zap.Float64("delta_width", res.Fit.DeltaWidth),
			zap.Float64("delta_height", res.Fit.DeltaHeight),
			zap.Int("max_series", res.Fit.MaxSeries),
			zap.Int("max_parallel", res.Fit.MaxParallel))
		return res, ErrInfeasible
	}

	res.Layout = planner.Layout()
	log.Debug("rings generated",
		zap.Int("rings", len(res.Layout.Rings())),
		zap.Int("outer_points", len(res.Layout.Outer)),
		zap.Float64("corner_radius", res.Layout.CornerRadius))

	mesh, err := solid.Build(res.Layout, cfg.ExtrusionHeight)
	if err != nil {
		return res, fmt.Errorf("failed to build solid: %w", err)
	}
	res.Mesh = mesh
	if err := mesh.Validate(); err != nil {
		return res, fmt.Errorf("extruded mesh is invalid: %w", err)
	}
	if !mesh.IsClosed() {
		res.Warnings = append(res.Warnings, "extruded mesh is not closed")
		log.Warn("extruded mesh is not closed")
	}
	log.Debug("solid extruded",
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("faces", len(mesh.Faces)),
		zap.Float64("volume_mm3", mesh.Volume()))

	res.Top = busbar.Plates(res.Layout, cfg.Busbar, busbar.FaceTop)
	res.Bottom = busbar.Plates(res.Layout, cfg.Busbar, busbar.FaceBottom)
	log.Debug("busbars laid out",
		zap.Int("top_plates", len(res.Top)),
		zap.Int("bottom_plates", len(res.Bottom)))

	for _, plates := range [][]busbar.Plate{res.Top, res.Bottom} {
		conflicts := gcode.CheckKerfClearance(plates, cfg.PlateCut.ToolDiameter)
		for _, w := range gcode.FormatKerfWarnings(conflicts) {
			res.Warnings = append(res.Warnings, w)
			log.Warn("kerf clearance", zap.String("detail", w))
		}
	}

	res.Estimate = model.EstimateForLayout(res.Layout, cfg)
	log.Info("holder generated",
		zap.String("run_id", res.RunID),
		zap.Int("cells", res.Layout.CellCount()),
		zap.Int("triangles", len(mesh.Faces)),
		zap.Float64("mass_g", res.Estimate.Mass),
		zap.Duration("elapsed", time.Since(start)))

	return res, nil
}
