package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/cellholder/internal/busbar"
)

// Sheet names of the cell table workbook.
const (
	SheetCells   = "Cells"
	SheetPlates  = "Plates"
	SheetSummary = "Summary"
)

var cellHeaders = []interface{}{"Index", "Row", "Column", "X (mm)", "Y (mm)", "Top plate", "Bottom plate"}

var plateHeaders = []interface{}{"Plate", "ID", "Face", "Layer", "Columns", "Cells", "Width (mm)", "Height (mm)"}

// ExportCellTable writes a workbook listing every cavity with its position
// and the plates that connect it, every plate with its size, and a summary
// of the fit.
func ExportCellTable(path string, fab Fabrication) error {
	l := fab.Layout
	if l.CellCount() == 0 {
		return fmt.Errorf("no cells to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCells); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{SheetPlates, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6E6"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	top := plateByColumn(fab.Top, l.Series)
	bottom := plateByColumn(fab.Bottom, l.Series)
	rows := [][]interface{}{cellHeaders}
	for row := 0; row < l.Parallel; row++ {
		for col := 0; col < l.Series; col++ {
			c, _ := l.Center(row, col)
			rows = append(rows, []interface{}{l.Index(row, col), row + 1, col + 1, round3(c.X), round3(c.Y), top[col], bottom[col]})
		}
	}
	if err := writeRows(f, SheetCells, rows, header); err != nil {
		return err
	}

	rows = [][]interface{}{plateHeaders}
	for _, set := range [][]busbar.Plate{fab.Top, fab.Bottom} {
		for _, p := range set {
			lo, hi := p.Outline.BoundingBox()
			cols := make([]string, len(p.Group.Columns))
			for i, c := range p.Group.Columns {
				cols[i] = fmt.Sprintf("%d", c+1)
			}
			rows = append(rows, []interface{}{
				p.Label, p.ID, p.Face.String(), p.Layer(), strings.Join(cols, ","),
				len(p.Cells), round3(hi.X - lo.X), round3(hi.Y - lo.Y),
			})
		}
	}
	if err := writeRows(f, SheetPlates, rows, header); err != nil {
		return err
	}

	fit := fab.Fit
	rows = [][]interface{}{
		{"Property", "Value"},
		{"Name", fab.Config.Name},
		{"Run", fab.RunID},
		{"Grid", fmt.Sprintf("%dS%dP", l.Series, l.Parallel)},
		{"Fits", fit.Fits},
		{"Width (mm)", l.Width},
		{"Height (mm)", l.Height},
		{"Required width (mm)", round3(fit.ReqWidth)},
		{"Required height (mm)", round3(fit.ReqHeight)},
		{"Honeycomb", l.Honeycomb},
		{"Angle (deg)", round3(fit.AngleDegrees())},
		{"Face area (mm2)", round3(fab.Estimate.FaceArea)},
		{"Mass (g)", round3(fab.Estimate.Mass)},
		{"Filament (m)", round3(fab.Estimate.FilamentLength)},
	}
	if err := writeRows(f, SheetSummary, rows, header); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "A", "H", 14)
}

func plateByColumn(plates []busbar.Plate, series int) []string {
	labels := make([]string, series)
	for _, p := range plates {
		for _, c := range p.Group.Columns {
			if c >= 0 && c < series {
				labels[c] = p.Label
			}
		}
	}
	return labels
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
