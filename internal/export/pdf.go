package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/cellholder/internal/busbar"
	"github.com/piwi3910/cellholder/internal/model"
)

// Fabrication collects everything rendered on the fabrication sheet.
type Fabrication struct {
	RunID    string
	Config   model.HolderConfig
	Fit      model.FitResult
	Layout   model.Layout
	Top      []busbar.Plate
	Bottom   []busbar.Plate
	Estimate model.PrintEstimate
}

type rgb struct {
	R, G, B int
}

var layerFills = map[string]rgb{
	model.LayerNegative: {R: 144, G: 202, B: 249},
	model.LayerPositive: {R: 239, G: 154, B: 154},
	model.LayerBusbar:   {R: 165, G: 214, B: 167},
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	configQRSize = 35.0
)

// ExportPDF writes the fabrication sheet: the holder face with its cavities,
// one page per busbar face, and a summary page with the fit report, print
// estimate and settings. The summary page carries a QR code of the
// configuration.
func ExportPDF(path string, fab Fabrication) error {
	if len(fab.Layout.Outer) == 0 {
		return fmt.Errorf("no layout to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(fmt.Sprintf("%s fabrication sheet", fab.Config.Name), false)
	pdf.SetCreator("cellholder", false)

	pdf.AddPage()
	renderHolderPage(pdf, fab)

	faces := []struct {
		face   busbar.Face
		plates []busbar.Plate
	}{
		{busbar.FaceTop, fab.Top},
		{busbar.FaceBottom, fab.Bottom},
	}
	for _, f := range faces {
		if len(f.plates) == 0 {
			continue
		}
		pdf.AddPage()
		renderPlatePage(pdf, fab.Layout, f.face, f.plates)
	}

	pdf.AddPage()
	if err := renderSummaryPage(pdf, fab); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(path)
}

// pageFrame maps model coordinates (y up) onto a page drawing area (y down).
type pageFrame struct {
	scale, offsetX, offsetY, height float64
}

func newPageFrame(width, height float64) pageFrame {
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight
	scale := math.Min(drawWidth/width, drawHeight/height)
	return pageFrame{
		scale:   scale,
		offsetX: marginLeft + (drawWidth-width*scale)/2,
		offsetY: drawAreaTop,
		height:  height,
	}
}

func (f pageFrame) point(p model.Point2D) fpdf.PointType {
	return fpdf.PointType{X: f.offsetX + p.X*f.scale, Y: f.offsetY + (f.height-p.Y)*f.scale}
}

func (f pageFrame) points(r model.Ring) []fpdf.PointType {
	pts := make([]fpdf.PointType, len(r))
	for i, p := range r {
		pts[i] = f.point(p)
	}
	return pts
}

func renderTitle(pdf *fpdf.Fpdf, title, stats string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")
}

// renderHolderPage draws the holder face: outer boundary filled, cavities
// cut out, with dimension annotations.
func renderHolderPage(pdf *fpdf.Fpdf, fab Fabrication) {
	l := fab.Layout
	title := fmt.Sprintf("%s: %dS%dP holder (%.1f x %.1f mm)", fab.Config.Name, l.Series, l.Parallel, l.Width, l.Height)
	packing := "square"
	if l.Honeycomb {
		packing = fmt.Sprintf("honeycomb %.2f\xb0", l.Angle*180/math.Pi)
	}
	stats := fmt.Sprintf("Cells: %d | Cell diameter: %.2f mm | Pitch: %.2f mm | Packing: %s | Corner radius: %.2f mm",
		l.CellCount(), 2*l.CellRadius, l.Pitch, packing, l.CornerRadius)
	renderTitle(pdf, title, stats)

	frame := newPageFrame(l.Width, l.Height)

	pdf.SetFillColor(210, 180, 140)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.4)
	pdf.Polygon(frame.points(l.Outer), "FD")

	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.2)
	for _, h := range l.Holes {
		pdf.Polygon(frame.points(h), "FD")
	}

	if frame.scale*l.CellRadius > 3 {
		pdf.SetFont("Helvetica", "", 6)
		for row := 0; row < l.Parallel; row++ {
			for col := 0; col < l.Series; col++ {
				c, _ := l.Center(row, col)
				p := frame.point(c)
				label := fmt.Sprintf("%d", l.Index(row, col))
				w := pdf.GetStringWidth(label)
				pdf.SetXY(p.X-w/2, p.Y-2)
				pdf.CellFormat(w, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, l.Width, l.Height, frame)
}

// renderPlatePage draws the busbar plates of one face over the cell grid.
func renderPlatePage(pdf *fpdf.Fpdf, l model.Layout, face busbar.Face, plates []busbar.Plate) {
	title := fmt.Sprintf("Busbars, %s face", face)
	stats := fmt.Sprintf("Plates: %d | Series groups: %d columns x %d rows", len(plates), l.Series, l.Parallel)
	renderTitle(pdf, title, stats)

	frame := newPageFrame(l.Width, l.Height)

	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.2)
	pdf.Polygon(frame.points(l.Outer), "D")
	for _, c := range l.Centers {
		p := frame.point(c)
		pdf.Circle(p.X, p.Y, l.CellRadius*frame.scale, "D")
	}

	for _, plate := range plates {
		fill := layerFills[plate.Layer()]
		pdf.SetFillColor(fill.R, fill.G, fill.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Polygon(frame.points(plate.Outline), "FD")

		lo, hi := plate.Outline.BoundingBox()
		center := frame.point(plate.Outline.Centroid())
		label := plate.Label
		if plate.Group.Kind != busbar.KindInterior {
			label += " " + plate.Layer()
		}
		pdf.SetFont("Helvetica", "B", labelFontSize((hi.X-lo.X)*frame.scale, (hi.Y-lo.Y)*frame.scale))
		pdf.SetTextColor(0, 0, 0)
		w := pdf.GetStringWidth(label)
		pdf.SetXY(center.X-w/2, center.Y-2)
		pdf.CellFormat(w, 4, label, "", 0, "C", false, 0, "")
	}
}

// drawDimensionAnnotations adds width and height labels outside the holder.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, width, height float64, frame pageFrame) {
	canvasW := width * frame.scale
	canvasH := height * frame.scale

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.1f mm", width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(frame.offsetX+(canvasW-wLabelW)/2, frame.offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.1f mm", height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, frame.offsetX-3, frame.offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(frame.offsetX-3-hLabelW/2, frame.offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

type summaryItem struct {
	label string
	value string
}

func renderItems(pdf *fpdf.Fpdf, y float64, heading string, items []summaryItem) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, heading, "", 0, "L", false, 0, "")
	y += 8

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range items {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(60, 5, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		y += 5
	}
	return y + 4
}

// renderSummaryPage draws the fit report, print estimate and settings.
func renderSummaryPage(pdf *fpdf.Fpdf, fab Fabrication) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Fabrication Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	cfg := fab.Config
	fit := fab.Fit
	y := marginTop + 18

	status := "fits"
	if !fit.Fits {
		status = fmt.Sprintf("does not fit (largest grid %dS%dP)", fit.MaxSeries, fit.MaxParallel)
	}
	y = renderItems(pdf, y, "Fit", []summaryItem{
		{"Grid", fmt.Sprintf("%dS%dP (%d cells)", fit.Series, fit.Parallel, fit.Series*fit.Parallel)},
		{"Status", status},
		{"Required size", fmt.Sprintf("%.2f x %.2f mm", fit.ReqWidth, fit.ReqHeight)},
		{"Enclosure", fmt.Sprintf("%.2f x %.2f mm", cfg.Width, cfg.Height)},
		{"Honeycomb angle", fmt.Sprintf("%.2f\xb0", fit.AngleDegrees())},
	})

	est := fab.Estimate
	y = renderItems(pdf, y, "Print Estimate", []summaryItem{
		{"Face area", fmt.Sprintf("%.0f mm\xb2", est.FaceArea)},
		{"Volume", fmt.Sprintf("%.1f cm\xb3", est.Volume/1000)},
		{"Mass", fmt.Sprintf("%.1f g", est.Mass)},
		{"Filament", fmt.Sprintf("%.2f m", est.FilamentLength)},
		{"Cost", fmt.Sprintf("%.2f", est.EstimatedCost)},
	})

	renderItems(pdf, y, "Settings", []summaryItem{
		{"Extrusion height", fmt.Sprintf("%.2f mm", cfg.ExtrusionHeight)},
		{"Spacing / wall", fmt.Sprintf("%.2f / %.2f mm", cfg.Spacing, cfg.WallThickness)},
		{"Chord tolerance", fmt.Sprintf("%.3f mm", cfg.ChordTolerance)},
		{"Plate clearance", fmt.Sprintf("%.1f mm", cfg.Busbar.PlateSideClearance)},
		{"Plate gap", fmt.Sprintf("%.1f mm", cfg.Busbar.Gap)},
		{"Plate tool", fmt.Sprintf("%.2f mm", cfg.PlateCut.ToolDiameter)},
	})

	renderPlateTable(pdf, append(append([]busbar.Plate{}, fab.Top...), fab.Bottom...))

	if err := renderConfigQR(pdf, fab); err != nil {
		return err
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	footer := "Generated by cellholder"
	if fab.RunID != "" {
		footer += " - run " + fab.RunID
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, footer, "", 0, "C", false, 0, "")
	return nil
}

// renderPlateTable lists plates on the right half of the summary page.
func renderPlateTable(pdf *fpdf.Fpdf, plates []busbar.Plate) {
	if len(plates) == 0 {
		return
	}
	x0 := pageWidth / 2
	y := marginTop + 18
	colWidths := []float64{15, 20, 25, 40}
	headers := []string{"Plate", "Face", "Layer", "Size"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := x0
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 8)
	maxY := pageHeight - marginBottom - configQRSize - 10
	for i, p := range plates {
		if y > maxY {
			pdf.SetXY(x0, y)
			pdf.CellFormat(100, 5, fmt.Sprintf("... %d more", len(plates)-i), "", 0, "L", false, 0, "")
			break
		}
		lo, hi := p.Outline.BoundingBox()
		row := []string{
			p.Label,
			p.Face.String(),
			p.Layer(),
			fmt.Sprintf("%.1f x %.1f mm", hi.X-lo.X, hi.Y-lo.Y),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos = x0
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 5, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 5
	}
}

// renderConfigQR places a QR code of the configuration JSON in the bottom
// right corner so a printed sheet can be regenerated.
func renderConfigQR(pdf *fpdf.Fpdf, fab Fabrication) error {
	data, err := json.Marshal(fab.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Low, 512)
	if err != nil {
		return fmt.Errorf("failed to generate config QR code: %w", err)
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr_config", opts, bytes.NewReader(png))
	x := pageWidth - marginRight - configQRSize
	y := pageHeight - marginBottom - configQRSize - 5
	pdf.ImageOptions("qr_config", x, y, configQRSize, configQRSize, false, opts, 0, "")
	return nil
}

// labelFontSize returns a font size that fits a shape of the given size.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 9
	case minDim > 20:
		return 8
	default:
		return 6
	}
}
