package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/cellholder/internal/busbar"
)

// LabelInfo holds the data encoded into each plate label's QR code.
type LabelInfo struct {
	PlateID string  `json:"id"`
	Label   string  `json:"label"`
	Holder  string  `json:"holder"`
	Face    string  `json:"face"`
	Layer   string  `json:"layer"`
	Columns []int   `json:"columns"`
	Cells   int     `json:"cells"`
	Width   float64 `json:"width_mm"`
	Height  float64 `json:"height_mm"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// CollectLabelInfos builds one label per plate, top face first.
func CollectLabelInfos(holder string, plates ...[]busbar.Plate) []LabelInfo {
	var labels []LabelInfo
	for _, set := range plates {
		for _, p := range set {
			lo, hi := p.Outline.BoundingBox()
			labels = append(labels, LabelInfo{
				PlateID: p.ID,
				Label:   p.Label,
				Holder:  holder,
				Face:    p.Face.String(),
				Layer:   p.Layer(),
				Columns: p.Group.Columns,
				Cells:   len(p.Cells),
				Width:   hi.X - lo.X,
				Height:  hi.Y - lo.Y,
			})
		}
	}
	return labels
}

// ExportLabels writes a PDF of QR-coded plate labels on an Avery 5160
// sheet (3 columns x 10 rows on US Letter).
func ExportLabels(path string, labels []LabelInfo) error {
	if len(labels) == 0 {
		return fmt.Errorf("no plates to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Label, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, n int, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_plate_%d", n)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, fmt.Sprintf("%s  %s", info.Label, info.Layer), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%.1f x %.1f mm, %d cells", info.Width, info.Height, info.Cells), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("%s face, columns %v", info.Face, info.Columns), "", 1, "L", false, 0, "")

	holder := info.Holder
	if pdf.GetStringWidth(holder) > textW {
		for len(holder) > 0 && pdf.GetStringWidth(holder+"...") > textW {
			holder = holder[:len(holder)-1]
		}
		holder += "..."
	}
	pdf.SetXY(textX, y+labelPadding+12.5)
	pdf.CellFormat(textW, 3, holder, "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
