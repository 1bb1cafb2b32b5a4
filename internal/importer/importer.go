// Package importer reads batches of holder configurations from CSV and Excel
// files, and reads DXF drawings back into layered primitives. Tabular import
// supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/cellholder/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Configs  []model.HolderConfig
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
// A value of -1 means the column is absent and the default is used.
type ColumnMapping struct {
	Name            int
	Width           int
	Height          int
	Diameter        int
	Spacing         int
	Wall            int
	Series          int
	Parallel        int
	Honeycomb       int
	ExtrusionHeight int
	CornerRadius    int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"name":      {"name", "label", "holder"},
	"width":     {"width", "w", "enclosure width", "plate width"},
	"height":    {"height", "h", "enclosure height", "plate height"},
	"diameter":  {"diameter", "dia", "cell diameter"},
	"spacing":   {"spacing", "cell spacing", "gap"},
	"wall":      {"wall", "wall thickness", "thickness"},
	"series":    {"series", "s"},
	"parallel":  {"parallel", "p"},
	"honeycomb": {"honeycomb", "hex", "packing", "staggered"},
	"extrusion": {"extrusion height", "extrusion", "holder height", "z"},
	"corner":    {"corner radius", "corner", "radius"},
}

// positionalMapping is used when the first row carries no recognised header.
var positionalMapping = ColumnMapping{
	Name:            0,
	Width:           1,
	Height:          2,
	Diameter:        3,
	Spacing:         4,
	Wall:            5,
	Series:          6,
	Parallel:        7,
	Honeycomb:       8,
	ExtrusionHeight: 9,
	CornerRadius:    10,
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping and false if no header was found. A row holding any numeric cell
// is data, whatever its text cells say.
func DetectColumns(row []string) (ColumnMapping, bool) {
	for _, cell := range row {
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return positionalMapping, false
		}
	}

	mapping := ColumnMapping{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1}
	slots := map[string]*int{
		"name":      &mapping.Name,
		"width":     &mapping.Width,
		"height":    &mapping.Height,
		"diameter":  &mapping.Diameter,
		"spacing":   &mapping.Spacing,
		"wall":      &mapping.Wall,
		"series":    &mapping.Series,
		"parallel":  &mapping.Parallel,
		"honeycomb": &mapping.Honeycomb,
		"extrusion": &mapping.ExtrusionHeight,
		"corner":    &mapping.CornerRadius,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if slot := slots[role]; *slot == -1 {
					*slot = i
				}
			}
		}
	}

	if !isHeader {
		return positionalMapping, false
	}
	return mapping, true
}

// parsePacking converts a packing cell to the honeycomb flag. It returns the
// flag and whether the string was recognized.
func parsePacking(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "honeycomb", "hex", "hexagonal", "true", "yes", "y", "1":
		return true, true
	case "square", "grid", "false", "no", "n", "0", "-":
		return false, true
	default:
		return false, false
	}
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseFloatCell reads an optional float column. Empty cells keep def.
func parseFloatCell(row []string, idx int, field, rowLabel string, def float64) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		return def, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, field, s)
	}
	return v, ""
}

// parseIntCell reads a required integer column.
func parseIntCell(row []string, idx int, field, rowLabel string) (int, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, field)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, field, s)
	}
	return v, ""
}

// parseRow builds a HolderConfig from a row, starting from the defaults so
// that absent columns keep the reference values. Returns the config, any
// error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, count int) (model.HolderConfig, string, string) {
	cfg := model.DefaultConfig()

	cfg.Name = getCell(row, mapping.Name)
	if cfg.Name == "" {
		cfg.Name = fmt.Sprintf("holder-%d", count+1)
	}

	if getCell(row, mapping.Width) == "" {
		return cfg, fmt.Sprintf("%s: Missing width value", rowLabel), ""
	}
	if getCell(row, mapping.Height) == "" {
		return cfg, fmt.Sprintf("%s: Missing height value", rowLabel), ""
	}

	floats := []struct {
		idx   int
		field string
		dst   *float64
	}{
		{mapping.Width, "width", &cfg.Width},
		{mapping.Height, "height", &cfg.Height},
		{mapping.Diameter, "diameter", &cfg.CellDiameter},
		{mapping.Spacing, "spacing", &cfg.Spacing},
		{mapping.Wall, "wall", &cfg.WallThickness},
		{mapping.ExtrusionHeight, "extrusion height", &cfg.ExtrusionHeight},
		{mapping.CornerRadius, "corner radius", &cfg.CornerRadius},
	}
	for _, f := range floats {
		v, errMsg := parseFloatCell(row, f.idx, f.field, rowLabel, *f.dst)
		if errMsg != "" {
			return cfg, errMsg, ""
		}
		*f.dst = v
	}
	if getCell(row, mapping.CornerRadius) != "" {
		cfg.RoundedCorners = cfg.CornerRadius > 0
	}

	var errMsg string
	if cfg.Series, errMsg = parseIntCell(row, mapping.Series, "series", rowLabel); errMsg != "" {
		return cfg, errMsg, ""
	}
	if cfg.Parallel, errMsg = parseIntCell(row, mapping.Parallel, "parallel", rowLabel); errMsg != "" {
		return cfg, errMsg, ""
	}
	if cfg.Series <= 0 || cfg.Parallel <= 0 {
		return cfg, fmt.Sprintf("%s: Series and parallel must be positive", rowLabel), ""
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Sprintf("%s: %v", rowLabel, err), ""
	}

	var warning string
	packing := getCell(row, mapping.Honeycomb)
	if packing != "" {
		honeycomb, ok := parsePacking(packing)
		if ok {
			cfg.Honeycomb = honeycomb
		} else {
			warning = fmt.Sprintf("%s: Unknown packing '%s', defaulting to honeycomb", rowLabel, packing)
		}
	}

	return cfg, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports holder configurations from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports holder configurations from a CSV reader with a
// known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports holder configurations from the first sheet of an
// Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// Import dispatches on the file extension: .xlsx and .xlsm go through
// ImportExcel, everything else is read as CSV.
func Import(path string) ImportResult {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") {
		return ImportExcel(path)
	}
	return ImportCSV(path)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if mapping.Series == -1 {
			missing = append(missing, "Series")
		}
		if mapping.Parallel == -1 {
			missing = append(missing, "Parallel")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// an unrecognised header still has a non-numeric width column
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	names := make(map[string]int)
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		lineNum := i + 1

		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, lineNum)
		cfg, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Configs))

		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		// each config gets its own output directory, so names must be unique
		names[cfg.Name]++
		if n := names[cfg.Name]; n > 1 {
			renamed := fmt.Sprintf("%s-%d", cfg.Name, n)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: Duplicate name '%s', renamed to '%s'", rowLabel, cfg.Name, renamed))
			cfg.Name = renamed
		}

		result.Configs = append(result.Configs, cfg)
	}

	return result
}
