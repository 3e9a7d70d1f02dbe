package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateBreakdownExcel creates an Excel workbook from the given ExportData
// and returns the file contents as a byte slice.
func GenerateBreakdownExcel(data ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Sheet names are limited to 31 characters.
	sheetName := data.Title
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Breakdown"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D"}
	lastCol := columns[len(columns)-1]

	widths := []float64{8, 44, 20, 12}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	categoryStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create category style: %w", err)
	}

	positionStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create position style: %w", err)
	}

	// Excluded positions are greyed out and struck through.
	excludedStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10, Color: "#999999", Strike: true},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create excluded style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header Rows (1-3) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(data.Title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	ref := "Ref: " + data.ReferenceNumber
	if data.OfferNumber != "" {
		ref += "   Offer: " + data.OfferNumber
	}
	if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
		return nil, fmt.Errorf("merge ref: %w", err)
	}
	f.SetCellValue(sheetName, "A2", sanitizeExcelCell(ref))
	f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)

	if err := f.MergeCell(sheetName, "A3", lastCol+"3"); err != nil {
		return nil, fmt.Errorf("merge date: %w", err)
	}
	f.SetCellValue(sheetName, "A3", fmt.Sprintf("Date: %s   Mode: %s   Currency: %s", data.CreatedDate, data.Mode, data.Currency))
	f.SetCellStyle(sheetName, "A3", lastCol+"3", subtitleStyle)

	// ── Row 5: Column Headers ───────────────────────────────────────────

	headers := []string{"#", "Description", "Amount (" + string(data.Currency) + ")", "Status"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s5", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A5", lastCol+"5", headerStyle)

	// ── Data Rows (starting row 6) ──────────────────────────────────────

	row := 6
	for _, r := range data.Rows {
		rowStr := fmt.Sprintf("%d", row)

		desc := r.Description
		if r.Level > 0 {
			desc = "  " + desc
		}
		status := ""
		if r.Excluded {
			status = "excluded"
		}

		f.SetCellValue(sheetName, "A"+rowStr, r.Index)
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(desc))
		f.SetCellValue(sheetName, "C"+rowStr, r.Amount.Round(2).InexactFloat64())
		f.SetCellValue(sheetName, "D"+rowStr, status)

		style := positionStyle
		switch {
		case r.Level == 0:
			style = categoryStyle
		case r.Excluded:
			style = excludedStyle
		}
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, style)
		row++
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	row++
	summary := []struct {
		label string
		value string
	}{
		{"Total cost:", FormatMoney(data.Breakdown.Total, data.Currency)},
		{"Excluded items:", FormatMoney(data.Breakdown.Excluded, data.Currency)},
		{"Offer price:", FormatMoney(data.Price, data.Currency)},
		{"Margin:", FormatPercent(data.Margin)},
	}
	for _, s := range summary {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "B"+rowStr, s.label)
		f.SetCellStyle(sheetName, "B"+rowStr, "B"+rowStr, summaryLabelStyle)
		f.SetCellValue(sheetName, "C"+rowStr, s.value)
		f.SetCellStyle(sheetName, "C"+rowStr, "C"+rowStr, summaryValueStyle)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
