package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GeneratePriceListTemplate creates a downloadable .xlsx template for
// importing supplier items.
func GeneratePriceListTemplate() ([]byte, error) {
	fields := PriceListFields()

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Price list"
	defaultSheet := f.GetSheetName(0)
	f.SetSheetName(defaultSheet, sheetName)

	requiredStyle, err := priceListHeaderStyle(f, "#1D4ED8")
	if err != nil {
		return nil, err
	}
	optionalStyle, err := priceListHeaderStyle(f, "#6B7280")
	if err != nil {
		return nil, err
	}

	columns := columnLetters(len(fields))
	for i, field := range fields {
		cell := columns[i] + "1"
		header, style := field.Label, optionalStyle
		if field.Required {
			header, style = field.Label+" *", requiredStyle
		}
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, style)
		f.SetColWidth(sheetName, columns[i], columns[i], max(15, float64(len(header))*1.3))
	}

	// Numeric columns only accept non-negative decimals.
	for i, field := range fields {
		switch field.Key {
		case "quantity", "unit_price", "time_minutes":
			dv := excelize.NewDataValidation(true)
			dv.Sqref = fmt.Sprintf("%s2:%s1048576", columns[i], columns[i])
			if err := dv.SetRange(0, 1e12, excelize.DataValidationTypeDecimal, excelize.DataValidationOperatorBetween); err == nil {
				f.AddDataValidation(sheetName, dv)
			}
		}
	}

	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		Split:       false,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	addInstructionsSheet(f, fields)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel template: %w", err)
	}
	return buf.Bytes(), nil
}

// addInstructionsSheet creates a hidden sheet with field descriptions.
func addInstructionsSheet(f *excelize.File, fields []PriceListField) {
	instSheet := "Instructions"
	f.NewSheet(instSheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	})

	f.SetCellValue(instSheet, "A1", "Supplier Price List Import - Instructions")
	f.SetCellStyle(instSheet, "A1", "A1", titleStyle)
	f.SetCellValue(instSheet, "A2", "Prices are read in the currency of the supplier the list is imported into. Rows with an existing Item ID replace that item.")

	instructionHeaders := []string{"Field Name", "Required?", "Format Rule", "Description", "Example"}
	cols := columnLetters(5)
	for i, h := range instructionHeaders {
		cell := fmt.Sprintf("%s3", cols[i])
		f.SetCellValue(instSheet, cell, h)
		f.SetCellStyle(instSheet, cell, cell, headerStyle)
	}

	for i, field := range fields {
		row := fmt.Sprintf("%d", i+4)
		reqLabel := "Optional"
		if field.Required {
			reqLabel = "Required"
		}
		f.SetCellValue(instSheet, cols[0]+row, field.Label)
		f.SetCellValue(instSheet, cols[1]+row, reqLabel)
		f.SetCellValue(instSheet, cols[2]+row, field.FormatRule)
		f.SetCellValue(instSheet, cols[3]+row, field.Description)
		f.SetCellValue(instSheet, cols[4]+row, field.ExampleValue)
	}

	widths := []float64{20, 12, 34, 45, 25}
	for i, w := range widths {
		f.SetColWidth(instSheet, cols[i], cols[i], w)
	}

	f.SetSheetVisible(instSheet, false)
}

// priceListHeaderStyle is a bold white header on the given fill colour.
func priceListHeaderStyle(f *excelize.File, fill string) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	if err != nil {
		return 0, fmt.Errorf("create header style: %w", err)
	}
	return style, nil
}

// columnLetters returns Excel column letters for n columns: A, B, ... Z, AA, AB ...
func columnLetters(n int) []string {
	cols := make([]string, n)
	for i := 0; i < n; i++ {
		name, _ := excelize.ColumnNumberToName(i + 1)
		cols[i] = name
	}
	return cols
}
