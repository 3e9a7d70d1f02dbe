package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"installcost/costing"
)

var ErrSupplierNotFound = errors.New("supplier not found")

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportResult is returned after parsing and validating an uploaded price
// list. Items holds the valid rows only.
type ImportResult struct {
	TotalRows int                    `json:"total_rows"`
	ValidRows int                    `json:"valid_rows"`
	ErrorRows int                    `json:"error_rows"`
	Errors    []ValidationError      `json:"errors"`
	Items     []costing.SupplierItem `json:"items"`
	FileName  string                 `json:"-"`
}

// parseCSV reads a CSV file and returns headers + data rows.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return allRows[0], allRows[1:], nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// mapHeadersToFields maps uploaded column headers to field keys.
// Returns one key per column ("" when unrecognized) and the unrecognized headers.
func mapHeadersToFields(headers []string, fields []PriceListField) ([]string, []string) {
	labelToKey := make(map[string]string, len(fields))
	for _, f := range fields {
		labelToKey[strings.ToLower(strings.TrimSpace(f.Label))] = f.Key
	}

	mapped := make([]string, len(headers))
	var unrecognized []string

	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		// Strip trailing " *" that the template adds for required fields
		norm = strings.TrimSpace(strings.TrimSuffix(norm, " *"))

		if key, ok := labelToKey[norm]; ok {
			mapped[i] = key
		} else {
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// parseAmount accepts "1 234,50", "1234.50" and empty (zero).
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// ParsePriceList parses and validates an uploaded .csv or .xlsx price list.
func ParsePriceList(file io.Reader, fileName string) (*ImportResult, error) {
	fields := PriceListFields()

	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, err
	}

	columnKeys, _ := mapHeadersToFields(headers, fields)

	keyToLabel := make(map[string]string, len(fields))
	for _, f := range fields {
		keyToLabel[f.Key] = f.Label
	}
	for _, f := range fields {
		if !f.Required {
			continue
		}
		found := false
		for _, k := range columnKeys {
			if k == f.Key {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("missing required column %q", f.Label)
		}
	}

	result := &ImportResult{FileName: fileName}
	seen := make(map[string]bool)

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		rowData := make(map[string]string)
		blank := true
		for colIdx, key := range columnKeys {
			if key == "" {
				continue
			}
			value := ""
			if colIdx < len(row) {
				value = strings.TrimSpace(row[colIdx])
			}
			if value != "" {
				blank = false
			}
			rowData[key] = value
		}
		if blank {
			continue
		}
		result.TotalRows++

		var rowErrors []ValidationError
		fail := func(key, msg string) {
			rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: keyToLabel[key], Message: msg})
		}

		for _, f := range fields {
			if f.Required && rowData[f.Key] == "" {
				fail(f.Key, fmt.Sprintf("%s is required", f.Label))
			}
		}

		amounts := make(map[string]decimal.Decimal, 3)
		for _, key := range []string{"quantity", "unit_price", "time_minutes"} {
			v, err := parseAmount(rowData[key])
			if err != nil {
				fail(key, fmt.Sprintf("%s must be a number", keyToLabel[key]))
				continue
			}
			if v.IsNegative() {
				fail(key, fmt.Sprintf("%s cannot be negative", keyToLabel[key]))
				continue
			}
			amounts[key] = v
		}

		id := rowData["item_id"]
		if id != "" {
			if seen[id] {
				fail("item_id", fmt.Sprintf("duplicate Item ID %q", id))
			}
			seen[id] = true
		}

		if len(rowErrors) > 0 {
			result.Errors = append(result.Errors, rowErrors...)
			result.ErrorRows++
			continue
		}

		result.Items = append(result.Items, costing.SupplierItem{
			ID:          id,
			Name:        rowData["name"],
			Quantity:    amounts["quantity"],
			UnitPrice:   amounts["unit_price"],
			TimeMinutes: amounts["time_minutes"],
		})
	}
	result.ValidRows = len(result.Items)

	return result, nil
}

// ImportSupplierItems appends items to a supplier of the initial snapshot.
// Items without an id get a generated one; an item whose id already exists on
// the supplier replaces it.
func ImportSupplierItems(app core.App, calculationID, supplierID string, items []costing.SupplierItem, expectedVersion int) (*CalculationRecord, error) {
	return UpdateCalculation(app, calculationID, expectedVersion, func(doc costing.Document) (costing.Document, error) {
		calc := doc.Initial.Clone()
		idx := -1
		for i, s := range calc.Suppliers {
			if s.ID == supplierID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return doc, fmt.Errorf("%w: %s", ErrSupplierNotFound, supplierID)
		}

		supplier := &calc.Suppliers[idx]
		existing := make(map[string]int, len(supplier.Items))
		for i, it := range supplier.Items {
			existing[it.ID] = i
		}
		for _, it := range items {
			if it.ID == "" {
				it.ID = uuid.NewString()
			}
			if i, ok := existing[it.ID]; ok {
				supplier.Items[i] = it
				continue
			}
			existing[it.ID] = len(supplier.Items)
			supplier.Items = append(supplier.Items, it)
		}

		doc.Initial = calc
		return doc, nil
	})
}

// GenerateErrorReport creates a downloadable .xlsx file from validation errors.
func GenerateErrorReport(errors []ValidationError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	defaultSheet := f.GetSheetName(0)
	f.SetSheetName(defaultSheet, sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})

	f.SetCellValue(sheet, "A1", "Row #")
	f.SetCellValue(sheet, "B1", "Field")
	f.SetCellValue(sheet, "C1", "Error")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errors {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, e.Message)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write error report: %w", err)
	}
	return buf.Bytes(), nil
}
