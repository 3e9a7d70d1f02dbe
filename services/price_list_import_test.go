package services

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"installcost/costing"
	"installcost/testhelpers"
)

func TestParseCSV_Valid(t *testing.T) {
	input := "Name,Quantity,Unit Price\nFrame,48,212.40\nBeam,192,38.90\n"
	headers, rows, err := parseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parseCSV() error = %v", err)
	}
	if len(headers) != 3 {
		t.Errorf("expected 3 headers, got %d", len(headers))
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 data rows, got %d", len(rows))
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	_, _, err := parseCSV(strings.NewReader("Name,Quantity,Unit Price\n"))
	if err == nil {
		t.Fatal("expected error for header-only file")
	}
	if !strings.Contains(err.Error(), "at least one data row") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseCSV_Empty(t *testing.T) {
	if _, _, err := parseCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestMapHeadersToFields(t *testing.T) {
	fields := PriceListFields()

	t.Run("exact match", func(t *testing.T) {
		mapped, unrecognized := mapHeadersToFields([]string{"Name", "Quantity", "Unit Price"}, fields)
		if len(unrecognized) != 0 {
			t.Errorf("expected no unrecognized, got %v", unrecognized)
		}
		if mapped[0] != "name" || mapped[1] != "quantity" || mapped[2] != "unit_price" {
			t.Errorf("unexpected mapping: %v", mapped)
		}
	})

	t.Run("case insensitive with required asterisk", func(t *testing.T) {
		mapped, _ := mapHeadersToFields([]string{"NAME *", "  unit price * "}, fields)
		if mapped[0] != "name" || mapped[1] != "unit_price" {
			t.Errorf("unexpected mapping: %v", mapped)
		}
	})

	t.Run("unrecognized columns", func(t *testing.T) {
		mapped, unrecognized := mapHeadersToFields([]string{"Name", "Colour", "Quantity"}, fields)
		if len(unrecognized) != 1 || unrecognized[0] != "Colour" {
			t.Errorf("expected ['Colour'], got %v", unrecognized)
		}
		if mapped[1] != "" {
			t.Errorf("expected empty for unrecognized column, got %q", mapped[1])
		}
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"212.40", "212.4", false},
		{"212,40", "212.4", false},
		{"1 234,50", "1234.5", false},
		{"", "0", false},
		{"abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("parseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePriceList_CSV(t *testing.T) {
	input := strings.Join([]string{
		"Item ID,Name *,Quantity *,Unit Price *,Install Minutes",
		"rk-frame,Upright frame,48,\"212,40\",25",
		",Beam,192,38.90,",
		",,,,",
		"rk-bad,,-1,x,",
		"rk-frame,Duplicate,1,1,",
	}, "\n")

	res, err := ParsePriceList(strings.NewReader(input), "prices.CSV")
	if err != nil {
		t.Fatalf("ParsePriceList() error = %v", err)
	}
	if res.TotalRows != 4 {
		t.Errorf("TotalRows = %d, want 4 (blank row skipped)", res.TotalRows)
	}
	if res.ValidRows != 2 || res.ErrorRows != 2 {
		t.Errorf("ValidRows/ErrorRows = %d/%d, want 2/2", res.ValidRows, res.ErrorRows)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(res.Items))
	}
	if !res.Items[0].UnitPrice.Equal(decimal.RequireFromString("212.40")) {
		t.Errorf("unit price = %s, want 212.40", res.Items[0].UnitPrice)
	}
	if !res.Items[0].TimeMinutes.Equal(decimal.NewFromInt(25)) {
		t.Errorf("time minutes = %s, want 25", res.Items[0].TimeMinutes)
	}
	if res.Items[1].ID != "" {
		t.Errorf("id should stay empty until import, got %q", res.Items[1].ID)
	}

	// row 5: name required, quantity negative, unit price not a number
	var row5 []string
	for _, e := range res.Errors {
		if e.Row == 5 {
			row5 = append(row5, e.Field)
		}
	}
	if len(row5) != 3 {
		t.Errorf("expected 3 errors on row 5, got %v", row5)
	}
}

func TestParsePriceList_MissingRequiredColumn(t *testing.T) {
	_, err := ParsePriceList(strings.NewReader("Name,Quantity\nFrame,1\n"), "prices.csv")
	if err == nil || !strings.Contains(err.Error(), "Unit Price") {
		t.Errorf("expected missing Unit Price column error, got %v", err)
	}
}

func TestParsePriceList_UnsupportedFormat(t *testing.T) {
	if _, err := ParsePriceList(strings.NewReader("x"), "prices.txt"); err == nil {
		t.Error("expected error for .txt upload")
	}
}

func TestParsePriceList_Excel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]any{"Name *", "Quantity *", "Unit Price *"})
	f.SetSheetRow(sheet, "A2", &[]any{"Wire deck", 96, 21.15})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	f.Close()

	res, err := ParsePriceList(&buf, "prices.xlsx")
	if err != nil {
		t.Fatalf("ParsePriceList() error = %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item, got %d (errors %v)", len(res.Items), res.Errors)
	}
	if !res.Items[0].Quantity.Equal(decimal.NewFromInt(96)) {
		t.Errorf("quantity = %s, want 96", res.Items[0].Quantity)
	}
}

func TestGeneratePriceListTemplate(t *testing.T) {
	result, err := GeneratePriceListTemplate()
	if err != nil {
		t.Fatalf("GeneratePriceListTemplate() error = %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Price list" || sheets[1] != "Instructions" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}
	b1, _ := f.GetCellValue("Price list", "B1")
	if b1 != "Name *" {
		t.Errorf("B1 = %q, want %q", b1, "Name *")
	}
	a1, _ := f.GetCellValue("Price list", "A1")
	if a1 != "Item ID" {
		t.Errorf("A1 = %q, want %q", a1, "Item ID")
	}

	// The template must round-trip through the importer's header mapping.
	rows, _ := f.GetRows("Price list")
	mapped, unrecognized := mapHeadersToFields(rows[0], PriceListFields())
	if len(unrecognized) != 0 {
		t.Errorf("template headers not recognized: %v (mapped %v)", unrecognized, mapped)
	}
}

func TestGenerateErrorReport(t *testing.T) {
	errs := []ValidationError{
		{Row: 2, Field: "Name", Message: "Name is required"},
		{Row: 3, Field: "Quantity", Message: "Quantity must be a number"},
	}

	result, err := GenerateErrorReport(errs)
	if err != nil {
		t.Fatalf("GenerateErrorReport() error = %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetList()[0]
	if sheet != "Errors" {
		t.Errorf("expected sheet name 'Errors', got %q", sheet)
	}
	a2, _ := f.GetCellValue(sheet, "A2")
	b2, _ := f.GetCellValue(sheet, "B2")
	if a2 != "2" || b2 != "Name" {
		t.Errorf("unexpected first data row: %q, %q", a2, b2)
	}
}

func TestImportSupplierItems_UnknownSupplier(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := createStoredCalculation(t, app)

	_, err := ImportSupplierItems(app, rec.ID, "nope", nil, 0)
	if !errors.Is(err, ErrSupplierNotFound) {
		t.Errorf("expected ErrSupplierNotFound, got %v", err)
	}
}

func TestImportSupplierItems(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := createStoredCalculation(t, app)

	items := []costing.SupplierItem{
		{ID: "i1", Name: "Upright frame (repriced)", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(150)},
		{Name: "Beam", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(30)},
	}
	saved, err := ImportSupplierItems(app, rec.ID, "s1", items, rec.Document.Version)
	if err != nil {
		t.Fatalf("ImportSupplierItems() error = %v", err)
	}

	got := saved.Document.Initial.Suppliers[0].Items
	if len(got) != 2 {
		t.Fatalf("expected 2 items (one replaced, one added), got %d", len(got))
	}
	if got[0].Name != "Upright frame (repriced)" {
		t.Errorf("existing item not replaced: %q", got[0].Name)
	}
	if got[1].ID == "" {
		t.Error("imported item without id should get one")
	}
	if saved.Document.Version != rec.Document.Version+1 {
		t.Errorf("version = %d, want %d", saved.Document.Version, rec.Document.Version+1)
	}
}
