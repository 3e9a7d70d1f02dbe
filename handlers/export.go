package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"installcost/services"
)

// buildExportData loads the calculation and prices it for the mode and
// currency given in the query.
func buildExportData(app *pocketbase.PocketBase, e *core.RequestEvent) (services.ExportData, error) {
	mode, err := parseMode(e)
	if err != nil {
		return services.ExportData{}, err
	}
	currency, err := parseCurrency(e)
	if err != nil {
		return services.ExportData{}, err
	}

	rec, err := services.LoadCalculation(app, e.Request.PathValue("id"))
	if err != nil {
		return services.ExportData{}, err
	}
	return services.BuildBreakdownExport(rec, mode, currency, time.Now()), nil
}

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

func exportFilename(data services.ExportData, ext string) string {
	return fmt.Sprintf("Costing_%s_%s_%s.%s",
		sanitizeFilename(data.ReferenceNumber), strings.ToLower(string(data.Mode)), data.Currency, ext)
}

// HandleExportExcel returns a handler that downloads the cost breakdown as
// an Excel workbook.
// Route: GET /calculations/{id}/export/excel?mode=&currency=
func HandleExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := buildExportData(app, e)
		if err != nil {
			return respondError(e, "export_excel", err)
		}

		xlsxBytes, err := services.GenerateBreakdownExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate Excel file")
		}

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(data, "xlsx")))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleExportPDF returns a handler that downloads the cost breakdown as a
// PDF summary.
// Route: GET /calculations/{id}/export/pdf?mode=&currency=
func HandleExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := buildExportData(app, e)
		if err != nil {
			return respondError(e, "export_pdf", err)
		}

		pdfBytes, err := services.GenerateBreakdownPDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to generate PDF file")
		}

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(data, "pdf")))
		e.Response.Write(pdfBytes)
		return nil
	}
}
