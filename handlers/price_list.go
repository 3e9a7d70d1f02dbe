package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"installcost/services"
)

// HandlePriceListTemplate downloads the blank supplier price list workbook.
// Route: GET /price-list/template
func HandlePriceListTemplate() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		xlsxBytes, err := services.GeneratePriceListTemplate()
		if err != nil {
			log.Printf("price_list_template: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		e.Response.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", `attachment; filename="Price_List_Template.xlsx"`)
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandlePriceListImport validates an uploaded price list and merges its rows
// into one supplier of the planning snapshot. Nothing is imported while any
// row has errors; the caller gets the validation result, or the error report
// workbook with ?report=xlsx.
// Route: POST /calculations/{id}/suppliers/{supplierId}/import
func HandlePriceListImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		supplierID := e.Request.PathValue("supplierId")

		// Parse multipart form (max 10MB)
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return respondError(e, "price_list_import", badRequest("file too large or invalid form data"))
		}

		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return respondError(e, "price_list_import", badRequest("please select a file to upload"))
		}
		defer file.Close()

		version, err := formVersion(e)
		if err != nil {
			return respondError(e, "price_list_import", err)
		}

		result, err := services.ParsePriceList(file, header.Filename)
		if err != nil {
			log.Printf("price_list_import: %v", err)
			return respondError(e, "price_list_import", badRequest("%v", err))
		}

		if result.ErrorRows > 0 {
			if e.Request.URL.Query().Get("report") == "xlsx" {
				xlsxBytes, err := services.GenerateErrorReport(result.Errors)
				if err != nil {
					return respondError(e, "price_list_import", err)
				}
				filename := fmt.Sprintf("Price_List_Errors_%s.xlsx", time.Now().Format("2006-01-02"))
				e.Response.Header().Set("Content-Type",
					"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
				e.Response.Header().Set("Content-Disposition",
					fmt.Sprintf(`attachment; filename="%s"`, filename))
				e.Response.Write(xlsxBytes)
				return nil
			}
			if isHTMX(e) {
				return ErrorToast(e, http.StatusUnprocessableEntity,
					fmt.Sprintf("%d of %d rows have errors, nothing was imported", result.ErrorRows, result.TotalRows))
			}
			return e.JSON(http.StatusUnprocessableEntity, result)
		}

		saved, err := services.ImportSupplierItems(app, id, supplierID, result.Items, version)
		if err != nil {
			return respondError(e, "price_list_import", err)
		}

		log.Printf("price_list_import: %d items into supplier %s of %s", len(result.Items), supplierID, id)
		if isHTMX(e) {
			SetToast(e, "success", fmt.Sprintf("Imported %d items", len(result.Items)))
		}
		return e.JSON(http.StatusOK, map[string]any{
			"result":      result,
			"calculation": newCalculationResponse(saved),
		})
	}
}
