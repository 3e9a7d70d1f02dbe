package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"installcost/costing"
	"installcost/observability"
	"installcost/services"
	"installcost/templates"
)

// breakdownResponse is the JSON shape of a priced snapshot.
type breakdownResponse struct {
	Mode      costing.Mode          `json:"mode"`
	Currency  costing.Currency      `json:"currency"`
	Breakdown costing.CostBreakdown `json:"breakdown"`
	Price     decimal.Decimal       `json:"price"`
	Margin    decimal.Decimal       `json:"margin"`
	Rows      []services.ExportRow  `json:"rows"`
}

// HandleBreakdown prices one snapshot of a calculation.
// Route: GET /calculations/{id}/breakdown?mode=INITIAL|FINAL&currency=PLN|EUR
func HandleBreakdown(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode, err := parseMode(e)
		if err != nil {
			return respondError(e, "breakdown", err)
		}
		currency, err := parseCurrency(e)
		if err != nil {
			return respondError(e, "breakdown", err)
		}

		rec, err := services.LoadCalculation(app, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "breakdown", err)
		}

		start := time.Now()
		data := services.BuildBreakdownExport(rec, mode, currency, start)
		observability.ObserveBreakdown(data.Mode, start)

		if !isHTMX(e) {
			return e.JSON(http.StatusOK, breakdownResponse{
				Mode:      data.Mode,
				Currency:  data.Currency,
				Breakdown: data.Breakdown,
				Price:     data.Price,
				Margin:    data.Margin,
				Rows:      data.Rows,
			})
		}

		rows := make([]templates.BreakdownRow, len(data.Rows))
		for i, r := range data.Rows {
			rows[i] = templates.BreakdownRow{
				Index:       r.Index,
				Description: r.Description,
				Amount:      services.FormatMoney(r.Amount, data.Currency),
				Category:    r.Level == 0,
				Excluded:    r.Excluded,
			}
		}
		return templates.BreakdownTable(templates.BreakdownData{
			CalculationID: rec.ID,
			Mode:          string(data.Mode),
			Currency:      string(data.Currency),
			Rows:          rows,
			Total:         services.FormatMoney(data.Breakdown.Total, data.Currency),
			Excluded:      services.FormatMoney(data.Breakdown.Excluded, data.Currency),
			Price:         services.FormatMoney(data.Price, data.Currency),
			Margin:        services.FormatPercent(data.Margin),
		}).Render(e.Request.Context(), e.Response)
	}
}
