package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// BreakdownRow is one formatted line of a cost breakdown.
type BreakdownRow struct {
	Index       string
	Description string
	Amount      string
	Category    bool
	Excluded    bool
}

// BreakdownData is a formatted cost breakdown.
type BreakdownData struct {
	CalculationID string
	Mode          string
	Currency      string
	Rows          []BreakdownRow
	Total         string
	Excluded      string
	Price         string
	Margin        string
}

// BreakdownTable renders the cost breakdown with its price summary.
func BreakdownTable(data BreakdownData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.rawf(`<table class="table breakdown" data-mode="%s" data-currency="%s"><thead><tr><th>#</th><th>Description</th><th>Amount</th></tr></thead><tbody>`,
			data.Mode, data.Currency)
		for _, r := range data.Rows {
			class := "position"
			switch {
			case r.Category:
				class = "category"
			case r.Excluded:
				class = "position excluded"
			}
			h.rawf(`<tr class="%s"><td>%s</td><td>`, class, r.Index)
			h.text(r.Description)
			if r.Excluded {
				h.raw(` <small>(excluded)</small>`)
			}
			h.raw(`</td><td class="amount">`)
			h.text(r.Amount)
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody><tfoot>`)
		h.rawf(`<tr class="total"><th colspan="2">Total cost</th><td class="amount">%s</td></tr>`, data.Total)
		h.rawf(`<tr class="excluded"><th colspan="2">Excluded items (not in total)</th><td class="amount">%s</td></tr>`, data.Excluded)
		h.rawf(`<tr class="price"><th colspan="2">Offer price</th><td class="amount">%s</td></tr>`, data.Price)
		h.rawf(`<tr class="margin"><th colspan="2">Margin</th><td class="amount">%s</td></tr>`, data.Margin)
		h.raw(`</tfoot></table>`)
		return h.err
	})
}
