package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// CalculationListItem is one row of the calculation list.
type CalculationListItem struct {
	ID              string
	Name            string
	ReferenceNumber string
	ClientName      string
	Stage           string
	OfferNumber     string
	Updated         string
}

// CalculationList renders the calculations table.
func CalculationList(items []CalculationListItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<table class="table" id="calculation-list"><thead><tr>`)
		h.raw(`<th>Name</th><th>Reference</th><th>Client</th><th>Stage</th><th>Offer</th><th>Updated</th>`)
		h.raw(`</tr></thead><tbody>`)
		if len(items) == 0 {
			h.raw(`<tr><td colspan="6" class="empty">No calculations yet</td></tr>`)
		}
		for _, it := range items {
			h.rawf(`<tr id="calc-%s"><td><a href="/calculations/%s" hx-get="/calculations/%s" hx-target="#main">`, it.ID, it.ID, it.ID)
			h.text(it.Name)
			h.raw(`</a></td><td>`)
			h.text(it.ReferenceNumber)
			h.raw(`</td><td>`)
			h.text(it.ClientName)
			h.rawf(`</td><td><span class="badge stage-%s">`, it.Stage)
			h.text(it.Stage)
			h.raw(`</span></td><td>`)
			h.text(it.OfferNumber)
			h.raw(`</td><td>`)
			h.text(it.Updated)
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

// CalculationSummaryData describes one calculation header.
type CalculationSummaryData struct {
	ID              string
	Name            string
	ReferenceNumber string
	ClientName      string
	Stage           string
	NextStages      []string
	OfferNumber     string
	Version         int
	HasFinal        bool
}

// CalculationSummary renders the header of one calculation with its stage
// actions.
func CalculationSummary(data CalculationSummaryData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.rawf(`<section class="calculation" id="calculation-%s" data-version="%s">`, data.ID, data.Version)
		h.raw(`<h2>`)
		h.text(data.Name)
		h.raw(`</h2><dl><dt>Reference</dt><dd>`)
		h.text(data.ReferenceNumber)
		h.raw(`</dd>`)
		if data.ClientName != "" {
			h.raw(`<dt>Client</dt><dd>`)
			h.text(data.ClientName)
			h.raw(`</dd>`)
		}
		if data.OfferNumber != "" {
			h.raw(`<dt>Offer</dt><dd class="offer-number">`)
			h.text(data.OfferNumber)
			h.raw(`</dd>`)
		}
		h.rawf(`<dt>Stage</dt><dd><span class="badge stage-%s">%s</span></dd></dl>`, data.Stage, data.Stage)

		if len(data.NextStages) > 0 {
			h.raw(`<div class="stage-actions">`)
			for _, s := range data.NextStages {
				h.rawf(`<button hx-post="/calculations/%s/stage" hx-vals='{"stage":"%s","version":%s}' hx-target="#calculation-%s" hx-swap="outerHTML">Move to %s</button>`,
					data.ID, s, data.Version, data.ID, s)
			}
			h.raw(`</div>`)
		}

		h.rawf(`<div class="exports"><a href="/calculations/%s/export/excel">Excel</a> <a href="/calculations/%s/export/pdf">PDF</a></div>`, data.ID, data.ID)
		h.rawf(`<div id="breakdown" hx-get="/calculations/%s/breakdown" hx-trigger="load"></div>`, data.ID)
		if data.HasFinal {
			h.rawf(`<div id="breakdown-final" hx-get="/calculations/%s/breakdown?mode=FINAL" hx-trigger="load"></div>`, data.ID)
		}
		h.raw(`</section>`)
		return h.err
	})
}
