package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ApprovalData is the formatted verdict of an approval request.
type ApprovalData struct {
	Approved    bool
	Reasons     []string
	Cost        string
	Price       string
	Margin      string
	Stage       string
	OfferNumber string
}

// ApprovalVerdict renders the outcome of an approval request.
func ApprovalVerdict(data ApprovalData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		if data.Approved {
			h.raw(`<div class="approval approved"><h3>Approved</h3>`)
			if data.OfferNumber != "" {
				h.raw(`<p>Offer number <strong>`)
				h.text(data.OfferNumber)
				h.raw(`</strong></p>`)
			}
		} else {
			h.raw(`<div class="approval pending"><h3>Manual review required</h3><ul>`)
			for _, r := range data.Reasons {
				h.raw(`<li>`)
				h.text(r)
				h.raw(`</li>`)
			}
			h.raw(`</ul>`)
		}
		h.rawf(`<dl><dt>Cost</dt><dd>%s</dd><dt>Price</dt><dd>%s</dd><dt>Margin</dt><dd>%s</dd><dt>Stage</dt><dd>%s</dd></dl>`,
			data.Cost, data.Price, data.Margin, data.Stage)
		h.raw(`</div>`)
		return h.err
	})
}
