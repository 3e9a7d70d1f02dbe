package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// VariantNode is one variant placed in the tree. Depth 0 is a root.
type VariantNode struct {
	ID        string
	Name      string
	Status    string
	Depth     int
	ItemCount int
	// Subtree counts the variants below this one, removed with it.
	Subtree int
}

// VariantTreeData is the variant forest of one calculation snapshot.
type VariantTreeData struct {
	CalculationID string
	Mode          string
	Version       int
	Nodes         []VariantNode
}

var variantStatuses = []string{"NEUTRAL", "INCLUDED", "EXCLUDED"}

// VariantTree renders the variant forest with status toggles.
func VariantTree(data VariantTreeData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.rawf(`<ul class="variant-tree" id="variants-%s" data-version="%s">`, data.CalculationID, data.Version)
		if len(data.Nodes) == 0 {
			h.raw(`<li class="empty">No variants</li>`)
		}
		for _, n := range data.Nodes {
			h.rawf(`<li class="variant status-%s" style="margin-left:%srem" id="variant-%s">`, n.Status, strconv.Itoa(n.Depth*2), n.ID)
			h.raw(`<span class="name">`)
			h.text(n.Name)
			h.rawf(`</span> <small>%s items</small>`, n.ItemCount)
			for _, s := range variantStatuses {
				active := ""
				if s == n.Status {
					active = " active"
				}
				h.rawf(`<button class="status%s" hx-patch="/calculations/%s/variants/%s?mode=%s" hx-vals='{"status":"%s","version":%s}' hx-target="#variants-%s" hx-swap="outerHTML">%s</button>`,
					active, data.CalculationID, n.ID, data.Mode, s, data.Version, data.CalculationID, s)
			}
			h.rawf(`<button hx-post="/calculations/%s/variants/%s/solo?mode=%s" hx-vals='{"version":%s}' hx-target="#variants-%s" hx-swap="outerHTML">Solo</button>`,
				data.CalculationID, n.ID, data.Mode, data.Version, data.CalculationID)
			h.rawf(`<button class="delete" hx-delete="/calculations/%s/variants/%s?mode=%s&amp;version=%s" hx-target="#variants-%s" hx-swap="outerHTML" hx-confirm="%s">Delete</button>`,
				data.CalculationID, n.ID, data.Mode, data.Version, data.CalculationID, deleteConfirm(n))
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
		return h.err
	})
}

func deleteConfirm(n VariantNode) string {
	switch n.Subtree {
	case 0:
		return "Delete " + n.Name + "?"
	case 1:
		return "Delete " + n.Name + " and 1 sub-variant?"
	}
	return "Delete " + n.Name + " and " + strconv.Itoa(n.Subtree) + " sub-variants?"
}
