package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"installcost/costing"
	"installcost/services"
	"installcost/templates"
)

// variantRequest carries every field a variant edit may need. JSON bodies,
// form posts and query strings are all accepted.
type variantRequest struct {
	Version  int                   `json:"version"`
	Name     *string               `json:"name"`
	ParentID string                `json:"parentId"`
	Status   costing.VariantStatus `json:"status"`
	Kind     costing.ItemKind      `json:"kind"`
	ItemID   string                `json:"itemId"`
}

func bindVariantRequest(e *core.RequestEvent) (variantRequest, error) {
	var req variantRequest
	if isJSON(e) {
		if err := e.BindBody(&req); err != nil {
			return req, badRequest("invalid JSON body: %v", err)
		}
		return req, nil
	}

	if err := e.Request.ParseForm(); err != nil {
		return req, badRequest("invalid form data")
	}
	v, err := formVersion(e)
	if err != nil {
		return req, err
	}
	req.Version = v
	if _, ok := e.Request.Form["name"]; ok {
		name := e.Request.FormValue("name")
		req.Name = &name
	}
	req.ParentID = e.Request.FormValue("parentId")
	req.Status = costing.VariantStatus(e.Request.FormValue("status"))
	req.Kind = costing.ItemKind(e.Request.FormValue("kind"))
	req.ItemID = e.Request.FormValue("itemId")
	return req, nil
}

// buildVariantTree flattens the variant forest depth first, roots and
// siblings in stored order.
func buildVariantTree(calc costing.Calculation) []templates.VariantNode {
	children := make(map[string][]costing.Variant)
	known := make(map[string]bool, len(calc.Variants))
	for _, v := range calc.Variants {
		known[v.ID] = true
	}
	for _, v := range calc.Variants {
		parent := v.ParentID
		if !known[parent] {
			parent = ""
		}
		children[parent] = append(children[parent], v)
	}

	nodes := make([]templates.VariantNode, 0, len(calc.Variants))
	visited := make(map[string]bool, len(calc.Variants))
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		for _, v := range children[parent] {
			if visited[v.ID] {
				continue
			}
			visited[v.ID] = true
			nodes = append(nodes, templates.VariantNode{
				ID:        v.ID,
				Name:      v.Name,
				Status:    string(v.Status),
				Depth:     depth,
				ItemCount: len(v.Items),
				Subtree:   len(costing.Descendants(calc, v.ID)),
			})
			walk(v.ID, depth+1)
		}
	}
	walk("", 0)
	return nodes
}

// renderVariants answers with the variant tree for HTMX callers and with the
// snapshot's variants otherwise.
func renderVariants(e *core.RequestEvent, status int, rec *services.CalculationRecord, mode costing.Mode, extra map[string]any) error {
	snap, err := services.SnapshotOf(rec.Document, mode)
	if err != nil {
		return respondError(e, "variants", err)
	}

	if isHTMX(e) {
		if status != http.StatusOK {
			e.Response.WriteHeader(status)
		}
		return templates.VariantTree(templates.VariantTreeData{
			CalculationID: rec.ID,
			Mode:          string(mode),
			Version:       rec.Document.Version,
			Nodes:         buildVariantTree(snap),
		}).Render(e.Request.Context(), e.Response)
	}

	body := map[string]any{
		"mode":     mode,
		"version":  rec.Document.Version,
		"variants": snap.Variants,
	}
	for k, v := range extra {
		body[k] = v
	}
	return e.JSON(status, body)
}

// editVariants runs one variant edit against the snapshot chosen by ?mode.
func editVariants(app *pocketbase.PocketBase, e *core.RequestEvent, component string, edit func(variantRequest, costing.Calculation) (costing.Calculation, error)) error {
	mode, err := parseMode(e)
	if err != nil {
		return respondError(e, component, err)
	}
	req, err := bindVariantRequest(e)
	if err != nil {
		return respondError(e, component, err)
	}

	rec, err := services.UpdateSnapshot(app, e.Request.PathValue("id"), mode, req.Version,
		func(calc costing.Calculation) (costing.Calculation, error) {
			return edit(req, calc)
		})
	if err != nil {
		return respondError(e, component, err)
	}
	if isHTMX(e) {
		TriggerCalculationChanged(e, rec.ID, rec.Document.Version)
	}
	return renderVariants(e, http.StatusOK, rec, mode, nil)
}

// HandleVariantTree returns the variants of one snapshot.
// Route: GET /calculations/{id}/variants?mode=
func HandleVariantTree(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode, err := parseMode(e)
		if err != nil {
			return respondError(e, "variant_tree", err)
		}
		rec, err := services.LoadCalculation(app, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "variant_tree", err)
		}
		return renderVariants(e, http.StatusOK, rec, mode, nil)
	}
}

// HandleVariantCreate adds a neutral variant, below parentId when given.
// Route: POST /calculations/{id}/variants
func HandleVariantCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		mode, err := parseMode(e)
		if err != nil {
			return respondError(e, "variant_create", err)
		}
		req, err := bindVariantRequest(e)
		if err != nil {
			return respondError(e, "variant_create", err)
		}
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
			return respondError(e, "variant_create", badRequest("variant name is required"))
		}

		var created costing.Variant
		rec, err := services.UpdateSnapshot(app, e.Request.PathValue("id"), mode, req.Version,
			func(calc costing.Calculation) (costing.Calculation, error) {
				out, v, err := costing.AddVariant(calc, *req.Name, req.ParentID)
				created = v
				return out, err
			})
		if err != nil {
			return respondError(e, "variant_create", err)
		}
		if isHTMX(e) {
			SetToast(e, "success", "Variant added")
			TriggerCalculationChanged(e, rec.ID, rec.Document.Version)
		}
		return renderVariants(e, http.StatusCreated, rec, mode, map[string]any{"variant": created})
	}
}

// HandleVariantUpdate renames a variant and/or sets its status. Setting the
// status a variant already has resets it to NEUTRAL.
// Route: PATCH /calculations/{id}/variants/{variantId}
func HandleVariantUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		variantID := e.Request.PathValue("variantId")
		return editVariants(app, e, "variant_update", func(req variantRequest, calc costing.Calculation) (costing.Calculation, error) {
			if req.Name == nil && req.Status == "" {
				return calc, badRequest("nothing to update")
			}
			var err error
			if req.Name != nil {
				if strings.TrimSpace(*req.Name) == "" {
					return calc, badRequest("variant name is required")
				}
				if calc, err = costing.RenameVariant(calc, variantID, *req.Name); err != nil {
					return calc, err
				}
			}
			if req.Status != "" {
				if calc, err = costing.SetVariantStatus(calc, variantID, req.Status); err != nil {
					return calc, err
				}
			}
			return calc, nil
		})
	}
}

// HandleVariantDelete removes a variant together with its descendants.
// Route: DELETE /calculations/{id}/variants/{variantId}?version=
func HandleVariantDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		variantID := e.Request.PathValue("variantId")
		return editVariants(app, e, "variant_delete", func(_ variantRequest, calc costing.Calculation) (costing.Calculation, error) {
			return costing.RemoveVariant(calc, variantID)
		})
	}
}

// HandleVariantMove re-parents a variant. An empty parentId makes it a root.
// Route: POST /calculations/{id}/variants/{variantId}/parent
func HandleVariantMove(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		variantID := e.Request.PathValue("variantId")
		return editVariants(app, e, "variant_move", func(req variantRequest, calc costing.Calculation) (costing.Calculation, error) {
			if req.ParentID == "" {
				return costing.MakeRoot(calc, variantID)
			}
			return costing.MakeChild(calc, variantID, req.ParentID)
		})
	}
}

// HandleVariantSolo includes one variant and neutralizes all others.
// Route: POST /calculations/{id}/variants/{variantId}/solo
func HandleVariantSolo(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		variantID := e.Request.PathValue("variantId")
		return editVariants(app, e, "variant_solo", func(_ variantRequest, calc costing.Calculation) (costing.Calculation, error) {
			return costing.SoloVariant(calc, variantID)
		})
	}
}

// HandleVariantItemAdd references a line item from a variant.
// Route: POST /calculations/{id}/variants/{variantId}/items
func HandleVariantItemAdd(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		variantID := e.Request.PathValue("variantId")
		return editVariants(app, e, "variant_item_add", func(req variantRequest, calc costing.Calculation) (costing.Calculation, error) {
			return costing.AddVariantItem(calc, variantID, costing.VariantItem{Kind: req.Kind, ItemID: req.ItemID})
		})
	}
}

// HandleVariantItemRemove drops a line item reference from a variant.
// Route: DELETE /calculations/{id}/variants/{variantId}/items?kind=&itemId=&version=
func HandleVariantItemRemove(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		variantID := e.Request.PathValue("variantId")
		return editVariants(app, e, "variant_item_remove", func(req variantRequest, calc costing.Calculation) (costing.Calculation, error) {
			return costing.RemoveVariantItem(calc, variantID, costing.VariantItem{Kind: req.Kind, ItemID: req.ItemID})
		})
	}
}
