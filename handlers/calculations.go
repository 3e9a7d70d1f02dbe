package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"installcost/costing"
	"installcost/services"
	"installcost/templates"
)

// isJSON reports whether the request carries a JSON body.
func isJSON(e *core.RequestEvent) bool {
	return strings.HasPrefix(e.Request.Header.Get("Content-Type"), "application/json")
}

// formVersion reads the optional "version" form or query value.
func formVersion(e *core.RequestEvent) (int, error) {
	raw := strings.TrimSpace(e.Request.FormValue("version"))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, badRequest("invalid version %q", raw)
	}
	return v, nil
}

// calculationResponse is the JSON shape of one calculation.
type calculationResponse struct {
	*services.CalculationRecord
	NextStages []costing.Stage `json:"nextStages"`
}

func newCalculationResponse(rec *services.CalculationRecord) calculationResponse {
	return calculationResponse{CalculationRecord: rec, NextStages: services.NextStages(rec.Document.Stage)}
}

func summaryData(rec *services.CalculationRecord) templates.CalculationSummaryData {
	next := services.NextStages(rec.Document.Stage)
	stages := make([]string, len(next))
	for i, s := range next {
		stages[i] = string(s)
	}
	return templates.CalculationSummaryData{
		ID:              rec.ID,
		Name:            rec.Name,
		ReferenceNumber: rec.ReferenceNumber,
		ClientName:      rec.ClientName,
		Stage:           string(rec.Document.Stage),
		NextStages:      stages,
		OfferNumber:     rec.OfferNumber,
		Version:         rec.Document.Version,
		HasFinal:        rec.Document.Final != nil,
	}
}

// HandleCalculationList lists every calculation.
// Route: GET /calculations
func HandleCalculationList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		list, err := services.ListCalculations(app)
		if err != nil {
			return respondError(e, "calculation_list", err)
		}

		if !isHTMX(e) {
			return e.JSON(http.StatusOK, list)
		}

		items := make([]templates.CalculationListItem, len(list))
		for i, c := range list {
			items[i] = templates.CalculationListItem{
				ID:              c.ID,
				Name:            c.Name,
				ReferenceNumber: c.ReferenceNumber,
				ClientName:      c.ClientName,
				Stage:           string(c.Document.Stage),
				OfferNumber:     c.OfferNumber,
				Updated:         c.Updated,
			}
		}
		return templates.CalculationList(items).Render(e.Request.Context(), e.Response)
	}
}

// HandleCalculationCreate stores a new DRAFT calculation with the configured
// default settings. JSON bodies may carry an initial snapshot; form posts
// start empty.
// Route: POST /calculations
func HandleCalculationCreate(app *pocketbase.PocketBase, defaults costing.Settings) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var in services.NewCalculation
		if isJSON(e) {
			if err := e.BindBody(&in); err != nil {
				return respondError(e, "calculation_create", badRequest("invalid JSON body: %v", err))
			}
		} else {
			if err := e.Request.ParseForm(); err != nil {
				return respondError(e, "calculation_create", badRequest("invalid form data"))
			}
			in.Name = e.Request.FormValue("name")
			in.ReferenceNumber = e.Request.FormValue("reference_number")
			in.ClientName = e.Request.FormValue("client_name")
		}

		if strings.TrimSpace(in.Name) == "" {
			return respondError(e, "calculation_create", badRequest("name is required"))
		}
		if strings.TrimSpace(in.ReferenceNumber) == "" {
			return respondError(e, "calculation_create", badRequest("reference number is required"))
		}

		rec, err := services.CreateCalculation(app, in, defaults)
		if err != nil {
			return respondError(e, "calculation_create", err)
		}

		if isHTMX(e) {
			SetToast(e, "success", "Calculation created")
			e.Response.WriteHeader(http.StatusCreated)
			return templates.CalculationSummary(summaryData(rec)).Render(e.Request.Context(), e.Response)
		}
		return e.JSON(http.StatusCreated, newCalculationResponse(rec))
	}
}

// HandleCalculationView returns one calculation.
// Route: GET /calculations/{id}
func HandleCalculationView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := services.LoadCalculation(app, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "calculation_view", err)
		}
		if isHTMX(e) {
			return templates.CalculationSummary(summaryData(rec)).Render(e.Request.Context(), e.Response)
		}
		return e.JSON(http.StatusOK, newCalculationResponse(rec))
	}
}

// snapshotRequest replaces the snapshots and optionally the settings of a
// calculation.
type snapshotRequest struct {
	Version  int                  `json:"version"`
	Initial  costing.Calculation  `json:"initial"`
	Final    *costing.Calculation `json:"final"`
	Settings *costing.Settings    `json:"settings"`
}

// HandleSnapshotSave replaces the stored snapshots when the client's version
// is still current.
// Route: PUT /calculations/{id}/snapshot
func HandleSnapshotSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		var req snapshotRequest
		if err := e.BindBody(&req); err != nil {
			return respondError(e, "snapshot_save", badRequest("invalid JSON body: %v", err))
		}
		if req.Version <= 0 {
			return respondError(e, "snapshot_save", badRequest("version is required"))
		}
		if req.Settings != nil && req.Settings.OfferCurrency != "" && !req.Settings.OfferCurrency.Valid() {
			return respondError(e, "snapshot_save", badRequest("unknown offer currency %q", req.Settings.OfferCurrency))
		}

		current, err := services.LoadCalculation(app, id)
		if err != nil {
			return respondError(e, "snapshot_save", err)
		}

		doc := current.Document
		doc.Initial = req.Initial
		if req.Final != nil {
			doc.Final = req.Final
		}
		if req.Settings != nil {
			doc.Settings = *req.Settings
		}

		saved, err := services.SaveCalculation(app, id, doc, req.Version)
		if err != nil {
			return respondError(e, "snapshot_save", err)
		}
		return e.JSON(http.StatusOK, newCalculationResponse(saved))
	}
}

// stageRequest asks for a lifecycle transition.
type stageRequest struct {
	Stage   costing.Stage `json:"stage"`
	Version int           `json:"version"`
}

// HandleStageChange moves a calculation to another lifecycle stage.
// Route: POST /calculations/{id}/stage
func HandleStageChange(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")

		var req stageRequest
		if isJSON(e) {
			if err := e.BindBody(&req); err != nil {
				return respondError(e, "stage_change", badRequest("invalid JSON body: %v", err))
			}
		} else {
			if err := e.Request.ParseForm(); err != nil {
				return respondError(e, "stage_change", badRequest("invalid form data"))
			}
			req.Stage = costing.Stage(e.Request.FormValue("stage"))
			v, err := formVersion(e)
			if err != nil {
				return respondError(e, "stage_change", err)
			}
			req.Version = v
		}
		if req.Stage == "" {
			return respondError(e, "stage_change", badRequest("stage is required"))
		}

		saved, err := services.ChangeStage(app, id, req.Stage, req.Version)
		if err != nil {
			return respondError(e, "stage_change", err)
		}

		if isHTMX(e) {
			SetToast(e, "success", "Moved to "+string(saved.Document.Stage))
			TriggerCalculationChanged(e, saved.ID, saved.Document.Version)
			return templates.CalculationSummary(summaryData(saved)).Render(e.Request.Context(), e.Response)
		}
		return e.JSON(http.StatusOK, newCalculationResponse(saved))
	}
}
