package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"installcost/costing"
	"installcost/services"
	"installcost/templates"
)

// HandleApprovalRequest evaluates the auto-approval rules and moves the
// calculation to APPROVED or PENDING_APPROVAL.
// Route: POST /calculations/{id}/approval
func HandleApprovalRequest(app *pocketbase.PocketBase, rules costing.ApprovalRules) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		out, err := services.RequestApproval(app, e.Request.PathValue("id"), rules, time.Now())
		if err != nil {
			return respondError(e, "approval", err)
		}

		if !isHTMX(e) {
			return e.JSON(http.StatusOK, out)
		}

		res := out.Result
		TriggerCalculationChanged(e, out.Calculation.ID, out.Calculation.Document.Version)
		if res.Approved {
			SetToast(e, "success", "Offer "+out.Calculation.OfferNumber+" approved")
		} else {
			SetToast(e, "warning", "Sent for manual review")
		}
		return templates.ApprovalVerdict(templates.ApprovalData{
			Approved:    res.Approved,
			Reasons:     res.Reasons,
			Cost:        services.FormatMoney(res.Cost, res.Currency),
			Price:       services.FormatMoney(res.Price, res.Currency),
			Margin:      services.FormatPercent(res.Margin),
			Stage:       string(out.Calculation.Document.Stage),
			OfferNumber: out.Calculation.OfferNumber,
		}).Render(e.Request.Context(), e.Response)
	}
}

// HandleApprovalHistory lists the approval evaluations of a calculation,
// newest first.
// Route: GET /calculations/{id}/approvals
func HandleApprovalHistory(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		if _, err := services.LoadCalculation(app, id); err != nil {
			return respondError(e, "approval_history", err)
		}
		records, err := services.ListApprovalRequests(app, id)
		if err != nil {
			return respondError(e, "approval_history", err)
		}
		return e.JSON(http.StatusOK, records)
	}
}
