package services

import (
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"installcost/costing"
	"installcost/observability"
)

// ApprovalRequestsCollection keeps one record per approval evaluation.
const ApprovalRequestsCollection = "approval_requests"

// ApprovalOutcome is the result of RequestApproval.
type ApprovalOutcome struct {
	Result      costing.ApprovalResult `json:"result"`
	RequestID   string                 `json:"requestId"`
	Calculation *CalculationRecord     `json:"calculation"`
}

// RequestApproval evaluates the auto-approval rules for calculation id and
// records the verdict. An approved calculation moves to APPROVED and gets an
// offer number; otherwise it waits in PENDING_APPROVAL for manual review.
func RequestApproval(app core.App, id string, rules costing.ApprovalRules, now time.Time) (*ApprovalOutcome, error) {
	out := &ApprovalOutcome{}

	err := app.RunInTransaction(func(txApp core.App) error {
		current, err := LoadCalculation(txApp, id)
		if err != nil {
			return err
		}
		stage := current.Document.Stage
		if stage != costing.StageDraft && stage != costing.StagePendingApproval {
			return fmt.Errorf("%w: approval cannot be requested in %s", ErrInvalidTransition, stage)
		}

		res := current.Document.Approval(rules)
		observability.ObserveApproval(res)
		out.Result = res

		requestID, err := saveApprovalRequest(txApp, current, res)
		if err != nil {
			return err
		}
		out.RequestID = requestID

		offerNumber := ""
		if res.Approved && current.OfferNumber == "" {
			offerNumber, err = GenerateOfferNumber(txApp, current.ReferenceNumber, now)
			if err != nil {
				return err
			}
		}

		saved, err := saveInTx(txApp, id, current.Document.Version, func(c *CalculationRecord) (costing.Document, error) {
			doc := c.Document
			target := costing.StagePendingApproval
			if res.Approved {
				target = costing.StageApproved
			}
			// The rules verdict gates DRAFT to APPROVED, which the
			// generic transition table does not offer.
			doc.Stage = target
			return doc, nil
		})
		if err != nil {
			return err
		}

		if offerNumber != "" {
			if err := setOfferNumber(txApp, saved, offerNumber); err != nil {
				return err
			}
		}
		out.Calculation = saved
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("approval: calculation %s approved=%v reasons=%d", id, out.Result.Approved, len(out.Result.Reasons))
	return out, nil
}

// setOfferNumber stores offerNumber on the calculation saved.
func setOfferNumber(txApp core.App, saved *CalculationRecord, offerNumber string) error {
	record, err := txApp.FindRecordById(CalculationsCollection, saved.ID)
	if err != nil {
		return fmt.Errorf("reload calculation %s: %w", saved.ID, err)
	}
	record.Set("offer_number", offerNumber)
	if err := txApp.Save(record); err != nil {
		return fmt.Errorf("save offer number: %w", err)
	}
	saved.OfferNumber = offerNumber
	return nil
}

// saveApprovalRequest stores the verdict of one evaluation.
func saveApprovalRequest(txApp core.App, calc *CalculationRecord, res costing.ApprovalResult) (string, error) {
	col, err := txApp.FindCollectionByNameOrId(ApprovalRequestsCollection)
	if err != nil {
		return "", fmt.Errorf("find approval_requests collection: %w", err)
	}

	record := core.NewRecord(col)
	record.Set("calculation", calc.ID)
	record.Set("version", calc.Document.Version)
	record.Set("approved", res.Approved)
	record.Set("reasons", res.Reasons)
	record.Set("violations", res.Violations)
	record.Set("cost", res.Cost.InexactFloat64())
	record.Set("price", res.Price.InexactFloat64())
	record.Set("margin", res.Margin.InexactFloat64())
	record.Set("currency", string(res.Currency))

	if err := txApp.Save(record); err != nil {
		return "", fmt.Errorf("save approval request: %w", err)
	}
	return record.Id, nil
}

// ListApprovalRequests returns the approval history of a calculation, newest
// first.
func ListApprovalRequests(app core.App, calculationID string) ([]*core.Record, error) {
	records, err := app.FindRecordsByFilter(
		ApprovalRequestsCollection,
		"calculation = {:id}",
		"-created",
		0,
		0,
		map[string]any{"id": calculationID},
	)
	if err != nil {
		return nil, fmt.Errorf("list approval requests: %w", err)
	}
	return records, nil
}
