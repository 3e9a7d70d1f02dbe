package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"installcost/costing"
)

var ErrInvalidTransition = errors.New("invalid stage transition")

// stageTransitions lists the stages reachable from each stage. APPROVED is
// entered from DRAFT only through RequestApproval; PENDING_APPROVAL to
// APPROVED is the manual review.
var stageTransitions = map[costing.Stage][]costing.Stage{
	costing.StageDraft:           {costing.StagePendingApproval},
	costing.StagePendingApproval: {costing.StageApproved, costing.StageDraft},
	costing.StageApproved:        {costing.StageOpening, costing.StageDraft},
	costing.StageOpening:         {costing.StageFinal},
	costing.StageFinal:           {costing.StageArchived},
}

// CanTransition reports whether a calculation may move from one stage to
// another.
func CanTransition(from, to costing.Stage) bool {
	for _, s := range stageTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStages returns the stages reachable from stage.
func NextStages(stage costing.Stage) []costing.Stage {
	return append([]costing.Stage(nil), stageTransitions[stage]...)
}

// TransitionDocument moves doc to stage to. Entering OPENING starts the
// as-built snapshot as a copy of the initial one unless one already exists.
func TransitionDocument(doc costing.Document, to costing.Stage) (costing.Document, error) {
	if !CanTransition(doc.Stage, to) {
		return doc, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, doc.Stage, to)
	}
	if to == costing.StageOpening && doc.Final == nil {
		final := doc.Initial.Clone()
		doc.Final = &final
	}
	doc.Stage = to
	return doc, nil
}

// ChangeStage applies a lifecycle transition to a stored calculation. A
// manual approval assigns the offer number when the calculation has none.
func ChangeStage(app core.App, id string, to costing.Stage, expectedVersion int) (*CalculationRecord, error) {
	var saved *CalculationRecord
	err := app.RunInTransaction(func(txApp core.App) error {
		var err error
		saved, err = saveInTx(txApp, id, expectedVersion, func(current *CalculationRecord) (costing.Document, error) {
			return TransitionDocument(current.Document, to)
		})
		if err != nil {
			return err
		}
		if to != costing.StageApproved || saved.OfferNumber != "" {
			return nil
		}
		offerNumber, err := GenerateOfferNumber(txApp, saved.ReferenceNumber, time.Now())
		if err != nil {
			return err
		}
		return setOfferNumber(txApp, saved, offerNumber)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("lifecycle: calculation %s moved to %s", id, to)
	return saved, nil
}
