package services

import (
	"errors"
	"strings"
	"testing"

	"installcost/costing"
	"installcost/testhelpers"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to costing.Stage
		want     bool
	}{
		{costing.StageDraft, costing.StagePendingApproval, true},
		{costing.StageDraft, costing.StageApproved, false},
		{costing.StageDraft, costing.StageOpening, false},
		{costing.StagePendingApproval, costing.StageApproved, true},
		{costing.StagePendingApproval, costing.StageDraft, true},
		{costing.StageApproved, costing.StageOpening, true},
		{costing.StageApproved, costing.StageDraft, true},
		{costing.StageOpening, costing.StageFinal, true},
		{costing.StageOpening, costing.StageDraft, false},
		{costing.StageFinal, costing.StageArchived, true},
		{costing.StageArchived, costing.StageDraft, false},
		{costing.StageDraft, costing.StageDraft, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestNextStages_ReturnsCopy(t *testing.T) {
	next := NextStages(costing.StageDraft)
	next[0] = costing.StageArchived
	if NextStages(costing.StageDraft)[0] != costing.StagePendingApproval {
		t.Error("NextStages must not expose the transition table")
	}
	if len(NextStages(costing.StageArchived)) != 0 {
		t.Error("ARCHIVED is terminal")
	}
}

func TestTransitionDocument_OpeningCopiesInitial(t *testing.T) {
	doc := costing.Document{
		Initial: testhelpers.SimpleCalculation(2, 100),
		Stage:   costing.StageApproved,
	}

	got, err := TransitionDocument(doc, costing.StageOpening)
	if err != nil {
		t.Fatalf("TransitionDocument() error = %v", err)
	}
	if got.Stage != costing.StageOpening {
		t.Errorf("Stage = %q, want OPENING", got.Stage)
	}
	if got.Final == nil {
		t.Fatal("entering OPENING should create the as-built snapshot")
	}
	got.Final.Suppliers[0].Items[0].Name = "changed"
	if got.Initial.Suppliers[0].Items[0].Name == "changed" {
		t.Error("as-built snapshot must not share memory with the initial one")
	}
}

func TestTransitionDocument_KeepsExistingFinal(t *testing.T) {
	final := testhelpers.SimpleCalculation(9, 9)
	doc := costing.Document{
		Initial: testhelpers.SimpleCalculation(2, 100),
		Final:   &final,
		Stage:   costing.StageApproved,
	}
	got, err := TransitionDocument(doc, costing.StageOpening)
	if err != nil {
		t.Fatalf("TransitionDocument() error = %v", err)
	}
	if got.Final != &final {
		t.Error("an existing as-built snapshot must be kept")
	}
}

func TestTransitionDocument_Invalid(t *testing.T) {
	doc := costing.Document{Stage: costing.StageDraft}
	got, err := TransitionDocument(doc, costing.StageFinal)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if got.Stage != costing.StageDraft {
		t.Errorf("stage changed on a rejected transition: %q", got.Stage)
	}
}

func TestChangeStage(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := createStoredCalculation(t, app)

	if _, err := ChangeStage(app, rec.ID, costing.StageApproved, 1); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("DRAFT -> APPROVED: expected ErrInvalidTransition, got %v", err)
	}

	saved, err := ChangeStage(app, rec.ID, costing.StagePendingApproval, 1)
	if err != nil {
		t.Fatalf("ChangeStage(PENDING_APPROVAL) error = %v", err)
	}
	if saved.OfferNumber != "" {
		t.Errorf("OfferNumber = %q, want none before approval", saved.OfferNumber)
	}

	saved, err = ChangeStage(app, rec.ID, costing.StageApproved, 2)
	if err != nil {
		t.Fatalf("ChangeStage(APPROVED) error = %v", err)
	}
	if saved.Document.Stage != costing.StageApproved || saved.Document.Version != 3 {
		t.Errorf("got stage %s version %d, want APPROVED 3", saved.Document.Stage, saved.Document.Version)
	}
	if !strings.HasPrefix(saved.OfferNumber, "OF-WH-B-01-") {
		t.Errorf("OfferNumber = %q, want an OF-WH-B-01- number", saved.OfferNumber)
	}

	saved, err = ChangeStage(app, rec.ID, costing.StageOpening, 3)
	if err != nil {
		t.Fatalf("ChangeStage(OPENING) error = %v", err)
	}
	if saved.Document.Final == nil {
		t.Error("OPENING calculation should have an as-built snapshot")
	}

	if _, err := ChangeStage(app, rec.ID, costing.StageDraft, 4); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("OPENING -> DRAFT: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := ChangeStage(app, rec.ID, costing.StageFinal, 1); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("stale version: expected ErrVersionConflict, got %v", err)
	}
}

func TestChangeStage_ManualApprovalKeepsOfferNumber(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := createStoredCalculation(t, app)

	for _, stage := range []costing.Stage{costing.StagePendingApproval, costing.StageApproved} {
		if _, err := ChangeStage(app, rec.ID, stage, 0); err != nil {
			t.Fatalf("ChangeStage(%s) error = %v", stage, err)
		}
	}
	first, err := LoadCalculation(app, rec.ID)
	if err != nil {
		t.Fatalf("LoadCalculation() error = %v", err)
	}

	for _, stage := range []costing.Stage{costing.StageDraft, costing.StagePendingApproval, costing.StageApproved} {
		if _, err := ChangeStage(app, rec.ID, stage, 0); err != nil {
			t.Fatalf("ChangeStage(%s) error = %v", stage, err)
		}
	}
	again, err := LoadCalculation(app, rec.ID)
	if err != nil {
		t.Fatalf("LoadCalculation() error = %v", err)
	}
	if first.OfferNumber == "" || again.OfferNumber != first.OfferNumber {
		t.Errorf("offer number changed on re-approval: %q then %q", first.OfferNumber, again.OfferNumber)
	}
}
