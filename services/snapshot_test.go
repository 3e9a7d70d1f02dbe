package services

import (
	"errors"
	"testing"

	"installcost/costing"
	"installcost/testhelpers"
)

func TestSnapshotOf(t *testing.T) {
	initial := testhelpers.SimpleCalculation(1, 1)
	doc := costing.Document{Initial: initial}

	if _, err := SnapshotOf(doc, costing.ModeFinal); !errors.Is(err, ErrNoFinalSnapshot) {
		t.Errorf("expected ErrNoFinalSnapshot, got %v", err)
	}
	got, err := SnapshotOf(doc, costing.ModeInitial)
	if err != nil || len(got.Suppliers) != 1 {
		t.Errorf("SnapshotOf(INITIAL) = %v, %v", got, err)
	}
}

func TestUpdateSnapshot_AddsVariant(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := createStoredCalculation(t, app)

	var added costing.Variant
	saved, err := UpdateSnapshot(app, rec.ID, costing.ModeInitial, 1, func(c costing.Calculation) (costing.Calculation, error) {
		out, v, err := costing.AddVariant(c, "Safety", "")
		added = v
		return out, err
	})
	if err != nil {
		t.Fatalf("UpdateSnapshot() error = %v", err)
	}
	if len(saved.Document.Initial.Variants) != 1 || saved.Document.Initial.Variants[0].ID != added.ID {
		t.Errorf("variant not stored: %+v", saved.Document.Initial.Variants)
	}
}

func TestUpdateSnapshot_CycleLeavesDocument(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	calc := testhelpers.SimpleCalculation(1, 1)
	calc.Variants = []costing.Variant{
		{ID: "a", Name: "A", Status: costing.StatusNeutral},
		{ID: "b", Name: "B", ParentID: "a", Status: costing.StatusNeutral},
	}
	rec, err := CreateCalculation(app, NewCalculation{Name: "Tree", ReferenceNumber: "T", Initial: calc}, testhelpers.TestSettings())
	if err != nil {
		t.Fatalf("CreateCalculation() error = %v", err)
	}

	_, err = UpdateSnapshot(app, rec.ID, costing.ModeInitial, 1, func(c costing.Calculation) (costing.Calculation, error) {
		return costing.MakeChild(c, "a", "b")
	})
	if !errors.Is(err, costing.ErrVariantCycle) {
		t.Fatalf("expected ErrVariantCycle, got %v", err)
	}

	reloaded, _ := LoadCalculation(app, rec.ID)
	if reloaded.Document.Version != 1 {
		t.Errorf("Version = %d, want 1", reloaded.Document.Version)
	}
	if reloaded.Document.Initial.Variants[0].ParentID != "" {
		t.Error("rejected move must not be stored")
	}
}

func TestUpdateSnapshot_FinalMode(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	rec := createStoredCalculation(t, app)

	_, err := UpdateSnapshot(app, rec.ID, costing.ModeFinal, 0, func(c costing.Calculation) (costing.Calculation, error) {
		return c, nil
	})
	if !errors.Is(err, ErrNoFinalSnapshot) {
		t.Fatalf("expected ErrNoFinalSnapshot before OPENING, got %v", err)
	}

	for _, stage := range []costing.Stage{costing.StagePendingApproval, costing.StageApproved, costing.StageOpening} {
		if _, err := ChangeStage(app, rec.ID, stage, 0); err != nil {
			t.Fatalf("ChangeStage(%s) error = %v", stage, err)
		}
	}

	saved, err := UpdateSnapshot(app, rec.ID, costing.ModeFinal, 0, func(c costing.Calculation) (costing.Calculation, error) {
		out, _, err := costing.AddVariant(c, "As-built option", "")
		return out, err
	})
	if err != nil {
		t.Fatalf("UpdateSnapshot(FINAL) error = %v", err)
	}
	if len(saved.Document.Final.Variants) != 1 {
		t.Errorf("final snapshot variants = %d, want 1", len(saved.Document.Final.Variants))
	}
	if len(saved.Document.Initial.Variants) != 0 {
		t.Error("editing the as-built snapshot must not touch the initial one")
	}
}
