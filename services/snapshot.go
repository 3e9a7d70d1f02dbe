package services

import (
	"errors"
	"fmt"

	"github.com/pocketbase/pocketbase/core"

	"installcost/costing"
	"installcost/observability"
)

var ErrNoFinalSnapshot = errors.New("calculation has no as-built snapshot yet")

// SnapshotOf returns the snapshot of doc edited in mode. Unlike
// Document.Snapshot, FINAL never falls back to the initial snapshot.
func SnapshotOf(doc costing.Document, mode costing.Mode) (costing.Calculation, error) {
	if mode == costing.ModeFinal {
		if doc.Final == nil {
			return costing.Calculation{}, ErrNoFinalSnapshot
		}
		return *doc.Final, nil
	}
	return doc.Initial, nil
}

// UpdateSnapshot applies fn to the snapshot of calculation id selected by
// mode and saves the result. Variant edits rejected by the engine are counted
// and leave the stored document untouched.
func UpdateSnapshot(app core.App, id string, mode costing.Mode, expectedVersion int, fn func(costing.Calculation) (costing.Calculation, error)) (*CalculationRecord, error) {
	return UpdateCalculation(app, id, expectedVersion, func(doc costing.Document) (costing.Document, error) {
		snap, err := SnapshotOf(doc, mode)
		if err != nil {
			return doc, err
		}
		updated, err := fn(snap)
		if err != nil {
			observability.ObserveVariantError(err)
			return doc, fmt.Errorf("calculation %s: %w", id, err)
		}
		if mode == costing.ModeFinal {
			doc.Final = &updated
		} else {
			doc.Initial = updated
		}
		return doc, nil
	})
}
