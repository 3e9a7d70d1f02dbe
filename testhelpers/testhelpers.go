// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"installcost/collections"
	"installcost/costing"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// TestSettings are the settings test calculations are stored with.
func TestSettings() costing.Settings {
	return costing.Settings{
		ExchangeRate:  decimal.RequireFromString("4.3"),
		FeePercent:    decimal.RequireFromString("1.6"),
		TargetMargin:  decimal.NewFromInt(10),
		OfferCurrency: costing.CurrencyPLN,
	}
}

// SimpleCalculation is one domestic supplier with qty items at price, a
// transport item and an other cost, all in PLN.
func SimpleCalculation(qty, price int64) costing.Calculation {
	return costing.Calculation{
		Suppliers: []costing.Supplier{{
			ID:         "s1",
			Name:       "Racking Co",
			Currency:   costing.CurrencyPLN,
			IsIncluded: true,
			Items: []costing.SupplierItem{
				{ID: "i1", Name: "Upright frame", Quantity: decimal.NewFromInt(qty), UnitPrice: decimal.NewFromInt(price)},
			},
		}},
		Transport: []costing.TransportItem{
			{ID: "t1", Name: "Truck", SupplierID: "s1", TotalPrice: decimal.NewFromInt(200), Currency: costing.CurrencyPLN},
		},
		OtherCosts: []costing.OtherCost{
			{ID: "o1", Name: "Design", Price: decimal.NewFromInt(100), Currency: costing.CurrencyPLN},
		},
		Installation: costing.Installation{Stages: []costing.InstallationStage{}},
		PaymentTerms: costing.PaymentTerms{
			Advance1Percent:  decimal.NewFromInt(50),
			FinalPaymentDays: 14,
		},
	}
}

// CreateTestCalculation stores a DRAFT calculation at version 1 and returns
// the record.
func CreateTestCalculation(t *testing.T, app core.App, name, ref string, calc costing.Calculation) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("calculations")
	if err != nil {
		t.Fatalf("failed to find calculations collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("reference_number", ref)
	record.Set("stage", string(costing.StageDraft))
	record.Set("version", 1)
	record.Set("initial", costing.RecalculateExclusions(calc))
	record.Set("settings", TestSettings())

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test calculation: %v", err)
	}

	return record
}

// SetStage forces the stage of a stored calculation, bypassing lifecycle
// rules.
func SetStage(t *testing.T, app core.App, id string, stage costing.Stage) {
	t.Helper()

	record, err := app.FindRecordById("calculations", id)
	if err != nil {
		t.Fatalf("failed to find calculation %s: %v", id, err)
	}
	record.Set("stage", string(stage))
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to set stage: %v", err)
	}
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
