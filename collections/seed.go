package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"installcost/costing"
)

// ── Definition structs ───────────────────────────────────────────────────

type itemDef struct {
	id        string
	name      string
	qty       int64
	unitPrice string
	minutes   int64
}

type supplierDef struct {
	id          string
	name        string
	currency    costing.Currency
	discount    int64
	feeEligible bool
	items       []itemDef
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// demoCalculation is a warehouse racking project: two suppliers, freight,
// two installation stages and one what-if variant tree.
func demoCalculation() costing.Calculation {
	supplierDefs := []supplierDef{
		{
			id: "sup-racking", name: "Nordic Racking AB", currency: costing.CurrencyEUR, discount: 5, feeEligible: true,
			items: []itemDef{
				{"rk-frame", "Upright frame 6000 mm", 48, "212.40", 25},
				{"rk-beam", "Pallet beam 2700 mm", 192, "38.90", 6},
				{"rk-deck", "Wire mesh deck", 96, "21.15", 2},
			},
		},
		{
			id: "sup-safety", name: "Bezpieczny Magazyn Sp. z o.o.", currency: costing.CurrencyPLN,
			items: []itemDef{
				{"sf-guard", "Column guard", 24, "145.00", 5},
				{"sf-net", "Anti-collapse mesh (m2)", 120, "89.00", 3},
			},
		},
	}

	var suppliers []costing.Supplier
	for _, sd := range supplierDefs {
		s := costing.Supplier{
			ID:          sd.id,
			Name:        sd.name,
			Currency:    sd.currency,
			Discount:    decimal.NewFromInt(sd.discount),
			FeeEligible: sd.feeEligible,
			IsIncluded:  true,
		}
		for _, it := range sd.items {
			s.Items = append(s.Items, costing.SupplierItem{
				ID:          it.id,
				Name:        it.name,
				Quantity:    decimal.NewFromInt(it.qty),
				UnitPrice:   dec(it.unitPrice),
				TimeMinutes: decimal.NewFromInt(it.minutes),
			})
		}
		suppliers = append(suppliers, s)
	}

	return costing.Calculation{
		Suppliers: suppliers,
		Transport: []costing.TransportItem{
			{ID: "tr-truck", Name: "Full truck load Gothenburg - Poznan", SupplierID: "sup-racking", TotalPrice: dec("1450"), Currency: costing.CurrencyEUR},
			{ID: "tr-courier", Name: "Courier, safety accessories", SupplierID: "sup-safety", TotalPrice: dec("380"), Currency: costing.CurrencyPLN},
		},
		OtherCosts: []costing.OtherCost{
			{ID: "oc-design", Name: "Load calculation and layout", Price: dec("2400"), Currency: costing.CurrencyPLN},
			{ID: "oc-inspection", Name: "Post-install inspection", Price: dec("900"), Currency: costing.CurrencyPLN},
		},
		Installation: costing.Installation{
			Stages: []costing.InstallationStage{
				{
					ID:                "st-racking",
					Name:              "Racking assembly",
					Method:            costing.MethodBoth,
					PalletSpots:       decimal.NewFromInt(384),
					PricePerSpot:      dec("6.50"),
					LinkedSupplierIDs: []string{"sup-racking"},
					WorkDayHours:      decimal.NewFromInt(8),
					InstallerCount:    4,
					ManDayRate:        dec("520"),
					Equipment: costing.Equipment{
						ScissorLiftDailyRate: dec("310"),
						ScissorLiftDays:      decimal.NewFromInt(4),
						ScissorLiftTransport: dec("450"),
					},
					CustomItems: []costing.StageItem{
						{ID: "ci-anchors", Name: "Chemical anchors", Quantity: decimal.NewFromInt(96), UnitPrice: dec("7.80")},
					},
				},
				{
					ID:                "st-safety",
					Name:              "Safety accessories",
					Method:            costing.MethodTime,
					LinkedSupplierIDs: []string{"sup-safety"},
					ManualLaborHours:  decimal.NewFromInt(4),
					WorkDayHours:      decimal.NewFromInt(8),
					InstallerCount:    2,
					ManDayRate:        dec("520"),
				},
			},
		},
		PaymentTerms: costing.PaymentTerms{
			Advance1Percent:  decimal.NewFromInt(30),
			Advance2Percent:  decimal.NewFromInt(30),
			FinalPaymentDays: 30,
		},
		NameplateQuantity: decimal.NewFromInt(16),
		Variants: []costing.Variant{
			{ID: "var-safety", Name: "Safety package", Status: costing.StatusNeutral, Items: []costing.VariantItem{
				{Kind: costing.KindSupplierGroup, ItemID: "sup-safety"},
				{Kind: costing.KindStage, ItemID: "st-safety"},
				{Kind: costing.KindTransport, ItemID: "tr-courier"},
			}},
			{ID: "var-mesh", Name: "Anti-collapse mesh", ParentID: "var-safety", Status: costing.StatusNeutral, Items: []costing.VariantItem{
				{Kind: costing.KindSupplierItem, ItemID: "sf-net"},
			}},
			{ID: "var-inspection", Name: "Inspection", Status: costing.StatusNeutral, Items: []costing.VariantItem{
				{Kind: costing.KindOtherCost, ItemID: "oc-inspection"},
			}},
		},
	}
}

// Seed inserts one demo calculation. It is safe to call on every startup
// because it returns early if any calculation already exists.
func Seed(app core.App, settings costing.Settings) error {
	col, err := app.FindCollectionByNameOrId("calculations")
	if err != nil {
		return fmt.Errorf("seed: could not find calculations collection: %w", err)
	}
	existing, err := app.FindAllRecords(col)
	if err != nil {
		return fmt.Errorf("seed: could not query calculations: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: calculations collection is empty, inserting demo calculation")

	doc := costing.Document{
		Initial:  demoCalculation(),
		Stage:    costing.StageDraft,
		Settings: settings,
		Version:  1,
	}.Recalculate()

	r := core.NewRecord(col)
	r.Set("name", "Warehouse racking, Hall B")
	r.Set("reference_number", "WH-B-01")
	r.Set("client_name", "Logistyka Zachód S.A.")
	r.Set("stage", string(doc.Stage))
	r.Set("version", doc.Version)
	r.Set("initial", doc.Initial)
	r.Set("final", doc.Final)
	r.Set("settings", doc.Settings)
	if err := app.Save(r); err != nil {
		return fmt.Errorf("seed: save calculation: %w", err)
	}

	log.Printf("seed: created calculation %s", r.Id)
	return nil
}
