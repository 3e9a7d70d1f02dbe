package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"installcost/costing"
)

// ExportRow is one line of a breakdown export: a category total (level 0)
// or one of its positions (level 1).
type ExportRow struct {
	Level       int             `json:"level"`
	Index       string          `json:"index"` // "1", "1.1", ...
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Excluded    bool            `json:"excluded"`
}

// ExportData holds everything the Excel and PDF exports render.
type ExportData struct {
	Title           string
	ReferenceNumber string
	OfferNumber     string
	Stage           costing.Stage
	Mode            costing.Mode
	Currency        costing.Currency
	CreatedDate     string
	Rows            []ExportRow
	Breakdown       costing.CostBreakdown
	Price           decimal.Decimal
	Margin          decimal.Decimal
}

// BuildBreakdownExport prices the snapshot of calc for mode in currency and
// lays the result out as export rows.
func BuildBreakdownExport(calc *CalculationRecord, mode costing.Mode, currency costing.Currency, now time.Time) ExportData {
	doc := calc.Document
	if currency == "" {
		currency = doc.Settings.OfferCurrency
	}
	if currency == "" {
		currency = costing.DomesticCurrency
	}
	if mode == "" {
		mode = costing.ModeInitial
	}

	breakdown := doc.Breakdown(mode, currency)
	price, margin := costing.FinalPrice(breakdown.Total, doc.Settings.TargetMargin, doc.Settings.ManualPrice)

	snap := doc.Snapshot(mode)
	opts := costing.CostOptions{
		Rate:           doc.Settings.ExchangeRate,
		TargetCurrency: currency,
		Mode:           mode,
		FeePercent:     doc.Settings.FeePercent,
	}

	data := ExportData{
		Title:           calc.Name,
		ReferenceNumber: calc.ReferenceNumber,
		OfferNumber:     calc.OfferNumber,
		Stage:           doc.Stage,
		Mode:            mode,
		Currency:        currency,
		CreatedDate:     now.Format("02 Jan 2006"),
		Breakdown:       breakdown,
		Price:           price,
		Margin:          margin,
	}

	data.Rows = append(data.Rows, ExportRow{Level: 0, Index: "1", Description: "Suppliers", Amount: breakdown.Suppliers.Add(breakdown.Fee)})
	n := 0
	for _, s := range snap.Suppliers {
		if !s.IsIncluded {
			continue
		}
		n++
		one := costing.Calculation{Suppliers: []costing.Supplier{s}}
		b := costing.CalculateProjectCosts(one, opts)
		data.Rows = append(data.Rows, ExportRow{Level: 1, Index: subIndex(1, n), Description: s.Name, Amount: b.Suppliers.Add(b.Fee)})
	}
	if snap.NameplateQuantity.IsPositive() {
		n++
		nameplates := costing.NameplateUnitCost.Mul(snap.NameplateQuantity)
		nameplates = costing.Convert(nameplates, costing.DomesticCurrency, currency, doc.Settings.ExchangeRate)
		data.Rows = append(data.Rows, ExportRow{Level: 1, Index: subIndex(1, n), Description: "Nameplates", Amount: nameplates})
	}

	data.Rows = append(data.Rows, ExportRow{Level: 0, Index: "2", Description: "Transport", Amount: breakdown.Transport})
	for i, t := range snap.Transport {
		one := costing.Calculation{Suppliers: snap.Suppliers, Transport: []costing.TransportItem{t}}
		b := costing.CalculateProjectCosts(withoutSupplierItems(one), opts)
		amount := b.Transport
		if t.IsExcluded {
			amount = b.Excluded
		}
		data.Rows = append(data.Rows, ExportRow{Level: 1, Index: subIndex(2, i+1), Description: t.Name, Amount: amount, Excluded: t.IsExcluded})
	}

	data.Rows = append(data.Rows, ExportRow{Level: 0, Index: "3", Description: "Other costs", Amount: breakdown.Other})
	for i, o := range snap.OtherCosts {
		one := costing.Calculation{OtherCosts: []costing.OtherCost{o}}
		b := costing.CalculateProjectCosts(one, opts)
		amount := b.Other
		if o.IsExcluded {
			amount = b.Excluded
		}
		data.Rows = append(data.Rows, ExportRow{Level: 1, Index: subIndex(3, i+1), Description: o.Name, Amount: amount, Excluded: o.IsExcluded})
	}

	data.Rows = append(data.Rows, ExportRow{Level: 0, Index: "4", Description: "Installation", Amount: breakdown.Installation})
	if mode == costing.ModeFinal && len(snap.Installation.FinalCosts) > 0 {
		for i, fc := range snap.Installation.FinalCosts {
			amount := costing.Convert(fc.Amount, fc.Currency, currency, doc.Settings.ExchangeRate)
			data.Rows = append(data.Rows, ExportRow{Level: 1, Index: subIndex(4, i+1), Description: fc.Description, Amount: amount})
		}
	} else {
		for i, st := range snap.Installation.Stages {
			amount := costing.StageCost(st, snap.Suppliers, st.IsExcluded)
			amount = costing.Convert(amount, costing.DomesticCurrency, currency, doc.Settings.ExchangeRate)
			data.Rows = append(data.Rows, ExportRow{Level: 1, Index: subIndex(4, i+1), Description: st.Name, Amount: amount, Excluded: st.IsExcluded})
		}
	}

	data.Rows = append(data.Rows, ExportRow{Level: 0, Index: "5", Description: "Financing", Amount: breakdown.Financing})
	return data
}

// withoutSupplierItems keeps the suppliers of calc for transport linkage but
// drops their items so they add nothing to the totals.
func withoutSupplierItems(calc costing.Calculation) costing.Calculation {
	suppliers := make([]costing.Supplier, len(calc.Suppliers))
	for i, s := range calc.Suppliers {
		s.Items = nil
		s.FinalCost = nil
		suppliers[i] = s
	}
	calc.Suppliers = suppliers
	return calc
}

func subIndex(parent, n int) string {
	return fmt.Sprintf("%d.%d", parent, n)
}
