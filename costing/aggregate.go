package costing

import "github.com/shopspring/decimal"

// NameplateUnitCost is the fixed domestic cost of one nameplate.
var NameplateUnitCost = decimal.NewFromInt(19)

var two = decimal.NewFromInt(2)

// CostOptions are the settings of one cost run.
type CostOptions struct {
	Rate           decimal.Decimal
	TargetCurrency Currency
	Mode           Mode
	FeePercent     decimal.Decimal

	// TargetMargin enables the financing term. ManualPrice, when also set,
	// replaces the margin-derived price in it.
	TargetMargin *decimal.Decimal
	ManualPrice  *decimal.Decimal
}

// breakdownBuilder accumulates category totals in the target currency.
type breakdownBuilder struct {
	opts CostOptions
	out  CostBreakdown
}

func (b *breakdownBuilder) convert(amount decimal.Decimal, from Currency) decimal.Decimal {
	return Convert(amount, from, b.opts.TargetCurrency, b.opts.Rate)
}

func (b *breakdownBuilder) final() bool { return b.opts.Mode == ModeFinal }

// CalculateProjectCosts aggregates every cost category of calc into one
// breakdown. It reads the isExcluded flags as left by RecalculateExclusions
// and must be re-run in full after every change.
func CalculateProjectCosts(calc Calculation, opts CostOptions) CostBreakdown {
	opts.TargetCurrency = opts.TargetCurrency.orDomestic()
	b := &breakdownBuilder{opts: opts}
	b.out.Currency = opts.TargetCurrency

	b.addSuppliers(calc)
	b.addTransport(calc)
	b.addOtherCosts(calc)
	b.addInstallation(calc)

	if opts.TargetMargin != nil {
		b.out.Financing = FinancingCost(b.out.BaseCost(), calc.PaymentTerms, *opts.TargetMargin, opts.ManualPrice)
	}
	b.out.Total = b.out.BaseCost().Add(b.out.Financing)
	return b.out
}

func (b *breakdownBuilder) addSuppliers(calc Calculation) {
	feeRate := percentOf(b.opts.FeePercent)

	for _, s := range calc.Suppliers {
		if !s.IsIncluded {
			continue
		}

		var cost decimal.Decimal
		if b.final() && s.FinalCost != nil {
			cost = b.convert(s.FinalCost.Amount, s.FinalCost.Currency)
		} else {
			included, excluded := supplierItemsValue(s)
			cost = b.convert(adjustForSupplier(s, included), s.Currency)
			excludedCost := b.convert(adjustForSupplier(s, excluded), s.Currency)
			if s.FeeEligible {
				excludedCost = excludedCost.Add(excludedCost.Mul(feeRate))
			}
			b.out.Excluded = b.out.Excluded.Add(excludedCost)
		}

		b.out.Suppliers = b.out.Suppliers.Add(cost)
		if s.FeeEligible {
			b.out.Fee = b.out.Fee.Add(cost.Mul(feeRate))
		}
	}

	nameplates := NameplateUnitCost.Mul(calc.NameplateQuantity)
	b.out.Suppliers = b.out.Suppliers.Add(b.convert(nameplates, DomesticCurrency))
}

// supplierItemsValue sums quantity × unit price of the included and the
// excluded items of s. Fee-eligible suppliers are priced at half the unit
// price.
func supplierItemsValue(s Supplier) (included, excluded decimal.Decimal) {
	for _, item := range s.Items {
		price := item.UnitPrice
		if s.FeeEligible {
			price = price.Div(two)
		}
		value := price.Mul(item.Quantity)
		if item.IsExcluded {
			excluded = excluded.Add(value)
		} else {
			included = included.Add(value)
		}
	}
	return included, excluded
}

// adjustForSupplier applies the supplier discount, then the extra markup.
func adjustForSupplier(s Supplier, amount decimal.Decimal) decimal.Decimal {
	afterDiscount := amount.Mul(decimal.NewFromInt(1).Sub(percentOf(s.Discount)))
	return afterDiscount.Mul(decimal.NewFromInt(1).Add(percentOf(s.ExtraMarkup)))
}

func (b *breakdownBuilder) addTransport(calc Calculation) {
	included := make(map[string]bool, len(calc.Suppliers))
	for _, s := range calc.Suppliers {
		included[s.ID] = s.IsIncluded
	}

	for _, t := range calc.Transport {
		if !transportActive(t, included) {
			continue
		}
		amount := b.convert(t.TotalPrice, t.Currency)
		if b.final() && t.FinalCost != nil {
			amount = b.convert(t.FinalCost.Amount, t.FinalCost.Currency)
		}
		if t.IsExcluded {
			b.out.Excluded = b.out.Excluded.Add(amount)
			continue
		}
		b.out.Transport = b.out.Transport.Add(amount)
	}
}

// transportActive reports whether a transport item still carries goods: an
// item linked to suppliers needs at least one of them in the project.
// Unknown supplier ids count as not included.
func transportActive(t TransportItem, included map[string]bool) bool {
	if len(t.LinkedSupplierIDs) > 0 {
		for _, id := range t.LinkedSupplierIDs {
			if included[id] {
				return true
			}
		}
		return false
	}
	if t.SupplierID != "" {
		return included[t.SupplierID]
	}
	return true
}

func (b *breakdownBuilder) addOtherCosts(calc Calculation) {
	for _, o := range calc.OtherCosts {
		amount := b.convert(o.Price, o.Currency)
		if b.final() && o.FinalCost != nil {
			amount = b.convert(o.FinalCost.Amount, o.FinalCost.Currency)
		}
		if o.IsExcluded {
			b.out.Excluded = b.out.Excluded.Add(amount)
			continue
		}
		b.out.Other = b.out.Other.Add(amount)
	}
}

func (b *breakdownBuilder) addInstallation(calc Calculation) {
	inst := calc.Installation

	if b.final() && len(inst.FinalCosts) > 0 {
		for _, fc := range inst.FinalCosts {
			b.out.Installation = b.out.Installation.Add(b.convert(fc.Amount, fc.Currency))
		}
		return
	}
	if b.final() && inst.FinalCost != nil {
		b.out.Installation = b.convert(inst.FinalCost.Amount, inst.FinalCost.Currency)
		return
	}

	planned, excluded := plannedInstallation(inst, calc.Suppliers)
	b.out.Installation = b.out.Installation.Add(b.convert(planned, DomesticCurrency))
	b.out.Excluded = b.out.Excluded.Add(b.convert(excluded, DomesticCurrency))
}

// plannedInstallation returns the domestic planned installation cost and the
// value of its excluded parts.
func plannedInstallation(inst Installation, suppliers []Supplier) (planned, excluded decimal.Decimal) {
	planned = inst.OtherInstallationCosts

	if inst.Stages == nil {
		flat := inst.PalletSpots.Mul(inst.PricePerSpot).Add(inst.Equipment.Cost())
		planned = planned.Add(flat).Add(stageItemsCost(inst.CustomItems, false))
		excluded = stageItemsCost(inst.CustomItems, true).Sub(stageItemsCost(inst.CustomItems, false))
		return planned, excluded
	}

	for _, stage := range inst.Stages {
		full := StageCost(stage, suppliers, true)
		if stage.IsExcluded {
			excluded = excluded.Add(full)
			continue
		}
		active := StageCost(stage, suppliers, false)
		planned = planned.Add(active)
		excluded = excluded.Add(full.Sub(active))
	}
	return planned, excluded
}
