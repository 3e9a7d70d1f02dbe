package costing

import "github.com/shopspring/decimal"

// FinancingGraceDays is the final payment term covered without a financing
// surcharge.
const FinancingGraceDays = 14

// AnnualInterestRate is the yearly cost of capital used for financing.
var AnnualInterestRate = decimal.RequireFromString("0.075")

var daysPerYear = decimal.NewFromInt(365)

// FinancingCost returns the surcharge for the unpaid share of the price being
// outstanding longer than FinancingGraceDays.
//
// With a manual price P:
//
//	financing = P × unpaid × 0.075 × extraDays / 365
//
// Otherwise the price is solved from the target margin so that it covers its
// own financing:
//
//	price = baseCost / (1 − margin − unpaid × interest)
//
// A non-positive divisor yields zero financing.
func FinancingCost(baseCost decimal.Decimal, terms PaymentTerms, targetMargin decimal.Decimal, manualPrice *decimal.Decimal) decimal.Decimal {
	extraDays := terms.FinalPaymentDays - FinancingGraceDays
	if extraDays <= 0 {
		return decimal.Zero
	}

	one := decimal.NewFromInt(1)
	unpaid := one.Sub(percentOf(terms.AdvanceTotal()))
	interest := AnnualInterestRate.Mul(decimal.NewFromInt(int64(extraDays))).Div(daysPerYear)
	exposure := unpaid.Mul(interest)

	if manualPrice != nil {
		return manualPrice.Mul(exposure)
	}

	divisor := one.Sub(percentOf(targetMargin)).Sub(exposure)
	if !divisor.IsPositive() {
		return decimal.Zero
	}
	return baseCost.Div(divisor).Mul(exposure)
}

// FinalPrice derives the sale price and the margin in percent from a total
// cost. A manual price wins over the target margin; a zero manual price is an
// unconditional loss of -100%. A target margin of 100 or more prices at cost.
func FinalPrice(cost, targetMargin decimal.Decimal, manualPrice *decimal.Decimal) (price, margin decimal.Decimal) {
	if manualPrice != nil {
		price = *manualPrice
		if price.IsZero() {
			return price, decimal.NewFromInt(-100)
		}
		return price, price.Sub(cost).Div(price).Mul(hundred)
	}

	if targetMargin.GreaterThanOrEqual(hundred) {
		return cost, targetMargin
	}
	return cost.Div(decimal.NewFromInt(1).Sub(percentOf(targetMargin))), targetMargin
}
