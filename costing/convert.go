package costing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Convert converts amount between the domestic and the foreign currency.
// rate is the price of one foreign unit in domestic units.
//
// The rate is not validated: a zero rate converts to zero instead of
// dividing by zero, a negative rate yields a negative amount.
func Convert(amount decimal.Decimal, from, to Currency, rate decimal.Decimal) decimal.Decimal {
	if amount.IsZero() {
		return decimal.Zero
	}
	from, to = from.orDomestic(), to.orDomestic()
	if from == to {
		return amount
	}
	if from == DomesticCurrency {
		if rate.IsZero() {
			return decimal.Zero
		}
		return amount.Div(rate)
	}
	return amount.Mul(rate)
}

// ConvertMoney converts m into the target currency.
func ConvertMoney(m Money, to Currency, rate decimal.Decimal) decimal.Decimal {
	return Convert(m.Amount, m.Currency, to, rate)
}

// percentOf returns p percent as a fraction.
func percentOf(p decimal.Decimal) decimal.Decimal {
	return p.Div(hundred)
}
