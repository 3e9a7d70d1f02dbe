package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"installcost/costing"
)

// FormatMoney formats an amount with two decimals, digits grouped in threes
// by a space and the currency code appended (e.g., 1 234 567.89 PLN).
func FormatMoney(amount decimal.Decimal, currency costing.Currency) string {
	negative := amount.IsNegative()
	raw := amount.Abs().StringFixed(2)

	parts := strings.SplitN(raw, ".", 2)
	formatted := applyThousandsGrouping(parts[0]) + "." + parts[1]
	if negative && formatted != "0.00" {
		formatted = "-" + formatted
	}
	if currency == "" {
		return formatted
	}
	return formatted + " " + string(currency)
}

// FormatPercent formats a percentage with one decimal (e.g., 12.5%).
func FormatPercent(p decimal.Decimal) string {
	return p.StringFixed(1) + "%"
}

// applyThousandsGrouping inserts a space before every group of three digits
// counted from the right.
func applyThousandsGrouping(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
