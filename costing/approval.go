package costing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ApprovalRule identifies one of the auto-approval checks.
type ApprovalRule string

const (
	RuleAdvance     ApprovalRule = "advance"
	RuleCeiling     ApprovalRule = "ceiling"
	RulePaymentTerm ApprovalRule = "payment_term"
	RuleMargin      ApprovalRule = "margin"
)

// ApprovalRules are the thresholds a project must meet to skip manual review.
type ApprovalRules struct {
	MinAdvancePercent decimal.Decimal
	PriceCeiling      decimal.Decimal
	CeilingCurrency   Currency
	MaxPaymentDays    int
	MinMarginPercent  decimal.Decimal
}

// DefaultApprovalRules returns the standard thresholds.
func DefaultApprovalRules() ApprovalRules {
	return ApprovalRules{
		MinAdvancePercent: decimal.NewFromInt(50),
		PriceCeiling:      decimal.NewFromInt(100_000),
		CeilingCurrency:   ForeignCurrency,
		MaxPaymentDays:    FinancingGraceDays,
		MinMarginPercent:  decimal.NewFromInt(7),
	}
}

// ApprovalInput carries the offer settings an approval is evaluated for.
type ApprovalInput struct {
	Rate         decimal.Decimal
	Currency     Currency
	FeePercent   decimal.Decimal
	TargetMargin decimal.Decimal
	ManualPrice  *decimal.Decimal
}

// ApprovalResult is the verdict of EvaluateAutoApproval. Reasons and
// Violations are parallel and keep rule order.
type ApprovalResult struct {
	Approved   bool            `json:"approved"`
	Reasons    []string        `json:"reasons"`
	Violations []ApprovalRule  `json:"violations"`
	Cost       decimal.Decimal `json:"cost"`
	Price      decimal.Decimal `json:"price"`
	Margin     decimal.Decimal `json:"margin"`
	Currency   Currency        `json:"currency"`
}

func (r *ApprovalResult) fail(rule ApprovalRule, format string, args ...any) {
	r.Violations = append(r.Violations, rule)
	r.Reasons = append(r.Reasons, fmt.Sprintf(format, args...))
}

// EvaluateAutoApproval prices calc in INITIAL mode and runs every approval
// rule against the result. All violations are reported, none short-circuits.
func EvaluateAutoApproval(calc Calculation, in ApprovalInput, rules ApprovalRules) ApprovalResult {
	currency := in.Currency.orDomestic()
	targetMargin := in.TargetMargin
	breakdown := CalculateProjectCosts(calc, CostOptions{
		Rate:           in.Rate,
		TargetCurrency: currency,
		Mode:           ModeInitial,
		FeePercent:     in.FeePercent,
		TargetMargin:   &targetMargin,
		ManualPrice:    in.ManualPrice,
	})

	price, margin := FinalPrice(breakdown.Total, in.TargetMargin, in.ManualPrice)
	res := ApprovalResult{
		Reasons:    []string{},
		Violations: []ApprovalRule{},
		Cost:       breakdown.Total,
		Price:      price,
		Margin:     margin,
		Currency:   currency,
	}

	terms := calc.PaymentTerms
	if advance := terms.AdvanceTotal(); advance.LessThan(rules.MinAdvancePercent) {
		res.fail(RuleAdvance, "advance too low: %s%% paid in advance, at least %s%% required",
			advance.String(), rules.MinAdvancePercent.String())
	}

	ceilingCurrency := rules.CeilingCurrency.orDomestic()
	if value := Convert(price, currency, ceilingCurrency, in.Rate); !value.LessThan(rules.PriceCeiling) {
		res.fail(RuleCeiling, "value exceeds ceiling: %s %s, must stay below %s %s",
			value.StringFixed(2), ceilingCurrency, rules.PriceCeiling.String(), ceilingCurrency)
	}

	if terms.FinalPaymentDays > rules.MaxPaymentDays {
		res.fail(RulePaymentTerm, "payment term too long: %d days, at most %d allowed",
			terms.FinalPaymentDays, rules.MaxPaymentDays)
	}

	if margin.LessThan(rules.MinMarginPercent) {
		res.fail(RuleMargin, "margin too low: %s%%, at least %s%% required",
			margin.StringFixed(2), rules.MinMarginPercent.String())
	}

	res.Approved = len(res.Reasons) == 0
	return res
}
