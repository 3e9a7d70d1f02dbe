package costing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Stage is the lifecycle position of a stored calculation.
type Stage string

const (
	StageDraft           Stage = "DRAFT"
	StagePendingApproval Stage = "PENDING_APPROVAL"
	StageApproved        Stage = "APPROVED"
	StageOpening         Stage = "OPENING"
	StageFinal           Stage = "FINAL"
	StageArchived        Stage = "ARCHIVED"
)

// Stages lists every lifecycle stage in order.
var Stages = []Stage{StageDraft, StagePendingApproval, StageApproved, StageOpening, StageFinal, StageArchived}

// Settings are the shared inputs needed to reproduce a breakdown from a
// snapshot alone.
type Settings struct {
	ExchangeRate  decimal.Decimal  `json:"exchangeRate"`
	FeePercent    decimal.Decimal  `json:"feePercent"`
	TargetMargin  decimal.Decimal  `json:"targetMargin"`
	ManualPrice   *decimal.Decimal `json:"manualPrice,omitempty"`
	OfferCurrency Currency         `json:"offerCurrency"`
}

// Document is the persisted form of a calculation: a planning snapshot, an
// optional as-built snapshot and the settings to price them.
type Document struct {
	Initial  Calculation  `json:"initial"`
	Final    *Calculation `json:"final,omitempty"`
	Stage    Stage        `json:"stage"`
	Settings Settings     `json:"settings"`
	Version  int          `json:"version"`
}

// Snapshot returns the snapshot priced in mode. FINAL falls back to the
// initial snapshot until an as-built one exists.
func (d Document) Snapshot(mode Mode) Calculation {
	if mode == ModeFinal && d.Final != nil {
		return *d.Final
	}
	return d.Initial
}

// Breakdown prices the snapshot for mode in currency, falling back to the
// offer currency when currency is empty.
func (d Document) Breakdown(mode Mode, currency Currency) CostBreakdown {
	if currency == "" {
		currency = d.Settings.OfferCurrency
	}
	margin := d.Settings.TargetMargin
	return CalculateProjectCosts(d.Snapshot(mode), CostOptions{
		Rate:           d.Settings.ExchangeRate,
		TargetCurrency: currency,
		Mode:           mode,
		FeePercent:     d.Settings.FeePercent,
		TargetMargin:   &margin,
		ManualPrice:    d.Settings.ManualPrice,
	})
}

// Approval evaluates the auto-approval rules for the initial snapshot.
func (d Document) Approval(rules ApprovalRules) ApprovalResult {
	return EvaluateAutoApproval(d.Initial, ApprovalInput{
		Rate:         d.Settings.ExchangeRate,
		Currency:     d.Settings.OfferCurrency,
		FeePercent:   d.Settings.FeePercent,
		TargetMargin: d.Settings.TargetMargin,
		ManualPrice:  d.Settings.ManualPrice,
	}, rules)
}

// Recalculate reruns exclusion propagation on both snapshots.
func (d Document) Recalculate() Document {
	d.Initial = RecalculateExclusions(d.Initial)
	if d.Final != nil {
		final := RecalculateExclusions(*d.Final)
		d.Final = &final
	}
	return d
}

// Validate checks the payment terms of both snapshots.
func (d Document) Validate() error {
	if err := d.Initial.PaymentTerms.Validate(); err != nil {
		return err
	}
	if d.Final != nil {
		if err := d.Final.PaymentTerms.Validate(); err != nil {
			return fmt.Errorf("as-built snapshot: %w", err)
		}
	}
	return nil
}
