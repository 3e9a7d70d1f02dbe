// Package costing is the pure cost and variant simulation engine for
// installation projects. Every function takes the whole calculation aggregate
// and returns fresh values; nothing is retained between calls.
package costing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is one of the two currencies of the domain.
type Currency string

const (
	CurrencyPLN Currency = "PLN"
	CurrencyEUR Currency = "EUR"
)

// Domestic and foreign currency of every calculation.
const (
	DomesticCurrency = CurrencyPLN
	ForeignCurrency  = CurrencyEUR
)

// Valid reports whether c is one of the two known currencies.
func (c Currency) Valid() bool {
	return c == CurrencyPLN || c == CurrencyEUR
}

// orDomestic treats an empty currency as domestic.
func (c Currency) orDomestic() Currency {
	if c == "" {
		return DomesticCurrency
	}
	return c
}

// Money is an amount in a given currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// Mode selects between the planning and the as-built view of a calculation.
type Mode string

const (
	ModeInitial Mode = "INITIAL"
	ModeFinal   Mode = "FINAL"
)

// CalcMethod is how the labor of an installation stage is priced.
type CalcMethod string

const (
	MethodPallets CalcMethod = "PALLETS"
	MethodTime    CalcMethod = "TIME"
	MethodBoth    CalcMethod = "BOTH"
)

func (m CalcMethod) usesPallets() bool { return m == MethodPallets || m == MethodBoth }
func (m CalcMethod) usesTime() bool    { return m == MethodTime || m == MethodBoth }

// SupplierItem is one material position ordered from a supplier. Prices are in
// the supplier's currency.
type SupplierItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TimeMinutes decimal.Decimal `json:"timeMinutes"` // installation time per unit
	IsExcluded  bool            `json:"isExcluded"`
}

// Supplier owns an ordered list of material items.
type Supplier struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Currency    Currency        `json:"currency"`
	Discount    decimal.Decimal `json:"discount"`    // percent
	ExtraMarkup decimal.Decimal `json:"extraMarkup"` // percent, negative for a markdown
	FeeEligible bool            `json:"feeEligible"`
	IsIncluded  bool            `json:"isIncluded"`
	Items       []SupplierItem  `json:"items"`
	FinalCost   *Money          `json:"finalCost,omitempty"`
}

// UnmarshalJSON decodes a supplier, treating a missing isIncluded as true.
func (s *Supplier) UnmarshalJSON(data []byte) error {
	type plain Supplier
	p := plain{IsIncluded: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Supplier(p)
	return nil
}

// TransportItem is a freight position. It may be tied to one supplier
// (SupplierID) or to several (LinkedSupplierIDs).
type TransportItem struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	SupplierID        string          `json:"supplierId,omitempty"`
	LinkedSupplierIDs []string        `json:"linkedSupplierIds,omitempty"`
	TotalPrice        decimal.Decimal `json:"totalPrice"`
	Currency          Currency        `json:"currency"`
	FinalCost         *Money          `json:"finalCost,omitempty"`
	IsExcluded        bool            `json:"isExcluded"`
}

// OtherCost is a miscellaneous project cost.
type OtherCost struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Currency   Currency        `json:"currency"`
	FinalCost  *Money          `json:"finalCost,omitempty"`
	IsExcluded bool            `json:"isExcluded"`
}

// Equipment is the rental of lifting equipment for a stage. All values are
// domestic.
type Equipment struct {
	ForkliftDailyRate    decimal.Decimal `json:"forkliftDailyRate"`
	ForkliftDays         decimal.Decimal `json:"forkliftDays"`
	ForkliftTransport    decimal.Decimal `json:"forkliftTransport"`
	ScissorLiftDailyRate decimal.Decimal `json:"scissorLiftDailyRate"`
	ScissorLiftDays      decimal.Decimal `json:"scissorLiftDays"`
	ScissorLiftTransport decimal.Decimal `json:"scissorLiftTransport"`
}

// Cost returns the full rental cost including transport of both machines.
func (e Equipment) Cost() decimal.Decimal {
	forklift := e.ForkliftDailyRate.Mul(e.ForkliftDays).Add(e.ForkliftTransport)
	scissor := e.ScissorLiftDailyRate.Mul(e.ScissorLiftDays).Add(e.ScissorLiftTransport)
	return forklift.Add(scissor)
}

// StageItem is a custom sub-item of an installation stage.
type StageItem struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	IsExcluded bool            `json:"isExcluded"`
}

// InstallationStage is one stage of the installation works. All values are
// domestic.
type InstallationStage struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Method            CalcMethod      `json:"method"`
	PalletSpots       decimal.Decimal `json:"palletSpots"`
	PricePerSpot      decimal.Decimal `json:"pricePerSpot"`
	LinkedSupplierIDs []string        `json:"linkedSupplierIds,omitempty"`
	ManualLaborHours  decimal.Decimal `json:"manualLaborHours"`
	WorkDayHours      decimal.Decimal `json:"workDayHours"`
	InstallerCount    int             `json:"installerCount"`
	ManDayRate        decimal.Decimal `json:"manDayRate"`
	Equipment         Equipment       `json:"equipment"`
	CustomItems       []StageItem     `json:"customItems"`
	IsExcluded        bool            `json:"isExcluded"`
}

// FinalInstallationCost is one itemized as-built installation invoice.
type FinalInstallationCost struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    Currency        `json:"currency"`
}

// Installation is the installation section of a calculation.
//
// A nil Stages slice marks a legacy record priced with the flat
// PalletSpots/PricePerSpot/Equipment/CustomItems fields instead.
type Installation struct {
	Stages                 []InstallationStage     `json:"stages"`
	OtherInstallationCosts decimal.Decimal         `json:"otherInstallationCosts"`
	FinalCost              *Money                  `json:"finalCost,omitempty"`
	FinalCosts             []FinalInstallationCost `json:"finalCosts,omitempty"`

	PalletSpots  decimal.Decimal `json:"palletSpots"`
	PricePerSpot decimal.Decimal `json:"pricePerSpot"`
	Equipment    Equipment       `json:"equipment"`
	CustomItems  []StageItem     `json:"customItems,omitempty"`
}

// PaymentTerms are the customer's payment conditions. The two advance
// percentages sum to at most 100.
type PaymentTerms struct {
	Advance1Percent  decimal.Decimal `json:"advance1Percent"`
	Advance2Percent  decimal.Decimal `json:"advance2Percent"`
	FinalPaymentDays int             `json:"finalPaymentDays"`
}

// AdvanceTotal returns the sum of both advance payments in percent.
func (p PaymentTerms) AdvanceTotal() decimal.Decimal {
	return p.Advance1Percent.Add(p.Advance2Percent)
}

// Validate checks that both advances are non-negative, that together they do
// not exceed 100% and that the final payment term is not negative.
func (p PaymentTerms) Validate() error {
	switch {
	case p.Advance1Percent.IsNegative() || p.Advance2Percent.IsNegative():
		return fmt.Errorf("%w: advance percentages must not be negative", ErrInvalidPaymentTerms)
	case p.AdvanceTotal().GreaterThan(hundred):
		return fmt.Errorf("%w: advances add up to %s%%, more than 100%%", ErrInvalidPaymentTerms, p.AdvanceTotal())
	case p.FinalPaymentDays < 0:
		return fmt.Errorf("%w: final payment term must not be negative", ErrInvalidPaymentTerms)
	}
	return nil
}

// Calculation is the aggregate the engine operates on.
type Calculation struct {
	Suppliers         []Supplier      `json:"suppliers"`
	Transport         []TransportItem `json:"transport"`
	OtherCosts        []OtherCost     `json:"otherCosts"`
	Installation      Installation    `json:"installation"`
	PaymentTerms      PaymentTerms    `json:"paymentTerms"`
	NameplateQuantity decimal.Decimal `json:"nameplateQuantity"`
	Variants          []Variant       `json:"variants"`
}

// CostBreakdown is the engine's output, every field in the target currency.
// Excluded reports the value of excluded items and is not part of Total.
type CostBreakdown struct {
	Suppliers    decimal.Decimal `json:"suppliers"`
	Transport    decimal.Decimal `json:"transport"`
	Other        decimal.Decimal `json:"other"`
	Installation decimal.Decimal `json:"installation"`
	Fee          decimal.Decimal `json:"fee"`
	Financing    decimal.Decimal `json:"financing"`
	Total        decimal.Decimal `json:"total"`
	Excluded     decimal.Decimal `json:"excluded"`
	Currency     Currency        `json:"currency"`
}

// BaseCost returns the total without financing.
func (b CostBreakdown) BaseCost() decimal.Decimal {
	return b.Suppliers.Add(b.Transport).Add(b.Other).Add(b.Installation).Add(b.Fee)
}

// Clone returns a deep copy of c, so that mutations of the copy never reach
// the original.
func (c Calculation) Clone() Calculation {
	out := c
	out.Suppliers = make([]Supplier, len(c.Suppliers))
	for i, s := range c.Suppliers {
		s.Items = append([]SupplierItem(nil), s.Items...)
		s.FinalCost = cloneMoney(s.FinalCost)
		out.Suppliers[i] = s
	}
	out.Transport = make([]TransportItem, len(c.Transport))
	for i, t := range c.Transport {
		t.LinkedSupplierIDs = append([]string(nil), t.LinkedSupplierIDs...)
		t.FinalCost = cloneMoney(t.FinalCost)
		out.Transport[i] = t
	}
	out.OtherCosts = make([]OtherCost, len(c.OtherCosts))
	for i, o := range c.OtherCosts {
		o.FinalCost = cloneMoney(o.FinalCost)
		out.OtherCosts[i] = o
	}
	if c.Installation.Stages != nil {
		out.Installation.Stages = make([]InstallationStage, len(c.Installation.Stages))
		for i, st := range c.Installation.Stages {
			st.LinkedSupplierIDs = append([]string(nil), st.LinkedSupplierIDs...)
			st.CustomItems = append([]StageItem(nil), st.CustomItems...)
			out.Installation.Stages[i] = st
		}
	}
	out.Installation.FinalCost = cloneMoney(c.Installation.FinalCost)
	out.Installation.FinalCosts = append([]FinalInstallationCost(nil), c.Installation.FinalCosts...)
	out.Installation.CustomItems = append([]StageItem(nil), c.Installation.CustomItems...)
	out.Variants = make([]Variant, len(c.Variants))
	for i, v := range c.Variants {
		v.Items = append([]VariantItem(nil), v.Items...)
		out.Variants[i] = v
	}
	return out
}

func cloneMoney(m *Money) *Money {
	if m == nil {
		return nil
	}
	cp := *m
	return &cp
}
