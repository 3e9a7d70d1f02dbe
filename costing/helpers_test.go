package costing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func decPtrOrNil(s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	return decPtr(*s)
}

func strPtr(s string) *string { return &s }

// decimalClose checks equality within 1e-6, enough for results that went
// through a 16-digit division.
func decimalClose(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(dec("0.000001"))
}

func assertDecimal(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !decimalClose(got, dec(want)) {
		t.Errorf("%s = %s, want %s", field, got.String(), want)
	}
}

// singleSupplierCalc is one domestic supplier with one position of qty units
// at price each and nothing else in the project.
func singleSupplierCalc(qty, price string) Calculation {
	return Calculation{
		Suppliers: []Supplier{{
			ID:         "s1",
			Name:       "Racking Co",
			Currency:   CurrencyPLN,
			IsIncluded: true,
			Items: []SupplierItem{
				{ID: "i1", Name: "Upright frame", Quantity: dec(qty), UnitPrice: dec(price)},
			},
		}},
	}
}

// exclusionFixture has two suppliers, transport, other costs and two stages,
// each id unique so tests can look items up by id.
func exclusionFixture() Calculation {
	return Calculation{
		Suppliers: []Supplier{
			{ID: "s1", IsIncluded: true, Items: []SupplierItem{{ID: "i1"}, {ID: "i2"}}},
			{ID: "s2", IsIncluded: true, Items: []SupplierItem{{ID: "i3"}}},
		},
		Transport:  []TransportItem{{ID: "t1"}},
		OtherCosts: []OtherCost{{ID: "o1"}},
		Installation: Installation{
			Stages: []InstallationStage{
				{ID: "st1", CustomItems: []StageItem{{ID: "c1"}}},
				{ID: "st2"},
			},
		},
	}
}

// excludedIDs collects the ids of every excluded line item.
func excludedIDs(c Calculation) map[string]bool {
	out := make(map[string]bool)
	for _, s := range c.Suppliers {
		for _, it := range s.Items {
			if it.IsExcluded {
				out[it.ID] = true
			}
		}
	}
	for _, t := range c.Transport {
		if t.IsExcluded {
			out[t.ID] = true
		}
	}
	for _, o := range c.OtherCosts {
		if o.IsExcluded {
			out[o.ID] = true
		}
	}
	for _, st := range c.Installation.Stages {
		if st.IsExcluded {
			out[st.ID] = true
		}
		for _, ci := range st.CustomItems {
			if ci.IsExcluded {
				out[ci.ID] = true
			}
		}
	}
	return out
}

func assertExcluded(t *testing.T, c Calculation, want ...string) {
	t.Helper()
	got := excludedIDs(c)
	wantSet := make(map[string]bool, len(want))
	for _, id := range want {
		wantSet[id] = true
		if !got[id] {
			t.Errorf("%s should be excluded", id)
		}
	}
	for id := range got {
		if !wantSet[id] {
			t.Errorf("%s should not be excluded", id)
		}
	}
}
