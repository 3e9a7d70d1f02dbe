package costing

import "testing"

func withVariants(calc Calculation, variants ...Variant) Calculation {
	calc.Variants = variants
	return calc
}

func TestRecalculateExclusions(t *testing.T) {
	group := func(id string) VariantItem { return VariantItem{Kind: KindSupplierGroup, ItemID: id} }

	tests := []struct {
		name     string
		variants []Variant
		want     []string
	}{
		{
			name: "no variants excludes nothing",
			want: nil,
		},
		{
			name: "neutral variants are ignored",
			variants: []Variant{
				{ID: "v1", Status: StatusNeutral, Items: []VariantItem{group("s1")}},
			},
			want: nil,
		},
		{
			name: "included supplier group whitelists its items",
			variants: []Variant{
				{ID: "v1", Status: StatusIncluded, Items: []VariantItem{group("s1")}},
			},
			want: []string{"i3", "t1", "o1", "st1", "c1", "st2"},
		},
		{
			name: "blacklist only",
			variants: []Variant{
				{ID: "v1", Status: StatusExcluded, Items: []VariantItem{{Kind: KindOtherCost, ItemID: "o1"}}},
			},
			want: []string{"o1"},
		},
		{
			name: "blacklist wins over whitelist",
			variants: []Variant{
				{ID: "v1", Status: StatusIncluded, Items: []VariantItem{group("s1"), {Kind: KindOtherCost, ItemID: "o1"}}},
				{ID: "v2", Status: StatusExcluded, Items: []VariantItem{{Kind: KindSupplierItem, ItemID: "i2"}}},
			},
			want: []string{"i2", "i3", "t1", "st1", "c1", "st2"},
		},
		{
			name: "included parent covers descendants",
			variants: []Variant{
				{ID: "v1", Status: StatusIncluded},
				{ID: "v2", ParentID: "v1", Status: StatusNeutral, Items: []VariantItem{{Kind: KindTransport, ItemID: "t1"}}},
			},
			want: []string{"i1", "i2", "i3", "o1", "st1", "c1", "st2"},
		},
		{
			name: "excluded parent covers descendants",
			variants: []Variant{
				{ID: "v1", Status: StatusExcluded},
				{ID: "v2", ParentID: "v1", Status: StatusNeutral, Items: []VariantItem{{Kind: KindStageItem, ItemID: "c1"}}},
			},
			want: []string{"c1"},
		},
		{
			name: "stage reference carries its custom items",
			variants: []Variant{
				{ID: "v1", Status: StatusIncluded, Items: []VariantItem{{Kind: KindStage, ItemID: "st1"}}},
			},
			want: []string{"i1", "i2", "i3", "t1", "o1", "st2"},
		},
		{
			name: "included stage item pulls in its stage",
			variants: []Variant{
				{ID: "v1", Status: StatusIncluded, Items: []VariantItem{{Kind: KindStageItem, ItemID: "c1"}}},
			},
			want: []string{"i1", "i2", "i3", "t1", "o1", "st2"},
		},
		{
			name: "unknown supplier group leaves the whitelist empty",
			variants: []Variant{
				{ID: "v1", Status: StatusIncluded, Items: []VariantItem{group("ghost")}},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RecalculateExclusions(withVariants(exclusionFixture(), tt.variants...))
			assertExcluded(t, out, tt.want...)
		})
	}
}

func TestRecalculateExclusions_ClearsStaleFlags(t *testing.T) {
	calc := exclusionFixture()
	calc.Transport[0].IsExcluded = true
	calc.Installation.Stages[0].CustomItems[0].IsExcluded = true

	assertExcluded(t, RecalculateExclusions(calc))
}

func TestRecalculateExclusions_DoesNotMutateInput(t *testing.T) {
	calc := withVariants(exclusionFixture(),
		Variant{ID: "v1", Status: StatusExcluded, Items: []VariantItem{{Kind: KindTransport, ItemID: "t1"}}})

	_ = RecalculateExclusions(calc)
	if calc.Transport[0].IsExcluded {
		t.Error("input transport item was flagged")
	}
}

func TestRecalculateExclusions_SupplierOutsideProject(t *testing.T) {
	calc := exclusionFixture()
	calc.Suppliers[1].IsIncluded = false

	assertExcluded(t, RecalculateExclusions(calc), "i3")

	calc = withVariants(calc, Variant{
		ID: "v1", Status: StatusIncluded,
		Items: []VariantItem{{Kind: KindSupplierGroup, ItemID: "s2"}},
	})
	out := RecalculateExclusions(calc)
	if !out.Suppliers[1].Items[0].IsExcluded {
		t.Error("item of a supplier outside the project must stay excluded")
	}
}

func TestRecalculateExclusions_WhitelistLaw(t *testing.T) {
	calc := withVariants(exclusionFixture(),
		Variant{ID: "v1", Status: StatusIncluded, Items: []VariantItem{
			{Kind: KindSupplierItem, ItemID: "i1"},
			{Kind: KindOtherCost, ItemID: "o1"},
		}},
		Variant{ID: "v2", Status: StatusNeutral, Items: []VariantItem{{Kind: KindTransport, ItemID: "t1"}}},
	)
	out := RecalculateExclusions(calc)

	reachable := map[string]bool{"i1": true, "o1": true}
	excluded := excludedIDs(out)
	for _, id := range []string{"i1", "i2", "i3", "t1", "o1", "st1", "c1", "st2"} {
		if !reachable[id] && !excluded[id] {
			t.Errorf("%s is not reachable from an included variant but is not excluded", id)
		}
	}
}

func TestSoloVariant(t *testing.T) {
	calc := withVariants(exclusionFixture(),
		Variant{ID: "v1", Status: StatusIncluded, Items: []VariantItem{{Kind: KindSupplierGroup, ItemID: "s1"}}},
		Variant{ID: "v2", Status: StatusNeutral, Items: []VariantItem{
			{Kind: KindTransport, ItemID: "t1"},
			{Kind: KindSupplierGroup, ItemID: "s2"},
		}},
		Variant{ID: "v3", Status: StatusExcluded, Items: []VariantItem{{Kind: KindTransport, ItemID: "t1"}}},
	)
	calc.Suppliers[1].IsIncluded = false

	out, err := SoloVariant(calc, "v2")
	if err != nil {
		t.Fatalf("SoloVariant() error = %v", err)
	}

	for _, v := range out.Variants {
		want := StatusNeutral
		if v.ID == "v2" {
			want = StatusIncluded
		}
		if v.Status != want {
			t.Errorf("variant %s status = %s, want %s", v.ID, v.Status, want)
		}
	}
	// t1 is the only reachable item left; i3 is reachable but its supplier
	// is outside the project.
	assertExcluded(t, out, "i1", "i2", "i3", "o1", "st1", "c1", "st2")
}

func TestSoloVariant_Unknown(t *testing.T) {
	_, err := SoloVariant(exclusionFixture(), "nope")
	if err == nil {
		t.Error("SoloVariant(unknown) returned no error")
	}
}

func TestRecalculateExclusions_CorruptParentLoop(t *testing.T) {
	// Stored data with a parent loop must not hang the walk.
	calc := withVariants(exclusionFixture(),
		Variant{ID: "v1", ParentID: "v2", Status: StatusIncluded, Items: []VariantItem{{Kind: KindOtherCost, ItemID: "o1"}}},
		Variant{ID: "v2", ParentID: "v1", Status: StatusNeutral, Items: []VariantItem{{Kind: KindTransport, ItemID: "t1"}}},
	)
	out := RecalculateExclusions(calc)
	assertExcluded(t, out, "i1", "i2", "i3", "st1", "c1", "st2")
}

func TestSoloVariant_StageItemIsPriced(t *testing.T) {
	calc := Calculation{
		Installation: Installation{
			Stages: []InstallationStage{{
				ID:     "st1",
				Method: MethodPallets,
				CustomItems: []StageItem{
					{ID: "x", Quantity: dec("1"), UnitPrice: dec("500")},
					{ID: "y", Quantity: dec("2"), UnitPrice: dec("100")},
				},
			}},
		},
		Variants: []Variant{
			{ID: "v1", Status: StatusNeutral, Items: []VariantItem{{Kind: KindStageItem, ItemID: "x"}}},
		},
	}

	out, err := SoloVariant(calc, "v1")
	if err != nil {
		t.Fatalf("SoloVariant() error = %v", err)
	}
	assertExcluded(t, out, "y")

	got := CalculateProjectCosts(out, CostOptions{Rate: dec("4.3"), TargetCurrency: CurrencyPLN})
	assertDecimal(t, "Installation", got.Installation, "500")
	assertDecimal(t, "Excluded", got.Excluded, "200")
}

func TestRecalculateExclusions_ExcludedStageItemKeepsStage(t *testing.T) {
	calc := withVariants(exclusionFixture(),
		Variant{ID: "v1", Status: StatusExcluded, Items: []VariantItem{{Kind: KindStageItem, ItemID: "c1"}}})

	assertExcluded(t, RecalculateExclusions(calc), "c1")
}
