package costing

import "testing"

func stageSuppliers() []Supplier {
	return []Supplier{
		{
			ID:         "s1",
			IsIncluded: true,
			Items: []SupplierItem{
				{ID: "i1", Quantity: dec("4"), TimeMinutes: dec("90")},
				{ID: "i2", Quantity: dec("1"), TimeMinutes: dec("120"), IsExcluded: true},
			},
		},
		{
			ID:         "s2",
			IsIncluded: false,
			Items: []SupplierItem{
				{ID: "i3", Quantity: dec("10"), TimeMinutes: dec("60")},
			},
		},
	}
}

func TestStageCost_Pallets(t *testing.T) {
	stage := InstallationStage{Method: MethodPallets, PalletSpots: dec("120"), PricePerSpot: dec("15.5")}
	got := StageCost(stage, nil, false)
	assertDecimal(t, "StageCost", got, "1860")
}

func TestStageCost_TimeRespectsExclusions(t *testing.T) {
	stage := InstallationStage{
		Method:            MethodTime,
		LinkedSupplierIDs: []string{"s1", "missing"},
		ManualLaborHours:  dec("2"),
		WorkDayHours:      dec("8"),
		InstallerCount:    1,
		ManDayRate:        dec("500"),
	}

	// 4×90 min = 6h, +2h manual = 8h → one day
	assertDecimal(t, "respecting exclusions", StageCost(stage, stageSuppliers(), false), "500")
	// excluded item adds 2h → 10h → two days
	assertDecimal(t, "ignoring exclusions", StageCost(stage, stageSuppliers(), true), "1000")
}

func TestStageCost_TimeSkipsSupplierOutsideProject(t *testing.T) {
	stage := InstallationStage{
		Method:            MethodTime,
		LinkedSupplierIDs: []string{"s2"},
		WorkDayHours:      dec("8"),
		InstallerCount:    2,
		ManDayRate:        dec("400"),
	}

	assertDecimal(t, "respecting exclusions", StageCost(stage, stageSuppliers(), false), "0")
	// 10h over a 16h crew day → one day × 2 installers
	assertDecimal(t, "ignoring exclusions", StageCost(stage, stageSuppliers(), true), "800")
}

func TestStageCost_DuplicateLinkCountedOnce(t *testing.T) {
	stage := InstallationStage{
		Method:            MethodTime,
		LinkedSupplierIDs: []string{"s1", "s1"},
		WorkDayHours:      dec("6"),
		InstallerCount:    1,
		ManDayRate:        dec("100"),
	}
	assertDecimal(t, "StageCost", StageCost(stage, stageSuppliers(), false), "100")
}

func TestStageCost_ZeroCrewYieldsNoLabor(t *testing.T) {
	stage := InstallationStage{
		Method:           MethodTime,
		ManualLaborHours: dec("10"),
		WorkDayHours:     dec("8"),
		InstallerCount:   0,
		ManDayRate:       dec("500"),
	}
	assertDecimal(t, "StageCost", StageCost(stage, nil, false), "0")
}

func TestStageCost_BothAndExtras(t *testing.T) {
	stage := InstallationStage{
		Method:           MethodBoth,
		PalletSpots:      dec("10"),
		PricePerSpot:     dec("20"),
		ManualLaborHours: dec("9"),
		WorkDayHours:     dec("8"),
		InstallerCount:   1,
		ManDayRate:       dec("300"),
		Equipment: Equipment{
			ForkliftDailyRate:    dec("100"),
			ForkliftDays:         dec("2"),
			ForkliftTransport:    dec("50"),
			ScissorLiftDailyRate: dec("80"),
			ScissorLiftDays:      dec("1"),
			ScissorLiftTransport: dec("40"),
		},
		CustomItems: []StageItem{
			{ID: "c1", Quantity: dec("2"), UnitPrice: dec("15")},
			{ID: "c2", Quantity: dec("1"), UnitPrice: dec("99"), IsExcluded: true},
		},
	}

	// pallets 200 + labor 2 days × 300 + equipment 250 + 120 + items 30
	assertDecimal(t, "respecting exclusions", StageCost(stage, nil, false), "1200")
	assertDecimal(t, "ignoring exclusions", StageCost(stage, nil, true), "1299")
}

func TestStageCost_EquipmentAlwaysCounted(t *testing.T) {
	stage := InstallationStage{
		Method:    MethodPallets,
		Equipment: Equipment{ForkliftDailyRate: dec("150"), ForkliftDays: dec("3")},
	}
	assertDecimal(t, "StageCost", StageCost(stage, nil, false), "450")
}
