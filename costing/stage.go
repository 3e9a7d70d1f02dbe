package costing

import "github.com/shopspring/decimal"

var minutesPerHour = decimal.NewFromInt(60)

// StageCost returns the cost of one installation stage in the domestic
// currency: pallet labor, time labor, equipment rental and custom items.
//
// With ignoreExclusions set, excluded items and suppliers are priced as well;
// the difference between both modes is the excluded value of the stage.
// Linked supplier ids that do not resolve are skipped.
func StageCost(stage InstallationStage, suppliers []Supplier, ignoreExclusions bool) decimal.Decimal {
	total := stage.Equipment.Cost()

	if stage.Method.usesPallets() {
		total = total.Add(stage.PalletSpots.Mul(stage.PricePerSpot))
	}
	if stage.Method.usesTime() {
		total = total.Add(laborCost(stage, suppliers, ignoreExclusions))
	}

	return total.Add(stageItemsCost(stage.CustomItems, ignoreExclusions))
}

// laborCost prices the installation time of a stage in whole crew days:
//
//	days = ceil(hours / (workDayHours × installers))
//	cost = days × installers × manDayRate
func laborCost(stage InstallationStage, suppliers []Supplier, ignoreExclusions bool) decimal.Decimal {
	hours := installMinutes(stage.LinkedSupplierIDs, suppliers, ignoreExclusions).
		Div(minutesPerHour).
		Add(stage.ManualLaborHours)

	installers := decimal.NewFromInt(int64(stage.InstallerCount))
	crewHoursPerDay := stage.WorkDayHours.Mul(installers)
	if !hours.IsPositive() || !crewHoursPerDay.IsPositive() {
		return decimal.Zero
	}

	days := hours.Div(crewHoursPerDay).Ceil()
	return days.Mul(installers).Mul(stage.ManDayRate)
}

// installMinutes sums quantity × minutes over the items of the linked
// suppliers.
func installMinutes(linked []string, suppliers []Supplier, ignoreExclusions bool) decimal.Decimal {
	byID := make(map[string]*Supplier, len(suppliers))
	for i := range suppliers {
		byID[suppliers[i].ID] = &suppliers[i]
	}

	minutes := decimal.Zero
	seen := make(map[string]bool, len(linked))
	for _, id := range linked {
		s, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		if !ignoreExclusions && !s.IsIncluded {
			continue
		}
		for _, item := range s.Items {
			if !ignoreExclusions && item.IsExcluded {
				continue
			}
			minutes = minutes.Add(item.Quantity.Mul(item.TimeMinutes))
		}
	}
	return minutes
}

func stageItemsCost(items []StageItem, ignoreExclusions bool) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		if !ignoreExclusions && item.IsExcluded {
			continue
		}
		sum = sum.Add(item.Quantity.Mul(item.UnitPrice))
	}
	return sum
}
