package costing

type itemKey struct {
	kind ItemKind
	id   string
}

// RecalculateExclusions rewrites the isExcluded flag of every line item from
// the current variant statuses and returns the new aggregate.
//
// Items referenced by INCLUDED variants (or their descendants) form the
// whitelist, items referenced by EXCLUDED variants the blacklist. An item is
// excluded when the whitelist is non-empty and does not hold it, or when the
// blacklist holds it. Whitelisting a stage custom item whitelists its stage
// too, so the item is priced; the stage's other custom items stay out. Items
// of a supplier that is not part of the project stay excluded regardless of
// variants.
//
// The pass runs over the whole aggregate every time; there is no incremental
// path.
func RecalculateExclusions(calc Calculation) Calculation {
	out := calc.Clone()
	whitelist, blacklist := collectReferences(out)

	excluded := func(kind ItemKind, id string) bool {
		k := itemKey{kind, id}
		return (len(whitelist) > 0 && !whitelist[k]) || blacklist[k]
	}

	for i := range out.Suppliers {
		s := &out.Suppliers[i]
		for j := range s.Items {
			s.Items[j].IsExcluded = !s.IsIncluded || excluded(KindSupplierItem, s.Items[j].ID)
		}
	}
	for i := range out.Transport {
		out.Transport[i].IsExcluded = excluded(KindTransport, out.Transport[i].ID)
	}
	for i := range out.OtherCosts {
		out.OtherCosts[i].IsExcluded = excluded(KindOtherCost, out.OtherCosts[i].ID)
	}
	for i := range out.Installation.Stages {
		st := &out.Installation.Stages[i]
		st.IsExcluded = excluded(KindStage, st.ID)
		for j := range st.CustomItems {
			st.CustomItems[j].IsExcluded = excluded(KindStageItem, st.CustomItems[j].ID)
		}
	}
	for i := range out.Installation.CustomItems {
		out.Installation.CustomItems[i].IsExcluded = excluded(KindStageItem, out.Installation.CustomItems[i].ID)
	}
	return out
}

// collectReferences expands the item references of every included and every
// excluded variant subtree into concrete line item keys.
func collectReferences(calc Calculation) (whitelist, blacklist map[itemKey]bool) {
	whitelist = make(map[itemKey]bool)
	blacklist = make(map[itemKey]bool)

	idx := indexVariants(calc.Variants)
	for _, v := range calc.Variants {
		var target map[itemKey]bool
		switch v.Status {
		case StatusIncluded:
			target = whitelist
		case StatusExcluded:
			target = blacklist
		default:
			continue
		}

		scope := idx.descendants(v.ID)
		scope[v.ID] = true
		for id := range scope {
			for _, ref := range calc.Variants[idx.pos[id]].Items {
				expandReference(calc, ref, target)
				if v.Status == StatusIncluded && ref.Kind == KindStageItem {
					if stageID, ok := owningStage(calc, ref.ItemID); ok {
						whitelist[itemKey{KindStage, stageID}] = true
					}
				}
			}
		}
	}
	return whitelist, blacklist
}

// owningStage returns the id of the stage holding custom item itemID.
// Installation-level custom items have no stage.
func owningStage(calc Calculation, itemID string) (string, bool) {
	for _, st := range calc.Installation.Stages {
		for _, item := range st.CustomItems {
			if item.ID == itemID {
				return st.ID, true
			}
		}
	}
	return "", false
}

// expandReference adds the keys a reference stands for. A supplier group
// stands for all items of the supplier, a stage for itself and its custom
// items.
func expandReference(calc Calculation, ref VariantItem, into map[itemKey]bool) {
	switch ref.Kind {
	case KindSupplierGroup:
		for _, s := range calc.Suppliers {
			if s.ID != ref.ItemID {
				continue
			}
			for _, item := range s.Items {
				into[itemKey{KindSupplierItem, item.ID}] = true
			}
		}
	case KindStage:
		into[itemKey{KindStage, ref.ItemID}] = true
		for _, st := range calc.Installation.Stages {
			if st.ID != ref.ItemID {
				continue
			}
			for _, item := range st.CustomItems {
				into[itemKey{KindStageItem, item.ID}] = true
			}
		}
	default:
		into[itemKey{ref.Kind, ref.ItemID}] = true
	}
}
