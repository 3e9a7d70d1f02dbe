package costing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// VariantStatus is the simulation state of a variant.
type VariantStatus string

const (
	StatusNeutral  VariantStatus = "NEUTRAL"
	StatusIncluded VariantStatus = "INCLUDED"
	StatusExcluded VariantStatus = "EXCLUDED"
)

// Valid reports whether s is a known status.
func (s VariantStatus) Valid() bool {
	return s == StatusNeutral || s == StatusIncluded || s == StatusExcluded
}

// ItemKind names the collection a variant item reference points into.
// Line item ids are only unique within their kind.
type ItemKind string

const (
	KindSupplierItem ItemKind = "SUPPLIER_ITEM"
	KindTransport    ItemKind = "TRANSPORT"
	KindOtherCost    ItemKind = "OTHER_COST"
	KindStage        ItemKind = "STAGE"
	KindStageItem    ItemKind = "STAGE_ITEM"

	// KindSupplierGroup references every item of the supplier with that id.
	KindSupplierGroup ItemKind = "SUPPLIER_GROUP"
)

// Valid reports whether k is a known kind.
func (k ItemKind) Valid() bool {
	switch k {
	case KindSupplierItem, KindTransport, KindOtherCost, KindStage, KindStageItem, KindSupplierGroup:
		return true
	}
	return false
}

// VariantItem references a line item, or a whole supplier, from a variant.
type VariantItem struct {
	Kind   ItemKind `json:"kind"`
	ItemID string   `json:"itemId"`
}

// Variant is a node of the what-if forest. ParentID is empty for roots.
type Variant struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	ParentID string        `json:"parentId,omitempty"`
	Status   VariantStatus `json:"status"`
	Items    []VariantItem `json:"items"`
}

// variantIndex maps variant ids to slice positions and parents to children.
// Walks go through ids only, so a corrupted parent chain cannot loop.
type variantIndex struct {
	pos      map[string]int
	children map[string][]string
}

func indexVariants(variants []Variant) variantIndex {
	idx := variantIndex{
		pos:      make(map[string]int, len(variants)),
		children: make(map[string][]string),
	}
	for i, v := range variants {
		idx.pos[v.ID] = i
		idx.children[v.ParentID] = append(idx.children[v.ParentID], v.ID)
	}
	return idx
}

// descendants returns the ids of every variant below id, id excluded.
func (idx variantIndex) descendants(id string) map[string]bool {
	out := make(map[string]bool)
	stack := append([]string(nil), idx.children[id]...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out[cur] || cur == id {
			continue
		}
		out[cur] = true
		stack = append(stack, idx.children[cur]...)
	}
	return out
}

// Descendants returns the ids of all variants below id.
func Descendants(calc Calculation, id string) []string {
	var out []string
	for d := range indexVariants(calc.Variants).descendants(id) {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// findVariant returns the position of id in calc.Variants.
func findVariant(calc Calculation, id string) (int, error) {
	for i, v := range calc.Variants {
		if v.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrVariantNotFound, id)
}

// AddVariant appends a new neutral variant below parentID (a root when
// parentID is empty) and returns the new aggregate and the variant.
func AddVariant(calc Calculation, name, parentID string) (Calculation, Variant, error) {
	if parentID != "" {
		if _, err := findVariant(calc, parentID); err != nil {
			return calc, Variant{}, err
		}
	}
	v := Variant{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		ParentID: parentID,
		Status:   StatusNeutral,
	}
	out := calc.Clone()
	out.Variants = append(out.Variants, v)
	return out, v, nil
}

// RenameVariant changes the display name of a variant.
func RenameVariant(calc Calculation, id, name string) (Calculation, error) {
	i, err := findVariant(calc, id)
	if err != nil {
		return calc, err
	}
	out := calc.Clone()
	out.Variants[i].Name = strings.TrimSpace(name)
	return out, nil
}

// RemoveVariant deletes a variant together with its whole subtree and
// recomputes exclusions.
func RemoveVariant(calc Calculation, id string) (Calculation, error) {
	if _, err := findVariant(calc, id); err != nil {
		return calc, err
	}
	doomed := indexVariants(calc.Variants).descendants(id)
	doomed[id] = true

	out := calc.Clone()
	kept := out.Variants[:0]
	for _, v := range out.Variants {
		if !doomed[v.ID] {
			kept = append(kept, v)
		}
	}
	out.Variants = kept
	return RecalculateExclusions(out), nil
}

// MakeChild moves variant id below parentID. Moving a variant below itself
// or one of its descendants is rejected with ErrVariantCycle and calc is
// returned unchanged.
func MakeChild(calc Calculation, id, parentID string) (Calculation, error) {
	if parentID == "" {
		return MakeRoot(calc, id)
	}
	i, err := findVariant(calc, id)
	if err != nil {
		return calc, err
	}
	if _, err := findVariant(calc, parentID); err != nil {
		return calc, err
	}
	if parentID == id || indexVariants(calc.Variants).descendants(id)[parentID] {
		return calc, fmt.Errorf("%w: %q is a descendant of %q", ErrVariantCycle, parentID, id)
	}

	out := calc.Clone()
	out.Variants[i].ParentID = parentID
	return RecalculateExclusions(out), nil
}

// MakeRoot detaches variant id from its parent.
func MakeRoot(calc Calculation, id string) (Calculation, error) {
	i, err := findVariant(calc, id)
	if err != nil {
		return calc, err
	}
	out := calc.Clone()
	out.Variants[i].ParentID = ""
	return RecalculateExclusions(out), nil
}

// SetVariantStatus sets the status of a variant. Setting the status it
// already has resets it to neutral.
func SetVariantStatus(calc Calculation, id string, status VariantStatus) (Calculation, error) {
	if !status.Valid() {
		return calc, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	i, err := findVariant(calc, id)
	if err != nil {
		return calc, err
	}
	out := calc.Clone()
	if out.Variants[i].Status == status {
		status = StatusNeutral
	}
	out.Variants[i].Status = status
	return RecalculateExclusions(out), nil
}

// SoloVariant includes exactly variant id and neutralizes every other one.
func SoloVariant(calc Calculation, id string) (Calculation, error) {
	if _, err := findVariant(calc, id); err != nil {
		return calc, err
	}
	out := calc.Clone()
	for i := range out.Variants {
		out.Variants[i].Status = StatusNeutral
		if out.Variants[i].ID == id {
			out.Variants[i].Status = StatusIncluded
		}
	}
	return RecalculateExclusions(out), nil
}

// AddVariantItem adds a reference to variant id. A reference that is already
// present is ignored.
func AddVariantItem(calc Calculation, id string, ref VariantItem) (Calculation, error) {
	if !ref.Kind.Valid() || ref.ItemID == "" {
		return calc, fmt.Errorf("%w: %s/%q", ErrInvalidItemRef, ref.Kind, ref.ItemID)
	}
	i, err := findVariant(calc, id)
	if err != nil {
		return calc, err
	}
	for _, existing := range calc.Variants[i].Items {
		if existing == ref {
			return calc, nil
		}
	}
	out := calc.Clone()
	out.Variants[i].Items = append(out.Variants[i].Items, ref)
	return RecalculateExclusions(out), nil
}

// RemoveVariantItem drops a reference from variant id.
func RemoveVariantItem(calc Calculation, id string, ref VariantItem) (Calculation, error) {
	i, err := findVariant(calc, id)
	if err != nil {
		return calc, err
	}
	out := calc.Clone()
	items := out.Variants[i].Items[:0]
	for _, existing := range out.Variants[i].Items {
		if existing != ref {
			items = append(items, existing)
		}
	}
	out.Variants[i].Items = items
	return RecalculateExclusions(out), nil
}
