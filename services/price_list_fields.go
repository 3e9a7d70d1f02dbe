package services

// PriceListField describes one column in a supplier price list sheet.
type PriceListField struct {
	Key          string // internal name
	Label        string // human-readable header shown in Excel
	Description  string // shown on the Instructions sheet
	FormatRule   string
	ExampleValue string
	Required     bool
}

// PriceListFields returns the ordered columns of a price list import.
func PriceListFields() []PriceListField {
	return []PriceListField{
		{Key: "item_id", Label: "Item ID", Description: "Stable id of the position; generated when empty", ExampleValue: "rk-frame"},
		{Key: "name", Label: "Name", Description: "Position name as quoted by the supplier", ExampleValue: "Upright frame 6000 mm", Required: true},
		{Key: "quantity", Label: "Quantity", Description: "Ordered quantity", FormatRule: "Number >= 0, comma or dot decimals", ExampleValue: "48", Required: true},
		{Key: "unit_price", Label: "Unit Price", Description: "Price per unit in the supplier's currency", FormatRule: "Number >= 0, comma or dot decimals", ExampleValue: "212.40", Required: true},
		{Key: "time_minutes", Label: "Install Minutes", Description: "Installation time per unit in minutes", FormatRule: "Number >= 0", ExampleValue: "25"},
	}
}
