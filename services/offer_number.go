package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// formatOfferNumber constructs the offer number string from components.
func formatOfferNumber(ref string, year, sequence int) string {
	return fmt.Sprintf("OF-%s-%d-%03d", ref, year, sequence)
}

// GenerateOfferNumber creates the next offer number for a reference.
// Format: OF-{ref}-{year}-{sequence}
//   - ref: the calculation's reference_number
//   - year: calendar year of now
//   - sequence: 3-digit zero-padded, per reference per year
func GenerateOfferNumber(app core.App, ref string, now time.Time) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("offer number needs a reference number")
	}
	year := now.Year()
	prefix := fmt.Sprintf("OF-%s-%d-", ref, year)

	existing, err := app.FindRecordsByFilter(
		CalculationsCollection,
		"reference_number = {:ref} && offer_number ~ {:prefix}",
		"",
		0,
		0,
		map[string]any{
			"ref":    ref,
			"prefix": prefix + "%",
		},
	)
	if err != nil {
		existing = nil
	}

	return formatOfferNumber(ref, year, len(existing)+1), nil
}
