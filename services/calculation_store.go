package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"installcost/costing"
)

// CalculationsCollection is the PocketBase collection holding calculation
// documents.
const CalculationsCollection = "calculations"

var (
	ErrCalculationNotFound = errors.New("calculation not found")
	ErrVersionConflict     = errors.New("calculation was modified by someone else, reload and retry")
	ErrReadOnly            = errors.New("archived calculations cannot be changed")
)

// CalculationRecord is a stored calculation document with its metadata.
type CalculationRecord struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	ReferenceNumber string           `json:"referenceNumber"`
	ClientName      string           `json:"clientName"`
	OfferNumber     string           `json:"offerNumber,omitempty"`
	Document        costing.Document `json:"document"`
	Created         string           `json:"created"`
	Updated         string           `json:"updated"`
}

// NewCalculation describes a calculation to create.
type NewCalculation struct {
	Name            string              `json:"name"`
	ReferenceNumber string              `json:"referenceNumber"`
	ClientName      string              `json:"clientName"`
	Initial         costing.Calculation `json:"initial"`
}

// CreateCalculation stores a new DRAFT calculation at version 1 using the
// given default settings.
func CreateCalculation(app core.App, in NewCalculation, settings costing.Settings) (*CalculationRecord, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("calculation name is required")
	}
	ref := strings.TrimSpace(in.ReferenceNumber)
	if ref == "" {
		return nil, fmt.Errorf("reference number is required")
	}

	col, err := app.FindCollectionByNameOrId(CalculationsCollection)
	if err != nil {
		return nil, fmt.Errorf("find calculations collection: %w", err)
	}

	doc := costing.Document{
		Initial:  in.Initial,
		Stage:    costing.StageDraft,
		Settings: settings,
		Version:  1,
	}.Recalculate()
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("reference_number", ref)
	record.Set("client_name", strings.TrimSpace(in.ClientName))
	setDocument(record, doc)

	if err := app.Save(record); err != nil {
		return nil, fmt.Errorf("save calculation: %w", err)
	}
	log.Printf("calculation_store: created %s (%s)", record.Id, ref)
	return recordToCalculation(record)
}

// LoadCalculation reads one calculation.
func LoadCalculation(app core.App, id string) (*CalculationRecord, error) {
	record, err := app.FindRecordById(CalculationsCollection, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCalculationNotFound, id)
	}
	return recordToCalculation(record)
}

// ListCalculations returns every calculation, most recently updated first.
func ListCalculations(app core.App) ([]CalculationRecord, error) {
	records, err := app.FindRecordsByFilter(CalculationsCollection, "", "-updated", 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	out := make([]CalculationRecord, 0, len(records))
	for _, r := range records {
		c, err := recordToCalculation(r)
		if err != nil {
			log.Printf("calculation_store: skipping %s: %v", r.Id, err)
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// SaveCalculation replaces the stored document of id with doc when the
// stored version still equals expectedVersion. Exclusions are recomputed on
// both snapshots and the version is incremented.
func SaveCalculation(app core.App, id string, doc costing.Document, expectedVersion int) (*CalculationRecord, error) {
	var saved *CalculationRecord
	err := app.RunInTransaction(func(txApp core.App) error {
		var err error
		saved, err = saveInTx(txApp, id, expectedVersion, func(*CalculationRecord) (costing.Document, error) {
			return doc, nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// UpdateCalculation loads id, applies fn to its document and saves the
// result in one transaction. A non-zero expectedVersion must match the stored
// version; zero accepts whatever version is read.
func UpdateCalculation(app core.App, id string, expectedVersion int, fn func(costing.Document) (costing.Document, error)) (*CalculationRecord, error) {
	var saved *CalculationRecord
	err := app.RunInTransaction(func(txApp core.App) error {
		var err error
		saved, err = saveInTx(txApp, id, expectedVersion, func(current *CalculationRecord) (costing.Document, error) {
			return fn(current.Document)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// saveInTx is the read-check-write cycle shared by every update. build
// receives the stored calculation and returns the document to persist.
func saveInTx(txApp core.App, id string, expectedVersion int, build func(*CalculationRecord) (costing.Document, error)) (*CalculationRecord, error) {
	record, err := txApp.FindRecordById(CalculationsCollection, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCalculationNotFound, id)
	}
	current, err := recordToCalculation(record)
	if err != nil {
		return nil, err
	}

	stored := current.Document.Version
	if expectedVersion != 0 && expectedVersion != stored {
		return nil, fmt.Errorf("%w (stored version %d, got %d)", ErrVersionConflict, stored, expectedVersion)
	}
	if current.Document.Stage == costing.StageArchived {
		return nil, ErrReadOnly
	}

	doc, err := build(current)
	if err != nil {
		return nil, err
	}
	doc = doc.Recalculate()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	doc.Version = stored + 1
	if doc.Stage == "" {
		doc.Stage = current.Document.Stage
	}

	setDocument(record, doc)
	if err := txApp.Save(record); err != nil {
		return nil, fmt.Errorf("save calculation %s: %w", id, err)
	}
	return recordToCalculation(record)
}

// setDocument writes the document fields of record.
func setDocument(record *core.Record, doc costing.Document) {
	record.Set("stage", string(doc.Stage))
	record.Set("version", doc.Version)
	record.Set("initial", doc.Initial)
	record.Set("final", doc.Final)
	record.Set("settings", doc.Settings)
}

// recordToCalculation decodes a calculations record.
func recordToCalculation(record *core.Record) (*CalculationRecord, error) {
	c := &CalculationRecord{
		ID:              record.Id,
		Name:            record.GetString("name"),
		ReferenceNumber: record.GetString("reference_number"),
		ClientName:      record.GetString("client_name"),
		OfferNumber:     record.GetString("offer_number"),
		Created:         record.GetString("created"),
		Updated:         record.GetString("updated"),
	}

	c.Document.Stage = costing.Stage(record.GetString("stage"))
	if c.Document.Stage == "" {
		c.Document.Stage = costing.StageDraft
	}
	c.Document.Version = record.GetInt("version")

	if err := decodeJSONField(record, "initial", &c.Document.Initial); err != nil {
		return nil, err
	}
	var final costing.Calculation
	if raw := strings.TrimSpace(record.GetString("final")); raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &final); err != nil {
			return nil, fmt.Errorf("decode final snapshot of %s: %w", record.Id, err)
		}
		c.Document.Final = &final
	}
	if err := decodeJSONField(record, "settings", &c.Document.Settings); err != nil {
		return nil, err
	}
	return c, nil
}

// decodeJSONField unmarshals a JSON field, leaving dst untouched when the
// field is empty.
func decodeJSONField(record *core.Record, key string, dst any) error {
	raw := strings.TrimSpace(record.GetString(key))
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s of %s: %w", key, record.Id, err)
	}
	return nil
}
