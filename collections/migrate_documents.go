package collections

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"installcost/costing"
)

// MigrateCalculationDocuments backfills calculations stored before stages,
// versions and settings were tracked: a missing stage becomes DRAFT, a
// missing version 1, missing settings the given defaults. Exclusion flags are
// recomputed for every backfilled record. Safe to call on every startup;
// returns early if nothing to migrate.
func MigrateCalculationDocuments(app core.App, defaults costing.Settings) error {
	col, err := app.FindCollectionByNameOrId("calculations")
	if err != nil {
		return fmt.Errorf("migrate: could not find calculations collection: %w", err)
	}

	all, err := app.FindAllRecords(col)
	if err != nil {
		return fmt.Errorf("migrate: could not query calculations: %w", err)
	}
	var stale []*core.Record
	for _, record := range all {
		if needsBackfill(record) {
			stale = append(stale, record)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	log.Printf("migrate: found %d calculation(s) without stage/version/settings, backfilling...\n", len(stale))

	for _, record := range stale {
		if record.GetString("stage") == "" {
			record.Set("stage", string(costing.StageDraft))
		}
		if record.GetInt("version") == 0 {
			record.Set("version", 1)
		}
		if raw := strings.TrimSpace(record.GetString("settings")); raw == "" || raw == "null" {
			record.Set("settings", defaults)
		}

		var initial costing.Calculation
		if raw := strings.TrimSpace(record.GetString("initial")); raw != "" && raw != "null" {
			if err := json.Unmarshal([]byte(raw), &initial); err != nil {
				log.Printf("migrate: calculation %s has an unreadable initial snapshot: %v\n", record.Id, err)
				continue
			}
		}
		record.Set("initial", costing.RecalculateExclusions(initial))

		if err := app.Save(record); err != nil {
			log.Printf("migrate: failed to backfill calculation %s: %v\n", record.Id, err)
			continue
		}
		log.Printf("migrate: calculation %q backfilled (%s)\n", record.GetString("name"), record.Id)
	}

	log.Println("migrate: calculation backfill complete.")
	return nil
}

// needsBackfill reports whether record predates stage, version or settings.
func needsBackfill(record *core.Record) bool {
	settings := strings.TrimSpace(record.GetString("settings"))
	return record.GetString("stage") == "" ||
		record.GetInt("version") == 0 ||
		settings == "" || settings == "null"
}
