package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase/core"

	"installcost/costing"
)

// documentMaxSize bounds the JSON snapshot fields. Large projects carry a few
// hundred line items per snapshot.
const documentMaxSize = 5 << 20

// Setup programmatically creates/ensures the calculations and
// approval_requests collections exist.
func Setup(app core.App) {
	stages := make([]string, len(costing.Stages))
	for i, s := range costing.Stages {
		stages[i] = string(s)
	}

	calculations := ensureCollection(app, "calculations", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "reference_number", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "stage",
			Required:  true,
			Values:    stages,
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "version", Required: false, OnlyInt: true})
		c.Fields.Add(&core.JSONField{Name: "initial", MaxSize: documentMaxSize})
		c.Fields.Add(&core.JSONField{Name: "final", MaxSize: documentMaxSize})
		c.Fields.Add(&core.JSONField{Name: "settings"})
		c.Fields.Add(&core.TextField{Name: "offer_number", Required: false})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	ensureCollection(app, "approval_requests", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "calculation",
			Required:      true,
			CollectionId:  calculations.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "version", Required: false, OnlyInt: true})
		c.Fields.Add(&core.BoolField{Name: "approved"})
		c.Fields.Add(&core.JSONField{Name: "reasons"})
		c.Fields.Add(&core.JSONField{Name: "violations"})
		c.Fields.Add(&core.NumberField{Name: "cost"})
		c.Fields.Add(&core.NumberField{Name: "price"})
		c.Fields.Add(&core.NumberField{Name: "margin"})
		c.Fields.Add(&core.TextField{Name: "currency"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app core.App, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
