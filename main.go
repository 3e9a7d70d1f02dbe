package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"installcost/cli"
	"installcost/collections"
	"installcost/config"
	"installcost/handlers"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal(err)
	}
	settings := cfg.Settings()
	rules := cfg.ApprovalRules()

	app := pocketbase.New()
	app.RootCmd.AddCommand(cli.NewQuoteCmd())

	// Create collections, seed and migrate data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app, settings); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateCalculationDocuments(app, settings); err != nil {
			log.Printf("Warning: calculation migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.BindFunc(handlers.MetricsMiddleware)

		se.Router.GET("/metrics", func(e *core.RequestEvent) error {
			promhttp.Handler().ServeHTTP(e.Response, e.Request)
			return nil
		})

		// ── Calculations ─────────────────────────────────────────
		se.Router.GET("/calculations", handlers.HandleCalculationList(app))
		se.Router.POST("/calculations", handlers.HandleCalculationCreate(app, settings))
		se.Router.GET("/calculations/{id}", handlers.HandleCalculationView(app))
		se.Router.PUT("/calculations/{id}/snapshot", handlers.HandleSnapshotSave(app))
		se.Router.POST("/calculations/{id}/stage", handlers.HandleStageChange(app))

		// ── Pricing & exports ────────────────────────────────────
		se.Router.GET("/calculations/{id}/breakdown", handlers.HandleBreakdown(app))
		se.Router.GET("/calculations/{id}/export/excel", handlers.HandleExportExcel(app))
		se.Router.GET("/calculations/{id}/export/pdf", handlers.HandleExportPDF(app))

		// ── Approval ─────────────────────────────────────────────
		se.Router.POST("/calculations/{id}/approval", handlers.HandleApprovalRequest(app, rules))
		se.Router.GET("/calculations/{id}/approvals", handlers.HandleApprovalHistory(app))

		// ── Variants (?mode=INITIAL|FINAL selects the snapshot) ──
		se.Router.GET("/calculations/{id}/variants", handlers.HandleVariantTree(app))
		se.Router.POST("/calculations/{id}/variants", handlers.HandleVariantCreate(app))
		se.Router.PATCH("/calculations/{id}/variants/{variantId}", handlers.HandleVariantUpdate(app))
		se.Router.DELETE("/calculations/{id}/variants/{variantId}", handlers.HandleVariantDelete(app))
		se.Router.POST("/calculations/{id}/variants/{variantId}/parent", handlers.HandleVariantMove(app))
		se.Router.POST("/calculations/{id}/variants/{variantId}/solo", handlers.HandleVariantSolo(app))
		se.Router.POST("/calculations/{id}/variants/{variantId}/items", handlers.HandleVariantItemAdd(app))
		se.Router.DELETE("/calculations/{id}/variants/{variantId}/items", handlers.HandleVariantItemRemove(app))

		// ── Supplier price lists ─────────────────────────────────
		se.Router.GET("/price-list/template", handlers.HandlePriceListTemplate())
		se.Router.POST("/calculations/{id}/suppliers/{supplierId}/import", handlers.HandlePriceListImport(app))

		// Redirect home to the calculation list
		se.Router.GET("/", func(e *core.RequestEvent) error {
			return e.Redirect(http.StatusFound, "/calculations")
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
