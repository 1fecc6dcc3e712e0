package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costsheet/collections"
	"costsheet/config"
	"costsheet/handlers"
)

func main() {
	config.Load()

	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: config.DataDir(),
	})

	// Create collections and run migrations on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.MigrateNumericRevisions(app); err != nil {
			log.Printf("Warning: revision migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		// ── Cost sheet generation ────────────────────────────────
		se.Router.GET("/projects/{id}/costsheet", handlers.HandleCostSheetDownload(app))

		// ── Quotation regeneration from an uploaded workbook ─────
		se.Router.POST("/quotation", handlers.HandleQuotationUpload(app))

		// ── Pricing report ───────────────────────────────────────
		se.Router.GET("/projects/{id}/report", handlers.HandleProjectReport(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
