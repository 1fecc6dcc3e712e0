package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costsheet/config"
	"costsheet/services"
)

// HandleQuotationUpload returns a handler that regenerates quotation
// documents from an uploaded cost-sheet workbook. The workbook is parsed
// back into a project tree, the pricing summary is recomputed, and one or
// more PDF documents are rendered. More than one document ships as a zip
// bundle.
func HandleQuotationUpload(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	renderer := services.NewPDFRenderer()

	return func(e *core.RequestEvent) error {
		file, _, err := e.Request.FormFile("workbook")
		if err != nil {
			return e.String(http.StatusBadRequest, "Missing workbook upload")
		}
		defer file.Close()

		project, summary, report, err := services.ReadWorkbook(file)
		if err != nil {
			log.Printf("quotation: unreadable workbook: %v", err)
			return e.String(http.StatusUnprocessableEntity, "Workbook could not be read")
		}
		for _, s := range report.Skipped {
			log.Printf("quotation: skipped sheet %q: %s", s.Sheet, s.Reason)
		}
		for _, w := range report.Warnings {
			log.Printf("quotation: %s", w)
		}

		// A known project advances its revision on every regenerate pass.
		rec := findProjectByNumber(app, project.Number)
		if rec != nil {
			project.Revision = services.NextRevision(rec.GetString("revision"))
			if err := saveProjectTree(app, rec, project); err != nil {
				log.Printf("quotation: failed to persist project %s: %v", rec.Id, err)
			}
		}

		ctx := services.BuildContext(project, summary)

		mainPDF, err := renderer.Render(services.TemplateQuotationMain, ctx)
		if err != nil {
			log.Printf("quotation: render failed: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to render quotation")
		}
		files := []services.BundleFile{
			{
				Name: services.ArtifactFileName(project.Number, "Quotation", project.Date, project.Revision, ".pdf"),
				Data: mainPDF,
			},
		}

		if wantsRecoAir(ctx) && config.IsEnabled(config.FeatureRecoAir) {
			recoPDF, err := renderer.Render(services.TemplateQuotationRecoAir, ctx)
			if err != nil {
				log.Printf("quotation: recoair render failed: %v", err)
				return e.String(http.StatusInternalServerError, "Failed to render RecoAir quotation")
			}
			files = append(files, services.BundleFile{
				Name: services.ArtifactFileName(project.Number, "RecoAir Quotation", project.Date, project.Revision, ".pdf"),
				Data: recoPDF,
			})
		}

		if len(report.Skipped) > 0 {
			if partial, err := json.Marshal(report.Skipped); err == nil {
				e.Response.Header().Set("X-Partial-Read", string(partial))
			}
		}

		projectID := ""
		if rec != nil {
			projectID = rec.Id
		}

		if len(files) == 1 {
			if projectID != "" {
				logDocument(app, projectID, "quotation", files[0].Name, project.Revision)
			}
			e.Response.Header().Set("Content-Type", "application/pdf")
			e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, files[0].Name))
			e.Response.Write(files[0].Data)
			return nil
		}

		bundle, err := services.BuildBundle(files)
		if err != nil {
			log.Printf("quotation: bundle failed: %v", err)
			return e.String(http.StatusInternalServerError, "Failed to bundle documents")
		}
		bundleName := services.ArtifactFileName(project.Number, "Quotation", project.Date, project.Revision, ".zip")
		if projectID != "" {
			logDocument(app, projectID, "bundle", bundleName, project.Revision)
		}

		e.Response.Header().Set("Content-Type", "application/zip")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, bundleName))
		e.Response.Write(bundle)
		return nil
	}
}

func wantsRecoAir(ctx services.Namespace) bool {
	v, _ := ctx["has_recoair"].(bool)
	return v
}

// findProjectByNumber matches an uploaded workbook back to its stored
// project. A workbook for an unknown project is still processed; it just
// has no revision history to advance.
func findProjectByNumber(app *pocketbase.PocketBase, number string) *core.Record {
	if number == "" {
		return nil
	}
	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return nil
	}
	records, err := app.FindRecordsByFilter(col, "number = {:number}", "", 1, 0,
		map[string]any{"number": number})
	if err != nil || len(records) == 0 {
		return nil
	}
	return records[0]
}
