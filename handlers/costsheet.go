package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costsheet/config"
	"costsheet/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleCostSheetDownload returns a handler that synthesizes the project's
// cost sheet workbook and streams it as a download.
func HandleCostSheetDownload(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		project, rec, err := loadProject(app, projectID)
		if err != nil {
			log.Printf("costsheet: %v", err)
			return e.String(http.StatusNotFound, "Project not found")
		}

		// Each regenerate is a new revision; the workbook carries it.
		project.Revision = services.NextRevision(project.Revision)

		data, err := services.GenerateCostSheetWithFeatures(project, config.IsEnabled)
		if err != nil {
			var verrs services.ValidationErrors
			if errors.As(err, &verrs) {
				return e.JSON(http.StatusUnprocessableEntity, map[string]any{
					"message": "Project is not ready to generate",
					"errors":  verrs,
				})
			}
			log.Printf("costsheet: failed to generate for %s: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Failed to generate cost sheet")
		}

		if err := saveProjectTree(app, rec, project); err != nil {
			log.Printf("costsheet: failed to persist revision for %s: %v", projectID, err)
			return e.String(http.StatusInternalServerError, "Failed to save project revision")
		}

		filename := services.ArtifactFileName(project.Number, "Cost Sheet", project.Date, project.Revision, ".xlsx")
		logDocument(app, rec.Id, "cost_sheet", filename, project.Revision)

		e.Response.Header().Set("Content-Type", xlsxContentType)
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(data)
		return nil
	}
}
