package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costsheet/services"
	"costsheet/views"
)

// HandleProjectReport returns a handler that renders the project's pricing
// breakdown as an HTML page. The summary is recomputed from the stored
// tree on every request; nothing derived is persisted.
func HandleProjectReport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")

		project, _, err := loadProject(app, projectID)
		if err != nil {
			log.Printf("report: %v", err)
			return e.String(http.StatusNotFound, "Project not found")
		}

		summary := services.Aggregate(project)
		component := views.ReportPage(views.ReportData{
			ProjectName:   project.Name,
			ProjectNumber: project.Number,
			Revision:      project.Revision,
			Summary:       summary,
		})
		return component.Render(e.Request.Context(), e.Response)
	}
}
