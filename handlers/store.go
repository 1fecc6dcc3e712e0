package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costsheet/services"
)

// loadProject rebuilds the project tree from a stored record. Metadata
// lives in flat record fields, the level/area/item tree in the serialized
// "tree" field.
func loadProject(app *pocketbase.PocketBase, projectID string) (*services.Project, *core.Record, error) {
	rec, err := app.FindRecordById("projects", projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("project not found: %w", err)
	}

	project := &services.Project{
		Name:      rec.GetString("name"),
		Number:    rec.GetString("number"),
		Customer:  rec.GetString("customer"),
		Company:   rec.GetString("company"),
		Address:   rec.GetString("address"),
		Location:  rec.GetString("location"),
		Estimator: rec.GetString("estimator"),
		Date:      rec.GetString("date"),
		Revision:  rec.GetString("revision"),
	}

	if tree := rec.GetString("tree"); tree != "" {
		if err := json.Unmarshal([]byte(tree), &project.Levels); err != nil {
			return nil, nil, fmt.Errorf("project %s has an unreadable tree: %w", projectID, err)
		}
	}
	return project, rec, nil
}

// saveProjectTree persists a (possibly migrated) project back to its record.
func saveProjectTree(app *pocketbase.PocketBase, rec *core.Record, project *services.Project) error {
	tree, err := json.Marshal(project.Levels)
	if err != nil {
		return fmt.Errorf("marshal project tree: %w", err)
	}

	rec.Set("name", project.Name)
	rec.Set("number", project.Number)
	rec.Set("customer", project.Customer)
	rec.Set("company", project.Company)
	rec.Set("address", project.Address)
	rec.Set("location", project.Location)
	rec.Set("estimator", project.Estimator)
	rec.Set("date", project.Date)
	rec.Set("revision", project.Revision)
	rec.Set("tree", string(tree))
	return app.Save(rec)
}
