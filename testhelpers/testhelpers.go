// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"encoding/json"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"costsheet/collections"
	"costsheet/services"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestProject saves a project record carrying the given tree and
// returns it.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, project *services.Project) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	tree, err := json.Marshal(project.Levels)
	if err != nil {
		t.Fatalf("failed to marshal project tree: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", project.Name)
	record.Set("number", project.Number)
	record.Set("customer", project.Customer)
	record.Set("company", project.Company)
	record.Set("address", project.Address)
	record.Set("location", project.Location)
	record.Set("estimator", project.Estimator)
	record.Set("date", project.Date)
	record.Set("revision", project.Revision)
	record.Set("tree", string(tree))

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}
