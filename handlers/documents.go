package handlers

import (
	"log"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// logDocument records one emitted artifact in the documents collection so
// every delivered file can be traced back to its project and revision. A
// logging failure never blocks the download itself.
func logDocument(app *pocketbase.PocketBase, projectID, kind, fileName, revision string) {
	col, err := app.FindCollectionByNameOrId("documents")
	if err != nil {
		log.Printf("documents: collection not found: %v", err)
		return
	}

	rec := core.NewRecord(col)
	rec.Set("project", projectID)
	rec.Set("uid", uuid.NewString())
	rec.Set("kind", kind)
	rec.Set("file_name", fileName)
	rec.Set("revision", revision)

	if err := app.Save(rec); err != nil {
		log.Printf("documents: failed to log %s %q: %v", kind, fileName, err)
	}
}
