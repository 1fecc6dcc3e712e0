package collections

import (
	"fmt"
	"log"
	"strconv"

	"github.com/pocketbase/pocketbase"
)

// MigrateNumericRevisions rewrites legacy numeric project revisions
// ("1", "2", ...) to the letter scheme ("A", "B", ...) the naming
// contract uses. Safe to call on every startup -- returns early when
// nothing needs migrating.
func MigrateNumericRevisions(app *pocketbase.PocketBase) error {
	projectsCol, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		return fmt.Errorf("migrate: could not find projects collection: %w", err)
	}

	records, err := app.FindAllRecords(projectsCol)
	if err != nil {
		return fmt.Errorf("migrate: could not query projects: %w", err)
	}

	migrated := 0
	for _, rec := range records {
		rev := rec.GetString("revision")
		n, err := strconv.Atoi(rev)
		if err != nil || n < 1 {
			continue
		}

		rec.Set("revision", letterRevision(n))
		if err := app.Save(rec); err != nil {
			log.Printf("migrate: failed to update revision on project %s: %v\n", rec.Id, err)
			continue
		}
		migrated++
	}

	if migrated > 0 {
		log.Printf("migrate: rewrote %d numeric revision(s) to letters\n", migrated)
	}
	return nil
}

// letterRevision converts 1-based revision numbers to letters:
// 1 -> A, 26 -> Z, 27 -> AA.
func letterRevision(n int) string {
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}
