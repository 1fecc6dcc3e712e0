package collections_test

import (
	"testing"

	"costsheet/collections"
	"costsheet/services"
	"costsheet/testhelpers"
)

func TestMigrateNumericRevisions(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	legacy := testhelpers.CreateTestProject(t, app, &services.Project{
		Name: "Legacy", Number: "P1",
	})
	legacy.Set("revision", "2")
	if err := app.Save(legacy); err != nil {
		t.Fatalf("save legacy project: %v", err)
	}

	modern := testhelpers.CreateTestProject(t, app, &services.Project{
		Name: "Modern", Number: "P2", Revision: "C",
	})

	if err := collections.MigrateNumericRevisions(app); err != nil {
		t.Fatalf("MigrateNumericRevisions() error: %v", err)
	}

	got, err := app.FindRecordById("projects", legacy.Id)
	if err != nil {
		t.Fatalf("reload legacy project: %v", err)
	}
	if rev := got.GetString("revision"); rev != "B" {
		t.Errorf(`legacy revision = %q, want "B"`, rev)
	}

	got, err = app.FindRecordById("projects", modern.Id)
	if err != nil {
		t.Fatalf("reload modern project: %v", err)
	}
	if rev := got.GetString("revision"); rev != "C" {
		t.Errorf("letter revision was touched: %q", rev)
	}
}

func TestMigrateNumericRevisions_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	rec := testhelpers.CreateTestProject(t, app, &services.Project{
		Name: "Once", Number: "P3",
	})
	rec.Set("revision", "1")
	if err := app.Save(rec); err != nil {
		t.Fatalf("save project: %v", err)
	}

	if err := collections.MigrateNumericRevisions(app); err != nil {
		t.Fatalf("first run error: %v", err)
	}
	if err := collections.MigrateNumericRevisions(app); err != nil {
		t.Fatalf("second run error: %v", err)
	}

	got, _ := app.FindRecordById("projects", rec.Id)
	if rev := got.GetString("revision"); rev != "A" {
		t.Errorf(`revision after double migration = %q, want "A"`, rev)
	}
}
