package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGenerateCostSheetStructure(t *testing.T) {
	data, err := GenerateCostSheet(sampleProject())
	if err != nil {
		t.Fatalf("GenerateCostSheet: %v", err)
	}

	f := mustOpenWorkbook(t, data)
	defer f.Close()

	wantSheets := []string{
		"JOB TOTAL",
		"CANOPY - Ground Floor (1)",
		"CANOPY - Ground Floor (2)",
		"FIRE SUPP - Ground Floor (1)",
		"UV-C - Ground Floor (1)",
	}
	for _, name := range wantSheets {
		if idx, _ := f.GetSheetIndex(name); idx < 0 {
			t.Errorf("missing sheet %q (have %v)", name, f.GetSheetList())
		}
	}

	// Unused pool slots are deleted, not merely hidden.
	for _, name := range f.GetSheetList() {
		if isPoolSheetName(name) {
			t.Errorf("leftover pool sheet %q in finished workbook", name)
		}
	}

	// Metadata lands in the fixed cells on every visible sheet.
	for _, sheet := range []string{"JOB TOTAL", "CANOPY - Ground Floor (1)"} {
		if v, _ := f.GetCellValue(sheet, "C3"); v != "P1023" {
			t.Errorf("%s!C3 = %q, want P1023", sheet, v)
		}
		if v, _ := f.GetCellValue(sheet, "C5"); v != "Acme Catering Ltd" {
			t.Errorf("%s!C5 = %q, want the customer", sheet, v)
		}
	}

	// Sheet titles carry the level and area.
	if v, _ := f.GetCellValue("CANOPY - Ground Floor (1)", "B1"); v != "Ground Floor - Main Kitchen" {
		t.Errorf("canopy title = %q", v)
	}

	// Lists and ProjectData stay hidden.
	for _, hidden := range []string{"Lists", "ProjectData"} {
		visible, _ := f.GetSheetVisible(hidden)
		if visible {
			t.Errorf("sheet %q should be hidden", hidden)
		}
	}
}

func TestGenerateCostSheetRefusesInvalidProject(t *testing.T) {
	p := sampleProject()
	p.Number = ""

	_, err := GenerateCostSheet(p)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %T, want ValidationErrors", err)
	}
}

func TestSynthesizeExhaustsSheetPool(t *testing.T) {
	p := &Project{Number: "P-BIG"}
	level := Level{Name: "Ground Floor"}
	for i := 0; i < poolSizes[KindCanopy]+1; i++ {
		level.Areas = append(level.Areas, Area{
			Name: fmt.Sprintf("Kitchen %d", i+1),
			Items: []Item{
				{Ref: fmt.Sprintf("%d.01", i+1), Model: "KVF", Kind: KindCanopy, BasePrice: 1000},
			},
		})
	}
	p.Levels = []Level{level}

	_, err := Synthesize(p)
	if !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("err = %v, want ErrPoolExhausted", err)
	}
}

func TestSynthesizeRejectsOverfullArea(t *testing.T) {
	area := Area{Name: "Main Kitchen"}
	for i := 0; i < MaxItemsPerSheet+1; i++ {
		area.Items = append(area.Items, Item{
			Ref: fmt.Sprintf("1.%02d", i+1), Model: "KVF", Kind: KindCanopy,
		})
	}
	p := &Project{Number: "P1", Levels: []Level{{Name: "Ground Floor", Areas: []Area{area}}}}

	_, err := Synthesize(p)
	if err == nil || !strings.Contains(err.Error(), "exceed") {
		t.Errorf("err = %v, want an overfull-area error", err)
	}
}

func TestSynthesizeHonoursFeatureGate(t *testing.T) {
	gate := func(feature string) bool { return feature != "uvc" }

	data, err := GenerateCostSheetWithFeatures(sampleProject(), gate)
	if err != nil {
		t.Fatalf("GenerateCostSheetWithFeatures: %v", err)
	}

	f := mustOpenWorkbook(t, data)
	defer f.Close()
	for _, name := range f.GetSheetList() {
		if strings.HasPrefix(name, "UV-C - ") {
			t.Errorf("UV-C sheet %q present with the feature disabled", name)
		}
	}
	if idx, _ := f.GetSheetIndex("FIRE SUPP - Ground Floor (1)"); idx < 0 {
		t.Error("unrelated fire suppression sheet went missing")
	}
}

func TestJobTotalReferencesEverySatelliteSheet(t *testing.T) {
	data, err := GenerateCostSheet(sampleProject())
	if err != nil {
		t.Fatalf("GenerateCostSheet: %v", err)
	}

	f := mustOpenWorkbook(t, data)
	defer f.Close()

	var formulas []string
	for row := 10; row < 40; row++ {
		formula, _ := f.GetCellFormula("JOB TOTAL", fmt.Sprintf("D%d", row))
		if formula != "" {
			formulas = append(formulas, formula)
		}
	}
	joined := strings.Join(formulas, " ")
	for _, sheet := range []string{"CANOPY - Ground Floor (1)", "FIRE SUPP - Ground Floor (1)"} {
		if !strings.Contains(joined, sheet) {
			t.Errorf("JOB TOTAL has no formula referencing %q", sheet)
		}
	}
}
