package services

import (
	"bytes"
	"math"
	"testing"
)

func TestWorkbookRoundTrip(t *testing.T) {
	original := sampleProject()
	original.Company = "Halton Foodservice"
	original.Estimator = "Jane Doe"
	original.Date = "14/03/2026"
	original.Revision = "A"
	wantSummary := Aggregate(original)

	data, err := GenerateCostSheet(original)
	if err != nil {
		t.Fatalf("GenerateCostSheet: %v", err)
	}

	got, summary, report, err := ReadWorkbook(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}
	if len(report.Skipped) != 0 {
		t.Fatalf("sheets skipped on our own workbook: %v", report.Skipped)
	}

	if got.Number != original.Number {
		t.Errorf("project number = %q, want %q", got.Number, original.Number)
	}
	if got.Customer != original.Customer {
		t.Errorf("customer = %q, want %q", got.Customer, original.Customer)
	}
	if got.Company != original.Company {
		t.Errorf("company = %q, want %q", got.Company, original.Company)
	}
	if got.Estimator != original.Estimator {
		t.Errorf("estimator = %q, want %q", got.Estimator, original.Estimator)
	}
	if got.Revision != original.Revision {
		t.Errorf("revision = %q, want %q", got.Revision, original.Revision)
	}

	if len(got.Levels) != len(original.Levels) {
		t.Fatalf("got %d levels, want %d", len(got.Levels), len(original.Levels))
	}
	for li, level := range original.Levels {
		gl := got.Levels[li]
		if gl.Name != level.Name {
			t.Errorf("level[%d] = %q, want %q", li, gl.Name, level.Name)
		}
		if len(gl.Areas) != len(level.Areas) {
			t.Fatalf("level %s: got %d areas, want %d", level.Name, len(gl.Areas), len(level.Areas))
		}
		for ai, area := range level.Areas {
			ga := gl.Areas[ai]
			if ga.Name != area.Name {
				t.Errorf("area = %q, want %q", ga.Name, area.Name)
			}
			if len(ga.Items) != len(area.Items) {
				t.Fatalf("area %s: got %d items, want %d", area.Name, len(ga.Items), len(area.Items))
			}
			for ii, item := range area.Items {
				gi := ga.Items[ii]
				if NormalizeRef(gi.Ref) != NormalizeRef(item.Ref) {
					t.Errorf("ref = %q, want %q", gi.Ref, item.Ref)
				}
				if gi.Model != item.Model {
					t.Errorf("%s: model = %q, want %q", item.Ref, gi.Model, item.Model)
				}
				if gi.Options.FireSuppression != item.Options.FireSuppression {
					t.Errorf("%s: fire suppression flag = %v, want %v",
						item.Ref, gi.Options.FireSuppression, item.Options.FireSuppression)
				}
				if gi.Options.UVC != item.Options.UVC {
					t.Errorf("%s: UV-C flag = %v, want %v", item.Ref, gi.Options.UVC, item.Options.UVC)
				}
				if gi.Options.SDU != item.Options.SDU {
					t.Errorf("%s: SDU flag = %v, want %v", item.Ref, gi.Options.SDU, item.Options.SDU)
				}
				if (gi.Options.WallCladding != nil) != (item.Options.WallCladding != nil) {
					t.Errorf("%s: cladding presence mismatch", item.Ref)
				}
			}
		}
	}

	if math.Abs(summary.Total-wantSummary.Total) > 0.001 {
		t.Errorf("recomputed total = %v, want %v", summary.Total, wantSummary.Total)
	}
}

func TestReadWorkbookRecoversRefSuffixes(t *testing.T) {
	original := sampleProject()
	data, err := GenerateCostSheet(original)
	if err != nil {
		t.Fatalf("GenerateCostSheet: %v", err)
	}

	// A user edited the canopy sheet's reference cell after creation.
	f := mustOpenWorkbook(t, data)
	defer f.Close()
	f.SetCellValue("CANOPY - Ground Floor (1)", "B12", "1.01 REVISED")
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("rewrite workbook: %v", err)
	}

	got, _, _, err := ReadWorkbook(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}

	// The fire suppression sheet still says "1.01"; prefix matching must
	// land its price and flag on the edited item, not drop it.
	item := got.Levels[0].Areas[0].Items[0]
	if !item.Options.FireSuppression {
		t.Error("fire suppression flag lost after ref suffix edit")
	}
	if math.Abs(item.Options.FireSuppressionPrice-1690) > 0.001 {
		t.Errorf("fire suppression price = %v, want 1690", item.Options.FireSuppressionPrice)
	}
}

func TestReadWorkbookKeepsOrphanUVCPrices(t *testing.T) {
	original := sampleProject()
	data, err := GenerateCostSheet(original)
	if err != nil {
		t.Fatalf("GenerateCostSheet: %v", err)
	}

	// A user pointed the UV-C row at a reference with no canopy sheet
	// counterpart. The price must survive as an item of its own, the same
	// way an orphan fire suppression row does.
	f := mustOpenWorkbook(t, data)
	defer f.Close()
	f.SetCellValue("UV-C - Ground Floor (1)", "B12", "9.99")
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("rewrite workbook: %v", err)
	}

	got, _, _, err := ReadWorkbook(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadWorkbook: %v", err)
	}

	var orphan *Item
	for _, area := range got.Levels[0].Areas {
		for i := range area.Items {
			if NormalizeRef(area.Items[i].Ref) == "9.99" {
				orphan = &area.Items[i]
			}
		}
	}
	if orphan == nil {
		t.Fatal("orphan UV-C row was dropped")
	}
	if !orphan.Options.UVC {
		t.Error("orphan item lost its UV-C flag")
	}
	if math.Abs(orphan.Options.UVCPrice-900) > 0.001 {
		t.Errorf("orphan UV-C price = %v, want 900", orphan.Options.UVCPrice)
	}
}

func TestReadWorkbookSkipsMalformedSheets(t *testing.T) {
	original := sampleProject()
	data, err := GenerateCostSheet(original)
	if err != nil {
		t.Fatalf("GenerateCostSheet: %v", err)
	}

	f := mustOpenWorkbook(t, data)
	defer f.Close()
	// Break one sheet's title beyond recognition.
	f.SetCellValue("CANOPY - Ground Floor (2)", "B1", "garbage")
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("rewrite workbook: %v", err)
	}

	got, _, report, err := ReadWorkbook(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadWorkbook should not hard-fail: %v", err)
	}
	if len(report.Skipped) != 1 {
		t.Fatalf("skipped = %v, want exactly the broken sheet", report.Skipped)
	}
	if report.Skipped[0].Sheet != "CANOPY - Ground Floor (2)" {
		t.Errorf("skipped sheet = %q", report.Skipped[0].Sheet)
	}
	// The rest of the workbook still came through.
	if len(got.Levels) == 0 || len(got.Levels[0].Areas) == 0 {
		t.Error("readable sheets were lost along with the broken one")
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantSet bool
	}{
		{name: "plain number", in: "150", want: 150, wantSet: true},
		{name: "decimal", in: "0.85", want: 0.85, wantSet: true},
		{name: "unit suffix", in: "150 Pa", want: 150, wantSet: true},
		{name: "attached unit", in: "150Pa", want: 150, wantSet: true},
		{name: "blank", in: "", wantSet: false},
		{name: "dash sentinel", in: "-", wantSet: false},
		{name: "text", in: "TBD", wantSet: false},
		{name: "negative", in: "-12.5", want: -12.5, wantSet: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumeric(tt.in)
			if got.Set != tt.wantSet {
				t.Fatalf("ParseNumeric(%q).Set = %v, want %v", tt.in, got.Set, tt.wantSet)
			}
			if got.Set && math.Abs(got.Value-tt.want) > 0.001 {
				t.Errorf("ParseNumeric(%q) = %v, want %v", tt.in, got.Value, tt.want)
			}
		})
	}
}

func TestExtractTankQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1 TANK", 1},
		{"2 TANK SYSTEM", 2},
		{"3 TANK DISTANCE", 3},
		{"", 0},
		{"-", 0},
		{"NOBEL", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := extractTankQuantity(tt.in); got != tt.want {
				t.Errorf("extractTankQuantity(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
