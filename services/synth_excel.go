package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook cell geometry. Unit blocks repeat down each satellite sheet:
// the first block's model row is 14, every further block 17 rows later.
// The reference code sits 2 rows above the model row.
const (
	itemStartRow   = 14
	itemRowSpacing = 17

	deliveryCell      = "N182"
	commissioningCell = "N193"
	sheetTotalCell    = "N198"

	jobTotalSheet    = "JOB TOTAL"
	listsSheet       = "Lists"
	projectDataSheet = "ProjectData"
)

// metadataCells maps project fields to their fixed cells on every sheet.
var metadataCells = map[string]string{
	"project_number": "C3",
	"customer":       "C5",
	"estimator":      "C7",
	"project_name":   "G3",
	"location":       "G5",
	"date":           "G7",
}

// ValidationErrors wraps a non-empty validation report as an error so entry
// points can refuse to emit anything partial.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "invalid project: " + strings.Join(msgs, "; ")
}

// GenerateCostSheet validates the project, synthesizes the workbook and
// returns its bytes. Nothing is produced when validation fails.
func GenerateCostSheet(project *Project) ([]byte, error) {
	return GenerateCostSheetWithFeatures(project, nil)
}

// GenerateCostSheetWithFeatures is GenerateCostSheet with a feature gate;
// a nil gate includes every equipment kind.
func GenerateCostSheetWithFeatures(project *Project, enabled FeatureGate) ([]byte, error) {
	if errs := project.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	f, err := SynthesizeWithFeatures(project, enabled)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// FeatureGate reports whether an equipment feature is enabled for this
// deployment. It is consulted before a kind's sheets are included.
type FeatureGate func(feature string) bool

// Synthesize materializes the project tree into a workbook: one satellite
// sheet per area and equipment kind popped from the template pool, a JOB
// TOTAL sheet whose formulas reference them, and a hidden ProjectData sheet
// carrying explicit feature flags so readers never have to infer them from
// sheet layout alone.
func Synthesize(project *Project) (*excelize.File, error) {
	return SynthesizeWithFeatures(project, nil)
}

// SynthesizeWithFeatures is Synthesize with a feature gate; a nil gate
// includes every equipment kind.
func SynthesizeWithFeatures(project *Project, enabled FeatureGate) (*excelize.File, error) {
	if enabled == nil {
		enabled = func(string) bool { return true }
	}
	f, err := BuildTemplateWorkbook()
	if err != nil {
		return nil, err
	}

	pool := NewSheetPool()
	var inUse []string
	seq := map[EquipmentKind]int{}

	place := func(kind EquipmentKind, levelIdx int, level, area, suffix string) (string, error) {
		slot, err := pool.Pop(kind)
		if err != nil {
			return "", err
		}
		seq[kind]++
		name := fmt.Sprintf("%s - %s (%d)", kind, level, seq[kind])
		if kind == KindSDU {
			name = fmt.Sprintf("%s - %s", kind, suffix)
		}
		if err := f.SetSheetName(slot, name); err != nil {
			return "", fmt.Errorf("rename %s: %w", slot, err)
		}
		if err := f.SetSheetVisible(name, true); err != nil {
			return "", fmt.Errorf("show %s: %w", name, err)
		}
		color := TabColorForLevel(levelIdx)
		if err := f.SetSheetProps(name, &excelize.SheetPropsOptions{TabColorRGB: &color}); err != nil {
			return "", fmt.Errorf("tab color %s: %w", name, err)
		}
		title := fmt.Sprintf("%s - %s", level, area)
		if suffix != "" {
			title += " - " + suffix
		}
		f.SetCellValue(name, "B1", title)
		writeProjectMetadata(f, name, project)
		inUse = append(inUse, name)
		return name, nil
	}

	for levelIdx, level := range project.Levels {
		for areaIdx, area := range level.Areas {
			canopies := area.Canopies()
			if len(canopies) > MaxItemsPerSheet {
				return nil, fmt.Errorf("area %s / %s: %d canopies exceed the %d blocks of one sheet",
					level.Name, area.Name, len(canopies), MaxItemsPerSheet)
			}

			if len(canopies) > 0 {
				sheet, err := place(KindCanopy, levelIdx, level.Name, area.Name, "")
				if err != nil {
					return nil, err
				}
				for i, item := range canopies {
					writeCanopyBlock(f, sheet, item, itemStartRow+i*itemRowSpacing)
				}
				writePools(f, sheet, KindCanopy, level, areaIdx)
				writeSheetTotal(f, sheet, len(canopies), true)
				addCanopyDropdowns(f, sheet, len(canopies))
			}

			if fsItems := area.FireSuppressionItems(); len(fsItems) > 0 {
				sheet, err := place(KindFireSuppression, levelIdx, level.Name, area.Name, "")
				if err != nil {
					return nil, err
				}
				for i, item := range fsItems {
					writeFireSuppBlock(f, sheet, item, itemStartRow+i*itemRowSpacing)
				}
				writePools(f, sheet, KindFireSuppression, level, areaIdx)
				writeSheetTotal(f, sheet, len(fsItems), false)
				addFireSuppDropdowns(f, sheet, len(fsItems))
			}

			if uvcItems := area.UVCItems(); len(uvcItems) > 0 && enabled("uvc") {
				sheet, err := place(KindUVC, levelIdx, level.Name, area.Name, "")
				if err != nil {
					return nil, err
				}
				for i, item := range uvcItems {
					base := itemStartRow + i*itemRowSpacing
					f.SetCellValue(sheet, fmt.Sprintf("B%d", base-2), NormalizeRef(item.Ref))
					f.SetCellValue(sheet, fmt.Sprintf("N%d", base-2), item.Options.UVCPrice)
				}
				writePools(f, sheet, KindUVC, level, areaIdx)
				writeSheetTotal(f, sheet, len(uvcItems), false)
			}

			if recoair := area.RecoAirUnits(); len(recoair) > 0 && enabled("recoair") {
				sheet, err := place(KindRecoAir, levelIdx, level.Name, area.Name, "")
				if err != nil {
					return nil, err
				}
				for i, item := range recoair {
					base := itemStartRow + i*itemRowSpacing
					f.SetCellValue(sheet, fmt.Sprintf("B%d", base-2), NormalizeRef(item.Ref))
					f.SetCellValue(sheet, fmt.Sprintf("D%d", base), strings.ToUpper(item.Model))
					f.SetCellValue(sheet, fmt.Sprintf("N%d", base-2), item.BasePrice)
				}
				writePools(f, sheet, KindRecoAir, level, areaIdx)
				writeSheetTotal(f, sheet, len(recoair), true)
			}

			// SDU sheets are scoped to a single item, one sheet each. The
			// area's SDU delivery pool lives on the first of them only.
			firstSDU := true
			for _, item := range area.Items {
				if !item.Options.SDU || !enabled("sdu") {
					continue
				}
				sheet, err := place(KindSDU, levelIdx, level.Name, area.Name, NormalizeRef(item.Ref))
				if err != nil {
					return nil, err
				}
				f.SetCellValue(sheet, "B12", NormalizeRef(item.Ref))
				f.SetCellValue(sheet, "N12", item.Options.SDUPrice)
				if firstSDU {
					writePools(f, sheet, KindSDU, level, areaIdx)
					firstSDU = false
				}
				writeSheetTotal(f, sheet, 1, false)
			}
		}
	}

	writeProjectMetadata(f, jobTotalSheet, project)
	writeJobTotals(f, inUse)
	writeProjectData(f, project)

	for _, unused := range pool.Unused() {
		if err := f.DeleteSheet(unused); err != nil {
			return nil, fmt.Errorf("delete unused sheet %s: %w", unused, err)
		}
	}

	if err := checkWorkbookIntegrity(f, inUse); err != nil {
		return nil, err
	}
	return f, nil
}

// writeCanopyBlock writes one canopy's specification block. The reference
// sits at B{base-2} and the base price at N{base-2}; model and geometry
// share the base row.
func writeCanopyBlock(f *excelize.File, sheet string, item Item, base int) {
	set := func(cell string, v any) { f.SetCellValue(sheet, cell, v) }

	set(fmt.Sprintf("B%d", base-2), NormalizeRef(item.Ref))
	set(fmt.Sprintf("N%d", base-2), item.BasePrice)
	set(fmt.Sprintf("C%d", base), strings.ToUpper(item.Configuration))
	set(fmt.Sprintf("D%d", base), strings.ToUpper(item.Model))

	writeOpt := func(cell string, v OptFloat) {
		if v.Set {
			set(cell, v.Value)
		}
	}
	writeOpt(fmt.Sprintf("E%d", base), item.Spec.Width)
	writeOpt(fmt.Sprintf("F%d", base), item.Spec.Length)
	writeOpt(fmt.Sprintf("G%d", base), item.Spec.Height)
	writeOpt(fmt.Sprintf("H%d", base), item.Spec.Sections)
	writeOpt(fmt.Sprintf("I%d", base), item.Spec.ExtractVolume)
	writeOpt(fmt.Sprintf("K%d", base), item.Spec.MUAVolume)
	writeOpt(fmt.Sprintf("L%d", base), item.Spec.SupplyStatic)
	writeOpt(fmt.Sprintf("F%d", base+8), item.Spec.ExtractStatic)

	if item.Spec.LightingType != "" {
		set(fmt.Sprintf("C%d", base+1), item.Spec.LightingType)
	}

	// Option markers, one row each below the lighting rows.
	optRow := base + 4
	if item.Options.FireSuppression {
		set(fmt.Sprintf("B%d", optRow), "FIRE SUPPRESSION SYSTEM")
	}
	if item.Options.UVC {
		set(fmt.Sprintf("B%d", optRow+1), "UV-C SYSTEM")
	}
	if item.Options.SDU {
		set(fmt.Sprintf("B%d", optRow+2), "SDU")
	}

	if cl := item.Options.WallCladding; cl != nil {
		set(fmt.Sprintf("P%d", base-2), cl.Dimensions())
		set(fmt.Sprintf("Q%d", base-2), strings.Join(cl.Positions, "/"))
		set(fmt.Sprintf("R%d", base-2), cl.Price)
	}
}

// writeFireSuppBlock writes one fire suppression unit block.
func writeFireSuppBlock(f *excelize.File, sheet string, item Item, base int) {
	f.SetCellValue(sheet, fmt.Sprintf("B%d", base-2), NormalizeRef(item.Ref))
	f.SetCellValue(sheet, fmt.Sprintf("N%d", base-2), item.Options.FireSuppressionPrice)
	if item.Spec.TankQuantity > 0 {
		f.SetCellValue(sheet, fmt.Sprintf("C%d", base+2), fmt.Sprintf("%d TANK SYSTEM", item.Spec.TankQuantity))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", base+3), fmt.Sprintf("%d TANK", item.Spec.TankQuantity))
	}
}

// writePools writes the sheet's shared-cost cells for its scope, resolving
// area scope ahead of level scope exactly like the aggregation engine.
func writePools(f *excelize.File, sheet string, scope EquipmentKind, level Level, areaIdx int) {
	pools := poolsFor(level, areaIdx)
	if d := Pool(pools, PoolDelivery, scope); d.Amount != 0 {
		f.SetCellValue(sheet, deliveryCell, d.Amount)
	}
	if c := Pool(pools, PoolCommissioning, scope); c.Amount != 0 && PolicyFor(scope).ExplicitRows {
		f.SetCellValue(sheet, commissioningCell, c.Amount)
	}
}

// writeSheetTotal gives every satellite sheet a self-contained total
// formula so the workbook stays consistent when recalculated outside this
// engine. Cladding prices (column R) only exist on canopy sheets.
func writeSheetTotal(f *excelize.File, sheet string, blocks int, withCladding bool) {
	var cells []string
	for i := 0; i < blocks; i++ {
		base := itemStartRow + i*itemRowSpacing
		cells = append(cells, fmt.Sprintf("N%d", base-2))
		if withCladding {
			cells = append(cells, fmt.Sprintf("R%d", base-2))
		}
	}
	formula := fmt.Sprintf("=SUM(%s,%s,%s)", strings.Join(cells, ","), deliveryCell, commissioningCell)
	f.SetCellFormula(sheet, sheetTotalCell, formula)
}

// writeJobTotals fills the JOB TOTAL sheet with one cross-sheet reference
// row per in-use satellite sheet plus a grand total.
func writeJobTotals(f *excelize.File, inUse []string) {
	row := 10
	for _, sheet := range inUse {
		f.SetCellValue(jobTotalSheet, fmt.Sprintf("A%d", row), sheet)
		f.SetCellFormula(jobTotalSheet, fmt.Sprintf("D%d", row),
			fmt.Sprintf("='%s'!%s", sheet, sheetTotalCell))
		row++
	}
	f.SetCellValue(jobTotalSheet, fmt.Sprintf("A%d", row), "GRAND TOTAL")
	if row > 10 {
		f.SetCellFormula(jobTotalSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("=SUM(D10:D%d)", row-1))
	}
}

// writeProjectMetadata writes the fixed metadata cells. The estimator cell
// shows initials on sheets; the full name lives in ProjectData.
func writeProjectMetadata(f *excelize.File, sheet string, project *Project) {
	values := map[string]string{
		"project_number": project.Number,
		"customer":       project.Customer,
		"estimator":      Initials(project.Estimator),
		"project_name":   project.Name,
		"location":       project.Location,
		"date":           project.Date,
	}
	for field, cell := range metadataCells {
		if v := values[field]; v != "" {
			f.SetCellValue(sheet, cell, v)
		}
	}
}

// writeProjectData persists company data, the revision and explicit
// per-item feature flags to the hidden ProjectData sheet. Sheet existence
// stays a derived projection of these flags, so the reader never has to
// rely on fragile name matching for workbooks this engine produced.
func writeProjectData(f *excelize.File, project *Project) {
	set := func(cell string, v string) { f.SetCellValue(projectDataSheet, cell, v) }

	set("A1", "Company")
	set("B1", project.Company)
	set("A2", "Address")
	set("B2", project.Address)
	set("A3", "Estimator_Full_Name")
	set("B3", project.Estimator)
	set("A4", "Revision")
	set("B4", project.Revision)
	set("A5", "Level_Names")
	levelNames := make([]string, len(project.Levels))
	for i, level := range project.Levels {
		levelNames[i] = level.Name
	}
	set("B5", strings.Join(levelNames, "|"))

	row := 7
	for _, level := range project.Levels {
		for _, area := range level.Areas {
			var areaFlags []string
			if area.Options.UVControl {
				areaFlags = append(areaFlags, "uv_control")
			}
			if area.Options.RecoAir {
				areaFlags = append(areaFlags, "recoair")
			}
			if area.Options.Reactaway {
				areaFlags = append(areaFlags, "reactaway")
			}
			set(fmt.Sprintf("A%d", row), fmt.Sprintf("Area:%s|%s", level.Name, area.Name))
			set(fmt.Sprintf("B%d", row), strings.Join(areaFlags, ","))
			row++

			for _, item := range area.Items {
				var flags []string
				if item.Options.FireSuppression {
					flags = append(flags, "fire_suppression")
				}
				if item.Options.UVC {
					flags = append(flags, "uvc")
				}
				if item.Options.SDU {
					flags = append(flags, "sdu")
				}
				set(fmt.Sprintf("A%d", row), "Flags:"+NormalizeRef(item.Ref))
				set(fmt.Sprintf("B%d", row), strings.Join(flags, ","))
				row++

				if cl := item.Options.WallCladding; cl != nil {
					set(fmt.Sprintf("A%d", row), "Cladding:"+NormalizeRef(item.Ref))
					set(fmt.Sprintf("B%d", row), fmt.Sprintf("%s|%s|%.2f",
						cl.Dimensions(), strings.Join(cl.Positions, "/"), cl.Price))
					row++
				}
			}
		}
	}
}

// addCanopyDropdowns attaches list validations to each canopy block's
// selection cells, fed from the hidden Lists sheet.
func addCanopyDropdowns(f *excelize.File, sheet string, blocks int) {
	for i := 0; i < blocks; i++ {
		base := itemStartRow + i*itemRowSpacing
		addDropdown(f, sheet, fmt.Sprintf("C%d", base), ConfigurationOptions)
		addDropdown(f, sheet, fmt.Sprintf("D%d", base), CanopyModels)
		addDropdown(f, sheet, fmt.Sprintf("C%d", base+1), LightingOptions)
	}
}

// addFireSuppDropdowns attaches system and tank validations to each fire
// suppression block.
func addFireSuppDropdowns(f *excelize.File, sheet string, blocks int) {
	for i := 0; i < blocks; i++ {
		base := itemStartRow + i*itemRowSpacing
		addDropdown(f, sheet, fmt.Sprintf("C%d", base+2), FireSystemOptions)
		addDropdown(f, sheet, fmt.Sprintf("C%d", base+3), TankOptions)
	}
}

func addDropdown(f *excelize.File, sheet, cell string, options []string) {
	dv := excelize.NewDataValidation(true)
	dv.Sqref = cell
	if err := dv.SetDropList(options); err != nil {
		return
	}
	f.AddDataValidation(sheet, dv)
}

// checkWorkbookIntegrity asserts that no in-use sheet was removed and no
// unused pool sheet or helper sheet was left visible.
func checkWorkbookIntegrity(f *excelize.File, inUse []string) error {
	remaining := map[string]bool{}
	for _, name := range f.GetSheetList() {
		remaining[name] = true
	}

	for _, name := range inUse {
		if !remaining[name] {
			return fmt.Errorf("integrity: in-use sheet %q was removed", name)
		}
		visible, err := f.GetSheetVisible(name)
		if err != nil || !visible {
			return fmt.Errorf("integrity: in-use sheet %q is not visible", name)
		}
	}

	for name := range remaining {
		if isPoolSheetName(name) {
			return fmt.Errorf("integrity: unused template sheet %q was not removed", name)
		}
		if name == listsSheet || name == projectDataSheet {
			visible, err := f.GetSheetVisible(name)
			if err == nil && visible {
				return fmt.Errorf("integrity: helper sheet %q left visible", name)
			}
		}
	}
	return nil
}

// isPoolSheetName matches the template pool naming scheme ("CANOPY 3"):
// a kind prefix followed by a bare index, never the " - " of in-use names.
func isPoolSheetName(name string) bool {
	if strings.Contains(name, " - ") {
		return false
	}
	for kind := range poolSizes {
		if strings.HasPrefix(name, string(kind)+" ") {
			return true
		}
	}
	return false
}

// BuildTemplateWorkbook constructs the master template: the JOB TOTAL
// sheet, the hidden Lists and ProjectData sheets, and the hidden satellite
// sheet pool for every equipment kind.
func BuildTemplateWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), jobTotalSheet); err != nil {
		return nil, fmt.Errorf("create %s: %w", jobTotalSheet, err)
	}
	f.SetCellValue(jobTotalSheet, "A1", "JOB TOTAL")
	f.SetCellValue(jobTotalSheet, "B3", "Job No")
	f.SetCellValue(jobTotalSheet, "B5", "Customer")
	f.SetCellValue(jobTotalSheet, "B7", "Sales Manager / Estimator")
	f.SetCellValue(jobTotalSheet, "F3", "Project Name")
	f.SetCellValue(jobTotalSheet, "F5", "Location")
	f.SetCellValue(jobTotalSheet, "F7", "Date")

	if err := buildListsSheet(f); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(projectDataSheet); err != nil {
		return nil, fmt.Errorf("create %s: %w", projectDataSheet, err)
	}
	if err := f.SetSheetVisible(projectDataSheet, false); err != nil {
		return nil, fmt.Errorf("hide %s: %w", projectDataSheet, err)
	}

	for _, kind := range []EquipmentKind{KindCanopy, KindFireSuppression, KindRecoAir, KindSDU, KindUVC} {
		for i := 1; i <= poolSizes[kind]; i++ {
			name := PoolSheetName(kind, i)
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("create pool sheet %s: %w", name, err)
			}
			f.SetCellValue(name, "A3", "Job No")
			f.SetCellValue(name, "A5", "Customer")
			f.SetCellValue(name, "A7", "Estimator")
			f.SetCellValue(name, "F3", "Project Name")
			f.SetCellValue(name, "F5", "Location")
			f.SetCellValue(name, "F7", "Date")
			f.SetCellValue(name, "M182", "Delivery")
			f.SetCellValue(name, "M193", "Commissioning")
			if err := f.SetSheetVisible(name, false); err != nil {
				return nil, fmt.Errorf("hide pool sheet %s: %w", name, err)
			}
		}
	}
	return f, nil
}

// buildListsSheet writes the dropdown source columns and hides the sheet.
func buildListsSheet(f *excelize.File) error {
	if _, err := f.NewSheet(listsSheet); err != nil {
		return fmt.Errorf("create %s: %w", listsSheet, err)
	}
	columns := map[string][]string{
		"A": LightingOptions,
		"B": ConfigurationOptions,
		"C": CanopyModels,
		"D": FireSystemOptions,
		"E": TankOptions,
	}
	for col, options := range columns {
		for i, opt := range options {
			f.SetCellValue(listsSheet, fmt.Sprintf("%s%d", col, i+1), opt)
		}
	}
	if err := f.SetSheetVisible(listsSheet, false); err != nil {
		return fmt.Errorf("hide %s: %w", listsSheet, err)
	}
	return nil
}
