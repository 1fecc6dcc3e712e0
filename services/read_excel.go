package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SkippedSheet records a sheet the reader could not reconstruct. Reading
// continues; the caller decides what to do with the partial result.
type SkippedSheet struct {
	Sheet  string `json:"sheet"`
	Reason string `json:"reason"`
}

// ReadReport is the partial-result report of one workbook read.
type ReadReport struct {
	Skipped  []SkippedSheet `json:"skipped"`
	Warnings []string       `json:"warnings"`
}

// ReadWorkbook parses a cost-sheet workbook back into a project tree and a
// freshly aggregated pricing summary. Feature flags come from the hidden
// ProjectData sheet when present; for foreign workbooks they are inferred
// from which satellite sheets exist. Unreadable sheets are skipped and
// reported, not fatal.
func ReadWorkbook(r io.Reader) (*Project, *PricingSummary, *ReadReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	report := &ReadReport{}
	project := &Project{}
	readProjectMetadata(f, project)
	meta := readProjectDataSheet(f, project)

	sheets := f.GetSheetList()

	// Canopy sheets first: they define the tree shape every satellite
	// sheet joins onto.
	for _, sheet := range sheets {
		if !strings.HasPrefix(sheet, string(KindCanopy)+" - ") {
			continue
		}
		if err := readCanopySheet(f, sheet, project, report); err != nil {
			report.Skipped = append(report.Skipped, SkippedSheet{Sheet: sheet, Reason: err.Error()})
		}
	}
	for _, sheet := range sheets {
		switch {
		case strings.HasPrefix(sheet, string(KindFireSuppression)+" - "):
			if err := readFireSuppSheet(f, sheet, project); err != nil {
				report.Skipped = append(report.Skipped, SkippedSheet{Sheet: sheet, Reason: err.Error()})
			}
		case strings.HasPrefix(sheet, string(KindUVC)+" - "):
			if err := readUVCSheet(f, sheet, project); err != nil {
				report.Skipped = append(report.Skipped, SkippedSheet{Sheet: sheet, Reason: err.Error()})
			}
		case strings.HasPrefix(sheet, string(KindRecoAir)+" - "):
			if err := readRecoAirSheet(f, sheet, project, report); err != nil {
				report.Skipped = append(report.Skipped, SkippedSheet{Sheet: sheet, Reason: err.Error()})
			}
		case strings.HasPrefix(sheet, string(KindSDU)+" - "):
			if err := readSDUSheet(f, sheet, project); err != nil {
				report.Skipped = append(report.Skipped, SkippedSheet{Sheet: sheet, Reason: err.Error()})
			}
		}
	}

	meta.apply(project)
	orderLevels(project, meta.levelOrder)

	summary := Aggregate(project)
	report.Warnings = appendAnomalyWarnings(report.Warnings, summary.Anomalies)
	return project, summary, report, nil
}

func appendAnomalyWarnings(warnings []string, anomalies []PricingAnomaly) []string {
	for _, a := range anomalies {
		warnings = append(warnings, a.String())
	}
	return warnings
}

// readProjectMetadata pulls the fixed metadata cells from JOB TOTAL,
// falling back to the first canopy sheet for workbooks without one.
func readProjectMetadata(f *excelize.File, project *Project) {
	sheet := jobTotalSheet
	if idx, _ := f.GetSheetIndex(jobTotalSheet); idx < 0 {
		for _, name := range f.GetSheetList() {
			if strings.HasPrefix(name, string(KindCanopy)+" - ") {
				sheet = name
				break
			}
		}
	}
	cell := func(ref string) string {
		v, _ := f.GetCellValue(sheet, ref)
		return strings.TrimSpace(v)
	}
	project.Number = cell(metadataCells["project_number"])
	project.Customer = cell(metadataCells["customer"])
	project.Estimator = cell(metadataCells["estimator"]) // initials; ProjectData may replace
	project.Name = cell(metadataCells["project_name"])
	project.Location = cell(metadataCells["location"])
	project.Date = cell(metadataCells["date"])
}

// projectDataMeta holds what the hidden ProjectData sheet declared, applied
// after all structural sheets are read so explicit flags win over
// inference.
type projectDataMeta struct {
	present    bool
	levelOrder []string
	itemFlags  map[string]string // normalized ref -> csv flags
	areaFlags  map[string]string // "level|area" -> csv flags
	cladding   map[string]string // normalized ref -> "WxH|positions|price"
}

func readProjectDataSheet(f *excelize.File, project *Project) *projectDataMeta {
	meta := &projectDataMeta{
		itemFlags: map[string]string{},
		areaFlags: map[string]string{},
		cladding:  map[string]string{},
	}
	if idx, _ := f.GetSheetIndex(projectDataSheet); idx < 0 {
		return meta
	}
	meta.present = true

	cell := func(ref string) string {
		v, _ := f.GetCellValue(projectDataSheet, ref)
		return strings.TrimSpace(v)
	}
	if v := cell("B1"); v != "" {
		project.Company = v
	}
	if v := cell("B2"); v != "" {
		project.Address = v
	}
	if v := cell("B3"); v != "" {
		project.Estimator = v
	}
	project.Revision = cell("B4")
	if v := cell("B5"); v != "" {
		meta.levelOrder = strings.Split(v, "|")
	}

	for row := 7; ; row++ {
		key := cell(fmt.Sprintf("A%d", row))
		if key == "" {
			break
		}
		value := cell(fmt.Sprintf("B%d", row))
		switch {
		case strings.HasPrefix(key, "Flags:"):
			meta.itemFlags[NormalizeRef(strings.TrimPrefix(key, "Flags:"))] = value
		case strings.HasPrefix(key, "Area:"):
			meta.areaFlags[strings.TrimPrefix(key, "Area:")] = value
		case strings.HasPrefix(key, "Cladding:"):
			meta.cladding[NormalizeRef(strings.TrimPrefix(key, "Cladding:"))] = value
		}
	}
	return meta
}

// apply overlays explicit ProjectData flags onto the reconstructed tree.
func (m *projectDataMeta) apply(project *Project) {
	if !m.present {
		return
	}
	for li := range project.Levels {
		level := &project.Levels[li]
		for ai := range level.Areas {
			area := &level.Areas[ai]
			if flags, ok := m.areaFlags[level.Name+"|"+area.Name]; ok {
				area.Options.UVControl = strings.Contains(flags, "uv_control")
				area.Options.RecoAir = strings.Contains(flags, "recoair")
				area.Options.Reactaway = strings.Contains(flags, "reactaway")
			}
			for ii := range area.Items {
				item := &area.Items[ii]
				if flags, ok := m.itemFlags[NormalizeRef(item.Ref)]; ok {
					item.Options.FireSuppression = item.Options.FireSuppression || strings.Contains(flags, "fire_suppression")
					item.Options.UVC = item.Options.UVC || strings.Contains(flags, "uvc")
					item.Options.SDU = item.Options.SDU || strings.Contains(flags, "sdu")
				}
				if spec, ok := m.cladding[NormalizeRef(item.Ref)]; ok && item.Options.WallCladding == nil {
					if cl := parseCladdingSpec(spec); cl != nil {
						item.Options.WallCladding = cl
					}
				}
			}
		}
	}
}

func parseCladdingSpec(spec string) *WallCladding {
	parts := strings.Split(spec, "|")
	if len(parts) != 3 {
		return nil
	}
	dims := strings.SplitN(strings.ToUpper(parts[0]), "X", 2)
	if len(dims) != 2 {
		return nil
	}
	width, err1 := strconv.Atoi(strings.TrimSpace(dims[0]))
	height, err2 := strconv.Atoi(strings.TrimSpace(dims[1]))
	if err1 != nil || err2 != nil {
		return nil
	}
	price, _ := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	cl := &WallCladding{Width: width, Height: height, Price: price}
	if parts[1] != "" {
		cl.Positions = strings.Split(parts[1], "/")
	}
	return cl
}

// splitSheetTitle parses a B1 title of the form "{level} - {area}" with an
// optional trailing segment (the item ref on SDU sheets).
func splitSheetTitle(title string, wantSuffix bool) (level, area, suffix string, err error) {
	parts := strings.Split(title, " - ")
	min := 2
	if wantSuffix {
		min = 3
	}
	if len(parts) < min {
		return "", "", "", fmt.Errorf("unexpected sheet title %q", title)
	}
	if wantSuffix {
		return parts[0], strings.Join(parts[1:len(parts)-1], " - "), parts[len(parts)-1], nil
	}
	return parts[0], strings.Join(parts[1:], " - "), "", nil
}

func readCanopySheet(f *excelize.File, sheet string, project *Project, report *ReadReport) error {
	title, _ := f.GetCellValue(sheet, "B1")
	levelName, areaName, _, err := splitSheetTitle(title, false)
	if err != nil {
		return err
	}
	area := findOrAddArea(project, levelName, areaName)

	for block := 0; block < MaxItemsPerSheet; block++ {
		base := itemStartRow + block*itemRowSpacing
		ref, _ := f.GetCellValue(sheet, fmt.Sprintf("B%d", base-2))
		ref = strings.TrimSpace(ref)
		if ref == "" || isPlaceholderRef(ref) {
			continue
		}

		model, _ := f.GetCellValue(sheet, fmt.Sprintf("D%d", base))
		config, _ := f.GetCellValue(sheet, fmt.Sprintf("C%d", base))
		lighting, _ := f.GetCellValue(sheet, fmt.Sprintf("C%d", base+1))

		item := Item{
			Ref:           ref,
			Model:         strings.TrimSpace(model),
			Configuration: strings.TrimSpace(config),
			Kind:          KindCanopy,
			BasePrice:     readNumber(f, sheet, fmt.Sprintf("N%d", base-2)).Or(),
			Spec: ItemSpec{
				Width:         readNumber(f, sheet, fmt.Sprintf("E%d", base)),
				Length:        readNumber(f, sheet, fmt.Sprintf("F%d", base)),
				Height:        readNumber(f, sheet, fmt.Sprintf("G%d", base)),
				Sections:      readNumber(f, sheet, fmt.Sprintf("H%d", base)),
				ExtractVolume: readNumber(f, sheet, fmt.Sprintf("I%d", base)),
				MUAVolume:     readNumber(f, sheet, fmt.Sprintf("K%d", base)),
				SupplyStatic:  readNumber(f, sheet, fmt.Sprintf("L%d", base)),
				ExtractStatic: readNumber(f, sheet, fmt.Sprintf("F%d", base+8)),
				LightingType:  strings.TrimSpace(lighting),
			},
		}

		if dims, _ := f.GetCellValue(sheet, fmt.Sprintf("P%d", base-2)); strings.TrimSpace(dims) != "" {
			positions, _ := f.GetCellValue(sheet, fmt.Sprintf("Q%d", base-2))
			price := readNumber(f, sheet, fmt.Sprintf("R%d", base-2)).Or()
			if cl := parseCladdingSpec(fmt.Sprintf("%s|%s|%.2f", strings.TrimSpace(dims), strings.TrimSpace(positions), price)); cl != nil {
				item.Options.WallCladding = cl
			} else {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("%s: unreadable cladding dimensions %q for %s", sheet, dims, ref))
			}
		}

		area.Items = append(area.Items, item)
	}

	addPool(area, PoolDelivery, KindCanopy, readNumber(f, sheet, deliveryCell).Or())
	addPool(area, PoolCommissioning, KindCanopy, readNumber(f, sheet, commissioningCell).Or())
	return nil
}

func readFireSuppSheet(f *excelize.File, sheet string, project *Project) error {
	title, _ := f.GetCellValue(sheet, "B1")
	levelName, areaName, _, err := splitSheetTitle(title, false)
	if err != nil {
		return err
	}
	area := findOrAddArea(project, levelName, areaName)

	for block := 0; block < MaxItemsPerSheet; block++ {
		base := itemStartRow + block*itemRowSpacing
		ref, _ := f.GetCellValue(sheet, fmt.Sprintf("B%d", base-2))
		ref = strings.TrimSpace(ref)
		if ref == "" || isPlaceholderRef(ref) {
			continue
		}
		item := findItem(area, ref)
		if item == nil {
			// Unit priced on the fire suppression sheet without a canopy
			// counterpart: keep it as its own item so its price survives.
			area.Items = append(area.Items, Item{Ref: ref, Kind: KindCanopy})
			item = &area.Items[len(area.Items)-1]
		}
		item.Options.FireSuppression = true
		item.Options.FireSuppressionPrice = readNumber(f, sheet, fmt.Sprintf("N%d", base-2)).Or()
		tank, _ := f.GetCellValue(sheet, fmt.Sprintf("C%d", base+3))
		item.Spec.TankQuantity = extractTankQuantity(tank)
	}

	addPool(area, PoolDelivery, KindFireSuppression, readNumber(f, sheet, deliveryCell).Or())
	return nil
}

func readUVCSheet(f *excelize.File, sheet string, project *Project) error {
	title, _ := f.GetCellValue(sheet, "B1")
	levelName, areaName, _, err := splitSheetTitle(title, false)
	if err != nil {
		return err
	}
	area := findOrAddArea(project, levelName, areaName)
	area.Options.UVControl = true

	for block := 0; block < MaxItemsPerSheet; block++ {
		base := itemStartRow + block*itemRowSpacing
		ref, _ := f.GetCellValue(sheet, fmt.Sprintf("B%d", base-2))
		ref = strings.TrimSpace(ref)
		if ref == "" || isPlaceholderRef(ref) {
			continue
		}
		item := findItem(area, ref)
		if item == nil {
			// UV-C priced without a canopy counterpart: keep it as its
			// own item so the price survives.
			area.Items = append(area.Items, Item{Ref: ref, Kind: KindCanopy})
			item = &area.Items[len(area.Items)-1]
		}
		item.Options.UVC = true
		item.Options.UVCPrice = readNumber(f, sheet, fmt.Sprintf("N%d", base-2)).Or()
	}

	addPool(area, PoolDelivery, KindUVC, readNumber(f, sheet, deliveryCell).Or())
	return nil
}

func readRecoAirSheet(f *excelize.File, sheet string, project *Project, report *ReadReport) error {
	title, _ := f.GetCellValue(sheet, "B1")
	levelName, areaName, _, err := splitSheetTitle(title, false)
	if err != nil {
		return err
	}
	area := findOrAddArea(project, levelName, areaName)
	area.Options.RecoAir = true

	for block := 0; block < MaxItemsPerSheet; block++ {
		base := itemStartRow + block*itemRowSpacing
		ref, _ := f.GetCellValue(sheet, fmt.Sprintf("B%d", base-2))
		ref = strings.TrimSpace(ref)
		if ref == "" || isPlaceholderRef(ref) {
			continue
		}
		model, _ := f.GetCellValue(sheet, fmt.Sprintf("D%d", base))
		area.Items = append(area.Items, Item{
			Ref:       ref,
			Model:     strings.TrimSpace(model),
			Kind:      KindRecoAir,
			BasePrice: readNumber(f, sheet, fmt.Sprintf("N%d", base-2)).Or(),
		})
	}

	addPool(area, PoolDelivery, KindRecoAir, readNumber(f, sheet, deliveryCell).Or())
	addPool(area, PoolCommissioning, KindRecoAir, readNumber(f, sheet, commissioningCell).Or())
	return nil
}

func readSDUSheet(f *excelize.File, sheet string, project *Project) error {
	title, _ := f.GetCellValue(sheet, "B1")
	levelName, areaName, ref, err := splitSheetTitle(title, true)
	if err != nil {
		return err
	}
	area := findOrAddArea(project, levelName, areaName)

	if v, _ := f.GetCellValue(sheet, "B12"); strings.TrimSpace(v) != "" {
		ref = strings.TrimSpace(v)
	}
	item := findItem(area, ref)
	if item == nil {
		return fmt.Errorf("no item matching reference %q", ref)
	}
	item.Options.SDU = true
	item.Options.SDUPrice = readNumber(f, sheet, "N12").Or()

	addPool(area, PoolDelivery, KindSDU, readNumber(f, sheet, deliveryCell).Or())
	return nil
}

// findOrAddArea locates the level and area by name, creating them in
// encounter order the first time a sheet mentions them.
func findOrAddArea(project *Project, levelName, areaName string) *Area {
	for li := range project.Levels {
		if project.Levels[li].Name != levelName {
			continue
		}
		level := &project.Levels[li]
		for ai := range level.Areas {
			if level.Areas[ai].Name == areaName {
				return &level.Areas[ai]
			}
		}
		level.Areas = append(level.Areas, Area{Name: areaName})
		return &level.Areas[len(level.Areas)-1]
	}
	project.Levels = append(project.Levels, Level{Name: levelName, Areas: []Area{{Name: areaName}}})
	return &project.Levels[len(project.Levels)-1].Areas[0]
}

// findItem matches a reference code from a satellite sheet to an item,
// tolerating user-appended suffixes.
func findItem(area *Area, ref string) *Item {
	for i := range area.Items {
		if RefMatches(area.Items[i].Ref, ref) {
			return &area.Items[i]
		}
	}
	return nil
}

// addPool records a non-zero pool exactly once per (kind, scope).
func addPool(area *Area, kind PoolKind, scope EquipmentKind, amount float64) {
	if amount == 0 {
		return
	}
	for _, p := range area.SharedCosts {
		if p.Kind == kind && p.Scope == scope {
			return
		}
	}
	area.SharedCosts = append(area.SharedCosts, CostPool{Kind: kind, Scope: scope, Amount: amount})
}

// orderLevels restores the level order recorded at synthesis time; levels
// not in the recorded order keep their encounter position at the end.
func orderLevels(project *Project, order []string) {
	if len(order) == 0 {
		return
	}
	rank := map[string]int{}
	for i, name := range order {
		rank[name] = i
	}
	ordered := make([]Level, 0, len(project.Levels))
	for _, name := range order {
		for _, level := range project.Levels {
			if level.Name == name {
				ordered = append(ordered, level)
			}
		}
	}
	for _, level := range project.Levels {
		if _, ok := rank[level.Name]; !ok {
			ordered = append(ordered, level)
		}
	}
	project.Levels = ordered
}

// isPlaceholderRef filters the template's example rows.
func isPlaceholderRef(ref string) bool {
	up := strings.ToUpper(strings.TrimSpace(ref))
	return up == "ITEM" || up == "CANOPY TYPE"
}

// readNumber reads a numeric cell. Blank and dash cells stay unset (they
// sum as zero but display as a sentinel); unit suffixes like "Pa" are
// stripped before parsing.
func readNumber(f *excelize.File, sheet, cell string) OptFloat {
	raw, err := f.GetCellValue(sheet, cell)
	if err != nil {
		return OptFloat{}
	}
	return ParseNumeric(raw)
}

// ParseNumeric converts a cell string to an OptFloat, tolerating a unit
// suffix ("150 Pa" -> 150) and treating "", "-" and stray text as unset.
func ParseNumeric(raw string) OptFloat {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return OptFloat{}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(v)
	}

	// Keep the leading numeric run, dropping a trailing unit.
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && c == '-') {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return OptFloat{}
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return OptFloat{}
	}
	return Float(v)
}

// extractTankQuantity pulls the leading count out of tank selections like
// "2 TANK" or "2 TANK DISTANCE"; 0 means unspecified.
func extractTankQuantity(raw string) int {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" || s == "-" {
		return 0
	}
	for _, part := range strings.Fields(s) {
		if n, err := strconv.Atoi(part); err == nil {
			return n
		}
	}
	return 0
}
