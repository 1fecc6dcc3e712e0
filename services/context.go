package services

import (
	"math"
	"strconv"
	"strings"
)

// Display sentinels used throughout quotation documents.
const (
	SentinelBlank = "-"
	SentinelTBD   = "TBD"
	SentinelNA    = "N/A"
)

// lightSelectionPlaceholder is the dropdown prompt some legacy workbooks
// carry in the lighting cell; it means "nothing chosen".
const lightSelectionPlaceholder = "LIGHT SELECTION"

// Namespace is the flat variable set a document template renders from.
type Namespace map[string]any

// ContextItem is one equipment unit as a quotation document shows it.
type ContextItem struct {
	Ref            string `json:"ref"`
	Model          string `json:"model"`
	Configuration  string `json:"configuration"`
	Length         string `json:"length"`
	Width          string `json:"width"`
	Height         string `json:"height"`
	Sections       string `json:"sections"`
	ExtractVolume  string `json:"extract_volume"`
	ExtractStatic  string `json:"extract_static"`
	MUAVolume      string `json:"mua_volume"`
	SupplyStatic   string `json:"supply_static"`
	Lighting       string `json:"lighting"`
	HasCladding    bool   `json:"has_cladding"`
	HasFireSupp    bool   `json:"has_fire_suppression"`
	HasUVC         bool   `json:"has_uvc"`
	HasSDU         bool   `json:"has_sdu"`
	BasePriceText  string `json:"base_price"`
	TotalPriceText string `json:"total_price"`
}

// ContextCladding is one wall cladding line.
type ContextCladding struct {
	Ref         string `json:"ref"`
	Description string `json:"description"`
	Dimensions  string `json:"dimensions"`
	PriceText   string `json:"price"`
}

// ContextFireSupp is one fire suppression line.
type ContextFireSupp struct {
	Ref       string `json:"ref"`
	TankText  string `json:"tanks"`
	PriceText string `json:"price"`
}

// ContextArea is one area record with its own subtotals and item list.
type ContextArea struct {
	Level             string            `json:"level"`
	Name              string            `json:"name"`
	Title             string            `json:"title"`
	Items             []ContextItem     `json:"items"`
	Cladding          []ContextCladding `json:"cladding"`
	FireSuppression   []ContextFireSupp `json:"fire_suppression"`
	HasUVControl      bool              `json:"has_uv_control"`
	HasRecoAir        bool              `json:"has_recoair"`
	HasReactaway      bool              `json:"has_reactaway"`
	CanopyTotalText   string            `json:"canopy_total"`
	CladdingTotalText string            `json:"cladding_total"`
	FireSuppTotalText string            `json:"fire_suppression_total"`
	DeliveryText      string            `json:"delivery"`
	CommissioningText string            `json:"commissioning"`
	TotalText         string            `json:"total"`
}

// BuildContext flattens a project and its pricing summary into the
// namespace quotation templates render from. It is a pure derivation:
// the same inputs always produce the same namespace.
func BuildContext(project *Project, summary *PricingSummary) Namespace {
	areas := buildContextAreas(project, summary)

	hasCanopies := false
	hasFireSupp := false
	hasUVC := false
	hasSDU := false
	hasRecoAir := false
	hasCladding := false
	hasUVControl := false
	hasReactaway := false
	for li := range project.Levels {
		for ai := range project.Levels[li].Areas {
			area := &project.Levels[li].Areas[ai]
			hasUVControl = hasUVControl || area.Options.UVControl
			hasRecoAir = hasRecoAir || area.Options.RecoAir
			hasReactaway = hasReactaway || area.Options.Reactaway
			for _, item := range area.Items {
				switch item.Kind {
				case KindCanopy:
					hasCanopies = true
				case KindRecoAir:
					hasRecoAir = true
				}
				hasFireSupp = hasFireSupp || item.Options.FireSuppression
				hasUVC = hasUVC || item.Options.UVC
				hasSDU = hasSDU || item.Options.SDU
				hasCladding = hasCladding || item.Options.WallCladding != nil
			}
		}
	}

	ns := Namespace{
		"project_number":     displayString(project.Number),
		"project_name":       displayString(project.Name),
		"customer":           displayString(project.Customer),
		"company":            displayString(project.Company),
		"address":            displayString(project.Address),
		"location":           displayString(project.Location),
		"estimator":          displayString(project.Estimator),
		"estimator_initials": Initials(project.Estimator),
		"date":               FormatDisplayDate(project.Date),
		"revision":           project.Revision,
		"quote_ref":          QuoteReference(project.Number, project.Date),

		"has_canopies":         hasCanopies,
		"has_fire_suppression": hasFireSupp,
		"has_uvc":              hasUVC,
		"has_sdu":              hasSDU,
		"has_recoair":          hasRecoAir,
		"has_cladding":         hasCladding,
		"has_uv_control":       hasUVControl,
		"has_reactaway":        hasReactaway,

		"areas":       areas,
		"total":       summary.Total,
		"total_text":  FormatGBP(summary.Total),
		"area_count":  len(areas),
		"level_count": len(project.Levels),
	}

	for kind, kt := range summary.Kinds {
		key := strings.ToLower(strings.NewReplacer(" ", "_", "-", "_").Replace(string(kind)))
		ns[key+"_count"] = kt.Count
		ns[key+"_total_text"] = FormatGBP(kt.Total)
	}

	scope := "project"
	if len(project.Levels) == 1 {
		scope = project.Levels[0].Name
	}
	ns["subject"] = strings.TrimSpace("Ventilation Quotation - " + displayString(project.Name) + " (" + scope + ")")
	ns["dear_line"] = dearLine(project.Customer)
	return ns
}

func buildContextAreas(project *Project, summary *PricingSummary) []ContextArea {
	byKey := map[string]*AreaSummary{}
	for li := range summary.Levels {
		for ai := range summary.Levels[li].Areas {
			as := &summary.Levels[li].Areas[ai]
			byKey[as.Level+"|"+as.Name] = as
		}
	}
	totalOf := func(prices []ItemPrice, ref string) float64 {
		for _, p := range prices {
			if p.Ref == ref {
				return p.Total
			}
		}
		return 0
	}

	var areas []ContextArea
	for li := range project.Levels {
		level := &project.Levels[li]
		for ai := range level.Areas {
			area := &level.Areas[ai]
			as := byKey[level.Name+"|"+area.Name]
			ca := ContextArea{
				Level:        level.Name,
				Name:         area.Name,
				Title:        level.Name + " - " + area.Name,
				HasUVControl: area.Options.UVControl,
				HasRecoAir:   area.Options.RecoAir,
				HasReactaway: area.Options.Reactaway,
			}
			for _, item := range area.Items {
				ci := buildContextItem(item)
				if as != nil {
					prices := as.CanopyPrices
					if item.Kind == KindRecoAir {
						prices = as.RecoAirPrices
					}
					ci.TotalPriceText = FormatGBP(totalOf(prices, item.Ref))
				}
				ca.Items = append(ca.Items, ci)

				if cl := item.Options.WallCladding; cl != nil {
					ca.Cladding = append(ca.Cladding, ContextCladding{
						Ref:         item.Ref,
						Description: cl.Description(),
						Dimensions:  cl.Dimensions(),
						PriceText:   FormatGBP(cl.Price),
					})
				}
				if item.Options.FireSuppression {
					ca.FireSuppression = append(ca.FireSuppression, ContextFireSupp{
						Ref:       item.Ref,
						TankText:  tankText(item.Spec.TankQuantity),
						PriceText: FormatGBP(totalOf(fsPrices(as), item.Ref)),
					})
				}
			}
			if as != nil {
				ca.CanopyTotalText = FormatGBP(as.CanopySubtotal)
				ca.CladdingTotalText = FormatGBP(as.CladdingSubtotal)
				ca.FireSuppTotalText = FormatGBP(as.FireSuppSubtotal)
				ca.DeliveryText = FormatGBP(as.Delivery)
				ca.CommissioningText = FormatGBP(as.Commissioning)
				ca.TotalText = FormatGBP(as.Total)
			}
			areas = append(areas, ca)
		}
	}
	return areas
}

func fsPrices(as *AreaSummary) []ItemPrice {
	if as == nil {
		return nil
	}
	return as.FireSuppPrices
}

func buildContextItem(item Item) ContextItem {
	rule := RuleFor(item.Model)
	spec := item.Spec
	return ContextItem{
		Ref:            item.Ref,
		Model:          displayString(item.Model),
		Configuration:  displayString(item.Configuration),
		Length:         DisplayNumber(spec.Length),
		Width:          DisplayNumber(spec.Width),
		Height:         DisplayNumber(spec.Height),
		Sections:       DisplayNumber(spec.Sections),
		ExtractVolume:  DisplayNumber(spec.ExtractVolume),
		ExtractStatic:  displaySpecField(rule, FieldExtractStatic, spec.ExtractStatic),
		MUAVolume:      displaySpecField(rule, FieldMUAVolume, spec.MUAVolume),
		SupplyStatic:   displaySpecField(rule, FieldSupplyStatic, spec.SupplyStatic),
		Lighting:       NormalizeLighting(spec.LightingType),
		HasCladding:    item.Options.WallCladding != nil,
		HasFireSupp:    item.Options.FireSuppression,
		HasUVC:         item.Options.UVC,
		HasSDU:         item.Options.SDU,
		BasePriceText:  FormatGBP(item.BasePrice),
		TotalPriceText: FormatGBP(item.BasePrice),
	}
}

// displaySpecField applies the per-model exception table: a suppressed
// field shows as not-applicable even when the cell held a number.
func displaySpecField(rule ModelRule, field SpecField, v OptFloat) string {
	if rule.Suppresses(field) {
		return SentinelNA
	}
	return DisplayNumber(v)
}

// DisplayNumber renders a quantity for documents: unset values show as
// the blank sentinel, set values round to one decimal place. The stored
// value stays authoritative for pricing.
func DisplayNumber(v OptFloat) string {
	if !v.Set {
		return SentinelBlank
	}
	rounded := math.Round(v.Value*10) / 10
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// NormalizeLighting collapses the dropdown's lighting variants to the two
// labels quotations use. The dropdown prompt, a blank, or anything outside
// that vocabulary renders as no selection.
func NormalizeLighting(raw string) string {
	up := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(up, "STRIP"):
		return "LED STRIP"
	case strings.Contains(up, "SPOT"):
		return "LED SPOTS"
	}
	return SentinelBlank
}

// tankText renders a tank count: zero means the estimator has not decided
// yet, so the document shows TBD rather than a number.
func tankText(n int) string {
	if n <= 0 {
		return SentinelTBD
	}
	if n == 1 {
		return "1 TANK"
	}
	return strconv.Itoa(n) + " TANK"
}

func displayString(s string) string {
	if strings.TrimSpace(s) == "" {
		return SentinelBlank
	}
	return strings.TrimSpace(s)
}

func dearLine(customer string) string {
	c := strings.TrimSpace(customer)
	if c == "" {
		return "Dear Sir/Madam,"
	}
	return "Dear " + c + ","
}
