// Package services implements the pricing, aggregation and document
// generation engine for kitchen ventilation cost sheets and quotations.
package services

import (
	"fmt"
	"strings"
)

// EquipmentKind identifies the family an equipment unit (and its satellite
// sheet) belongs to.
type EquipmentKind string

const (
	KindCanopy          EquipmentKind = "CANOPY"
	KindFireSuppression EquipmentKind = "FIRE SUPP"
	KindRecoAir         EquipmentKind = "RECOAIR"
	KindSDU             EquipmentKind = "SDU"
	KindUVC             EquipmentKind = "UV-C"
)

// PoolKind names a shared-cost pool attributed to an area or level rather
// than to a single unit.
type PoolKind string

const (
	PoolDelivery      PoolKind = "delivery"
	PoolCommissioning PoolKind = "commissioning"
)

// OptFloat is a numeric cell value that distinguishes "blank" from zero.
// A blank quantity contributes 0 to any sum but renders as a sentinel
// ("TBD" or "-") in documents, which is not the same thing as 0.
type OptFloat struct {
	Value float64
	Set   bool
}

// Float wraps a known value.
func Float(v float64) OptFloat {
	return OptFloat{Value: v, Set: true}
}

// Or returns the value, or 0 when blank.
func (o OptFloat) Or() float64 {
	if !o.Set {
		return 0
	}
	return o.Value
}

// Project is the mutable source of truth: metadata plus an ordered list of
// building levels. Everything else (PricingSummary, TemplateContext) is a
// pure derivation and is recomputed on every generation pass.
type Project struct {
	Name      string
	Number    string
	Customer  string
	Company   string
	Address   string
	Location  string
	Estimator string
	Date      string // DD/MM/YYYY
	Revision  string // "" before first revision, then "A", "B", ...
	Levels    []Level
}

// Level is one building level. Its name is user-editable and must survive a
// synthesize/read round-trip. Shared costs placed here apply to every area
// on the level; the same pool must not also appear at area scope.
type Level struct {
	Name        string
	Areas       []Area
	SharedCosts []CostPool
}

// Area is one kitchen area on a level.
type Area struct {
	Name        string
	Options     AreaOptions
	Items       []Item
	SharedCosts []CostPool
}

// AreaOptions are area-wide feature selections, chosen independently of any
// single item.
type AreaOptions struct {
	UVControl bool
	RecoAir   bool
	Reactaway bool
}

// CostPool is a delivery or commissioning cost scoped to one equipment kind
// within an area (or a level). It is never priced as its own line item; the
// distribution policy in pricing.go decides whether it is split across the
// units that triggered it or shown as an explicit subtotal row.
type CostPool struct {
	Kind   PoolKind
	Scope  EquipmentKind
	Amount float64
}

// Item is one priced equipment unit: a canopy or a RecoAir unit. Canopy
// options may spawn satellite units (fire suppression, SDU, UV-C) with their
// own prices; those are derived from the item, not separate tree nodes.
type Item struct {
	Ref           string // unique within project, join key between sheets
	Model         string // drives pricing-exception lookups
	Configuration string // Wall, Island, ...
	Kind          EquipmentKind
	BasePrice     float64
	Options       ItemOptions
	Spec          ItemSpec
}

// ItemOptions are independent per-item feature selections. Each true flag
// contributes a unit to the matching satellite sheet for the item's area
// (SDU sheets are scoped to the single item instead).
type ItemOptions struct {
	FireSuppression      bool
	FireSuppressionPrice float64
	UVC                  bool
	UVCPrice             float64
	SDU                  bool
	SDUPrice             float64
	WallCladding         *WallCladding
}

// WallCladding describes cladding attached to one canopy.
type WallCladding struct {
	Width     int
	Height    int
	Positions []string // e.g. ["rear", "left hand"]
	Price     float64
}

// Dimensions renders the cladding size in the sheet's "WxH" form.
func (w *WallCladding) Dimensions() string {
	return fmt.Sprintf("%dX%d", w.Width, w.Height)
}

// Description renders the cladding position in the quotation's prose form,
// e.g. "Cladding to rear and left hand walls".
func (w *WallCladding) Description() string {
	switch len(w.Positions) {
	case 0:
		return "Cladding to walls"
	case 1:
		return fmt.Sprintf("Cladding to %s walls", w.Positions[0])
	case 2:
		return fmt.Sprintf("Cladding to %s and %s walls", w.Positions[0], w.Positions[1])
	default:
		head := strings.Join(w.Positions[:len(w.Positions)-1], ", ")
		return fmt.Sprintf("Cladding to %s and %s walls", head, w.Positions[len(w.Positions)-1])
	}
}

// ItemSpec carries geometry and airflow figures. These are presentation
// data only -- never pricing inputs.
type ItemSpec struct {
	Length        OptFloat // mm
	Width         OptFloat // mm
	Height        OptFloat // mm
	Sections      OptFloat
	ExtractVolume OptFloat // m3/s
	ExtractStatic OptFloat // Pa
	MUAVolume     OptFloat // m3/s
	SupplyStatic  OptFloat // Pa
	LightingType  string
	TankQuantity  int // fire suppression tanks; 0 = not yet specified
}

// ValidationError is a single field-level problem found before generation.
// Nothing is emitted while any of these exist.
type ValidationError struct {
	Level   string `json:"level"`
	Area    string `json:"area"`
	Ref     string `json:"ref"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	loc := v.Level
	if v.Area != "" {
		loc += " / " + v.Area
	}
	if v.Ref != "" {
		loc += " / " + v.Ref
	}
	return fmt.Sprintf("%s: %s: %s", loc, v.Field, v.Message)
}

// Validate checks the project tree for problems that would make the
// generated artifacts ambiguous or unreadable.
func (p *Project) Validate() []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(p.Number) == "" {
		errs = append(errs, ValidationError{Field: "project_number", Message: "project number is required"})
	}
	if len(p.Levels) == 0 {
		errs = append(errs, ValidationError{Field: "levels", Message: "project has no levels"})
	}

	seen := map[string]string{}
	for _, level := range p.Levels {
		if strings.TrimSpace(level.Name) == "" {
			errs = append(errs, ValidationError{Field: "level_name", Message: "level name is required"})
		}
		for _, area := range level.Areas {
			if strings.TrimSpace(area.Name) == "" {
				errs = append(errs, ValidationError{
					Level: level.Name, Field: "area_name", Message: "area name is required",
				})
			}
			for _, item := range area.Items {
				ref := NormalizeRef(item.Ref)
				if ref == "" {
					errs = append(errs, ValidationError{
						Level: level.Name, Area: area.Name,
						Field: "reference", Message: "item has no reference code",
					})
					continue
				}
				if prev, ok := seen[ref]; ok {
					errs = append(errs, ValidationError{
						Level: level.Name, Area: area.Name, Ref: item.Ref,
						Field:   "reference",
						Message: fmt.Sprintf("duplicate reference code (also used in %s)", prev),
					})
				}
				seen[ref] = level.Name + " / " + area.Name
			}
		}
	}
	return errs
}

// NormalizeRef canonicalizes an item reference code for matching: upper
// case, trimmed. Free-text suffixes users append inside the spreadsheet are
// handled separately by RefMatches.
func NormalizeRef(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

// RefMatches reports whether a reference code read from a sheet refers to
// the given stored code, tolerating a free-text suffix appended by a user
// after the sheet was created ("1.01" matches "1.01 rev b").
func RefMatches(stored, fromSheet string) bool {
	s, f := NormalizeRef(stored), NormalizeRef(fromSheet)
	if s == "" || f == "" {
		return false
	}
	if s == f {
		return true
	}
	return strings.HasPrefix(f, s) || strings.HasPrefix(s, f)
}

// AllItems walks every item in tree order.
func (p *Project) AllItems() []Item {
	var items []Item
	for _, level := range p.Levels {
		for _, area := range level.Areas {
			items = append(items, area.Items...)
		}
	}
	return items
}

// Canopies returns the area's canopy items.
func (a *Area) Canopies() []Item {
	return a.itemsOfKind(KindCanopy)
}

// RecoAirUnits returns the area's RecoAir items.
func (a *Area) RecoAirUnits() []Item {
	return a.itemsOfKind(KindRecoAir)
}

func (a *Area) itemsOfKind(kind EquipmentKind) []Item {
	var out []Item
	for _, item := range a.Items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

// FireSuppressionItems returns the canopies that carry the fire suppression
// option, in item order. These populate the area's FIRE SUPP satellite sheet.
func (a *Area) FireSuppressionItems() []Item {
	var out []Item
	for _, item := range a.Items {
		if item.Options.FireSuppression {
			out = append(out, item)
		}
	}
	return out
}

// UVCItems returns the canopies that carry the UV-C option.
func (a *Area) UVCItems() []Item {
	var out []Item
	for _, item := range a.Items {
		if item.Options.UVC {
			out = append(out, item)
		}
	}
	return out
}

// Pool returns the pool of the given kind and scope from the slice, or a
// zero pool when absent.
func Pool(pools []CostPool, kind PoolKind, scope EquipmentKind) CostPool {
	for _, p := range pools {
		if p.Kind == kind && p.Scope == scope {
			return p
		}
	}
	return CostPool{Kind: kind, Scope: scope}
}
