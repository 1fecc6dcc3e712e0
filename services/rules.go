package services

import "strings"

// SpecField names a derived spec figure that an exception rule can suppress.
type SpecField string

const (
	FieldExtractVolume SpecField = "extract_volume"
	FieldExtractStatic SpecField = "extract_static"
	FieldMUAVolume     SpecField = "mua_volume"
	FieldSupplyStatic  SpecField = "supply_static"
)

// ModelRule suppresses spec fields for a model family. A suppressed field
// renders as the "not applicable" sentinel regardless of any stored number;
// it is never reported as zero.
type ModelRule struct {
	Prefix     string
	NullFields []SpecField
}

// modelRules is the exception table, matched by longest prefix. Water wash
// canopies (CMW*) have no meaningful extract static reading; models without
// a fresh-air supply section (the no-F families) have no make-up air volume
// or supply static.
var modelRules = []ModelRule{
	{Prefix: "CMWI", NullFields: []SpecField{FieldExtractStatic, FieldMUAVolume, FieldSupplyStatic}},
	{Prefix: "CMWF", NullFields: []SpecField{FieldExtractStatic}},
	{Prefix: "CMW", NullFields: []SpecField{FieldExtractStatic}},
	{Prefix: "KVI", NullFields: []SpecField{FieldMUAVolume, FieldSupplyStatic}},
	{Prefix: "KVX", NullFields: []SpecField{FieldMUAVolume, FieldSupplyStatic}},
	{Prefix: "KVD", NullFields: []SpecField{FieldMUAVolume, FieldSupplyStatic}},
	{Prefix: "UVI", NullFields: []SpecField{FieldMUAVolume, FieldSupplyStatic}},
	{Prefix: "KSW", NullFields: []SpecField{FieldMUAVolume, FieldSupplyStatic}},
}

// RuleFor returns the exception rule for a model identifier, matching the
// longest table prefix. An unknown model gets an empty rule and pricing
// proceeds with the raw fields.
func RuleFor(model string) ModelRule {
	m := strings.ToUpper(strings.TrimSpace(model))
	best := ModelRule{}
	for _, rule := range modelRules {
		if strings.HasPrefix(m, rule.Prefix) && len(rule.Prefix) > len(best.Prefix) {
			best = rule
		}
	}
	return best
}

// Suppresses reports whether the rule nulls the given field.
func (r ModelRule) Suppresses(field SpecField) bool {
	for _, f := range r.NullFields {
		if f == field {
			return true
		}
	}
	return false
}
