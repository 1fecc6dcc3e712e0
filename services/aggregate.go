package services

// PricingSummary is the fully derived rollup of prices from item to area to
// level to project. It is recomputed from scratch on every generation pass
// and never mutated afterwards.
type PricingSummary struct {
	Levels    []LevelSummary
	Kinds     map[EquipmentKind]KindTotal
	Total     float64
	Anomalies []PricingAnomaly
}

// LevelSummary rolls up one building level.
type LevelSummary struct {
	Name  string
	Areas []AreaSummary
	Total float64
}

// AreaSummary breaks an area's total out by equipment kind. Delivery and
// Commissioning hold the explicit-row pools only (canopy and RecoAir
// scope); pools for the absorbed kinds are already inside the unit prices.
type AreaSummary struct {
	Level string
	Name  string

	CanopyPrices   []ItemPrice
	CladdingPrices []ItemPrice
	FireSuppPrices []ItemPrice
	SDUPrices      []ItemPrice
	UVCPrices      []ItemPrice
	RecoAirPrices  []ItemPrice

	CanopySubtotal    float64
	CladdingSubtotal  float64
	FireSuppSubtotal  float64
	AncillarySubtotal float64 // SDU + UV-C + RecoAir

	Delivery      float64
	Commissioning float64

	Total float64
}

// KindTotal is a project-wide count and price rollup for one equipment
// kind, used by the quotation's summary block.
type KindTotal struct {
	Count int
	Total float64
}

// Aggregate folds the project tree into a PricingSummary. The invariant
// Total == sum of level totals == sum of area totals holds exactly: every
// pool is rounded to cents once, at distribution time, and explicit rows
// are added to exactly one area total.
func Aggregate(project *Project) *PricingSummary {
	summary := &PricingSummary{Kinds: map[EquipmentKind]KindTotal{}}

	for _, level := range project.Levels {
		ls := LevelSummary{Name: level.Name}

		for areaIdx := range level.Areas {
			as := aggregateArea(level, areaIdx)
			summary.Anomalies = append(summary.Anomalies, as.anomalies...)
			ls.Areas = append(ls.Areas, as.AreaSummary)
			ls.Total = roundCents(ls.Total + as.Total)

			summary.count(KindCanopy, as.CanopyPrices)
			summary.count(KindFireSuppression, as.FireSuppPrices)
			summary.count(KindSDU, as.SDUPrices)
			summary.count(KindUVC, as.UVCPrices)
			summary.count(KindRecoAir, as.RecoAirPrices)
		}

		summary.Levels = append(summary.Levels, ls)
		summary.Total = roundCents(summary.Total + ls.Total)
	}
	return summary
}

type areaRollup struct {
	AreaSummary
	anomalies []PricingAnomaly
}

func aggregateArea(level Level, areaIdx int) areaRollup {
	area := level.Areas[areaIdx]
	as := areaRollup{AreaSummary: AreaSummary{Level: level.Name, Name: area.Name}}

	// Pools may live at area or at level scope; a level pool applies to the
	// whole level and is handed to each area exactly once by leaving it at
	// level scope and folding it into the first area of the level. That
	// fold happens in poolsFor, which prefers the area-scoped pool.
	pools := poolsFor(level, areaIdx)

	canopies := area.Canopies()
	as.CanopyPrices, _ = PriceUnits(KindCanopy, refsOf(canopies), basesOf(canopies), pools)
	as.CanopySubtotal = SumPrices(as.CanopyPrices)

	fsItems := area.FireSuppressionItems()
	fsPrices, fsAnomalies := PriceUnits(KindFireSuppression, refsOf(fsItems), fsBases(fsItems), pools)
	as.FireSuppPrices = fsPrices
	as.FireSuppSubtotal = SumPrices(fsPrices)
	tagAnomalies(fsAnomalies, level.Name, area.Name)
	as.anomalies = append(as.anomalies, fsAnomalies...)

	for _, item := range canopies {
		if item.Options.WallCladding != nil {
			as.CladdingPrices = append(as.CladdingPrices, ItemPrice{
				Ref:   item.Ref,
				Base:  item.Options.WallCladding.Price,
				Total: item.Options.WallCladding.Price,
			})
		}
	}
	as.CladdingSubtotal = SumPrices(as.CladdingPrices)

	sduItems := sduUnits(area)
	sduPrices, sduAnomalies := PriceUnits(KindSDU, refsOf(sduItems), sduBases(sduItems), pools)
	as.SDUPrices = sduPrices
	tagAnomalies(sduAnomalies, level.Name, area.Name)
	as.anomalies = append(as.anomalies, sduAnomalies...)

	uvcItems := area.UVCItems()
	uvcPrices, uvcAnomalies := PriceUnits(KindUVC, refsOf(uvcItems), uvcBases(uvcItems), pools)
	as.UVCPrices = uvcPrices
	tagAnomalies(uvcAnomalies, level.Name, area.Name)
	as.anomalies = append(as.anomalies, uvcAnomalies...)

	recoair := area.RecoAirUnits()
	as.RecoAirPrices, _ = PriceUnits(KindRecoAir, refsOf(recoair), basesOf(recoair), pools)

	as.AncillarySubtotal = roundCents(SumPrices(sduPrices) + SumPrices(uvcPrices) + SumPrices(as.RecoAirPrices))

	// Explicit pool rows: canopy and RecoAir scope only.
	as.Delivery = roundCents(Pool(pools, PoolDelivery, KindCanopy).Amount +
		Pool(pools, PoolDelivery, KindRecoAir).Amount)
	as.Commissioning = roundCents(Pool(pools, PoolCommissioning, KindCanopy).Amount +
		Pool(pools, PoolCommissioning, KindRecoAir).Amount)

	as.Total = roundCents(as.CanopySubtotal + as.CladdingSubtotal + as.FireSuppSubtotal +
		as.AncillarySubtotal + as.Delivery + as.Commissioning)
	return as
}

// poolsFor resolves which pools apply to the area at areaIdx. An area-scoped
// pool wins; a level-scoped pool is attributed to the level's first area
// only, so it is never double counted across sibling areas (even ones that
// happen to share a name).
func poolsFor(level Level, areaIdx int) []CostPool {
	pools := append([]CostPool{}, level.Areas[areaIdx].SharedCosts...)
	if areaIdx != 0 {
		return pools
	}
	for _, lp := range level.SharedCosts {
		if Pool(pools, lp.Kind, lp.Scope).Amount == 0 {
			pools = append(pools, lp)
		}
	}
	return pools
}

func (s *PricingSummary) count(kind EquipmentKind, prices []ItemPrice) {
	if len(prices) == 0 {
		return
	}
	kt := s.Kinds[kind]
	kt.Count += len(prices)
	kt.Total = roundCents(kt.Total + SumPrices(prices))
	s.Kinds[kind] = kt
}

func tagAnomalies(anomalies []PricingAnomaly, level, area string) {
	for i := range anomalies {
		anomalies[i].Level = level
		anomalies[i].Area = area
	}
}

func refsOf(items []Item) []string {
	refs := make([]string, len(items))
	for i, item := range items {
		refs[i] = item.Ref
	}
	return refs
}

func basesOf(items []Item) []float64 {
	bases := make([]float64, len(items))
	for i, item := range items {
		bases[i] = item.BasePrice
	}
	return bases
}

func fsBases(items []Item) []float64 {
	bases := make([]float64, len(items))
	for i, item := range items {
		bases[i] = item.Options.FireSuppressionPrice
	}
	return bases
}

func sduUnits(area Area) []Item {
	var out []Item
	for _, item := range area.Items {
		if item.Options.SDU {
			out = append(out, item)
		}
	}
	return out
}

func sduBases(items []Item) []float64 {
	bases := make([]float64, len(items))
	for i, item := range items {
		bases[i] = item.Options.SDUPrice
	}
	return bases
}

func uvcBases(items []Item) []float64 {
	bases := make([]float64, len(items))
	for i, item := range items {
		bases[i] = item.Options.UVCPrice
	}
	return bases
}
