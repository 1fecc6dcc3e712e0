package services

import (
	"math"
	"testing"
)

func sampleProject() *Project {
	return &Project{
		Name:     "Riverside Hotel",
		Number:   "P1023",
		Customer: "Acme Catering Ltd",
		Levels: []Level{
			{
				Name: "Ground Floor",
				Areas: []Area{
					{
						Name: "Main Kitchen",
						Items: []Item{
							{
								Ref:       "1.01",
								Model:     "KVF",
								Kind:      KindCanopy,
								BasePrice: 2500,
								Options: ItemOptions{
									FireSuppression:      true,
									FireSuppressionPrice: 1690,
									WallCladding:         &WallCladding{Width: 2000, Height: 1200, Positions: []string{"rear"}, Price: 450},
								},
								Spec: ItemSpec{Length: Float(2400), Width: Float(1200), ExtractVolume: Float(0.85), TankQuantity: 1},
							},
							{
								Ref:       "1.02",
								Model:     "CMWI",
								Kind:      KindCanopy,
								BasePrice: 3100,
								Options: ItemOptions{
									FireSuppression:      true,
									FireSuppressionPrice: 1200,
									UVC:                  true,
									UVCPrice:             900,
								},
								Spec: ItemSpec{Length: Float(3000), Width: Float(1300)},
							},
						},
						SharedCosts: []CostPool{
							{Kind: PoolDelivery, Scope: KindCanopy, Amount: 600},
							{Kind: PoolCommissioning, Scope: KindCanopy, Amount: 250},
							{Kind: PoolDelivery, Scope: KindFireSuppression, Amount: 800},
						},
					},
					{
						Name: "Servery",
						Items: []Item{
							{Ref: "1.03", Model: "KVX", Kind: KindCanopy, BasePrice: 1800},
						},
					},
				},
			},
		},
	}
}

func TestAggregateTotalsAreConsistent(t *testing.T) {
	summary := Aggregate(sampleProject())

	var areaSum float64
	for _, level := range summary.Levels {
		var levelSum float64
		for _, area := range level.Areas {
			levelSum += area.Total
		}
		if math.Abs(levelSum-level.Total) > 0.001 {
			t.Errorf("level %s total = %v, areas sum to %v", level.Name, level.Total, levelSum)
		}
		areaSum += level.Total
	}
	if math.Abs(areaSum-summary.Total) > 0.001 {
		t.Errorf("project total = %v, levels sum to %v", summary.Total, areaSum)
	}
}

func TestAggregateMainKitchen(t *testing.T) {
	summary := Aggregate(sampleProject())

	kitchen := summary.Levels[0].Areas[0]
	if kitchen.Name != "Main Kitchen" {
		t.Fatalf("first area = %q, want Main Kitchen", kitchen.Name)
	}

	// Canopy prices keep their base: canopy delivery stays an explicit row.
	if math.Abs(kitchen.CanopySubtotal-5600) > 0.001 {
		t.Errorf("canopy subtotal = %v, want 5600", kitchen.CanopySubtotal)
	}
	if math.Abs(kitchen.Delivery-600) > 0.001 {
		t.Errorf("delivery row = %v, want 600", kitchen.Delivery)
	}
	if math.Abs(kitchen.Commissioning-250) > 0.001 {
		t.Errorf("commissioning row = %v, want 250", kitchen.Commissioning)
	}

	// Fire suppression absorbs its delivery pool into unit prices:
	// 1690+1200 base with the 800 pool split on top.
	if math.Abs(kitchen.FireSuppSubtotal-3690) > 0.001 {
		t.Errorf("fire suppression subtotal = %v, want 3690 (2090+1600)", kitchen.FireSuppSubtotal)
	}
	for _, p := range kitchen.FireSuppPrices {
		switch p.Ref {
		case "1.01":
			if math.Abs(p.Total-2090) > 0.001 {
				t.Errorf("1.01 fire suppression = %v, want 2090", p.Total)
			}
		case "1.02":
			if math.Abs(p.Total-1600) > 0.001 {
				t.Errorf("1.02 fire suppression = %v, want 1600", p.Total)
			}
		}
	}

	if math.Abs(kitchen.CladdingSubtotal-450) > 0.001 {
		t.Errorf("cladding subtotal = %v, want 450", kitchen.CladdingSubtotal)
	}
	if math.Abs(kitchen.AncillarySubtotal-900) > 0.001 {
		t.Errorf("ancillary subtotal = %v, want 900 (UV-C only)", kitchen.AncillarySubtotal)
	}

	want := 5600.0 + 450 + 3690 + 900 + 600 + 250
	if math.Abs(kitchen.Total-want) > 0.001 {
		t.Errorf("area total = %v, want %v", kitchen.Total, want)
	}
}

func TestAggregateKindTotals(t *testing.T) {
	summary := Aggregate(sampleProject())

	if kt := summary.Kinds[KindCanopy]; kt.Count != 3 {
		t.Errorf("canopy count = %d, want 3", kt.Count)
	}
	if kt := summary.Kinds[KindFireSuppression]; kt.Count != 2 {
		t.Errorf("fire suppression count = %d, want 2", kt.Count)
	}
	if kt := summary.Kinds[KindUVC]; kt.Count != 1 || math.Abs(kt.Total-900) > 0.001 {
		t.Errorf("UV-C rollup = %+v, want count 1 total 900", kt)
	}
}

func TestAggregateLevelPoolFoldsIntoFirstAreaOnly(t *testing.T) {
	project := &Project{
		Number: "P2",
		Levels: []Level{
			{
				Name: "First Floor",
				SharedCosts: []CostPool{
					{Kind: PoolDelivery, Scope: KindCanopy, Amount: 500},
				},
				Areas: []Area{
					{Name: "Kitchen A", Items: []Item{{Ref: "1.01", Kind: KindCanopy, BasePrice: 1000}}},
					{Name: "Kitchen B", Items: []Item{{Ref: "2.01", Kind: KindCanopy, BasePrice: 1000}}},
				},
			},
		},
	}

	summary := Aggregate(project)
	a := summary.Levels[0].Areas[0]
	b := summary.Levels[0].Areas[1]

	if math.Abs(a.Delivery-500) > 0.001 {
		t.Errorf("first area delivery = %v, want 500", a.Delivery)
	}
	if b.Delivery != 0 {
		t.Errorf("second area delivery = %v, want 0 (level pool counted once)", b.Delivery)
	}
	if math.Abs(summary.Total-2500) > 0.001 {
		t.Errorf("project total = %v, want 2500", summary.Total)
	}
}

func TestAggregateLevelPoolWithDuplicateAreaNames(t *testing.T) {
	project := &Project{
		Number: "P4",
		Levels: []Level{
			{
				Name: "Ground Floor",
				SharedCosts: []CostPool{
					{Kind: PoolDelivery, Scope: KindCanopy, Amount: 500},
				},
				Areas: []Area{
					{Name: "Kitchen", Items: []Item{{Ref: "1.01", Kind: KindCanopy, BasePrice: 1000}}},
					{Name: "Kitchen", Items: []Item{{Ref: "2.01", Kind: KindCanopy, BasePrice: 1000}}},
				},
			},
		},
	}

	summary := Aggregate(project)
	a := summary.Levels[0].Areas[0]
	b := summary.Levels[0].Areas[1]

	if math.Abs(a.Delivery-500) > 0.001 {
		t.Errorf("first area delivery = %v, want 500", a.Delivery)
	}
	if b.Delivery != 0 {
		t.Errorf("second area delivery = %v, want 0 despite the shared name", b.Delivery)
	}
	if math.Abs(summary.Total-2500) > 0.001 {
		t.Errorf("project total = %v, want 2500", summary.Total)
	}
}

func TestAggregateSurfacesOrphanedPools(t *testing.T) {
	project := &Project{
		Number: "P3",
		Levels: []Level{
			{
				Name: "Ground Floor",
				Areas: []Area{
					{
						Name:  "Prep",
						Items: []Item{{Ref: "1.01", Kind: KindCanopy, BasePrice: 1000}},
						SharedCosts: []CostPool{
							{Kind: PoolDelivery, Scope: KindSDU, Amount: 400},
						},
					},
				},
			},
		},
	}

	summary := Aggregate(project)
	if len(summary.Anomalies) != 1 {
		t.Fatalf("got %d anomalies, want 1", len(summary.Anomalies))
	}
	a := summary.Anomalies[0]
	if a.Level != "Ground Floor" || a.Area != "Prep" {
		t.Errorf("anomaly located at %s / %s, want Ground Floor / Prep", a.Level, a.Area)
	}
	// The orphaned pool contributes zero; generation still completes.
	if math.Abs(summary.Total-1000) > 0.001 {
		t.Errorf("project total = %v, want 1000", summary.Total)
	}
}
