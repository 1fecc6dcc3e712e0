package services

import (
	"fmt"
	"math"
)

// CostPolicy says how an equipment kind presents its shared costs.
// DistributeDelivery folds the delivery pool into unit prices; ExplicitRows
// keeps delivery and commissioning as their own subtotal rows instead.
// Exactly one of the two presentations applies per kind so no pool can be
// counted twice.
type CostPolicy struct {
	DistributeDelivery bool
	ExplicitRows       bool
}

// kindPolicies is the single distribution-policy table. Commissioning is
// never distributed: main equipment shows it as an explicit row and the
// absorbed kinds carry it inside their quoted unit price already.
var kindPolicies = map[EquipmentKind]CostPolicy{
	KindCanopy:          {DistributeDelivery: false, ExplicitRows: true},
	KindRecoAir:         {DistributeDelivery: false, ExplicitRows: true},
	KindFireSuppression: {DistributeDelivery: true, ExplicitRows: false},
	KindSDU:             {DistributeDelivery: true, ExplicitRows: false},
	KindUVC:             {DistributeDelivery: true, ExplicitRows: false},
}

// PolicyFor returns the cost policy for an equipment kind.
func PolicyFor(kind EquipmentKind) CostPolicy {
	return kindPolicies[kind]
}

// ItemPrice is the computed price of one unit: base plus its share of every
// distributed pool whose triggering feature it carries.
type ItemPrice struct {
	Ref           string
	Base          float64
	DeliveryShare float64
	Total         float64
}

// PricingAnomaly is a warning-level pricing problem. Generation still
// completes; the pool in question contributes zero instead of crashing.
type PricingAnomaly struct {
	Level   string `json:"level"`
	Area    string `json:"area"`
	Pool    string `json:"pool"`
	Message string `json:"message"`
}

func (a PricingAnomaly) String() string {
	return fmt.Sprintf("%s / %s: %s: %s", a.Level, a.Area, a.Pool, a.Message)
}

// DistributeShares splits a pool amount over n absorbers. One absorber
// takes the whole amount undivided. With several, each share is rounded to
// the cent and the remainder lands on the first absorber, so re-summing the
// shares always reconciles exactly with the pool.
func DistributeShares(amount float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{amount}
	}
	shares := make([]float64, n)
	even := roundCents(amount / float64(n))
	rest := amount
	for i := 1; i < n; i++ {
		shares[i] = even
		rest -= even
	}
	shares[0] = roundCents(rest)
	return shares
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// PriceUnits prices one equipment kind's units within a shared-cost scope.
// bases is keyed parallel to refs. The delivery pool is folded in only when
// the kind's policy distributes it; a pool with no absorber is surfaced as
// an anomaly and contributes zero to every total.
func PriceUnits(kind EquipmentKind, refs []string, bases []float64, pools []CostPool) ([]ItemPrice, []PricingAnomaly) {
	var anomalies []PricingAnomaly
	prices := make([]ItemPrice, len(refs))
	for i, ref := range refs {
		prices[i] = ItemPrice{Ref: ref, Base: bases[i], Total: bases[i]}
	}

	policy := PolicyFor(kind)
	delivery := Pool(pools, PoolDelivery, kind)
	if policy.DistributeDelivery && delivery.Amount != 0 {
		if len(prices) == 0 {
			anomalies = append(anomalies, PricingAnomaly{
				Pool:    string(delivery.Kind),
				Message: fmt.Sprintf("%s delivery pool of %.2f has no absorbing unit", kind, delivery.Amount),
			})
		} else {
			shares := DistributeShares(delivery.Amount, len(prices))
			for i := range prices {
				prices[i].DeliveryShare = shares[i]
				prices[i].Total = roundCents(prices[i].Base + shares[i])
			}
		}
	}
	return prices, anomalies
}

// SumPrices folds unit totals.
func SumPrices(prices []ItemPrice) float64 {
	var sum float64
	for _, p := range prices {
		sum += p.Total
	}
	return roundCents(sum)
}
