package analytics

import (
	"sort"

	"github.com/google/uuid"

	"github.com/gestfac/gestfac/internal/contracts"
)

// ContractResult is the per-contract line of the dashboard after indirect
// allocation.
type ContractResult struct {
	ContractID    uuid.UUID `json:"contract_id"`
	Name          string    `json:"name"`
	Unit          string    `json:"unit"`
	Revenue       float64   `json:"revenue"`
	DirectResult  float64   `json:"direct_result"`
	IndirectShare float64   `json:"indirect_share"`
	NetProfit     float64   `json:"net_profit"`
	NetMargin     float64   `json:"net_margin"`
}

// KPISummary contains the headline indicators of the dashboard.
type KPISummary struct {
	Revenue         float64 `json:"revenue"`
	DirectResult    float64 `json:"direct_result"`
	IndirectCosts   float64 `json:"indirect_costs"`
	NetProfit       float64 `json:"net_profit"`
	TotalCosts      float64 `json:"total_costs"`
	NetMargin       float64 `json:"net_margin"`
	AverageMargin   float64 `json:"average_margin"`
	EfficiencyIndex float64 `json:"efficiency_index"`
	TotalOverdue    float64 `json:"total_overdue"`
	PaymentTermDays float64 `json:"payment_term_days"`
	ActiveContracts int     `json:"active_contracts"`
}

// Point is a chart-ready name/value pair.
type Point struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// BuildContractResults joins reduced totals and allocated shares with the
// contract register, producing dashboard lines in the contract input order.
// Contracts without entries in the period appear with zero figures only when
// active, so the ranking base matches the active register.
func BuildContractResults(register []contracts.Contract, totals map[uuid.UUID]ContractTotals, shares map[uuid.UUID]float64) []ContractResult {
	results := make([]ContractResult, 0, len(register))
	for _, c := range register {
		t := totals[c.ID]
		share := shares[c.ID]
		net := t.DirectResult - share
		results = append(results, ContractResult{
			ContractID:    c.ID,
			Name:          c.Name,
			Unit:          c.Unit,
			Revenue:       t.Revenue,
			DirectResult:  t.DirectResult,
			IndirectShare: share,
			NetProfit:     net,
			NetMargin:     ratio(net, t.Revenue) * 100,
		})
	}
	return results
}

// BuildKPISummary derives the headline indicators. Every ratio is guarded:
// a zero denominator yields 0, except the efficiency index which yields 100
// ("no data" counts as fully efficient).
//
// Total costs are back-calculated as (revenue - direct result) + indirect,
// because the stored final result already nets out direct costs; summing raw
// cost columns would double-count closed adjustments.
func BuildKPISummary(totals map[uuid.UUID]ContractTotals, indirectTotal float64, expectedMeasurements, onTimeMeasurements int) KPISummary {
	revenue := TotalRevenue(totals)
	direct := TotalDirectResult(totals)
	net := direct - indirectTotal

	efficiency := 100.0
	if expectedMeasurements > 0 {
		efficiency = float64(onTimeMeasurements) / float64(expectedMeasurements) * 100
	}

	return KPISummary{
		Revenue:         revenue,
		DirectResult:    direct,
		IndirectCosts:   indirectTotal,
		NetProfit:       net,
		TotalCosts:      (revenue - direct) + indirectTotal,
		NetMargin:       ratio(net, revenue) * 100,
		AverageMargin:   ratio(direct, revenue) * 100,
		EfficiencyIndex: efficiency,
	}
}

// TopContracts ranks results descending by direct result and keeps the first
// n. Stable sort: input order breaks ties.
func TopContracts(results []ContractResult, n int) []Point {
	ranked := rankByDirectResult(results)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return toPoints(ranked, func(r ContractResult) float64 { return r.DirectResult })
}

// BottomContracts keeps the last n of the same ranking, worst last-to-first.
func BottomContracts(results []ContractResult, n int) []Point {
	ranked := rankByDirectResult(results)
	if len(ranked) > n {
		ranked = ranked[len(ranked)-n:]
	}
	return toPoints(ranked, func(r ContractResult) float64 { return r.DirectResult })
}

// UnitRanking aggregates revenue per unit, descending.
func UnitRanking(results []ContractResult) []Point {
	byUnit := make(map[string]float64)
	order := make([]string, 0)
	for _, r := range results {
		unit := r.Unit
		if unit == "" {
			unit = "Sem unidade"
		}
		if _, seen := byUnit[unit]; !seen {
			order = append(order, unit)
		}
		byUnit[unit] += r.Revenue
	}
	points := make([]Point, 0, len(order))
	for _, unit := range order {
		points = append(points, Point{Name: unit, Value: byUnit[unit]})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Value > points[j].Value })
	return points
}

func rankByDirectResult(results []ContractResult) []ContractResult {
	ranked := make([]ContractResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].DirectResult > ranked[j].DirectResult })
	return ranked
}

func toPoints(results []ContractResult, value func(ContractResult) float64) []Point {
	points := make([]Point, 0, len(results))
	for _, r := range results {
		points = append(points, Point{Name: r.Name, Value: value(r)})
	}
	return points
}

// ratio divides guarding against a non-positive denominator.
func ratio(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	return 0
}
