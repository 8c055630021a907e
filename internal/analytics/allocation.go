package analytics

import (
	"github.com/google/uuid"

	"github.com/gestfac/gestfac/internal/finance"
)

// ContractTotals accumulates a contract's revenue and direct result over the
// period.
type ContractTotals struct {
	Revenue      float64
	DirectResult float64
}

// ReduceByContract folds entries into per-contract totals. The direct result
// of each entry falls back to net revenue minus total costs when the stored
// final result was never closed; callers must not assume it is populated.
func ReduceByContract(entries []finance.Entry) map[uuid.UUID]ContractTotals {
	totals := make(map[uuid.UUID]ContractTotals, len(entries))
	for _, e := range entries {
		t := totals[e.ContractID]
		t.Revenue += e.NetRevenue
		t.DirectResult += e.Result()
		totals[e.ContractID] = t
	}
	return totals
}

// TotalRevenue sums revenue across the reduced totals.
func TotalRevenue(totals map[uuid.UUID]ContractTotals) float64 {
	var sum float64
	for _, t := range totals {
		sum += t.Revenue
	}
	return sum
}

// TotalDirectResult sums direct result across the reduced totals.
func TotalDirectResult(totals map[uuid.UUID]ContractTotals) float64 {
	var sum float64
	for _, t := range totals {
		sum += t.DirectResult
	}
	return sum
}

// AllocateIndirect distributes the period's indirect cost total onto
// contracts pro rata by revenue share. When the revenue base is zero every
// share is exactly 0 even if the indirect total is positive: there is no
// sane allocation key without revenue.
func AllocateIndirect(indirectTotal float64, totals map[uuid.UUID]ContractTotals) map[uuid.UUID]float64 {
	shares := make(map[uuid.UUID]float64, len(totals))
	totalRevenue := TotalRevenue(totals)
	for id, t := range totals {
		if totalRevenue > 0 {
			shares[id] = indirectTotal * (t.Revenue / totalRevenue)
		} else {
			shares[id] = 0
		}
	}
	return shares
}
