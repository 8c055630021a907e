package analytics

import (
	"github.com/gestfac/gestfac/internal/finance"
)

// TrendPoint conveys one month of revenue and result movement.
type TrendPoint struct {
	Month        string  `json:"month"`
	Revenue      float64 `json:"revenue"`
	DirectResult float64 `json:"direct_result"`
}

// MonthlyTrend projects the filtered entries onto the period months, one
// point per month in chronological order. Months without entries produce
// zero points so chart axes stay continuous.
func MonthlyTrend(entries []finance.Entry, months []string) []TrendPoint {
	index := make(map[string]int, len(months))
	points := make([]TrendPoint, len(months))
	for i, m := range months {
		index[m] = i
		points[i] = TrendPoint{Month: m}
	}
	for _, e := range entries {
		i, ok := index[truncMonth(e.ReferenceMonth)]
		if !ok {
			continue
		}
		points[i].Revenue += e.NetRevenue
		points[i].DirectResult += e.Result()
	}
	return points
}
