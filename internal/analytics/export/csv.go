package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/gestfac/gestfac/internal/analytics"
)

// WriteKPICSV serialises the dashboard headline indicators to CSV.
func WriteKPICSV(w io.Writer, summary analytics.KPISummary, months []string) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Period", strings.Join(months, ",")},
		{"Revenue", formatFloat(summary.Revenue)},
		{"Direct Result", formatFloat(summary.DirectResult)},
		{"Indirect Costs", formatFloat(summary.IndirectCosts)},
		{"Net Profit", formatFloat(summary.NetProfit)},
		{"Total Costs", formatFloat(summary.TotalCosts)},
		{"Net Margin %", formatFloat(summary.NetMargin)},
		{"Average Margin %", formatFloat(summary.AverageMargin)},
		{"Efficiency Index %", formatFloat(summary.EfficiencyIndex)},
		{"Total Overdue", formatFloat(summary.TotalOverdue)},
		{"Payment Term Days", formatFloat(summary.PaymentTermDays)},
		{"Active Contracts", strconv.Itoa(summary.ActiveContracts)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteContractResultsCSV emits the per-contract dashboard lines as CSV.
func WriteContractResultsCSV(w io.Writer, results []analytics.ContractResult) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Contract", "Unit", "Revenue", "Direct Result", "Indirect Share", "Net Profit", "Net Margin %"}); err != nil {
		return err
	}
	for _, result := range results {
		if err := writer.Write([]string{
			result.Name,
			result.Unit,
			formatFloat(result.Revenue),
			formatFloat(result.DirectResult),
			formatFloat(result.IndirectShare),
			formatFloat(result.NetProfit),
			formatFloat(result.NetMargin),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTrendCSV emits the monthly movement as CSV.
func WriteTrendCSV(w io.Writer, points []analytics.TrendPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Month", "Revenue", "Direct Result"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{
			point.Month,
			formatFloat(point.Revenue),
			formatFloat(point.DirectResult),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
