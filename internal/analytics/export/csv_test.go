package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gestfac/gestfac/internal/analytics"
)

func TestWriteKPICSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteKPICSV(&buf, analytics.KPISummary{
		Revenue:         4000,
		NetProfit:       700,
		EfficiencyIndex: 100,
		ActiveContracts: 2,
	}, []string{"2025-05", "2025-06"})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "Metric,Value\n") {
		t.Fatalf("unexpected header: %s", out)
	}
	// Joined months contain a comma, so encoding/csv must quote the field.
	if !strings.Contains(out, `"2025-05,2025-06"`) {
		t.Fatalf("expected quoted period field, got %s", out)
	}
	if !strings.Contains(out, "Revenue,4000.00") {
		t.Fatalf("expected revenue row, got %s", out)
	}
	if !strings.Contains(out, "Active Contracts,2") {
		t.Fatalf("expected active contracts row, got %s", out)
	}
}

func TestWriteContractResultsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteContractResultsCSV(&buf, []analytics.ContractResult{
		{Name: "Hospital Central", Unit: "Norte", Revenue: 1000, DirectResult: 275, IndirectShare: 100, NetProfit: 175, NetMargin: 17.5},
	})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(lines))
	}
	if lines[1] != "Hospital Central,Norte,1000.00,275.00,100.00,175.00,17.50" {
		t.Fatalf("unexpected row %s", lines[1])
	}
}

func TestWriteTrendCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTrendCSV(&buf, []analytics.TrendPoint{
		{Month: "2025-05", Revenue: 1200, DirectResult: 300},
		{Month: "2025-06", Revenue: 0, DirectResult: 0},
	})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "2025-05,1200.00,300.00") {
		t.Fatalf("expected trend row, got %s", out)
	}
	if !strings.Contains(out, "2025-06,0.00,0.00") {
		t.Fatalf("expected zero row preserved, got %s", out)
	}
}
