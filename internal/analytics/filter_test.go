package analytics

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gestfac/gestfac/internal/finance"
	"github.com/gestfac/gestfac/internal/receivables"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestFilterEntriesEmptyFilterPassesThrough(t *testing.T) {
	entries := []finance.Entry{
		{ContractID: uuid.New(), ReferenceMonth: "2025-01"},
		{ContractID: uuid.New(), ReferenceMonth: "2025-02"},
	}
	out := FilterEntries(entries, FilterState{})
	if !reflect.DeepEqual(out, entries) {
		t.Fatalf("empty filter must pass everything through, got %d of %d", len(out), len(entries))
	}
}

func TestFilterEntriesByMonthAndContract(t *testing.T) {
	keep := uuid.New()
	drop := uuid.New()
	entries := []finance.Entry{
		{ContractID: keep, ReferenceMonth: "2025-01"},
		{ContractID: keep, ReferenceMonth: "2025-03"},
		{ContractID: drop, ReferenceMonth: "2025-01"},
		// Timestamped reference months truncate to the competence bucket.
		{ContractID: keep, ReferenceMonth: "2025-01-15T00:00:00Z"},
	}

	out := FilterEntries(entries, FilterState{
		Months:      []string{"2025-01"},
		ContractIDs: []uuid.UUID{keep},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 entries got %d", len(out))
	}
	for _, e := range out {
		if e.ContractID != keep {
			t.Fatalf("leaked contract %s", e.ContractID)
		}
	}
}

func TestFilterEntriesIdempotent(t *testing.T) {
	entries := []finance.Entry{
		{ContractID: uuid.New(), ReferenceMonth: "2025-01"},
		{ContractID: uuid.New(), ReferenceMonth: "2025-02"},
	}
	f := FilterState{Months: []string{"2025-01"}}
	once := FilterEntries(entries, f)
	twice := FilterEntries(once, f)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filtering twice changed the result: %v vs %v", once, twice)
	}
}

func TestFilterReceivablesDerivedStatus(t *testing.T) {
	asOf := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	pastDue := datePtr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	futureDue := datePtr(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC))
	records := []receivables.Receivable{
		{ID: uuid.New(), Status: receivables.StatusOpen, DueDate: pastDue, OpenAmount: 50, CompetenceMonth: "2025-06"},
		{ID: uuid.New(), Status: receivables.StatusOpen, DueDate: futureDue, OpenAmount: 50, CompetenceMonth: "2025-06"},
		{ID: uuid.New(), Status: receivables.StatusLiquidated, DueDate: pastDue, CompetenceMonth: "2025-06"},
	}

	out := FilterReceivables(records, FilterState{Statuses: []string{"vencido"}}, asOf)
	if len(out) != 1 {
		t.Fatalf("expected only the effectively overdue record, got %d", len(out))
	}
	if out[0].ID != records[0].ID {
		t.Fatalf("wrong record selected")
	}

	// The stored status still matches records not yet reclassified.
	out = FilterReceivables(records, FilterState{Statuses: []string{"aberto"}}, asOf)
	if len(out) != 1 || out[0].ID != records[1].ID {
		t.Fatalf("expected only the future-due open record, got %d", len(out))
	}

	// Legacy alias matches liquidated records.
	out = FilterReceivables(records, FilterState{Statuses: []string{"pago"}}, asOf)
	if len(out) != 1 || out[0].ID != records[2].ID {
		t.Fatalf("expected pago to match liquidado, got %d", len(out))
	}
}

func TestFilterReceivablesSearchIsCaseInsensitive(t *testing.T) {
	asOf := time.Now()
	records := []receivables.Receivable{
		{ID: uuid.New(), DocumentNumber: "NF-1001", ClientName: "Condominio Alfa"},
		{ID: uuid.New(), DocumentNumber: "NF-2002", ClientName: "Hospital Beta", ContractName: "Limpeza Hospitalar"},
	}

	out := FilterReceivables(records, FilterState{Search: "hospital"}, asOf)
	if len(out) != 1 || out[0].ID != records[1].ID {
		t.Fatalf("expected search to match client name, got %d", len(out))
	}

	out = FilterReceivables(records, FilterState{Search: "nf-1001"}, asOf)
	if len(out) != 1 || out[0].ID != records[0].ID {
		t.Fatalf("expected search to match document number, got %d", len(out))
	}

	out = FilterReceivables(records, FilterState{Search: "nada disso"}, asOf)
	if len(out) != 0 {
		t.Fatalf("expected no matches, got %d", len(out))
	}
}

func TestFilterReceivablesMonthFallsBackToDueDate(t *testing.T) {
	asOf := time.Now()
	due := datePtr(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	records := []receivables.Receivable{
		{ID: uuid.New(), CompetenceMonth: "2025-02", DueDate: due},
		{ID: uuid.New(), DueDate: due},
	}

	out := FilterReceivables(records, FilterState{Months: []string{"2025-03"}}, asOf)
	if len(out) != 1 || out[0].ID != records[1].ID {
		t.Fatalf("expected due-date fallback month match, got %d", len(out))
	}
}
