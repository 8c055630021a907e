package analytics

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gestfac/gestfac/internal/contracts"
	"github.com/gestfac/gestfac/internal/finance"
	"github.com/gestfac/gestfac/internal/receivables"
)

type stubSources struct {
	contracts     []contracts.Contract
	entries       []finance.Entry
	indirect      []finance.IndirectCost
	receivables   []receivables.Receivable
	contractCalls int
	entryCalls    int
	entryFilters  finance.EntryFilters
}

func (s *stubSources) ListActive(ctx context.Context) ([]contracts.Contract, error) {
	s.contractCalls++
	return s.contracts, nil
}

func (s *stubSources) ListEntries(ctx context.Context, filters finance.EntryFilters) ([]finance.Entry, error) {
	s.entryCalls++
	s.entryFilters = filters
	return s.entries, nil
}

func (s *stubSources) ListIndirectCosts(ctx context.Context) ([]finance.IndirectCost, error) {
	return s.indirect, nil
}

func (s *stubSources) List(ctx context.Context, params receivables.ListParams) ([]receivables.Receivable, error) {
	return s.receivables, nil
}

func newTestService(t *testing.T, src *stubSources) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(src, src, src, src, cache)
	svc.WithNow(func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	})
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestGetDashboardAggregates(t *testing.T) {
	contractA := contracts.Contract{ID: uuid.New(), Name: "Hospital Central", ClientName: "Hospital Central SA", Unit: "Norte", Status: contracts.StatusActive}
	contractB := contracts.Contract{ID: uuid.New(), Name: "Campus Leste", ClientName: "Universidade Leste", Unit: "Sul", Status: contracts.StatusActive}
	pastDue := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)

	src := &stubSources{
		contracts: []contracts.Contract{contractA, contractB},
		entries: []finance.Entry{
			{ContractID: contractA.ID, ReferenceMonth: "2025-06", NetRevenue: 1000, TotalCosts: 725},
			{ContractID: contractB.ID, ReferenceMonth: "2025-06", NetRevenue: 3000, TotalCosts: 2175},
		},
		indirect: []finance.IndirectCost{
			{ReferenceMonth: "2025-06", MonthlyValue: 400, Status: finance.IndirectActive},
			{ReferenceMonth: "2025-06", MonthlyValue: 999, Status: finance.IndirectInactive},
			{ReferenceMonth: "2025-05", MonthlyValue: 999, Status: finance.IndirectActive},
		},
		receivables: []receivables.Receivable{
			{ID: uuid.New(), ContractID: contractA.ID, Status: receivables.StatusOpen, DueDate: &pastDue, OpenAmount: 150, CompetenceMonth: "2025-06"},
		},
	}
	svc, cleanup := newTestService(t, src)
	defer cleanup()

	dash, err := svc.GetDashboard(context.Background(), DashboardQuery{
		Period: PeriodSelection{Type: PeriodMonthly, ReferenceMonth: "2025-06"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(dash.Months) != 1 || dash.Months[0] != "2025-06" {
		t.Fatalf("unexpected months %v", dash.Months)
	}
	if dash.KPIs.Revenue != 4000 {
		t.Fatalf("expected revenue 4000 got %.2f", dash.KPIs.Revenue)
	}
	// Only the active in-period indirect cost enters the base.
	if dash.KPIs.IndirectCosts != 400 {
		t.Fatalf("expected indirect 400 got %.2f", dash.KPIs.IndirectCosts)
	}
	if dash.KPIs.NetProfit != 700 {
		t.Fatalf("expected net profit 700 got %.2f", dash.KPIs.NetProfit)
	}
	if dash.KPIs.ActiveContracts != 2 {
		t.Fatalf("expected 2 active contracts got %d", dash.KPIs.ActiveContracts)
	}
	if dash.KPIs.TotalOverdue != 150 {
		t.Fatalf("expected overdue total 150 got %.2f", dash.KPIs.TotalOverdue)
	}
	if dash.KPIs.EfficiencyIndex != 100 {
		t.Fatalf("both contracts closed the month, expected 100 got %.2f", dash.KPIs.EfficiencyIndex)
	}
	if len(dash.Contracts) != 2 {
		t.Fatalf("expected 2 contract lines got %d", len(dash.Contracts))
	}
	if len(dash.TopContracts) != 2 || dash.TopContracts[0].Name != "Campus Leste" {
		t.Fatalf("unexpected top ranking %+v", dash.TopContracts)
	}
	if src.entryFilters.Months == nil {
		t.Fatalf("expected entry listing scoped to period months")
	}
}

func TestGetDashboardCachesAndBumps(t *testing.T) {
	contract := contracts.Contract{ID: uuid.New(), Name: "Hospital Central", Status: contracts.StatusActive}
	src := &stubSources{
		contracts: []contracts.Contract{contract},
		entries: []finance.Entry{
			{ContractID: contract.ID, ReferenceMonth: "2025-06", NetRevenue: 1000, TotalCosts: 800},
		},
	}
	svc, cleanup := newTestService(t, src)
	defer cleanup()

	ctx := context.Background()
	query := DashboardQuery{Period: PeriodSelection{Type: PeriodMonthly, ReferenceMonth: "2025-06"}}

	if _, err := svc.GetDashboard(ctx, query); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.entryCalls != 1 {
		t.Fatalf("expected 1 load got %d", src.entryCalls)
	}

	// Second identical query hits the cache.
	if _, err := svc.GetDashboard(ctx, query); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.entryCalls != 1 {
		t.Fatalf("expected cached dashboard, sources called %d times", src.entryCalls)
	}

	// A different filter combination never reuses the cached payload.
	other := query
	other.Units = []string{"Norte"}
	if _, err := svc.GetDashboard(ctx, other); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.entryCalls != 2 {
		t.Fatalf("expected distinct cache key per filter set, calls %d", src.entryCalls)
	}

	// Bumping invalidates every cached combination.
	if err := svc.Bump(ctx); err != nil {
		t.Fatalf("bump failed: %v", err)
	}
	src.entries[0].NetRevenue = 2000
	dash, err := svc.GetDashboard(ctx, query)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dash.KPIs.Revenue != 2000 {
		t.Fatalf("expected refreshed revenue 2000 got %.2f", dash.KPIs.Revenue)
	}
	if src.entryCalls != 3 {
		t.Fatalf("expected reload after bump, calls %d", src.entryCalls)
	}
}

func TestGetDashboardFiltersContracts(t *testing.T) {
	norte := contracts.Contract{ID: uuid.New(), Name: "Hospital Central", Unit: "Norte", Status: contracts.StatusActive}
	sul := contracts.Contract{ID: uuid.New(), Name: "Campus Leste", Unit: "Sul", Status: contracts.StatusActive}
	src := &stubSources{
		contracts: []contracts.Contract{norte, sul},
		entries: []finance.Entry{
			{ContractID: norte.ID, ReferenceMonth: "2025-06", NetRevenue: 1000},
			{ContractID: sul.ID, ReferenceMonth: "2025-06", NetRevenue: 500},
		},
	}
	svc, cleanup := newTestService(t, src)
	defer cleanup()

	dash, err := svc.GetDashboard(context.Background(), DashboardQuery{
		Period: PeriodSelection{Type: PeriodMonthly, ReferenceMonth: "2025-06"},
		Units:  []string{"norte"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dash.Contracts) != 1 || dash.Contracts[0].Name != "Hospital Central" {
		t.Fatalf("expected unit filter to narrow the register, got %+v", dash.Contracts)
	}
	if dash.KPIs.ActiveContracts != 1 {
		t.Fatalf("expected 1 active contract after filtering got %d", dash.KPIs.ActiveContracts)
	}
}

func TestGetDashboardUnitFilterScopesKPIs(t *testing.T) {
	norte := contracts.Contract{ID: uuid.New(), Name: "Hospital Central", Unit: "Norte", Status: contracts.StatusActive}
	sul := contracts.Contract{ID: uuid.New(), Name: "Campus Leste", Unit: "Sul", Status: contracts.StatusActive}
	src := &stubSources{
		contracts: []contracts.Contract{norte, sul},
		entries: []finance.Entry{
			{ContractID: norte.ID, ReferenceMonth: "2025-06", NetRevenue: 1000, TotalCosts: 700},
			{ContractID: sul.ID, ReferenceMonth: "2025-06", NetRevenue: 5000, TotalCosts: 4000},
		},
		indirect: []finance.IndirectCost{
			{ReferenceMonth: "2025-06", MonthlyValue: 200, Status: finance.IndirectActive},
		},
	}
	svc, cleanup := newTestService(t, src)
	defer cleanup()

	ctx := context.Background()
	dash, err := svc.GetDashboard(ctx, DashboardQuery{
		Period: PeriodSelection{Type: PeriodMonthly, ReferenceMonth: "2025-06"},
		Units:  []string{"Norte"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The excluded unit must not leak into any headline figure.
	if dash.KPIs.Revenue != 1000 {
		t.Fatalf("expected revenue 1000 for the Norte unit got %.2f", dash.KPIs.Revenue)
	}
	if dash.KPIs.DirectResult != 300 {
		t.Fatalf("expected direct result 300 got %.2f", dash.KPIs.DirectResult)
	}
	if dash.KPIs.NetProfit != 100 {
		t.Fatalf("expected net profit 100 got %.2f", dash.KPIs.NetProfit)
	}
	if len(dash.Contracts) != 1 || dash.Contracts[0].IndirectShare != 200 {
		t.Fatalf("expected the full indirect base on the single filtered contract, got %+v", dash.Contracts)
	}
	if len(dash.MonthlyTrend) != 1 || dash.MonthlyTrend[0].Revenue != 1000 {
		t.Fatalf("expected trend scoped to the filtered unit, got %+v", dash.MonthlyTrend)
	}

	// A unit with no contracts produces an empty dashboard, not the full one.
	empty, err := svc.GetDashboard(ctx, DashboardQuery{
		Period: PeriodSelection{Type: PeriodMonthly, ReferenceMonth: "2025-06"},
		Units:  []string{"Oeste"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.KPIs.Revenue != 0 || empty.KPIs.ActiveContracts != 0 {
		t.Fatalf("expected empty dashboard for unknown unit, got revenue %.2f contracts %d",
			empty.KPIs.Revenue, empty.KPIs.ActiveContracts)
	}
}

func TestGetDashboardResponsibleFilterNarrowsRegister(t *testing.T) {
	maria := contracts.Contract{ID: uuid.New(), Name: "Hospital Central", Responsible: "Maria Souza", Status: contracts.StatusActive}
	joao := contracts.Contract{ID: uuid.New(), Name: "Campus Leste", Responsible: "João Lima", Status: contracts.StatusActive}
	src := &stubSources{
		contracts: []contracts.Contract{maria, joao},
		entries: []finance.Entry{
			{ContractID: maria.ID, ReferenceMonth: "2025-06", NetRevenue: 1000},
			{ContractID: joao.ID, ReferenceMonth: "2025-06", NetRevenue: 800},
		},
	}
	svc, cleanup := newTestService(t, src)
	defer cleanup()

	dash, err := svc.GetDashboard(context.Background(), DashboardQuery{
		Period:       PeriodSelection{Type: PeriodMonthly, ReferenceMonth: "2025-06"},
		Responsibles: []string{"maria souza"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dash.Contracts) != 1 || dash.Contracts[0].Name != "Hospital Central" {
		t.Fatalf("expected responsible filter to narrow the register, got %+v", dash.Contracts)
	}
	if dash.KPIs.Revenue != 1000 {
		t.Fatalf("expected revenue 1000 got %.2f", dash.KPIs.Revenue)
	}
}

func TestGetDashboardStatusFilterReachesReceivables(t *testing.T) {
	contract := contracts.Contract{ID: uuid.New(), Name: "Hospital Central", Status: contracts.StatusActive}
	pastDue := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	src := &stubSources{
		contracts: []contracts.Contract{contract},
		receivables: []receivables.Receivable{
			{ID: uuid.New(), ContractID: contract.ID, Status: receivables.StatusOpen, DueDate: &pastDue, OpenAmount: 150, CompetenceMonth: "2025-06"},
		},
	}
	svc, cleanup := newTestService(t, src)
	defer cleanup()

	ctx := context.Background()
	period := PeriodSelection{Type: PeriodMonthly, ReferenceMonth: "2025-06"}

	settled, err := svc.GetDashboard(ctx, DashboardQuery{Period: period, Statuses: []string{"liquidado"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settled.KPIs.TotalOverdue != 0 {
		t.Fatalf("an open overdue receivable must not match status liquidado, got %.2f", settled.KPIs.TotalOverdue)
	}

	overdue, err := svc.GetDashboard(ctx, DashboardQuery{Period: period, Statuses: []string{"vencido"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overdue.KPIs.TotalOverdue != 150 {
		t.Fatalf("expected derived vencido receivable to remain, got %.2f", overdue.KPIs.TotalOverdue)
	}
}
