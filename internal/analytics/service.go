package analytics

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gestfac/gestfac/internal/contracts"
	"github.com/gestfac/gestfac/internal/finance"
	"github.com/gestfac/gestfac/internal/receivables"
)

// ContractSource lists the contract register.
type ContractSource interface {
	ListActive(ctx context.Context) ([]contracts.Contract, error)
}

// EntrySource lists financial entries for a set of months.
type EntrySource interface {
	ListEntries(ctx context.Context, filters finance.EntryFilters) ([]finance.Entry, error)
}

// IndirectSource lists the indirect cost register.
type IndirectSource interface {
	ListIndirectCosts(ctx context.Context) ([]finance.IndirectCost, error)
}

// ReceivableSource lists receivables.
type ReceivableSource interface {
	List(ctx context.Context, params receivables.ListParams) ([]receivables.Receivable, error)
}

// DashboardQuery scopes one dashboard computation.
type DashboardQuery struct {
	Period       PeriodSelection
	ContractIDs  []uuid.UUID
	Units        []string
	Clients      []string
	Statuses     []string
	Responsibles []string
	Search       string
}

// Dashboard is the chart-ready aggregation result.
type Dashboard struct {
	Months          []string                  `json:"months"`
	KPIs            KPISummary                `json:"kpis"`
	Contracts       []ContractResult          `json:"contracts"`
	TopContracts    []Point                   `json:"top_contracts"`
	BottomContracts []Point                   `json:"bottom_contracts"`
	UnitRanking     []Point                   `json:"unit_ranking"`
	MonthlyTrend    []TrendPoint              `json:"monthly_trend"`
	OverdueAging    []receivables.AgingBucket `json:"overdue_aging"`
}

// Service coordinates dataset loading, the pure aggregation pipeline and the
// cache layer.
type Service struct {
	contracts   ContractSource
	entries     EntrySource
	indirect    IndirectSource
	receivables ReceivableSource
	cache       *Cache
	now         func() time.Time
	onBuild     func()
}

// NewService wires the data sources with a Cache helper.
func NewService(contractSrc ContractSource, entrySrc EntrySource, indirectSrc IndirectSource, receivableSrc ReceivableSource, cache *Cache) *Service {
	return &Service{
		contracts:   contractSrc,
		entries:     entrySrc,
		indirect:    indirectSrc,
		receivables: receivableSrc,
		cache:       cache,
		now:         time.Now,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// OnBuild registers a hook invoked on every cache-miss aggregation.
func (s *Service) OnBuild(fn func()) {
	s.onBuild = fn
}

// Bump invalidates cached dashboards after entity writes.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// GetDashboard resolves the dashboard using cache-aware lookups.
func (s *Service) GetDashboard(ctx context.Context, query DashboardQuery) (Dashboard, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		return s.buildDashboard(ctx, query)
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return Dashboard{}, err
		}
		return value.(Dashboard), nil
	}

	key, err := s.cache.BuildKey(ctx, dashboardKey(query)...)
	if err != nil {
		return Dashboard{}, err
	}
	var dashboard Dashboard
	if err := s.cache.FetchJSON(ctx, key, &dashboard, loader); err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}

// buildDashboard loads the four datasets concurrently, then runs the pure
// aggregation pipeline: period resolution, dimension filtering, per-contract
// reduction, pro-rata indirect allocation and KPI derivation.
func (s *Service) buildDashboard(ctx context.Context, query DashboardQuery) (Dashboard, error) {
	if s.onBuild != nil {
		s.onBuild()
	}
	now := s.now()
	months := PeriodMonths(query.Period, now)

	var (
		register []contracts.Contract
		entries  []finance.Entry
		indirect []finance.IndirectCost
		open     []receivables.Receivable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		register, err = s.contracts.ListActive(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.entries.ListEntries(gctx, finance.EntryFilters{Months: months})
		return err
	})
	g.Go(func() error {
		var err error
		indirect, err = s.indirect.ListIndirectCosts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		open, err = s.receivables.List(gctx, receivables.ListParams{})
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	filter := FilterState{
		Months:       months,
		ContractIDs:  query.ContractIDs,
		Clients:      query.Clients,
		Statuses:     query.Statuses,
		Units:        query.Units,
		Responsibles: query.Responsibles,
		Search:       query.Search,
	}
	register = filterContracts(register, query)
	entries = FilterEntries(entries, filter)
	if hasContractDimension(query) {
		entries = entriesForRegister(entries, register)
	}
	filteredReceivables := FilterReceivables(open, FilterState{
		ContractIDs:  query.ContractIDs,
		Clients:      query.Clients,
		Statuses:     query.Statuses,
		Units:        query.Units,
		Responsibles: query.Responsibles,
		Search:       query.Search,
	}, now)

	totals := ReduceByContract(entries)
	indirectTotal := finance.SumIndirect(indirect, months)
	shares := AllocateIndirect(indirectTotal, totals)
	results := BuildContractResults(register, totals, shares)

	expected, onTime := measurementCoverage(register, entries, months)
	kpis := BuildKPISummary(totals, indirectTotal, expected, onTime)
	kpis.ActiveContracts = len(register)

	aging, totalOverdue := receivables.AgingBuckets(filteredReceivables, now)
	kpis.TotalOverdue = totalOverdue
	kpis.PaymentTermDays = receivables.AveragePaymentTerm(
		FilterReceivables(filteredReceivables, FilterState{Months: months}, now))

	return Dashboard{
		Months:          months,
		KPIs:            kpis,
		Contracts:       results,
		TopContracts:    TopContracts(results, 5),
		BottomContracts: BottomContracts(results, 5),
		UnitRanking:     UnitRanking(results),
		MonthlyTrend:    MonthlyTrend(entries, months),
		OverdueAging:    aging,
	}, nil
}

// measurementCoverage derives the efficiency denominator: every active
// contract is expected to deliver one monthly closing per period month; the
// numerator counts contract months actually closed.
func measurementCoverage(register []contracts.Contract, entries []finance.Entry, months []string) (expected, onTime int) {
	expected = len(register) * len(months)
	seen := make(map[uuid.UUID]map[string]struct{}, len(register))
	active := make(map[uuid.UUID]struct{}, len(register))
	for _, c := range register {
		active[c.ID] = struct{}{}
	}
	for _, e := range entries {
		if _, ok := active[e.ContractID]; !ok {
			continue
		}
		byMonth := seen[e.ContractID]
		if byMonth == nil {
			byMonth = make(map[string]struct{})
			seen[e.ContractID] = byMonth
		}
		month := truncMonth(e.ReferenceMonth)
		if _, dup := byMonth[month]; dup {
			continue
		}
		byMonth[month] = struct{}{}
		onTime++
	}
	return expected, onTime
}

// hasContractDimension reports whether the query narrows the register beyond
// the period. When it does, entries must follow the filtered contract set.
func hasContractDimension(q DashboardQuery) bool {
	return len(q.ContractIDs) > 0 || len(q.Units) > 0 || len(q.Clients) > 0 || len(q.Responsibles) > 0
}

// entriesForRegister keeps entries whose contract survived the register
// filter. An empty register keeps nothing.
func entriesForRegister(entries []finance.Entry, register []contracts.Contract) []finance.Entry {
	ids := make(map[uuid.UUID]struct{}, len(register))
	for _, c := range register {
		ids[c.ID] = struct{}{}
	}
	out := make([]finance.Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := ids[e.ContractID]; ok {
			out = append(out, e)
		}
	}
	return out
}

// filterContracts narrows the active register to the selected contract, unit,
// client and responsible dimensions so rankings respect the dashboard filters.
func filterContracts(register []contracts.Contract, query DashboardQuery) []contracts.Contract {
	if !hasContractDimension(query) {
		return register
	}
	ids := make(map[uuid.UUID]struct{}, len(query.ContractIDs))
	for _, id := range query.ContractIDs {
		ids[id] = struct{}{}
	}
	units := lowerSet(query.Units)
	clients := lowerSet(query.Clients)
	responsibles := lowerSet(query.Responsibles)
	out := make([]contracts.Contract, 0, len(register))
	for _, c := range register {
		if !inSet(ids, c.ID) {
			continue
		}
		if !inSet(units, strings.ToLower(c.Unit)) {
			continue
		}
		if !inSet(clients, strings.ToLower(c.ClientName)) {
			continue
		}
		if !inSet(responsibles, strings.ToLower(c.Responsible)) {
			continue
		}
		out = append(out, c)
	}
	return out
}
