package receivables

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gestfac/gestfac/internal/platform/httpx"
	"github.com/gestfac/gestfac/internal/shared"
)

type memoryRepo struct {
	records    map[uuid.UUID]Receivable
	lastParams ListParams
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[uuid.UUID]Receivable)}
}

func (r *memoryRepo) List(ctx context.Context, params ListParams) ([]Receivable, error) {
	r.lastParams = params
	out := make([]Receivable, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out, nil
}

func (r *memoryRepo) Get(ctx context.Context, id uuid.UUID) (Receivable, error) {
	rec, ok := r.records[id]
	if !ok {
		return Receivable{}, httpx.ErrNotFound
	}
	return rec, nil
}

func (r *memoryRepo) Create(ctx context.Context, input Input) (Receivable, error) {
	rec := Receivable{
		ID:              uuid.New(),
		ContractID:      input.ContractID,
		DocumentNumber:  input.DocumentNumber,
		ClientName:      input.ClientName,
		CompetenceMonth: input.CompetenceMonth,
		IssueDate:       input.IssueDate,
		DueDate:         input.DueDate,
		PaymentDate:     input.PaymentDate,
		GrossAmount:     input.GrossAmount,
		DiscountAmount:  input.DiscountAmount,
		NetAmount:       input.NetAmount(),
		PaidAmount:      input.PaidAmount,
		OpenAmount:      input.OpenAmount(),
		Status:          Status(input.Status),
		Responsible:     input.Responsible,
		Unit:            input.Unit,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	r.records[rec.ID] = rec
	return rec, nil
}

func (r *memoryRepo) Update(ctx context.Context, id uuid.UUID, input Input) (Receivable, error) {
	rec, ok := r.records[id]
	if !ok {
		return Receivable{}, httpx.ErrNotFound
	}
	rec.Status = Status(input.Status)
	rec.PaidAmount = input.PaidAmount
	rec.NetAmount = input.NetAmount()
	rec.OpenAmount = input.OpenAmount()
	rec.UpdatedAt = time.Now()
	r.records[id] = rec
	return rec, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.records[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func seed(t *testing.T, repo *memoryRepo, rec Receivable) Receivable {
	t.Helper()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	repo.records[rec.ID] = rec
	return rec
}

func TestListDerivedStatusQuery(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	asOf := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	pastDue := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	futureDue := time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC)

	overdue := seed(t, repo, Receivable{ContractID: uuid.New(), Status: StatusOpen, DueDate: &pastDue, OpenAmount: 100})
	seed(t, repo, Receivable{ContractID: uuid.New(), Status: StatusOpen, DueDate: &futureDue, OpenAmount: 100})
	seed(t, repo, Receivable{ContractID: uuid.New(), Status: StatusLiquidated, DueDate: &pastDue})

	out, err := svc.List(context.Background(), Query{Status: "vencido", AsOf: asOf})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, overdue.ID, out[0].ID)
}

func TestListSearch(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	match := seed(t, repo, Receivable{ContractID: uuid.New(), DocumentNumber: "NF-1001", ClientName: "Hospital Central"})
	seed(t, repo, Receivable{ContractID: uuid.New(), DocumentNumber: "NF-2002", ClientName: "Condominio Alfa"})

	out, err := svc.List(context.Background(), Query{Search: "HOSPITAL"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, match.ID, out[0].ID)
}

func TestListRejectsBadCompetenceMonths(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.List(context.Background(), Query{ListParams: ListParams{Months: []string{"2025-00"}}})
	require.ErrorIs(t, err, shared.ErrInvalidPeriod)
}

func TestCreateDerivesAmounts(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Input{
		ContractID:     uuid.New(),
		DocumentNumber: "NF-1001",
		GrossAmount:    1000,
		DiscountAmount: 100,
		PaidAmount:     400,
		Status:         "pago",
	})
	require.NoError(t, err)
	require.Equal(t, 900.0, created.NetAmount)
	require.Equal(t, 500.0, created.OpenAmount)
	require.Equal(t, StatusLiquidated, created.Status)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{DocumentNumber: "NF-1001"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, Input{ContractID: uuid.New(), DocumentNumber: "  "})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, Input{ContractID: uuid.New(), DocumentNumber: "NF-1001", CompetenceMonth: "06/2025"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, Input{ContractID: uuid.New(), DocumentNumber: "NF-1001", GrossAmount: -1})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestAgingUsesClock(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	svc.WithNow(func() time.Time {
		return time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	})
	due := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	seed(t, repo, Receivable{ContractID: uuid.New(), Status: StatusOpen, DueDate: &due, OpenAmount: 250})

	buckets, total, err := svc.Aging(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Equal(t, 250.0, total)
	require.Equal(t, 1, buckets[1].Count) // 10 days -> 8-15
}

func TestPaymentTermScopesMonths(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	due := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	paid := due.AddDate(0, 0, 6)
	seed(t, repo, Receivable{ContractID: uuid.New(), Status: StatusLiquidated, DueDate: &due, PaymentDate: &paid})

	pmr, err := svc.PaymentTerm(context.Background(), []string{"2025-05"})
	require.NoError(t, err)
	require.Equal(t, 6.0, pmr)
	require.Equal(t, []string{"2025-05"}, repo.lastParams.Months)
}
