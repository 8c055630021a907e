package receivables

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestfac/gestfac/internal/platform/httpx"
	"github.com/gestfac/gestfac/internal/shared"
)

// Query combines SQL-level narrowing with read-time refinements that depend
// on derived state (effective status, free-text search).
type Query struct {
	ListParams
	Status string
	Search string
	AsOf   time.Time
}

// Service handles receivable business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// List returns receivables matching the query. Status matching uses the
// derived status, so "vencido" finds open records past due even though the
// stored status still says "aberto".
func (s *Service) List(ctx context.Context, q Query) ([]Receivable, error) {
	for _, m := range q.Months {
		if !shared.ValidMonth(m) {
			return nil, fmt.Errorf("%w: competence month %q", shared.ErrInvalidPeriod, m)
		}
	}
	records, err := s.repo.List(ctx, q.ListParams)
	if err != nil {
		return nil, err
	}
	asOf := q.AsOf
	if asOf.IsZero() {
		asOf = s.now()
	}
	if q.Status == "" && q.Search == "" {
		return records, nil
	}

	wanted := Status("")
	if q.Status != "" {
		wanted = NormalizeStatus(q.Status)
	}
	search := strings.ToLower(q.Search)

	out := make([]Receivable, 0, len(records))
	for _, rec := range records {
		if wanted != "" && rec.EffectiveStatus(asOf) != wanted {
			continue
		}
		if search != "" && !matchesSearch(rec, search) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Aging returns the overdue distribution and the headline overdue total.
func (s *Service) Aging(ctx context.Context, asOf time.Time) ([]AgingBucket, float64, error) {
	records, err := s.repo.List(ctx, ListParams{})
	if err != nil {
		return nil, 0, err
	}
	if asOf.IsZero() {
		asOf = s.now()
	}
	buckets, total := AgingBuckets(records, asOf)
	return buckets, total, nil
}

// PaymentTerm computes PMR across liquidated receivables in the period.
func (s *Service) PaymentTerm(ctx context.Context, months []string) (float64, error) {
	records, err := s.repo.List(ctx, ListParams{Months: months})
	if err != nil {
		return 0, err
	}
	return AveragePaymentTerm(records), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Receivable, error) {
	if id == uuid.Nil {
		return Receivable{}, fmt.Errorf("%w: receivable id required", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Receivable, error) {
	if err := validateInput(&input); err != nil {
		return Receivable{}, err
	}
	return s.repo.Create(ctx, input)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input Input) (Receivable, error) {
	if id == uuid.Nil {
		return Receivable{}, fmt.Errorf("%w: receivable id required", httpx.ErrValidation)
	}
	if err := validateInput(&input); err != nil {
		return Receivable{}, err
	}
	return s.repo.Update(ctx, id, input)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: receivable id required", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

func matchesSearch(rec Receivable, lowered string) bool {
	for _, field := range []string{rec.DocumentNumber, rec.ClientName, rec.ContractName, rec.Responsible, rec.Unit} {
		if strings.Contains(strings.ToLower(field), lowered) {
			return true
		}
	}
	return false
}

func validateInput(input *Input) error {
	if input.ContractID == uuid.Nil {
		return fmt.Errorf("%w: contract id required", httpx.ErrValidation)
	}
	if strings.TrimSpace(input.DocumentNumber) == "" {
		return fmt.Errorf("%w: document number required", httpx.ErrValidation)
	}
	if input.CompetenceMonth != "" && !shared.ValidMonth(input.CompetenceMonth) {
		return fmt.Errorf("%w: competence month must be YYYY-MM", httpx.ErrValidation)
	}
	if input.GrossAmount < 0 || input.DiscountAmount < 0 || input.PaidAmount < 0 {
		return fmt.Errorf("%w: amounts must not be negative", httpx.ErrValidation)
	}
	input.Normalize()
	return nil
}
