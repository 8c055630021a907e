package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gestfac/gestfac/internal/platform/httpx"
	"github.com/gestfac/gestfac/internal/shared"
)

// Service handles financial entry and indirect cost business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListEntries(ctx context.Context, filters EntryFilters) ([]Entry, error) {
	for _, m := range filters.Months {
		if !shared.ValidMonth(m) {
			return nil, fmt.Errorf("%w: reference month %q", shared.ErrInvalidPeriod, m)
		}
	}
	return s.repo.ListEntries(ctx, filters)
}

func (s *Service) GetEntry(ctx context.Context, id uuid.UUID) (Entry, error) {
	if id == uuid.Nil {
		return Entry{}, fmt.Errorf("%w: entry id required", httpx.ErrValidation)
	}
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) CreateEntry(ctx context.Context, input EntryInput) (Entry, error) {
	if err := validateEntryInput(input); err != nil {
		return Entry{}, err
	}
	return s.repo.CreateEntry(ctx, input)
}

func (s *Service) UpdateEntry(ctx context.Context, id uuid.UUID, input EntryInput) (Entry, error) {
	if id == uuid.Nil {
		return Entry{}, fmt.Errorf("%w: entry id required", httpx.ErrValidation)
	}
	if err := validateEntryInput(input); err != nil {
		return Entry{}, err
	}
	return s.repo.UpdateEntry(ctx, id, input)
}

func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: entry id required", httpx.ErrValidation)
	}
	return s.repo.DeleteEntry(ctx, id)
}

func (s *Service) ListIndirectCosts(ctx context.Context) ([]IndirectCost, error) {
	return s.repo.ListIndirectCosts(ctx)
}

func (s *Service) CreateIndirectCost(ctx context.Context, input IndirectCostInput) (IndirectCost, error) {
	if err := validateIndirectInput(&input); err != nil {
		return IndirectCost{}, err
	}
	return s.repo.CreateIndirectCost(ctx, input)
}

func (s *Service) UpdateIndirectCost(ctx context.Context, id uuid.UUID, input IndirectCostInput) (IndirectCost, error) {
	if id == uuid.Nil {
		return IndirectCost{}, fmt.Errorf("%w: indirect cost id required", httpx.ErrValidation)
	}
	if err := validateIndirectInput(&input); err != nil {
		return IndirectCost{}, err
	}
	return s.repo.UpdateIndirectCost(ctx, id, input)
}

func (s *Service) DeleteIndirectCost(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: indirect cost id required", httpx.ErrValidation)
	}
	return s.repo.DeleteIndirectCost(ctx, id)
}

func validateEntryInput(input EntryInput) error {
	if input.ContractID == uuid.Nil {
		return fmt.Errorf("%w: contract id required", httpx.ErrValidation)
	}
	if !shared.ValidMonth(input.ReferenceMonth) {
		return fmt.Errorf("%w: reference month must be YYYY-MM", httpx.ErrValidation)
	}
	return nil
}

func validateIndirectInput(input *IndirectCostInput) error {
	if input.Description == "" {
		return fmt.Errorf("%w: description required", httpx.ErrValidation)
	}
	if !shared.ValidMonth(input.ReferenceMonth) {
		return fmt.Errorf("%w: reference month must be YYYY-MM", httpx.ErrValidation)
	}
	if input.MonthlyValue < 0 {
		return fmt.Errorf("%w: monthly value must not be negative", httpx.ErrValidation)
	}
	if input.Status == "" {
		input.Status = string(IndirectActive)
	}
	return nil
}
