package contracts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gestfac/gestfac/internal/platform/httpx"
	"github.com/gestfac/gestfac/internal/shared"
)

// Service handles contract business logic.
type Service struct {
	repo Repository
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Contract, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) ListActive(ctx context.Context) ([]Contract, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Contract, error) {
	if id == uuid.Nil {
		return Contract{}, fmt.Errorf("%w: contract id required", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Contract, error) {
	normalizeInput(&input)
	if err := validateInput(input); err != nil {
		return Contract{}, err
	}
	return s.repo.Create(ctx, input)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input Input) (Contract, error) {
	if id == uuid.Nil {
		return Contract{}, fmt.Errorf("%w: contract id required", httpx.ErrValidation)
	}
	normalizeInput(&input)
	if err := validateInput(input); err != nil {
		return Contract{}, err
	}
	return s.repo.Update(ctx, id, input)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: contract id required", httpx.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

func normalizeInput(input *Input) {
	if input.Status == "" {
		input.Status = string(StatusActive)
	}
	input.Status = string(NormalizeStatus(input.Status))
}

func validateInput(input Input) error {
	if input.Name == "" {
		return fmt.Errorf("%w: name required", httpx.ErrValidation)
	}
	if input.ClientName == "" {
		return fmt.Errorf("%w: client name required", httpx.ErrValidation)
	}
	if input.StartDate.IsZero() {
		return fmt.Errorf("%w: start date required", httpx.ErrValidation)
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", httpx.ErrValidation)
	}
	if input.MonthlyValue < 0 {
		return fmt.Errorf("%w: monthly value must not be negative", httpx.ErrValidation)
	}
	return nil
}
