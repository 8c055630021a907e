package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates contract lifecycle statuses.
type Status string

const (
	StatusActive    Status = "ativo"
	StatusClosed    Status = "encerrado"
	StatusSuspended Status = "suspenso"
)

// NormalizeStatus maps raw status strings onto the canonical enum.
// Unknown values fall back to suspended so they never count as active.
func NormalizeStatus(raw string) Status {
	switch Status(raw) {
	case StatusActive, StatusClosed, StatusSuspended:
		return Status(raw)
	default:
		return StatusSuspended
	}
}

// Contract is a facilities service contract.
type Contract struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	ClientName     string     `json:"client_name"`
	Status         Status     `json:"status"`
	MonthlyValue   float64    `json:"monthly_value"`
	Unit           string     `json:"unit"`
	AdminSupport   bool       `json:"admin_support"`
	Responsible    string     `json:"responsible"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	DurationMonths int        `json:"duration_months"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsActive reports whether the contract currently accrues revenue.
func (c Contract) IsActive() bool {
	return c.Status == StatusActive
}

// EndsAt derives the contract end: the explicit end date when present,
// otherwise start date plus the contracted duration in months.
func (c Contract) EndsAt() time.Time {
	if c.EndDate != nil {
		return *c.EndDate
	}
	if c.DurationMonths > 0 {
		return c.StartDate.AddDate(0, c.DurationMonths, 0)
	}
	return c.StartDate
}

// Input carries the fields accepted on create and update.
type Input struct {
	Name           string     `json:"name" validate:"required"`
	ClientName     string     `json:"client_name" validate:"required"`
	Status         string     `json:"status" validate:"omitempty,oneof=ativo encerrado suspenso"`
	MonthlyValue   float64    `json:"monthly_value" validate:"gte=0"`
	Unit           string     `json:"unit"`
	AdminSupport   bool       `json:"admin_support"`
	Responsible    string     `json:"responsible"`
	StartDate      time.Time  `json:"start_date" validate:"required"`
	EndDate        *time.Time `json:"end_date"`
	DurationMonths int        `json:"duration_months" validate:"gte=0"`
}
