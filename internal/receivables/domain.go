package receivables

import (
	"time"

	"github.com/google/uuid"
)

// Status enumerates receivable statuses.
type Status string

const (
	StatusOpen       Status = "aberto"
	StatusPartial    Status = "parcial"
	StatusOverdue    Status = "vencido"
	StatusLiquidated Status = "liquidado"
	StatusCancelled  Status = "cancelado"
)

// NormalizeStatus maps raw status strings onto the canonical enum. The legacy
// alias "pago" is folded into "liquidado" at the ingestion boundary.
func NormalizeStatus(raw string) Status {
	switch raw {
	case "pago":
		return StatusLiquidated
	case string(StatusPartial):
		return StatusPartial
	case string(StatusOverdue):
		return StatusOverdue
	case string(StatusLiquidated):
		return StatusLiquidated
	case string(StatusCancelled):
		return StatusCancelled
	default:
		return StatusOpen
	}
}

// Receivable is a billing installment owed by a client under a contract.
type Receivable struct {
	ID              uuid.UUID  `json:"id"`
	ContractID      uuid.UUID  `json:"contract_id"`
	ContractName    string     `json:"contract_name"`
	DocumentNumber  string     `json:"document_number"`
	ClientName      string     `json:"client_name"`
	CompetenceMonth string     `json:"competence_month"`
	IssueDate       *time.Time `json:"issue_date,omitempty"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	PaymentDate     *time.Time `json:"payment_date,omitempty"`
	PaymentMethod   string     `json:"payment_method"`
	GrossAmount     float64    `json:"gross_amount"`
	DiscountAmount  float64    `json:"discount_amount"`
	NetAmount       float64    `json:"net_amount"`
	PaidAmount      float64    `json:"paid_amount"`
	OpenAmount      float64    `json:"open_amount"`
	Status          Status     `json:"status"`
	Responsible     string     `json:"responsible"`
	Unit            string     `json:"unit"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EffectiveStatus reclassifies an open receivable as overdue when its due
// date has passed and an amount remains open. Computed at read time, never
// persisted. A missing due date keeps the record non-overdue.
func (r Receivable) EffectiveStatus(asOf time.Time) Status {
	if r.Status == StatusOpen && r.DueDate != nil && r.DueDate.Before(asOf) && r.OpenAmount > 0 {
		return StatusOverdue
	}
	return r.Status
}

// DaysOverdue returns whole days past due as of asOf, 0 when not overdue or
// the due date is missing.
func (r Receivable) DaysOverdue(asOf time.Time) int {
	if r.DueDate == nil {
		return 0
	}
	days := int(asOf.Sub(*r.DueDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Month returns the competence bucket: the explicit competence month when
// set, otherwise derived from the due date.
func (r Receivable) Month() string {
	if r.CompetenceMonth != "" {
		return r.CompetenceMonth
	}
	if r.DueDate != nil {
		return r.DueDate.Format("2006-01")
	}
	return ""
}

// AgingBucket counts effectively overdue receivables inside a day range.
type AgingBucket struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// AgingBuckets partitions effectively overdue receivables into the
// 0-7 / 8-15 / 16-30 / >30 day ranges. The distribution counts records; the
// returned total sums open amounts. Both run over the same overdue subset.
func AgingBuckets(records []Receivable, asOf time.Time) ([]AgingBucket, float64) {
	buckets := []AgingBucket{
		{Bucket: "0-7"},
		{Bucket: "8-15"},
		{Bucket: "16-30"},
		{Bucket: ">30"},
	}
	var totalOpen float64
	for _, rec := range records {
		if rec.EffectiveStatus(asOf) != StatusOverdue {
			continue
		}
		totalOpen += rec.OpenAmount
		switch days := rec.DaysOverdue(asOf); {
		case days <= 7:
			buckets[0].Count++
		case days <= 15:
			buckets[1].Count++
		case days <= 30:
			buckets[2].Count++
		default:
			buckets[3].Count++
		}
	}
	return buckets, totalOpen
}

// AveragePaymentTerm computes the PMR: mean days between due date and actual
// payment across liquidated receivables. Records missing either date are
// skipped; no liquidated records yields 0.
func AveragePaymentTerm(records []Receivable) float64 {
	var sum float64
	var n int
	for _, rec := range records {
		if rec.Status != StatusLiquidated || rec.DueDate == nil || rec.PaymentDate == nil {
			continue
		}
		sum += rec.PaymentDate.Sub(*rec.DueDate).Hours() / 24
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Input carries the fields accepted on create and update.
type Input struct {
	ContractID      uuid.UUID  `json:"contract_id" validate:"required"`
	DocumentNumber  string     `json:"document_number" validate:"required"`
	ClientName      string     `json:"client_name"`
	CompetenceMonth string     `json:"competence_month"`
	IssueDate       *time.Time `json:"issue_date"`
	DueDate         *time.Time `json:"due_date"`
	PaymentDate     *time.Time `json:"payment_date"`
	PaymentMethod   string     `json:"payment_method"`
	GrossAmount     float64    `json:"gross_amount" validate:"gte=0"`
	DiscountAmount  float64    `json:"discount_amount" validate:"gte=0"`
	PaidAmount      float64    `json:"paid_amount" validate:"gte=0"`
	Status          string     `json:"status"`
	Responsible     string     `json:"responsible"`
	Unit            string     `json:"unit"`
}

// Normalize fills the derived amounts: net = gross - discounts and
// open = net - paid, both floored at 0, and folds legacy status aliases.
func (in *Input) Normalize() {
	if in.Status == "" {
		in.Status = string(StatusOpen)
	}
	in.Status = string(NormalizeStatus(in.Status))
}

// NetAmount derives the net receivable value.
func (in Input) NetAmount() float64 {
	net := in.GrossAmount - in.DiscountAmount
	if net < 0 {
		return 0
	}
	return net
}

// OpenAmount derives the remaining open value.
func (in Input) OpenAmount() float64 {
	open := in.NetAmount() - in.PaidAmount
	if open < 0 {
		return 0
	}
	return open
}
