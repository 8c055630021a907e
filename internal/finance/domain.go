package finance

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a monthly financial closing record for one contract. All numeric
// fields are normalized to 0 when absent at the ingestion boundary, so
// downstream aggregation never null-checks.
type Entry struct {
	ID             uuid.UUID `json:"id"`
	ContractID     uuid.UUID `json:"contract_id"`
	ReferenceMonth string    `json:"reference_month"`

	NetRevenue  float64  `json:"net_revenue"`
	TotalCosts  float64  `json:"total_costs"`
	FinalResult *float64 `json:"final_result,omitempty"`

	PayrollCost            float64 `json:"payroll_cost"`
	SocialChargesCost      float64 `json:"social_charges_cost"`
	MealAllowanceCost      float64 `json:"meal_allowance_cost"`
	TransportAllowanceCost float64 `json:"transport_allowance_cost"`
	CleaningProducts       float64 `json:"cleaning_products"`
	EquipmentTools         float64 `json:"equipment_tools"`
	UniformsEPIs           float64 `json:"uniforms_epis"`
	DisposableMaterials    float64 `json:"disposable_materials"`
	OtherMaterials         float64 `json:"other_materials"`
	OtherCosts             float64 `json:"other_costs"`

	INSSValue   float64 `json:"inss_value"`
	IRRFValue   float64 `json:"irrf_value"`
	ISSValue    float64 `json:"iss_value"`
	PISValue    float64 `json:"pis_value"`
	COFINSValue float64 `json:"cofins_value"`
	CSLLValue   float64 `json:"csll_value"`

	LinkedAccountValue float64 `json:"linked_account_value"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Result returns the entry's direct result. The stored final result wins;
// when it was never closed the result falls back to revenue minus costs.
func (e Entry) Result() float64 {
	if e.FinalResult != nil {
		return *e.FinalResult
	}
	return e.NetRevenue - e.TotalCosts
}

// IndirectCostStatus enumerates indirect cost statuses.
type IndirectCostStatus string

const (
	IndirectActive   IndirectCostStatus = "ativo"
	IndirectInactive IndirectCostStatus = "inativo"
)

// IndirectCost is a company-wide overhead item for one reference month.
// Only active items inside the reporting period enter the allocation base.
type IndirectCost struct {
	ID             uuid.UUID          `json:"id"`
	Description    string             `json:"description"`
	ReferenceMonth string             `json:"reference_month"`
	MonthlyValue   float64            `json:"monthly_value"`
	Status         IndirectCostStatus `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// SumIndirect totals active indirect costs whose reference month belongs to
// the period.
func SumIndirect(costs []IndirectCost, months []string) float64 {
	inPeriod := make(map[string]struct{}, len(months))
	for _, m := range months {
		inPeriod[m] = struct{}{}
	}
	var total float64
	for _, c := range costs {
		if c.Status != IndirectActive {
			continue
		}
		if _, ok := inPeriod[c.ReferenceMonth]; !ok {
			continue
		}
		total += c.MonthlyValue
	}
	return total
}

// EntryInput carries the fields accepted on entry create and update.
type EntryInput struct {
	ContractID     uuid.UUID `json:"contract_id" validate:"required"`
	ReferenceMonth string    `json:"reference_month" validate:"required"`

	NetRevenue  float64  `json:"net_revenue"`
	TotalCosts  float64  `json:"total_costs"`
	FinalResult *float64 `json:"final_result"`

	PayrollCost            float64 `json:"payroll_cost"`
	SocialChargesCost      float64 `json:"social_charges_cost"`
	MealAllowanceCost      float64 `json:"meal_allowance_cost"`
	TransportAllowanceCost float64 `json:"transport_allowance_cost"`
	CleaningProducts       float64 `json:"cleaning_products"`
	EquipmentTools         float64 `json:"equipment_tools"`
	UniformsEPIs           float64 `json:"uniforms_epis"`
	DisposableMaterials    float64 `json:"disposable_materials"`
	OtherMaterials         float64 `json:"other_materials"`
	OtherCosts             float64 `json:"other_costs"`

	INSSValue   float64 `json:"inss_value"`
	IRRFValue   float64 `json:"irrf_value"`
	ISSValue    float64 `json:"iss_value"`
	PISValue    float64 `json:"pis_value"`
	COFINSValue float64 `json:"cofins_value"`
	CSLLValue   float64 `json:"csll_value"`

	LinkedAccountValue float64 `json:"linked_account_value"`
}

// IndirectCostInput carries the fields accepted on indirect cost writes.
type IndirectCostInput struct {
	Description    string  `json:"description" validate:"required"`
	ReferenceMonth string  `json:"reference_month" validate:"required"`
	MonthlyValue   float64 `json:"monthly_value" validate:"gte=0"`
	Status         string  `json:"status" validate:"omitempty,oneof=ativo inativo"`
}
