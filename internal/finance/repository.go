package finance

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestfac/gestfac/internal/platform/httpx"
)

// EntryFilters narrows entry listings.
type EntryFilters struct {
	ContractID *uuid.UUID
	Months     []string
}

// Repository provides PostgreSQL backed persistence for financial entries
// and indirect costs.
type Repository interface {
	ListEntries(ctx context.Context, filters EntryFilters) ([]Entry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (Entry, error)
	CreateEntry(ctx context.Context, input EntryInput) (Entry, error)
	UpdateEntry(ctx context.Context, id uuid.UUID, input EntryInput) (Entry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	ListIndirectCosts(ctx context.Context) ([]IndirectCost, error)
	CreateIndirectCost(ctx context.Context, input IndirectCostInput) (IndirectCost, error)
	UpdateIndirectCost(ctx context.Context, id uuid.UUID, input IndirectCostInput) (IndirectCost, error)
	DeleteIndirectCost(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const entryColumns = `id, contract_id, reference_month, net_revenue, total_costs, final_result,
	payroll_cost, social_charges_cost, meal_allowance_cost, transport_allowance_cost,
	cleaning_products, equipment_tools, uniforms_epis, disposable_materials,
	other_materials, other_costs, inss_value, irrf_value, iss_value, pis_value,
	cofins_value, csll_value, linked_account_value, created_at, updated_at`

func (r *repository) ListEntries(ctx context.Context, filters EntryFilters) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM financial_entries WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.ContractID != nil {
		argCount++
		query += ` AND contract_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.ContractID)
	}
	if len(filters.Months) > 0 {
		argCount++
		query += ` AND reference_month = ANY($` + strconv.Itoa(argCount) + `)`
		args = append(args, filters.Months)
	}
	query += ` ORDER BY reference_month, contract_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finance: list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) GetEntry(ctx context.Context, id uuid.UUID) (Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM financial_entries WHERE id = $1`, id)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, httpx.ErrNotFound
	}
	return e, err
}

func (r *repository) CreateEntry(ctx context.Context, input EntryInput) (Entry, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO financial_entries (
			id, contract_id, reference_month, net_revenue, total_costs, final_result,
			payroll_cost, social_charges_cost, meal_allowance_cost, transport_allowance_cost,
			cleaning_products, equipment_tools, uniforms_epis, disposable_materials,
			other_materials, other_costs, inss_value, irrf_value, iss_value, pis_value,
			cofins_value, csll_value, linked_account_value, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,NOW(),NOW())`,
		id, input.ContractID, input.ReferenceMonth, input.NetRevenue, input.TotalCosts,
		floatOrNull(input.FinalResult), input.PayrollCost, input.SocialChargesCost,
		input.MealAllowanceCost, input.TransportAllowanceCost, input.CleaningProducts,
		input.EquipmentTools, input.UniformsEPIs, input.DisposableMaterials,
		input.OtherMaterials, input.OtherCosts, input.INSSValue, input.IRRFValue,
		input.ISSValue, input.PISValue, input.COFINSValue, input.CSLLValue,
		input.LinkedAccountValue)
	if err != nil {
		return Entry{}, mapPgError("finance: create entry", err)
	}
	return r.GetEntry(ctx, id)
}

func (r *repository) UpdateEntry(ctx context.Context, id uuid.UUID, input EntryInput) (Entry, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE financial_entries SET
			contract_id = $2, reference_month = $3, net_revenue = $4, total_costs = $5,
			final_result = $6, payroll_cost = $7, social_charges_cost = $8,
			meal_allowance_cost = $9, transport_allowance_cost = $10, cleaning_products = $11,
			equipment_tools = $12, uniforms_epis = $13, disposable_materials = $14,
			other_materials = $15, other_costs = $16, inss_value = $17, irrf_value = $18,
			iss_value = $19, pis_value = $20, cofins_value = $21, csll_value = $22,
			linked_account_value = $23, updated_at = NOW()
		WHERE id = $1`,
		id, input.ContractID, input.ReferenceMonth, input.NetRevenue, input.TotalCosts,
		floatOrNull(input.FinalResult), input.PayrollCost, input.SocialChargesCost,
		input.MealAllowanceCost, input.TransportAllowanceCost, input.CleaningProducts,
		input.EquipmentTools, input.UniformsEPIs, input.DisposableMaterials,
		input.OtherMaterials, input.OtherCosts, input.INSSValue, input.IRRFValue,
		input.ISSValue, input.PISValue, input.COFINSValue, input.CSLLValue,
		input.LinkedAccountValue)
	if err != nil {
		return Entry{}, mapPgError("finance: update entry", err)
	}
	if tag.RowsAffected() == 0 {
		return Entry{}, httpx.ErrNotFound
	}
	return r.GetEntry(ctx, id)
}

func (r *repository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM financial_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("finance: delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) ListIndirectCosts(ctx context.Context) ([]IndirectCost, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, description, reference_month, monthly_value, status, created_at, updated_at
		FROM indirect_costs ORDER BY reference_month, description`)
	if err != nil {
		return nil, fmt.Errorf("finance: list indirect costs: %w", err)
	}
	defer rows.Close()

	var out []IndirectCost
	for rows.Next() {
		var c IndirectCost
		var status string
		if err := rows.Scan(&c.ID, &c.Description, &c.ReferenceMonth, &c.MonthlyValue,
			&status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Status = normalizeIndirectStatus(status)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) CreateIndirectCost(ctx context.Context, input IndirectCostInput) (IndirectCost, error) {
	id := uuid.New()
	status := input.Status
	if status == "" {
		status = string(IndirectActive)
	}
	var c IndirectCost
	var rawStatus string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO indirect_costs (id, description, reference_month, monthly_value, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
		RETURNING id, description, reference_month, monthly_value, status, created_at, updated_at`,
		id, input.Description, input.ReferenceMonth, input.MonthlyValue, status).
		Scan(&c.ID, &c.Description, &c.ReferenceMonth, &c.MonthlyValue, &rawStatus, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return IndirectCost{}, mapPgError("finance: create indirect cost", err)
	}
	c.Status = normalizeIndirectStatus(rawStatus)
	return c, nil
}

func (r *repository) UpdateIndirectCost(ctx context.Context, id uuid.UUID, input IndirectCostInput) (IndirectCost, error) {
	var c IndirectCost
	var rawStatus string
	err := r.pool.QueryRow(ctx, `
		UPDATE indirect_costs SET description = $2, reference_month = $3, monthly_value = $4,
			status = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING id, description, reference_month, monthly_value, status, created_at, updated_at`,
		id, input.Description, input.ReferenceMonth, input.MonthlyValue, input.Status).
		Scan(&c.ID, &c.Description, &c.ReferenceMonth, &c.MonthlyValue, &rawStatus, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return IndirectCost{}, httpx.ErrNotFound
	}
	if err != nil {
		return IndirectCost{}, mapPgError("finance: update indirect cost", err)
	}
	c.Status = normalizeIndirectStatus(rawStatus)
	return c, nil
}

func (r *repository) DeleteIndirectCost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM indirect_costs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("finance: delete indirect cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// scanEntry coalesces nullable numeric columns to 0 so Entry is fully
// populated at the ingestion boundary.
func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	var finalResult pgtype.Float8
	numeric := make([]pgtype.Float8, 19)
	if err := row.Scan(&e.ID, &e.ContractID, &e.ReferenceMonth,
		&numeric[0], &numeric[1], &finalResult,
		&numeric[2], &numeric[3], &numeric[4], &numeric[5], &numeric[6], &numeric[7],
		&numeric[8], &numeric[9], &numeric[10], &numeric[11], &numeric[12], &numeric[13],
		&numeric[14], &numeric[15], &numeric[16], &numeric[17],
		&numeric[18], &e.CreatedAt, &e.UpdatedAt); err != nil {
		return Entry{}, err
	}
	coalesce := func(v pgtype.Float8) float64 {
		if v.Valid {
			return v.Float64
		}
		return 0
	}
	e.NetRevenue = coalesce(numeric[0])
	e.TotalCosts = coalesce(numeric[1])
	if finalResult.Valid {
		v := finalResult.Float64
		e.FinalResult = &v
	}
	e.PayrollCost = coalesce(numeric[2])
	e.SocialChargesCost = coalesce(numeric[3])
	e.MealAllowanceCost = coalesce(numeric[4])
	e.TransportAllowanceCost = coalesce(numeric[5])
	e.CleaningProducts = coalesce(numeric[6])
	e.EquipmentTools = coalesce(numeric[7])
	e.UniformsEPIs = coalesce(numeric[8])
	e.DisposableMaterials = coalesce(numeric[9])
	e.OtherMaterials = coalesce(numeric[10])
	e.OtherCosts = coalesce(numeric[11])
	e.INSSValue = coalesce(numeric[12])
	e.IRRFValue = coalesce(numeric[13])
	e.ISSValue = coalesce(numeric[14])
	e.PISValue = coalesce(numeric[15])
	e.COFINSValue = coalesce(numeric[16])
	e.CSLLValue = coalesce(numeric[17])
	e.LinkedAccountValue = coalesce(numeric[18])
	return e, nil
}

func normalizeIndirectStatus(raw string) IndirectCostStatus {
	if IndirectCostStatus(raw) == IndirectInactive {
		return IndirectInactive
	}
	return IndirectActive
}

func floatOrNull(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func mapPgError(prefix string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
