package contracts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestfac/gestfac/internal/platform/httpx"
	"github.com/gestfac/gestfac/internal/shared"
)

// Repository provides PostgreSQL backed persistence for contracts.
type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Contract, int, error)
	ListActive(ctx context.Context) ([]Contract, error)
	Get(ctx context.Context, id uuid.UUID) (Contract, error)
	Create(ctx context.Context, input Input) (Contract, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (Contract, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const contractColumns = `id, name, client_name, status, monthly_value, unit, admin_support,
	responsible, start_date, end_date, duration_months, created_at, updated_at`

// List uses a dynamic query due to filter complexity.
func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Contract, int, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		ph := `$` + strconv.Itoa(argCount)
		query += ` AND (name ILIKE ` + ph + ` OR client_name ILIKE ` + ph + ` OR unit ILIKE ` + ph + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM contracts WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countQuery += ` AND (name ILIKE $1 OR client_name ILIKE $1 OR unit ILIKE $1)`
		countArgs = append(countArgs, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("contracts: count: %w", err)
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("contracts: list: %w", err)
	}
	defer rows.Close()

	var out []Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// ListActive returns contracts with status "ativo", ordered by name.
func (r *repository) ListActive(ctx context.Context) ([]Contract, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE status = $1 ORDER BY name`,
		string(StatusActive))
	if err != nil {
		return nil, fmt.Errorf("contracts: list active: %w", err)
	}
	defer rows.Close()

	var out []Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Contract, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id)
	c, err := scanContract(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contract{}, httpx.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, input Input) (Contract, error) {
	status := input.Status
	if status == "" {
		status = string(StatusActive)
	}
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO contracts (
			id, name, client_name, status, monthly_value, unit, admin_support,
			responsible, start_date, end_date, duration_months, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`,
		id, input.Name, input.ClientName, status, input.MonthlyValue, input.Unit,
		input.AdminSupport, input.Responsible, input.StartDate, dateOrNull(input.EndDate),
		input.DurationMonths)
	if err != nil {
		return Contract{}, mapPgError("contracts: create", err)
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, input Input) (Contract, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contracts SET
			name = $2, client_name = $3, status = $4, monthly_value = $5, unit = $6,
			admin_support = $7, responsible = $8, start_date = $9, end_date = $10,
			duration_months = $11, updated_at = NOW()
		WHERE id = $1`,
		id, input.Name, input.ClientName, input.Status, input.MonthlyValue, input.Unit,
		input.AdminSupport, input.Responsible, input.StartDate, dateOrNull(input.EndDate),
		input.DurationMonths)
	if err != nil {
		return Contract{}, mapPgError("contracts: update", err)
	}
	if tag.RowsAffected() == 0 {
		return Contract{}, httpx.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("contracts: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanContract(row pgx.Row) (Contract, error) {
	var c Contract
	var status string
	var endDate pgtype.Date
	if err := row.Scan(&c.ID, &c.Name, &c.ClientName, &status, &c.MonthlyValue, &c.Unit,
		&c.AdminSupport, &c.Responsible, &c.StartDate, &endDate, &c.DurationMonths,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return Contract{}, err
	}
	c.Status = NormalizeStatus(status)
	if endDate.Valid {
		t := endDate.Time
		c.EndDate = &t
	}
	return c, nil
}

func dateOrNull(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "client":
		return "client_name " + dir
	case "start_date":
		return "start_date " + dir
	case "monthly_value":
		return "monthly_value " + dir
	default:
		return "name " + dir
	}
}

func mapPgError(prefix string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
