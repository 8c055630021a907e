package receivables

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
)

// ListParams narrows receivable listings at the SQL level. Finer-grained
// dimension filtering (derived status, search) happens in memory on top.
type ListParams struct {
	ContractID *uuid.UUID
	Months     []string
	DueFrom    *time.Time
	DueTo      *time.Time
}

// Repository provides PostgreSQL backed persistence for receivables.
type Repository interface {
	List(ctx context.Context, params ListParams) ([]Receivable, error)
	Get(ctx context.Context, id uuid.UUID) (Receivable, error)
	Create(ctx context.Context, input Input) (Receivable, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (Receivable, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const receivableColumns = `r.id, r.contract_id, COALESCE(c.name, ''), r.document_number,
	r.client_name, r.competence_month, r.issue_date, r.due_date, r.payment_date,
	r.payment_method, r.gross_amount, r.discount_amount, r.net_amount, r.paid_amount,
	r.open_amount, r.status, r.responsible, r.unit, r.created_at, r.updated_at`

const receivableFrom = ` FROM receivables r LEFT JOIN contracts c ON c.id = r.contract_id`

func (r *repository) List(ctx context.Context, params ListParams) ([]Receivable, error) {
	query := `SELECT ` + receivableColumns + receivableFrom + ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if params.ContractID != nil {
		argCount++
		query += ` AND r.contract_id = $` + strconv.Itoa(argCount)
		args = append(args, *params.ContractID)
	}
	if len(params.Months) > 0 {
		argCount++
		query += ` AND r.competence_month = ANY($` + strconv.Itoa(argCount) + `)`
		args = append(args, params.Months)
	}
	if params.DueFrom != nil {
		argCount++
		query += ` AND r.due_date >= $` + strconv.Itoa(argCount)
		args = append(args, *params.DueFrom)
	}
	if params.DueTo != nil {
		argCount++
		query += ` AND r.due_date <= $` + strconv.Itoa(argCount)
		args = append(args, *params.DueTo)
	}
	query += ` ORDER BY r.due_date NULLS LAST, r.document_number`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("receivables: list: %w", err)
	}
	defer rows.Close()

	var out []Receivable
	for rows.Next() {
		rec, err := scanReceivable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Receivable, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+receivableColumns+receivableFrom+` WHERE r.id = $1`, id)
	rec, err := scanReceivable(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Receivable{}, httpx.ErrNotFound
	}
	return rec, err
}

func (r *repository) Create(ctx context.Context, input Input) (Receivable, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO receivables (
			id, contract_id, document_number, client_name, competence_month,
			issue_date, due_date, payment_date, payment_method,
			gross_amount, discount_amount, net_amount, paid_amount, open_amount,
			status, responsible, unit, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NOW(),NOW())`,
		id, input.ContractID, input.DocumentNumber, input.ClientName, input.CompetenceMonth,
		timeOrNull(input.IssueDate), timeOrNull(input.DueDate), timeOrNull(input.PaymentDate),
		input.PaymentMethod, input.GrossAmount, input.DiscountAmount, input.NetAmount(),
		input.PaidAmount, input.OpenAmount(), input.Status, input.Responsible, input.Unit)
	if err != nil {
		return Receivable{}, mapPgError("receivables: create", err)
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, input Input) (Receivable, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE receivables SET
			contract_id = $2, document_number = $3, client_name = $4, competence_month = $5,
			issue_date = $6, due_date = $7, payment_date = $8, payment_method = $9,
			gross_amount = $10, discount_amount = $11, net_amount = $12, paid_amount = $13,
			open_amount = $14, status = $15, responsible = $16, unit = $17, updated_at = NOW()
		WHERE id = $1`,
		id, input.ContractID, input.DocumentNumber, input.ClientName, input.CompetenceMonth,
		timeOrNull(input.IssueDate), timeOrNull(input.DueDate), timeOrNull(input.PaymentDate),
		input.PaymentMethod, input.GrossAmount, input.DiscountAmount, input.NetAmount(),
		input.PaidAmount, input.OpenAmount(), input.Status, input.Responsible, input.Unit)
	if err != nil {
		return Receivable{}, mapPgError("receivables: update", err)
	}
	if tag.RowsAffected() == 0 {
		return Receivable{}, httpx.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM receivables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("receivables: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanReceivable(row pgx.Row) (Receivable, error) {
	var rec Receivable
	var status string
	var issue, due, paid pgtype.Date
	var gross, discount, net, paidAmt, open pgtype.Float8
	if err := row.Scan(&rec.ID, &rec.ContractID, &rec.ContractName, &rec.DocumentNumber,
		&rec.ClientName, &rec.CompetenceMonth, &issue, &due, &paid, &rec.PaymentMethod,
		&gross, &discount, &net, &paidAmt, &open, &status, &rec.Responsible, &rec.Unit,
		&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return Receivable{}, err
	}
	rec.Status = NormalizeStatus(status)
	rec.IssueDate = datePtr(issue)
	rec.DueDate = datePtr(due)
	rec.PaymentDate = datePtr(paid)
	coalesce := func(v pgtype.Float8) float64 {
		if v.Valid {
			return v.Float64
		}
		return 0
	}
	rec.GrossAmount = coalesce(gross)
	rec.DiscountAmount = coalesce(discount)
	rec.NetAmount = coalesce(net)
	rec.PaidAmount = coalesce(paidAmt)
	rec.OpenAmount = coalesce(open)
	return rec, nil
}

func datePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func timeOrNull(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func mapPgError(prefix string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.ErrDuplicate
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
