package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
	"github.com/meridian-edu/meridian-edu/internal/scope"
)

// Repository provides PostgreSQL backed persistence for salaries and
// advances.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListSalaries returns salary rows visible under the predicate.
func (r *Repository) ListSalaries(ctx context.Context, pred scope.Predicate) ([]Salary, error) {
	where, args := pred.SQL(1)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT s.id, s.employee_id, p.full_name, s.amount, s.effective_from, s.created_at
		 FROM salaries s JOIN profiles p ON p.user_id = s.employee_id
		 WHERE %s ORDER BY p.full_name`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Salary
	for rows.Next() {
		var sal Salary
		if err := rows.Scan(&sal.ID, &sal.EmployeeID, &sal.EmployeeName, &sal.Amount, &sal.EffectiveFrom, &sal.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sal)
	}
	return out, rows.Err()
}

// SalaryFor returns the current salary row for an employee.
func (r *Repository) SalaryFor(ctx context.Context, employeeID int64) (Salary, error) {
	var sal Salary
	err := r.pool.QueryRow(ctx,
		`SELECT id, employee_id, amount, effective_from, created_at
		 FROM salaries WHERE employee_id = $1
		 ORDER BY effective_from DESC LIMIT 1`, employeeID).
		Scan(&sal.ID, &sal.EmployeeID, &sal.Amount, &sal.EffectiveFrom, &sal.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Salary{}, fmt.Errorf("%w: no salary on file for employee %d", httpx.ErrNotFound, employeeID)
	}
	return sal, err
}

// UpsertSalary inserts or replaces the employee's salary row.
func (r *Repository) UpsertSalary(ctx context.Context, input SalaryInput) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO salaries (employee_id, amount, effective_from)
		 VALUES ($1, $2, COALESCE(NULLIF($3, '')::date, CURRENT_DATE))
		 ON CONFLICT (employee_id) DO UPDATE
		   SET amount = EXCLUDED.amount, effective_from = EXCLUDED.effective_from
		 RETURNING id`,
		input.EmployeeID, input.Amount, input.EffectiveFrom).Scan(&id)
	return id, err
}

// ListAdvances returns advance rows visible under the predicate, newest first.
func (r *Repository) ListAdvances(ctx context.Context, pred scope.Predicate) ([]Advance, error) {
	where, args := pred.SQL(1)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, employee_id, amount, reason, status, reviewed_by, requested_at
		 FROM salary_advances WHERE %s ORDER BY requested_at DESC`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Advance
	for rows.Next() {
		var adv Advance
		if err := rows.Scan(&adv.ID, &adv.EmployeeID, &adv.Amount, &adv.Reason, &adv.Status, &adv.ReviewedBy, &adv.RequestedAt); err != nil {
			return nil, err
		}
		out = append(out, adv)
	}
	return out, rows.Err()
}

// InsertAdvance stores a new pending advance request.
func (r *Repository) InsertAdvance(ctx context.Context, adv Advance) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO salary_advances (employee_id, amount, reason, status)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		adv.EmployeeID, adv.Amount, adv.Reason, adv.Status).Scan(&id)
	return id, err
}

// ReviewAdvance settles a pending request. Returns rows affected so the
// service can distinguish an unknown or already-settled id.
func (r *Repository) ReviewAdvance(ctx context.Context, id int64, status string, reviewerID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE salary_advances SET status = $2, reviewed_by = $3
		 WHERE id = $1 AND status = $4`,
		id, status, reviewerID, AdvancePending)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
