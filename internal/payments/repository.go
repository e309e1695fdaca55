package payments

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-edu/meridian-edu/internal/scope"
)

// Repository provides PostgreSQL backed persistence for payments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListScoped returns payment rows visible under the predicate, newest first.
func (r *Repository) ListScoped(ctx context.Context, pred scope.Predicate, limit, offset int) ([]Payment, error) {
	where, args := pred.SQL(1)
	n := len(args)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT pm.id, pm.student_id, pr.full_name, pm.amount, pm.description,
		        pm.status, pm.recorded_by, pm.paid_at, pm.created_at
		 FROM payments pm
		 JOIN students st ON st.id = pm.student_id
		 JOIN profiles pr ON pr.user_id = st.user_id
		 WHERE %s ORDER BY pm.created_at DESC LIMIT $%d OFFSET $%d`, where, n+1, n+2),
		append(args, limit, offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.StudentID, &p.StudentName, &p.Amount, &p.Description,
			&p.Status, &p.RecordedBy, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Insert stores a new fee row.
func (r *Repository) Insert(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payments (student_id, amount, description, status, recorded_by)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.StudentID, p.Amount, p.Description, p.Status, p.RecordedBy).Scan(&id)
	return id, err
}

// MarkPaid settles an unpaid fee. Returns rows affected.
func (r *Repository) MarkPaid(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET status = $2, paid_at = NOW()
		 WHERE id = $1 AND status = $3`, id, StatusPaid, StatusUnpaid)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
