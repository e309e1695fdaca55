package classes

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-edu/meridian-edu/internal/scope"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListScoped returns classes visible under the given predicate.
func (r *Repository) ListScoped(ctx context.Context, pred scope.Predicate) ([]Class, error) {
	where, args := pred.SQL(1)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, name, program, trainer_id, created_at FROM classes WHERE %s ORDER BY name`, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Class
	for rows.Next() {
		var c Class
		if err := rows.Scan(&c.ID, &c.Name, &c.Program, &c.TrainerID, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Insert stores a new class and returns its ID.
func (r *Repository) Insert(ctx context.Context, c Class) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classes (name, program, trainer_id) VALUES ($1, $2, $3) RETURNING id`,
		c.Name, c.Program, c.TrainerID,
	).Scan(&id)
	return id, err
}

// Roster lists students enrolled in a class.
func (r *Repository) Roster(ctx context.Context, classID int64) ([]Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, p.full_name
		 FROM class_students cs
		 JOIN students s ON s.id = cs.student_id
		 JOIN profiles p ON p.user_id = s.user_id
		 WHERE cs.class_id = $1 ORDER BY p.full_name`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.FullName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
