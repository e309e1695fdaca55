package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProfileNotFound indicates the user has no profile row.
var ErrProfileNotFound = errors.New("identity: profile not found")

// Repository loads actor projections from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadActor assembles the full actor projection for a user ID: profile,
// role rows, trainer class assignments and the student record when present.
func (r *Repository) LoadActor(ctx context.Context, userID int64) (Actor, error) {
	actor := Actor{ID: userID}

	err := r.pool.QueryRow(ctx,
		`SELECT email, full_name FROM profiles WHERE user_id = $1`, userID,
	).Scan(&actor.Email, &actor.FullName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Actor{}, ErrProfileNotFound
		}
		return Actor{}, err
	}

	roleRows, err := r.pool.Query(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1 ORDER BY assigned_at, role`, userID)
	if err != nil {
		return Actor{}, err
	}
	defer roleRows.Close()
	for roleRows.Next() {
		var raw string
		if err := roleRows.Scan(&raw); err != nil {
			return Actor{}, err
		}
		if role, ok := ParseRole(raw); ok {
			actor.Roles = append(actor.Roles, role)
		}
	}
	if err := roleRows.Err(); err != nil {
		return Actor{}, err
	}

	if actor.HasRole(RoleTrainer) {
		classIDs, err := r.trainerClassIDs(ctx, userID)
		if err != nil {
			return Actor{}, err
		}
		actor.ClassIDs = classIDs
	}

	if actor.HasRole(RoleStudent) {
		if err := r.pool.QueryRow(ctx,
			`SELECT id FROM students WHERE user_id = $1`, userID,
		).Scan(&actor.StudentID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return Actor{}, err
		}
		if actor.StudentID != 0 && len(actor.ClassIDs) == 0 {
			classIDs, err := r.studentClassIDs(ctx, actor.StudentID)
			if err != nil {
				return Actor{}, err
			}
			actor.ClassIDs = classIDs
		}
	}

	return actor, nil
}

func (r *Repository) trainerClassIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM classes WHERE trainer_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func (r *Repository) studentClassIDs(ctx context.Context, studentID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT class_id FROM class_students WHERE student_id = $1 ORDER BY class_id`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
