package provisioning

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-edu/meridian-edu/internal/platform/db"
	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
)

// Repository provisions accounts. Everything happens in one transaction:
// auth identity, profile, role rows and the optional student record either
// all land or none do.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateUser inserts the full account. A unique violation on the email
// column maps to ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, u NewUser) (int64, error) {
	var userID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO users (email, password_hash, is_active)
			 VALUES ($1, $2, TRUE) RETURNING id`,
			u.Email, u.PasswordHash).Scan(&userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO profiles (user_id, email, full_name, phone)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id) DO UPDATE
			   SET email = EXCLUDED.email, full_name = EXCLUDED.full_name, phone = EXCLUDED.phone`,
			userID, u.Email, u.FullName, u.Phone); err != nil {
			return err
		}
		for _, role := range u.Roles {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`,
				userID, role); err != nil {
				return err
			}
		}
		if u.Student != nil {
			var studentID int64
			if err := tx.QueryRow(ctx,
				`INSERT INTO students (user_id, enrolled_at)
				 VALUES ($1, COALESCE(NULLIF($2, '')::date, CURRENT_DATE)) RETURNING id`,
				userID, u.Student.EnrollmentDate).Scan(&studentID); err != nil {
				return err
			}
			if u.Student.ClassID != nil {
				if _, err := tx.Exec(ctx,
					`INSERT INTO class_students (class_id, student_id) VALUES ($1, $2)`,
					*u.Student.ClassID, studentID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
		}
		return 0, err
	}
	return userID, nil
}
