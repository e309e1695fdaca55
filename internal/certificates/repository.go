package certificates

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-edu/meridian-edu/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for certificates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `c.id, c.student_id, pr.full_name, c.course_name, c.logo_url, c.issued_by, c.issued_at`

// ListAll returns every certificate, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]Certificate, error) {
	return r.list(ctx, `TRUE`, nil)
}

// ListForStudent returns a student's certificates.
func (r *Repository) ListForStudent(ctx context.Context, studentID int64) ([]Certificate, error) {
	return r.list(ctx, `c.student_id = $1`, []any{studentID})
}

func (r *Repository) list(ctx context.Context, where string, args []any) ([]Certificate, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM certificates c
		 JOIN students st ON st.id = c.student_id
		 JOIN profiles pr ON pr.user_id = st.user_id
		 WHERE %s ORDER BY c.issued_at DESC`, selectColumns, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Certificate
	for rows.Next() {
		var cert Certificate
		if err := rows.Scan(&cert.ID, &cert.StudentID, &cert.StudentName, &cert.CourseName, &cert.LogoURL, &cert.IssuedBy, &cert.IssuedAt); err != nil {
			return nil, err
		}
		out = append(out, cert)
	}
	return out, rows.Err()
}

// Get returns one certificate.
func (r *Repository) Get(ctx context.Context, id int64) (Certificate, error) {
	var cert Certificate
	err := r.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT %s FROM certificates c
		 JOIN students st ON st.id = c.student_id
		 JOIN profiles pr ON pr.user_id = st.user_id
		 WHERE c.id = $1`, selectColumns), id).
		Scan(&cert.ID, &cert.StudentID, &cert.StudentName, &cert.CourseName, &cert.LogoURL, &cert.IssuedBy, &cert.IssuedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Certificate{}, fmt.Errorf("%w: certificate %d", httpx.ErrNotFound, id)
	}
	return cert, err
}

// Insert stores a certificate record.
func (r *Repository) Insert(ctx context.Context, cert Certificate) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO certificates (student_id, course_name, logo_url, issued_by)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		cert.StudentID, cert.CourseName, cert.LogoURL, cert.IssuedBy).Scan(&id)
	return id, err
}
