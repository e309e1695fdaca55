package announcements

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

// ListScoped returns announcements visible under the given predicate,
// newest first.
func (r *Repository) ListScoped(ctx context.Context, pred scope.Predicate, limit, offset int) ([]Announcement, error) {
	where, args := pred.SQL(1)
	query := fmt.Sprintf(
		`SELECT id, title, body, is_public, target_roles, class_id, created_by, created_at
		 FROM announcements WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Announcement
	for rows.Next() {
		var a Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.IsPublic, &a.TargetRoles, &a.ClassID, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Insert stores a shaped announcement and returns its ID.
func (r *Repository) Insert(ctx context.Context, a Announcement) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO announcements (title, body, is_public, target_roles, class_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		a.Title, a.Body, a.IsPublic, a.TargetRoles, a.ClassID, a.CreatedBy,
	).Scan(&id)
	return id, err
}

// Delete removes an announcement owned by the actor unless unrestricted.
func (r *Repository) Delete(ctx context.Context, id int64, pred scope.Predicate) (int64, error) {
	where, args := pred.SQL(2)
	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM announcements WHERE id = $1 AND %s`, where),
		append([]any{id}, args...)...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
