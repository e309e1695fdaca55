package gallery

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for gallery items.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns every gallery item, newest first. The view itself is
// admin-gated so no predicate applies here.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, object_name, url, uploaded_by, created_at
		 FROM gallery_items ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Title, &item.ObjectName, &item.URL, &item.UploadedBy, &item.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Insert stores a gallery row pointing at an already-uploaded blob.
func (r *Repository) Insert(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO gallery_items (title, object_name, url, uploaded_by)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		item.Title, item.ObjectName, item.URL, item.UploadedBy).Scan(&id)
	return id, err
}

// Delete removes a gallery row. Returns rows affected.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM gallery_items WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ObjectNames returns the object names referenced by gallery rows. The
// orphan scan diffs this set against the bucket contents.
func (r *Repository) ObjectNames(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT object_name FROM gallery_items`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[name] = struct{}{}
	}
	return out, rows.Err()
}
