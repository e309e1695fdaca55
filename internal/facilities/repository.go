package facilities

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for facility records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListNetworks returns every network record. The view is admin-gated.
func (r *Repository) ListNetworks(ctx context.Context) ([]WiFiNetwork, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, ssid, password, location, active, created_at
		 FROM wifi_networks ORDER BY ssid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WiFiNetwork
	for rows.Next() {
		var n WiFiNetwork
		if err := rows.Scan(&n.ID, &n.SSID, &n.Password, &n.Location, &n.Active, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// InsertNetwork stores a new network record.
func (r *Repository) InsertNetwork(ctx context.Context, input WiFiInput) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO wifi_networks (ssid, password, location, active)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		input.SSID, input.Password, input.Location, input.Active).Scan(&id)
	return id, err
}

// UpdateNetwork replaces a network record. Returns rows affected.
func (r *Repository) UpdateNetwork(ctx context.Context, id int64, input WiFiInput) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE wifi_networks SET ssid = $2, password = $3, location = $4, active = $5
		 WHERE id = $1`,
		id, input.SSID, input.Password, input.Location, input.Active)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteNetwork removes a network record. Returns rows affected.
func (r *Repository) DeleteNetwork(ctx context.Context, id int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM wifi_networks WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListMaterials returns stock movements, newest first.
func (r *Repository) ListMaterials(ctx context.Context, limit, offset int) ([]MaterialTransaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, material, direction, quantity, note, recorded_by, created_at
		 FROM material_transactions ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MaterialTransaction
	for rows.Next() {
		var tx MaterialTransaction
		if err := rows.Scan(&tx.ID, &tx.Material, &tx.Direction, &tx.Quantity, &tx.Note, &tx.RecordedBy, &tx.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// InsertMaterial stores a stock movement.
func (r *Repository) InsertMaterial(ctx context.Context, tx MaterialTransaction) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO material_transactions (material, direction, quantity, note, recorded_by)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		tx.Material, tx.Direction, tx.Quantity, tx.Note, tx.RecordedBy).Scan(&id)
	return id, err
}
