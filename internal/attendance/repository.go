package attendance

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-edu/meridian-edu/internal/scope"
)

// Repository provides PostgreSQL backed persistence. Attendance rows are
// stored denormalised with trainer_id so scope predicates never need a
// join back to classes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListScoped returns attendance rows for a class and date under the predicate.
func (r *Repository) ListScoped(ctx context.Context, pred scope.Predicate, classID int64, date string) ([]Record, error) {
	where, args := pred.SQL(3)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, class_id, student_id, date, present, recorded_by, recorded_at
		 FROM attendance_records WHERE class_id = $1 AND date = $2 AND %s ORDER BY student_id`, where),
		append([]any{classID, date}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListForStudent returns a student's own history under the predicate.
func (r *Repository) ListForStudent(ctx context.Context, pred scope.Predicate, limit int) ([]Record, error) {
	where, args := pred.SQL(1)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, class_id, student_id, date, present, recorded_by, recorded_at
		 FROM attendance_records WHERE %s ORDER BY date DESC LIMIT $%d`, where, len(args)+1),
		append(args, limit)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// DeleteForClassDate removes every row for the (class, date) partition.
func (r *Repository) DeleteForClassDate(ctx context.Context, classID int64, date string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM attendance_records WHERE class_id = $1 AND date = $2`, classID, date)
	return err
}

// InsertRecords stores the full new set for a (class, date) partition.
func (r *Repository) InsertRecords(ctx context.Context, records []Record) error {
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO attendance_records (class_id, student_id, date, present, trainer_id, recorded_by)
			 VALUES ($1, $2, $3, $4, (SELECT trainer_id FROM classes WHERE id = $1), $5)`,
			rec.ClassID, rec.StudentID, rec.Date, rec.Present, rec.RecordedBy)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range records {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.ClassID, &rec.StudentID, &rec.Date, &rec.Present, &rec.RecordedBy, &rec.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
