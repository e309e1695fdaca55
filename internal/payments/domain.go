package payments

import "time"

// Payment statuses.
const (
	StatusUnpaid = "unpaid"
	StatusPaid   = "paid"
)

// Payment is a fee charged to a student, optionally settled.
type Payment struct {
	ID          int64      `json:"id"`
	StudentID   int64      `json:"student_id"`
	StudentName string     `json:"student_name,omitempty"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	RecordedBy  int64      `json:"recorded_by"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateInput charges a fee to a student.
type CreateInput struct {
	StudentID   int64   `json:"student_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}
