package payroll

import "time"

// Salary is an employee's on-file monthly salary.
type Salary struct {
	ID            int64     `json:"id"`
	EmployeeID    int64     `json:"employee_id"`
	EmployeeName  string    `json:"employee_name"`
	Amount        float64   `json:"amount"`
	EffectiveFrom time.Time `json:"effective_from"`
	CreatedAt     time.Time `json:"created_at"`
}

// Advance statuses. A request starts pending and is settled by an admin.
const (
	AdvancePending  = "pending"
	AdvanceApproved = "approved"
	AdvanceRejected = "rejected"
)

// Advance is a salary advance request.
type Advance struct {
	ID          int64     `json:"id"`
	EmployeeID  int64     `json:"employee_id"`
	Amount      float64   `json:"amount"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	ReviewedBy  *int64    `json:"reviewed_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// AdvanceInput is the body of an advance request.
type AdvanceInput struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// SalaryInput sets or updates an employee's salary.
type SalaryInput struct {
	EmployeeID    int64   `json:"employee_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	EffectiveFrom string  `json:"effective_from"`
}
