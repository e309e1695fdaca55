package provisioning

// StudentData carries the student record created alongside the account when
// the role set includes "student".
type StudentData struct {
	ClassID        *int64 `json:"class_id,omitempty"`
	EnrollmentDate string `json:"enrollment_date,omitempty"`
}

// Input is the provisioning request body.
type Input struct {
	Email       string       `json:"email" validate:"required,email"`
	Password    string       `json:"password" validate:"required,min=8"`
	FullName    string       `json:"fullName" validate:"required"`
	Phone       string       `json:"phone"`
	Roles       []string     `json:"roles" validate:"required,min=1"`
	StudentData *StudentData `json:"studentData,omitempty"`
}

// NewUser is the shaped record handed to the repository after validation
// and hashing.
type NewUser struct {
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	Roles        []string
	Student      *StudentData
}

// Result is the provisioning response body.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	UserID  int64  `json:"userId,omitempty"`
	Error   string `json:"error,omitempty"`
}
