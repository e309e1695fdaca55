package certificates

import "time"

// Certificate is a course completion record rendered to PDF on demand.
type Certificate struct {
	ID          int64     `json:"id"`
	StudentID   int64     `json:"student_id"`
	StudentName string    `json:"student_name"`
	CourseName  string    `json:"course_name"`
	LogoURL     string    `json:"logo_url,omitempty"`
	IssuedBy    int64     `json:"issued_by"`
	IssuedAt    time.Time `json:"issued_at"`
}

// IssueInput creates a certificate record.
type IssueInput struct {
	StudentID  int64  `json:"student_id"`
	CourseName string `json:"course_name"`
	LogoURL    string `json:"logo_url"`
}
