package announcements

import "time"

// Announcement is a notice shown on the dashboard. Visibility is encoded on
// the row itself: a public announcement has no target roles, a targeted one
// carries the role list, and trainer-authored ones are pinned to a class.
type Announcement struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	IsPublic    bool      `json:"is_public"`
	TargetRoles []string  `json:"target_roles"`
	ClassID     *int64    `json:"class_id,omitempty"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateInput carries the raw form fields for a new announcement. ClassID
// zero is the "all classes" sentinel from the class selector.
type CreateInput struct {
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	IsPublic bool   `json:"is_public"`
	ClassID  int64  `json:"class_id"`
}
