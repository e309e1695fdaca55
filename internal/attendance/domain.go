package attendance

import "time"

// Record is a single student's attendance mark for a class on a date.
type Record struct {
	ID         int64     `json:"id"`
	ClassID    int64     `json:"class_id"`
	StudentID  int64     `json:"student_id"`
	Date       string    `json:"date"`
	Present    bool      `json:"present"`
	RecordedBy int64     `json:"recorded_by"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Mark is one roster row in a save request.
type Mark struct {
	StudentID int64 `json:"student_id"`
	Present   bool  `json:"present"`
}

// SaveInput carries a full attendance sheet for (class, date). Saving
// replaces whatever was stored for that key.
type SaveInput struct {
	ClassID int64  `json:"class_id"`
	Date    string `json:"date"`
	Marks   []Mark `json:"marks"`
}

// DateLayout is the wire format for attendance dates.
const DateLayout = "2006-01-02"
