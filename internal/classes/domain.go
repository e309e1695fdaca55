package classes

import "time"

// Class groups students under a trainer.
type Class struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Program   string    `json:"program"`
	TrainerID int64     `json:"trainer_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Student is a roster entry used by attendance marking.
type Student struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
}

// CreateInput carries fields for a new class.
type CreateInput struct {
	Name      string `json:"name" validate:"required"`
	Program   string `json:"program"`
	TrainerID int64  `json:"trainer_id" validate:"required"`
}
