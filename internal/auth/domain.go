package auth

import "time"

// User mirrors the users table for authentication purposes.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}
