package domain

import "time"

// User represents a registered diary account.
type User struct {
	ID           int64
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
