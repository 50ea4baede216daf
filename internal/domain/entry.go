package domain

import "time"

// DateLayout is the canonical calendar-date format for diary entries.
const DateLayout = "2006-01-02"

// Entry is a single diary record. At most one exists per (UserID, Date) pair;
// the sqlite schema enforces this with a unique constraint.
type Entry struct {
	ID        int64
	UserID    int64
	Date      string // YYYY-MM-DD, no time component
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
