package repository

import (
	"context"

	"daybook/internal/domain"
)

// EntryRepository defines persistence operations for diary entries.
type EntryRepository interface {
	Init(ctx context.Context) error
	// Upsert atomically inserts the entry for (UserID, Date) or, if one already
	// exists, overwrites title/body and refreshes updated_at. It returns the
	// row as stored after the write.
	Upsert(ctx context.Context, entry *domain.Entry) (*domain.Entry, error)
	Get(ctx context.Context, userID int64, date string) (*domain.Entry, error)
	ListDates(ctx context.Context, userID int64) ([]string, error)
	// ListAll returns every entry in the store, ordered by user then date.
	// Used by the snapshot backup.
	ListAll(ctx context.Context) ([]domain.Entry, error)
}
