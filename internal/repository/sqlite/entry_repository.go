package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daybook/internal/domain"
	"daybook/internal/repository"
)

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	entry_date TEXT NOT NULL,
	title TEXT NOT NULL,
	body TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
	UNIQUE (user_id, entry_date)
);
`

type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) repository.EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createEntriesTable); err != nil {
		return fmt.Errorf("create entries table: %w", err)
	}
	return nil
}

// Upsert relies on the (user_id, entry_date) unique constraint: a single
// INSERT .. ON CONFLICT statement either creates the row or overwrites
// title/body and updated_at, never producing a second row for the pair even
// under concurrent saves. created_at is untouched on conflict.
func (r *EntryRepository) Upsert(ctx context.Context, entry *domain.Entry) (*domain.Entry, error) {
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO entries (user_id, entry_date, title, body, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, entry_date) DO UPDATE SET
	title = excluded.title,
	body = excluded.body,
	updated_at = excluded.updated_at`,
		entry.UserID,
		entry.Date,
		entry.Title,
		entry.Body,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert entry: %w", err)
	}

	saved, err := r.Get(ctx, entry.UserID, entry.Date)
	if err != nil {
		return nil, fmt.Errorf("reload entry after upsert: %w", err)
	}
	return saved, nil
}

func (r *EntryRepository) Get(ctx context.Context, userID int64, date string) (*domain.Entry, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, user_id, entry_date, title, body, created_at, updated_at
FROM entries
WHERE user_id = ? AND entry_date = ?`,
		userID,
		date,
	)
	return scanEntry(row)
}

func (r *EntryRepository) ListDates(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT entry_date
FROM entries
WHERE user_id = ?
ORDER BY entry_date DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list entry dates: %w", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan entry date: %w", err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entry dates: %w", err)
	}
	return dates, nil
}

func (r *EntryRepository) ListAll(ctx context.Context) ([]domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, entry_date, title, body, created_at, updated_at
FROM entries
ORDER BY user_id, entry_date`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Title, &e.Body, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func scanEntry(row *sql.Row) (*domain.Entry, error) {
	var e domain.Entry
	if err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Date,
		&e.Title,
		&e.Body,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("entry: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	return &e, nil
}
