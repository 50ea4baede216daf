package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"daybook/internal/domain"
	"daybook/internal/repository"
)

var (
	// ErrInvalidDate indicates a date not in strict YYYY-MM-DD form or not a
	// real calendar date.
	ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")
	// ErrFutureDate indicates an entry date strictly after today.
	ErrFutureDate = errors.New("cannot create diary entries for future dates")
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// EntryService describes diary entry operations. Every operation is scoped to
// a user id taken from a verified session token; a user can never touch
// another user's entries.
type EntryService interface {
	// Get returns the entry for (userID, date), or (nil, nil) when none exists.
	Get(ctx context.Context, userID int64, date string) (*domain.Entry, error)
	Save(ctx context.Context, userID int64, date, title, body string) (*domain.Entry, error)
	ListDates(ctx context.Context, userID int64) ([]string, error)
}

type entryService struct {
	entries repository.EntryRepository
	now     func() time.Time
}

// NewEntryService builds an EntryService. now is the reference clock used for
// the future-date check; pass nil for time.Now. Its location is the server's
// single source of truth for "today".
func NewEntryService(entries repository.EntryRepository, now func() time.Time) EntryService {
	if now == nil {
		now = time.Now
	}
	return &entryService{entries: entries, now: now}
}

func (s *entryService) Get(ctx context.Context, userID int64, date string) (*domain.Entry, error) {
	if _, err := parseDate(date); err != nil {
		return nil, err
	}

	entry, err := s.entries.Get(ctx, userID, date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (s *entryService) Save(ctx context.Context, userID int64, date, title, body string) (*domain.Entry, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("title is required: %w", ErrValidation)
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("body is required: %w", ErrValidation)
	}

	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	// End of today, 23:59:59.999 in server-local time. Past and present days
	// always pass, including repeated same-day edits.
	now := s.now()
	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999e6, now.Location())
	if day.After(endOfToday) {
		return nil, ErrFutureDate
	}

	return s.entries.Upsert(ctx, &domain.Entry{
		UserID: userID,
		Date:   date,
		Title:  title,
		Body:   body,
	})
}

func (s *entryService) ListDates(ctx context.Context, userID int64) ([]string, error) {
	return s.entries.ListDates(ctx, userID)
}

// parseDate enforces strict lexical YYYY-MM-DD form and rejects impossible
// calendar dates like 2024-13-40. The parsed day is anchored at local
// midnight for the future-date comparison.
func parseDate(date string) (time.Time, error) {
	if !dateRe.MatchString(date) {
		return time.Time{}, ErrInvalidDate
	}
	day, err := time.ParseInLocation(domain.DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return day, nil
}
