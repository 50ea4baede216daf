package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"daybook/internal/repository/sqlite"
)

func newEntryService(t *testing.T, now func() time.Time) EntryService {
	t.Helper()
	repo := sqlite.NewEntryRepository(newTestDB(t))
	return NewEntryService(repo, now)
}

func TestGetBeforeSaveReturnsNil(t *testing.T) {
	svc := newEntryService(t, nil)

	entry, err := svc.Get(context.Background(), 1, "2024-01-05")
	require.NoError(t, err)
	require.Nil(t, entry)
}

func TestSaveThenGet(t *testing.T) {
	svc := newEntryService(t, nil)
	ctx := context.Background()

	saved, err := svc.Save(ctx, 1, "2024-01-05", "First day", "It rained.")
	require.NoError(t, err)
	require.NotZero(t, saved.ID)
	require.Equal(t, "2024-01-05", saved.Date)
	require.False(t, saved.CreatedAt.IsZero())
	require.False(t, saved.UpdatedAt.IsZero())

	got, err := svc.Get(ctx, 1, "2024-01-05")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, saved.ID, got.ID)
	require.Equal(t, "First day", got.Title)
}

func TestSaveUpsertsWithoutDuplicating(t *testing.T) {
	svc := newEntryService(t, nil)
	ctx := context.Background()

	first, err := svc.Save(ctx, 1, "2024-01-05", "Draft", "v1")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	second, err := svc.Save(ctx, 1, "2024-01-05", "Final", "v2")
	require.NoError(t, err)

	// same row, second write wins
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Final", second.Title)
	require.Equal(t, "v2", second.Body)
	require.True(t, second.CreatedAt.Equal(first.CreatedAt), "created_at is immutable")
	require.True(t, second.UpdatedAt.After(first.UpdatedAt), "updated_at advances")

	dates, err := svc.ListDates(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"2024-01-05"}, dates)
}

func TestSaveScopedPerUser(t *testing.T) {
	svc := newEntryService(t, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, "2024-01-05", "Mine", "body")
	require.NoError(t, err)
	_, err = svc.Save(ctx, 2, "2024-01-05", "Theirs", "body")
	require.NoError(t, err)

	mine, err := svc.Get(ctx, 1, "2024-01-05")
	require.NoError(t, err)
	require.Equal(t, "Mine", mine.Title)

	theirs, err := svc.Get(ctx, 2, "2024-01-05")
	require.NoError(t, err)
	require.Equal(t, "Theirs", theirs.Title)
}

func TestSaveValidation(t *testing.T) {
	svc := newEntryService(t, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, "2024-01-05", "", "body")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Save(ctx, 1, "2024-01-05", "title", "  ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestDateFormatRejected(t *testing.T) {
	svc := newEntryService(t, nil)
	ctx := context.Background()

	for _, date := range []string{
		"Jan 5",
		"2024-1-5",
		"2024-13-40",
		"2024-02-30",
		"20240105",
		"2024-01-05T00:00:00",
		"",
	} {
		_, err := svc.Save(ctx, 1, date, "title", "body")
		require.ErrorIs(t, err, ErrInvalidDate, "save %q", date)

		_, err = svc.Get(ctx, 1, date)
		require.ErrorIs(t, err, ErrInvalidDate, "get %q", date)
	}
}

func TestFutureDateRejected(t *testing.T) {
	// pin "now" to mid-day 2024-01-15 local time
	now := func() time.Time {
		return time.Date(2024, 1, 15, 12, 0, 0, 0, time.Local)
	}
	svc := newEntryService(t, now)
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, "2024-01-16", "tomorrow", "body")
	require.ErrorIs(t, err, ErrFutureDate)

	_, err = svc.Save(ctx, 1, "2025-01-01", "next year", "body")
	require.ErrorIs(t, err, ErrFutureDate)

	// today and the past are always allowed
	_, err = svc.Save(ctx, 1, "2024-01-15", "today", "body")
	require.NoError(t, err)
	_, err = svc.Save(ctx, 1, "2024-01-15", "today again", "body")
	require.NoError(t, err)
	_, err = svc.Save(ctx, 1, "2023-12-31", "yesteryear", "body")
	require.NoError(t, err)
}

func TestListDatesDescending(t *testing.T) {
	svc := newEntryService(t, nil)
	ctx := context.Background()

	for _, date := range []string{"2024-01-05", "2024-01-20", "2024-01-01"} {
		_, err := svc.Save(ctx, 1, date, "title", "body")
		require.NoError(t, err)
	}

	dates, err := svc.ListDates(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"2024-01-20", "2024-01-05", "2024-01-01"}, dates)
}

func TestListDatesEmpty(t *testing.T) {
	svc := newEntryService(t, nil)

	dates, err := svc.ListDates(context.Background(), 42)
	require.NoError(t, err)
	require.Empty(t, dates)
}
