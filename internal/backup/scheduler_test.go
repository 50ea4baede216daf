package backup

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"daybook/internal/domain"
	"daybook/internal/repository/sqlite"
	"daybook/internal/storage"
)

type fakeStore struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	listCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: map[string][]byte{}}
}

func (f *fakeStore) PutSnapshot(_ context.Context, bucket, key string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.uploads[key] = data
	f.mu.Unlock()
	return "s3://" + bucket + "/" + key, nil
}

func (f *fakeStore) ListSnapshots(context.Context, string, string) ([]storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	objects := make([]storage.ObjectInfo, 0, len(f.uploads))
	for key, data := range f.uploads {
		objects = append(objects, storage.ObjectInfo{Key: key, Size: int64(len(data))})
	}
	return objects, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func (f *fakeStore) listed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func TestRunOnceUploadsSnapshot(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepository(db)
	entries := sqlite.NewEntryRepository(db)
	ctx := context.Background()
	require.NoError(t, users.Init(ctx))
	require.NoError(t, entries.Init(ctx))

	uid, err := users.Create(ctx, &domain.User{FullName: "Ada", Email: "ada@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = entries.Upsert(ctx, &domain.Entry{UserID: uid, Date: "2024-01-05", Title: "Day one", Body: "b"})
	require.NoError(t, err)

	store := newFakeStore()
	s := NewScheduler(Config{Bucket: "bkt", KeyPrefix: "snaps"}, entries, store)
	require.NoError(t, s.RunOnce(ctx))

	require.Equal(t, 1, store.count())
	for key, data := range store.uploads {
		require.Contains(t, key, "snaps/entries-")

		var snap struct {
			Entries []struct {
				UserID int64  `json:"user_id"`
				Date   string `json:"date"`
				Title  string `json:"title"`
			} `json:"entries"`
		}
		require.NoError(t, json.Unmarshal(data, &snap))
		require.Len(t, snap.Entries, 1)
		require.Equal(t, uid, snap.Entries[0].UserID)
		require.Equal(t, "2024-01-05", snap.Entries[0].Date)
		require.Equal(t, "Day one", snap.Entries[0].Title)
	}
}

func TestStartSnapshotsImmediately(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepository(db)
	entries := sqlite.NewEntryRepository(db)
	ctx := context.Background()
	require.NoError(t, users.Init(ctx))
	require.NoError(t, entries.Init(ctx))

	uid, err := users.Create(ctx, &domain.User{FullName: "Ada", Email: "ada@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = entries.Upsert(ctx, &domain.Entry{UserID: uid, Date: "2024-01-05", Title: "t", Body: "b"})
	require.NoError(t, err)

	store := newFakeStore()
	// interval far beyond the test horizon: only the startup snapshot fires
	s := NewScheduler(Config{Bucket: "bkt", KeyPrefix: "snaps", Interval: time.Hour}, entries, store)
	s.Start(ctx)
	defer s.Shutdown()

	// existing snapshots are surveyed before the loop starts
	require.Equal(t, 1, store.listed())

	deadline := time.After(2 * time.Second)
	for store.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("no snapshot uploaded shortly after start")
		case <-time.After(10 * time.Millisecond):
		}
	}
	require.Equal(t, 1, store.count())
}

func TestSchedulerStopsOnShutdown(t *testing.T) {
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	entries := sqlite.NewEntryRepository(db)
	require.NoError(t, entries.Init(context.Background()))

	s := NewScheduler(Config{Bucket: "bkt", Interval: time.Hour}, entries, newFakeStore())
	s.Start(context.Background())

	done := make(chan struct{})
	go func() {
		s.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop within timeout")
	}
}
