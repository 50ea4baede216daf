// Package backup periodically serializes all diary entries to JSON and
// uploads the snapshot to object storage. Backups are best-effort: a failed
// upload logs a warning and never affects request handling.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"daybook/internal/repository"
	"daybook/internal/storage"
)

// Config controls the snapshot schedule and destination.
type Config struct {
	Bucket    string
	KeyPrefix string
	Interval  time.Duration
	Logger    *logrus.Logger
}

type snapshotEntry struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type snapshot struct {
	TakenAt time.Time       `json:"taken_at"`
	Entries []snapshotEntry `json:"entries"`
}

// Scheduler runs snapshot uploads on a fixed interval until Shutdown.
type Scheduler struct {
	cfg     Config
	entries repository.EntryRepository
	store   storage.Service

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(cfg Config, entries repository.EntryRepository, store storage.Service) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &Scheduler{
		cfg:     cfg,
		entries: entries,
		store:   store,
	}
}

// Start launches the snapshot loop. It returns immediately; a first snapshot
// is taken right away, then one per interval until ctx is cancelled or
// Shutdown is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	if existing, err := s.store.ListSnapshots(ctx, s.cfg.Bucket, s.cfg.KeyPrefix); err != nil {
		s.cfg.Logger.Warnf("list snapshots: %v", err)
	} else {
		s.cfg.Logger.Infof("%d snapshots already in s3://%s/%s", len(existing), s.cfg.Bucket, s.cfg.KeyPrefix)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// snapshot immediately so short-lived processes still back up
		if err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			s.cfg.Logger.Warnf("snapshot backup: %v", err)
		}

		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
					s.cfg.Logger.Warnf("snapshot backup: %v", err)
				}
			}
		}
	}()
}

// Shutdown stops the loop and waits for an in-flight snapshot to finish.
func (s *Scheduler) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// RunOnce takes a single snapshot and uploads it.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	all, err := s.entries.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("collect entries: %w", err)
	}

	now := time.Now().UTC()
	snap := snapshot{
		TakenAt: now,
		Entries: make([]snapshotEntry, len(all)),
	}
	for i, e := range all {
		snap.Entries[i] = snapshotEntry{
			ID:        e.ID,
			UserID:    e.UserID,
			Date:      e.Date,
			Title:     e.Title,
			Body:      e.Body,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
			UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
		}
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	key := s.snapshotKey(now)
	location, err := s.store.PutSnapshot(ctx, s.cfg.Bucket, key, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	s.cfg.Logger.Infof("snapshot uploaded to %s (%d entries)", location, len(snap.Entries))
	return nil
}

func (s *Scheduler) snapshotKey(t time.Time) string {
	prefix := s.cfg.KeyPrefix
	if prefix == "" {
		prefix = "snapshots"
	}
	return fmt.Sprintf("%s/entries-%s.json", prefix, t.Format("20060102T150405Z"))
}
