package storage

import (
	"context"
	"io"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Service stores diary snapshots in remote object storage.
type Service interface {
	PutSnapshot(ctx context.Context, bucket, key string, body io.Reader) (string, error)
	ListSnapshots(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
}
