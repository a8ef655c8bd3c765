package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/foundly/foundly-api/config"
)

// ObjectStorage is the object-store surface avatar uploads need,
// implemented by the GCS and MinIO drivers.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
	Bucket() string
}

// New selects a driver from config. STORAGE_DRIVER=gcs|minio.
func New(ctx context.Context, cfg *config.Config) (ObjectStorage, error) {
	switch cfg.StorageDriver {
	case "minio":
		return NewMinioStorage(cfg)
	case "gcs":
		return NewGCSStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
