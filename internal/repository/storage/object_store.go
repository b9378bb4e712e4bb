package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore keeps receipts and backup archives. Objects are private; readers
// get time-limited presigned URLs.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}
