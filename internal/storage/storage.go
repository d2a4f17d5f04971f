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

// UploadInput conveys one object destined for the blob store.
type UploadInput struct {
	Bucket      string
	Key         string
	ContentType string
	Body        io.Reader
}

// Service relays uploaded files to remote object storage and removes them when
// their owning post goes away.
type Service interface {
	UploadObject(ctx context.Context, input UploadInput) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	ObjectURL(bucket, key string) string
	KeyFromURL(rawURL, bucket string) (string, bool)
}
