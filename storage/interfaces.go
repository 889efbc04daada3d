package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrBucketNotFound is returned by drivers when an operation targets a
// bucket that does not exist
var ErrBucketNotFound = errors.New("bucket not found")

// ObjectStorage defines the interface for storage operations
type ObjectStorage interface {
	ListBuckets(ctx context.Context) ([]BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	ListObjects(ctx context.Context, bucketName string) ([]ObjectInfo, error)
	PutObject(ctx context.Context, bucketName, objectName, contentType string, reader io.Reader, objectSize int64) error
	PresignedGetURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
}

// BucketInfo contains information about a bucket
type BucketInfo struct {
	Name      string
	CreatedAt time.Time
}

// ObjectInfo contains information about a stored object
type ObjectInfo struct {
	Size         int64
	LastModified time.Time
	ETag         string
	StorageClass string
	Name         string
}
