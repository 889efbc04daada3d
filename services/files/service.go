package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"b2gateway/models"
	"b2gateway/storage"

	md5simd "github.com/minio/md5-simd"
	"go.uber.org/zap"
)

const (
	// URLExpiry is the lifetime of every pre-signed download URL
	URLExpiry = time.Hour
	// UploadContentType is stored on every uploaded object regardless of
	// the source file's type
	UploadContentType = "application/octet-stream"
)

// UploadRequest carries one uploaded file
type UploadRequest struct {
	Bucket   string
	Filename string
	// Key is the caller-supplied object key; blank means content addressed
	Key  string
	Size int64
	// Body must be seekable: it is hashed and then uploaded
	Body io.ReadSeeker
}

// Service handles bucket and file operations against object storage
type Service struct {
	storage storage.ObjectStorage
	hashes  md5simd.Server
	logger  *zap.Logger
}

// NewService creates a new files service
func NewService(storage storage.ObjectStorage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		storage: storage,
		hashes:  md5simd.NewServer(),
		logger:  logger,
	}
}

// Close releases the hashing workers
func (s *Service) Close() {
	s.hashes.Close()
}

// ListBuckets lists all buckets
func (s *Service) ListBuckets(ctx context.Context) ([]models.Bucket, error) {
	buckets, err := s.storage.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.Bucket, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, models.Bucket{
			Name:      b.Name,
			CreatedAt: b.CreatedAt,
		})
	}
	return result, nil
}

// ListObjects lists the files and folders within a bucket
func (s *Service) ListObjects(ctx context.Context, bucketName string) ([]models.Object, error) {
	objects, err := s.listObjects(ctx, bucketName)
	if err != nil {
		return nil, err
	}

	result := make([]models.Object, 0, len(objects))
	for _, obj := range objects {
		result = append(result, models.Object{
			Key:          obj.Name,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ETag:         obj.ETag,
			StorageClass: obj.StorageClass,
		})
	}
	return result, nil
}

// FileURL returns a pre-signed download URL for an existing object
func (s *Service) FileURL(ctx context.Context, bucketName, objectName string) (string, error) {
	objects, err := s.listObjects(ctx, bucketName)
	if err != nil {
		return "", err
	}

	if objectName == "" || !containsKey(objects, objectName) {
		return "", ErrFileNotFound
	}

	return s.storage.PresignedGetURL(ctx, bucketName, objectName, URLExpiry)
}

// Upload stores a file under its resolved key and returns a download URL
// for it. Uploads never overwrite: a taken key fails with
// *KeyConflictError. If the bucket listing used for that check fails, the
// upload is aborted.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (string, error) {
	objects, err := s.listObjects(ctx, req.Bucket)
	if err != nil {
		return "", err
	}

	existing := make(map[string]struct{}, len(objects))
	for _, obj := range objects {
		existing[obj.Name] = struct{}{}
	}

	key, err := ResolveKey(existing, req.Key, func() (string, error) {
		return md5Hex(s.hashes, req.Body)
	}, req.Filename)
	if err != nil {
		return "", err
	}

	if _, err := req.Body.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	start := time.Now()
	if err := s.storage.PutObject(ctx, req.Bucket, key, UploadContentType, req.Body, req.Size); err != nil {
		return "", err
	}
	s.logger.Info("Uploaded file",
		zap.String("bucket", req.Bucket),
		zap.String("key", key),
		zap.Int64("size", req.Size),
		zap.Duration("took", time.Since(start)),
	)

	url, err := s.storage.PresignedGetURL(ctx, req.Bucket, key, URLExpiry)
	if err != nil {
		// the object is stored, so report success without a URL
		s.logger.Warn("Could not presign uploaded file",
			zap.String("bucket", req.Bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", nil
	}
	return url, nil
}

// listObjects validates the bucket and lists its objects
func (s *Service) listObjects(ctx context.Context, bucketName string) ([]storage.ObjectInfo, error) {
	if bucketName == "" {
		return nil, ErrInvalidBucket
	}

	exists, err := s.storage.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrInvalidBucket
	}

	objects, err := s.storage.ListObjects(ctx, bucketName)
	if errors.Is(err, storage.ErrBucketNotFound) {
		return nil, ErrInvalidBucket
	}
	return objects, err
}

func containsKey(objects []storage.ObjectInfo, key string) bool {
	for _, obj := range objects {
		if obj.Name == key {
			return true
		}
	}
	return false
}
