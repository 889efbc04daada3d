package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"b2gateway/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioStorage implements ObjectStorage using the MinIO client, which
// speaks to any S3-compatible endpoint including Backblaze B2
type MinioStorage struct {
	client *minio.Client
	logger *zap.Logger
}

// NewMinioStorage creates a new MinIO storage handler
func NewMinioStorage(cfg config.StorageConfig, logger *zap.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.KeyID, cfg.ApplicationKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return NewMinioStorageWithClient(client, logger), nil
}

// NewMinioStorageWithClient wraps an already configured client
func NewMinioStorageWithClient(client *minio.Client, logger *zap.Logger) *MinioStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MinioStorage{
		client: client,
		logger: logger,
	}
}

// ListBuckets lists every bucket visible to the configured key
func (s *MinioStorage) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	buckets, err := s.client.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	result := make([]BucketInfo, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, BucketInfo{
			Name:      b.Name,
			CreatedAt: b.CreationDate,
		})
	}
	return result, nil
}

// BucketExists checks if a bucket exists
func (s *MinioStorage) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	exists, err := s.client.BucketExists(ctx, bucketName)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchBucket" {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket: %w", err)
	}
	return exists, nil
}

// ListObjects lists every object in the bucket
func (s *MinioStorage) ListObjects(ctx context.Context, bucketName string) ([]ObjectInfo, error) {
	objectCh := s.client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{
		Recursive: true,
	})

	objects := make([]ObjectInfo, 0)
	for object := range objectCh {
		if object.Err != nil {
			if minio.ToErrorResponse(object.Err).Code == "NoSuchBucket" {
				return nil, ErrBucketNotFound
			}
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}

		objects = append(objects, ObjectInfo{
			Size:         object.Size,
			LastModified: object.LastModified,
			ETag:         object.ETag,
			StorageClass: object.StorageClass,
			Name:         object.Key,
		})
	}

	return objects, nil
}

// PutObject uploads an object in a single attempt
func (s *MinioStorage) PutObject(ctx context.Context, bucketName, objectName, contentType string, reader io.Reader, objectSize int64) error {
	info, err := s.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	s.logger.Debug("Uploaded object",
		zap.String("bucket", bucketName),
		zap.String("key", objectName),
		zap.String("etag", info.ETag),
		zap.Int64("size", info.Size),
	)
	return nil
}

// PresignedGetURL returns a time-limited download URL for an object
func (s *MinioStorage) PresignedGetURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucketName, objectName, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}
	return u.String(), nil
}
