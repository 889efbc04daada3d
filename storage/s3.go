package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"b2gateway/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Storage implements ObjectStorage with the AWS SDK pointed at an
// S3-compatible endpoint
type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	logger  *zap.Logger
}

// NewS3Storage creates an S3 storage handler for the configured endpoint
func NewS3Storage(cfg config.StorageConfig, logger *zap.Logger) *S3Storage {
	creds := aws.Credentials{
		AccessKeyID:     cfg.KeyID,
		SecretAccessKey: cfg.ApplicationKey,
		Source:          "b2gateway",
	}

	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(endpointURL(cfg.Endpoint, cfg.UseSSL)),
		UsePathStyle: true,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return creds, nil
		}),
		// B2 rejects the flexible checksum headers the SDK sends by default
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	})

	return NewS3StorageWithClient(client, logger)
}

// NewS3StorageWithClient wraps an already configured client
func NewS3StorageWithClient(client *s3.Client, logger *zap.Logger) *S3Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		logger:  logger,
	}
}

func endpointURL(endpoint string, useSSL bool) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// apiError matches the error codes returned by the service
type apiError interface {
	ErrorCode() string
}

// httpStatusError matches transport errors carrying the response status
type httpStatusError interface {
	HTTPStatusCode() int
}

func isNotFound(err error) bool {
	var ae apiError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}
	var he httpStatusError
	return errors.As(err, &he) && he.HTTPStatusCode() == http.StatusNotFound
}

// ListBuckets lists every bucket visible to the configured key
func (s *S3Storage) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	result := make([]BucketInfo, 0)
	input := &s3.ListBucketsInput{}
	for {
		out, err := s.client.ListBuckets(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list buckets: %w", err)
		}
		for _, b := range out.Buckets {
			result = append(result, BucketInfo{
				Name:      aws.ToString(b.Name),
				CreatedAt: aws.ToTime(b.CreationDate),
			})
		}
		if aws.ToString(out.ContinuationToken) == "" {
			return result, nil
		}
		input.ContinuationToken = out.ContinuationToken
	}
}

// BucketExists checks if a bucket exists
func (s *S3Storage) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket: %w", err)
	}
	return true, nil
}

// ListObjects lists every object in the bucket
func (s *S3Storage) ListObjects(ctx context.Context, bucketName string) ([]ObjectInfo, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	})

	objects := make([]ObjectInfo, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrBucketNotFound
			}
			return nil, fmt.Errorf("error listing objects: %w", err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, ObjectInfo{
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         strings.Trim(aws.ToString(obj.ETag), `"`),
				StorageClass: string(obj.StorageClass),
				Name:         aws.ToString(obj.Key),
			})
		}
	}
	return objects, nil
}

// PutObject uploads an object in a single attempt
func (s *S3Storage) PutObject(ctx context.Context, bucketName, objectName, contentType string, reader io.Reader, objectSize int64) error {
	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(objectName),
		Body:          reader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(objectSize),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	s.logger.Debug("Uploaded object",
		zap.String("bucket", bucketName),
		zap.String("key", objectName),
		zap.String("etag", aws.ToString(out.ETag)),
		zap.Int64("size", objectSize),
	)
	return nil
}

// PresignedGetURL returns a time-limited download URL for an object
func (s *S3Storage) PresignedGetURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectName),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}
	return req.URL, nil
}
