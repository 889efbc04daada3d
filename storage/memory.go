package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"
)

// MemoryStorage is an in-process ObjectStorage for local development and
// tests. Presigned URLs use the memory:// scheme and cannot be fetched.
type MemoryStorage struct {
	mu      sync.RWMutex
	buckets map[string]*memoryBucket
	now     func() time.Time
}

type memoryBucket struct {
	createdAt time.Time
	objects   map[string]memoryObject
}

type memoryObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
	etag         string
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		buckets: make(map[string]*memoryBucket),
		now:     time.Now,
	}
}

// CreateBucket adds an empty bucket. It is a no-op if the bucket exists.
func (s *MemoryStorage) CreateBucket(bucketName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buckets[bucketName]; ok {
		return
	}
	s.buckets[bucketName] = &memoryBucket{
		createdAt: s.now(),
		objects:   make(map[string]memoryObject),
	}
}

// ListBuckets returns buckets ordered by name
func (s *MemoryStorage) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]BucketInfo, 0, len(s.buckets))
	for name, b := range s.buckets {
		result = append(result, BucketInfo{Name: name, CreatedAt: b.createdAt})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// BucketExists checks if a bucket exists
func (s *MemoryStorage) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.buckets[bucketName]
	return ok, nil
}

// ListObjects returns the bucket's objects in key order
func (s *MemoryStorage) ListObjects(ctx context.Context, bucketName string) ([]ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buckets[bucketName]
	if !ok {
		return nil, ErrBucketNotFound
	}

	objects := make([]ObjectInfo, 0, len(b.objects))
	for key, obj := range b.objects {
		objects = append(objects, ObjectInfo{
			Size:         int64(len(obj.data)),
			LastModified: obj.lastModified,
			ETag:         obj.etag,
			StorageClass: "STANDARD",
			Name:         key,
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}

// PutObject stores the full content of reader under objectName
func (s *MemoryStorage) PutObject(ctx context.Context, bucketName, objectName, contentType string, reader io.Reader, objectSize int64) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}
	if objectSize >= 0 && int64(len(data)) != objectSize {
		return fmt.Errorf("object size mismatch: expected %d bytes, got %d", objectSize, len(data))
	}

	sum := sha1.Sum(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[bucketName]
	if !ok {
		return ErrBucketNotFound
	}
	b.objects[objectName] = memoryObject{
		data:         data,
		contentType:  contentType,
		lastModified: s.now(),
		etag:         hex.EncodeToString(sum[:]),
	}
	return nil
}

// PresignedGetURL returns a memory:// URL carrying the expiry as a unix time
func (s *MemoryStorage) PresignedGetURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buckets[bucketName]
	if !ok {
		return "", ErrBucketNotFound
	}
	if _, ok := b.objects[objectName]; !ok {
		return "", fmt.Errorf("object %q not found", objectName)
	}

	u := url.URL{
		Scheme:   "memory",
		Host:     bucketName,
		Path:     "/" + objectName,
		RawQuery: url.Values{"expires": {strconv.FormatInt(s.now().Add(expiry).Unix(), 10)}}.Encode(),
	}
	return u.String(), nil
}

// Object returns a copy of the stored content and its content type
func (s *MemoryStorage) Object(bucketName, objectName string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buckets[bucketName]
	if !ok {
		return nil, "", false
	}
	obj, ok := b.objects[objectName]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), obj.data...), obj.contentType, true
}
