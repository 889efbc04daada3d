package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"b2gateway/services/files"
	"b2gateway/storage"
)

const helloKey = "5d41402abc4b2a76b9719d911017c592/a.txt"

func init() {
	gin.SetMode(gin.TestMode)
}

// brokenStorage fails every bucket listing
type brokenStorage struct {
	*storage.MemoryStorage
}

func (brokenStorage) ListBuckets(ctx context.Context) ([]storage.BucketInfo, error) {
	return nil, errors.New("connection refused: secret-host:443")
}

func newEngine(t *testing.T, store storage.ObjectStorage, maxUploadBytes int64) *gin.Engine {
	t.Helper()
	svc := files.NewService(store, nil)
	t.Cleanup(svc.Close)

	buckets := NewBucketController(svc, zap.NewNop())
	fileCtl := NewFileController(svc, maxUploadBytes, zap.NewNop())

	r := gin.New()
	r.GET("/buckets", buckets.ListBuckets)
	r.GET("/buckets/:bucketName", buckets.ListObjects)
	r.GET("/buckets/:bucketName/file", fileCtl.GetFile)
	r.PUT("/buckets/:bucketName/file", fileCtl.PutFile)
	return r
}

func memoryWith(buckets ...string) *storage.MemoryStorage {
	mem := storage.NewMemoryStorage()
	for _, b := range buckets {
		mem.CreateBucket(b)
	}
	return mem
}

func do(r *gin.Engine, req *http.Request) (int, map[string]interface{}) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w.Code, body
}

func uploadRequest(t *testing.T, bucket, filename, content, key string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	if key != "" {
		require.NoError(t, mw.WriteField("key", key))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/buckets/"+bucket+"/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestListBuckets(t *testing.T) {
	r := newEngine(t, memoryWith("photos"), 1<<20)

	code, body := do(r, httptest.NewRequest(http.MethodGet, "/buckets", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Buckets has been successfully retrieved.", body["message"])

	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	bucket := data[0].(map[string]interface{})
	assert.Equal(t, "photos", bucket["name"])
	assert.Contains(t, bucket, "created_at")
}

func TestListBucketsServerErrorHidesCause(t *testing.T) {
	r := newEngine(t, brokenStorage{memoryWith()}, 1<<20)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/buckets", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"An error occurred while retrieving buckets."}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "secret-host")
}

func TestListObjectsInvalidBucket(t *testing.T) {
	r := newEngine(t, memoryWith(), 1<<20)

	code, body := do(r, httptest.NewRequest(http.MethodGet, "/buckets/photos", nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]interface{}{
		"success": false,
		"message": "Bucket name is invalid.",
	}, body)
}

func TestListObjectsEmptyBucket(t *testing.T) {
	r := newEngine(t, memoryWith("photos"), 1<<20)

	code, body := do(r, httptest.NewRequest(http.MethodGet, "/buckets/photos", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Bucket contents has been successfully retrieved.", body["message"])
	assert.Equal(t, []interface{}{}, body["data"])
}

func TestUploadThenConflict(t *testing.T) {
	r := newEngine(t, memoryWith("docs"), 1<<20)

	code, body := do(r, uploadRequest(t, "docs", "a.txt", "hello", ""))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "File has been successfully uploaded.", body["message"])
	assert.NotContains(t, body, "errors")
	url := body["data"].(map[string]interface{})["url"].(string)
	assert.True(t, strings.HasPrefix(url, "memory://docs/"+helloKey), url)

	code, body = do(r, uploadRequest(t, "docs", "a.txt", "hello", ""))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]interface{}{
		"success": false,
		"message": "File already exists.",
		"errors":  map[string]interface{}{"key": helloKey},
	}, body)

	code, body = do(r, httptest.NewRequest(http.MethodGet, "/buckets/docs", nil))
	assert.Equal(t, http.StatusOK, code)
	objects := body["data"].([]interface{})
	require.Len(t, objects, 1)
	assert.Equal(t, helloKey, objects[0].(map[string]interface{})["key"])
}

func TestUploadWithCallerKey(t *testing.T) {
	mem := memoryWith("docs")
	r := newEngine(t, mem, 1<<20)

	code, _ := do(r, uploadRequest(t, "docs", "a.txt", "hello", "custom/name.bin"))
	assert.Equal(t, http.StatusOK, code)

	_, contentType, ok := mem.Object("docs", "custom/name.bin")
	require.True(t, ok)
	assert.Equal(t, "application/octet-stream", contentType)

	code, _ = do(r, uploadRequest(t, "docs", "other.txt", "different", "   "))
	assert.Equal(t, http.StatusOK, code, "blank keys fall back to content addressing")
	_, _, ok = mem.Object("docs", "29e4b66fa8076de4d7a26c727b8dbdfa/other.txt")
	assert.True(t, ok)
}

func TestUploadClientErrors(t *testing.T) {
	r := newEngine(t, memoryWith("docs"), 4)

	code, body := do(r, uploadRequest(t, "photos", "a.txt", "hi", ""))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Bucket name is invalid.", body["message"])

	code, body = do(r, uploadRequest(t, "docs", "", "", "some/key"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "File is required.", body["message"])

	code, body = do(r, uploadRequest(t, "docs", "a.txt", "hello", ""))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "File is too large.", body["message"])
	assert.NotContains(t, body, "data")
}

func TestGetFile(t *testing.T) {
	r := newEngine(t, memoryWith("docs"), 1<<20)

	code, _ := do(r, uploadRequest(t, "docs", "a.txt", "hello", ""))
	require.Equal(t, http.StatusOK, code)

	code, body := do(r, httptest.NewRequest(http.MethodGet, "/buckets/docs/file?objectName="+helloKey, nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "File has been successfully retrieved.", body["message"])
	url := body["data"].(map[string]interface{})["url"].(string)
	assert.True(t, strings.HasPrefix(url, "memory://docs/"+helloKey+"?expires="), url)
}

func TestGetFileMissing(t *testing.T) {
	r := newEngine(t, memoryWith("docs"), 1<<20)

	code, body := do(r, httptest.NewRequest(http.MethodGet, "/buckets/docs/file?objectName=missing.txt", nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]interface{}{
		"success": false,
		"message": "File does not exist.",
	}, body)

	code, body = do(r, httptest.NewRequest(http.MethodGet, "/buckets/photos/file?objectName=missing.txt", nil))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Bucket name is invalid.", body["message"])
}
