package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"b2gateway/middleware"
	"b2gateway/services/files"
	"b2gateway/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(t *testing.T, rateLimit int) *gin.Engine {
	t.Helper()
	mem := storage.NewMemoryStorage()
	mem.CreateBucket("docs")

	svc := files.NewService(mem, nil)
	t.Cleanup(svc.Close)

	return New(Options{
		Files:              svc,
		Logger:             zap.NewNop(),
		Registry:           prometheus.NewRegistry(),
		CorsOrigin:         "*",
		MaxUploadBytes:     1 << 20,
		RateLimitPerMinute: rateLimit,
		Version:            "test",
	})
}

func put(t *testing.T, r *gin.Engine, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "a.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/buckets/docs/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(newTestEngine(t, 0), "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "healthy", body.Data["status"])
	assert.Equal(t, "test", body.Data["version"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRoutesEndToEnd(t *testing.T) {
	r := newTestEngine(t, 0)

	assert.Equal(t, http.StatusOK, get(r, "/buckets").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/buckets/photos").Code)

	assert.Equal(t, http.StatusOK, put(t, r, "hello").Code)
	assert.Equal(t, http.StatusBadRequest, put(t, r, "hello").Code)

	w := get(r, "/buckets/docs/file?objectName=5d41402abc4b2a76b9719d911017c592/a.txt")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/buckets/docs/file?objectName=missing.txt")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"File does not exist."}`, w.Body.String())
}

func TestUploadsAreRateLimited(t *testing.T) {
	r := newTestEngine(t, 1)

	assert.Equal(t, http.StatusOK, put(t, r, "one").Code)
	assert.Equal(t, http.StatusTooManyRequests, put(t, r, "two").Code)
	assert.Equal(t, http.StatusOK, get(r, "/buckets").Code, "reads are not limited")
	assert.Equal(t, http.StatusOK, get(r, "/buckets").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestEngine(t, 0)
	get(r, "/buckets")

	w := get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `b2gateway_http_requests_total{method="GET",route="/buckets",status="200"} 1`), w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	r := newTestEngine(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/buckets/docs/file", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
