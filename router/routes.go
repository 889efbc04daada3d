package router

import (
	"b2gateway/controllers"
	"b2gateway/middleware"
	"b2gateway/services/files"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options carries everything needed to build the HTTP engine
type Options struct {
	Files              *files.Service
	Logger             *zap.Logger
	Registry           *prometheus.Registry
	CorsOrigin         string
	MaxUploadBytes     int64
	RateLimitPerMinute int
	Version            string
}

// New creates the gin engine with middleware and all routes registered
func New(opts Options) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.APILogger(opts.Logger.Named("http")))
	r.Use(middleware.NewMetrics(opts.Registry).Middleware())

	corsConfig := cors.DefaultConfig()
	if opts.CorsOrigin == "" || opts.CorsOrigin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{opts.CorsOrigin}
	}
	corsConfig.AllowMethods = []string{"GET", "PUT", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	// Multipart parts above this are spooled to disk
	r.MaxMultipartMemory = 32 << 20

	RegisterRoutes(r,
		controllers.NewHealthController(opts.Version),
		controllers.NewBucketController(opts.Files, opts.Logger.Named("buckets")),
		controllers.NewFileController(opts.Files, opts.MaxUploadBytes, opts.Logger.Named("files")),
		middleware.NewRateLimiter(opts.RateLimitPerMinute),
	)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))

	return r
}

// RegisterRoutes configures all the API routes
func RegisterRoutes(r *gin.Engine, healthController *controllers.HealthController,
	bucketController *controllers.BucketController, fileController *controllers.FileController,
	uploadLimiter *middleware.RateLimiter) {

	r.GET("/health", healthController.HealthCheck)

	buckets := r.Group("/buckets")
	{
		buckets.GET("", bucketController.ListBuckets)
		buckets.GET("/:bucketName", bucketController.ListObjects)
		buckets.GET("/:bucketName/file", fileController.GetFile)
		// Uploads are the only write path, so only they are rate limited
		buckets.PUT("/:bucketName/file", uploadLimiter.Limit(), fileController.PutFile)
	}
}
