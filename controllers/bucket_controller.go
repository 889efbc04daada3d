package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"b2gateway/models"
	"b2gateway/services/files"
)

// BucketController handles bucket-related API endpoints
type BucketController struct {
	files  *files.Service
	logger *zap.Logger
}

// NewBucketController creates a new bucket controller
func NewBucketController(filesService *files.Service, logger *zap.Logger) *BucketController {
	return &BucketController{
		files:  filesService,
		logger: logger,
	}
}

// ListBuckets lists all buckets
func (c *BucketController) ListBuckets(ctx *gin.Context) {
	buckets, err := c.files.ListBuckets(ctx.Request.Context())
	if err != nil {
		respond(ctx, failure(ctx, c.logger, err, "An error occurred while retrieving buckets."))
		return
	}

	respond(ctx, models.Success(http.StatusOK, "Buckets has been successfully retrieved.", buckets))
}

// ListObjects retrieves files and folders (objects) within a bucket
func (c *BucketController) ListObjects(ctx *gin.Context) {
	objects, err := c.files.ListObjects(ctx.Request.Context(), ctx.Param("bucketName"))
	if err != nil {
		respond(ctx, failure(ctx, c.logger, err, "An error occurred while retrieving bucket contents."))
		return
	}

	respond(ctx, models.Success(http.StatusOK, "Bucket contents has been successfully retrieved.", objects))
}
