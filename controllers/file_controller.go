package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"b2gateway/models"
	"b2gateway/services/files"
)

// multipart framing allowance on top of the file size limit
const formOverhead = 1 << 20

// FileController handles single-file lookups and uploads
type FileController struct {
	files          *files.Service
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewFileController creates a new file controller
func NewFileController(filesService *files.Service, maxUploadBytes int64, logger *zap.Logger) *FileController {
	return &FileController{
		files:          filesService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// GetFile returns a one hour download URL for ?objectName= in the bucket
func (c *FileController) GetFile(ctx *gin.Context) {
	url, err := c.files.FileURL(ctx.Request.Context(), ctx.Param("bucketName"), ctx.Query("objectName"))
	if err != nil {
		respond(ctx, failure(ctx, c.logger, err, "An error occurred while retrieving file."))
		return
	}

	respond(ctx, models.Success(http.StatusOK, "File has been successfully retrieved.", models.FileURL{URL: url}))
}

// PutFile uploads the multipart "file" part, stored under the optional
// "key" form field or under "<md5>/<filename>"
func (c *FileController) PutFile(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadBytes+formOverhead)

	header, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond(ctx, models.Failure(http.StatusBadRequest, msgFileTooLarge, nil))
			return
		}
		respond(ctx, models.Failure(http.StatusBadRequest, msgFileRequired, nil))
		return
	}

	if header.Size > c.maxUploadBytes {
		respond(ctx, models.Failure(http.StatusBadRequest, msgFileTooLarge, nil))
		return
	}

	file, err := header.Open()
	if err != nil {
		respond(ctx, failure(ctx, c.logger, err, "An error occurred while uploading file."))
		return
	}
	defer file.Close()

	url, err := c.files.Upload(ctx.Request.Context(), files.UploadRequest{
		Bucket:   ctx.Param("bucketName"),
		Filename: header.Filename,
		Key:      ctx.PostForm("key"),
		Size:     header.Size,
		Body:     file,
	})
	if err != nil {
		respond(ctx, failure(ctx, c.logger, err, "An error occurred while uploading file."))
		return
	}

	respond(ctx, models.Success(http.StatusOK, "File has been successfully uploaded.", models.FileURL{URL: url}))
}
