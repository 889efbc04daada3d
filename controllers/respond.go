package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"b2gateway/middleware"
	"b2gateway/models"
	"b2gateway/services/files"
)

// Client error messages
const (
	msgInvalidBucket = "Bucket name is invalid."
	msgFileNotFound  = "File does not exist."
	msgFileExists    = "File already exists."
	msgFileRequired  = "File is required."
	msgFileTooLarge  = "File is too large."
)

func respond(ctx *gin.Context, resp models.Response) {
	ctx.JSON(resp.StatusCode, resp.Body)
}

// failure maps service errors to client errors. Anything else is logged and
// reported as a 500 with serverMessage, without the cause.
func failure(ctx *gin.Context, logger *zap.Logger, err error, serverMessage string) models.Response {
	var conflict *files.KeyConflictError
	switch {
	case errors.Is(err, files.ErrInvalidBucket):
		return models.Failure(http.StatusBadRequest, msgInvalidBucket, nil)
	case errors.Is(err, files.ErrFileNotFound):
		return models.Failure(http.StatusBadRequest, msgFileNotFound, nil)
	case errors.As(err, &conflict):
		return models.Failure(http.StatusBadRequest, msgFileExists, models.KeyConflict{Key: conflict.Key})
	}

	logger.Error(serverMessage,
		zap.String("request_id", middleware.GetRequestID(ctx)),
		zap.String("path", ctx.Request.URL.Path),
		zap.Error(err),
	)
	_ = ctx.Error(err)
	return models.Failure(http.StatusInternalServerError, serverMessage, nil)
}
