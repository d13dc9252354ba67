package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/roleplayhq/roleplay-backend/internal/errors"
	"github.com/roleplayhq/roleplay-backend/internal/middleware"
	"github.com/roleplayhq/roleplay-backend/internal/storage"
)

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type AvatarUploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// GenerateAvatarUploadURL hands out a presigned URL for uploading an avatar
// image. The client PUTs the file to the URL, then saves the file URL via the
// profile update endpoint.
// POST /api/v1/upload/avatar-url
func (ctrl *UploadController) GenerateAvatarUploadURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AvatarUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid avatar upload URL request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid request data")
		return
	}

	allowedTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
	}
	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedTypes); err != nil {
		log.Warn("Invalid avatar content type", map[string]interface{}{
			"content_type": req.ContentType,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "only image files are allowed (JPEG, PNG, GIF, WEBP)")
		return
	}

	response, err := ctrl.storage.GenerateAvatarUploadURL(req.Filename, req.ContentType)
	if err != nil {
		log.Error("Failed to generate avatar upload URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
		})
		apperrors.InternalError(c, "failed to generate upload URL")
		return
	}

	log.Info("Avatar upload URL generated", map[string]interface{}{
		"key": response.Key,
	})

	c.JSON(http.StatusOK, gin.H{
		"upload_url": response.UploadURL,
		"file_url":   response.FileURL,
		"key":        response.Key,
	})
}
