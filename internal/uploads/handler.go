// Package uploads issues pre-signed S3 URLs for optional attendee profile
// images. The registration form policy (700KB max, jpeg/png/webp only) is
// enforced here, when the URL is issued.
package uploads

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swiftcheck/backend/pkg/response"
	"github.com/swiftcheck/backend/pkg/storage"
)

// UploadURLRequest is the body for POST /uploads/profile-image.
type UploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

// Handler issues profile image upload URLs.
type Handler struct {
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates an uploads handler. s3 may be nil when S3 is not
// configured; requests then fail with 503-style messaging.
func NewHandler(s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{s3: s3, logger: logger}
}

// GenerateUploadURL handles POST /uploads/profile-image. Returns a pre-signed
// PUT URL and the final object URI to submit as profile_image_uri at
// registration.
func (h *Handler) GenerateUploadURL(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "profile image storage is not configured")
		return
	}
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Size > storage.MaxProfileImageSize {
		response.BadRequest(c, "image exceeds the 700KB limit")
		return
	}
	if !storage.ValidateImageType(req.ContentType, req.Filename) {
		response.BadRequest(c, "only jpeg, png and webp images are supported")
		return
	}

	ext := strings.ToLower(path.Ext(req.Filename))
	if ext == "" {
		ext = storage.AllowedImageTypes[strings.ToLower(req.ContentType)]
	}
	key := storage.ProfileImageKey(uuid.New().String(), ext)

	uploadURL, objectURI, err := h.s3.GenerateUploadURL(c.Request.Context(), key, req.ContentType)
	if err != nil {
		h.logger.Error("presign upload failed", zap.Error(err))
		response.Internal(c, "failed to create upload url")
		return
	}
	response.OK(c, gin.H{
		"upload_url":        uploadURL,
		"profile_image_uri": objectURI,
	})
}
