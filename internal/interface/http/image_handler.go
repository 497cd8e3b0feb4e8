package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/easypayhq/easypay/internal/application"
	"github.com/easypayhq/easypay/pkg/response"
	"github.com/easypayhq/easypay/pkg/validation"
)

type ImageHandler struct {
	Svc    *application.ImageService
	Logger *logrus.Logger
}

func NewImageHandler(svc *application.ImageService, logger *logrus.Logger) *ImageHandler {
	return &ImageHandler{Svc: svc, Logger: logger}
}

// maxImageSize caps multipart uploads at 10 MiB.
const maxImageSize = 10 << 20

// Upload stores one product image from a multipart form field named "image".
func (h *ImageHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing image file", nil)
		return
	}
	if fileHeader.Size > maxImageSize {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "image too large", nil)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable image file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.Upload(c.Request.Context(), f, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "image upload failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"image_url": url}, "image uploaded")
}

// List returns the public URLs of every stored image.
func (h *ImageHandler) List(c *gin.Context) {
	urls, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("image list failed")
		response.Error[any](c, http.StatusInternalServerError, "image list failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"photo_urls": urls}, "images")
}

type deleteImageRequest struct {
	URL string `json:"url" binding:"required,url"`
}

func (h *ImageHandler) Delete(c *gin.Context) {
	var req deleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), req.URL); err != nil {
		h.Logger.WithError(err).Error("image delete failed")
		response.Error[any](c, http.StatusInternalServerError, "image delete failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, "image deleted")
}
