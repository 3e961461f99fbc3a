package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/internal/apperrors"
	"github.com/pageza/recipebook/backend/internal/service"
)

type ImageHandler struct {
	images service.ImageProvider
	logger *zap.Logger
}

func NewImageHandler(images service.ImageProvider, log *zap.Logger) *ImageHandler {
	return &ImageHandler{images: images, logger: log}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/images", h.Upload)
	router.GET("/images", h.Check)
}

// Upload proxies a multipart "file" field to the image provider
func (h *ImageHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	if h.images == nil {
		respondError(c, service.ErrImagesNotConfigured, service.ErrImagesNotConfigured.Message)
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err, "Failed to upload image")
		return
	}
	defer file.Close()

	img, err := h.images.Upload(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, service.ErrImagesNotConfigured) {
			respondError(c, err, service.ErrImagesNotConfigured.Message)
			return
		}
		respondError(c, err, "Failed to upload image")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"id":       img.ID,
		"filename": img.Filename,
		"url":      img.URL,
	})
}

// Check tests the provider credentials
func (h *ImageHandler) Check(c *gin.Context) {
	if h.images == nil {
		respondError(c, service.ErrImagesNotConfigured, service.ErrImagesNotConfigured.Message)
		return
	}

	count, err := h.images.Check(c.Request.Context())
	if err != nil {
		var apiErr *apperrors.APIError
		switch {
		case errors.As(err, &apiErr) && !apperrors.IsNetwork(err):
			respondError(c, err, apiErr.Message)
		default:
			respondError(c, err, "Failed to test "+h.images.Name()+" connection")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Successfully connected to " + h.images.Name(),
		"imagesCount": count,
	})
}
