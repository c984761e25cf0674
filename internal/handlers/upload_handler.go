package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/hidaaya-golang/internal/storage"
)

// UploadFile handles POST /v1/admin/upload
// It stores a product image and returns its public URL.
func (h *Handlers) UploadFile(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if file.Size > storage.MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read upload"})
		return
	}
	defer src.Close()

	// 2. Save it
	publicURL, err := h.Files.Save(file.Filename, src)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only image files can be uploaded"})
			return
		}
		h.logger().Error("failed to save upload", zap.String("filename", file.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	// 3. Return the public URL
	c.JSON(http.StatusOK, gin.H{"url": publicURL})
}
