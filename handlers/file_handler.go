package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"nivesh-ai-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileHandler serves stored uploads
type FileHandler struct {
	startups *service.StartupService
}

// NewFileHandler creates a new file handler
func NewFileHandler(startups *service.StartupService) *FileHandler {
	return &FileHandler{startups: startups}
}

// GetFile handles GET /api/files/:id
func (h *FileHandler) GetFile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid file ID format")
		return
	}

	file, reader, err := h.startups.GetFile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrFileNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "File not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "DOWNLOAD_FAILED", fmt.Sprintf("Failed to download file: %v", err))
		return
	}
	defer reader.Close()

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.DataFromReader(http.StatusOK, file.Size, mimeType, reader, nil)
}
