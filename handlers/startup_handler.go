package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"nivesh-ai-backend/models"
	"nivesh-ai-backend/repository"
	"nivesh-ai-backend/service"

	"github.com/gin-gonic/gin"
)

const defaultMaxFileSize = 20 * 1024 * 1024 // 20MB

// StartupHandler handles HTTP requests for startup analysis
type StartupHandler struct {
	startups    *service.StartupService
	maxFileSize int64
}

// NewStartupHandler creates a new startup handler. maxFileSize <= 0 means 20MB.
func NewStartupHandler(startups *service.StartupService, maxFileSize int64) *StartupHandler {
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}
	return &StartupHandler{
		startups:    startups,
		maxFileSize: maxFileSize,
	}
}

// Analyze handles POST /api/analyze
func (h *StartupHandler) Analyze(c *gin.Context) {
	var metadata models.StartupMetadata
	if err := c.ShouldBind(&metadata); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var files []service.UploadedFile
	for _, field := range models.UploadFields {
		fileHeader, err := c.FormFile(field)
		if err != nil {
			continue
		}

		if fileHeader.Size > h.maxFileSize {
			respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE",
				fmt.Sprintf("File %s exceeds maximum of %d bytes", fileHeader.Filename, h.maxFileSize))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "FILE_READ_ERROR", err.Error())
			return
		}

		files = append(files, service.UploadedFile{
			Field:    field,
			Filename: fileHeader.Filename,
			MimeType: fileHeader.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	result, err := h.startups.Run(c.Request.Context(), service.RunRequest{
		Metadata: metadata,
		Role:     c.PostForm("role"),
		Files:    files,
	})
	if err != nil {
		if errors.Is(err, service.ErrNoFiles) {
			respondError(c, http.StatusBadRequest, "NO_FILES", "No files uploaded")
			return
		}
		log.Printf("Analysis failed: %v", err)
		respondError(c, http.StatusInternalServerError, "ANALYSIS_FAILED", err.Error())
		return
	}

	respond(c, http.StatusOK, result)
}

// GetStartup handles GET /api/startup/:startupId
func (h *StartupHandler) GetStartup(c *gin.Context) {
	profile, err := h.startups.GetStartup(c.Request.Context(), c.Param("startupId"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", err.Error())
		return
	}
	respond(c, http.StatusOK, profile)
}

// GetFounderVerification handles GET /api/founder-verification/:startupId
func (h *StartupHandler) GetFounderVerification(c *gin.Context) {
	fv, err := h.startups.GetFounderVerification(c.Request.Context(), c.Param("startupId"))
	if err != nil {
		h.signalError(c, err, "Founder verification not found")
		return
	}
	respond(c, http.StatusOK, fv)
}

// GetTeamInfo handles GET /api/team-info/:startupId
func (h *StartupHandler) GetTeamInfo(c *gin.Context) {
	team, err := h.startups.GetTeamInfo(c.Request.Context(), c.Param("startupId"))
	if err != nil {
		h.signalError(c, err, "Team info not found")
		return
	}
	respond(c, http.StatusOK, team)
}

// GetProductTech handles GET /api/startup/:startupId/product-tech
func (h *StartupHandler) GetProductTech(c *gin.Context) {
	pt, err := h.startups.GetProductTech(c.Request.Context(), c.Param("startupId"))
	if err != nil {
		h.signalError(c, err, "Product/tech signals not found")
		return
	}
	respond(c, http.StatusOK, pt)
}

// RefreshProductTechRequest represents the request body for re-extracting
// product/tech signals
type RefreshProductTechRequest struct {
	DeckText      string                `json:"deckText" binding:"required"`
	SectionChunks []models.SectionChunk `json:"sectionChunks"`
}

// RefreshProductTech handles POST /api/startup/:startupId/product-tech
func (h *StartupHandler) RefreshProductTech(c *gin.Context) {
	var req RefreshProductTechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	pt, err := h.startups.RefreshProductTech(c.Request.Context(), c.Param("startupId"), req.DeckText, req.SectionChunks)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "EXTRACTION_FAILED", err.Error())
		return
	}
	respond(c, http.StatusOK, pt)
}

// IngestDocumentsRequest represents structured content to add to a
// startup's evidence
type IngestDocumentsRequest struct {
	Documents []interface{}          `json:"documents" binding:"required,min=1"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// IngestDocuments handles POST /api/startup/:startupId/documents
func (h *StartupHandler) IngestDocuments(c *gin.Context) {
	var req IngestDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.startups.IngestContent(c.Request.Context(), c.Param("startupId"), req.Documents, req.Metadata)
	if err != nil {
		if errors.Is(err, service.ErrStartupIDRequired) {
			respondError(c, http.StatusBadRequest, "INVALID_STARTUP_ID", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "INGESTION_FAILED", err.Error())
		return
	}

	respond(c, http.StatusCreated, gin.H{
		"chunks":  result.Chunks,
		"stored":  result.Stored,
		"dropped": result.Dropped,
	})
}

// QueryRequest represents the request body of a free-text question
type QueryRequest struct {
	StartupID      string                  `json:"startupId"`
	StartupContext *models.StartupMetadata `json:"startupContext"`
	UserQuery      string                  `json:"userQuery"`
}

// Query handles POST /api/rag/query
func (h *StartupHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if req.StartupContext == nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "startupContext is required")
		return
	}

	result, err := h.startups.Query(c.Request.Context(), service.QueryRequest{
		StartupID: req.StartupID,
		Metadata:  *req.StartupContext,
		UserQuery: req.UserQuery,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "userQuery is required")
			return
		}
		log.Printf("Query failed: %v", err)
		respondError(c, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	respond(c, http.StatusOK, result)
}

func (h *StartupHandler) signalError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", notFound)
		return
	}
	respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", err.Error())
}
