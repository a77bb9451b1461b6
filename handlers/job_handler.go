package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"nivesh-ai-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// JobHandler handles HTTP requests for asynchronous analysis jobs
type JobHandler struct {
	startups *service.StartupService

	// process runs a created job; tests replace it to run synchronously
	process func(jobID uuid.UUID)
}

// NewJobHandler creates a new job handler
func NewJobHandler(startups *service.StartupService) *JobHandler {
	h := &JobHandler{startups: startups}
	h.process = func(jobID uuid.UUID) {
		// Use background context (not request context) to avoid cancellation
		go func() {
			bgCtx := context.Background()
			if err := h.startups.ProcessAnalysisJob(bgCtx, jobID); err != nil {
				// Error is stored in job.ErrorMessage, clients poll for it
				log.Printf("Analysis job %s failed: %v", jobID, err)
			}
		}()
	}
	return h
}

// CreateAnalysisJob handles POST /api/startup/:startupId/analysis-jobs
func (h *JobHandler) CreateAnalysisJob(c *gin.Context) {
	var reqBody struct {
		Query string `json:"query"`
	}
	// body is optional
	_ = c.ShouldBindJSON(&reqBody)

	result, err := h.startups.CreateAnalysisJob(c.Request.Context(), service.CreateAnalysisJobRequest{
		StartupID: c.Param("startupId"),
		Query:     reqBody.Query,
	})
	if err != nil {
		if errors.Is(err, service.ErrStartupNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Startup not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "JOB_CREATION_FAILED", err.Error())
		return
	}

	h.process(result.JobID)

	respond(c, http.StatusAccepted, gin.H{
		"job_id":  result.JobID,
		"status":  "pending",
		"message": "Analysis job created. Poll /api/jobs/:id for updates.",
	})
}

// GetJobStatus handles GET /api/jobs/:id
func (h *JobHandler) GetJobStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid job ID format")
		return
	}

	job, err := h.startups.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Analysis job not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "RETRIEVAL_FAILED", err.Error())
		return
	}

	respond(c, http.StatusOK, job)
}
