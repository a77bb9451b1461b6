package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"nivesh-ai-backend/models"
	"nivesh-ai-backend/repository"

	"github.com/google/uuid"
)

var (
	ErrStartupNotFound   = errors.New("startup not found")
	ErrJobCreationFailed = errors.New("failed to create analysis job")
	ErrJobNotFound       = errors.New("analysis job not found")
)

// CreateAnalysisJobRequest asks for a re-analysis of a stored startup
type CreateAnalysisJobRequest struct {
	StartupID string
	Query     string // Defaults to the investor question
}

// CreateAnalysisJobResult represents the result of creating an analysis job
type CreateAnalysisJobResult struct {
	JobID uuid.UUID `json:"job_id"`
}

// CreateAnalysisJob creates a pending job and returns immediately. The caller
// runs ProcessAnalysisJob in the background.
func (s *StartupService) CreateAnalysisJob(ctx context.Context, req CreateAnalysisJobRequest) (*CreateAnalysisJobResult, error) {
	if s.jobRepo == nil {
		return nil, errors.New("analysis job store not set")
	}

	var record models.StartupRecord
	if !s.load(ctx, repository.KindStartups, req.StartupID, &record) {
		return nil, ErrStartupNotFound
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = InvestorQuery(record.Metadata.StartupName)
	}

	job := &models.AnalysisJob{
		ID:        uuid.New(),
		StartupID: req.StartupID,
		Query:     query,
		Status:    models.JobStatusPending,
		Steps:     models.NewJobSteps(),
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		log.Printf("Warning: [ANALYZE] Failed to create job for %s: %v", req.StartupID, err)
		return nil, ErrJobCreationFailed
	}

	return &CreateAnalysisJobResult{JobID: job.ID}, nil
}

// ProcessAnalysisJob performs the analysis of a pending job. Step progress is
// written to the job store as each phase runs.
func (s *StartupService) ProcessAnalysisJob(ctx context.Context, jobID uuid.UUID) error {
	if s.jobRepo == nil {
		return errors.New("analysis job store not set")
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load analysis job: %w", err)
	}

	var record models.StartupRecord
	if !s.load(ctx, repository.KindStartups, job.StartupID, &record) {
		s.markJobFailed(ctx, jobID, "startup not found: "+job.StartupID)
		return ErrStartupNotFound
	}

	if err := s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusInProgress); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	var founder *models.FounderVerificationResult
	if fv, err := s.GetFounderVerification(ctx, job.StartupID); err == nil {
		founder = fv
	}

	result, err := s.analysis.Analyze(ctx, AnalyzeRequest{
		StartupID: job.StartupID,
		Query:     job.Query,
		Metadata:  record.Metadata,
		Founder:   founder,
		Progress: func(step, status string) {
			if err := s.updateStepStatus(ctx, jobID, step, status); err != nil {
				log.Printf("Warning: [ANALYZE] Failed to update step %q of job %s: %v", step, jobID, err)
			}
		},
	})
	if err != nil {
		s.markJobFailed(ctx, jobID, err.Error())
		return err
	}

	s.save(ctx, repository.KindAnalysis, job.StartupID, result)

	if err := s.jobRepo.Complete(ctx, jobID, result); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return nil
}

// GetJob returns a job with its current progress
func (s *StartupService) GetJob(ctx context.Context, jobID uuid.UUID) (*models.AnalysisJob, error) {
	if s.jobRepo == nil {
		return nil, errors.New("analysis job store not set")
	}
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// updateStepStatus updates the status of a specific step in the analysis job
func (s *StartupService) updateStepStatus(ctx context.Context, jobID uuid.UUID, stepName, status string) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	steps := job.Steps
	var currentStep string
	if job.CurrentStep != nil {
		currentStep = *job.CurrentStep
	}

	for i := range steps {
		if steps[i].Name == stepName {
			steps[i].Status = status
			if status == "in_progress" {
				currentStep = stepName
			}
			break
		}
	}

	return s.jobRepo.UpdateProgress(ctx, jobID, currentStep, steps)
}

// markJobFailed marks a job as failed with an error message
func (s *StartupService) markJobFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) {
	if err := s.jobRepo.Fail(ctx, jobID, errorMessage); err != nil {
		log.Printf("Warning: [ANALYZE] Failed to mark job %s failed: %v", jobID, err)
	}
}
