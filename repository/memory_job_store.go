package repository

import (
	"context"
	"sync"
	"time"

	"nivesh-ai-backend/models"

	"github.com/google/uuid"
)

// MemoryJobStore keeps jobs in process memory. Jobs are lost on restart.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*models.AnalysisJob
	now  func() time.Time
}

// NewMemoryJobStore creates an empty job store
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		jobs: make(map[uuid.UUID]*models.AnalysisJob),
		now:  time.Now,
	}
}

// Create assigns an id and timestamps and stores a copy of job
func (s *MemoryJobStore) Create(ctx context.Context, job *models.AnalysisJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	now := s.now()
	job.CreatedAt = now
	job.UpdatedAt = now
	s.jobs[job.ID] = copyJob(job)
	return nil
}

// GetByID returns a copy of the job
func (s *MemoryJobStore) GetByID(ctx context.Context, id uuid.UUID) (*models.AnalysisJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyJob(job), nil
}

func (s *MemoryJobStore) update(id uuid.UUID, f func(job *models.AnalysisJob)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	f(job)
	job.UpdatedAt = s.now()
	return nil
}

// UpdateStatus sets the job status
func (s *MemoryJobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.AnalysisJobStatus) error {
	return s.update(id, func(job *models.AnalysisJob) {
		job.Status = status
	})
}

// UpdateProgress sets the current step and step list
func (s *MemoryJobStore) UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.JobSteps) error {
	return s.update(id, func(job *models.AnalysisJob) {
		job.CurrentStep = &currentStep
		job.Steps = append(models.JobSteps(nil), steps...)
	})
}

// Complete stores the result and marks the job completed
func (s *MemoryJobStore) Complete(ctx context.Context, id uuid.UUID, result *models.AnalysisResult) error {
	return s.update(id, func(job *models.AnalysisJob) {
		now := s.now()
		job.Status = models.JobStatusCompleted
		job.Result = result
		job.CompletedAt = &now
	})
}

// Fail marks the job failed with a message
func (s *MemoryJobStore) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	return s.update(id, func(job *models.AnalysisJob) {
		job.Status = models.JobStatusFailed
		job.ErrorMessage = &errorMessage
	})
}

func copyJob(job *models.AnalysisJob) *models.AnalysisJob {
	c := *job
	c.Steps = append(models.JobSteps(nil), job.Steps...)
	if c.Steps == nil {
		c.Steps = make(models.JobSteps, 0)
	}
	return &c
}

var _ JobStore = (*MemoryJobStore)(nil)
