package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AnalysisJobStatus represents the status of an analysis job
type AnalysisJobStatus string

const (
	JobStatusPending    AnalysisJobStatus = "pending"
	JobStatusInProgress AnalysisJobStatus = "in_progress"
	JobStatusCompleted  AnalysisJobStatus = "completed"
	JobStatusFailed     AnalysisJobStatus = "failed"
)

// Step names of a grounded analysis
const (
	StepRetrieve = "Retrieving Evidence"
	StepCompose  = "Composing Prompt"
	StepValidate = "Validating Response"
)

// JobStep represents a step in the analysis process
type JobStep struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // "pending", "in_progress", "completed", "failed"
	Description string `json:"description,omitempty"`
}

// JobSteps represents a list of job steps
type JobSteps []JobStep

// NewJobSteps returns the three analysis steps, all pending
func NewJobSteps() JobSteps {
	return JobSteps{
		{Name: StepRetrieve, Status: "pending", Description: "Embedding the query and searching stored chunks"},
		{Name: StepCompose, Status: "pending", Description: "Building the evidence-only prompt"},
		{Name: StepValidate, Status: "pending", Description: "Checking the oracle output against the result schema"},
	}
}

// Value implements driver.Valuer for JSONB
func (s JobSteps) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *JobSteps) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	}
	if len(raw) == 0 {
		*s = make(JobSteps, 0)
		return nil
	}
	return json.Unmarshal(raw, s)
}

// AnalysisJob represents an asynchronous re-analysis of a startup
type AnalysisJob struct {
	ID           uuid.UUID         `json:"id"`
	StartupID    string            `json:"startup_id"`
	Query        string            `json:"query"`
	Status       AnalysisJobStatus `json:"status"`
	CurrentStep  *string           `json:"current_step,omitempty"`
	Steps        JobSteps          `json:"steps"`
	Result       *AnalysisResult   `json:"result,omitempty"`
	ErrorMessage *string           `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}
