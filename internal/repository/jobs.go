package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/ocr-jobs/constants"
)

// Job is one OCR processing job. Created PENDING by the API layer,
// transitioned to PROCESSING and then exactly one terminal state by the
// worker; terminal states are never left.
type Job struct {
	ID            uuid.UUID
	Status        constants.JobStatus
	InputFilename string
	InputPath     string
	ResultPath    string
	ResultPayload json.RawMessage
	LLMOptions    json.RawMessage
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// JobRepository persists jobs and their status transitions.
type JobRepository interface {
	Create(ctx context.Context, inputFilename, inputPath string, llmOptions json.RawMessage) (*Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	ListPending(ctx context.Context, limit int) ([]*Job, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID, resultPath string, payload json.RawMessage) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
}

// JobLogRepository appends structured log entries to a job's audit trail.
type JobLogRepository interface {
	Append(ctx context.Context, jobID uuid.UUID, level constants.LogLevel, message string, extra map[string]any) error
}
