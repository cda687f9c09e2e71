package worker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/ocr-jobs/constants"
	"github.com/joseph-ayodele/ocr-jobs/internal/common"
	"github.com/joseph-ayodele/ocr-jobs/internal/enrich"
	"github.com/joseph-ayodele/ocr-jobs/internal/pipeline"
	"github.com/joseph-ayodele/ocr-jobs/internal/repository"
)

// Task processes one job at a time: it owns the status transitions and the
// job audit log. Every invocation leaves the job in a terminal state unless
// the job could not even be loaded.
type Task struct {
	jobs     repository.JobRepository
	logs     repository.JobLogRepository
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

func NewTask(jobs repository.JobRepository, logs repository.JobLogRepository, p *pipeline.Pipeline, logger *slog.Logger) *Task {
	if logger == nil {
		logger = slog.Default()
	}
	return &Task{jobs: jobs, logs: logs, pipeline: p, logger: logger}
}

// ProcessJob runs the pipeline for one job id and records the outcome.
// Malformed ids and load failures are logged and dropped; a later poll cycle
// retries jobs that stayed PENDING.
func (t *Task) ProcessJob(ctx context.Context, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		t.logger.Error("worker.invalid_job_id", "job_id", rawID, "error", err)
		return
	}

	job, err := t.jobs.GetByID(ctx, id)
	if err != nil {
		t.logger.Error("worker.load_failed", "job_id", id, "error", err)
		return
	}
	if job.Status.Terminal() {
		t.logger.Warn("worker.job_already_terminal", "job_id", id, "status", job.Status)
		return
	}

	if err := t.jobs.MarkProcessing(ctx, id); err != nil {
		t.logger.Error("worker.mark_processing_failed", "job_id", id, "error", err)
		return
	}
	t.appendLog(ctx, id, constants.LogLevelInfo, "Job picked up by worker.", nil)

	opts, err := enrich.ParseOptions(job.LLMOptions)
	if err != nil {
		t.fail(ctx, id, "invalid llm options: "+err.Error(), map[string]any{"error": err.Error()})
		return
	}

	result, err := t.pipeline.Run(ctx, id.String(), job.InputPath, opts)
	if err != nil {
		t.recordFailure(ctx, id, err)
		return
	}

	encoded, err := result.Payload.Encode()
	if err != nil {
		t.fail(ctx, id, "encode result payload: "+err.Error(), nil)
		return
	}
	if err := t.jobs.MarkCompleted(ctx, id, result.ResultPath, encoded); err != nil {
		t.logger.Error("worker.mark_completed_failed", "job_id", id, "error", err)
		// The poller only re-lists PENDING, so a job stuck in PROCESSING
		// would never recover; fail it instead.
		t.fail(ctx, id, "persist completion: "+err.Error(), map[string]any{
			"result_path": result.ResultPath,
		})
		return
	}

	t.appendLog(ctx, id, constants.LogLevelInfo, "OCR pipeline completed successfully.", map[string]any{
		"result_path": result.ResultPath,
		"pages":       len(result.Pages),
	})
	if result.Payload.LLM.Enabled {
		t.appendLog(ctx, id, constants.LogLevelInfo, "LLM post-processing applied.", map[string]any{
			"llm": map[string]any{
				"providers":      result.Payload.LLM.Providers,
				"model":          result.Payload.LLM.Model,
				"provider_usage": result.Payload.LLM.ProviderUsage,
				"artifacts":      result.Payload.LLM.Artifacts,
			},
		})
	}
	if len(result.Payload.LLM.FallbackAttempts) > 0 {
		t.appendLog(ctx, id, constants.LogLevelWarning, "LLM fallback attempts recorded.", map[string]any{
			"attempts": result.Payload.LLM.FallbackAttempts,
		})
	}
	t.logger.Info("worker.job_completed", "job_id", id, "result_path", result.ResultPath)
}

// recordFailure classifies the pipeline error and marks the job FAILED with a
// matching audit entry.
func (t *Task) recordFailure(ctx context.Context, id uuid.UUID, err error) {
	var enrichErr *pipeline.EnrichmentError
	var depErr *common.DependencyError
	switch {
	case errors.As(err, &enrichErr):
		t.fail(ctx, id, err.Error(), map[string]any{
			"page":     enrichErr.Page,
			"attempts": enrichErr.Attempts,
		})
	case errors.As(err, &depErr):
		t.fail(ctx, id, "Missing OCR dependency: "+err.Error(), map[string]any{
			"component": depErr.Component,
		})
	default:
		t.fail(ctx, id, err.Error(), nil)
	}
}

func (t *Task) fail(ctx context.Context, id uuid.UUID, message string, extra map[string]any) {
	if err := t.jobs.MarkFailed(ctx, id, message); err != nil {
		t.logger.Error("worker.mark_failed_failed", "job_id", id, "error", err)
	}
	t.appendLog(ctx, id, constants.LogLevelError, "Job failed: "+message, extra)
	t.logger.Error("worker.job_failed", "job_id", id, "error", message)
}

func (t *Task) appendLog(ctx context.Context, id uuid.UUID, level constants.LogLevel, message string, extra map[string]any) {
	if t.logs == nil {
		return
	}
	if err := t.logs.Append(ctx, id, level, message, extra); err != nil {
		t.logger.Error("worker.audit_log_failed", "job_id", id, "error", err)
	}
}
