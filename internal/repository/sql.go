package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/ocr-jobs/constants"
	"github.com/joseph-ayodele/ocr-jobs/internal/common"
	"github.com/joseph-ayodele/ocr-jobs/internal/enrich"
)

// Open picks a driver from the DSN: postgres URLs go through pgx, everything
// else is treated as a sqlite path.
func Open(dsn string) (*sql.DB, error) {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	return db, nil
}

// EnsureSchema creates the jobs tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

type sqlJobRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewJobRepository(db *sql.DB, log *slog.Logger) JobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &sqlJobRepo{db: db, log: log}
}

func (r *sqlJobRepo) Create(ctx context.Context, inputFilename, inputPath string, llmOptions json.RawMessage) (*Job, error) {
	// Options are validated here, at job-creation time, so a malformed
	// request never reaches a worker.
	if _, err := enrich.ParseOptions(llmOptions); err != nil {
		return nil, common.NewAppError("INVALID_LLM_OPTIONS", "llm options rejected", err)
	}

	now := time.Now().UTC()
	job := &Job{
		ID:            uuid.New(),
		Status:        constants.JobStatusPending,
		InputFilename: inputFilename,
		InputPath:     inputPath,
		LLMOptions:    llmOptions,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, status, input_filename, input_path, llm_options, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID.String(), string(job.Status), inputFilename, inputPath,
		nullableText(llmOptions), now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		r.log.Error("jobs.create_failed", "input", inputFilename, "err", err)
		return nil, fmt.Errorf("insert job: %w", err)
	}
	r.log.Info("jobs.created", "job_id", job.ID, "input", inputFilename)
	return job, nil
}

func (r *sqlJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, status, input_filename, input_path, result_path, result_payload,
		        llm_options, error_message, created_at, updated_at
		   FROM jobs WHERE id = $1`, id.String())
	return scanJob(row)
}

func (r *sqlJobRepo) ListPending(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, status, input_filename, input_path, result_path, result_payload,
		        llm_options, error_message, created_at, updated_at
		   FROM jobs WHERE status = $1 ORDER BY created_at LIMIT $2`,
		string(constants.JobStatusPending), limit)
	if err != nil {
		return nil, fmt.Errorf("list pending jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *sqlJobRepo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, constants.JobStatusProcessing,
		`UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3`)
}

func (r *sqlJobRepo) MarkCompleted(ctx context.Context, id uuid.UUID, resultPath string, payload json.RawMessage) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = $1, result_path = $2, result_payload = $3, updated_at = $4 WHERE id = $5`,
		string(constants.JobStatusCompleted), resultPath, nullableText(payload), now, id.String())
	if err != nil {
		r.log.Error("jobs.mark_completed_failed", "job_id", id, "err", err)
		return fmt.Errorf("mark completed: %w", err)
	}
	return checkAffected(res, id)
}

func (r *sqlJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = $1, error_message = $2, updated_at = $3 WHERE id = $4`,
		string(constants.JobStatusFailed), message, now, id.String())
	if err != nil {
		r.log.Error("jobs.mark_failed_failed", "job_id", id, "err", err)
		return fmt.Errorf("mark failed: %w", err)
	}
	return checkAffected(res, id)
}

func (r *sqlJobRepo) setStatus(ctx context.Context, id uuid.UUID, status constants.JobStatus, query string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := r.db.ExecContext(ctx, query, string(status), now, id.String())
	if err != nil {
		r.log.Error("jobs.set_status_failed", "job_id", id, "status", status, "err", err)
		return fmt.Errorf("set status %s: %w", status, err)
	}
	return checkAffected(res, id)
}

func checkAffected(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil
	}
	if n == 0 {
		return fmt.Errorf("job %s: %w", id, common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job                                              Job
		idText, statusText, createdText, updatedText     string
		resultPath, resultPayload, llmOptions, errorMsg  sql.NullString
	)
	err := row.Scan(&idText, &statusText, &job.InputFilename, &job.InputPath,
		&resultPath, &resultPayload, &llmOptions, &errorMsg, &createdText, &updatedText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}
	job.ID, err = uuid.Parse(idText)
	if err != nil {
		return nil, fmt.Errorf("parse job id %q: %w", idText, err)
	}
	job.Status = constants.JobStatus(statusText)
	job.ResultPath = resultPath.String
	if resultPayload.Valid {
		job.ResultPayload = json.RawMessage(resultPayload.String)
	}
	if llmOptions.Valid {
		job.LLMOptions = json.RawMessage(llmOptions.String)
	}
	job.ErrorMessage = errorMsg.String
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdText)
	job.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedText)
	return &job, nil
}

func nullableText(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

type sqlJobLogRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewJobLogRepository(db *sql.DB, log *slog.Logger) JobLogRepository {
	if log == nil {
		log = slog.Default()
	}
	return &sqlJobLogRepo{db: db, log: log}
}

func (r *sqlJobLogRepo) Append(ctx context.Context, jobID uuid.UUID, level constants.LogLevel, message string, extra map[string]any) error {
	var extraText any
	if len(extra) > 0 {
		b, err := json.Marshal(extra)
		if err != nil {
			return fmt.Errorf("marshal log extra: %w", err)
		}
		extraText = string(b)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO job_logs (id, job_id, level, message, extra, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), jobID.String(), string(level), message, extraText,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		r.log.Error("job_logs.append_failed", "job_id", jobID, "err", err)
		return fmt.Errorf("append job log: %w", err)
	}
	return nil
}
