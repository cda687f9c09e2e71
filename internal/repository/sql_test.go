package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/ocr-jobs/constants"
	"github.com/joseph-ayodele/ocr-jobs/internal/common"
)

func testRepo(t *testing.T) (JobRepository, JobLogRepository) {
	t.Helper()
	db, err := Open("file:" + filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, EnsureSchema(context.Background(), db))
	return NewJobRepository(db, nil), NewJobLogRepository(db, nil)
}

func TestCreateAndGet(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	opts := json.RawMessage(`{"provider": "ollama"}`)
	created, err := repo.Create(ctx, "scan.pdf", "var/storage/scan.pdf", opts)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusPending, created.Status)

	loaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)
	assert.Equal(t, "scan.pdf", loaded.InputFilename)
	assert.JSONEq(t, string(opts), string(loaded.LLMOptions))
	assert.Empty(t, loaded.ResultPath)
	assert.False(t, loaded.CreatedAt.IsZero())
}

func TestCreateRejectsInvalidOptions(t *testing.T) {
	repo, _ := testRepo(t)

	_, err := repo.Create(context.Background(), "scan.pdf", "scan.pdf", json.RawMessage(`{"enable_llm": "yes"}`))
	require.Error(t, err)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_LLM_OPTIONS", appErr.Code)
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _ := testRepo(t)
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStatusTransitions(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	job, err := repo.Create(ctx, "scan.pdf", "scan.pdf", nil)
	require.NoError(t, err)

	require.NoError(t, repo.MarkProcessing(ctx, job.ID))
	loaded, _ := repo.GetByID(ctx, job.ID)
	assert.Equal(t, constants.JobStatusProcessing, loaded.Status)

	payload := json.RawMessage(`{"combined_text": "done"}`)
	require.NoError(t, repo.MarkCompleted(ctx, job.ID, "results/x.json", payload))
	loaded, _ = repo.GetByID(ctx, job.ID)
	assert.Equal(t, constants.JobStatusCompleted, loaded.Status)
	assert.Equal(t, "results/x.json", loaded.ResultPath)
	assert.JSONEq(t, string(payload), string(loaded.ResultPayload))
	assert.True(t, loaded.Status.Terminal())
}

func TestMarkFailedRecordsMessage(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	job, err := repo.Create(ctx, "scan.pdf", "scan.pdf", nil)
	require.NoError(t, err)
	require.NoError(t, repo.MarkFailed(ctx, job.ID, "ocr service unreachable"))

	loaded, _ := repo.GetByID(ctx, job.ID)
	assert.Equal(t, constants.JobStatusFailed, loaded.Status)
	assert.Equal(t, "ocr service unreachable", loaded.ErrorMessage)
}

func TestTransitionsOnMissingJob(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()
	missing := uuid.New()

	assert.ErrorIs(t, repo.MarkProcessing(ctx, missing), common.ErrNotFound)
	assert.ErrorIs(t, repo.MarkCompleted(ctx, missing, "x", nil), common.ErrNotFound)
	assert.ErrorIs(t, repo.MarkFailed(ctx, missing, "x"), common.ErrNotFound)
}

func TestListPending(t *testing.T) {
	repo, _ := testRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, "a.pdf", "a.pdf", nil)
	require.NoError(t, err)
	second, err := repo.Create(ctx, "b.pdf", "b.pdf", nil)
	require.NoError(t, err)
	require.NoError(t, repo.MarkProcessing(ctx, second.ID))

	pending, err := repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)
}

func TestJobLogAppend(t *testing.T) {
	repo, logs := testRepo(t)
	ctx := context.Background()

	job, err := repo.Create(ctx, "scan.pdf", "scan.pdf", nil)
	require.NoError(t, err)

	err = logs.Append(ctx, job.ID, constants.LogLevelInfo, "Job picked up by worker.", nil)
	assert.NoError(t, err)
	err = logs.Append(ctx, job.ID, constants.LogLevelWarning, "LLM fallback attempts recorded.",
		map[string]any{"attempts": []string{"openrouter"}})
	assert.NoError(t, err)
}
