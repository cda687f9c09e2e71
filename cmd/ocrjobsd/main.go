package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/ocr-jobs/internal/common"
	"github.com/joseph-ayodele/ocr-jobs/internal/enrich"
	"github.com/joseph-ayodele/ocr-jobs/internal/ocr"
	"github.com/joseph-ayodele/ocr-jobs/internal/pipeline"
	"github.com/joseph-ayodele/ocr-jobs/internal/repository"
	"github.com/joseph-ayodele/ocr-jobs/internal/storage"
	"github.com/joseph-ayodele/ocr-jobs/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(cfg.Database.DSN)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := repository.EnsureSchema(ctx, db); err != nil {
		logger.Error("apply schema", "error", err)
		os.Exit(1)
	}

	jobs := repository.NewJobRepository(db, logger)
	logs := repository.NewJobLogRepository(db, logger)
	store := storage.NewDiskStore(cfg.Storage.ResultsDir, logger)

	// Without an OCR service URL every job fails with a dependency error
	// instead of crashing the daemon.
	var recognizer ocr.Recognizer
	var rasterizer ocr.Rasterizer
	if cfg.OCR.ServiceURL != "" {
		recognizer = ocr.NewRemoteRecognizer(ocr.RemoteConfig{
			ServiceURL: cfg.OCR.ServiceURL,
			Language:   cfg.OCR.Language,
			Timeout:    cfg.OCR.Timeout,
		}, logger)
		rasterizer = ocr.EmbeddedImageRasterizer{}
	} else {
		logger.Warn("OCRJOBS_OCR_URL not set, jobs will fail with a dependency error")
	}

	pipe := pipeline.New(recognizer, rasterizer, store, pipeline.Config{
		Chain: enrich.ChainConfig{
			DefaultProvider: cfg.LLM.Provider,
			DefaultModel:    cfg.LLM.Model,
			DefaultBaseURL:  cfg.LLM.BaseURL,
			DefaultAPIKey:   cfg.LLM.APIKey,
			FallbackEnabled: cfg.LLM.FallbackEnabled,
			Timeout:         cfg.LLM.Timeout,
		},
		ConfidenceThreshold: cfg.LLM.ConfidenceThreshold,
	}, logger)

	task := worker.NewTask(jobs, logs, pipe, logger)
	queue := worker.NewQueue(task, logger,
		worker.WithWorkers(cfg.Worker.Workers),
		worker.WithQueueSize(cfg.Worker.QueueSize),
		worker.WithProcessTimeout(cfg.Worker.JobTimeout),
	)
	poller := worker.NewPoller(jobs, queue, cfg.Worker.PollInterval, cfg.Worker.QueueSize, logger)

	logger.Info("ocrjobsd started",
		"workers", cfg.Worker.Workers,
		"poll_interval", cfg.Worker.PollInterval,
		"results_dir", cfg.Storage.ResultsDir,
	)
	poller.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	logger.Info("ocrjobsd stopped")
}
