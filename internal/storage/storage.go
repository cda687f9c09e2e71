package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Store persists job results and binary artifacts.
type Store interface {
	WriteResult(jobID, content string) (string, error)
	WriteBinaryArtifact(jobID, suffix string, data []byte) (string, error)
}

// DiskStore writes results under a local results directory, one file per
// job: {job_id}.json for the payload, {job_id}.{ext} for artifacts.
type DiskStore struct {
	resultsDir string
	logger     *slog.Logger
}

func NewDiskStore(resultsDir string, logger *slog.Logger) *DiskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &DiskStore{resultsDir: resultsDir, logger: logger}
}

func (s *DiskStore) WriteResult(jobID, content string) (string, error) {
	target := filepath.Join(s.resultsDir, jobID+".json")
	if err := s.write(target, []byte(content)); err != nil {
		return "", err
	}
	s.logger.Info("storage.result_written", "job_id", jobID, "path", target, "bytes", len(content))
	return target, nil
}

func (s *DiskStore) WriteBinaryArtifact(jobID, suffix string, data []byte) (string, error) {
	if !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	target := filepath.Join(s.resultsDir, jobID+suffix)
	if err := s.write(target, data); err != nil {
		return "", err
	}
	s.logger.Info("storage.artifact_written", "job_id", jobID, "path", target, "bytes", len(data))
	return target, nil
}

func (s *DiskStore) write(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}
