package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Worker   WorkerConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN string
}

// StorageConfig holds the on-disk layout for inputs and results
type StorageConfig struct {
	InputDir   string
	ResultsDir string
}

// OCRConfig locates the external OCR collaborator
type OCRConfig struct {
	ServiceURL string
	Language   string
	Timeout    time.Duration
}

// LLMConfig holds process-wide enrichment defaults; per-job options override these
type LLMConfig struct {
	Provider            string
	Model               string
	BaseURL             string
	APIKey              string
	FallbackEnabled     bool
	ConfidenceThreshold float64
	Timeout             time.Duration
}

// WorkerConfig tunes the background job queue
type WorkerConfig struct {
	Workers      int
	QueueSize    int
	JobTimeout   time.Duration
	PollInterval time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN: getEnv("OCRJOBS_DB_URL", "file:ocrjobs.db"),
		},
		Storage: StorageConfig{
			InputDir:   getEnv("OCRJOBS_STORAGE_PATH", "var/storage"),
			ResultsDir: getEnv("OCRJOBS_RESULTS_PATH", "var/results"),
		},
		OCR: OCRConfig{
			ServiceURL: getEnv("OCRJOBS_OCR_URL", ""),
			Language:   getEnv("OCRJOBS_OCR_LANGUAGE", "vi"),
			Timeout:    getEnvAsDuration("OCRJOBS_OCR_TIMEOUT", 2*time.Minute),
		},
		LLM: LLMConfig{
			Provider:            getEnv("OCRJOBS_LLM_PROVIDER", "ollama"),
			Model:               getEnv("OCRJOBS_LLM_MODEL", "llama3"),
			BaseURL:             getEnv("OCRJOBS_LLM_BASE_URL", ""),
			APIKey:              getEnv("OCRJOBS_LLM_API_KEY", ""),
			FallbackEnabled:     getEnvAsBool("OCRJOBS_LLM_FALLBACK_ENABLED", true),
			ConfidenceThreshold: getEnvAsFloat64("OCRJOBS_LLM_CONFIDENCE_THRESHOLD", 0.85),
			Timeout:             getEnvAsDuration("OCRJOBS_LLM_TIMEOUT", 30*time.Second),
		},
		Worker: WorkerConfig{
			Workers:      getEnvAsInt("OCRJOBS_WORKERS", 4),
			QueueSize:    getEnvAsInt("OCRJOBS_QUEUE_SIZE", 256),
			JobTimeout:   getEnvAsDuration("OCRJOBS_JOB_TIMEOUT", 10*time.Minute),
			PollInterval: getEnvAsDuration("OCRJOBS_POLL_INTERVAL", 2*time.Second),
		},
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "OCRJOBS_DB_URL is required", ErrInvalidInput)
	}
	if c.Storage.ResultsDir == "" {
		return NewAppError("CONFIG_ERROR", "OCRJOBS_RESULTS_PATH is required", ErrInvalidInput)
	}
	if c.Worker.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "OCRJOBS_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
