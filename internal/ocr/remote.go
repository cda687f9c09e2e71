package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RemoteConfig locates an OCR service that accepts rasterized pages and
// returns recognized text per page.
type RemoteConfig struct {
	ServiceURL string
	Language   string
	Timeout    time.Duration
}

// RemoteRecognizer calls an external OCR service over HTTP. The engine itself
// (PaddleOCR, Tesseract, ...) lives behind that service; this client only
// ships images and normalizes the response into pages.
type RemoteRecognizer struct {
	cfg    RemoteConfig
	client *http.Client
	logger *slog.Logger
}

func NewRemoteRecognizer(cfg RemoteConfig, logger *slog.Logger) *RemoteRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &RemoteRecognizer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type remotePage struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence"`
	Boxes      [][]int  `json:"boxes"`
}

// RunOnPDF rasterizes the PDF and submits every page image in one request.
func (r *RemoteRecognizer) RunOnPDF(ctx context.Context, path string, rasterizer Rasterizer) ([]Page, error) {
	images, err := rasterizer.Convert(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("rasterize pdf: %w", err)
	}

	encoded := make([]string, len(images))
	for i, img := range images {
		encoded[i] = base64.StdEncoding.EncodeToString(img)
	}
	body := map[string]any{
		"language": r.cfg.Language,
		"pages":    encoded,
	}

	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode ocr request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.ServiceURL, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	r.logger.Info("ocr.request", "req_id", reqID, "pages", len(images), "language", r.cfg.Language)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("ocr.send_error", "req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("ocr service: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		r.logger.Error("ocr.status_error", "req_id", reqID, "status", resp.StatusCode)
		return nil, fmt.Errorf("ocr service status %d: %s", resp.StatusCode, string(raw))
	}

	var out struct {
		Pages []remotePage `json:"pages"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode ocr response: %w", err)
	}

	pages := make([]Page, len(out.Pages))
	for i, p := range out.Pages {
		pages[i] = Page{Index: i + 1, Text: p.Text, Confidence: p.Confidence, Boxes: p.Boxes}
	}
	r.logger.Info("ocr.response", "req_id", reqID, "pages", len(pages),
		"elapsed_ms", time.Since(start).Milliseconds())
	return pages, nil
}
