package enrich

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Defaults for the local Ollama REST API.
const (
	OllamaBaseURL      = "http://localhost:11434/api/generate"
	OllamaDefaultModel = "llama3"
)

// OllamaProvider is an adapter for the local Ollama REST API.
type OllamaProvider struct {
	baseURL      string
	defaultModel string
	client       *http.Client
	logger       *slog.Logger
}

func NewOllamaProvider(baseURL, defaultModel string, timeout time.Duration, logger *slog.Logger) *OllamaProvider {
	if baseURL == "" {
		baseURL = OllamaBaseURL
	}
	if defaultModel == "" {
		defaultModel = OllamaDefaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OllamaProvider{
		baseURL:      baseURL,
		defaultModel: defaultModel,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	payload := map[string]any{
		"model":  model,
		"prompt": req.Prompt,
		"stream": false,
	}
	data, err := sendJSON(ctx, p.client, p.baseURL, payload, nil, p.logger)
	if err != nil {
		return nil, err
	}
	return &Response{Text: responseText(data), Raw: data, Provider: p.Name()}, nil
}

// responseText pulls the generated text out of the few response shapes the
// supported backends produce.
func responseText(data map[string]any) string {
	if s, ok := data["response"].(string); ok && s != "" {
		return s
	}
	if s, ok := data["text"].(string); ok && s != "" {
		return s
	}
	if choices, ok := data["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if s, ok := message["content"].(string); ok {
					return s
				}
			}
		}
	}
	return ""
}
