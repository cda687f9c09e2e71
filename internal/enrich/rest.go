package enrich

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// RESTProvider is a generic adapter for hosted gateways such as OpenRouter or
// AgentRouter.
type RESTProvider struct {
	name         string
	baseURL      string
	defaultModel string
	headers      map[string]string
	extraPayload map[string]any
	client       *http.Client
	logger       *slog.Logger
}

func NewRESTProvider(name, baseURL, defaultModel string, headers map[string]string, extraPayload map[string]any, timeout time.Duration, logger *slog.Logger) *RESTProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RESTProvider{
		name:         name,
		baseURL:      baseURL,
		defaultModel: defaultModel,
		headers:      headers,
		extraPayload: extraPayload,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

func (p *RESTProvider) Name() string { return p.name }

func (p *RESTProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	payload := map[string]any{"prompt": req.Prompt}
	if req.Model != "" {
		payload["model"] = req.Model
	} else if p.defaultModel != "" {
		payload["model"] = p.defaultModel
	}
	for k, v := range p.extraPayload {
		payload[k] = v
	}
	data, err := sendJSON(ctx, p.client, p.baseURL, payload, p.headers, p.logger)
	if err != nil {
		return nil, err
	}
	return &Response{Text: responseText(data), Raw: data, Provider: p.name}, nil
}
