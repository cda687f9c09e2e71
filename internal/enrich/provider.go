package enrich

import "context"

// Request carries the generated prompt to a provider.
type Request struct {
	Prompt   string
	Model    string
	Metadata map[string]any
}

// Response is the normalized output returned by providers.
type Response struct {
	Text     string
	Raw      map[string]any
	Provider string
}

// Provider is implemented by backend-specific adapters.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Attempt statuses recorded per provider invocation.
const (
	AttemptOK     = "ok"
	AttemptEmpty  = "empty"
	AttemptFailed = "failed"
)

// Attempt records one provider invocation inside an enrichment call.
type Attempt struct {
	Provider string `json:"provider"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}
