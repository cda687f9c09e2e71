package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Generate(_ context.Context, _ Request) (*Response, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &Response{Text: p.text, Provider: p.name}, nil
}

func TestEnrichCachesByPageHash(t *testing.T) {
	provider := &stubProvider{name: "primary", text: "normalized"}
	engine := NewEngine(EngineConfig{
		Providers:    []Provider{provider},
		CacheEnabled: true,
	}, nil)

	first, attempts, err := engine.Enrich(context.Background(), "raw text", nil, "llama3", "job-1:1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Len(t, attempts, 1)

	second, attempts, err := engine.Enrich(context.Background(), "raw text", nil, "llama3", "job-1:1")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Empty(t, attempts, "cache hit records no attempts")
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, provider.calls, "provider must be invoked exactly once for the same page hash")
}

func TestEnrichCacheDisabled(t *testing.T) {
	provider := &stubProvider{name: "primary", text: "normalized"}
	engine := NewEngine(EngineConfig{
		Providers:    []Provider{provider},
		CacheEnabled: false,
	}, nil)

	_, _, err := engine.Enrich(context.Background(), "raw text", nil, "llama3", "job-1:1")
	require.NoError(t, err)
	_, _, err = engine.Enrich(context.Background(), "raw text", nil, "llama3", "job-1:1")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.calls)
}

func TestEnrichFallbackOrder(t *testing.T) {
	failing := &stubProvider{name: "openrouter", err: errors.New("upstream 503")}
	working := &stubProvider{name: "ollama", text: "ok"}
	engine := NewEngine(EngineConfig{
		Providers:    []Provider{failing, working},
		CacheEnabled: true,
	}, nil)

	resp, attempts, err := engine.Enrich(context.Background(), "text", nil, "", "job-2:1")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "ollama", resp.Provider)

	require.Len(t, attempts, 2)
	assert.Equal(t, Attempt{Provider: "openrouter", Status: AttemptFailed, Error: "upstream 503"}, attempts[0])
	assert.Equal(t, Attempt{Provider: "ollama", Status: AttemptOK}, attempts[1])
}

func TestEnrichSkipsEmptyResponses(t *testing.T) {
	empty := &stubProvider{name: "openrouter", text: "   "}
	working := &stubProvider{name: "ollama", text: "ok"}
	engine := NewEngine(EngineConfig{
		Providers:    []Provider{empty, working},
		CacheEnabled: true,
	}, nil)

	resp, attempts, err := engine.Enrich(context.Background(), "text", nil, "", "job-3:1")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "ollama", resp.Provider)
	require.Len(t, attempts, 2)
	assert.Equal(t, AttemptEmpty, attempts[0].Status)
}

func TestEnrichAllProvidersFail(t *testing.T) {
	first := &stubProvider{name: "openrouter", err: errors.New("boom")}
	second := &stubProvider{name: "ollama", err: errors.New("connection refused")}
	engine := NewEngine(EngineConfig{
		Providers:    []Provider{first, second},
		CacheEnabled: true,
	}, nil)

	resp, attempts, err := engine.Enrich(context.Background(), "text", nil, "", "job-4:1")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Len(t, attempts, 2)
	assert.EqualError(t, err, "connection refused", "last failure wins")
}

func TestEnrichAllProvidersEmpty(t *testing.T) {
	engine := NewEngine(EngineConfig{
		Providers:    []Provider{&stubProvider{name: "a"}, &stubProvider{name: "b"}},
		CacheEnabled: true,
	}, nil)

	resp, attempts, err := engine.Enrich(context.Background(), "text", nil, "", "job-5:1")
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Len(t, attempts, 2)
}

func TestEnrichEmptyChain(t *testing.T) {
	engine := NewEngine(EngineConfig{CacheEnabled: true}, nil)
	resp, attempts, err := engine.Enrich(context.Background(), "text", nil, "", "job-6:1")
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Empty(t, attempts)
}

func TestCacheKeyShape(t *testing.T) {
	withModel := cacheKey("job-1:1", "llama3")
	withoutModel := cacheKey("job-1:1", "")
	assert.NotEqual(t, withModel, withoutModel, "model participates in the key")
	assert.Contains(t, withoutModel, ":default")
	assert.Contains(t, withModel, ":llama3")
}

func TestBuildPromptDeterministic(t *testing.T) {
	layout := map[string]any{"b": 1, "a": 2}
	assert.Equal(t, buildPrompt("text", layout), buildPrompt("text", layout))
	assert.Contains(t, buildPrompt("text", nil), "Nội dung OCR:\ntext")
}
