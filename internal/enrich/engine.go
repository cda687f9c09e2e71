package enrich

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Cache stores responses for the lifetime of one pipeline run. Injected so a
// shared backend can replace the in-memory default later.
type Cache interface {
	Get(key string) (*Response, bool)
	Put(key string, resp *Response)
}

type memoryCache map[string]*Response

func NewMemoryCache() Cache { return memoryCache{} }

func (c memoryCache) Get(key string) (*Response, bool) {
	resp, ok := c[key]
	return resp, ok
}

func (c memoryCache) Put(key string, resp *Response) { c[key] = resp }

// EngineConfig for Engine.
type EngineConfig struct {
	Providers    []Provider
	Cache        Cache // nil -> fresh in-memory cache
	CacheEnabled bool
}

// Engine handles prompt generation, response caching and provider fallback
// for one pipeline run.
type Engine struct {
	cfg    EngineConfig
	cache  Cache
	logger *slog.Logger
}

func NewEngine(cfg EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	cache := cfg.Cache
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Engine{cfg: cfg, cache: cache, logger: logger}
}

// Enrich builds the prompt, consults the cache, and walks the provider chain
// in order. Every invocation is recorded as an Attempt; the loop stops at the
// first non-empty response. When all providers are exhausted the last failure
// is returned alongside the full attempt list; an empty chain yields nothing.
func (e *Engine) Enrich(ctx context.Context, pageText string, layout map[string]any, model, pageHash string) (*Response, []Attempt, error) {
	prompt := buildPrompt(pageText, layout)

	keyMaterial := pageHash
	if keyMaterial == "" {
		keyMaterial = prompt
	}
	key := cacheKey(keyMaterial, model)
	if e.cfg.CacheEnabled {
		if resp, ok := e.cache.Get(key); ok {
			e.logger.Debug("enrich.cache_hit", "key", key)
			return resp, nil, nil
		}
	}

	req := Request{Prompt: prompt, Model: model, Metadata: layout}
	var attempts []Attempt
	var lastErr error
	for _, provider := range e.cfg.Providers {
		e.logger.Debug("enrich.provider.invoke", "provider", provider.Name())
		resp, err := provider.Generate(ctx, req)
		if err != nil {
			e.logger.Warn("enrich.provider.failed", "provider", provider.Name(), "error", err)
			attempts = append(attempts, Attempt{Provider: provider.Name(), Status: AttemptFailed, Error: err.Error()})
			lastErr = err
			continue
		}
		if strings.TrimSpace(resp.Text) == "" {
			e.logger.Warn("enrich.provider.empty", "provider", provider.Name())
			attempts = append(attempts, Attempt{Provider: provider.Name(), Status: AttemptEmpty})
			continue
		}
		attempts = append(attempts, Attempt{Provider: provider.Name(), Status: AttemptOK})
		if e.cfg.CacheEnabled {
			e.cache.Put(key, resp)
		}
		return resp, attempts, nil
	}

	if lastErr != nil {
		return nil, attempts, lastErr
	}
	return nil, attempts, nil
}

// buildPrompt embeds the page text and a canonical serialization of the
// layout metadata. json.Marshal sorts map keys, which keeps the prompt (and
// therefore the prompt-derived cache key) deterministic.
func buildPrompt(pageText string, layout map[string]any) string {
	if layout == nil {
		layout = map[string]any{}
	}
	metadata, err := json.Marshal(layout)
	if err != nil {
		metadata = []byte("{}")
	}
	return "Bạn là một trợ lý giúp chuẩn hóa kết quả OCR. " +
		"Hãy cải thiện chính tả và điền vào các chỗ còn thiếu nếu có thể.\n" +
		"Nội dung OCR:\n" + pageText + "\n" +
		"Metadata bố cục:\n" + string(metadata) + "\n"
}

func cacheKey(material, model string) string {
	if material == "" {
		material = "no-hash"
	}
	digest := sha256.Sum256([]byte(material))
	suffix := model
	if suffix == "" {
		suffix = "default"
	}
	return fmt.Sprintf("%s:%s", hex.EncodeToString(digest[:]), suffix)
}
