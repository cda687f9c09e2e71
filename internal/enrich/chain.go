package enrich

import (
	"log/slog"
	"time"
)

// Base URLs assumed for well-known hosted gateways when none is configured.
var knownBaseURLs = map[string]string{
	"openrouter":  "https://openrouter.ai/api/v1/chat/completions",
	"agentrouter": "https://api.agentrouter.ai/v1",
}

// ChainConfig carries the process-wide enrichment defaults that per-job
// options are merged against.
type ChainConfig struct {
	DefaultProvider string
	DefaultModel    string
	DefaultBaseURL  string
	DefaultAPIKey   string
	FallbackEnabled bool
	Timeout         time.Duration
}

// Chain is the resolved, ordered provider set for one job.
type Chain struct {
	Providers          []Provider
	Names              []string // resolved identifiers, primary first
	Model              string
	FallbackConfigured bool
}

// BuildChain merges job options with process defaults and constructs provider
// adapters. The sequence is primary first, fallbacks appended, duplicates
// removed preserving first occurrence; an implicit ollama fallback is added
// when fallback is enabled and the primary differs. Named providers without a
// resolvable base URL are skipped, not fatal.
func BuildChain(opts *Options, cfg ChainConfig, logger *slog.Logger) Chain {
	if logger == nil {
		logger = slog.Default()
	}
	if opts == nil {
		opts = &Options{}
	}

	model := opts.Model
	if model == "" {
		model = cfg.DefaultModel
	}
	chain := Chain{Model: model}
	if !opts.Enabled() {
		return chain
	}

	primary := opts.Provider
	if primary == "" {
		primary = cfg.DefaultProvider
	}

	var fallbackNames []string
	if len(opts.FallbackProviders) > 0 {
		fallbackNames = append(fallbackNames, opts.FallbackProviders...)
	} else if fallbackEnabled(opts, cfg) && primary != "ollama" {
		fallbackNames = append(fallbackNames, "ollama")
	}

	var sequence []string
	if primary != "" {
		sequence = append(sequence, primary)
	}
	for _, name := range fallbackNames {
		if name != "" && !contains(sequence, name) {
			sequence = append(sequence, name)
		}
	}

	sharedBaseURL := opts.BaseURL
	if sharedBaseURL == "" {
		sharedBaseURL = cfg.DefaultBaseURL
	}
	sharedAPIKey := opts.APIKey
	if sharedAPIKey == "" {
		sharedAPIKey = cfg.DefaultAPIKey
	}

	for _, name := range sequence {
		override := opts.Providers[name]

		if name == "ollama" {
			baseURL := firstNonEmpty(override.BaseURL, sharedBaseURL)
			ollamaModel := firstNonEmpty(override.Model, model)
			chain.Providers = append(chain.Providers,
				NewOllamaProvider(baseURL, ollamaModel, cfg.Timeout, logger))
			chain.Names = append(chain.Names, "ollama")
			continue
		}

		baseURL := firstNonEmpty(override.BaseURL, sharedBaseURL, knownBaseURLs[name])
		if baseURL == "" {
			logger.Warn("enrich.provider.unresolved", "provider", name)
			continue
		}

		headers := make(map[string]string, len(override.Headers)+1)
		for k, v := range override.Headers {
			headers[k] = v
		}
		apiKey := firstNonEmpty(override.APIKey, sharedAPIKey)
		if apiKey != "" {
			if _, ok := headers["Authorization"]; !ok {
				headers["Authorization"] = "Bearer " + apiKey
			}
		}

		extraPayload := make(map[string]any, len(opts.ExtraPayload)+len(override.ExtraPayload))
		for k, v := range opts.ExtraPayload {
			extraPayload[k] = v
		}
		for k, v := range override.ExtraPayload {
			extraPayload[k] = v
		}

		providerModel := firstNonEmpty(override.Model, model)
		chain.Providers = append(chain.Providers,
			NewRESTProvider(name, baseURL, providerModel, headers, extraPayload, cfg.Timeout, logger))
		chain.Names = append(chain.Names, name)
	}

	chain.FallbackConfigured = len(chain.Names) > 1
	return chain
}

func fallbackEnabled(opts *Options, cfg ChainConfig) bool {
	if opts.FallbackEnabled != nil {
		return *opts.FallbackEnabled
	}
	return cfg.FallbackEnabled
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
