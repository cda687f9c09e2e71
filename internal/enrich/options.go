package enrich

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ProviderOverride carries per-provider connection settings.
type ProviderOverride struct {
	BaseURL      string            `json:"base_url,omitempty"`
	Model        string            `json:"model,omitempty"`
	APIKey       string            `json:"api_key,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	ExtraPayload map[string]any    `json:"extra_payload,omitempty"`
}

// Options is the typed enrichment configuration stored with a job. Booleans
// are pointers so "unset" falls back to process defaults.
type Options struct {
	EnableLLM         *bool                       `json:"enable_llm,omitempty"`
	Provider          string                      `json:"provider,omitempty"`
	Model             string                      `json:"model,omitempty"`
	BaseURL           string                      `json:"base_url,omitempty"`
	APIKey            string                      `json:"api_key,omitempty"`
	FallbackEnabled   *bool                       `json:"fallback_enabled,omitempty"`
	FallbackProviders []string                    `json:"fallback_providers,omitempty"`
	Providers         map[string]ProviderOverride `json:"providers,omitempty"`
	ExtraPayload      map[string]any              `json:"extra_payload,omitempty"`
	CacheEnabled      *bool                       `json:"cache_enabled,omitempty"`
	Layout            map[string]any              `json:"layout,omitempty"`
}

// Enabled resolves enable_llm, defaulting to true as the pipeline always has.
func (o *Options) Enabled() bool {
	if o == nil || o.EnableLLM == nil {
		return true
	}
	return *o.EnableLLM
}

// CachingEnabled resolves cache_enabled, defaulting to true.
func (o *Options) CachingEnabled() bool {
	if o == nil || o.CacheEnabled == nil {
		return true
	}
	return *o.CacheEnabled
}

const optionsSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "enable_llm": {"type": "boolean"},
    "provider": {"type": "string"},
    "model": {"type": "string"},
    "base_url": {"type": "string"},
    "api_key": {"type": "string"},
    "fallback_enabled": {"type": "boolean"},
    "fallback_providers": {"type": "array", "items": {"type": "string"}},
    "providers": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "base_url": {"type": "string"},
          "model": {"type": "string"},
          "api_key": {"type": "string"},
          "headers": {"type": "object", "additionalProperties": {"type": "string"}},
          "extra_payload": {"type": "object"}
        }
      }
    },
    "extra_payload": {"type": "object"},
    "cache_enabled": {"type": "boolean"},
    "layout": {"type": "object"}
  }
}`

// ParseOptions validates raw enrichment options against the schema and
// decodes them. Validation happens at job-creation time so a malformed
// request never reaches the pipeline. Nil or empty input yields defaults.
func ParseOptions(raw []byte) (*Options, error) {
	if len(raw) == 0 {
		return &Options{}, nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("llm_options.json", strings.NewReader(optionsSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("llm_options.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("unmarshal llm options: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("llm options do not match schema: %w", err)
	}

	var opts Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, fmt.Errorf("decode llm options: %w", err)
	}
	return &opts, nil
}
