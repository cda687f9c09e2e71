package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/ocr-jobs/internal/enrich"
)

// PostProcessingResult holds every intermediate stage of one page so
// diagnostics can reconstruct what happened.
type PostProcessingResult struct {
	OriginalText     string
	SpellCheckedText string
	LLMText          *string
	Corrections      []string
	Provider         *string
	Attempts         []enrich.Attempt
}

// FinalText prefers the enriched text, then the spell-checked text, then the
// original. Never empty when the original was non-empty.
func (r PostProcessingResult) FinalText() string {
	if r.LLMText != nil && strings.TrimSpace(*r.LLMText) != "" {
		return *r.LLMText
	}
	if r.SpellCheckedText != "" {
		return r.SpellCheckedText
	}
	return r.OriginalText
}

// PageDetail is the per-page record stored in the result payload.
type PageDetail struct {
	Page             int              `json:"page"`
	RawText          string           `json:"raw_text"`
	SpellCheckedText string           `json:"spell_checked_text"`
	LLMText          *string          `json:"llm_text"`
	FinalText        string           `json:"final_text"`
	Confidence       *float64         `json:"confidence"`
	Provider         *string          `json:"provider"`
	Corrections      []string         `json:"corrections"`
	Attempts         []enrich.Attempt `json:"attempts"`
}

// PageAttempts groups the attempt records of one page for the fallback log.
type PageAttempts struct {
	Page     int              `json:"page"`
	Attempts []enrich.Attempt `json:"attempts"`
}

// LLMMetadata summarizes the enrichment configuration and what it did.
type LLMMetadata struct {
	Enabled            bool              `json:"enabled"`
	Providers          []string          `json:"providers"`
	ProviderUsage      map[string]string `json:"provider_usage"`
	Model              string            `json:"model"`
	FallbackConfigured bool              `json:"fallback_configured"`
	FallbackUsed       bool              `json:"fallback_used"`
	FallbackAttempts   []PageAttempts    `json:"fallback_attempts"`
	Artifacts          map[string]string `json:"artifacts"`
}

// Payload is the persisted job result document. The artifacts map and
// llm.artifacts are kept identical after assembly.
type Payload struct {
	RawPages          []string          `json:"raw_pages"`
	Pages             []string          `json:"pages"`
	RawCombinedText   string            `json:"raw_combined_text"`
	CombinedText      string            `json:"combined_text"`
	AverageConfidence float64           `json:"average_confidence"`
	PageDetails       []PageDetail      `json:"page_details"`
	LLM               LLMMetadata       `json:"llm"`
	Artifacts         map[string]string `json:"artifacts"`
}

// Encode renders the payload for storage in the jobs table.
func (p *Payload) Encode() (json.RawMessage, error) {
	return json.Marshal(p)
}
