package normalize

import (
	"log/slog"
	"strings"
)

// Tokenizer splits text into tokens. Language-aware tokenization is a
// pluggable capability; the default is a whitespace split.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Linter suggests replacements for a single token. An implementation
// typically wraps an external grammar/spelling service.
type Linter interface {
	Suggest(token string) ([]string, error)
}

// Config for Normalizer.
type Config struct {
	CustomWords []string               // tokens that are never rewritten
	Tokenizer   Tokenizer              // nil -> whitespace split
	NewLinter   func() (Linter, error) // nil -> no linting
}

// Result stores the corrected text and the applied corrections.
type Result struct {
	OriginalText  string
	CorrectedText string
	Corrections   []string
}

// Normalizer applies token-level linting over OCR output. A linter that fails
// to initialize degrades the pass to a no-op rather than failing the job.
type Normalizer struct {
	tokenizer Tokenizer
	linter    Linter
	custom    map[string]struct{}
	logger    *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Normalizer{
		tokenizer: cfg.Tokenizer,
		custom:    make(map[string]struct{}, len(cfg.CustomWords)),
		logger:    logger,
	}
	if n.tokenizer == nil {
		n.tokenizer = whitespaceTokenizer{}
	}
	for _, w := range cfg.CustomWords {
		n.custom[w] = struct{}{}
	}
	if cfg.NewLinter != nil {
		linter, err := cfg.NewLinter()
		if err != nil {
			logger.Warn("normalize.linter_unavailable", "error", err)
		} else {
			n.linter = linter
		}
	}
	return n
}

// Correct runs the token-by-token pass. Tokens on the custom allowlist are
// kept unchanged; otherwise the linter's first suggestion wins and is
// recorded as "token -> suggestion".
func (n *Normalizer) Correct(text string) Result {
	tokens := n.tokenizer.Tokenize(text)

	corrected := make([]string, 0, len(tokens))
	var corrections []string
	for _, token := range tokens {
		if _, ok := n.custom[token]; ok {
			corrected = append(corrected, token)
			continue
		}
		if n.linter == nil {
			corrected = append(corrected, token)
			continue
		}
		suggestions, err := n.linter.Suggest(token)
		if err != nil {
			n.logger.Warn("normalize.lint_failed", "token", token, "error", err)
			corrected = append(corrected, token)
			continue
		}
		if len(suggestions) > 0 && suggestions[0] != token {
			corrections = append(corrections, token+" -> "+suggestions[0])
			corrected = append(corrected, suggestions[0])
		} else {
			corrected = append(corrected, token)
		}
	}

	return Result{
		OriginalText:  text,
		CorrectedText: strings.Join(corrected, " "),
		Corrections:   corrections,
	}
}

// ApplyDictionary maps domain-specific terminology token by token. Exact,
// single-token matches only; unmapped tokens pass through.
func ApplyDictionary(text string, dictionary map[string]string) string {
	if len(dictionary) == 0 {
		return text
	}
	tokens := strings.Fields(text)
	for i, token := range tokens {
		if mapped, ok := dictionary[token]; ok {
			tokens[i] = mapped
		}
	}
	return strings.Join(tokens, " ")
}

type whitespaceTokenizer struct{}

func (whitespaceTokenizer) Tokenize(text string) []string {
	return strings.Fields(text)
}
