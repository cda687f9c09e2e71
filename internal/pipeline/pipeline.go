package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/ocr-jobs/constants"
	"github.com/joseph-ayodele/ocr-jobs/internal/artifact"
	"github.com/joseph-ayodele/ocr-jobs/internal/common"
	"github.com/joseph-ayodele/ocr-jobs/internal/enrich"
	"github.com/joseph-ayodele/ocr-jobs/internal/normalize"
	"github.com/joseph-ayodele/ocr-jobs/internal/ocr"
	"github.com/joseph-ayodele/ocr-jobs/internal/storage"
)

// Config holds the process-wide pipeline behavior; per-job enrichment
// options are merged on top at run time.
type Config struct {
	Chain               enrich.ChainConfig
	Normalizer          normalize.Config
	Dictionary          map[string]string // domain term substitutions
	ConfidenceThreshold float64           // <=0 -> enrich.DefaultConfidenceThreshold
}

// Pipeline drives one job end to end: OCR, normalization, enrichment,
// artifact handling and result persistence.
type Pipeline struct {
	recognizer ocr.Recognizer
	rasterizer ocr.Rasterizer
	store      storage.Store
	normalizer *normalize.Normalizer
	cfg        Config
	logger     *slog.Logger
}

// Result is what Run hands back to the worker.
type Result struct {
	Text       string
	Pages      []string
	RawPages   []string
	ResultPath string
	Payload    *Payload
	Artifacts  map[string]string
}

func New(recognizer ocr.Recognizer, rasterizer ocr.Rasterizer, store storage.Store, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		recognizer: recognizer,
		rasterizer: rasterizer,
		store:      store,
		normalizer: normalize.New(cfg.Normalizer, logger),
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes the full pipeline for one job. Pages are processed
// sequentially in index order; provider attempts within a page follow chain
// order. An enrichment failure aborts the run carrying that page's attempt
// list; all other errors propagate unchanged.
func (p *Pipeline) Run(ctx context.Context, jobID, inputPath string, opts *enrich.Options) (*Result, error) {
	if p.recognizer == nil || p.rasterizer == nil {
		return nil, common.NewDependencyError("ocr", nil)
	}
	if opts == nil {
		opts = &enrich.Options{}
	}

	// Advisory preflight: a broken PDF is surfaced by the OCR collaborator
	// either way, but the page count is worth logging up front.
	if pageCount, err := ocr.Preflight(inputPath); err != nil {
		p.logger.Warn("pipeline.preflight_failed", "job_id", jobID, "error", err)
	} else {
		p.logger.Info("pipeline.preflight_ok", "job_id", jobID, "pages", pageCount)
	}

	pages, err := p.recognizer.RunOnPDF(ctx, inputPath, p.rasterizer)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	rawPages := make([]string, len(pages))
	confidenceSum := 0.0
	for i, page := range pages {
		rawPages[i] = page.Text
		if page.Confidence != nil {
			confidenceSum += *page.Confidence
		}
	}
	averageConfidence := confidenceSum / float64(max(len(pages), 1))

	chain := enrich.BuildChain(opts, p.cfg.Chain, p.logger)
	var engine *enrich.Engine
	if len(chain.Providers) > 0 {
		engine = enrich.NewEngine(enrich.EngineConfig{
			Providers:    chain.Providers,
			CacheEnabled: opts.CachingEnabled(),
		}, p.logger)
	}
	decision := enrich.Decision{Threshold: p.cfg.ConfidenceThreshold}
	layout := opts.Layout

	correctedPages := make([]string, 0, len(pages))
	pageDetails := make([]PageDetail, 0, len(pages))
	providerUsage := make(map[string]string)
	var fallbackAttempts []PageAttempts
	artifacts := make(map[string]string)

	for i, page := range pages {
		index := i + 1
		post := p.processPage(ctx, engine, decision, chain.Model, layout, jobID, index, page)
		if post.err != nil {
			return nil, post.err
		}

		finalText := post.result.FinalText()
		correctedPages = append(correctedPages, finalText)
		if post.result.Provider != nil {
			providerUsage[strconv.Itoa(index)] = *post.result.Provider
		}
		pageDetails = append(pageDetails, PageDetail{
			Page:             index,
			RawText:          page.Text,
			SpellCheckedText: post.result.SpellCheckedText,
			LLMText:          post.result.LLMText,
			FinalText:        finalText,
			Confidence:       page.Confidence,
			Provider:         post.result.Provider,
			Corrections:      post.result.Corrections,
			Attempts:         post.result.Attempts,
		})
		if len(post.result.Attempts) > 0 {
			fallbackAttempts = append(fallbackAttempts, PageAttempts{Page: index, Attempts: post.result.Attempts})
		}

		// Embedded artifacts: first writer of a kind wins across pages.
		for _, embedded := range post.embedded {
			kind := string(embedded.Kind)
			if _, ok := artifacts[kind]; ok {
				continue
			}
			path, err := p.store.WriteBinaryArtifact(jobID, embedded.Kind.Suffix(), embedded.Data)
			if err != nil {
				return nil, fmt.Errorf("write %s artifact: %w", kind, err)
			}
			artifacts[kind] = path
		}
	}

	combinedCorrected := joinPages(correctedPages)
	combinedRaw := joinPages(rawPages)

	fallbackUsed := anyFailedAttempt(fallbackAttempts)
	if !fallbackUsed && len(chain.Names) > 0 {
		primary := chain.Names[0]
		for _, used := range providerUsage {
			if used != "" && used != primary {
				fallbackUsed = true
				break
			}
		}
	}

	if len(artifacts) == 0 {
		p.synthesizeArtifacts(jobID, correctedPages, artifacts)
	}

	payload := &Payload{
		RawPages:          rawPages,
		Pages:             correctedPages,
		RawCombinedText:   combinedRaw,
		CombinedText:      combinedCorrected,
		AverageConfidence: averageConfidence,
		PageDetails:       pageDetails,
		LLM: LLMMetadata{
			Enabled:            engine != nil,
			Providers:          chain.Names,
			ProviderUsage:      providerUsage,
			Model:              chain.Model,
			FallbackConfigured: chain.FallbackConfigured,
			FallbackUsed:       fallbackUsed,
			FallbackAttempts:   fallbackAttempts,
			Artifacts:          artifacts,
		},
		Artifacts: artifacts,
	}

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result payload: %w", err)
	}
	resultPath, err := p.store.WriteResult(jobID, string(encoded))
	if err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	p.logger.Info("pipeline.completed",
		"job_id", jobID,
		"pages", len(pages),
		"average_confidence", averageConfidence,
		"llm_enabled", engine != nil,
		"fallback_used", fallbackUsed,
		"artifacts", len(artifacts),
	)

	return &Result{
		Text:       combinedCorrected,
		Pages:      correctedPages,
		RawPages:   rawPages,
		ResultPath: resultPath,
		Payload:    payload,
		Artifacts:  artifacts,
	}, nil
}

type pageOutcome struct {
	result   PostProcessingResult
	embedded []artifact.Embedded
	err      error
}

func (p *Pipeline) processPage(ctx context.Context, engine *enrich.Engine, decision enrich.Decision, model string, layout map[string]any, jobID string, index int, page ocr.Page) pageOutcome {
	lint := p.normalizer.Correct(page.Text)
	spellChecked := normalize.ApplyDictionary(lint.CorrectedText, p.cfg.Dictionary)

	result := PostProcessingResult{
		OriginalText:     page.Text,
		SpellCheckedText: spellChecked,
		Corrections:      lint.Corrections,
	}

	if !decision.ShouldEnrich(page.Confidence, layout, engine != nil) {
		return pageOutcome{result: result}
	}

	pageHash := fmt.Sprintf("%s:%d", jobID, index)
	resp, attempts, err := engine.Enrich(ctx, page.Text, layout, model, pageHash)
	result.Attempts = attempts
	if err != nil {
		return pageOutcome{err: &EnrichmentError{Page: index, Attempts: attempts, Cause: err}}
	}
	if resp == nil {
		return pageOutcome{result: result}
	}

	result.LLMText = &resp.Text
	provider := resp.Provider
	result.Provider = &provider
	return pageOutcome{result: result, embedded: artifact.ExtractFromResponse(resp.Raw)}
}

// synthesizeArtifacts builds the office exports from the final page texts
// when enrichment supplied none. Failures are non-fatal; the kind is omitted.
func (p *Pipeline) synthesizeArtifacts(jobID string, pages []string, artifacts map[string]string) {
	builders := []struct {
		kind  constants.ArtifactKind
		build func([]string) ([]byte, error)
	}{
		{constants.ArtifactDocx, artifact.BuildDocx},
		{constants.ArtifactXlsx, artifact.BuildXlsx},
	}
	for _, b := range builders {
		data, err := b.build(pages)
		if err != nil {
			p.logger.Error("pipeline.artifact_build_failed", "job_id", jobID, "kind", b.kind, "error", err)
			continue
		}
		path, err := p.store.WriteBinaryArtifact(jobID, b.kind.Suffix(), data)
		if err != nil {
			p.logger.Error("pipeline.artifact_write_failed", "job_id", jobID, "kind", b.kind, "error", err)
			continue
		}
		artifacts[string(b.kind)] = path
	}
}

func joinPages(pages []string) string {
	var parts []string
	for _, page := range pages {
		if trimmed := strings.TrimSpace(page); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n\n")
}

func anyFailedAttempt(records []PageAttempts) bool {
	for _, record := range records {
		for _, attempt := range record.Attempts {
			if attempt.Status == enrich.AttemptFailed {
				return true
			}
		}
	}
	return false
}
