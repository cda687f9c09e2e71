package pipeline

import (
	"fmt"

	"github.com/joseph-ayodele/ocr-jobs/internal/enrich"
)

// EnrichmentError means every provider in the chain was exhausted for some
// page. It carries the ordered attempt list for diagnostics; fatal for the
// job.
type EnrichmentError struct {
	Page     int
	Attempts []enrich.Attempt
	Cause    error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("llm post-processing failed on page %d: %v", e.Page, e.Cause)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Cause
}
