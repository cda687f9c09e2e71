package enrich

// DefaultConfidenceThreshold below which pages are sent for enrichment.
const DefaultConfidenceThreshold = 0.85

// Decision decides, per page, whether LLM enrichment should run at all.
// Enrichment is reserved for low-confidence or structurally incomplete pages
// to bound cost and latency.
type Decision struct {
	Threshold float64 // <=0 -> DefaultConfidenceThreshold
}

// ShouldEnrich reports whether the page warrants an LLM pass. An unknown
// confidence always does; so does any table descriptor flagged incomplete.
func (d Decision) ShouldEnrich(confidence *float64, layout map[string]any, enabled bool) bool {
	if !enabled {
		return false
	}
	if confidence == nil {
		return true
	}
	threshold := d.Threshold
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if *confidence < threshold {
		return true
	}
	return tableNeedsCompletion(layout)
}

func tableNeedsCompletion(layout map[string]any) bool {
	tables, ok := layout["tables"].([]any)
	if !ok {
		return false
	}
	for _, t := range tables {
		descriptor, ok := t.(map[string]any)
		if !ok {
			continue
		}
		for _, flag := range []string{"missing_cells", "has_gaps", "needs_completion"} {
			if truthy(descriptor[flag]) {
				return true
			}
		}
	}
	return false
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case string:
		return x != "" && x != "0" && x != "false"
	}
	return false
}
