// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RunResult accumulates counters for one pipeline invocation. Used for
// end-of-run reporting only; nothing persists between runs.
type RunResult struct {
	// RunID correlates log lines from one invocation.
	RunID string `json:"run_id" yaml:"run_id"`

	// Found is the number of candidates returned by the search backend.
	Found int `json:"found" yaml:"found"`

	// Duplicates is the number of candidates skipped because their
	// canonical identifier was already in the store.
	Duplicates int `json:"duplicates" yaml:"duplicates"`

	// Enriched is the number of papers that produced an analysis,
	// degraded ones included.
	Enriched int `json:"enriched" yaml:"enriched"`

	// Degraded counts papers persisted with a placeholder analysis after
	// the model output could not be parsed.
	Degraded int `json:"degraded" yaml:"degraded"`

	// EnrichmentSkips counts papers skipped because enrichment failed,
	// most commonly because every backend in the ladder was
	// quota-exhausted.
	EnrichmentSkips int `json:"enrichment_skips" yaml:"enrichment_skips"`

	// WriteFailures counts papers whose store write failed.
	WriteFailures int `json:"write_failures" yaml:"write_failures"`

	// Persisted is the number of records created in the store.
	Persisted int `json:"persisted" yaml:"persisted"`
}

// HasFailures reports whether any paper was lost to a skip or write error.
func (r RunResult) HasFailures() bool {
	return r.EnrichmentSkips > 0 || r.WriteFailures > 0
}

// New is the number of candidates that were not duplicates.
func (r RunResult) New() int {
	return r.Found - r.Duplicates
}
