// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Verdict is the binary relatedness classification for a paper.
type Verdict string

const (
	VerdictRelated   Verdict = "Related"
	VerdictUnrelated Verdict = "Unrelated"
)

// Valid reports whether v is one of the two accepted labels.
func (v Verdict) Valid() bool {
	return v == VerdictRelated || v == VerdictUnrelated
}

// Analysis is the structured output of the enrichment engine for one paper.
// Sub-sections the model could not produce are empty strings, never a
// failure.
type Analysis struct {
	// Verdict classifies the paper against the configured research area.
	Verdict Verdict `json:"verdict" yaml:"verdict"`

	// Summary is a short overall summary of the paper.
	Summary string `json:"summary" yaml:"summary"`

	// Motivation describes the problem the paper addresses.
	Motivation string `json:"motivation" yaml:"motivation"`

	// Differences describes how the work departs from prior art.
	Differences string `json:"differences" yaml:"differences"`

	// Contributions lists the paper's claimed contributions and novelty.
	Contributions string `json:"contributions" yaml:"contributions"`

	// Method describes the proposed approach.
	Method string `json:"method" yaml:"method"`

	// Results summarizes the reported experimental outcomes.
	Results string `json:"results" yaml:"results"`

	// Backend names the model that produced the analysis. Empty for a
	// degraded placeholder.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Degraded marks an analysis recorded after the model output could not
	// be parsed on two attempts; the verdict is Unrelated and all text
	// fields are empty so the paper still yields exactly one store record.
	Degraded bool `json:"degraded,omitempty" yaml:"degraded,omitempty"`
}
