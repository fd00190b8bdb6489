// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-scout pipeline.
package types

import "time"

// PaperRecord holds source metadata for one discovered paper. Immutable once
// fetched from the search backend.
type PaperRecord struct {
	// Identifier is the canonical ID used as the dedup key (arXiv ID with
	// any version suffix removed, or the full URL when no ID is parseable).
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the paper title with collapsed whitespace.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Date is the publication or last-updated date reported by the source.
	Date time.Time `json:"date" yaml:"date"`

	// Abstract is the raw abstract text.
	Abstract string `json:"abstract" yaml:"abstract"`

	// URL is the paper's landing page.
	URL string `json:"url" yaml:"url"`

	// Categories lists the source subject classifications (e.g. "cs.CL").
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
}
