// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ident canonicalizes paper identifiers for dedup comparison.
// Write-time and read-time keys must come from the same functions here;
// a normalization mismatch accumulates silent duplicates in the store.
package ident

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// arxivPattern matches bare arXiv IDs: "2301.07041", "arXiv:2301.07041",
// "2301.07041v2".
var arxivPattern = regexp.MustCompile(`^(?:arXiv:)?(\d{4}\.\d{4,5})(?:v\d+)?$`)

// Canonical returns the dedup key for a raw source identifier or URL. The
// arXiv ID is extracted from abs/pdf URLs; version suffixes, query
// parameters, and fragments are stripped so two revisions of the same paper
// compare equal. Fails closed: when no stable form can be extracted the
// trimmed raw input is returned as the key, never an empty string for a
// non-empty input.
func Canonical(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	stripped := s
	if i := strings.IndexAny(stripped, "?#"); i >= 0 {
		stripped = stripped[:i]
	}
	stripped = strings.TrimRight(stripped, "/")

	if id := fromPath(stripped, "/abs/"); id != "" {
		return id
	}
	if id := fromPath(stripped, "/pdf/"); id != "" {
		return id
	}
	if m := arxivPattern.FindStringSubmatch(stripped); m != nil {
		return m[1]
	}
	return s
}

// TitleKey returns a secondary dedup key derived from the paper title. It
// guards against identifier-format drift between rows written by older
// revisions of the pipeline. Empty titles yield the bare "title:" prefix,
// which callers must not treat as a key.
func TitleKey(title string) string {
	return "title:" + normalizeTitle(title)
}

// fromPath extracts the identifier after a path segment such as "/abs/".
func fromPath(s, segment string) string {
	idx := strings.Index(s, segment)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSuffix(s[idx+len(segment):], ".pdf")
	return stripVersion(id)
}

// stripVersion removes a trailing revision suffix (e.g. "v1", "v2").
func stripVersion(id string) string {
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			return id[:vIdx]
		}
	}
	return id
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the
// title with collapsed whitespace.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
