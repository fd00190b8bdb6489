// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv queries the arXiv Atom API for recently updated papers.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/internal/ident"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	defaultMaxResults   = 50
	defaultLookbackDays = 1
)

// SourceUnavailableError indicates the search backend stayed unreachable or
// failing after retry exhaustion. Fatal for the run: a partial day is
// preferable to silently skipping days.
type SourceUnavailableError struct {
	Err error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("arXiv unavailable: %v", e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// Client fetches candidate papers from arXiv.
type Client struct {
	Client *http.Client

	// Now returns the current time for lookback-cutoff computation.
	// Tests substitute a fixed clock; nil means time.Now.
	Now func() time.Time
}

// Search executes the built query against arXiv, windowed to the lookback
// period, and returns candidate records. Entries older than the cutoff or
// outside the category allow-list are filtered client-side; the feed itself
// is only sorted, not windowed, by the API. Transient failures retry with
// bounded backoff; exhaustion returns a *SourceUnavailableError.
func (c *Client) Search(ctx context.Context, query string, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	lookback := cfg.LookbackDays
	if lookback <= 0 {
		lookback = defaultLookbackDays
	}

	params := url.Values{
		"search_query": {query},
		"start":        {"0"},
		"max_results":  {fmt.Sprintf("%d", maxResults)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return nil, &SourceUnavailableError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
		if httputil.Retryable(resp.StatusCode) {
			// DoWithRetry already exhausted its attempts on this status.
			return nil, &SourceUnavailableError{Err: err}
		}
		return nil, err
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	cutoff := now().AddDate(0, 0, -lookback)

	var records []types.PaperRecord
	for _, entry := range feed.Entries {
		date := entryDate(entry)
		if !date.IsZero() && date.Before(cutoff) {
			continue
		}
		if !categoryAllowed(entry, cfg.Categories) {
			continue
		}

		canonical := ident.Canonical(entry.ID)
		pageURL := strings.TrimSpace(entry.ID)
		if pageURL == "" {
			pageURL = entry.alternateLink()
			canonical = ident.Canonical(pageURL)
		}
		if canonical == "" {
			// No identity at all: feed corruption, nothing to dedup on.
			continue
		}

		r := types.PaperRecord{
			Identifier: canonical,
			Title:      collapseSpace(entry.Title),
			Abstract:   collapseSpace(entry.Summary),
			Date:       date,
			URL:        pageURL,
		}
		for _, a := range entry.Authors {
			r.Authors = append(r.Authors, strings.TrimSpace(a.Name))
		}
		for _, cat := range entry.Categories {
			r.Categories = append(r.Categories, cat.Term)
		}

		records = append(records, r)
	}
	return records, nil
}

// entryDate prefers the updated timestamp, falling back to published.
func entryDate(e arxivEntry) time.Time {
	for _, raw := range []string{e.Updated, e.Published} {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
			return t
		}
	}
	return time.Time{}
}

// categoryAllowed reports whether any of the entry's subject categories is
// in the allow-list. An empty allow-list accepts everything.
func categoryAllowed(e arxivEntry, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, cat := range e.Categories {
		for _, a := range allowed {
			if cat.Term == a {
				return true
			}
		}
	}
	return false
}

// collapseSpace normalizes runs of whitespace to single spaces. Atom feeds
// hard-wrap titles and abstracts.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Updated    string          `xml:"updated"`
	Published  string          `xml:"published"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
	Links      []arxivLink     `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

type arxivLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// alternateLink returns the entry's abs-page link.
func (e arxivEntry) alternateLink() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" || l.Rel == "" {
			return l.Href
		}
	}
	return ""
}
