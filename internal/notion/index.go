// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"context"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-scout/internal/ident"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// Index is the set of dedup keys already present in the store, rebuilt from
// the database on every run. Keys are canonical identifiers plus secondary
// title keys; both sides (read here, write in CreatePage callers) derive
// them with the ident package, so write-time and read-time normalization
// cannot drift apart.
type Index struct {
	keys map[string]struct{}
	rows int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{keys: make(map[string]struct{})}
}

// Contains reports whether the paper is already recorded, by canonical
// identifier first and normalized title second.
func (ix *Index) Contains(p types.PaperRecord) bool {
	if _, ok := ix.keys[p.Identifier]; ok {
		return true
	}
	if tk := ident.TitleKey(p.Title); tk != "title:" {
		if _, ok := ix.keys[tk]; ok {
			return true
		}
	}
	return false
}

// Add registers a paper persisted during the current run so an intra-run
// duplicate (the same paper surfacing under two keywords) is written once.
func (ix *Index) Add(p types.PaperRecord) {
	ix.keys[p.Identifier] = struct{}{}
	if tk := ident.TitleKey(p.Title); tk != "title:" {
		ix.keys[tk] = struct{}{}
	}
}

// Rows is the number of database rows the index was built from.
func (ix *Index) Rows() int { return ix.rows }

// queryPage is one page of database query results.
type queryPage struct {
	Results    []queryRow `json:"results"`
	HasMore    bool       `json:"has_more"`
	NextCursor string     `json:"next_cursor"`
}

// queryRow carries only the two properties the index needs.
type queryRow struct {
	Properties struct {
		Paper struct {
			Title []struct {
				PlainText string `json:"plain_text"`
			} `json:"title"`
		} `json:"Paper"`
		URL struct {
			URL string `json:"url"`
		} `json:"URL"`
	} `json:"properties"`
}

// LoadIndex pages through the whole database and collects the dedup keys of
// every row. Read-only. Any failure is a *PersistenceError and must abort
// the run before enrichment spends model quota.
func (c *Client) LoadIndex(ctx context.Context) (*Index, error) {
	ix := NewIndex()

	var cursor string
	for {
		payload := map[string]any{"page_size": 100}
		if cursor != "" {
			payload["start_cursor"] = cursor
		}

		resp, err := c.do(ctx, http.MethodPost, "/v1/databases/"+c.DatabaseID+"/query", payload)
		if err != nil {
			return nil, &PersistenceError{Op: "query", Err: err}
		}

		var page queryPage
		if err := decode(resp, &page); err != nil {
			return nil, &PersistenceError{Op: "query", Err: err}
		}

		for _, row := range page.Results {
			ix.rows++
			if u := row.Properties.URL.URL; u != "" {
				ix.keys[ident.Canonical(u)] = struct{}{}
			}
			var title strings.Builder
			for _, t := range row.Properties.Paper.Title {
				title.WriteString(t.PlainText)
			}
			if tk := ident.TitleKey(title.String()); tk != "title:" {
				ix.keys[tk] = struct{}{}
			}
		}

		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	return ix, nil
}
