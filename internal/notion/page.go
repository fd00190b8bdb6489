// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// richTextLimit is the store's per-block character ceiling; longer values
// are split across blocks.
const richTextLimit = 2000

// CreatePage creates exactly one database row for the paper. Creation is
// unconditional, never an upsert: dedup is the caller's responsibility,
// enforced upstream by the index check.
func (c *Client) CreatePage(ctx context.Context, paper types.PaperRecord, analysis types.Analysis) error {
	payload := map[string]any{
		"parent":     map[string]string{"database_id": c.DatabaseID},
		"properties": pageProperties(paper, analysis),
	}

	resp, err := c.do(ctx, http.MethodPost, "/v1/pages", payload)
	if err != nil {
		return fmt.Errorf("creating page for %s: %w", paper.Identifier, err)
	}
	if err := decode(resp, nil); err != nil {
		return fmt.Errorf("creating page for %s: %w", paper.Identifier, err)
	}

	// Pause between writes to stay under the API request-rate ceiling.
	if c.WriteDelay > 0 {
		if err := c.sleep(ctx, c.WriteDelay); err != nil {
			return err
		}
	}
	return nil
}

// pageProperties maps the record and its analysis onto the database
// columns. The Abstract column carries the model's summary when enrichment
// produced one, falling back to the raw abstract for degraded records.
func pageProperties(paper types.PaperRecord, analysis types.Analysis) map[string]any {
	abstract := analysis.Summary
	if abstract == "" {
		abstract = paper.Abstract
	}

	author := strings.Join(paper.Authors, ", ")
	if author == "" {
		author = "arXiv"
	}

	props := map[string]any{
		"Paper": map[string]any{"title": []textBlock{newTextBlock(paper.Title)}},
		"Relatedness": map[string]any{
			"select": map[string]string{"name": string(analysis.Verdict)},
		},
		"URL": map[string]any{"url": paper.URL},
	}
	if !paper.Date.IsZero() {
		props["Date"] = map[string]any{
			"date": map[string]string{"start": paper.Date.Format("2006-01-02")},
		}
	}

	for name, text := range map[string]string{
		"Abstract":                    abstract,
		"Author":                      author,
		"Motivation":                  analysis.Motivation,
		"Differences from Prior Work": analysis.Differences,
		"Contributions and Novelty":   analysis.Contributions,
		"Proposed Method":             analysis.Method,
		"Results":                     analysis.Results,
	} {
		props[name] = map[string]any{"rich_text": richTextBlocks(text)}
	}

	return props
}

// textBlock is one write-side rich-text element.
type textBlock struct {
	Text textContent `json:"text"`
}

type textContent struct {
	Content string `json:"content"`
}

func newTextBlock(s string) textBlock {
	return textBlock{Text: textContent{Content: s}}
}

// richTextBlocks splits text into blocks under the per-block limit. An
// empty value still produces an empty array, which clears nothing on
// create but keeps the payload shape uniform.
func richTextBlocks(text string) []textBlock {
	if text == "" {
		return []textBlock{}
	}

	var blocks []textBlock
	for len(text) > richTextLimit {
		cut := richTextLimit
		// Do not split a multi-byte rune across blocks.
		for cut > 0 && text[cut]&0xC0 == 0x80 {
			cut--
		}
		blocks = append(blocks, newTextBlock(text[:cut]))
		text = text[cut:]
	}
	return append(blocks, newTextBlock(text))
}
