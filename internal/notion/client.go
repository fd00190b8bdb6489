// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notion reads and writes the external paper database through the
// Notion REST API. The database is the only cross-run state: the dedup
// index is rebuilt from it on every run and nothing is cached locally.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/paper-scout/internal/httputil"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// notionAPIBase is the Notion REST API root. Declared as a var so tests can
// substitute an httptest server.
var notionAPIBase = "https://api.notion.com"

// notionVersion pins the REST API revision all requests are made against.
const notionVersion = "2022-06-28"

const (
	defaultTimeout    = 30 * time.Second
	defaultWriteDelay = 350 * time.Millisecond
)

// PersistenceError reports that the store could not be read or
// authenticated. Fatal at index-load time: the run aborts before any
// enrichment cost is incurred.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("notion %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Client talks to one Notion database.
type Client struct {
	Token      string
	DatabaseID string
	HTTPClient *http.Client
	UserAgent  string

	// WriteDelay is the pause after each page creation.
	WriteDelay time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient builds a Client from the store configuration, applying
// defaults for timeout and write pacing.
func NewClient(cfg types.StoreConfig) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("store auth token required")
	}
	if strings.TrimSpace(cfg.DatabaseID) == "" {
		return nil, fmt.Errorf("store database ID required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	delay := cfg.WriteDelay
	if delay <= 0 {
		delay = defaultWriteDelay
	}

	return &Client{
		Token:      cfg.Token,
		DatabaseID: cfg.DatabaseID,
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  cfg.UserAgent,
		WriteDelay: delay,
		sleep:      sleepCtx,
	}, nil
}

// do sends one authenticated API request. Rate-limit and transient server
// failures retry with bounded backoff before the response is returned.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, notionAPIBase+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return httputil.DoWithRetry(ctx, client, req, 0)
}

// decode reads a 2xx JSON body into v, turning any other status into an
// error carrying a body snippet. v may be nil when only the status matters.
func decode(resp *http.Response, v any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet)
	}

	if v == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
