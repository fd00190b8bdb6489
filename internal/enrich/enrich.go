// Package enrich produces a structured analysis for each new paper by
// calling a prioritized ladder of generative-model backends, pacing calls
// against each backend's nominal rate budget and falling back on quota
// errors.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/paper-scout/pkg/types"
)

// DefaultLadder is the built-in model fallback ladder with free-tier
// budgets, tried in order.
var DefaultLadder = []types.BackendBudget{
	{Model: "gemini-2.5-pro", RPM: 5, RPD: 100},
	{Model: "gemini-2.5-flash", RPM: 10, RPD: 250},
	{Model: "gemini-2.0-flash", RPM: 15, RPD: 200},
	{Model: "gemini-2.5-flash-lite", RPM: 15, RPD: 1000},
}

// Generator abstracts one generative-model call so tests can supply mocks.
// Implementations return the raw response text; parsing and retry policy
// belong to the Engine.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// QuotaExhaustedError reports that every backend in the ladder was spent
// before the paper could be analyzed. The paper is skipped, not the run.
type QuotaExhaustedError struct {
	Paper string
}

func (e *QuotaExhaustedError) Error() string {
	return fmt.Sprintf("all model backends quota-exhausted at paper %s", e.Paper)
}

// backendState tracks pacing bookkeeping for one ladder entry.
type backendState struct {
	lastCall time.Time
	calls    int
	spent    bool
}

// Engine holds the ladder, its pacing state, and the sticky cursor marking
// the current backend. A backend that hits its quota stays skipped for the
// rest of the run. Not safe for concurrent use: the pipeline calls Analyze
// from a single goroutine so wall-clock pacing stays truthful.
type Engine struct {
	gen      Generator
	research string
	ladder   []types.BackendBudget
	state    []backendState
	current  int
	w        io.Writer

	// injectable clock and sleeper, so pacing tests run instantly
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine builds an Engine over gen. An empty cfg.Backends selects
// DefaultLadder. Progress lines are written to w.
func NewEngine(gen Generator, cfg types.EnrichConfig, w io.Writer) *Engine {
	ladder := cfg.Backends
	if len(ladder) == 0 {
		ladder = DefaultLadder
	}
	if w == nil {
		w = io.Discard
	}
	return &Engine{
		gen:      gen,
		research: cfg.ResearchArea,
		ladder:   ladder,
		state:    make([]backendState, len(ladder)),
		w:        w,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Analyze produces the Analysis for one paper with a single request per
// attempt. Quota errors advance to the next backend without losing the
// paper; malformed output earns one retry with a stricter prompt, then a
// degraded Unrelated analysis so the paper still yields a store record.
func (e *Engine) Analyze(ctx context.Context, paper types.PaperRecord) (types.Analysis, error) {
	strict := false
	for {
		idx, ok := e.pick()
		if !ok {
			return types.Analysis{}, &QuotaExhaustedError{Paper: paper.Identifier}
		}
		model := e.ladder[idx].Model

		if err := e.pace(ctx, idx); err != nil {
			return types.Analysis{}, err
		}

		prompt, err := renderPrompt(paper, e.research, strict)
		if err != nil {
			return types.Analysis{}, fmt.Errorf("rendering prompt: %w", err)
		}

		raw, err := e.gen.Generate(ctx, model, prompt)
		e.state[idx].lastCall = e.now()
		e.state[idx].calls++

		if err != nil {
			var qe *QuotaError
			if errors.As(err, &qe) {
				e.state[idx].spent = true
				fmt.Fprintf(e.w, "model %s quota-exhausted, falling back\n", model)
				continue
			}
			return types.Analysis{}, fmt.Errorf("model %s: %w", model, err)
		}

		analysis, perr := parseAnalysis(raw)
		if perr != nil {
			if !strict {
				strict = true
				fmt.Fprintf(e.w, "model %s output unparseable (%v), retrying with strict prompt\n", model, perr)
				continue
			}
			fmt.Fprintf(e.w, "model %s output unparseable twice, recording degraded analysis\n", model)
			return types.Analysis{Verdict: types.VerdictUnrelated, Degraded: true}, nil
		}

		analysis.Backend = model
		return analysis, nil
	}
}

// pick returns the first usable backend at or after the sticky cursor,
// marking daily-budget exhaustion as it scans.
func (e *Engine) pick() (int, bool) {
	for i := e.current; i < len(e.ladder); i++ {
		b := e.ladder[i]
		st := &e.state[i]
		if st.spent {
			continue
		}
		if b.RPD > 0 && st.calls >= b.RPD {
			st.spent = true
			fmt.Fprintf(e.w, "model %s daily budget spent (%d calls)\n", b.Model, st.calls)
			continue
		}
		e.current = i
		return i, true
	}
	return 0, false
}

// pace sleeps out whatever remains of the backend's minimum call interval,
// derived from its per-minute budget. Cooperative pacing only; the API's
// own limiter is still the backstop.
func (e *Engine) pace(ctx context.Context, idx int) error {
	rpm := e.ladder[idx].RPM
	if rpm <= 0 {
		return nil
	}
	last := e.state[idx].lastCall
	if last.IsZero() {
		return nil
	}
	wait := time.Minute/time.Duration(rpm) - e.now().Sub(last)
	if wait <= 0 {
		return nil
	}
	return e.sleep(ctx, wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// modelResponse is the JSON shape requested from the model.
type modelResponse struct {
	Verdict       string `json:"verdict"`
	Summary       string `json:"summary"`
	Motivation    string `json:"motivation"`
	Differences   string `json:"differences_from_prior_work"`
	Contributions string `json:"contributions_and_novelty"`
	Method        string `json:"proposed_method"`
	Results       string `json:"results"`
}

// parseAnalysis decodes the model's JSON into an Analysis. Sub-sections the
// model omitted decode to empty strings. A verdict outside the two labels
// is a parse failure so the caller can retry strictly.
func parseAnalysis(raw string) (types.Analysis, error) {
	var resp modelResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &resp); err != nil {
		return types.Analysis{}, fmt.Errorf("decoding model response: %w", err)
	}

	verdict, err := coerceVerdict(resp.Verdict)
	if err != nil {
		return types.Analysis{}, err
	}

	return types.Analysis{
		Verdict:       verdict,
		Summary:       strings.TrimSpace(resp.Summary),
		Motivation:    strings.TrimSpace(resp.Motivation),
		Differences:   strings.TrimSpace(resp.Differences),
		Contributions: strings.TrimSpace(resp.Contributions),
		Method:        strings.TrimSpace(resp.Method),
		Results:       strings.TrimSpace(resp.Results),
	}, nil
}

// coerceVerdict maps the model's label onto the two accepted values,
// tolerating case and surrounding whitespace.
func coerceVerdict(s string) (types.Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "related":
		return types.VerdictRelated, nil
	case "unrelated":
		return types.VerdictUnrelated, nil
	}
	return "", fmt.Errorf("invalid verdict %q", s)
}

// stripFences removes a Markdown code-fence wrapper. Models sometimes wrap
// JSON despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
