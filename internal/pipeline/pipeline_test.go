package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paper-scout/internal/enrich"
	"github.com/pdiddy/paper-scout/internal/notion"
	"github.com/pdiddy/paper-scout/pkg/types"
)

// --- fakes ---

type fakeStore struct {
	index     *notion.Index
	loadErr   error
	createErr map[string]error
	created   []string
	loads     int
}

func (s *fakeStore) LoadIndex(context.Context) (*notion.Index, error) {
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.index, nil
}

func (s *fakeStore) CreatePage(_ context.Context, p types.PaperRecord, _ types.Analysis) error {
	if err := s.createErr[p.Identifier]; err != nil {
		return err
	}
	s.created = append(s.created, p.Identifier)
	return nil
}

type fakeSearcher struct {
	papers   []types.PaperRecord
	err      error
	gotQuery string
	calls    int
}

func (s *fakeSearcher) Search(_ context.Context, query string, _ types.SearchConfig) ([]types.PaperRecord, error) {
	s.calls++
	s.gotQuery = query
	return s.papers, s.err
}

type fakeEnricher struct {
	analyses map[string]types.Analysis
	errs     map[string]error
	calls    []string
}

func (e *fakeEnricher) Analyze(_ context.Context, p types.PaperRecord) (types.Analysis, error) {
	e.calls = append(e.calls, p.Identifier)
	if err := e.errs[p.Identifier]; err != nil {
		return types.Analysis{}, err
	}
	if a, ok := e.analyses[p.Identifier]; ok {
		return a, nil
	}
	return types.Analysis{Verdict: types.VerdictRelated, Summary: "summary of " + p.Identifier}, nil
}

func paper(id, title string) types.PaperRecord {
	return types.PaperRecord{
		Identifier: id,
		Title:      title,
		Date:       time.Date(2024, 5, 19, 0, 0, 0, 0, time.UTC),
		Abstract:   "abstract of " + id,
		URL:        "http://arxiv.org/abs/" + id + "v1",
	}
}

func testConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Search: types.SearchConfig{
			Keywords:     []string{"few-shot", "LLM"},
			LookbackDays: 1,
		},
	}
}

func newTestPipeline(store *fakeStore, searcher *fakeSearcher, enricher *fakeEnricher) *Pipeline {
	return New(store, searcher, enricher, testConfig(), nil)
}

// --- Run ---

func TestRunEndToEnd(t *testing.T) {
	known := paper("2405.00001", "A Known Paper")
	index := notion.NewIndex()
	index.Add(known)

	store := &fakeStore{index: index}
	searcher := &fakeSearcher{papers: []types.PaperRecord{
		paper("2405.11111", "First New Paper"),
		known,
		paper("2405.22222", "Second New Paper"),
	}}
	enricher := &fakeEnricher{}

	result, err := newTestPipeline(store, searcher, enricher).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if result.Found != 3 {
		t.Errorf("Found = %d, want 3", result.Found)
	}
	if result.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", result.Duplicates)
	}
	if result.Persisted != 2 {
		t.Errorf("Persisted = %d, want 2", result.Persisted)
	}
	if result.Enriched != 2 {
		t.Errorf("Enriched = %d, want 2", result.Enriched)
	}
	if result.HasFailures() {
		t.Errorf("HasFailures() = true: %+v", result)
	}

	// The duplicate must never reach the model.
	if len(enricher.calls) != 2 {
		t.Errorf("enricher calls = %v, want the two new papers", enricher.calls)
	}
	for _, id := range enricher.calls {
		if id == "2405.00001" {
			t.Error("known paper was sent for enrichment")
		}
	}
	if len(store.created) != 2 {
		t.Errorf("created = %v, want 2 pages", store.created)
	}
	if !strings.Contains(searcher.gotQuery, `ti:"few-shot"`) || !strings.Contains(searcher.gotQuery, `abs:"LLM"`) {
		t.Errorf("query = %q, want quoted keyword fields", searcher.gotQuery)
	}
}

func TestRunQuotaExhaustedSkipsPaperAndContinues(t *testing.T) {
	store := &fakeStore{index: notion.NewIndex()}
	searcher := &fakeSearcher{papers: []types.PaperRecord{
		paper("2405.11111", "Quota Victim"),
		paper("2405.22222", "Lucky Paper"),
	}}
	enricher := &fakeEnricher{errs: map[string]error{
		"2405.11111": &enrich.QuotaExhaustedError{Paper: "2405.11111"},
	}}

	result, err := newTestPipeline(store, searcher, enricher).Run(context.Background())
	if err != nil {
		t.Fatalf("Run should not fail on quota exhaustion: %v", err)
	}

	if result.EnrichmentSkips != 1 {
		t.Errorf("EnrichmentSkips = %d, want 1", result.EnrichmentSkips)
	}
	if result.Persisted != 1 {
		t.Errorf("Persisted = %d, want 1", result.Persisted)
	}
	if !result.HasFailures() {
		t.Error("HasFailures() should be true after a skip")
	}
	if len(store.created) != 1 || store.created[0] != "2405.22222" {
		t.Errorf("created = %v", store.created)
	}
}

func TestRunWriteFailureDoesNotAbort(t *testing.T) {
	store := &fakeStore{
		index:     notion.NewIndex(),
		createErr: map[string]error{"2405.11111": errors.New("HTTP 400")},
	}
	searcher := &fakeSearcher{papers: []types.PaperRecord{
		paper("2405.11111", "Rejected Paper"),
		paper("2405.22222", "Accepted Paper"),
	}}

	result, err := newTestPipeline(store, searcher, &fakeEnricher{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run should not fail on a write error: %v", err)
	}

	if result.WriteFailures != 1 {
		t.Errorf("WriteFailures = %d, want 1", result.WriteFailures)
	}
	if result.Persisted != 1 {
		t.Errorf("Persisted = %d, want 1", result.Persisted)
	}
	if result.Enriched != 2 {
		t.Errorf("Enriched = %d, want 2", result.Enriched)
	}
}

func TestRunIndexLoadFailureIsFatal(t *testing.T) {
	store := &fakeStore{loadErr: &notion.PersistenceError{Op: "query", Err: errors.New("HTTP 401")}}
	searcher := &fakeSearcher{}

	_, err := newTestPipeline(store, searcher, &fakeEnricher{}).Run(context.Background())
	if err == nil {
		t.Fatal("Run should fail when the index cannot be loaded")
	}
	var pe *notion.PersistenceError
	if !errors.As(err, &pe) {
		t.Errorf("err = %v, want wrapped *PersistenceError", err)
	}
	// No quota may be spent once the store is known to be unreachable.
	if searcher.calls != 0 {
		t.Error("search ran despite a fatal index failure")
	}
}

func TestRunSearchFailureIsFatal(t *testing.T) {
	store := &fakeStore{index: notion.NewIndex()}
	searcher := &fakeSearcher{err: &arxivUnavailable{}}
	enricher := &fakeEnricher{}

	result, err := newTestPipeline(store, searcher, enricher).Run(context.Background())
	if err == nil {
		t.Fatal("Run should fail when search fails")
	}
	if result.Found != 0 {
		t.Errorf("Found = %d, want 0", result.Found)
	}
	if len(enricher.calls) != 0 {
		t.Error("enrichment ran despite a fatal search failure")
	}
}

type arxivUnavailable struct{}

func (*arxivUnavailable) Error() string { return "search backend unavailable" }

func TestRunIntraRunDuplicateWrittenOnce(t *testing.T) {
	dup := paper("2405.11111", "Seen Twice")
	store := &fakeStore{index: notion.NewIndex()}
	searcher := &fakeSearcher{papers: []types.PaperRecord{dup, dup}}

	result, err := newTestPipeline(store, searcher, &fakeEnricher{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Persisted != 1 {
		t.Errorf("Persisted = %d, want 1", result.Persisted)
	}
	if result.Duplicates != 1 {
		t.Errorf("Duplicates = %d, want 1", result.Duplicates)
	}
	if len(store.created) != 1 {
		t.Errorf("created = %v, want a single page", store.created)
	}
}

func TestRunSecondRunWritesNothing(t *testing.T) {
	store := &fakeStore{index: notion.NewIndex()}
	searcher := &fakeSearcher{papers: []types.PaperRecord{
		paper("2405.11111", "First Paper"),
		paper("2405.22222", "Second Paper"),
	}}
	p := newTestPipeline(store, searcher, &fakeEnricher{})

	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.Persisted != 2 {
		t.Fatalf("first run Persisted = %d, want 2", first.Persisted)
	}

	// The store index carries over, so an unchanged corpus dedups fully.
	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if second.Persisted != 0 {
		t.Errorf("second run Persisted = %d, want 0", second.Persisted)
	}
	if second.Duplicates != 2 {
		t.Errorf("second run Duplicates = %d, want 2", second.Duplicates)
	}
	if len(store.created) != 2 {
		t.Errorf("created = %v, want the first run's two pages only", store.created)
	}
}

func TestRunNoKeywordsIsFatal(t *testing.T) {
	p := New(&fakeStore{index: notion.NewIndex()}, &fakeSearcher{}, &fakeEnricher{}, types.PipelineConfig{}, nil)
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("Run should fail with no keywords configured")
	}
}

func TestRunDegradedAnalysisIsPersistedAndCounted(t *testing.T) {
	store := &fakeStore{index: notion.NewIndex()}
	searcher := &fakeSearcher{papers: []types.PaperRecord{paper("2405.11111", "Garbled Output")}}
	enricher := &fakeEnricher{analyses: map[string]types.Analysis{
		"2405.11111": {Verdict: types.VerdictUnrelated, Degraded: true, Backend: "gemini-2.5-pro"},
	}}

	result, err := newTestPipeline(store, searcher, enricher).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Degraded != 1 {
		t.Errorf("Degraded = %d, want 1", result.Degraded)
	}
	if result.Persisted != 1 {
		t.Errorf("Persisted = %d, want 1: degraded analyses still get a record", result.Persisted)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &fakeStore{index: notion.NewIndex()}
	searcher := &fakeSearcher{papers: []types.PaperRecord{paper("2405.11111", "Never Processed")}}
	enricher := &fakeEnricher{}

	_, err := newTestPipeline(store, searcher, enricher).Run(ctx)
	if err == nil {
		t.Fatal("Run should surface context cancellation")
	}
	if len(enricher.calls) != 0 {
		t.Error("enrichment ran after cancellation")
	}
}
