package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ryosukesatoh/arxiv-digest/internal/analyzer"
	"github.com/ryosukesatoh/arxiv-digest/internal/fetcher"
	"github.com/ryosukesatoh/arxiv-digest/internal/notion"
	"github.com/ryosukesatoh/arxiv-digest/internal/retry"
)

// Mock implementations

type mockFetcher struct {
	papers []fetcher.Paper
	err    error
	calls  int
}

func (m *mockFetcher) FetchRecent(ctx context.Context, daysBack int) ([]fetcher.Paper, error) {
	m.calls++
	return m.papers, m.err
}

type mockAnalyzer struct {
	ranked      []fetcher.Paper
	rankErr     error
	analyzed    []analyzer.AnalyzedPaper
	analyzeErrs []error
	summary     string
	summaryErr  error

	rankCalls    int
	analyzeCalls int
	summaryCalls int
}

func (m *mockAnalyzer) Rank(ctx context.Context, papers []fetcher.Paper, topN int) ([]fetcher.Paper, error) {
	m.rankCalls++
	return m.ranked, m.rankErr
}

func (m *mockAnalyzer) Analyze(ctx context.Context, papers []fetcher.Paper) ([]analyzer.AnalyzedPaper, []error) {
	m.analyzeCalls++
	return m.analyzed, m.analyzeErrs
}

func (m *mockAnalyzer) DailySummary(ctx context.Context, papers []analyzer.AnalyzedPaper, dateStr string) (string, error) {
	m.summaryCalls++
	return m.summary, m.summaryErr
}

type mockStore struct {
	pageIDs    []string
	addErrs    []error
	summaryID  string
	summaryErr error

	addCalls     int
	summaryCalls int
}

func (m *mockStore) AddPapers(ctx context.Context, papers []analyzer.AnalyzedPaper) ([]string, []error) {
	m.addCalls++
	return m.pageIDs, m.addErrs
}

func (m *mockStore) CreateDailySummary(ctx context.Context, dateStr, summaryContent string, papers []analyzer.AnalyzedPaper) (string, error) {
	m.summaryCalls++
	return m.summaryID, m.summaryErr
}

func samplePapers() []fetcher.Paper {
	return []fetcher.Paper{
		{ArxivID: "2511.00001v1", Title: "Test Paper", Authors: []string{"Author"}, Abstract: "Abstract text.", PrimaryCategory: "cs.AI"},
		{ArxivID: "2511.00002v1", Title: "Other Paper", Authors: []string{"Author"}, Abstract: "More text.", PrimaryCategory: "cs.LG"},
	}
}

func sampleAnalyzed() []analyzer.AnalyzedPaper {
	papers := samplePapers()
	return []analyzer.AnalyzedPaper{
		{Paper: papers[0], InnovationScore: 8, Summary: "s1"},
		{Paper: papers[1], InnovationScore: 6, Summary: "s2"},
	}
}

func newTestRunner(f *mockFetcher, a *mockAnalyzer, s *mockStore, dryRun bool) *Runner {
	r := New(1, 15, dryRun, f, a, s)
	r.retryConfig = retry.Config{MaxAttempts: 1, BaseDelay: time.Millisecond}
	return r
}

func TestRunSuccess(t *testing.T) {
	f := &mockFetcher{papers: samplePapers()}
	a := &mockAnalyzer{ranked: samplePapers(), analyzed: sampleAnalyzed(), summary: "# Digest"}
	s := &mockStore{pageIDs: []string{"p1", "p2"}, summaryID: "sum-1"}

	report := newTestRunner(f, a, s, false).Run(context.Background())

	if !report.Success() {
		t.Fatalf("Expected successful run, got errors: %v", report.Errors)
	}
	if report.RunID == "" {
		t.Error("Expected a run ID")
	}
	if report.PapersFetched != 2 || report.PapersAnalyzed != 2 || report.PapersAdded != 2 {
		t.Errorf("Unexpected counts: %+v", report)
	}
	if !report.SummaryCreated {
		t.Error("Expected summary created")
	}
	if a.rankCalls != 1 || a.analyzeCalls != 1 || a.summaryCalls != 1 || s.addCalls != 1 || s.summaryCalls != 1 {
		t.Errorf("Unexpected call counts: %+v %+v", a, s)
	}
}

func TestRunFetchErrorAborts(t *testing.T) {
	f := &mockFetcher{err: errors.New("unexpected status 404")}
	a := &mockAnalyzer{}
	s := &mockStore{}

	report := newTestRunner(f, a, s, false).Run(context.Background())

	if report.Success() {
		t.Fatal("Expected failed run")
	}
	if a.rankCalls != 0 {
		t.Error("Expected no ranking after fetch failure")
	}
}

func TestRunEmptyFetchStops(t *testing.T) {
	f := &mockFetcher{}
	a := &mockAnalyzer{}
	s := &mockStore{}

	report := newTestRunner(f, a, s, false).Run(context.Background())

	if !report.Success() {
		t.Fatalf("Empty fetch is not an error, got: %v", report.Errors)
	}
	if report.PapersFetched != 0 {
		t.Errorf("Expected 0 fetched, got %d", report.PapersFetched)
	}
	if a.rankCalls != 0 || s.addCalls != 0 {
		t.Error("Expected pipeline to stop after empty fetch")
	}
}

func TestRunRankErrorAborts(t *testing.T) {
	f := &mockFetcher{papers: samplePapers()}
	a := &mockAnalyzer{rankErr: errors.New("ranking call failed")}
	s := &mockStore{}

	report := newTestRunner(f, a, s, false).Run(context.Background())

	if report.Success() {
		t.Fatal("Expected failed run")
	}
	if a.analyzeCalls != 0 || s.addCalls != 0 {
		t.Error("Expected pipeline to stop after ranking failure")
	}
}

func TestRunAnalyzeErrorsRecordedButRunContinues(t *testing.T) {
	f := &mockFetcher{papers: samplePapers()}
	a := &mockAnalyzer{
		ranked:      samplePapers(),
		analyzed:    sampleAnalyzed(),
		analyzeErrs: []error{errors.New("analyze 2511.00001v1: boom")},
		summary:     "# Digest",
	}
	s := &mockStore{pageIDs: []string{"p1", "p2"}, summaryID: "sum-1"}

	report := newTestRunner(f, a, s, false).Run(context.Background())

	if len(report.Errors) != 1 {
		t.Fatalf("Expected 1 recorded error, got %v", report.Errors)
	}
	if s.addCalls != 1 || !report.SummaryCreated {
		t.Error("Expected persistence to proceed despite per-paper analysis failure")
	}
}

func TestRunDryRunSkipsPersistence(t *testing.T) {
	f := &mockFetcher{papers: samplePapers()}
	a := &mockAnalyzer{ranked: samplePapers(), analyzed: sampleAnalyzed()}
	s := &mockStore{}

	report := newTestRunner(f, a, s, true).Run(context.Background())

	if !report.Success() {
		t.Fatalf("Expected successful dry run, got: %v", report.Errors)
	}
	if s.addCalls != 0 || s.summaryCalls != 0 || a.summaryCalls != 0 {
		t.Error("Expected no persistence calls in dry-run mode")
	}
	if report.PapersAdded != 0 || report.SummaryCreated {
		t.Errorf("Unexpected persistence results: %+v", report)
	}
}

func TestRunMissingDatabaseIsWarningNotError(t *testing.T) {
	f := &mockFetcher{papers: samplePapers()}
	a := &mockAnalyzer{ranked: samplePapers(), analyzed: sampleAnalyzed(), summary: "# Digest"}
	s := &mockStore{addErrs: []error{notion.ErrNoDatabaseID}, summaryID: "sum-1"}

	report := newTestRunner(f, a, s, false).Run(context.Background())

	if !report.Success() {
		t.Fatalf("Missing database must degrade gracefully, got: %v", report.Errors)
	}
	if report.PapersAdded != 0 {
		t.Errorf("Expected 0 papers added, got %d", report.PapersAdded)
	}
	if !report.SummaryCreated {
		t.Error("Expected summary stage to still run")
	}
}

func TestRunMissingParentPageIsWarningNotError(t *testing.T) {
	f := &mockFetcher{papers: samplePapers()}
	a := &mockAnalyzer{ranked: samplePapers(), analyzed: sampleAnalyzed(), summary: "# Digest"}
	s := &mockStore{pageIDs: []string{"p1"}, summaryErr: notion.ErrNoParentPageID}

	report := newTestRunner(f, a, s, false).Run(context.Background())

	if !report.Success() {
		t.Fatalf("Missing parent page must degrade gracefully, got: %v", report.Errors)
	}
	if report.SummaryCreated {
		t.Error("Expected no summary page")
	}
}

func TestRunPersistenceFailureDoesNotAbort(t *testing.T) {
	f := &mockFetcher{papers: samplePapers()}
	a := &mockAnalyzer{ranked: samplePapers(), analyzed: sampleAnalyzed(), summary: "# Digest"}
	s := &mockStore{pageIDs: []string{"p1"}, addErrs: []error{errors.New("add paper 2511.00002v1: boom")}, summaryID: "sum-1"}

	report := newTestRunner(f, a, s, false).Run(context.Background())

	if report.Success() {
		t.Fatal("Expected persistence error recorded")
	}
	if len(report.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %v", report.Errors)
	}
	if report.PapersAdded != 1 {
		t.Errorf("Expected 1 paper added, got %d", report.PapersAdded)
	}
	if !report.SummaryCreated {
		t.Error("Expected summary stage to still run after a per-paper persistence failure")
	}
}

func TestRunSummaryGenerationFailureRecorded(t *testing.T) {
	f := &mockFetcher{papers: samplePapers()}
	a := &mockAnalyzer{ranked: samplePapers(), analyzed: sampleAnalyzed(), summaryErr: errors.New("daily summary call failed")}
	s := &mockStore{pageIDs: []string{"p1", "p2"}}

	report := newTestRunner(f, a, s, false).Run(context.Background())

	if report.Success() {
		t.Fatal("Expected failed run")
	}
	if s.summaryCalls != 0 {
		t.Error("Expected no page creation after summary generation failure")
	}
	if report.PapersAdded != 2 {
		t.Errorf("Expected papers already added to stay counted, got %d", report.PapersAdded)
	}
}
