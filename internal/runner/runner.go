package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ryosukesatoh/arxiv-digest/internal/analyzer"
	"github.com/ryosukesatoh/arxiv-digest/internal/fetcher"
	"github.com/ryosukesatoh/arxiv-digest/internal/notion"
	"github.com/ryosukesatoh/arxiv-digest/internal/retry"
)

// Analyzer is the ranking-and-analysis surface the pipeline consumes.
type Analyzer interface {
	Rank(ctx context.Context, papers []fetcher.Paper, topN int) ([]fetcher.Paper, error)
	Analyze(ctx context.Context, papers []fetcher.Paper) ([]analyzer.AnalyzedPaper, []error)
	DailySummary(ctx context.Context, papers []analyzer.AnalyzedPaper, dateStr string) (string, error)
}

// Store is the persistence surface the pipeline consumes.
type Store interface {
	AddPapers(ctx context.Context, papers []analyzer.AnalyzedPaper) ([]string, []error)
	CreateDailySummary(ctx context.Context, dateStr, summaryContent string, papers []analyzer.AnalyzedPaper) (string, error)
}

// Report accumulates per-run statistics and errors. The run counts as
// successful when the error list is empty.
type Report struct {
	RunID          string
	Date           string
	PapersFetched  int
	PapersAnalyzed int
	PapersAdded    int
	SummaryCreated bool
	Errors         []string
}

func (r *Report) addError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("ERROR: %s", msg)
	r.Errors = append(r.Errors, msg)
}

// Success reports whether the run finished without any recorded error.
func (r *Report) Success() bool {
	return len(r.Errors) == 0
}

// Runner orchestrates the fetch -> rank -> analyze -> persist pipeline.
// Everything runs sequentially; the report is the only mutable state.
type Runner struct {
	daysBack    int
	maxPapers   int
	dryRun      bool
	fetcher     fetcher.Fetcher
	analyzer    Analyzer
	store       Store
	retryConfig retry.Config
}

func New(daysBack, maxPapers int, dryRun bool, f fetcher.Fetcher, a Analyzer, s Store) *Runner {
	return &Runner{
		daysBack:    daysBack,
		maxPapers:   maxPapers,
		dryRun:      dryRun,
		fetcher:     f,
		analyzer:    a,
		store:       s,
		retryConfig: retry.DefaultConfig(),
	}
}

// Run executes the full pipeline once and always returns a report, even
// when a stage aborts the run.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		RunID: uuid.NewString(),
		Date:  time.Now().Format("2006-01-02"),
	}

	log.Printf("Starting daily pipeline %s for %s (days_back=%d max_papers=%d dry_run=%v)",
		report.RunID, report.Date, r.daysBack, r.maxPapers, r.dryRun)

	// Step 1: fetch papers.
	log.Println("Fetching papers...")
	var papers []fetcher.Paper
	err := retry.WithBackoff(ctx, r.retryConfig, func(ctx context.Context) error {
		var fetchErr error
		papers, fetchErr = r.fetcher.FetchRecent(ctx, r.daysBack)
		return fetchErr
	})
	if err != nil {
		report.addError("fetch papers: %v", err)
		return report
	}
	report.PapersFetched = len(papers)
	log.Printf("Fetched %d unique papers", len(papers))

	if len(papers) == 0 {
		log.Println("No papers found. Exiting.")
		return report
	}

	// Step 2: rank.
	log.Println("Ranking papers...")
	ranked, err := r.analyzer.Rank(ctx, papers, r.maxPapers)
	if err != nil {
		report.addError("rank papers: %v", err)
		return report
	}
	log.Printf("Selected %d most innovative papers for detailed analysis", len(ranked))

	// Step 3: analyze.
	log.Println("Analyzing papers...")
	analyzed, analyzeErrs := r.analyzer.Analyze(ctx, ranked)
	for _, aerr := range analyzeErrs {
		report.addError("%v", aerr)
	}
	report.PapersAnalyzed = len(analyzed)

	if len(analyzed) == 0 {
		log.Println("No papers passed analysis. Exiting.")
		return report
	}

	logScoreboard(analyzed)

	if r.dryRun {
		log.Println("DRY RUN: Skipping Notion operations")
		return report
	}

	// Step 4: persist paper records.
	log.Println("Adding papers to Notion database...")
	pageIDs, persistErrs := r.store.AddPapers(ctx, analyzed)
	for _, perr := range persistErrs {
		if errors.Is(perr, notion.ErrNoDatabaseID) {
			log.Println("WARNING: no database configured, papers will not be added")
			continue
		}
		report.addError("%v", perr)
	}
	report.PapersAdded = len(pageIDs)
	log.Printf("Added %d new papers to database", len(pageIDs))

	// Step 5: create the daily summary page.
	log.Println("Creating daily summary page...")
	summaryContent, err := r.analyzer.DailySummary(ctx, analyzed, report.Date)
	if err != nil {
		report.addError("generate daily summary: %v", err)
		return report
	}

	pageID, err := r.store.CreateDailySummary(ctx, report.Date, summaryContent, analyzed)
	switch {
	case errors.Is(err, notion.ErrNoParentPageID):
		log.Println("WARNING: no parent page configured, daily summary will not be created")
	case err != nil:
		report.addError("%v", err)
	default:
		report.SummaryCreated = true
		log.Printf("Created summary page: %s", pageID)
	}

	return report
}

func logScoreboard(analyzed []analyzer.AnalyzedPaper) {
	log.Println("Top papers by innovation score:")
	top := analyzed
	if len(top) > 5 {
		top = top[:5]
	}
	for i, ap := range top {
		title := ap.Paper.Title
		if runes := []rune(title); len(runes) > 60 {
			title = string(runes[:60]) + "..."
		}
		log.Printf("  %d. [%d/10] %s", i+1, ap.InnovationScore, title)
	}
}
