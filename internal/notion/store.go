package notion

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ryosukesatoh/arxiv-digest/internal/analyzer"
	"github.com/ryosukesatoh/arxiv-digest/internal/category"
	"github.com/ryosukesatoh/arxiv-digest/internal/retry"
)

// Notion caps rich_text property values at 2000 characters and page
// children at 100 blocks.
const (
	maxRichTextLen = 2000
	maxBlocks      = 100
	maxIndexPapers = 20
	maxTitleLen    = 80
)

// ErrNoDatabaseID and ErrNoParentPageID signal a missing destination;
// the runner downgrades them to warnings instead of failing the run.
var (
	ErrNoDatabaseID   = errors.New("notion: database ID is not configured")
	ErrNoParentPageID = errors.New("notion: parent page ID is not configured")
)

// Store persists analyzed papers into a Notion database and creates the
// daily summary page. Paper records are keyed by arXiv ID: re-running
// the pipeline on the same day never duplicates a record.
type Store struct {
	client       *Client
	databaseID   string
	parentPageID string
	categories   *category.Table
	retryConfig  retry.Config
}

func NewStore(client *Client, databaseID, parentPageID string, categories *category.Table) *Store {
	return &Store{
		client:       client,
		databaseID:   databaseID,
		parentPageID: parentPageID,
		categories:   categories,
		retryConfig:  retry.DefaultConfig(),
	}
}

// AddPaper upserts a single analyzed paper. When a record with the same
// arXiv ID already exists the call is a no-op and created is false.
func (s *Store) AddPaper(ctx context.Context, ap analyzer.AnalyzedPaper) (pageID string, created bool, err error) {
	if s.databaseID == "" {
		return "", false, ErrNoDatabaseID
	}

	exists, err := s.paperExists(ctx, ap.Paper.ArxivID)
	if err != nil {
		return "", false, err
	}
	if exists {
		log.Printf("Paper %s already exists, skipping...", ap.Paper.ArxivID)
		return "", false, nil
	}

	page := PageRequest{
		Parent:     Parent{DatabaseID: s.databaseID},
		Properties: s.paperProperties(ap),
	}

	err = retry.WithBackoff(ctx, s.retryConfig, func(ctx context.Context) error {
		var callErr error
		pageID, callErr = s.client.CreatePage(ctx, page)
		return callErr
	})
	if err != nil {
		return "", false, fmt.Errorf("add paper %s: %w", ap.Paper.ArxivID, err)
	}

	return pageID, true, nil
}

// AddPapers upserts every paper in order. One paper's failure never
// aborts the batch; failures are logged and returned for the run report.
func (s *Store) AddPapers(ctx context.Context, papers []analyzer.AnalyzedPaper) ([]string, []error) {
	if s.databaseID == "" {
		return nil, []error{ErrNoDatabaseID}
	}

	var pageIDs []string
	var errs []error

	for _, ap := range papers {
		pageID, created, err := s.AddPaper(ctx, ap)
		if err != nil {
			log.Printf("Error adding paper %s: %v", ap.Paper.ArxivID, err)
			errs = append(errs, err)
			continue
		}
		if created {
			log.Printf("Added paper: %s", truncate(ap.Paper.Title, 50))
			pageIDs = append(pageIDs, pageID)
		}
	}

	return pageIDs, errs
}

// CreateDailySummary converts the digest narrative into blocks, appends
// an index of the analyzed papers, and creates one summary page under
// the configured parent.
func (s *Store) CreateDailySummary(ctx context.Context, dateStr, summaryContent string, papers []analyzer.AnalyzedPaper) (string, error) {
	if s.parentPageID == "" {
		return "", ErrNoParentPageID
	}

	blocks := MarkdownToBlocks(summaryContent)
	blocks = append(blocks, textBlock("heading_2", "Papers Analyzed Today"), dividerBlock())

	indexed := papers
	if len(indexed) > maxIndexPapers {
		indexed = indexed[:maxIndexPapers]
	}
	for _, ap := range indexed {
		blocks = append(blocks, paperIndexBlock(ap))
	}

	if len(blocks) > maxBlocks {
		blocks = blocks[:maxBlocks]
	}

	page := PageRequest{
		Parent: Parent{PageID: s.parentPageID},
		Icon:   &Icon{Type: "emoji", Emoji: "📚"},
		Properties: map[string]any{
			"title": titleProperty(fmt.Sprintf("Daily Summary - %s", dateStr)),
		},
		Children: blocks,
	}

	var pageID string
	err := retry.WithBackoff(ctx, s.retryConfig, func(ctx context.Context) error {
		var callErr error
		pageID, callErr = s.client.CreatePage(ctx, page)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("create daily summary: %w", err)
	}

	log.Printf("Created daily summary page for %s", dateStr)
	return pageID, nil
}

func (s *Store) paperExists(ctx context.Context, arxivID string) (bool, error) {
	filter := map[string]any{
		"property":  "arXiv ID",
		"rich_text": map[string]string{"equals": arxivID},
	}

	var results []PageRef
	err := retry.WithBackoff(ctx, s.retryConfig, func(ctx context.Context) error {
		var callErr error
		results, callErr = s.client.QueryDatabase(ctx, s.databaseID, filter)
		return callErr
	})
	if err != nil {
		return false, fmt.Errorf("query paper %s: %w", arxivID, err)
	}

	return len(results) > 0, nil
}

func (s *Store) paperProperties(ap analyzer.AnalyzedPaper) map[string]any {
	authors := ""
	for i, a := range ap.Paper.Authors {
		if i > 0 {
			authors += ", "
		}
		authors += a
	}

	return map[string]any{
		"Title":                  titleProperty(truncate(ap.Paper.Title, maxRichTextLen)),
		"Authors":                richTextProperty(truncate(authors, maxRichTextLen)),
		"Category":               selectProperty(s.categories.Select(ap.Paper.PrimaryCategory)),
		"Date":                   dateProperty(ap.Paper.Published.Format("2006-01-02")),
		"Innovation Score":       numberProperty(ap.InnovationScore),
		"Summary":                richTextProperty(truncate(ap.Summary, maxRichTextLen)),
		"Key Innovation":         richTextProperty(truncate(ap.KeyInnovation, maxRichTextLen)),
		"Implementation Details": richTextProperty(truncate(ap.ImplementationDetails, maxRichTextLen)),
		"arXiv Link":             urlProperty(ap.Paper.ArxivURL),
		"PDF Link":               urlProperty(ap.Paper.PDFURL),
		"arXiv ID":               richTextProperty(ap.Paper.ArxivID),
	}
}

// paperIndexBlock renders one index entry: the bolded score followed by
// the linked, length-capped title.
func paperIndexBlock(ap analyzer.AnalyzedPaper) Block {
	title := ap.Paper.Title
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen]) + "..."
	}

	return Block{
		Object: "block",
		Type:   "bulleted_list_item",
		BulletedListItem: &RichTextBody{
			RichText: []RichText{
				{
					Type:        "text",
					Text:        TextSpan{Content: fmt.Sprintf("[%d/10] ", ap.InnovationScore)},
					Annotations: &Annotations{Bold: true},
				},
				{
					Type: "text",
					Text: TextSpan{Content: title, Link: &Link{URL: ap.Paper.ArxivURL}},
				},
			},
		},
	}
}

// Property payload helpers.

func titleProperty(content string) map[string]any {
	return map[string]any{
		"title": []map[string]any{{"text": map[string]string{"content": content}}},
	}
}

func richTextProperty(content string) map[string]any {
	return map[string]any{
		"rich_text": []map[string]any{{"text": map[string]string{"content": content}}},
	}
}

func selectProperty(name string) map[string]any {
	return map[string]any{"select": map[string]string{"name": name}}
}

func dateProperty(start string) map[string]any {
	return map[string]any{"date": map[string]string{"start": start}}
}

func numberProperty(n int) map[string]any {
	return map[string]any{"number": n}
}

func urlProperty(u string) map[string]any {
	return map[string]any{"url": u}
}

// truncate caps free-text fields at maxLen characters, replacing the
// tail with an ellipsis marker so the result is exactly maxLen long.
func truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen-3]) + "..."
}
