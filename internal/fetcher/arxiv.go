package fetcher

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ryosukesatoh/arxiv-digest/internal/category"
)

// arXiv Atom feed XML structures

type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID              string          `xml:"id"`
	Title           string          `xml:"title"`
	Summary         string          `xml:"summary"`
	Authors         []arxivAuthor   `xml:"author"`
	Links           []arxivLink     `xml:"link"`
	Published       string          `xml:"published"`
	Updated         string          `xml:"updated"`
	Categories      []arxivCategory `xml:"category"`
	PrimaryCategory arxivCategory   `xml:"primary_category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Type  string `xml:"type,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

// ArxivFetcher fetches recent papers from the arXiv API across a fixed
// set of categories, deduplicating papers that appear in more than one.
type ArxivFetcher struct {
	client                *http.Client
	baseURL               string
	categories            []string
	maxResultsPerCategory int
	now                   func() time.Time
}

func NewArxivFetcher(categories []string, maxResultsPerCategory int) *ArxivFetcher {
	if len(categories) == 0 {
		categories = category.DefaultCategories
	}
	if maxResultsPerCategory <= 0 {
		maxResultsPerCategory = 50
	}
	return &ArxivFetcher{
		client:                &http.Client{Timeout: 30 * time.Second},
		baseURL:               "http://export.arxiv.org/api/query",
		categories:            categories,
		maxResultsPerCategory: maxResultsPerCategory,
		now:                   time.Now,
	}
}

// FetchRecent fetches papers published within the last daysBack days
// across all configured categories. The same paper can be listed under
// several categories; the first-seen instance wins. Results are sorted
// by publication date, newest first.
func (f *ArxivFetcher) FetchRecent(ctx context.Context, daysBack int) ([]Paper, error) {
	seen := make(map[string]bool)
	var all []Paper

	for _, cat := range f.categories {
		papers, err := f.fetchCategory(ctx, cat, daysBack)
		if err != nil {
			return nil, fmt.Errorf("arxiv: category %s: %w", cat, err)
		}
		log.Printf("  %s: %d papers", cat, len(papers))

		for _, p := range papers {
			if seen[p.ArxivID] {
				continue
			}
			seen[p.ArxivID] = true
			all = append(all, p)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Published.After(all[j].Published)
	})

	return all, nil
}

func (f *ArxivFetcher) fetchCategory(ctx context.Context, cat string, daysBack int) ([]Paper, error) {
	query := url.Values{}
	query.Set("search_query", fmt.Sprintf("cat:%s", cat))
	query.Set("start", "0")
	query.Set("max_results", fmt.Sprintf("%d", f.maxResultsPerCategory))
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")

	reqURL := fmt.Sprintf("%s?%s", f.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	// One extra day as a timezone buffer.
	cutoff := f.now().AddDate(0, 0, -(daysBack + 1))

	papers := make([]Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		published, _ := time.Parse(time.RFC3339, entry.Published)
		if published.Before(cutoff) {
			continue
		}
		updated, _ := time.Parse(time.RFC3339, entry.Updated)

		authors := make([]string, len(entry.Authors))
		for i, a := range entry.Authors {
			authors[i] = strings.TrimSpace(a.Name)
		}

		var arxivURL, pdfURL string
		for _, link := range entry.Links {
			switch {
			case link.Rel == "alternate" || (link.Type == "text/html" && arxivURL == ""):
				arxivURL = link.Href
			case link.Title == "pdf" || link.Type == "application/pdf":
				pdfURL = link.Href
			}
		}
		if arxivURL == "" {
			arxivURL = entry.ID
		}

		categories := make([]string, len(entry.Categories))
		for i, c := range entry.Categories {
			categories[i] = c.Term
		}
		primary := entry.PrimaryCategory.Term
		if primary == "" && len(categories) > 0 {
			primary = categories[0]
		}

		papers = append(papers, Paper{
			ArxivID:         arxivIDFromEntryID(entry.ID),
			Title:           flatten(entry.Title),
			Authors:         authors,
			Abstract:        flatten(entry.Summary),
			Categories:      categories,
			PrimaryCategory: primary,
			Published:       published,
			Updated:         updated,
			ArxivURL:        arxivURL,
			PDFURL:          pdfURL,
		})
	}

	return papers, nil
}

// arxivIDFromEntryID extracts the arXiv ID (with version suffix) from an
// entry ID URL such as http://arxiv.org/abs/2511.21692v1.
func arxivIDFromEntryID(entryID string) string {
	parts := strings.Split(strings.TrimSpace(entryID), "/")
	return parts[len(parts)-1]
}

// flatten collapses the newlines arXiv inserts into titles and abstracts.
func flatten(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}
