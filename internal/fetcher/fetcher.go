package fetcher

import (
	"context"
	"time"
)

// Paper represents an arXiv paper with its metadata. Papers are never
// mutated after fetching.
type Paper struct {
	ArxivID         string
	Title           string
	Authors         []string
	Abstract        string
	Categories      []string
	PrimaryCategory string
	Published       time.Time
	Updated         time.Time
	ArxivURL        string
	PDFURL          string
}

// Fetcher is an interface for fetching recent research papers.
type Fetcher interface {
	FetchRecent(ctx context.Context, daysBack int) ([]Paper, error)
}
