package analyzer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ryosukesatoh/arxiv-digest/internal/fetcher"
)

// Rank asks the model to select the topN most innovative papers from the
// full fetched set in a single call, returning them best-first. A
// response that fails to parse falls back to the first topN papers in
// input order; a call that fails even after retries is a stage failure
// and is returned as an error.
func (a *Analyzer) Rank(ctx context.Context, papers []fetcher.Paper, topN int) ([]fetcher.Paper, error) {
	if len(papers) == 0 || topN <= 0 {
		return nil, nil
	}

	text, err := a.complete(ctx, a.buildRankingPrompt(papers, topN))
	if err != nil {
		return nil, fmt.Errorf("ranking call failed: %w", err)
	}

	var rankedIDs []string
	if err := decodeJSON(text, &rankedIDs); err != nil {
		log.Printf("Error parsing ranking response: %v", err)
		if topN > len(papers) {
			topN = len(papers)
		}
		return papers[:topN], nil
	}
	if len(rankedIDs) > topN {
		rankedIDs = rankedIDs[:topN]
	}

	return resolveRankedIDs(rankedIDs, papers), nil
}

func (a *Analyzer) buildRankingPrompt(papers []fetcher.Paper, topN int) string {
	var sb strings.Builder
	sb.WriteString("You are an AI research expert tasked with identifying the most innovative and impactful papers from today's arXiv submissions.\n\n")
	sb.WriteString(fmt.Sprintf("Below are %d recent papers from arXiv. Analyze them and select the %d MOST INNOVATIVE papers based on:\n\n", len(papers), topN))
	sb.WriteString(`1. **Novelty**: Does it introduce genuinely new ideas, methods, or perspectives?
2. **Technical Contribution**: Is the technical approach sophisticated and well-designed?
3. **Potential Impact**: Could this significantly influence the field or enable new applications?
4. **Practical Value**: Does it solve real problems or enable new capabilities?

PAPERS TO ANALYZE:
`)
	for _, paper := range papers {
		sb.WriteString(a.formatForRanking(paper))
	}
	sb.WriteString(fmt.Sprintf(`
IMPORTANT: Return ONLY a JSON array of arXiv IDs for the top %d most innovative papers, ordered from most to least innovative.

Example format:
["2411.12345", "2411.67890", "2411.11111"]

Return ONLY the JSON array, no other text.`, topN))
	return sb.String()
}

// formatForRanking condenses a paper into a short record: at most 5
// authors and at most 500 characters of abstract, both with an ellipsis
// marker when truncated.
func (a *Analyzer) formatForRanking(paper fetcher.Paper) string {
	authors := paper.Authors
	authorSuffix := ""
	if len(authors) > 5 {
		authors = authors[:5]
		authorSuffix = "..."
	}

	abstract := paper.Abstract
	if runes := []rune(abstract); len(runes) > 500 {
		abstract = string(runes[:500]) + "..."
	}

	return fmt.Sprintf(`
---
ID: %s
Title: %s
Category: %s
Authors: %s%s
Abstract: %s
---`, paper.ArxivID, paper.Title, a.categories.Display(paper.PrimaryCategory),
		strings.Join(authors, ", "), authorSuffix, abstract)
}

// resolveRankedIDs maps ranked IDs back to papers, preserving ranking
// order. The model may echo an ID without its version suffix, so IDs are
// matched exactly first and then with the suffix stripped. IDs matching
// neither are dropped.
func resolveRankedIDs(rankedIDs []string, papers []fetcher.Paper) []fetcher.Paper {
	byID := make(map[string]fetcher.Paper, len(papers))
	byIDNoVersion := make(map[string]fetcher.Paper, len(papers))
	for _, p := range papers {
		byID[p.ArxivID] = p
		noVersion := strings.Split(p.ArxivID, "v")[0]
		if _, exists := byIDNoVersion[noVersion]; !exists {
			byIDNoVersion[noVersion] = p
		}
	}

	var resolved []fetcher.Paper
	for _, id := range rankedIDs {
		if p, ok := byID[id]; ok {
			resolved = append(resolved, p)
		} else if p, ok := byIDNoVersion[id]; ok {
			resolved = append(resolved, p)
		}
	}
	return resolved
}
