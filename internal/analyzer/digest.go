package analyzer

import (
	"context"
	"fmt"
	"strings"
)

// DailySummary produces a markdown narrative over the analyzed papers
// with a single model call. The output is prose for a summary page, not
// machine-parsed, so no fallback logic applies; it is returned verbatim
// apart from whitespace trimming.
func (a *Analyzer) DailySummary(ctx context.Context, papers []AnalyzedPaper, dateStr string) (string, error) {
	if len(papers) == 0 {
		return fmt.Sprintf("# ArXiv AI Research Summary - %s\n\nNo significant papers found today.", dateStr), nil
	}

	text, err := a.complete(ctx, a.buildSummaryPrompt(papers, dateStr))
	if err != nil {
		return "", fmt.Errorf("daily summary call failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

func (a *Analyzer) buildSummaryPrompt(papers []AnalyzedPaper, dateStr string) string {
	// Group papers by primary category, first appearance deciding the
	// order of the category blocks.
	var order []string
	byCategory := make(map[string][]AnalyzedPaper)
	for _, ap := range papers {
		cat := ap.Paper.PrimaryCategory
		if _, seen := byCategory[cat]; !seen {
			order = append(order, cat)
		}
		byCategory[cat] = append(byCategory[cat], ap)
	}

	var sb strings.Builder
	sb.WriteString("Create an engaging executive summary for today's most innovative AI research papers.\n\n")
	sb.WriteString(fmt.Sprintf("Date: %s\n", dateStr))
	sb.WriteString(fmt.Sprintf("Total Papers Analyzed: %d\n\n", len(papers)))
	sb.WriteString("PAPERS BY CATEGORY:\n")

	for _, cat := range order {
		sb.WriteString(fmt.Sprintf("\n## %s\n", a.categories.Display(cat)))
		for _, ap := range byCategory[cat] {
			sb.WriteString(fmt.Sprintf(`
- **%s** (Score: %d/10)
  Key Innovation: %s
  Impact: %s
`, ap.Paper.Title, ap.InnovationScore, ap.KeyInnovation, ap.PotentialImpact))
		}
	}

	sb.WriteString(`

Generate a Notion-flavored Markdown summary with:
1. A brief executive overview (2-3 sentences about today's trends)
2. Top 3 most exciting papers with why they matter
3. Category-by-category highlights
4. Key themes and emerging trends observed

Make it engaging and insightful for researchers and practitioners. Use markdown formatting.
Return ONLY the markdown content, no code blocks.`)

	return sb.String()
}
