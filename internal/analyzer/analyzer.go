package analyzer

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/ryosukesatoh/arxiv-digest/internal/category"
	"github.com/ryosukesatoh/arxiv-digest/internal/fetcher"
	"github.com/ryosukesatoh/arxiv-digest/internal/llm"
	"github.com/ryosukesatoh/arxiv-digest/internal/retry"
)

// Analyzer ranks and summarizes papers using a text-completion model.
type Analyzer struct {
	client      llm.Client
	categories  *category.Table
	retryConfig retry.Config
}

func New(client llm.Client, categories *category.Table) *Analyzer {
	return &Analyzer{
		client:      client,
		categories:  categories,
		retryConfig: retry.DefaultConfig(),
	}
}

// complete runs one model call with the standard retry policy.
func (a *Analyzer) complete(ctx context.Context, prompt string) (string, error) {
	var text string
	err := retry.WithBackoff(ctx, a.retryConfig, func(ctx context.Context) error {
		var callErr error
		text, callErr = a.client.Complete(ctx, prompt)
		return callErr
	})
	return text, err
}

// Analyze generates a detailed analysis for each paper, one model call
// per paper. A paper whose response fails to parse, or whose call fails
// even after retries, still yields an entry built from fallback values;
// the call failures are returned so the run report can record them.
// Output is sorted by innovation score, highest first, with ties keeping
// the ranking order of the input.
func (a *Analyzer) Analyze(ctx context.Context, papers []fetcher.Paper) ([]AnalyzedPaper, []error) {
	analyzed := make([]AnalyzedPaper, 0, len(papers))
	var errs []error

	for _, paper := range papers {
		text, err := a.complete(ctx, a.buildAnalysisPrompt(paper))
		if err != nil {
			log.Printf("Error analyzing paper %s: %v", paper.ArxivID, err)
			errs = append(errs, fmt.Errorf("analyze %s: %w", paper.ArxivID, err))
			analyzed = append(analyzed, fallbackAnalysis(paper))
			continue
		}
		analyzed = append(analyzed, a.parseAnalysis(paper, text))
	}

	sort.SliceStable(analyzed, func(i, j int) bool {
		return analyzed[i].InnovationScore > analyzed[j].InnovationScore
	})

	return analyzed, errs
}

func (a *Analyzer) buildAnalysisPrompt(paper fetcher.Paper) string {
	var sb strings.Builder
	sb.WriteString("Analyze this arXiv paper and provide a detailed summary:\n\n")
	sb.WriteString(fmt.Sprintf("TITLE: %s\n", paper.Title))
	sb.WriteString(fmt.Sprintf("AUTHORS: %s\n", strings.Join(paper.Authors, ", ")))
	sb.WriteString(fmt.Sprintf("CATEGORY: %s\n", a.categories.Display(paper.PrimaryCategory)))
	sb.WriteString(fmt.Sprintf("ARXIV ID: %s\n\n", paper.ArxivID))
	sb.WriteString(fmt.Sprintf("ABSTRACT:\n%s\n\n", paper.Abstract))
	sb.WriteString(`Provide your analysis in the following JSON format:
{
    "innovation_score": <1-10 integer rating>,
    "summary": "<2-3 sentence executive summary>",
    "problem_solved": "<What problem does this paper address?>",
    "key_innovation": "<What is the main novel contribution?>",
    "implementation_details": "<How did they implement/achieve this? Key technical details>",
    "potential_impact": "<What is the potential impact on the field?>"
}

Be specific and technical in your analysis. Return ONLY the JSON object.`)
	return sb.String()
}

func (a *Analyzer) parseAnalysis(paper fetcher.Paper, text string) AnalyzedPaper {
	var fields map[string]any
	if err := decodeJSON(text, &fields); err != nil {
		log.Printf("Error parsing analysis for %s: %v", paper.ArxivID, err)
		return fallbackAnalysis(paper)
	}

	return AnalyzedPaper{
		Paper:                 paper,
		InnovationScore:       coerceScore(fields["innovation_score"]),
		Summary:               stringField(fields, "summary"),
		KeyInnovation:         stringField(fields, "key_innovation"),
		ImplementationDetails: stringField(fields, "implementation_details"),
		ProblemSolved:         stringField(fields, "problem_solved"),
		PotentialImpact:       stringField(fields, "potential_impact"),
	}
}

// fallbackAnalysis builds the locally computed substitute entry used when
// a paper's analysis cannot be obtained. The paper is kept in the run
// with a neutral score rather than dropped.
func fallbackAnalysis(paper fetcher.Paper) AnalyzedPaper {
	abstract := []rune(paper.Abstract)
	if len(abstract) > 300 {
		abstract = abstract[:300]
	}
	return AnalyzedPaper{
		Paper:                 paper,
		InnovationScore:       5,
		Summary:               string(abstract) + "...",
		KeyInnovation:         "See abstract for details",
		ImplementationDetails: "See paper for technical details",
		ProblemSolved:         "See abstract",
		PotentialImpact:       "To be determined",
	}
}

// coerceScore converts whatever the model put in innovation_score into
// an integer in [1,10]. Missing or unusable values default to the
// neutral midpoint 5; out-of-range values are clamped rather than
// trusted.
func coerceScore(v any) int {
	score := 5
	switch n := v.(type) {
	case float64:
		score = int(n)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			score = int(parsed)
		}
	}
	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return score
}

func stringField(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}
