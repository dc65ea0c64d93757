package analyzer

import "github.com/ryosukesatoh/arxiv-digest/internal/fetcher"

// AnalyzedPaper is a paper enriched with model-generated commentary.
// The wrapped Paper is held by value so it stays valid after the fetch
// result set is discarded. Instances are never mutated after creation.
type AnalyzedPaper struct {
	Paper                 fetcher.Paper
	InnovationScore       int // 1-10
	Summary               string
	KeyInnovation         string
	ImplementationDetails string
	ProblemSolved         string
	PotentialImpact       string
}
