package llm

import "context"

// Client is a single-shot text-completion client: prompt in, text out.
// Implementations hold no session state between calls.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
