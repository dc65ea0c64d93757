package analyzer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse indicates the model returned text that does not
// decode into the expected JSON shape. It is never retried; callers take
// their local fallback path instead.
var ErrMalformedResponse = errors.New("malformed model response")

// decodeJSON extracts a JSON value from free-form model output and
// unmarshals it into v. Models sometimes wrap JSON in markdown code
// fences despite instructions; only the first fenced region is
// considered, anything after it is discarded.
func decodeJSON(raw string, v any) error {
	text := strings.TrimSpace(raw)

	if strings.Contains(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 2 {
			text = parts[1]
		}
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSpace(text)
	}

	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
