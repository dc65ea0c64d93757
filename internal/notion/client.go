package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
)

// Client is a thin wrapper over the Notion REST API: create pages and
// query databases, nothing more.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Parent identifies where a created page lives: a database or a page.
type Parent struct {
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

// Icon is a page icon; only emoji icons are used here.
type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

// PageRequest is the payload for creating a page.
type PageRequest struct {
	Parent     Parent         `json:"parent"`
	Icon       *Icon          `json:"icon,omitempty"`
	Properties map[string]any `json:"properties"`
	Children   []Block        `json:"children,omitempty"`
}

// PageRef is a summary of an existing page returned by a query.
type PageRef struct {
	ID string `json:"id"`
}

type queryRequest struct {
	Filter any `json:"filter"`
}

type queryResponse struct {
	Results []PageRef `json:"results"`
}

type createResponse struct {
	ID string `json:"id"`
}

// CreatePage creates a page and returns its opaque ID.
func (c *Client) CreatePage(ctx context.Context, page PageRequest) (string, error) {
	body, err := c.post(ctx, "/pages", page)
	if err != nil {
		return "", err
	}

	var created createResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("notion: failed to parse create response: %w", err)
	}
	return created.ID, nil
}

// QueryDatabase runs a filtered query against a database and returns the
// matching page summaries.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter any) ([]PageRef, error) {
	body, err := c.post(ctx, fmt.Sprintf("/databases/%s/query", databaseID), queryRequest{Filter: filter})
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("notion: failed to parse query response: %w", err)
	}
	return resp.Results, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notion: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("notion: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notion: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("notion: failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notion: unexpected status %d: %s", resp.StatusCode, body)
	}

	return body, nil
}
