// Package notion implements the block-store client and the tree persister.
//
// The store's mutation primitive appends a flat list of sibling nodes under a
// container; nesting is produced by the persister in persist.go.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"startpage/internal/block"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL overrides the API base URL (useful for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// Client talks to the Notion block API.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	token      string
}

// NewClient creates a Client authenticating with the given integration token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type appendRequest struct {
	Children []map[string]any `json:"children"`
	After    string           `json:"after,omitempty"`
}

type appendResponse struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

// AppendChildren appends blocks as direct children of containerID and
// returns the created node IDs in input order. Children of the given blocks
// are ignored; callers wanting nesting go through Persist. If after is
// non-empty the blocks are inserted immediately following that sibling,
// otherwise at the end of the container.
func (c *Client) AppendChildren(ctx context.Context, containerID string, blocks []block.Block, after string) ([]string, error) {
	payload := appendRequest{After: after}
	for _, b := range blocks {
		payload.Children = append(payload.Children, renderBlock(b))
	}

	var resp appendResponse
	if err := c.do(ctx, http.MethodPatch, "/v1/blocks/"+containerID+"/children", payload, &resp); err != nil {
		return nil, err
	}

	if len(resp.Results) != len(blocks) {
		return nil, fmt.Errorf("store returned %d ids for %d blocks", len(resp.Results), len(blocks))
	}
	ids := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		ids[i] = r.ID
	}
	return ids, nil
}

// UpdateCallout overwrites the text of an existing callout block in place.
func (c *Client) UpdateCallout(ctx context.Context, blockID, text string) error {
	payload := map[string]any{
		"callout": map[string]any{"rich_text": richText(text, "")},
	}
	return c.do(ctx, http.MethodPatch, "/v1/blocks/"+blockID, payload, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, snippet)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
