// Package currency builds exchange-rate sections from the fawazahmed0
// currency CDN. Fiat and crypto sections use the same component with a
// different base and target set.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"startpage/internal/block"
)

const defaultBaseURL = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest"

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

// Client fetches exchange rates for a base currency.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	printer    *message.Printer
}

// NewClient creates a currency Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		printer:    message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Section fetches the rate table for base and renders one bulleted item per
// target: "1 TGT = <rate> BASE". A target missing from the table renders an
// informational item instead of failing the section.
func (c *Client) Section(ctx context.Context, title, base string, targets []string) ([]block.Block, error) {
	base = strings.ToLower(base)

	rates, err := c.rates(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("fetch %s rates: %w", base, err)
	}

	blocks := []block.Block{block.NewHeading2(title)}
	for _, target := range targets {
		target = strings.ToLower(target)
		var text string
		if rate, ok := rates[target]; ok && rate != 0 {
			text = fmt.Sprintf("1 %s = %s %s",
				strings.ToUpper(target),
				c.printer.Sprintf("%.2f", 1/rate),
				strings.ToUpper(base),
			)
		} else {
			text = fmt.Sprintf("Rate for %s not available", strings.ToUpper(target))
		}
		blocks = append(blocks, block.NewBulletedItem(text))
	}
	return blocks, nil
}

func (c *Client) rates(ctx context.Context, base string) (map[string]float64, error) {
	url := c.baseURL + "/v1/currencies/" + base + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// The payload keys the rate table by the base code itself:
	// {"date": "...", "rub": {"usd": 0.0125, ...}}.
	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	raw, ok := payload[base]
	if !ok {
		return nil, fmt.Errorf("response missing %q rate table", base)
	}
	var rates map[string]float64
	if err := json.Unmarshal(raw, &rates); err != nil {
		return nil, fmt.Errorf("decode %s rates: %w", base, err)
	}
	return rates, nil
}
