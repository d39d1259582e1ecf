package currency

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"startpage/internal/block"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error
	gotPath    string
}

func (m *mockTransport) Do(req *http.Request) (*http.Response, error) {
	m.gotPath = req.URL.Path
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

func TestSection(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		title   string
		base    string
		targets []string
		want    []string
	}{
		{
			name:    "fiat rates",
			body:    `{"date":"2026-06-01","rub":{"usd":0.0125,"eur":0.0100}}`,
			title:   "Currencies (₽)",
			base:    "rub",
			targets: []string{"usd", "eur"},
			want: []string{
				"Currencies (₽)",
				"1 USD = 80.00 RUB",
				"1 EUR = 100.00 RUB",
			},
		},
		{
			name:    "large rates get thousands separators",
			body:    `{"date":"2026-06-01","usd":{"btc":0.00001,"eth":0.0004}}`,
			title:   "Cryptocurrencies ($)",
			base:    "usd",
			targets: []string{"btc", "eth"},
			want: []string{
				"Cryptocurrencies ($)",
				"1 BTC = 100,000.00 USD",
				"1 ETH = 2,500.00 USD",
			},
		},
		{
			name:    "missing target renders informational item",
			body:    `{"date":"2026-06-01","rub":{"usd":0.0125}}`,
			title:   "Currencies (₽)",
			base:    "rub",
			targets: []string{"usd", "xyz"},
			want: []string{
				"Currencies (₽)",
				"1 USD = 80.00 RUB",
				"Rate for XYZ not available",
			},
		},
		{
			name:    "base code is lowercased",
			body:    `{"date":"2026-06-01","rub":{"usd":0.0125}}`,
			title:   "Currencies (₽)",
			base:    "RUB",
			targets: []string{"USD"},
			want: []string{
				"Currencies (₽)",
				"1 USD = 80.00 RUB",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &mockTransport{body: tt.body, statusCode: 200}
			c := NewClient(WithHTTPClient(transport), WithBaseURL("https://rates.test"))

			blocks, err := c.Section(context.Background(), tt.title, tt.base, tt.targets)
			if err != nil {
				t.Fatalf("section: %v", err)
			}

			var got []string
			for _, b := range blocks {
				got = append(got, b.Text)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("section mismatch (-want +got):\n%s", diff)
			}

			if blocks[0].Kind != block.Heading2 {
				t.Errorf("first block kind = %s, want heading", blocks[0].Kind)
			}
			for i, b := range blocks[1:] {
				if b.Kind != block.BulletedItem {
					t.Errorf("item %d kind = %s, want bulleted item", i, b.Kind)
				}
			}
		})
	}
}

func TestSectionErrors(t *testing.T) {
	tests := []struct {
		name      string
		transport *mockTransport
	}{
		{
			name:      "http error status",
			transport: &mockTransport{body: "gone", statusCode: 500},
		},
		{
			name:      "network error",
			transport: &mockTransport{err: io.ErrUnexpectedEOF},
		},
		{
			name:      "missing rate table",
			transport: &mockTransport{body: `{"date":"2026-06-01"}`, statusCode: 200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(WithHTTPClient(tt.transport), WithBaseURL("https://rates.test"))
			_, err := c.Section(context.Background(), "Currencies", "rub", []string{"usd"})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestSectionRequestPath(t *testing.T) {
	transport := &mockTransport{body: `{"rub":{"usd":0.0125}}`, statusCode: 200}
	c := NewClient(WithHTTPClient(transport), WithBaseURL("https://rates.test"))

	if _, err := c.Section(context.Background(), "t", "rub", []string{"usd"}); err != nil {
		t.Fatalf("section: %v", err)
	}
	if transport.gotPath != "/v1/currencies/rub.json" {
		t.Errorf("path = %s", transport.gotPath)
	}
}
