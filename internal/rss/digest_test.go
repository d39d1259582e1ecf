package rss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"startpage/internal/block"
	"startpage/internal/model"
)

const launchesXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Launches</title>
    <link>https://launches.example</link>
    <description>Launches</description>
    <item>
      <title>Big launch</title>
      <link>https://launches.example/posts/1</link>
      <guid>ln-1</guid>
      <pubDate>Mon, 01 Jun 2026 07:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

// urlTransport serves canned bodies keyed by request URL.
type urlTransport struct {
	responses map[string]string
}

func (m *urlTransport) Do(req *http.Request) (*http.Response, error) {
	body, ok := m.responses[req.URL.String()]
	if !ok {
		return nil, fmt.Errorf("unexpected request: %s", req.URL)
	}
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}, nil
}

// memoryStore is an in-memory Storage for tests.
type memoryStore struct {
	seen map[string]bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{seen: make(map[string]bool)}
}

func (m *memoryStore) IsSeen(_ context.Context, feedName, guid string) (bool, error) {
	return m.seen[feedName+"|"+guid], nil
}

func (m *memoryStore) MarkSeen(_ context.Context, feedName, guid string) error {
	m.seen[feedName+"|"+guid] = true
	return nil
}

func (m *memoryStore) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func blockTexts(blocks []block.Block) []string {
	var out []string
	for _, b := range blocks {
		out = append(out, b.Text)
	}
	return out
}

func TestDigestSection(t *testing.T) {
	feeds := []model.Feed{
		{Name: "Tech Daily", URL: "https://techdaily.example/rss", Priority: 2},
		{Name: "Launches", URL: "https://launches.example/rss", Priority: 1},
	}
	transport := &urlTransport{responses: map[string]string{
		"https://techdaily.example/rss": loadFixture(t, "../../testdata/sample.xml"),
		"https://launches.example/rss":  launchesXML,
	}}
	banned := map[string]struct{}{"sponsored": {}}

	d := NewDigest(NewFetcher(transport), feeds, banned, 5, nil, discardLogger())

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	dayStart := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	blocks, err := d.Section(context.Background(), "Tech News", now, dayStart)
	if err != nil {
		t.Fatalf("section: %v", err)
	}

	// Launches has priority 1, so its article leads despite Tech Daily's
	// earlier publish time. The sponsored roundup is banned and the undated
	// note gets the now snapshot, sorting last within Tech Daily.
	want := []string{
		"Tech News",
		"[Launches] Big launch",
		"[Tech Daily] Morning launch",
		"[Tech Daily] Undated note",
	}
	if diff := cmp.Diff(want, blockTexts(blocks)); diff != "" {
		t.Errorf("section mismatch (-want +got):\n%s", diff)
	}

	if blocks[0].Kind != block.Heading2 {
		t.Errorf("first block kind = %s, want heading", blocks[0].Kind)
	}
	if blocks[1].URL != "https://launches.example/posts/1" {
		t.Errorf("article link = %q", blocks[1].URL)
	}
}

func TestDigestSectionFeedFailureFailsSection(t *testing.T) {
	feeds := []model.Feed{
		{Name: "Broken", URL: "https://broken.example/rss", Priority: 1},
	}
	transport := &urlTransport{responses: map[string]string{}}

	d := NewDigest(NewFetcher(transport), feeds, nil, 5, nil, discardLogger())

	_, err := d.Section(context.Background(), "Tech News", time.Now(), time.Now())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestDigestSectionNoArticles(t *testing.T) {
	feeds := []model.Feed{
		{Name: "Launches", URL: "https://launches.example/rss", Priority: 1},
	}
	transport := &urlTransport{responses: map[string]string{
		"https://launches.example/rss": launchesXML,
	}}

	d := NewDigest(NewFetcher(transport), feeds, nil, 5, nil, discardLogger())

	// A day after every fixture article: everything is filtered out, but the
	// section heading is still produced.
	now := time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC)
	dayStart := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)

	blocks, err := d.Section(context.Background(), "Tech News", now, dayStart)
	if err != nil {
		t.Fatalf("section: %v", err)
	}
	if diff := cmp.Diff([]string{"Tech News"}, blockTexts(blocks)); diff != "" {
		t.Errorf("section mismatch (-want +got):\n%s", diff)
	}
}

func TestDigestSectionDedupAcrossRuns(t *testing.T) {
	feeds := []model.Feed{
		{Name: "Launches", URL: "https://launches.example/rss", Priority: 1},
	}
	transport := &urlTransport{responses: map[string]string{
		"https://launches.example/rss": launchesXML,
	}}
	store := newMemoryStore()

	d := NewDigest(NewFetcher(transport), feeds, nil, 5, store, discardLogger())

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	dayStart := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	first, err := d.Section(context.Background(), "Tech News", now, dayStart)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("first run produced %d blocks, want 2", len(first))
	}

	second, err := d.Section(context.Background(), "Tech News", now, dayStart)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if diff := cmp.Diff([]string{"Tech News"}, blockTexts(second)); diff != "" {
		t.Errorf("second run should skip seen articles (-want +got):\n%s", diff)
	}
}
