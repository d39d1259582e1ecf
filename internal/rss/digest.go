package rss

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"startpage/internal/block"
	"startpage/internal/model"
	"startpage/internal/selector"
	"startpage/internal/storage"
)

// Digest fetches every configured feed, selects a bounded fair subset of
// today's articles, and renders them as the news section.
type Digest struct {
	fetcher  *Fetcher
	feeds    []model.Feed
	banned   map[string]struct{}
	maxTotal int
	store    storage.Storage // optional; nil disables cross-run dedup
	log      *slog.Logger
}

// NewDigest creates a Digest. store may be nil, in which case articles
// already published on a previous run are not filtered out.
func NewDigest(fetcher *Fetcher, feeds []model.Feed, banned map[string]struct{}, maxTotal int, store storage.Storage, log *slog.Logger) *Digest {
	return &Digest{
		fetcher:  fetcher,
		feeds:    feeds,
		banned:   banned,
		maxTotal: maxTotal,
		store:    store,
		log:      log,
	}
}

// Section fetches all feeds and returns the rendered news section: one
// heading followed by one linked list item per selected article, in
// selection order. A feed that fails to download fails the whole section;
// a feed with no surviving articles simply contributes nothing.
func (d *Digest) Section(ctx context.Context, title string, now, dayStart time.Time) ([]block.Block, error) {
	var pool []model.Article
	for _, feed := range d.feeds {
		parsed, err := d.fetcher.Fetch(ctx, feed.URL)
		if err != nil {
			return nil, fmt.Errorf("fetch feed %s: %w", feed.Name, err)
		}
		pool = append(pool, Ingest(feed, parsed, now, dayStart)...)
	}

	pool, err := d.dropSeen(ctx, pool)
	if err != nil {
		return nil, err
	}

	selected := selector.Select(pool, d.banned, d.maxTotal, selector.DefaultMaxPerFeed)
	d.markSeen(ctx, selected)

	blocks := []block.Block{block.NewHeading2(title)}
	for _, a := range selected {
		d.log.Info("selected article", "feed", a.Feed.Name, "title", a.Title)
		blocks = append(blocks, block.NewLinkItem(fmt.Sprintf("[%s] %s", a.Feed.Name, a.Title), a.Link))
	}
	return blocks, nil
}

func (d *Digest) dropSeen(ctx context.Context, pool []model.Article) ([]model.Article, error) {
	if d.store == nil {
		return pool, nil
	}
	fresh := pool[:0:0]
	for _, a := range pool {
		seen, err := d.store.IsSeen(ctx, a.Feed.Name, a.GUID)
		if err != nil {
			return nil, fmt.Errorf("check seen %s: %w", a.GUID, err)
		}
		if !seen {
			fresh = append(fresh, a)
		}
	}
	return fresh, nil
}

// markSeen records the selected articles so later runs skip them. Recording
// happens at selection time, before the page is written; a run that fails
// afterwards can therefore drop an article for good, matching the overall
// fail-fast, no-rollback policy.
func (d *Digest) markSeen(ctx context.Context, selected []model.Article) {
	if d.store == nil {
		return
	}
	for _, a := range selected {
		if err := d.store.MarkSeen(ctx, a.Feed.Name, a.GUID); err != nil {
			d.log.Error("mark seen", "feed", a.Feed.Name, "guid", a.GUID, "error", err)
		}
	}
}
