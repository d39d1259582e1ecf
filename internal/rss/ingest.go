package rss

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"startpage/internal/model"
)

// Ingest converts parsed feed entries into typed Articles. Entries published
// before dayStart are dropped. An entry with a missing or unparseable publish
// time is stamped with now instead of being rejected, which keeps one bad
// entry from failing the whole feed; such entries land at the start of the
// filtering window.
func Ingest(feed model.Feed, parsed *gofeed.Feed, now, dayStart time.Time) []model.Article {
	var articles []model.Article
	for _, item := range parsed.Items {
		published := publishedAt(item, now)
		if published.Before(dayStart) {
			continue
		}

		articles = append(articles, model.Article{
			Feed:      feed,
			Title:     item.Title,
			Link:      item.Link,
			GUID:      itemGUID(item),
			Published: published,
			Tags:      itemTags(item),
			Priority:  feed.Priority,
		})
	}
	return articles
}

func publishedAt(item *gofeed.Item, now time.Time) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.In(now.Location())
	}
	return now
}

func itemTags(item *gofeed.Item) []string {
	if len(item.Categories) == 0 {
		return nil
	}
	tags := make([]string, 0, len(item.Categories))
	for _, c := range item.Categories {
		tags = append(tags, strings.ToLower(c))
	}
	return tags
}
