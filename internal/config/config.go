// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"startpage/internal/model"
)

// defaultFeeds is the built-in feed table, used when FEEDS is not set.
var defaultFeeds = []model.Feed{
	{Name: "TechCrunch", URL: "https://techcrunch.com/feed/", Priority: 2},
	{Name: "BigThinking", URL: "https://bigthinking.io/feed", Priority: 1},
	{Name: "Product Hunt", URL: "https://www.producthunt.com/feed", Priority: 2},
	{Name: "Hacker News Launches", URL: "https://news.ycombinator.com/launches", Priority: 1},
	{Name: "Andrew Chen", URL: "https://andrewchen.substack.com/feed", Priority: 1},
	{Name: "Benedict Evans", URL: "http://ben-evans.com/benedictevans?format=rss", Priority: 1},
	{Name: "Irrational Exuberance", URL: "https://irrationalexuberance.libsyn.com/rss", Priority: 1},
	{Name: "Pragmatic Engineer", URL: "https://pragmaticengineer.com/feed/", Priority: 1},
	{Name: "Peter Steinberger", URL: "https://steipete.me/rss.xml", Priority: 1},
	{Name: "Mario Zechner", URL: "https://mariozechner.at/rss.xml", Priority: 1},
}

// Config holds the application configuration.
type Config struct {
	NotionToken    string
	PageID         string
	BlockID        string // anchor sibling; also the fact callout that gets refreshed
	City           string
	ICloudUsername string
	ICloudPassword string
	Timezone       *time.Location
	MaxArticles    int
	BannedTags     map[string]struct{}
	Feeds          []model.Feed
	StateDBPath    string
	TelegramToken  string
	TelegramChatID int64
	LogLevel       string
}

// Load reads configuration from environment variables. A missing required
// variable is an error; nothing network-facing happens before Load succeeds.
func Load() (*Config, error) {
	cfg := &Config{
		NotionToken:    os.Getenv("NOTION_TOKEN"),
		PageID:         os.Getenv("PAGE_ID"),
		BlockID:        os.Getenv("BLOCK_ID"),
		City:           os.Getenv("CITY"),
		ICloudUsername: os.Getenv("ICLOUD_USERNAME"),
		ICloudPassword: os.Getenv("ICLOUD_APP_PASSWORD"),
		StateDBPath:    os.Getenv("STATE_DB"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	required := []struct {
		name  string
		value string
	}{
		{"NOTION_TOKEN", cfg.NotionToken},
		{"PAGE_ID", cfg.PageID},
		{"BLOCK_ID", cfg.BlockID},
		{"CITY", cfg.City},
		{"ICLOUD_USERNAME", cfg.ICloudUsername},
		{"ICLOUD_APP_PASSWORD", cfg.ICloudPassword},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("%s is required", r.name)
		}
	}

	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}
	cfg.Timezone = loc

	cfg.MaxArticles = 5
	if raw := os.Getenv("MAX_ARTICLES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid MAX_ARTICLES %q", raw)
		}
		cfg.MaxArticles = n
	}

	cfg.BannedTags = parseBannedTags(os.Getenv("BANNED_TAGS"))

	cfg.Feeds = defaultFeeds
	if raw := os.Getenv("FEEDS"); raw != "" {
		feeds, err := parseFeeds(raw)
		if err != nil {
			return nil, err
		}
		cfg.Feeds = feeds
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		cfg.TelegramChatID = id
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

func parseBannedTags(raw string) map[string]struct{} {
	tags := make(map[string]struct{})
	for _, s := range strings.Split(raw, ",") {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		tags[s] = struct{}{}
	}
	return tags
}

// parseFeeds parses the FEEDS variable: semicolon-separated entries of the
// form "name|url|priority".
func parseFeeds(raw string) ([]model.Feed, error) {
	var feeds []model.Feed
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid feed entry %q in FEEDS, want name|url|priority", entry)
		}
		priority, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("invalid priority in feed entry %q: %w", entry, err)
		}
		feeds = append(feeds, model.Feed{
			Name:     strings.TrimSpace(parts[0]),
			URL:      strings.TrimSpace(parts[1]),
			Priority: priority,
		})
	}
	if len(feeds) == 0 {
		return nil, fmt.Errorf("FEEDS is set but contains no feed entries")
	}
	return feeds, nil
}
