package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"startpage/internal/aggregator"
	"startpage/internal/calendar"
	"startpage/internal/config"
	"startpage/internal/currency"
	"startpage/internal/fact"
	"startpage/internal/notify"
	"startpage/internal/notion"
	"startpage/internal/rss"
	"startpage/internal/storage"
	"startpage/internal/weather"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	var store storage.Storage
	if cfg.StateDBPath != "" {
		if dir := filepath.Dir(cfg.StateDBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				log.Error("create state directory", "path", dir, "error", err)
				os.Exit(1)
			}
		}
		sqlite, err := storage.NewSQLite(cfg.StateDBPath)
		if err != nil {
			log.Error("open state database", "path", cfg.StateDBPath, "error", err)
			os.Exit(1)
		}
		defer func() { _ = sqlite.Close() }()
		store = sqlite
	}

	calendarClient, err := calendar.NewClient(cfg.ICloudUsername, cfg.ICloudPassword, log)
	if err != nil {
		log.Error("create calendar client", "error", err)
		os.Exit(1)
	}

	var notifier *notify.Notifier
	if cfg.TelegramToken != "" {
		notifier, err = notify.New(cfg.TelegramToken, cfg.TelegramChatID, log)
		if err != nil {
			log.Error("create notifier", "error", err)
			os.Exit(1)
		}
	}

	digest := rss.NewDigest(
		rss.NewFetcher(&http.Client{Timeout: 30 * time.Second}),
		cfg.Feeds, cfg.BannedTags, cfg.MaxArticles, store, log,
	)

	agg := aggregator.New(
		notion.NewClient(cfg.NotionToken),
		weather.NewClient(),
		currency.NewClient(),
		calendarClient,
		digest,
		fact.NewClient(),
		cfg, log,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting startpage run", "city", cfg.City)

	if err := agg.Run(ctx); err != nil {
		log.Error("run failed", "error", err)
		notifier.Send("Startpage update failed: " + err.Error())
		os.Exit(1)
	}

	log.Info("startpage run completed")
	notifier.Send("Startpage updated for " + time.Now().In(cfg.Timezone).Format("Monday 02 of January"))
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
