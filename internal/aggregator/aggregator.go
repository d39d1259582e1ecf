// Package aggregator orchestrates one dashboard run: fan out to every
// source, assemble the day section, persist it, refresh the fact block.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"startpage/internal/block"
	"startpage/internal/config"
	"startpage/internal/notion"
)

// Store is the block store the assembled page is written to.
type Store interface {
	notion.Appender
	UpdateCallout(ctx context.Context, blockID, text string) error
}

// WeatherSource produces the weather section for a city.
type WeatherSource interface {
	Section(ctx context.Context, city string) ([]block.Block, error)
}

// CurrencySource produces one exchange-rate section.
type CurrencySource interface {
	Section(ctx context.Context, title, base string, targets []string) ([]block.Block, error)
}

// CalendarSource produces the events section for a day.
type CalendarSource interface {
	Section(ctx context.Context, title string, start, end time.Time) ([]block.Block, error)
}

// NewsSource produces the news digest section.
type NewsSource interface {
	Section(ctx context.Context, title string, now, dayStart time.Time) ([]block.Block, error)
}

// FactSource produces the fact of the day.
type FactSource interface {
	Random(ctx context.Context) (string, error)
}

// Aggregator runs the daily update. Sources are fetched concurrently with
// all-or-nothing semantics; the page section order is fixed by position, not
// completion order.
type Aggregator struct {
	store    Store
	weather  WeatherSource
	currency CurrencySource
	calendar CalendarSource
	news     NewsSource
	fact     FactSource
	cfg      *config.Config
	clock    func() time.Time
	log      *slog.Logger
}

// New creates an Aggregator.
func New(store Store, weather WeatherSource, currency CurrencySource, calendar CalendarSource, news NewsSource, fact FactSource, cfg *config.Config, log *slog.Logger) *Aggregator {
	return &Aggregator{
		store:    store,
		weather:  weather,
		currency: currency,
		calendar: calendar,
		news:     news,
		fact:     fact,
		cfg:      cfg,
		clock:    time.Now,
		log:      log,
	}
}

// SetClock overrides the time source (useful for testing).
func (a *Aggregator) SetClock(clock func() time.Time) {
	a.clock = clock
}

// Run performs one aggregation: fetch all sources, append the new day
// section after the anchor block, then overwrite the anchor callout with the
// fact of the day. The run either fully succeeds or fails with the first
// error; there is no partial-success mode.
func (a *Aggregator) Run(ctx context.Context) error {
	now := a.clock().In(a.cfg.Timezone)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var (
		weatherBlocks  []block.Block
		fiatBlocks     []block.Block
		cryptoBlocks   []block.Block
		calendarBlocks []block.Block
		newsBlocks     []block.Block
		factText       string
	)

	a.log.Info("fetching all sources", "city", a.cfg.City, "date", now.Format("2006-01-02"))

	// The first failure cancels gctx and with it every sibling's in-flight
	// request.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		weatherBlocks, err = a.weather.Section(gctx, a.cfg.City)
		return err
	})
	g.Go(func() error {
		var err error
		fiatBlocks, err = a.currency.Section(gctx, "Currencies (₽)", "rub", []string{"usd", "eur"})
		return err
	})
	g.Go(func() error {
		var err error
		cryptoBlocks, err = a.currency.Section(gctx, "Cryptocurrencies ($)", "usd", []string{"btc", "eth"})
		return err
	})
	g.Go(func() error {
		var err error
		calendarBlocks, err = a.calendar.Section(gctx, "Today's Events", dayStart, dayEnd)
		return err
	})
	g.Go(func() error {
		var err error
		newsBlocks, err = a.news.Section(gctx, "Tech News", now, dayStart)
		return err
	})
	g.Go(func() error {
		var err error
		factText, err = a.fact.Random(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("fetch sources: %w", err)
	}

	var children []block.Block
	children = append(children, weatherBlocks...)
	children = append(children, fiatBlocks...)
	children = append(children, cryptoBlocks...)
	children = append(children, calendarBlocks...)
	children = append(children, newsBlocks...)

	title := now.Format("Monday 02 of January")
	day := block.NewHeading1(title, children)

	a.log.Info("appending day section", "title", title, "blocks", len(children))
	if _, err := notion.Persist(ctx, a.store, a.cfg.PageID, day, a.cfg.BlockID); err != nil {
		return fmt.Errorf("persist day section: %w", err)
	}

	a.log.Info("updating fact block")
	if err := a.store.UpdateCallout(ctx, a.cfg.BlockID, factText); err != nil {
		return fmt.Errorf("update fact block: %w", err)
	}

	return nil
}
