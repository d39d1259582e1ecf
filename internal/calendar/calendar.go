// Package calendar builds the today's-events section from an iCloud CalDAV
// account.
package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"startpage/internal/block"
	"startpage/internal/model"
)

const defaultEndpoint = "https://caldav.icloud.com"

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	endpoint   string
	httpClient *http.Client
}

// WithEndpoint overrides the CalDAV endpoint (useful for testing).
func WithEndpoint(url string) Option {
	return func(c *clientConfig) {
		c.endpoint = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = httpClient
	}
}

// Client fetches events from every calendar of a CalDAV principal.
type Client struct {
	client *caldav.Client
	log    *slog.Logger
}

// NewClient creates a calendar Client authenticating with basic auth, the
// scheme iCloud uses for app-specific passwords.
func NewClient(username, password string, log *slog.Logger, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	httpClient := webdav.HTTPClientWithBasicAuth(cfg.httpClient, username, password)
	client, err := caldav.NewClient(httpClient, cfg.endpoint)
	if err != nil {
		return nil, fmt.Errorf("create caldav client: %w", err)
	}
	return &Client{client: client, log: log}, nil
}

// Events returns all events intersecting [start, end) across the account's
// calendars, sorted by start time. A calendar that fails to answer is logged
// and skipped so one broken calendar does not hide the rest.
func (c *Client) Events(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	principal, err := c.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := c.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find calendar home set: %w", err)
	}
	calendars, err := c.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	if len(calendars) == 0 {
		return nil, fmt.Errorf("no calendars found")
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{{Name: "VEVENT", AllProps: true}},
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: "VEVENT", Start: start, End: end}},
		},
	}

	var events []model.Event
	for _, cal := range calendars {
		c.log.Debug("querying calendar", "name", cal.Name)
		objects, err := c.client.QueryCalendar(ctx, cal.Path, query)
		if err != nil {
			c.log.Error("query calendar", "name", cal.Name, "error", err)
			continue
		}
		name := cal.Name
		if name == "" {
			name = cal.Path
		}
		for _, obj := range objects {
			if obj.Data == nil {
				continue
			}
			events = append(events, eventsFromCalendar(obj.Data, name, start, end)...)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

// Section fetches today's events and renders the calendar section. No events
// still yields a two-block section, never just the heading.
func (c *Client) Section(ctx context.Context, title string, start, end time.Time) ([]block.Block, error) {
	events, err := c.Events(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return sectionBlocks(title, events, start), nil
}

// eventsFromCalendar extracts the VEVENTs of one calendar object. All-day
// and undated start or end times clamp to the day bounds rather than
// erroring, which also makes them sort to the front of the day.
func eventsFromCalendar(data *ical.Calendar, calendarName string, start, end time.Time) []model.Event {
	var events []model.Event
	for _, ev := range data.Events() {
		title := "No title"
		if s, err := ev.Props.Text(ical.PropSummary); err == nil && s != "" {
			title = s
		}

		eventStart := start
		if prop := ev.Props.Get(ical.PropDateTimeStart); prop != nil && prop.ValueType() != ical.ValueDate {
			if t, err := ev.DateTimeStart(start.Location()); err == nil {
				eventStart = t.In(start.Location())
			}
		}
		eventEnd := end
		if prop := ev.Props.Get(ical.PropDateTimeEnd); prop != nil && prop.ValueType() != ical.ValueDate {
			if t, err := ev.DateTimeEnd(start.Location()); err == nil {
				eventEnd = t.In(start.Location())
			}
		}

		events = append(events, model.Event{
			Calendar: calendarName,
			Title:    title,
			Start:    eventStart,
			End:      eventEnd,
		})
	}
	return events
}

func sectionBlocks(title string, events []model.Event, dayStart time.Time) []block.Block {
	blocks := []block.Block{block.NewHeading2(title)}
	if len(events) == 0 {
		return append(blocks, block.NewBulletedItem("No events today."))
	}
	for _, ev := range events {
		var text string
		if ev.Start.Equal(dayStart) {
			text = fmt.Sprintf("%s all day (from %s)", ev.Title, ev.Calendar)
		} else {
			text = fmt.Sprintf("%s at %s (from %s)", ev.Title, ev.Start.Format("15:04"), ev.Calendar)
		}
		blocks = append(blocks, block.NewBulletedItem(text))
	}
	return blocks
}
