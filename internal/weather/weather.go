// Package weather builds the weather section from the Open-Meteo APIs.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"startpage/internal/block"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com"
	defaultForecastURL  = "https://api.open-meteo.com"
)

// weatherSymbols maps WMO weather codes to display emoji.
var weatherSymbols = map[int]string{
	0:  "☀️",
	1:  "🌤",
	2:  "⛅️",
	3:  "☁️",
	45: "🌫",
	48: "🌫",
	51: "🌦",
	53: "🌦",
	55: "🌧",
	56: "🌧",
	57: "🌧",
	61: "🌦",
	63: "🌧",
	65: "🌧",
	66: "🌧",
	67: "🌧",
	71: "🌨",
	73: "❄️",
	75: "❄️",
	77: "❄️",
	80: "🌦",
	81: "🌧",
	82: "🌧",
	85: "🌨",
	86: "❄️",
	95: "⛈",
	96: "⛈",
	99: "⛈",
}

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

// WithBaseURLs overrides the geocoding and forecast base URLs (useful for
// testing).
func WithBaseURLs(geocoding, forecast string) Option {
	return func(c *Client) {
		c.geocodingURL = geocoding
		c.forecastURL = forecast
	}
}

// Client fetches current conditions from Open-Meteo.
type Client struct {
	httpClient   HTTPClient
	geocodingURL string
	forecastURL  string
}

// NewClient creates a weather Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		geocodingURL: defaultGeocodingURL,
		forecastURL:  defaultForecastURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Section geocodes the city, fetches its current and daily forecast, and
// returns the weather section: a heading with the condition symbol and the
// city name, and one paragraph with the details.
func (c *Client) Section(ctx context.Context, city string) ([]block.Block, error) {
	lat, lon, err := c.geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%g", lat))
	params.Set("longitude", fmt.Sprintf("%g", lon))
	params.Set("current", "temperature_2m,relative_humidity_2m,precipitation,weather_code,wind_speed_10m,wind_direction_10m")
	params.Set("daily", "temperature_2m_max,temperature_2m_min")
	params.Set("timezone", "auto")

	var data struct {
		Current struct {
			WeatherCode      int     `json:"weather_code"`
			RelativeHumidity float64 `json:"relative_humidity_2m"`
			Precipitation    float64 `json:"precipitation"`
			WindSpeed        float64 `json:"wind_speed_10m"`
			WindDirection    float64 `json:"wind_direction_10m"`
		} `json:"current"`
		Daily struct {
			TempMax []float64 `json:"temperature_2m_max"`
			TempMin []float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := c.get(ctx, c.forecastURL+"/v1/forecast?"+params.Encode(), &data); err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}
	if len(data.Daily.TempMin) == 0 || len(data.Daily.TempMax) == 0 {
		return nil, fmt.Errorf("forecast response missing daily temperatures")
	}

	symbol, ok := weatherSymbols[data.Current.WeatherCode]
	if !ok {
		symbol = "❓"
	}

	info := fmt.Sprintf("%d°C - %d°C Humidity: %d%% Precipitation: %gmm Wind: %dkm/h %s",
		int(data.Daily.TempMin[0]),
		int(data.Daily.TempMax[0]),
		int(data.Current.RelativeHumidity),
		data.Current.Precipitation,
		int(data.Current.WindSpeed),
		windArrow(data.Current.WindDirection),
	)

	return []block.Block{
		block.NewHeading2(symbol + " " + city),
		block.NewParagraph(info),
	}, nil
}

func (c *Client) geocode(ctx context.Context, city string) (lat, lon float64, err error) {
	params := url.Values{}
	params.Set("name", city)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	var data struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := c.get(ctx, c.geocodingURL+"/v1/search?"+params.Encode(), &data); err != nil {
		return 0, 0, fmt.Errorf("geocode %s: %w", city, err)
	}
	if len(data.Results) == 0 {
		return 0, 0, fmt.Errorf("city not found: %s", city)
	}
	return data.Results[0].Latitude, data.Results[0].Longitude, nil
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// windArrow converts a wind direction in degrees to a 16-point arrow.
func windArrow(deg float64) string {
	directions := []string{
		"↑", "↑", "↗", "↗", "→", "↘", "↘", "↘",
		"↓", "↙", "↙", "↙", "←", "↖", "↖", "↖",
	}
	index := int(math.Round(deg/22.5)) % 16
	return directions[index]
}
