// Package openmeteo is a client for the Open-Meteo historical weather archive.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/observability"
)

const (
	// Source labels metrics and upstream errors.
	Source = "open-meteo"

	// DefaultBaseURL is the archive endpoint.
	DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

	dailyVariables = "temperature_2m_mean,temperature_2m_max,temperature_2m_min,precipitation_sum"
	timezone       = "Europe/Warsaw"
	dateLayout     = "2006-01-02"
)

// Client fetches daily weather for a point.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an Open-Meteo archive client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchYear returns the daily series of one calendar year at (lat, lon),
// labelled with province. Failures are reported as *domain.UpstreamFetchError.
func (c *Client) FetchYear(ctx context.Context, province string, lat, lon float64, year int) ([]domain.DailyWeather, error) {
	params := url.Values{
		"latitude":           {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":          {strconv.FormatFloat(lon, 'f', -1, 64)},
		"start_date":         {fmt.Sprintf("%d-01-01", year)},
		"end_date":           {fmt.Sprintf("%d-12-31", year)},
		"daily":              {dailyVariables},
		"timezone":           {timezone},
		"temperature_unit":   {"celsius"},
		"precipitation_unit": {"mm"},
	}
	key := fmt.Sprintf("province=%s year=%d", province, year)

	var body response
	if err := c.doRequest(ctx, c.baseURL+"?"+params.Encode(), &body); err != nil {
		return nil, &domain.UpstreamFetchError{Source: Source, Request: key, Err: err}
	}

	days, err := body.Daily.toDomain(province, year)
	if err != nil {
		return nil, &domain.UpstreamFetchError{Source: Source, Request: key, Err: err}
	}
	c.logger.Debug("weather fetched", "province", province, "year", year, "days", len(days))
	return days, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(Source).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(Source, "error").Inc()
		return fmt.Errorf("open-meteo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(Source, "error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(Source, "error").Inc()
		return fmt.Errorf("decode response: %w", err)
	}
	c.metrics.UpstreamRequests.WithLabelValues(Source, "success").Inc()
	return nil
}

// Open-Meteo API response types.

type response struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Daily     daily   `json:"daily"`
}

// daily holds parallel arrays indexed by day; measurements may be null.
type daily struct {
	Time          []string   `json:"time"`
	TempMean      []*float64 `json:"temperature_2m_mean"`
	TempMax       []*float64 `json:"temperature_2m_max"`
	TempMin       []*float64 `json:"temperature_2m_min"`
	Precipitation []*float64 `json:"precipitation_sum"`
}

func (d daily) toDomain(province string, year int) ([]domain.DailyWeather, error) {
	days := make([]domain.DailyWeather, 0, len(d.Time))
	for i, ts := range d.Time {
		date, err := time.Parse(dateLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", ts, err)
		}
		days = append(days, domain.DailyWeather{
			Province:      province,
			Year:          year,
			Date:          date,
			TempMean:      at(d.TempMean, i),
			TempMax:       at(d.TempMax, i),
			TempMin:       at(d.TempMin, i),
			Precipitation: at(d.Precipitation, i),
		})
	}
	return days, nil
}

func at(series []*float64, i int) *float64 {
	if i >= len(series) {
		return nil
	}
	return series[i]
}
